// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package workspace

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/olegiv/campus-go/internal/model"
)

// DefaultTestimonialImage is used when a testimonial has no photo.
const DefaultTestimonialImage = "/images/team/person1.jpg"

// ContentDraft is the content form. FileURL and ThumbnailURL hold the
// existing files of an edited item and are replaced by a new upload.
type ContentDraft struct {
	Type         model.ContentType `validate:"notblank"`
	Title        string            `validate:"notblank"`
	Description  string
	Category     string `validate:"required_if=Type gallery"`
	FileURL      string
	ThumbnailURL string
}

// ContentDraftFrom fills the form from an existing item.
func ContentDraftFrom(c model.Content) ContentDraft {
	return ContentDraft{
		Type:         c.Type,
		Title:        c.Title,
		Description:  c.Description,
		Category:     c.Category.ID,
		FileURL:      c.FileURL,
		ThumbnailURL: c.ThumbnailURL,
	}
}

func (d ContentDraft) input() model.ContentInput {
	return model.ContentInput{
		Type:         d.Type,
		Title:        strings.TrimSpace(d.Title),
		Description:  d.Description,
		FileURL:      d.FileURL,
		ThumbnailURL: d.ThumbnailURL,
		Category:     d.Category,
	}
}

// GalleryCategoryDraft is the "new gallery category" form.
type GalleryCategoryDraft struct {
	Title       string `validate:"notblank"`
	Description string
}

// GalleryImageDraft is the upload dialog on the public gallery page.
type GalleryImageDraft struct {
	Title    string `validate:"notblank"`
	Category string `validate:"notblank"`
}

// CourseDraft is the course form. Department and category are chosen by
// name and resolved against the loaded lists on submit.
type CourseDraft struct {
	Name            string  `validate:"notblank"`
	DepartmentName  string  `validate:"notblank"`
	CategoryName    string  `validate:"notblank"`
	RegistrationFee float64 `validate:"gte=0"`
	FullFee         float64 `validate:"gte=0"`
	FormURL         string  `validate:"omitempty,url"`
	ImageURL        string
}

// CourseDraftFrom fills the form from an existing course.
func CourseDraftFrom(c model.Course) CourseDraft {
	return CourseDraft{
		Name:            c.Name,
		DepartmentName:  c.DepartmentID.Name,
		CategoryName:    c.CategoryID.Name,
		RegistrationFee: c.FeeStructure.RegistrationFee,
		FullFee:         c.FeeStructure.FullFee,
		FormURL:         c.FormURL,
		ImageURL:        c.Image(),
	}
}

// TestimonialDraft is the testimonial form. Description length is counted
// in characters.
type TestimonialDraft struct {
	Title        string `validate:"notblank"`
	Description  string `validate:"notblank,min=50,max=500"`
	ThumbnailURL string
}

// TestimonialDraftFrom fills the form from an existing testimonial.
func TestimonialDraftFrom(c model.Content) TestimonialDraft {
	return TestimonialDraft{Title: c.Title, Description: c.Description, ThumbnailURL: c.ThumbnailURL}
}

func (d TestimonialDraft) input() model.ContentInput {
	file := d.ThumbnailURL
	if file == "" {
		file = DefaultTestimonialImage
	}
	return model.ContentInput{
		Type:         model.ContentTestimonial,
		Title:        strings.TrimSpace(d.Title),
		Description:  d.Description,
		ThumbnailURL: d.ThumbnailURL,
		FileURL:      file,
	}
}

// Messages shown for failed checks, keyed by "Field.tag". The "*" entry
// of a draft is its fallback.
var (
	contentMessages = map[string]string{
		"Type.notblank":        "Content type and title are required",
		"Title.notblank":       "Content type and title are required",
		"Category.required_if": "Please select a gallery category",
	}
	galleryCategoryMessages = map[string]string{
		"*": "Category name is required",
	}
	galleryImageMessages = map[string]string{
		"Title.notblank":    "Please enter a title",
		"Category.notblank": "Please select a category",
	}
	courseMessages = map[string]string{
		"*":                   "Course name, department, and category are required",
		"FormURL.url":         "Admission form URL must be a valid URL",
		"RegistrationFee.gte": "Fees cannot be negative",
		"FullFee.gte":         "Fees cannot be negative",
	}
	testimonialMessages = map[string]string{
		"*":               "Please fill in all required fields",
		"Description.min": "Description must be at least 50 characters",
		"Description.max": "Description must be at most 500 characters",
	}
)

// NewValidator returns a validator with the "notblank" rule registered,
// which rejects whitespace-only input.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// check validates draft and turns the first failed rule into a local
// Failure carrying every failed field.
func check(v *validator.Validate, draft any, messages map[string]string) error {
	err := v.Struct(draft)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Failure{Message: "Invalid form", Local: true, Err: err}
	}

	f := &Failure{Local: true, Fields: make(map[string]string, len(verrs)), Err: err}
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = messages["*"]
		}
		if msg == "" {
			msg = fe.Field() + " is invalid"
		}
		f.Fields[fe.Field()] = msg
		if f.Message == "" {
			f.Message = msg
		}
	}
	return f
}
