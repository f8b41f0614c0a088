// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package workspace

import (
	"context"
	"slices"
	"strings"

	"github.com/olegiv/campus-go/internal/apiclient"
	"github.com/olegiv/campus-go/internal/model"
)

var errNoForm = &Failure{Message: "No form is open", Local: true}

func localFailure(msg string) *Failure {
	return &Failure{Message: msg, Local: true}
}

func remoteFailure(err error, fallback string) *Failure {
	return &Failure{Message: apiclient.MessageOf(err, fallback), Err: err}
}

// upload sends file and returns its URL.
func (s *Service) upload(ctx context.Context, file *Attachment, up apiclient.Upload) (string, error) {
	up.File = file.Reader
	up.Filename = file.Filename
	url, err := s.backend.Upload(ctx, up)
	if err != nil {
		s.logger.Warn("upload failed", "category", model.EventCategoryUpload, "file", file.Filename, "error", err)
		return "", err
	}
	return url, nil
}

func (s *Service) refreshContent(ctx context.Context, ws *Workspace) {
	_, _ = s.LoadContent(ctx, ws, ws.Content.Filter())
}

// CheckContent runs the local checks of a content submission. It needs no
// loaded data, so callers can reject a form before touching the backend.
func (s *Service) CheckContent(form Form[ContentDraft]) error {
	if form.Mode() == FormNone {
		return errNoForm
	}
	return check(s.validate, form.Draft(), contentMessages)
}

// SaveContent creates or updates a content item. An attached file is
// uploaded first and replaces the item's file URLs. On success the content
// tab is reloaded with its active filter and page.
func (s *Service) SaveContent(ctx context.Context, ws *Workspace, form Form[ContentDraft], file *Attachment) (Outcome, error) {
	if err := s.CheckContent(form); err != nil {
		return Outcome{}, err
	}
	draft := form.Draft()
	if draft.Type == model.ContentGallery && len(ws.Content.Snapshot().Data.GalleryCategories) == 0 {
		return Outcome{}, localFailure("No gallery categories available")
	}

	if file != nil {
		url, err := s.upload(ctx, file, apiclient.Upload{Type: "image"})
		if err != nil {
			return Outcome{}, &Failure{Message: "Failed to upload file", Err: err}
		}
		draft.FileURL, draft.ThumbnailURL = url, url
	}

	var out Outcome
	if form.IsEditing() {
		if err := s.backend.UpdateContent(ctx, form.ID(), draft.input()); err != nil {
			return Outcome{}, remoteFailure(err, "Failed to update content. Please try again.")
		}
		out.Message = "Content updated successfully!"
	} else {
		if err := s.backend.CreateContent(ctx, draft.input()); err != nil {
			return Outcome{}, remoteFailure(err, "Failed to add content. Please try again.")
		}
		out.Message = "Content added successfully"
	}

	s.mutated(ctx)
	s.refreshContent(ctx, ws)
	return out, nil
}

// DeleteContent deletes an item. The content tab is reloaded whether or
// not the delete succeeded.
func (s *Service) DeleteContent(ctx context.Context, ws *Workspace, id string) (Outcome, error) {
	err := s.backend.DeleteContent(ctx, id)
	if err == nil {
		s.mutated(ctx)
	}
	s.refreshContent(ctx, ws)
	if err != nil {
		return Outcome{}, remoteFailure(err, "Failed to delete content. Please try again.")
	}
	return Outcome{Message: "Content deleted successfully!"}, nil
}

// AddGalleryCategory creates a gallery category, optionally with a cover image.
func (s *Service) AddGalleryCategory(ctx context.Context, ws *Workspace, draft GalleryCategoryDraft, file *Attachment) (Outcome, error) {
	if err := check(s.validate, draft, galleryCategoryMessages); err != nil {
		return Outcome{}, err
	}

	in := model.ContentInput{
		Type:        model.ContentGalleryCategory,
		Title:       strings.TrimSpace(draft.Title),
		Description: draft.Description,
	}
	if file != nil {
		url, err := s.upload(ctx, file, apiclient.Upload{Type: "image"})
		if err != nil {
			return Outcome{}, &Failure{Message: "Failed to upload file", Err: err}
		}
		in.FileURL, in.ThumbnailURL = url, url
	}

	if err := s.backend.CreateContent(ctx, in); err != nil {
		return Outcome{}, remoteFailure(err, "Failed to add gallery category. Please try again.")
	}
	s.mutated(ctx)
	s.refreshContent(ctx, ws)
	return Outcome{Message: "Gallery category added successfully"}, nil
}

// AddGalleryImage uploads an image from the public gallery page and files
// it under the chosen category.
func (s *Service) AddGalleryImage(ctx context.Context, draft GalleryImageDraft, file *Attachment) (Outcome, error) {
	if file == nil {
		return Outcome{}, localFailure("Please select a file to upload")
	}
	if err := check(s.validate, draft, galleryImageMessages); err != nil {
		return Outcome{}, err
	}

	title := strings.TrimSpace(draft.Title)
	url, err := s.upload(ctx, file, apiclient.Upload{Type: "gallery", Title: title, Category: draft.Category})
	if err != nil {
		return Outcome{}, &Failure{Message: "Failed to upload image. Please try again.", Err: err}
	}

	err = s.backend.CreateContent(ctx, model.ContentInput{
		Type:         model.ContentGallery,
		Title:        title,
		FileURL:      url,
		ThumbnailURL: url,
		Category:     draft.Category,
	})
	if err != nil {
		return Outcome{}, remoteFailure(err, "Failed to upload image. Please try again.")
	}
	s.mutated(ctx)
	return Outcome{Message: "Image uploaded successfully!"}, nil
}

// SaveCourse creates or updates a course. Department and category names
// are resolved to ids from the loaded course tab. A failed image upload
// is reported as a warning and the course is saved without a new image.
func (s *Service) SaveCourse(ctx context.Context, ws *Workspace, form Form[CourseDraft], image *Attachment) (Outcome, error) {
	if form.Mode() == FormNone {
		return Outcome{}, errNoForm
	}
	draft := form.Draft()
	if err := check(s.validate, draft, courseMessages); err != nil {
		return Outcome{}, err
	}

	data := ws.Courses.Snapshot().Data
	deptID, okDept := data.DepartmentID(draft.DepartmentName)
	catID, okCat := data.CategoryID(draft.CategoryName)
	if !okDept || !okCat {
		return Outcome{}, localFailure("Department and category are required")
	}

	var out Outcome
	imageURL := draft.ImageURL
	if image != nil {
		url, err := s.upload(ctx, image, apiclient.Upload{Type: "image"})
		if err != nil {
			out.Warnings = append(out.Warnings, "Failed to upload course image")
		} else {
			imageURL = url
		}
	}

	in := model.CourseInput{
		Name:         strings.TrimSpace(draft.Name),
		DepartmentID: deptID,
		CategoryID:   catID,
		FeeStructure: model.FeeStructure{RegistrationFee: draft.RegistrationFee, FullFee: draft.FullFee},
		FormURL:      draft.FormURL,
		ThumbnailURL: imageURL,
		FileURL:      imageURL,
	}

	var err error
	if form.IsEditing() {
		err = s.backend.UpdateCourse(ctx, form.ID(), in)
		out.Message = "Course updated successfully"
	} else {
		err = s.backend.CreateCourse(ctx, in)
		out.Message = "Course added successfully"
	}
	if err != nil {
		return Outcome{}, &Failure{Message: "Failed to add/update course: " + apiclient.MessageOf(err, "Unknown error"), Err: err}
	}

	s.mutated(ctx)
	_, _ = s.LoadCourses(ctx, ws)
	return out, nil
}

// DeleteCourse deletes a course and reloads the course tab regardless.
func (s *Service) DeleteCourse(ctx context.Context, ws *Workspace, id string) (Outcome, error) {
	err := s.backend.DeleteCourse(ctx, id)
	if err == nil {
		s.mutated(ctx)
	}
	_, _ = s.LoadCourses(ctx, ws)
	if err != nil {
		return Outcome{}, remoteFailure(err, "Failed to delete course")
	}
	return Outcome{Message: "Course deleted successfully"}, nil
}

// AddDepartment creates a department.
func (s *Service) AddDepartment(ctx context.Context, ws *Workspace, name string) (Outcome, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Outcome{}, localFailure("Department name is required")
	}
	if err := s.backend.CreateDepartment(ctx, name); err != nil {
		return Outcome{}, remoteFailure(err, "Failed to add department")
	}
	s.mutated(ctx)
	_, _ = s.LoadCourses(ctx, ws)
	return Outcome{Message: "Department added successfully"}, nil
}

// AddCategory creates a course category.
func (s *Service) AddCategory(ctx context.Context, ws *Workspace, name string) (Outcome, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Outcome{}, localFailure("Category name is required")
	}
	if err := s.backend.CreateCategory(ctx, name); err != nil {
		return Outcome{}, remoteFailure(err, "Failed to add category")
	}
	s.mutated(ctx)
	_, _ = s.LoadCourses(ctx, ws)
	return Outcome{Message: "Category added successfully"}, nil
}

// CheckAdmissionStatus rejects statuses an admin cannot set.
func CheckAdmissionStatus(status model.AdmissionStatus) error {
	if status != model.AdmissionApproved && status != model.AdmissionRejected {
		return localFailure("Invalid admission status")
	}
	return nil
}

// SetAdmissionStatus approves or rejects an admission. Only that row of
// the loaded admissions is replaced; the list is not reloaded.
func (s *Service) SetAdmissionStatus(ctx context.Context, ws *Workspace, id string, status model.AdmissionStatus) (Outcome, error) {
	if err := CheckAdmissionStatus(status); err != nil {
		return Outcome{}, err
	}
	current, ok := ws.Admissions.Snapshot().Data.Admission(id)
	if !ok {
		return Outcome{}, localFailure("Admission not found")
	}
	if !current.CanTransitionTo(status) {
		return Outcome{}, localFailure("Admission is already " + string(status))
	}

	updated, err := s.backend.UpdateAdmissionStatus(ctx, id, status)
	if err != nil {
		return Outcome{}, remoteFailure(err, "Failed to update admission status")
	}
	s.mutated(ctx)

	row := mergeAdmission(current, updated, status)
	ws.Admissions.Patch(func(d *AdmissionsData) bool {
		i := slices.IndexFunc(d.Admissions, func(a model.Admission) bool { return a.ID == id })
		if i < 0 {
			return false
		}
		next := slices.Clone(d.Admissions)
		next[i] = row
		d.Admissions = next
		return true
	})
	return Outcome{Message: "Admission " + string(status) + " successfully"}, nil
}

// mergeAdmission takes the backend's echo of the row but keeps populated
// references it dropped.
func mergeAdmission(current, updated model.Admission, status model.AdmissionStatus) model.Admission {
	if updated.ID == "" {
		current.Status = status
		return current
	}
	if updated.StudentID.Name == "" && current.StudentID.Name != "" {
		updated.StudentID = current.StudentID
	}
	if updated.CourseID.Name == "" && current.CourseID.Name != "" {
		updated.CourseID = current.CourseID
	}
	if updated.CreatedAt.IsZero() {
		updated.CreatedAt = current.CreatedAt
	}
	if !updated.Status.Valid() {
		updated.Status = status
	}
	return updated
}

// SaveTestimonial creates or updates a testimonial.
func (s *Service) SaveTestimonial(ctx context.Context, ws *Workspace, form Form[TestimonialDraft]) (Outcome, error) {
	if form.Mode() == FormNone {
		return Outcome{}, errNoForm
	}
	draft := form.Draft()
	if err := check(s.validate, draft, testimonialMessages); err != nil {
		return Outcome{}, err
	}

	var out Outcome
	var err error
	if form.IsEditing() {
		err = s.backend.UpdateContent(ctx, form.ID(), draft.input())
		out.Message = "Testimonial updated successfully!"
	} else {
		err = s.backend.CreateContent(ctx, draft.input())
		out.Message = "Testimonial added successfully!"
	}
	if err != nil {
		return Outcome{}, remoteFailure(err, "Failed to save testimonial. Please try again.")
	}

	s.mutated(ctx)
	_, _ = s.LoadTestimonials(ctx, ws)
	return out, nil
}

// DeleteTestimonial deletes a testimonial and reloads the tab regardless.
func (s *Service) DeleteTestimonial(ctx context.Context, ws *Workspace, id string) (Outcome, error) {
	err := s.backend.DeleteContent(ctx, id)
	if err == nil {
		s.mutated(ctx)
	}
	_, _ = s.LoadTestimonials(ctx, ws)
	if err != nil {
		return Outcome{}, remoteFailure(err, "Failed to delete testimonial. Please try again.")
	}
	return Outcome{Message: "Testimonial deleted successfully!"}, nil
}
