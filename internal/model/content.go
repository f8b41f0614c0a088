// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// ContentType tags a polymorphic content item.
type ContentType string

// Content types known to the backend.
const (
	ContentAnnouncement    ContentType = "announcement"
	ContentEvent           ContentType = "event"
	ContentGallery         ContentType = "gallery"
	ContentGalleryCategory ContentType = "gallery-category"
	ContentNews            ContentType = "news"
	ContentAbout           ContentType = "about"
	ContentTestimonial     ContentType = "testimonial"
)

// ContentFilterTypes lists the type filter options of the content tab, in
// display order. The empty filter means "all".
var ContentFilterTypes = []ContentType{
	ContentAnnouncement,
	ContentEvent,
	ContentGallery,
	ContentGalleryCategory,
	ContentNews,
	ContentAbout,
}

var contentTypeLabels = map[ContentType]string{
	ContentAnnouncement:    "Announcements",
	ContentEvent:           "Events",
	ContentGallery:         "Gallery",
	ContentGalleryCategory: "Gallery Categories",
	ContentNews:            "News",
	ContentAbout:           "Testimonials",
	ContentTestimonial:     "Testimonials",
}

// Label returns the human-readable name of the type.
func (t ContentType) Label() string {
	if l, ok := contentTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	_, ok := contentTypeLabels[t]
	return ok
}

// Content is a CMS record: announcement, event, gallery image, news item,
// gallery category or testimonial.
type Content struct {
	ID           string      `json:"_id"`
	Type         ContentType `json:"type"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	FileURL      string      `json:"fileUrl"`
	ThumbnailURL string      `json:"thumbnailUrl"`
	Category     Ref         `json:"category"`
	UploadedAt   Timestamp   `json:"uploadedAt"`
	CreatedAt    Timestamp   `json:"createdAt"`
}

// Image returns the thumbnail, falling back to the full file.
func (c Content) Image() string {
	if c.ThumbnailURL != "" {
		return c.ThumbnailURL
	}
	return c.FileURL
}

// Date returns the upload time, falling back to creation time.
func (c Content) Date() Timestamp {
	if !c.UploadedAt.IsZero() {
		return c.UploadedAt
	}
	return c.CreatedAt
}

// ContentInput is the create/update payload for content.
type ContentInput struct {
	Type         ContentType `json:"type"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	FileURL      string      `json:"fileUrl"`
	ThumbnailURL string      `json:"thumbnailUrl"`
	Category     string      `json:"category"`
}
