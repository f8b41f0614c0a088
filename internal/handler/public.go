// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/campus-go/internal/apiclient"
	"github.com/olegiv/campus-go/internal/imaging"
	"github.com/olegiv/campus-go/internal/middleware"
	"github.com/olegiv/campus-go/internal/model"
	"github.com/olegiv/campus-go/internal/render"
	"github.com/olegiv/campus-go/internal/service"
	"github.com/olegiv/campus-go/internal/session"
	"github.com/olegiv/campus-go/internal/workspace"
)

// GalleryUploader files an admin's image under a gallery category.
type GalleryUploader interface {
	AddGalleryImage(ctx context.Context, draft workspace.GalleryImageDraft, file *workspace.Attachment) (workspace.Outcome, error)
}

// PublicHandler serves the public pages.
type PublicHandler struct {
	catalog  *service.Catalog
	renderer *render.Renderer
	tokens   *session.TokenStore
	gallery  GalleryUploader
	uploads  uploader
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(catalog *service.Catalog, renderer *render.Renderer, tokens *session.TokenStore, gallery GalleryUploader, images *imaging.Processor, maxUpload int64) *PublicHandler {
	return &PublicHandler{
		catalog:  catalog,
		renderer: renderer,
		tokens:   tokens,
		gallery:  gallery,
		uploads:  newUploader(images, maxUpload),
	}
}

// Home renders the home page. ?dept= picks a department tab and ?q=
// searches course names. htmx tab switches get only the course list.
func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	q := service.HomeQuery{
		Department: r.URL.Query().Get("dept"),
		Search:     strings.TrimSpace(r.URL.Query().Get("q")),
	}

	view, err := h.catalog.Home(r.Context(), q)
	if err != nil {
		slog.Warn("home page data unavailable", "category", model.EventCategoryAPI, "error", err)
	}

	td := pageData(r, h.tokens, "Home", view)
	if middleware.IsHTMX(r) && r.Header.Get("HX-Target") == "home-courses" {
		if err := h.renderer.RenderPartial(w, r, "pages/home", "home_courses", td); err != nil {
			logAndInternalError(w, "render error", "error", err, "template", "pages/home")
		}
		return
	}
	renderPage(w, r, h.renderer, "pages/home", td)
}

// About renders the static about page.
func (h *PublicHandler) About(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, "pages/about", pageData(r, h.tokens, "About Us", nil))
}

// Gallery renders the gallery. ?category= selects a tab and ?page= sets
// how many pages of images are visible.
func (h *PublicHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	view, err := h.catalog.Gallery(r.Context(), service.GalleryQuery{
		Category: r.URL.Query().Get("category"),
		Page:     page,
	})
	if err != nil {
		slog.Warn("gallery unavailable", "category", model.EventCategoryAPI, "error", err)
		h.renderer.AddFlash(r, render.FlashError, "Failed to load gallery images. Please try again later.")
	}

	td := pageData(r, h.tokens, "Gallery", view)
	if middleware.IsHTMX(r) && r.Header.Get("HX-Target") == "gallery-grid" {
		if err := h.renderer.RenderPartial(w, r, "pages/gallery", "gallery_grid", td); err != nil {
			logAndInternalError(w, "render error", "error", err, "template", "pages/gallery")
		}
		return
	}
	renderPage(w, r, h.renderer, "pages/gallery", td)
}

// GalleryUpload handles the admin upload dialog on the gallery page.
func (h *PublicHandler) GalleryUpload(w http.ResponseWriter, r *http.Request) {
	if err := h.uploads.parseForm(w, r); err != nil {
		flashError(w, r, h.renderer, redirectGallery, h.uploads.uploadMessage(err))
		return
	}

	draft := workspace.GalleryImageDraft{
		Title:    r.FormValue("title"),
		Category: r.FormValue("category"),
	}
	back := redirectGallery
	if draft.Category != "" {
		back += "?category=" + url.QueryEscape(draft.Category)
	}

	file, err := h.uploads.attachment(r, fieldFile)
	if err != nil {
		flashError(w, r, h.renderer, back, h.uploads.uploadMessage(err))
		return
	}

	out, err := h.gallery.AddGalleryImage(r.Context(), draft, file)
	if err != nil {
		flashError(w, r, h.renderer, back, failureMessage(err))
		return
	}
	if err := h.catalog.RefreshGallery(r.Context()); err != nil {
		slog.Warn("gallery refresh after upload failed", "category", model.EventCategoryAPI, "error", err)
	}
	flashSuccess(w, r, h.renderer, back, out.Message)
}

// Courses lists all courses grouped by category.
func (h *PublicHandler) Courses(w http.ResponseWriter, r *http.Request) {
	groups, err := h.catalog.CoursesByCategory(r.Context())
	if err != nil {
		slog.Warn("courses unavailable", "category", model.EventCategoryAPI, "error", err)
		h.renderer.AddFlash(r, render.FlashError, "Failed to load courses")
	}
	renderPage(w, r, h.renderer, "pages/courses", pageData(r, h.tokens, "Courses", groups))
}

// Category lists the courses of one category. Unknown categories and
// load failures go back to the course list.
func (h *PublicHandler) Category(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, err := h.catalog.Category(r.Context(), id)
	if err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			slog.Warn("category unavailable", "category", model.EventCategoryAPI, "id", id, "error", err)
		}
		http.Redirect(w, r, redirectCourses, http.StatusSeeOther)
		return
	}
	renderPage(w, r, h.renderer, "pages/category", pageData(r, h.tokens, view.Category.Name, view))
}

// Course renders a course with related courses of its department.
func (h *PublicHandler) Course(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, err := h.catalog.CourseDetail(r.Context(), id)
	switch {
	case errors.Is(err, service.ErrNotFound) || apiclient.StatusOf(err) == http.StatusNotFound:
		renderError(w, r, h.renderer, h.tokens, http.StatusNotFound, "Course not found")
		return
	case err != nil:
		slog.Warn("course unavailable", "category", model.EventCategoryAPI, "id", id, "error", err)
		h.renderer.AddFlash(r, render.FlashError, "Failed to load course details")
	}
	renderPage(w, r, h.renderer, "pages/course", pageData(r, h.tokens, view.Course.Name, view))
}

// Department renders a department with its courses and faculty.
func (h *PublicHandler) Department(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	view, err := h.catalog.DepartmentDetail(r.Context(), name)
	if err != nil {
		slog.Warn("department unavailable", "category", model.EventCategoryAPI, "name", name, "error", err)
		h.renderer.AddFlash(r, render.FlashError, "Failed to load department details")
	}
	renderPage(w, r, h.renderer, "pages/department", pageData(r, h.tokens, name, view))
}

// NotFound renders the 404 page.
func (h *PublicHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	renderError(w, r, h.renderer, h.tokens, http.StatusNotFound, "The page you are looking for does not exist.")
}
