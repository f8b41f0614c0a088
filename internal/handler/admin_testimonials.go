// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/campus-go/internal/middleware"
	"github.com/olegiv/campus-go/internal/render"
	"github.com/olegiv/campus-go/internal/workspace"
)

// TestimonialsPage is the testimonials tab.
type TestimonialsPage struct {
	View         workspace.View[workspace.TestimonialsData]
	Form         workspace.Form[workspace.TestimonialDraft]
	Errors       map[string]string
	DefaultImage string
}

func (h *AdminHandler) renderTestimonials(w http.ResponseWriter, r *http.Request, status int, view workspace.View[workspace.TestimonialsData], form workspace.Form[workspace.TestimonialDraft], errs map[string]string) {
	h.render(w, r, status, "admin/testimonials", "Testimonials", TestimonialsPage{
		View:         view,
		Form:         form,
		Errors:       errs,
		DefaultImage: workspace.DefaultTestimonialImage,
	})
}

// Testimonials lists testimonials. ?edit= opens one in the form.
func (h *AdminHandler) Testimonials(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.LoadTestimonials(r.Context(), h.workspace(r))
	if !h.loadOK(w, r, err, "Failed to fetch testimonials") {
		return
	}

	form := workspace.Creating(workspace.TestimonialDraft{})
	if id := r.URL.Query().Get("edit"); id != "" {
		if item, ok := findContent(view.Data.Items, id); ok {
			form, _ = workspace.Editing(id, workspace.TestimonialDraftFrom(item))
		} else {
			h.renderer.AddFlash(r, render.FlashWarning, "Testimonial not found")
		}
	}
	h.renderTestimonials(w, r, http.StatusOK, view, form, nil)
}

// SaveTestimonial creates (POST /admin/testimonials) or updates
// (POST /admin/testimonials/{id}) a testimonial.
func (h *AdminHandler) SaveTestimonial(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectAdminTestimonials, "Invalid form data")
		return
	}
	ws := h.workspace(r)

	draft := workspace.TestimonialDraft{
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		ThumbnailURL: r.FormValue("thumbnail_url"),
	}
	form := workspace.Creating(draft)
	id := chi.URLParam(r, "id")
	if id != "" {
		form, _ = workspace.Editing(id, draft)
	}

	out, err := h.svc.SaveTestimonial(r.Context(), ws, form)
	if err != nil {
		mutationFailed("save_testimonial", err)
		h.renderer.AddFlash(r, render.FlashError, failureMessage(err))
		h.renderTestimonials(w, r, http.StatusUnprocessableEntity, ws.Testimonials.Snapshot(), form, failureFields(err))
		return
	}
	mutationDone(r, "save_testimonial", id)
	flashOutcome(r, h.renderer, out)
	middleware.Redirect(w, r, redirectAdminTestimonials)
}

// DeleteTestimonial deletes a testimonial.
func (h *AdminHandler) DeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	out, err := h.svc.DeleteTestimonial(r.Context(), h.workspace(r), id)
	if err != nil {
		mutationFailed("delete_testimonial", err)
		flashError(w, r, h.renderer, redirectAdminTestimonials, failureMessage(err))
		return
	}
	mutationDone(r, "delete_testimonial", id)
	flashSuccess(w, r, h.renderer, redirectAdminTestimonials, out.Message)
}
