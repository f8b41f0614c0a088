// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/campus-go/internal/middleware"
	"github.com/olegiv/campus-go/internal/model"
	"github.com/olegiv/campus-go/internal/render"
	"github.com/olegiv/campus-go/internal/workspace"
)

// ContentPage is the content tab.
type ContentPage struct {
	View       workspace.View[workspace.ContentData]
	Form       workspace.Form[workspace.ContentDraft]
	Errors     map[string]string
	Pagination AdminPagination
	Types      []model.ContentType
	Filter     model.ContentType
}

// contentURL is the content tab showing filter f.
func contentURL(f workspace.Filter) string {
	q := url.Values{}
	if f.ContentType != "" {
		q.Set("type", string(f.ContentType))
	}
	if f.Page > 1 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if len(q) == 0 {
		return redirectAdminContent
	}
	return redirectAdminContent + "?" + q.Encode()
}

func findContent(items []model.Content, id string) (model.Content, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return model.Content{}, false
}

func (h *AdminHandler) renderContent(w http.ResponseWriter, r *http.Request, status int, view workspace.View[workspace.ContentData], form workspace.Form[workspace.ContentDraft], errs map[string]string) {
	query := url.Values{}
	if view.Filter.ContentType != "" {
		query.Set("type", string(view.Filter.ContentType))
	}
	h.render(w, r, status, "admin/content", "Content", ContentPage{
		View:       view,
		Form:       form,
		Errors:     errs,
		Pagination: BuildAdminPagination(view.Data.Pagination, redirectAdminContent, query),
		Types:      model.ContentFilterTypes,
		Filter:     view.Filter.ContentType,
	})
}

// newContentForm is the empty create form for the active filter.
func newContentForm(f workspace.Filter) workspace.Form[workspace.ContentDraft] {
	t := f.ContentType
	if t == "" {
		t = model.ContentAnnouncement
	}
	return workspace.Creating(workspace.ContentDraft{Type: t})
}

// Content lists content. ?type= filters, ?page= pages and ?edit= opens an
// item in the form.
func (h *AdminHandler) Content(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	f := workspace.Filter{ContentType: model.ContentType(q.Get("type")), Page: page}

	ws := h.workspace(r)
	view, err := h.svc.LoadContent(r.Context(), ws, f)
	if !h.loadOK(w, r, err, "Failed to fetch content. Please try again.") {
		return
	}

	form := newContentForm(view.Filter)
	if id := q.Get("edit"); id != "" {
		if item, ok := findContent(view.Data.Items, id); ok {
			form, _ = workspace.Editing(id, workspace.ContentDraftFrom(item))
		} else {
			h.renderer.AddFlash(r, render.FlashWarning, "Content not found")
		}
	}
	h.renderContent(w, r, http.StatusOK, view, form, nil)
}

// SaveContent creates content (POST /admin/content) or updates it
// (POST /admin/content/{id}). The type of an edited item cannot change,
// and its files are kept unless a new file is uploaded.
func (h *AdminHandler) SaveContent(w http.ResponseWriter, r *http.Request) {
	if err := h.uploads.parseForm(w, r); err != nil {
		flashError(w, r, h.renderer, redirectAdminContent, h.uploads.uploadMessage(err))
		return
	}
	ctx := r.Context()
	ws := h.workspace(r)

	draft := workspace.ContentDraft{
		Type:         model.ContentType(r.FormValue("type")),
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		Category:     r.FormValue("category"),
		FileURL:      r.FormValue("file_url"),
		ThumbnailURL: r.FormValue("thumbnail_url"),
	}

	id := chi.URLParam(r, "id")
	form := workspace.Creating(draft)
	if id != "" {
		form, _ = workspace.Editing(id, draft)
	}
	// Local checks first: a rejected form never reaches the backend.
	if err := h.svc.CheckContent(form); err != nil {
		h.renderer.AddFlash(r, render.FlashError, failureMessage(err))
		h.renderContent(w, r, http.StatusUnprocessableEntity, ws.Content.Snapshot(), form, failureFields(err))
		return
	}

	ensureLoaded(ctx, &ws.Content, func(ctx context.Context) error {
		_, err := h.svc.LoadContent(ctx, ws, ws.Content.Filter())
		return err
	})
	if id != "" {
		if item, ok := findContent(ws.Content.Snapshot().Data.Items, id); ok {
			draft.Type = item.Type
			draft.FileURL, draft.ThumbnailURL = item.FileURL, item.ThumbnailURL
		}
		form, _ = workspace.Editing(id, draft)
	}

	file, err := h.uploads.attachment(r, fieldFile)
	if err != nil {
		h.renderer.AddFlash(r, render.FlashError, h.uploads.uploadMessage(err))
		h.renderContent(w, r, http.StatusUnprocessableEntity, ws.Content.Snapshot(), form, nil)
		return
	}

	out, err := h.svc.SaveContent(ctx, ws, form, file)
	if err != nil {
		mutationFailed("save_content", err)
		h.renderer.AddFlash(r, render.FlashError, failureMessage(err))
		h.renderContent(w, r, http.StatusUnprocessableEntity, ws.Content.Snapshot(), form, failureFields(err))
		return
	}
	mutationDone(r, "save_content", form.ID())
	flashOutcome(r, h.renderer, out)
	middleware.Redirect(w, r, contentURL(ws.Content.Filter()))
}

// DeleteContent deletes a content item.
func (h *AdminHandler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ws := h.workspace(r)

	out, err := h.svc.DeleteContent(r.Context(), ws, id)
	if err != nil {
		mutationFailed("delete_content", err)
		flashError(w, r, h.renderer, contentURL(ws.Content.Filter()), failureMessage(err))
		return
	}
	mutationDone(r, "delete_content", id)
	flashSuccess(w, r, h.renderer, contentURL(ws.Content.Filter()), out.Message)
}

// AddGalleryCategory creates a gallery category with an optional cover.
func (h *AdminHandler) AddGalleryCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.uploads.parseForm(w, r); err != nil {
		flashError(w, r, h.renderer, redirectAdminContent, h.uploads.uploadMessage(err))
		return
	}
	ws := h.workspace(r)
	back := contentURL(ws.Content.Filter())

	file, err := h.uploads.attachment(r, fieldFile)
	if err != nil {
		flashError(w, r, h.renderer, back, h.uploads.uploadMessage(err))
		return
	}

	draft := workspace.GalleryCategoryDraft{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}
	out, err := h.svc.AddGalleryCategory(r.Context(), ws, draft, file)
	if err != nil {
		mutationFailed("add_gallery_category", err)
		flashError(w, r, h.renderer, back, failureMessage(err))
		return
	}
	mutationDone(r, "add_gallery_category", "")
	flashSuccess(w, r, h.renderer, back, out.Message)
}
