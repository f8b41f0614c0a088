// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/campus-go/internal/middleware"
	"github.com/olegiv/campus-go/internal/render"
	"github.com/olegiv/campus-go/internal/workspace"
)

// CoursesPage is the courses tab.
type CoursesPage struct {
	View   workspace.View[workspace.CoursesData]
	Form   workspace.Form[workspace.CourseDraft]
	Errors map[string]string
}

func (h *AdminHandler) renderCourses(w http.ResponseWriter, r *http.Request, status int, view workspace.View[workspace.CoursesData], form workspace.Form[workspace.CourseDraft], errs map[string]string) {
	h.render(w, r, status, "admin/courses", "Courses", CoursesPage{View: view, Form: form, Errors: errs})
}

// Courses lists courses with the department and category lists.
// ?edit= opens a course in the form.
func (h *AdminHandler) Courses(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.LoadCourses(r.Context(), h.workspace(r))
	if !h.loadOK(w, r, err, "Failed to fetch courses data") {
		return
	}

	form := workspace.Creating(workspace.CourseDraft{})
	if id := r.URL.Query().Get("edit"); id != "" {
		if course, ok := view.Data.Course(id); ok {
			form, _ = workspace.Editing(id, workspace.CourseDraftFrom(course))
		} else {
			h.renderer.AddFlash(r, render.FlashWarning, "Course not found")
		}
	}
	h.renderCourses(w, r, http.StatusOK, view, form, nil)
}

// parseFee reads a fee field. Blank means zero.
func parseFee(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// SaveCourse creates (POST /admin/courses) or updates
// (POST /admin/courses/{id}) a course.
func (h *AdminHandler) SaveCourse(w http.ResponseWriter, r *http.Request) {
	if err := h.uploads.parseForm(w, r); err != nil {
		flashError(w, r, h.renderer, redirectAdminCourses, h.uploads.uploadMessage(err))
		return
	}
	ctx := r.Context()
	ws := h.workspace(r)
	ensureLoaded(ctx, &ws.Courses, func(ctx context.Context) error {
		_, err := h.svc.LoadCourses(ctx, ws)
		return err
	})

	regFee, okReg := parseFee(r.FormValue("registration_fee"))
	fullFee, okFull := parseFee(r.FormValue("full_fee"))
	draft := workspace.CourseDraft{
		Name:            r.FormValue("name"),
		DepartmentName:  r.FormValue("department"),
		CategoryName:    r.FormValue("category"),
		RegistrationFee: regFee,
		FullFee:         fullFee,
		FormURL:         strings.TrimSpace(r.FormValue("form_url")),
		ImageURL:        r.FormValue("image_url"),
	}

	form := workspace.Creating(draft)
	id := chi.URLParam(r, "id")
	if id != "" {
		if course, ok := ws.Courses.Snapshot().Data.Course(id); ok {
			draft.ImageURL = course.Image()
		}
		form, _ = workspace.Editing(id, draft)
	}

	if !okReg || !okFull {
		h.renderer.AddFlash(r, render.FlashError, "Fees must be numbers")
		h.renderCourses(w, r, http.StatusUnprocessableEntity, ws.Courses.Snapshot(), form, nil)
		return
	}

	image, err := h.uploads.attachment(r, "image")
	if err != nil {
		h.renderer.AddFlash(r, render.FlashError, h.uploads.uploadMessage(err))
		h.renderCourses(w, r, http.StatusUnprocessableEntity, ws.Courses.Snapshot(), form, nil)
		return
	}

	out, err := h.svc.SaveCourse(ctx, ws, form, image)
	if err != nil {
		mutationFailed("save_course", err)
		h.renderer.AddFlash(r, render.FlashError, failureMessage(err))
		h.renderCourses(w, r, http.StatusUnprocessableEntity, ws.Courses.Snapshot(), form, failureFields(err))
		return
	}
	mutationDone(r, "save_course", id)
	flashOutcome(r, h.renderer, out)
	middleware.Redirect(w, r, redirectAdminCourses)
}

// DeleteCourse deletes a course.
func (h *AdminHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	out, err := h.svc.DeleteCourse(r.Context(), h.workspace(r), id)
	if err != nil {
		mutationFailed("delete_course", err)
		flashError(w, r, h.renderer, redirectAdminCourses, failureMessage(err))
		return
	}
	mutationDone(r, "delete_course", id)
	flashSuccess(w, r, h.renderer, redirectAdminCourses, out.Message)
}

// AddDepartment creates a department.
func (h *AdminHandler) AddDepartment(w http.ResponseWriter, r *http.Request) {
	h.addNamed(w, r, "add_department", h.svc.AddDepartment)
}

// AddCategory creates a course category.
func (h *AdminHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	h.addNamed(w, r, "add_category", h.svc.AddCategory)
}

func (h *AdminHandler) addNamed(w http.ResponseWriter, r *http.Request, action string, add func(context.Context, *workspace.Workspace, string) (workspace.Outcome, error)) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectAdminCourses, "Invalid form data")
		return
	}
	out, err := add(r.Context(), h.workspace(r), r.FormValue("name"))
	if err != nil {
		mutationFailed(action, err)
		flashError(w, r, h.renderer, redirectAdminCourses, failureMessage(err))
		return
	}
	mutationDone(r, action, "")
	flashSuccess(w, r, h.renderer, redirectAdminCourses, out.Message)
}
