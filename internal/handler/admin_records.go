// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/campus-go/internal/apiclient"
	"github.com/olegiv/campus-go/internal/export"
	"github.com/olegiv/campus-go/internal/middleware"
	"github.com/olegiv/campus-go/internal/model"
	"github.com/olegiv/campus-go/internal/render"
	"github.com/olegiv/campus-go/internal/workspace"
)

// Users lists students and faculty.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.LoadUsers(r.Context(), h.workspace(r))
	if !h.loadOK(w, r, err, "Failed to fetch users data") {
		return
	}
	h.render(w, r, http.StatusOK, "admin/users", "Users", view)
}

// AdmissionsPage is the admissions tab.
type AdmissionsPage struct {
	View     workspace.View[workspace.AdmissionsData]
	Statuses []model.AdmissionStatus
}

// Admissions lists admissions.
func (h *AdminHandler) Admissions(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.LoadAdmissions(r.Context(), h.workspace(r))
	if !h.loadOK(w, r, err, "Failed to fetch admissions data") {
		return
	}
	h.renderAdmissions(w, r, view)
}

func (h *AdminHandler) renderAdmissions(w http.ResponseWriter, r *http.Request, view workspace.View[workspace.AdmissionsData]) {
	h.render(w, r, http.StatusOK, "admin/admissions", "Admissions", AdmissionsPage{
		View:     view,
		Statuses: []model.AdmissionStatus{model.AdmissionApproved, model.AdmissionRejected},
	})
}

// AdmissionStatus approves or rejects an admission. htmx requests get the
// updated table row; others get the whole tab from the patched list.
func (h *AdminHandler) AdmissionStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectAdminAdmissions, "Invalid form data")
		return
	}
	ctx := r.Context()
	ws := h.workspace(r)
	id := chi.URLParam(r, "id")
	status := model.AdmissionStatus(r.FormValue("status"))

	var out workspace.Outcome
	err := workspace.CheckAdmissionStatus(status)
	if err == nil {
		ensureLoaded(ctx, &ws.Admissions, func(ctx context.Context) error {
			_, err := h.svc.LoadAdmissions(ctx, ws)
			return err
		})
		out, err = h.svc.SetAdmissionStatus(ctx, ws, id, status)
	}
	if err != nil {
		mutationFailed("admission_status", err)
		h.renderer.AddFlash(r, render.FlashError, failureMessage(err))
	} else {
		mutationDone(r, "admission_status", id)
		h.renderer.AddFlash(r, render.FlashSuccess, out.Message)
	}

	view := ws.Admissions.Snapshot()
	if !middleware.IsHTMX(r) {
		h.renderAdmissions(w, r, view)
		return
	}

	row, ok := view.Data.Admission(id)
	if !ok {
		middleware.Redirect(w, r, redirectAdminAdmissions)
		return
	}
	td := pageData(r, nil, "Admissions", map[string]any{
		"Admission": row,
		"Statuses":  []model.AdmissionStatus{model.AdmissionApproved, model.AdmissionRejected},
	})
	if err := h.renderer.RenderPartial(w, r, "admin/admissions", "admission_row", td); err != nil {
		logAndInternalError(w, "render error", "error", err, "template", "admin/admissions")
	}
}

// Payments lists payments.
func (h *AdminHandler) Payments(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.LoadPayments(r.Context(), h.workspace(r))
	if !h.loadOK(w, r, err, "Failed to fetch payment data. Please check if the API endpoint is available.") {
		return
	}
	h.render(w, r, http.StatusOK, "admin/payments", "Payments", view)
}

// PaymentReceipt downloads a PDF receipt. The loaded payments tab is
// consulted before asking the backend.
func (h *AdminHandler) PaymentReceipt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ws := h.workspace(r)

	payment, found := model.Payment{}, false
	for _, p := range ws.Payments.Snapshot().Data.Payments {
		if p.ID == id {
			payment, found = p, true
			break
		}
	}
	if !found {
		p, err := h.payments.Payment(r.Context(), id)
		if err != nil {
			if apiclient.StatusOf(err) == http.StatusNotFound {
				flashError(w, r, h.renderer, redirectAdminPayments, "Payment not found")
				return
			}
			slog.Warn("payment lookup failed", "category", model.EventCategoryAPI, "id", id, "error", err)
			flashError(w, r, h.renderer, redirectAdminPayments, apiclient.MessageOf(err, "Failed to load payment"))
			return
		}
		payment = p
	}

	data, err := export.RenderReceipt(export.Receipt{College: h.college, Payment: payment, Issued: h.now()})
	if err != nil {
		if errors.Is(err, export.ErrMissingPayment) {
			flashError(w, r, h.renderer, redirectAdminPayments, "Payment not found")
			return
		}
		logAndInternalError(w, "receipt render failed", "error", err, "payment", id)
		return
	}
	writeFile(w, "application/pdf", export.ReceiptFilename(payment), data)
}

// IDCards lists students with course and department choices for their cards.
func (h *AdminHandler) IDCards(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.LoadIDCards(r.Context(), h.workspace(r))
	if !h.loadOK(w, r, err, "Failed to fetch required data for ID cards") {
		return
	}
	h.render(w, r, http.StatusOK, "admin/id_cards", "ID Cards", view)
}

// IDCardPDF renders a student's card. ?course= and ?department= take ids
// or names; a course's own department is used when none is picked.
func (h *AdminHandler) IDCardPDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws := h.workspace(r)
	ensureLoaded(ctx, &ws.IDCards, func(ctx context.Context) error {
		_, err := h.svc.LoadIDCards(ctx, ws)
		return err
	})
	data := ws.IDCards.Snapshot().Data

	studentID := chi.URLParam(r, "studentId")
	student, ok := data.Student(studentID)
	if !ok {
		flashError(w, r, h.renderer, redirectAdminIDCards, "Student not found")
		return
	}

	course, department := resolveCardChoices(data, r.URL.Query().Get("course"), r.URL.Query().Get("department"))
	card := export.NewIDCard(h.college, student, course, department, h.now())
	pdf, err := export.RenderIDCard(card)
	if err != nil {
		if errors.Is(err, export.ErrMissingStudent) {
			flashError(w, r, h.renderer, redirectAdminIDCards, "Student has no name on record")
			return
		}
		logAndInternalError(w, "id card render failed", "error", err, "student", studentID)
		return
	}
	mutationDone(r, "id_card", studentID)
	writeFile(w, "application/pdf", export.IDCardFilename(card), pdf)
}

// resolveCardChoices maps picked ids to names.
func resolveCardChoices(data workspace.IDCardData, course, department string) (string, string) {
	course, department = strings.TrimSpace(course), strings.TrimSpace(department)
	courseDept := ""
	if course != "" {
		for _, c := range data.Courses {
			if c.ID == course || c.Name == course {
				course, courseDept = c.Name, c.DepartmentID.Name
				break
			}
		}
	}
	if department == "" {
		return course, courseDept
	}
	for _, d := range data.Departments {
		if d.ID == department {
			return course, d.Name
		}
	}
	return course, department
}
