// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/campus-go/internal/auth"
	"github.com/olegiv/campus-go/internal/middleware"
	"github.com/olegiv/campus-go/internal/render"
	"github.com/olegiv/campus-go/internal/session"
	"github.com/olegiv/campus-go/internal/workspace"
)

// pageData fills the template data common to every page.
func pageData(r *http.Request, tokens *session.TokenStore, title string, data any) render.TemplateData {
	td := render.TemplateData{
		Title:    title,
		SiteName: middleware.GetSiteName(r),
		Data:     data,
	}
	if claims := middleware.GetClaims(r); claims != nil {
		td.LoggedIn = true
		td.IsAdmin = claims.Role() == auth.RoleAdmin
		return td
	}
	if tokens != nil && tokens.HasToken(r.Context()) {
		td.LoggedIn = true
		td.IsAdmin = tokens.Role(r.Context()) == auth.RoleAdmin
	}
	return td
}

// flashAndRedirect sets a flash message and redirects to the given URL.
// htmx requests get an HX-Redirect instead of a 303.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.AddFlash(r, messageType, message)
	middleware.Redirect(w, r, url)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashError)
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashSuccess)
}

// flashOutcome queues the outcome's message and any warnings.
func flashOutcome(r *http.Request, renderer *render.Renderer, out workspace.Outcome) {
	renderer.AddFlash(r, render.FlashSuccess, out.Message)
	for _, warning := range out.Warnings {
		renderer.AddFlash(r, render.FlashWarning, warning)
	}
}

// failureMessage returns what to tell the user about a failed mutation.
func failureMessage(err error) string {
	var f *workspace.Failure
	if errors.As(err, &f) && f.Message != "" {
		return f.Message
	}
	return "Something went wrong. Please try again."
}

// failureFields returns per-field messages of a validation failure.
func failureFields(err error) map[string]string {
	var f *workspace.Failure
	if errors.As(err, &f) {
		return f.Fields
	}
	return nil
}

// renderPage renders a full page and logs template errors.
func renderPage(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, name string, data render.TemplateData) {
	renderPageStatus(w, r, renderer, http.StatusOK, name, data)
}

func renderPageStatus(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, status int, name string, data render.TemplateData) {
	if err := renderer.RenderStatus(w, r, status, name, data); err != nil {
		logAndInternalError(w, "render error", "error", err, "template", name,
			"path", middleware.GetRequestPath(r.Context()))
	}
}

// renderError renders the error page.
func renderError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, tokens *session.TokenStore, status int, message string) {
	td := pageData(r, tokens, http.StatusText(status), map[string]any{
		"Status":  status,
		"Message": message,
	})
	renderPageStatus(w, r, renderer, status, "pages/error", td)
}

// logAndHTTPError logs an error and writes an HTTP error response.
func logAndHTTPError(w http.ResponseWriter, message string, statusCode int, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	http.Error(w, message, statusCode)
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	logAndHTTPError(w, "Internal Server Error", http.StatusInternalServerError, logMsg, args...)
}

// writeFile sends a generated download.
func writeFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}
