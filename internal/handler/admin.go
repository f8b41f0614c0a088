// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/campus-go/internal/apiclient"
	"github.com/olegiv/campus-go/internal/imaging"
	"github.com/olegiv/campus-go/internal/middleware"
	"github.com/olegiv/campus-go/internal/model"
	"github.com/olegiv/campus-go/internal/render"
	"github.com/olegiv/campus-go/internal/workspace"
)

// PaymentLookup fetches a single payment.
type PaymentLookup interface {
	Payment(ctx context.Context, id string) (model.Payment, error)
}

// AdminConfig holds what the dashboard handlers need.
type AdminConfig struct {
	Service        *workspace.Service
	Workspaces     *workspace.Registry
	SessionManager *scs.SessionManager
	Renderer       *render.Renderer
	Payments       PaymentLookup
	Images         *imaging.Processor
	MaxUpload      int64
	College        string
}

// AdminHandler handles the dashboard tabs. Each admin session has its own
// workspace, keyed by the session token.
type AdminHandler struct {
	svc            *workspace.Service
	workspaces     *workspace.Registry
	sessionManager *scs.SessionManager
	renderer       *render.Renderer
	payments       PaymentLookup
	uploads        uploader
	college        string
	now            func() time.Time
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(cfg AdminConfig) *AdminHandler {
	return &AdminHandler{
		svc:            cfg.Service,
		workspaces:     cfg.Workspaces,
		sessionManager: cfg.SessionManager,
		renderer:       cfg.Renderer,
		payments:       cfg.Payments,
		uploads:        newUploader(cfg.Images, cfg.MaxUpload),
		college:        cfg.College,
		now:            time.Now,
	}
}

// Dashboard opens the first tab.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, redirectAdminContent, http.StatusSeeOther)
}

// workspace returns the dashboard of the requesting session.
func (h *AdminHandler) workspace(r *http.Request) *workspace.Workspace {
	return h.workspaces.Get(h.sessionManager.Token(r.Context()))
}

// render renders an admin page.
func (h *AdminHandler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	renderPageStatus(w, r, h.renderer, status, name, pageData(r, nil, title, data))
}

// loadOK decides how a tab load ends. It reports false when the response
// has already been written: a stale htmx load gets 204 No Content and a
// rejected token goes to the login page. Other failures become a toast
// over the emptied tab.
func (h *AdminHandler) loadOK(w http.ResponseWriter, r *http.Request, err error, failMessage string) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, workspace.ErrStale):
		if middleware.IsHTMX(r) {
			w.WriteHeader(http.StatusNoContent)
			return false
		}
		return true
	case apiclient.StatusOf(err) == http.StatusUnauthorized:
		flashError(w, r, h.renderer, redirectLogin, "Your session has expired. Please log in again.")
		return false
	}
	h.renderer.AddFlash(r, render.FlashError, failMessage)
	return true
}

// ensureLoaded loads a tab that has no committed data yet, so mutations
// that resolve against it work after a restart.
func ensureLoaded[D any](ctx context.Context, t *workspace.Tab[D], load func(context.Context) error) {
	if t.Snapshot().State == workspace.Loaded {
		return
	}
	if err := load(ctx); err != nil && !errors.Is(err, workspace.ErrStale) {
		slog.Debug("tab preload failed", "error", err)
	}
}

// mutationFailed logs a failed mutation that reached the backend.
func mutationFailed(action string, err error) {
	var f *workspace.Failure
	if errors.As(err, &f) && f.Local {
		return
	}
	slog.Warn("admin action failed", "category", model.EventCategoryAdmin, "action", action, "error", err)
}

// mutationDone logs a successful mutation.
func mutationDone(r *http.Request, action, id string) {
	args := []any{"category", model.EventCategoryAdmin, "action", action}
	if id != "" {
		args = append(args, "id", id)
	}
	if claims := middleware.GetClaims(r); claims != nil && claims.User != nil {
		args = append(args, "admin", claims.User.ID)
	}
	slog.Info("admin action", args...)
}
