// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/campus-go/internal/apiclient"
	"github.com/olegiv/campus-go/internal/auth"
	"github.com/olegiv/campus-go/internal/middleware"
	"github.com/olegiv/campus-go/internal/model"
	"github.com/olegiv/campus-go/internal/render"
	"github.com/olegiv/campus-go/internal/session"
	"github.com/olegiv/campus-go/internal/workspace"
)

// LoginAPI exchanges credentials for a backend token.
type LoginAPI interface {
	Login(ctx context.Context, email, password string) (apiclient.LoginResult, error)
}

// AuthHandler handles authentication routes.
type AuthHandler struct {
	api             LoginAPI
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	tokens          *session.TokenStore
	loginProtection *middleware.LoginProtection
	workspaces      *workspace.Registry
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(api LoginAPI, renderer *render.Renderer, sm *scs.SessionManager, tokens *session.TokenStore, lp *middleware.LoginProtection, workspaces *workspace.Registry) *AuthHandler {
	return &AuthHandler{
		api:             api,
		renderer:        renderer,
		sessionManager:  sm,
		tokens:          tokens,
		loginProtection: lp,
		workspaces:      workspaces,
	}
}

// LoginForm renders the login page.
// Users holding a valid token are sent on: admins to the dashboard, others home.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if v := auth.Authorize(h.tokens.Token(r.Context()), []string{auth.RoleAdmin}, time.Now()); v.Claims != nil {
		if v.Outcome == auth.Render {
			http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
		return
	}

	renderPage(w, r, h.renderer, "pages/login", pageData(r, h.tokens, "Login", map[string]any{
		"Email": r.URL.Query().Get("email"),
	}))
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectLogin, "Invalid form data")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		flashError(w, r, h.renderer, redirectLogin, "Email and password are required")
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			slog.Warn("login attempt on locked account", "category", model.EventCategoryAuth, "email", email, "remote_addr", r.RemoteAddr)
			flashError(w, r, h.renderer, redirectLogin, fmt.Sprintf("Account temporarily locked. Try again in %s.", formatDuration(remaining)))
			return
		}
	}

	res, err := h.api.Login(r.Context(), email, password)
	if err != nil {
		h.loginFailed(w, r, email, err)
		return
	}

	role := res.Role
	claims, err := auth.Decode(res.Token)
	if err != nil {
		slog.Error("login returned an undecodable token", "category", model.EventCategoryAuth, "email", email, "error", err)
		flashError(w, r, h.renderer, redirectLogin, "Login failed. Please try again.")
		return
	}
	if claims.Role() != "" {
		role = claims.Role()
	}

	if err := h.tokens.SetOnLogin(r.Context(), res.Token, role); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	slog.Info("user logged in", "category", model.EventCategoryAuth, "email", email, "role", role)

	name := res.Name
	if name == "" {
		name = claims.User.Name
	}
	message := "Login successful"
	if name != "" {
		message = "Welcome back, " + name + "!"
	}

	target := RouteRoot
	if role == auth.RoleAdmin {
		target = redirectAdmin
	}
	flashSuccess(w, r, h.renderer, target, message)
}

// loginFailed reports a rejected login. Only credential rejections count
// towards the account lockout; backend outages do not.
func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, email string, err error) {
	if !errors.Is(err, apiclient.ErrClient) {
		slog.Error("login request failed", "category", model.EventCategoryAuth, "email", email, "error", err)
		flashError(w, r, h.renderer, redirectLogin, "Unable to reach the server. Please try again later.")
		return
	}

	slog.Warn("login failed", "category", model.EventCategoryAuth, "email", email, "status", apiclient.StatusOf(err))
	if h.loginProtection != nil {
		if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
			flashError(w, r, h.renderer, redirectLogin, fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(lockDuration)))
			return
		}
		if remaining := h.loginProtection.RemainingAttempts(email); remaining > 0 && remaining <= 3 {
			flashError(w, r, h.renderer, redirectLogin, fmt.Sprintf("Invalid credentials. %d attempts remaining.", remaining))
			return
		}
	}
	flashError(w, r, h.renderer, redirectLogin, apiclient.MessageOf(err, "Invalid credentials"))
}

// Logout clears the token, drops the admin workspace and destroys the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	role := h.tokens.Role(ctx)

	if h.workspaces != nil {
		if key := h.sessionManager.Token(ctx); key != "" {
			h.workspaces.Drop(key)
		}
	}
	h.tokens.Clear(ctx)
	if err := h.sessionManager.Destroy(ctx); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	slog.Info("user logged out", "category", model.EventCategoryAuth, "role", role)
	flashAndRedirect(w, r, h.renderer, RouteRoot, "You have been logged out", render.FlashInfo)
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
