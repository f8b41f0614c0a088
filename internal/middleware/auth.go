// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for route guarding, request
// context, rate limiting and response hardening.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/campus-go/internal/auth"
	"github.com/olegiv/campus-go/internal/model"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys set by this package.
const (
	ContextKeyClaims      ContextKey = "claims"
	ContextKeySiteName    ContextKey = "site_name"
	ContextKeyRequestPath ContextKey = "request_path"
)

// Paths the guard redirects to.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// TokenStore is the part of the session token store the guard needs.
type TokenStore interface {
	Token(ctx context.Context) string
	Clear(ctx context.Context)
}

// now is swapped in tests.
var now = time.Now

// RequireRoles guards a route group. Requests without a usable token go to
// the login page (and an undecodable or expired token is cleared); tokens
// whose role is outside roles go to the home page.
func RequireRoles(tokens TokenStore, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v := auth.Authorize(tokens.Token(r.Context()), roles, now())

			switch v.Outcome {
			case auth.Render:
				ctx := context.WithValue(r.Context(), ContextKeyClaims, v.Claims)
				next.ServeHTTP(w, r.WithContext(ctx))
				return

			case auth.RedirectLogin:
				if v.ClearToken {
					tokens.Clear(r.Context())
					slog.Warn("stored token rejected",
						"category", model.EventCategoryAuth,
						"reason", v.Reason,
						"path", r.URL.Path,
					)
				}
				Redirect(w, r, LoginPath)

			case auth.RedirectHome:
				slog.Warn("access denied",
					"category", model.EventCategoryAuth,
					"role", v.Claims.Role(),
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				Redirect(w, r, HomePath)
			}
		})
	}
}

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// Redirect sends the browser to url. htmx requests get an HX-Redirect
// header so the whole page navigates instead of swapping a fragment.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if IsHTMX(r) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// GetClaims returns the claims the guard decoded, or nil outside guarded routes.
func GetClaims(r *http.Request) *auth.Claims {
	c, _ := r.Context().Value(ContextKeyClaims).(*auth.Claims)
	return c
}

// SiteName stores the configured college name in the request context.
func SiteName(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ContextKeySiteName, name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSiteName returns the college name, or "Campus" when unset.
func GetSiteName(r *http.Request) string {
	name, ok := r.Context().Value(ContextKeySiteName).(string)
	if !ok || name == "" {
		return "Campus"
	}
	return name
}

// RequestPath stores the request path in the context for error logs.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, _ := ctx.Value(ContextKeyRequestPath).(string)
	return path
}
