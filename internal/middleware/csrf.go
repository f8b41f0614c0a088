// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"filippo.io/csrf/gorilla"
)

// CSRFConfig configures cross-site request forgery protection. The
// filippo.io/csrf implementation checks Fetch metadata and Origin headers,
// so no token cookie is involved.
type CSRFConfig struct {
	// AuthKey is a 32-byte key. The session secret is reused.
	AuthKey []byte

	// ErrorHandler runs when validation fails.
	ErrorHandler http.Handler

	// TrustedOrigins are host[:port] values allowed to post cross-origin.
	TrustedOrigins []string
}

// DefaultCSRFConfig trusts the local dev server origins in development.
func DefaultCSRFConfig(authKey []byte, isDev bool, serverAddr string) CSRFConfig {
	cfg := CSRFConfig{AuthKey: authKey}
	if isDev {
		cfg.TrustedOrigins = []string{"localhost:8080", "127.0.0.1:8080"}
		if serverAddr != "" && !strings.HasPrefix(serverAddr, ":") {
			cfg.TrustedOrigins = append(cfg.TrustedOrigins, serverAddr)
		}
	}
	return cfg
}

// CSRF returns the protection middleware.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	opts := []csrf.Option{}

	if cfg.ErrorHandler != nil {
		opts = append(opts, csrf.ErrorHandler(cfg.ErrorHandler))
	} else {
		opts = append(opts, csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)))
	}
	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}

	return csrf.Protect(cfg.AuthKey, opts...)
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	slog.Warn("CSRF validation failed",
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
	)
	http.Error(w, "Forbidden - CSRF validation failed", http.StatusForbidden)
}
