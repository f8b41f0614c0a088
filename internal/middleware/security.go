// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// SecurityHeadersConfig holds configuration for security headers.
type SecurityHeadersConfig struct {
	// IsDevelopment disables HSTS.
	IsDevelopment bool

	ContentSecurityPolicy string

	// HSTSMaxAge in seconds; 0 disables HSTS.
	HSTSMaxAge            int
	HSTSIncludeSubDomains bool

	// FrameOptions is "DENY", "SAMEORIGIN" or empty to omit.
	FrameOptions      string
	ReferrerPolicy    string
	PermissionsPolicy string

	// ExcludePaths are path prefixes that skip the headers.
	ExcludePaths []string
}

// cspDirectives lists directives in output order.
var cspDirectives = []string{
	"default-src", "script-src", "style-src", "img-src", "font-src",
	"connect-src", "frame-src", "object-src", "base-uri", "form-action",
	"frame-ancestors",
}

// DefaultSecurityHeadersConfig returns the site policy. Images may come
// from any https origin because the backend stores uploads on a CDN.
// imageOrigins adds extra http origins (the backend in development).
func DefaultSecurityHeadersConfig(isDev bool, imageOrigins ...string) SecurityHeadersConfig {
	img := "'self' data: blob: https:"
	for _, o := range imageOrigins {
		if o != "" {
			img += " " + o
		}
	}

	directives := map[string]string{
		"default-src":     "'self'",
		"script-src":      "'self' https://unpkg.com",
		"style-src":       "'self' 'unsafe-inline'",
		"img-src":         img,
		"font-src":        "'self' data:",
		"connect-src":     "'self'",
		"frame-src":       "'self' https://docs.google.com https://forms.gle",
		"object-src":      "'none'",
		"base-uri":        "'self'",
		"form-action":     "'self'",
		"frame-ancestors": "'self'",
	}

	return SecurityHeadersConfig{
		IsDevelopment:         isDev,
		ContentSecurityPolicy: buildCSP(directives),
		HSTSMaxAge:            31536000,
		HSTSIncludeSubDomains: !isDev,
		FrameOptions:          "SAMEORIGIN",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		PermissionsPolicy:     "camera=(), geolocation=(), microphone=(), payment=(), usb=(), browsing-topics=()",
	}
}

func buildCSP(directives map[string]string) string {
	parts := make([]string, 0, len(directives))
	for _, key := range cspDirectives {
		if value, ok := directives[key]; ok {
			parts = append(parts, key+" "+value)
		}
	}
	return strings.Join(parts, "; ")
}

// SecurityHeaders adds the configured headers to every response.
func SecurityHeaders(cfg SecurityHeadersConfig) func(http.Handler) http.Handler {
	hsts := ""
	if !cfg.IsDevelopment && cfg.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.Itoa(cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubDomains {
			hsts += "; includeSubDomains"
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range cfg.ExcludePaths {
				if strings.HasPrefix(r.URL.Path, p) {
					next.ServeHTTP(w, r)
					return
				}
			}

			h := w.Header()
			if cfg.ContentSecurityPolicy != "" {
				h.Set("Content-Security-Policy", cfg.ContentSecurityPolicy)
			}
			if hsts != "" {
				h.Set("Strict-Transport-Security", hsts)
			}
			if cfg.FrameOptions != "" {
				h.Set("X-Frame-Options", cfg.FrameOptions)
			}
			h.Set("X-Content-Type-Options", "nosniff")
			if cfg.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", cfg.ReferrerPolicy)
			}
			if cfg.PermissionsPolicy != "" {
				h.Set("Permissions-Policy", cfg.PermissionsPolicy)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// StaticCache sets Cache-Control for static assets. Requests carrying a
// version query (?v=...) are marked immutable.
func StaticCache(maxAge int) func(http.Handler) http.Handler {
	value := "public, max-age=" + strconv.Itoa(maxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Has("v") {
				w.Header().Set("Cache-Control", value+", immutable")
			} else {
				w.Header().Set("Cache-Control", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
