// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strings"
)

// StripTrailingSlash sends GET and HEAD requests for "/x/" to "/x" with a
// 301. Other methods are rewritten in place so form posts keep their body.
func StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/" || !strings.HasSuffix(path, "/") {
			next.ServeHTTP(w, r)
			return
		}

		// Leading slashes collapse so "//host/" cannot become an
		// off-site redirect.
		trimmed := "/" + strings.Trim(path, "/")

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			r.URL.Path = trimmed
			r.URL.RawPath = ""
			next.ServeHTTP(w, r)
			return
		}

		target := trimmed
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusMovedPermanently)
	})
}
