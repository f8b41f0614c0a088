// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/olegiv/campus-go/internal/cache"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/courses/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/courses/"+id, nil))
	}

	got := testutil.ToFloat64(m.requestTotal.WithLabelValues(http.MethodGet, "/courses/{id}", "418"))
	if got != 3 {
		t.Errorf("requests = %v, want 3", got)
	}
}

func TestObserveAPICall(t *testing.T) {
	m := New()
	m.ObserveAPICall("public.getCourses", 200, 10*time.Millisecond)
	m.ObserveAPICall("public.getCourses", 0, time.Second)

	if got := testutil.ToFloat64(m.apiTotal.WithLabelValues("public.getCourses", "200")); got != 1 {
		t.Errorf("200 calls = %v", got)
	}
	if got := testutil.ToFloat64(m.apiTotal.WithLabelValues("public.getCourses", "network")); got != 1 {
		t.Errorf("network calls = %v", got)
	}
}

func TestRegisterCache(t *testing.T) {
	m := New()
	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = mem.Close() }()
	m.RegisterCache(mem)

	_, _ = mem.Get(t.Context(), "missing")

	body := scrape(t, m)
	if !strings.Contains(body, "campus_cache_misses_total 1") {
		t.Errorf("scrape missing cache counter:\n%s", body)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveAPICall("x", 200, time.Millisecond)
	m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
	m.ObserveWorkspaceLoad("content", "committed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	if h := m.Middleware(next); h == nil {
		t.Error("nil metrics middleware must pass through")
	}
}
