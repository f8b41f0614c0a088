// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/campus-go/internal/cache"
	"github.com/olegiv/campus-go/internal/scheduler"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubJobs []scheduler.JobInfo

func (j stubJobs) List() []scheduler.JobInfo { return j }

type stubCounter int

func (c stubCounter) Len() int { return int(c) }

func decodeHealth(t *testing.T, w *httptest.ResponseRecorder) HealthStatus {
	t.Helper()
	var status HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return status
}

func TestHealthHandler_Health(t *testing.T) {
	jobs := stubJobs{{Name: "sweep_workspaces", Schedule: "*/10 * * * *"}}
	h := NewHealthHandler(stubPinger{}, cache.Info{Backend: "memory"}, jobs, stubCounter(2))

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	status := decodeHealth(t, w)
	if status.Status != "healthy" {
		t.Errorf("expected status healthy, got %s", status.Status)
	}
	if status.Checks["backend"].Status != "healthy" {
		t.Errorf("expected backend healthy, got %+v", status.Checks["backend"])
	}
	if status.Checks["cache"].Message != "memory" {
		t.Errorf("expected cache message memory, got %q", status.Checks["cache"].Message)
	}
	if len(status.Jobs) != 1 || status.Jobs[0].Name != "sweep_workspaces" {
		t.Errorf("unexpected jobs: %+v", status.Jobs)
	}
	if status.Workspaces == nil || *status.Workspaces != 2 {
		t.Errorf("expected 2 workspaces, got %v", status.Workspaces)
	}
}

func TestHealthHandler_Health_BackendDown(t *testing.T) {
	h := NewHealthHandler(stubPinger{err: errors.New("connection refused")}, cache.Info{Backend: "memory"}, nil, nil)

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
	status := decodeHealth(t, w)
	if status.Status != "degraded" {
		t.Errorf("expected status degraded, got %s", status.Status)
	}
	if got := status.Checks["backend"]; got.Status != "unhealthy" || got.Message != "backend unreachable" {
		t.Errorf("unexpected backend check: %+v", got)
	}
	if status.Workspaces != nil || status.Jobs != nil {
		t.Error("jobs and workspaces should be omitted when not configured")
	}
}

func TestHealthHandler_Health_CacheFallback(t *testing.T) {
	h := NewHealthHandler(stubPinger{}, cache.Info{Backend: "memory", Fallback: true}, nil, nil)

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	// A cache fallback is reported but does not fail the check.
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	status := decodeHealth(t, w)
	if got := status.Checks["cache"]; got.Status != "degraded" || got.Message != "memory (redis unavailable)" {
		t.Errorf("unexpected cache check: %+v", got)
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler(stubPinger{err: errors.New("down")}, cache.Info{}, nil, nil)

	w := httptest.NewRecorder()
	h.Liveness(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "alive" {
		t.Errorf("expected alive, got %q", body["status"])
	}
}

func TestHealth_OverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.backend.HandleFunc("HEAD /", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	resp, body := env.get("/health")

	assertStatus(t, resp.StatusCode, http.StatusOK)
	assertContains(t, body, `"status":"healthy"`, `"workspaces":0`)
}
