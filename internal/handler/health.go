// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/olegiv/campus-go/internal/cache"
	"github.com/olegiv/campus-go/internal/scheduler"
)

// pingTimeout bounds the backend reachability check.
const pingTimeout = 3 * time.Second

// BackendPinger checks that the backend answers.
type BackendPinger interface {
	Ping(ctx context.Context) error
}

// JobLister reports scheduled jobs.
type JobLister interface {
	List() []scheduler.JobInfo
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	backend    BackendPinger
	cache      cache.Info
	jobs       JobLister
	workspaces interface{ Len() int }
	startTime  time.Time
}

// NewHealthHandler creates a new health handler. jobs and workspaces may be nil.
func NewHealthHandler(backend BackendPinger, cacheInfo cache.Info, jobs JobLister, workspaces interface{ Len() int }) *HealthHandler {
	return &HealthHandler{
		backend:    backend,
		cache:      cacheInfo,
		jobs:       jobs,
		workspaces: workspaces,
		startTime:  time.Now(),
	}
}

// HealthStatus represents the overall health status.
type HealthStatus struct {
	Status     string              `json:"status"`
	Timestamp  time.Time           `json:"timestamp"`
	Uptime     string              `json:"uptime"`
	Checks     map[string]Check    `json:"checks"`
	Jobs       []scheduler.JobInfo `json:"jobs,omitempty"`
	Workspaces *int                `json:"workspaces,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Health handles GET /health. A backend that cannot be reached makes the
// service "degraded" with a 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	backend := h.checkBackend(r.Context())

	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks: map[string]Check{
			"backend": backend,
			"cache":   h.checkCache(),
		},
	}
	if h.jobs != nil {
		status.Jobs = h.jobs.List()
	}
	if h.workspaces != nil {
		n := h.workspaces.Len()
		status.Workspaces = &n
	}

	code := http.StatusOK
	if backend.Status != "healthy" {
		status.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// Liveness handles GET /health/live - simple liveness check.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (h *HealthHandler) checkBackend(ctx context.Context) Check {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	if err := h.backend.Ping(ctx); err != nil {
		return Check{Status: "unhealthy", Message: "backend unreachable", Latency: time.Since(start).Round(time.Millisecond).String()}
	}
	return Check{Status: "healthy", Latency: time.Since(start).Round(time.Millisecond).String()}
}

func (h *HealthHandler) checkCache() Check {
	c := Check{Status: "healthy", Message: h.cache.Backend}
	if h.cache.Fallback {
		c.Status = "degraded"
		c.Message = h.cache.Backend + " (redis unavailable)"
	}
	return c
}
