// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics exposes Prometheus instrumentation for the site and for
// its calls to the backend API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olegiv/campus-go/internal/cache"
)

// Metrics owns a private registry and the collectors registered on it.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	apiDuration     *prometheus.HistogramVec
	apiTotal        *prometheus.CounterVec
	workspaceLoads  *prometheus.CounterVec
}

// New registers the collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campus_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campus_backend_call_duration_seconds",
		Help:    "Duration of backend API calls in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"op", "status"})

	apiTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_backend_calls_total",
		Help: "Total number of backend API calls",
	}, []string{"op", "status"})

	workspaceLoads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_workspace_loads_total",
		Help: "Admin tab loads by outcome",
	}, []string{"tab", "outcome"})

	registry.MustRegister(
		requestDuration, requestTotal,
		apiDuration, apiTotal,
		workspaceLoads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		apiDuration:     apiDuration,
		apiTotal:        apiTotal,
		workspaceLoads:  workspaceLoads,
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	s := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, route, s).Observe(d.Seconds())
	m.requestTotal.WithLabelValues(method, route, s).Inc()
}

// ObserveAPICall records one backend call. Status 0 is reported as "network".
func (m *Metrics) ObserveAPICall(op string, status int, d time.Duration) {
	if m == nil {
		return
	}
	s := "network"
	if status > 0 {
		s = strconv.Itoa(status)
	}
	m.apiDuration.WithLabelValues(op, s).Observe(d.Seconds())
	m.apiTotal.WithLabelValues(op, s).Inc()
}

// ObserveWorkspaceLoad counts an admin tab load: "committed", "stale" or "failed".
func (m *Metrics) ObserveWorkspaceLoad(tab, outcome string) {
	if m == nil {
		return
	}
	m.workspaceLoads.WithLabelValues(tab, outcome).Inc()
}

// RegisterCache exposes hit and miss counters of a cache that keeps them.
func (m *Metrics) RegisterCache(sp cache.StatsProvider) {
	if m == nil || sp == nil {
		return
	}
	m.registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "campus_cache_hits_total",
			Help: "Total cache hits",
		}, func() float64 { return float64(sp.Stats().Hits) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "campus_cache_misses_total",
			Help: "Total cache misses",
		}, func() float64 { return float64(sp.Stats().Misses) }),
	)
}

// RegisterGauge exposes a value computed at scrape time.
func (m *Metrics) RegisterGauge(name, help string, fn func() float64) {
	if m == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, fn))
}

// Middleware records request metrics labelled by chi route pattern so
// path parameters do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.ObserveHTTPRequest(r.Method, route, status, time.Since(start))
	})
}
