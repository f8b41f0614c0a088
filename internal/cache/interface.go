// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache holds short-lived copies of backend reads so public pages
// do not hit the backend on every request.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value cache. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get returns ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value. A zero ttl means the cache default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	// DeleteByPrefix removes every key that starts with prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error

	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) (bool, error)
	Close() error
}

// StatsProvider is implemented by caches that count hits and misses.
type StatsProvider interface {
	Stats() Stats
	ResetStats()
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Sets    int64   `json:"sets"`
	Items   int     `json:"items"`
	HitRate float64 `json:"hit_rate"`
	Size    int64   `json:"size_bytes,omitempty"`
}

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Error is a cache sentinel error.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found in cache or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)
