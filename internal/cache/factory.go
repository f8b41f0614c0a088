// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"log/slog"
	"net/url"
	"time"
)

// Config selects and sizes the cache backend.
type Config struct {
	// RedisURL selects Redis when set; otherwise memory is used.
	RedisURL string
	Prefix   string

	DefaultTTL      time.Duration
	MaxSize         int
	CleanupInterval time.Duration

	// FallbackToMemory keeps the app running when Redis cannot be reached.
	FallbackToMemory bool
}

// Info describes the backend that New actually built.
type Info struct {
	Backend  string // "memory" or "redis"
	Fallback bool   // Redis was requested but memory is used
	Error    error  // the Redis error that forced the fallback
}

// New builds the configured cache.
func New(cfg Config) (Cache, Info, error) {
	if cfg.RedisURL != "" {
		rc, err := NewRedisCacheFromURL(cfg.RedisURL, cfg.Prefix, cfg.DefaultTTL)
		if err == nil {
			return rc, Info{Backend: "redis"}, nil
		}
		if !cfg.FallbackToMemory {
			return nil, Info{Backend: "redis", Error: err}, err
		}
		slog.Warn("redis unavailable, using memory cache",
			"category", "cache",
			"url", SanitizeRedisURL(cfg.RedisURL),
			"error", err,
		)
		return newMemory(cfg), Info{Backend: "memory", Fallback: true, Error: err}, nil
	}
	return newMemory(cfg), Info{Backend: "memory"}, nil
}

func newMemory(cfg Config) *MemoryCache {
	interval := cfg.CleanupInterval
	if interval == 0 {
		interval = time.Minute
	}
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: interval,
	})
}

// SanitizeRedisURL masks the password of a Redis URL for logging.
func SanitizeRedisURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[invalid URL]"
	}
	if u.User == nil {
		return u.String()
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
