// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu         sync.RWMutex
	data       map[string]*memoryEntry
	defaultTTL time.Duration
	maxSize    int // 0 = unlimited
	stopCh     chan struct{}
	closed     atomic.Bool

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// MemoryCacheOptions configures the memory cache.
type MemoryCacheOptions struct {
	DefaultTTL      time.Duration
	MaxSize         int           // Maximum number of entries (0 = unlimited)
	CleanupInterval time.Duration // 0 disables background cleanup
}

// NewMemoryCache creates a memory cache.
func NewMemoryCache(opts MemoryCacheOptions) *MemoryCache {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = 5 * time.Minute
	}
	c := &MemoryCache{
		data:       make(map[string]*memoryEntry),
		defaultTTL: opts.DefaultTTL,
		maxSize:    opts.MaxSize,
		stopCh:     make(chan struct{}),
	}

	if opts.CleanupInterval > 0 {
		go c.cleanupLoop(opts.CleanupInterval)
	}

	return c
}

// Get retrieves a copy of the stored value.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}

	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()

	if !ok || entry.expired(time.Now()) {
		if ok {
			c.mu.Lock()
			if cur, still := c.data[key]; still && cur == entry {
				delete(c.data, key)
			}
			c.mu.Unlock()
		}
		c.misses.Add(1)
		return nil, ErrCacheMiss
	}

	c.hits.Add(1)
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

// Set stores a copy of value. When the cache is full, expired entries go
// first and then the entry closest to expiry.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	v := make([]byte, len(value))
	copy(v, value)
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.data[key]; !exists && c.maxSize > 0 && len(c.data) >= c.maxSize {
		c.removeExpiredLocked(now)
		if len(c.data) >= c.maxSize {
			c.evictOneLocked()
		}
	}

	c.data[key] = &memoryEntry{value: v, expiresAt: now.Add(ttl)}
	c.sets.Add(1)
	return nil
}

// Delete removes a key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
	return nil
}

// DeleteByPrefix removes all keys starting with prefix.
func (c *MemoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	c.mu.Lock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	c.mu.Unlock()
	return nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear(_ context.Context) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	c.mu.Lock()
	c.data = make(map[string]*memoryEntry)
	c.mu.Unlock()
	return nil
}

// Has reports whether a live entry exists.
func (c *MemoryCache) Has(_ context.Context, key string) (bool, error) {
	if c.closed.Load() {
		return false, ErrCacheClosed
	}
	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()
	return ok && !entry.expired(time.Now()), nil
}

// Close stops the cleanup goroutine.
func (c *MemoryCache) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
	return nil
}

// Stats returns current counters.
func (c *MemoryCache) Stats() Stats {
	c.mu.RLock()
	items := len(c.data)
	var size int64
	for _, e := range c.data {
		size += int64(len(e.value))
	}
	c.mu.RUnlock()

	hits, misses := c.hits.Load(), c.misses.Load()
	return Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		Items:   items,
		HitRate: hitRate(hits, misses),
		Size:    size,
	}
}

// ResetStats zeroes the counters.
func (c *MemoryCache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.sets.Store(0)
}

func (c *MemoryCache) removeExpiredLocked(now time.Time) {
	for k, e := range c.data {
		if e.expired(now) {
			delete(c.data, k)
		}
	}
}

func (c *MemoryCache) evictOneLocked() {
	var victim string
	var soonest time.Time
	for k, e := range c.data {
		if victim == "" || e.expiresAt.Before(soonest) {
			victim, soonest = k, e.expiresAt
		}
	}
	if victim != "" {
		delete(c.data, victim)
	}
}

func (c *MemoryCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.removeExpiredLocked(time.Now())
			c.mu.Unlock()
		case <-c.stopCh:
			return
		}
	}
}

var (
	_ Cache         = (*MemoryCache)(nil)
	_ StatsProvider = (*MemoryCache)(nil)
)
