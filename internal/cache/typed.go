// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Generation counts invalidations of a key space. A load that was started
// before the latest Bump is returned to its callers but not stored.
type Generation struct {
	n atomic.Uint64
}

// Bump marks every in-flight load as stale.
func (g *Generation) Bump() {
	g.n.Add(1)
}

func (g *Generation) current() uint64 {
	if g == nil {
		return 0
	}
	return g.n.Load()
}

// TypedCache stores JSON-encoded values of one type. Concurrent misses for
// the same key share a single load.
type TypedCache[T any] struct {
	cache      Cache
	defaultTTL time.Duration
	group      singleflight.Group
	gen        *Generation
}

// NewTypedCache wraps cache.
func NewTypedCache[T any](cache Cache, defaultTTL time.Duration) *TypedCache[T] {
	return &TypedCache[T]{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// WithGeneration ties the cache to gen. Call it before first use.
func (c *TypedCache[T]) WithGeneration(gen *Generation) *TypedCache[T] {
	c.gen = gen
	return c
}

// Get returns the value and true on a hit. Undecodable entries count as misses.
func (c *TypedCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var value T
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		return value, false
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, false
	}
	return value, true
}

// Set stores a value with the default TTL.
func (c *TypedCache[T]) Set(ctx context.Context, key string, value T) error {
	return c.SetWithTTL(ctx, key, value, c.defaultTTL)
}

// SetWithTTL stores a value with a custom TTL.
func (c *TypedCache[T]) SetWithTTL(ctx context.Context, key string, value T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, key, data, ttl)
}

// Delete removes a key from the cache.
func (c *TypedCache[T]) Delete(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, key)
}

// GetOrSet returns the cached value or loads, stores and returns it.
// Load errors are returned and nothing is stored. The shared load is not
// cancelled when the caller that started it goes away.
func (c *TypedCache[T]) GetOrSet(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if value, ok := c.Get(ctx, key); ok {
		return value, nil
	}

	gen := c.gen.current()
	v, err, _ := c.group.Do(key+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		value, err := load(loadCtx)
		if err != nil {
			return value, err
		}
		if c.gen.current() == gen {
			// A failed store still returns a good value.
			_ = c.Set(loadCtx, key, value)
		}
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
