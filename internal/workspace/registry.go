// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package workspace

import (
	"sync"
	"sync/atomic"
	"time"
)

// Workspace is one admin session's dashboard.
type Workspace struct {
	Content      Tab[ContentData]
	Users        Tab[UsersData]
	Courses      Tab[CoursesData]
	Admissions   Tab[AdmissionsData]
	Testimonials Tab[TestimonialsData]
	Payments     Tab[PaymentsData]
	IDCards      Tab[IDCardData]

	lastUsed atomic.Int64
}

func (w *Workspace) touch(now time.Time) {
	w.lastUsed.Store(now.UnixNano())
}

// Registry maps session keys to workspaces. Idle workspaces are removed
// by Sweep.
type Registry struct {
	mu      sync.Mutex
	spaces  map[string]*Workspace
	idleTTL time.Duration
	now     func() time.Time
}

// NewRegistry creates a registry whose workspaces expire after idleTTL
// without use.
func NewRegistry(idleTTL time.Duration) *Registry {
	return &Registry{
		spaces:  make(map[string]*Workspace),
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Get returns the workspace for key, creating it on first use.
func (r *Registry) Get(key string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	ws, ok := r.spaces[key]
	if !ok {
		ws = &Workspace{}
		r.spaces[key] = ws
	}
	ws.touch(r.now())
	return ws
}

// Drop forgets the workspace for key.
func (r *Registry) Drop(key string) {
	r.mu.Lock()
	delete(r.spaces, key)
	r.mu.Unlock()
}

// Sweep removes workspaces idle for longer than the TTL and returns how
// many were removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL).UnixNano()

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for key, ws := range r.spaces {
		if ws.lastUsed.Load() < cutoff {
			delete(r.spaces, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.spaces)
}
