// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package workspace

import (
	"sync"
	"time"
)

// Ticket identifies one load of a tab.
type Ticket struct {
	seq uint64
}

// View is a committed point-in-time copy of a tab.
type View[D any] struct {
	State    LoadState
	Data     D
	Filter   Filter
	Err      error
	Seq      uint64
	LoadedAt time.Time
}

// Settled reports whether a load has finished, successfully or not.
func (v View[D]) Settled() bool {
	return v.State == Loaded || v.State == LoadFailed
}

// Tab is one dashboard tab. Loads are numbered; only the most recently
// started load may commit its result.
type Tab[D any] struct {
	mu sync.Mutex

	latest    uint64
	committed uint64
	state     LoadState
	data      D
	filter    Filter
	err       error
	loadedAt  time.Time
}

// Begin starts a load governed by f and returns its ticket.
func (t *Tab[D]) Begin(f Filter) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest++
	t.state = Loading
	t.filter = f
	return Ticket{seq: t.latest}
}

// Commit stores the result of the load tk. A failed load empties the
// collections. It reports false, changing nothing, when a newer load has
// started since tk was issued.
func (t *Tab[D]) Commit(tk Ticket, data D, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tk.seq != t.latest {
		return false
	}

	t.committed = tk.seq
	t.err = err
	t.loadedAt = time.Now()
	if err != nil {
		var zero D
		t.data = zero
		t.state = LoadFailed
		return true
	}
	t.data = data
	t.state = Loaded
	return true
}

// Snapshot returns the tab as last committed.
func (t *Tab[D]) Snapshot() View[D] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return View[D]{
		State:    t.state,
		Data:     t.data,
		Filter:   t.filter,
		Err:      t.err,
		Seq:      t.committed,
		LoadedAt: t.loadedAt,
	}
}

// Filter returns the filter of the latest load.
func (t *Tab[D]) Filter() Filter {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filter
}

// Patch edits the committed data in place. fn reports whether it changed
// anything. Patching a tab that is not Loaded does nothing.
func (t *Tab[D]) Patch(fn func(*D) bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Loaded {
		return false
	}
	return fn(&t.data)
}
