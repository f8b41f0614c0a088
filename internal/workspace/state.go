// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package workspace holds the admin dashboard's per-session tab state: one
// load lifecycle per tab, a tagged form state per CRUD workflow, and the
// service that loads and mutates backend data on behalf of the tabs.
package workspace

import "github.com/olegiv/campus-go/internal/model"

// LoadState is a tab's load lifecycle.
type LoadState int

const (
	Idle LoadState = iota
	Loading
	Loaded
	LoadFailed
)

func (s LoadState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case LoadFailed:
		return "load_failed"
	}
	return "unknown"
}

// ContentPageSize is the admin content listing page size.
const ContentPageSize = 10

// Filter is what governs a tab's load. Only the content tab uses it.
type Filter struct {
	ContentType model.ContentType // "" means all types
	Page        int
}

// Normalize clamps Page to 1 and drops unknown content types.
func (f Filter) Normalize() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.ContentType != "" && !f.ContentType.Valid() {
		f.ContentType = ""
	}
	return f
}

// Tab names, used for metrics and logs.
const (
	TabContent      = "content"
	TabUsers        = "users"
	TabCourses      = "courses"
	TabAdmissions   = "admissions"
	TabTestimonials = "testimonials"
	TabPayments     = "payments"
	TabIDCards      = "id_cards"
)
