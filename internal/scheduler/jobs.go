// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Job names.
const (
	JobWarmCache       = "warm_cache"
	JobSweepWorkspaces = "sweep_workspaces"
	JobPurgeEvents     = "purge_events"
	JobPruneLimiters   = "prune_limiters"
)

// WarmCache reloads the public pages' data into the cache.
func WarmCache(schedule string, warm func(context.Context) error) Job {
	return Job{
		Name:        JobWarmCache,
		Description: "Load public page data into the cache",
		Schedule:    schedule,
		Run:         warm,
	}
}

// Sweeper drops idle entries and reports how many went.
type Sweeper interface {
	Sweep() int
}

// SweepWorkspaces drops admin workspaces nobody has touched lately.
func SweepWorkspaces(s Sweeper, logger *slog.Logger) Job {
	return Job{
		Name:        JobSweepWorkspaces,
		Description: "Drop idle admin workspaces",
		Schedule:    "*/10 * * * *",
		Run: func(context.Context) error {
			if n := s.Sweep(); n > 0 {
				logger.Info("swept idle workspaces", "count", n)
			}
			return nil
		},
	}
}

// EventPurger deletes stored events older than a cutoff.
type EventPurger interface {
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PurgeEvents deletes logged events older than retention, once a day.
func PurgeEvents(p EventPurger, retention time.Duration, now func() time.Time, logger *slog.Logger) Job {
	return Job{
		Name:        JobPurgeEvents,
		Description: "Delete logged events past retention",
		Schedule:    "@daily",
		Run: func(ctx context.Context) error {
			n, err := p.DeleteEventsBefore(ctx, now().Add(-retention))
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("purged old events", "count", n)
			}
			return nil
		},
	}
}

// Pruner trims a per-client limiter table.
type Pruner interface {
	Prune(maxSize int)
}

// PruneLimiters keeps the global rate limiter's client table bounded.
func PruneLimiters(p Pruner, maxSize int) Job {
	return Job{
		Name:        JobPruneLimiters,
		Description: "Bound the rate limiter client table",
		Schedule:    "@every 5m",
		Run: func(context.Context) error {
			p.Prune(maxSize)
			return nil
		},
	}
}
