// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the site's background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a named unit of background work.
type Job struct {
	Name        string
	Description string
	Schedule    string
	Run         func(ctx context.Context) error
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Schedule    string    `json:"schedule"`
	LastRun     time.Time `json:"last_run,omitzero"`
	NextRun     time.Time `json:"next_run,omitzero"`
	LastError   string    `json:"last_error,omitempty"`
}

type registeredJob struct {
	job     Job
	entryID cron.EntryID

	mu      sync.Mutex
	lastRun time.Time
	lastErr error
}

// Scheduler wraps a cron instance. A job that is still running when its
// next tick arrives skips that tick.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.RWMutex
	jobs map[string]*registeredJob
}

// New creates a scheduler. Each run gets a context bounded by timeout.
func New(logger *slog.Logger, timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))),
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
		logger:  logger,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(map[string]*registeredJob),
	}
}

// Add registers a job. Names must be unique and schedules must be valid
// five-field cron expressions or descriptors like "@daily".
func (s *Scheduler) Add(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("scheduler: job needs a name and a run function")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("scheduler: job %q already registered", job.Name)
	}

	rj := &registeredJob{job: job}
	id, err := s.cron.AddFunc(job.Schedule, func() { s.run(rj) })
	if err != nil {
		return fmt.Errorf("scheduler: invalid schedule %q for %s: %w", job.Schedule, job.Name, err)
	}
	rj.entryID = id
	s.jobs[job.Name] = rj
	return nil
}

func (s *Scheduler) run(rj *registeredJob) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return rj.job.Run(ctx)
	}()

	rj.mu.Lock()
	rj.lastRun = start
	rj.lastErr = err
	rj.mu.Unlock()

	if err != nil {
		s.logger.Error("scheduled job failed", "category", "system", "job", rj.job.Name, "error", err)
		return
	}
	s.logger.Debug("scheduled job finished", "job", rj.job.Name, "duration", time.Since(start))
}

// TriggerNow runs a job immediately in the calling goroutine.
func (s *Scheduler) TriggerNow(name string) error {
	s.mu.RLock()
	rj, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("scheduler: job %q not found", name)
	}
	s.run(rj)

	rj.mu.Lock()
	defer rj.mu.Unlock()
	return rj.lastErr
}

// List returns every job sorted by name.
func (s *Scheduler) List() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for _, rj := range s.jobs {
		info := JobInfo{
			Name:        rj.job.Name,
			Description: rj.job.Description,
			Schedule:    rj.job.Schedule,
			NextRun:     s.cron.Entry(rj.entryID).Next,
		}
		rj.mu.Lock()
		info.LastRun = rj.lastRun
		if rj.lastErr != nil {
			info.LastError = rj.lastErr.Error()
		}
		rj.mu.Unlock()
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Start begins running jobs on their schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
