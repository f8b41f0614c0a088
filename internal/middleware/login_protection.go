// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/olegiv/campus-go/internal/model"
)

// LoginProtection combines per-IP rate limiting of login posts with
// per-email lockout after repeated failures. The backend stays the
// authority on credentials; this only throttles the site's login form.
type LoginProtection struct {
	ipLimiters *limiterCache[string]

	failedAttempts map[string]*loginAttempt
	attemptsMu     sync.RWMutex

	maxFailedAttempts int
	lockoutDuration   time.Duration // doubles with each lockout
	attemptWindow     time.Duration
}

type loginAttempt struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	IPRateLimit       float64 // requests per second per IP
	IPBurst           int
	MaxFailedAttempts int
	LockoutDuration   time.Duration
	AttemptWindow     time.Duration
}

// DefaultLoginProtectionConfig returns sensible defaults.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates a login protection instance. Zero config
// fields take the defaults.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	def := DefaultLoginProtectionConfig()
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = def.IPRateLimit
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}

	return &LoginProtection{
		ipLimiters:        newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		failedAttempts:    make(map[string]*loginAttempt),
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsAccountLocked reports whether email is locked and for how long.
func (lp *LoginProtection) IsAccountLocked(email string) (bool, time.Duration) {
	lp.attemptsMu.RLock()
	attempt, exists := lp.failedAttempts[normalizeEmail(email)]
	lp.attemptsMu.RUnlock()

	if !exists || !time.Now().Before(attempt.lockedUntil) {
		return false, 0
	}
	return true, time.Until(attempt.lockedUntil)
}

// RecordFailedAttempt counts a failure and reports whether it locked the account.
func (lp *LoginProtection) RecordFailedAttempt(email string) (bool, time.Duration) {
	email = normalizeEmail(email)

	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()

	now := time.Now()
	attempt, exists := lp.failedAttempts[email]
	if !exists {
		attempt = &loginAttempt{firstFailed: now}
		lp.failedAttempts[email] = attempt
	} else if now.Sub(attempt.firstFailed) > lp.attemptWindow {
		attempt.count = 0
		attempt.firstFailed = now
	}

	attempt.count++
	if attempt.count < lp.maxFailedAttempts {
		return false, 0
	}

	lockDuration := lp.lockoutDuration
	for i := 0; i < attempt.lockouts; i++ {
		lockDuration *= 2
		if lockDuration > 24*time.Hour {
			lockDuration = 24 * time.Hour
			break
		}
	}

	attempt.lockedUntil = now.Add(lockDuration)
	attempt.lockouts++
	attempt.count = 0

	slog.Warn("login locked after repeated failures",
		"category", model.EventCategoryAuth,
		"email", email,
		"lockouts", attempt.lockouts,
		"duration", lockDuration,
	)
	return true, lockDuration
}

// RecordSuccessfulLogin clears failure tracking for email.
func (lp *LoginProtection) RecordSuccessfulLogin(email string) {
	lp.attemptsMu.Lock()
	delete(lp.failedAttempts, normalizeEmail(email))
	lp.attemptsMu.Unlock()
}

// RemainingAttempts returns how many failures are left before lockout.
func (lp *LoginProtection) RemainingAttempts(email string) int {
	lp.attemptsMu.RLock()
	attempt, exists := lp.failedAttempts[normalizeEmail(email)]
	lp.attemptsMu.RUnlock()

	if !exists || time.Since(attempt.firstFailed) > lp.attemptWindow {
		return lp.maxFailedAttempts
	}
	return max(lp.maxFailedAttempts-attempt.count, 0)
}

// Run prunes stale entries every interval until ctx is done.
func (lp *LoginProtection) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lp.cleanupStaleEntries()
		case <-ctx.Done():
			return
		}
	}
}

func (lp *LoginProtection) cleanupStaleEntries() {
	now := time.Now()

	if lp.ipLimiters.clearIfExceeds(10000) {
		slog.Info("cleared login rate limiters due to size")
	}

	lp.attemptsMu.Lock()
	for email, attempt := range lp.failedAttempts {
		if now.After(attempt.lockedUntil) && now.Sub(attempt.firstFailed) > lp.attemptWindow {
			delete(lp.failedAttempts, email)
		}
	}
	lp.attemptsMu.Unlock()
}

// Middleware rate limits POSTs per client IP.
func (lp *LoginProtection) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		ip := getClientIP(r)
		if !lp.ipLimiters.get(ip).Allow() {
			slog.Warn("login rate limit exceeded", "category", model.EventCategoryAuth, "ip", ip)
			http.Error(w, "Too many login attempts. Please wait a moment and try again.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
