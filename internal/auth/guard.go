// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"slices"
	"time"
)

// Outcome is the guard's decision for one navigation.
type Outcome int

const (
	// Render lets the request through.
	Render Outcome = iota
	// RedirectLogin sends the browser to the login page.
	RedirectLogin
	// RedirectHome sends the browser to the home page.
	RedirectHome
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	}
	return "unknown"
}

// ErrNoToken is the reason reported when no token is stored.
var ErrNoToken = errors.New("auth: no token")

// ErrRoleNotAllowed is the reason reported for a valid token whose role is
// outside the view's role set.
var ErrRoleNotAllowed = errors.New("auth: role not allowed")

// Verdict is what the guard decided and whether the stored token must go.
type Verdict struct {
	Outcome    Outcome
	ClearToken bool
	Claims     *Claims
	Reason     error
}

// Authorize decides whether a request holding token may render a view
// restricted to allowed roles.
//
//	no token                -> login
//	undecodable or expired  -> clear token, login
//	role outside allowed    -> home, token kept
//	otherwise               -> render
func Authorize(token string, allowed []string, now time.Time) Verdict {
	if token == "" {
		return Verdict{Outcome: RedirectLogin, Reason: ErrNoToken}
	}

	claims, err := Decode(token)
	if err != nil {
		return Verdict{Outcome: RedirectLogin, ClearToken: true, Reason: err}
	}

	if claims.Expired(now) {
		return Verdict{Outcome: RedirectLogin, ClearToken: true, Reason: ErrTokenExpired}
	}

	if !slices.Contains(allowed, claims.Role()) {
		return Verdict{Outcome: RedirectHome, Claims: claims, Reason: ErrRoleNotAllowed}
	}

	return Verdict{Outcome: Render, Claims: claims}
}
