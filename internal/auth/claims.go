// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth decodes the backend's session token and decides whether a
// request may enter a protected view. Tokens are decoded, never verified:
// the backend remains the authority and rejects revoked tokens on use.
package auth

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles issued by the backend.
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
	RoleFaculty = "faculty"
)

// Decode errors. All of them mean the stored token is unusable.
var (
	ErrMalformedToken = errors.New("auth: malformed token")
	ErrUnsupportedAlg = errors.New("auth: unsupported signing algorithm")
	ErrMissingUser    = errors.New("auth: token carries no user")
	ErrTokenExpired   = errors.New("auth: token expired")
)

// supportedAlgs are the algorithms the backend may sign with. "none" is
// deliberately absent.
var supportedAlgs = []string{
	"HS256", "HS384", "HS512",
	"RS256", "RS384", "RS512",
	"PS256", "PS384", "PS512",
	"ES256", "ES384", "ES512",
	"EdDSA",
}

// User is the user block embedded in the token.
type User struct {
	ID    string `json:"id"`
	Role  string `json:"role"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Claims is the token payload: { user: {...}, exp, iat }.
type Claims struct {
	User *User `json:"user"`
	jwt.RegisteredClaims
}

// Role returns the user's role, or "" when absent.
func (c *Claims) Role() string {
	if c == nil || c.User == nil {
		return ""
	}
	return c.User.Role
}

// Expired reports whether the token carries an exp in the past. A token
// without exp never expires locally.
func (c *Claims) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}

// Decode parses the token payload without checking the signature.
func Decode(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMalformedToken
	}

	claims := &Claims{}
	token, _, err := jwt.NewParser().ParseUnverified(raw, claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	if token.Method == nil || !slices.Contains(supportedAlgs, token.Method.Alg()) {
		return nil, ErrUnsupportedAlg
	}

	if claims.User == nil {
		return nil, ErrMissingUser
	}

	return claims, nil
}
