// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"

	"github.com/alexedwards/scs/v2"
)

// Session keys owned by the token store. Nothing else writes them.
const (
	keyToken = "auth_token"
	keyRole  = "auth_role"
)

// TokenStore is the per-browser slot holding the backend bearer token and
// the role decoded from it at login. It does not track expiry.
type TokenStore struct {
	sm *scs.SessionManager
}

// NewTokenStore wraps a session manager.
func NewTokenStore(sm *scs.SessionManager) *TokenStore {
	return &TokenStore{sm: sm}
}

// SetOnLogin stores a freshly issued token. The session ID is rotated first
// to prevent fixation.
func (s *TokenStore) SetOnLogin(ctx context.Context, token, role string) error {
	if err := s.sm.RenewToken(ctx); err != nil {
		return err
	}
	s.sm.Put(ctx, keyToken, token)
	s.sm.Put(ctx, keyRole, role)
	return nil
}

// Token returns the stored bearer token, or "" when none is present.
func (s *TokenStore) Token(ctx context.Context) string {
	return s.sm.GetString(ctx, keyToken)
}

// Role returns the role captured at login.
func (s *TokenStore) Role(ctx context.Context) string {
	return s.sm.GetString(ctx, keyRole)
}

// HasToken reports whether a token is stored.
func (s *TokenStore) HasToken(ctx context.Context) bool {
	return s.sm.Exists(ctx, keyToken)
}

// Clear removes the token and role. Used on logout, on undecodable tokens
// and when the backend rejects the token.
func (s *TokenStore) Clear(ctx context.Context) {
	s.sm.Remove(ctx, keyToken)
	s.sm.Remove(ctx, keyRole)
}
