// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenStore() (*scs.SessionManager, *TokenStore) {
	sm := scs.New()
	sm.Store = memstore.New()
	return sm, NewTokenStore(sm)
}

// doRequest runs fn inside a loaded session and returns the session cookie.
func doRequest(t *testing.T, sm *scs.SessionManager, cookie *http.Cookie, fn func(r *http.Request)) *http.Cookie {
	t.Helper()

	h := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fn(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == sm.Cookie.Name {
			return c
		}
	}
	return cookie
}

func TestTokenStore_SetOnLoginPersists(t *testing.T) {
	sm, ts := newTestTokenStore()

	cookie := doRequest(t, sm, nil, func(r *http.Request) {
		require.NoError(t, ts.SetOnLogin(r.Context(), "tok-123", "admin"))
	})
	require.NotNil(t, cookie)

	doRequest(t, sm, cookie, func(r *http.Request) {
		assert.Equal(t, "tok-123", ts.Token(r.Context()))
		assert.Equal(t, "admin", ts.Role(r.Context()))
		assert.True(t, ts.HasToken(r.Context()))
	})
}

func TestTokenStore_Clear(t *testing.T) {
	sm, ts := newTestTokenStore()

	cookie := doRequest(t, sm, nil, func(r *http.Request) {
		require.NoError(t, ts.SetOnLogin(r.Context(), "tok-123", "student"))
	})

	cookie = doRequest(t, sm, cookie, func(r *http.Request) {
		ts.Clear(r.Context())
	})

	doRequest(t, sm, cookie, func(r *http.Request) {
		assert.Empty(t, ts.Token(r.Context()))
		assert.Empty(t, ts.Role(r.Context()))
		assert.False(t, ts.HasToken(r.Context()))
	})
}

func TestTokenStore_EmptySession(t *testing.T) {
	sm, ts := newTestTokenStore()

	doRequest(t, sm, nil, func(r *http.Request) {
		assert.Empty(t, ts.Token(r.Context()))
		assert.False(t, ts.HasToken(r.Context()))
	})
}

func TestTokenStore_SetOnLoginRotatesSession(t *testing.T) {
	sm, ts := newTestTokenStore()

	first := doRequest(t, sm, nil, func(r *http.Request) {
		sm.Put(r.Context(), "visited", true)
	})
	require.NotNil(t, first)

	second := doRequest(t, sm, first, func(r *http.Request) {
		require.NoError(t, ts.SetOnLogin(r.Context(), "tok", "admin"))
	})
	require.NotNil(t, second)
	assert.NotEqual(t, first.Value, second.Value, "login must issue a new session token")
}
