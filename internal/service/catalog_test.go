// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/campus-go/internal/apiclient"
	"github.com/olegiv/campus-go/internal/model"
	"github.com/olegiv/campus-go/internal/session"
)

func TestCatalog_WarmOutsideBrowserSession(t *testing.T) {
	var withAuth atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			withAuth.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/faculty") {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"Unauthorized"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	t.Cleanup(backend.Close)

	// Wired the way the server wires it: the token store sits on a session
	// manager, but background contexts never pass through its middleware.
	tokens := session.NewTokenStore(scs.New())
	var authFailures atomic.Int32
	api, err := apiclient.New(apiclient.Options{
		BaseURL: backend.URL,
		Tokens:  tokens,
		OnAuthFailure: func(ctx context.Context, _ *apiclient.Error) {
			authFailures.Add(1)
			tokens.Clear(ctx)
		},
	})
	require.NoError(t, err)

	c := NewCatalog(api.Public, newMemoryStore(t), time.Minute)
	require.NoError(t, c.Warm(context.Background()))
	assert.Zero(t, withAuth.Load(), "public reads must not send a bearer token")

	_, err = c.Faculty(context.Background())
	require.ErrorIs(t, err, apiclient.ErrClient)
	assert.Zero(t, authFailures.Load(), "public reads must not trigger the auth failure hook")
}

func TestCatalog_RefreshGallery(t *testing.T) {
	api := &fakePublic{byType: map[model.ContentType][]model.Content{
		model.ContentGallery: {{ID: "g1", Title: "Fest", FileURL: "/fest.jpg"}},
	}}
	c := NewCatalog(api, newMemoryStore(t), time.Minute)
	ctx := context.Background()

	require.NoError(t, c.RefreshGallery(ctx))
	assert.Equal(t, 1, api.count("gallery"))

	images, err := c.ContentByType(ctx, model.ContentGallery)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "g1", images[0].ID)
	assert.Zero(t, api.count("content:gallery"), "the refreshed listing should serve the gallery page")
}

type slowCourses struct {
	*fakePublic
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (s *slowCourses) Courses(ctx context.Context) ([]model.Course, error) {
	s.once.Do(func() { close(s.started) })
	<-s.release
	return s.fakePublic.Courses(ctx)
}

func TestCatalog_InvalidateDuringLoad(t *testing.T) {
	api := &slowCourses{
		fakePublic: &fakePublic{courses: []model.Course{course("c1", "BSc Physics", "d1", "cat1")}},
		started:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	c := NewCatalog(api, newMemoryStore(t), time.Minute)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := c.Courses(ctx)
		done <- err
	}()

	<-api.started
	c.Invalidate(ctx)
	close(api.release)
	require.NoError(t, <-done)

	_, err := c.Courses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, api.count("courses"), "a load that straddles an invalidation must not be cached")
}
