// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service assembles the public pages from backend data. Backend
// reads go through a shared cache that admin mutations invalidate.
package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/campus-go/internal/cache"
	"github.com/olegiv/campus-go/internal/model"
)

// PublicKeyPrefix prefixes every cached public read.
const PublicKeyPrefix = "public:"

// PublicBackend is the part of the public API the site reads.
type PublicBackend interface {
	Announcements(ctx context.Context) ([]model.Content, error)
	Events(ctx context.Context) ([]model.Content, error)
	Testimonials(ctx context.Context) ([]model.Content, error)
	Gallery(ctx context.Context) ([]model.Content, error)
	ContentByType(ctx context.Context, t model.ContentType) ([]model.Content, error)
	Courses(ctx context.Context) ([]model.Course, error)
	Course(ctx context.Context, id string) (model.Course, error)
	Departments(ctx context.Context) ([]model.Department, error)
	DepartmentByName(ctx context.Context, name string) (*model.DepartmentDetail, error)
	Categories(ctx context.Context) ([]model.Category, error)
	Faculty(ctx context.Context) ([]model.Faculty, error)
}

// Catalog serves public reads, cached for the configured TTL.
type Catalog struct {
	api   PublicBackend
	store cache.Cache
	gen   cache.Generation

	contents    *cache.TypedCache[[]model.Content]
	courses     *cache.TypedCache[[]model.Course]
	course      *cache.TypedCache[model.Course]
	departments *cache.TypedCache[[]model.Department]
	detail      *cache.TypedCache[*model.DepartmentDetail]
	categories  *cache.TypedCache[[]model.Category]
	faculty     *cache.TypedCache[[]model.Faculty]
}

// NewCatalog creates a Catalog. With a nil store every read goes to the backend.
func NewCatalog(api PublicBackend, store cache.Cache, ttl time.Duration) *Catalog {
	c := &Catalog{api: api, store: store}
	if store != nil {
		c.contents = cache.NewTypedCache[[]model.Content](store, ttl).WithGeneration(&c.gen)
		c.courses = cache.NewTypedCache[[]model.Course](store, ttl).WithGeneration(&c.gen)
		c.course = cache.NewTypedCache[model.Course](store, ttl).WithGeneration(&c.gen)
		c.departments = cache.NewTypedCache[[]model.Department](store, ttl).WithGeneration(&c.gen)
		c.detail = cache.NewTypedCache[*model.DepartmentDetail](store, ttl).WithGeneration(&c.gen)
		c.categories = cache.NewTypedCache[[]model.Category](store, ttl).WithGeneration(&c.gen)
		c.faculty = cache.NewTypedCache[[]model.Faculty](store, ttl).WithGeneration(&c.gen)
	}
	return c
}

func cached[T any](ctx context.Context, tc *cache.TypedCache[T], key string, load func(context.Context) (T, error)) (T, error) {
	if tc == nil {
		return load(ctx)
	}
	return tc.GetOrSet(ctx, PublicKeyPrefix+key, load)
}

// Invalidate drops every cached public read.
func (c *Catalog) Invalidate(ctx context.Context) {
	if c.store == nil {
		return
	}
	c.gen.Bump()
	if err := c.store.DeleteByPrefix(ctx, PublicKeyPrefix); err != nil {
		slog.Warn("public cache invalidation failed", "category", model.EventCategoryCache, "error", err)
	}
}

// Warm loads the data behind the home, gallery and courses pages.
func (c *Catalog) Warm(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { _, err := c.Announcements(ctx); return err })
	g.Go(func() error { _, err := c.Events(ctx); return err })
	g.Go(func() error { _, err := c.Testimonials(ctx); return err })
	g.Go(func() error { _, err := c.Courses(ctx); return err })
	g.Go(func() error { _, err := c.Departments(ctx); return err })
	g.Go(func() error { _, err := c.Categories(ctx); return err })
	g.Go(func() error { _, err := c.ContentByType(ctx, model.ContentGallery); return err })
	g.Go(func() error { _, err := c.ContentByType(ctx, model.ContentGalleryCategory); return err })
	return g.Wait()
}

func (c *Catalog) Announcements(ctx context.Context) ([]model.Content, error) {
	return cached(ctx, c.contents, "announcements", c.api.Announcements)
}

func (c *Catalog) Events(ctx context.Context) ([]model.Content, error) {
	return cached(ctx, c.contents, "events", c.api.Events)
}

func (c *Catalog) Testimonials(ctx context.Context) ([]model.Content, error) {
	return cached(ctx, c.contents, "testimonials", c.api.Testimonials)
}

// ContentByType lists public content of one type.
func (c *Catalog) ContentByType(ctx context.Context, t model.ContentType) ([]model.Content, error) {
	return cached(ctx, c.contents, "content:"+string(t), func(ctx context.Context) ([]model.Content, error) {
		return c.api.ContentByType(ctx, t)
	})
}

// RefreshGallery re-reads the gallery listing and caches it for the gallery
// page. Called after an upload so the new image shows on the next render.
func (c *Catalog) RefreshGallery(ctx context.Context) error {
	images, err := c.api.Gallery(ctx)
	if err != nil {
		return err
	}
	if c.contents != nil {
		return c.contents.Set(ctx, PublicKeyPrefix+"content:"+string(model.ContentGallery), images)
	}
	return nil
}

func (c *Catalog) Courses(ctx context.Context) ([]model.Course, error) {
	return cached(ctx, c.courses, "courses", c.api.Courses)
}

// Course fetches one course.
func (c *Catalog) Course(ctx context.Context, id string) (model.Course, error) {
	return cached(ctx, c.course, "course:"+id, func(ctx context.Context) (model.Course, error) {
		return c.api.Course(ctx, id)
	})
}

func (c *Catalog) Departments(ctx context.Context) ([]model.Department, error) {
	return cached(ctx, c.departments, "departments", c.api.Departments)
}

// DepartmentByName fetches the department composite; nil means the
// backend had none.
func (c *Catalog) DepartmentByName(ctx context.Context, name string) (*model.DepartmentDetail, error) {
	return cached(ctx, c.detail, "department:"+name, func(ctx context.Context) (*model.DepartmentDetail, error) {
		return c.api.DepartmentByName(ctx, name)
	})
}

func (c *Catalog) Categories(ctx context.Context) ([]model.Category, error) {
	return cached(ctx, c.categories, "categories", c.api.Categories)
}

func (c *Catalog) Faculty(ctx context.Context) ([]model.Faculty, error) {
	return cached(ctx, c.faculty, "faculty", c.api.Faculty)
}
