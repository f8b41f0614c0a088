// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/campus-go/internal/cache"
	"github.com/olegiv/campus-go/internal/model"
)

var errBackend = errors.New("backend down")

type fakePublic struct {
	mu    sync.Mutex
	calls map[string]int

	announcements []model.Content
	events        []model.Content
	testimonials  []model.Content
	byType        map[model.ContentType][]model.Content
	courses       []model.Course
	departments   []model.Department
	detail        *model.DepartmentDetail
	categories    []model.Category
	faculty       []model.Faculty

	fail map[string]error
}

func (f *fakePublic) hit(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
	return f.fail[name]
}

func (f *fakePublic) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakePublic) Announcements(context.Context) ([]model.Content, error) {
	return f.announcements, f.hit("announcements")
}

func (f *fakePublic) Events(context.Context) ([]model.Content, error) {
	return f.events, f.hit("events")
}

func (f *fakePublic) Testimonials(context.Context) ([]model.Content, error) {
	return f.testimonials, f.hit("testimonials")
}

func (f *fakePublic) Gallery(context.Context) ([]model.Content, error) {
	return f.byType[model.ContentGallery], f.hit("gallery")
}

func (f *fakePublic) ContentByType(_ context.Context, t model.ContentType) ([]model.Content, error) {
	return f.byType[t], f.hit("content:" + string(t))
}

func (f *fakePublic) Courses(context.Context) ([]model.Course, error) {
	return f.courses, f.hit("courses")
}

func (f *fakePublic) Course(_ context.Context, id string) (model.Course, error) {
	if err := f.hit("course"); err != nil {
		return model.Course{}, err
	}
	for _, c := range f.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Course{}, nil
}

func (f *fakePublic) Departments(context.Context) ([]model.Department, error) {
	return f.departments, f.hit("departments")
}

func (f *fakePublic) DepartmentByName(context.Context, string) (*model.DepartmentDetail, error) {
	return f.detail, f.hit("department")
}

func (f *fakePublic) Categories(context.Context) ([]model.Category, error) {
	return f.categories, f.hit("categories")
}

func (f *fakePublic) Faculty(context.Context) ([]model.Faculty, error) {
	return f.faculty, f.hit("faculty")
}

func course(id, name, dept, cat string) model.Course {
	return model.Course{ID: id, Name: name, DepartmentID: model.Ref{ID: dept}, CategoryID: model.Ref{ID: cat}}
}

func content(n int, prefix string) []model.Content {
	out := make([]model.Content, n)
	for i := range out {
		out[i] = model.Content{ID: fmt.Sprintf("%s%d", prefix, i), Title: fmt.Sprintf("%s %d", prefix, i)}
	}
	return out
}

func newMemoryStore(t *testing.T) *cache.MemoryCache {
	t.Helper()
	m := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestHome(t *testing.T) {
	long := strings.Repeat("a", 200)
	api := &fakePublic{
		announcements: append(content(4, "ann"), model.Content{}),
		events:        content(5, "ev"),
		testimonials:  []model.Content{{ID: "t1", Description: long}},
		departments: []model.Department{
			{ID: "d1", Name: "Science"}, {ID: "d2", Name: "Arts"}, {ID: "d3"}, {ID: "d4"}, {ID: "d5"}, {ID: "d6"},
		},
		courses: []model.Course{
			course("c1", "BSc Physics", "d1", "ug"),
			course("c2", "BA History", "d2", "ug"),
			course("c3", "MSc Physics", "d1", "pg"),
			course("c4", "BSc Chemistry", "d1", "ug"),
			course("c5", "BSc Maths", "d1", "ug"),
			course("c6", "BSc Biology", "d1", "ug"),
		},
	}
	c := NewCatalog(api, nil, 0)

	t.Run("limits", func(t *testing.T) {
		v, err := c.Home(context.Background(), HomeQuery{})
		require.NoError(t, err)
		assert.Len(t, v.Announcements, HomeItems)
		assert.Len(t, v.Events, HomeItems)
		assert.Len(t, v.Departments, HomeDepartmentTabs)
		assert.Len(t, v.Courses, HomeCourses)
		require.Len(t, v.Testimonials, 1)
		assert.Equal(t, strings.Repeat("a", testimonialExcerpt)+"…", v.Testimonials[0].Excerpt)
	})

	t.Run("department and search", func(t *testing.T) {
		v, err := c.Home(context.Background(), HomeQuery{Department: "d1", Search: "physics"})
		require.NoError(t, err)
		ids := []string{}
		for _, c := range v.Courses {
			ids = append(ids, c.ID)
		}
		assert.Equal(t, []string{"c1", "c3"}, ids)
	})

	t.Run("any failure empties the page", func(t *testing.T) {
		failing := &fakePublic{
			courses: api.courses,
			fail:    map[string]error{"events": errBackend},
		}
		v, err := NewCatalog(failing, nil, 0).Home(context.Background(), HomeQuery{Search: "x"})
		require.ErrorIs(t, err, errBackend)
		assert.Empty(t, v.Courses)
		assert.Empty(t, v.Announcements)
		assert.Equal(t, "x", v.Query.Search)
	})
}

func TestGallery(t *testing.T) {
	images := make([]model.Content, 0, 30)
	for i := range 20 {
		images = append(images, model.Content{ID: fmt.Sprintf("a%d", i), FileURL: "/a.jpg", Category: model.Ref{ID: "campus"}})
	}
	for i := range 5 {
		images = append(images, model.Content{ID: fmt.Sprintf("b%d", i), Title: "Fest", Category: model.Ref{ID: "events"}})
	}
	images = append(images, model.Content{ID: "loose"})

	api := &fakePublic{byType: map[model.ContentType][]model.Content{
		model.ContentGalleryCategory: {{ID: "campus", Title: "Campus"}, {ID: "events", Title: "Events"}},
		model.ContentGallery:         images,
	}}
	c := NewCatalog(api, nil, 0)
	ctx := context.Background()

	tests := []struct {
		name     string
		q        GalleryQuery
		visible  int
		matching int
		hasMore  bool
	}{
		{"all first page", GalleryQuery{}, 12, 26, true},
		{"all third page", GalleryQuery{Category: "all", Page: 3}, 26, 26, false},
		{"campus second page", GalleryQuery{Category: "campus", Page: 2}, 20, 20, false},
		{"events", GalleryQuery{Category: "events"}, 5, 5, false},
		{"uncategorized", GalleryQuery{Category: "uncategorized"}, 1, 1, false},
		{"unknown", GalleryQuery{Category: "nope"}, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := c.Gallery(ctx, tt.q)
			require.NoError(t, err)
			assert.Len(t, v.Images, tt.visible)
			assert.Equal(t, tt.matching, v.Matching)
			assert.Equal(t, tt.hasMore, v.HasMore)
			assert.Len(t, v.Categories, 2)
		})
	}

	t.Run("defaults", func(t *testing.T) {
		v, err := c.Gallery(ctx, GalleryQuery{Category: "uncategorized"})
		require.NoError(t, err)
		require.Len(t, v.Images, 1)
		assert.Equal(t, "Gallery Image", v.Images[0].Title)
		assert.Equal(t, "Uncategorized", v.Images[0].CategoryName)
		assert.Equal(t, 1, v.Page)
	})

	t.Run("category name resolved", func(t *testing.T) {
		v, err := c.Gallery(ctx, GalleryQuery{Category: "events"})
		require.NoError(t, err)
		assert.Equal(t, "Events", v.Images[0].CategoryName)
		assert.Equal(t, "Fest", v.Images[0].Title)
	})
}

func TestCoursesByCategory(t *testing.T) {
	api := &fakePublic{
		categories: []model.Category{{ID: "ug", Name: "UG"}, {ID: "pg", Name: "PG"}},
		courses: []model.Course{
			course("c1", "BSc", "d1", "ug"),
			course("c2", "MSc", "d1", "pg"),
			course("c3", "Odd", "d1", "gone"),
			course("c4", "BA", "d2", "ug"),
		},
	}
	groups, err := NewCatalog(api, nil, 0).CoursesByCategory(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "UG", groups[0].Category.Name)
	assert.Len(t, groups[0].Courses, 2)
	assert.Len(t, groups[1].Courses, 1)
	assert.Equal(t, "Other", groups[2].Category.Name)
	assert.Equal(t, "c3", groups[2].Courses[0].ID)
}

func TestCategory(t *testing.T) {
	api := &fakePublic{
		categories: []model.Category{{ID: "ug", Name: "UG"}},
		courses:    []model.Course{course("c1", "BSc", "d1", "ug"), course("c2", "MSc", "d1", "pg")},
	}
	c := NewCatalog(api, nil, 0)

	v, err := c.Category(context.Background(), "ug")
	require.NoError(t, err)
	assert.Equal(t, "UG", v.Category.Name)
	require.Len(t, v.Courses, 1)
	assert.Equal(t, "c1", v.Courses[0].ID)

	_, err = c.Category(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCourseDetail(t *testing.T) {
	api := &fakePublic{courses: []model.Course{
		course("c1", "BSc Physics", "d1", "ug"),
		course("c2", "MSc Physics", "d1", "pg"),
		course("c3", "BSc Maths", "d1", "ug"),
		course("c4", "BSc Chemistry", "d1", "ug"),
		course("c5", "BSc Biology", "d1", "ug"),
		course("c6", "BA History", "d2", "ug"),
	}}
	api.courses[0].Description = "**Three** years"
	c := NewCatalog(api, nil, 0)

	v, err := c.CourseDetail(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, v.Related, RelatedCourses)
	for _, r := range v.Related {
		assert.NotEqual(t, "c1", r.ID)
		assert.Equal(t, "d1", r.DepartmentID.ID)
	}
	assert.Contains(t, string(v.Description), "<strong>Three</strong>")

	_, err = c.CourseDetail(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	t.Run("related failure keeps the course", func(t *testing.T) {
		failing := &fakePublic{courses: api.courses, fail: map[string]error{"courses": errBackend}}
		v, err := NewCatalog(failing, nil, 0).CourseDetail(context.Background(), "c6")
		require.NoError(t, err)
		assert.Equal(t, "BA History", v.Course.Name)
		assert.Empty(t, v.Related)
	})
}

func TestDepartmentDetail(t *testing.T) {
	t.Run("composite", func(t *testing.T) {
		api := &fakePublic{detail: &model.DepartmentDetail{
			Department: model.Department{ID: "d1", Name: "Science"},
			Courses:    []model.Course{course("c1", "BSc", "d1", "ug")},
			Faculty:    []model.Faculty{{ID: "f1", Name: "Dr. Rao"}},
		}}
		v, err := NewCatalog(api, nil, 0).DepartmentDetail(context.Background(), "Science")
		require.NoError(t, err)
		assert.Equal(t, "d1", v.Department.ID)
		assert.Len(t, v.Courses, 1)
		assert.Len(t, v.Faculty, 1)
		assert.Zero(t, api.count("courses"))
	})

	t.Run("fallback", func(t *testing.T) {
		api := &fakePublic{
			departments: []model.Department{{ID: "d1", Name: "Science", Description: "Labs"}},
			courses: []model.Course{
				course("c1", "BSc", "d1", "ug"),
				{ID: "c2", Name: "MSc", DepartmentID: model.Ref{ID: "x", Name: "Science"}},
				course("c3", "BA", "d2", "ug"),
			},
			faculty: []model.Faculty{
				{ID: "f1", Department: model.Ref{ID: "Science"}},
				{ID: "f2", Department: model.Ref{ID: "d9", Name: "Science"}},
				{ID: "f3", Department: model.Ref{ID: "Arts"}},
			},
		}
		v, err := NewCatalog(api, nil, 0).DepartmentDetail(context.Background(), "science")
		require.NoError(t, err)
		assert.Equal(t, "d1", v.Department.ID)
		assert.Contains(t, string(v.Description), "Labs")
		assert.Len(t, v.Courses, 2)
		assert.Len(t, v.Faculty, 2)
	})

	t.Run("unknown name still renders", func(t *testing.T) {
		api := &fakePublic{fail: map[string]error{"faculty": errBackend}}
		v, err := NewCatalog(api, nil, 0).DepartmentDetail(context.Background(), "Music")
		require.NoError(t, err)
		assert.Equal(t, "Music", v.Department.Name)
		assert.Empty(t, v.Courses)
		assert.Empty(t, v.Faculty)
	})

	t.Run("lookup failure", func(t *testing.T) {
		api := &fakePublic{fail: map[string]error{"department": errBackend}}
		_, err := NewCatalog(api, nil, 0).DepartmentDetail(context.Background(), "Music")
		assert.ErrorIs(t, err, errBackend)
	})
}

func TestCatalog_CachesAndInvalidates(t *testing.T) {
	api := &fakePublic{courses: []model.Course{course("c1", "BSc", "d1", "ug")}}
	c := NewCatalog(api, newMemoryStore(t), time.Minute)
	ctx := context.Background()

	for range 3 {
		got, err := c.Courses(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
	}
	assert.Equal(t, 1, api.count("courses"))

	c.Invalidate(ctx)
	_, err := c.Courses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, api.count("courses"))
}

func TestCatalog_ErrorsAreNotCached(t *testing.T) {
	api := &fakePublic{fail: map[string]error{"events": errBackend}}
	c := NewCatalog(api, newMemoryStore(t), time.Minute)
	ctx := context.Background()

	_, err := c.Events(ctx)
	require.ErrorIs(t, err, errBackend)
	api.fail = nil
	api.events = content(1, "ev")

	got, err := c.Events(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCatalog_Warm(t *testing.T) {
	api := &fakePublic{}
	c := NewCatalog(api, newMemoryStore(t), time.Minute)
	require.NoError(t, c.Warm(context.Background()))

	_, _ = c.Home(context.Background(), HomeQuery{})
	for _, name := range []string{"announcements", "events", "testimonials", "courses", "departments"} {
		assert.Equal(t, 1, api.count(name), name)
	}
}
