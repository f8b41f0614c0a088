// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/campus-go/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("service: not found")

// Home page limits.
const (
	HomeDepartmentTabs  = 5
	HomeCourses         = 4
	HomeItems           = 3
	announcementExcerpt = 120
	eventExcerpt        = 80
	testimonialExcerpt  = 150
)

// GalleryPageSize is how many images each "load more" reveals.
const GalleryPageSize = 12

// RelatedCourses caps the related list on a course page.
const RelatedCourses = 3

const uncategorizedGalleryID = "uncategorized"

// Card is a content item prepared for a list.
type Card struct {
	model.Content
	Excerpt string
}

func cards(items []model.Content, limit, excerpt int) []Card {
	if len(items) > limit {
		items = items[:limit]
	}
	out := make([]Card, 0, len(items))
	for _, it := range items {
		out = append(out, Card{Content: it, Excerpt: Excerpt(it.Description, excerpt)})
	}
	return out
}

// HomeQuery is the home page's course filter.
type HomeQuery struct {
	Department string // department id; "" means all
	Search     string
}

// HomeView is the home page.
type HomeView struct {
	Announcements []Card
	Events        []Card
	Testimonials  []Card
	Departments   []model.Department
	Courses       []model.Course
	Query         HomeQuery
}

// Home loads everything the home page shows. If any read fails the whole
// page is empty and the error is returned.
func (c *Catalog) Home(ctx context.Context, q HomeQuery) (HomeView, error) {
	var (
		announcements, events, testimonials []model.Content
		courses                             []model.Course
		departments                         []model.Department
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { announcements, err = c.Announcements(gctx); return })
	g.Go(func() (err error) { courses, err = c.Courses(gctx); return })
	g.Go(func() (err error) { events, err = c.Events(gctx); return })
	g.Go(func() (err error) { departments, err = c.Departments(gctx); return })
	g.Go(func() (err error) { testimonials, err = c.Testimonials(gctx); return })
	if err := g.Wait(); err != nil {
		return HomeView{Query: q}, err
	}

	if len(departments) > HomeDepartmentTabs {
		departments = departments[:HomeDepartmentTabs]
	}

	return HomeView{
		Announcements: cards(announcements, HomeItems, announcementExcerpt),
		Events:        cards(events, HomeItems, eventExcerpt),
		Testimonials:  cards(testimonials, HomeItems, testimonialExcerpt),
		Departments:   departments,
		Courses:       filterHomeCourses(courses, q),
		Query:         q,
	}, nil
}

func filterHomeCourses(courses []model.Course, q HomeQuery) []model.Course {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]model.Course, 0, HomeCourses)
	for _, c := range courses {
		if q.Department != "" && c.DepartmentID.ID != q.Department {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) {
			continue
		}
		out = append(out, c)
		if len(out) == HomeCourses {
			break
		}
	}
	return out
}

// GalleryCategory is one gallery tab.
type GalleryCategory struct {
	ID        string
	Name      string
	Thumbnail string
}

// GalleryImage is an image with its category resolved.
type GalleryImage struct {
	ID           string
	Src          string
	Thumbnail    string
	Title        string
	Description  string
	CategoryID   string
	CategoryName string
	UploadedAt   model.Timestamp
}

// GalleryQuery selects a category tab and how many pages are visible.
type GalleryQuery struct {
	Category string // "" or "all" means every image
	Page     int
}

// GalleryView is the visible part of the gallery.
type GalleryView struct {
	Categories []GalleryCategory
	Active     string
	Images     []GalleryImage
	Matching   int
	Page       int
	HasMore    bool
}

// Gallery loads categories and images together and filters in memory.
func (c *Catalog) Gallery(ctx context.Context, q GalleryQuery) (GalleryView, error) {
	var rawCats, rawImages []model.Content
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { rawCats, err = c.ContentByType(gctx, model.ContentGalleryCategory); return })
	g.Go(func() (err error) { rawImages, err = c.ContentByType(gctx, model.ContentGallery); return })

	active := q.Category
	if active == "" {
		active = "all"
	}
	page := max(q.Page, 1)

	if err := g.Wait(); err != nil {
		return GalleryView{Active: active, Page: page}, err
	}
	return buildGallery(rawCats, rawImages, active, page), nil
}

func buildGallery(rawCats, rawImages []model.Content, active string, page int) GalleryView {
	cats := make([]GalleryCategory, 0, len(rawCats))
	names := make(map[string]string, len(rawCats))
	for _, rc := range rawCats {
		cats = append(cats, GalleryCategory{ID: rc.ID, Name: rc.Title, Thumbnail: rc.Image()})
		names[rc.ID] = rc.Title
	}

	var matching []GalleryImage
	for _, it := range rawImages {
		catID := it.Category.ID
		if catID == "" {
			catID = uncategorizedGalleryID
		}
		if active != "all" && catID != active {
			continue
		}
		name, ok := names[catID]
		if !ok {
			name = "Uncategorized"
		}
		title := it.Title
		if title == "" {
			title = "Gallery Image"
		}
		matching = append(matching, GalleryImage{
			ID:           it.ID,
			Src:          it.FileURL,
			Thumbnail:    it.Image(),
			Title:        title,
			Description:  it.Description,
			CategoryID:   catID,
			CategoryName: name,
			UploadedAt:   it.UploadedAt,
		})
	}

	visible := matching
	if n := page * GalleryPageSize; len(visible) > n {
		visible = visible[:n]
	}
	return GalleryView{
		Categories: cats,
		Active:     active,
		Images:     visible,
		Matching:   len(matching),
		Page:       page,
		HasMore:    len(visible) < len(matching),
	}
}

// CourseGroup is the courses of one category.
type CourseGroup struct {
	Category model.Category
	Courses  []model.Course
}

// CoursesByCategory groups all courses by category, in category order.
// Courses whose category is not listed go into a trailing "Other" group.
func (c *Catalog) CoursesByCategory(ctx context.Context) ([]CourseGroup, error) {
	var courses []model.Course
	var categories []model.Category
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { courses, err = c.Courses(gctx); return })
	g.Go(func() (err error) { categories, err = c.Categories(gctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	groups := make([]CourseGroup, len(categories))
	index := make(map[string]int, len(categories))
	for i, cat := range categories {
		groups[i].Category = cat
		index[cat.ID] = i
	}
	var other []model.Course
	for _, course := range courses {
		if i, ok := index[course.CategoryID.ID]; ok {
			groups[i].Courses = append(groups[i].Courses, course)
		} else {
			other = append(other, course)
		}
	}
	if len(other) > 0 {
		groups = append(groups, CourseGroup{Category: model.Category{Name: "Other"}, Courses: other})
	}
	return groups, nil
}

// CategoryView is the category page.
type CategoryView struct {
	Category model.Category
	Courses  []model.Course
}

// Category resolves id in the category list and lists its courses. It
// returns ErrNotFound for an unknown id.
func (c *Catalog) Category(ctx context.Context, id string) (CategoryView, error) {
	categories, err := c.Categories(ctx)
	if err != nil {
		return CategoryView{}, err
	}
	var found *model.Category
	for i := range categories {
		if categories[i].ID == id {
			found = &categories[i]
			break
		}
	}
	if found == nil {
		return CategoryView{}, ErrNotFound
	}

	courses, err := c.Courses(ctx)
	if err != nil {
		return CategoryView{}, err
	}
	view := CategoryView{Category: *found}
	for _, course := range courses {
		if course.CategoryID.ID == id {
			view.Courses = append(view.Courses, course)
		}
	}
	return view, nil
}

// CourseView is the course detail page.
type CourseView struct {
	Course      model.Course
	Description template.HTML
	Related     []model.Course
}

// CourseDetail fetches a course and up to three other courses of its
// department. A failure to list related courses leaves them empty.
func (c *Catalog) CourseDetail(ctx context.Context, id string) (CourseView, error) {
	course, err := c.Course(ctx, id)
	if err != nil {
		return CourseView{}, err
	}
	if course.ID == "" {
		return CourseView{}, ErrNotFound
	}

	view := CourseView{Course: course, Description: RenderMarkdown(course.Description)}
	if course.DepartmentID.ID == "" {
		return view, nil
	}

	all, err := c.Courses(ctx)
	if err != nil {
		slog.Warn("related courses unavailable", "category", model.EventCategoryAPI, "course", id, "error", err)
		return view, nil
	}
	for _, other := range all {
		if other.ID != course.ID && other.DepartmentID.ID == course.DepartmentID.ID {
			view.Related = append(view.Related, other)
			if len(view.Related) == RelatedCourses {
				break
			}
		}
	}
	return view, nil
}

// DepartmentView is the department detail page.
type DepartmentView struct {
	Department  model.Department
	Description template.HTML
	Courses     []model.Course
	Faculty     []model.Faculty
}

// DepartmentDetail uses the backend's department composite when it has
// one. Otherwise the page is assembled from the department, course and
// faculty lists, matching courses by department id or name and faculty by
// department name.
func (c *Catalog) DepartmentDetail(ctx context.Context, name string) (DepartmentView, error) {
	detail, err := c.DepartmentByName(ctx, name)
	if err != nil {
		return DepartmentView{}, err
	}
	if detail != nil {
		return DepartmentView{
			Department:  detail.Department,
			Description: RenderMarkdown(detail.Department.Description),
			Courses:     detail.Courses,
			Faculty:     detail.Faculty,
		}, nil
	}

	dept := model.Department{Name: name}
	if list, err := c.Departments(ctx); err == nil {
		for _, d := range list {
			if strings.EqualFold(d.Name, name) {
				dept = d
				break
			}
		}
	}
	view := DepartmentView{Department: dept, Description: RenderMarkdown(dept.Description)}

	if courses, err := c.Courses(ctx); err != nil {
		slog.Warn("department courses unavailable", "category", model.EventCategoryAPI, "department", name, "error", err)
	} else {
		for _, course := range courses {
			if course.DepartmentID.Matches(dept.ID) || course.DepartmentID.Matches(dept.Name) {
				view.Courses = append(view.Courses, course)
			}
		}
	}

	if faculty, err := c.Faculty(ctx); err != nil {
		slog.Warn("department faculty unavailable", "category", model.EventCategoryAPI, "department", name, "error", err)
	} else {
		for _, f := range faculty {
			if f.Department.Matches(dept.Name) {
				view.Faculty = append(view.Faculty, f)
			}
		}
	}
	return view, nil
}
