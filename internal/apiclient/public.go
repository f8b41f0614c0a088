// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/olegiv/campus-go/internal/model"
)

// PublicAPI groups the unauthenticated read endpoints.
type PublicAPI struct {
	c *Client
}

func (a *PublicAPI) contentList(ctx context.Context, op, path string) ([]model.Content, error) {
	p, err := a.c.getJSON(ctx, op, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Content](op, p)
}

// Announcements lists announcement content.
func (a *PublicAPI) Announcements(ctx context.Context) ([]model.Content, error) {
	return a.contentList(ctx, "public.getAnnouncements", "/public/announcements")
}

// Events lists event content.
func (a *PublicAPI) Events(ctx context.Context) ([]model.Content, error) {
	return a.contentList(ctx, "public.getEvents", "/public/events")
}

// Testimonials lists testimonial content.
func (a *PublicAPI) Testimonials(ctx context.Context) ([]model.Content, error) {
	return a.contentList(ctx, "public.getTestimonials", "/public/testimonials")
}

// Gallery lists gallery images.
func (a *PublicAPI) Gallery(ctx context.Context) ([]model.Content, error) {
	return a.contentList(ctx, "public.getGallery", "/public/gallery")
}

// ContentByType lists public content of one type.
func (a *PublicAPI) ContentByType(ctx context.Context, t model.ContentType) ([]model.Content, error) {
	return a.contentList(ctx, "public.getContentByType", "/public/content/"+seg(string(t)))
}

// Courses lists all courses.
func (a *PublicAPI) Courses(ctx context.Context) ([]model.Course, error) {
	const op = "public.getCourses"
	p, err := a.c.getJSON(ctx, op, "/public/courses", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Course](op, p)
}

// Course fetches one course.
func (a *PublicAPI) Course(ctx context.Context, id string) (model.Course, error) {
	const op = "public.getCourseById"
	p, err := a.c.getJSON(ctx, op, "/public/courses/"+seg(id), nil)
	if err != nil {
		return model.Course{}, err
	}
	return decodeOne[model.Course](op, p)
}

// Departments lists all departments.
func (a *PublicAPI) Departments(ctx context.Context) ([]model.Department, error) {
	const op = "public.getDepartments"
	p, err := a.c.getJSON(ctx, op, "/public/departments", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Department](op, p)
}

// DepartmentByName fetches the department composite. It returns nil without
// error when the backend answers but does not report success with data, so
// callers can fall back to assembling the page themselves.
func (a *PublicAPI) DepartmentByName(ctx context.Context, name string) (*model.DepartmentDetail, error) {
	const op = "public.getDepartmentByName"
	p, err := a.c.getJSON(ctx, op, "/public/departments/name/"+seg(name), nil)
	if err != nil {
		return nil, err
	}
	if p.Success == nil || !*p.Success || !gjson.GetBytes(p.Data, "department").IsObject() {
		return nil, nil
	}
	detail, err := decodeOne[model.DepartmentDetail](op, p)
	if err != nil {
		return nil, err
	}
	if detail.Courses == nil {
		detail.Courses = []model.Course{}
	}
	if detail.Faculty == nil {
		detail.Faculty = []model.Faculty{}
	}
	return &detail, nil
}

// Categories lists course categories.
func (a *PublicAPI) Categories(ctx context.Context) ([]model.Category, error) {
	const op = "public.getCategories"
	p, err := a.c.getJSON(ctx, op, "/public/categories", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Category](op, p)
}

// Faculty lists faculty members.
func (a *PublicAPI) Faculty(ctx context.Context) ([]model.Faculty, error) {
	const op = "public.getFaculty"
	p, err := a.c.getJSON(ctx, op, "/public/faculty", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Faculty](op, p)
}
