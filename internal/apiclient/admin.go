// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/olegiv/campus-go/internal/model"
)

// AdminAPI groups the endpoints that require an admin token.
type AdminAPI struct {
	c *Client
}

// ContentQuery filters the paged content listing. An empty Type lists all.
type ContentQuery struct {
	Type  model.ContentType
	Page  int
	Limit int
}

// ContentPage is one page of content.
type ContentPage struct {
	Items      []model.Content
	Pagination model.Pagination
}

// ListContent returns one page of content. When the backend omits the
// pagination block, one is derived from the returned items.
func (a *AdminAPI) ListContent(ctx context.Context, q ContentQuery) (ContentPage, error) {
	const op = "admin.getAllContent"

	query := url.Values{}
	if q.Type != "" {
		query.Set("type", string(q.Type))
	}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}

	p, err := a.c.getJSON(ctx, op, "/admin/content", query)
	if err != nil {
		return ContentPage{}, err
	}
	items, err := decodeList[model.Content](op, p)
	if err != nil {
		return ContentPage{}, err
	}

	page := ContentPage{Items: items}
	if p.Pagination != nil {
		page.Pagination = *p.Pagination
	} else {
		page.Pagination = model.Pagination{Total: len(items), Page: max(q.Page, 1), Limit: q.Limit, Pages: 1}
	}
	return page, nil
}

// ContentByType lists all content of one type.
func (a *AdminAPI) ContentByType(ctx context.Context, t model.ContentType) ([]model.Content, error) {
	const op = "admin.getContentByType"
	p, err := a.c.getJSON(ctx, op, "/admin/content/type/"+seg(string(t)), nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Content](op, p)
}

// CreateContent adds a content item.
func (a *AdminAPI) CreateContent(ctx context.Context, in model.ContentInput) error {
	_, err := a.c.sendJSON(ctx, "admin.addContent", http.MethodPost, "/admin/content", in)
	return err
}

// UpdateContent replaces a content item.
func (a *AdminAPI) UpdateContent(ctx context.Context, id string, in model.ContentInput) error {
	_, err := a.c.sendJSON(ctx, "admin.updateContent", http.MethodPut, "/admin/content/"+seg(id), in)
	return err
}

// DeleteContent removes a content item.
func (a *AdminAPI) DeleteContent(ctx context.Context, id string) error {
	_, err := a.c.sendJSON(ctx, "admin.deleteContent", http.MethodDelete, "/admin/content/"+seg(id), nil)
	return err
}

// Upload is a file to send to the upload endpoint.
type Upload struct {
	File        io.Reader
	Filename    string
	Type        string // image, gallery, ...
	Title       string
	Description string
	Category    string
}

// Upload sends a multipart file and returns the stored file URL.
func (a *AdminAPI) Upload(ctx context.Context, up Upload) (string, error) {
	const op = "admin.uploadFile"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", up.Filename)
	if err != nil {
		return "", &Error{Kind: KindClient, Op: op, Message: "failed to build upload", Err: err}
	}
	if _, err := io.Copy(fw, up.File); err != nil {
		return "", &Error{Kind: KindClient, Op: op, Message: "failed to read upload", Err: err}
	}

	fields := []struct{ name, value string }{
		{"type", up.Type},
		{"title", up.Title},
		{"description", up.Description},
		{"category", up.Category},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := mw.WriteField(f.name, f.value); err != nil {
			return "", &Error{Kind: KindClient, Op: op, Message: "failed to build upload", Err: err}
		}
	}
	if err := mw.Close(); err != nil {
		return "", &Error{Kind: KindClient, Op: op, Message: "failed to build upload", Err: err}
	}

	p, err := a.c.do(ctx, op, http.MethodPost, "/admin/upload", nil, &buf, mw.FormDataContentType())
	if err != nil {
		return "", err
	}
	if p.Failed() {
		return "", &Error{Kind: KindClient, Op: op, Message: orDefault(p.Message, "Failed to upload file")}
	}

	fileURL := gjson.GetBytes(p.Data, "fileUrl").String()
	if fileURL == "" {
		return "", &Error{Kind: KindServer, Op: op, Message: "upload response carried no fileUrl"}
	}
	return fileURL, nil
}

// Courses lists all courses with populated references.
func (a *AdminAPI) Courses(ctx context.Context) ([]model.Course, error) {
	const op = "admin.getCourses"
	p, err := a.c.getJSON(ctx, op, "/admin/courses", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Course](op, p)
}

// CreateCourse adds a course.
func (a *AdminAPI) CreateCourse(ctx context.Context, in model.CourseInput) error {
	_, err := a.c.sendJSON(ctx, "admin.addCourse", http.MethodPost, "/admin/courses", in)
	return err
}

// UpdateCourse replaces a course.
func (a *AdminAPI) UpdateCourse(ctx context.Context, id string, in model.CourseInput) error {
	_, err := a.c.sendJSON(ctx, "admin.updateCourse", http.MethodPut, "/admin/courses/"+seg(id), in)
	return err
}

// DeleteCourse removes a course.
func (a *AdminAPI) DeleteCourse(ctx context.Context, id string) error {
	_, err := a.c.sendJSON(ctx, "admin.deleteCourse", http.MethodDelete, "/admin/courses/"+seg(id), nil)
	return err
}

type nameRequest struct {
	Name string `json:"name"`
}

// Departments lists departments.
func (a *AdminAPI) Departments(ctx context.Context) ([]model.Department, error) {
	const op = "admin.getDepartments"
	p, err := a.c.getJSON(ctx, op, "/admin/departments", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Department](op, p)
}

// CreateDepartment adds a department.
func (a *AdminAPI) CreateDepartment(ctx context.Context, name string) error {
	_, err := a.c.sendJSON(ctx, "admin.addDepartment", http.MethodPost, "/admin/departments", nameRequest{Name: name})
	return err
}

// Categories lists course categories.
func (a *AdminAPI) Categories(ctx context.Context) ([]model.Category, error) {
	const op = "admin.getCategories"
	p, err := a.c.getJSON(ctx, op, "/admin/categories", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Category](op, p)
}

// CreateCategory adds a course category.
func (a *AdminAPI) CreateCategory(ctx context.Context, name string) error {
	_, err := a.c.sendJSON(ctx, "admin.addCategory", http.MethodPost, "/admin/categories", nameRequest{Name: name})
	return err
}

// Admissions lists admissions with populated student and course.
func (a *AdminAPI) Admissions(ctx context.Context) ([]model.Admission, error) {
	const op = "admin.getAdmissions"
	p, err := a.c.getJSON(ctx, op, "/admin/admissions", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Admission](op, p)
}

// UpdateAdmissionStatus transitions an admission. The returned admission is
// the backend's copy; it is zero when the backend did not echo one back.
func (a *AdminAPI) UpdateAdmissionStatus(ctx context.Context, id string, status model.AdmissionStatus) (model.Admission, error) {
	const op = "admin.updateAdmission"
	if !status.Valid() {
		return model.Admission{}, &Error{Kind: KindClient, Op: op, Message: fmt.Sprintf("invalid status %q", status)}
	}

	p, err := a.c.sendJSON(ctx, op, http.MethodPut, "/admin/admissions/"+seg(id), struct {
		Status model.AdmissionStatus `json:"status"`
	}{status})
	if err != nil {
		return model.Admission{}, err
	}

	updated, err := decodeOne[model.Admission](op, p)
	if err != nil || updated.ID == "" {
		return model.Admission{}, nil
	}
	return updated, nil
}

// Students lists registered students.
func (a *AdminAPI) Students(ctx context.Context) ([]model.Student, error) {
	const op = "admin.getStudents"
	p, err := a.c.getJSON(ctx, op, "/admin/students", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Student](op, p)
}

// Faculty lists faculty members.
func (a *AdminAPI) Faculty(ctx context.Context) ([]model.Faculty, error) {
	const op = "admin.getFaculty"
	p, err := a.c.getJSON(ctx, op, "/admin/faculty", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Faculty](op, p)
}

// Payments lists payments.
func (a *AdminAPI) Payments(ctx context.Context) ([]model.Payment, error) {
	const op = "admin.getPayments"
	p, err := a.c.getJSON(ctx, op, "/admin/payments", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Payment](op, p)
}

// Payment fetches one payment.
func (a *AdminAPI) Payment(ctx context.Context, id string) (model.Payment, error) {
	const op = "admin.getPayment"
	p, err := a.c.getJSON(ctx, op, "/admin/payments/"+seg(id), nil)
	if err != nil {
		return model.Payment{}, err
	}
	return decodeOne[model.Payment](op, p)
}
