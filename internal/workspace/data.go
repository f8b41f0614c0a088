// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package workspace

import "github.com/olegiv/campus-go/internal/model"

// ContentData is the content tab: one page of content plus the gallery
// categories offered by the gallery item form.
type ContentData struct {
	Items             []model.Content
	Pagination        model.Pagination
	GalleryCategories []model.Content
}

type UsersData struct {
	Students []model.Student
	Faculty  []model.Faculty
}

type CoursesData struct {
	Courses     []model.Course
	Departments []model.Department
	Categories  []model.Category
}

// DepartmentID resolves a department name loaded in this snapshot.
func (d CoursesData) DepartmentID(name string) (string, bool) {
	for _, dep := range d.Departments {
		if dep.Name == name {
			return dep.ID, true
		}
	}
	return "", false
}

// CategoryID resolves a category name loaded in this snapshot.
func (d CoursesData) CategoryID(name string) (string, bool) {
	for _, c := range d.Categories {
		if c.Name == name {
			return c.ID, true
		}
	}
	return "", false
}

// Course finds a course by id.
func (d CoursesData) Course(id string) (model.Course, bool) {
	for _, c := range d.Courses {
		if c.ID == id {
			return c, true
		}
	}
	return model.Course{}, false
}

type AdmissionsData struct {
	Admissions []model.Admission
}

// Admission finds an admission by id.
func (d AdmissionsData) Admission(id string) (model.Admission, bool) {
	for _, a := range d.Admissions {
		if a.ID == id {
			return a, true
		}
	}
	return model.Admission{}, false
}

type TestimonialsData struct {
	Items []model.Content
}

type PaymentsData struct {
	Payments []model.Payment
}

// IDCardData feeds the ID card generator.
type IDCardData struct {
	Students    []model.Student
	Courses     []model.Course
	Departments []model.Department
}

// Student finds a student by id.
func (d IDCardData) Student(id string) (model.Student, bool) {
	for _, s := range d.Students {
		if s.ID == id {
			return s, true
		}
	}
	return model.Student{}, false
}
