// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// FeeStructure holds course fees in rupees.
type FeeStructure struct {
	RegistrationFee float64 `json:"registrationFee"`
	FullFee         float64 `json:"fullFee"`
}

// Course is a program offered by a department under a category.
type Course struct {
	ID           string       `json:"_id"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	DepartmentID Ref          `json:"departmentId"`
	CategoryID   Ref          `json:"categoryId"`
	FeeStructure FeeStructure `json:"feeStructure"`
	FormURL      string       `json:"formUrl"`
	ThumbnailURL string       `json:"thumbnailUrl"`
	FileURL      string       `json:"fileUrl"`
}

// Image returns the thumbnail, falling back to the full file.
func (c Course) Image() string {
	if c.ThumbnailURL != "" {
		return c.ThumbnailURL
	}
	return c.FileURL
}

// CourseInput is the create/update payload for courses.
type CourseInput struct {
	Name         string       `json:"name"`
	DepartmentID string       `json:"departmentId"`
	CategoryID   string       `json:"categoryId"`
	FeeStructure FeeStructure `json:"feeStructure"`
	FormURL      string       `json:"formUrl"`
	ThumbnailURL string       `json:"thumbnailUrl"`
	FileURL      string       `json:"fileUrl"`
}

// Department groups courses and faculty.
type Department struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Category classifies courses (Diploma, UG, PG...).
type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// DepartmentDetail is the composite returned by the by-name lookup.
type DepartmentDetail struct {
	Department Department `json:"department"`
	Courses    []Course   `json:"courses"`
	Faculty    []Faculty  `json:"faculty"`
}
