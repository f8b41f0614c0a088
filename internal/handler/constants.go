// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the HTTP handlers for the public site, the
// login flow and the admin dashboard.
package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteAbout is the static about page.
	RouteAbout = "/about"
	// RouteGallery is the public gallery.
	RouteGallery = "/gallery"
	// RouteCourses lists courses grouped by category.
	RouteCourses = "/courses"
	// RouteCourseID is a single course.
	RouteCourseID = "/courses/{id}"
	// RouteCategoryID lists the courses of one category.
	RouteCategoryID = "/category/{id}"
	// RouteDepartmentName is a department page, addressed by name.
	RouteDepartmentName = "/department/{name}"

	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"

	// RouteHealth is the health check.
	RouteHealth = "/health"
	// RouteMetrics serves Prometheus metrics.
	RouteMetrics = "/metrics"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteSuffixDelete is the suffix for delete routes.
	RouteSuffixDelete = "/delete"
	// RouteSuffixUpload is the suffix for upload routes.
	RouteSuffixUpload = "/upload"
)

// Admin routes, relative to /admin.
const (
	RouteAdminContent           = "/content"
	RouteAdminGalleryCategories = "/content/gallery-categories"
	RouteAdminUsers             = "/users"
	RouteAdminCourses           = "/courses"
	RouteAdminDepartments       = "/departments"
	RouteAdminCategories        = "/categories"
	RouteAdminAdmissions        = "/admissions"
	RouteAdminAdmissionStatus   = "/admissions/{id}/status"
	RouteAdminTestimonials      = "/testimonials"
	RouteAdminPayments          = "/payments"
	RouteAdminPaymentReceipt    = "/payments/{id}/receipt"
	RouteAdminIDCards           = "/id-cards"
	RouteAdminIDCardPDF         = "/id-cards/{studentId}.pdf"
)

// Redirect targets.
const (
	redirectAdmin             = "/admin"
	redirectAdminContent      = "/admin/content"
	redirectAdminCourses      = "/admin/courses"
	redirectAdminAdmissions   = "/admin/admissions"
	redirectAdminTestimonials = "/admin/testimonials"
	redirectAdminPayments     = "/admin/payments"
	redirectAdminIDCards      = "/admin/id-cards"
	redirectLogin             = "/login"
	redirectCourses           = "/courses"
	redirectGallery           = "/gallery"
)

// Form field names shared by several forms.
const (
	fieldFile = "file"
)
