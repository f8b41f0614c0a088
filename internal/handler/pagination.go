// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/url"
	"strconv"

	"github.com/olegiv/campus-go/internal/model"
)

// AdminPagination holds pagination data for admin templates.
type AdminPagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int
	HasPrev     bool
	HasNext     bool
	PrevURL     string
	NextURL     string
	Pages       []AdminPaginationPage
}

// AdminPaginationPage represents a single page link in admin pagination.
type AdminPaginationPage struct {
	Number     int
	URL        string
	IsCurrent  bool
	IsEllipsis bool
}

// ShouldShow returns true if pagination should be displayed (more than 1 page).
func (p AdminPagination) ShouldShow() bool {
	return p.TotalPages > 1
}

// BuildAdminPagination turns the backend's pagination block into page
// links. query holds the filters to preserve; its page value is replaced.
func BuildAdminPagination(p model.Pagination, baseURL string, query url.Values) AdminPagination {
	totalPages := max(p.Pages, 1)
	current := min(max(p.Page, 1), totalPages)

	params := make(url.Values)
	for k, v := range query {
		if k != "page" && len(v) > 0 && v[0] != "" {
			params.Set(k, v[0])
		}
	}
	pageURL := func(page int) string {
		params.Set("page", strconv.Itoa(page))
		return baseURL + "?" + params.Encode()
	}

	pg := AdminPagination{
		CurrentPage: current,
		TotalPages:  totalPages,
		TotalItems:  p.Total,
		HasPrev:     current > 1,
		HasNext:     current < totalPages,
	}
	if pg.HasPrev {
		pg.PrevURL = pageURL(current - 1)
	}
	if pg.HasNext {
		pg.NextURL = pageURL(current + 1)
	}

	// Show at most 5 pages around the current one
	start, end := current-2, current+2
	if start < 1 {
		start, end = 1, 5
	}
	if end > totalPages {
		end = totalPages
		start = max(end-4, 1)
	}

	if start > 1 {
		pg.Pages = append(pg.Pages, AdminPaginationPage{Number: 1, URL: pageURL(1)})
		if start > 2 {
			pg.Pages = append(pg.Pages, AdminPaginationPage{IsEllipsis: true})
		}
	}
	for i := start; i <= end; i++ {
		pg.Pages = append(pg.Pages, AdminPaginationPage{Number: i, URL: pageURL(i), IsCurrent: i == current})
	}
	if end < totalPages {
		if end < totalPages-1 {
			pg.Pages = append(pg.Pages, AdminPaginationPage{IsEllipsis: true})
		}
		pg.Pages = append(pg.Pages, AdminPaginationPage{Number: totalPages, URL: pageURL(totalPages)})
	}

	return pg
}
