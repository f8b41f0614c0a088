// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Student is a registered applicant.
type Student struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Mobile    string    `json:"mobile"`
	CreatedAt Timestamp `json:"createdAt"`
}

// Faculty is a teaching staff member. Department arrives as a name or a
// populated reference depending on the endpoint.
type Faculty struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Department  Ref    `json:"department"`
	Designation string `json:"designation,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}
