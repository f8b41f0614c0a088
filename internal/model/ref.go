// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the backend documents the site renders. All of them
// are owned by the backend API; the site only holds per-request copies.
package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// Ref points at another backend document. The API sends either the bare id
// or the populated document, depending on the endpoint.
type Ref struct {
	ID    string
	Name  string
	Email string
}

// UnmarshalJSON accepts a string id, a populated object or null.
func (r *Ref) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	switch {
	case res.Type == gjson.Null:
		*r = Ref{}
	case res.Type == gjson.String:
		*r = Ref{ID: res.Str}
	case res.Type == gjson.Number:
		*r = Ref{ID: res.Raw}
	case res.IsObject():
		id := res.Get("_id").String()
		if id == "" {
			id = res.Get("id").String()
		}
		*r = Ref{ID: id, Name: res.Get("name").String(), Email: res.Get("email").String()}
	default:
		return fmt.Errorf("model: unexpected reference %s", res.Raw)
	}
	return nil
}

// MarshalJSON writes the bare id unless the reference was populated, so a
// cached copy decodes back to the same value.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.Name == "" && r.Email == "" {
		return json.Marshal(r.ID)
	}
	return json.Marshal(struct {
		ID    string `json:"_id"`
		Name  string `json:"name,omitempty"`
		Email string `json:"email,omitempty"`
	}{r.ID, r.Name, r.Email})
}

// IsZero reports whether the reference is empty.
func (r Ref) IsZero() bool {
	return r.ID == "" && r.Name == ""
}

// Label returns the populated name, or fallback when the API sent no name.
func (r Ref) Label(fallback string) string {
	if r.Name != "" {
		return r.Name
	}
	return fallback
}

// Display returns the name when populated, otherwise the raw id.
func (r Ref) Display() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// Matches reports whether the reference has the given id or name.
func (r Ref) Matches(idOrName string) bool {
	return idOrName != "" && (r.ID == idOrName || r.Name == idOrName)
}

// Timestamp is a time that tolerates empty strings and null from the API.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON parses RFC 3339 strings; "" and null leave the zero time.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null || (res.Type == gjson.String && res.Str == "") {
		t.Time = time.Time{}
		return nil
	}
	if res.Type != gjson.String {
		return fmt.Errorf("model: unexpected timestamp %s", res.Raw)
	}
	parsed, err := time.Parse(time.RFC3339, res.Str)
	if err != nil {
		return fmt.Errorf("model: parsing timestamp: %w", err)
	}
	t.Time = parsed
	return nil
}

// Pagination is the page block returned alongside paged lists.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}
