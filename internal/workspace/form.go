// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package workspace

import "errors"

// FormMode says whether a CRUD form is closed, creating or editing.
type FormMode int

const (
	FormNone FormMode = iota
	FormCreating
	FormEditing
)

// ErrEditingWithoutID is returned when an edit form is built without a record id.
var ErrEditingWithoutID = errors.New("workspace: editing form needs a record id")

// Form is the state of one CRUD form. The zero value is FormNone. An
// editing form always carries the id of the record being edited.
type Form[D any] struct {
	mode  FormMode
	id    string
	draft D
}

// Creating opens a form for a new record.
func Creating[D any](draft D) Form[D] {
	return Form[D]{mode: FormCreating, draft: draft}
}

// Editing opens a form for the record id.
func Editing[D any](id string, draft D) (Form[D], error) {
	if id == "" {
		return Form[D]{}, ErrEditingWithoutID
	}
	return Form[D]{mode: FormEditing, id: id, draft: draft}, nil
}

// Mode returns the form mode.
func (f Form[D]) Mode() FormMode { return f.mode }

// ID returns the edited record id; it is "" unless editing.
func (f Form[D]) ID() string { return f.id }

// Draft returns the values in the form.
func (f Form[D]) Draft() D { return f.draft }

func (f Form[D]) IsEditing() bool  { return f.mode == FormEditing }
func (f Form[D]) IsCreating() bool { return f.mode == FormCreating }

// WithDraft returns the same form holding draft.
func (f Form[D]) WithDraft(draft D) Form[D] {
	f.draft = draft
	return f
}
