// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed backend call.
type Kind string

const (
	// KindNetwork means no response was received.
	KindNetwork Kind = "network"
	// KindClient is a 4xx response.
	KindClient Kind = "client"
	// KindServer is a 5xx response or a body that could not be understood.
	KindServer Kind = "server"
)

// Error is a failed backend call.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status; 0 for network failures
	Message string // human-readable, taken from the body when present
	Op      string // logical operation, e.g. "admin.createCourse"
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	prefix := string(e.Kind)
	if e.Op != "" {
		prefix = e.Op + ": " + prefix
	}
	if e.Status != 0 {
		prefix = fmt.Sprintf("%s %d", prefix, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the kind sentinels, so errors.Is(err, ErrServer) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil {
		return false
	}
	return t.Status == 0 && t.Op == "" && t.Message == "" && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrNetwork = &Error{Kind: KindNetwork}
	ErrClient  = &Error{Kind: KindClient}
	ErrServer  = &Error{Kind: KindServer}
)

// IsAuthFailure reports a 401 or 403.
func (e *Error) IsAuthFailure() bool {
	return e != nil && (e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

// FromError extracts an *Error, or nil.
func FromError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	if e := FromError(err); e != nil {
		return e.Status
	}
	return 0
}

// MessageOf returns the server-supplied message for client errors and
// fallback otherwise. Network and server details are not shown to users.
func MessageOf(err error, fallback string) string {
	e := FromError(err)
	if e == nil || e.Kind != KindClient || e.Message == "" {
		return fallback
	}
	return e.Message
}

func newStatusError(op string, status int, message string) *Error {
	kind := KindClient
	if status >= 500 {
		kind = KindServer
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{Kind: kind, Status: status, Message: message, Op: op}
}
