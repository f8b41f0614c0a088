// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that also persists WARN and
// above to the events table, so operators can review backend failures
// without shell access.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/olegiv/campus-go/internal/model"
	"github.com/olegiv/campus-go/internal/store"
)

// EventLogHandler wraps another handler and writes records at or above
// its level to the event log.
type EventLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level
	attrs   []slog.Attr // attrs added through WithAttrs, kept for metadata
}

// NewEventLogHandler forwards WARN and above to the event log.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, db, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel creates a handler with a custom threshold.
func NewEventLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level {
		h.writeToEventLog(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EventLogHandler{
		inner:   h.inner.WithAttrs(attrs),
		queries: h.queries,
		level:   h.level,
		attrs:   append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...),
	}
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{
		inner:   h.inner.WithGroup(name),
		queries: h.queries,
		level:   h.level,
		attrs:   h.attrs,
	}
}

// writeToEventLog uses a background context so events survive cancelled
// requests.
func (h *EventLogHandler) writeToEventLog(r slog.Record) {
	attrs := h.collect(r)
	_, _ = h.queries.CreateEvent(context.Background(), store.CreateEventParams{
		Level:     eventLevel(r.Level),
		Category:  category(r.Message, attrs),
		Message:   r.Message,
		Metadata:  metadata(attrs),
		CreatedAt: r.Time,
	})
}

func (h *EventLogHandler) collect(r slog.Record) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	return attrs
}

func eventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// category prefers an explicit "category" attribute and otherwise infers
// one from the message.
func category(msg string, attrs []slog.Attr) string {
	for i := len(attrs) - 1; i >= 0; i-- {
		if attrs[i].Key == "category" {
			return attrs[i].Value.String()
		}
	}

	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "logout") || strings.Contains(msg, "token"):
		return model.EventCategoryAuth
	case strings.Contains(msg, "backend"):
		return model.EventCategoryAPI
	case strings.Contains(msg, "upload"):
		return model.EventCategoryUpload
	case strings.Contains(msg, "cache"):
		return model.EventCategoryCache
	default:
		return model.EventCategorySystem
	}
}

// metadata renders the remaining attributes as a flat JSON object.
func metadata(attrs []slog.Attr) string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		if a.Key == "category" || a.Key == "" {
			continue
		}
		m[a.Key] = a.Value.Resolve().String()
	}
	if len(m) == 0 {
		return "{}"
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(data)
}
