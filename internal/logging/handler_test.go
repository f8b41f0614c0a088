// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/olegiv/campus-go/internal/model"
	"github.com/olegiv/campus-go/internal/store"
)

// testDB creates a temporary test database with migrations applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "logging.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func listEvents(t *testing.T, db *sql.DB) []store.Event {
	t.Helper()
	events, err := store.New(db).ListRecentEvents(context.Background(), 50)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	return events
}

func TestEventLogHandler_Levels(t *testing.T) {
	tests := []struct {
		name      string
		log       func(*slog.Logger)
		wantCount int
		wantLevel string
	}{
		{"error", func(l *slog.Logger) { l.Error("backend call failed", "status", 500) }, 1, model.EventLevelError},
		{"warn", func(l *slog.Logger) { l.Warn("slow backend", "duration_ms", 5000) }, 1, model.EventLevelWarning},
		{"info", func(l *slog.Logger) { l.Info("request served") }, 0, ""},
		{"debug", func(l *slog.Logger) { l.Debug("details") }, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testDB(t)
			tt.log(slog.New(NewEventLogHandler(discardHandler{}, db)))

			events := listEvents(t, db)
			if len(events) != tt.wantCount {
				t.Fatalf("expected %d events, got %d", tt.wantCount, len(events))
			}
			if tt.wantCount > 0 && events[0].Level != tt.wantLevel {
				t.Errorf("Level = %q, want %q", events[0].Level, tt.wantLevel)
			}
		})
	}
}

func TestEventLogHandler_CustomLevel(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewEventLogHandlerWithLevel(discardHandler{}, db, slog.LevelError))

	logger.Warn("not persisted")
	logger.Error("persisted")

	events := listEvents(t, db)
	if len(events) != 1 || events[0].Message != "persisted" {
		t.Fatalf("events = %+v, want only the error", events)
	}
}

func TestEventLogHandler_CategoryInference(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"login failed for admin@college.edu", model.EventCategoryAuth},
		{"stored token could not be decoded", model.EventCategoryAuth},
		{"backend unreachable", model.EventCategoryAPI},
		{"upload rejected: too large", model.EventCategoryUpload},
		{"cache warm-up failed", model.EventCategoryCache},
		{"disk almost full", model.EventCategorySystem},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			db := testDB(t)
			slog.New(NewEventLogHandler(discardHandler{}, db)).Warn(tt.msg)

			events := listEvents(t, db)
			if len(events) != 1 {
				t.Fatalf("expected 1 event, got %d", len(events))
			}
			if events[0].Category != tt.want {
				t.Errorf("Category = %q, want %q", events[0].Category, tt.want)
			}
		})
	}
}

func TestEventLogHandler_ExplicitCategory(t *testing.T) {
	db := testDB(t)
	slog.New(NewEventLogHandler(discardHandler{}, db)).
		Warn("login page slow", "category", model.EventCategoryAdmin)

	events := listEvents(t, db)
	if events[0].Category != model.EventCategoryAdmin {
		t.Errorf("Category = %q, want %q", events[0].Category, model.EventCategoryAdmin)
	}
}

func TestEventLogHandler_Metadata(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db)).With("request_id", "r-1")

	logger.Error("backend call failed",
		"category", model.EventCategoryAPI,
		"op", "admin.getCourses",
		"message", `quote " and newline
here`,
	)

	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Category != model.EventCategoryAPI {
		t.Errorf("Category = %q", events[0].Category)
	}

	var meta map[string]string
	if err := json.Unmarshal([]byte(events[0].Metadata), &meta); err != nil {
		t.Fatalf("metadata is not valid JSON: %v (%s)", err, events[0].Metadata)
	}
	if meta["op"] != "admin.getCourses" || meta["request_id"] != "r-1" {
		t.Errorf("metadata = %v", meta)
	}
	if _, ok := meta["category"]; ok {
		t.Error("category must not be repeated in metadata")
	}
	if meta["message"] != "quote \" and newline\nhere" {
		t.Errorf("message attr = %q", meta["message"])
	}
}

func TestEventLogHandler_EmptyMetadata(t *testing.T) {
	db := testDB(t)
	slog.New(NewEventLogHandler(discardHandler{}, db)).Warn("bare")

	if got := listEvents(t, db)[0].Metadata; got != "{}" {
		t.Errorf("Metadata = %q, want {}", got)
	}
}

func TestEventLogHandler_WithGroup(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db)).WithGroup("http")

	logger.Error("grouped")

	if n := len(listEvents(t, db)); n != 1 {
		t.Errorf("expected 1 event, got %d", n)
	}
}

func TestEventLevel(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, model.EventLevelInfo},
		{slog.LevelInfo, model.EventLevelInfo},
		{slog.LevelWarn, model.EventLevelWarning},
		{slog.LevelError, model.EventLevelError},
		{slog.LevelError + 4, model.EventLevelError},
	}
	for _, tt := range tests {
		if got := eventLevel(tt.level); got != tt.want {
			t.Errorf("eventLevel(%v) = %q, want %q", tt.level, got, tt.want)
		}
	}
}
