// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries runs the event log statements.
type Queries struct {
	db DBTX
}

// New returns Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Event is a persisted log record.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	Metadata  string
	CreatedAt time.Time
}

// CreateEventParams holds the columns of a new event.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	Metadata  string
	CreatedAt time.Time
}

const createEvent = `INSERT INTO events (level, category, message, metadata, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id, level, category, message, metadata, created_at`

// CreateEvent inserts an event and returns the stored row.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (Event, error) {
	row := q.db.QueryRowContext(ctx, createEvent,
		arg.Level,
		arg.Category,
		arg.Message,
		arg.Metadata,
		arg.CreatedAt.UTC(),
	)
	var e Event
	err := row.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.Metadata, &e.CreatedAt)
	return e, err
}

const listRecentEvents = `SELECT id, level, category, message, metadata, created_at
FROM events
ORDER BY created_at DESC, id DESC
LIMIT ?`

// ListRecentEvents returns the newest events first.
func (q *Queries) ListRecentEvents(ctx context.Context, limit int64) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, listRecentEvents, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteEventsBefore = `DELETE FROM events WHERE created_at < ?`

// DeleteEventsBefore purges events older than cutoff and returns the count removed.
func (q *Queries) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteEventsBefore, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
