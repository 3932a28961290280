// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB database/sql driver
	"github.com/google/uuid"

	"github.com/tomtom215/pulse/internal/config"
	"github.com/tomtom215/pulse/internal/logging"
	"github.com/tomtom215/pulse/internal/metrics"
	"github.com/tomtom215/pulse/internal/models"
)

// Sentinel errors returned by store operations.
var (
	// ErrNotFound indicates the requested notification does not exist.
	ErrNotFound = errors.New("notification not found")

	// ErrEmptyMessage indicates an insert with no message text.
	ErrEmptyMessage = errors.New("notification message must not be empty")
)

const schema = `
CREATE TABLE IF NOT EXISTS notifications (
    id UUID PRIMARY KEY,
    kind VARCHAR NOT NULL,
    message VARCHAR NOT NULL,
    payload JSON,
    source VARCHAR,
    "read" BOOLEAN NOT NULL DEFAULT false,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications (created_at);
`

// Store is the DuckDB-backed notification store.
//
// The notifications table is append-only: records are immutable once
// inserted. created_at is assigned here, not by callers, and is strictly
// monotonic within a process so the poller watermark never splits a batch.
type Store struct {
	conn *sql.DB

	// clockMu serializes created_at assignment.
	clockMu      sync.Mutex
	lastAssigned time.Time
}

// New opens the DuckDB database at cfg.Path and initializes the schema.
func New(cfg config.DatabaseConfig) (*Store, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	connStr := cfg.Path
	if cfg.Path != ":memory:" && cfg.Path != "" {
		connStr = fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
			cfg.Path, threads, cfg.MaxMemory)
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(threads)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	s := &Store{conn: conn}
	if err := s.initialize(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Int("threads", threads).Msg("Notification store opened")
	return s, nil
}

// initialize creates the notifications table and indexes.
func (s *Store) initialize() error {
	_, err := s.conn.Exec(schema)
	return err
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// nextCreatedAt assigns a strictly increasing created_at timestamp.
// Wall clock regressions (NTP adjustments) must not produce a timestamp
// at or before the previous one, or the watermark could skip records.
func (s *Store) nextCreatedAt() time.Time {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()

	now := time.Now().UTC()
	if !now.After(s.lastAssigned) {
		now = s.lastAssigned.Add(time.Microsecond)
	}
	s.lastAssigned = now
	return now
}

// Insert persists a new notification. The store assigns ID (when zero)
// and created_at; the returned record carries the assigned values.
func (s *Store) Insert(ctx context.Context, n models.Notification) (models.Notification, error) {
	if n.Message == "" {
		return models.Notification{}, ErrEmptyMessage
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.Read = false
	n.CreatedAt = s.nextCreatedAt()

	var payload interface{}
	if len(n.Payload) > 0 {
		payload = string(n.Payload)
	}

	start := time.Now()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO notifications (id, kind, message, payload, source, "read", created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID.String(), n.Kind, n.Message, payload, n.Source, n.Read, n.CreatedAt,
	)
	metrics.RecordDBQuery("INSERT", "notifications", time.Since(start), err)
	if err != nil {
		return models.Notification{}, fmt.Errorf("failed to insert notification: %w", err)
	}

	return n, nil
}

// ListSince returns all notifications with created_at strictly after the
// watermark, ordered oldest first. This is the poller's change detection
// query; ordering matters because the last record advances the watermark.
func (s *Store) ListSince(ctx context.Context, watermark time.Time) ([]models.Notification, error) {
	start := time.Now()
	rows, err := s.conn.QueryContext(ctx,
		`SELECT CAST(id AS VARCHAR), kind, message, payload, source, "read", created_at
		 FROM notifications
		 WHERE created_at > ?
		 ORDER BY created_at ASC`,
		watermark,
	)
	metrics.RecordDBQuery("SELECT", "notifications", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications since %v: %w", watermark, err)
	}
	defer func() { _ = rows.Close() }()

	return scanNotifications(rows)
}

// ListRecent returns the most recent limit notifications, newest first.
// Used for the initial backlog snapshot on client connect.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]models.Notification, error) {
	start := time.Now()
	rows, err := s.conn.QueryContext(ctx,
		`SELECT CAST(id AS VARCHAR), kind, message, payload, source, "read", created_at
		 FROM notifications
		 ORDER BY created_at DESC
		 LIMIT ?`,
		limit,
	)
	metrics.RecordDBQuery("SELECT", "notifications", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent notifications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanNotifications(rows)
}

// Get returns a single notification by ID.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (models.Notification, error) {
	start := time.Now()
	row := s.conn.QueryRowContext(ctx,
		`SELECT CAST(id AS VARCHAR), kind, message, payload, source, "read", created_at
		 FROM notifications
		 WHERE id = ?`,
		id.String(),
	)

	n, err := scanNotification(row)
	metrics.RecordDBQuery("SELECT", "notifications", time.Since(start), err)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Notification{}, ErrNotFound
	}
	if err != nil {
		return models.Notification{}, fmt.Errorf("failed to get notification %s: %w", id, err)
	}
	return n, nil
}

// Count returns the total number of notifications.
func (s *Store) Count(ctx context.Context) (int64, error) {
	start := time.Now()
	var count int64
	err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`).Scan(&count)
	metrics.RecordDBQuery("SELECT", "notifications", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNotification(row scanner) (models.Notification, error) {
	var (
		n       models.Notification
		idStr   string
		payload sql.NullString
		source  sql.NullString
	)

	if err := row.Scan(&idStr, &n.Kind, &n.Message, &payload, &source, &n.Read, &n.CreatedAt); err != nil {
		return models.Notification{}, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return models.Notification{}, fmt.Errorf("invalid notification id %q: %w", idStr, err)
	}
	n.ID = id

	if payload.Valid && payload.String != "" {
		n.Payload = []byte(payload.String)
	}
	if source.Valid {
		n.Source = source.String
	}
	n.CreatedAt = n.CreatedAt.UTC()

	return n, nil
}

func scanNotifications(rows *sql.Rows) ([]models.Notification, error) {
	var result []models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return result, nil
}
