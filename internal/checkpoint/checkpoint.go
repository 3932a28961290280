// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

// Package checkpoint persists the poller watermark in BadgerDB.
//
// Without a checkpoint a restart initializes the watermark to "now" and
// notifications created while the process was down are never broadcast.
// Persisting the last delivered timestamp closes that gap; re-delivery of
// a few records after a crash is acceptable (at-least-once).
package checkpoint

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ErrNoCheckpoint indicates no watermark has been persisted yet.
var ErrNoCheckpoint = errors.New("no checkpoint stored")

const watermarkKey = "poller:watermark"

// Store persists poller watermarks in BadgerDB.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the checkpoint database at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint store: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing BadgerDB handle. Used by tests.
func NewWithDB(db *badger.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists the watermark. Timestamps are stored as RFC3339Nano so
// a checkpoint survives binary upgrades.
func (s *Store) Save(watermark time.Time) error {
	data := []byte(watermark.UTC().Format(time.RFC3339Nano))

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(watermarkKey), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// Load returns the persisted watermark, or ErrNoCheckpoint when none exists.
func (s *Store) Load() (time.Time, error) {
	var raw []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(watermarkKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoCheckpoint
		}
		if err != nil {
			return fmt.Errorf("get checkpoint: %w", err)
		}
		return item.Value(func(val []byte) error {
			raw = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return time.Time{}, err
	}

	watermark, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse checkpoint %q: %w", raw, err)
	}
	return watermark, nil
}
