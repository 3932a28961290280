// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package checkpoint

import (
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open checkpoint store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLoadWithoutCheckpoint(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load()
	if !errors.Is(err, ErrNoCheckpoint) {
		t.Errorf("expected ErrNoCheckpoint, got %v", err)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	watermark := time.Date(2026, 8, 30, 12, 0, 0, 123456000, time.UTC)
	if err := s.Save(watermark); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.Equal(watermark) {
		t.Errorf("expected %v, got %v", watermark, loaded)
	}
}

func TestSaveOverwritesPrevious(t *testing.T) {
	s := newTestStore(t)

	first := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	second := first.Add(time.Minute)

	if err := s.Save(first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := s.Save(second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.Equal(second) {
		t.Errorf("expected latest watermark %v, got %v", second, loaded)
	}
}

func TestCheckpointSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	watermark := time.Date(2026, 8, 30, 15, 30, 0, 0, time.UTC)
	if err := s.Save(watermark); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	loaded, err := reopened.Load()
	if err != nil {
		t.Fatalf("load after reopen: %v", err)
	}
	if !loaded.Equal(watermark) {
		t.Errorf("expected %v after reopen, got %v", watermark, loaded)
	}
}
