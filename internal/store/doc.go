// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

// Package store persists notifications in an embedded DuckDB database.
//
// The notifications table is append-only. The store assigns IDs and
// created_at timestamps at insert time; created_at is strictly monotonic
// within a process, which keeps the poller's watermark-based change
// detection exact (no two records share a timestamp, so "created_at >
// watermark" never re-delivers or skips).
package store
