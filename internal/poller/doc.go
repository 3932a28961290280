// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

// Package poller implements watermark-based change detection over the
// notification store.
//
// The poller is the delivery safety net: even when the NATS fast path is
// enabled, every record eventually flows through a poll cycle, so a bus
// outage degrades latency to the poll interval instead of losing events.
// It runs as a suture-supervised service and persists its watermark to
// the checkpoint store so restarts resume where delivery left off.
package poller
