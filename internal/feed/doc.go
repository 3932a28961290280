// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

// Package feed is the Go client for the notification stream.
//
// Feed is the per-consumer state machine: a bounded newest-first list,
// an unread counter, and the notification panel's open/closed state.
// Conn keeps a Feed synchronised over a reconnecting WebSocket; every
// reconnect resynchronises through the server's "initial" snapshot.
package feed
