// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

// Package models defines the shared data structures for Pulse.
//
// It contains the Notification record, the wire-level Event envelope
// delivered over WebSocket and SSE, request/response types for the HTTP
// API, and the role constants used by authorization.
package models
