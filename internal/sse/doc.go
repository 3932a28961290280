// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

// Package sse implements the Server-Sent Events fallback transport.
//
// It mirrors the WebSocket transport's event semantics: subscribers get
// "connected" then an "initial" backlog snapshot, then live "new" events.
// Heartbeats are written as SSE comments. SSE is one-way, so clients
// that need the ping/pong keepalive use the WebSocket transport instead.
package sse
