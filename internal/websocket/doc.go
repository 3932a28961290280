// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

// Package websocket implements the WebSocket transport for the
// notification stream.
//
// A single Hub owns the set of connected clients and fans events out to
// them through per-client buffered channels. Connecting clients receive a
// "connected" event followed by an "initial" backlog snapshot; after that
// they see the same "new" and "heartbeat" events as every other client.
// Slow clients are disconnected rather than allowed to block the fan-out.
//
// The hub runs under suture supervision via RunWithContext and closes
// all client connections on shutdown.
package websocket
