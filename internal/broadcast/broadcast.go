// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

// Package broadcast defines the internal fan-out interface.
//
// The poller and producer paths publish through a Broadcaster without
// knowing which transports are attached; the WebSocket hub and the SSE
// broker both implement it, and Multi combines them. Broadcasting with
// no listeners is a no-op, never an error.
package broadcast

import (
	"github.com/tomtom215/pulse/internal/models"
)

// Broadcaster delivers events to all currently connected clients of a
// transport. Implementations must not block the caller on slow clients.
type Broadcaster interface {
	// BroadcastNew fans out newly detected notifications, ordered oldest
	// first, as a single "new" event.
	BroadcastNew(notifications []models.Notification)

	// BroadcastHeartbeat fans out an empty keepalive event.
	BroadcastHeartbeat()
}

// Multi fans out to several broadcasters in order.
type Multi []Broadcaster

// BroadcastNew implements Broadcaster.
func (m Multi) BroadcastNew(notifications []models.Notification) {
	for _, b := range m {
		b.BroadcastNew(notifications)
	}
}

// BroadcastHeartbeat implements Broadcaster.
func (m Multi) BroadcastHeartbeat() {
	for _, b := range m {
		b.BroadcastHeartbeat()
	}
}
