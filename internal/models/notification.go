// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package models

import (
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Notification kinds produced by the built-in ingest paths.
// Kind is free-form for API producers; these constants cover the
// notifications Pulse itself creates.
const (
	KindOrder  = "order"
	KindSystem = "system"
)

// Notification is a single immutable notification record.
//
// Records are append-only: once inserted, id, kind, message, payload,
// source, and created_at never change. CreatedAt is assigned by the
// store at insert time and is the ordering key for change detection.
type Notification struct {
	ID        uuid.UUID       `json:"id"`
	Kind      string          `json:"kind"`
	Message   string          `json:"message"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Source    string          `json:"source,omitempty"`
	Read      bool            `json:"read"`
	CreatedAt time.Time       `json:"created_at"`
}

// EventType identifies a server-to-client event on the notification stream.
type EventType string

// Stream event types. The same envelope is delivered over WebSocket
// and SSE; SSE additionally carries the type as the named event.
const (
	// EventConnected is sent once immediately after a client connects.
	EventConnected EventType = "connected"

	// EventInitial carries the backlog snapshot (most recent records,
	// newest first) sent to a client right after connected.
	EventInitial EventType = "initial"

	// EventNew carries one poll cycle's worth of newly detected records,
	// ordered oldest first.
	EventNew EventType = "new"

	// EventHeartbeat is an empty keepalive emitted on the heartbeat tick.
	EventHeartbeat EventType = "heartbeat"

	// EventPing and EventPong are the application-level keepalive pair
	// used by WebSocket clients.
	EventPing EventType = "ping"
	EventPong EventType = "pong"
)

// Event is the envelope broadcast to connected clients.
type Event struct {
	Type          EventType      `json:"type"`
	Notifications []Notification `json:"notifications,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}

// NewEvent builds an event envelope stamped with the current time.
func NewEvent(eventType EventType, notifications []Notification) Event {
	return Event{
		Type:          eventType,
		Notifications: notifications,
		Timestamp:     time.Now().UTC(),
	}
}

// CreateNotificationRequest is the body of POST /api/v1/notifications.
type CreateNotificationRequest struct {
	Kind    string          `json:"kind" validate:"required,max=64"`
	Message string          `json:"message" validate:"required,max=500"`
	Payload json.RawMessage `json:"payload,omitempty" validate:"omitempty,max=8192"`
	Source  string          `json:"source,omitempty" validate:"omitempty,max=64"`
}

// OrderWebhookPayload is the order-created webhook body accepted by
// POST /api/v1/webhooks/orders.
type OrderWebhookPayload struct {
	OrderID      string  `json:"order_id" validate:"required,max=64"`
	OrderNumber  string  `json:"order_number" validate:"required,max=32"`
	CustomerName string  `json:"customer_name" validate:"omitempty,max=128"`
	TotalPrice   float64 `json:"total_price" validate:"gte=0"`
	Currency     string  `json:"currency" validate:"omitempty,len=3"`
	ItemCount    int     `json:"item_count" validate:"gte=0"`
}

// NotificationStats reports store and connection counts for
// GET /api/v1/notifications/stats.
type NotificationStats struct {
	TotalNotifications int64 `json:"total_notifications"`
	WebSocketClients   int   `json:"websocket_clients"`
	SSEClients         int   `json:"sse_clients"`
}
