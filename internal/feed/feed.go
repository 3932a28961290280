// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package feed

import (
	"sync"

	"github.com/tomtom215/pulse/internal/models"
)

// MaxNotifications bounds the in-memory list. Older entries fall off the
// end; the store remains the full history.
const MaxNotifications = 50

// Feed holds the notification state for one consumer: a bounded
// newest-first list, an unread counter, and the open/closed state of the
// notification panel.
//
// Read state is session-local. It is never written back to the server,
// so a reconnect's "initial" snapshot resets every entry to unread.
type Feed struct {
	mu            sync.Mutex
	notifications []models.Notification
	unread        int
	panelOpen     bool
}

// New creates an empty Feed with the panel closed.
func New() *Feed {
	return &Feed{}
}

// Apply processes one inbound stream event. Events that carry no state
// ("connected", "heartbeat", "pong") are ignored.
func (f *Feed) Apply(event models.Event) {
	switch event.Type {
	case models.EventInitial:
		f.applyInitial(event.Notifications)
	case models.EventNew:
		f.applyNew(event.Notifications)
	}
}

// applyInitial replaces the entire list with the snapshot. The snapshot
// arrives newest first and already bounded by the server.
func (f *Feed) applyInitial(snapshot []models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.notifications = make([]models.Notification, len(snapshot))
	copy(f.notifications, snapshot)
	if len(f.notifications) > MaxNotifications {
		f.notifications = f.notifications[:MaxNotifications]
	}

	f.unread = 0
	for _, n := range f.notifications {
		if !n.Read {
			f.unread++
		}
	}
}

// applyNew prepends the whole batch. The batch arrives oldest first, so
// it is walked in order and each record pushed to the front, leaving the
// newest record at index 0. The unread counter grows by the full batch
// size.
func (f *Feed) applyNew(batch []models.Notification) {
	if len(batch) == 0 {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	merged := make([]models.Notification, 0, len(batch)+len(f.notifications))
	for i := len(batch) - 1; i >= 0; i-- {
		merged = append(merged, batch[i])
	}
	merged = append(merged, f.notifications...)
	if len(merged) > MaxNotifications {
		merged = merged[:MaxNotifications]
	}

	f.notifications = merged
	f.unread += len(batch)
}

// TogglePanel flips the panel state and returns the new state. Opening
// the panel marks every entry read and zeroes the unread counter;
// closing it changes nothing else.
func (f *Feed) TogglePanel() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.panelOpen = !f.panelOpen
	if f.panelOpen {
		for i := range f.notifications {
			f.notifications[i].Read = true
		}
		f.unread = 0
	}
	return f.panelOpen
}

// Notifications returns a copy of the current list, newest first.
func (f *Feed) Notifications() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Notification, len(f.notifications))
	copy(out, f.notifications)
	return out
}

// UnreadCount returns the current unread counter.
func (f *Feed) UnreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unread
}

// PanelOpen reports whether the panel is open.
func (f *Feed) PanelOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.panelOpen
}
