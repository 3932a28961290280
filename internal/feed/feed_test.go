// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package feed

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/pulse/internal/models"
)

func notification(message string, read bool) models.Notification {
	return models.Notification{
		ID:        uuid.New(),
		Kind:      models.KindOrder,
		Message:   message,
		Read:      read,
		CreatedAt: time.Now().UTC(),
	}
}

func batchOf(n int, prefix string) []models.Notification {
	batch := make([]models.Notification, n)
	for i := range batch {
		batch[i] = notification(fmt.Sprintf("%s-%d", prefix, i), false)
	}
	return batch
}

func TestInitialReplacesStateAndCountsUnread(t *testing.T) {
	t.Parallel()

	f := New()
	f.Apply(models.NewEvent(models.EventNew, batchOf(3, "stale")))

	snapshot := []models.Notification{
		notification("a", false),
		notification("b", true),
		notification("c", false),
	}
	f.Apply(models.NewEvent(models.EventInitial, snapshot))

	if got := f.Notifications(); len(got) != 3 {
		t.Fatalf("expected snapshot to replace state, got %d entries", len(got))
	}
	if f.UnreadCount() != 2 {
		t.Errorf("expected 2 unread, got %d", f.UnreadCount())
	}
}

func TestEmptyInitialOnEmptyStore(t *testing.T) {
	t.Parallel()

	f := New()
	f.Apply(models.NewEvent(models.EventInitial, nil))

	if len(f.Notifications()) != 0 {
		t.Error("expected empty list")
	}
	if f.UnreadCount() != 0 {
		t.Errorf("expected 0 unread, got %d", f.UnreadCount())
	}
}

func TestNewAppliesFullBatchNewestFirst(t *testing.T) {
	t.Parallel()

	f := New()
	// The stream delivers batches oldest first.
	batch := []models.Notification{
		notification("t1", false),
		notification("t2", false),
		notification("t3", false),
	}
	f.Apply(models.NewEvent(models.EventNew, batch))

	got := f.Notifications()
	if len(got) != 3 {
		t.Fatalf("expected the full batch applied, got %d entries", len(got))
	}
	if got[0].Message != "t3" || got[2].Message != "t1" {
		t.Errorf("expected newest first ordering, got [%s %s %s]", got[0].Message, got[1].Message, got[2].Message)
	}
	if f.UnreadCount() != 3 {
		t.Errorf("expected unread to grow by the batch size, got %d", f.UnreadCount())
	}
}

func TestListIsBoundedAtFifty(t *testing.T) {
	t.Parallel()

	f := New()
	f.Apply(models.NewEvent(models.EventNew, batchOf(40, "first")))
	f.Apply(models.NewEvent(models.EventNew, batchOf(20, "second")))

	got := f.Notifications()
	if len(got) != MaxNotifications {
		t.Fatalf("expected list bounded at %d, got %d", MaxNotifications, len(got))
	}
	// The newest batch survives in full; the oldest entries fall off.
	if got[0].Message != "second-19" {
		t.Errorf("expected newest record first, got %q", got[0].Message)
	}
	if f.UnreadCount() != 60 {
		t.Errorf("unread counts deliveries, not list entries: expected 60, got %d", f.UnreadCount())
	}
}

func TestInitialSnapshotIsTruncated(t *testing.T) {
	t.Parallel()

	f := New()
	f.Apply(models.NewEvent(models.EventInitial, batchOf(60, "n")))

	if got := len(f.Notifications()); got != MaxNotifications {
		t.Errorf("expected snapshot truncated to %d, got %d", MaxNotifications, got)
	}
}

func TestUnreadAccountingAcrossDeliveries(t *testing.T) {
	t.Parallel()

	f := New()
	deliveries := []int{1, 3, 2}
	total := 0
	for _, n := range deliveries {
		f.Apply(models.NewEvent(models.EventNew, batchOf(n, "d")))
		total += n
	}

	if f.UnreadCount() != total {
		t.Errorf("expected %d unread after deliveries, got %d", total, f.UnreadCount())
	}
}

func TestOpeningPanelMarksAllRead(t *testing.T) {
	t.Parallel()

	f := New()
	f.Apply(models.NewEvent(models.EventNew, batchOf(5, "n")))

	if open := f.TogglePanel(); !open {
		t.Fatal("expected panel to open")
	}
	if f.UnreadCount() != 0 {
		t.Errorf("expected 0 unread after open, got %d", f.UnreadCount())
	}
	for i, n := range f.Notifications() {
		if !n.Read {
			t.Errorf("entry %d still unread after open", i)
		}
	}
}

func TestClosingPanelChangesNothingElse(t *testing.T) {
	t.Parallel()

	f := New()
	f.Apply(models.NewEvent(models.EventNew, batchOf(2, "n")))
	f.TogglePanel()
	f.Apply(models.NewEvent(models.EventNew, batchOf(1, "late")))

	if open := f.TogglePanel(); open {
		t.Fatal("expected panel to close")
	}
	if f.UnreadCount() != 1 {
		t.Errorf("closing must not touch unread, expected 1, got %d", f.UnreadCount())
	}
}

func TestNewWhilePanelOpenStillCountsUnread(t *testing.T) {
	t.Parallel()

	f := New()
	f.TogglePanel()
	f.Apply(models.NewEvent(models.EventNew, batchOf(2, "n")))

	if f.UnreadCount() != 2 {
		t.Errorf("expected 2 unread, got %d", f.UnreadCount())
	}
}

func TestReconnectInitialDiscardsLocalReadState(t *testing.T) {
	t.Parallel()

	f := New()
	f.Apply(models.NewEvent(models.EventNew, batchOf(3, "n")))
	f.TogglePanel() // everything read locally

	// A reconnect replays the store's view, where read is never persisted.
	f.Apply(models.NewEvent(models.EventInitial, batchOf(3, "replay")))

	if f.UnreadCount() != 3 {
		t.Errorf("expected local read state discarded on resync, got %d unread", f.UnreadCount())
	}
}

func TestConnectedAndHeartbeatAreIgnored(t *testing.T) {
	t.Parallel()

	f := New()
	f.Apply(models.NewEvent(models.EventNew, batchOf(2, "n")))

	f.Apply(models.NewEvent(models.EventConnected, nil))
	f.Apply(models.NewEvent(models.EventHeartbeat, nil))

	if len(f.Notifications()) != 2 || f.UnreadCount() != 2 {
		t.Errorf("stateless events must not change the feed: %d entries, %d unread",
			len(f.Notifications()), f.UnreadCount())
	}
}
