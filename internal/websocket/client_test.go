// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/pulse/internal/models"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// dialTestHub serves the hub over a real WebSocket and returns the
// peer-side connection.
func dialTestHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		NewClient(h, conn).Start()
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readPeerEvent(t *testing.T, conn *websocket.Conn) models.Event {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set read deadline: %v", err)
	}
	var event models.Event
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return event
}

func TestClientReceivesWelcomeAndBroadcast(t *testing.T) {
	backlog := []models.Notification{
		{ID: uuid.New(), Kind: models.KindOrder, Message: "backlog entry"},
	}
	h := NewHub(func(ctx context.Context) ([]models.Notification, error) {
		return backlog, nil
	})
	startHub(t, h)

	conn := dialTestHub(t, h)

	if event := readPeerEvent(t, conn); event.Type != models.EventConnected {
		t.Fatalf("expected connected, got %q", event.Type)
	}
	initial := readPeerEvent(t, conn)
	if initial.Type != models.EventInitial {
		t.Fatalf("expected initial, got %q", initial.Type)
	}
	if len(initial.Notifications) != 1 || initial.Notifications[0].Message != "backlog entry" {
		t.Fatalf("unexpected initial snapshot: %+v", initial.Notifications)
	}

	h.BroadcastNew([]models.Notification{{ID: uuid.New(), Kind: models.KindSystem, Message: "deploy finished"}})

	event := readPeerEvent(t, conn)
	if event.Type != models.EventNew {
		t.Fatalf("expected new, got %q", event.Type)
	}
	if len(event.Notifications) != 1 || event.Notifications[0].Message != "deploy finished" {
		t.Fatalf("unexpected batch: %+v", event.Notifications)
	}
}

func TestClientPingIsAnsweredWithPong(t *testing.T) {
	h := NewHub(nil)
	startHub(t, h)

	conn := dialTestHub(t, h)

	// Drain the welcome sequence.
	readPeerEvent(t, conn)
	readPeerEvent(t, conn)

	if err := conn.WriteJSON(models.NewEvent(models.EventPing, nil)); err != nil {
		t.Fatalf("write ping: %v", err)
	}

	event := readPeerEvent(t, conn)
	if event.Type != models.EventPong {
		t.Fatalf("expected pong, got %q", event.Type)
	}
}

func TestClientDisconnectUnregisters(t *testing.T) {
	h := NewHub(nil)
	startHub(t, h)

	conn := dialTestHub(t, h)
	readPeerEvent(t, conn)
	readPeerEvent(t, conn)

	if count := h.ClientCount(); count != 1 {
		t.Fatalf("expected 1 client, got %d", count)
	}

	if err := conn.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client was not unregistered after disconnect, count=%d", h.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
