// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/pulse/internal/models"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// serveStream runs a WebSocket server that hands each accepted
// connection to serve. It returns the ws:// URL.
func serveStream(t *testing.T, serve func(conn *websocket.Conn, attempt int)) string {
	t.Helper()

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serve(conn, int(attempts.Add(1)))
	}))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestConnAppliesServerEvents(t *testing.T) {
	url := serveStream(t, func(conn *websocket.Conn, attempt int) {
		_ = conn.WriteJSON(models.NewEvent(models.EventConnected, nil))
		_ = conn.WriteJSON(models.NewEvent(models.EventInitial, []models.Notification{
			notification("snapshot", false),
		}))
		_ = conn.WriteJSON(models.NewEvent(models.EventNew, []models.Notification{
			notification("live", false),
		}))
		// Hold the connection open until the client closes it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	f := New()
	c := Dial(context.Background(), url, f)
	defer func() { _ = c.Close() }()

	waitFor(t, "live event", func() bool { return f.UnreadCount() == 2 })

	got := f.Notifications()
	if len(got) != 2 || got[0].Message != "live" {
		t.Fatalf("unexpected feed state: %+v", got)
	}
}

func TestConnReconnectsAndResyncs(t *testing.T) {
	url := serveStream(t, func(conn *websocket.Conn, attempt int) {
		if attempt == 1 {
			_ = conn.WriteJSON(models.NewEvent(models.EventInitial, []models.Notification{
				notification("first-session", false),
			}))
			// Drop the connection to force a reconnect.
			_ = conn.Close()
			return
		}
		_ = conn.WriteJSON(models.NewEvent(models.EventInitial, []models.Notification{
			notification("second-session-a", false),
			notification("second-session-b", false),
		}))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	f := New()
	c := Dial(context.Background(), url, f)
	defer func() { _ = c.Close() }()

	waitFor(t, "resynced snapshot", func() bool {
		got := f.Notifications()
		return len(got) == 2 && got[0].Message == "second-session-a"
	})
	if f.UnreadCount() != 2 {
		t.Errorf("expected resync to reset unread to snapshot, got %d", f.UnreadCount())
	}
}

func TestCloseStopsReconnectLoop(t *testing.T) {
	var dials atomic.Int32
	url := serveStream(t, func(conn *websocket.Conn, attempt int) {
		dials.Store(int32(attempt))
		_ = conn.Close()
	})

	f := New()
	c := Dial(context.Background(), url, f)

	waitFor(t, "first dial", func() bool { return dials.Load() >= 1 })

	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	settled := dials.Load()
	time.Sleep(500 * time.Millisecond)
	if dials.Load() != settled {
		t.Error("connection kept redialing after Close")
	}
}
