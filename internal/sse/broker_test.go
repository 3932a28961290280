// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/pulse/internal/models"
)

// sseFrame is one parsed SSE frame: a named event with a data payload,
// or a bare comment.
type sseFrame struct {
	name    string
	data    string
	comment string
}

// subscribeTest connects to the broker over a real HTTP server and
// returns a channel of parsed frames.
func subscribeTest(t *testing.T, b *Broker) (chan sseFrame, context.CancelFunc) {
	t.Helper()

	server := httptest.NewServer(b)
	t.Cleanup(server.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %q", ct)
	}

	frames := make(chan sseFrame, 64)
	go func() {
		defer resp.Body.Close()
		defer close(frames)

		scanner := bufio.NewScanner(resp.Body)
		var frame sseFrame
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case line == "":
				frames <- frame
				frame = sseFrame{}
			case strings.HasPrefix(line, "event: "):
				frame.name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				frame.data = strings.TrimPrefix(line, "data: ")
			case strings.HasPrefix(line, ":"):
				frame.comment = strings.TrimSpace(strings.TrimPrefix(line, ":"))
			}
		}
	}()
	return frames, cancel
}

func nextFrame(t *testing.T, frames chan sseFrame) sseFrame {
	t.Helper()

	select {
	case frame, ok := <-frames:
		if !ok {
			t.Fatal("stream closed before expected frame")
		}
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return sseFrame{}
	}
}

func decodeEvent(t *testing.T, frame sseFrame) models.Event {
	t.Helper()

	var event models.Event
	if err := json.Unmarshal([]byte(frame.data), &event); err != nil {
		t.Fatalf("decode event data %q: %v", frame.data, err)
	}
	return event
}

func waitForSubscribers(t *testing.T, b *Broker, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for b.SubscriberCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d subscribers, got %d", want, b.SubscriberCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSubscribeSendsConnectedThenInitial(t *testing.T) {
	backlog := []models.Notification{
		{ID: uuid.New(), Kind: models.KindOrder, Message: "newest"},
		{ID: uuid.New(), Kind: models.KindOrder, Message: "older"},
	}
	b := NewBroker(func(ctx context.Context) ([]models.Notification, error) {
		return backlog, nil
	})

	frames, _ := subscribeTest(t, b)

	first := nextFrame(t, frames)
	if first.name != string(models.EventConnected) {
		t.Fatalf("expected connected frame first, got %q", first.name)
	}
	if decodeEvent(t, first).Type != models.EventConnected {
		t.Error("envelope type must match SSE event name")
	}

	second := nextFrame(t, frames)
	if second.name != string(models.EventInitial) {
		t.Fatalf("expected initial frame second, got %q", second.name)
	}
	initial := decodeEvent(t, second)
	if len(initial.Notifications) != 2 {
		t.Fatalf("expected 2 backlog notifications, got %d", len(initial.Notifications))
	}
	if initial.Notifications[0].Message != "newest" {
		t.Errorf("backlog order must be preserved, got %q first", initial.Notifications[0].Message)
	}
}

func TestBroadcastNewReachesSubscriber(t *testing.T) {
	b := NewBroker(nil)

	frames, _ := subscribeTest(t, b)
	nextFrame(t, frames)
	nextFrame(t, frames)
	waitForSubscribers(t, b, 1)

	b.BroadcastNew([]models.Notification{{ID: uuid.New(), Kind: models.KindSystem, Message: "deploy finished"}})

	frame := nextFrame(t, frames)
	if frame.name != string(models.EventNew) {
		t.Fatalf("expected new frame, got %q", frame.name)
	}
	event := decodeEvent(t, frame)
	if len(event.Notifications) != 1 || event.Notifications[0].Message != "deploy finished" {
		t.Fatalf("unexpected batch: %+v", event.Notifications)
	}
}

func TestHeartbeatIsWrittenAsComment(t *testing.T) {
	b := NewBroker(nil)

	frames, _ := subscribeTest(t, b)
	nextFrame(t, frames)
	nextFrame(t, frames)
	waitForSubscribers(t, b, 1)

	b.BroadcastHeartbeat()

	frame := nextFrame(t, frames)
	if frame.comment != "heartbeat" {
		t.Fatalf("expected heartbeat comment frame, got %+v", frame)
	}
	if frame.name != "" || frame.data != "" {
		t.Errorf("heartbeat must not carry an event or data, got %+v", frame)
	}
}

func TestBroadcastWithNoSubscribersSucceeds(t *testing.T) {
	b := NewBroker(nil)

	// Must not panic or block with an empty subscriber set.
	b.BroadcastNew([]models.Notification{{Message: "n"}})
	b.BroadcastHeartbeat()

	if count := b.SubscriberCount(); count != 0 {
		t.Errorf("expected 0 subscribers, got %d", count)
	}
}

func TestDisconnectRemovesSubscriber(t *testing.T) {
	b := NewBroker(nil)

	frames, cancel := subscribeTest(t, b)
	nextFrame(t, frames)
	nextFrame(t, frames)
	waitForSubscribers(t, b, 1)

	cancel()
	waitForSubscribers(t, b, 0)
}
