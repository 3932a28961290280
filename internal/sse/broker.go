// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package sse

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/pulse/internal/logging"
	"github.com/tomtom215/pulse/internal/metrics"
	"github.com/tomtom215/pulse/internal/models"
)

// subscriberBuffer is the per-subscriber event queue depth. A subscriber
// whose buffer is full misses events rather than blocking the fan-out.
const subscriberBuffer = 256

// backlogTimeout bounds the store query made for each connecting subscriber.
const backlogTimeout = 3 * time.Second

// BacklogFunc fetches the initial snapshot for a connecting subscriber:
// the most recent notifications, newest first.
type BacklogFunc func(ctx context.Context) ([]models.Notification, error)

// Broker fans events out to Server-Sent Events subscribers.
//
// Each subscriber is an open HTTP response; ServeHTTP holds the
// connection and streams events until the client goes away. The same
// envelope used on the WebSocket transport is written as the SSE data
// field, with the event type duplicated as the SSE event name.
// Heartbeats are written as comment lines so intermediaries keep the
// connection alive without clients having to parse an event.
type Broker struct {
	subscribers map[uint64]chan models.Event
	backlog     BacklogFunc
	nextID      atomic.Uint64
	mu          sync.RWMutex
}

// NewBroker creates a new Broker. backlog may be nil, in which case the
// initial snapshot is always empty.
func NewBroker(backlog BacklogFunc) *Broker {
	return &Broker{
		subscribers: make(map[uint64]chan models.Event),
		backlog:     backlog,
	}
}

// ServeHTTP implements GET /api/v1/events. It streams until the client
// disconnects or the server shuts down.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	id, events := b.subscribe()
	defer b.unsubscribe(id)

	if err := writeEvent(w, models.NewEvent(models.EventConnected, nil)); err != nil {
		return
	}
	if err := writeEvent(w, models.NewEvent(models.EventInitial, b.fetchBacklog())); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			var err error
			if event.Type == models.EventHeartbeat {
				_, err = fmt.Fprint(w, ": heartbeat\n\n")
			} else {
				err = writeEvent(w, event)
			}
			if err != nil {
				return
			}
			flusher.Flush()
			metrics.SSEEventsSent.Inc()
		}
	}
}

// writeEvent writes one SSE frame: the event name then the JSON envelope.
func writeEvent(w http.ResponseWriter, event models.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
	return err
}

func (b *Broker) subscribe() (uint64, chan models.Event) {
	id := b.nextID.Add(1)
	events := make(chan models.Event, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[id] = events
	total := len(b.subscribers)
	b.mu.Unlock()

	metrics.SSESubscribers.Set(float64(total))
	logging.Info().Int("total_subscribers", total).Msg("sse subscriber connected")
	return id, events
}

func (b *Broker) unsubscribe(id uint64) {
	b.mu.Lock()
	delete(b.subscribers, id)
	total := len(b.subscribers)
	b.mu.Unlock()

	metrics.SSESubscribers.Set(float64(total))
	logging.Info().Int("total_subscribers", total).Msg("sse subscriber disconnected")
}

// fetchBacklog queries the backlog source with a bounded context.
// A failed query degrades to an empty snapshot.
func (b *Broker) fetchBacklog() []models.Notification {
	if b.backlog == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), backlogTimeout)
	defer cancel()

	snapshot, err := b.backlog(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("backlog query failed, sending empty initial snapshot")
		return nil
	}
	return snapshot
}

// BroadcastNew sends one batch of newly detected notifications to all
// subscribers as a single "new" event. Implements broadcast.Broadcaster.
func (b *Broker) BroadcastNew(notifications []models.Notification) {
	if len(notifications) == 0 {
		return
	}
	b.fanOut(models.NewEvent(models.EventNew, notifications))
	metrics.RecordBroadcast(string(models.EventNew))
}

// BroadcastHeartbeat sends a keepalive to all subscribers. Implements
// broadcast.Broadcaster.
func (b *Broker) BroadcastHeartbeat() {
	b.fanOut(models.NewEvent(models.EventHeartbeat, nil))
	metrics.RecordBroadcast(string(models.EventHeartbeat))
}

// fanOut delivers an event to every subscriber without blocking.
// Subscribers with full buffers miss this event.
func (b *Broker) fanOut(event models.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, events := range b.subscribers {
		select {
		case events <- event:
		default:
			metrics.BroadcastDropped.WithLabelValues("sse").Inc()
			logging.Warn().Uint64("subscriber_id", id).Str("event_type", string(event.Type)).
				Msg("sse subscriber buffer full, dropping event")
		}
	}
}

// SubscriberCount returns the number of connected subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
