// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/pulse/internal/logging"
	"github.com/tomtom215/pulse/internal/metrics"
	"github.com/tomtom215/pulse/internal/models"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the parent context was canceled.
	// This is the normal graceful shutdown path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// backlogTimeout bounds the store query made for each connecting client.
const backlogTimeout = 3 * time.Second

// BacklogFunc fetches the initial snapshot for a connecting client:
// the most recent notifications, newest first.
type BacklogFunc func(ctx context.Context) ([]models.Notification, error)

// Hub maintains the set of active clients and fans events out to them.
//
// There is exactly one Hub per process, owned by the composition root and
// injected into the API handlers and the poller. On register each client
// receives a "connected" event followed by an "initial" snapshot; "new"
// and "heartbeat" events fan out to every client.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan models.Event
	Register   chan *Client
	Unregister chan *Client
	initials   chan initialDelivery
	backlog    BacklogFunc
	mu         sync.RWMutex
}

// initialDelivery carries a fetched backlog snapshot back to the hub
// loop for delivery to one client.
type initialDelivery struct {
	client   *Client
	snapshot []models.Notification
}

// NewHub creates a new Hub. backlog may be nil, in which case the
// initial snapshot is always empty.
func NewHub(backlog BacklogFunc) *Hub {
	return &Hub{
		broadcast:  make(chan models.Event, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		initials:   make(chan initialDelivery, 64),
		clients:    make(map[*Client]bool),
		backlog:    backlog,
	}
}

// RunWithContext starts the hub with context support for graceful shutdown.
// This method is designed for use with suture supervision.
//
// When the context is canceled all connected clients are gracefully
// closed and the method returns ctx.Err(), so the hub can be restarted
// by a supervisor without leaving orphaned connections.
//
// DETERMINISM: Uses priority-based selection to ensure predictable behavior:
// - Priority 1: Context cancellation (shutdown)
// - Priority 2: Client lifecycle events (Register/Unregister)
// - Priority 3: Broadcast messages
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		// Priority 1: Check for shutdown (highest priority, non-blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		// Priority 2: Handle client lifecycle events (non-blocking check)
		select {
		case client := <-h.Register:
			h.registerClient(client)
			continue
		case client := <-h.Unregister:
			h.unregisterClient(client)
			continue
		default:
		}

		// Priority 3: Handle broadcast messages or wait for any event (blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case in := <-h.initials:
			h.deliverInitial(in)

		case event := <-h.broadcast:
			h.broadcastToClients(event)
		}
	}
}

// registerClient adds the client and sends its welcome sequence:
// a "connected" event followed by the "initial" backlog snapshot.
// The snapshot goes to this client only.
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("websocket client connected")

	h.sendToClient(client, models.NewEvent(models.EventConnected, nil))

	// The backlog query can take up to backlogTimeout; it runs off the
	// loop so a slow store cannot stall broadcasts or other
	// registrations. The snapshot comes back through h.initials and the
	// loop delivers it, keeping all sends serialized with unregister.
	go func() {
		snapshot := h.fetchBacklog()
		select {
		case h.initials <- initialDelivery{client: client, snapshot: snapshot}:
		case <-time.After(backlogTimeout):
			logging.Warn().Msg("initial snapshot dropped, hub loop unavailable")
		}
	}()
}

// deliverInitial sends the "initial" snapshot unless the client
// disconnected while the backlog query ran.
func (h *Hub) deliverInitial(in initialDelivery) {
	h.mu.RLock()
	registered := h.clients[in.client]
	h.mu.RUnlock()
	if !registered {
		return
	}
	h.sendToClient(in.client, models.NewEvent(models.EventInitial, in.snapshot))
}

// fetchBacklog queries the backlog source with a bounded context.
// A failed query degrades to an empty snapshot; the client still gets
// its "initial" event and catches up through subsequent "new" events.
func (h *Hub) fetchBacklog() []models.Notification {
	if h.backlog == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), backlogTimeout)
	defer cancel()

	snapshot, err := h.backlog(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("backlog query failed, sending empty initial snapshot")
		return nil
	}
	return snapshot
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("websocket client disconnected")
}

// logGracefulShutdown closes all connected clients and logs structured
// shutdown information.
//
// Note: ctx.Err() is NOT logged as an error because context cancellation
// is expected behavior during graceful shutdown.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.ClientCount()
	h.closeAllClients()
	reason := getShutdownReason(ctx)

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(reason)).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

// getShutdownReason determines the shutdown reason from the context error.
func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.Canceled:
		return ShutdownReasonContextCanceled
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// sendToClient enqueues an event for one client, dropping it if the
// client's buffer is full.
func (h *Hub) sendToClient(client *Client, event models.Event) {
	select {
	case client.send <- event:
		metrics.WSMessagesSent.Inc()
	default:
		metrics.BroadcastDropped.WithLabelValues("websocket").Inc()
		logging.Warn().Str("event_type", string(event.Type)).Msg("client send buffer full, dropping event")
	}
}

// broadcastToClients sends an event to all connected clients in a
// deterministic order.
//
// DETERMINISM: Sorts clients by their atomic counter ID for consistent
// iteration order; Go map iteration would deliver in random order.
func (h *Hub) broadcastToClients(event models.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	// Track clients to remove (can't modify map during iteration)
	var toRemove []*Client

	for _, client := range clients {
		select {
		case client.send <- event:
			metrics.WSMessagesSent.Inc()
		default:
			// Channel full or closed, mark for removal
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		metrics.BroadcastDropped.WithLabelValues("websocket").Inc()
	}
	if len(toRemove) > 0 {
		metrics.WSConnections.Set(float64(len(h.clients)))
		logging.Warn().Int("dropped", len(toRemove)).Msg("dropped slow websocket clients")
	}
}

// closeAllClients gracefully closes all connected WebSocket clients.
// Called during shutdown to ensure clean termination.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WSConnections.Set(0)
}

// BroadcastNew sends one batch of newly detected notifications to all
// connected clients as a single "new" event. Implements broadcast.Broadcaster.
func (h *Hub) BroadcastNew(notifications []models.Notification) {
	if len(notifications) == 0 {
		return
	}
	h.enqueue(models.NewEvent(models.EventNew, notifications))
	metrics.RecordBroadcast(string(models.EventNew))
}

// BroadcastHeartbeat sends an empty keepalive event to all connected
// clients. Implements broadcast.Broadcaster.
func (h *Hub) BroadcastHeartbeat() {
	h.enqueue(models.NewEvent(models.EventHeartbeat, nil))
	metrics.RecordBroadcast(string(models.EventHeartbeat))
}

// enqueue hands an event to the hub loop without blocking the caller.
// Broadcasting with no listeners succeeds trivially; the hub loop simply
// iterates an empty client set.
func (h *Hub) enqueue(event models.Event) {
	select {
	case h.broadcast <- event:
	default:
		logging.Warn().Str("event_type", string(event.Type)).Msg("broadcast channel full, dropping event")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
