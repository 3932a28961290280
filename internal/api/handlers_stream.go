// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package api

import (
	"net/http"

	"github.com/tomtom215/pulse/internal/logging"
	ws "github.com/tomtom215/pulse/internal/websocket"
)

// WebSocket upgrades the connection and attaches it to the hub
//
// @Summary Establish a WebSocket connection
// @Description Upgrades to WebSocket and streams notification events. The server sends connected, then the initial backlog snapshot, then new batches and heartbeats.
// @Tags Realtime
// @Success 101 {string} string "Switching Protocols"
// @Failure 400 {string} string "Bad Request"
// @Failure 503 {object} models.APIResponse "Hub not available"
// @Router /ws [get]
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "WebSocket service unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logging.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	ws.NewClient(h.hub, conn).Start()
}

// SSE streams notification events over Server-Sent Events
//
// @Summary Establish an SSE stream
// @Description Streams notification events as named SSE events (connected, initial, new); heartbeats arrive as comment lines
// @Tags Realtime
// @Produce text/event-stream
// @Success 200 {string} string "Event stream"
// @Failure 503 {object} models.APIResponse "Broker not available"
// @Router /events [get]
func (h *Handler) SSE(w http.ResponseWriter, r *http.Request) {
	if h.broker == nil {
		logging.Warn().Msg("SSE connection rejected: broker not initialized")
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "SSE service unavailable", nil)
		return
	}

	h.broker.ServeHTTP(w, r)
}
