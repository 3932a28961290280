// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package api

import (
	"context"
	"net/http"
	"time"
)

// healthCheckTimeout bounds the database probe so a wedged connection
// cannot hang the readiness endpoint.
const healthCheckTimeout = 2 * time.Second

// HealthLive is the liveness probe
//
// @Summary Liveness probe
// @Description Returns 200 while the process is running
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse "Process is alive"
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, successEnvelope(map[string]interface{}{
		"alive": true,
	}))
}

// HealthReady is the readiness probe
//
// @Summary Readiness probe
// @Description Returns 200 when the notification store accepts queries, 503 otherwise
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse "Ready to serve"
// @Failure 503 {object} models.APIResponse "Store unavailable"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "Notification store not available", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "Notification store not reachable", err)
		return
	}

	respondJSON(w, http.StatusOK, successEnvelope(map[string]interface{}{
		"ready": true,
	}))
}

// Health reports overall service health with per-component detail
//
// @Summary Service health
// @Description Returns component statuses, connected client counts, and process uptime
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse "Health report"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	components := map[string]string{}

	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		if err := h.store.Ping(ctx); err != nil {
			components["database"] = "unavailable"
		} else {
			components["database"] = "ok"
		}
		cancel()
	} else {
		components["database"] = "not_configured"
	}

	report := map[string]interface{}{
		"status":         overallStatus(components),
		"components":     components,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	}
	if h.hub != nil {
		report["websocket_clients"] = h.hub.ClientCount()
	}
	if h.broker != nil {
		report["sse_clients"] = h.broker.SubscriberCount()
	}

	respondJSON(w, http.StatusOK, successEnvelope(report))
}

// overallStatus reduces component states to a single status string.
func overallStatus(components map[string]string) string {
	for _, state := range components {
		if state == "unavailable" {
			return "degraded"
		}
	}
	return "ok"
}
