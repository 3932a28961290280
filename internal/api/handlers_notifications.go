// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/pulse/internal/logging"
	"github.com/tomtom215/pulse/internal/models"
	"github.com/tomtom215/pulse/internal/store"
)

// List page size bounds. Clients asking for more than maxListLimit are
// clamped, not rejected.
const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// CreateNotification persists a new notification and fast-paths it to
// connected clients
//
// @Summary Create a notification
// @Description Validates and persists a notification, then delivers it to connected WebSocket and SSE clients ahead of the next poll cycle
// @Tags Notifications
// @Accept json
// @Produce json
// @Param notification body models.CreateNotificationRequest true "Notification to create"
// @Success 201 {object} models.APIResponse{data=models.Notification} "Notification created"
// @Failure 400 {object} models.APIResponse "Invalid request body"
// @Failure 500 {object} models.APIResponse "Insert failed"
// @Router /notifications [post]
func (h *Handler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) || !h.requireStore(w) {
		return
	}

	start := time.Now()

	var req models.CreateNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if len(req.Payload) > 0 && !json.Valid(req.Payload) {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "payload must be valid JSON", nil)
		return
	}

	saved, err := h.store.Insert(r.Context(), models.Notification{
		Kind:    req.Kind,
		Message: req.Message,
		Payload: req.Payload,
		Source:  req.Source,
	})
	if err != nil {
		if errors.Is(err, store.ErrEmptyMessage) {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "message must not be empty", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create notification", err)
		return
	}

	h.fastPath(r.Context(), saved)

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   saved,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// fastPath delivers a freshly persisted notification ahead of the next
// poll cycle. The composition root wires either a local broadcaster or
// an event bus publisher here, never both on the same instance; the
// poller watermark still covers the record, so delivery stays
// at-least-once even when the fast path fails.
func (h *Handler) fastPath(ctx context.Context, n models.Notification) {
	if h.broadcaster != nil {
		h.broadcaster.BroadcastNew([]models.Notification{n})
	}
	if h.publisher != nil {
		if err := h.publisher.PublishNotification(ctx, n); err != nil {
			logging.Warn().Err(err).Str("id", n.ID.String()).Msg("Event bus publish failed; polling will deliver")
		}
	}
}

// ListNotifications returns the most recent notifications, newest first
//
// @Summary List recent notifications
// @Description Returns the most recent notifications, newest first, up to the requested limit
// @Tags Notifications
// @Produce json
// @Param limit query int false "Page size (1-100)" default(50)
// @Success 200 {object} models.APIResponse{data=models.NotificationsResponse} "Notifications retrieved"
// @Failure 500 {object} models.APIResponse "Query failed"
// @Router /notifications [get]
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) || !h.requireStore(w) {
		return
	}

	start := time.Now()

	limit := getIntParam(r, "limit", defaultListLimit)
	if limit < 1 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	notifications, err := h.store.ListRecent(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list notifications", err)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.NotificationsResponse{
			Notifications: notifications,
			Count:         len(notifications),
			Limit:         limit,
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// GetNotification returns a single notification by ID
//
// @Summary Get a notification
// @Description Returns a single notification by its UUID
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification UUID"
// @Success 200 {object} models.APIResponse{data=models.Notification} "Notification retrieved"
// @Failure 400 {object} models.APIResponse "Invalid UUID"
// @Failure 404 {object} models.APIResponse "Not found"
// @Router /notifications/{id} [get]
func (h *Handler) GetNotification(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) || !h.requireStore(w) {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Notification ID must be a valid UUID", nil)
		return
	}

	n, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Notification not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to get notification", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   n,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// NotificationStats returns store and connection counts
//
// @Summary Notification statistics
// @Description Returns the total stored notification count and the number of connected WebSocket and SSE clients
// @Tags Notifications
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.NotificationStats} "Statistics retrieved"
// @Failure 500 {object} models.APIResponse "Query failed"
// @Router /notifications/stats [get]
func (h *Handler) NotificationStats(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) || !h.requireStore(w) {
		return
	}

	start := time.Now()

	total, err := h.store.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to count notifications", err)
		return
	}

	stats := models.NotificationStats{TotalNotifications: total}
	if h.hub != nil {
		stats.WebSocketClients = h.hub.ClientCount()
	}
	if h.broker != nil {
		stats.SSEClients = h.broker.SubscriberCount()
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   stats,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}
