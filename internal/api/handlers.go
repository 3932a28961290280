// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package api

import (
	"context"
	"net/http"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/tomtom215/pulse/internal/auth"
	"github.com/tomtom215/pulse/internal/broadcast"
	"github.com/tomtom215/pulse/internal/config"
	"github.com/tomtom215/pulse/internal/logging"
	"github.com/tomtom215/pulse/internal/models"
	"github.com/tomtom215/pulse/internal/sse"
	"github.com/tomtom215/pulse/internal/websocket"
)

// Default webhook throttle when the config leaves the bucket unset.
const (
	defaultWebhookRate  = 5.0
	defaultWebhookBurst = 10
)

// NotificationStore is the persistence surface the handlers need.
// *store.Store satisfies it; tests substitute fakes.
type NotificationStore interface {
	Insert(ctx context.Context, n models.Notification) (models.Notification, error)
	ListRecent(ctx context.Context, limit int) ([]models.Notification, error)
	Get(ctx context.Context, id uuid.UUID) (models.Notification, error)
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// EventPublisher publishes created notifications to the event bus fast
// path. *eventbus.Publisher satisfies it; nil disables publishing.
type EventPublisher interface {
	PublishNotification(ctx context.Context, n models.Notification) error
}

// HandlerDeps carries the collaborators the handlers are wired with.
type HandlerDeps struct {
	Config      *config.Config
	Store       NotificationStore
	Hub         *websocket.Hub
	Broker      *sse.Broker
	Broadcaster broadcast.Broadcaster

	// Publisher is optional; nil when the NATS fast path is disabled.
	Publisher EventPublisher

	// JWTManager is required for jwt auth mode, nil otherwise.
	JWTManager *auth.JWTManager

	// BasicAuth verifies login credentials against the bcrypt admin hash.
	BasicAuth *auth.BasicAuthManager
}

// Handler holds the HTTP handler state.
type Handler struct {
	config      *config.Config
	store       NotificationStore
	hub         *websocket.Hub
	broker      *sse.Broker
	broadcaster broadcast.Broadcaster
	publisher   EventPublisher
	jwtManager  *auth.JWTManager
	basicAuth   *auth.BasicAuthManager
	securityLog *logging.SecurityLogger

	// webhookLimiter throttles the public webhook endpoint globally,
	// independent of the per-IP httprate tiers.
	webhookLimiter *rate.Limiter

	startTime time.Time
}

// NewHandler creates the handler set from its dependencies.
func NewHandler(deps HandlerDeps) *Handler {
	rps := defaultWebhookRate
	burst := defaultWebhookBurst
	if deps.Config != nil {
		if deps.Config.Webhook.RatePerSecond > 0 {
			rps = deps.Config.Webhook.RatePerSecond
		}
		if deps.Config.Webhook.Burst > 0 {
			burst = deps.Config.Webhook.Burst
		}
	}

	return &Handler{
		config:         deps.Config,
		store:          deps.Store,
		hub:            deps.Hub,
		broker:         deps.Broker,
		broadcaster:    deps.Broadcaster,
		publisher:      deps.Publisher,
		jwtManager:     deps.JWTManager,
		basicAuth:      deps.BasicAuth,
		securityLog:    logging.NewSecurityLogger(),
		webhookLimiter: rate.NewLimiter(rate.Limit(rps), burst),
		startTime:      time.Now(),
	}
}

// requireStore checks store availability and reports whether the
// request may proceed.
func (h *Handler) requireStore(w http.ResponseWriter) bool {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Notification store not available", nil)
		return false
	}
	return true
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout.
func (h *Handler) getUpgrader() gws.Upgrader {
	return gws.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins.
// Requests without an Origin header come from non-browser clients
// (the Go feed client, curl); they pass origin checking and are still
// subject to authentication.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
