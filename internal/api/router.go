// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/pulse/internal/auth"
	"github.com/tomtom215/pulse/internal/authz"
	"github.com/tomtom215/pulse/internal/middleware"
)

// Router assembles the HTTP routing tree.
type Router struct {
	handler *Handler
	chiMW   *ChiMiddleware
	authMW  *auth.Middleware
	authzMW *authz.Middleware
}

// NewRouter wires the handlers with their middleware stacks.
func NewRouter(handler *Handler, chiMW *ChiMiddleware, authMW *auth.Middleware, authzMW *authz.Middleware) *Router {
	return &Router{
		handler: handler,
		chiMW:   chiMW,
		authMW:  authMW,
		authzMW: authzMW,
	}
}

// Setup configures all HTTP routes.
//
// Route groups carry their own rate limit tiers. The streaming mounts
// (/ws, /events) sit inside the authenticated group so the role policy
// gates them; they skip the default read timeout via the server config,
// not the router.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMW.CORS())

	// Health probes: permissive limits for monitoring, no auth.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMW.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	// Login: strictest limits against credential stuffing.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(router.chiMW.RateLimitAuth())
		r.Use(APISecurityHeaders())
		r.With(router.chiMW.RateLimitLogin()).Post("/login", router.handler.Login)
	})

	// Authenticated data and streaming endpoints.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMW.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.authMW.Authenticate)
		r.Use(router.authzMW.Require)

		r.Get("/notifications", router.handler.ListNotifications)
		r.Get("/notifications/stats", router.handler.NotificationStats)
		r.Get("/notifications/{id}", router.handler.GetNotification)
		r.With(router.chiMW.RateLimitWrite()).Post("/notifications", router.handler.CreateNotification)

		r.Get("/ws", router.handler.WebSocket)
		r.Get("/events", router.handler.SSE)
	})

	// Webhook ingest: public, signature-verified, own token bucket.
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Use(router.chiMW.RateLimitWrite())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Post("/orders", router.handler.OrderWebhook)
	})

	// Observability.
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
	))

	return r
}
