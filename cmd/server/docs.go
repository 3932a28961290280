// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

// Package main provides the Pulse HTTP server
//
// Pulse persists notifications in an embedded analytical store and
// delivers them to dashboard clients in real time over WebSocket and
// Server-Sent Events.
//
// @title Pulse API
// @version 1.0
// @description Real-time notification delivery service
// @description
// @description ## Features
// @description
// @description - **Real-time Delivery**: WebSocket and SSE fan-out with initial backlog on connect
// @description - **Change Detection**: Watermark-based polling with persistent checkpoints
// @description - **Fast Path**: Optional NATS JetStream event bus for sub-poll-interval latency
// @description - **Webhook Ingest**: HMAC-signed order webhooks from upstream commerce systems
// @description - **Role-based Access**: viewer/editor/admin roles enforced per endpoint
// @description
// @description ## Authentication
// @description
// @description Most endpoints require JWT authentication via HTTP-only cookie.
// @description Use `/api/v1/auth/login` to obtain a token, which will be automatically included in subsequent requests.
// @description Bearer tokens in the Authorization header are also accepted.
// @description
// @description ## Rate Limiting
// @description
// @description Default rate limit: 100 requests per minute per IP address.
// @description Write endpoints are limited to 30 requests per minute; login attempts to 5 per 5 minutes.
// @description Rate limit headers are included in responses: `X-RateLimit-Limit`, `X-RateLimit-Remaining`, `X-RateLimit-Reset`.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "error": {
// @description     "code": "ERROR_CODE",
// @description     "message": "Human-readable error message",
// @description     "details": {}
// @description   },
// @description   "metadata": {
// @description     "timestamp": "2026-08-30T12:34:56Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/pulse/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8414
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in cookie
// @name token
// @description JWT token stored in HTTP-only cookie. Obtain via /api/v1/auth/login endpoint.
//
// @tag.name Notifications
// @tag.description Notification creation, listing, and statistics
//
// @tag.name Auth
// @tag.description Authentication and session management endpoints
//
// @tag.name Health
// @tag.description Liveness, readiness, and component health probes
//
// @tag.name Realtime
// @tag.description WebSocket and Server-Sent Events streams for live notification delivery
//
// @tag.name Webhooks
// @tag.description Signed webhook ingest from upstream producers
package main
