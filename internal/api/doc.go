// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

// Package api provides the HTTP surface of Pulse: the notification
// read/write API, the order webhook ingest, JWT login, health probes,
// and the streaming mounts (/ws, /events).
//
// Routing uses chi v5 with route groups carrying their own rate limit
// tiers (go-chi/httprate) and CORS (go-chi/cors). All JSON endpoints
// respond with the models.APIResponse envelope.
package api
