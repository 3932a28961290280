// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

// Package auth implements authentication for the HTTP API and the
// stream endpoints.
//
// Three modes: "jwt" (HS256 session tokens issued by the login
// endpoint), "basic" (single configured account), and "none"
// (development only, rejected by config validation in production).
// Stream endpoints additionally accept the token as a query parameter
// because browser WebSocket and EventSource APIs cannot set headers.
// Role checks live in package authz.
package auth
