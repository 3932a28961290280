// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

// Package middleware holds the HTTP middleware shared across the API
// router: request ID propagation and Prometheus instrumentation.
// Authentication and authorization middleware live in their own
// packages (auth, authz).
package middleware
