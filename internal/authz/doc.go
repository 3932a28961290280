// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

// Package authz provides role-based authorization using Casbin.
//
// It runs after package auth in the middleware chain:
//
//	Request -> auth.Authenticate -> authz.Require -> Handler
//
// The model and policy are embedded; the three roles are viewer,
// editor, and admin, with editor inheriting viewer and admin inheriting
// editor. HTTP methods map to the actions read, write, and delete.
package authz
