// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

// Package supervisor provides Suture-based process supervision for
// Pulse. The tree groups the long-running components into delivery
// (hub, poller, bridge), messaging (embedded NATS), and api (HTTP
// server) layers so failures restart in isolation. Supervisor events
// are logged through sutureslog bridged to zerolog.
package supervisor
