// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

// Package eventbus is the optional low-latency delivery path.
//
// When nats.enabled is set, producers publish created notifications to
// the notifications.created topic and a Bridge forwards them straight to
// the broadcaster, beating the poll interval. The bus is never
// authoritative: the store insert is, and the poller picks up anything
// the bus drops. The publisher sits behind a circuit breaker so bus
// trouble cannot fail the write path.
//
// An embedded NATS JetStream server is available for single-binary
// deployments; production setups can point at an external cluster
// instead. Tests run against watermill's gochannel Pub/Sub.
package eventbus
