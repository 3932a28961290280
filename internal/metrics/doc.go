// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

// Package metrics provides Prometheus instrumentation for Pulse.
//
// All metrics are registered with the default registry via promauto and
// exposed at /metrics by the API router. Components record through the
// package-level helpers (RecordPollCycle, RecordBroadcast, RecordDBQuery)
// rather than touching collectors directly, so label conventions stay in
// one place.
//
// Metric families:
//
//   - duckdb_*: store query durations and errors
//   - poll_*: poll cycle health, skipped ticks, watermark age
//   - broadcast_*, websocket_*, sse_*: fan-out and connection counts
//   - api_*: HTTP endpoint latency and throughput
//   - webhooks_*: webhook ingest outcomes
//   - nats_*, circuit_breaker_*: fast-path event bus health
package metrics
