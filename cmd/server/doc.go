// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

/*
Package main is the entry point for the Pulse server application.

Pulse is a self-hosted notification delivery service. Producers write
notifications through the REST API or signed webhooks; a change poller
detects new records and fans them out to connected dashboard clients
over WebSocket and Server-Sent Events.

# Application Architecture

The server implements a layered architecture with Suture v4 process
supervision:

	RootSupervisor ("pulse")
	├── DeliverySupervisor ("delivery-layer")
	│   ├── WebSocket Hub (connection registry and fan-out)
	│   ├── Change Poller (watermark polling + heartbeats)
	│   └── NATS Bridge (optional, nats.enabled)
	├── MessagingSupervisor ("messaging-layer")
	│   └── Embedded NATS Server (optional, nats.embedded_server)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Store: DuckDB-backed append-only notification table
 4. Checkpoint: BadgerDB watermark persistence (optional)
 5. Delivery: WebSocket hub, SSE broker, change poller
 6. Event bus: NATS JetStream publisher and bridge (optional)
 7. Authentication: JWT, Basic Auth, or no-auth mode
 8. Supervisor Tree: Suture v4 process supervision
 9. HTTP Server: Chi router with middleware stack

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest
priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	PULSE_SERVER_PORT=8414        # HTTP server port
	PULSE_LOGGING_LEVEL=info      # trace, debug, info, warn, error
	PULSE_LOGGING_FORMAT=json     # json or console

	# Storage
	PULSE_DATABASE_PATH=/data/pulse.duckdb
	PULSE_CHECKPOINT_PATH=/data/checkpoint

	# Authentication (choose one mode)
	PULSE_SECURITY_AUTH_MODE=jwt  # jwt, basic, or none
	PULSE_SECURITY_JWT_SECRET=<32+ chars>
	PULSE_SECURITY_ADMIN_USERNAME=admin
	PULSE_SECURITY_ADMIN_PASSWORD=<password>

	# Event bus fast path (optional)
	PULSE_NATS_ENABLED=false
	PULSE_NATS_EMBEDDED_SERVER=true
	PULSE_NATS_STORE_DIR=/data/nats/jetstream

	# Webhook ingest (disabled without a secret)
	PULSE_WEBHOOK_SECRET=<shared secret>

# Delivery Model

Delivery is at-least-once. The poller's watermark covers every stored
record, so a notification that was also fast-pathed over the event bus
may be broadcast twice; clients replace rather than append on the
initial snapshot, which makes duplicates harmless. A restart resumes
from the persisted checkpoint instead of losing the window between the
last poll and the crash.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Broadcasts shutdown to WebSocket clients and closes them
 3. Waits for in-flight requests (10s timeout)
 4. Stops the poller after persisting its watermark
 5. Drains the event bus publisher and embedded NATS server
 6. Closes the checkpoint store and database

# Usage Examples

Development (no auth, in-memory store):

	export PULSE_SECURITY_AUTH_MODE=none
	export PULSE_DATABASE_PATH=:memory:
	export PULSE_CHECKPOINT_ENABLED=false
	go run ./cmd/server

Production (JWT + embedded NATS):

	export PULSE_SECURITY_AUTH_MODE=jwt
	export PULSE_SECURITY_JWT_SECRET=$(openssl rand -base64 32)
	export PULSE_SECURITY_ADMIN_USERNAME=admin
	export PULSE_SECURITY_ADMIN_PASSWORD=secure-password
	export PULSE_NATS_ENABLED=true
	./pulse

# API Documentation

Swagger documentation is available at /swagger/index.html when the
server is running.

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/api: HTTP handlers and routing
  - internal/poller: Change detection
  - internal/feed: Go client for the notification stream
*/
package main
