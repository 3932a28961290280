// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/pulse/docs" // Import generated swagger docs
	"github.com/tomtom215/pulse/internal/api"
	"github.com/tomtom215/pulse/internal/auth"
	"github.com/tomtom215/pulse/internal/authz"
	"github.com/tomtom215/pulse/internal/broadcast"
	"github.com/tomtom215/pulse/internal/checkpoint"
	"github.com/tomtom215/pulse/internal/config"
	"github.com/tomtom215/pulse/internal/eventbus"
	"github.com/tomtom215/pulse/internal/logging"
	"github.com/tomtom215/pulse/internal/models"
	"github.com/tomtom215/pulse/internal/poller"
	"github.com/tomtom215/pulse/internal/sse"
	"github.com/tomtom215/pulse/internal/store"
	"github.com/tomtom215/pulse/internal/supervisor"
	"github.com/tomtom215/pulse/internal/supervisor/services"
	ws "github.com/tomtom215/pulse/internal/websocket"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Registered first so it runs last, after every close defer
	exitCode := 0
	defer func() { os.Exit(exitCode) }()

	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Pulse with supervisor tree")
	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Bool("checkpoint_enabled", cfg.Checkpoint.Enabled).
		Msg("Configuration loaded")

	// Initialize the notification store
	st, err := store.New(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()
	logging.Info().Msg("Store initialized successfully")

	// Open the checkpoint store so a restart resumes from the last
	// delivered watermark instead of "now"
	var checkpointer poller.Checkpointer
	if cfg.Checkpoint.Enabled {
		cp, err := checkpoint.Open(cfg.Checkpoint.Path)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open checkpoint store")
		}
		defer func() {
			if err := cp.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing checkpoint store")
			}
		}()
		checkpointer = cp
		logging.Info().Str("path", cfg.Checkpoint.Path).Msg("Checkpoint store opened")
	} else {
		logging.Warn().Msg("Checkpointing disabled; a restart loses the delivery window since the last poll")
	}

	// The backlog fetch feeds the initial snapshot sent to each client
	// on connect: most recent records, newest first
	backlog := func(ctx context.Context) ([]models.Notification, error) {
		return st.ListRecent(ctx, cfg.Poller.BacklogSize)
	}

	// Create the delivery adapters. The hub and broker sit behind one
	// Broadcaster interface so the poller does not know the transports.
	wsHub := ws.NewHub(backlog)
	sseBroker := sse.NewBroker(backlog)
	fanout := broadcast.Multi{wsHub, sseBroker}

	changePoller := poller.New(st, fanout, checkpointer, cfg.Poller)

	// Initialize the NATS fast path (optional). When enabled, the API
	// write path publishes to the bus and the bridge broadcasts locally;
	// the handler must then NOT broadcast directly or every local client
	// would see each record twice.
	var natsServer *eventbus.EmbeddedServer
	var publisher *eventbus.Publisher
	var bridge *eventbus.Bridge
	if cfg.NATS.Enabled {
		natsURL := cfg.NATS.URL
		if cfg.NATS.EmbeddedServer {
			natsServer, err = eventbus.NewEmbeddedServer(cfg.NATS)
			if err != nil {
				logging.Fatal().Err(err).Msg("Failed to start embedded NATS server")
			}
			natsURL = natsServer.ClientURL()
			logging.Info().Str("url", natsURL).Msg("Embedded NATS server started")
		}

		wmLogger := eventbus.NewWatermillLogger()
		publisher, err = eventbus.NewNATSPublisher(natsURL, wmLogger)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create event bus publisher")
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing event bus publisher")
			}
		}()

		bridge, err = eventbus.NewNATSBridge(natsURL, fanout, wmLogger)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create event bus bridge")
		}
		defer func() {
			if err := bridge.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing event bus bridge")
			}
		}()
		logging.Info().Msg("Event bus fast path enabled")
	}

	var jwtManager *auth.JWTManager
	var basicAuthManager *auth.BasicAuthManager

	switch cfg.Security.AuthMode {
	case "jwt":
		jwtManager, err = auth.NewJWTManager(cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}
		// Login verifies credentials against the bcrypt admin hash
		basicAuthManager, err = auth.NewBasicAuthManager(
			cfg.Security.AdminUsername,
			cfg.Security.AdminPassword,
		)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize credential store")
		}
		logging.Info().Msg("JWT authentication enabled")
	case "basic":
		basicAuthManager, err = auth.NewBasicAuthManager(
			cfg.Security.AdminUsername,
			cfg.Security.AdminPassword,
		)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize Basic Auth manager")
		}
		logging.Info().Msg("Basic authentication enabled")
		logging.Warn().Msg("Basic Auth transmits credentials with each request. Use HTTPS in production!")
	case "none":
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: Authentication is DISABLED (auth_mode=none)")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  All endpoints are publicly accessible without authentication!")
		logging.Warn().Msg("  This mode should ONLY be used for:")
		logging.Warn().Msg("    - Local development")
		logging.Warn().Msg("    - Completely isolated private networks")
		logging.Warn().Msg("    - CI/CD testing environments")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  NEVER use auth_mode=none in production or on public networks!")
		logging.Warn().Msg("============================================================")
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (security.rate_limit_disabled=true)")
		logging.Warn().Msg("This should only be used for load testing!")
	}

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize RBAC enforcer")
	}

	authMiddleware := auth.NewMiddleware(
		jwtManager,
		basicAuthManager,
		cfg.Security.AuthMode,
		cfg.Security.AdminUsername, // Admin username gets admin role for RBAC
	)
	authzMiddleware := authz.NewMiddleware(enforcer)

	// Wire exactly one fast-path sink into the handler. With the event
	// bus enabled the bridge handles local broadcast; without it the
	// handler broadcasts directly.
	deps := api.HandlerDeps{
		Config:     cfg,
		Store:      st,
		Hub:        wsHub,
		Broker:     sseBroker,
		JWTManager: jwtManager,
		BasicAuth:  basicAuthManager,
	}
	if publisher != nil {
		deps.Publisher = publisher
	} else {
		deps.Broadcaster = fanout
	}
	handler := api.NewHandler(deps)

	chiMiddleware := api.NewChiMiddleware(cfg.Security)
	router := api.NewRouter(handler, chiMiddleware, authMiddleware, authzMiddleware)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Create structured logger for supervisor using our slog adapter
	// This bridges zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Delivery layer services
	tree.AddDeliveryService(services.NewHubService(wsHub))
	tree.AddDeliveryService(services.NewRunnerService("poller", changePoller))
	if bridge != nil {
		tree.AddDeliveryService(services.NewRunnerService("nats-bridge", bridge))
	}
	logging.Info().Msg("WebSocket hub and poller added to supervisor tree")

	// Messaging layer services
	if natsServer != nil {
		tree.AddMessagingService(services.NewNATSServerService(natsServer, 10*time.Second))
		logging.Info().Msg("Embedded NATS server added to supervisor tree")
	}

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().
		Str("addr", server.Addr).
		Str("environment", cfg.Server.Environment).
		Msg("Pulse started")

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")
		stop()
		// The tree propagates cancellation to every service; wait for
		// the layers to drain before closing the stores via defers.
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree stopped with error")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree exited unexpectedly")
			exitCode = 1
		}
	}

	logging.Info().Msg("Pulse stopped")
}
