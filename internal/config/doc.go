// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

// Package config loads and validates Pulse configuration.
//
// Configuration is layered with Koanf v2:
//
//  1. Built-in defaults
//  2. Optional YAML config file (CONFIG_PATH or ./config.yaml)
//  3. Environment variables (highest priority)
//
// Environment variables use flat legacy-style names mapped onto the nested
// structure, e.g. HTTP_PORT -> server.port, POLL_INTERVAL -> poller.interval.
// See envTransformFunc for the full mapping.
package config
