// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

// Package services adapts Pulse's long-running components to the
// suture.Service interface. Each wrapper declares a narrow interface
// for the component it supervises so the package stays free of
// dependency cycles and the wrappers stay testable with mocks.
package services
