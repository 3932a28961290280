// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package services

import (
	"context"
)

// ContextRunner matches components whose Serve follows the
// suture.Service pattern already: the poller and the NATS bridge.
type ContextRunner interface {
	Serve(ctx context.Context) error
}

// RunnerService wraps a ContextRunner as a named supervised service.
type RunnerService struct {
	runner ContextRunner
	name   string
}

// NewRunnerService creates a service wrapper with the given name.
// The name appears in supervisor logs on restarts and failures.
func NewRunnerService(name string, runner ContextRunner) *RunnerService {
	return &RunnerService{
		runner: runner,
		name:   name,
	}
}

// Serve implements suture.Service.
func (s *RunnerService) Serve(ctx context.Context) error {
	return s.runner.Serve(ctx)
}

// String implements fmt.Stringer for supervisor logging.
func (s *RunnerService) String() string {
	return s.name
}
