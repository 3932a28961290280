// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/pulse/internal/logging"
)

// countingService records how often it is started.
type countingService struct {
	starts atomic.Int64
	block  bool
}

func (s *countingService) Serve(ctx context.Context) error {
	s.starts.Add(1)
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return errors.New("transient failure")
}

func (s *countingService) String() string { return "counting-service" }

func newTestTree(t *testing.T) *SupervisorTree {
	t.Helper()

	tree, err := NewSupervisorTree(logging.NewSlogLogger(), DefaultTreeConfig())
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}
	return tree
}

func TestTreeRunsServicesAndStopsOnCancel(t *testing.T) {
	t.Parallel()

	tree := newTestTree(t)

	svc := &countingService{block: true}
	tree.AddDeliveryService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for svc.starts.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if svc.starts.Load() == 0 {
		t.Fatal("service never started")
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop")
	}
}

func TestTreeRestartsFailedService(t *testing.T) {
	t.Parallel()

	tree := newTestTree(t)

	svc := &countingService{}
	tree.AddAPIService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for svc.starts.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if svc.starts.Load() < 2 {
		t.Fatalf("expected restart after failure, got %d starts", svc.starts.Load())
	}
}

func TestTreeConfigDefaults(t *testing.T) {
	t.Parallel()

	tree, err := NewSupervisorTree(logging.NewSlogLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}
	if tree.config.FailureThreshold != 5.0 {
		t.Errorf("expected default threshold, got %v", tree.config.FailureThreshold)
	}
	if tree.config.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected default shutdown timeout, got %v", tree.config.ShutdownTimeout)
	}
	if tree.Root() == nil {
		t.Error("expected root supervisor")
	}
}
