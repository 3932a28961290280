// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/pulse/internal/broadcast"
	"github.com/tomtom215/pulse/internal/checkpoint"
	"github.com/tomtom215/pulse/internal/config"
	"github.com/tomtom215/pulse/internal/logging"
	"github.com/tomtom215/pulse/internal/metrics"
	"github.com/tomtom215/pulse/internal/models"
)

// Store is the subset of the notification store the poller reads from.
type Store interface {
	ListSince(ctx context.Context, watermark time.Time) ([]models.Notification, error)
}

// Checkpointer persists the watermark across restarts.
type Checkpointer interface {
	Save(watermark time.Time) error
	Load() (time.Time, error)
}

// Poller detects new notification records by querying the store on a
// fixed interval and fans them out through the broadcaster.
//
// The watermark is the created_at of the last delivered record. Store
// timestamps are strictly increasing, so `created_at > watermark` is an
// exact change query: a failed cycle leaves the watermark untouched and
// the next cycle retries the same window. Delivery is at least once.
type Poller struct {
	store       Store
	broadcaster broadcast.Broadcaster
	checkpoint  Checkpointer
	cfg         config.PollerConfig

	// mu guards watermark: poll cycles run on their own goroutines and
	// the Serve goroutine reads the watermark for the shutdown log.
	mu        sync.Mutex
	watermark time.Time

	inFlight atomic.Bool
	cycles   sync.WaitGroup
	now      func() time.Time
}

// New creates a Poller. checkpointer may be nil, in which case the
// watermark starts at "now" on every boot and restarts lose the window
// between the last delivered record and the crash.
func New(store Store, broadcaster broadcast.Broadcaster, checkpointer Checkpointer, cfg config.PollerConfig) *Poller {
	return &Poller{
		store:       store,
		broadcaster: broadcaster,
		checkpoint:  checkpointer,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Serve runs the poll and heartbeat loops until ctx is canceled.
// It satisfies suture.Service.
func (p *Poller) Serve(ctx context.Context) error {
	p.setWatermark(p.initialWatermark())

	logging.Info().
		Dur("poll_interval", p.cfg.Interval).
		Dur("heartbeat_interval", p.cfg.HeartbeatInterval).
		Time("watermark", p.currentWatermark()).
		Msg("poller started")

	pollTicker := time.NewTicker(p.cfg.Interval)
	defer pollTicker.Stop()
	heartbeatTicker := time.NewTicker(p.cfg.HeartbeatInterval)
	defer heartbeatTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Drain an in-flight cycle before returning so no poll
			// goroutine outlives the supervisor restart boundary.
			p.cycles.Wait()
			logging.Info().Time("watermark", p.currentWatermark()).Msg("poller stopped")
			return ctx.Err()

		case <-pollTicker.C:
			// Each cycle runs in its own goroutine so a slow store query
			// cannot stall heartbeats; the in-flight guard skips ticks
			// that would overlap a running cycle.
			p.cycles.Add(1)
			go func() {
				defer p.cycles.Done()
				p.poll(ctx)
			}()

		case <-heartbeatTicker.C:
			p.broadcaster.BroadcastHeartbeat()
		}
	}
}

func (p *Poller) currentWatermark() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.watermark
}

func (p *Poller) setWatermark(watermark time.Time) {
	p.mu.Lock()
	p.watermark = watermark
	p.mu.Unlock()
}

// advanceWatermark moves the watermark forward, never backward, and
// returns the resulting value.
func (p *Poller) advanceWatermark(last time.Time) time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	if last.After(p.watermark) {
		p.watermark = last
	}
	return p.watermark
}

// initialWatermark restores the persisted watermark, falling back to
// "now" on a fresh install. The fallback means pre-existing records are
// never rebroadcast; connecting clients get them via the initial snapshot.
func (p *Poller) initialWatermark() time.Time {
	if p.checkpoint == nil {
		return p.now().UTC()
	}

	watermark, err := p.checkpoint.Load()
	if err != nil {
		if !errors.Is(err, checkpoint.ErrNoCheckpoint) {
			logging.Warn().Err(err).Msg("checkpoint load failed, starting watermark at now")
		}
		return p.now().UTC()
	}

	logging.Info().Time("watermark", watermark).Msg("watermark restored from checkpoint")
	return watermark
}

// poll runs one change detection cycle.
func (p *Poller) poll(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		metrics.PollCyclesSkipped.Inc()
		logging.Debug().Msg("previous poll cycle still running, skipping tick")
		return
	}
	defer p.inFlight.Store(false)

	queryCtx, cancel := context.WithTimeout(ctx, p.cfg.QueryTimeout)
	defer cancel()

	watermark := p.currentWatermark()

	start := p.now()
	batch, err := p.store.ListSince(queryCtx, watermark)
	metrics.RecordPollCycle(p.now().Sub(start), len(batch), err)

	if err != nil {
		// Watermark untouched; the next tick retries the same window.
		logging.Warn().Err(err).Time("watermark", watermark).Msg("poll query failed")
		return
	}

	if len(batch) == 0 {
		metrics.SetWatermarkAge(watermark)
		return
	}

	p.broadcaster.BroadcastNew(batch)

	// Advance only after a successful broadcast handoff.
	watermark = p.advanceWatermark(batch[len(batch)-1].CreatedAt)
	metrics.SetWatermarkAge(watermark)

	if p.checkpoint != nil {
		if err := p.checkpoint.Save(watermark); err != nil {
			// Non-fatal: a restart replays from the stale checkpoint,
			// which clients absorb through replace-not-append.
			logging.Warn().Err(err).Msg("checkpoint save failed")
		}
	}

	logging.Info().
		Int("count", len(batch)).
		Time("watermark", watermark).
		Msg("new notifications detected")
}
