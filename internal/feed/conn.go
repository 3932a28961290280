// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package feed

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/pulse/internal/logging"
	"github.com/tomtom215/pulse/internal/models"
)

const (
	initialBackoff = 250 * time.Millisecond
	maxBackoff     = 30 * time.Second
	dialTimeout    = 10 * time.Second
)

// Conn is a reconnecting WebSocket consumer that keeps a Feed in sync
// with the server.
//
// On every (re)connect the server sends a fresh "initial" snapshot,
// which replaces the Feed's state wholesale, so no replay bookkeeping is
// needed across reconnects. Close tears the transport down and stops the
// reconnect loop.
type Conn struct {
	url    string
	feed   *Feed
	dialer *websocket.Dialer

	mu      sync.Mutex
	current *websocket.Conn
	cancel  context.CancelFunc
	done    chan struct{}
}

// Dial starts a consumer for the given WebSocket URL. It returns
// immediately; connection and reconnection happen in the background
// until Close is called or ctx is canceled.
func Dial(ctx context.Context, url string, feed *Feed) *Conn {
	runCtx, cancel := context.WithCancel(ctx)
	c := &Conn{
		url:  url,
		feed: feed,
		dialer: &websocket.Dialer{
			HandshakeTimeout: dialTimeout,
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go c.run(runCtx)
	return c
}

// run dials, consumes until the connection drops, and redials with
// exponential backoff.
func (c *Conn) run(ctx context.Context) {
	defer close(c.done)

	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			logging.Warn().Err(err).Dur("retry_in", backoff).Msg("feed dial failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}

		c.setCurrent(conn)
		backoff = initialBackoff
		logging.Info().Str("url", c.url).Msg("feed connected")

		c.consume(ctx, conn)
		c.setCurrent(nil)

		if ctx.Err() != nil {
			return
		}
		logging.Warn().Str("url", c.url).Msg("feed connection lost, reconnecting")
	}
}

// consume applies inbound events until the connection fails.
func (c *Conn) consume(ctx context.Context, conn *websocket.Conn) {
	defer func() { _ = conn.Close() }()

	for {
		var event models.Event
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() == nil {
				logging.Debug().Err(err).Msg("feed read failed")
			}
			return
		}
		c.feed.Apply(event)
	}
}

func (c *Conn) setCurrent(conn *websocket.Conn) {
	c.mu.Lock()
	c.current = conn
	c.mu.Unlock()
}

// Close stops the reconnect loop, closes any live connection, and waits
// for the consumer goroutine to exit.
func (c *Conn) Close() error {
	c.cancel()

	c.mu.Lock()
	if c.current != nil {
		_ = c.current.Close()
	}
	c.mu.Unlock()

	<-c.done
	return nil
}
