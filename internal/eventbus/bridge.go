// Pulse - Real-time Notification Delivery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulse

package eventbus

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	json "github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/pulse/internal/broadcast"
	"github.com/tomtom215/pulse/internal/logging"
	"github.com/tomtom215/pulse/internal/metrics"
	"github.com/tomtom215/pulse/internal/models"
)

// Bridge consumes notifications.created and forwards each record to the
// broadcaster, giving connected clients sub-poll-interval latency.
//
// Fast-pathed records are also picked up by the next poll cycle, so
// delivery through the bridge is best effort: malformed messages are
// acked and dropped rather than redelivered forever.
type Bridge struct {
	subscriber  message.Subscriber
	broadcaster broadcast.Broadcaster
}

// NewBridge wraps an existing watermill subscriber. Used directly by
// tests (gochannel) and by NewNATSBridge.
func NewBridge(sub message.Subscriber, broadcaster broadcast.Broadcaster) *Bridge {
	return &Bridge{
		subscriber:  sub,
		broadcaster: broadcaster,
	}
}

// NewNATSBridge connects a durable JetStream subscriber to the given URL.
func NewNATSBridge(url string, broadcaster broadcast.Broadcaster, logger watermill.LoggerAdapter) (*Bridge, error) {
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(time.Second),
	}

	wmConfig := wmNats.SubscriberConfig{
		URL:            url,
		AckWaitTimeout: 30 * time.Second,
		CloseTimeout:   30 * time.Second,
		NatsOptions:    natsOpts,
		Unmarshaler:    &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			DurablePrefix: "pulse-bridge",
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.DeliverNew(),
				natsgo.MaxDeliver(3),
			},
		},
	}

	sub, err := wmNats.NewSubscriber(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}

	return NewBridge(sub, broadcaster), nil
}

// Serve consumes the topic until ctx is canceled. It satisfies
// suture.Service.
func (b *Bridge) Serve(ctx context.Context) error {
	messages, err := b.subscriber.Subscribe(ctx, TopicNotificationCreated)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", TopicNotificationCreated, err)
	}

	logging.Info().Str("topic", TopicNotificationCreated).Msg("eventbus bridge started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			b.handle(msg)
		}
	}
}

func (b *Bridge) handle(msg *message.Message) {
	var n models.Notification
	if err := json.Unmarshal(msg.Payload, &n); err != nil {
		// Redelivery cannot fix a malformed payload; ack and drop.
		metrics.RecordNATSParseFailed()
		logging.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping unparseable bus message")
		msg.Ack()
		return
	}

	b.broadcaster.BroadcastNew([]models.Notification{n})
	metrics.RecordNATSConsume()
	msg.Ack()
}

// Close shuts down the underlying subscriber.
func (b *Bridge) Close() error {
	return b.subscriber.Close()
}
