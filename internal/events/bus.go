// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/localis-app/localis/internal/config"
	"github.com/localis-app/localis/internal/logging"
	"github.com/localis-app/localis/internal/metrics"
	"github.com/localis-app/localis/internal/models"
)

// defaultBufferSize bounds per-subscriber output channels when the config
// does not set events.buffer_size.
const defaultBufferSize = 256

// Transport names reported by Bus.Transport.
const (
	TransportDisabled  = "disabled"
	TransportChannel   = "gochannel"
	TransportJetStream = "jetstream"
)

// Bus is the process-wide domain event bus. Mutating API handlers publish
// to it after their transaction commits; supervised consumers subscribe
// through NewMessageHandler or NewEventHandler.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	closeFn    func() error
	events     *logging.EventLogger
	logger     watermill.LoggerAdapter
	enabled    bool
	transport  string

	mu     sync.RWMutex
	closed bool
}

// New builds the event bus for the given configuration.
//
// With events disabled the returned bus accepts publishes and drops them,
// so callers never need a nil check. When cfg.NATS.Enabled is set the bus
// runs on JetStream; if that backend cannot be built (default build
// without the nats tag, connection failure) it falls back to the
// in-process transport and logs the reason.
func New(cfg *config.EventsConfig) *Bus {
	logger := newBusLogger()
	bus := &Bus{
		events:    logging.NewEventLogger(),
		logger:    logger,
		transport: TransportDisabled,
	}

	if cfg != nil && !cfg.Enabled {
		return bus
	}
	bus.enabled = true

	bufferSize := defaultBufferSize
	if cfg != nil && cfg.BufferSize > 0 {
		bufferSize = cfg.BufferSize
	}

	if cfg != nil && cfg.NATS.Enabled {
		backend, err := newNATSBackend(&cfg.NATS, logger)
		if err != nil {
			logging.Warn().Err(err).
				Msg("NATS event transport unavailable, using in-process transport")
		} else {
			bus.publisher = backend
			bus.subscriber = backend
			bus.closeFn = backend.Close
			bus.transport = TransportJetStream
			logging.Info().Str("url", backend.URL()).
				Msg("Event bus connected to JetStream")
			return bus
		}
	}

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: int64(bufferSize),
	}, logger)
	bus.publisher = pubsub
	bus.subscriber = pubsub
	bus.closeFn = pubsub.Close
	bus.transport = TransportChannel
	return bus
}

// Enabled reports whether publishes reach a transport.
func (b *Bus) Enabled() bool {
	return b.enabled
}

// Transport returns the name of the active transport for the admin
// surface.
func (b *Bus) Transport() string {
	return b.transport
}

// Publish JSON-encodes payload and publishes it to topic. It returns nil
// without publishing when the bus is disabled.
func (b *Bus) Publish(ctx context.Context, topic string, payload interface{}) error {
	if !b.enabled {
		return nil
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("event bus is closed")
	}
	b.mu.RUnlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)

	if err := b.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	metrics.RecordEventPublished(topic)
	b.events.LogEventPublished(ctx, msg.UUID, topic)
	return nil
}

// PublishPlace publishes a place lifecycle event on one of the place.*
// topics. A zero OccurredAt is stamped with the current time.
func (b *Bus) PublishPlace(ctx context.Context, topic string, event *models.PlaceEvent) error {
	if event == nil {
		return fmt.Errorf("place event required")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	return b.Publish(ctx, topic, event)
}

// PublishReview publishes a review lifecycle event on one of the review.*
// topics. A zero OccurredAt is stamped with the current time.
func (b *Bus) PublishReview(ctx context.Context, topic string, event *models.ReviewEvent) error {
	if event == nil {
		return fmt.Errorf("review event required")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	return b.Publish(ctx, topic, event)
}

// PublishFollow publishes a follow event on the social.followed topic.
func (b *Bus) PublishFollow(ctx context.Context, event *models.FollowEvent) error {
	if event == nil {
		return fmt.Errorf("follow event required")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	return b.Publish(ctx, models.TopicFollowed, event)
}

// Subscribe returns the raw message channel for topic. Most consumers use
// NewMessageHandler or NewEventHandler instead.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if !b.enabled {
		return nil, fmt.Errorf("event bus is disabled")
	}
	return b.subscriber.Subscribe(ctx, topic)
}

// Close shuts down the transport. Undelivered messages are dropped.
// Close is idempotent.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	if b.closeFn != nil {
		return b.closeFn()
	}
	return nil
}

// MessageHandler consumes one topic with a fluent configuration API:
//
//	bus.NewMessageHandler(topic).Handle(fn).Run(ctx)
type MessageHandler struct {
	bus     *Bus
	topic   string
	handler func(ctx context.Context, msg *message.Message) error
}

// NewMessageHandler creates a handler for messages on the given topic.
func (b *Bus) NewMessageHandler(topic string) *MessageHandler {
	return &MessageHandler{bus: b, topic: topic}
}

// Handle sets the processing function. A successful return acks the
// message; an error nacks it for redelivery.
func (h *MessageHandler) Handle(fn func(ctx context.Context, msg *message.Message) error) *MessageHandler {
	h.handler = fn
	return h
}

// Run consumes messages until the context is canceled or the
// subscription channel closes. With the bus disabled it blocks until
// cancellation so supervised consumers behave the same either way.
func (h *MessageHandler) Run(ctx context.Context) error {
	if !h.bus.enabled {
		<-ctx.Done()
		return ctx.Err()
	}

	messages, err := h.bus.subscriber.Subscribe(ctx, h.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", h.topic, err)
	}

	h.bus.events.LogSubscriptionStarted(h.topic)
	defer h.bus.events.LogSubscriptionStopped(h.topic)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if err := h.process(ctx, msg); err != nil {
				h.bus.logger.Error("Message processing failed", err, watermill.LogFields{
					"message_uuid": msg.UUID,
					"topic":        h.topic,
				})
			}
		}
	}
}

func (h *MessageHandler) process(ctx context.Context, msg *message.Message) error {
	if h.handler == nil {
		msg.Ack()
		return nil
	}

	start := time.Now()
	err := h.handler(ctx, msg)
	metrics.RecordEventConsumed(h.topic, time.Since(start), err)

	if err != nil {
		h.bus.events.LogEventFailed(ctx, msg.UUID, err)
		msg.Nack()
		return err
	}

	msg.Ack()
	h.bus.events.LogEventProcessed(ctx, msg.UUID, time.Since(start).Milliseconds())
	return nil
}

// EventHandler decodes messages on one topic into typed events before
// invoking the consumer callback.
type EventHandler[T any] struct {
	inner *MessageHandler
}

// NewEventHandler creates a typed handler for the given topic. T is the
// payload type published on that topic, models.PlaceEvent for the
// place.* topics for example.
func NewEventHandler[T any](bus *Bus, topic string) *EventHandler[T] {
	return &EventHandler[T]{inner: bus.NewMessageHandler(topic)}
}

// Handle sets the processing function. A payload that does not decode
// into T is acked and dropped after logging, since redelivery cannot fix
// a malformed message.
func (h *EventHandler[T]) Handle(fn func(ctx context.Context, event *T) error) *EventHandler[T] {
	h.inner.Handle(func(ctx context.Context, msg *message.Message) error {
		var event T
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			h.inner.bus.logger.Error("Dropping undecodable event payload", err, watermill.LogFields{
				"message_uuid": msg.UUID,
				"topic":        h.inner.topic,
			})
			return nil
		}
		return fn(ctx, &event)
	})
	return h
}

// Run consumes messages until the context is canceled.
func (h *EventHandler[T]) Run(ctx context.Context) error {
	return h.inner.Run(ctx)
}
