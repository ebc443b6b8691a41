// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/localis-app/localis/internal/logging"
	"github.com/localis-app/localis/internal/models"
)

// WebSocketBroadcaster receives raw frames for fan-out to connected
// clients. The websocket hub implements it.
type WebSocketBroadcaster interface {
	BroadcastRaw(data []byte)
}

// BroadcastFrame is the JSON shape written to websocket clients. Data
// holds the original event payload unchanged; Topic lets clients route
// updates without parsing it.
type BroadcastFrame struct {
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

// BroadcastStats is a point-in-time snapshot of the fan-out counters.
type BroadcastStats struct {
	MessagesReceived  int64 `json:"messages_received"`
	MessagesBroadcast int64 `json:"messages_broadcast"`
}

// BroadcastHandler forwards every domain event to the websocket hub so
// connected clients see map and activity updates live.
type BroadcastHandler struct {
	bus *Bus
	hub WebSocketBroadcaster

	received  atomic.Int64
	forwarded atomic.Int64
}

// NewBroadcastHandler creates the websocket fan-out consumer.
func NewBroadcastHandler(bus *Bus, hub WebSocketBroadcaster) (*BroadcastHandler, error) {
	if bus == nil {
		return nil, fmt.Errorf("event bus required")
	}
	if hub == nil {
		return nil, fmt.Errorf("websocket broadcaster required")
	}
	return &BroadcastHandler{bus: bus, hub: hub}, nil
}

// Run subscribes to every domain topic and blocks until ctx is canceled.
// Forwarding never fails a message: a hub that drops frames must not
// push the transport into redelivery.
func (h *BroadcastHandler) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, topic := range models.AllTopics() {
		wg.Add(1)
		go func(topic string) {
			defer wg.Done()
			err := h.bus.NewMessageHandler(topic).
				Handle(func(_ context.Context, msg *message.Message) error {
					h.forward(topic, msg)
					return nil
				}).
				Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logging.Error().Err(err).Str("topic", topic).
					Msg("Broadcast consumer stopped")
			}
		}(topic)
	}
	wg.Wait()
	return ctx.Err()
}

func (h *BroadcastHandler) forward(topic string, msg *message.Message) {
	h.received.Add(1)

	frame, err := json.Marshal(BroadcastFrame{
		Topic: topic,
		Data:  json.RawMessage(msg.Payload),
	})
	if err != nil {
		logging.Warn().Err(err).Str("topic", topic).
			Msg("Skipping broadcast of unencodable payload")
		return
	}

	h.hub.BroadcastRaw(frame)
	h.forwarded.Add(1)
}

// Stats returns the fan-out counters for the admin surface.
func (h *BroadcastHandler) Stats() BroadcastStats {
	return BroadcastStats{
		MessagesReceived:  h.received.Load(),
		MessagesBroadcast: h.forwarded.Load(),
	}
}
