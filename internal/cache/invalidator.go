// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/localis-app/localis/internal/events"
	"github.com/localis-app/localis/internal/logging"
	"github.com/localis-app/localis/internal/models"
)

// Invalidator subscribes to every domain event topic and clears the
// response cache families a mutation can affect. It runs as a
// supervised service next to the websocket broadcaster.
//
// Clearing is per-family rather than per-key: a place update changes
// list pages, search rankings, proximity results and aggregate stats at
// once, and those responses are keyed by hashed filter parameters that
// cannot be reverse-mapped to one place. With short TTLs the cost of a
// full family clear is a handful of recomputed pages.
type Invalidator struct {
	bus    *events.Bus
	caches *Set

	eventsSeen    atomic.Int64
	cachesCleared atomic.Int64
}

// InvalidationStats reports invalidator progress counters.
type InvalidationStats struct {
	EventsSeen    int64 `json:"events_seen"`
	CachesCleared int64 `json:"caches_cleared"`
}

// NewInvalidator wires an invalidator to the bus and cache set.
func NewInvalidator(bus *events.Bus, caches *Set) (*Invalidator, error) {
	if bus == nil {
		return nil, fmt.Errorf("event bus required")
	}
	if caches == nil {
		return nil, fmt.Errorf("cache set required")
	}

	return &Invalidator{
		bus:    bus,
		caches: caches,
	}, nil
}

// Run consumes every domain topic until the context ends. With caching
// disabled there is nothing to clear, so it just waits for shutdown.
func (inv *Invalidator) Run(ctx context.Context) error {
	if !inv.caches.Enabled() {
		logging.Debug().Msg("Response caching disabled, invalidator idle")
		<-ctx.Done()
		return ctx.Err()
	}

	var wg sync.WaitGroup
	for _, topic := range models.AllTopics() {
		wg.Add(1)
		go func(topic string) {
			defer wg.Done()
			err := inv.bus.NewMessageHandler(topic).
				Handle(func(_ context.Context, msg *message.Message) error {
					inv.invalidate(topic, msg)
					return nil
				}).
				Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logging.Error().Err(err).Str("topic", topic).
					Msg("Cache invalidation consumer stopped")
			}
		}(topic)
	}
	wg.Wait()
	return ctx.Err()
}

// invalidate clears the cache families affected by one event.
func (inv *Invalidator) invalidate(topic string, msg *message.Message) {
	inv.eventsSeen.Add(1)

	affected := inv.affectedCaches(topic)
	for _, c := range affected {
		c.Clear()
	}
	inv.cachesCleared.Add(int64(len(affected)))

	logging.Debug().
		Str("topic", topic).
		Str("message_uuid", msg.UUID).
		Int("caches_cleared", len(affected)).
		Msg("Invalidated response caches")
}

// affectedCaches maps an event topic to the cache families it makes
// stale. Place and review mutations reach every place-derived response;
// follow changes only move stats and feeds. Geocode answers come from
// the static gazetteer and are never event-cleared.
func (inv *Invalidator) affectedCaches(topic string) []Cacher {
	family, _, _ := strings.Cut(topic, ".")

	switch family {
	case "place", "review":
		return []Cacher{
			inv.caches.Places,
			inv.caches.Search,
			inv.caches.Nearby,
			inv.caches.Markers,
			inv.caches.Stats,
			inv.caches.Feed,
		}
	case "social":
		return []Cacher{
			inv.caches.Stats,
			inv.caches.Feed,
		}
	default:
		return nil
	}
}

// Stats returns the invalidator's progress counters.
func (inv *Invalidator) Stats() InvalidationStats {
	return InvalidationStats{
		EventsSeen:    inv.eventsSeen.Load(),
		CachesCleared: inv.cachesCleared.Load(),
	}
}
