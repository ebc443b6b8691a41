// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/localis-app/localis/internal/config"
	"github.com/localis-app/localis/internal/events"
	"github.com/localis-app/localis/internal/models"
)

// newTestBus builds a bus on the in-process transport and closes it
// when the test finishes.
func newTestBus(t *testing.T) *events.Bus {
	t.Helper()
	bus := events.New(&config.EventsConfig{Enabled: true, BufferSize: 8})
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

// newEnabledSet builds an enabled cache set and stops it with the test.
func newEnabledSet(t *testing.T) *Set {
	t.Helper()
	s := NewSet(&config.CacheConfig{
		Enabled:         true,
		TTL:             time.Minute,
		CleanupInterval: time.Minute,
	})
	t.Cleanup(s.Stop)
	return s
}

func TestNewInvalidatorValidation(t *testing.T) {
	bus := newTestBus(t)
	set := newEnabledSet(t)

	if _, err := NewInvalidator(nil, set); err == nil {
		t.Error("Expected error for nil bus")
	}
	if _, err := NewInvalidator(bus, nil); err == nil {
		t.Error("Expected error for nil cache set")
	}
	if _, err := NewInvalidator(bus, set); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestInvalidatorAffectedCaches(t *testing.T) {
	bus := newTestBus(t)
	set := newEnabledSet(t)
	inv, err := NewInvalidator(bus, set)
	if err != nil {
		t.Fatalf("NewInvalidator: %v", err)
	}

	tests := []struct {
		topic string
		want  int
	}{
		{topic: models.TopicPlaceCreated, want: 6},
		{topic: models.TopicPlaceDeleted, want: 6},
		{topic: models.TopicReviewUpdated, want: 6},
		{topic: models.TopicFollowed, want: 2},
		{topic: "bogus.topic", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			if got := len(inv.affectedCaches(tt.topic)); got != tt.want {
				t.Errorf("affectedCaches(%q) = %d caches, want %d", tt.topic, got, tt.want)
			}
		})
	}
}

func TestInvalidatorInvalidateDirect(t *testing.T) {
	bus := newTestBus(t)
	set := newEnabledSet(t)
	inv, err := NewInvalidator(bus, set)
	if err != nil {
		t.Fatalf("NewInvalidator: %v", err)
	}

	set.Feed.Set("feed", "v")
	set.Stats.Set("stats", "v")
	set.Places.Set("places", "v")

	msg := message.NewMessage(watermill.NewUUID(), nil)
	inv.invalidate(models.TopicFollowed, msg)

	if _, ok := set.Feed.Get("feed"); ok {
		t.Error("Expected feed cache to be cleared by a follow event")
	}
	if _, ok := set.Stats.Get("stats"); ok {
		t.Error("Expected stats cache to be cleared by a follow event")
	}
	if _, ok := set.Places.Get("places"); !ok {
		t.Error("Expected places cache to survive a follow event")
	}

	stats := inv.Stats()
	if stats.EventsSeen != 1 {
		t.Errorf("Expected 1 event seen, got %d", stats.EventsSeen)
	}
	if stats.CachesCleared != 2 {
		t.Errorf("Expected 2 caches cleared, got %d", stats.CachesCleared)
	}
}

func TestInvalidatorClearsOnPlaceEvent(t *testing.T) {
	bus := newTestBus(t)
	set := newEnabledSet(t)
	inv, err := NewInvalidator(bus, set)
	if err != nil {
		t.Fatalf("NewInvalidator: %v", err)
	}

	set.Places.Set("p", "v")
	set.Search.Set("s", "v")
	set.Geocode.Set("g", "v")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- inv.Run(ctx) }()

	// Give the consumer goroutines time to establish their
	// subscriptions, one per topic.
	time.Sleep(150 * time.Millisecond)

	err = bus.PublishPlace(context.Background(), models.TopicPlaceCreated, &models.PlaceEvent{
		PlaceID:  uuid.New(),
		OwnerID:  2,
		Name:     "Blue Bottle",
		Category: "cafe",
	})
	if err != nil {
		t.Fatalf("PublishPlace: %v", err)
	}

	// Poll for the clear (more reliable in CI under load).
	cleared := false
	for i := 0; i < 50; i++ {
		if _, ok := set.Places.Get("p"); !ok {
			cleared = true
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if !cleared {
		t.Fatal("Expected places cache to be cleared after a place event")
	}

	if _, ok := set.Search.Get("s"); ok {
		t.Error("Expected search cache to be cleared after a place event")
	}
	if _, ok := set.Geocode.Get("g"); !ok {
		t.Error("Expected geocode cache to survive a place event")
	}

	stats := inv.Stats()
	if stats.EventsSeen < 1 {
		t.Errorf("Expected at least 1 event seen, got %d", stats.EventsSeen)
	}
	if stats.CachesCleared < 6 {
		t.Errorf("Expected at least 6 caches cleared, got %d", stats.CachesCleared)
	}

	cancel()
	select {
	case runErr := <-done:
		if !errors.Is(runErr, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", runErr)
		}
	case <-time.After(2 * time.Second):
		t.Error("Run did not return after cancel")
	}
}

func TestInvalidatorDisabledSetIdles(t *testing.T) {
	bus := newTestBus(t)
	set := NewSet(&config.CacheConfig{Enabled: false})

	inv, err := NewInvalidator(bus, set)
	if err != nil {
		t.Fatalf("NewInvalidator: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- inv.Run(ctx) }()

	cancel()
	select {
	case runErr := <-done:
		if !errors.Is(runErr, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", runErr)
		}
	case <-time.After(2 * time.Second):
		t.Error("Run did not return after cancel")
	}

	if stats := inv.Stats(); stats.EventsSeen != 0 {
		t.Errorf("Expected no events seen with caching disabled, got %d", stats.EventsSeen)
	}
}
