// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package cache

import (
	"testing"
	"time"

	"github.com/localis-app/localis/internal/config"
)

func TestNewSetEnabled(t *testing.T) {
	s := NewSet(&config.CacheConfig{
		Enabled:         true,
		TTL:             time.Minute,
		CleanupInterval: time.Minute,
	})
	defer s.Stop()

	if !s.Enabled() {
		t.Error("Expected set to be enabled")
	}

	for _, c := range s.all() {
		if c == nil {
			t.Fatal("Expected every cache member to be constructed")
		}
	}

	s.Search.Set("key", "value")
	if _, ok := s.Search.Get("key"); !ok {
		t.Error("Expected enabled set to store values")
	}

	// Geocode is the LFU member.
	if _, ok := s.Geocode.(*LFUCache); !ok {
		t.Errorf("Expected geocode cache to be LFU, got %T", s.Geocode)
	}
}

func TestNewSetDisabled(t *testing.T) {
	s := NewSet(&config.CacheConfig{Enabled: false})

	if s.Enabled() {
		t.Error("Expected set to be disabled")
	}

	// Handlers still call through without nil checks; writes are
	// simply dropped.
	s.Places.Set("key", "value")
	if _, ok := s.Places.Get("key"); ok {
		t.Error("Expected disabled cache to store nothing")
	}

	s.ClearAll()
	s.Stop()
}

func TestNewSetNilConfig(t *testing.T) {
	s := NewSet(nil)

	if s.Enabled() {
		t.Error("Expected nil config to disable caching")
	}
}

func TestSetClearAll(t *testing.T) {
	s := NewSet(&config.CacheConfig{
		Enabled:         true,
		TTL:             time.Minute,
		CleanupInterval: time.Minute,
	})
	defer s.Stop()

	s.Places.Set("p", 1)
	s.Search.Set("s", 2)
	s.Geocode.Set("g", 3)

	s.ClearAll()

	for _, c := range s.all() {
		if stats := c.GetStats(); stats.TotalKeys != 0 {
			t.Errorf("Expected empty cache after ClearAll, got %d keys", stats.TotalKeys)
		}
	}
}

func TestSetStatsSnapshot(t *testing.T) {
	s := NewSet(&config.CacheConfig{
		Enabled:         true,
		TTL:             time.Minute,
		CleanupInterval: time.Minute,
	})
	defer s.Stop()

	s.Nearby.Set("key", "value")
	s.Nearby.Get("key")

	snapshot := s.StatsSnapshot()

	wantNames := []string{
		CachePlaces, CacheSearch, CacheNearby, CacheMarkers,
		CacheGeocode, CacheStats, CacheFeed,
	}
	for _, name := range wantNames {
		if _, ok := snapshot[name]; !ok {
			t.Errorf("Expected snapshot to include %q", name)
		}
	}

	if snapshot[CacheNearby].Hits != 1 {
		t.Errorf("Expected 1 hit on nearby cache, got %d", snapshot[CacheNearby].Hits)
	}
}
