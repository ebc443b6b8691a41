// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package cache

import (
	"time"

	"github.com/localis-app/localis/internal/config"
)

// Cache names, used as the cache_type label on the prometheus series
// and as the clearing granularity for event-driven invalidation.
const (
	CachePlaces  = "places"
	CacheSearch  = "search"
	CacheNearby  = "nearby"
	CacheMarkers = "markers"
	CacheGeocode = "geocode"
	CacheStats   = "stats"
	CacheFeed    = "feed"
)

// Geocode answers derive from the static gazetteer, so they live far
// longer than mutation-coupled response families and are bounded by
// capacity instead of event clearing.
const (
	geocodeTTL      = time.Hour
	geocodeCapacity = 2048
)

// Set bundles the named response caches the API layer reads through.
// Each member covers one response family; the Invalidator clears
// members by family when domain events arrive.
type Set struct {
	// Places holds place detail and list responses.
	Places Cacher
	// Search holds free-text search results.
	Search Cacher
	// Nearby holds radius proximity query results.
	Nearby Cacher
	// Markers holds map viewport marker sets.
	Markers Cacher
	// Geocode holds forward and reverse geocode answers (LFU).
	Geocode Cacher
	// Stats holds the admin stats overview.
	Stats Cacher
	// Feed holds per-user activity feed pages.
	Feed Cacher

	enabled bool
}

// NewSet builds the response caches from configuration. With caching
// disabled every member is a no-op cache, so handlers and the
// Invalidator need no branches.
func NewSet(cfg *config.CacheConfig) *Set {
	if cfg == nil || !cfg.Enabled {
		off := Disabled()
		return &Set{
			Places:  off,
			Search:  off,
			Nearby:  off,
			Markers: off,
			Geocode: off,
			Stats:   off,
			Feed:    off,
		}
	}

	ttl := cfg.TTL
	cleanup := cfg.CleanupInterval

	return &Set{
		Places:  New(CachePlaces, ttl, cleanup),
		Search:  New(CacheSearch, ttl, cleanup),
		Nearby:  New(CacheNearby, ttl, cleanup),
		Markers: New(CacheMarkers, ttl, cleanup),
		Geocode: NewLFUCache(CacheGeocode, geocodeCapacity, geocodeTTL),
		Stats:   New(CacheStats, ttl, cleanup),
		Feed:    New(CacheFeed, ttl, cleanup),
		enabled: true,
	}
}

// Enabled reports whether the set holds real caches.
func (s *Set) Enabled() bool {
	return s.enabled
}

// all returns every member for iteration.
func (s *Set) all() []Cacher {
	return []Cacher{s.Places, s.Search, s.Nearby, s.Markers, s.Geocode, s.Stats, s.Feed}
}

// ClearAll empties every cache in the set.
func (s *Set) ClearAll() {
	for _, c := range s.all() {
		c.Clear()
	}
}

// Stop releases background resources of every member. Idempotent.
func (s *Set) Stop() {
	for _, c := range s.all() {
		c.Stop()
	}
}

// StatsSnapshot returns per-cache counters keyed by cache name, for
// the admin stats endpoint.
func (s *Set) StatsSnapshot() map[string]Stats {
	return map[string]Stats{
		CachePlaces:  s.Places.GetStats(),
		CacheSearch:  s.Search.GetStats(),
		CacheNearby:  s.Nearby.GetStats(),
		CacheMarkers: s.Markers.GetStats(),
		CacheGeocode: s.Geocode.GetStats(),
		CacheStats:   s.Stats.GetStats(),
		CacheFeed:    s.Feed.GetStats(),
	}
}
