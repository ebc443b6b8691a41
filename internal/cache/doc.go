// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

/*
Package cache provides thread-safe in-memory caching for API responses.

Listing, search and proximity endpoints serve mostly identical responses
between mutations. This package keeps those responses in memory for a short
TTL and clears them when the event bus reports a mutation, so handlers hit
DuckDB only when something actually changed.

# Overview

The package provides:
  - Cache: a TTL map cache with a background cleanup loop
  - LFUCache: a capacity-bounded least-frequently-used cache for skewed
    access patterns (geocode lookups)
  - Set: the named caches the API layer uses, one per response family
  - Invalidator: an event bus consumer that clears affected caches when
    places, reviews or follow relations change
  - SpatialHashGrid: a grid index for nearest-neighbor coordinate lookups

All caches report hits, misses, evictions and entry counts both through
GetStats and through the prometheus cache_* series, labeled with the cache
name.

# Usage

Handlers read through a named cache from the Set:

	key := cache.GenerateKey("search", params)
	if cached, ok := h.caches.Search.Get(key); ok {
	    write(w, cached)
	    return
	}
	results, err := h.db.SearchPlaces(ctx, q, category, limit)
	...
	h.caches.Search.Set(key, results)

# Invalidation

Entries expire two ways:

 1. TTL expiry, checked lazily on Get and swept by the cleanup loop.
 2. Event-driven clearing: the Invalidator subscribes to every domain
    topic and clears the response families a mutation can affect. A place
    or review event clears place, search, proximity, stats and feed
    caches; a follow event clears stats and feed caches only. Geocode
    answers derive from the static gazetteer and are never event-cleared.

Because invalidation is clear-based rather than per-key, the configured
TTL bounds staleness only for mutations the bus never saw (such as rows
changed by an operator directly in the database file).

# Key Conventions

Keys are generated from the endpoint name and its parameters:

	search:3fa9c81d...     // GenerateKey("search", filter)
	nearby:77b02e4a...     // GenerateKey("nearby", nearbyFilter)
	stats:admin            // fixed key, parameterless endpoint

GenerateKey hashes the JSON form of the parameters, so any comparable
filter struct produces a stable key without hand-built format strings.

# Limitations

The TTL cache is unbounded; it relies on short TTLs and event clearing to
stay small. Only the LFU cache enforces a capacity. Everything here is
per-process; running multiple instances gives each its own cache, which
is acceptable because entries are short-lived and reads are idempotent.
*/
package cache
