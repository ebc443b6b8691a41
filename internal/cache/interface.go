// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package cache

import "time"

// Cacher is the interface handlers program against. Both Cache
// (TTL-based) and LFUCache (frequency-based) implement it, as does the
// no-op cache used when response caching is disabled, so callers never
// branch on configuration.
type Cacher interface {
	// Get retrieves a value. Returns the value and true when found
	// and not expired.
	Get(key string) (interface{}, bool)

	// Set stores a value with the default TTL.
	Set(key string, value interface{})

	// SetWithTTL stores a value with a custom TTL.
	SetWithTTL(key string, value interface{}, ttl time.Duration)

	// Delete removes a value.
	Delete(key string)

	// Clear removes all entries.
	Clear()

	// GetStats returns cache counters.
	GetStats() Stats

	// HitRate returns the hit rate as a percentage.
	HitRate() float64

	// Stop releases any background resources. Idempotent; no-op for
	// implementations without a cleanup goroutine.
	Stop()
}

// CacheType selects a cache implementation.
type CacheType string

const (
	// CacheTypeTTL is the plain TTL map cache, the default. Best for
	// uniform access patterns and event-cleared response families.
	CacheTypeTTL CacheType = "ttl"

	// CacheTypeLFU is a capacity-bounded least-frequently-used cache.
	// Best for skewed access patterns such as geocode lookups, where
	// a handful of keys take most of the traffic.
	CacheTypeLFU CacheType = "lfu"
)

// Options configures a cache built through NewCacher.
type Options struct {
	// Type selects the implementation; defaults to CacheTypeTTL.
	Type CacheType

	// Name labels the prometheus series for this cache.
	Name string

	// TTL is the default entry lifetime.
	TTL time.Duration

	// Capacity bounds the entry count (LFU only).
	Capacity int

	// CleanupInterval controls the background sweep (TTL only).
	CleanupInterval time.Duration
}

// NewCacher creates a cache from Options.
func NewCacher(opts Options) Cacher {
	switch opts.Type {
	case CacheTypeLFU:
		return NewLFUCache(opts.Name, opts.Capacity, opts.TTL)
	default:
		return New(opts.Name, opts.TTL, opts.CleanupInterval)
	}
}

// Disabled returns a cache that stores nothing. Used when response
// caching is turned off, keeping handler code identical either way. It
// records no metrics, so disabled deployments report empty cache_*
// series instead of a 0% hit rate.
func Disabled() Cacher {
	return noopCache{}
}

// noopCache discards writes and misses every read.
type noopCache struct{}

func (noopCache) Get(string) (interface{}, bool) { return nil, false }

func (noopCache) Set(string, interface{}) {}

func (noopCache) SetWithTTL(string, interface{}, time.Duration) {}

func (noopCache) Delete(string) {}

func (noopCache) Clear() {}

func (noopCache) GetStats() Stats { return Stats{} }

func (noopCache) HitRate() float64 { return 0.0 }

func (noopCache) Stop() {}

// Verify interface implementations at compile time.
var (
	_ Cacher = (*Cache)(nil)
	_ Cacher = (*LFUCache)(nil)
	_ Cacher = noopCache{}
)
