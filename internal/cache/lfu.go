// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package cache

import (
	"sync"
	"time"

	"github.com/localis-app/localis/internal/metrics"
)

const defaultLFUCapacity = 10000

// lfuEntry is a node in both the key map and a frequency list.
type lfuEntry struct {
	key       string
	value     interface{}
	freq      int
	expiresAt time.Time
	prev      *lfuEntry
	next      *lfuEntry
}

// freqList is a doubly-linked list of entries sharing one access
// frequency, ordered most-recently-used first.
type freqList struct {
	head *lfuEntry
	tail *lfuEntry
	size int
}

func newFreqList() *freqList {
	fl := &freqList{
		head: &lfuEntry{},
		tail: &lfuEntry{},
	}
	fl.head.next = fl.tail
	fl.tail.prev = fl.head
	return fl
}

func (fl *freqList) addToFront(entry *lfuEntry) {
	entry.prev = fl.head
	entry.next = fl.head.next
	fl.head.next.prev = entry
	fl.head.next = entry
	fl.size++
}

func (fl *freqList) remove(entry *lfuEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	entry.prev = nil
	entry.next = nil
	fl.size--
}

// removeLast removes and returns the least recently used entry at this
// frequency, or nil when the list is empty.
func (fl *freqList) removeLast() *lfuEntry {
	if fl.size == 0 {
		return nil
	}
	entry := fl.tail.prev
	fl.remove(entry)
	return entry
}

func (fl *freqList) isEmpty() bool {
	return fl.size == 0
}

// LFUCache is a thread-safe least-frequently-used cache with O(1) Get,
// Set and eviction.
//
// It suits response families with skewed access patterns where a few
// keys dominate: geocode lookups for the app's home city dwarf every
// other query, so frequency-based eviction keeps them resident while a
// TTL map would expire and refetch them on the same schedule as
// one-off queries. Expiration is lazy; expired entries fall out on Get
// or during CleanupExpired.
//
// The structure is the textbook constant-time LFU: a key map for
// lookup, a map from frequency to a recency-ordered list, and a
// tracked minimum frequency for eviction.
type LFUCache struct {
	mu sync.RWMutex

	name     string
	capacity int
	ttl      time.Duration

	keyMap  map[string]*lfuEntry
	freqMap map[int]*freqList
	minFreq int

	hits      int64
	misses    int64
	evictions int64
}

// NewLFUCache creates an LFU cache with the given metric name, entry
// capacity and default TTL.
func NewLFUCache(name string, capacity int, ttl time.Duration) *LFUCache {
	if name == "" {
		name = defaultCacheName
	}
	if capacity <= 0 {
		capacity = defaultLFUCapacity
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &LFUCache{
		name:     name,
		capacity: capacity,
		ttl:      ttl,
		keyMap:   make(map[string]*lfuEntry, capacity),
		freqMap:  make(map[int]*freqList),
	}
}

// Get retrieves a value and increments its access frequency. Expired
// entries are removed and reported as misses.
func (c *LFUCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.keyMap[key]
	if !exists {
		c.misses++
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		c.removeEntry(entry)
		c.misses++
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		metrics.CacheSize.WithLabelValues(c.name).Set(float64(len(c.keyMap)))
		return nil, false
	}

	c.incrementFreq(entry)
	c.hits++
	metrics.CacheHits.WithLabelValues(c.name).Inc()

	return entry.value, true
}

// Set stores a value with the default TTL, evicting the least
// frequently used entry when the cache is full.
func (c *LFUCache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL.
func (c *LFUCache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(ttl)

	if entry, exists := c.keyMap[key]; exists {
		entry.value = value
		entry.expiresAt = expiresAt
		c.incrementFreq(entry)
		return
	}

	if len(c.keyMap) >= c.capacity {
		c.evict()
	}

	entry := &lfuEntry{
		key:       key,
		value:     value,
		freq:      1,
		expiresAt: expiresAt,
	}

	if c.freqMap[1] == nil {
		c.freqMap[1] = newFreqList()
	}
	c.freqMap[1].addToFront(entry)
	c.keyMap[key] = entry

	// A fresh entry always starts at frequency 1.
	c.minFreq = 1

	metrics.CacheSize.WithLabelValues(c.name).Set(float64(len(c.keyMap)))
}

// Delete removes an entry. Safe for absent keys.
func (c *LFUCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.keyMap[key]
	if !exists {
		return
	}
	c.removeEntry(entry)
	c.evictions++
	metrics.CacheEvictions.WithLabelValues(c.name).Inc()
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(len(c.keyMap)))
}

// Contains reports whether a key holds an unexpired entry without
// touching its frequency.
func (c *LFUCache) Contains(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if entry, exists := c.keyMap[key]; exists {
		return !time.Now().After(entry.expiresAt)
	}
	return false
}

// Len returns the current number of entries.
func (c *LFUCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.keyMap)
}

// Clear removes all entries.
func (c *LFUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := int64(len(c.keyMap))
	c.keyMap = make(map[string]*lfuEntry, c.capacity)
	c.freqMap = make(map[int]*freqList)
	c.minFreq = 0
	c.evictions += evicted

	metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(evicted))
	metrics.CacheSize.WithLabelValues(c.name).Set(0)
}

// GetStats returns a snapshot of the cache counters.
func (c *LFUCache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		TotalKeys: int64(len(c.keyMap)),
	}
}

// HitRate returns the cache hit rate as a percentage.
func (c *LFUCache) HitRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.hits + c.misses
	if total == 0 {
		return 0.0
	}
	return float64(c.hits) / float64(total) * 100.0
}

// GetFrequency returns the access frequency for a key, or 0 for absent
// keys.
func (c *LFUCache) GetFrequency(key string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if entry, exists := c.keyMap[key]; exists {
		return entry.freq
	}
	return 0
}

// CleanupExpired removes every expired entry and returns how many were
// removed. Expiration is otherwise lazy, so long-idle caches can call
// this to release memory early.
func (c *LFUCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0

	for _, entry := range c.keyMap {
		if now.After(entry.expiresAt) {
			c.removeEntry(entry)
			removed++
		}
	}

	if removed > 0 {
		c.evictions += int64(removed)
		metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(removed))
		metrics.CacheSize.WithLabelValues(c.name).Set(float64(len(c.keyMap)))
	}

	return removed
}

// Stop implements Cacher. The LFU cache has no background goroutine.
func (c *LFUCache) Stop() {}

// incrementFreq moves an entry to the next frequency level. Caller must
// hold the lock.
func (c *LFUCache) incrementFreq(entry *lfuEntry) {
	oldFreq := entry.freq

	if fl, exists := c.freqMap[oldFreq]; exists {
		fl.remove(entry)
		if fl.isEmpty() && c.minFreq == oldFreq {
			c.minFreq++
		}
	}

	entry.freq++

	if c.freqMap[entry.freq] == nil {
		c.freqMap[entry.freq] = newFreqList()
	}
	c.freqMap[entry.freq].addToFront(entry)
}

// evict removes the least frequently used entry, breaking frequency
// ties by recency. Caller must hold the lock.
func (c *LFUCache) evict() {
	fl := c.freqMap[c.minFreq]
	if fl == nil || fl.isEmpty() {
		return
	}

	entry := fl.removeLast()
	if entry != nil {
		delete(c.keyMap, entry.key)
		c.evictions++
		metrics.CacheEvictions.WithLabelValues(c.name).Inc()
	}
}

// removeEntry unlinks an entry from its frequency list and the key map.
// Caller must hold the lock.
func (c *LFUCache) removeEntry(entry *lfuEntry) {
	if fl, exists := c.freqMap[entry.freq]; exists {
		fl.remove(entry)
	}
	delete(c.keyMap, entry.key)
}
