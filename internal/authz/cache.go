// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package authz

import (
	"sync"
	"time"
)

// decisionCache caches authorization decisions keyed on role, path and
// method. Entries expire after the configured TTL; a background sweeper
// removes them and reports evictions.
type decisionCache struct {
	ttl      time.Duration
	mu       sync.RWMutex
	items    map[string]*decisionEntry
	stopChan chan struct{}
	stopOnce sync.Once
}

type decisionEntry struct {
	allowed   bool
	expiresAt time.Time
}

// newDecisionCache creates a new cache and starts its sweeper.
func newDecisionCache(ttl time.Duration) *decisionCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	c := &decisionCache{
		ttl:      ttl,
		items:    make(map[string]*decisionEntry),
		stopChan: make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// key generates a cache key.
func (c *decisionCache) key(role, path, method string) string {
	return role + ":" + path + ":" + method
}

// get retrieves a cached decision.
func (c *decisionCache) get(role, path, method string) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.items[c.key(role, path, method)]
	if !ok {
		return false, false
	}

	if time.Now().After(entry.expiresAt) {
		return false, false
	}

	return entry.allowed, true
}

// set stores a decision in the cache.
func (c *decisionCache) set(role, path, method string, allowed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[c.key(role, path, method)] = &decisionEntry{
		allowed:   allowed,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// clear removes all cached decisions.
func (c *decisionCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*decisionEntry)
	UpdateAuthzCacheSize(0)
}

// size returns the current number of entries, expired or not.
func (c *decisionCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// cleanup periodically removes expired items.
func (c *decisionCache) cleanup() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.items {
				if now.After(entry.expiresAt) {
					delete(c.items, key)
					RecordAuthzCacheEviction()
				}
			}
			UpdateAuthzCacheSize(len(c.items))
			c.mu.Unlock()
		}
	}
}

// stop stops the sweeper goroutine.
// It is safe to call multiple times (idempotent).
func (c *decisionCache) stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
}
