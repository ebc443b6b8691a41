// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package cache

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/localis-app/localis/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// newTestCache builds a cache and stops its cleanup loop with the test.
func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c := New("test", ttl, time.Minute)
	t.Cleanup(c.Stop)
	return c
}

func TestCacheBasicOperations(t *testing.T) {
	c := newTestCache(t, time.Minute)

	c.Set("key1", "value1")
	value, exists := c.Get("key1")
	if !exists {
		t.Error("Expected key1 to exist")
	}
	if value != "value1" {
		t.Errorf("Expected value1, got %v", value)
	}

	_, exists = c.Get("key2")
	if exists {
		t.Error("Expected key2 to not exist")
	}
}

func TestCacheDefaults(t *testing.T) {
	c := New("", 0, 0)
	defer c.Stop()

	if c.Name() != defaultCacheName {
		t.Errorf("Name() = %q, want %q", c.Name(), defaultCacheName)
	}
	if c.ttl != defaultTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, defaultTTL)
	}
}

func TestCacheExpiration(t *testing.T) {
	c := newTestCache(t, 100*time.Millisecond)

	c.Set("key1", "value1")

	_, exists := c.Get("key1")
	if !exists {
		t.Error("Expected key1 to exist immediately after set")
	}

	time.Sleep(150 * time.Millisecond)

	_, exists = c.Get("key1")
	if exists {
		t.Error("Expected key1 to be expired")
	}

	stats := c.GetStats()
	if stats.Evictions != 1 {
		t.Errorf("Expected 1 eviction for the expired entry, got %d", stats.Evictions)
	}
}

func TestCacheDelete(t *testing.T) {
	c := newTestCache(t, time.Minute)

	c.Set("key1", "value1")
	c.Delete("key1")

	_, exists := c.Get("key1")
	if exists {
		t.Error("Expected key1 to be deleted")
	}

	// Deleting an absent key is safe.
	c.Delete("missing")
}

func TestCacheClear(t *testing.T) {
	c := newTestCache(t, time.Minute)

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Set("key3", "value3")

	c.Clear()

	for _, key := range []string{"key1", "key2", "key3"} {
		_, exists := c.Get(key)
		if exists {
			t.Errorf("Expected %s to be cleared", key)
		}
	}

	stats := c.GetStats()
	if stats.Evictions != 3 {
		t.Errorf("Expected 3 evictions from Clear, got %d", stats.Evictions)
	}
	if stats.TotalKeys != 0 {
		t.Errorf("Expected 0 keys after Clear, got %d", stats.TotalKeys)
	}
}

func TestCacheStats(t *testing.T) {
	c := newTestCache(t, time.Minute)

	c.Set("key1", "value1")
	c.Get("key1") // hit
	c.Get("key2") // miss
	c.Get("key1") // hit

	stats := c.GetStats()

	if stats.Hits != 2 {
		t.Errorf("Expected 2 hits, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}
	if stats.TotalKeys != 1 {
		t.Errorf("Expected 1 key, got %d", stats.TotalKeys)
	}

	hitRate := c.HitRate()
	expectedHitRate := 66.66666666666667 // 2/3 * 100
	if hitRate < expectedHitRate-0.01 || hitRate > expectedHitRate+0.01 {
		t.Errorf("Expected hit rate around %.2f%%, got %.2f%%", expectedHitRate, hitRate)
	}
}

func TestCacheHitRateEmpty(t *testing.T) {
	c := newTestCache(t, time.Minute)

	if rate := c.HitRate(); rate != 0.0 {
		t.Errorf("Expected 0%% hit rate before any access, got %.2f%%", rate)
	}
}

func TestCacheSetWithTTL(t *testing.T) {
	c := newTestCache(t, time.Minute)

	c.SetWithTTL("key1", "value1", 100*time.Millisecond)

	_, exists := c.Get("key1")
	if !exists {
		t.Error("Expected key1 to exist")
	}

	time.Sleep(150 * time.Millisecond)

	_, exists = c.Get("key1")
	if exists {
		t.Error("Expected key1 to expire with its custom TTL")
	}
}

func TestCacheCleanup(t *testing.T) {
	c := newTestCache(t, time.Minute)

	c.SetWithTTL("stale1", "v", -time.Second)
	c.SetWithTTL("stale2", "v", -time.Second)
	c.Set("fresh", "v")

	c.cleanup()

	stats := c.GetStats()
	if stats.TotalKeys != 1 {
		t.Errorf("Expected 1 key after cleanup, got %d", stats.TotalKeys)
	}
	if stats.Evictions != 2 {
		t.Errorf("Expected 2 evictions from cleanup, got %d", stats.Evictions)
	}
	if stats.LastCleanup.IsZero() {
		t.Error("Expected LastCleanup to be stamped")
	}

	if _, exists := c.Get("fresh"); !exists {
		t.Error("Expected unexpired entry to survive cleanup")
	}
}

func TestCacheStopIdempotent(t *testing.T) {
	c := New("stop-test", time.Minute, time.Minute)

	c.Stop()
	c.Stop()
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := newTestCache(t, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key%d", j%10)
				c.Set(key, n)
				c.Get(key)
				if j%25 == 0 {
					c.Delete(key)
				}
			}
		}(i)
	}
	wg.Wait()

	stats := c.GetStats()
	if stats.Hits+stats.Misses != 1000 {
		t.Errorf("Expected 1000 total lookups, got %d", stats.Hits+stats.Misses)
	}
}

func TestGenerateKey(t *testing.T) {
	type filter struct {
		Query string
		Page  int
	}

	key1 := GenerateKey("search", filter{Query: "coffee", Page: 1})
	key2 := GenerateKey("search", filter{Query: "coffee", Page: 1})
	key3 := GenerateKey("search", filter{Query: "coffee", Page: 2})
	key4 := GenerateKey("nearby", filter{Query: "coffee", Page: 1})

	if key1 != key2 {
		t.Errorf("Identical params produced different keys: %q vs %q", key1, key2)
	}
	if key1 == key3 {
		t.Error("Different params produced the same key")
	}
	if key1 == key4 {
		t.Error("Different endpoints produced the same key")
	}
	if !strings.HasPrefix(key1, "search:") {
		t.Errorf("Expected key to carry the endpoint prefix, got %q", key1)
	}
}

func TestGenerateKeyUnmarshalable(t *testing.T) {
	// Channels cannot be marshaled; the fallback key still carries the
	// endpoint prefix.
	key := GenerateKey("search", make(chan int))
	if !strings.HasPrefix(key, "search:") {
		t.Errorf("Expected fallback key with endpoint prefix, got %q", key)
	}
}

func BenchmarkCacheGet(b *testing.B) {
	c := New("bench", time.Minute, time.Minute)
	defer c.Stop()

	c.Set("key", "value")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("key")
	}
}

func BenchmarkCacheSet(b *testing.B) {
	c := New("bench", time.Minute, time.Minute)
	defer c.Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set("key", i)
	}
}
