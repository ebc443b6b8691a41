// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package authz

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestNewDecisionCache(t *testing.T) {
	cache := newDecisionCache(5 * time.Minute)
	defer cache.stop()

	if cache == nil {
		t.Fatal("newDecisionCache() returned nil")
	}
	if cache.ttl != 5*time.Minute {
		t.Errorf("ttl = %v, want 5m", cache.ttl)
	}
	if cache.items == nil {
		t.Error("items map not initialized")
	}
}

func TestNewDecisionCache_ZeroTTL(t *testing.T) {
	cache := newDecisionCache(0)
	defer cache.stop()

	if cache.ttl != 5*time.Minute {
		t.Errorf("ttl = %v, want default 5m for zero TTL", cache.ttl)
	}
}

func TestNewDecisionCache_NegativeTTL(t *testing.T) {
	cache := newDecisionCache(-1 * time.Second)
	defer cache.stop()

	if cache.ttl != 5*time.Minute {
		t.Errorf("ttl = %v, want default 5m for negative TTL", cache.ttl)
	}
}

func TestDecisionCache_Key(t *testing.T) {
	cache := newDecisionCache(time.Minute)
	defer cache.stop()

	key := cache.key("moderator", "/api/v1/places/42", "DELETE")
	want := "moderator:/api/v1/places/42:DELETE"
	if key != want {
		t.Errorf("key() = %q, want %q", key, want)
	}
}

func TestDecisionCache_SetAndGet(t *testing.T) {
	cache := newDecisionCache(time.Minute)
	defer cache.stop()

	cache.set("user", "/api/v1/places", "GET", true)

	allowed, found := cache.get("user", "/api/v1/places", "GET")
	if !found {
		t.Fatal("get() should find cached entry")
	}
	if !allowed {
		t.Error("get() should return cached allowed=true")
	}

	// Denials are cached too
	cache.set("user", "/api/v1/places", "POST", false)
	allowed, found = cache.get("user", "/api/v1/places", "POST")
	if !found {
		t.Fatal("get() should find cached denial")
	}
	if allowed {
		t.Error("get() should return cached allowed=false")
	}
}

func TestDecisionCache_Get_NotFound(t *testing.T) {
	cache := newDecisionCache(time.Minute)
	defer cache.stop()

	_, found := cache.get("user", "/api/v1/never-set", "GET")
	if found {
		t.Error("get() should not find entry that was never set")
	}
}

func TestDecisionCache_Get_Expired(t *testing.T) {
	cache := newDecisionCache(1 * time.Millisecond)
	defer cache.stop()

	cache.set("user", "/api/v1/places", "GET", true)
	time.Sleep(10 * time.Millisecond)

	_, found := cache.get("user", "/api/v1/places", "GET")
	if found {
		t.Error("get() should not return expired entry")
	}
}

func TestDecisionCache_Clear(t *testing.T) {
	cache := newDecisionCache(time.Minute)
	defer cache.stop()

	cache.set("user", "/api/v1/places", "GET", true)
	cache.set("moderator", "/api/v1/places/42", "DELETE", true)
	cache.set("admin", "/api/v1/admin/stats", "GET", true)

	if cache.size() != 3 {
		t.Errorf("size() = %d before clear, want 3", cache.size())
	}

	cache.clear()

	if cache.size() != 0 {
		t.Errorf("size() = %d after clear, want 0", cache.size())
	}
	_, found := cache.get("user", "/api/v1/places", "GET")
	if found {
		t.Error("get() should not find entry after clear")
	}
}

func TestDecisionCache_Size(t *testing.T) {
	cache := newDecisionCache(time.Minute)
	defer cache.stop()

	if cache.size() != 0 {
		t.Errorf("size() = %d for empty cache, want 0", cache.size())
	}

	for i := 0; i < 5; i++ {
		cache.set("user", fmt.Sprintf("/api/v1/places/%d", i), "GET", true)
	}

	if cache.size() != 5 {
		t.Errorf("size() = %d, want 5", cache.size())
	}

	// Overwriting an existing key does not grow the cache
	cache.set("user", "/api/v1/places/0", "GET", false)
	if cache.size() != 5 {
		t.Errorf("size() = %d after overwrite, want 5", cache.size())
	}
}

func TestDecisionCache_Stop(t *testing.T) {
	cache := newDecisionCache(time.Minute)

	// Stop should be idempotent
	cache.stop()
	cache.stop()
	cache.stop()
}

func TestDecisionCache_ConcurrentStop(t *testing.T) {
	cache := newDecisionCache(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache.stop()
		}()
	}
	wg.Wait()
}

func TestDecisionCache_ConcurrentAccess(t *testing.T) {
	cache := newDecisionCache(time.Minute)
	defer cache.stop()

	var wg sync.WaitGroup

	// Two writers
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func(writer int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				path := fmt.Sprintf("/api/v1/places/%d-%d", writer, i)
				cache.set("user", path, "GET", i%2 == 0)
			}
		}(w)
	}

	// One reader
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			cache.get("user", fmt.Sprintf("/api/v1/places/0-%d", i), "GET")
			cache.size()
		}
	}()

	wg.Wait()

	if cache.size() != 200 {
		t.Errorf("size() = %d after concurrent writes, want 200", cache.size())
	}
}

func TestDecisionCache_CleanupRemovesExpired(t *testing.T) {
	cache := newDecisionCache(20 * time.Millisecond)
	defer cache.stop()

	cache.set("user", "/api/v1/places", "GET", true)
	cache.set("user", "/api/v1/feed", "GET", true)

	// Wait for at least one cleanup sweep past the TTL
	time.Sleep(60 * time.Millisecond)

	if cache.size() != 0 {
		t.Errorf("size() = %d after cleanup sweep, want 0", cache.size())
	}
}

func BenchmarkDecisionCache_Get(b *testing.B) {
	cache := newDecisionCache(time.Minute)
	defer cache.stop()

	cache.set("user", "/api/v1/places", "GET", true)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.get("user", "/api/v1/places", "GET")
	}
}

func BenchmarkDecisionCache_Set(b *testing.B) {
	cache := newDecisionCache(time.Minute)
	defer cache.stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.set("user", "/api/v1/places", "GET", true)
	}
}
