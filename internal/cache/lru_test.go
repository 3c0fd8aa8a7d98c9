// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func TestLRU_BasicOperations(t *testing.T) {
	t.Parallel()

	c := NewLRU[string](10, time.Minute)

	if _, ok := c.Get("3901"); ok {
		t.Error("empty cache should miss")
	}

	c.Add("3901", "Aquavit")
	got, ok := c.Get("3901")
	if !ok || got != "Aquavit" {
		t.Errorf("Get() = %q, %v; want Aquavit, true", got, ok)
	}
	if _, _, size := c.Stats(); size != 1 {
		t.Errorf("size = %d, want 1", size)
	}
}

func TestLRU_Eviction(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](3, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	// Touch a so b becomes the least recently used.
	c.Get("a")
	c.Add("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s should still be cached", k)
		}
	}
}

func TestLRU_TTLExpiration(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)}
	c := NewLRU[int](10, time.Minute)
	c.SetClock(clock.Now)

	c.Add("k", 1)
	clock.Advance(59 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry should be alive before ttl")
	}

	clock.Advance(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("entry should expire after ttl")
	}
	if _, _, size := c.Stats(); size != 0 {
		t.Errorf("expired entry should be removed on access, size = %d", size)
	}
}

func TestLRU_AddRefreshesTTL(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)}
	c := NewLRU[int](10, time.Minute)
	c.SetClock(clock.Now)

	c.Add("k", 1)
	clock.Advance(50 * time.Second)
	c.Add("k", 2)
	clock.Advance(50 * time.Second)

	got, ok := c.Get("k")
	if !ok || got != 2 {
		t.Errorf("Get() = %d, %v; want 2, true", got, ok)
	}
}

func TestLRU_CleanupExpired(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)}
	c := NewLRU[int](10, time.Minute)
	c.SetClock(clock.Now)

	c.Add("old1", 1)
	c.Add("old2", 2)
	clock.Advance(30 * time.Second)
	c.Add("fresh", 3)
	clock.Advance(45 * time.Second)

	if removed := c.CleanupExpired(); removed != 2 {
		t.Errorf("CleanupExpired() = %d, want 2", removed)
	}
	if _, _, size := c.Stats(); size != 1 {
		t.Errorf("size = %d, want 1", size)
	}
}

func TestLRU_Stats(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](10, time.Minute)
	c.Add("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	hits, misses, size := c.Stats()
	if hits != 2 || misses != 1 || size != 1 {
		t.Errorf("Stats() = %d, %d, %d; want 2, 1, 1", hits, misses, size)
	}
}

func TestLRU_Defaults(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](0, 0)
	if c.capacity != 1024 || c.ttl != 5*time.Minute {
		t.Errorf("defaults = %d, %v", c.capacity, c.ttl)
	}
}

func TestLRU_Concurrent(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](100, time.Minute)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := strconv.Itoa((g*200 + i) % 150)
				c.Add(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	if _, _, size := c.Stats(); size > 100 {
		t.Errorf("size = %d exceeds capacity", size)
	}
}
