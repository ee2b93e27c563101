// SPDX-License-Identifier: MIT

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryGetSetRoundTrip(t *testing.T) {
	c := NewMemory(0)
	c.Set("GET /campaigns", []byte(`{"items":[]}`), time.Minute)

	got, ok := c.Get("GET /campaigns")
	if !ok {
		t.Fatal("expected hit")
	}
	if string(got) != `{"items":[]}` {
		t.Fatalf("got %q", got)
	}
	if _, ok := c.Get("GET /templates"); ok {
		t.Fatal("unexpected hit for a different key")
	}
}

func TestMemoryExpiry(t *testing.T) {
	c := NewMemory(0)
	c.Set("k", []byte("v"), 10*time.Millisecond)

	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry expired too early")
	}
	time.Sleep(25 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry served past its TTL")
	}
}

func TestMemoryDeleteAndClear(t *testing.T) {
	c := NewMemory(0)
	c.Set("a", []byte("1"), time.Minute)
	c.Set("b", []byte("2"), time.Minute)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("deleted entry still served")
	}

	c.Clear()
	if _, ok := c.Get("b"); ok {
		t.Fatal("cleared entry still served")
	}
}

func TestMemoryStats(t *testing.T) {
	c := NewMemory(0)
	c.Set("k", []byte("v"), time.Minute)
	c.Get("k")
	c.Get("missing")

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 {
		t.Fatalf("stats = %+v, want 1 hit / 1 miss / 1 set", stats)
	}
	if stats.CurrentSize != 1 {
		t.Fatalf("size = %d, want 1", stats.CurrentSize)
	}
}

func TestMemoryJanitorEvictsExpired(t *testing.T) {
	c := NewMemory(10 * time.Millisecond).(*memoryCache)
	defer c.Stop()

	c.Set("k", []byte("v"), time.Millisecond)
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if c.Stats().CurrentSize == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("janitor never evicted the expired entry")
}

func TestMemoryConcurrentAccess(t *testing.T) {
	c := NewMemory(0)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			for j := 0; j < 100; j++ {
				c.Set(key, []byte("v"), time.Minute)
				c.Get(key)
				c.Delete(key)
			}
		}(i)
	}
	wg.Wait()
}

func TestNoOpNeverStores(t *testing.T) {
	c := NewNoOp()
	c.Set("k", []byte("v"), time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("no-op cache returned a value")
	}
	if s := c.Stats(); s != (Stats{}) {
		t.Fatalf("no-op stats = %+v, want zero", s)
	}
}
