package lru

import "testing"

func TestCachePutGet(t *testing.T) {
	t.Parallel()

	c := New[string, int](2)

	c.Put("a", 1)
	c.Put("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %v, %v; want 1, true", v, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Fatal("Get(missing) = true; want false")
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c := New[string, int](2)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // a is now most-recently-used, b is LRU.
	c.Put("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}

	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to survive eviction")
	}

	if _, ok := c.Get("c"); !ok {
		t.Fatal("expected c to be present")
	}
}

func TestCacheUnboundedWhenMaxEntriesNonPositive(t *testing.T) {
	t.Parallel()

	c := New[int, int](0)

	for i := range 1000 {
		c.Put(i, i*i)
	}

	if c.Len() != 1000 {
		t.Fatalf("Len() = %d; want 1000", c.Len())
	}
}

func TestGetOrLoadCachesResult(t *testing.T) {
	t.Parallel()

	c := New[string, int](4)
	calls := 0

	load := func() (int, error) {
		calls++

		return 42, nil
	}

	for range 3 {
		v, err := c.GetOrLoad("k", load)
		if err != nil {
			t.Fatalf("GetOrLoad: %v", err)
		}

		if v != 42 {
			t.Fatalf("GetOrLoad = %d; want 42", v)
		}
	}

	if calls != 1 {
		t.Fatalf("load called %d times; want 1", calls)
	}
}

func TestStatsHitRate(t *testing.T) {
	t.Parallel()

	c := New[string, int](4)
	c.Put("a", 1)
	c.Get("a")
	c.Get("missing")

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Fatalf("stats = %+v; want 1 hit, 1 miss", stats)
	}

	if stats.HitRate() != 0.5 {
		t.Fatalf("HitRate() = %v; want 0.5", stats.HitRate())
	}
}
