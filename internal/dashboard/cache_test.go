package dashboard

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache(maxEntries int, ttl time.Duration, clock *fakeClock) *ResultCache {
	c := NewResultCache(maxEntries, ttl)
	c.now = clock.Now
	return c
}

func TestResultCache_BasicGetPut(t *testing.T) {
	cache := newTestCache(10, time.Hour, newFakeClock())

	_, ok := cache.Get("a")
	assert.False(t, ok)

	cache.Put("a", 1)
	v, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	// Overwrite in place.
	cache.Put("a", 2)
	v, _ = cache.Get("a")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, cache.Stats().Entries)
}

func TestResultCache_TTLExpiration(t *testing.T) {
	clock := newFakeClock()
	cache := newTestCache(10, time.Minute, clock)

	cache.Put("a", "x")
	clock.Advance(30 * time.Second)
	_, ok := cache.Get("a")
	assert.True(t, ok)

	clock.Advance(31 * time.Second)
	_, ok = cache.Get("a")
	assert.False(t, ok)

	// Expired entry is removed.
	assert.Equal(t, 0, cache.Stats().Entries)
}

func TestResultCache_ZeroTTLNeverExpires(t *testing.T) {
	clock := newFakeClock()
	cache := newTestCache(10, 0, clock)

	cache.Put("a", "x")
	clock.Advance(24 * time.Hour)
	_, ok := cache.Get("a")
	assert.True(t, ok)
}

func TestResultCache_LRUEviction_AccessOrder(t *testing.T) {
	cache := newTestCache(3, time.Hour, newFakeClock())

	cache.Put("a", 1)
	cache.Put("b", 2)
	cache.Put("c", 3)

	// Touch "a" so "b" becomes the oldest.
	cache.Get("a")
	cache.Put("d", 4)

	_, okA := cache.Get("a")
	_, okB := cache.Get("b")
	_, okC := cache.Get("c")
	_, okD := cache.Get("d")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)
	assert.True(t, okD)
	assert.Equal(t, int64(1), cache.Stats().Evictions)
}

func TestResultCache_Disabled(t *testing.T) {
	cache := newTestCache(0, time.Hour, newFakeClock())
	cache.Put("a", 1)
	_, ok := cache.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Stats().Entries)
}

func TestResultCache_Purge(t *testing.T) {
	cache := newTestCache(10, time.Hour, newFakeClock())
	cache.Put("a", 1)
	cache.Put("b", 2)
	cache.Get("a")

	cache.Purge()

	st := cache.Stats()
	assert.Equal(t, 0, st.Entries)
	assert.Equal(t, int64(1), st.Hits)
	_, ok := cache.Get("a")
	assert.False(t, ok)
}

func TestResultCache_Stats(t *testing.T) {
	cache := newTestCache(5, time.Hour, newFakeClock())
	cache.Put("a", 1)
	cache.Get("a")
	cache.Get("a")
	cache.Get("missing")

	st := cache.Stats()
	assert.Equal(t, 1, st.Entries)
	assert.Equal(t, 5, st.MaxEntries)
	assert.Equal(t, int64(2), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
	assert.InDelta(t, 2.0/3.0, st.HitRate, 0.0001)
}

func TestResultCache_ConcurrentAccess(t *testing.T) {
	cache := newTestCache(50, time.Hour, newFakeClock())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (n*j)%80)
				cache.Put(key, j)
				cache.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, cache.Stats().Entries, 50)
}
