package dashboard

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"
)

// ResultCache is a concurrent-safe LRU cache of computed bundles with TTL
// expiration. A capacity of zero disables caching.
type ResultCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front = most recently used
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	hits       atomic.Int64
	misses     atomic.Int64
	evictions  atomic.Int64
}

type resultEntry struct {
	key      string
	value    any
	storedAt time.Time
}

// CacheStats contains cache performance statistics.
type CacheStats struct {
	Entries    int     `json:"entries" yaml:"entries"`
	MaxEntries int     `json:"max_entries" yaml:"max_entries"`
	Hits       int64   `json:"hits" yaml:"hits"`
	Misses     int64   `json:"misses" yaml:"misses"`
	Evictions  int64   `json:"evictions" yaml:"evictions"`
	HitRate    float64 `json:"hit_rate" yaml:"hit_rate"`
}

// NewResultCache creates a cache holding at most maxEntries results for ttl.
// A zero ttl keeps entries until they are evicted.
func NewResultCache(maxEntries int, ttl time.Duration) *ResultCache {
	return &ResultCache{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Get returns the cached value for key. Expired entries count as misses and
// are dropped.
func (c *ResultCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	entry := el.Value.(*resultEntry)
	if c.expired(entry) {
		c.remove(el)
		c.misses.Add(1)
		return nil, false
	}
	c.order.MoveToFront(el)
	c.hits.Add(1)
	return entry.value, true
}

// Put stores value under key, evicting the least recently used entries when
// the cache is full.
func (c *ResultCache) Put(key string, value any) {
	if c.maxEntries <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		entry := el.Value.(*resultEntry)
		entry.value = value
		entry.storedAt = c.now()
		c.order.MoveToFront(el)
		return
	}

	for c.order.Len() >= c.maxEntries {
		c.remove(c.order.Back())
		c.evictions.Add(1)
	}
	c.entries[key] = c.order.PushFront(&resultEntry{key: key, value: value, storedAt: c.now()})
}

// Purge drops every entry. Counters are kept.
func (c *ResultCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

// Stats returns cache performance statistics.
func (c *ResultCache) Stats() CacheStats {
	c.mu.Lock()
	entries := c.order.Len()
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return CacheStats{
		Entries:    entries,
		MaxEntries: c.maxEntries,
		Hits:       hits,
		Misses:     misses,
		Evictions:  c.evictions.Load(),
		HitRate:    hitRate,
	}
}

func (c *ResultCache) expired(e *resultEntry) bool {
	return c.ttl > 0 && c.now().Sub(e.storedAt) > c.ttl
}

func (c *ResultCache) remove(el *list.Element) {
	entry := c.order.Remove(el).(*resultEntry)
	delete(c.entries, entry.key)
}
