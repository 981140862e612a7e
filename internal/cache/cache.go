package cache

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache is an in-memory cache bounded by size and TTL
type Cache[V any] struct {
	lru    *expirable.LRU[string, V]
	ttl    time.Duration
	hits   int64
	misses int64
}

// NewCache creates a new cache holding at most size items for ttl
func NewCache[V any](size int, ttl time.Duration) *Cache[V] {
	if size <= 0 {
		size = 1
	}
	return &Cache[V]{
		lru: expirable.NewLRU[string, V](size, nil, ttl),
		ttl: ttl,
	}
}

// Get retrieves a value from the cache
func (c *Cache[V]) Get(key string) (V, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		atomic.AddInt64(&c.hits, 1)
	} else {
		atomic.AddInt64(&c.misses, 1)
	}
	return v, ok
}

// Set stores a value in the cache; the oldest item is evicted when full
func (c *Cache[V]) Set(key string, value V) {
	c.lru.Add(key, value)
}

// Delete removes a value from the cache
func (c *Cache[V]) Delete(key string) {
	c.lru.Remove(key)
}

// Stats returns cache statistics
type Stats struct {
	ItemCount int    `json:"item_count"`
	HitCount  int64  `json:"hit_count"`
	MissCount int64  `json:"miss_count"`
	TTL       string `json:"ttl"`
}

// Stats returns a snapshot of the cache counters
func (c *Cache[V]) Stats() Stats {
	return Stats{
		ItemCount: c.lru.Len(),
		HitCount:  atomic.LoadInt64(&c.hits),
		MissCount: atomic.LoadInt64(&c.misses),
		TTL:       c.ttl.String(),
	}
}

// Size returns the number of items in the cache
func (c *Cache[V]) Size() int {
	return c.lru.Len()
}
