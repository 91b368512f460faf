package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL is a goroutine-safe map whose entries expire after a fixed lifetime.
// Expired entries are dropped lazily on read or by Purge.
type TTL[K comparable, V any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[K]entry[V]
}

// now is a small indirection so tests can move the clock.
var now = time.Now

// NewTTL builds a cache keeping entries for ttl. A ttl <= 0 disables caching:
// Put becomes a no-op and Get always misses.
func NewTTL[K comparable, V any](ttl time.Duration) *TTL[K, V] {
	return &TTL[K, V]{ttl: ttl, items: make(map[K]entry[V])}
}

func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.items[key]
	if !ok {
		return zero, false
	}
	if now().After(e.expiresAt) {
		delete(c.items, key)
		return zero, false
	}
	return e.value, true
}

func (c *TTL[K, V]) Put(key K, value V) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry[V]{value: value, expiresAt: now().Add(c.ttl)}
}

// Len counts live entries.
func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	ts := now()
	for _, e := range c.items {
		if !ts.After(e.expiresAt) {
			n++
		}
	}
	return n
}

// Purge removes every expired entry and reports how many it dropped.
func (c *TTL[K, V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := now()
	n := 0
	for k, e := range c.items {
		if ts.After(e.expiresAt) {
			delete(c.items, k)
			n++
		}
	}
	return n
}
