// Package memory provides in-process storage adapters: a frequency-aware
// eviction cache for match results and an in-memory participant repository
// used by tests and the CLI.
package memory

import (
	"sync"
	"time"
)

// entry is a single cached value with its bookkeeping.
type entry[V any] struct {
	value       V
	storedAt    time.Time
	accessCount int64
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Size      int
	Hits      int64
	Misses    int64
	Evictions int64
	Expired   int64
}

// EvictionCache is a bounded TTL cache. Expired entries are dropped lazily
// on Get; when a new key arrives at capacity, the entry with the lowest
// utility score accessCount/(ageSeconds+1) is evicted, so rarely used old
// entries go first. All operations are serialized by a single mutex.
type EvictionCache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*entry[V]
	capacity int
	ttl      time.Duration

	// clock is swappable in tests.
	clock func() time.Time

	hits      int64
	misses    int64
	evictions int64
	expired   int64
}

// NewEvictionCache creates a cache with the given capacity and TTL.
// Non-positive capacity defaults to 1; non-positive TTL means entries
// never expire.
func NewEvictionCache[K comparable, V any](capacity int, ttl time.Duration) *EvictionCache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &EvictionCache[K, V]{
		entries:  make(map[K]*entry[V], capacity),
		capacity: capacity,
		ttl:      ttl,
		clock:    time.Now,
	}
}

// Get returns the value for key. An entry past its TTL is removed and
// reported as a miss. A hit increments the entry's access count.
func (c *EvictionCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return zero, false
	}
	if c.isExpired(e, c.clock()) {
		delete(c.entries, key)
		c.expired++
		c.misses++
		return zero, false
	}

	e.accessCount++
	c.hits++
	return e.value, true
}

// Set stores value under key. An existing key has its value and timestamp
// refreshed in place. A new key at capacity first evicts the entry with
// the lowest utility score.
func (c *EvictionCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.storedAt = now
		return
	}

	if len(c.entries) >= c.capacity {
		c.evictOne(now)
	}
	c.entries[key] = &entry[V]{value: value, storedAt: now}
}

// Delete removes key if present.
func (c *EvictionCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Sweep removes every expired entry and returns how many were dropped.
// Intended to be called periodically so memory does not depend on reads
// touching stale keys.
func (c *EvictionCache[K, V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	removed := 0
	for key, e := range c.entries {
		if c.isExpired(e, now) {
			delete(c.entries, key)
			removed++
		}
	}
	c.expired += int64(removed)
	return removed
}

// Len returns the number of stored entries, including not-yet-swept
// expired ones.
func (c *EvictionCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *EvictionCache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Size:      len(c.entries),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Expired:   c.expired,
	}
}

func (c *EvictionCache[K, V]) isExpired(e *entry[V], now time.Time) bool {
	return c.ttl > 0 && now.Sub(e.storedAt) > c.ttl
}

// evictOne removes the entry with the lowest accessCount/(ageSeconds+1).
// Expired entries are preferred victims regardless of score. Caller holds
// the mutex.
func (c *EvictionCache[K, V]) evictOne(now time.Time) {
	var (
		victim    K
		bestScore = -1.0
		found     bool
	)
	for key, e := range c.entries {
		if c.isExpired(e, now) {
			delete(c.entries, key)
			c.expired++
			return
		}
		age := now.Sub(e.storedAt).Seconds()
		score := float64(e.accessCount) / (age + 1)
		if !found || score < bestScore {
			victim = key
			bestScore = score
			found = true
		}
	}
	if found {
		delete(c.entries, victim)
		c.evictions++
	}
}
