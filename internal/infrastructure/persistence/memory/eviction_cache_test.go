package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances manually so TTL behavior is deterministic.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestCache(capacity int, ttl time.Duration) (*EvictionCache[string, int], *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)}
	cache := NewEvictionCache[string, int](capacity, ttl)
	cache.clock = clock.Now
	return cache, clock
}

func TestEvictionCache_GetSet(t *testing.T) {
	cache, _ := newTestCache(4, time.Minute)

	_, ok := cache.Get("missing")
	assert.False(t, ok)

	cache.Set("a", 1)
	got, ok := cache.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, got)

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestEvictionCache_LazyExpiry(t *testing.T) {
	cache, clock := newTestCache(4, time.Minute)

	cache.Set("a", 1)
	clock.Advance(59 * time.Second)
	_, ok := cache.Get("a")
	assert.True(t, ok, "entry inside TTL must survive")

	clock.Advance(2 * time.Second)
	_, ok = cache.Get("a")
	assert.False(t, ok, "entry past TTL must be dropped on read")
	assert.Equal(t, 0, cache.Len())

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Expired)
}

func TestEvictionCache_SetExistingRefreshes(t *testing.T) {
	cache, clock := newTestCache(4, time.Minute)

	cache.Set("a", 1)
	clock.Advance(50 * time.Second)
	cache.Set("a", 2)

	// Timestamp was refreshed, so 50s later the entry is still alive.
	clock.Advance(50 * time.Second)
	got, ok := cache.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestEvictionCache_EvictsLowestUtility(t *testing.T) {
	cache, clock := newTestCache(2, time.Hour)

	cache.Set("old-popular", 1)
	clock.Advance(10 * time.Second)
	cache.Set("old-cold", 2)
	clock.Advance(10 * time.Second)

	// old-popular: 3 accesses over 20s; old-cold: 0 accesses over 10s.
	for i := 0; i < 3; i++ {
		_, ok := cache.Get("old-popular")
		require.True(t, ok)
	}

	cache.Set("fresh", 3)

	_, ok := cache.Get("old-cold")
	assert.False(t, ok, "never-read entry must be the eviction victim")
	_, ok = cache.Get("old-popular")
	assert.True(t, ok)
	_, ok = cache.Get("fresh")
	assert.True(t, ok)

	assert.Equal(t, int64(1), cache.Stats().Evictions)
}

func TestEvictionCache_EvictionPrefersExpired(t *testing.T) {
	cache, clock := newTestCache(2, time.Minute)

	cache.Set("stale", 1)
	// Make stale the better-scoring entry so only expiry can pick it.
	for i := 0; i < 10; i++ {
		_, ok := cache.Get("stale")
		require.True(t, ok)
	}
	clock.Advance(2 * time.Minute)
	cache.Set("live", 2)
	cache.Set("new", 3)

	_, ok := cache.Get("live")
	assert.True(t, ok, "live entry must survive when an expired one exists")
	_, ok = cache.Get("new")
	assert.True(t, ok)
}

func TestEvictionCache_Sweep(t *testing.T) {
	cache, clock := newTestCache(8, time.Minute)

	cache.Set("a", 1)
	cache.Set("b", 2)
	clock.Advance(2 * time.Minute)
	cache.Set("c", 3)

	removed := cache.Sweep()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, cache.Len())

	_, ok := cache.Get("c")
	assert.True(t, ok)
}

func TestEvictionCache_CapacityOne(t *testing.T) {
	cache, _ := newTestCache(1, time.Hour)

	cache.Set("a", 1)
	cache.Set("b", 2)

	_, ok := cache.Get("a")
	assert.False(t, ok)
	got, ok := cache.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestEvictionCache_ZeroTTLNeverExpires(t *testing.T) {
	cache, clock := newTestCache(4, 0)

	cache.Set("a", 1)
	clock.Advance(240 * time.Hour)

	_, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 0, cache.Sweep())
}
