package redis

import (
	"context"
	"errors"
	"time"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/matching"
)

// ══════════════════════════════════════════════════════════════════════════════
// MATCH RESULT CACHE
// Second-level cache shared between engine instances. The in-process eviction
// cache stays authoritative for a single instance; this layer lets a restarted
// or sibling instance reuse recently computed result lists.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultMatchTTL is the default lifetime of a cached result list.
const DefaultMatchTTL = 10 * time.Minute

// MatchCache stores ranked match-result lists keyed by request hash.
type MatchCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewMatchCache creates a MatchCache on top of the shared Redis client.
// Non-positive TTL falls back to DefaultMatchTTL.
func NewMatchCache(cache *Cache, ttl time.Duration) *MatchCache {
	if ttl <= 0 {
		ttl = DefaultMatchTTL
	}
	return &MatchCache{cache: cache, ttl: ttl}
}

// Fetch returns the cached result list for the request hash.
// The second return value is false on a miss; errors are reserved for
// transport or serialization failures.
func (m *MatchCache) Fetch(ctx context.Context, requestHash string) (matching.MatchResultList, bool, error) {
	var results matching.MatchResultList
	err := m.cache.Get(ctx, MatchesKey(requestHash), &results)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return results, true, nil
}

// Store caches the full result list under the request hash.
func (m *MatchCache) Store(ctx context.Context, requestHash string, results matching.MatchResultList) error {
	return m.cache.Set(ctx, MatchesKey(requestHash), results, m.ttl)
}

// Invalidate drops every cached list. Called when the participant pool
// changes in a way that affects ranking globally.
func (m *MatchCache) Invalidate(ctx context.Context) error {
	return m.cache.DeleteByPattern(ctx, PrefixMatches+"*")
}
