// Package service adapts external collaborators (reputation aggregator,
// geo distance service) to the domain ports the matching scorer consumes.
package service

import (
	"context"
	"time"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/matching"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
	"github.com/peerstudy-hub/peerstudy-matching/internal/infrastructure/persistence/redis"
	"github.com/peerstudy-hub/peerstudy-matching/pkg/circuitbreaker"
)

// NeutralReputation is used when no reputation data is available.
const NeutralReputation shared.Reputation = 0.5

// reputationCallTimeout bounds a single aggregator call. The scorer port is
// synchronous, so the adapter owns the deadline.
const reputationCallTimeout = 2 * time.Second

// ReputationProvider is the outbound client for the reputation aggregator.
type ReputationProvider interface {
	FetchReputation(ctx context.Context, id shared.ParticipantID) (shared.Reputation, error)
}

// ReputationAdapter implements matching.ReputationSource on top of an
// external aggregator. Calls go through a circuit breaker; when the breaker
// is open or the call fails, the adapter falls back to the last snapshot in
// Redis and finally to NeutralReputation. Scoring never fails because the
// aggregator is down.
type ReputationAdapter struct {
	provider ReputationProvider
	breaker  *circuitbreaker.CircuitBreaker
	cache    *redis.Cache
	snapTTL  time.Duration
}

// ReputationAdapterOption configures the adapter.
type ReputationAdapterOption func(*ReputationAdapter)

// WithReputationSnapshots enables Redis snapshots of fetched values so a
// tripped breaker can still serve recent data.
func WithReputationSnapshots(cache *redis.Cache, ttl time.Duration) ReputationAdapterOption {
	return func(a *ReputationAdapter) {
		a.cache = cache
		if ttl > 0 {
			a.snapTTL = ttl
		}
	}
}

// WithReputationBreaker overrides the default circuit breaker.
func WithReputationBreaker(cb *circuitbreaker.CircuitBreaker) ReputationAdapterOption {
	return func(a *ReputationAdapter) {
		a.breaker = cb
	}
}

// NewReputationAdapter creates an adapter around the given provider.
// A nil provider yields NeutralReputation for every participant.
func NewReputationAdapter(provider ReputationProvider, opts ...ReputationAdapterOption) *ReputationAdapter {
	a := &ReputationAdapter{
		provider: provider,
		breaker:  circuitbreaker.ReputationBreaker(nil),
		snapTTL:  time.Hour,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Reputation implements matching.ReputationSource.
func (a *ReputationAdapter) Reputation(id shared.ParticipantID) shared.Reputation {
	if a.provider == nil {
		return NeutralReputation
	}

	ctx, cancel := context.WithTimeout(context.Background(), reputationCallTimeout)
	defer cancel()

	var value shared.Reputation
	err := a.breaker.ExecuteWithFallback(ctx,
		func(ctx context.Context) error {
			fetched, fetchErr := a.provider.FetchReputation(ctx, id)
			if fetchErr != nil {
				return fetchErr
			}
			value = fetched.Clamp()
			a.snapshot(ctx, id, value)
			return nil
		},
		func(error) error {
			value = a.lastSnapshot(ctx, id)
			return nil
		},
	)
	if err != nil {
		// Breaker closed but the call itself failed.
		return a.lastSnapshot(ctx, id)
	}
	return value
}

// snapshot stores a freshly fetched value. Failures are ignored; the
// snapshot is an optimization, not a source of truth.
func (a *ReputationAdapter) snapshot(ctx context.Context, id shared.ParticipantID, value shared.Reputation) {
	if a.cache == nil {
		return
	}
	_ = a.cache.Set(ctx, redis.ReputationKey(id.String()), value.Float64(), a.snapTTL)
}

func (a *ReputationAdapter) lastSnapshot(ctx context.Context, id shared.ParticipantID) shared.Reputation {
	if a.cache == nil {
		return NeutralReputation
	}
	var stored float64
	if err := a.cache.Get(ctx, redis.ReputationKey(id.String()), &stored); err != nil {
		return NeutralReputation
	}
	return shared.Reputation(stored).Clamp()
}

var _ matching.ReputationSource = (*ReputationAdapter)(nil)
