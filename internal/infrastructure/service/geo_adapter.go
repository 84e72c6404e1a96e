package service

import (
	"context"
	"time"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/matching"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/pkg/retry"
)

// geoCallTimeout bounds one distance lookup including retries.
const geoCallTimeout = 3 * time.Second

// Heuristic distances used when no geo provider is configured or the
// provider cannot resolve a pair. Rough bands, only used to pick the
// location score band.
const (
	sameRegionKm   = 5
	sameTimezoneKm = 40
	farApartKm     = 500
)

// DistanceProvider is the outbound client for the geo distance service.
type DistanceProvider interface {
	DistanceKm(ctx context.Context, a, b *participant.Participant) (float64, error)
}

// GeoDistanceAdapter implements matching.DistanceResolver. Provider calls go
// through exponential-backoff retries; when the provider is absent or keeps
// failing, the adapter estimates distance from region and timezone tags so
// scoring still produces a location component.
type GeoDistanceAdapter struct {
	provider DistanceProvider
	retrier  *retry.Retrier
}

// NewGeoDistanceAdapter creates an adapter around the given provider.
// A nil provider means heuristic-only resolution.
func NewGeoDistanceAdapter(provider DistanceProvider) *GeoDistanceAdapter {
	return &GeoDistanceAdapter{
		provider: provider,
		retrier:  retry.GeoServiceRetrier(),
	}
}

// Distance implements matching.DistanceResolver.
func (g *GeoDistanceAdapter) Distance(a, b *participant.Participant) (km float64, ok bool) {
	if g.provider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), geoCallTimeout)
		defer cancel()

		var resolved float64
		err := g.retrier.Do(ctx, func(ctx context.Context) error {
			var callErr error
			resolved, callErr = g.provider.DistanceKm(ctx, a, b)
			return callErr
		})
		if err == nil && resolved >= 0 {
			return resolved, true
		}
	}
	return g.estimate(a, b), true
}

// estimate maps profile tags to a distance band.
func (g *GeoDistanceAdapter) estimate(a, b *participant.Participant) float64 {
	switch {
	case a.Region != "" && a.Region == b.Region:
		return sameRegionKm
	case a.Timezone != "" && a.Timezone == b.Timezone:
		return sameTimezoneKm
	default:
		return farApartKm
	}
}

var _ matching.DistanceResolver = (*GeoDistanceAdapter)(nil)
