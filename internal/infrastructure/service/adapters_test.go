package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

type stubReputationProvider struct {
	value shared.Reputation
	err   error
	calls int
}

func (s *stubReputationProvider) FetchReputation(ctx context.Context, id shared.ParticipantID) (shared.Reputation, error) {
	s.calls++
	return s.value, s.err
}

func TestReputationAdapter_NilProviderIsNeutral(t *testing.T) {
	adapter := NewReputationAdapter(nil)

	got := adapter.Reputation(shared.ParticipantID("00000000-0000-4000-8000-000000000001"))

	assert.Equal(t, NeutralReputation, got)
}

func TestReputationAdapter_ReturnsClampedProviderValue(t *testing.T) {
	provider := &stubReputationProvider{value: 1.4}
	adapter := NewReputationAdapter(provider)

	got := adapter.Reputation(shared.ParticipantID("00000000-0000-4000-8000-000000000001"))

	assert.Equal(t, shared.Reputation(1.0), got)
	assert.Equal(t, 1, provider.calls)
}

func TestReputationAdapter_FailureFallsBackToNeutral(t *testing.T) {
	provider := &stubReputationProvider{err: errors.New("aggregator down")}
	adapter := NewReputationAdapter(provider)

	got := adapter.Reputation(shared.ParticipantID("00000000-0000-4000-8000-000000000001"))

	assert.Equal(t, NeutralReputation, got)
}

func TestReputationAdapter_OpenBreakerSkipsProvider(t *testing.T) {
	provider := &stubReputationProvider{err: errors.New("aggregator down")}
	adapter := NewReputationAdapter(provider)
	id := shared.ParticipantID("00000000-0000-4000-8000-000000000001")

	// ReputationBreaker opens after 3 consecutive failures.
	for i := 0; i < 3; i++ {
		adapter.Reputation(id)
	}
	callsBefore := provider.calls

	got := adapter.Reputation(id)

	assert.Equal(t, NeutralReputation, got)
	assert.Equal(t, callsBefore, provider.calls)
}

type stubDistanceProvider struct {
	km  float64
	err error
}

func (s *stubDistanceProvider) DistanceKm(ctx context.Context, a, b *participant.Participant) (float64, error) {
	return s.km, s.err
}

func TestGeoDistanceAdapter_UsesProvider(t *testing.T) {
	adapter := NewGeoDistanceAdapter(&stubDistanceProvider{km: 12.5})

	km, ok := adapter.Distance(&participant.Participant{}, &participant.Participant{})

	assert.True(t, ok)
	assert.Equal(t, 12.5, km)
}

func TestGeoDistanceAdapter_HeuristicBands(t *testing.T) {
	adapter := NewGeoDistanceAdapter(nil)

	almaty := &participant.Participant{Timezone: "Asia/Almaty", Region: "almaty"}
	almatyToo := &participant.Participant{Timezone: "Asia/Almaty", Region: "almaty"}
	taraz := &participant.Participant{Timezone: "Asia/Almaty", Region: "taraz"}
	berlin := &participant.Participant{Timezone: "Europe/Berlin", Region: "berlin"}

	km, ok := adapter.Distance(almaty, almatyToo)
	assert.True(t, ok)
	assert.Equal(t, float64(sameRegionKm), km)

	km, _ = adapter.Distance(almaty, taraz)
	assert.Equal(t, float64(sameTimezoneKm), km)

	km, _ = adapter.Distance(almaty, berlin)
	assert.Equal(t, float64(farApartKm), km)
}

func TestGeoDistanceAdapter_ProviderFailureFallsBackToHeuristic(t *testing.T) {
	adapter := NewGeoDistanceAdapter(&stubDistanceProvider{err: errors.New("geo service down")})

	almaty := &participant.Participant{Timezone: "Asia/Almaty", Region: "almaty"}
	taraz := &participant.Participant{Timezone: "Asia/Almaty", Region: "taraz"}

	km, ok := adapter.Distance(almaty, taraz)

	assert.True(t, ok)
	assert.Equal(t, float64(sameTimezoneKm), km)
}
