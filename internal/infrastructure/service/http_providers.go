package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// HTTP PROVIDERS
// Thin JSON clients for the reputation aggregator and the geo distance
// service. Resilience (breaker, retries, fallbacks) lives in the adapters,
// not here.
// ══════════════════════════════════════════════════════════════════════════════

// HTTPReputationProvider fetches reputation scores over HTTP.
//
// Expected endpoint:
//
//	GET {base}/api/v1/participants/{id}/reputation
//	200 -> {"reputation": 0.83}
type HTTPReputationProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPReputationProvider creates a provider for the given aggregator URL.
func NewHTTPReputationProvider(baseURL string, timeout time.Duration) *HTTPReputationProvider {
	if timeout <= 0 {
		timeout = reputationCallTimeout
	}
	return &HTTPReputationProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchReputation implements ReputationProvider.
func (p *HTTPReputationProvider) FetchReputation(ctx context.Context, id shared.ParticipantID) (shared.Reputation, error) {
	endpoint := fmt.Sprintf("%s/api/v1/participants/%s/reputation", p.baseURL, url.PathEscape(id.String()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build reputation request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("reputation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("reputation aggregator returned %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Reputation float64 `json:"reputation"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode reputation response: %w", err)
	}
	return shared.Reputation(payload.Reputation), nil
}

var _ ReputationProvider = (*HTTPReputationProvider)(nil)

// HTTPDistanceProvider resolves pairwise distances over HTTP.
//
// Expected endpoint:
//
//	POST {base}/api/v1/distance
//	{"from": {"region": "almaty", "timezone": "Asia/Almaty"},
//	 "to":   {"region": "astana", "timezone": "Asia/Almaty"}}
//	200 -> {"distance_km": 972.4}
type HTTPDistanceProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPDistanceProvider creates a provider for the given geo service URL.
func NewHTTPDistanceProvider(baseURL string, timeout time.Duration) *HTTPDistanceProvider {
	if timeout <= 0 {
		timeout = geoCallTimeout
	}
	return &HTTPDistanceProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type distancePoint struct {
	Region   string `json:"region"`
	Timezone string `json:"timezone"`
}

// DistanceKm implements DistanceProvider.
func (p *HTTPDistanceProvider) DistanceKm(ctx context.Context, a, b *participant.Participant) (float64, error) {
	reqBody := struct {
		From distancePoint `json:"from"`
		To   distancePoint `json:"to"`
	}{
		From: distancePoint{Region: a.Region, Timezone: a.Timezone},
		To:   distancePoint{Region: b.Region, Timezone: b.Timezone},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("encode distance request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/v1/distance", bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("build distance request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("distance request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("geo service returned %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		DistanceKm float64 `json:"distance_km"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode distance response: %w", err)
	}
	return payload.DistanceKm, nil
}

var _ DistanceProvider = (*HTTPDistanceProvider)(nil)
