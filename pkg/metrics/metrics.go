// Package metrics exposes Prometheus instrumentation for the matching engine.
// All collectors are registered on a private registry so tests can create
// isolated instances without double-registration panics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all engine collectors.
type Metrics struct {
	registry *prometheus.Registry

	// MatchDuration observes end-to-end FindMatches latency.
	MatchDuration prometheus.Histogram

	// CandidatesScored counts candidates run through the scorer.
	CandidatesScored prometheus.Counter

	// MatchesReturned observes result-list sizes after diversification.
	MatchesReturned prometheus.Histogram

	// CacheHits and CacheMisses count match-cache lookups per cache layer
	// ("memory" or "redis").
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// CacheEvictions counts entries evicted from the in-memory cache.
	CacheEvictions prometheus.Counter

	// RecommendationsServed counts recommendations per strategy method.
	RecommendationsServed *prometheus.CounterVec

	// SlotsFound observes the number of slots per scheduling query.
	SlotsFound prometheus.Histogram
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		MatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "peerstudy",
			Subsystem: "matching",
			Name:      "find_matches_duration_seconds",
			Help:      "End-to-end latency of FindMatches queries.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),

		CandidatesScored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "peerstudy",
			Subsystem: "matching",
			Name:      "candidates_scored_total",
			Help:      "Total candidates run through the compatibility scorer.",
		}),

		MatchesReturned: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "peerstudy",
			Subsystem: "matching",
			Name:      "matches_returned",
			Help:      "Result-list size after ranking and diversification.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}),

		CacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "peerstudy",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Match-cache hits per cache layer.",
		}, []string{"layer"}),

		CacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "peerstudy",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Match-cache misses per cache layer.",
		}, []string{"layer"}),

		CacheEvictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "peerstudy",
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Entries evicted from the in-memory match cache.",
		}),

		RecommendationsServed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "peerstudy",
			Subsystem: "recommendation",
			Name:      "served_total",
			Help:      "Recommendations served per strategy method.",
		}, []string{"method"}),

		SlotsFound: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "peerstudy",
			Subsystem: "scheduling",
			Name:      "slots_found",
			Help:      "Number of slots returned per scheduling query.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5},
		}),
	}
}

// Cache layer labels.
const (
	LayerMemory = "memory"
	LayerRedis  = "redis"
)

// ObserveMatch records one completed FindMatches query.
func (m *Metrics) ObserveMatch(duration time.Duration, scored, returned int) {
	m.MatchDuration.Observe(duration.Seconds())
	m.CandidatesScored.Add(float64(scored))
	m.MatchesReturned.Observe(float64(returned))
}

// Handler returns an HTTP handler serving the registry in Prometheus format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
