package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages feature toggles for the matching engine.
// Supports gradual rollout with consistent per-participant bucketing, so an
// experiment sees the same participants on every request.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature

	// Override rules (for testing/debugging)
	overrides map[string]map[string]bool // participantID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Participants are assigned based on hash of their ID
	RolloutPercent int
}

// Predefined feature flag names.
const (
	// === Matching features ===
	FeatureMatchDiversification = "matching.diversification" // Soft caps on institution/level
	FeatureMatchSharedCache     = "matching.shared_cache"    // Second-level Redis cache
	FeatureMatchReputation      = "matching.reputation"      // Reputation factor in scoring

	// === Recommendation features ===
	FeatureRecommendCollaborative = "recommendation.collaborative" // Partner-network filtering
	FeatureRecommendHybrid        = "recommendation.hybrid"        // Blended strategy

	// === Scheduling features ===
	FeatureSchedulingSlots = "scheduling.slots" // Group slot finder

	// === Progress features ===
	FeatureProgressProjection = "progress.projection" // Goal completion projection
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:  make(map[string]*Feature),
		overrides: make(map[string]map[string]bool),
	}
	ff.initializeDefaults()
	ff.loadFromEnvironment()
	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeatureMatchDiversification] = &Feature{
		Name:           FeatureMatchDiversification,
		Description:    "Soft institution/level caps on match results",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureMatchSharedCache] = &Feature{
		Name:           FeatureMatchSharedCache,
		Description:    "Second-level shared match cache",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureMatchReputation] = &Feature{
		Name:           FeatureMatchReputation,
		Description:    "Reputation factor in compatibility scoring",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureRecommendCollaborative] = &Feature{
		Name:           FeatureRecommendCollaborative,
		Description:    "Collaborative filtering over the partner network",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureRecommendHybrid] = &Feature{
		Name:           FeatureRecommendHybrid,
		Description:    "Blended collaborative+content recommendations",
		Enabled:        true,
		RolloutPercent: 50, // Gradual rollout
	}

	ff.features[FeatureSchedulingSlots] = &Feature{
		Name:           FeatureSchedulingSlots,
		Description:    "Group availability slot finder",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureProgressProjection] = &Feature{
		Name:           FeatureProgressProjection,
		Description:    "Study goal completion projection",
		Enabled:        true,
		RolloutPercent: 100,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_MATCHING_SHARED_CACHE=false
// Example: FEATURE_RECOMMENDATION_HYBRID=75 (75% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		val := os.Getenv(envKey)
		if val == "" {
			continue
		}

		// Try parsing as boolean
		if b, err := strconv.ParseBool(val); err == nil {
			feature.Enabled = b
			if b {
				feature.RolloutPercent = 100
			} else {
				feature.RolloutPercent = 0
			}
			continue
		}

		// Try parsing as percentage
		if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
			feature.Enabled = p > 0
			feature.RolloutPercent = p
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "matching.shared_cache" -> "FEATURE_MATCHING_SHARED_CACHE"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given participant.
// An empty participant ID evaluates only the global switch and rollout.
func (ff *FeatureFlags) IsEnabled(featureName, participantID string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check overrides first
	if participantID != "" {
		if participantOverrides, ok := ff.overrides[participantID]; ok {
			if enabled, ok := participantOverrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}
	if !feature.Enabled {
		return false
	}

	if feature.RolloutPercent < 100 && participantID != "" {
		return ff.isInRollout(participantID, featureName, feature.RolloutPercent)
	}
	return feature.RolloutPercent > 0
}

// isInRollout determines if a participant is in the rollout percentage.
// Uses consistent hashing so participants stay in their bucket.
func (ff *FeatureFlags) isInRollout(participantID, featureName string, percent int) bool {
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(participantID))
	bucket := int(h.Sum32() % 100)
	return bucket < percent
}

// SetOverride sets a feature override for a specific participant.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetOverride(participantID, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.overrides[participantID]; !ok {
		ff.overrides[participantID] = make(map[string]bool)
	}
	ff.overrides[participantID][featureName] = enabled
}

// ClearOverrides removes all overrides for a participant.
func (ff *FeatureFlags) ClearOverrides(participantID string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.overrides, participantID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}
	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0
	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
