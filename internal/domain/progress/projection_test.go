package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

func history(start time.Time, hours ...float64) []DailyStudyEntry {
	entries := make([]DailyStudyEntry, 0, len(hours))
	for i, h := range hours {
		entries = append(entries, DailyStudyEntry{Date: start.AddDate(0, 0, i), Hours: h})
	}
	return entries
}

func TestProjectCompletion(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	entries := history(start, 2, 3, 1.5, 4, 2.5)
	lastDate := start.AddDate(0, 0, 4)

	projection, err := ProjectCompletion(entries, 100)
	require.NoError(t, err)

	assert.True(t, projection.Achievable)
	assert.True(t, projection.ProjectedDate.After(lastDate), "completion must lie after the last observation")
	assert.GreaterOrEqual(t, projection.Confidence, 0.0)
	assert.LessOrEqual(t, projection.Confidence, 0.95)
	assert.InDelta(t, 13, projection.LoggedHours, 1e-9)
	assert.Greater(t, projection.DailyRate, 0.0)
}

func TestProjectCompletion_InvalidTarget(t *testing.T) {
	_, err := ProjectCompletion(nil, 0)
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = ProjectCompletion(nil, -5)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestProjectCompletion_EmptyHistory(t *testing.T) {
	projection, err := ProjectCompletion(nil, 50)
	require.NoError(t, err)
	assert.False(t, projection.Achievable)
	assert.Equal(t, 0.0, projection.Confidence)
}

func TestProjectCompletion_ZeroRate(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	projection, err := ProjectCompletion(history(start, 0, 0, 0), 50)
	require.NoError(t, err)
	assert.False(t, projection.Achievable)
}

func TestProjectCompletion_TargetAlreadyReached(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	entries := history(start, 5, 5, 5)

	projection, err := ProjectCompletion(entries, 10)
	require.NoError(t, err)
	assert.True(t, projection.Achievable)
	assert.Equal(t, start.AddDate(0, 0, 3), projection.ProjectedDate)
	assert.Equal(t, 0.95, projection.Confidence)
}

func TestProjectCompletion_SteadyPaceIsHighConfidence(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	steady := history(start, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2)

	projection, err := ProjectCompletion(steady, 100)
	require.NoError(t, err)
	require.True(t, projection.Achievable)
	assert.InDelta(t, 2.0, projection.DailyRate, 1e-9)
	// Perfect fit over two weeks of data.
	assert.InDelta(t, 0.95, projection.Confidence, 1e-9)

	// 100 - 28 = 72 hours remaining at 2h/day.
	expected := start.AddDate(0, 0, 13).AddDate(0, 0, 36)
	assert.Equal(t, expected, projection.ProjectedDate)
}

func TestProjectCompletion_UnorderedInputIsSorted(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	entries := []DailyStudyEntry{
		{Date: start.AddDate(0, 0, 2), Hours: 3},
		{Date: start, Hours: 1},
		{Date: start.AddDate(0, 0, 1), Hours: 2},
	}

	projection, err := ProjectCompletion(entries, 50)
	require.NoError(t, err)
	assert.True(t, projection.ProjectedDate.After(start.AddDate(0, 0, 2)))
}
