package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
	"github.com/peerstudy-hub/peerstudy-matching/internal/infrastructure/persistence/memory"
)

func TestProjectProgressHandler_ValidationErrors(t *testing.T) {
	handler := NewProjectProgressHandler(memory.NewStudyLogRepo(), nil)

	_, err := handler.Handle(context.Background(), ProjectProgressQuery{TargetHours: 10})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = handler.Handle(context.Background(), ProjectProgressQuery{
		ParticipantID: qID(1).String(),
		TargetHours:   0,
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestProjectProgressHandler_ProjectsFromHistory(t *testing.T) {
	repo := memory.NewStudyLogRepo()
	handler := NewProjectProgressHandler(repo, nil)
	id := qID(1)

	start := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 14; day++ {
		require.NoError(t, repo.LogHours(context.Background(), id, start.AddDate(0, 0, day), 2.0))
	}

	result, err := handler.Handle(context.Background(), ProjectProgressQuery{
		ParticipantID: id.String(),
		TargetHours:   100,
	})

	require.NoError(t, err)
	assert.True(t, result.Achievable)
	assert.InDelta(t, 2.0, result.DailyRate, 1e-9)
	assert.InDelta(t, 28.0, result.LoggedHours, 1e-9)
	assert.Equal(t, 14, result.SampleDays)
	assert.True(t, result.ProjectedDate.After(start.AddDate(0, 0, 13)))
	assert.Greater(t, result.Confidence, 0.9)
}

func TestProjectProgressHandler_EmptyHistoryIsUnachievable(t *testing.T) {
	handler := NewProjectProgressHandler(memory.NewStudyLogRepo(), nil)

	result, err := handler.Handle(context.Background(), ProjectProgressQuery{
		ParticipantID: qID(1).String(),
		TargetHours:   50,
	})

	require.NoError(t, err)
	assert.False(t, result.Achievable)
	assert.Zero(t, result.Confidence)
	assert.Zero(t, result.SampleDays)
}

func TestProjectProgressHandler_HistoryDepthIsBounded(t *testing.T) {
	repo := memory.NewStudyLogRepo()
	handler := NewProjectProgressHandler(repo, nil)
	id := qID(1)

	start := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 40; day++ {
		require.NoError(t, repo.LogHours(context.Background(), id, start.AddDate(0, 0, day), 1.0))
	}

	result, err := handler.Handle(context.Background(), ProjectProgressQuery{
		ParticipantID: id.String(),
		TargetHours:   100,
		HistoryDays:   7,
	})

	require.NoError(t, err)
	assert.Equal(t, 7, result.SampleDays)
	assert.InDelta(t, 7.0, result.LoggedHours, 1e-9)
}
