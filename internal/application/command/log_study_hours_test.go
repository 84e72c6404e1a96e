package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
	"github.com/peerstudy-hub/peerstudy-matching/internal/infrastructure/persistence/memory"
)

func TestLogStudyHoursHandler_ValidationErrors(t *testing.T) {
	handler := NewLogStudyHoursHandler(memory.NewStudyLogRepo(), nil)
	date := time.Date(2026, time.August, 20, 14, 30, 0, 0, time.UTC)

	err := handler.Handle(context.Background(), LogStudyHoursCommand{Date: date, Hours: 2})
	assert.ErrorIs(t, err, shared.ErrValidation)

	err = handler.Handle(context.Background(), LogStudyHoursCommand{
		ParticipantID: cmdID(1).String(),
		Date:          date,
		Hours:         25,
	})
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)

	err = handler.Handle(context.Background(), LogStudyHoursCommand{
		ParticipantID: cmdID(1).String(),
		Hours:         2,
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestLogStudyHoursHandler_TruncatesToUTCDay(t *testing.T) {
	repo := memory.NewStudyLogRepo()
	handler := NewLogStudyHoursHandler(repo, nil)
	id := cmdID(1)

	err := handler.Handle(context.Background(), LogStudyHoursCommand{
		ParticipantID: id.String(),
		Date:          time.Date(2026, time.August, 20, 23, 45, 0, 0, time.UTC),
		Hours:         2.5,
	})
	require.NoError(t, err)

	entries, err := repo.History(context.Background(), id, 30)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC), entries[0].Date)
	assert.Equal(t, 2.5, entries[0].Hours)
}

func TestLogStudyHoursHandler_SameDayOverwrites(t *testing.T) {
	repo := memory.NewStudyLogRepo()
	handler := NewLogStudyHoursHandler(repo, nil)
	id := cmdID(1)
	day := time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC)

	require.NoError(t, handler.Handle(context.Background(), LogStudyHoursCommand{
		ParticipantID: id.String(), Date: day, Hours: 1,
	}))
	require.NoError(t, handler.Handle(context.Background(), LogStudyHoursCommand{
		ParticipantID: id.String(), Date: day.Add(6 * time.Hour), Hours: 3,
	}))

	entries, err := repo.History(context.Background(), id, 30)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 3.0, entries[0].Hours)
}
