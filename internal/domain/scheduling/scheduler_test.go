package scheduling

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

func schedID(n int) shared.ParticipantID {
	return shared.ParticipantID(fmt.Sprintf("00000000-0000-4000-8000-%012d", n))
}

func available(n int, windows ...participant.WeeklyWindow) *participant.Participant {
	return &participant.Participant{
		ID:           schedID(n),
		DisplayName:  fmt.Sprintf("participant-%d", n),
		Level:        shared.LevelIntermediate,
		Availability: windows,
		Active:       true,
	}
}

func window(day time.Weekday, startHour, endHour int) participant.WeeklyWindow {
	return participant.WeeklyWindow{
		Day:   day,
		Start: participant.MinuteOfDay(startHour * 60),
		End:   participant.MinuteOfDay(endHour * 60),
	}
}

func TestFindSlots_ContractErrors(t *testing.T) {
	s := NewScheduler()

	_, err := s.FindSlots(nil, 0, 2)
	assert.ErrorIs(t, err, shared.ErrInvalidDuration)

	_, err = s.FindSlots(nil, time.Hour, 0)
	assert.ErrorIs(t, err, shared.ErrInvalidMinParticipants)
}

func TestFindSlots_EmptyAvailability(t *testing.T) {
	s := NewScheduler()

	slots, err := s.FindSlots(nil, time.Hour, 2)
	require.NoError(t, err)
	assert.Empty(t, slots)

	slots, err = s.FindSlots([]*participant.Participant{available(1)}, time.Hour, 1)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestFindSlots_DisjointWindowsYieldNothing(t *testing.T) {
	s := NewScheduler()
	pool := []*participant.Participant{
		available(1, window(time.Monday, 9, 11)),
		available(2, window(time.Friday, 18, 20)),
	}

	slots, err := s.FindSlots(pool, time.Hour, 2)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestFindSlots_AnchorSlotsKeepOriginalBounds(t *testing.T) {
	s := NewScheduler()
	pool := []*participant.Participant{
		available(1, window(time.Monday, 10, 14)),
		available(2, window(time.Monday, 11, 13)),
	}

	slots, err := s.FindSlots(pool, time.Hour, 2)
	require.NoError(t, err)
	require.Len(t, slots, 2)

	// Both anchors qualify; each slot matches one participant's real window.
	for _, slot := range slots {
		assert.Equal(t, 2, slot.ParticipantCount())
		assert.True(t, slot.Includes(schedID(1)))
		assert.True(t, slot.Includes(schedID(2)))
	}
	assert.True(t, slots[0].Start.Before(slots[1].Start))
	assert.Equal(t, 4*time.Hour, slots[0].Duration())
	assert.Equal(t, 2*time.Hour, slots[1].Duration())
}

func TestFindSlots_DiscardsShortAnchors(t *testing.T) {
	s := NewScheduler()
	pool := []*participant.Participant{
		available(1, window(time.Monday, 10, 11)),
		available(2, window(time.Monday, 10, 12)),
	}

	slots, err := s.FindSlots(pool, 90*time.Minute, 2)
	require.NoError(t, err)
	require.Len(t, slots, 1, "the one-hour anchor is too short")
	assert.Equal(t, 2*time.Hour, slots[0].Duration())
}

func TestFindSlots_RanksByParticipantCount(t *testing.T) {
	s := NewScheduler()
	pool := []*participant.Participant{
		available(1, window(time.Monday, 10, 12), window(time.Friday, 10, 12)),
		available(2, window(time.Monday, 10, 12)),
		available(3, window(time.Monday, 10, 12)),
		available(4, window(time.Friday, 10, 12)),
	}

	slots, err := s.FindSlots(pool, time.Hour, 2)
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	assert.Equal(t, 3, slots[0].ParticipantCount(), "Monday slot has three participants")
	for i := 1; i < len(slots); i++ {
		assert.GreaterOrEqual(t, slots[i-1].ParticipantCount(), slots[i].ParticipantCount())
	}
}

func TestFindSlots_CapsAtFiveSlots(t *testing.T) {
	s := NewScheduler()
	pool := make([]*participant.Participant, 0, 8)
	for i := 1; i <= 8; i++ {
		day := time.Weekday((i % 7))
		pool = append(pool,
			available(i, window(day, 9, 12)),
			available(i+100, window(day, 9, 12)),
		)
	}

	slots, err := s.FindSlots(pool, time.Hour, 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(slots), 5)
}

func TestFindSlots_MinParticipantsBelowThreshold(t *testing.T) {
	s := NewScheduler()
	pool := []*participant.Participant{
		available(1, window(time.Monday, 10, 12)),
		available(2, window(time.Monday, 10, 12)),
	}

	slots, err := s.FindSlots(pool, time.Hour, 3)
	require.NoError(t, err)
	assert.Empty(t, slots)
}
