package query

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/matching"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
	"github.com/peerstudy-hub/peerstudy-matching/internal/infrastructure/persistence/memory"
	"github.com/peerstudy-hub/peerstudy-matching/pkg/metrics"
)

func qID(n int) shared.ParticipantID {
	return shared.ParticipantID(fmt.Sprintf("00000000-0000-4000-8000-%012d", n))
}

func qParticipant(n int, mutate ...func(*participant.Participant)) *participant.Participant {
	p := &participant.Participant{
		ID:          qID(n),
		DisplayName: fmt.Sprintf("participant-%d", n),
		Level:       shared.LevelIntermediate,
		Style:       shared.StyleVisual,
		Institution: "kaznu",
		Timezone:    "Asia/Almaty",
		Region:      "almaty",
		Subjects: []participant.SubjectProficiency{
			{Subject: "math", Level: 2},
			{Subject: "cs-algorithms", Level: 2},
		},
		Availability: []participant.WeeklyWindow{
			{Day: time.Monday, Start: 18 * 60, End: 20 * 60},
			{Day: time.Wednesday, Start: 18 * 60, End: 20 * 60},
		},
		CompletedSessions: 10,
		Active:            true,
	}
	for _, m := range mutate {
		m(p)
	}
	return p
}

func newMatchesHandler(t *testing.T, seed ...*participant.Participant) (*FindMatchesHandler, *memory.ParticipantRepo) {
	t.Helper()
	repo := memory.NewParticipantRepo()
	repo.Seed(seed...)

	scorer, err := matching.NewScorer()
	require.NoError(t, err)

	cache := memory.NewEvictionCache[string, matching.MatchResultList](16, time.Minute)
	return NewFindMatchesHandler(repo, scorer, cache, nil, metrics.New(), nil), repo
}

func TestFindMatchesHandler_ValidationErrors(t *testing.T) {
	handler, _ := newMatchesHandler(t)

	_, err := handler.Handle(context.Background(), FindMatchesQuery{})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = handler.Handle(context.Background(), FindMatchesQuery{RequesterID: qID(1).String(), Limit: -1})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestFindMatchesHandler_RequesterNotFound(t *testing.T) {
	handler, _ := newMatchesHandler(t)

	_, err := handler.Handle(context.Background(), FindMatchesQuery{RequesterID: qID(99).String()})

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestFindMatchesHandler_RanksCompatibleCandidatesFirst(t *testing.T) {
	requester := qParticipant(1)
	twin := qParticipant(2)
	stranger := qParticipant(3, func(p *participant.Participant) {
		p.Level = shared.LevelExpert
		p.Style = shared.StyleReading
		p.Institution = "mit"
		p.Timezone = "America/New_York"
		p.Region = "boston"
		p.Subjects = []participant.SubjectProficiency{{Subject: "biology", Level: 4}}
		p.Availability = []participant.WeeklyWindow{
			{Day: time.Saturday, Start: 9 * 60, End: 11 * 60},
		}
		p.CompletedSessions = 200
	})
	handler, _ := newMatchesHandler(t, requester, twin, stranger)

	result, err := handler.Handle(context.Background(), FindMatchesQuery{RequesterID: requester.ID.String()})

	require.NoError(t, err)
	require.Len(t, result.Matches, 2)
	assert.Equal(t, twin.ID.String(), result.Matches[0].CandidateID)
	assert.Greater(t, result.Matches[0].Overall, result.Matches[1].Overall)
	assert.Equal(t, 1, result.Matches[0].RankPosition)
	assert.False(t, result.FromCache)
	assert.Equal(t, 2, result.TotalCandidates)
}

func TestFindMatchesHandler_ExcludesRequesterAndPartners(t *testing.T) {
	requester := qParticipant(1, func(p *participant.Participant) {
		p.Partners = []shared.ParticipantID{qID(2)}
	})
	partner := qParticipant(2)
	fresh := qParticipant(3)
	handler, _ := newMatchesHandler(t, requester, partner, fresh)

	result, err := handler.Handle(context.Background(), FindMatchesQuery{RequesterID: requester.ID.String()})

	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, fresh.ID.String(), result.Matches[0].CandidateID)
}

func TestFindMatchesHandler_SecondCallHitsCache(t *testing.T) {
	requester := qParticipant(1)
	candidate := qParticipant(2)
	handler, _ := newMatchesHandler(t, requester, candidate)
	query := FindMatchesQuery{RequesterID: requester.ID.String()}

	first, err := handler.Handle(context.Background(), query)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := handler.Handle(context.Background(), query)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	require.Len(t, second.Matches, 1)
	assert.Equal(t, first.Matches[0].CandidateID, second.Matches[0].CandidateID)
}

func TestFindMatchesHandler_DifferentCriteriaMissCache(t *testing.T) {
	requester := qParticipant(1)
	candidate := qParticipant(2)
	handler, _ := newMatchesHandler(t, requester, candidate)

	first, err := handler.Handle(context.Background(), FindMatchesQuery{RequesterID: requester.ID.String()})
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := handler.Handle(context.Background(), FindMatchesQuery{
		RequesterID: requester.ID.String(),
		Criteria:    matching.Criteria{DesiredSubjects: []shared.SubjectID{"math"}},
	})
	require.NoError(t, err)
	assert.False(t, second.FromCache)
}

func TestFindMatchesHandler_MinScoreFiltersWeakCandidates(t *testing.T) {
	requester := qParticipant(1)
	weak := qParticipant(2, func(p *participant.Participant) {
		p.Level = shared.LevelExpert
		p.Style = shared.StyleReading
		p.Timezone = "America/New_York"
		p.Region = "boston"
		p.Subjects = []participant.SubjectProficiency{{Subject: "biology", Level: 4}}
		p.Availability = []participant.WeeklyWindow{
			{Day: time.Saturday, Start: 9 * 60, End: 10 * 60},
		}
		p.CompletedSessions = 300
	})
	handler, _ := newMatchesHandler(t, requester, weak)

	result, err := handler.Handle(context.Background(), FindMatchesQuery{
		RequesterID: requester.ID.String(),
		Criteria:    matching.Criteria{MinScore: 0.9},
	})

	require.NoError(t, err)
	assert.Empty(t, result.Matches)
}

func TestFindMatchesHandler_RequireExactStyleDropsOthers(t *testing.T) {
	requester := qParticipant(1)
	visual := qParticipant(2)
	auditory := qParticipant(3, func(p *participant.Participant) {
		p.Style = shared.StyleAuditory
	})
	handler, _ := newMatchesHandler(t, requester, visual, auditory)

	result, err := handler.Handle(context.Background(), FindMatchesQuery{
		RequesterID: requester.ID.String(),
		Criteria: matching.Criteria{
			DesiredStyle:      shared.StyleVisual,
			RequireExactStyle: true,
		},
	})

	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, visual.ID.String(), result.Matches[0].CandidateID)
}

func TestFindMatchesHandler_TruncatesToLimitButCachesFullList(t *testing.T) {
	seed := []*participant.Participant{qParticipant(1)}
	for n := 2; n <= 8; n++ {
		seed = append(seed, qParticipant(n))
	}
	handler, _ := newMatchesHandler(t, seed...)

	result, err := handler.Handle(context.Background(), FindMatchesQuery{
		RequesterID: qID(1).String(),
		Limit:       3,
	})

	require.NoError(t, err)
	assert.Len(t, result.Matches, 3)

	// Повторный запрос с большим limit обслуживается из кеша полным списком.
	wider, err := handler.Handle(context.Background(), FindMatchesQuery{
		RequesterID: qID(1).String(),
		Limit:       3,
	})
	require.NoError(t, err)
	assert.True(t, wider.FromCache)
}

func TestFindMatchesHandler_MatchDTOCarriesBreakdownAndReason(t *testing.T) {
	requester := qParticipant(1)
	candidate := qParticipant(2)
	handler, _ := newMatchesHandler(t, requester, candidate)

	result, err := handler.Handle(context.Background(), FindMatchesQuery{RequesterID: requester.ID.String()})

	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	match := result.Matches[0]
	assert.Contains(t, match.Breakdown, "subject")
	assert.Contains(t, match.Breakdown, "time")
	assert.NotEmpty(t, match.Reason)
	assert.NotEmpty(t, match.Quality)
	assert.ElementsMatch(t, []string{"math", "cs-algorithms"}, match.SharedSubjects)
}
