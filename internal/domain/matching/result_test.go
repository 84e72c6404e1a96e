package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

func resultWith(n int, overall, subject, timeOverlap float64, mutate ...func(*participant.Participant)) *MatchResult {
	return &MatchResult{
		Candidate: testParticipant(n, mutate...),
		Score: CompatibilityScore{
			Overall:      overall,
			SubjectMatch: subject,
			TimeOverlap:  timeOverlap,
		},
	}
}

func TestRank_DescendingByOverall(t *testing.T) {
	list := MatchResultList{
		resultWith(1, 0.4, 0, 0),
		resultWith(2, 0.9, 0, 0),
		resultWith(3, 0.7, 0, 0),
	}
	list.Rank()

	assert.Equal(t, testID(2), list[0].Candidate.ID)
	assert.Equal(t, testID(3), list[1].Candidate.ID)
	assert.Equal(t, testID(1), list[2].Candidate.ID)
	for i, r := range list {
		assert.Equal(t, i+1, r.RankPosition)
	}
}

func TestRank_TieWindowUsesSecondaryKeys(t *testing.T) {
	// Overall difference inside the 0.1 window: the higher subject match wins
	// even against a slightly higher overall score.
	list := MatchResultList{
		resultWith(1, 0.80, 0.3, 0.9),
		resultWith(2, 0.75, 0.9, 0.1),
	}
	list.Rank()
	assert.Equal(t, testID(2), list[0].Candidate.ID)

	// Equal subject match falls through to time overlap.
	list = MatchResultList{
		resultWith(1, 0.80, 0.5, 0.2),
		resultWith(2, 0.78, 0.5, 0.8),
	}
	list.Rank()
	assert.Equal(t, testID(2), list[0].Candidate.ID)
}

func TestRank_IsStableOnFullTies(t *testing.T) {
	list := MatchResultList{
		resultWith(1, 0.6, 0.5, 0.5),
		resultWith(2, 0.6, 0.5, 0.5),
		resultWith(3, 0.6, 0.5, 0.5),
	}
	list.Rank()

	assert.Equal(t, testID(1), list[0].Candidate.ID)
	assert.Equal(t, testID(2), list[1].Candidate.ID)
	assert.Equal(t, testID(3), list[2].Candidate.ID)
}

func TestFilterByMinScore(t *testing.T) {
	list := MatchResultList{
		resultWith(1, 0.9, 0, 0),
		resultWith(2, 0.5, 0, 0),
		resultWith(3, 0.2, 0, 0),
	}

	filtered := list.FilterByMinScore(0.5)
	require.Len(t, filtered, 2)
	assert.Equal(t, testID(1), filtered[0].Candidate.ID)
	assert.Equal(t, testID(2), filtered[1].Candidate.ID)

	assert.Len(t, list.FilterByMinScore(0), 3, "zero threshold keeps everything")
}

func TestDiversify_CapsInstitutionAndLevel(t *testing.T) {
	sameInstitution := func(p *participant.Participant) { p.Institution = "kbtu" }
	list := MatchResultList{}
	// Five candidates from one institution with alternating levels.
	levels := []shared.AcademicLevel{
		shared.LevelBeginner, shared.LevelIntermediate,
		shared.LevelBeginner, shared.LevelIntermediate,
		shared.LevelAdvanced,
	}
	for i, level := range levels {
		lvl := level
		list = append(list, resultWith(i+1, 0.9-float64(i)*0.01, 0, 0,
			sameInstitution,
			func(p *participant.Participant) { p.Level = lvl },
		))
	}
	list.Rank()

	diversified := list.Diversify(10)
	// Institution cap 3 admits candidates 1, 2, 3; level cap 2 on beginner and
	// intermediate holds; backfill tops up to the limit afterwards.
	require.GreaterOrEqual(t, len(diversified), 3)
	admittedInstitutions := 0
	for _, r := range diversified[:3] {
		if r.Candidate.Institution == "kbtu" {
			admittedInstitutions++
		}
	}
	assert.Equal(t, 3, admittedInstitutions)
	for i, r := range diversified {
		assert.Equal(t, i+1, r.RankPosition)
	}
}

func TestDiversify_BackfillsToLimit(t *testing.T) {
	list := MatchResultList{}
	// Six beginners from six institutions: level cap 2 skips four of them.
	for i := 1; i <= 6; i++ {
		n := i
		list = append(list, resultWith(i, 0.9-float64(i)*0.01, 0, 0,
			func(p *participant.Participant) {
				p.Level = shared.LevelBeginner
				p.Institution = string(rune('a' + n))
			},
		))
	}
	list.Rank()

	diversified := list.Diversify(5)
	require.Len(t, diversified, 5)
	// The first two pass the cap, the rest are backfilled best-first.
	assert.Equal(t, testID(1), diversified[0].Candidate.ID)
	assert.Equal(t, testID(2), diversified[1].Candidate.ID)
	assert.Equal(t, testID(3), diversified[2].Candidate.ID)
}

func TestDiversify_EmptyAndZeroLimit(t *testing.T) {
	assert.Empty(t, MatchResultList{}.Diversify(5))
	assert.Empty(t, MatchResultList{resultWith(1, 0.9, 0, 0)}.Diversify(0))
}

func TestBuildReason(t *testing.T) {
	r := &MatchResult{
		Score:          CompatibilityScore{SubjectMatch: 1.0, LevelCompatibility: 1.0},
		SharedSubjects: []shared.SubjectID{"math", "cs-algorithms"},
	}
	assert.Equal(t, "те же предметы и тот же уровень", r.BuildReason())

	r = &MatchResult{
		Score:          CompatibilityScore{SubjectMatch: 0.5, TimeOverlap: 0.7},
		SharedSubjects: []shared.SubjectID{"math"},
	}
	assert.Contains(t, r.BuildReason(), "общих предметов: 1")

	r = &MatchResult{Score: CompatibilityScore{LevelCompatibility: 0.8}}
	assert.Equal(t, "близкий академический уровень", r.BuildReason())
}
