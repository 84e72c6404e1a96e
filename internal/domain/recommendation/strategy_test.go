package recommendation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

func recID(n int) shared.ParticipantID {
	return shared.ParticipantID(fmt.Sprintf("00000000-0000-4000-8000-%012d", n))
}

func student(n int, subjects map[shared.SubjectID]shared.Proficiency, partners ...int) *participant.Participant {
	p := &participant.Participant{
		ID:          recID(n),
		DisplayName: fmt.Sprintf("student-%d", n),
		Level:       shared.LevelIntermediate,
		Institution: "kbtu",
		Active:      true,
	}
	for subject, level := range subjects {
		p.Subjects = append(p.Subjects, participant.SubjectProficiency{Subject: subject, Level: level})
	}
	for _, partner := range partners {
		p.Partners = append(p.Partners, recID(partner))
	}
	return p
}

func TestPearsonSimilarity(t *testing.T) {
	t.Run("fewer than two shared subjects gives zero", func(t *testing.T) {
		a := student(1, map[shared.SubjectID]shared.Proficiency{"math": 3})
		b := student(2, map[shared.SubjectID]shared.Proficiency{"math": 3, "physics": 2})
		assert.Equal(t, 0.0, PearsonSimilarity(a, b))
	})

	t.Run("perfectly correlated profiles", func(t *testing.T) {
		a := student(1, map[shared.SubjectID]shared.Proficiency{"math": 1, "physics": 2, "chemistry": 3})
		b := student(2, map[shared.SubjectID]shared.Proficiency{"math": 2, "physics": 3, "chemistry": 4})
		assert.InDelta(t, 1.0, PearsonSimilarity(a, b), 1e-9)
	})

	t.Run("anti-correlated profiles", func(t *testing.T) {
		a := student(1, map[shared.SubjectID]shared.Proficiency{"math": 1, "physics": 4})
		b := student(2, map[shared.SubjectID]shared.Proficiency{"math": 4, "physics": 1})
		assert.InDelta(t, -1.0, PearsonSimilarity(a, b), 1e-9)
	})

	t.Run("zero variance gives zero", func(t *testing.T) {
		a := student(1, map[shared.SubjectID]shared.Proficiency{"math": 2, "physics": 2})
		b := student(2, map[shared.SubjectID]shared.Proficiency{"math": 1, "physics": 4})
		assert.Equal(t, 0.0, PearsonSimilarity(a, b))
	})
}

func TestCollaborativeStrategy(t *testing.T) {
	strategy := NewCollaborativeStrategy()
	assert.Equal(t, MethodCollaborative, strategy.Method())

	profile := map[shared.SubjectID]shared.Proficiency{"math": 2, "physics": 3, "chemistry": 1}
	requester := student(1, profile)
	// Neighbors 2 and 3 share the requester's profile and both study with 10.
	// Participant 4 is dissimilar and studies with 11.
	pool := []*participant.Participant{
		student(2, profile, 10),
		student(3, profile, 10),
		student(4, map[shared.SubjectID]shared.Proficiency{"math": 1, "physics": 1}, 11),
		student(10, map[shared.SubjectID]shared.Proficiency{"math": 3, "physics": 2}),
	}

	recs, err := strategy.Recommend(requester, pool, 5)
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	assert.Equal(t, recID(10), recs[0].CandidateID)
	assert.Equal(t, MethodCollaborative, recs[0].Method)
	assert.Greater(t, recs[0].Score, 0.0)
	for _, r := range recs {
		assert.NotEqual(t, recID(11), r.CandidateID, "partner of a dissimilar participant must not surface")
	}
}

func TestCollaborativeStrategy_ExcludesOwnPartners(t *testing.T) {
	profile := map[shared.SubjectID]shared.Proficiency{"math": 2, "physics": 3}
	requester := student(1, profile, 10)
	pool := []*participant.Participant{
		student(2, profile, 10),
		student(10, profile),
	}

	recs, err := NewCollaborativeStrategy().Recommend(requester, pool, 5)
	require.NoError(t, err)
	for _, r := range recs {
		assert.NotEqual(t, recID(10), r.CandidateID)
	}
}

func TestCollaborativeStrategy_ContractErrors(t *testing.T) {
	strategy := NewCollaborativeStrategy()

	_, err := strategy.Recommend(nil, nil, 5)
	assert.ErrorIs(t, err, shared.ErrNilRequester)

	_, err = strategy.Recommend(student(1, nil), nil, 0)
	assert.ErrorIs(t, err, shared.ErrInvalidLimit)
}

func TestContentStrategy(t *testing.T) {
	strategy := NewContentStrategy()
	assert.Equal(t, MethodContent, strategy.Method())

	requester := student(1, map[shared.SubjectID]shared.Proficiency{"math": 3, "physics": 2})
	twin := student(2, map[shared.SubjectID]shared.Proficiency{"math": 3, "physics": 2})
	stranger := student(3, map[shared.SubjectID]shared.Proficiency{"history": 1})
	stranger.Institution = "nu"
	stranger.Level = shared.LevelExpert

	recs, err := strategy.Recommend(requester, []*participant.Participant{twin, stranger, requester}, 5)
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	assert.Equal(t, recID(2), recs[0].CandidateID, "identical profile ranks first")
	assert.InDelta(t, 1.0, recs[0].Score, 1e-9)
	for _, r := range recs {
		assert.NotEqual(t, requester.ID, r.CandidateID, "requester never recommends itself")
	}
}

func TestFeatureVector(t *testing.T) {
	p := student(1, map[shared.SubjectID]shared.Proficiency{"math": 3})
	p.Style = shared.StyleVisual
	p.Major = "cs"
	p.Year = 2

	vector := FeatureVector(p)
	assert.Equal(t, 3.0, vector["subject:math"])
	assert.Equal(t, 1.0, vector["level:intermediate"])
	assert.Equal(t, 1.0, vector["style:visual"])
	assert.Equal(t, 1.0, vector["institution:kbtu"])
	assert.Equal(t, 1.0, vector["major:cs"])
	assert.Equal(t, 1.0, vector["year:2"])
}

func TestHybridStrategy_BlendsBothSources(t *testing.T) {
	strategy := NewDefaultHybridStrategy()
	assert.Equal(t, MethodHybrid, strategy.Method())

	profile := map[shared.SubjectID]shared.Proficiency{"math": 2, "physics": 3, "chemistry": 1}
	requester := student(1, profile)
	pool := []*participant.Participant{
		student(2, profile, 10),
		student(3, profile, 10),
		// 10 shares the profile, so it surfaces from both strategies.
		student(10, profile),
	}

	recs, err := strategy.Recommend(requester, pool, 5)
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	var ten *Recommendation
	for i := range recs {
		if recs[i].CandidateID == recID(10) {
			ten = &recs[i]
		}
	}
	require.NotNil(t, ten)
	assert.Equal(t, MethodHybrid, ten.Method, "candidate present in both lists is hybrid")
	assert.Greater(t, ten.Score, 0.0)
}

func TestHybridStrategy_SingleSourceKeepsMethod(t *testing.T) {
	strategy := NewDefaultHybridStrategy()

	requester := student(1, map[shared.SubjectID]shared.Proficiency{"math": 3, "physics": 2})
	// Twin has no partners and nobody is similar enough for collaborative
	// scores, so the twin only surfaces from the content side.
	twin := student(2, map[shared.SubjectID]shared.Proficiency{"math": 3, "physics": 2})

	recs, err := strategy.Recommend(requester, []*participant.Participant{twin}, 5)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, MethodContent, recs[0].Method)
}
