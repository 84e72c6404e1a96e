package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/recommendation"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
	"github.com/peerstudy-hub/peerstudy-matching/internal/infrastructure/persistence/memory"
	"github.com/peerstudy-hub/peerstudy-matching/pkg/metrics"
)

func newRecommendHandler(seed ...*participant.Participant) *RecommendPartnersHandler {
	repo := memory.NewParticipantRepo()
	repo.Seed(seed...)
	return NewRecommendPartnersHandler(repo, metrics.New(), nil)
}

func TestRecommendPartnersHandler_ValidationErrors(t *testing.T) {
	handler := newRecommendHandler()

	_, err := handler.Handle(context.Background(), RecommendPartnersQuery{})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = handler.Handle(context.Background(), RecommendPartnersQuery{
		RequesterID: qID(1).String(),
		Method:      "oracle",
	})
	assert.ErrorIs(t, err, shared.ErrUnknownStrategy)
}

func TestRecommendPartnersHandler_DefaultsToHybrid(t *testing.T) {
	requester := qParticipant(1)
	twin := qParticipant(2)
	handler := newRecommendHandler(requester, twin)

	result, err := handler.Handle(context.Background(), RecommendPartnersQuery{
		RequesterID: requester.ID.String(),
	})

	require.NoError(t, err)
	assert.Equal(t, string(recommendation.MethodHybrid), result.Method)
	require.NotEmpty(t, result.Recommendations)
	assert.Equal(t, twin.ID.String(), result.Recommendations[0].CandidateID)
	assert.Equal(t, twin.DisplayName, result.Recommendations[0].DisplayName)
}

func TestRecommendPartnersHandler_CollaborativeUsesPartnerNetwork(t *testing.T) {
	varied := func(p *participant.Participant) {
		p.Subjects = []participant.SubjectProficiency{
			{Subject: "math", Level: 1},
			{Subject: "cs-algorithms", Level: 3},
		}
	}
	requester := qParticipant(1, varied, func(p *participant.Participant) {
		p.Partners = []shared.ParticipantID{qID(2)}
	})
	ownPartner := qParticipant(2)
	neighbor := qParticipant(3, varied, func(p *participant.Participant) {
		p.Partners = []shared.ParticipantID{qID(4)}
	})
	candidate := qParticipant(4)
	handler := newRecommendHandler(requester, ownPartner, neighbor, candidate)

	result, err := handler.Handle(context.Background(), RecommendPartnersQuery{
		RequesterID: requester.ID.String(),
		Method:      string(recommendation.MethodCollaborative),
	})

	require.NoError(t, err)
	require.NotEmpty(t, result.Recommendations)
	assert.Equal(t, candidate.ID.String(), result.Recommendations[0].CandidateID)

	// Собственные напарники не рекомендуются.
	for _, rec := range result.Recommendations {
		assert.NotEqual(t, ownPartner.ID.String(), rec.CandidateID)
	}
}

func TestRecommendPartnersHandler_ContentRanksTwinFirst(t *testing.T) {
	requester := qParticipant(1)
	twin := qParticipant(2)
	distant := qParticipant(3, func(p *participant.Participant) {
		p.Level = shared.LevelExpert
		p.Subjects = []participant.SubjectProficiency{{Subject: "biology", Level: 4}}
	})
	handler := newRecommendHandler(requester, twin, distant)

	result, err := handler.Handle(context.Background(), RecommendPartnersQuery{
		RequesterID: requester.ID.String(),
		Method:      string(recommendation.MethodContent),
	})

	require.NoError(t, err)
	require.NotEmpty(t, result.Recommendations)
	assert.Equal(t, twin.ID.String(), result.Recommendations[0].CandidateID)
	assert.Equal(t, string(recommendation.MethodContent), result.Recommendations[0].Method)
}

func TestRecommendPartnersHandler_RequesterNotFound(t *testing.T) {
	handler := newRecommendHandler()

	_, err := handler.Handle(context.Background(), RecommendPartnersQuery{RequesterID: qID(9).String()})

	assert.ErrorIs(t, err, shared.ErrNotFound)
}
