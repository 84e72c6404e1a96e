package social

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

func socialID(n int) shared.ParticipantID {
	return shared.ParticipantID(fmt.Sprintf("00000000-0000-4000-8000-%012d", n))
}

func withPartners(n int, partners ...int) *participant.Participant {
	ids := make([]shared.ParticipantID, 0, len(partners))
	for _, p := range partners {
		ids = append(ids, socialID(p))
	}
	return &participant.Participant{ID: socialID(n), Partners: ids}
}

func TestBuildPartnerGraph_SymmetricEdges(t *testing.T) {
	// Partnership recorded only on one side must still connect both.
	g := BuildPartnerGraph([]*participant.Participant{
		withPartners(1, 2),
		withPartners(2),
		withPartners(3, 1),
	})

	assert.True(t, g.AreConnected(socialID(1), socialID(2)))
	assert.True(t, g.AreConnected(socialID(2), socialID(1)))
	assert.True(t, g.AreConnected(socialID(1), socialID(3)))
	assert.False(t, g.AreConnected(socialID(2), socialID(3)))

	assert.Equal(t, 2, g.Degree(socialID(1)))
	assert.Equal(t, 1, g.Degree(socialID(2)))
	assert.Equal(t, 0, g.Degree(socialID(99)))
}

func TestPartnerGraph_IgnoresSelfLoops(t *testing.T) {
	g := BuildPartnerGraph([]*participant.Participant{withPartners(1, 1)})
	assert.Equal(t, 0, g.Degree(socialID(1)))
}

func TestPartnerGraph_MutualPartners(t *testing.T) {
	g := BuildPartnerGraph([]*participant.Participant{
		withPartners(1, 3, 4),
		withPartners(2, 3, 5),
	})

	mutual := g.MutualPartners(socialID(1), socialID(2))
	assert.Equal(t, []shared.ParticipantID{socialID(3)}, mutual)
}

func TestPartnerGraph_SecondDegree(t *testing.T) {
	// 1-2, 2-3, 2-4, 1-4: second degree of 1 is {3} (4 is already direct).
	g := BuildPartnerGraph([]*participant.Participant{
		withPartners(1, 2, 4),
		withPartners(2, 3, 4),
	})

	second := g.SecondDegree(socialID(1))
	assert.Equal(t, []shared.ParticipantID{socialID(3)}, second)
}
