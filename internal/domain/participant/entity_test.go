package participant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

func validParticipant() *Participant {
	return &Participant{
		ID:          "11111111-2222-4333-8444-555555555555",
		DisplayName: "Aruzhan",
		Level:       shared.LevelIntermediate,
		Timezone:    "Asia/Almaty",
		Region:      "almaty",
		Subjects: []SubjectProficiency{
			{Subject: "math", Level: 2},
		},
		Availability: []WeeklyWindow{
			{Day: time.Monday, Start: 18 * 60, End: 20 * 60},
		},
		Active: true,
	}
}

func TestParticipant_Validate(t *testing.T) {
	require.NoError(t, validParticipant().Validate())

	p := validParticipant()
	p.ID = "not-a-uuid"
	assert.ErrorIs(t, p.Validate(), shared.ErrInvalidID)

	p = validParticipant()
	p.Level = "grandmaster"
	assert.ErrorIs(t, p.Validate(), shared.ErrValueOutOfRange)

	p = validParticipant()
	p.Subjects = []SubjectProficiency{{Subject: "math", Level: 9}}
	assert.ErrorIs(t, p.Validate(), shared.ErrInvalidProficiency)

	p = validParticipant()
	p.Availability = []WeeklyWindow{{Day: time.Monday, Start: 600, End: 600}}
	assert.ErrorIs(t, p.Validate(), shared.ErrInvalidAvailability)
}

func TestParticipant_IsProfileComplete(t *testing.T) {
	assert.True(t, validParticipant().IsProfileComplete())

	p := validParticipant()
	p.DisplayName = ""
	assert.False(t, p.IsProfileComplete())

	p = validParticipant()
	p.Subjects = nil
	assert.False(t, p.IsProfileComplete())
}

func TestParticipant_SharedSubjects(t *testing.T) {
	a := validParticipant()
	a.Subjects = []SubjectProficiency{
		{Subject: "math", Level: 2},
		{Subject: "physics", Level: 3},
	}
	b := validParticipant()
	b.Subjects = []SubjectProficiency{
		{Subject: "physics", Level: 1},
		{Subject: "chemistry", Level: 2},
	}

	common := a.SharedSubjects(b)
	require.Len(t, common, 1)
	assert.Equal(t, shared.SubjectID("physics"), common[0])

	assert.Nil(t, a.SharedSubjects(nil))
}

func TestParticipant_Partners(t *testing.T) {
	p := validParticipant()
	p.Partners = []shared.ParticipantID{"aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee"}

	assert.True(t, p.HasPartner("aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee"))
	assert.False(t, p.HasPartner(p.ID))
	assert.Len(t, p.PartnerSet(), 1)
}

func TestParticipant_LocationTag(t *testing.T) {
	p := validParticipant()
	assert.Equal(t, "Asia/Almaty/almaty", p.LocationTag())
}
