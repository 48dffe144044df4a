package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymsync/internal/domain"
)

func TestAuditProfiles_Symmetric(t *testing.T) {
	profiles := []domain.Profile{
		{UserID: "ana", PartnerLinkage: domain.PartnerLinkage{PartnerID: "beto", PartnerIDs: []string{"beto"}}},
		{UserID: "beto", PartnerLinkage: domain.PartnerLinkage{PartnerID: "ana", PartnerIDs: []string{"ana"}}},
	}

	assert.Empty(t, domain.AuditProfiles(profiles))
}

func TestAuditProfiles_Asymmetric(t *testing.T) {
	profiles := []domain.Profile{
		{UserID: "ana", PartnerLinkage: domain.PartnerLinkage{PartnerID: "beto"}},
		{UserID: "beto"},
		{UserID: "carla", PartnerLinkage: domain.PartnerLinkage{PartnerIDs: []string{"dario"}}},
	}

	defects := domain.AuditProfiles(profiles)

	require.Len(t, defects, 2)
	assert.Equal(t, domain.DefectAsymmetricPartner, defects[0].Kind)
	assert.Equal(t, "ana", defects[0].UserID)
	assert.Equal(t, "beto", defects[0].Other)
	assert.Equal(t, domain.DefectMissingPartner, defects[1].Kind)
	assert.Equal(t, "carla", defects[1].UserID)
}

func TestAuditProfiles_ScheduleAndRoutine(t *testing.T) {
	short := domain.DefaultSchedule()[:3]
	repeated := domain.DefaultSchedule()
	repeated[6].Day = domain.Monday
	ex := domain.Exercise{Day: domain.Monday, Name: "Remo", Sets: 3, Reps: 10}

	defects := domain.AuditProfiles([]domain.Profile{
		{UserID: "a", Schedule: short},
		{UserID: "b", Schedule: repeated},
		{UserID: "c", Routine: []domain.Exercise{ex, ex}},
		{UserID: "d"},
	})

	require.Len(t, defects, 3)
	assert.Equal(t, domain.DefectScheduleLength, defects[0].Kind)
	assert.Equal(t, domain.DefectScheduleDay, defects[1].Kind)
	assert.Equal(t, domain.DefectDuplicateExercise, defects[2].Kind)
}

func TestSyncError_Wrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := domain.NewSyncError("download", "ana", cause)

	var se *domain.SyncError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "download", se.Op)
	assert.ErrorIs(t, err, cause)
	assert.Same(t, se, domain.NewSyncError("upload", "ana", err))
	assert.NoError(t, domain.NewSyncError("upload", "ana", nil))
}

func TestProfileClone_Deep(t *testing.T) {
	age := 30
	p := domain.Profile{
		UserID:         "ana",
		PersonalData:   domain.PersonalData{Name: "Ana", Age: &age, Attributes: map[string]string{"gym": "centro"}},
		Schedule:       domain.DefaultSchedule(),
		Routine:        []domain.Exercise{{Name: "Remo"}},
		PartnerLinkage: domain.PartnerLinkage{PartnerIDs: []string{"beto"}},
	}

	c := p.Clone()
	*c.PersonalData.Age = 31
	c.PersonalData.Attributes["gym"] = "norte"
	c.Schedule[0].Time = "06:00"
	c.Routine[0].Name = "Dominadas"
	c.PartnerLinkage.PartnerIDs[0] = "x"

	assert.Equal(t, 30, *p.PersonalData.Age)
	assert.Equal(t, "centro", p.PersonalData.Attributes["gym"])
	assert.Equal(t, "18:00", p.Schedule[0].Time)
	assert.Equal(t, "Remo", p.Routine[0].Name)
	assert.Equal(t, "beto", p.PartnerLinkage.PartnerIDs[0])
}
