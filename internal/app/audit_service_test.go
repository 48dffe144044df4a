package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymsync/internal/domain"
)

type listerFunc func(ctx context.Context) ([]domain.Profile, error)

func (f listerFunc) ListProfiles(ctx context.Context) ([]domain.Profile, error) { return f(ctx) }

func TestAuditService_ReportsOneSidedLink(t *testing.T) {
	profiles := []domain.Profile{
		{UserID: "ana", PartnerLinkage: domain.PartnerLinkage{PartnerID: "beto", PartnerIDs: []string{"beto"}}},
		{UserID: "beto"},
	}
	svc := NewAuditService(listerFunc(func(ctx context.Context) ([]domain.Profile, error) {
		return profiles, nil
	}))

	defects, err := svc.Audit(context.Background())
	require.NoError(t, err)

	require.Len(t, defects, 1)
	assert.Equal(t, domain.DefectAsymmetricPartner, defects[0].Kind)
	assert.Equal(t, "ana", defects[0].UserID)
	assert.Equal(t, "beto", defects[0].Other)
}

func TestAuditService_CleanData(t *testing.T) {
	svc := NewAuditService(listerFunc(func(ctx context.Context) ([]domain.Profile, error) {
		return []domain.Profile{
			{UserID: "ana", Schedule: domain.DefaultSchedule()},
			{UserID: "beto"},
		}, nil
	}))

	defects, err := svc.Audit(context.Background())
	require.NoError(t, err)
	assert.Empty(t, defects)
}

func TestAuditService_ListError(t *testing.T) {
	boom := errors.New("connection refused")
	svc := NewAuditService(listerFunc(func(ctx context.Context) ([]domain.Profile, error) {
		return nil, boom
	}))

	_, err := svc.Audit(context.Background())
	assert.ErrorIs(t, err, boom)
}
