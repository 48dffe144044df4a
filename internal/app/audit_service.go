package app

import (
	"context"
	"fmt"
	"log"

	"gymsync/internal/domain"
	"gymsync/internal/observability"
)

// AuditService checks stored profiles for data-integrity defects such as
// one-sided partner links. It reports what it finds and changes nothing.
type AuditService struct {
	profiles domain.ProfileLister
}

// NewAuditService creates an AuditService reading from profiles.
func NewAuditService(profiles domain.ProfileLister) *AuditService {
	return &AuditService{profiles: profiles}
}

// Audit lists all stored profiles and returns their defects.
func (s *AuditService) Audit(ctx context.Context) ([]domain.ValidationDefect, error) {
	profiles, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit: list profiles: %w", err)
	}

	defects := domain.AuditProfiles(profiles)
	counts := make(map[string]int)
	for _, d := range defects {
		counts[string(d.Kind)]++
		log.Printf("audit defect: %v", d)
	}
	observability.RecordAudit(counts)
	log.Printf("audit checked %d profiles, %d defects", len(profiles), len(defects))
	return defects, nil
}
