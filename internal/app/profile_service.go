package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"gymsync/internal/domain"
	"gymsync/internal/observability"
)

var (
	// ErrInvalidPersonalData indicates a rejected personal data edit.
	ErrInvalidPersonalData = errors.New("invalid personal data")
	// ErrInvalidSchedule indicates a schedule that is not exactly one entry per weekday.
	ErrInvalidSchedule = errors.New("invalid schedule")
	// ErrInvalidExercise indicates a rejected routine entry.
	ErrInvalidExercise = errors.New("invalid exercise")
	// ErrExerciseNotFound indicates an out-of-range routine index.
	ErrExerciseNotFound = errors.New("exercise not found")
	// ErrPartnerNotFound indicates the partner has no stored profile.
	ErrPartnerNotFound = errors.New("partner not found")
	// ErrInvalidPartner indicates an empty or self partner identifier.
	ErrInvalidPartner = errors.New("invalid partner")
	// ErrNoPendingRequest indicates there is no link request to accept.
	ErrNoPendingRequest = errors.New("no pending link request")
	// ErrNoPartner indicates there is no partner to unlink.
	ErrNoPartner = errors.New("no linked partner")
)

// ProfileService implements the user edit operations on the active profile.
// Every operation names the caller; it fails with ErrNoActiveUser unless the
// caller is the user the store is bootstrapped for. Every edit is applied to
// the store first and then uploaded.
type ProfileService struct {
	store    *ProfileStore
	gateway  domain.SyncGateway
	reporter ErrorReporter
}

// NewProfileService creates a ProfileService over store and gateway.
func NewProfileService(store *ProfileStore, gateway domain.SyncGateway, reporter ErrorReporter) *ProfileService {
	return &ProfileService{store: store, gateway: gateway, reporter: reporter}
}

// Profile returns userID's profile with the schedule defaulted and the
// routine normalized.
func (s *ProfileService) Profile(userID string) (domain.Profile, error) {
	p, err := s.store.current(userID)
	if err != nil {
		return domain.Profile{}, err
	}
	p.Schedule = domain.EnsureScheduleDays(p.Schedule)
	p.Routine = domain.NormalizeRoutine(p.Routine)
	return p, nil
}

// Schedule returns the active schedule, defaulted when empty.
func (s *ProfileService) Schedule(userID string) ([]domain.ScheduleDay, error) {
	p, err := s.Profile(userID)
	return p.Schedule, err
}

// Routine returns the normalized routine.
func (s *ProfileService) Routine(userID string) ([]domain.Exercise, error) {
	p, err := s.Profile(userID)
	return p.Routine, err
}

// RoutineSummary returns exercise counts per day.
func (s *ProfileService) RoutineSummary(userID string) (map[string]int, error) {
	p, err := s.Profile(userID)
	if err != nil {
		return nil, err
	}
	return domain.ExercisesPerDay(p.Routine), nil
}

// PersonalDataInput is an edit of the personal data. Weight is given in
// WeightUnit ("kg" or "lb") and stored in kilograms.
type PersonalDataInput struct {
	Name       string            `json:"name"`
	Age        *int              `json:"age,omitempty"`
	HeightCM   *float64          `json:"heightCm,omitempty"`
	Weight     *float64          `json:"weight,omitempty"`
	WeightUnit string            `json:"weightUnit,omitempty"`
	Goal       string            `json:"goal,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// UpdatePersonalData validates in and replaces the personal data.
func (s *ProfileService) UpdatePersonalData(ctx context.Context, userID string, in PersonalDataInput) (domain.PersonalData, error) {
	data, err := personalDataFrom(in)
	if err != nil {
		return domain.PersonalData{}, err
	}
	p, err := s.commit(ctx, userID, "update_personal_data", false, func(p *domain.Profile) error {
		p.PersonalData = data
		return nil
	})
	return p.PersonalData, err
}

func personalDataFrom(in PersonalDataInput) (domain.PersonalData, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.PersonalData{}, fmt.Errorf("%w: name is required", ErrInvalidPersonalData)
	}
	if in.Age != nil && (*in.Age <= 0 || *in.Age > 130) {
		return domain.PersonalData{}, fmt.Errorf("%w: age must be within (0, 130]", ErrInvalidPersonalData)
	}
	if in.HeightCM != nil && (*in.HeightCM <= 0 || *in.HeightCM > 300) {
		return domain.PersonalData{}, fmt.Errorf("%w: heightCm must be within (0, 300]", ErrInvalidPersonalData)
	}
	data := domain.PersonalData{
		Name:       name,
		Age:        in.Age,
		HeightCM:   in.HeightCM,
		Goal:       strings.TrimSpace(in.Goal),
		Attributes: in.Attributes,
	}
	if in.Weight != nil {
		if *in.Weight <= 0 {
			return domain.PersonalData{}, fmt.Errorf("%w: weight must be > 0", ErrInvalidPersonalData)
		}
		kg, err := domain.WeightToKG(*in.Weight, in.WeightUnit)
		if err != nil {
			return domain.PersonalData{}, fmt.Errorf("%w: %v", ErrInvalidPersonalData, err)
		}
		data.WeightKG = &kg
	}
	return data.Clone(), nil
}

// UpdateSchedule replaces the schedule. days must contain each weekday exactly
// once; the stored schedule is in Monday..Sunday order and rest days carry the
// rest label.
func (s *ProfileService) UpdateSchedule(ctx context.Context, userID string, days []domain.ScheduleDay) ([]domain.ScheduleDay, error) {
	schedule, err := validateSchedule(days)
	if err != nil {
		return nil, err
	}
	p, err := s.commit(ctx, userID, "update_schedule", false, func(p *domain.Profile) error {
		p.Schedule = schedule
		return nil
	})
	return p.Schedule, err
}

func validateSchedule(days []domain.ScheduleDay) ([]domain.ScheduleDay, error) {
	if len(days) != len(domain.Weekdays) {
		return nil, fmt.Errorf("%w: want 7 days, got %d", ErrInvalidSchedule, len(days))
	}
	out := make([]domain.ScheduleDay, len(days))
	copy(out, days)
	seen := make(map[string]bool, len(out))
	for i := range out {
		d := &out[i]
		if !domain.IsWeekday(d.Day) {
			return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidSchedule, d.Day)
		}
		if seen[d.Day] {
			return nil, fmt.Errorf("%w: weekday %q repeated", ErrInvalidSchedule, d.Day)
		}
		seen[d.Day] = true
		if _, err := time.Parse("15:04", d.Time); err != nil {
			return nil, fmt.Errorf("%w: %s time %q is not HH:MM", ErrInvalidSchedule, d.Day, d.Time)
		}
		d.MuscleGroup = strings.TrimSpace(d.MuscleGroup)
		if !d.TrainsToday {
			d.MuscleGroup = domain.RestDay
		} else if d.MuscleGroup == "" {
			return nil, fmt.Errorf("%w: %s needs a muscle group", ErrInvalidSchedule, d.Day)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return domain.WeekdayIndex(out[i].Day) < domain.WeekdayIndex(out[j].Day)
	})
	return out, nil
}

// SetRoutine replaces the routine with the normalized exercises.
func (s *ProfileService) SetRoutine(ctx context.Context, userID string, exercises []domain.Exercise) ([]domain.Exercise, error) {
	for i, e := range exercises {
		if err := validateExercise(e); err != nil {
			return nil, fmt.Errorf("exercise %d: %w", i, err)
		}
	}
	routine := domain.NormalizeRoutine(exercises)
	p, err := s.commit(ctx, userID, "set_routine", false, func(p *domain.Profile) error {
		p.Routine = routine
		return nil
	})
	return p.Routine, err
}

// AddExercise appends e unless an identical exercise already exists.
func (s *ProfileService) AddExercise(ctx context.Context, userID string, e domain.Exercise) ([]domain.Exercise, error) {
	if err := validateExercise(e); err != nil {
		return nil, err
	}
	p, err := s.commit(ctx, userID, "add_exercise", false, func(p *domain.Profile) error {
		p.Routine = domain.NormalizeRoutine(append(slices.Clone(p.Routine), e))
		return nil
	})
	return p.Routine, err
}

// RemoveExercise deletes the exercise at index of the normalized routine.
func (s *ProfileService) RemoveExercise(ctx context.Context, userID string, index int) ([]domain.Exercise, error) {
	p, err := s.commit(ctx, userID, "remove_exercise", false, func(p *domain.Profile) error {
		routine := domain.NormalizeRoutine(p.Routine)
		if index < 0 || index >= len(routine) {
			return ErrExerciseNotFound
		}
		p.Routine = slices.Delete(routine, index, index+1)
		return nil
	})
	return p.Routine, err
}

func validateExercise(e domain.Exercise) error {
	switch {
	case strings.TrimSpace(e.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidExercise)
	case e.Sets <= 0 || e.Reps <= 0:
		return fmt.Errorf("%w: sets and reps must be > 0", ErrInvalidExercise)
	case e.RestSeconds < 0:
		return fmt.Errorf("%w: rest must be >= 0", ErrInvalidExercise)
	case strings.TrimSpace(e.Day) != "" && e.Day != domain.Unassigned && !domain.IsWeekday(e.Day):
		return fmt.Errorf("%w: unknown weekday %q", ErrInvalidExercise, e.Day)
	}
	return nil
}

// CompleteSession records a finished workout for day.
func (s *ProfileService) CompleteSession(ctx context.Context, userID, day string) (domain.CompletedSession, error) {
	if !domain.IsWeekday(day) {
		return domain.CompletedSession{}, fmt.Errorf("%w: unknown weekday %q", ErrInvalidSchedule, day)
	}
	var rec domain.CompletedSession
	_, err := s.commit(ctx, userID, "complete_session", false, func(p *domain.Profile) error {
		rec = domain.CompletedSession{Day: day, CompletedAt: s.store.now().UTC()}
		p.CompletedSessions = append(p.CompletedSessions, rec)
		return nil
	})
	return rec, err
}

// RequestPartner asks partnerID to link with userID by setting the partner's
// pending request. No partner reference is written on either side until the
// request is accepted.
func (s *ProfileService) RequestPartner(ctx context.Context, userID, partnerID string) error {
	if _, err := s.store.current(userID); err != nil {
		return err
	}
	partnerID = strings.TrimSpace(partnerID)
	if partnerID == "" || partnerID == userID {
		return ErrInvalidPartner
	}
	other, err := s.download(ctx, partnerID, "request_partner")
	if err != nil {
		return err
	}
	other.PartnerLinkage.PendingLinkRequestID = userID
	other.UpdatedAt = s.store.now().UTC()
	return s.upload(ctx, partnerID, other, "request_partner")
}

// AcceptPartner links the pending requester and userID on both documents.
func (s *ProfileService) AcceptPartner(ctx context.Context, userID string) (domain.PartnerLinkage, error) {
	self, err := s.store.current(userID)
	if err != nil {
		return domain.PartnerLinkage{}, err
	}
	requester := self.PartnerLinkage.PendingLinkRequestID
	if requester == "" {
		return domain.PartnerLinkage{}, ErrNoPendingRequest
	}
	p, err := s.pairEdit(ctx, userID, "accept_partner", requester, true,
		func(other *domain.Profile) { link(other, userID) },
		func(self *domain.Profile) { link(self, requester) },
	)
	return p.PartnerLinkage, err
}

// UnlinkPartner removes userID's active partner from both documents.
func (s *ProfileService) UnlinkPartner(ctx context.Context, userID string) error {
	self, err := s.store.current(userID)
	if err != nil {
		return err
	}
	partnerID := self.PartnerLinkage.ActivePartnerID
	if partnerID == "" {
		partnerID = self.PartnerLinkage.PartnerID
	}
	if partnerID == "" {
		return ErrNoPartner
	}
	_, err = s.pairEdit(ctx, userID, "unlink_partner", partnerID, false,
		func(other *domain.Profile) { unlink(other, userID) },
		func(self *domain.Profile) { unlink(self, partnerID) },
	)
	return err
}

// pairEdit writes the other profile first and userID's second. If the second
// write fails, or userID stopped being the active user in between, the first
// is restored so neither side is left pointing at a partner that does not
// point back.
func (s *ProfileService) pairEdit(ctx context.Context, userID, op, otherID string, requireOther bool, editOther, editSelf func(*domain.Profile)) (domain.Profile, error) {
	other, err := s.download(ctx, otherID, op)
	if errors.Is(err, ErrPartnerNotFound) && !requireOther {
		return s.commit(ctx, userID, op, true, func(p *domain.Profile) error {
			editSelf(p)
			return nil
		})
	}
	if err != nil {
		return domain.Profile{}, err
	}

	before := other.Clone()
	editOther(&other)
	other.UpdatedAt = s.store.now().UTC()
	if err := s.upload(ctx, otherID, other, op); err != nil {
		return domain.Profile{}, err
	}

	p, err := s.commit(ctx, userID, op, true, func(p *domain.Profile) error {
		editSelf(p)
		return nil
	})
	if err != nil {
		if cerr := s.gateway.UploadData(ctx, otherID, before); cerr != nil {
			s.reporter.Report(otherID, domain.NewSyncError("upload", otherID, cerr), op+"_compensate")
		}
		return domain.Profile{}, err
	}
	return p, nil
}

func link(p *domain.Profile, partnerID string) {
	l := &p.PartnerLinkage
	l.PartnerID = partnerID
	l.ActivePartnerID = partnerID
	if !slices.Contains(l.PartnerIDs, partnerID) {
		l.PartnerIDs = append(l.PartnerIDs, partnerID)
	}
	if l.PendingLinkRequestID == partnerID {
		l.PendingLinkRequestID = ""
	}
}

func unlink(p *domain.Profile, partnerID string) {
	l := &p.PartnerLinkage
	if l.PartnerID == partnerID {
		l.PartnerID = ""
	}
	if l.ActivePartnerID == partnerID {
		l.ActivePartnerID = ""
	}
	l.PartnerIDs = slices.DeleteFunc(l.PartnerIDs, func(id string) bool { return id == partnerID })
	if len(l.PartnerIDs) == 0 {
		l.PartnerIDs = nil
	}
}

// commit applies fn to userID's profile in the store and uploads the result.
// With rollback set, a failed upload also undoes the local edit.
func (s *ProfileService) commit(ctx context.Context, userID, op string, rollback bool, fn func(p *domain.Profile) error) (domain.Profile, error) {
	prev, next, err := s.store.update(userID, fn)
	if err != nil {
		return domain.Profile{}, err
	}
	if err := s.upload(ctx, userID, next, op); err != nil {
		if rollback {
			s.store.restore(userID, next, prev)
			return prev, err
		}
		return next, err
	}
	return next, nil
}

func (s *ProfileService) download(ctx context.Context, userID, op string) (domain.Profile, error) {
	p, err := s.gateway.DownloadData(ctx, userID)
	if err != nil {
		err = domain.NewSyncError("download", userID, err)
		s.reporter.Report(userID, err, op)
		return domain.Profile{}, err
	}
	if p == nil {
		return domain.Profile{}, ErrPartnerNotFound
	}
	return *p, nil
}

func (s *ProfileService) upload(ctx context.Context, userID string, p domain.Profile, op string) error {
	if p.UserID == "" {
		p.UserID = userID
	}
	if err := s.gateway.UploadData(ctx, userID, p); err != nil {
		err = domain.NewSyncError("upload", userID, err)
		s.reporter.Report(userID, err, op)
		return err
	}
	observability.RecordUpload(p.UpdatedAt)
	return nil
}
