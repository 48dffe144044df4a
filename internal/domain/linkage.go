package domain

import (
	"fmt"
	"slices"
	"sort"
)

// DefectKind classifies a ValidationDefect.
type DefectKind string

const (
	DefectAsymmetricPartner DefectKind = "asymmetric_partner"
	DefectMissingPartner    DefectKind = "missing_partner"
	DefectScheduleLength    DefectKind = "schedule_length"
	DefectScheduleDay       DefectKind = "schedule_day"
	DefectDuplicateExercise DefectKind = "duplicate_exercise"
)

// ValidationDefect is a data inconsistency found in stored profiles. Defects
// are reported for external remediation and never corrected automatically.
type ValidationDefect struct {
	Kind    DefectKind `json:"kind"`
	UserID  string     `json:"userId"`
	Other   string     `json:"other,omitempty"`
	Message string     `json:"message"`
}

func (d ValidationDefect) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Kind, d.UserID, d.Message)
}

// AuditProfiles checks partner symmetry across profiles and the shape of
// each profile's schedule and routine. Results are sorted by user then kind.
func AuditProfiles(profiles []Profile) []ValidationDefect {
	byID := make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		byID[p.UserID] = p
	}

	var defects []ValidationDefect
	for _, p := range profiles {
		defects = append(defects, auditLinkage(p, byID)...)
		defects = append(defects, auditSchedule(p)...)
		for _, sig := range DuplicateSignatures(p.Routine) {
			defects = append(defects, ValidationDefect{
				Kind:    DefectDuplicateExercise,
				UserID:  p.UserID,
				Message: fmt.Sprintf("exercise %q on %s stored more than once", sig.Name, sig.Day),
			})
		}
	}

	sort.SliceStable(defects, func(i, j int) bool {
		if defects[i].UserID != defects[j].UserID {
			return defects[i].UserID < defects[j].UserID
		}
		return defects[i].Kind < defects[j].Kind
	})
	return defects
}

func auditLinkage(p Profile, byID map[string]Profile) []ValidationDefect {
	refs := slices.Clone(p.PartnerLinkage.PartnerIDs)
	if id := p.PartnerLinkage.PartnerID; id != "" && !slices.Contains(refs, id) {
		refs = append(refs, id)
	}

	var out []ValidationDefect
	for _, id := range refs {
		other, ok := byID[id]
		if !ok {
			out = append(out, ValidationDefect{
				Kind:    DefectMissingPartner,
				UserID:  p.UserID,
				Other:   id,
				Message: "references a partner with no stored profile",
			})
			continue
		}
		if !other.PartnerLinkage.HasPartner(p.UserID) {
			out = append(out, ValidationDefect{
				Kind:    DefectAsymmetricPartner,
				UserID:  p.UserID,
				Other:   id,
				Message: "partner does not reference this profile back",
			})
		}
	}
	return out
}

func auditSchedule(p Profile) []ValidationDefect {
	n := len(p.Schedule)
	if n == 0 {
		return nil
	}
	if n != len(Weekdays) {
		return []ValidationDefect{{
			Kind:    DefectScheduleLength,
			UserID:  p.UserID,
			Message: fmt.Sprintf("schedule has %d days, want 7", n),
		}}
	}
	var out []ValidationDefect
	seen := make(map[string]bool, n)
	for _, d := range p.Schedule {
		switch {
		case !IsWeekday(d.Day):
			out = append(out, ValidationDefect{Kind: DefectScheduleDay, UserID: p.UserID, Message: fmt.Sprintf("unknown weekday %q", d.Day)})
		case seen[d.Day]:
			out = append(out, ValidationDefect{Kind: DefectScheduleDay, UserID: p.UserID, Message: fmt.Sprintf("weekday %q repeated", d.Day)})
		}
		seen[d.Day] = true
	}
	return out
}
