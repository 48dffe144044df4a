package domain

import (
	"slices"
	"time"
)

// Profile is the synchronized root record for one user.
type Profile struct {
	UserID            string             `json:"userId"`
	PersonalData      PersonalData       `json:"personalData"`
	Schedule          []ScheduleDay      `json:"schedule"`
	Routine           []Exercise         `json:"routine"`
	PartnerLinkage    PartnerLinkage     `json:"partnerLinkage"`
	CompletedSessions []CompletedSession `json:"completedSessions,omitempty"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// PersonalData holds the user's own attributes. Name doubles as the display name.
type PersonalData struct {
	Name       string            `json:"name"`
	Age        *int              `json:"age,omitempty"`
	HeightCM   *float64          `json:"heightCm,omitempty"`
	WeightKG   *float64          `json:"weightKg,omitempty"`
	Goal       string            `json:"goal,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// PartnerLinkage describes a symmetric pairing with another profile.
type PartnerLinkage struct {
	PartnerID            string   `json:"partnerId,omitempty"`
	ActivePartnerID      string   `json:"activePartnerId,omitempty"`
	PartnerIDs           []string `json:"partnerIds,omitempty"`
	PendingLinkRequestID string   `json:"pendingLinkRequestId,omitempty"`
}

// HasPartner reports whether id is referenced anywhere in the linkage.
func (l PartnerLinkage) HasPartner(id string) bool {
	return id != "" && (l.PartnerID == id || slices.Contains(l.PartnerIDs, id))
}

// CompletedSession records one finished workout.
type CompletedSession struct {
	Day         string    `json:"day"`
	CompletedAt time.Time `json:"completedAt"`
}

// Clone returns a deep copy of p.
func (p Profile) Clone() Profile {
	out := p
	out.PersonalData = p.PersonalData.Clone()
	out.Schedule = cloneSlice(p.Schedule)
	out.Routine = cloneSlice(p.Routine)
	out.PartnerLinkage.PartnerIDs = cloneSlice(p.PartnerLinkage.PartnerIDs)
	out.CompletedSessions = cloneSlice(p.CompletedSessions)
	return out
}

// Clone returns a deep copy of d.
func (d PersonalData) Clone() PersonalData {
	out := d
	if d.Age != nil {
		v := *d.Age
		out.Age = &v
	}
	if d.HeightCM != nil {
		v := *d.HeightCM
		out.HeightCM = &v
	}
	if d.WeightKG != nil {
		v := *d.WeightKG
		out.WeightKG = &v
	}
	if d.Attributes != nil {
		out.Attributes = make(map[string]string, len(d.Attributes))
		for k, v := range d.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}

// cloneSlice copies a slice of value types, keeping nil as nil.
func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
