package domain

import "strings"

const (
	// Unassigned is the day label for exercises without a weekday.
	Unassigned = "Sin asignar"
	// FocusBoth is the neutral focus used when an exercise has none.
	FocusBoth = "both"
)

// Exercise is one entry of a routine.
type Exercise struct {
	Day         string `json:"day"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Sets        int    `json:"sets"`
	Reps        int    `json:"reps"`
	Focus       string `json:"focus,omitempty"`
	RestSeconds int    `json:"rest"`
}

// Signature is the composite identity of an exercise. Two exercises with
// equal signatures are duplicates.
type Signature struct {
	Day         string
	Name        string
	Category    string
	Sets        int
	Reps        int
	Focus       string
	RestSeconds int
}

// Signature computes e's identity with day and focus canonicalized.
func (e Exercise) Signature() Signature {
	return Signature{
		Day:         CanonicalDay(e.Day),
		Name:        strings.ToLower(strings.TrimSpace(e.Name)),
		Category:    e.Category,
		Sets:        e.Sets,
		Reps:        e.Reps,
		Focus:       canonicalFocus(e.Focus),
		RestSeconds: e.RestSeconds,
	}
}

// CanonicalDay maps a blank day to Unassigned.
func CanonicalDay(day string) string {
	if strings.TrimSpace(day) == "" {
		return Unassigned
	}
	return day
}

func canonicalFocus(focus string) string {
	if focus == "" {
		return FocusBoth
	}
	return focus
}

// NormalizeRoutine drops exercises whose signature already appeared earlier
// in the slice. Order is preserved and the first occurrence wins.
func NormalizeRoutine(exercises []Exercise) []Exercise {
	out := make([]Exercise, 0, len(exercises))
	seen := make(map[Signature]struct{}, len(exercises))
	for _, e := range exercises {
		sig := e.Signature()
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, e)
	}
	return out
}

// ExercisesPerDay counts exercises per canonical day after normalizing, so
// duplicates never inflate a day's load.
func ExercisesPerDay(exercises []Exercise) map[string]int {
	counts := make(map[string]int)
	for _, e := range NormalizeRoutine(exercises) {
		counts[CanonicalDay(e.Day)]++
	}
	return counts
}

// DuplicateSignatures returns the signatures that occur more than once.
func DuplicateSignatures(exercises []Exercise) []Signature {
	seen := make(map[Signature]int, len(exercises))
	var dups []Signature
	for _, e := range exercises {
		sig := e.Signature()
		seen[sig]++
		if seen[sig] == 2 {
			dups = append(dups, sig)
		}
	}
	return dups
}
