package domain

// Weekday labels in calendar order. These strings are persisted as-is.
const (
	Monday    = "Lunes"
	Tuesday   = "Martes"
	Wednesday = "Miércoles"
	Thursday  = "Jueves"
	Friday    = "Viernes"
	Saturday  = "Sábado"
	Sunday    = "Domingo"
)

// RestDay is the muscle-group label used on days without training.
const RestDay = "Descanso"

// Weekdays lists the weekday labels Monday..Sunday.
var Weekdays = [7]string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ScheduleDay is one weekday of the training schedule.
type ScheduleDay struct {
	Day         string `json:"day"`
	TrainsToday bool   `json:"trainsToday"`
	Time        string `json:"time"`
	MuscleGroup string `json:"muscleGroup"`
}

var defaultSchedule = [7]ScheduleDay{
	{Day: Monday, TrainsToday: true, Time: "18:00", MuscleGroup: "Pecho"},
	{Day: Tuesday, TrainsToday: true, Time: "18:00", MuscleGroup: "Espalda"},
	{Day: Wednesday, TrainsToday: false, Time: "18:00", MuscleGroup: RestDay},
	{Day: Thursday, TrainsToday: true, Time: "18:00", MuscleGroup: "Piernas"},
	{Day: Friday, TrainsToday: true, Time: "18:00", MuscleGroup: "Hombros"},
	{Day: Saturday, TrainsToday: false, Time: "10:00", MuscleGroup: RestDay},
	{Day: Sunday, TrainsToday: false, Time: "10:00", MuscleGroup: RestDay},
}

// DefaultSchedule returns a fresh copy of the canonical 7-day schedule.
func DefaultSchedule() []ScheduleDay {
	out := make([]ScheduleDay, len(defaultSchedule))
	copy(out, defaultSchedule[:])
	return out
}

// EnsureScheduleDays fills in the default schedule when days is nil or empty
// and otherwise returns a copy of days unchanged. The result never aliases
// the input or the template.
func EnsureScheduleDays(days []ScheduleDay) []ScheduleDay {
	if len(days) == 0 {
		return DefaultSchedule()
	}
	out := make([]ScheduleDay, len(days))
	copy(out, days)
	return out
}

// WeekdayIndex returns the Monday-based position of label, or -1.
func WeekdayIndex(label string) int {
	for i, d := range Weekdays {
		if d == label {
			return i
		}
	}
	return -1
}

// IsWeekday reports whether label is one of the canonical weekday labels.
func IsWeekday(label string) bool {
	return WeekdayIndex(label) >= 0
}
