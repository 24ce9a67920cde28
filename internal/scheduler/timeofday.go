package scheduler

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// TimeOfDay represents a local wall-clock time with minute granularity,
// stored as minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses an "HH:mm" string into a TimeOfDay.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	var hours, minutes int
	if _, err := fmt.Sscanf(value, "%2d:%2d", &hours, &minutes); err != nil {
		return 0, fmt.Errorf("scheduler: invalid time %q: %w", value, err)
	}
	if len(value) != 5 || value[2] != ':' {
		return 0, fmt.Errorf("scheduler: invalid time %q: expected HH:mm", value)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("scheduler: invalid time %q: out of range", value)
	}
	return TimeOfDay(hours*60 + minutes), nil
}

// String renders the time as "HH:mm".
func (t TimeOfDay) String() string {
	normalized := int(t) % minutesPerDay
	if normalized < 0 {
		normalized += minutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", normalized/60, normalized%60)
}

// Minutes returns the minutes elapsed since midnight.
func (t TimeOfDay) Minutes() int {
	return int(t)
}

// Add returns the time shifted by the given number of minutes, wrapping
// across midnight. The calendar date is intentionally not carried along:
// 23:40 plus 60 minutes yields 00:40.
func (t TimeOfDay) Add(minutes int) TimeOfDay {
	shifted := (int(t) + minutes) % minutesPerDay
	if shifted < 0 {
		shifted += minutesPerDay
	}
	return TimeOfDay(shifted)
}

// Before reports whether t is strictly earlier than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t < other
}

// At combines the time of day with a calendar date in the date's location.
func (t TimeOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(t)/60, int(t)%60, 0, 0, date.Location())
}

// Overlaps reports whether the half-open intervals [s1, e1) and [s2, e2)
// intersect. Touching endpoints do not overlap, so back-to-back
// appointments never collide.
func Overlaps(s1, e1, s2, e2 TimeOfDay) bool {
	return s1 < e2 && s2 < e1
}

// SameDate reports whether two instants fall on the same calendar date,
// ignoring the time of day.
func SameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// DateOnly truncates an instant to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
