package persistence

import (
	"time"

	"github.com/example/appointment-scheduler/internal/scheduler"
)

// Participant represents a bookable person stored in persistence.
type Participant struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Appointment represents a calendar booking stored in persistence.
//
// Date carries only the calendar day; StartTime and EndTime are local
// wall-clock values. Participants may reference ids that no longer
// resolve to a stored participant: deletion never cascades, dangling
// references are resolved to a placeholder at render time.
type Appointment struct {
	ID           string
	Title        string
	Description  string
	Date         time.Time
	StartTime    scheduler.TimeOfDay
	EndTime      scheduler.TimeOfDay
	Participants []string
	Location     string
	Color        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
