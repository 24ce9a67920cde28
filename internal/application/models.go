package application

import (
	"time"

	"github.com/example/appointment-scheduler/internal/scheduler"
)

// AppointmentInput captures caller provided appointment fields. Date and
// time values arrive as strings ("2006-01-02" and "HH:mm") exactly as
// the transport delivers them; absence is the empty string.
type AppointmentInput struct {
	Title          string
	Description    string
	Date           string
	StartTime      string
	EndTime        string
	ParticipantIDs []string
	Location       string
	Color          string
}

// Appointment represents a committed booking returned to callers.
//
// StartUnix and EndUnix mirror the date/time pair as local-timezone unix
// epochs for cross-system consumers.
type Appointment struct {
	ID             string
	Title          string
	Description    string
	Date           time.Time
	StartTime      scheduler.TimeOfDay
	EndTime        scheduler.TimeOfDay
	ParticipantIDs []string
	Location       string
	Color          string
	StartUnix      int64
	EndUnix        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ParticipantInput captures caller provided participant fields.
type ParticipantInput struct {
	Name  string
	Email string
	Phone string
	Color string
}

// Participant represents a bookable person returned to callers.
type Participant struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SchedulerView converts an appointment to the engine's detection view.
func (a Appointment) SchedulerView() scheduler.Appointment {
	return scheduler.Appointment{
		ID:           a.ID,
		Title:        a.Title,
		Date:         a.Date,
		Start:        a.StartTime,
		End:          a.EndTime,
		Participants: append([]string(nil), a.ParticipantIDs...),
		Color:        a.Color,
	}
}
