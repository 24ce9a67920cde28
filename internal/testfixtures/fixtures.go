// Package testfixtures provides deterministic builders, clocks, and
// storage harnesses shared by tests across the module.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/appointment-scheduler/internal/persistence"
	"github.com/example/appointment-scheduler/internal/scheduler"
)

var (
	participantCounter uint64
	appointmentCounter uint64
)

var referenceTime = time.Date(2024, time.June, 10, 9, 0, 0, 0, time.Local)

// ReferenceTime returns the canonical baseline timestamp used by
// fixtures: a Monday morning inside the default grid window.
func ReferenceTime() time.Time {
	return referenceTime
}

// ParticipantFixture is a deterministic participant record for tests.
type ParticipantFixture struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ParticipantOption configures the generated participant fixture.
type ParticipantOption func(*ParticipantFixture)

// NewParticipantFixture returns a deterministic participant fixture with
// optional overrides.
func NewParticipantFixture(opts ...ParticipantOption) ParticipantFixture {
	idx := atomic.AddUint64(&participantCounter, 1)
	id := fmt.Sprintf("participant-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := ParticipantFixture{
		ID:        id,
		Name:      fmt.Sprintf("Participant %03d", idx),
		Email:     fmt.Sprintf("%s@example.com", id),
		Color:     "#6366f1",
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithParticipantID overrides the generated participant identifier.
func WithParticipantID(id string) ParticipantOption {
	return func(f *ParticipantFixture) {
		f.ID = id
	}
}

// WithParticipantName overrides the generated display name.
func WithParticipantName(name string) ParticipantOption {
	return func(f *ParticipantFixture) {
		f.Name = name
	}
}

// WithParticipantEmail overrides the generated email address.
func WithParticipantEmail(email string) ParticipantOption {
	return func(f *ParticipantFixture) {
		f.Email = email
	}
}

// WithParticipantColor overrides the assigned color token.
func WithParticipantColor(color string) ParticipantOption {
	return func(f *ParticipantFixture) {
		f.Color = color
	}
}

// Record converts the fixture to its persistence representation.
func (f ParticipantFixture) Record() persistence.Participant {
	return persistence.Participant{
		ID:        f.ID,
		Name:      f.Name,
		Email:     f.Email,
		Phone:     f.Phone,
		Color:     f.Color,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// AppointmentFixture is a deterministic appointment record for tests.
type AppointmentFixture struct {
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

// AppointmentOption configures the generated appointment fixture.
type AppointmentOption func(*AppointmentFixture)

// NewAppointmentFixture returns a deterministic one-hour appointment on
// the reference Monday. Consecutive fixtures occupy consecutive hours so
// they never conflict unless a test asks them to.
func NewAppointmentFixture(opts ...AppointmentOption) AppointmentFixture {
	idx := atomic.AddUint64(&appointmentCounter, 1)
	id := fmt.Sprintf("appointment-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	start := scheduler.TimeOfDay(7*60) + scheduler.TimeOfDay(int(idx%12)*60)
	fixture := AppointmentFixture{
		ID:           id,
		Title:        fmt.Sprintf("Appointment %03d", idx),
		Date:         scheduler.DateOnly(referenceTime),
		StartTime:    start,
		EndTime:      start.Add(60),
		Participants: []string{fmt.Sprintf("participant-%03d", idx)},
		Color:        "#ec4899",
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAppointmentID overrides the generated appointment identifier.
func WithAppointmentID(id string) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.ID = id
	}
}

// WithAppointmentTitle overrides the generated title.
func WithAppointmentTitle(title string) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.Title = title
	}
}

// WithAppointmentDate places the appointment on the given calendar day.
func WithAppointmentDate(date time.Time) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.Date = scheduler.DateOnly(date)
	}
}

// WithAppointmentWindow sets the start and end times.
func WithAppointmentWindow(start, end scheduler.TimeOfDay) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.StartTime = start
		f.EndTime = end
	}
}

// WithAppointmentParticipants replaces the participant references.
func WithAppointmentParticipants(ids ...string) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.Participants = append([]string(nil), ids...)
	}
}

// Record converts the fixture to its persistence representation.
func (f AppointmentFixture) Record() persistence.Appointment {
	return persistence.Appointment{
		ID:           f.ID,
		Title:        f.Title,
		Description:  f.Description,
		Date:         f.Date,
		StartTime:    f.StartTime,
		EndTime:      f.EndTime,
		Participants: append([]string(nil), f.Participants...),
		Location:     f.Location,
		Color:        f.Color,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// SchedulerView converts the fixture to the conflict engine's view.
func (f AppointmentFixture) SchedulerView() scheduler.Appointment {
	return scheduler.Appointment{
		ID:           f.ID,
		Title:        f.Title,
		Date:         f.Date,
		Start:        f.StartTime,
		End:          f.EndTime,
		Participants: append([]string(nil), f.Participants...),
		Color:        f.Color,
	}
}
