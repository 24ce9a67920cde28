package persistence

import (
	"context"
	"time"
)

// AppointmentFilter narrows appointment queries.
type AppointmentFilter struct {
	ParticipantIDs []string
	From           *time.Time
	To             *time.Time
}

// AppointmentRepository exposes CRUD operations for appointments.
type AppointmentRepository interface {
	CreateAppointment(ctx context.Context, appointment Appointment) error
	UpdateAppointment(ctx context.Context, appointment Appointment) error
	GetAppointment(ctx context.Context, id string) (Appointment, error)
	ListAppointments(ctx context.Context, filter AppointmentFilter) ([]Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
}

// ParticipantRepository exposes CRUD operations for participants.
type ParticipantRepository interface {
	CreateParticipant(ctx context.Context, participant Participant) error
	UpdateParticipant(ctx context.Context, participant Participant) error
	GetParticipant(ctx context.Context, id string) (Participant, error)
	ListParticipants(ctx context.Context) ([]Participant, error)
	DeleteParticipant(ctx context.Context, id string) error
}
