// Package memory provides an in-memory implementation of the
// persistence repositories, used by tests and the ephemeral server mode.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/example/appointment-scheduler/internal/persistence"
)

// Store holds appointment and participant collections guarded by a
// single lock.
type Store struct {
	mu           sync.RWMutex
	appointments map[string]persistence.Appointment
	participants map[string]persistence.Participant
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		appointments: make(map[string]persistence.Appointment),
		participants: make(map[string]persistence.Participant),
	}
}

// --- AppointmentRepository implementation ---

// CreateAppointment stores a new appointment.
func (s *Store) CreateAppointment(ctx context.Context, appointment persistence.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.appointments[appointment.ID]; ok {
		return persistence.ErrDuplicate
	}
	if !appointment.StartTime.Before(appointment.EndTime) {
		return persistence.ErrConstraintViolation
	}

	s.appointments[appointment.ID] = cloneAppointment(appointment)
	return nil
}

// UpdateAppointment replaces an existing appointment.
func (s *Store) UpdateAppointment(ctx context.Context, appointment persistence.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.appointments[appointment.ID]; !ok {
		return persistence.ErrNotFound
	}
	if !appointment.StartTime.Before(appointment.EndTime) {
		return persistence.ErrConstraintViolation
	}

	s.appointments[appointment.ID] = cloneAppointment(appointment)
	return nil
}

// GetAppointment retrieves an appointment by id.
func (s *Store) GetAppointment(ctx context.Context, id string) (persistence.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	appointment, ok := s.appointments[id]
	if !ok {
		return persistence.Appointment{}, persistence.ErrNotFound
	}
	return cloneAppointment(appointment), nil
}

// ListAppointments returns appointments matching the filter ordered by
// date, start time, then id.
func (s *Store) ListAppointments(ctx context.Context, filter persistence.AppointmentFilter) ([]persistence.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	appointments := make([]persistence.Appointment, 0, len(s.appointments))
	for _, appointment := range s.appointments {
		if !matchesFilter(appointment, filter) {
			continue
		}
		appointments = append(appointments, cloneAppointment(appointment))
	}

	sort.Slice(appointments, func(i, j int) bool {
		if !appointments[i].Date.Equal(appointments[j].Date) {
			return appointments[i].Date.Before(appointments[j].Date)
		}
		if appointments[i].StartTime != appointments[j].StartTime {
			return appointments[i].StartTime < appointments[j].StartTime
		}
		return appointments[i].ID < appointments[j].ID
	})

	return appointments, nil
}

// DeleteAppointment removes an appointment by id.
func (s *Store) DeleteAppointment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.appointments[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.appointments, id)
	return nil
}

// --- ParticipantRepository implementation ---

// CreateParticipant stores a new participant.
func (s *Store) CreateParticipant(ctx context.Context, participant persistence.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.participants[participant.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.participants[participant.ID] = participant
	return nil
}

// UpdateParticipant replaces an existing participant.
func (s *Store) UpdateParticipant(ctx context.Context, participant persistence.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.participants[participant.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.participants[participant.ID] = participant
	return nil
}

// GetParticipant retrieves a participant by id.
func (s *Store) GetParticipant(ctx context.Context, id string) (persistence.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	participant, ok := s.participants[id]
	if !ok {
		return persistence.Participant{}, persistence.ErrNotFound
	}
	return participant, nil
}

// ListParticipants returns all participants ordered by name then id.
func (s *Store) ListParticipants(ctx context.Context) ([]persistence.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	participants := make([]persistence.Participant, 0, len(s.participants))
	for _, participant := range s.participants {
		participants = append(participants, participant)
	}

	sort.Slice(participants, func(i, j int) bool {
		if participants[i].Name == participants[j].Name {
			return participants[i].ID < participants[j].ID
		}
		return participants[i].Name < participants[j].Name
	})

	return participants, nil
}

// DeleteParticipant removes a participant by id. Appointments that
// reference the participant keep their dangling reference.
func (s *Store) DeleteParticipant(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.participants[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.participants, id)
	return nil
}

func matchesFilter(appointment persistence.Appointment, filter persistence.AppointmentFilter) bool {
	if len(filter.ParticipantIDs) > 0 {
		found := false
	scan:
		for _, wanted := range filter.ParticipantIDs {
			for _, participantID := range appointment.Participants {
				if participantID == wanted {
					found = true
					break scan
				}
			}
		}
		if !found {
			return false
		}
	}

	if filter.From != nil && appointment.Date.Before(*filter.From) {
		return false
	}
	if filter.To != nil && appointment.Date.After(*filter.To) {
		return false
	}
	return true
}

func cloneAppointment(appointment persistence.Appointment) persistence.Appointment {
	cloned := appointment
	cloned.Participants = append([]string(nil), appointment.Participants...)
	return cloned
}
