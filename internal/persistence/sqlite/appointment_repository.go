package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/appointment-scheduler/internal/persistence"
	"github.com/example/appointment-scheduler/internal/scheduler"
)

const dateLayout = "2006-01-02"

// AppointmentRepository implements persistence.AppointmentRepository using SQLite.
type AppointmentRepository struct {
	pool *ConnectionPool
}

// NewAppointmentRepository creates a SQLite-backed appointment repository.
func NewAppointmentRepository(pool *ConnectionPool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

// CreateAppointment inserts a new appointment with its participants.
func (r *AppointmentRepository) CreateAppointment(ctx context.Context, appointment persistence.Appointment) error {
	if appointment.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return retryBusy(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			query := `
				INSERT INTO appointments (id, title, description, date, start_time, end_time, location, color, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`
			_, err := tx.ExecContext(ctx, query,
				appointment.ID,
				appointment.Title,
				appointment.Description,
				appointment.Date.Format(dateLayout),
				appointment.StartTime.String(),
				appointment.EndTime.String(),
				appointment.Location,
				appointment.Color,
				appointment.CreatedAt.UTC().Format(time.RFC3339),
				appointment.UpdatedAt.UTC().Format(time.RFC3339),
			)
			if err != nil {
				return mapError(err)
			}

			return r.insertParticipants(ctx, tx, appointment.ID, appointment.Participants)
		})
	})
}

// UpdateAppointment replaces an existing appointment and its participant set.
func (r *AppointmentRepository) UpdateAppointment(ctx context.Context, appointment persistence.Appointment) error {
	if appointment.ID == "" {
		return persistence.ErrNotFound
	}

	return retryBusy(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			query := `
				UPDATE appointments
				SET title = ?, description = ?, date = ?, start_time = ?, end_time = ?, location = ?, color = ?, updated_at = ?
				WHERE id = ?
			`
			result, err := tx.ExecContext(ctx, query,
				appointment.Title,
				appointment.Description,
				appointment.Date.Format(dateLayout),
				appointment.StartTime.String(),
				appointment.EndTime.String(),
				appointment.Location,
				appointment.Color,
				appointment.UpdatedAt.UTC().Format(time.RFC3339),
				appointment.ID,
			)
			if err != nil {
				return mapError(err)
			}

			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if affected == 0 {
				return persistence.ErrNotFound
			}

			if _, err := tx.ExecContext(ctx, "DELETE FROM appointment_participants WHERE appointment_id = ?", appointment.ID); err != nil {
				return mapError(err)
			}

			return r.insertParticipants(ctx, tx, appointment.ID, appointment.Participants)
		})
	})
}

// GetAppointment retrieves an appointment by id.
func (r *AppointmentRepository) GetAppointment(ctx context.Context, id string) (persistence.Appointment, error) {
	if id == "" {
		return persistence.Appointment{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, title, description, date, start_time, end_time, location, color, created_at, updated_at
		FROM appointments
		WHERE id = ?
	`

	appointment, err := r.scanAppointment(r.pool.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.Appointment{}, err
	}

	participants, err := r.loadParticipants(ctx, id)
	if err != nil {
		return persistence.Appointment{}, err
	}
	appointment.Participants = participants

	return appointment, nil
}

// ListAppointments lists appointments matching the filter, ordered by
// date, start time, then id.
func (r *AppointmentRepository) ListAppointments(ctx context.Context, filter persistence.AppointmentFilter) ([]persistence.Appointment, error) {
	query, args := buildListQuery(filter)

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var appointments []persistence.Appointment
	for rows.Next() {
		appointment, err := r.scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	for i := range appointments {
		participants, err := r.loadParticipants(ctx, appointments[i].ID)
		if err != nil {
			return nil, err
		}
		appointments[i].Participants = participants
	}

	return appointments, nil
}

// DeleteAppointment removes an appointment and its participant rows.
func (r *AppointmentRepository) DeleteAppointment(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return retryBusy(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, "DELETE FROM appointment_participants WHERE appointment_id = ?", id); err != nil {
				return mapError(err)
			}

			result, err := tx.ExecContext(ctx, "DELETE FROM appointments WHERE id = ?", id)
			if err != nil {
				return mapError(err)
			}

			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if affected == 0 {
				return persistence.ErrNotFound
			}
			return nil
		})
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *AppointmentRepository) scanAppointment(row rowScanner) (persistence.Appointment, error) {
	var appointment persistence.Appointment
	var dateStr, startStr, endStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&appointment.ID,
		&appointment.Title,
		&appointment.Description,
		&dateStr,
		&startStr,
		&endStr,
		&appointment.Location,
		&appointment.Color,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Appointment{}, mapError(err)
	}

	if appointment.Date, err = time.ParseInLocation(dateLayout, dateStr, time.Local); err != nil {
		return persistence.Appointment{}, fmt.Errorf("failed to parse date: %w", err)
	}
	if appointment.StartTime, err = scheduler.ParseTimeOfDay(startStr); err != nil {
		return persistence.Appointment{}, fmt.Errorf("failed to parse start_time: %w", err)
	}
	if appointment.EndTime, err = scheduler.ParseTimeOfDay(endStr); err != nil {
		return persistence.Appointment{}, fmt.Errorf("failed to parse end_time: %w", err)
	}
	if appointment.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Appointment{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if appointment.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Appointment{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return appointment, nil
}

func (r *AppointmentRepository) insertParticipants(ctx context.Context, tx *sql.Tx, appointmentID string, participants []string) error {
	seen := make(map[string]struct{}, len(participants))
	for _, participantID := range participants {
		participantID = strings.TrimSpace(participantID)
		if participantID == "" {
			continue
		}
		if _, ok := seen[participantID]; ok {
			continue
		}
		seen[participantID] = struct{}{}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO appointment_participants (appointment_id, participant_id) VALUES (?, ?)",
			appointmentID, participantID)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (r *AppointmentRepository) loadParticipants(ctx context.Context, appointmentID string) ([]string, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT participant_id FROM appointment_participants WHERE appointment_id = ? ORDER BY participant_id ASC",
		appointmentID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var participants []string
	for rows.Next() {
		var participantID string
		if err := rows.Scan(&participantID); err != nil {
			return nil, mapError(err)
		}
		participants = append(participants, participantID)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return participants, nil
}

func buildListQuery(filter persistence.AppointmentFilter) (string, []any) {
	query := `
		SELECT DISTINCT a.id, a.title, a.description, a.date, a.start_time, a.end_time, a.location, a.color, a.created_at, a.updated_at
		FROM appointments a
	`

	var conditions []string
	var args []any

	if len(filter.ParticipantIDs) > 0 {
		query += " LEFT JOIN appointment_participants ap ON a.id = ap.appointment_id"

		placeholders := make([]string, len(filter.ParticipantIDs))
		for i, participantID := range filter.ParticipantIDs {
			placeholders[i] = "?"
			args = append(args, participantID)
		}
		conditions = append(conditions, fmt.Sprintf("ap.participant_id IN (%s)", strings.Join(placeholders, ",")))
	}

	if filter.From != nil {
		conditions = append(conditions, "a.date >= ?")
		args = append(args, filter.From.Format(dateLayout))
	}
	if filter.To != nil {
		conditions = append(conditions, "a.date <= ?")
		args = append(args, filter.To.Format(dateLayout))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY a.date ASC, a.start_time ASC, a.id ASC"

	return query, args
}
