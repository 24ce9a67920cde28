package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/appointment-scheduler/internal/persistence"
)

// ParticipantRepository implements persistence.ParticipantRepository using SQLite.
type ParticipantRepository struct {
	pool *ConnectionPool
}

// NewParticipantRepository creates a SQLite-backed participant repository.
func NewParticipantRepository(pool *ConnectionPool) *ParticipantRepository {
	return &ParticipantRepository{pool: pool}
}

// CreateParticipant inserts a new participant.
func (r *ParticipantRepository) CreateParticipant(ctx context.Context, participant persistence.Participant) error {
	if participant.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO participants (id, name, email, phone, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	return retryBusy(ctx, func() error {
		_, err := r.pool.db.ExecContext(ctx, query,
			participant.ID,
			participant.Name,
			participant.Email,
			participant.Phone,
			participant.Color,
			participant.CreatedAt.UTC().Format(time.RFC3339),
			participant.UpdatedAt.UTC().Format(time.RFC3339),
		)
		return mapError(err)
	})
}

// UpdateParticipant replaces an existing participant.
func (r *ParticipantRepository) UpdateParticipant(ctx context.Context, participant persistence.Participant) error {
	if participant.ID == "" {
		return persistence.ErrNotFound
	}

	query := `
		UPDATE participants
		SET name = ?, email = ?, phone = ?, color = ?, updated_at = ?
		WHERE id = ?
	`

	return retryBusy(ctx, func() error {
		result, err := r.pool.db.ExecContext(ctx, query,
			participant.Name,
			participant.Email,
			participant.Phone,
			participant.Color,
			participant.UpdatedAt.UTC().Format(time.RFC3339),
			participant.ID,
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
		return nil
	})
}

// GetParticipant retrieves a participant by id.
func (r *ParticipantRepository) GetParticipant(ctx context.Context, id string) (persistence.Participant, error) {
	if id == "" {
		return persistence.Participant{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, name, email, phone, color, created_at, updated_at
		FROM participants
		WHERE id = ?
	`

	return r.scanParticipant(r.pool.db.QueryRowContext(ctx, query, id))
}

// ListParticipants returns all participants ordered by name then id.
func (r *ParticipantRepository) ListParticipants(ctx context.Context) ([]persistence.Participant, error) {
	query := `
		SELECT id, name, email, phone, color, created_at, updated_at
		FROM participants
		ORDER BY name ASC, id ASC
	`

	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var participants []persistence.Participant
	for rows.Next() {
		participant, err := r.scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, participant)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return participants, nil
}

// DeleteParticipant removes a participant by id. Appointment rows that
// reference the participant are left untouched: dangling references are
// resolved to a placeholder by the application layer.
func (r *ParticipantRepository) DeleteParticipant(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return retryBusy(ctx, func() error {
		result, err := r.pool.db.ExecContext(ctx, "DELETE FROM participants WHERE id = ?", id)
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
}

func (r *ParticipantRepository) scanParticipant(row rowScanner) (persistence.Participant, error) {
	var participant persistence.Participant
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&participant.ID,
		&participant.Name,
		&participant.Email,
		&participant.Phone,
		&participant.Color,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Participant{}, mapError(err)
	}

	if participant.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Participant{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if participant.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Participant{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return participant, nil
}
