package sqlite

import (
	"context"
	"fmt"
)

// Start and end times are stored as zero-padded "HH:mm" strings, so
// lexicographic comparison matches chronological comparison and the
// check constraint enforces the hard start-before-end invariant at the
// storage boundary as well.
//
// appointment_participants deliberately carries no foreign key on
// participant_id: deleting a participant leaves dangling references
// that the application resolves to a placeholder.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS participants (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL,
		phone      TEXT NOT NULL DEFAULT '',
		color      TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		date        TEXT NOT NULL,
		start_time  TEXT NOT NULL,
		end_time    TEXT NOT NULL,
		location    TEXT NOT NULL DEFAULT '',
		color       TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		CHECK (start_time < end_time)
	)`,
	`CREATE TABLE IF NOT EXISTS appointment_participants (
		appointment_id TEXT NOT NULL REFERENCES appointments(id) ON DELETE CASCADE,
		participant_id TEXT NOT NULL,
		PRIMARY KEY (appointment_id, participant_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments(date)`,
	`CREATE INDEX IF NOT EXISTS idx_appointment_participants_participant
		ON appointment_participants(participant_id)`,
}

// Migrate creates the schema when it does not exist yet.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	for _, statement := range schemaStatements {
		if _, err := cp.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
