package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/example/appointment-scheduler/internal/persistence"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// ParticipantService manages the people appointments are booked for.
type ParticipantService struct {
	participants persistence.ParticipantRepository
	idGenerator  func() string
	now          func() time.Time
	pickColor    func() string
	logger       *slog.Logger
}

// NewParticipantService wires dependencies for participant operations.
func NewParticipantService(participants persistence.ParticipantRepository, idGenerator func() string, now func() time.Time) *ParticipantService {
	return NewParticipantServiceWithLogger(participants, idGenerator, now, nil)
}

// NewParticipantServiceWithLogger wires dependencies including a base logger.
func NewParticipantServiceWithLogger(participants persistence.ParticipantRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ParticipantService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ParticipantService{
		participants: participants,
		idGenerator:  idGenerator,
		now:          now,
		pickColor:    randomPaletteColor,
		logger:       defaultLogger(logger),
	}
}

// CreateParticipant validates and persists a new participant. When no
// color is supplied one is drawn from the palette.
func (s *ParticipantService) CreateParticipant(ctx context.Context, input ParticipantInput) (Participant, error) {
	if s == nil || s.participants == nil {
		return Participant{}, fmt.Errorf("participant repository not configured")
	}
	logger := serviceLogger(ctx, s.logger, "participants", "create")

	vErr := &ValidationError{}
	validateParticipantCore(input, vErr)
	if vErr.HasErrors() {
		logger.InfoContext(ctx, "participant rejected", "reason", "validation", "fields", fieldNames(vErr))
		return Participant{}, vErr
	}

	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = s.pickColor()
	}

	createdAt := s.now()
	record := persistence.Participant{
		ID:        s.idGenerator(),
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		Color:     color,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	if err := s.participants.CreateParticipant(ctx, record); err != nil {
		return Participant{}, mapParticipantRepoError(err)
	}

	persisted, err := s.participants.GetParticipant(ctx, record.ID)
	if err != nil {
		return Participant{}, mapParticipantRepoError(err)
	}

	logger.InfoContext(ctx, "participant created", "participant_id", persisted.ID)
	return toParticipant(persisted), nil
}

// UpdateParticipant validates and stores changed participant fields.
func (s *ParticipantService) UpdateParticipant(ctx context.Context, id string, input ParticipantInput) (Participant, error) {
	if s == nil || s.participants == nil {
		return Participant{}, fmt.Errorf("participant repository not configured")
	}
	logger := serviceLogger(ctx, s.logger, "participants", "update", "participant_id", id)

	existing, err := s.participants.GetParticipant(ctx, id)
	if err != nil {
		return Participant{}, mapParticipantRepoError(err)
	}

	vErr := &ValidationError{}
	validateParticipantCore(input, vErr)
	if vErr.HasErrors() {
		logger.InfoContext(ctx, "participant rejected", "reason", "validation", "fields", fieldNames(vErr))
		return Participant{}, vErr
	}

	updated := existing
	updated.Name = strings.TrimSpace(input.Name)
	updated.Email = strings.TrimSpace(input.Email)
	updated.Phone = strings.TrimSpace(input.Phone)
	if color := strings.TrimSpace(input.Color); color != "" {
		updated.Color = color
	}
	updated.UpdatedAt = s.now()

	if err := s.participants.UpdateParticipant(ctx, updated); err != nil {
		return Participant{}, mapParticipantRepoError(err)
	}

	persisted, err := s.participants.GetParticipant(ctx, id)
	if err != nil {
		return Participant{}, mapParticipantRepoError(err)
	}

	logger.InfoContext(ctx, "participant updated", "participant_id", id)
	return toParticipant(persisted), nil
}

// DeleteParticipant removes a participant. Appointments that reference
// the removed id keep the reference; readers resolve it to a placeholder
// via ResolveParticipant. Deletion is idempotent.
func (s *ParticipantService) DeleteParticipant(ctx context.Context, id string) error {
	if s == nil || s.participants == nil {
		return fmt.Errorf("participant repository not configured")
	}
	logger := serviceLogger(ctx, s.logger, "participants", "delete", "participant_id", id)

	if err := s.participants.DeleteParticipant(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil
		}
		return err
	}

	logger.InfoContext(ctx, "participant deleted", "participant_id", id)
	return nil
}

// GetParticipant retrieves a stored participant by id.
func (s *ParticipantService) GetParticipant(ctx context.Context, id string) (Participant, error) {
	if s == nil || s.participants == nil {
		return Participant{}, fmt.Errorf("participant repository not configured")
	}

	record, err := s.participants.GetParticipant(ctx, id)
	if err != nil {
		return Participant{}, mapParticipantRepoError(err)
	}
	return toParticipant(record), nil
}

// ListParticipants returns all participants ordered by name, then id.
func (s *ParticipantService) ListParticipants(ctx context.Context) ([]Participant, error) {
	if s == nil || s.participants == nil {
		return nil, fmt.Errorf("participant repository not configured")
	}

	records, err := s.participants.ListParticipants(ctx)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	participants := make([]Participant, 0, len(records))
	for _, record := range records {
		participants = append(participants, toParticipant(record))
	}
	return participants, nil
}

// ResolveParticipant looks up a participant referenced from an
// appointment. A dangling reference resolves to a gray "Unknown"
// placeholder carrying the requested id, never to an error, so renderers
// keep working after a participant is deleted.
func (s *ParticipantService) ResolveParticipant(ctx context.Context, id string) Participant {
	if s != nil && s.participants != nil {
		if record, err := s.participants.GetParticipant(ctx, id); err == nil {
			return toParticipant(record)
		}
	}
	return Participant{
		ID:    id,
		Name:  UnknownParticipantName,
		Color: UnknownParticipantColor,
	}
}

func validateParticipantCore(input ParticipantInput, vErr *ValidationError) {
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "Name is required")
	}

	email := strings.TrimSpace(input.Email)
	if email == "" {
		vErr.add("email", "Email is required")
	} else if !emailPattern.MatchString(email) {
		vErr.add("email", "Email is invalid")
	}
}

func toParticipant(record persistence.Participant) Participant {
	return Participant{
		ID:        record.ID,
		Name:      record.Name,
		Email:     record.Email,
		Phone:     record.Phone,
		Color:     record.Color,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func mapParticipantRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		vErr := &ValidationError{}
		vErr.add("email", "Email is already in use")
		return vErr
	}
	return err
}
