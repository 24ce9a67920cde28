package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/appointment-scheduler/internal/persistence"
	"github.com/example/appointment-scheduler/internal/scheduler"
)

// DefaultDurationMinutes is the appointment length applied when a start
// time is chosen without an explicit end time.
const DefaultDurationMinutes = 60

// AppointmentService orchestrates validation, conflict detection, and
// persistence for appointment operations. It holds no copy of truth
// beyond a short-lived snapshot used for conflict checks; the injected
// repository is the canonical store.
type AppointmentService struct {
	appointments persistence.AppointmentRepository
	idGenerator  func() string
	now          func() time.Time
	pickColor    func() string
	cache        *snapshotCache
	logger       *slog.Logger
}

// NewAppointmentService wires dependencies for appointment operations.
func NewAppointmentService(appointments persistence.AppointmentRepository, idGenerator func() string, now func() time.Time) *AppointmentService {
	return NewAppointmentServiceWithLogger(appointments, idGenerator, now, nil)
}

// NewAppointmentServiceWithLogger wires dependencies including a base logger.
func NewAppointmentServiceWithLogger(appointments persistence.AppointmentRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AppointmentService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AppointmentService{
		appointments: appointments,
		idGenerator:  idGenerator,
		now:          now,
		pickColor:    randomPaletteColor,
		cache:        newSnapshotCache(5*time.Second, now),
		logger:       defaultLogger(logger),
	}
}

// ListAppointmentsParams narrows appointment listings.
type ListAppointmentsParams struct {
	ParticipantIDs []string
	From           *time.Time
	To             *time.Time
}

// CreateAppointment validates the candidate, rejects it while conflicts
// exist, and persists it with a generated id.
func (s *AppointmentService) CreateAppointment(ctx context.Context, input AppointmentInput) (Appointment, error) {
	if s == nil || s.appointments == nil {
		return Appointment{}, fmt.Errorf("appointment repository not configured")
	}
	logger := serviceLogger(ctx, s.logger, "appointments", "create")

	vErr := &ValidationError{}
	parsed := validateAppointmentCore(input, vErr)
	if vErr.HasErrors() {
		logger.InfoContext(ctx, "appointment rejected", "reason", "validation", "fields", fieldNames(vErr))
		return Appointment{}, vErr
	}

	candidate := scheduler.Appointment{
		Date:         parsed.date,
		Start:        parsed.start,
		End:          parsed.end,
		Participants: uniqueStrings(input.ParticipantIDs),
	}

	conflicts, err := s.detectConflicts(ctx, candidate, "")
	if err != nil {
		return Appointment{}, err
	}
	if len(conflicts) > 0 {
		logger.InfoContext(ctx, "appointment rejected", "reason", "conflict", "conflicts", len(conflicts))
		return Appointment{}, &ConflictError{Conflicts: conflicts}
	}

	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = s.pickColor()
	}

	createdAt := s.now()
	record := persistence.Appointment{
		ID:           s.idGenerator(),
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		Date:         parsed.date,
		StartTime:    parsed.start,
		EndTime:      parsed.end,
		Participants: candidate.Participants,
		Location:     input.Location,
		Color:        color,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}

	if err := s.appointments.CreateAppointment(ctx, record); err != nil {
		return Appointment{}, mapAppointmentRepoError(err)
	}
	s.cache.Invalidate()

	persisted, err := s.appointments.GetAppointment(ctx, record.ID)
	if err != nil {
		return Appointment{}, mapAppointmentRepoError(err)
	}

	logger.InfoContext(ctx, "appointment created", "appointment_id", persisted.ID)
	return toAppointment(persisted), nil
}

// UpdateAppointment validates the candidate against the rest of the
// collection, excluding the appointment's own stored version from
// conflict detection.
func (s *AppointmentService) UpdateAppointment(ctx context.Context, id string, input AppointmentInput) (Appointment, error) {
	if s == nil || s.appointments == nil {
		return Appointment{}, fmt.Errorf("appointment repository not configured")
	}
	logger := serviceLogger(ctx, s.logger, "appointments", "update", "appointment_id", id)

	existing, err := s.appointments.GetAppointment(ctx, id)
	if err != nil {
		return Appointment{}, mapAppointmentRepoError(err)
	}

	vErr := &ValidationError{}
	parsed := validateAppointmentCore(input, vErr)
	if vErr.HasErrors() {
		logger.InfoContext(ctx, "appointment rejected", "reason", "validation", "fields", fieldNames(vErr))
		return Appointment{}, vErr
	}

	candidate := scheduler.Appointment{
		ID:           id,
		Date:         parsed.date,
		Start:        parsed.start,
		End:          parsed.end,
		Participants: uniqueStrings(input.ParticipantIDs),
	}

	conflicts, err := s.detectConflicts(ctx, candidate, id)
	if err != nil {
		return Appointment{}, err
	}
	if len(conflicts) > 0 {
		logger.InfoContext(ctx, "appointment rejected", "reason", "conflict", "conflicts", len(conflicts))
		return Appointment{}, &ConflictError{Conflicts: conflicts}
	}

	updated := existing
	updated.Title = strings.TrimSpace(input.Title)
	updated.Description = input.Description
	updated.Date = parsed.date
	updated.StartTime = parsed.start
	updated.EndTime = parsed.end
	updated.Participants = candidate.Participants
	updated.Location = input.Location
	if color := strings.TrimSpace(input.Color); color != "" {
		updated.Color = color
	}
	updated.UpdatedAt = s.now()

	if err := s.appointments.UpdateAppointment(ctx, updated); err != nil {
		return Appointment{}, mapAppointmentRepoError(err)
	}
	s.cache.Invalidate()

	persisted, err := s.appointments.GetAppointment(ctx, id)
	if err != nil {
		return Appointment{}, mapAppointmentRepoError(err)
	}

	logger.InfoContext(ctx, "appointment updated", "appointment_id", id)
	return toAppointment(persisted), nil
}

// DeleteAppointment removes an appointment. Deleting an id that does not
// exist is not an error: deletion is idempotent.
func (s *AppointmentService) DeleteAppointment(ctx context.Context, id string) error {
	if s == nil || s.appointments == nil {
		return fmt.Errorf("appointment repository not configured")
	}
	logger := serviceLogger(ctx, s.logger, "appointments", "delete", "appointment_id", id)

	if err := s.appointments.DeleteAppointment(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil
		}
		return err
	}
	s.cache.Invalidate()

	logger.InfoContext(ctx, "appointment deleted", "appointment_id", id)
	return nil
}

// GetAppointment retrieves a single appointment by id.
func (s *AppointmentService) GetAppointment(ctx context.Context, id string) (Appointment, error) {
	if s == nil || s.appointments == nil {
		return Appointment{}, fmt.Errorf("appointment repository not configured")
	}

	record, err := s.appointments.GetAppointment(ctx, id)
	if err != nil {
		return Appointment{}, mapAppointmentRepoError(err)
	}
	return toAppointment(record), nil
}

// ListAppointments returns the current collection snapshot, ordered by
// date, start time, then id.
func (s *AppointmentService) ListAppointments(ctx context.Context, params ListAppointmentsParams) ([]Appointment, error) {
	if s == nil || s.appointments == nil {
		return nil, fmt.Errorf("appointment repository not configured")
	}

	records, err := s.appointments.ListAppointments(ctx, persistence.AppointmentFilter{
		ParticipantIDs: params.ParticipantIDs,
		From:           params.From,
		To:             params.To,
	})
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	appointments := make([]Appointment, 0, len(records))
	for _, record := range records {
		appointments = append(appointments, toAppointment(record))
	}
	return appointments, nil
}

// CheckConflicts runs conflict detection for a candidate without
// persisting anything, letting callers preview overlaps while a form is
// being edited. An unparseable candidate yields no conflicts.
func (s *AppointmentService) CheckConflicts(ctx context.Context, input AppointmentInput, excludeID string) ([]scheduler.Conflict, error) {
	if s == nil || s.appointments == nil {
		return nil, fmt.Errorf("appointment repository not configured")
	}

	vErr := &ValidationError{}
	parsed := validateAppointmentCore(input, vErr)
	if vErr.HasErrors() {
		return nil, nil
	}

	candidate := scheduler.Appointment{
		ID:           excludeID,
		Date:         parsed.date,
		Start:        parsed.start,
		End:          parsed.end,
		Participants: uniqueStrings(input.ParticipantIDs),
	}
	return s.detectConflicts(ctx, candidate, excludeID)
}

// ApplyStartTimeChange sets the start time on an input and recomputes
// the end time as start plus one hour, mirroring the form behavior when
// a user picks a new start. Callers that want a different end time set
// it afterwards. The recompute wraps across midnight without touching
// the date; that asymmetry is a deliberate carry-over from the source.
func ApplyStartTimeChange(input AppointmentInput, value string) AppointmentInput {
	input.StartTime = value
	if start, err := scheduler.ParseTimeOfDay(value); err == nil {
		input.EndTime = start.Add(DefaultDurationMinutes).String()
	}
	return input
}

type parsedAppointmentTimes struct {
	date  time.Time
	start scheduler.TimeOfDay
	end   scheduler.TimeOfDay
}

// validateAppointmentCore evaluates every field rule independently and
// returns whatever could be parsed. All applicable errors are reported
// together; nothing short-circuits.
func validateAppointmentCore(input AppointmentInput, vErr *ValidationError) parsedAppointmentTimes {
	var parsed parsedAppointmentTimes
	var haveStart, haveEnd bool

	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "Title is required")
	}

	if strings.TrimSpace(input.Date) == "" {
		vErr.add("date", "Date is required")
	} else {
		date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(input.Date), time.Local)
		if err != nil {
			vErr.add("date", "Date is invalid")
		} else {
			parsed.date = date
		}
	}

	if strings.TrimSpace(input.StartTime) == "" {
		vErr.add("start_time", "Start time is required")
	} else {
		start, err := scheduler.ParseTimeOfDay(strings.TrimSpace(input.StartTime))
		if err != nil {
			vErr.add("start_time", "Start time is invalid")
		} else {
			parsed.start = start
			haveStart = true
		}
	}

	if strings.TrimSpace(input.EndTime) == "" {
		vErr.add("end_time", "End time is required")
	} else {
		end, err := scheduler.ParseTimeOfDay(strings.TrimSpace(input.EndTime))
		if err != nil {
			vErr.add("end_time", "End time is invalid")
		} else {
			parsed.end = end
			haveEnd = true
		}
	}

	if haveStart && haveEnd && !parsed.start.Before(parsed.end) {
		vErr.add("end_time", "End time must be after start time")
	}

	if len(uniqueStrings(input.ParticipantIDs)) == 0 {
		vErr.add("participants", "At least one participant is required")
	}

	return parsed
}

func (s *AppointmentService) detectConflicts(ctx context.Context, candidate scheduler.Appointment, excludeID string) ([]scheduler.Conflict, error) {
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return scheduler.DetectConflicts(snapshot, candidate, excludeID), nil
}

func (s *AppointmentService) snapshot(ctx context.Context) ([]scheduler.Appointment, error) {
	if cached, ok := s.cache.Get(); ok {
		return cached, nil
	}

	records, err := s.appointments.ListAppointments(ctx, persistence.AppointmentFilter{})
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	snapshot := make([]scheduler.Appointment, 0, len(records))
	for _, record := range records {
		snapshot = append(snapshot, toAppointment(record).SchedulerView())
	}
	s.cache.Store(snapshot)
	return snapshot, nil
}

func toAppointment(record persistence.Appointment) Appointment {
	return Appointment{
		ID:             record.ID,
		Title:          record.Title,
		Description:    record.Description,
		Date:           record.Date,
		StartTime:      record.StartTime,
		EndTime:        record.EndTime,
		ParticipantIDs: append([]string(nil), record.Participants...),
		Location:       record.Location,
		Color:          record.Color,
		StartUnix:      record.StartTime.At(record.Date).Unix(),
		EndUnix:        record.EndTime.At(record.Date).Unix(),
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}

func mapAppointmentRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("end_time", "End time must be after start time")
		return vErr
	}
	return err
}

func fieldNames(vErr *ValidationError) []string {
	if vErr == nil {
		return nil
	}
	fields := make([]string, 0, len(vErr.FieldErrors))
	for field := range vErr.FieldErrors {
		fields = append(fields, field)
	}
	return fields
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	return result
}
