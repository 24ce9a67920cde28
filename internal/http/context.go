package http

import (
	"context"
	"log/slog"

	"github.com/example/appointment-scheduler/internal/logging"
)

type contextKey string

const (
	appointmentIDContextKey contextKey = "appointment_id"
	participantIDContextKey contextKey = "participant_id"
)

// ContextWithAppointmentID injects the appointment identifier resolved
// from the request path.
func ContextWithAppointmentID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, appointmentIDContextKey, id)
}

// AppointmentIDFromContext extracts an appointment identifier previously
// associated with the context.
func AppointmentIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(appointmentIDContextKey).(string)
	return id, ok
}

// ContextWithParticipantID injects the participant identifier resolved
// from the request path.
func ContextWithParticipantID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, participantIDContextKey, id)
}

// ParticipantIDFromContext extracts a participant identifier previously
// associated with the context.
func ParticipantIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(participantIDContextKey).(string)
	return id, ok
}

// ContextWithLogger attaches a request scoped logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts the request scoped logger if one is attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
