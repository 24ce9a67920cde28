package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/appointment-scheduler/internal/application"
	"github.com/example/appointment-scheduler/internal/scheduler"
)

type appointmentService interface {
	CreateAppointment(ctx context.Context, input application.AppointmentInput) (application.Appointment, error)
	UpdateAppointment(ctx context.Context, id string, input application.AppointmentInput) (application.Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
	GetAppointment(ctx context.Context, id string) (application.Appointment, error)
	ListAppointments(ctx context.Context, params application.ListAppointmentsParams) ([]application.Appointment, error)
	CheckConflicts(ctx context.Context, input application.AppointmentInput, excludeID string) ([]scheduler.Conflict, error)
}

type participantResolver interface {
	ResolveParticipant(ctx context.Context, id string) application.Participant
}

type AppointmentHandler struct {
	service   appointmentService
	resolver  participantResolver
	responder responder
	logger    *slog.Logger
}

func NewAppointmentHandler(service appointmentService, resolver participantResolver, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service:   service,
		resolver:  resolver,
		responder: newResponder(logger),
		logger:    defaultLogger(logger),
	}
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	appointment, err := h.service.CreateAppointment(r.Context(), req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, appointmentResponse{
		Appointment: h.toDTO(r.Context(), appointment),
	})
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := AppointmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointmentID)
		return
	}

	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	appointment, err := h.service.UpdateAppointment(r.Context(), id, req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, appointmentResponse{
		Appointment: h.toDTO(r.Context(), appointment),
	})
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := AppointmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointmentID)
		return
	}

	if err := h.service.DeleteAppointment(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := AppointmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointmentID)
		return
	}

	appointment, err := h.service.GetAppointment(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, appointmentResponse{
		Appointment: h.toDTO(r.Context(), appointment),
	})
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	appointments, err := h.service.ListAppointments(r.Context(), buildListParams(r.URL.Query()))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]appointmentDTO, 0, len(appointments))
	for _, appointment := range appointments {
		dtos = append(dtos, h.toDTO(r.Context(), appointment))
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAppointmentsResponse{Appointments: dtos})
}

// CheckConflicts previews double bookings for a candidate without
// persisting it, so forms can warn while the user is still editing.
func (h *AppointmentHandler) CheckConflicts(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req conflictCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	conflicts, err := h.service.CheckConflicts(r.Context(), req.toInput(), strings.TrimSpace(req.ExcludeID))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, conflictCheckResponse{
		Conflicts: toConflictDTOs(conflicts),
	})
}

func (h *AppointmentHandler) toDTO(ctx context.Context, appointment application.Appointment) appointmentDTO {
	dto := appointmentDTO{
		ID:             appointment.ID,
		Title:          appointment.Title,
		Description:    appointment.Description,
		Date:           appointment.Date.Format("2006-01-02"),
		StartTime:      appointment.StartTime.String(),
		EndTime:        appointment.EndTime.String(),
		StartUnix:      appointment.StartUnix,
		EndUnix:        appointment.EndUnix,
		ParticipantIDs: append([]string(nil), appointment.ParticipantIDs...),
		Location:       appointment.Location,
		Color:          appointment.Color,
		CreatedAt:      appointment.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      appointment.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if h.resolver != nil {
		dto.Participants = resolveParticipants(ctx, h.resolver, appointment.ParticipantIDs)
	}
	return dto
}

func resolveParticipants(ctx context.Context, resolver participantResolver, ids []string) []participantSummaryDTO {
	if len(ids) == 0 {
		return nil
	}
	out := make([]participantSummaryDTO, 0, len(ids))
	for _, id := range ids {
		participant := resolver.ResolveParticipant(ctx, id)
		out = append(out, participantSummaryDTO{
			ID:    participant.ID,
			Name:  participant.Name,
			Color: participant.Color,
		})
	}
	return out
}

type appointmentRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Date           string   `json:"date"`
	StartTime      string   `json:"start_time"`
	EndTime        string   `json:"end_time"`
	ParticipantIDs []string `json:"participant_ids"`
	Location       string   `json:"location"`
	Color          string   `json:"color"`
}

func (r appointmentRequest) toInput() application.AppointmentInput {
	return application.AppointmentInput{
		Title:          r.Title,
		Description:    r.Description,
		Date:           strings.TrimSpace(r.Date),
		StartTime:      strings.TrimSpace(r.StartTime),
		EndTime:        strings.TrimSpace(r.EndTime),
		ParticipantIDs: append([]string(nil), r.ParticipantIDs...),
		Location:       r.Location,
		Color:          strings.TrimSpace(r.Color),
	}
}

type conflictCheckRequest struct {
	appointmentRequest
	ExcludeID string `json:"exclude_id"`
}

type appointmentResponse struct {
	Appointment appointmentDTO `json:"appointment"`
}

type listAppointmentsResponse struct {
	Appointments []appointmentDTO `json:"appointments"`
}

type conflictCheckResponse struct {
	Conflicts []conflictDTO `json:"conflicts"`
}

type appointmentDTO struct {
	ID             string                  `json:"id"`
	Title          string                  `json:"title"`
	Description    string                  `json:"description,omitempty"`
	Date           string                  `json:"date"`
	StartTime      string                  `json:"start_time"`
	EndTime        string                  `json:"end_time"`
	StartUnix      int64                   `json:"start_unix"`
	EndUnix        int64                   `json:"end_unix"`
	ParticipantIDs []string                `json:"participant_ids"`
	Participants   []participantSummaryDTO `json:"participants,omitempty"`
	Location       string                  `json:"location,omitempty"`
	Color          string                  `json:"color,omitempty"`
	CreatedAt      string                  `json:"created_at"`
	UpdatedAt      string                  `json:"updated_at"`
}

type participantSummaryDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type conflictDTO struct {
	ParticipantID string `json:"participant_id"`
	AppointmentID string `json:"appointment_id"`
}

func toConflictDTOs(conflicts []scheduler.Conflict) []conflictDTO {
	if len(conflicts) == 0 {
		return nil
	}
	out := make([]conflictDTO, 0, len(conflicts))
	for _, conflict := range conflicts {
		out = append(out, conflictDTO{
			ParticipantID: conflict.ParticipantID,
			AppointmentID: conflict.AppointmentID,
		})
	}
	return out
}

func buildListParams(values url.Values) application.ListAppointmentsParams {
	var params application.ListAppointmentsParams

	if participants := strings.TrimSpace(values.Get("participants")); participants != "" {
		params.ParticipantIDs = parseCSV(participants)
	}

	if from := strings.TrimSpace(values.Get("from")); from != "" {
		if ts, err := time.ParseInLocation("2006-01-02", from, time.Local); err == nil {
			params.From = &ts
		}
	}

	if to := strings.TrimSpace(values.Get("to")); to != "" {
		if ts, err := time.ParseInLocation("2006-01-02", to, time.Local); err == nil {
			params.To = &ts
		}
	}

	return params
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
