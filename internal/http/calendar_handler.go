package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/appointment-scheduler/internal/application"
	"github.com/example/appointment-scheduler/internal/ical"
	"github.com/example/appointment-scheduler/internal/scheduler"
)

// CalendarHandler renders the appointment collection as a weekly grid
// and as an iCalendar feed.
type CalendarHandler struct {
	appointments appointmentService
	resolver     participantResolver
	grid         scheduler.TimeGrid
	now          func() time.Time
	responder    responder
	logger       *slog.Logger
}

func NewCalendarHandler(appointments appointmentService, resolver participantResolver, grid scheduler.TimeGrid, now func() time.Time, logger *slog.Logger) *CalendarHandler {
	if now == nil {
		now = time.Now
	}
	return &CalendarHandler{
		appointments: appointments,
		resolver:     resolver,
		grid:         grid,
		now:          now,
		responder:    newResponder(logger),
		logger:       defaultLogger(logger),
	}
}

// Week serves the bucketed grid for the week containing the `date`
// query parameter, defaulting to the current week. The grid is
// recomputed from the stored collection on every request.
func (h *CalendarHandler) Week(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.appointments == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reference := h.now()
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDateParam)
			return
		}
		reference = parsed
	}

	days := scheduler.WeekOf(reference)
	from := days[0]
	to := days[len(days)-1]

	records, err := h.appointments.ListAppointments(r.Context(), application.ListAppointmentsParams{
		From: &from,
		To:   &to,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	views := make([]scheduler.Appointment, 0, len(records))
	byID := make(map[string]application.Appointment, len(records))
	for _, record := range records {
		views = append(views, record.SchedulerView())
		byID[record.ID] = record
	}

	buckets := h.grid.BucketWeek(views, reference)
	now := h.now()

	response := weekResponse{
		WeekStart:   from.Format("2006-01-02"),
		SlotMinutes: h.grid.SlotMinutes(),
		Days:        make([]weekDayDTO, 0, len(days)),
	}
	for i, day := range days {
		dayDTO := weekDayDTO{
			Date:  day.Format("2006-01-02"),
			Slots: make([]weekSlotDTO, 0, len(buckets[i])),
		}
		for _, bucket := range buckets[i] {
			dayDTO.Slots = append(dayDTO.Slots, h.toSlotDTO(r.Context(), bucket, byID, now))
		}
		response.Days = append(response.Days, dayDTO)
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, response)
}

// Feed serves the whole collection as an iCalendar document.
func (h *CalendarHandler) Feed(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.appointments == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	records, err := h.appointments.ListAppointments(r.Context(), application.ListAppointmentsParams{})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	events := make([]ical.Event, 0, len(records))
	for _, record := range records {
		event := ical.Event{
			UID:         record.ID,
			Summary:     record.Title,
			Description: record.Description,
			Location:    record.Location,
			Start:       record.StartTime.At(record.Date),
			End:         record.EndTime.At(record.Date),
			Stamp:       record.UpdatedAt,
		}
		if h.resolver != nil {
			for _, id := range record.ParticipantIDs {
				participant := h.resolver.ResolveParticipant(r.Context(), id)
				event.Attendees = append(event.Attendees, ical.Attendee{
					Name:  participant.Name,
					Email: participant.Email,
				})
			}
		}
		events = append(events, event)
	}

	payload, err := ical.EncodeFeed(events)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="appointments.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		handlerLogger(r.Context(), h.logger, "calendar", "feed").ErrorContext(r.Context(), "failed to write feed", "error", err)
	}
}

func (h *CalendarHandler) toSlotDTO(ctx context.Context, bucket scheduler.SlotBucket, byID map[string]application.Appointment, now time.Time) weekSlotDTO {
	cards := scheduler.CardsForSlot(bucket)

	dto := weekSlotDTO{
		Start:     bucket.Start.String(),
		End:       bucket.End.String(),
		Occupied:  bucket.Occupied,
		CanCreate: h.grid.CanCreateAt(now, bucket),
	}

	if cards.Card != nil {
		card := h.toCardDTO(ctx, *cards.Card, byID)
		dto.Card = &card
	}
	dto.OverflowCount = cards.OverflowCount
	for _, overflow := range cards.Overflow {
		dto.Overflow = append(dto.Overflow, h.toCardDTO(ctx, overflow, byID))
	}

	return dto
}

func (h *CalendarHandler) toCardDTO(ctx context.Context, view scheduler.Appointment, byID map[string]application.Appointment) appointmentCardDTO {
	dto := appointmentCardDTO{
		ID:        view.ID,
		Title:     view.Title,
		StartTime: view.Start.String(),
		EndTime:   view.End.String(),
		Color:     view.Color,
	}
	if record, ok := byID[view.ID]; ok && h.resolver != nil {
		dto.Participants = resolveParticipants(ctx, h.resolver, record.ParticipantIDs)
	}
	return dto
}

type weekResponse struct {
	WeekStart   string       `json:"week_start"`
	SlotMinutes int          `json:"slot_minutes"`
	Days        []weekDayDTO `json:"days"`
}

type weekDayDTO struct {
	Date  string        `json:"date"`
	Slots []weekSlotDTO `json:"slots"`
}

type weekSlotDTO struct {
	Start         string               `json:"start"`
	End           string               `json:"end"`
	Occupied      bool                 `json:"occupied"`
	CanCreate     bool                 `json:"can_create"`
	Card          *appointmentCardDTO  `json:"card,omitempty"`
	OverflowCount int                  `json:"overflow_count,omitempty"`
	Overflow      []appointmentCardDTO `json:"overflow,omitempty"`
}

type appointmentCardDTO struct {
	ID           string                  `json:"id"`
	Title        string                  `json:"title"`
	StartTime    string                  `json:"start_time"`
	EndTime      string                  `json:"end_time"`
	Color        string                  `json:"color,omitempty"`
	Participants []participantSummaryDTO `json:"participants,omitempty"`
}
