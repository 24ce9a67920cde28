package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/appointment-scheduler/internal/persistence"
	"github.com/example/appointment-scheduler/internal/scheduler"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return parsed
}

func appointmentRecord(t *testing.T, id, date string, start, end int, participants ...string) persistence.Appointment {
	t.Helper()
	return persistence.Appointment{
		ID:           id,
		Title:        "Appointment " + id,
		Date:         day(t, date),
		StartTime:    scheduler.TimeOfDay(start),
		EndTime:      scheduler.TimeOfDay(end),
		Participants: participants,
		Color:        "#6366f1",
	}
}

func TestStoreAppointmentRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewStore()
	ctx := context.Background()

	record := appointmentRecord(t, "a1", "2024-06-10", 9*60, 10*60, "alice")
	if err := store.CreateAppointment(ctx, record); err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}

	stored, err := store.GetAppointment(ctx, "a1")
	if err != nil {
		t.Fatalf("GetAppointment: %v", err)
	}
	if stored.Title != record.Title || len(stored.Participants) != 1 {
		t.Errorf("stored %+v", stored)
	}

	// Mutating the returned copy must not leak into the store.
	stored.Participants[0] = "mallory"
	again, err := store.GetAppointment(ctx, "a1")
	if err != nil {
		t.Fatalf("GetAppointment: %v", err)
	}
	if again.Participants[0] != "alice" {
		t.Errorf("store leaked internal state: %v", again.Participants)
	}
}

func TestStoreRejectsDuplicateAndInvertedWindows(t *testing.T) {
	t.Parallel()

	store := NewStore()
	ctx := context.Background()

	record := appointmentRecord(t, "a1", "2024-06-10", 9*60, 10*60, "alice")
	if err := store.CreateAppointment(ctx, record); err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}
	if err := store.CreateAppointment(ctx, record); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	inverted := appointmentRecord(t, "a2", "2024-06-10", 10*60, 9*60, "alice")
	if err := store.CreateAppointment(ctx, inverted); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestStoreListOrderingAndFilters(t *testing.T) {
	t.Parallel()

	store := NewStore()
	ctx := context.Background()

	later := appointmentRecord(t, "a1", "2024-06-12", 9*60, 10*60, "bob")
	earlier := appointmentRecord(t, "a2", "2024-06-10", 14*60, 15*60, "alice")
	sameDay := appointmentRecord(t, "a3", "2024-06-10", 9*60, 10*60, "alice")

	for _, record := range []persistence.Appointment{later, earlier, sameDay} {
		if err := store.CreateAppointment(ctx, record); err != nil {
			t.Fatalf("CreateAppointment %s: %v", record.ID, err)
		}
	}

	listed, err := store.ListAppointments(ctx, persistence.AppointmentFilter{})
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 records, got %d", len(listed))
	}
	if listed[0].ID != "a3" || listed[1].ID != "a2" || listed[2].ID != "a1" {
		t.Errorf("ordering: %s %s %s", listed[0].ID, listed[1].ID, listed[2].ID)
	}

	from := day(t, "2024-06-11")
	ranged, err := store.ListAppointments(ctx, persistence.AppointmentFilter{From: &from})
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if len(ranged) != 1 || ranged[0].ID != "a1" {
		t.Errorf("range filter: %+v", ranged)
	}

	byParticipant, err := store.ListAppointments(ctx, persistence.AppointmentFilter{ParticipantIDs: []string{"bob"}})
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if len(byParticipant) != 1 || byParticipant[0].ID != "a1" {
		t.Errorf("participant filter: %+v", byParticipant)
	}
}

func TestStoreParticipantLifecycle(t *testing.T) {
	t.Parallel()

	store := NewStore()
	ctx := context.Background()

	participant := persistence.Participant{ID: "p1", Name: "Alice", Email: "alice@example.com", Color: "#ec4899"}
	if err := store.CreateParticipant(ctx, participant); err != nil {
		t.Fatalf("CreateParticipant: %v", err)
	}

	participant.Name = "Alicia"
	if err := store.UpdateParticipant(ctx, participant); err != nil {
		t.Fatalf("UpdateParticipant: %v", err)
	}

	stored, err := store.GetParticipant(ctx, "p1")
	if err != nil {
		t.Fatalf("GetParticipant: %v", err)
	}
	if stored.Name != "Alicia" {
		t.Errorf("name %q", stored.Name)
	}

	if err := store.DeleteParticipant(ctx, "p1"); err != nil {
		t.Fatalf("DeleteParticipant: %v", err)
	}
	if err := store.DeleteParticipant(ctx, "p1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
