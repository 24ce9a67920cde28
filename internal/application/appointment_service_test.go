package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/appointment-scheduler/internal/persistence"
	"github.com/example/appointment-scheduler/internal/persistence/memory"
)

func fixedClock(t *testing.T) func() time.Time {
	t.Helper()
	at := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.Local)
	return func() time.Time { return at }
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newTestAppointmentService(t *testing.T) (*AppointmentService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewAppointmentService(store, sequentialIDs("appt"), fixedClock(t))
	return svc, store
}

func validInput() AppointmentInput {
	return AppointmentInput{
		Title:          "Team Sync",
		Date:           "2024-06-10",
		StartTime:      "09:00",
		EndTime:        "10:00",
		ParticipantIDs: []string{"alice"},
	}
}

func TestCreateAppointmentValidationMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input AppointmentInput
		want  map[string]string
	}{
		{
			name:  "all fields missing",
			input: AppointmentInput{},
			want: map[string]string{
				"title":        "Title is required",
				"date":         "Date is required",
				"start_time":   "Start time is required",
				"end_time":     "End time is required",
				"participants": "At least one participant is required",
			},
		},
		{
			name: "end before start",
			input: AppointmentInput{
				Title:          "Standup",
				Date:           "2024-06-10",
				StartTime:      "09:00",
				EndTime:        "08:00",
				ParticipantIDs: []string{"alice"},
			},
			want: map[string]string{"end_time": "End time must be after start time"},
		},
		{
			name: "end equals start",
			input: AppointmentInput{
				Title:          "Standup",
				Date:           "2024-06-10",
				StartTime:      "09:00",
				EndTime:        "09:00",
				ParticipantIDs: []string{"alice"},
			},
			want: map[string]string{"end_time": "End time must be after start time"},
		},
		{
			name: "mixed missing and misordered fields",
			input: AppointmentInput{
				Title:     "",
				Date:      "",
				StartTime: "09:00",
				EndTime:   "08:00",
			},
			want: map[string]string{
				"title":        "Title is required",
				"date":         "Date is required",
				"end_time":     "End time must be after start time",
				"participants": "At least one participant is required",
			},
		},
		{
			name: "missing end time does not trigger ordering message",
			input: AppointmentInput{
				Title:          "Standup",
				Date:           "2024-06-10",
				StartTime:      "09:00",
				ParticipantIDs: []string{"alice"},
			},
			want: map[string]string{"end_time": "End time is required"},
		},
		{
			name: "whitespace only title",
			input: AppointmentInput{
				Title:          "   ",
				Date:           "2024-06-10",
				StartTime:      "09:00",
				EndTime:        "10:00",
				ParticipantIDs: []string{"alice"},
			},
			want: map[string]string{"title": "Title is required"},
		},
		{
			name: "blank participant entries are ignored",
			input: AppointmentInput{
				Title:          "Standup",
				Date:           "2024-06-10",
				StartTime:      "09:00",
				EndTime:        "10:00",
				ParticipantIDs: []string{"", "  "},
			},
			want: map[string]string{"participants": "At least one participant is required"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, _ := newTestAppointmentService(t)
			_, err := svc.CreateAppointment(context.Background(), tt.input)

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(vErr.FieldErrors) != len(tt.want) {
				t.Fatalf("expected %d field errors, got %v", len(tt.want), vErr.FieldErrors)
			}
			for field, message := range tt.want {
				if got := vErr.FieldErrors[field]; got != message {
					t.Errorf("field %q: got %q, want %q", field, got, message)
				}
			}
		})
	}
}

func TestCreateAppointmentPersistsAndReturnsRecord(t *testing.T) {
	t.Parallel()

	svc, store := newTestAppointmentService(t)

	created, err := svc.CreateAppointment(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}
	if created.ID != "appt-1" {
		t.Errorf("expected generated id appt-1, got %q", created.ID)
	}
	if created.Color == "" {
		t.Error("expected a palette color to be assigned")
	}
	if created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Errorf("expected matching creation timestamps, got %v and %v", created.CreatedAt, created.UpdatedAt)
	}
	if created.StartUnix >= created.EndUnix {
		t.Errorf("expected StartUnix < EndUnix, got %d and %d", created.StartUnix, created.EndUnix)
	}

	stored, err := store.GetAppointment(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("stored appointment missing: %v", err)
	}
	if stored.Title != "Team Sync" {
		t.Errorf("stored title %q", stored.Title)
	}
}

func TestCreateAppointmentRejectsOverlap(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAppointmentService(t)
	ctx := context.Background()

	if _, err := svc.CreateAppointment(ctx, validInput()); err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	overlap := validInput()
	overlap.Title = "Review"
	overlap.StartTime = "09:30"
	overlap.EndTime = "10:30"

	_, err := svc.CreateAppointment(ctx, overlap)
	var cErr *ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if len(cErr.Conflicts) != 1 {
		t.Fatalf("expected one conflict, got %d", len(cErr.Conflicts))
	}
	if cErr.Conflicts[0].ParticipantID != "alice" || cErr.Conflicts[0].AppointmentID != "appt-1" {
		t.Errorf("unexpected conflict %+v", cErr.Conflicts[0])
	}
}

func TestCreateAppointmentAllowsTouchingIntervals(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAppointmentService(t)
	ctx := context.Background()

	if _, err := svc.CreateAppointment(ctx, validInput()); err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	adjacent := validInput()
	adjacent.Title = "Follow-up"
	adjacent.StartTime = "10:00"
	adjacent.EndTime = "11:00"

	if _, err := svc.CreateAppointment(ctx, adjacent); err != nil {
		t.Fatalf("back-to-back appointment should be allowed: %v", err)
	}
}

func TestCreateAppointmentAllowsDisjointParticipants(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAppointmentService(t)
	ctx := context.Background()

	if _, err := svc.CreateAppointment(ctx, validInput()); err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	other := validInput()
	other.Title = "1:1"
	other.ParticipantIDs = []string{"bob"}

	if _, err := svc.CreateAppointment(ctx, other); err != nil {
		t.Fatalf("same slot with disjoint participants should be allowed: %v", err)
	}
}

func TestUpdateAppointmentExcludesOwnInterval(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAppointmentService(t)
	ctx := context.Background()

	created, err := svc.CreateAppointment(ctx, validInput())
	if err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	// Shifting the appointment within its own window must not conflict
	// with its stored version.
	shifted := validInput()
	shifted.StartTime = "09:30"
	shifted.EndTime = "10:30"

	updated, err := svc.UpdateAppointment(ctx, created.ID, shifted)
	if err != nil {
		t.Fatalf("UpdateAppointment: %v", err)
	}
	if updated.StartTime.String() != "09:30" {
		t.Errorf("start time not updated: %s", updated.StartTime)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt changed on update: %v vs %v", updated.CreatedAt, created.CreatedAt)
	}
}

func TestUpdateAppointmentStillConflictsWithOthers(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAppointmentService(t)
	ctx := context.Background()

	if _, err := svc.CreateAppointment(ctx, validInput()); err != nil {
		t.Fatalf("seed first: %v", err)
	}

	second := validInput()
	second.Title = "Planning"
	second.StartTime = "11:00"
	second.EndTime = "12:00"
	created, err := svc.CreateAppointment(ctx, second)
	if err != nil {
		t.Fatalf("seed second: %v", err)
	}

	moved := second
	moved.StartTime = "09:30"
	moved.EndTime = "10:30"

	_, err = svc.UpdateAppointment(ctx, created.ID, moved)
	var cErr *ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected conflict against the other appointment, got %v", err)
	}
}

func TestUpdateAppointmentNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAppointmentService(t)

	_, err := svc.UpdateAppointment(context.Background(), "missing", validInput())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAppointmentIsIdempotent(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAppointmentService(t)
	ctx := context.Background()

	created, err := svc.CreateAppointment(ctx, validInput())
	if err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	if err := svc.DeleteAppointment(ctx, created.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.DeleteAppointment(ctx, created.ID); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if _, err := svc.GetAppointment(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteAppointmentFreesSlotForNewBooking(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAppointmentService(t)
	ctx := context.Background()

	created, err := svc.CreateAppointment(ctx, validInput())
	if err != nil {
		t.Fatalf("seed appointment: %v", err)
	}
	if err := svc.DeleteAppointment(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// The cache is invalidated on delete, so the same slot books again.
	replacement := validInput()
	replacement.Title = "Replacement"
	if _, err := svc.CreateAppointment(ctx, replacement); err != nil {
		t.Fatalf("slot should be free after delete: %v", err)
	}
}

func TestCheckConflictsPreviewsWithoutPersisting(t *testing.T) {
	t.Parallel()

	svc, store := newTestAppointmentService(t)
	ctx := context.Background()

	if _, err := svc.CreateAppointment(ctx, validInput()); err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	overlap := validInput()
	overlap.StartTime = "09:15"
	overlap.EndTime = "09:45"

	conflicts, err := svc.CheckConflicts(ctx, overlap, "")
	if err != nil {
		t.Fatalf("CheckConflicts: %v", err)
	}
	if len(conflicts) != 1 {
		t.Fatalf("expected one conflict, got %d", len(conflicts))
	}

	all, err := store.ListAppointments(ctx, persistence.AppointmentFilter{})
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("preview must not persist anything, store has %d records", len(all))
	}
}

func TestApplyStartTimeChangeDerivesEndTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		start   string
		wantEnd string
	}{
		{name: "afternoon", start: "14:00", wantEnd: "15:00"},
		{name: "late evening wraps", start: "23:30", wantEnd: "00:30"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			input := ApplyStartTimeChange(AppointmentInput{}, tt.start)
			if input.StartTime != tt.start {
				t.Errorf("start time %q", input.StartTime)
			}
			if input.EndTime != tt.wantEnd {
				t.Errorf("derived end time %q, want %q", input.EndTime, tt.wantEnd)
			}
		})
	}
}

func TestApplyStartTimeChangeLeavesEndOnBadStart(t *testing.T) {
	t.Parallel()

	input := ApplyStartTimeChange(AppointmentInput{EndTime: "10:00"}, "garbage")
	if input.EndTime != "10:00" {
		t.Errorf("end time should be untouched, got %q", input.EndTime)
	}
}

func TestCreateAppointmentDeduplicatesParticipants(t *testing.T) {
	t.Parallel()

	svc, _ := newTestAppointmentService(t)

	input := validInput()
	input.ParticipantIDs = []string{"alice", "alice", " alice "}

	created, err := svc.CreateAppointment(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}
	if len(created.ParticipantIDs) != 1 {
		t.Fatalf("expected deduped participants, got %v", created.ParticipantIDs)
	}
}
