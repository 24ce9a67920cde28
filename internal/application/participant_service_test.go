package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/appointment-scheduler/internal/persistence/memory"
)

func newTestParticipantService(t *testing.T) (*ParticipantService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewParticipantService(store, sequentialIDs("part"), fixedClock(t))
	return svc, store
}

func TestCreateParticipantValidationMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input ParticipantInput
		want  map[string]string
	}{
		{
			name:  "all fields missing",
			input: ParticipantInput{},
			want: map[string]string{
				"name":  "Name is required",
				"email": "Email is required",
			},
		},
		{
			name:  "invalid email",
			input: ParticipantInput{Name: "Alice", Email: "not-an-email"},
			want:  map[string]string{"email": "Email is invalid"},
		},
		{
			name:  "email without domain dot",
			input: ParticipantInput{Name: "Alice", Email: "alice@example"},
			want:  map[string]string{"email": "Email is invalid"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, _ := newTestParticipantService(t)
			_, err := svc.CreateParticipant(context.Background(), tt.input)

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

func TestCreateParticipantAssignsPaletteColor(t *testing.T) {
	t.Parallel()

	svc, _ := newTestParticipantService(t)

	created, err := svc.CreateParticipant(context.Background(), ParticipantInput{
		Name:  "Alice",
		Email: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("CreateParticipant: %v", err)
	}

	found := false
	for _, color := range Palette {
		if created.Color == color {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("assigned color %q is not from the palette", created.Color)
	}
}

func TestCreateParticipantKeepsExplicitColor(t *testing.T) {
	t.Parallel()

	svc, _ := newTestParticipantService(t)

	created, err := svc.CreateParticipant(context.Background(), ParticipantInput{
		Name:  "Alice",
		Email: "alice@example.com",
		Color: "#123456",
	})
	if err != nil {
		t.Fatalf("CreateParticipant: %v", err)
	}
	if created.Color != "#123456" {
		t.Errorf("explicit color overwritten: %q", created.Color)
	}
}

func TestUpdateParticipantNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestParticipantService(t)

	_, err := svc.UpdateParticipant(context.Background(), "missing", ParticipantInput{
		Name:  "Alice",
		Email: "alice@example.com",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteParticipantIsIdempotent(t *testing.T) {
	t.Parallel()

	svc, _ := newTestParticipantService(t)
	ctx := context.Background()

	created, err := svc.CreateParticipant(ctx, ParticipantInput{
		Name:  "Alice",
		Email: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("CreateParticipant: %v", err)
	}

	if err := svc.DeleteParticipant(ctx, created.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.DeleteParticipant(ctx, created.ID); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
}

func TestResolveParticipantReturnsStoredRecord(t *testing.T) {
	t.Parallel()

	svc, _ := newTestParticipantService(t)
	ctx := context.Background()

	created, err := svc.CreateParticipant(ctx, ParticipantInput{
		Name:  "Alice",
		Email: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("CreateParticipant: %v", err)
	}

	resolved := svc.ResolveParticipant(ctx, created.ID)
	if resolved.Name != "Alice" {
		t.Errorf("resolved name %q", resolved.Name)
	}
}

func TestResolveParticipantSubstitutesPlaceholderForDanglingRef(t *testing.T) {
	t.Parallel()

	svc, _ := newTestParticipantService(t)

	resolved := svc.ResolveParticipant(context.Background(), "ghost")
	if resolved.ID != "ghost" {
		t.Errorf("placeholder keeps the requested id, got %q", resolved.ID)
	}
	if resolved.Name != UnknownParticipantName {
		t.Errorf("placeholder name %q, want %q", resolved.Name, UnknownParticipantName)
	}
	if resolved.Color != UnknownParticipantColor {
		t.Errorf("placeholder color %q, want %q", resolved.Color, UnknownParticipantColor)
	}
}

func TestDeleteParticipantLeavesAppointmentsIntact(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	participants := NewParticipantService(store, sequentialIDs("part"), fixedClock(t))
	appointments := NewAppointmentService(store, sequentialIDs("appt"), fixedClock(t))
	ctx := context.Background()

	alice, err := participants.CreateParticipant(ctx, ParticipantInput{
		Name:  "Alice",
		Email: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("CreateParticipant: %v", err)
	}

	input := validInput()
	input.ParticipantIDs = []string{alice.ID}
	created, err := appointments.CreateAppointment(ctx, input)
	if err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}

	if err := participants.DeleteParticipant(ctx, alice.ID); err != nil {
		t.Fatalf("DeleteParticipant: %v", err)
	}

	after, err := appointments.GetAppointment(ctx, created.ID)
	if err != nil {
		t.Fatalf("appointment should survive participant deletion: %v", err)
	}
	if len(after.ParticipantIDs) != 1 || after.ParticipantIDs[0] != alice.ID {
		t.Errorf("dangling reference should be retained, got %v", after.ParticipantIDs)
	}

	resolved := participants.ResolveParticipant(ctx, alice.ID)
	if resolved.Name != UnknownParticipantName {
		t.Errorf("deleted participant should resolve to placeholder, got %q", resolved.Name)
	}
}
