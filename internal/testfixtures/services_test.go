package testfixtures

import (
	"context"
	"testing"

	"github.com/example/appointment-scheduler/internal/application"
)

func TestServiceFactoryNewBundle(t *testing.T) {
	factory := NewServiceFactory()
	bundle := factory.NewBundle()

	participant, err := bundle.Participants.CreateParticipant(context.Background(), application.ParticipantInput{
		Name:  "Alice",
		Email: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("CreateParticipant returned error: %v", err)
	}
	if participant.ID != "id-1" {
		t.Fatalf("expected generated ID id-1, got %q", participant.ID)
	}
	if !participant.CreatedAt.Equal(factory.Clock.Current()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Current(), participant.CreatedAt)
	}

	appointment, err := bundle.Appointments.CreateAppointment(context.Background(), application.AppointmentInput{
		Title:          "Kickoff",
		Date:           "2024-06-10",
		StartTime:      "09:00",
		EndTime:        "10:00",
		ParticipantIDs: []string{participant.ID},
	})
	if err != nil {
		t.Fatalf("CreateAppointment returned error: %v", err)
	}
	if appointment.ID != "id-2" {
		t.Fatalf("expected shared generator to continue, got %q", appointment.ID)
	}
}

func TestFixturesAreDeterministicAndDisjoint(t *testing.T) {
	first := NewAppointmentFixture()
	second := NewAppointmentFixture()

	if first.ID == second.ID {
		t.Fatalf("fixtures reused the identifier %q", first.ID)
	}
	if !first.StartTime.Before(first.EndTime) {
		t.Fatalf("fixture window inverted: %s-%s", first.StartTime, first.EndTime)
	}

	record := first.Record()
	if record.ID != first.ID || len(record.Participants) != len(first.Participants) {
		t.Fatalf("record conversion lost data: %+v", record)
	}
}
