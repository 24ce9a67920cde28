package scheduler

import "time"

// Appointment is the minimal view of a booking the engine needs for
// conflict detection and grid bucketing.
type Appointment struct {
	ID           string
	Title        string
	Date         time.Time
	Start        TimeOfDay
	End          TimeOfDay
	Participants []string
	Color        string
}

// Conflict records that a participant already holds an overlapping
// booking. One entry is produced per overlapping appointment, so a
// participant double-booked twice yields two conflicts.
type Conflict struct {
	ParticipantID string
	AppointmentID string
}

// DetectConflicts checks the candidate appointment against the existing
// collection and reports every participant/appointment overlap.
//
// When editing, excludeID carries the candidate's stored id so the
// appointment never conflicts with its own prior version. Conflicts are
// emitted in deterministic order: candidate participants outer, existing
// collection scan inner.
func DetectConflicts(existing []Appointment, candidate Appointment, excludeID string) []Conflict {
	if len(candidate.Participants) == 0 {
		return nil
	}

	var conflicts []Conflict
	for _, participantID := range dedupe(candidate.Participants) {
		for _, appt := range existing {
			if excludeID != "" && appt.ID == excludeID {
				continue
			}
			if !SameDate(appt.Date, candidate.Date) {
				continue
			}
			if !includes(appt.Participants, participantID) {
				continue
			}
			if Overlaps(candidate.Start, candidate.End, appt.Start, appt.End) {
				conflicts = append(conflicts, Conflict{
					ParticipantID: participantID,
					AppointmentID: appt.ID,
				})
			}
		}
	}
	return conflicts
}

func includes(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
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
