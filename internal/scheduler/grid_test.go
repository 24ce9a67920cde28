package scheduler

import (
	"testing"
	"time"
)

func TestNewTimeGridValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewTimeGrid(19, 7, 30); err == nil {
		t.Error("expected error when end hour precedes start hour")
	}
	if _, err := NewTimeGrid(7, 19, 25); err == nil {
		t.Error("expected error when slot size does not divide the range")
	}
	if _, err := NewTimeGrid(7, 19, 30); err != nil {
		t.Errorf("unexpected error for default configuration: %v", err)
	}
}

func TestSlotsCoverConfiguredRange(t *testing.T) {
	t.Parallel()

	grid := DefaultTimeGrid()
	slots := grid.Slots()

	if len(slots) != 24 {
		t.Fatalf("expected 24 half-hour slots between 07:00 and 19:00, got %d", len(slots))
	}
	if slots[0].String() != "07:00" {
		t.Errorf("first slot = %s, want 07:00", slots[0])
	}
	if slots[len(slots)-1].String() != "18:30" {
		t.Errorf("last slot = %s, want 18:30", slots[len(slots)-1])
	}
}

func TestWeekOfStartsMonday(t *testing.T) {
	t.Parallel()

	// 2024-06-12 is a Wednesday.
	days := WeekOf(time.Date(2024, 6, 12, 15, 4, 0, 0, time.Local))

	if got := days[0].Format("2006-01-02"); got != "2024-06-10" {
		t.Errorf("week start = %s, want 2024-06-10", got)
	}
	if days[0].Weekday() != time.Monday {
		t.Errorf("week must start on Monday, got %s", days[0].Weekday())
	}
	if got := days[6].Format("2006-01-02"); got != "2024-06-16" {
		t.Errorf("week end = %s, want 2024-06-16", got)
	}
	for i := 1; i < len(days); i++ {
		if !days[i].Equal(days[i-1].AddDate(0, 0, 1)) {
			t.Fatalf("days must be consecutive, got %v", days)
		}
	}
}

func TestBucketDayStartTimePolicy(t *testing.T) {
	t.Parallel()

	grid := DefaultTimeGrid()
	day := date(t, "2024-06-10")
	appointments := []Appointment{
		appointment(t, "a1", "2024-06-10", "09:00", "09:30", "p1"),
		appointment(t, "a2", "2024-06-10", "10:00", "10:30", "p1"),
		appointment(t, "a3", "2024-06-10", "11:00", "11:30", "p2"),
		appointment(t, "other-day", "2024-06-11", "09:00", "09:30", "p1"),
	}

	buckets := grid.BucketDay(appointments, day)

	placements := 0
	for _, bucket := range buckets {
		placements += len(bucket.Appointments)
	}
	if placements != 3 {
		t.Fatalf("each same-day appointment must land in exactly one slot, got %d placements", placements)
	}

	for _, bucket := range buckets {
		for _, appt := range bucket.Appointments {
			if appt.Start < bucket.Start || appt.Start >= bucket.End {
				t.Errorf("appointment %s placed outside its start slot [%s,%s)", appt.ID, bucket.Start, bucket.End)
			}
		}
	}
}

func TestBucketDayOccupancyUsesFullOverlap(t *testing.T) {
	t.Parallel()

	grid := DefaultTimeGrid()
	day := date(t, "2024-06-10")
	// A two-hour appointment renders one card but blocks four slots.
	appointments := []Appointment{
		appointment(t, "long", "2024-06-10", "09:00", "11:00", "p1"),
	}

	buckets := grid.BucketDay(appointments, day)

	byStart := make(map[string]SlotBucket, len(buckets))
	for _, bucket := range buckets {
		byStart[bucket.Start.String()] = bucket
	}

	if got := byStart["09:00"]; len(got.Appointments) != 1 || !got.Occupied {
		t.Errorf("09:00 slot should carry the card and be occupied, got %+v", got)
	}
	for _, slot := range []string{"09:30", "10:00", "10:30"} {
		got := byStart[slot]
		if len(got.Appointments) != 0 {
			t.Errorf("%s slot must not render a card under the start-time policy", slot)
		}
		if !got.Occupied {
			t.Errorf("%s slot must be occupied via the full overlap test", slot)
		}
	}
	if got := byStart["11:00"]; got.Occupied {
		t.Errorf("11:00 slot touches the appointment end and must stay free, got %+v", got)
	}
}

func TestCardsForSlotOverflow(t *testing.T) {
	t.Parallel()

	grid := DefaultTimeGrid()
	day := date(t, "2024-06-10")
	appointments := []Appointment{
		appointment(t, "first", "2024-06-10", "09:00", "10:00", "p1"),
		appointment(t, "second", "2024-06-10", "09:00", "09:30", "p2"),
		appointment(t, "third", "2024-06-10", "09:15", "09:45", "p3"),
	}

	buckets := grid.BucketDay(appointments, day)
	var nineAM SlotBucket
	for _, bucket := range buckets {
		if bucket.Start.String() == "09:00" {
			nineAM = bucket
		}
	}

	cards := CardsForSlot(nineAM)
	if cards.Card == nil || cards.Card.ID != "first" {
		t.Fatalf("card must be the first appointment in collection order, got %+v", cards.Card)
	}
	if cards.OverflowCount != 2 {
		t.Errorf("overflow count = %d, want 2", cards.OverflowCount)
	}
	if len(cards.Overflow) != 2 {
		t.Errorf("overflow listing = %v, want the two remaining slot starters", cards.Overflow)
	}

	if empty := CardsForSlot(SlotBucket{}); empty.Card != nil || empty.OverflowCount != 0 {
		t.Errorf("empty bucket must produce no cards, got %+v", empty)
	}
}

func TestCanCreateAtRefusesPastDates(t *testing.T) {
	t.Parallel()

	grid := DefaultTimeGrid()
	now := time.Date(2024, 6, 10, 8, 30, 0, 0, time.Local)

	yesterday := SlotBucket{Day: date(t, "2024-06-09"), Start: tod(t, "09:00"), End: tod(t, "09:30")}
	if grid.CanCreateAt(now, yesterday) {
		t.Error("slots on past dates must refuse creation")
	}

	// Earlier the same day is still allowed; only whole past dates are
	// guarded.
	earlierToday := SlotBucket{Day: date(t, "2024-06-10"), Start: tod(t, "07:00"), End: tod(t, "07:30")}
	if !grid.CanCreateAt(now, earlierToday) {
		t.Error("empty slots on the current date must allow creation")
	}

	tomorrow := SlotBucket{Day: date(t, "2024-06-11"), Start: tod(t, "09:00"), End: tod(t, "09:30")}
	if !grid.CanCreateAt(now, tomorrow) {
		t.Error("empty future slots must allow creation")
	}

	occupied := SlotBucket{Day: date(t, "2024-06-11"), Start: tod(t, "09:00"), End: tod(t, "09:30"), Occupied: true}
	if grid.CanCreateAt(now, occupied) {
		t.Error("occupied slots must refuse creation")
	}
}
