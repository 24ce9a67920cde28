package scheduler

import (
	"fmt"
	"time"
)

// TimeGrid defines the bookable slot lattice for a displayed day or week.
//
// Bucketing follows the start-time policy: an appointment is assigned
// only to the slot containing its start time. Occupancy for the
// click-to-create affordance is always judged with the full overlap
// test so that a long appointment blocks slot creation inside its whole
// window even though it renders a single card.
type TimeGrid struct {
	startHour   int
	endHour     int
	slotMinutes int
}

// NewTimeGrid builds a grid covering [startHour:00, endHour:00) at the
// given slot granularity in minutes.
func NewTimeGrid(startHour, endHour, slotMinutes int) (TimeGrid, error) {
	if startHour < 0 || startHour > 23 {
		return TimeGrid{}, fmt.Errorf("scheduler: start hour %d out of range", startHour)
	}
	if endHour < 1 || endHour > 24 || endHour <= startHour {
		return TimeGrid{}, fmt.Errorf("scheduler: end hour %d must be after start hour %d", endHour, startHour)
	}
	if slotMinutes <= 0 || (endHour-startHour)*60%slotMinutes != 0 {
		return TimeGrid{}, fmt.Errorf("scheduler: slot size %dm does not divide the %d-%d range", slotMinutes, startHour, endHour)
	}
	return TimeGrid{startHour: startHour, endHour: endHour, slotMinutes: slotMinutes}, nil
}

// DefaultTimeGrid covers 07:00-19:00 in half-hour slots.
func DefaultTimeGrid() TimeGrid {
	grid, err := NewTimeGrid(7, 19, 30)
	if err != nil {
		panic(err)
	}
	return grid
}

// SlotMinutes returns the slot granularity in minutes.
func (g TimeGrid) SlotMinutes() int {
	return g.slotMinutes
}

// Slots returns the ordered slot start times covering the configured range.
func (g TimeGrid) Slots() []TimeOfDay {
	count := (g.endHour - g.startHour) * 60 / g.slotMinutes
	slots := make([]TimeOfDay, 0, count)
	for i := 0; i < count; i++ {
		slots = append(slots, TimeOfDay(g.startHour*60+i*g.slotMinutes))
	}
	return slots
}

// WeekOf returns the seven consecutive days Monday through Sunday of the
// ISO week containing date.
func WeekOf(date time.Time) [7]time.Time {
	start := DateOnly(date)
	// Go numbers Sunday as 0; shift so Monday anchors the week.
	offset := (int(start.Weekday()) + 6) % 7
	start = start.AddDate(0, 0, -offset)

	var days [7]time.Time
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// SlotBucket holds the appointments assigned to one slot of one day.
type SlotBucket struct {
	Day   time.Time
	Start TimeOfDay
	End   TimeOfDay

	// Appointments carries the start-time policy members in original
	// collection order.
	Appointments []Appointment

	// Occupied reports whether any same-day appointment overlaps the
	// slot window, independent of the rendering policy.
	Occupied bool
}

// BucketDay partitions the collection into the grid's slots for a single
// day.
func (g TimeGrid) BucketDay(appointments []Appointment, day time.Time) []SlotBucket {
	var daily []Appointment
	for _, appt := range appointments {
		if SameDate(appt.Date, day) {
			daily = append(daily, appt)
		}
	}

	slots := g.Slots()
	buckets := make([]SlotBucket, 0, len(slots))
	for _, slotStart := range slots {
		slotEnd := slotStart.Add(g.slotMinutes)
		bucket := SlotBucket{Day: DateOnly(day), Start: slotStart, End: slotEnd}
		for _, appt := range daily {
			if appt.Start >= slotStart && appt.Start < slotEnd {
				bucket.Appointments = append(bucket.Appointments, appt)
			}
			if Overlaps(appt.Start, appt.End, slotStart, slotEnd) {
				bucket.Occupied = true
			}
		}
		buckets = append(buckets, bucket)
	}
	return buckets
}

// BucketWeek partitions the collection across the Monday-start week
// containing date.
func (g TimeGrid) BucketWeek(appointments []Appointment, date time.Time) [][]SlotBucket {
	days := WeekOf(date)
	week := make([][]SlotBucket, 0, len(days))
	for _, day := range days {
		week = append(week, g.BucketDay(appointments, day))
	}
	return week
}

// SlotCards describes how a bucket renders: one full card plus an
// overflow affordance for the remainder.
type SlotCards struct {
	// Card is the first appointment in collection order, nil when the
	// bucket is empty.
	Card *Appointment

	// OverflowCount is the number of additional appointments hidden
	// behind the "see more" affordance.
	OverflowCount int

	// Overflow lists the hidden appointments. Only appointments whose
	// start time falls inside the slot are listed, which under the
	// start-time policy is every remaining bucket member.
	Overflow []Appointment
}

// CardsForSlot resolves the rendering decision for a bucket.
func CardsForSlot(bucket SlotBucket) SlotCards {
	if len(bucket.Appointments) == 0 {
		return SlotCards{}
	}

	card := bucket.Appointments[0]
	cards := SlotCards{Card: &card, OverflowCount: len(bucket.Appointments) - 1}
	for _, appt := range bucket.Appointments[1:] {
		if appt.Start >= bucket.Start && appt.Start < bucket.End {
			cards.Overflow = append(cards.Overflow, appt)
		}
	}
	return cards
}

// CanCreateAt reports whether the slot accepts the create-appointment
// affordance: the slot's date must not be in the past (date-only
// comparison against now) and no appointment may overlap the slot.
func (g TimeGrid) CanCreateAt(now time.Time, bucket SlotBucket) bool {
	if DateOnly(bucket.Day).Before(DateOnly(now)) {
		return false
	}
	return !bucket.Occupied
}
