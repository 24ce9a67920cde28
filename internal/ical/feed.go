// Package ical renders the appointment collection as an iCalendar feed.
package ical

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
)

const productID = "-//appointment-scheduler//EN"

// Attendee identifies a participant attached to an event.
type Attendee struct {
	Name  string
	Email string
}

// Event is the feed view of a single appointment.
type Event struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	Stamp       time.Time
	Attendees   []Attendee
}

// EncodeFeed renders events as a VCALENDAR document.
func EncodeFeed(events []Event) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, event := range events {
		cal.Children = append(cal.Children, toComponent(event))
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar feed: %w", err)
	}
	return buf.Bytes(), nil
}

func toComponent(event Event) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, event.UID)
	ve.Props.SetText(ical.PropSummary, event.Summary)

	stamp := event.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, event.Start)
	ve.Props.SetDateTime(ical.PropDateTimeEnd, event.End)

	if event.Description != "" {
		ve.Props.SetText(ical.PropDescription, event.Description)
	}
	if event.Location != "" {
		ve.Props.SetText(ical.PropLocation, event.Location)
	}
	for _, attendee := range event.Attendees {
		p := ical.NewProp(ical.PropAttendee)
		if name := strings.TrimSpace(attendee.Name); name != "" {
			p.Params.Set(ical.ParamCommonName, name)
		}
		p.SetText(fmt.Sprintf("mailto:%s", attendee.Email))
		ve.Props.Add(p)
	}
	return ve
}
