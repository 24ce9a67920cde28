// Package http provides HTTP handlers and middleware for the appointment
// scheduler API.
//
// The router exposes the following endpoints:
//   - GET /appointments, POST /appointments, GET /appointments/{id},
//     PUT /appointments/{id}, DELETE /appointments/{id}: appointment
//     management exchanging the `appointmentDTO` payload defined in
//     appointment_handler.go. Creates and updates are refused with
//     409 Conflict while any participant is double-booked.
//   - GET /participants, POST /participants, GET /participants/{id},
//     PUT /participants/{id}, DELETE /participants/{id}: participant
//     directory endpoints exchanging the `participantDTO` payload defined
//     in participant_handler.go. Deleting a participant never cascades to
//     appointments.
//   - GET /calendar/week?date=YYYY-MM-DD: the rendered weekly grid. Each
//     slot carries its appointments, an occupancy flag, and whether a new
//     appointment may be started there.
//   - GET /calendar/feed.ics: the appointment collection as an iCalendar
//     feed.
//
// Request/response DTOs live alongside their respective handlers so tests
// and documentation share the same ground truth.
package http
