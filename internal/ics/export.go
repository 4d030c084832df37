// Package ics renders appointments as iCalendar payloads for the device's
// native calendar.
package ics

import (
	"fmt"
	"regexp"

	ical "github.com/arran4/golang-ical"

	"bishopric/backend/internal/domain"
)

var uidSanitizer = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// BuildAppointmentCalendar renders one appointment as a single-event
// VCALENDAR. Times are written as floating local datetimes on purpose: the
// appointment's date and minutes are naive wall-clock values, so the event
// must land at that wall-clock time whatever timezone the importing calendar
// is in.
func BuildAppointmentCalendar(appt domain.Appointment, personName, typeLabel string) (string, error) {
	start, err := icsLocalDateTime(appt.LocalDate, appt.MinutesFromMidnight)
	if err != nil {
		return "", err
	}
	dur := appt.DurationMinutes
	if dur == 0 {
		dur = domain.DefaultAppointmentDuration
	}
	end, err := icsLocalDateTime(appt.LocalDate, appt.MinutesFromMidnight+dur)
	if err != nil {
		return "", err
	}

	if typeLabel == "" {
		typeLabel = "Interview"
	}

	cal := ical.NewCalendar()
	cal.SetProductId("-//Bishopric App//EN")
	cal.SetCalscale("GREGORIAN")
	cal.SetXWRCalName("Bishopric Interviews")

	uid := fmt.Sprintf("%s@bishopric-app", uidSanitizer.ReplaceAllString(appt.ID, "-"))
	event := cal.AddEvent(uid)
	event.SetProperty(ical.ComponentPropertyDtStart, start)
	event.SetProperty(ical.ComponentPropertyDtEnd, end)
	event.SetSummary(fmt.Sprintf("%s - %s", personName, typeLabel))
	if appt.Location != "" {
		event.SetLocation(appt.Location)
	}

	return cal.Serialize(), nil
}

func icsLocalDateTime(localDate string, minutes int) (string, error) {
	t, err := domain.ParseLocalDate(localDate)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d%02d%02dT%02d%02d00", t.Year(), int(t.Month()), t.Day(), minutes/60, minutes%60), nil
}
