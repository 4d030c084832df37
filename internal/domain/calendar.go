package domain

import (
	"fmt"
	"time"
)

// All scheduling dates in this system are naive local calendar dates encoded
// as YYYY-MM-DD strings, paired with minutes-from-midnight where a time of
// day is needed. There is no timezone conversion anywhere in the core.
const localDateLayout = "2006-01-02"

type InvalidDateError struct {
	Value string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid local date %q", e.Value)
}

func ParseLocalDate(localDate string) (time.Time, error) {
	t, err := time.Parse(localDateLayout, localDate)
	if err != nil {
		return time.Time{}, &InvalidDateError{Value: localDate}
	}
	return t, nil
}

func FormatLocalDate(t time.Time) string {
	return t.Format(localDateLayout)
}

func AddDays(localDate string, days int) (string, error) {
	t, err := ParseLocalDate(localDate)
	if err != nil {
		return "", err
	}
	return FormatLocalDate(t.AddDate(0, 0, days)), nil
}

// NextSunday returns the Sunday strictly after localDate. When localDate is
// itself a Sunday the result is seven days later.
func NextSunday(localDate string) (string, error) {
	t, err := ParseLocalDate(localDate)
	if err != nil {
		return "", err
	}
	add := 7 - int(t.Weekday())
	return FormatLocalDate(t.AddDate(0, 0, add)), nil
}

// UpcomingSunday returns localDate itself when it is a Sunday, otherwise the
// next Sunday.
func UpcomingSunday(localDate string) (string, error) {
	t, err := ParseLocalDate(localDate)
	if err != nil {
		return "", err
	}
	if t.Weekday() == time.Sunday {
		return localDate, nil
	}
	return NextSunday(localDate)
}

// WeekOfMonth classifies a date by which Sunday-aligned week of its month it
// falls in: 1 = week of the month's first Sunday, up to 5. The formula is
// floor((day - firstSunday) / 7) + 1; days before the first Sunday therefore
// land in week 0. Only Sundays are meaningful inputs in practice.
func WeekOfMonth(localDate string) (int, error) {
	t, err := ParseLocalDate(localDate)
	if err != nil {
		return 0, err
	}
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	firstSunday := 1
	if wd := int(first.Weekday()); wd != 0 {
		firstSunday = 1 + 7 - wd
	}
	return floorDiv(t.Day()-firstSunday, 7) + 1, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// MonthRange returns the first and last calendar day of the month containing
// localDate, both as YYYY-MM-DD strings.
func MonthRange(localDate string) (string, string, error) {
	t, err := ParseLocalDate(localDate)
	if err != nil {
		return "", "", err
	}
	y, m := t.Year(), t.Month()
	lastDay := time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
	start := fmt.Sprintf("%04d-%02d-01", y, int(m))
	end := fmt.Sprintf("%04d-%02d-%02d", y, int(m), lastDay)
	return start, end, nil
}

// MinutesToTime formats minutes-from-midnight as HH:MM (24h).
func MinutesToTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatTimeAmPm formats minutes-from-midnight for display, e.g. "2:30 PM".
func FormatTimeAmPm(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	ampm := "AM"
	if h >= 12 {
		ampm = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, ampm)
}

// BuildSlotMinutes expands a start (inclusive), end (inclusive) and interval
// into the ordered candidate slot-start list.
func BuildSlotMinutes(startMinutes, endMinutes, intervalMinutes int) []int {
	out := []int{}
	for m := startMinutes; m <= endMinutes; m += intervalMinutes {
		out = append(out, m)
	}
	return out
}
