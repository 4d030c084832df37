package domain

import "sort"

type AgendaEventType string

const (
	AgendaEventAppointment AgendaEventType = "appointment"
	AgendaEventBlock       AgendaEventType = "block"
	AgendaEventRecurring   AgendaEventType = "recurring"
)

// AgendaEvent is one entry in a day's merged, time-ordered schedule.
type AgendaEvent struct {
	Type         AgendaEventType
	RefID        string
	Label        string
	StartMinutes int
	EndMinutes   int
}

// OverlapInfo places an event inside its overlap group for side-by-side
// rendering: Index is the event's position among the events it intersects,
// Total the group size (width = 100% / Total).
type OverlapInfo struct {
	Index int
	Total int
}

// ComposeDay merges a date's appointments (canceled excluded), day blocks and
// resolved recurring occurrences into one list sorted by start minutes. Ties
// keep input encounter order so same-start items render side by side instead
// of being reordered. names maps person ids to display names for appointment
// labels.
func ComposeDay(
	localDate string,
	appointments []Appointment,
	blocks []DayBlock,
	items []RecurringScheduleItem,
	exceptions []ScheduleItemException,
	names map[string]string,
) ([]AgendaEvent, error) {
	occs, err := OccurrencesForDate(items, exceptions, localDate)
	if err != nil {
		return nil, err
	}

	out := []AgendaEvent{}
	for _, a := range appointments {
		if a.LocalDate != localDate || a.Status == AppointmentStatusCanceled {
			continue
		}
		dur := a.DurationMinutes
		if dur == 0 {
			dur = DefaultAppointmentDuration
		}
		label := names[a.PersonID]
		if label == "" {
			label = "Interview"
		}
		out = append(out, AgendaEvent{
			Type:         AgendaEventAppointment,
			RefID:        a.ID,
			Label:        label,
			StartMinutes: a.MinutesFromMidnight,
			EndMinutes:   a.MinutesFromMidnight + dur,
		})
	}
	for _, b := range blocks {
		if b.LocalDate != localDate {
			continue
		}
		out = append(out, AgendaEvent{
			Type:         AgendaEventBlock,
			RefID:        b.ID,
			Label:        b.Label,
			StartMinutes: b.StartMinutes,
			EndMinutes:   b.EndMinutes,
		})
	}
	for _, o := range occs {
		out = append(out, AgendaEvent{
			Type:         AgendaEventRecurring,
			RefID:        o.ItemID,
			Label:        o.Label,
			StartMinutes: o.StartMinutes,
			EndMinutes:   o.EndMinutes,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartMinutes < out[j].StartMinutes
	})
	return out, nil
}

// OverlapGroups computes, for each event, the set of events whose [start,end)
// interval intersects its own, and the event's position within that set.
// Pairwise comparison is fine here; a day holds tens of events, not
// thousands.
func OverlapGroups(events []AgendaEvent) []OverlapInfo {
	out := make([]OverlapInfo, len(events))
	for i, ev := range events {
		index := 0
		total := 0
		for j, other := range events {
			if other.StartMinutes < ev.EndMinutes && other.EndMinutes > ev.StartMinutes {
				if j == i {
					index = total
				}
				total++
			}
		}
		if total < 1 {
			total = 1
		}
		out[i] = OverlapInfo{Index: index, Total: total}
	}
	return out
}
