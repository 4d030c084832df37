package domain

// The taken-slot test quantizes occupancy to a 15-minute resolution and
// treats every grid slot as a fixed 20-minute footprint regardless of grid
// spacing or the booking's configured duration. Different call sites book
// 15/20/30-minute appointments while this check always assumes 20; that
// asymmetry is a known product quirk and is kept as-is.
const (
	slotFootprintMinutes = 20
	occupancyResolution  = 15

	// nextSlotSearchDays caps the forward scan of NextAvailableSlot. A nil
	// result means "nothing nearby", not "nothing ever".
	nextSlotSearchDays = 8
)

// SlotInfo describes one grid slot on one date.
type SlotInfo struct {
	LocalDate           string
	MinutesFromMidnight int
	Label               string
	Taken               bool
}

// SlotRef points at a bookable slot.
type SlotRef struct {
	LocalDate           string
	MinutesFromMidnight int
}

// SlotsForDate returns one SlotInfo per grid entry, in grid order, marking
// slots that collide with same-day bookings. A blacked-out date yields no
// slots at all. The grid is assumed valid; validation belongs to the
// configuration boundary.
func SlotsForDate(localDate string, bookings []Appointment, blackouts []string, grid []int) []SlotInfo {
	for _, b := range blackouts {
		if b == localDate {
			return []SlotInfo{}
		}
	}

	occupied := occupiedMinutes(localDate, bookings)

	out := make([]SlotInfo, 0, len(grid))
	for _, start := range grid {
		out = append(out, SlotInfo{
			LocalDate:           localDate,
			MinutesFromMidnight: start,
			Label:               MinutesToTime(start),
			Taken:               footprintBlocked(start, occupied),
		})
	}
	return out
}

// NextAvailableSlot scans forward day by day from fromDate, skipping blackout
// days, and returns the first grid slot free of same-day conflicts. The scan
// is hard-capped at 8 days; nil means no slot was found inside that window.
func NextAvailableSlot(fromDate string, bookings []Appointment, blackouts []string, grid []int) (*SlotRef, error) {
	blackedOut := make(map[string]struct{}, len(blackouts))
	for _, b := range blackouts {
		blackedOut[b] = struct{}{}
	}

	date := fromDate
	for i := 0; i < nextSlotSearchDays; i++ {
		if _, ok := blackedOut[date]; !ok {
			occupied := occupiedMinutes(date, bookings)
			for _, start := range grid {
				if !footprintBlocked(start, occupied) {
					return &SlotRef{LocalDate: date, MinutesFromMidnight: start}, nil
				}
			}
		}
		next, err := AddDays(date, 1)
		if err != nil {
			return nil, err
		}
		date = next
	}
	return nil, nil
}

func occupiedMinutes(localDate string, bookings []Appointment) map[int]struct{} {
	occupied := make(map[int]struct{})
	for _, a := range bookings {
		if a.LocalDate != localDate {
			continue
		}
		dur := a.DurationMinutes
		if dur == 0 {
			dur = DefaultAppointmentDuration
		}
		for m := a.MinutesFromMidnight; m < a.MinutesFromMidnight+dur; m += occupancyResolution {
			occupied[m] = struct{}{}
		}
	}
	return occupied
}

func footprintBlocked(start int, occupied map[int]struct{}) bool {
	for m := start; m < start+slotFootprintMinutes; m += occupancyResolution {
		if _, ok := occupied[m]; ok {
			return true
		}
	}
	return false
}
