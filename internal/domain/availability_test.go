package domain

import "testing"

func apptAt(date string, minutes, dur int) Appointment {
	return Appointment{
		ID:                  NewID("appt"),
		LocalDate:           date,
		MinutesFromMidnight: minutes,
		DurationMinutes:     dur,
		Status:              AppointmentStatusConfirmed,
	}
}

func TestSlotsForDate_GridFidelity(t *testing.T) {
	grid := []int{840, 860, 880, 900}
	slots := SlotsForDate("2024-06-02", nil, nil, grid)
	if len(slots) != len(grid) {
		t.Fatalf("len = %d, want %d", len(slots), len(grid))
	}
	for i, s := range slots {
		if s.MinutesFromMidnight != grid[i] {
			t.Fatalf("slot[%d] = %d, want %d", i, s.MinutesFromMidnight, grid[i])
		}
		if s.Taken {
			t.Fatalf("slot[%d] taken on an empty day", i)
		}
		if s.LocalDate != "2024-06-02" {
			t.Fatalf("slot[%d] date = %q", i, s.LocalDate)
		}
	}
	if slots[0].Label != "14:00" {
		t.Fatalf("label = %q, want %q", slots[0].Label, "14:00")
	}
}

func TestSlotsForDate_BookingMarksSlotTaken(t *testing.T) {
	grid := []int{840, 860, 880, 900}
	bookings := []Appointment{apptAt("2024-06-02", 860, 20)}

	slots := SlotsForDate("2024-06-02", bookings, nil, grid)
	wantTaken := map[int]bool{840: false, 860: true, 880: false, 900: false}
	for _, s := range slots {
		if s.Taken != wantTaken[s.MinutesFromMidnight] {
			t.Fatalf("slot %d taken = %v, want %v", s.MinutesFromMidnight, s.Taken, wantTaken[s.MinutesFromMidnight])
		}
	}
}

func TestSlotsForDate_QuantizedSpill(t *testing.T) {
	// A booking off the 15-minute lattice projects occupied points backward
	// into the preceding slot's footprint.
	grid := []int{840, 860}
	bookings := []Appointment{apptAt("2024-06-02", 855, 20)}

	slots := SlotsForDate("2024-06-02", bookings, nil, grid)
	if !slots[0].Taken {
		t.Fatalf("slot 840 should be blocked by occupancy at 855")
	}
	if slots[1].Taken {
		t.Fatalf("slot 860 should stay free")
	}
}

func TestSlotsForDate_OtherDayBookingIgnored(t *testing.T) {
	grid := []int{840}
	bookings := []Appointment{apptAt("2024-06-09", 840, 20)}
	slots := SlotsForDate("2024-06-02", bookings, nil, grid)
	if slots[0].Taken {
		t.Fatalf("booking on another date must not block this date")
	}
}

func TestSlotsForDate_CanceledStillOccupies(t *testing.T) {
	grid := []int{840}
	canceled := apptAt("2024-06-02", 840, 20)
	canceled.Status = AppointmentStatusCanceled

	slots := SlotsForDate("2024-06-02", []Appointment{canceled}, nil, grid)
	if !slots[0].Taken {
		t.Fatalf("availability does not filter by status; canceled bookings still occupy")
	}
}

func TestSlotsForDate_BlackoutIsAbsolute(t *testing.T) {
	grid := []int{840, 860, 880}
	slots := SlotsForDate("2024-06-02", nil, []string{"2024-06-02"}, grid)
	if len(slots) != 0 {
		t.Fatalf("blackout day returned %d slots, want 0", len(slots))
	}
}

func TestNextAvailableSlot_SameDay(t *testing.T) {
	grid := []int{540, 570, 600}
	bookings := []Appointment{apptAt("2024-06-02", 540, 20)}

	ref, err := NextAvailableSlot("2024-06-02", bookings, nil, grid)
	if err != nil {
		t.Fatalf("NextAvailableSlot error: %v", err)
	}
	if ref == nil {
		t.Fatalf("expected a slot")
	}
	if ref.LocalDate != "2024-06-02" || ref.MinutesFromMidnight != 570 {
		t.Fatalf("slot = %s %d, want 2024-06-02 570", ref.LocalDate, ref.MinutesFromMidnight)
	}
}

func TestNextAvailableSlot_SkipsToNextSunday(t *testing.T) {
	grid := []int{540, 570, 600}
	bookings := []Appointment{
		apptAt("2024-06-02", 540, 20),
		apptAt("2024-06-02", 570, 20),
		apptAt("2024-06-02", 600, 20),
	}
	// Weekdays are blacked out, so the scan lands on the following Sunday.
	blackouts := []string{
		"2024-06-03", "2024-06-04", "2024-06-05",
		"2024-06-06", "2024-06-07", "2024-06-08",
	}

	ref, err := NextAvailableSlot("2024-06-02", bookings, blackouts, grid)
	if err != nil {
		t.Fatalf("NextAvailableSlot error: %v", err)
	}
	if ref == nil {
		t.Fatalf("expected a slot within the window")
	}
	if ref.LocalDate != "2024-06-09" || ref.MinutesFromMidnight != 540 {
		t.Fatalf("slot = %s %d, want 2024-06-09 540", ref.LocalDate, ref.MinutesFromMidnight)
	}
}

func TestNextAvailableSlot_WindowCap(t *testing.T) {
	grid := []int{540}
	blackouts := []string{
		"2024-06-02", "2024-06-03", "2024-06-04", "2024-06-05",
		"2024-06-06", "2024-06-07", "2024-06-08", "2024-06-09",
	}

	ref, err := NextAvailableSlot("2024-06-02", nil, blackouts, grid)
	if err != nil {
		t.Fatalf("NextAvailableSlot error: %v", err)
	}
	if ref != nil {
		t.Fatalf("expected nil past the search window, got %s %d", ref.LocalDate, ref.MinutesFromMidnight)
	}
}
