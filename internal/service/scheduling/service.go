package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bishopric/backend/internal/domain"
	"bishopric/backend/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// ErrNoOpenSlot is returned by Punt when no free slot exists within the
// forward search window.
var ErrNoOpenSlot = errors.New("no open slot within search window")

// SlotGridConfig is the slot grid passed in explicitly so the availability
// computations stay pure functions of their inputs. Grid validity (start
// before end, positive interval) is enforced here, at the configuration
// boundary, never inside the engine.
type SlotGridConfig struct {
	StartMinutes    int
	EndMinutes      int
	IntervalMinutes int
}

// Fallback grid used when the configured window is inverted or the interval
// is non-positive: 9:00-11:00 every 30 minutes.
func (c SlotGridConfig) Minutes() []int {
	if c.StartMinutes >= c.EndMinutes || c.IntervalMinutes <= 0 {
		return domain.BuildSlotMinutes(9*60, 11*60, 30)
	}
	return domain.BuildSlotMinutes(c.StartMinutes, c.EndMinutes, c.IntervalMinutes)
}

type Service struct {
	repo   store.SchedulingRepository
	people store.PersonRepository
	grid   SlotGridConfig
}

func NewService(repo store.SchedulingRepository, people store.PersonRepository, grid SlotGridConfig) *Service {
	return &Service{repo: repo, people: people, grid: grid}
}

// SlotsForDate reads the day's bookings and blackouts and returns one entry
// per grid slot. An empty result on a blackout date is the expected outcome,
// not an error.
func (s *Service) SlotsForDate(ctx context.Context, localDate string) ([]domain.SlotInfo, error) {
	if _, err := domain.ParseLocalDate(localDate); err != nil {
		return nil, err
	}
	bookings, err := s.repo.ListAppointmentsOnDate(ctx, localDate)
	if err != nil {
		return nil, err
	}
	blackouts, err := s.blackoutDates(ctx)
	if err != nil {
		return nil, err
	}
	return domain.SlotsForDate(localDate, bookings, blackouts, s.grid.Minutes()), nil
}

// NextAvailableSlot scans forward from fromDate across the 8-day window.
// A nil result is the empty state for the caller, not a failure.
func (s *Service) NextAvailableSlot(ctx context.Context, fromDate string) (*domain.SlotRef, error) {
	bookings, blackouts, err := s.bookingsForSearch(ctx, fromDate, "")
	if err != nil {
		return nil, err
	}
	return domain.NextAvailableSlot(fromDate, bookings, blackouts, s.grid.Minutes())
}

type BookInput struct {
	PersonID            string
	Type                domain.AppointmentType
	LocalDate           string
	MinutesFromMidnight int
	DurationMinutes     int
	InterviewKind       string
	Location            string
	Actor               string
}

// Book creates a hold appointment on the given slot with an opening history
// entry. Slot collisions are not re-validated here; the caller books from a
// slot list it just read, and the repository serializes same-day writes.
func (s *Service) Book(ctx context.Context, in BookInput) (domain.Appointment, error) {
	if in.PersonID == "" {
		return domain.Appointment{}, validationError("person_id is required")
	}
	if _, err := domain.ParseLocalDate(in.LocalDate); err != nil {
		return domain.Appointment{}, validationError("local_date is invalid")
	}
	if in.MinutesFromMidnight < 0 || in.MinutesFromMidnight > 1439 {
		return domain.Appointment{}, validationError("minutes_from_midnight out of range")
	}

	apptType := in.Type
	if apptType == "" {
		apptType = domain.AppointmentTypeBishopInterview
	}
	dur := in.DurationMinutes
	if dur <= 0 {
		dur = domain.DefaultAppointmentDuration
	}

	appt := domain.Appointment{
		Type:                apptType,
		PersonID:            in.PersonID,
		LocalDate:           in.LocalDate,
		MinutesFromMidnight: in.MinutesFromMidnight,
		DurationMinutes:     dur,
		Location:            strings.TrimSpace(in.Location),
		Status:              domain.AppointmentStatusHold,
		InterviewKind:       in.InterviewKind,
		HistoryLog: []domain.HistoryEntry{{
			At:   time.Now().UTC(),
			Who:  actorOrUser(in.Actor),
			What: fmt.Sprintf("Booked %s %s", in.LocalDate, domain.MinutesToTime(in.MinutesFromMidnight)),
		}},
	}
	return s.repo.CreateAppointment(ctx, appt)
}

// SetStatus records a status change with a history entry. Transitions are
// not validated; any status may follow any other.
func (s *Service) SetStatus(ctx context.Context, id string, status domain.AppointmentStatus, actor string) (domain.Appointment, error) {
	if id == "" {
		return domain.Appointment{}, validationError("appointment_id is required")
	}
	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return domain.Appointment{}, err
	}
	appt.Status = status
	appt.HistoryLog = append(appt.HistoryLog, domain.HistoryEntry{
		At:   time.Now().UTC(),
		Who:  actorOrUser(actor),
		What: fmt.Sprintf("Status → %s", status),
	})
	return s.repo.UpdateAppointment(ctx, appt)
}

// Cancel marks the appointment canceled. Appointments are never deleted.
func (s *Service) Cancel(ctx context.Context, id, actor string) (domain.Appointment, error) {
	return s.SetStatus(ctx, id, domain.AppointmentStatusCanceled, actor)
}

// SetLocation updates the location tag.
func (s *Service) SetLocation(ctx context.Context, id, location, actor string) (domain.Appointment, error) {
	if id == "" {
		return domain.Appointment{}, validationError("appointment_id is required")
	}
	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return domain.Appointment{}, err
	}
	appt.Location = strings.TrimSpace(location)
	appt.HistoryLog = append(appt.HistoryLog, domain.HistoryEntry{
		At:   time.Now().UTC(),
		Who:  actorOrUser(actor),
		What: "Location updated",
	})
	return s.repo.UpdateAppointment(ctx, appt)
}

// Punt relocates an appointment to the next available slot after its current
// date. Other bookings, including the appointment's own old slot-mates, stay
// untouched; the punted appointment itself is excluded from the conflict set.
func (s *Service) Punt(ctx context.Context, id, actor string) (domain.Appointment, error) {
	if id == "" {
		return domain.Appointment{}, validationError("appointment_id is required")
	}
	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return domain.Appointment{}, err
	}

	fromDate, err := domain.AddDays(appt.LocalDate, 1)
	if err != nil {
		return domain.Appointment{}, err
	}
	bookings, blackouts, err := s.bookingsForSearch(ctx, fromDate, appt.ID)
	if err != nil {
		return domain.Appointment{}, err
	}
	next, err := domain.NextAvailableSlot(fromDate, bookings, blackouts, s.grid.Minutes())
	if err != nil {
		return domain.Appointment{}, err
	}
	if next == nil {
		return domain.Appointment{}, ErrNoOpenSlot
	}

	appt.LocalDate = next.LocalDate
	appt.MinutesFromMidnight = next.MinutesFromMidnight
	appt.HistoryLog = append(appt.HistoryLog, domain.HistoryEntry{
		At:   time.Now().UTC(),
		Who:  actorOrUser(actor),
		What: fmt.Sprintf("Punted to %s %s", next.LocalDate, domain.MinutesToTime(next.MinutesFromMidnight)),
	})
	return s.repo.UpdateAppointment(ctx, appt)
}

// DayAgenda merges the date's appointments, day blocks and resolved
// recurring items into a start-ordered list with overlap placement.
func (s *Service) DayAgenda(ctx context.Context, localDate, templateID string) ([]domain.AgendaEvent, []domain.OverlapInfo, error) {
	if _, err := domain.ParseLocalDate(localDate); err != nil {
		return nil, nil, err
	}

	appointments, err := s.repo.ListAppointmentsOnDate(ctx, localDate)
	if err != nil {
		return nil, nil, err
	}
	blocks, err := s.repo.ListDayBlocks(ctx, localDate)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.repo.ListRecurringItems(ctx, templateID)
	if err != nil {
		return nil, nil, err
	}
	exceptions, err := s.repo.ListItemExceptions(ctx, templateID)
	if err != nil {
		return nil, nil, err
	}
	people, err := s.people.ListPeople(ctx)
	if err != nil {
		return nil, nil, err
	}
	names := make(map[string]string, len(people))
	for _, p := range people {
		names[p.ID] = p.NameListPreferred
	}

	events, err := domain.ComposeDay(localDate, appointments, blocks, items, exceptions, names)
	if err != nil {
		return nil, nil, err
	}
	return events, domain.OverlapGroups(events), nil
}

// AddBlackout marks a date unavailable for interviews.
func (s *Service) AddBlackout(ctx context.Context, localDate, reason string) (domain.BlackoutDate, error) {
	if _, err := domain.ParseLocalDate(localDate); err != nil {
		return domain.BlackoutDate{}, validationError("local_date is invalid")
	}
	return s.repo.CreateBlackoutDate(ctx, domain.BlackoutDate{LocalDate: localDate, Reason: reason})
}

// AddGeneralConferenceBlackouts marks both conference Sundays for a year.
func (s *Service) AddGeneralConferenceBlackouts(ctx context.Context, year int) ([]domain.BlackoutDate, error) {
	out := make([]domain.BlackoutDate, 0, 2)
	for _, date := range domain.GeneralConferenceDates(year) {
		b, err := s.repo.CreateBlackoutDate(ctx, domain.BlackoutDate{LocalDate: date, Reason: "General Conference"})
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *Service) RemoveBlackout(ctx context.Context, id string) error {
	if id == "" {
		return validationError("blackout_id is required")
	}
	return s.repo.DeleteBlackoutDate(ctx, id)
}

func (s *Service) blackoutDates(ctx context.Context) ([]string, error) {
	rows, err := s.repo.ListBlackoutDates(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, b := range rows {
		out = append(out, b.LocalDate)
	}
	return out, nil
}

// bookingsForSearch loads everything the 8-day forward scan can touch,
// optionally leaving out one appointment (the one being moved).
func (s *Service) bookingsForSearch(ctx context.Context, fromDate, excludeID string) ([]domain.Appointment, []string, error) {
	if _, err := domain.ParseLocalDate(fromDate); err != nil {
		return nil, nil, err
	}
	endDate, err := domain.AddDays(fromDate, 7)
	if err != nil {
		return nil, nil, err
	}
	all, err := s.repo.ListAppointmentsInRange(ctx, fromDate, endDate)
	if err != nil {
		return nil, nil, err
	}
	bookings := all
	if excludeID != "" {
		bookings = bookings[:0:0]
		for _, a := range all {
			if a.ID != excludeID {
				bookings = append(bookings, a)
			}
		}
	}
	blackouts, err := s.blackoutDates(ctx)
	if err != nil {
		return nil, nil, err
	}
	return bookings, blackouts, nil
}

func actorOrUser(actor string) string {
	if actor == "" {
		return "user"
	}
	return actor
}
