package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"bishopric/backend/internal/domain"
	"bishopric/backend/internal/store"
)

type fakeRepo struct {
	appointments map[string]domain.Appointment
	blackouts    map[string]domain.BlackoutDate
	items        []domain.RecurringScheduleItem
	exceptions   []domain.ScheduleItemException
	blocks       []domain.DayBlock
	people       []domain.Person
	nextID       int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		appointments: map[string]domain.Appointment{},
		blackouts:    map[string]domain.BlackoutDate{},
	}
}

func (f *fakeRepo) genID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeRepo) CreateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if appt.ID == "" {
		appt.ID = f.genID("apt")
	}
	f.appointments[appt.ID] = appt
	return appt, nil
}

func (f *fakeRepo) GetAppointment(ctx context.Context, id string) (domain.Appointment, error) {
	appt, ok := f.appointments[id]
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	return appt, nil
}

func (f *fakeRepo) UpdateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if _, ok := f.appointments[appt.ID]; !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	f.appointments[appt.ID] = appt
	return appt, nil
}

func (f *fakeRepo) ListAppointmentsOnDate(ctx context.Context, localDate string) ([]domain.Appointment, error) {
	out := []domain.Appointment{}
	for _, a := range f.appointments {
		if a.LocalDate == localDate {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListAppointmentsInRange(ctx context.Context, startDate, endDate string) ([]domain.Appointment, error) {
	out := []domain.Appointment{}
	for _, a := range f.appointments {
		if a.LocalDate >= startDate && a.LocalDate <= endDate {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListBlackoutDates(ctx context.Context) ([]domain.BlackoutDate, error) {
	out := []domain.BlackoutDate{}
	for _, b := range f.blackouts {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeRepo) CreateBlackoutDate(ctx context.Context, b domain.BlackoutDate) (domain.BlackoutDate, error) {
	if b.ID == "" {
		b.ID = f.genID("blackout")
	}
	f.blackouts[b.ID] = b
	return b, nil
}

func (f *fakeRepo) DeleteBlackoutDate(ctx context.Context, id string) error {
	if _, ok := f.blackouts[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.blackouts, id)
	return nil
}

func (f *fakeRepo) ListRecurringItems(ctx context.Context, templateID string) ([]domain.RecurringScheduleItem, error) {
	return f.items, nil
}

func (f *fakeRepo) ListItemExceptions(ctx context.Context, templateID string) ([]domain.ScheduleItemException, error) {
	return f.exceptions, nil
}

func (f *fakeRepo) ListDayBlocks(ctx context.Context, localDate string) ([]domain.DayBlock, error) {
	out := []domain.DayBlock{}
	for _, b := range f.blocks {
		if b.LocalDate == localDate {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListPeople(ctx context.Context) ([]domain.Person, error) {
	return f.people, nil
}

func (f *fakeRepo) GetPerson(ctx context.Context, id string) (domain.Person, error) {
	for _, p := range f.people {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Person{}, store.ErrNotFound
}

var testGrid = SlotGridConfig{StartMinutes: 9 * 60, EndMinutes: 10 * 60, IntervalMinutes: 30}

func newTestService(repo *fakeRepo) *Service {
	return NewService(repo, repo, testGrid)
}

func TestSlotGridConfig_Fallback(t *testing.T) {
	bad := SlotGridConfig{StartMinutes: 600, EndMinutes: 600, IntervalMinutes: 30}
	got := bad.Minutes()
	want := domain.BuildSlotMinutes(9*60, 11*60, 30)
	if len(got) != len(want) {
		t.Fatalf("fallback grid len = %d, want %d", len(got), len(want))
	}

	zero := SlotGridConfig{StartMinutes: 540, EndMinutes: 660, IntervalMinutes: 0}
	if len(zero.Minutes()) != len(want) {
		t.Fatalf("non-positive interval should fall back")
	}
}

func TestBook(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	appt, err := svc.Book(context.Background(), BookInput{
		PersonID:            "p1",
		LocalDate:           "2024-06-02",
		MinutesFromMidnight: 540,
		Actor:               "bishop",
	})
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}
	if appt.Status != domain.AppointmentStatusHold {
		t.Fatalf("status = %q, want hold", appt.Status)
	}
	if appt.Type != domain.AppointmentTypeBishopInterview {
		t.Fatalf("type = %q, want default bishop_interview", appt.Type)
	}
	if appt.DurationMinutes != domain.DefaultAppointmentDuration {
		t.Fatalf("duration = %d, want %d", appt.DurationMinutes, domain.DefaultAppointmentDuration)
	}
	if len(appt.HistoryLog) != 1 {
		t.Fatalf("history entries = %d, want 1", len(appt.HistoryLog))
	}
	if appt.HistoryLog[0].Who != "bishop" || !strings.Contains(appt.HistoryLog[0].What, "2024-06-02 09:00") {
		t.Fatalf("history entry = %+v", appt.HistoryLog[0])
	}
}

func TestBook_Validation(t *testing.T) {
	svc := newTestService(newFakeRepo())

	tests := []struct {
		name string
		in   BookInput
	}{
		{"missing person", BookInput{LocalDate: "2024-06-02", MinutesFromMidnight: 540}},
		{"bad date", BookInput{PersonID: "p1", LocalDate: "june 2nd", MinutesFromMidnight: 540}},
		{"negative minutes", BookInput{PersonID: "p1", LocalDate: "2024-06-02", MinutesFromMidnight: -1}},
		{"minutes past midnight", BookInput{PersonID: "p1", LocalDate: "2024-06-02", MinutesFromMidnight: 1440}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Book(context.Background(), tt.in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
		})
	}
}

func TestCancelKeepsRecord(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	appt, err := svc.Book(context.Background(), BookInput{
		PersonID: "p1", LocalDate: "2024-06-02", MinutesFromMidnight: 540,
	})
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}

	canceled, err := svc.Cancel(context.Background(), appt.ID, "")
	if err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if canceled.Status != domain.AppointmentStatusCanceled {
		t.Fatalf("status = %q, want canceled", canceled.Status)
	}
	if _, ok := repo.appointments[appt.ID]; !ok {
		t.Fatalf("cancel must not delete the record")
	}
	if len(canceled.HistoryLog) != 2 {
		t.Fatalf("history entries = %d, want 2", len(canceled.HistoryLog))
	}
	if canceled.HistoryLog[1].Who != "user" {
		t.Fatalf("empty actor should default to %q, got %q", "user", canceled.HistoryLog[1].Who)
	}
}

func TestSetStatus_UnknownAppointment(t *testing.T) {
	svc := newTestService(newFakeRepo())
	_, err := svc.SetStatus(context.Background(), "missing", domain.AppointmentStatusConfirmed, "")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestSlotsForDate_BlackoutThroughService(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	if _, err := svc.AddBlackout(context.Background(), "2024-06-02", "Stake Conference"); err != nil {
		t.Fatalf("AddBlackout error: %v", err)
	}
	slots, err := svc.SlotsForDate(context.Background(), "2024-06-02")
	if err != nil {
		t.Fatalf("SlotsForDate error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("blackout day returned %d slots", len(slots))
	}

	slots, err = svc.SlotsForDate(context.Background(), "2024-06-09")
	if err != nil {
		t.Fatalf("SlotsForDate error: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("got %d slots, want 3", len(slots))
	}
}

func TestPunt_MovesPastOwnDate(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	appt, err := svc.Book(context.Background(), BookInput{
		PersonID: "p1", LocalDate: "2024-06-02", MinutesFromMidnight: 540,
	})
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}
	// A conflicting booking on the first candidate slot of the next day.
	if _, err := svc.Book(context.Background(), BookInput{
		PersonID: "p2", LocalDate: "2024-06-03", MinutesFromMidnight: 540,
	}); err != nil {
		t.Fatalf("Book error: %v", err)
	}

	moved, err := svc.Punt(context.Background(), appt.ID, "clerk")
	if err != nil {
		t.Fatalf("Punt error: %v", err)
	}
	if moved.LocalDate != "2024-06-03" || moved.MinutesFromMidnight != 570 {
		t.Fatalf("moved to %s %d, want 2024-06-03 570", moved.LocalDate, moved.MinutesFromMidnight)
	}
	last := moved.HistoryLog[len(moved.HistoryLog)-1]
	if !strings.Contains(last.What, "Punted to 2024-06-03 09:30") {
		t.Fatalf("history entry = %q", last.What)
	}
}

func TestPunt_NoOpenSlot(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	appt, err := svc.Book(context.Background(), BookInput{
		PersonID: "p1", LocalDate: "2024-06-02", MinutesFromMidnight: 540,
	})
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}
	for d := 3; d <= 10; d++ {
		date := fmt.Sprintf("2024-06-%02d", d)
		if _, err := svc.AddBlackout(context.Background(), date, "closed"); err != nil {
			t.Fatalf("AddBlackout error: %v", err)
		}
	}

	_, err = svc.Punt(context.Background(), appt.ID, "")
	if !errors.Is(err, ErrNoOpenSlot) {
		t.Fatalf("error = %v, want ErrNoOpenSlot", err)
	}
}

func TestDayAgenda(t *testing.T) {
	repo := newFakeRepo()
	repo.people = []domain.Person{{ID: "p1", NameListPreferred: "Jane Doe"}}
	repo.items = []domain.RecurringScheduleItem{
		{ID: "r1", Label: "Sacrament Meeting", WeekOfMonth: 0, StartMinutes: 540, EndMinutes: 600},
	}
	repo.blocks = []domain.DayBlock{
		{ID: "b1", LocalDate: "2024-06-02", StartMinutes: 600, EndMinutes: 660, Label: "Tithing Settlement"},
	}
	svc := newTestService(repo)

	if _, err := svc.Book(context.Background(), BookInput{
		PersonID: "p1", LocalDate: "2024-06-02", MinutesFromMidnight: 615,
	}); err != nil {
		t.Fatalf("Book error: %v", err)
	}

	events, overlaps, err := svc.DayAgenda(context.Background(), "2024-06-02", "tmpl")
	if err != nil {
		t.Fatalf("DayAgenda error: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].RefID != "r1" || events[1].RefID != "b1" {
		t.Fatalf("order = %v", events)
	}
	if events[2].Label != "Jane Doe" {
		t.Fatalf("appointment label = %q", events[2].Label)
	}
	// The block and the appointment overlap; the recurring item stands alone.
	if overlaps[0].Total != 1 || overlaps[1].Total != 2 || overlaps[2].Total != 2 {
		t.Fatalf("overlaps = %+v", overlaps)
	}
}

func TestGeneralConferenceBlackouts(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	out, err := svc.AddGeneralConferenceBlackouts(context.Background(), 2024)
	if err != nil {
		t.Fatalf("AddGeneralConferenceBlackouts error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d blackouts, want 2", len(out))
	}
	if out[0].LocalDate != "2024-04-07" || out[1].LocalDate != "2024-10-06" {
		t.Fatalf("dates = %s %s", out[0].LocalDate, out[1].LocalDate)
	}

	if err := svc.RemoveBlackout(context.Background(), out[0].ID); err != nil {
		t.Fatalf("RemoveBlackout error: %v", err)
	}
	if err := svc.RemoveBlackout(context.Background(), out[0].ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second remove error = %v, want ErrNotFound", err)
	}
}
