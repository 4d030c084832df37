package store

import (
	"context"

	"bishopric/backend/internal/domain"
)

// SchedulingRepository is the record-store boundary for interview scheduling.
// List methods return complete result sets; callers filter further
// themselves.
type SchedulingRepository interface {
	CreateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	GetAppointment(ctx context.Context, id string) (domain.Appointment, error)
	UpdateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	ListAppointmentsOnDate(ctx context.Context, localDate string) ([]domain.Appointment, error)
	ListAppointmentsInRange(ctx context.Context, startDate, endDate string) ([]domain.Appointment, error)

	ListBlackoutDates(ctx context.Context) ([]domain.BlackoutDate, error)
	CreateBlackoutDate(ctx context.Context, b domain.BlackoutDate) (domain.BlackoutDate, error)
	DeleteBlackoutDate(ctx context.Context, id string) error

	ListRecurringItems(ctx context.Context, templateID string) ([]domain.RecurringScheduleItem, error)
	ListItemExceptions(ctx context.Context, templateID string) ([]domain.ScheduleItemException, error)
	ListDayBlocks(ctx context.Context, localDate string) ([]domain.DayBlock, error)
}

// PersonRepository reads ward member records.
type PersonRepository interface {
	ListPeople(ctx context.Context) ([]domain.Person, error)
	GetPerson(ctx context.Context, id string) (domain.Person, error)
}

// PrayerRepository reads and appends prayer rotation records. Inserts carry
// no uniqueness constraints; duplicate records are expected and readers
// aggregate by latest date.
type PrayerRepository interface {
	ListHistory(ctx context.Context, prayerType domain.PrayerType) ([]domain.PrayerHistoryRecord, error)
	ListAssignments(ctx context.Context, prayerType domain.PrayerType) ([]domain.PrayerAssignment, error)
	ListSkipped(ctx context.Context, prayerType domain.PrayerType, localDate string) ([]domain.PrayerSkipped, error)
	CreateHistory(ctx context.Context, r domain.PrayerHistoryRecord) (domain.PrayerHistoryRecord, error)
	CreateSkipped(ctx context.Context, s domain.PrayerSkipped) (domain.PrayerSkipped, error)
}

// MessageRepository queues outbound messages. FindByRelatedObject is the
// reminder dedupe lookup; it returns ErrNotFound when nothing matches.
type MessageRepository interface {
	Enqueue(ctx context.Context, m domain.MessageQueueItem) (domain.MessageQueueItem, error)
	FindByRelatedObject(ctx context.Context, relatedType, relatedID string) (domain.MessageQueueItem, error)
}

// SettingsRepository is the ambient key-value store. Get returns ErrNotFound
// for missing keys.
type SettingsRepository interface {
	GetSetting(ctx context.Context, id string) (domain.Setting, error)
	PutSetting(ctx context.Context, s domain.Setting) error
}
