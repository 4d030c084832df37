package reminders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bishopric/backend/internal/domain"
	"bishopric/backend/internal/store"
)

const (
	// Settings keys.
	lastCheckDateKey  = "lastReminderCheckDate"
	bishopPersonIDKey = "bishopPersonId"

	relatedObjectType = "schedule_reminder"
)

// Service runs the daily recurring-schedule reminder sweep: when today is
// exactly reminderDaysBefore days before an item's next occurrence, one
// message is queued for the configured recipient. The sweep is idempotent
// per day (last-run date in settings) and per occurrence (dedupe by the
// message's related-object key).
type Service struct {
	sched      store.SchedulingRepository
	people     store.PersonRepository
	messages   store.MessageRepository
	settings   store.SettingsRepository
	templateID string
	now        func() time.Time
	log        *slog.Logger
}

func NewService(
	sched store.SchedulingRepository,
	people store.PersonRepository,
	messages store.MessageRepository,
	settings store.SettingsRepository,
	templateID string,
	now func() time.Time,
	log *slog.Logger,
) *Service {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		sched:      sched,
		people:     people,
		messages:   messages,
		settings:   settings,
		templateID: templateID,
		now:        now,
		log:        log,
	}
}

// Run performs the sweep once per local day; repeated calls on the same day
// are no-ops.
func (s *Service) Run(ctx context.Context) error {
	today := domain.FormatLocalDate(s.now())

	lastCheck, err := s.settings.GetSetting(ctx, lastCheckDateKey)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if lastCheck.Value == today {
		return nil
	}

	items, err := s.sched.ListRecurringItems(ctx, s.templateID)
	if err != nil {
		return err
	}
	exceptions, err := s.sched.ListItemExceptions(ctx, s.templateID)
	if err != nil {
		return err
	}

	for _, item := range items {
		if item.ReminderDaysBefore <= 0 {
			continue
		}
		if item.ReminderRecipientKind == "" || item.ReminderRecipientKind == domain.ReminderRecipientNone {
			continue
		}
		if err := s.remindForItem(ctx, item, exceptions, today); err != nil {
			return err
		}
	}

	return s.settings.PutSetting(ctx, domain.Setting{ID: lastCheckDateKey, Value: today})
}

func (s *Service) remindForItem(ctx context.Context, item domain.RecurringScheduleItem, exceptions []domain.ScheduleItemException, today string) error {
	occurrenceDate, err := domain.NextOccurrenceDate(item, exceptions, today)
	if err != nil {
		return err
	}
	reminderDate, err := domain.AddDays(occurrenceDate, -item.ReminderDaysBefore)
	if err != nil {
		return err
	}
	if reminderDate != today {
		return nil
	}

	dedupeID := fmt.Sprintf("%s-%s-%s", relatedObjectType, item.ID, occurrenceDate)
	_, err = s.messages.FindByRelatedObject(ctx, relatedObjectType, dedupeID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	phone, err := s.recipientPhone(ctx, item)
	if err != nil {
		return err
	}
	if phone == "" {
		s.log.Warn("reminder skipped: no recipient phone",
			slog.String("item_id", item.ID),
			slog.String("occurrence_date", occurrenceDate),
		)
		return nil
	}

	body := fmt.Sprintf("Reminder: %s on %s.", item.Label, strings.ReplaceAll(occurrenceDate, "-", "/"))
	_, err = s.messages.Enqueue(ctx, domain.MessageQueueItem{
		RecipientPhone:    phone,
		RenderedMessage:   body,
		RelatedObjectType: relatedObjectType,
		RelatedObjectID:   dedupeID,
		Status:            domain.MessageStatusPending,
	})
	if err == nil {
		s.log.Info("reminder queued",
			slog.String("item_id", item.ID),
			slog.String("occurrence_date", occurrenceDate),
		)
	}
	return err
}

func (s *Service) recipientPhone(ctx context.Context, item domain.RecurringScheduleItem) (string, error) {
	var personID string
	switch item.ReminderRecipientKind {
	case domain.ReminderRecipientBishop:
		setting, err := s.settings.GetSetting(ctx, bishopPersonIDKey)
		if errors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		personID = setting.Value
	case domain.ReminderRecipientCustom:
		personID = item.ReminderRecipientPersonID
	}
	if personID == "" {
		return "", nil
	}

	person, err := s.people.GetPerson(ctx, personID)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if len(person.Phones) == 0 {
		return "", nil
	}
	return person.Phones[0], nil
}
