package domain

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

type ReminderRecipientKind string

const (
	ReminderRecipientNone   ReminderRecipientKind = "none"
	ReminderRecipientBishop ReminderRecipientKind = "bishop"
	ReminderRecipientCustom ReminderRecipientKind = "custom"
)

// ScheduleTemplate is a named collection of recurring Sunday items.
type ScheduleTemplate struct {
	bun.BaseModel `bun:"table:schedule_templates"`

	ID          string    `bun:"id,pk"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

func (t *ScheduleTemplate) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if t.ID == "" {
			t.ID = NewID("tmpl")
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		if t.UpdatedAt.IsZero() {
			t.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		t.UpdatedAt = now
	}
	return nil
}

// RecurringScheduleItem recurs every Sunday (WeekOfMonth 0) or on the Nth
// Sunday of the month (1-5). StartMinutes must be before EndMinutes.
type RecurringScheduleItem struct {
	bun.BaseModel `bun:"table:recurring_schedule_items"`

	ID                        string                `bun:"id,pk"`
	TemplateID                string                `bun:"template_id,notnull"`
	Label                     string                `bun:"label,notnull"`
	WeekOfMonth               int                   `bun:"week_of_month,notnull"`
	StartMinutes              int                   `bun:"start_minutes,notnull"`
	EndMinutes                int                   `bun:"end_minutes,notnull"`
	Order                     int                   `bun:"display_order,notnull"`
	ReminderDaysBefore        int                   `bun:"reminder_days_before"`
	ReminderRecipientKind     ReminderRecipientKind `bun:"reminder_recipient_kind"`
	ReminderRecipientPersonID string                `bun:"reminder_recipient_person_id"`
	CreatedAt                 time.Time             `bun:"created_at,notnull"`
	UpdatedAt                 time.Time             `bun:"updated_at,notnull"`
}

func (i *RecurringScheduleItem) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if i.ID == "" {
			i.ID = NewID("rsi")
		}
		if i.CreatedAt.IsZero() {
			i.CreatedAt = now
		}
		if i.UpdatedAt.IsZero() {
			i.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		i.UpdatedAt = now
	}
	return nil
}

// ScheduleItemException suppresses one recurring item on one specific date.
type ScheduleItemException struct {
	bun.BaseModel `bun:"table:schedule_item_exceptions"`

	ID         string    `bun:"id,pk"`
	TemplateID string    `bun:"template_id,notnull"`
	ItemID     string    `bun:"item_id,notnull"`
	LocalDate  string    `bun:"local_date,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

func (e *ScheduleItemException) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if e.ID == "" {
			e.ID = NewID("sie")
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		if e.UpdatedAt.IsZero() {
			e.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		e.UpdatedAt = now
	}
	return nil
}

// DayBlock is a one-off, non-interview event on a single day.
type DayBlock struct {
	bun.BaseModel `bun:"table:day_blocks"`

	ID           string    `bun:"id,pk"`
	LocalDate    string    `bun:"local_date,notnull"`
	StartMinutes int       `bun:"start_minutes,notnull"`
	EndMinutes   int       `bun:"end_minutes,notnull"`
	Label        string    `bun:"label,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

func (b *DayBlock) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if b.ID == "" {
			b.ID = NewID("block")
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		if b.UpdatedAt.IsZero() {
			b.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		b.UpdatedAt = now
	}
	return nil
}

// Occurrence is one recurring item resolved onto a concrete date.
type Occurrence struct {
	ItemID       string
	Label        string
	StartMinutes int
	EndMinutes   int
}

// OccurrencesForDate expands a template's recurring items for one date: an
// item occurs when its week pattern matches the date's week-of-month and no
// exception suppresses it there. Output preserves input order; callers sort
// by start when they need a time-ordered view.
func OccurrencesForDate(items []RecurringScheduleItem, exceptions []ScheduleItemException, localDate string) ([]Occurrence, error) {
	week, err := WeekOfMonth(localDate)
	if err != nil {
		return nil, err
	}

	suppressed := make(map[string]struct{})
	for _, e := range exceptions {
		if e.LocalDate == localDate {
			suppressed[e.ItemID] = struct{}{}
		}
	}

	out := make([]Occurrence, 0, len(items))
	for _, item := range items {
		if item.WeekOfMonth != 0 && item.WeekOfMonth != week {
			continue
		}
		if _, ok := suppressed[item.ID]; ok {
			continue
		}
		out = append(out, Occurrence{
			ItemID:       item.ID,
			Label:        item.Label,
			StartMinutes: item.StartMinutes,
			EndMinutes:   item.EndMinutes,
		})
	}
	return out, nil
}

// NextOccurrenceDate finds the next Sunday on/after fromDate matching the
// item's week pattern, then steps over any dates that carry an exception for
// the item. Exception stepping advances a flat 7 days at a time without
// re-matching the week pattern.
func NextOccurrenceDate(item RecurringScheduleItem, exceptions []ScheduleItemException, fromDate string) (string, error) {
	if item.WeekOfMonth < 0 || item.WeekOfMonth > 5 {
		return "", errors.New("invalid week of month")
	}

	date, err := UpcomingSunday(fromDate)
	if err != nil {
		return "", err
	}

	if item.WeekOfMonth != 0 {
		for {
			week, err := WeekOfMonth(date)
			if err != nil {
				return "", err
			}
			if week == item.WeekOfMonth {
				break
			}
			date, err = AddDays(date, 7)
			if err != nil {
				return "", err
			}
		}
	}

	excepted := make(map[string]struct{})
	for _, e := range exceptions {
		if e.ItemID == item.ID {
			excepted[e.LocalDate] = struct{}{}
		}
	}
	for {
		if _, ok := excepted[date]; !ok {
			return date, nil
		}
		date, err = AddDays(date, 7)
		if err != nil {
			return "", err
		}
	}
}
