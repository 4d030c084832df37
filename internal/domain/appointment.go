package domain

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type AppointmentType string

const (
	AppointmentTypeBishopInterview    AppointmentType = "bishop_interview"
	AppointmentTypeTithingDeclaration AppointmentType = "tithing_declaration"
)

type AppointmentStatus string

const (
	AppointmentStatusHold      AppointmentStatus = "hold"
	AppointmentStatusInvited   AppointmentStatus = "invited"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCanceled  AppointmentStatus = "canceled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// DefaultAppointmentDuration is assumed whenever an appointment carries no
// duration of its own.
const DefaultAppointmentDuration = 20

// HistoryEntry is one line of an appointment's append-only history log.
type HistoryEntry struct {
	At   time.Time `json:"at"`
	Who  string    `json:"who"`
	What string    `json:"what"`
}

// Appointment is a booked interview slot. Status transitions are not
// validated here; cancellation is a status change, never a delete.
type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID                  string            `bun:"id,pk"`
	Type                AppointmentType   `bun:"type,notnull"`
	PersonID            string            `bun:"person_id,notnull"`
	LocalDate           string            `bun:"local_date,notnull"`
	MinutesFromMidnight int               `bun:"minutes_from_midnight,notnull"`
	DurationMinutes     int               `bun:"duration_minutes,notnull"`
	Location            string            `bun:"location"`
	Status              AppointmentStatus `bun:"status,notnull"`
	InterviewKind       string            `bun:"interview_kind"`
	HistoryLog          []HistoryEntry    `bun:"history_log,type:jsonb"`
	CreatedAt           time.Time         `bun:"created_at,notnull"`
	UpdatedAt           time.Time         `bun:"updated_at,notnull"`
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == "" {
			a.ID = NewID("apt")
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}

// BlackoutDate marks a whole day as unavailable for interviews; any slot
// query for it yields no slots regardless of grid or bookings.
type BlackoutDate struct {
	bun.BaseModel `bun:"table:blackout_dates"`

	ID        string    `bun:"id,pk"`
	LocalDate string    `bun:"local_date,notnull"`
	Reason    string    `bun:"reason"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (b *BlackoutDate) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if b.ID == "" {
			b.ID = NewID("blackout")
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

// GeneralConferenceDates returns the first Sundays of April and October,
// the usual one-tap blackout candidates.
func GeneralConferenceDates(year int) []string {
	return []string{firstSundayOfMonth(year, time.April), firstSundayOfMonth(year, time.October)}
}

func firstSundayOfMonth(year int, month time.Month) string {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	add := 0
	if wd := int(first.Weekday()); wd != 0 {
		add = 7 - wd
	}
	return FormatLocalDate(first.AddDate(0, 0, add))
}
