package domain

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/uptrace/bun"
)

type PrayerType string

const (
	PrayerTypeOpening PrayerType = "opening"
	PrayerTypeClosing PrayerType = "closing"
)

type PrayerAssignmentStatus string

const (
	PrayerAssignmentSuggested     PrayerAssignmentStatus = "suggested"
	PrayerAssignmentAsked         PrayerAssignmentStatus = "asked"
	PrayerAssignmentAccepted      PrayerAssignmentStatus = "accepted"
	PrayerAssignmentCompleted     PrayerAssignmentStatus = "completed"
	PrayerAssignmentDeclined      PrayerAssignmentStatus = "declined"
	PrayerAssignmentNotThisSunday PrayerAssignmentStatus = "not_this_sunday"
)

// NotThisSundayBoostWeeks is how far a deferred person's effective
// last-served date is pulled backward so they resurface sooner.
const NotThisSundayBoostWeeks = 4

// PrayerHistoryRecord is a completed (or otherwise resolved) prayer.
// Duplicates are possible and tolerated; readers aggregate by latest date.
type PrayerHistoryRecord struct {
	bun.BaseModel `bun:"table:prayer_history"`

	ID          string     `bun:"id,pk"`
	PersonID    string     `bun:"person_id,notnull"`
	PrayerType  PrayerType `bun:"prayer_type,notnull"`
	LocalDate   string     `bun:"local_date,notnull"`
	Status      string     `bun:"status,notnull"`
	CompletedAt *time.Time `bun:"completed_at"`
	CreatedAt   time.Time  `bun:"created_at,notnull"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull"`
}

func (r *PrayerHistoryRecord) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if r.ID == "" {
			r.ID = NewID("ph")
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		if r.UpdatedAt.IsZero() {
			r.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		r.UpdatedAt = now
	}
	return nil
}

// PrayerAssignment is an in-progress or resolved assignment.
type PrayerAssignment struct {
	bun.BaseModel `bun:"table:prayer_assignments"`

	ID          string                 `bun:"id,pk"`
	PersonID    string                 `bun:"person_id,notnull"`
	LocalDate   string                 `bun:"local_date,notnull"`
	PrayerType  PrayerType             `bun:"prayer_type,notnull"`
	Status      PrayerAssignmentStatus `bun:"status,notnull"`
	CompletedAt *time.Time             `bun:"completed_at"`
	Notes       string                 `bun:"notes"`
	CreatedAt   time.Time              `bun:"created_at,notnull"`
	UpdatedAt   time.Time              `bun:"updated_at,notnull"`
}

func (a *PrayerAssignment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == "" {
			a.ID = NewID("pa")
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

// PrayerSkipped excludes one person from suggestions for one Sunday and type.
type PrayerSkipped struct {
	bun.BaseModel `bun:"table:prayer_skipped"`

	ID         string     `bun:"id,pk"`
	PersonID   string     `bun:"person_id,notnull"`
	PrayerType PrayerType `bun:"prayer_type,notnull"`
	LocalDate  string     `bun:"local_date,notnull"`
	CreatedAt  time.Time  `bun:"created_at,notnull"`
}

func (s *PrayerSkipped) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		if s.ID == "" {
			s.ID = NewID("ps")
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = time.Now().UTC()
		}
	}
	return nil
}

type PrayerRoleFilter string

const (
	PrayerRoleAll     PrayerRoleFilter = "all"
	PrayerRoleYouth   PrayerRoleFilter = "youth"
	PrayerRolePrimary PrayerRoleFilter = "primary"
)

// SuggestedPerson pairs a person with their effective last prayer date.
// An empty LastPrayerDate means never served.
type SuggestedPerson struct {
	Person         Person
	LastPrayerDate string
}

// SuggestOptions tunes the rotation suggestion.
type SuggestOptions struct {
	// RoleFilter narrows eligibility; empty or "all" keeps every role.
	RoleFilter PrayerRoleFilter
	// ForSunday scopes skip records to one Sunday. Empty disables skip
	// exclusion.
	ForSunday string
	// Limit caps the returned list; non-positive means 5.
	Limit int
	// MinAge, when positive, excludes people whose known age (birth year
	// against ForSunday, else the stored age field) falls below it. People
	// with no age information pass the gate; the cutoff itself is caller
	// policy, not a rule of the rotation.
	MinAge int
	// Rand, when set, shuffles the truncated list so repeated draws do not
	// always serve the head of the rotation. Nil keeps strict ascending
	// order.
	Rand *rand.Rand
}

// Suggest ranks eligible people by least-recent prayer for one type: never
// served first, then oldest last-served date. Inputs may be unfiltered
// result sets; records of other types or statuses are ignored here. A
// not_this_sunday assignment pulls the person's effective last date 4 weeks
// before its own date, overriding even later real history, so deferral never
// pushes someone further down the rotation.
func Suggest(
	prayerType PrayerType,
	people []Person,
	history []PrayerHistoryRecord,
	assignments []PrayerAssignment,
	skips []PrayerSkipped,
	opts SuggestOptions,
) ([]SuggestedPerson, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 5
	}

	skipped := make(map[string]struct{})
	if opts.ForSunday != "" {
		for _, s := range skips {
			if s.PrayerType == prayerType && s.LocalDate == opts.ForSunday {
				skipped[s.PersonID] = struct{}{}
			}
		}
	}

	last := make(map[string]string)
	for _, r := range history {
		if r.PrayerType != prayerType {
			continue
		}
		if existing, ok := last[r.PersonID]; !ok || r.LocalDate > existing {
			last[r.PersonID] = r.LocalDate
		}
	}
	for _, a := range assignments {
		if a.PrayerType != prayerType || a.Status != PrayerAssignmentCompleted || a.CompletedAt == nil {
			continue
		}
		date := FormatLocalDate(a.CompletedAt.UTC())
		if existing, ok := last[a.PersonID]; !ok || date > existing {
			last[a.PersonID] = date
		}
	}
	for _, a := range assignments {
		if a.PrayerType != prayerType || a.Status != PrayerAssignmentNotThisSunday {
			continue
		}
		boosted, err := AddDays(a.LocalDate, -7*NotThisSundayBoostWeeks)
		if err != nil {
			return nil, err
		}
		if existing, ok := last[a.PersonID]; !ok || boosted < existing {
			last[a.PersonID] = boosted
		}
	}

	out := []SuggestedPerson{}
	for _, p := range people {
		if p.Inactive || p.DoNotAskForPrayer || !p.EligibleForPrayer {
			continue
		}
		if _, ok := skipped[p.ID]; ok {
			continue
		}
		if opts.RoleFilter != "" && opts.RoleFilter != PrayerRoleAll && string(p.Role) != string(opts.RoleFilter) {
			continue
		}
		if opts.MinAge > 0 {
			if age, known := personAge(p, opts.ForSunday); known && age < opts.MinAge {
				continue
			}
		}
		out = append(out, SuggestedPerson{Person: p, LastPrayerDate: last[p.ID]})
	}

	// Empty last dates sort first: never-served people always lead.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastPrayerDate < out[j].LastPrayerDate
	})

	if len(out) > limit {
		out = out[:limit]
	}
	if opts.Rand != nil {
		opts.Rand.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
	}
	return out, nil
}

func personAge(p Person, referenceDate string) (int, bool) {
	if p.BirthDate != "" && referenceDate != "" {
		birth, err := ParseLocalDate(p.BirthDate)
		if err == nil {
			ref, err := ParseLocalDate(referenceDate)
			if err == nil {
				return ref.Year() - birth.Year(), true
			}
		}
	}
	if p.Age > 0 {
		return p.Age, true
	}
	return 0, false
}
