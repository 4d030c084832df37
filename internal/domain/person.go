package domain

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type PersonRole string

const (
	PersonRoleAdult   PersonRole = "adult"
	PersonRolePrimary PersonRole = "primary"
	PersonRoleYouth   PersonRole = "youth"
)

// Person is a ward member record. The core consumes people as filter and
// ranking input; it never mutates them.
type Person struct {
	bun.BaseModel `bun:"table:people"`

	ID                   string     `bun:"id,pk"`
	HouseholdID          string     `bun:"household_id"`
	NameListPreferred    string     `bun:"name_list_preferred,notnull"`
	NameGiven            string     `bun:"name_given"`
	NameFamily           string     `bun:"name_family"`
	Phones               []string   `bun:"phones,type:jsonb"`
	Email                string     `bun:"email"`
	Role                 PersonRole `bun:"role,notnull"`
	Age                  int        `bun:"age"`
	BirthDate            string     `bun:"birth_date"`
	EligibleForInterview bool       `bun:"eligible_for_interview"`
	EligibleForPrayer    bool       `bun:"eligible_for_prayer"`
	DoNotAskForPrayer    bool       `bun:"do_not_ask_for_prayer"`
	DoNotInterview       bool       `bun:"do_not_interview"`
	Inactive             bool       `bun:"inactive"`
	Notes                string     `bun:"notes"`
	CreatedAt            time.Time  `bun:"created_at,notnull"`
	UpdatedAt            time.Time  `bun:"updated_at,notnull"`
}

func (p *Person) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if p.ID == "" {
			p.ID = NewID("person")
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		p.UpdatedAt = now
	}
	return nil
}
