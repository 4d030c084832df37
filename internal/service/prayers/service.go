package prayers

import (
	"context"
	"math/rand"
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

type Service struct {
	people store.PersonRepository
	repo   store.PrayerRepository
}

func NewService(people store.PersonRepository, repo store.PrayerRepository) *Service {
	return &Service{people: people, repo: repo}
}

// SuggestParams tunes one suggestion round.
type SuggestParams struct {
	ForSunday  string
	RoleFilter domain.PrayerRoleFilter
	Limit      int
	MinAge     int
	// Rand enables the shuffled variant; nil keeps strict rotation order.
	Rand *rand.Rand
}

// Suggest loads the rotation inputs and ranks eligible people, least
// recently served first. An empty result (everyone skipped or ineligible)
// is a normal outcome.
func (s *Service) Suggest(ctx context.Context, prayerType domain.PrayerType, params SuggestParams) ([]domain.SuggestedPerson, error) {
	if prayerType != domain.PrayerTypeOpening && prayerType != domain.PrayerTypeClosing {
		return nil, validationError("prayer_type must be opening or closing")
	}

	people, err := s.people.ListPeople(ctx)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.ListHistory(ctx, prayerType)
	if err != nil {
		return nil, err
	}
	assignments, err := s.repo.ListAssignments(ctx, prayerType)
	if err != nil {
		return nil, err
	}
	var skips []domain.PrayerSkipped
	if params.ForSunday != "" {
		skips, err = s.repo.ListSkipped(ctx, prayerType, params.ForSunday)
		if err != nil {
			return nil, err
		}
	}

	return domain.Suggest(prayerType, people, history, assignments, skips, domain.SuggestOptions{
		RoleFilter: params.RoleFilter,
		ForSunday:  params.ForSunday,
		Limit:      params.Limit,
		MinAge:     params.MinAge,
		Rand:       params.Rand,
	})
}

// RecordSkipped inserts a per-Sunday skip so the person is not re-suggested
// for that Sunday and type. Plain insert; duplicates are tolerated.
func (s *Service) RecordSkipped(ctx context.Context, personID string, prayerType domain.PrayerType, localDate string) error {
	if personID == "" {
		return validationError("person_id is required")
	}
	if _, err := domain.ParseLocalDate(localDate); err != nil {
		return validationError("local_date is invalid")
	}
	_, err := s.repo.CreateSkipped(ctx, domain.PrayerSkipped{
		PersonID:   personID,
		PrayerType: prayerType,
		LocalDate:  localDate,
	})
	return err
}

// RecordCompleted appends a completed history record so the rotation stays
// accurate. Plain insert; readers take the latest date, never a count.
func (s *Service) RecordCompleted(ctx context.Context, personID string, prayerType domain.PrayerType, localDate string) error {
	if personID == "" {
		return validationError("person_id is required")
	}
	if _, err := domain.ParseLocalDate(localDate); err != nil {
		return validationError("local_date is invalid")
	}
	now := time.Now().UTC()
	_, err := s.repo.CreateHistory(ctx, domain.PrayerHistoryRecord{
		PersonID:    personID,
		PrayerType:  prayerType,
		LocalDate:   localDate,
		Status:      "completed",
		CompletedAt: &now,
	})
	return err
}
