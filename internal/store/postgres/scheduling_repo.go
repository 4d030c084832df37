package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"bishopric/backend/internal/domain"
	"bishopric/backend/internal/store"
)

// SchedulingRepo is the bun-backed SchedulingRepository and PersonRepository.
type SchedulingRepo struct {
	db *bun.DB
}

func NewSchedulingRepo(db *bun.DB) *SchedulingRepo {
	return &SchedulingRepo{db: db}
}

// CreateAppointment inserts inside a transaction holding the day's advisory
// lock, so the caller's read-slots-then-book sequence cannot double-book a
// slot against a concurrent writer.
func (r *SchedulingRepo) CreateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	var out domain.Appointment
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockCalendarDay(ctx, tx, appt.LocalDate); err != nil {
			return err
		}
		m := appt
		if _, err := tx.NewInsert().Model(&m).Exec(ctx); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return store.ErrConflict
			}
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func lockCalendarDay(ctx context.Context, tx bun.Tx, localDate string) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", localDate).Exec(ctx)
	return err
}

func (r *SchedulingRepo) GetAppointment(ctx context.Context, id string) (domain.Appointment, error) {
	var row domain.Appointment
	err := r.db.NewSelect().
		Model(&row).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, store.ErrNotFound
		}
		return domain.Appointment{}, err
	}
	return row, nil
}

func (r *SchedulingRepo) UpdateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	m := appt
	res, err := r.db.NewUpdate().
		Model(&m).
		WherePK().
		Exec(ctx)
	if err != nil {
		return domain.Appointment{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Appointment{}, err
	}
	if affected == 0 {
		return domain.Appointment{}, store.ErrNotFound
	}
	return m, nil
}

func (r *SchedulingRepo) ListAppointmentsOnDate(ctx context.Context, localDate string) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("local_date = ?", localDate).
		OrderExpr("minutes_from_midnight ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SchedulingRepo) ListAppointmentsInRange(ctx context.Context, startDate, endDate string) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("local_date >= ?", startDate).
		Where("local_date <= ?", endDate).
		OrderExpr("local_date ASC, minutes_from_midnight ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SchedulingRepo) ListBlackoutDates(ctx context.Context) ([]domain.BlackoutDate, error) {
	var rows []domain.BlackoutDate
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("local_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SchedulingRepo) CreateBlackoutDate(ctx context.Context, b domain.BlackoutDate) (domain.BlackoutDate, error) {
	m := b
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.BlackoutDate{}, err
	}
	return m, nil
}

func (r *SchedulingRepo) DeleteBlackoutDate(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().
		Model((*domain.BlackoutDate)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SchedulingRepo) ListRecurringItems(ctx context.Context, templateID string) ([]domain.RecurringScheduleItem, error) {
	var rows []domain.RecurringScheduleItem
	err := r.db.NewSelect().
		Model(&rows).
		Where("template_id = ?", templateID).
		OrderExpr("display_order ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SchedulingRepo) ListItemExceptions(ctx context.Context, templateID string) ([]domain.ScheduleItemException, error) {
	var rows []domain.ScheduleItemException
	err := r.db.NewSelect().
		Model(&rows).
		Where("template_id = ?", templateID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SchedulingRepo) ListDayBlocks(ctx context.Context, localDate string) ([]domain.DayBlock, error) {
	var rows []domain.DayBlock
	err := r.db.NewSelect().
		Model(&rows).
		Where("local_date = ?", localDate).
		OrderExpr("start_minutes ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SchedulingRepo) ListPeople(ctx context.Context) ([]domain.Person, error) {
	var rows []domain.Person
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("name_list_preferred ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SchedulingRepo) GetPerson(ctx context.Context, id string) (domain.Person, error) {
	var row domain.Person
	err := r.db.NewSelect().
		Model(&row).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Person{}, store.ErrNotFound
		}
		return domain.Person{}, err
	}
	return row, nil
}
