package postgres

import (
	"context"

	"github.com/uptrace/bun"

	"bishopric/backend/internal/domain"
)

// PrayerRepo is the bun-backed PrayerRepository. Inserts are plain appends;
// duplicates are allowed and readers aggregate by latest date.
type PrayerRepo struct {
	db *bun.DB
}

func NewPrayerRepo(db *bun.DB) *PrayerRepo {
	return &PrayerRepo{db: db}
}

func (r *PrayerRepo) ListHistory(ctx context.Context, prayerType domain.PrayerType) ([]domain.PrayerHistoryRecord, error) {
	var rows []domain.PrayerHistoryRecord
	err := r.db.NewSelect().
		Model(&rows).
		Where("prayer_type = ?", prayerType).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PrayerRepo) ListAssignments(ctx context.Context, prayerType domain.PrayerType) ([]domain.PrayerAssignment, error) {
	var rows []domain.PrayerAssignment
	err := r.db.NewSelect().
		Model(&rows).
		Where("prayer_type = ?", prayerType).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PrayerRepo) ListSkipped(ctx context.Context, prayerType domain.PrayerType, localDate string) ([]domain.PrayerSkipped, error) {
	var rows []domain.PrayerSkipped
	err := r.db.NewSelect().
		Model(&rows).
		Where("prayer_type = ?", prayerType).
		Where("local_date = ?", localDate).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PrayerRepo) CreateHistory(ctx context.Context, rec domain.PrayerHistoryRecord) (domain.PrayerHistoryRecord, error) {
	m := rec
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.PrayerHistoryRecord{}, err
	}
	return m, nil
}

func (r *PrayerRepo) CreateSkipped(ctx context.Context, s domain.PrayerSkipped) (domain.PrayerSkipped, error) {
	m := s
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.PrayerSkipped{}, err
	}
	return m, nil
}
