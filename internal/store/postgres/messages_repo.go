package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"bishopric/backend/internal/domain"
	"bishopric/backend/internal/store"
)

// MessagesRepo is the bun-backed MessageRepository and SettingsRepository.
type MessagesRepo struct {
	db *bun.DB
}

func NewMessagesRepo(db *bun.DB) *MessagesRepo {
	return &MessagesRepo{db: db}
}

func (r *MessagesRepo) Enqueue(ctx context.Context, m domain.MessageQueueItem) (domain.MessageQueueItem, error) {
	row := m
	if _, err := r.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.MessageQueueItem{}, err
	}
	return row, nil
}

// FindByRelatedObject is the dedupe lookup for reminders; the
// (related_object_type, related_object_id) pair is indexed so this stays a
// point query rather than a scan.
func (r *MessagesRepo) FindByRelatedObject(ctx context.Context, relatedType, relatedID string) (domain.MessageQueueItem, error) {
	var row domain.MessageQueueItem
	err := r.db.NewSelect().
		Model(&row).
		Where("related_object_type = ?", relatedType).
		Where("related_object_id = ?", relatedID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.MessageQueueItem{}, store.ErrNotFound
		}
		return domain.MessageQueueItem{}, err
	}
	return row, nil
}

func (r *MessagesRepo) GetSetting(ctx context.Context, id string) (domain.Setting, error) {
	var row domain.Setting
	err := r.db.NewSelect().
		Model(&row).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Setting{}, store.ErrNotFound
		}
		return domain.Setting{}, err
	}
	return row, nil
}

func (r *MessagesRepo) PutSetting(ctx context.Context, s domain.Setting) error {
	s.UpdatedAt = time.Now().UTC()
	_, err := r.db.NewInsert().
		Model(&s).
		On("CONFLICT (id) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
