package domain

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type MessageQueueStatus string

const (
	MessageStatusPending MessageQueueStatus = "pending"
	MessageStatusOpened  MessageQueueStatus = "opened"
	MessageStatusSent    MessageQueueStatus = "sent"
	MessageStatusSkipped MessageQueueStatus = "skipped"
)

// MessageQueueItem is a drafted outbound text waiting for the user to send.
// RelatedObjectType/RelatedObjectID tie a message back to the record that
// produced it and double as the reminder dedupe key.
type MessageQueueItem struct {
	bun.BaseModel `bun:"table:message_queue"`

	ID                string             `bun:"id,pk"`
	RecipientPhone    string             `bun:"recipient_phone,notnull"`
	RenderedMessage   string             `bun:"rendered_message,notnull"`
	RelatedObjectType string             `bun:"related_object_type"`
	RelatedObjectID   string             `bun:"related_object_id"`
	Status            MessageQueueStatus `bun:"status,notnull"`
	CreatedAt         time.Time          `bun:"created_at,notnull"`
	UpdatedAt         time.Time          `bun:"updated_at,notnull"`
}

func (m *MessageQueueItem) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if m.ID == "" {
			m.ID = NewID("msg")
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		if m.UpdatedAt.IsZero() {
			m.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		m.UpdatedAt = now
	}
	return nil
}

// Setting is one ambient key-value entry (bishop person id, last reminder
// sweep date, and so on).
type Setting struct {
	bun.BaseModel `bun:"table:settings"`

	ID        string    `bun:"id,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
