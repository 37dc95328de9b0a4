package chat

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"guestchat-backend/internal/database"
)

type GormMessageLedger struct {
	db *gorm.DB
}

func NewGormMessageLedger(db *gorm.DB) *GormMessageLedger {
	return &GormMessageLedger{db: db}
}

func (l *GormMessageLedger) Append(ctx context.Context, sessionID, senderParty, senderName, content string) (*database.GuestMessage, error) {
	if err := ValidateContent(content); err != nil {
		return nil, err
	}

	msg := database.GuestMessage{
		ID:          uuid.New(),
		SessionID:   sessionID,
		SenderParty: senderParty,
		SenderName:  senderName,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}
	if err := l.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("unable to append message: %w", err)
	}
	return &msg, nil
}

func (l *GormMessageLedger) ListBySession(ctx context.Context, sessionID string) iter.Seq2[database.GuestMessage, error] {
	return func(yield func(database.GuestMessage, error) bool) {
		offset := 0
		for {
			var batch []database.GuestMessage
			err := l.db.WithContext(ctx).
				Where("session_id = ?", sessionID).
				Order("created_at ASC, seq ASC").
				Limit(listPageSize).
				Offset(offset).
				Find(&batch).Error
			if err != nil {
				yield(database.GuestMessage{}, fmt.Errorf("unable to list messages: %w", err))
				return
			}

			for _, msg := range batch {
				if !yield(msg, nil) {
					return
				}
			}

			if len(batch) < listPageSize {
				return
			}
			offset += len(batch)
		}
	}
}

func (l *GormMessageLedger) MessagesAfter(ctx context.Context, sessionID string, afterSeq uint64) ([]database.GuestMessage, error) {
	var messages []database.GuestMessage
	err := l.db.WithContext(ctx).
		Where("session_id = ? AND seq > ?", sessionID, afterSeq).
		Order("created_at ASC, seq ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("unable to list messages: %w", err)
	}
	return messages, nil
}

func (l *GormMessageLedger) MarkRead(ctx context.Context, sessionID string) error {
	err := l.db.WithContext(ctx).
		Model(&database.GuestMessage{}).
		Where("session_id = ? AND sender_party = ? AND is_read = ?", sessionID, database.PartyGuest, false).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("unable to mark messages read: %w", err)
	}
	return nil
}
