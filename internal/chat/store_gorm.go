package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"guestchat-backend/internal/database"
)

// GormSessionStore persists sessions through gorm. The compare-and-swap
// operations rely on single-statement conditional UPDATEs, which are atomic on
// every backend gorm supports here.
type GormSessionStore struct {
	db *gorm.DB
}

func NewGormSessionStore(db *gorm.DB) *GormSessionStore {
	return &GormSessionStore{db: db}
}

func (s *GormSessionStore) Create(ctx context.Context, session *database.GuestChatSession) error {
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("unable to create guest chat session: %w", err)
	}
	return nil
}

func (s *GormSessionStore) GetByToken(ctx context.Context, token string) (*database.GuestChatSession, error) {
	var session database.GuestChatSession
	if err := s.db.WithContext(ctx).First(&session, "id = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("unable to load guest chat session: %w", err)
	}
	return &session, nil
}

func (s *GormSessionStore) CommitAppend(ctx context.Context, token string, expectedCount int) (*database.GuestChatSession, error) {
	res := s.db.WithContext(ctx).
		Model(&database.GuestChatSession{}).
		Where("id = ? AND message_count = ?", token, expectedCount).
		Update("message_count", gorm.Expr("message_count + 1"))
	if res.Error != nil {
		return nil, fmt.Errorf("unable to commit message append: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		// Either a concurrent sender won the race or the token is bogus.
		if _, err := s.GetByToken(ctx, token); err != nil {
			return nil, err
		}
		return nil, ErrConflict
	}

	return s.GetByToken(ctx, token)
}

func (s *GormSessionStore) SetGuestIdentity(ctx context.Context, token, name, email string) error {
	updates := map[string]any{
		"guest_name": sql.NullString{String: name, Valid: name != ""},
	}
	if email != "" {
		updates["guest_email"] = sql.NullString{String: email, Valid: true}
	}

	err := s.db.WithContext(ctx).
		Model(&database.GuestChatSession{}).
		Where("id = ? AND guest_name IS NULL", token).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("unable to set guest identity: %w", err)
	}
	return nil
}

func (s *GormSessionStore) UpdateStatus(ctx context.Context, token, from, to string) error {
	err := s.db.WithContext(ctx).
		Model(&database.GuestChatSession{}).
		Where("id = ? AND status = ?", token, from).
		Update("status", to).Error
	if err != nil {
		return fmt.Errorf("unable to update session status: %w", err)
	}
	return nil
}

func (s *GormSessionStore) MarkConverted(ctx context.Context, token string, userID uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Model(&database.GuestChatSession{}).
		Where("id = ? AND status <> ?", token, database.SessionConverted).
		Updates(map[string]any{
			"status":            database.SessionConverted,
			"converted_user_id": uuid.NullUUID{UUID: userID, Valid: true},
		}).Error
	if err != nil {
		return fmt.Errorf("unable to mark session converted: %w", err)
	}
	return nil
}
