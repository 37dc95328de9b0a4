package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"guestchat-backend/internal/database"
)

// Outbox records every published invitation for audit. It is written on the
// same fire-and-forget path as the queue publish; failures are logged by the
// caller and never block session creation.
type Outbox struct {
	db *gorm.DB
}

func NewOutbox(db *gorm.DB) *Outbox {
	return &Outbox{db: db}
}

func (o *Outbox) Record(ctx context.Context, payload InvitationPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("could not marshal invitation payload: %w", err)
	}

	row := database.InvitationNotification{
		ID:        uuid.New(),
		SessionID: payload.Token,
		Recipient: payload.GuestEmail,
		Payload:   datatypes.JSON(body),
		CreatedAt: time.Now().UTC(),
	}
	if err := o.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("could not record invitation notification: %w", err)
	}
	return nil
}
