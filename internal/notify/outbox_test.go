package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"guestchat-backend/internal/database"
)

func TestOutboxRecord(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.GetMigrator(db).Migrate())

	outbox := NewOutbox(db)

	payload := InvitationPayload{
		Token:      "tok1",
		GuestURL:   "http://localhost:8001/guest-chat/tok1",
		GuestEmail: "ann@example.com",
		JobTitle:   "Backend Engineer",
		ExpiresAt:  time.Now().Add(time.Hour).UTC(),
	}
	require.NoError(t, outbox.Record(context.Background(), payload))

	var rows []database.InvitationNotification
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "tok1", rows[0].SessionID)
	assert.Equal(t, "ann@example.com", rows[0].Recipient)

	var stored InvitationPayload
	require.NoError(t, json.Unmarshal(rows[0].Payload, &stored))
	assert.Equal(t, payload.GuestURL, stored.GuestURL)
	assert.Equal(t, payload.JobTitle, stored.JobTitle)
}
