package chat

import (
	"context"
	"iter"
	"strings"
	"unicode/utf8"

	"guestchat-backend/internal/database"
)

// MaxMessageLength bounds message content, counted in runes.
const MaxMessageLength = 2000

const listPageSize = 100

// MessageLedger is the append-only, session-scoped log of exchanged messages.
// Messages are never updated or deleted except for the recruiter-side read
// acknowledgement flag, which does not participate in ordering or quota.
type MessageLedger interface {
	Append(ctx context.Context, sessionID, senderParty, senderName, content string) (*database.GuestMessage, error)

	// ListBySession yields the session's messages ordered by created_at with
	// insertion sequence as tiebreak. The sequence is lazy and restartable;
	// ranging over it twice re-reads from the ledger.
	ListBySession(ctx context.Context, sessionID string) iter.Seq2[database.GuestMessage, error]

	// MessagesAfter returns messages with a sequence number greater than
	// afterSeq, in display order. afterSeq of zero returns everything.
	MessagesAfter(ctx context.Context, sessionID string, afterSeq uint64) ([]database.GuestMessage, error)

	// MarkRead flags all guest-authored messages in the session as read.
	MarkRead(ctx context.Context, sessionID string) error
}

// ValidateContent applies the content rules shared by every ledger
// implementation.
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}

// CollectMessages drains a ledger sequence into a slice, stopping at the first
// error.
func CollectMessages(seq iter.Seq2[database.GuestMessage, error]) ([]database.GuestMessage, error) {
	var messages []database.GuestMessage
	for msg, err := range seq {
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
