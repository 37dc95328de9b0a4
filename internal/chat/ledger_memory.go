package chat

import (
	"context"
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"guestchat-backend/internal/database"
)

// MemoryMessageLedger is the in-memory counterpart of the gorm ledger, used by
// unit tests and single-process local runs.
type MemoryMessageLedger struct {
	mu       sync.Mutex
	nextSeq  uint64
	messages map[string][]database.GuestMessage
}

func NewMemoryMessageLedger() *MemoryMessageLedger {
	return &MemoryMessageLedger{messages: make(map[string][]database.GuestMessage)}
}

func (l *MemoryMessageLedger) Append(ctx context.Context, sessionID, senderParty, senderName, content string) (*database.GuestMessage, error) {
	if err := ValidateContent(content); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextSeq++
	msg := database.GuestMessage{
		Seq:         l.nextSeq,
		ID:          uuid.New(),
		SessionID:   sessionID,
		SenderParty: senderParty,
		SenderName:  senderName,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}
	l.messages[sessionID] = append(l.messages[sessionID], msg)
	return &msg, nil
}

func (l *MemoryMessageLedger) snapshot(sessionID string, afterSeq uint64) []database.GuestMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []database.GuestMessage
	for _, msg := range l.messages[sessionID] {
		if msg.Seq > afterSeq {
			out = append(out, msg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

func (l *MemoryMessageLedger) ListBySession(ctx context.Context, sessionID string) iter.Seq2[database.GuestMessage, error] {
	return func(yield func(database.GuestMessage, error) bool) {
		for _, msg := range l.snapshot(sessionID, 0) {
			if !yield(msg, nil) {
				return
			}
		}
	}
}

func (l *MemoryMessageLedger) MessagesAfter(ctx context.Context, sessionID string, afterSeq uint64) ([]database.GuestMessage, error) {
	return l.snapshot(sessionID, afterSeq), nil
}

func (l *MemoryMessageLedger) MarkRead(ctx context.Context, sessionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	msgs := l.messages[sessionID]
	for i := range msgs {
		if msgs[i].SenderParty == database.PartyGuest {
			msgs[i].IsRead = true
		}
	}
	return nil
}
