package chat

import (
	"context"

	"github.com/google/uuid"

	"guestchat-backend/internal/database"
)

// SessionStore is the single mutable shared resource of the engine. All
// counter and status mutation goes through conditional updates so the engine
// is safe across processes, not just goroutines.
type SessionStore interface {
	Create(ctx context.Context, session *database.GuestChatSession) error

	// GetByToken returns ErrNotFound for any token without a session row.
	GetByToken(ctx context.Context, token string) (*database.GuestChatSession, error)

	// CommitAppend increments message_count by exactly one, but only if the
	// stored count still equals expectedCount. A lost race returns
	// ErrConflict; the caller owns the bounded retry.
	CommitAppend(ctx context.Context, token string, expectedCount int) (*database.GuestChatSession, error)

	// SetGuestIdentity fills the guest name/email once; a no-op if already set.
	SetGuestIdentity(ctx context.Context, token, name, email string) error

	// UpdateStatus applies the from->to transition if the stored status still
	// equals from. Zero rows affected is not an error: lazy recomputation
	// means several callers may race to persist the same transition.
	UpdateStatus(ctx context.Context, token, from, to string) error

	// MarkConverted moves the session to CONVERTED and records the new account
	// id. Idempotent; calling it on an already converted session is a no-op.
	MarkConverted(ctx context.Context, token string, userID uuid.UUID) error
}
