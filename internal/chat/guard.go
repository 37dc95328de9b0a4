package chat

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"guestchat-backend/internal/database"
)

// defaultMaxAttempts caps the compare-and-swap retry loop so contention fails
// fast into a caller-visible transient error instead of spinning.
const defaultMaxAttempts = 3

// Guard enforces the session state machine. Status is recomputed from stored
// data plus the current time on every access; there is no background sweep.
type Guard struct {
	store       SessionStore
	ledger      MessageLedger
	maxAttempts int
	now         func() time.Time
}

type GuardOption func(*Guard)

// WithMaxAttempts overrides the CAS retry bound.
func WithMaxAttempts(n int) GuardOption {
	return func(g *Guard) { g.maxAttempts = n }
}

// WithClock substitutes the time source, for tests.
func WithClock(now func() time.Time) GuardOption {
	return func(g *Guard) { g.now = now }
}

func NewGuard(store SessionStore, ledger MessageLedger, opts ...GuardOption) *Guard {
	g := &Guard{
		store:       store,
		ledger:      ledger,
		maxAttempts: defaultMaxAttempts,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// EffectiveStatus derives the session's status from stored data and now.
// CONVERTED and EXPIRED are sticky; expiry takes precedence over the quota
// limit so a lapsed session always reads as EXPIRED.
func EffectiveStatus(session *database.GuestChatSession, now time.Time) string {
	switch session.Status {
	case database.SessionConverted:
		return database.SessionConverted
	case database.SessionExpired:
		return database.SessionExpired
	}
	if !now.Before(session.ExpiresAt) {
		return database.SessionExpired
	}
	if session.MessageCount >= session.MaxMessages {
		return database.SessionLimitReached
	}
	return database.SessionActive
}

// RefreshStatus recomputes the status and persists the transition if it
// differs from the stored value. Safe under races: the conditional write is a
// no-op once any caller has applied the same transition. The session is
// updated in place.
func (g *Guard) RefreshStatus(ctx context.Context, session *database.GuestChatSession) string {
	effective := EffectiveStatus(session, g.now())
	if effective != session.Status {
		if err := g.store.UpdateStatus(ctx, session.ID, session.Status, effective); err != nil {
			// A failed lazy transition is not fatal; the next access retries.
			slog.Error("error persisting session status transition", "session", session.ID, "from", session.Status, "to", effective, "error", err)
		}
		session.Status = effective
	}
	return effective
}

// TrySendGuestMessage validates and atomically commits a guest message against
// the quota and expiry invariants. The counter is committed before the ledger
// append, so under no interleaving can the ledger hold more guest messages
// than the committed count allows.
func (g *Guard) TrySendGuestMessage(ctx context.Context, token, senderName, content string) (*database.GuestMessage, error) {
	if err := ValidateContent(content); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		session, err := g.store.GetByToken(ctx, token)
		if err != nil {
			return nil, err
		}

		switch g.RefreshStatus(ctx, session) {
		case database.SessionExpired:
			return nil, ErrSessionExpired
		case database.SessionConverted:
			return nil, ErrSessionConverted
		}

		if session.MessageCount >= session.MaxMessages {
			return nil, ErrQuotaExceeded
		}

		updated, err := g.store.CommitAppend(ctx, token, session.MessageCount)
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		if updated.MessageCount >= updated.MaxMessages {
			if err := g.store.UpdateStatus(ctx, token, database.SessionActive, database.SessionLimitReached); err != nil {
				slog.Error("error marking session limit reached", "session", token, "error", err)
			}
		}

		return g.ledger.Append(ctx, session.ID, database.PartyGuest, senderName, content)
	}

	return nil, ErrConflict
}

// SendRecruiterMessage appends without touching the quota counter. Recruiter
// messages are unmetered but still refused once the session is expired or
// converted.
func (g *Guard) SendRecruiterMessage(ctx context.Context, token, senderName, content string) (*database.GuestMessage, error) {
	if err := ValidateContent(content); err != nil {
		return nil, err
	}

	session, err := g.store.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	switch g.RefreshStatus(ctx, session) {
	case database.SessionExpired:
		return nil, ErrSessionExpired
	case database.SessionConverted:
		return nil, ErrSessionConverted
	}

	return g.ledger.Append(ctx, session.ID, database.PartyRecruiter, senderName, content)
}
