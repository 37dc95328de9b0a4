package chat

import "errors"

// Rejection taxonomy for guest chat operations. Callers are expected to match
// with errors.Is; the HTTP layer translates these into structured responses.
var (
	// ErrNotFound is returned for any token that does not resolve to a
	// session. Unknown and malformed tokens are indistinguishable on purpose.
	ErrNotFound = errors.New("session not found")

	ErrSessionExpired    = errors.New("session expired")
	ErrSessionConverted  = errors.New("session converted to full account")
	ErrQuotaExceeded     = errors.New("guest message quota exceeded")
	ErrMessageTooLong    = errors.New("message content too long")
	ErrEmptyMessage      = errors.New("message content is empty")
	ErrInvalidParameters = errors.New("invalid session parameters")

	// ErrConflict surfaces when the bounded compare-and-swap retry loop is
	// exhausted. It is transient; the caller may retry the whole send.
	ErrConflict = errors.New("concurrent update conflict")
)
