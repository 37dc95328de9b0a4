package notify

import (
	"context"
	"time"
)

const (
	InvitationQueue = "guest_invitation_queue"
	RetryDelay      = 5 * time.Second
	MaxConnectRetry = 5
)

// InvitationPayload is everything the email worker needs to render and send an
// invitation without calling back into the engine.
type InvitationPayload struct {
	Token    string
	GuestURL string

	GuestName  string
	GuestEmail string

	RecruiterName  string
	RecruiterEmail string

	JobTitle string
	Company  string

	MaxMessages int
	ExpiresAt   time.Time
}

type Task interface {
	Type() string

	Payload() []byte

	Ack() error

	Nack() error

	Reject() error
}

// Publisher is the engine-facing half of the pipeline. Publishing is
// fire-and-forget from the engine's perspective: errors are logged by the
// caller, never propagated into session creation.
type Publisher interface {
	PublishInvitation(ctx context.Context, payload InvitationPayload) error

	Close()
}

type Receiver interface {
	Tasks() <-chan Task

	Close()
}
