package chat

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"guestchat-backend/internal/database"
	"guestchat-backend/internal/notify"
)

// maxMessagesCeiling keeps the polling read model bounded even if a caller
// asks for an absurd quota.
const maxMessagesCeiling = 500

// Service orchestrates session issuance, token-scoped access and terminal
// transitions. It is stateless; all coordination lives in the session store.
type Service struct {
	store      SessionStore
	ledger     MessageLedger
	guard      *Guard
	jobs       JobCatalog
	recruiters RecruiterDirectory

	notifier notify.Publisher
	outbox   *notify.Outbox

	baseURL string
	now     func() time.Time
}

func NewService(
	store SessionStore,
	ledger MessageLedger,
	jobs JobCatalog,
	recruiters RecruiterDirectory,
	notifier notify.Publisher,
	outbox *notify.Outbox,
	baseURL string,
	guardOpts ...GuardOption,
) *Service {
	guard := NewGuard(store, ledger, guardOpts...)
	return &Service{
		store:      store,
		ledger:     ledger,
		guard:      guard,
		jobs:       jobs,
		recruiters: recruiters,
		notifier:   notifier,
		outbox:     outbox,
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        guard.now,
	}
}

type CreateInvitationParams struct {
	JobID       uuid.UUID
	RecruiterID uuid.UUID
	GuestName   string
	GuestEmail  string
	MaxMessages int
	ExpiresAt   time.Time
}

type Invitation struct {
	Token    string
	GuestURL string
	Session  *database.GuestChatSession
}

// CreateInvitation validates the parameters, persists a new session keyed by
// a fresh token and kicks off the invitation email. The email is
// fire-and-forget: a publish failure is logged and the invitation is still
// returned.
func (s *Service) CreateInvitation(ctx context.Context, params CreateInvitationParams) (*Invitation, error) {
	if params.MaxMessages <= 0 || params.MaxMessages > maxMessagesCeiling {
		return nil, fmt.Errorf("%w: max messages must be between 1 and %d", ErrInvalidParameters, maxMessagesCeiling)
	}
	if !params.ExpiresAt.After(s.now()) {
		return nil, fmt.Errorf("%w: expiry must be in the future", ErrInvalidParameters)
	}
	if params.JobID == uuid.Nil || params.RecruiterID == uuid.Nil {
		return nil, fmt.Errorf("%w: job and recruiter are required", ErrInvalidParameters)
	}

	job, err := s.jobs.GetJob(ctx, params.JobID)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown job", ErrInvalidParameters)
	}
	recruiter, err := s.recruiters.GetRecruiter(ctx, params.RecruiterID)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown recruiter", ErrInvalidParameters)
	}

	token, err := NewToken()
	if err != nil {
		return nil, err
	}

	session := &database.GuestChatSession{
		ID:          token,
		JobID:       job.ID,
		RecruiterID: recruiter.ID,
		GuestName:   sql.NullString{String: params.GuestName, Valid: params.GuestName != ""},
		GuestEmail:  sql.NullString{String: params.GuestEmail, Valid: params.GuestEmail != ""},
		MaxMessages: params.MaxMessages,
		ExpiresAt:   params.ExpiresAt.UTC(),
		Status:      database.SessionActive,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.Create(ctx, session); err != nil {
		return nil, err
	}

	invitation := &Invitation{
		Token:    token,
		GuestURL: s.baseURL + "/guest-chat/" + token,
		Session:  session,
	}

	s.publishInvitation(ctx, invitation, job, recruiter)

	return invitation, nil
}

func (s *Service) publishInvitation(ctx context.Context, invitation *Invitation, job *database.Job, recruiter *database.Recruiter) {
	payload := notify.InvitationPayload{
		Token:          invitation.Token,
		GuestURL:       invitation.GuestURL,
		GuestName:      invitation.Session.GuestName.String,
		GuestEmail:     invitation.Session.GuestEmail.String,
		RecruiterName:  recruiter.Name,
		RecruiterEmail: recruiter.Email,
		JobTitle:       job.Title,
		Company:        job.Company,
		MaxMessages:    invitation.Session.MaxMessages,
		ExpiresAt:      invitation.Session.ExpiresAt,
	}

	if s.outbox != nil {
		if err := s.outbox.Record(ctx, payload); err != nil {
			slog.Error("error recording invitation notification", "token", payload.Token, "error", err)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.PublishInvitation(ctx, payload); err != nil {
			slog.Error("error publishing invitation notification", "token", payload.Token, "error", err)
		}
	}
}

type SessionView struct {
	Session   *database.GuestChatSession
	Job       *database.Job
	Recruiter *database.Recruiter
}

// GetSessionView loads the data needed to render the chat landing page. Any
// unresolvable token yields ErrNotFound with no further detail, so the lookup
// boundary cannot be used to probe for tokens.
func (s *Service) GetSessionView(ctx context.Context, token string) (*SessionView, error) {
	session, err := s.store.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	s.guard.RefreshStatus(ctx, session)

	job, err := s.jobs.GetJob(ctx, session.JobID)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve session job: %w", err)
	}
	recruiter, err := s.recruiters.GetRecruiter(ctx, session.RecruiterID)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve session recruiter: %w", err)
	}

	return &SessionView{Session: session, Job: job, Recruiter: recruiter}, nil
}

type SendMessageParams struct {
	Party       string
	SenderName  string
	Content     string
	RecruiterID uuid.UUID // required for the recruiter party
}

// SendMessage dispatches to the guard according to the sending party. Guest
// sends are metered; the first successful guest send also fills the guest
// identity if the session was created without one.
func (s *Service) SendMessage(ctx context.Context, token string, params SendMessageParams) (*database.GuestMessage, error) {
	switch params.Party {
	case database.PartyGuest:
		msg, err := s.guard.TrySendGuestMessage(ctx, token, params.SenderName, params.Content)
		if err != nil {
			return nil, err
		}
		if err := s.store.SetGuestIdentity(ctx, token, params.SenderName, ""); err != nil {
			slog.Error("error filling guest identity", "token", token, "error", err)
		}
		return msg, nil

	case database.PartyRecruiter:
		session, err := s.store.GetByToken(ctx, token)
		if err != nil {
			return nil, err
		}
		if session.RecruiterID != params.RecruiterID {
			// Do not confirm the token exists to a recruiter it does not belong to.
			return nil, ErrNotFound
		}
		recruiter, err := s.recruiters.GetRecruiter(ctx, session.RecruiterID)
		if err != nil {
			return nil, fmt.Errorf("unable to resolve recruiter: %w", err)
		}
		return s.guard.SendRecruiterMessage(ctx, token, recruiter.Name, params.Content)

	default:
		return nil, fmt.Errorf("%w: unknown sender party %q", ErrInvalidParameters, params.Party)
	}
}

type MessageList struct {
	Messages []database.GuestMessage

	MessageCount   int
	MaxMessages    int
	RemainingQuota int
	ExpiresAt      time.Time
	CreatedAt      time.Time
	Status         string
}

// ListMessages is the polling read model: stateless, idempotent, stably
// ordered. Status is recomputed (and lazily persisted) on every call. An
// afterSeq cursor lets clients fetch only deltas.
func (s *Service) ListMessages(ctx context.Context, token string, afterSeq uint64) (*MessageList, error) {
	session, err := s.store.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	status := s.guard.RefreshStatus(ctx, session)

	messages, err := s.ledger.MessagesAfter(ctx, token, afterSeq)
	if err != nil {
		return nil, err
	}

	remaining := session.MaxMessages - session.MessageCount
	if remaining < 0 {
		remaining = 0
	}

	return &MessageList{
		Messages:       messages,
		MessageCount:   session.MessageCount,
		MaxMessages:    session.MaxMessages,
		RemainingQuota: remaining,
		ExpiresAt:      session.ExpiresAt,
		CreatedAt:      session.CreatedAt,
		Status:         status,
	}, nil
}

// ConvertToAccount marks the session converted once the guest finishes full
// registration. Idempotent: converting an already converted session is a
// no-op.
func (s *Service) ConvertToAccount(ctx context.Context, token string, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return fmt.Errorf("%w: user id is required", ErrInvalidParameters)
	}
	if _, err := s.store.GetByToken(ctx, token); err != nil {
		return err
	}
	return s.store.MarkConverted(ctx, token, userID)
}

// MarkMessagesRead acknowledges all guest messages on behalf of the
// recruiter. It does not affect quota or status.
func (s *Service) MarkMessagesRead(ctx context.Context, token string, recruiterID uuid.UUID) error {
	session, err := s.store.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	if session.RecruiterID != recruiterID {
		return ErrNotFound
	}
	return s.ledger.MarkRead(ctx, token)
}
