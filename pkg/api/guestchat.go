package api

import (
	"time"

	"github.com/google/uuid"
)

// Error codes returned alongside HTTP status in error responses.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidParameters = "INVALID_PARAMETERS"
	CodeEmptyMessage      = "EMPTY_MESSAGE"
	CodeMessageTooLong    = "MESSAGE_TOO_LONG"
	CodeQuotaExceeded     = "QUOTA_EXCEEDED"
	CodeSessionExpired    = "SESSION_EXPIRED"
	CodeSessionConverted  = "SESSION_CONVERTED"
	CodeConflict          = "CONFLICT"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternal          = "INTERNAL"
)

type Error struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type CreateInvitationRequest struct {
	JobID       uuid.UUID `json:"job_id"`
	GuestName   string    `json:"guest_name,omitempty"`
	GuestEmail  string    `json:"guest_email,omitempty"`
	MaxMessages int       `json:"max_messages"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type CreateInvitationResponse struct {
	Token    string         `json:"token"`
	GuestURL string         `json:"guest_url"`
	Session  SessionSummary `json:"session"`
}

type JobSummary struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Company  string    `json:"company"`
	Location string    `json:"location,omitempty"`
}

type RecruiterSummary struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Company string    `json:"company,omitempty"`
}

type SessionSummary struct {
	Status         string    `json:"status"`
	MessageCount   int       `json:"message_count"`
	MaxMessages    int       `json:"max_messages"`
	RemainingQuota int       `json:"remaining_quota"`
	ExpiresAt      time.Time `json:"expires_at"`
	CreatedAt      time.Time `json:"created_at"`
}

type SessionView struct {
	GuestName string           `json:"guest_name,omitempty"`
	Job       JobSummary       `json:"job"`
	Recruiter RecruiterSummary `json:"recruiter"`
	Session   SessionSummary   `json:"session"`
}

type Message struct {
	ID          uuid.UUID `json:"id"`
	Seq         uint64    `json:"seq"`
	SenderParty string    `json:"sender_party"`
	SenderName  string    `json:"sender_name,omitempty"`
	Content     string    `json:"content"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

type SendMessageRequest struct {
	SenderParty string `json:"sender_party"`
	SenderName  string `json:"sender_name,omitempty"`
	Content     string `json:"content"`
}

type SendMessageResponse struct {
	Message Message `json:"message"`
}

type ListMessagesQuery struct {
	After uint64 `schema:"after"`
	Limit int    `schema:"limit"`
}

type ListMessagesResponse struct {
	Messages []Message      `json:"messages"`
	Session  SessionSummary `json:"session"`
}

type ConvertRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
