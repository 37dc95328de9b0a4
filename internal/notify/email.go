package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// EmailSender delivers a rendered invitation to the guest. Implementations
// are external collaborators; the engine only ever sees Publisher.
type EmailSender interface {
	SendInvitation(ctx context.Context, payload InvitationPayload) error
}

// RestEmailSender posts invitations to an HTTP email provider.
type RestEmailSender struct {
	client *resty.Client
}

func NewRestEmailSender(baseURL, apiKey string) *RestEmailSender {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetTimeout(10 * time.Second).
		SetRetryCount(3)

	return &RestEmailSender{client: client}
}

type emailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (s *RestEmailSender) SendInvitation(ctx context.Context, payload InvitationPayload) error {
	if payload.GuestEmail == "" {
		slog.Info("invitation has no guest email, skipping delivery", "token", payload.Token)
		return nil
	}

	greeting := payload.GuestName
	if greeting == "" {
		greeting = "there"
	}

	req := emailRequest{
		To:      payload.GuestEmail,
		Subject: fmt.Sprintf("%s invited you to chat about %s", payload.RecruiterName, payload.JobTitle),
		Body: fmt.Sprintf(
			"Hi %s,\n\n%s (%s) would like to chat with you about the %s role.\n\n"+
				"Open the conversation here: %s\n\n"+
				"The link allows up to %d messages and expires on %s.",
			greeting, payload.RecruiterName, payload.Company, payload.JobTitle,
			payload.GuestURL, payload.MaxMessages, payload.ExpiresAt.Format(time.RFC1123)),
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/v1/send")
	if err != nil {
		return fmt.Errorf("failed to deliver invitation email: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("email provider returned status %d: %s", resp.StatusCode(), resp.String())
	}

	return nil
}

// NoopEmailSender drops invitations, for local runs without a provider.
type NoopEmailSender struct{}

func (NoopEmailSender) SendInvitation(ctx context.Context, payload InvitationPayload) error {
	slog.Info("email delivery disabled, dropping invitation", "token", payload.Token, "recipient", payload.GuestEmail)
	return nil
}
