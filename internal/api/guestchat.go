package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"guestchat-backend/internal/chat"
	"guestchat-backend/internal/database"
	"guestchat-backend/pkg/api"
)

type GuestChatService struct {
	service *chat.Service
}

func NewGuestChatService(service *chat.Service) *GuestChatService {
	return &GuestChatService{service: service}
}

func (s *GuestChatService) AddRoutes(r chi.Router) {
	r.Route("/guest-chat", func(r chi.Router) {
		r.With(RequireRecruiter).Post("/create", RestHandler(s.CreateInvitation))
		r.Get("/{token}", RestHandler(s.GetSession))
		r.Get("/{token}/messages", RestHandler(s.ListMessages))
		r.Post("/{token}/message", RestHandler(s.SendMessage))
		r.Post("/{token}/convert", RestHandler(s.Convert))
		r.With(RequireRecruiter).Post("/{token}/read", RestHandler(s.MarkRead))
	})
}

// chatError maps engine sentinels onto HTTP status and taxonomy codes. The
// default branch returns the error unchanged so RestHandler treats it as a
// 500 and logs it.
func chatError(err error) error {
	switch {
	case errors.Is(err, chat.ErrNotFound):
		return TaggedError(http.StatusNotFound, api.CodeNotFound, errors.New("chat session not found"))
	case errors.Is(err, chat.ErrEmptyMessage):
		return TaggedError(http.StatusBadRequest, api.CodeEmptyMessage, err)
	case errors.Is(err, chat.ErrMessageTooLong):
		return TaggedError(http.StatusBadRequest, api.CodeMessageTooLong, err)
	case errors.Is(err, chat.ErrInvalidParameters):
		return TaggedError(http.StatusBadRequest, api.CodeInvalidParameters, err)
	case errors.Is(err, chat.ErrQuotaExceeded):
		return TaggedError(http.StatusConflict, api.CodeQuotaExceeded, err)
	case errors.Is(err, chat.ErrSessionExpired):
		return TaggedError(http.StatusConflict, api.CodeSessionExpired, err)
	case errors.Is(err, chat.ErrSessionConverted):
		return TaggedError(http.StatusConflict, api.CodeSessionConverted, err)
	case errors.Is(err, chat.ErrConflict):
		return TaggedError(http.StatusServiceUnavailable, api.CodeConflict, errors.New("chat session is busy, please retry"))
	default:
		return err
	}
}

func (s *GuestChatService) CreateInvitation(r *http.Request) (any, error) {
	recruiterID, err := RecruiterID(r)
	if err != nil {
		return nil, err
	}

	req, err := ParseRequest[api.CreateInvitationRequest](r)
	if err != nil {
		return nil, err
	}

	invitation, err := s.service.CreateInvitation(r.Context(), chat.CreateInvitationParams{
		JobID:       req.JobID,
		RecruiterID: recruiterID,
		GuestName:   req.GuestName,
		GuestEmail:  req.GuestEmail,
		MaxMessages: req.MaxMessages,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		return nil, chatError(err)
	}

	return api.CreateInvitationResponse{
		Token:    invitation.Token,
		GuestURL: invitation.GuestURL,
		Session:  toSessionSummary(invitation.Session),
	}, nil
}

func (s *GuestChatService) GetSession(r *http.Request) (any, error) {
	token, err := URLParamToken(r)
	if err != nil {
		return nil, err
	}

	view, err := s.service.GetSessionView(r.Context(), token)
	if err != nil {
		return nil, chatError(err)
	}

	return toSessionView(view), nil
}

func (s *GuestChatService) ListMessages(r *http.Request) (any, error) {
	token, err := URLParamToken(r)
	if err != nil {
		return nil, err
	}

	query, err := ParseRequestQueryParams[api.ListMessagesQuery](r)
	if err != nil {
		return nil, err
	}

	list, err := s.service.ListMessages(r.Context(), token, query.After)
	if err != nil {
		return nil, chatError(err)
	}

	resp := toMessageList(list)
	if query.Limit > 0 && len(resp.Messages) > query.Limit {
		resp.Messages = resp.Messages[:query.Limit]
	}
	return resp, nil
}

func (s *GuestChatService) SendMessage(r *http.Request) (any, error) {
	token, err := URLParamToken(r)
	if err != nil {
		return nil, err
	}

	req, err := ParseRequest[api.SendMessageRequest](r)
	if err != nil {
		return nil, err
	}

	// Party defaults to the guest side, which is the common caller.
	if req.SenderParty == "" {
		req.SenderParty = database.PartyGuest
	}

	params := chat.SendMessageParams{
		Party:      req.SenderParty,
		SenderName: req.SenderName,
		Content:    req.Content,
	}

	// Guests authenticate by holding the token; recruiters must also present
	// their identity header.
	if req.SenderParty == database.PartyRecruiter {
		recruiterID, err := uuid.Parse(r.Header.Get("X-Recruiter-Id"))
		if err != nil {
			return nil, TaggedError(http.StatusUnauthorized, api.CodeUnauthorized, errMissingRecruiter)
		}
		params.RecruiterID = recruiterID
	}

	msg, err := s.service.SendMessage(r.Context(), token, params)
	if err != nil {
		return nil, chatError(err)
	}

	return api.SendMessageResponse{Message: toMessage(*msg)}, nil
}

func (s *GuestChatService) Convert(r *http.Request) (any, error) {
	token, err := URLParamToken(r)
	if err != nil {
		return nil, err
	}

	req, err := ParseRequest[api.ConvertRequest](r)
	if err != nil {
		return nil, err
	}

	if err := s.service.ConvertToAccount(r.Context(), token, req.UserID); err != nil {
		return nil, chatError(err)
	}

	return nil, nil
}

func (s *GuestChatService) MarkRead(r *http.Request) (any, error) {
	token, err := URLParamToken(r)
	if err != nil {
		return nil, err
	}

	recruiterID, err := RecruiterID(r)
	if err != nil {
		return nil, err
	}

	if err := s.service.MarkMessagesRead(r.Context(), token, recruiterID); err != nil {
		return nil, chatError(err)
	}

	return nil, nil
}
