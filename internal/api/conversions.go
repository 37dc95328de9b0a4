package api

import (
	"guestchat-backend/internal/chat"
	"guestchat-backend/internal/database"
	"guestchat-backend/pkg/api"
)

func toMessage(msg database.GuestMessage) api.Message {
	return api.Message{
		ID:          msg.ID,
		Seq:         msg.Seq,
		SenderParty: msg.SenderParty,
		SenderName:  msg.SenderName,
		Content:     msg.Content,
		IsRead:      msg.IsRead,
		CreatedAt:   msg.CreatedAt,
	}
}

func toMessages(msgs []database.GuestMessage) []api.Message {
	out := make([]api.Message, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, toMessage(msg))
	}
	return out
}

func toSessionSummary(session *database.GuestChatSession) api.SessionSummary {
	remaining := session.MaxMessages - session.MessageCount
	if remaining < 0 {
		remaining = 0
	}
	return api.SessionSummary{
		Status:         session.Status,
		MessageCount:   session.MessageCount,
		MaxMessages:    session.MaxMessages,
		RemainingQuota: remaining,
		ExpiresAt:      session.ExpiresAt,
		CreatedAt:      session.CreatedAt,
	}
}

func toSessionView(view *chat.SessionView) api.SessionView {
	return api.SessionView{
		GuestName: view.Session.GuestName.String,
		Job: api.JobSummary{
			ID:       view.Job.ID,
			Title:    view.Job.Title,
			Company:  view.Job.Company,
			Location: view.Job.Location,
		},
		Recruiter: api.RecruiterSummary{
			ID:      view.Recruiter.ID,
			Name:    view.Recruiter.Name,
			Company: view.Recruiter.Company,
		},
		Session: toSessionSummary(view.Session),
	}
}

func toMessageList(list *chat.MessageList) api.ListMessagesResponse {
	return api.ListMessagesResponse{
		Messages: toMessages(list.Messages),
		Session: api.SessionSummary{
			Status:         list.Status,
			MessageCount:   list.MessageCount,
			MaxMessages:    list.MaxMessages,
			RemainingQuota: list.RemainingQuota,
			ExpiresAt:      list.ExpiresAt,
			CreatedAt:      list.CreatedAt,
		},
	}
}
