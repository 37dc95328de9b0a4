package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestchat-backend/internal/chat"
	"guestchat-backend/internal/database"
	pkgapi "guestchat-backend/pkg/api"
)

type staticJobCatalog map[uuid.UUID]*database.Job

func (c staticJobCatalog) GetJob(ctx context.Context, id uuid.UUID) (*database.Job, error) {
	job, ok := c[id]
	if !ok {
		return nil, chat.ErrNotFound
	}
	return job, nil
}

type staticRecruiterDirectory map[uuid.UUID]*database.Recruiter

func (d staticRecruiterDirectory) GetRecruiter(ctx context.Context, id uuid.UUID) (*database.Recruiter, error) {
	recruiter, ok := d[id]
	if !ok {
		return nil, chat.ErrNotFound
	}
	return recruiter, nil
}

type testEnv struct {
	router    chi.Router
	job       *database.Job
	recruiter *database.Recruiter
}

func setupTestEnv(t *testing.T) *testEnv {
	recruiter := &database.Recruiter{ID: uuid.New(), Name: "Rita", Email: "rita@example.com", Company: "Example Corp"}
	job := &database.Job{ID: uuid.New(), Title: "Backend Engineer", Company: "Example Corp", RecruiterID: recruiter.ID}

	service := chat.NewService(
		chat.NewMemorySessionStore(),
		chat.NewMemoryMessageLedger(),
		staticJobCatalog{job.ID: job},
		staticRecruiterDirectory{recruiter.ID: recruiter},
		nil,
		nil,
		"http://localhost:8001",
	)

	router := chi.NewRouter()
	NewGuestChatService(service).AddRoutes(router)

	return &testEnv{router: router, job: job, recruiter: recruiter}
}

func (e *testEnv) request(t *testing.T, method, endpoint string, payload any, recruiterID string) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, endpoint, body)
	req.Header.Set("Content-Type", "application/json")
	if recruiterID != "" {
		req.Header.Set("X-Recruiter-Id", recruiterID)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createInvitation(t *testing.T, maxMessages int, expiresAt time.Time) pkgapi.CreateInvitationResponse {
	rec := e.request(t, http.MethodPost, "/guest-chat/create", pkgapi.CreateInvitationRequest{
		JobID:       e.job.ID,
		GuestEmail:  "ann@example.com",
		MaxMessages: maxMessages,
		ExpiresAt:   expiresAt,
	}, e.recruiter.ID.String())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp pkgapi.CreateInvitationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) pkgapi.Error {
	var resp pkgapi.Error
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestCreateInvitationEndpoint(t *testing.T) {
	env := setupTestEnv(t)

	resp := env.createInvitation(t, 10, time.Now().Add(time.Hour))
	assert.NotEmpty(t, resp.Token)
	assert.Contains(t, resp.GuestURL, resp.Token)
	assert.Equal(t, database.SessionActive, resp.Session.Status)
	assert.Equal(t, 10, resp.Session.RemainingQuota)
}

func TestCreateInvitationRequiresRecruiter(t *testing.T) {
	env := setupTestEnv(t)

	payload := pkgapi.CreateInvitationRequest{
		JobID: env.job.ID, MaxMessages: 10, ExpiresAt: time.Now().Add(time.Hour),
	}

	rec := env.request(t, http.MethodPost, "/guest-chat/create", payload, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, pkgapi.CodeUnauthorized, decodeError(t, rec).Code)

	rec = env.request(t, http.MethodPost, "/guest-chat/create", payload, "not-a-uuid")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateInvitationRejectsBadParams(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.request(t, http.MethodPost, "/guest-chat/create", pkgapi.CreateInvitationRequest{
		JobID: env.job.ID, MaxMessages: 0, ExpiresAt: time.Now().Add(time.Hour),
	}, env.recruiter.ID.String())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, pkgapi.CodeInvalidParameters, decodeError(t, rec).Code)
}

func TestGuestChatFlow(t *testing.T) {
	env := setupTestEnv(t)
	invitation := env.createInvitation(t, 2, time.Now().Add(time.Hour))

	// Guest opens the link.
	rec := env.request(t, http.MethodGet, "/guest-chat/"+invitation.Token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view pkgapi.SessionView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, "Backend Engineer", view.Job.Title)
	assert.Equal(t, "Rita", view.Recruiter.Name)
	assert.Equal(t, 2, view.Session.RemainingQuota)

	// Guest sends a message; an omitted party defaults to the guest side.
	rec = env.request(t, http.MethodPost, "/guest-chat/"+invitation.Token+"/message", pkgapi.SendMessageRequest{
		SenderName: "Ann", Content: "hello!",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var sendResp pkgapi.SendMessageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sendResp))
	assert.Equal(t, "hello!", sendResp.Message.Content)

	// Recruiter replies.
	rec = env.request(t, http.MethodPost, "/guest-chat/"+invitation.Token+"/message", pkgapi.SendMessageRequest{
		SenderParty: database.PartyRecruiter, Content: "hi Ann",
	}, env.recruiter.ID.String())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Both messages are visible, quota reflects only the guest's.
	rec = env.request(t, http.MethodGet, "/guest-chat/"+invitation.Token+"/messages", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list pkgapi.ListMessagesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list.Messages, 2)
	assert.Equal(t, 1, list.Session.MessageCount)
	assert.Equal(t, 1, list.Session.RemainingQuota)
	assert.False(t, list.Session.CreatedAt.IsZero())

	// Poll with a cursor.
	endpoint := fmt.Sprintf("/guest-chat/%s/messages?after=%d", invitation.Token, list.Messages[0].Seq)
	rec = env.request(t, http.MethodGet, endpoint, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var delta pkgapi.ListMessagesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&delta))
	require.Len(t, delta.Messages, 1)
	assert.Equal(t, "hi Ann", delta.Messages[0].Content)

	// A limit caps the page size without moving the cursor.
	rec = env.request(t, http.MethodGet, "/guest-chat/"+invitation.Token+"/messages?limit=1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var limited pkgapi.ListMessagesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&limited))
	require.Len(t, limited.Messages, 1)
	assert.Equal(t, "hello!", limited.Messages[0].Content)

	// Second guest message exhausts the quota.
	rec = env.request(t, http.MethodPost, "/guest-chat/"+invitation.Token+"/message", pkgapi.SendMessageRequest{
		SenderParty: database.PartyGuest, SenderName: "Ann", Content: "when can we talk?",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodPost, "/guest-chat/"+invitation.Token+"/message", pkgapi.SendMessageRequest{
		SenderParty: database.PartyGuest, SenderName: "Ann", Content: "one more thing",
	}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, pkgapi.CodeQuotaExceeded, decodeError(t, rec).Code)
}

func TestContentRejectionCodes(t *testing.T) {
	env := setupTestEnv(t)
	invitation := env.createInvitation(t, 5, time.Now().Add(time.Hour))

	rec := env.request(t, http.MethodPost, "/guest-chat/"+invitation.Token+"/message", pkgapi.SendMessageRequest{
		SenderName: "Ann", Content: strings.Repeat("x", chat.MaxMessageLength+1),
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, pkgapi.CodeMessageTooLong, decodeError(t, rec).Code)

	rec = env.request(t, http.MethodPost, "/guest-chat/"+invitation.Token+"/message", pkgapi.SendMessageRequest{
		SenderName: "Ann", Content: "   \n ",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, pkgapi.CodeEmptyMessage, decodeError(t, rec).Code)

	// Content exactly at the cap is accepted.
	rec = env.request(t, http.MethodPost, "/guest-chat/"+invitation.Token+"/message", pkgapi.SendMessageRequest{
		SenderName: "Ann", Content: strings.Repeat("x", chat.MaxMessageLength),
	}, "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestUnknownTokenIsUniform(t *testing.T) {
	env := setupTestEnv(t)

	endpoints := []struct {
		method, endpoint string
		payload          any
	}{
		{http.MethodGet, "/guest-chat/bogus-token", nil},
		{http.MethodGet, "/guest-chat/bogus-token/messages", nil},
		{http.MethodPost, "/guest-chat/bogus-token/message", pkgapi.SendMessageRequest{
			SenderParty: database.PartyGuest, Content: "hello",
		}},
		{http.MethodPost, "/guest-chat/bogus-token/convert", pkgapi.ConvertRequest{UserID: uuid.New()}},
	}

	for _, tc := range endpoints {
		rec := env.request(t, tc.method, tc.endpoint, tc.payload, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, tc.endpoint)

		resp := decodeError(t, rec)
		assert.Equal(t, pkgapi.CodeNotFound, resp.Code, tc.endpoint)
		assert.Equal(t, "chat session not found", resp.Error, tc.endpoint)
	}
}

func TestRecruiterMismatchLooksLikeMissingToken(t *testing.T) {
	env := setupTestEnv(t)
	invitation := env.createInvitation(t, 5, time.Now().Add(time.Hour))

	rec := env.request(t, http.MethodPost, "/guest-chat/"+invitation.Token+"/message", pkgapi.SendMessageRequest{
		SenderParty: database.PartyRecruiter, Content: "let me in",
	}, uuid.NewString())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, pkgapi.CodeNotFound, decodeError(t, rec).Code)
}

func TestConvertEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	invitation := env.createInvitation(t, 5, time.Now().Add(time.Hour))

	rec := env.request(t, http.MethodPost, "/guest-chat/"+invitation.Token+"/convert", pkgapi.ConvertRequest{UserID: uuid.New()}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Conversion ends the chat.
	rec = env.request(t, http.MethodPost, "/guest-chat/"+invitation.Token+"/message", pkgapi.SendMessageRequest{
		SenderParty: database.PartyGuest, SenderName: "Ann", Content: "hello",
	}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, pkgapi.CodeSessionConverted, decodeError(t, rec).Code)

	// But conversion itself stays idempotent.
	rec = env.request(t, http.MethodPost, "/guest-chat/"+invitation.Token+"/convert", pkgapi.ConvertRequest{UserID: uuid.New()}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMarkReadEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	invitation := env.createInvitation(t, 5, time.Now().Add(time.Hour))

	rec := env.request(t, http.MethodPost, "/guest-chat/"+invitation.Token+"/message", pkgapi.SendMessageRequest{
		SenderParty: database.PartyGuest, SenderName: "Ann", Content: "ping",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodPost, "/guest-chat/"+invitation.Token+"/read", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.request(t, http.MethodPost, "/guest-chat/"+invitation.Token+"/read", nil, env.recruiter.ID.String())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.request(t, http.MethodGet, "/guest-chat/"+invitation.Token+"/messages", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list pkgapi.ListMessagesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list.Messages, 1)
	assert.True(t, list.Messages[0].IsRead)
}

// contestedStore loses every counter race, as if another process commits
// between each load and update.
type contestedStore struct {
	*chat.MemorySessionStore
}

func (s *contestedStore) CommitAppend(ctx context.Context, token string, expectedCount int) (*database.GuestChatSession, error) {
	if _, err := s.MemorySessionStore.GetByToken(ctx, token); err != nil {
		return nil, err
	}
	return nil, chat.ErrConflict
}

func TestContendedSendIsRetryable(t *testing.T) {
	store := &contestedStore{chat.NewMemorySessionStore()}
	require.NoError(t, store.Create(context.Background(), &database.GuestChatSession{
		ID:          "contested-token",
		JobID:       uuid.New(),
		RecruiterID: uuid.New(),
		MaxMessages: 5,
		ExpiresAt:   time.Now().Add(time.Hour),
		Status:      database.SessionActive,
	}))

	service := chat.NewService(
		store,
		chat.NewMemoryMessageLedger(),
		staticJobCatalog{},
		staticRecruiterDirectory{},
		nil,
		nil,
		"http://localhost:8001",
	)

	router := chi.NewRouter()
	NewGuestChatService(service).AddRoutes(router)
	env := &testEnv{router: router}

	rec := env.request(t, http.MethodPost, "/guest-chat/contested-token/message", pkgapi.SendMessageRequest{
		SenderName: "Ann", Content: "hello",
	}, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, pkgapi.CodeConflict, decodeError(t, rec).Code)
}

func TestExpiredSessionEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	invitation := env.createInvitation(t, 5, time.Now().Add(30*time.Millisecond))

	time.Sleep(40 * time.Millisecond)

	rec := env.request(t, http.MethodPost, "/guest-chat/"+invitation.Token+"/message", pkgapi.SendMessageRequest{
		SenderParty: database.PartyGuest, SenderName: "Ann", Content: "too late?",
	}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, pkgapi.CodeSessionExpired, decodeError(t, rec).Code)

	// The read model still works and reports the terminal status.
	rec = env.request(t, http.MethodGet, "/guest-chat/"+invitation.Token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view pkgapi.SessionView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, database.SessionExpired, view.Session.Status)
}
