package chat

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"guestchat-backend/internal/database"
)

// MemorySessionStore keeps sessions in a mutex-guarded map. It backs unit
// tests and single-process local runs; the CAS semantics match the gorm store.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*database.GuestChatSession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*database.GuestChatSession)}
}

func (m *MemorySessionStore) Create(ctx context.Context, session *database.GuestChatSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *session
	m.sessions[session.ID] = &cp
	return nil
}

func (m *MemorySessionStore) GetByToken(ctx context.Context, token string) (*database.GuestChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[token]
	if !exists {
		return nil, ErrNotFound
	}
	cp := *session
	return &cp, nil
}

func (m *MemorySessionStore) CommitAppend(ctx context.Context, token string, expectedCount int) (*database.GuestChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[token]
	if !exists {
		return nil, ErrNotFound
	}
	if session.MessageCount != expectedCount {
		return nil, ErrConflict
	}
	session.MessageCount++
	cp := *session
	return &cp, nil
}

func (m *MemorySessionStore) SetGuestIdentity(ctx context.Context, token, name, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[token]
	if !exists || session.GuestName.Valid {
		return nil
	}
	session.GuestName = sql.NullString{String: name, Valid: name != ""}
	if email != "" {
		session.GuestEmail = sql.NullString{String: email, Valid: true}
	}
	return nil
}

func (m *MemorySessionStore) UpdateStatus(ctx context.Context, token, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[token]
	if !exists || session.Status != from {
		return nil
	}
	session.Status = to
	return nil
}

func (m *MemorySessionStore) MarkConverted(ctx context.Context, token string, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[token]
	if !exists || session.Status == database.SessionConverted {
		return nil
	}
	session.Status = database.SessionConverted
	session.ConvertedUserID = uuid.NullUUID{UUID: userID, Valid: true}
	return nil
}
