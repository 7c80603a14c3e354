package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finpsyche/advisor/backend/internal/model/chat"
)

// MemoryStore keeps history in process memory. It is the default when no
// database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	messages map[string][]chat.Message
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]chat.Session),
		messages: make(map[string][]chat.Message),
	}
}

// CreateSession provisions a session for userID, which may be empty.
func (s *MemoryStore) CreateSession(_ context.Context, userID string) (chat.Session, error) {
	session := chat.Session{
		ID:        uuid.NewString(),
		UserID:    strings.TrimSpace(userID),
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.messages[session.ID] = make([]chat.Message, 0, 16)
	s.mu.Unlock()

	return session, nil
}

// SaveMessage appends a message to the session history and returns it with
// its assigned ID and timestamp.
func (s *MemoryStore) SaveMessage(_ context.Context, message chat.Message) (chat.Message, error) {
	if message.SessionID == "" {
		return chat.Message{}, ErrSessionNotFound
	}
	if strings.TrimSpace(message.Content) == "" {
		return chat.Message{}, ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[message.SessionID]; !ok {
		return chat.Message{}, ErrSessionNotFound
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	s.messages[message.SessionID] = append(s.messages[message.SessionID], message)
	return message, nil
}

// GetSession retrieves a session by identifier.
func (s *MemoryStore) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// LoadTranscript returns stored messages for the provided session.
func (s *MemoryStore) LoadTranscript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
