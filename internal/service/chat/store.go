package chat

import (
	"context"
	"errors"

	"github.com/finpsyche/advisor/backend/internal/model/chat"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyContent    = errors.New("message content is required")
)

// Store persists sessions and their transcripts.
type Store interface {
	CreateSession(ctx context.Context, userID string) (chat.Session, error)
	GetSession(ctx context.Context, sessionID string) (chat.Session, error)
	SaveMessage(ctx context.Context, message chat.Message) (chat.Message, error)
	LoadTranscript(ctx context.Context, sessionID string) ([]chat.Message, error)
	Close() error
}
