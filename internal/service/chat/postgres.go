package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/finpsyche/advisor/backend/internal/model/chat"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_sessions (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS chat_messages (
	id                     TEXT PRIMARY KEY,
	session_id             TEXT NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
	sender                 TEXT NOT NULL,
	content                TEXT NOT NULL,
	emotion                TEXT NOT NULL DEFAULT '',
	emotion_score          DOUBLE PRECISION NOT NULL DEFAULT 0,
	personality            TEXT NOT NULL DEFAULT '',
	personality_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at             TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS chat_messages_session_idx ON chat_messages (session_id, created_at);
`

// PostgresStore keeps history in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to dsn and creates the schema when missing.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// CreateSession implements Store.
func (s *PostgresStore) CreateSession(ctx context.Context, userID string) (chat.Session, error) {
	session := chat.Session{
		ID:        uuid.NewString(),
		UserID:    strings.TrimSpace(userID),
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_sessions (id, user_id, created_at) VALUES ($1, $2, $3)`,
		session.ID, session.UserID, session.CreatedAt)
	if err != nil {
		return chat.Session{}, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

// GetSession implements Store.
func (s *PostgresStore) GetSession(ctx context.Context, sessionID string) (chat.Session, error) {
	var session chat.Session
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at FROM chat_sessions WHERE id = $1`, sessionID).
		Scan(&session.ID, &session.UserID, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return chat.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return chat.Session{}, fmt.Errorf("query session: %w", err)
	}
	return session, nil
}

// SaveMessage implements Store.
func (s *PostgresStore) SaveMessage(ctx context.Context, message chat.Message) (chat.Message, error) {
	if message.SessionID == "" {
		return chat.Message{}, ErrSessionNotFound
	}
	if strings.TrimSpace(message.Content) == "" {
		return chat.Message{}, ErrEmptyContent
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	// PostgreSQL text columns reject NUL bytes.
	message.Content = strings.ReplaceAll(message.Content, "\x00", "")

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_messages
			(id, session_id, sender, content, emotion, emotion_score, personality, personality_confidence, created_at)
		SELECT $1::text, id, $3::text, $4::text, $5::text, $6::float8, $7::text, $8::float8, $9::timestamptz
		FROM chat_sessions WHERE id = $2`,
		message.ID, message.SessionID, message.Sender, message.Content,
		message.Emotion, message.EmotionScore, message.Personality, message.PersonalityConfidence,
		message.CreatedAt)
	if err != nil {
		return chat.Message{}, fmt.Errorf("insert message: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return chat.Message{}, ErrSessionNotFound
	}
	return message, nil
}

// LoadTranscript implements Store.
func (s *PostgresStore) LoadTranscript(ctx context.Context, sessionID string) ([]chat.Message, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, sender, content, emotion, emotion_score, personality, personality_confidence, created_at
		FROM chat_messages WHERE session_id = $1 ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	messages := make([]chat.Message, 0, 16)
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Sender, &m.Content, &m.Emotion, &m.EmotionScore,
			&m.Personality, &m.PersonalityConfidence, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcript: %w", err)
	}
	return messages, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
