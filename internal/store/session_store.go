package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/IstiaqueAhmd/fitness-agent/internal/domain"
)

// SessionStore persists chat sessions and their message history in SQLite.
type SessionStore struct {
	db *DB
}

// NewSessionStore creates a session store using the given database.
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

// GetOrCreate finds an existing session by id or creates a new one. An
// empty id always creates a fresh session.
func (s *SessionStore) GetOrCreate(ctx context.Context, sessionID, userID string) (*domain.Session, error) {
	if sessionID != "" {
		var sess domain.Session
		var createdAt, updatedAt string
		err := s.db.sql.QueryRowContext(ctx,
			`SELECT id, user_id, title, created_at, updated_at FROM chat_sessions WHERE id = ?`,
			sessionID,
		).Scan(&sess.ID, &sess.UserID, &sess.Title, &createdAt, &updatedAt)
		switch {
		case err == nil:
			sess.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
			sess.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
			return &sess, nil
		case !errors.Is(err, sql.ErrNoRows):
			// Only a missing row falls through to create a session.
			return nil, &StorageError{Op: "load session", Err: err}
		}
	}

	sess := domain.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	_, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO chat_sessions (id, user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.UserID, sess.Title,
		sess.CreatedAt.Format(time.DateTime), sess.UpdatedAt.Format(time.DateTime),
	)
	if err != nil {
		return nil, &StorageError{Op: "create session", Err: err}
	}
	return &sess, nil
}

// Append adds a message to a session and bumps its updated timestamp.
func (s *SessionStore) Append(ctx context.Context, sessionID string, msg domain.Message) error {
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO chat_messages (session_id, role, content, timestamp) VALUES (?, ?, ?, ?)`,
		sessionID, msg.Role, msg.Content, ts.Format(time.DateTime),
	)
	if err != nil {
		return &StorageError{Op: "append message", Err: err}
	}

	_, _ = s.db.sql.ExecContext(ctx,
		`UPDATE chat_sessions SET updated_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.DateTime), sessionID,
	)
	return nil
}

// History returns the ordered message history for a session.
func (s *SessionStore) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT role, content, timestamp FROM chat_messages WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, &StorageError{Op: "load history", Err: err}
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		var ts string
		if err := rows.Scan(&m.Role, &m.Content, &ts); err != nil {
			return nil, &StorageError{Op: "load history", Err: err}
		}
		m.Timestamp, _ = time.Parse(time.DateTime, ts)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "load history", Err: err}
	}
	return msgs, nil
}
