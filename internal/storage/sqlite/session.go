package sqlite

import (
	"context"
	"database/sql"

	"github.com/agalitsyn/progress-bot/internal/model"
)

// SessionStorage persists conversation sessions in SQLite so an in-flight
// update flow survives a bot restart.
type SessionStorage struct {
	db *sql.DB
}

func NewSessionStorage(db *sql.DB) *SessionStorage {
	return &SessionStorage{db: db}
}

func (s *SessionStorage) FetchSession(ctx context.Context, chatID int64) (*model.Session, error) {
	const q = `SELECT chat_id, state, project_row, pending_actual FROM sessions WHERE chat_id = ?`
	var session model.Session
	err := s.db.QueryRowContext(ctx, q, chatID).Scan(
		&session.ChatID,
		&session.State,
		&session.ProjectRow,
		&session.PendingActual,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (s *SessionStorage) SaveSession(ctx context.Context, session *model.Session) error {
	const q = `INSERT INTO sessions (chat_id, state, project_row, pending_actual, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(chat_id) DO UPDATE SET
			state = excluded.state,
			project_row = excluded.project_row,
			pending_actual = excluded.pending_actual,
			updated_at = excluded.updated_at`
	_, err := s.db.ExecContext(ctx, q, session.ChatID, session.State, session.ProjectRow, session.PendingActual)
	return err
}

func (s *SessionStorage) DeleteSession(ctx context.Context, chatID int64) error {
	const q = `DELETE FROM sessions WHERE chat_id = ?`
	_, err := s.db.ExecContext(ctx, q, chatID)
	return err
}
