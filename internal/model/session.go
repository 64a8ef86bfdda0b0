package model

import (
	"context"
	"errors"
)

type SessionState string

const (
	SessionStateIdle          SessionState = "idle"
	SessionStateSelectProject SessionState = "select_project"
	SessionStateInputActual   SessionState = "input_actual"
	SessionStateInputPlanned  SessionState = "input_planned"
)

// Session is the per-chat state of the update conversation.
type Session struct {
	ChatID int64
	State  SessionState

	// ProjectRow is the absolute sheet row, set once a project is selected.
	ProjectRow int
	// PendingActual is the actual progress fraction in [0,1], set only
	// while the planned value is awaited.
	PendingActual float64
}

func NewSession(chatID int64) *Session {
	return &Session{ChatID: chatID, State: SessionStateIdle}
}

var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps conversation sessions keyed by chat ID. Sessions are
// never shared across chats.
type SessionStore interface {
	FetchSession(ctx context.Context, chatID int64) (*Session, error)
	SaveSession(ctx context.Context, session *Session) error
	DeleteSession(ctx context.Context, chatID int64) error
}
