// Package memory keeps conversation sessions in process memory. It is the
// default store for a single-instance deployment and the fixture for tests.
package memory

import (
	"context"
	"sync"

	"github.com/agalitsyn/progress-bot/internal/model"
)

type SessionStorage struct {
	mu       sync.RWMutex
	sessions map[int64]model.Session
}

func NewSessionStorage() *SessionStorage {
	return &SessionStorage{sessions: make(map[int64]model.Session)}
}

func (s *SessionStorage) FetchSession(_ context.Context, chatID int64) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[chatID]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *SessionStorage) SaveSession(_ context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ChatID] = *session
	return nil
}

func (s *SessionStorage) DeleteSession(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, chatID)
	return nil
}
