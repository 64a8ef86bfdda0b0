// Package redis keeps conversation sessions in Redis, for deployments where
// several bot instances share state.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/agalitsyn/progress-bot/internal/model"
)

type SessionStorage struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*SessionStorage)

// WithTTL sets the expiration for sessions. Abandoned conversations expire
// on their own instead of piling up.
func WithTTL(ttl time.Duration) Option {
	return func(s *SessionStorage) {
		s.ttl = ttl
	}
}

func WithPrefix(prefix string) Option {
	return func(s *SessionStorage) {
		s.prefix = prefix
	}
}

func New(address string, password string, db int, opts ...Option) *SessionStorage {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

func NewFromClient(client *backend.Client, opts ...Option) *SessionStorage {
	s := &SessionStorage{
		client: client,
		prefix: "progress-bot:session:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionStorage) key(chatID int64) string {
	return s.prefix + strconv.FormatInt(chatID, 10)
}

func (s *SessionStorage) FetchSession(ctx context.Context, chatID int64) (*model.Session, error) {
	val, err := s.client.Get(ctx, s.key(chatID)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, model.ErrSessionNotFound
		}
		return nil, fmt.Errorf("could not get session from redis: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("could not unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *SessionStorage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session.ChatID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("could not save session to redis: %w", err)
	}
	return nil
}

func (s *SessionStorage) DeleteSession(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, s.key(chatID)).Err()
}

func (s *SessionStorage) Close() error {
	return s.client.Close()
}
