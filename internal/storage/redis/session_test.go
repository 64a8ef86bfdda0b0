package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agalitsyn/progress-bot/internal/model"
	"github.com/agalitsyn/progress-bot/internal/storage/redis"
)

func newTestStorage(t *testing.T, opts ...redis.Option) (*redis.SessionStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redis.NewFromClient(client, opts...)
	t.Cleanup(func() { store.Close() })

	return store, mr
}

func TestSessionStorage(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStorage(t)

	_, err := store.FetchSession(ctx, 42)
	assert.ErrorIs(t, err, model.ErrSessionNotFound)

	sess := model.NewSession(42)
	sess.State = model.SessionStateInputPlanned
	sess.ProjectRow = 4
	sess.PendingActual = 0.75
	require.NoError(t, store.SaveSession(ctx, sess))

	got, err := store.FetchSession(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	require.NoError(t, store.DeleteSession(ctx, 42))
	_, err = store.FetchSession(ctx, 42)
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestSessionStorageTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStorage(t, redis.WithTTL(time.Minute))

	require.NoError(t, store.SaveSession(ctx, model.NewSession(42)))

	_, err := store.FetchSession(ctx, 42)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.FetchSession(ctx, 42)
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}
