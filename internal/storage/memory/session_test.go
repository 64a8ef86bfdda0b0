package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agalitsyn/progress-bot/internal/model"
	"github.com/agalitsyn/progress-bot/internal/storage/memory"
)

func TestSessionStorage(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStorage()

	_, err := store.FetchSession(ctx, 1)
	assert.ErrorIs(t, err, model.ErrSessionNotFound)

	sess := model.NewSession(1)
	sess.State = model.SessionStateInputPlanned
	sess.ProjectRow = 4
	sess.PendingActual = 0.75
	require.NoError(t, store.SaveSession(ctx, sess))

	got, err := store.FetchSession(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	// Stored sessions are copies, later mutation of the original does not
	// leak into the store.
	sess.ProjectRow = 99
	got, err = store.FetchSession(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, got.ProjectRow)

	require.NoError(t, store.DeleteSession(ctx, 1))
	_, err = store.FetchSession(ctx, 1)
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestSessionStorageKeyedPerChat(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStorage()

	a := model.NewSession(1)
	a.State = model.SessionStateInputActual
	b := model.NewSession(2)
	b.State = model.SessionStateSelectProject

	require.NoError(t, store.SaveSession(ctx, a))
	require.NoError(t, store.SaveSession(ctx, b))

	got, err := store.FetchSession(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStateSelectProject, got.State)
}
