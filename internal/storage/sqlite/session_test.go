package sqlite_test

import (
	"context"
	"testing"

	sqlitedb "github.com/agalitsyn/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agalitsyn/progress-bot/internal/model"
	"github.com/agalitsyn/progress-bot/internal/storage/sqlite"
	"github.com/agalitsyn/progress-bot/internal/storage/sqlite/migrations"
)

func newTestStorage(t *testing.T) *sqlite.SessionStorage {
	t.Helper()

	db, err := sqlitedb.Connect(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, sqlitedb.MigrateUp(db, migrations.FS))
	return sqlite.NewSessionStorage(db)
}

func TestSessionStorage(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	_, err := store.FetchSession(ctx, 42)
	assert.ErrorIs(t, err, model.ErrSessionNotFound)

	sess := model.NewSession(42)
	sess.State = model.SessionStateSelectProject
	require.NoError(t, store.SaveSession(ctx, sess))

	got, err := store.FetchSession(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStateSelectProject, got.State)
	assert.Equal(t, int64(42), got.ChatID)

	// Saving again upserts the same row.
	sess.State = model.SessionStateInputPlanned
	sess.ProjectRow = 4
	sess.PendingActual = 0.75
	require.NoError(t, store.SaveSession(ctx, sess))

	got, err = store.FetchSession(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStateInputPlanned, got.State)
	assert.Equal(t, 4, got.ProjectRow)
	assert.InDelta(t, 0.75, got.PendingActual, 1e-9)

	require.NoError(t, store.DeleteSession(ctx, 42))
	_, err = store.FetchSession(ctx, 42)
	assert.ErrorIs(t, err, model.ErrSessionNotFound)

	// Deleting a missing session is not an error.
	require.NoError(t, store.DeleteSession(ctx, 42))
}
