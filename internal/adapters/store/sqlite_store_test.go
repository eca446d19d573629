package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tjsasakifln/Inbound/internal/core"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "leads.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_CreateAndGet(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	in := lead("l1", "msg-1", time.Now().UTC())
	in.Intent = "0.4"
	_, err := s.Create(ctx, in)
	require.NoError(t, err)

	got, err := s.GetByEmailID(ctx, "msg-1")
	require.NoError(t, err)
	assert.Equal(t, "l1", got.ID)
	assert.Equal(t, 0.9, got.Score)
	assert.Equal(t, core.StageQualified, got.Stage)
	assert.Equal(t, "0.4", got.Intent)
	assert.Equal(t, map[string]string{"pricing": "NN"}, got.Entities)
}

func TestSQLiteStore_DuplicateEmailIDConflicts(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, lead("l1", "msg-1", time.Now().UTC()))
	require.NoError(t, err)

	_, err = s.Create(ctx, lead("l2", "msg-1", time.Now().UTC()))
	assert.ErrorIs(t, err, core.ErrConflict)
}

func TestSQLiteStore_FindAllOrdering(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	base := time.Now().UTC()

	_, err := s.Create(ctx, lead("l2", "msg-2", base))
	require.NoError(t, err)
	_, err = s.Create(ctx, lead("l3", "msg-3", base.Add(time.Minute)))
	require.NoError(t, err)
	_, err = s.Create(ctx, lead("l1", "msg-1", base))
	require.NoError(t, err)

	leads, err := s.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 3)
	assert.Equal(t, "l1", leads[0].ID)
	assert.Equal(t, "l2", leads[1].ID)
	assert.Equal(t, "l3", leads[2].ID)
}

func TestSQLiteStore_UpdateStage(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, lead("l1", "msg-1", time.Now().UTC()))
	require.NoError(t, err)

	updated, err := s.UpdateStage(ctx, "l1", core.StageWon)
	require.NoError(t, err)
	assert.Equal(t, core.StageWon, updated.Stage)

	_, err = s.UpdateStage(ctx, "absent", core.StageWon)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
