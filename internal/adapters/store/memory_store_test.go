package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjsasakifln/Inbound/internal/core"
)

func lead(id, emailID string, createdAt time.Time) *core.Lead {
	return &core.Lead{
		ID:        id,
		EmailID:   emailID,
		Sender:    "alice@example.com",
		Subject:   "Pricing",
		Score:     0.9,
		Stage:     core.StageQualified,
		Source:    core.SourceEmail,
		Entities:  map[string]string{"pricing": "NN"},
		CreatedAt: createdAt,
	}
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.Create(ctx, lead("l1", "msg-1", time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "l1", created.ID)

	got, err := s.GetByEmailID(ctx, "msg-1")
	require.NoError(t, err)
	assert.Equal(t, "l1", got.ID)
	assert.Equal(t, map[string]string{"pricing": "NN"}, got.Entities)
}

func TestMemoryStore_DuplicateEmailIDConflicts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Create(ctx, lead("l1", "msg-1", time.Now()))
	require.NoError(t, err)

	_, err = s.Create(ctx, lead("l2", "msg-1", time.Now()))
	assert.ErrorIs(t, err, core.ErrConflict)

	// The original record is untouched.
	got, err := s.GetByEmailID(ctx, "msg-1")
	require.NoError(t, err)
	assert.Equal(t, "l1", got.ID)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.GetByEmailID(context.Background(), "absent")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMemoryStore_FindAllOrdering(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	_, err := s.Create(ctx, lead("l3", "msg-3", base.Add(time.Minute)))
	require.NoError(t, err)
	_, err = s.Create(ctx, lead("l2", "msg-2", base))
	require.NoError(t, err)
	_, err = s.Create(ctx, lead("l1", "msg-1", base))
	require.NoError(t, err)

	leads, err := s.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 3)

	// Ascending creation time, ties broken by ID.
	assert.Equal(t, "l1", leads[0].ID)
	assert.Equal(t, "l2", leads[1].ID)
	assert.Equal(t, "l3", leads[2].ID)
}

func TestMemoryStore_UpdateStage(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Create(ctx, lead("l1", "msg-1", time.Now()))
	require.NoError(t, err)

	updated, err := s.UpdateStage(ctx, "l1", core.StageWon)
	require.NoError(t, err)
	assert.Equal(t, core.StageWon, updated.Stage)

	got, err := s.GetByEmailID(ctx, "msg-1")
	require.NoError(t, err)
	assert.Equal(t, core.StageWon, got.Stage)
}

func TestMemoryStore_UpdateStageMissing(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.UpdateStage(context.Background(), "absent", core.StageWon)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMemoryStore_SnapshotIsIsolated(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Create(ctx, lead("l1", "msg-1", time.Now()))
	require.NoError(t, err)

	leads, err := s.FindAll(ctx)
	require.NoError(t, err)
	leads[0].Entities["mutated"] = "XX"

	got, err := s.GetByEmailID(ctx, "msg-1")
	require.NoError(t, err)
	assert.NotContains(t, got.Entities, "mutated")
}
