package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_LoadEmpty(t *testing.T) {
	repo := NewRepository(NewMemoryStore(), "orderwalk")

	st, err := repo.Load(context.Background())

	require.NoError(t, err)
	assert.False(t, st.Active)
	assert.Empty(t, st.AccumulatedCSV)
	assert.Empty(t, st.FailedSnapshots)
}

func TestRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewRepository(store, "orderwalk")

	require.NoError(t, repo.Begin(ctx))
	st, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, st.Active)
	assert.ElementsMatch(t, []string{"orderwalk:active", "orderwalk:csv", "orderwalk:failed"}, store.Keys())

	st.AccumulatedCSV = "H\nr1"
	st.FailedSnapshots = append(st.FailedSnapshots, "broken card", "second")
	require.NoError(t, repo.SaveProgress(ctx, st))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "H\nr1", loaded.AccumulatedCSV)
	assert.Equal(t, []string{"broken card", "second"}, loaded.FailedSnapshots)

	require.NoError(t, repo.Deactivate(ctx))
	loaded, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.False(t, loaded.Active)
	assert.Equal(t, "H\nr1", loaded.AccumulatedCSV)

	require.NoError(t, repo.Clear(ctx))
	assert.Empty(t, store.Keys())
}

func TestRepository_BeginResetsPreviousWalk(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore(), "orderwalk")
	require.NoError(t, repo.Begin(ctx))
	require.NoError(t, repo.SaveProgress(ctx, CrawlState{AccumulatedCSV: "H\nold", FailedSnapshots: []string{"old"}}))

	require.NoError(t, repo.Begin(ctx))

	st, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, st.Active)
	assert.Empty(t, st.AccumulatedCSV)
	assert.Empty(t, st.FailedSnapshots)
}

func TestRepository_CorruptFailedList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewRepository(store, "ns")
	require.NoError(t, store.Set(ctx, "ns:failed", "{not json"))

	_, err := repo.Load(ctx)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ns:failed")
}

func TestRepository_NamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a := NewRepository(store, "a")
	b := NewRepository(store, "b")

	require.NoError(t, a.Begin(ctx))

	st, err := b.Load(ctx)
	require.NoError(t, err)
	assert.False(t, st.Active)
}
