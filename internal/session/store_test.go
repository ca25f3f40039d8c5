package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voucherbot/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	state, err := store.Create(ctx, "es")
	require.NoError(t, err)
	assert.NotEmpty(t, state.SessionID)
	assert.Equal(t, "es", state.Language)

	loaded, ok, err := store.Get(ctx, state.SessionID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, state.SessionID, loaded.SessionID)
	assert.Equal(t, "es", loaded.Language)
}

func TestGetUnknownSession(t *testing.T) {
	store := newTestStore(t)
	_, ok, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApplyRoundTripsState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	state, err := store.Create(ctx, "en")
	require.NoError(t, err)

	state.LastSearchParams = types.ParameterSet{
		Borough:  types.BoroughPtr(types.BoroughBrooklyn),
		Bedrooms: types.IntPtr(2),
		MaxRent:  types.IntPtr(2000),
	}
	state.CurrentListingIndex = types.IntPtr(3)
	state.ListingCount = 7
	state.LastResultCount = 7
	require.NoError(t, store.Apply(ctx, state))

	loaded, ok, err := store.Get(ctx, state.SessionID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, loaded.LastSearchParams.Equal(state.LastSearchParams))
	require.NotNil(t, loaded.CurrentListingIndex)
	assert.Equal(t, 3, *loaded.CurrentListingIndex)
	assert.Equal(t, 7, loaded.ListingCount)
}

func TestApplyUnknownSessionFails(t *testing.T) {
	store := newTestStore(t)
	err := store.Apply(context.Background(), types.ConversationState{SessionID: "ghost"})
	require.Error(t, err)
}

func TestGetOrCreate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	state, err := store.GetOrCreate(ctx, "abc", "zh")
	require.NoError(t, err)
	assert.Equal(t, "abc", state.SessionID)
	assert.Equal(t, "zh", state.Language)

	// Second call returns the stored state, not a fresh one.
	state.ListingCount = 4
	require.NoError(t, store.Apply(ctx, state))
	again, err := store.GetOrCreate(ctx, "abc", "en")
	require.NoError(t, err)
	assert.Equal(t, 4, again.ListingCount)
	assert.Equal(t, "zh", again.Language)
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	state, err := store.Create(ctx, "en")
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, state.SessionID))

	_, ok, err := store.Get(ctx, state.SessionID)
	require.NoError(t, err)
	assert.False(t, ok)
}
