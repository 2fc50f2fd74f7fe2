package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/mythos-client/pkg/state"
)

func setupTestRedis(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := NewRedisStorage("redis://"+mr.Addr(), logger)
	require.NoError(t, err)

	return store, mr
}

func testSnapshot() *state.GameState {
	gs := state.Initial()
	return &state.GameState{
		Player: &state.Player{
			Name:  "Ithaqua",
			Stats: map[string]any{"vitality": float64(20), "lucidity": float64(80)},
		},
		Room: &state.Room{
			ID:            "room1",
			Name:          "The Plaza",
			Players:       []string{"Ithaqua"},
			Occupants:     []string{"Ithaqua"},
			OccupantCount: 1,
		},
		Messages:       gs.Messages,
		CommandHistory: []string{"look"},
	}
}

func TestRedisStorage_SaveAndLoadSnapshot(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	id := uuid.New()
	gs := testSnapshot()

	require.NoError(t, store.SaveSnapshot(ctx, id, gs))

	loaded, err := store.LoadSnapshot(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, "Ithaqua", loaded.Player.Name)
	assert.Equal(t, "room1", loaded.Room.ID)
	assert.Equal(t, []string{"Ithaqua"}, loaded.Room.Occupants)
	assert.Equal(t, []string{"look"}, loaded.CommandHistory)
}

func TestRedisStorage_LoadMissingSnapshot(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() { _ = store.Close() }()

	loaded, err := store.LoadSnapshot(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, loaded, "missing snapshot loads as nil, not an error")
}

func TestRedisStorage_DeleteSnapshot(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	id := uuid.New()
	require.NoError(t, store.SaveSnapshot(ctx, id, testSnapshot()))
	require.NoError(t, store.DeleteSnapshot(ctx, id))

	loaded, err := store.LoadSnapshot(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMockStorage_RoundTrip(t *testing.T) {
	store := NewMockStorage()
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, store.SaveSnapshot(ctx, id, testSnapshot()))

	loaded, err := store.LoadSnapshot(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "The Plaza", loaded.Room.Name)

	require.NoError(t, store.DeleteSnapshot(ctx, id))
	loaded, err = store.LoadSnapshot(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
