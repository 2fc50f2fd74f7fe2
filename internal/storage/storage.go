package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jwebster45206/mythos-client/pkg/state"
)

// Storage caches projected GameState snapshots per session, so a
// reconnecting UI can show the last known state immediately while the
// event feed catches up. Only the projection is cached; the event log
// itself is never persisted.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Snapshot operations
	SaveSnapshot(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	LoadSnapshot(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteSnapshot(ctx context.Context, id uuid.UUID) error
}
