package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/mythos-client/internal/storage"
	"github.com/jwebster45206/mythos-client/pkg/event"
	"github.com/jwebster45206/mythos-client/pkg/state"
)

// Session owns one connection's event log and its projection. The
// transport appends events; the UI reads State(). Projection is cached
// incrementally: only events that arrived since the last read are
// folded onto the cached state, which is equivalent to re-projecting
// the whole log from scratch.
type Session struct {
	ID uuid.UUID

	log       *event.Log
	projector *state.Projector
	store     storage.Storage
	logger    *slog.Logger

	mu       sync.Mutex
	cached   *state.GameState
	applied  int
	commands []string
}

// New creates a session with an empty event log and a random identity.
// store may be nil for offline/replay use.
func New(projector *state.Projector, store storage.Storage, logger *slog.Logger) *Session {
	return NewWithID(uuid.New(), projector, store, logger)
}

// NewWithID creates a session under an externally chosen identity. The
// feed channel, command queue, and snapshot key all derive from the ID,
// so a stable ID is what lets a reconnect rejoin its feed and find its
// cached snapshot.
func NewWithID(id uuid.UUID, projector *state.Projector, store storage.Storage, logger *slog.Logger) *Session {
	return &Session{
		ID:        id,
		log:       event.NewLog(),
		projector: projector,
		store:     store,
		logger:    logger,
		cached:    state.Initial(),
	}
}

// IDForPlayer derives a stable session UUID from a player name, so
// repeated runs for the same character reconnect as the same session
// without configuring an explicit ID.
func IDForPlayer(name string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte("mythos-client:"+name))
}

// Log exposes the event log as the transport's append sink.
func (s *Session) Log() *event.Log {
	return s.log
}

// Append adds events to the session's log.
func (s *Session) Append(events ...event.GameEvent) {
	s.log.Append(events...)
}

// State folds any newly arrived events onto the cached projection and
// returns the current state, with the session's command history
// threaded through.
func (s *Session) State() *state.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.log.Since(s.applied)
	if len(pending) > 0 {
		s.cached = s.projector.ProjectFrom(s.cached, pending)
		s.applied += len(pending)
	}
	return s.cached.WithCommandHistory(s.commands)
}

// RecordCommand appends a user-issued command to the history shown in
// the UI. Commands are not events; they never enter the log.
func (s *Session) RecordCommand(command string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, command)
}

// SaveSnapshot caches the current projection through storage, so a
// reconnect can show the last known state immediately.
func (s *Session) SaveSnapshot(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return s.store.SaveSnapshot(ctx, s.ID, s.State())
}

// RestoreSnapshot loads a previously cached projection, if any. The
// restored state seeds the cache; events already in the log still
// re-fold on the next State read.
func (s *Session) RestoreSnapshot(ctx context.Context) (*state.GameState, error) {
	if s.store == nil {
		return nil, nil
	}
	gs, err := s.store.LoadSnapshot(ctx, s.ID)
	if err != nil || gs == nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = gs
	return gs, nil
}

// Logout ends the session: the event log is cleared in full (there is
// no partial clear) and the cached projection and snapshot are
// dropped.
func (s *Session) Logout(ctx context.Context) {
	s.log.Clear()

	s.mu.Lock()
	s.cached = state.Initial()
	s.applied = 0
	s.commands = nil
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.DeleteSnapshot(ctx, s.ID); err != nil {
			s.logger.Warn("Failed to delete session snapshot on logout",
				"session_id", s.ID.String(),
				"error", err)
		}
	}
	s.logger.Info("Session ended", "session_id", s.ID.String())
}
