package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jwebster45206/mythos-client/internal/config"
	"github.com/jwebster45206/mythos-client/internal/logger"
	"github.com/jwebster45206/mythos-client/internal/services/events"
	"github.com/jwebster45206/mythos-client/internal/services/queue"
	"github.com/jwebster45206/mythos-client/internal/session"
	"github.com/jwebster45206/mythos-client/internal/storage"
	"github.com/jwebster45206/mythos-client/pkg/event"
	"github.com/jwebster45206/mythos-client/pkg/state"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	store, err := storage.NewRedisStorage(cfg.RedisURL, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid Redis configuration: %v\n", err)
		os.Exit(1)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		pingCancel()
		fmt.Fprintf(os.Stderr, "Could not connect to Redis at %s. Please ensure the game server is running.\n", cfg.RedisURL)
		os.Exit(1)
	}
	pingCancel()

	sessionID, err := resolveSessionID(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid SESSION_ID: %v\n", err)
		os.Exit(1)
	}

	sess := session.NewWithID(sessionID, state.NewProjector(log), store, log)
	sessLog := logger.WithSessionID(log, sess.ID.String())

	// A stale snapshot from a previous run seeds the display until live
	// events catch up.
	restoreCtx, restoreCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if _, err := sess.RestoreSnapshot(restoreCtx); err != nil {
		sessLog.Warn("Failed to restore snapshot", "error", err)
	}
	restoreCancel()

	cmdQueue := queue.NewCommandQueue(queue.NewClientFromRedis(store.Client(), sessLog), cfg.CommandPrefix)
	sub := events.NewSubscriber(store.Client(), cfg.ChannelPrefix, sessLog)

	p := tea.NewProgram(NewConsoleUI(cfg, sess, cmdQueue),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())

	feedCtx, feedCancel := context.WithCancel(context.Background())
	go func() {
		err := sub.Run(feedCtx, sess.ID, sess.Log(), func(event.GameEvent) {
			p.Send(feedEventMsg{})
		})
		if err != nil && feedCtx.Err() == nil {
			p.Send(feedErrorMsg{err: err})
		}
	}()

	_, runErr := p.Run()
	feedCancel()

	saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := sess.SaveSnapshot(saveCtx); err != nil {
		sessLog.Warn("Failed to save snapshot on exit", "error", err)
	}
	saveCancel()

	_ = store.Close()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", runErr)
		os.Exit(1)
	}
}

// resolveSessionID picks the session identity: an explicit SESSION_ID
// wins, else one is derived from the player name so the same character
// reconnects as the same session, else a fresh random ID.
func resolveSessionID(cfg *config.Config) (uuid.UUID, error) {
	if cfg.SessionID != "" {
		return uuid.Parse(cfg.SessionID)
	}
	if cfg.PlayerName != "" {
		return session.IDForPlayer(cfg.PlayerName), nil
	}
	return uuid.New(), nil
}
