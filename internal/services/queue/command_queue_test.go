package queue

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := NewClient("redis://"+mr.Addr(), logger)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create queue client: %v", err)
	}

	return client, mr
}

func TestCommandQueue_EnqueuePreservesOrder(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	q := NewCommandQueue(client, "commands")
	ctx := context.Background()
	sessionID := uuid.New()

	commands := []string{"look", "go north", "say hello"}
	for _, cmd := range commands {
		if err := q.Enqueue(ctx, sessionID, cmd); err != nil {
			t.Fatalf("Failed to enqueue command: %v", err)
		}
	}

	depth, err := q.Depth(ctx, sessionID)
	if err != nil {
		t.Fatalf("Failed to get depth: %v", err)
	}
	if depth != len(commands) {
		t.Errorf("Expected depth %d, got %d", len(commands), depth)
	}

	// The server consumes from the head; verify order directly.
	key := "commands:" + sessionID.String()
	stored, err := mr.List(key)
	if err != nil {
		t.Fatalf("Failed to read list from miniredis: %v", err)
	}
	for i, want := range commands {
		if stored[i] != want {
			t.Errorf("Command %d: expected %q, got %q", i, want, stored[i])
		}
	}
}

func TestCommandQueue_Clear(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	q := NewCommandQueue(client, "commands")
	ctx := context.Background()
	sessionID := uuid.New()

	if err := q.Enqueue(ctx, sessionID, "look"); err != nil {
		t.Fatalf("Failed to enqueue: %v", err)
	}
	if err := q.Clear(ctx, sessionID); err != nil {
		t.Fatalf("Failed to clear: %v", err)
	}

	depth, err := q.Depth(ctx, sessionID)
	if err != nil {
		t.Fatalf("Failed to get depth: %v", err)
	}
	if depth != 0 {
		t.Errorf("Expected empty queue after clear, got depth %d", depth)
	}
}

func TestCommandQueue_DefaultPrefix(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	q := NewCommandQueue(client, "")
	sessionID := uuid.New()
	if got := q.queueKey(sessionID); got != "commands:"+sessionID.String() {
		t.Errorf("unexpected key: %q", got)
	}
}
