package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis client for queue operations
type Client struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewClient creates a new queue client
func NewClient(redisURL string, logger *slog.Logger) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Connected to Redis for command queue", "url", redisURL)

	return &Client{
		rdb:    rdb,
		logger: logger,
	}, nil
}

// NewClientFromRedis wraps an existing Redis connection.
func NewClientFromRedis(rdb *redis.Client, logger *slog.Logger) *Client {
	return &Client{rdb: rdb, logger: logger}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// CommandQueue delivers user-issued commands to the game server via a
// per-session Redis list. The server pops from the head; the client
// pushes to the tail, so commands arrive in the order they were typed.
type CommandQueue struct {
	client *Client
	prefix string
}

func NewCommandQueue(client *Client, prefix string) *CommandQueue {
	if prefix == "" {
		prefix = "commands"
	}
	return &CommandQueue{client: client, prefix: prefix}
}

func (q *CommandQueue) queueKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", q.prefix, sessionID.String())
}

// Enqueue appends a command to the end of the session's queue.
func (q *CommandQueue) Enqueue(ctx context.Context, sessionID uuid.UUID, command string) error {
	if err := q.client.rdb.RPush(ctx, q.queueKey(sessionID), command).Err(); err != nil {
		return fmt.Errorf("failed to enqueue command: %w", err)
	}
	return nil
}

// Depth returns the number of commands awaiting the server.
func (q *CommandQueue) Depth(ctx context.Context, sessionID uuid.UUID) (int, error) {
	n, err := q.client.rdb.LLen(ctx, q.queueKey(sessionID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(n), nil
}

// Clear drops any commands not yet consumed by the server. Used on
// logout alongside the event log clear.
func (q *CommandQueue) Clear(ctx context.Context, sessionID uuid.UUID) error {
	if err := q.client.rdb.Del(ctx, q.queueKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear command queue: %w", err)
	}
	return nil
}
