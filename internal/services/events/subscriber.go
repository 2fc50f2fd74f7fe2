package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/mythos-client/pkg/event"
)

// Sink receives decoded events in delivery order. The session's event
// log satisfies this.
type Sink interface {
	Append(events ...event.GameEvent)
}

// Subscriber consumes the server's event feed from Redis Pub/Sub and
// appends decoded GameEvents to a sink. The transport is at-least-once:
// duplicates and reordering across streams are expected and left to the
// projection layer to resolve.
type Subscriber struct {
	redisClient   *redis.Client
	channelPrefix string
	logger        *slog.Logger
}

// NewSubscriber creates an event feed subscriber.
func NewSubscriber(redisClient *redis.Client, channelPrefix string, logger *slog.Logger) *Subscriber {
	if channelPrefix == "" {
		channelPrefix = "game-events"
	}
	return &Subscriber{
		redisClient:   redisClient,
		channelPrefix: channelPrefix,
		logger:        logger,
	}
}

// channelFor returns the session-specific feed channel.
func (s *Subscriber) channelFor(sessionID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", s.channelPrefix, sessionID.String())
}

// Run subscribes to the session's feed and appends events to the sink
// until the context is cancelled. notify, when non-nil, is called after
// each appended event so a UI can re-project.
func (s *Subscriber) Run(ctx context.Context, sessionID uuid.UUID, sink Sink, notify func(event.GameEvent)) error {
	channel := s.channelFor(sessionID)
	pubsub := s.redisClient.Subscribe(ctx, channel)
	defer func() { _ = pubsub.Close() }()

	// Fail fast if the subscription could not be established.
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	s.logger.Info("Subscribed to event feed", "channel", channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			e, err := decodeEvent([]byte(msg.Payload))
			if err != nil {
				// A malformed frame is skipped, not fatal; the server
				// may be ahead of this client's schema.
				s.logger.Warn("Dropping undecodable event frame",
					"channel", channel,
					"error", err)
				continue
			}
			sink.Append(e)
			if notify != nil {
				notify(e)
			}
		}
	}
}

// decodeEvent parses one feed frame into a GameEvent.
func decodeEvent(payload []byte) (event.GameEvent, error) {
	var e event.GameEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return event.GameEvent{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return e, nil
}
