package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	RedisURL      string
	ChannelPrefix string // Pub/Sub channel prefix for the event feed
	CommandPrefix string // Redis list prefix for outbound commands
	SessionID     string // explicit session UUID; overrides the player-derived one
	PlayerName    string
	Environment   string
	LogLevel      slog.Level
	FamilySafe    bool // filter profanity from incoming chat
}

func Load() *Config {
	return &Config{
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379"),
		ChannelPrefix: getEnv("EVENT_CHANNEL_PREFIX", "game-events"),
		CommandPrefix: getEnv("COMMAND_QUEUE_PREFIX", "commands"),
		SessionID:     getEnv("SESSION_ID", ""),
		PlayerName:    getEnv("PLAYER_NAME", ""),
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      parseLogLevel(getEnv("LOG_LEVEL", "info")),
		FamilySafe:    parseBool(getEnv("FAMILY_SAFE", "false")),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseBool(value string) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return b
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
