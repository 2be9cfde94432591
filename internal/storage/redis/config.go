package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings for different entity types
	GuestPlayerTTL time.Duration
	LobbyTTL       time.Duration
	SessionTTL     time.Duration

	// MaxUpdateRetries bounds optimistic retries of a contended session update
	MaxUpdateRetries int

	// SubscriptionBuffer is how far a subscriber may fall behind before it is dropped
	SubscriptionBuffer int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:                "redis://localhost:6379",
		PoolSize:           10,
		MinIdleConns:       2,
		GuestPlayerTTL:     24 * time.Hour,
		LobbyTTL:           24 * time.Hour,
		SessionTTL:         24 * time.Hour,
		MaxUpdateRetries:   16,
		SubscriptionBuffer: 64,
	}
}
