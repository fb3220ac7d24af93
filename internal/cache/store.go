package cache

import (
	"context"
	"time"
)

// Store is the cache contract the rest of the system depends on:
// JSON-shaped values with TTL, plus a pub/sub channel for broadcasts.
type Store interface {
	// GetJSON loads the value at key into dest. Returns false with a
	// nil error when the key is absent.
	GetJSON(ctx context.Context, key string, dest any) (bool, error)

	// SetJSON marshals value and overwrites key with the given TTL.
	// A ttl of NoExpiry stores the key without expiration.
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error

	// Publish marshals payload and publishes it on channel. Nothing is
	// written to the key namespace.
	Publish(ctx context.Context, channel string, payload any) error

	// Subscribe opens a dedicated subscription on channel. The returned
	// subscription delivers raw payloads until closed.
	Subscribe(ctx context.Context, channel string) Subscription

	// Ping checks store reachability.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}

// Subscription is a live pub/sub membership on one channel.
type Subscription interface {
	// Messages returns the raw payload stream. The channel closes when
	// the subscription is closed.
	Messages() <-chan []byte

	// Close terminates the subscription and its connection.
	Close() error
}
