package cache

import (
	"context"
	"time"
)

// Cache is the shared key/value and pub/sub surface. The redis implementation
// is used whenever REDIS_ADDR is set; the in-process one otherwise.
type Cache interface {
	IncrementLoginAttempt(ctx context.Context, key string) error
	IsLoginBlocked(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, key string) error

	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (Subscription, error)

	Ping(ctx context.Context) error
	Close() error
}

// Subscription delivers raw payloads published on one channel until closed.
type Subscription interface {
	Messages() <-chan []byte
	Close() error
}

type LoginPolicy struct {
	MaxAttempts int
	BlockFor    time.Duration
}
