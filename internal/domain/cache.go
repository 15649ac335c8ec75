package domain

import (
	"context"
	"time"
)

// SeenStore remembers which post IDs have already been processed so restarts
// and overlapping queries do not act on the same post twice.
type SeenStore interface {
	// MarkSeen records the post ID and reports whether this was its first
	// sighting.
	MarkSeen(ctx context.Context, postID string) (bool, error)
}

// RateLimiter provides distributed rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Wait(ctx context.Context, key string) error
}

// LockManager provides distributed locking.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// EventBus provides pub/sub fan-out of engine decision events.
type EventBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
