package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noor961/Meme-coin--7/internal/domain"
)

// defaultSeenTTL keeps post IDs long enough to outlive the platform's
// recent-search window, after which a repeat can no longer appear.
const defaultSeenTTL = 7 * 24 * time.Hour

// SeenStore implements domain.SeenStore using SET NX with a TTL, so the same
// post is processed at most once across restarts and replicas.
type SeenStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSeenStore creates a SeenStore backed by the given Client. A ttl of zero
// selects the default retention.
func NewSeenStore(c *Client, ttl time.Duration) *SeenStore {
	if ttl <= 0 {
		ttl = defaultSeenTTL
	}
	return &SeenStore{rdb: c.Underlying(), ttl: ttl}
}

func seenKey(postID string) string {
	return "memebot:seen:" + postID
}

// MarkSeen records the post ID and reports whether this was its first
// sighting.
func (s *SeenStore) MarkSeen(ctx context.Context, postID string) (bool, error) {
	first, err := s.rdb.SetNX(ctx, seenKey(postID), 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: mark seen %s: %w", postID, err)
	}
	return first, nil
}

// Compile-time interface check.
var _ domain.SeenStore = (*SeenStore)(nil)
