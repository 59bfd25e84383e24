package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gatherhub-io/gatherhub/internal/metrics"
	"github.com/gatherhub-io/gatherhub/internal/models"
)

// latestKey holds the full serialized event feed as a single snapshot.
const latestKey = "latest_events"

// ErrCacheMiss is returned when the snapshot is absent or unreadable.
var ErrCacheMiss = errors.New("cache: miss")

// FeedCache stores the event feed in Redis as one JSON blob with a TTL.
// A nil client disables caching: reads miss, writes are no-ops.
type FeedCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFeedCache creates a feed cache. client may be nil to run without Redis.
func NewFeedCache(client *redis.Client, ttl time.Duration) *FeedCache {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &FeedCache{client: client, ttl: ttl}
}

// Get returns the cached feed, or ErrCacheMiss when it is not available.
// Redis errors degrade to a miss so callers fall through to the store.
func (c *FeedCache) Get(ctx context.Context) ([]models.Event, error) {
	if c.client == nil {
		return nil, ErrCacheMiss
	}

	data, err := c.client.Get(ctx, latestKey).Bytes()
	if err != nil {
		metrics.CacheReadsTotal.WithLabelValues("miss").Inc()
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("%w: %v", ErrCacheMiss, err)
	}

	var events []models.Event
	if err := json.Unmarshal(data, &events); err != nil {
		metrics.CacheReadsTotal.WithLabelValues("miss").Inc()
		return nil, fmt.Errorf("%w: %v", ErrCacheMiss, err)
	}
	metrics.CacheReadsTotal.WithLabelValues("hit").Inc()
	return events, nil
}

// Set replaces the cached feed snapshot.
func (c *FeedCache) Set(ctx context.Context, events []models.Event) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(events)
	if err != nil {
		metrics.CacheRefreshesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("marshaling feed: %w", err)
	}
	if err := c.client.Set(ctx, latestKey, data, c.ttl).Err(); err != nil {
		metrics.CacheRefreshesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("writing feed snapshot: %w", err)
	}
	metrics.CacheRefreshesTotal.WithLabelValues("success").Inc()
	return nil
}

// Invalidate drops the snapshot so the next read goes to the store.
func (c *FeedCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, latestKey).Err()
}
