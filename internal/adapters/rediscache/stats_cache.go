package rediscache

// Package rediscache caches computed admin statistics so repeated dashboard
// loads do not hammer the user pool. It is never consulted for authorization
// decisions; those are evaluated fresh on every request.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/beaconworks/kb-chat-api/internal/ports"
)

const statsKey = "stats:users"

// StatsCache stores the user statistics snapshot under a single key with a
// TTL. A missing or expired key reports ports.ErrCacheMiss.
type StatsCache struct {
	client redis.UniversalClient
	prefix string
}

// New creates a StatsCache.
func New(client redis.UniversalClient) *StatsCache {
	return &StatsCache{
		client: client,
		prefix: "kbchat:",
	}
}

// NewWithPrefix creates a StatsCache with a custom key prefix.
func NewWithPrefix(client redis.UniversalClient, prefix string) *StatsCache {
	return &StatsCache{
		client: client,
		prefix: prefix,
	}
}

var _ ports.StatsCache = (*StatsCache)(nil)

func (c *StatsCache) Get(ctx context.Context) (ports.UserStats, error) {
	data, err := c.client.Get(ctx, c.prefix+statsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ports.UserStats{}, ports.ErrCacheMiss
		}
		return ports.UserStats{}, fmt.Errorf("redis get: %w", err)
	}

	var stats ports.UserStats
	if unmarshalErr := json.Unmarshal([]byte(data), &stats); unmarshalErr != nil {
		// A corrupt entry is treated as a miss so the caller recomputes.
		return ports.UserStats{}, ports.ErrCacheMiss
	}
	return stats, nil
}

func (c *StatsCache) Save(ctx context.Context, stats ports.UserStats, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("cache TTL must be positive")
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	return c.client.Set(ctx, c.prefix+statsKey, data, ttl).Err()
}
