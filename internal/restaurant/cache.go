package restaurant

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const statsKey = "ordersetu:stats"

// StatsCache stores the landing page totals between recomputations.
type StatsCache interface {
	Get(ctx context.Context) (Stats, bool, error)
	Set(ctx context.Context, s Stats) error
}

type RedisStatsCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStatsCache(client *redis.Client, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{Client: client, TTL: ttl}
}

func (c *RedisStatsCache) Get(ctx context.Context) (Stats, bool, error) {
	raw, err := c.Client.Get(ctx, statsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Stats{}, false, nil
	}
	if err != nil {
		return Stats{}, false, err
	}

	var s Stats
	if err := json.Unmarshal(raw, &s); err != nil {
		return Stats{}, false, err
	}
	return s, true, nil
}

func (c *RedisStatsCache) Set(ctx context.Context, s Stats) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, statsKey, raw, c.TTL).Err()
}
