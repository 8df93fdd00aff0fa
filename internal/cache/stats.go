package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/01moynul/yourqueen-golang/internal/models"
	"github.com/redis/go-redis/v9"
)

const DashboardStatsKey = "stats:dashboard"

// StatsCache keeps the admin dashboard counters in Redis. A nil client (or
// a nil *StatsCache) means every call goes straight to the loader.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

// Dashboard returns the cached stats, calling load and caching the result
// on a miss. Cache errors are logged and fall back to load.
func (c *StatsCache) Dashboard(ctx context.Context, load func(context.Context) (*models.DashboardStats, error)) (*models.DashboardStats, error) {
	if c == nil || c.client == nil {
		return load(ctx)
	}

	data, err := c.client.Get(ctx, DashboardStatsKey).Bytes()
	if err == nil {
		var stats models.DashboardStats
		if json.Unmarshal(data, &stats) == nil {
			return &stats, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("stats cache read failed: %v", err)
	}

	stats, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(stats); err == nil {
		if err := c.client.Set(ctx, DashboardStatsKey, payload, c.ttl).Err(); err != nil {
			log.Printf("stats cache write failed: %v", err)
		}
	}
	return stats, nil
}

// Invalidate drops the cached stats after a write that changes them.
func (c *StatsCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, DashboardStatsKey).Err(); err != nil {
		log.Printf("stats cache invalidation failed: %v", err)
	}
}
