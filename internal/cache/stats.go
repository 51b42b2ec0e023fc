// Package cache holds a Redis read-through cache for public profile stats.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/redis/go-redis/v9"

	"github.com/fourtogenic/photoshare/internal/model"
)

// kv is the part of *redis.Client the cache uses.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// StatsCache caches model.Stats per user for a fixed TTL.
type StatsCache struct {
	rdb kv
	ttl time.Duration
}

// NewStatsCache wraps a Redis client.
func NewStatsCache(rdb kv, ttl time.Duration) *StatsCache {
	return &StatsCache{rdb: rdb, ttl: ttl}
}

// NewRedisClient creates a client and checks it with a ping.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

type entry struct {
	Photos int64 `json:"p"`
	Likes  int64 `json:"l"`
}

func statsKey(userID uuid.UUID) string { return "stats:" + userID.String() }

// Get returns cached stats; ok is false on a miss.
func (c *StatsCache) Get(ctx context.Context, userID uuid.UUID) (model.Stats, bool, error) {
	raw, err := c.rdb.Get(ctx, statsKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Stats{}, false, nil
	}
	if err != nil {
		return model.Stats{}, false, err
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return model.Stats{}, false, fmt.Errorf("decode cached stats: %w", err)
	}
	return model.Stats{PhotoCount: e.Photos, ReceivedLikeCount: e.Likes}, true, nil
}

// Set stores stats for the configured TTL.
func (c *StatsCache) Set(ctx context.Context, userID uuid.UUID, s model.Stats) error {
	raw, err := json.Marshal(entry{Photos: s.PhotoCount, Likes: s.ReceivedLikeCount})
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, statsKey(userID), raw, c.ttl).Err()
}
