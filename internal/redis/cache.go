package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/snake-arena/internal/config"
	"github.com/snake-arena/internal/domain"
)

// Cache is a short-lived read cache for leaderboard queries. The
// database stays the source of truth; cached entries expire on a TTL
// and are dropped eagerly whenever a score lands in the scope they
// cover.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache creates a Redis-backed leaderboard cache
func NewCache(cfg *config.RedisConfig, logger *slog.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Cache{
		client: client,
		ttl:    cfg.CacheTTL,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// key returns the cache key for a leaderboard scope. The empty mode is
// the unfiltered leaderboard.
func (c *Cache) key(mode domain.Mode) string {
	scope := string(mode)
	if scope == "" {
		scope = "all"
	}
	return fmt.Sprintf("leaderboard:%s:top", scope)
}

// Get returns cached entries for the scope, or ok=false on a miss.
// Cache failures are reported as misses so a degraded Redis never
// breaks reads.
func (c *Cache) Get(ctx context.Context, mode domain.Mode) ([]domain.LeaderboardEntry, bool) {
	data, err := c.client.Get(ctx, c.key(mode)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("leaderboard cache read failed", "error", err)
		}
		return nil, false
	}

	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Warn("leaderboard cache payload corrupt", "error", err)
		return nil, false
	}
	return entries, true
}

// Set stores entries for the scope with the configured TTL
func (c *Cache) Set(ctx context.Context, mode domain.Mode, entries []domain.LeaderboardEntry) {
	data, err := json.Marshal(entries)
	if err != nil {
		c.logger.Warn("marshaling leaderboard cache entry", "error", err)
		return
	}
	if err := c.client.Set(ctx, c.key(mode), data, c.ttl).Err(); err != nil {
		c.logger.Warn("leaderboard cache write failed", "error", err)
	}
}

// Invalidate drops the cached leaderboard for a mode and the
// unfiltered scope, which every submission also affects.
func (c *Cache) Invalidate(ctx context.Context, mode domain.Mode) {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, c.key(mode))
	pipe.Del(ctx, c.key(""))
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("leaderboard cache invalidation failed", "error", err)
	}
}
