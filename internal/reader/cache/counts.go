package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"versehub/internal/reader/repository"
)

// FallbackCounts are the documented per-corpus totals used only when
// both Redis and the backing store are unreachable. Unknown corpora get
// no fallback and surface the store error instead.
var FallbackCounts = map[string]int64{
	"bible": 31102,
	"quran": 6236,
}

// CountCache serves corpus totals Redis-first with the store as the
// durable source: read-through with TTL, cache warming on miss, and the
// fallback constant as a last resort. A nil Redis client degrades to
// store-only mode, which is also how tests run without Redis.
type CountCache struct {
	client *redis.Client
	verses repository.VerseRepository
	ttl    time.Duration
	logger *slog.Logger
}

func NewCountCache(client *redis.Client, verses repository.VerseRepository, ttl time.Duration) *CountCache {
	return &CountCache{
		client: client,
		verses: verses,
		ttl:    ttl,
		logger: slog.Default(),
	}
}

// NewRedisClient dials Redis with the same conservative timeouts the
// rest of the system assumes for network-bound stores.
func NewRedisClient(addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func countKey(corpus string) string {
	return fmt.Sprintf("verse_count:corpus:%s", corpus)
}

// Total returns the number of records in a corpus. It only returns an
// error for corpora that have no documented fallback constant.
func (c *CountCache) Total(ctx context.Context, corpus string) (int64, error) {
	if c.client != nil {
		val, err := c.client.Get(ctx, countKey(corpus)).Result()
		if err == nil {
			if n, perr := strconv.ParseInt(val, 10, 64); perr == nil {
				return n, nil
			}
		} else if err != redis.Nil {
			c.logger.Warn("count_cache_redis_read_failed",
				"corpus", corpus,
				"error", err,
			)
		}
	}

	total, err := c.verses.Count(ctx, corpus)
	if err != nil {
		if fallback, ok := FallbackCounts[corpus]; ok {
			c.logger.Warn("count_cache_store_fallback",
				"corpus", corpus,
				"fallback", fallback,
				"error", err,
			)
			return fallback, nil
		}
		return 0, err
	}

	if c.client != nil {
		// Warm the cache; a failed write costs nothing but the next miss.
		if err := c.client.Set(ctx, countKey(corpus), total, c.ttl).Err(); err != nil {
			c.logger.Warn("count_cache_redis_write_failed",
				"corpus", corpus,
				"error", err,
			)
		}
	}
	return total, nil
}

// Invalidate drops the cached total for a corpus, e.g. after an import.
func (c *CountCache) Invalidate(ctx context.Context, corpus string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, countKey(corpus)).Err(); err != nil {
		c.logger.Warn("count_cache_invalidate_failed",
			"corpus", corpus,
			"error", err,
		)
	}
}
