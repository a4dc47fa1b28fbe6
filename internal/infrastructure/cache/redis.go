package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultKeyPrefix = "gc:cache:"
	scanBatchSize    = 200
)

// RedisResponseCache is a ResponseCache shared by every API instance
type RedisResponseCache struct {
	client     *redis.Client
	keyPrefix  string
	defaultTTL time.Duration
	logger     *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// RedisConfig holds Redis connection settings for the cache
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// NewRedisResponseCache connects to Redis and verifies the connection
func NewRedisResponseCache(cfg RedisConfig, logger *zap.Logger) (*RedisResponseCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisResponseCacheWithClient(client, cfg.KeyPrefix, cfg.TTL, logger), nil
}

// NewRedisResponseCacheWithClient wraps an existing client
func NewRedisResponseCacheWithClient(client *redis.Client, keyPrefix string, defaultTTL time.Duration, logger *zap.Logger) *RedisResponseCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisResponseCache{
		client:     client,
		keyPrefix:  keyPrefix,
		defaultTTL: defaultTTL,
		logger:     logger,
	}
}

// Get implements ResponseCache
func (c *RedisResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return value, true
}

// Set implements ResponseCache
func (c *RedisResponseCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, value, ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate implements ResponseCache
func (c *RedisResponseCache) Invalidate(ctx context.Context, pattern string) int {
	return c.deleteMatching(ctx, c.keyPrefix+"*"+GlobEscape(pattern)+"*")
}

// InvalidateResource implements ResponseCache
func (c *RedisResponseCache) InvalidateResource(ctx context.Context, resource string) int {
	return c.deleteMatching(ctx, c.keyPrefix+GlobEscape(resource+KeySeparator)+"*")
}

// Clear implements ResponseCache
func (c *RedisResponseCache) Clear(ctx context.Context) {
	c.deleteMatching(ctx, c.keyPrefix+"*")
}

func (c *RedisResponseCache) deleteMatching(ctx context.Context, match string) int {
	keys, err := c.scan(ctx, match)
	if err != nil {
		c.logger.Warn("cache scan failed", zap.String("match", match), zap.Error(err))
		return 0
	}
	if len(keys) == 0 {
		return 0
	}

	removed, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("cache invalidation failed", zap.String("match", match), zap.Error(err))
		return 0
	}
	return int(removed)
}

func (c *RedisResponseCache) scan(ctx context.Context, match string) ([]string, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, match, scanBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}

// Keys implements ResponseCache
func (c *RedisResponseCache) Keys(ctx context.Context) []string {
	raw, err := c.scan(ctx, c.keyPrefix+"*")
	if err != nil {
		c.logger.Warn("cache scan failed", zap.Error(err))
		return []string{}
	}
	keys := make([]string, len(raw))
	for i, k := range raw {
		keys[i] = strings.TrimPrefix(k, c.keyPrefix)
	}
	sort.Strings(keys)
	return keys
}

// Stats implements ResponseCache
func (c *RedisResponseCache) Stats(ctx context.Context) Stats {
	return Stats{
		Driver: "redis",
		Keys:   len(c.Keys(ctx)),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}

// Close closes the Redis client
func (c *RedisResponseCache) Close() error {
	return c.client.Close()
}

// GlobEscape escapes the characters SCAN MATCH treats specially
func GlobEscape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Ensure RedisResponseCache implements ResponseCache
var _ ResponseCache = (*RedisResponseCache)(nil)
