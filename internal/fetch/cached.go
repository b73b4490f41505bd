// Package fetch - cached.go wraps sources with a TTL cache keyed by URL.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL is how long fetched content stays fresh.
const DefaultCacheTTL = 7 * 24 * time.Hour

// Cache stores fetched payloads. Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache implements Cache using Redis.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCache creates a RedisCache. Keys are namespaced with prefix.
func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// Get retrieves a value by key.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return result, nil
}

// Set stores a value with a TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// CachedConfig holds configuration for the cached sources.
type CachedConfig struct {
	TTL    time.Duration
	Logger *slog.Logger
}

// CachedWebsite wraps a WebsiteSource with a cache.
// Cache failures never fail the fetch; they are logged and bypassed.
type CachedWebsite struct {
	next   WebsiteSource
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedWebsite creates a cached website source.
func NewCachedWebsite(next WebsiteSource, cache Cache, cfg CachedConfig) *CachedWebsite {
	ttl, logger := cfg.resolve()
	return &CachedWebsite{next: next, cache: cache, ttl: ttl, logger: logger}
}

// FetchWebsite implements WebsiteSource.
func (c *CachedWebsite) FetchWebsite(ctx context.Context, url string) (string, error) {
	key := cacheKey("website", url)
	if cached, ok := lookup(ctx, c.cache, key, c.logger); ok {
		return string(cached), nil
	}

	text, err := c.next.FetchWebsite(ctx, url)
	if err != nil {
		return "", err
	}
	// Empty pages are not worth remembering.
	if text != "" {
		store(ctx, c.cache, key, []byte(text), c.ttl, c.logger)
	}
	return text, nil
}

// CachedProfile wraps a ProfileSource with a cache.
type CachedProfile struct {
	next   ProfileSource
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedProfile creates a cached profile source.
func NewCachedProfile(next ProfileSource, cache Cache, cfg CachedConfig) *CachedProfile {
	ttl, logger := cfg.resolve()
	return &CachedProfile{next: next, cache: cache, ttl: ttl, logger: logger}
}

// FetchProfile implements ProfileSource.
func (c *CachedProfile) FetchProfile(ctx context.Context, url string) (json.RawMessage, error) {
	key := cacheKey("profile", url)
	if cached, ok := lookup(ctx, c.cache, key, c.logger); ok {
		return json.RawMessage(cached), nil
	}

	data, err := c.next.FetchProfile(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		store(ctx, c.cache, key, data, c.ttl, c.logger)
	}
	return data, nil
}

func (cfg CachedConfig) resolve() (time.Duration, *slog.Logger) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return ttl, logger
}

func lookup(ctx context.Context, cache Cache, key string, logger *slog.Logger) ([]byte, bool) {
	cached, err := cache.Get(ctx, key)
	if err != nil {
		logger.Warn("fetch cache read failed", "key", key, "error", err)
		return nil, false
	}
	if len(cached) == 0 {
		return nil, false
	}
	logger.Debug("fetch cache hit", "key", key)
	return cached, true
}

func store(ctx context.Context, cache Cache, key string, value []byte, ttl time.Duration, logger *slog.Logger) {
	if err := cache.Set(ctx, key, value, ttl); err != nil {
		logger.Warn("fetch cache write failed", "key", key, "error", err)
	}
}

func cacheKey(kind, url string) string {
	sum := sha256.Sum256([]byte(url))
	return kind + ":" + hex.EncodeToString(sum[:])
}
