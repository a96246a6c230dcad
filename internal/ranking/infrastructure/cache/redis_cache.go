package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/felixgeelhaar/taskrank/internal/ranking/domain"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/resilience"
)

// RedisResultCache stores results in Redis behind a circuit breaker.
type RedisResultCache struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[any]
}

// NewRedisResultCache creates a cache using client.
func NewRedisResultCache(client *redis.Client, ttl time.Duration, breakerCfg resilience.BreakerConfig, logger *slog.Logger) *RedisResultCache {
	return &RedisResultCache{
		client:  client,
		ttl:     ttl,
		breaker: resilience.NewBreaker("redis-cache", breakerCfg, logger),
	}
}

// NewRedisClient parses url and creates a client.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// Get returns the cached result for key. Misses do not count as failures.
func (c *RedisResultCache) Get(ctx context.Context, key string) (*domain.AnalysisResult, bool, error) {
	v, err := c.breaker.Execute(func() (any, error) {
		val, err := c.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return val, err
	})
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	payload, _ := v.([]byte)
	if payload == nil {
		return nil, false, nil
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached result: %w", err)
	}
	return &result, true, nil
}

// Set stores result under key with the configured TTL.
func (c *RedisResultCache) Set(ctx context.Context, key string, result domain.AnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	_, err = c.breaker.Execute(func() (any, error) {
		return nil, c.client.Set(ctx, key, payload, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (c *RedisResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (c *RedisResultCache) Close() error {
	return c.client.Close()
}
