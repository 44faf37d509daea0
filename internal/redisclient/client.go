package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// RunKey builds the idempotency key for one generation configuration.
// Identical parameters always map to the same key, which is what makes a
// deterministic generator cacheable.
func RunKey(seed int64, recordCount int, errorFraction float64, windowStart, windowEnd string) string {
	return fmt.Sprintf("dataset:%d:%d:%g:%s:%s", seed, recordCount, errorFraction, windowStart, windowEnd)
}

// SetRunID caches the run ID produced for a generation configuration
func (c *Client) SetRunID(ctx context.Context, key, runID string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, runID, ttl).Err()
}

// GetRunID returns the cached run ID for a generation configuration, or
// "" when the configuration has not been generated yet
func (c *Client) GetRunID(ctx context.Context, key string) (string, error) {
	runID, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return runID, nil
}

// AcquireLock acquires a generation lock so two workers never run the
// same configuration concurrently
func (c *Client) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:%s", lockKey), "1", ttl).Result()
}

// ReleaseLock releases a generation lock
func (c *Client) ReleaseLock(ctx context.Context, lockKey string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:%s", lockKey)).Err()
}
