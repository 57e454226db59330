// Package cache provides an optional Redis-backed store for LLM evaluation
// results, keyed by prompt hash. It exists to avoid paying for the same
// evaluation twice; a cache miss or outage always degrades to a live call.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"applicant-pipeline/internal/common/config"
	"applicant-pipeline/internal/models"
)

// Client wraps the Redis client. A nil *Client is a valid no-op cache.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a Redis-backed cache, or nil when no address is configured.
func New(cfg config.CacheConfig) *Client {
	if cfg.Address == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return &Client{rdb: rdb, ttl: time.Duration(cfg.TTL) * time.Second}
}

// Ping tests the Redis connection.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// GetEvaluation returns the cached evaluation for key, if any.
func (c *Client) GetEvaluation(ctx context.Context, key string) (*models.Evaluation, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var eval models.Evaluation
	if err := json.Unmarshal(data, &eval); err != nil {
		return nil, false
	}
	return &eval, true
}

// PutEvaluation stores an evaluation under key with the configured TTL.
// Failures are swallowed; the cache is best-effort.
func (c *Client) PutEvaluation(ctx context.Context, key string, eval *models.Evaluation) {
	if c == nil || eval == nil {
		return
	}
	data, err := json.Marshal(eval)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, key, data, c.ttl).Err()
}

// Key derives the cache key for a prompt.
func Key(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return "eval:" + hex.EncodeToString(sum[:])
}
