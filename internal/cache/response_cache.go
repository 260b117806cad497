// Package cache provides a Redis-backed prompt/response cache consulted
// before AI generation. Repeated identical questions are served without
// spending provider latency or retry budget.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/caremate/caremate/internal/assistant"
)

const keyPrefix = "caremate:resp:"

// ResponseCache stores generation results keyed by normalized prompt.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Config holds configuration for the response cache.
type Config struct {
	// Addr is the Redis address (host:port).
	Addr string

	// Password is the Redis password, empty for none.
	Password string

	// DB is the Redis database number.
	DB int

	// TTL is how long responses stay cached. Default: 1h.
	TTL time.Duration
}

// New creates a Redis-backed response cache.
func New(cfg Config) *ResponseCache {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = time.Hour
	}

	return &ResponseCache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl: ttl,
	}
}

// Get retrieves a cached result for a message. Returns the result and true on
// a hit, nil and false on a miss.
func (c *ResponseCache) Get(ctx context.Context, message string) (*assistant.GenerationResult, bool, error) {
	val, err := c.client.Get(ctx, Key(message)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var result assistant.GenerationResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return nil, false, fmt.Errorf("cache unmarshal: %w", err)
	}

	return &result, true, nil
}

// Set stores a result with the configured TTL.
func (c *ResponseCache) Set(ctx context.Context, message string, result *assistant.GenerationResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}

	if err := c.client.Set(ctx, Key(message), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (c *ResponseCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *ResponseCache) Close() error {
	return c.client.Close()
}

// Key derives the cache key for a message: whitespace-normalized, lowercased,
// then hashed so medical content never appears in Redis keys.
func Key(message string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(message), " "))
	sum := sha256.Sum256([]byte(normalized))
	return keyPrefix + hex.EncodeToString(sum[:])
}
