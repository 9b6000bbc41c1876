// Package redis caches resolved URL records in Redis.
// Records never change once created, so a cached entry is only bounded by its TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const keyPrefix = "shortlink:url:"

// DefaultTTL is used when the cache is created with a non-positive ttl.
const DefaultTTL = 24 * time.Hour

// Key returns the Redis key of the record cached for shortCode.
func Key(shortCode string) string {
	return keyPrefix + shortCode
}

type urlJSON struct {
	ID          int64     `json:"id"`
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	ClientIP    string    `json:"client_ip,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type URLCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewURLCache(client redis.Cmdable, ttl time.Duration) *URLCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &URLCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached record for shortCode, or entity.ErrURLNotFound on a miss.
func (c *URLCache) Get(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "adapter.cache.redis.URLCache.Get"

	data, err := c.client.Get(ctx, Key(shortCode)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get cached url: %w", op, err)
	}

	var rec urlJSON
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%s: failed to decode cached url: %w", op, err)
	}

	return &entity.URL{
		ID:          rec.ID,
		ShortCode:   rec.ShortCode,
		OriginalURL: rec.OriginalURL,
		ClientIP:    rec.ClientIP,
		CreatedAt:   rec.CreatedAt,
	}, nil
}

func (c *URLCache) Set(ctx context.Context, url *entity.URL) error {
	const op = "adapter.cache.redis.URLCache.Set"

	data, err := json.Marshal(urlJSON{
		ID:          url.ID,
		ShortCode:   url.ShortCode,
		OriginalURL: url.OriginalURL,
		ClientIP:    url.ClientIP,
		CreatedAt:   url.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("%s: failed to encode url: %w", op, err)
	}

	if err := c.client.Set(ctx, Key(url.ShortCode), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%s: failed to cache url: %w", op, err)
	}

	return nil
}
