package imagecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"slidesmith/internal/deck"
	"slidesmith/internal/unsplash"
)

const keyPrefix = "slidesmith:image:"

// Store is the subset of the Redis API the cache needs.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

var _ unsplash.Provider = (*Cache)(nil)

// Cache remembers image lookups per keyword. Only hits are cached so a
// keyword without results is retried on the next deck.
type Cache struct {
	store    Store
	upstream unsplash.Provider
	ttl      time.Duration
}

func New(store Store, upstream unsplash.Provider, ttl time.Duration) *Cache {
	return &Cache{store: store, upstream: upstream, ttl: ttl}
}

// Dial connects to Redis and verifies the connection.
func Dial(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}

	slog.Info("Connected to Redis", "addr", addr)
	return client, nil
}

func Key(keyword string) string {
	return keyPrefix + strings.ToLower(strings.Join(strings.Fields(keyword), " "))
}

func (c *Cache) FetchImage(ctx context.Context, keyword string) (*deck.ImageResult, error) {
	key := Key(keyword)

	if cached, ok := c.lookup(ctx, key); ok {
		slog.Debug("Image cache hit", "keyword", keyword)
		return cached, nil
	}

	result, err := c.upstream.FetchImage(ctx, keyword)
	if err != nil || result == nil {
		return result, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return result, nil
	}
	if err := c.store.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Warn("Image cache write failed", "keyword", keyword, "error", err)
	}

	return result, nil
}

func (c *Cache) lookup(ctx context.Context, key string) (*deck.ImageResult, bool) {
	data, err := c.store.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("Image cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var result deck.ImageResult
	if err := json.Unmarshal(data, &result); err != nil || result.URL == "" {
		slog.Warn("Discarding corrupt image cache entry", "key", key)
		return nil, false
	}
	return &result, true
}
