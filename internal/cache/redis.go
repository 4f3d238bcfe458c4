// Package cache holds short-lived copies of ranking lists in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	dialTimeout  = 3 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	pingTimeout  = 2 * time.Second

	keyPrefix = "atelier:"
)

// NewClient parses a Redis URL and pings it once.
func NewClient(ctx context.Context, redisURL string, log logrus.FieldLogger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	options.PoolSize = 10
	options.MinIdleConns = 2
	options.DialTimeout = dialTimeout
	options.ReadTimeout = readTimeout
	options.WriteTimeout = writeTimeout

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}

	log.WithFields(logrus.Fields{"addr": options.Addr, "pool_size": options.PoolSize}).Info("redis client connected")
	return client, nil
}

// Ranking stores JSON-encoded lists under prefixed keys with a fixed TTL.
type Ranking struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRanking(client *redis.Client, ttl time.Duration) *Ranking {
	return &Ranking{client: client, ttl: ttl}
}

// Get decodes the cached value into dst. A miss returns false and no error.
func (r *Ranking) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis_ranking_get_failed: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("redis_ranking_decode_failed: %w", err)
	}
	return true, nil
}

func (r *Ranking) Set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis_ranking_encode_failed: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefix+key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis_ranking_set_failed: %w", err)
	}
	return nil
}

func (r *Ranking) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = keyPrefix + k
	}
	if err := r.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("redis_ranking_invalidate_failed: %w", err)
	}
	return nil
}
