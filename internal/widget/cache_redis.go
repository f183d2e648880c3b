// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package widget

import (
	stdctx "context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bookshelfie/shelfie/internal/platform/apperr"
	"github.com/bookshelfie/shelfie/internal/platform/constants"
)

// RedisPayloadCache implements [PayloadCache] on Redis.
type RedisPayloadCache struct {
	client *redis.Client
}

// NewPayloadCache creates a new Redis-backed widget payload cache.
func NewPayloadCache(client *redis.Client) *RedisPayloadCache {
	return &RedisPayloadCache{client: client}
}

// payloadKey builds the cache key for a member's widget payload.
func payloadKey(userID string) string {
	return constants.RedisPrefixWidgetPayload + userID
}

// Get returns cached payload bytes, or apperr.NotFound on a miss.
func (cache *RedisPayloadCache) Get(context stdctx.Context, userID string) ([]byte, error) {
	payload, err := cache.client.Get(context, payloadKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("WidgetPayload")
		}
		return nil, fmt.Errorf("redis_widget_cache_get_failed: %w", err)
	}
	return payload, nil
}

// Set stores payload bytes with the given TTL.
func (cache *RedisPayloadCache) Set(context stdctx.Context, userID string, payload []byte, ttl time.Duration) error {
	if err := cache.client.Set(context, payloadKey(userID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_widget_cache_set_failed: %w", err)
	}
	return nil
}
