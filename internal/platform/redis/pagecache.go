// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis

import (
	stdctx "context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/comicvault/internal/platform/constants"
)

// PageCache stores JSON-encoded values under generation-scoped keys.
//
// # Invalidation
//
// Every key embeds the value a generation counter had when [PageCache.Scope]
// read it. [PageCache.Invalidate] increments the counter, so entries scoped
// before it are never read again and simply expire. A caller scopes once per
// query and passes that key to both Get and Set: a page computed while a write
// landed is then filed under the retired generation.
type PageCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewPageCache builds a cache on top of client. ttl bounds each entry.
func NewPageCache(client redis.Cmdable, ttl time.Duration) *PageCache {
	return &PageCache{client: client, ttl: ttl}
}

// Scope prefixes key with the current generation.
func (cache *PageCache) Scope(context stdctx.Context, key string) (string, error) {
	generation, err := cache.client.Get(context, constants.RedisKeyCatalogGeneration).Int64()
	if errors.Is(err, redis.Nil) {
		generation = 0
	} else if err != nil {
		return "", fmt.Errorf("redis: read generation: %w", err)
	}
	return constants.RedisPrefixComicPage + strconv.FormatInt(generation, 10) + ":" + key, nil
}

// Get decodes the entry for a scoped key into dest. It reports false on a miss.
func (cache *PageCache) Get(context stdctx.Context, scopedKey string, dest any) (bool, error) {
	raw, err := cache.client.Get(context, scopedKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis: get %s: %w", scopedKey, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("redis: decode %s: %w", scopedKey, err)
	}
	return true, nil
}

// Set stores value under a scoped key for the cache TTL.
func (cache *PageCache) Set(context stdctx.Context, scopedKey string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis: encode %s: %w", scopedKey, err)
	}

	if err := cache.client.Set(context, scopedKey, raw, cache.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", scopedKey, err)
	}
	return nil
}

// Invalidate retires every entry written so far.
func (cache *PageCache) Invalidate(context stdctx.Context) error {
	if err := cache.client.Incr(context, constants.RedisKeyCatalogGeneration).Err(); err != nil {
		return fmt.Errorf("redis: bump generation: %w", err)
	}
	return nil
}
