// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicvault/internal/platform/constants"
	redisstore "github.com/taibuivan/comicvault/internal/platform/redis"
)

// fakeClient keeps string values in memory. Only the commands the page cache
// issues are implemented.
type fakeClient struct {
	redis.Cmdable
	values map[string]string
	getErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{values: map[string]string{}}
}

func (c *fakeClient) Get(_ context.Context, key string) *redis.StringCmd {
	if c.getErr != nil {
		return redis.NewStringResult("", c.getErr)
	}
	value, ok := c.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (c *fakeClient) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		c.values[key] = string(v)
	case string:
		c.values[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (c *fakeClient) Incr(_ context.Context, key string) *redis.IntCmd {
	n, _ := strconv.ParseInt(c.values[key], 10, 64)
	n++
	c.values[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

type page struct {
	Total int `json:"total"`
}

/*
TestPageCache_RoundTrip stores and reads back a page under one scoped key.
*/
func TestPageCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := redisstore.NewPageCache(newFakeClient(), time.Minute)

	key, err := cache.Scope(ctx, "page=1")
	require.NoError(t, err)
	assert.Equal(t, constants.RedisPrefixComicPage+"0:page=1", key)

	var got page
	hit, err := cache.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, key, page{Total: 7}))

	hit, err = cache.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 7, got.Total)
}

/*
TestPageCache_InvalidateBetweenGetAndSet files a page computed before an
invalidation under the retired generation, where no later query looks.
*/
func TestPageCache_InvalidateBetweenGetAndSet(t *testing.T) {
	ctx := context.Background()
	cache := redisstore.NewPageCache(newFakeClient(), time.Minute)

	key, err := cache.Scope(ctx, "page=1")
	require.NoError(t, err)

	var got page
	hit, err := cache.Get(ctx, key, &got)
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, cache.Invalidate(ctx))
	require.NoError(t, cache.Set(ctx, key, page{Total: 1}))

	next, err := cache.Scope(ctx, "page=1")
	require.NoError(t, err)
	assert.NotEqual(t, key, next)

	hit, err = cache.Get(ctx, next, &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

/*
TestPageCache_ScopeError surfaces a failing generation read.
*/
func TestPageCache_ScopeError(t *testing.T) {
	client := newFakeClient()
	client.getErr = errors.New("connection refused")
	cache := redisstore.NewPageCache(client, time.Minute)

	_, err := cache.Scope(context.Background(), "page=1")
	assert.ErrorContains(t, err, "read generation")
}
