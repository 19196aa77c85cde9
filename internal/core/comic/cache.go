// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/taibuivan/comicvault/pkg/pagination"
	"github.com/taibuivan/comicvault/pkg/textnorm"
)

// PageCache stores encoded query pages. The Redis page cache satisfies it.
//
// Scope binds a key to the cache's current generation. Get and Set take the
// scoped key as is, so one query reads and writes the same generation even
// when the catalogue is invalidated in between.
type PageCache interface {
	Scope(context context.Context, key string) (string, error)
	Get(context context.Context, scopedKey string, dest any) (bool, error)
	Set(context context.Context, scopedKey string, value any) error
}

// queryCache wraps an optional [PageCache]. Failures are logged and treated
// as misses so a read always falls through to the store.
type queryCache struct {
	backend PageCache
	logger  *slog.Logger
}

func newQueryCache(backend PageCache, logger *slog.Logger) *queryCache {
	return &queryCache{backend: backend, logger: logger}
}

// scope resolves the generation for key once per query. An empty result
// disables the cache for that query.
func (cache *queryCache) scope(context context.Context, key string) string {
	if cache.backend == nil {
		return ""
	}

	scoped, err := cache.backend.Scope(context, key)
	if err != nil {
		cache.logger.WarnContext(context, "query_cache_scope_failed", slog.String("key", key), slog.Any("error", err))
		return ""
	}
	return scoped
}

func (cache *queryCache) get(context context.Context, scopedKey string) (*Page, bool) {
	if scopedKey == "" {
		return nil, false
	}

	var page Page
	hit, err := cache.backend.Get(context, scopedKey, &page)
	if err != nil {
		cache.logger.WarnContext(context, "query_cache_read_failed", slog.String("key", scopedKey), slog.Any("error", err))
		return nil, false
	}
	if !hit {
		return nil, false
	}
	return &page, true
}

func (cache *queryCache) set(context context.Context, scopedKey string, page *Page) {
	if scopedKey == "" {
		return
	}
	if err := cache.backend.Set(context, scopedKey, page); err != nil {
		cache.logger.WarnContext(context, "query_cache_write_failed", slog.String("key", scopedKey), slog.Any("error", err))
	}
}

// cacheKey is the canonical encoding of a validated query.
func cacheKey(filter Filter, sort Sort, params pagination.Params) string {
	values := url.Values{}
	values.Set(FieldStatus, filter.Status)
	values.Set(FieldGenre, filter.Genre)
	values.Set(FieldSearch, textnorm.Search(filter.Search))
	values.Set(FieldSort, string(sort))
	values.Set(FieldPage, strconv.Itoa(params.Page))
	values.Set(FieldLimit, strconv.Itoa(params.Limit))
	return values.Encode()
}
