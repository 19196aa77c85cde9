// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import (
	"context"
	"log/slog"

	"github.com/taibuivan/comicvault/internal/core/reading"
	"github.com/taibuivan/comicvault/internal/platform/apperr"
	"github.com/taibuivan/comicvault/internal/platform/database/schema"
	"github.com/taibuivan/comicvault/internal/platform/validate"
	"github.com/taibuivan/comicvault/pkg/pagination"
	"github.com/taibuivan/comicvault/pkg/query"
	"github.com/taibuivan/comicvault/pkg/textnorm"
)

// maxSearchLength bounds the title search term, in runes.
const maxSearchLength = 200

// # Service Layer

// Service answers catalogue reads.
type Service struct {
	store  Store
	cache  *queryCache
	logger *slog.Logger
}

// NewService constructs a new [Service]. cache may be nil, in which case
// every read goes to the store.
func NewService(store Store, cache PageCache, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		cache:  newQueryCache(cache, logger),
		logger: logger,
	}
}

/*
Query returns one page of the catalogue.

Description: Every parameter is validated before any I/O; a bad request
never reaches the store or the cache. The filters are combined with AND and
run as a single statement that yields both the window and the total.

Parameters:
  - context: context.Context
  - filter: Filter (status, genre, title search; each optional)
  - sort: Sort (empty means [DefaultSort])
  - params: pagination.Params

Returns:
  - *Page: Items plus total, page, limit and totalPages
  - error: InvalidArgument with field details, Unavailable/Internal on store failure
*/
func (service *Service) Query(context context.Context, filter Filter, sort Sort, params pagination.Params) (*Page, error) {
	if sort == "" {
		sort = DefaultSort
	}

	validator := &validate.Validator{}
	if filter.Status != "" {
		validator.OneOf(FieldStatus, filter.Status, reading.Values()...)
	}
	if filter.Genre != "" {
		validator.OneOf(FieldGenre, filter.Genre, AllowedGenres...)
	}
	validator.MaxLen(FieldSearch, filter.Search, maxSearchLength)
	validator.OneOf(FieldSort, string(sort), Sorts()...)
	validator.Range(FieldPage, params.Page, 1, pagination.MaxPage)
	validator.Range(FieldLimit, params.Limit, 1, pagination.MaxLimit)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	key := service.cache.scope(context, cacheKey(filter, sort, params))
	if page, ok := service.cache.get(context, key); ok {
		return page, nil
	}

	items, total, err := service.store.List(context, conditions(filter), sort, params.Limit, params.Offset())
	if err != nil {
		return nil, err
	}

	meta := pagination.NewMeta(params.Page, params.Limit, total)
	page := &Page{
		Items:      items,
		Total:      meta.Total,
		Page:       meta.Page,
		Limit:      meta.Limit,
		TotalPages: meta.TotalPages,
	}

	service.cache.set(context, key, page)
	return page, nil
}

/*
Get returns one comic with its reading status.

Returns:
  - *Listing: The comic
  - error: InvalidArgument for id < 1, NotFound when absent
*/
func (service *Service) Get(context context.Context, id int64) (*Listing, error) {
	if id < 1 {
		return nil, validate.FieldError(FieldID, "Must be a positive integer")
	}

	listing, err := service.store.Get(context, id)
	if err != nil {
		if apperr.CodeOf(err) != apperr.CodeNotFound {
			service.logger.ErrorContext(context, "comic_lookup_failed", slog.Int64("comic_id", id), slog.Any("error", err))
		}
		return nil, err
	}
	return listing, nil
}

// IndexTitles backfills the title search column and logs how many rows it
// touched.
func (service *Service) IndexTitles(context context.Context) (int64, error) {
	updated, err := service.store.IndexTitles(context)
	if err != nil {
		service.logger.ErrorContext(context, "title_index_failed", slog.Any("error", err))
		return 0, err
	}
	if updated > 0 {
		service.logger.InfoContext(context, "titles_indexed", slog.Int64("rows", updated))
	}
	return updated, nil
}

// conditions turns a validated filter into predicates over the joined
// comics (c) and reading_status (rs) tables.
func conditions(filter Filter) []query.Condition {
	c := schema.Comics
	rs := schema.ReadingStatus

	var conds []query.Condition
	if filter.Status != "" {
		// A comic without a status row counts as unread.
		conds = append(conds, query.Cond("COALESCE(rs."+rs.Status+", ?) = ?", string(reading.StatusUnread), filter.Status))
	}
	if filter.Genre != "" {
		conds = append(conds, query.Contains("c."+c.Genre, filter.Genre))
	}
	if search := textnorm.Search(filter.Search); search != "" {
		conds = append(conds, query.Contains("c."+c.TitleSearch, search))
	}
	return conds
}
