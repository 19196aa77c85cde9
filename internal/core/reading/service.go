// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reading

import (
	"context"
	"log/slog"

	"github.com/taibuivan/comicvault/internal/platform/apperr"
	"github.com/taibuivan/comicvault/internal/platform/constants"
	"github.com/taibuivan/comicvault/internal/platform/validate"
)

// Invalidator retires cached query pages after a write.
type Invalidator interface {
	Invalidate(context context.Context) error
}

// EventPublisher announces committed writes.
type EventPublisher interface {
	Publish(context context.Context, subject string, payload any)
}

// maxLinkLength bounds link and chapter URL inputs.
const maxLinkLength = 2048

// # Service Layer

// Service validates and applies reading status writes.
type Service struct {
	store  Store
	cache  Invalidator
	events EventPublisher
	logger *slog.Logger
}

// NewService constructs a new [Service]. cache and events may be nil.
func NewService(store Store, cache Invalidator, events EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		events: events,
		logger: logger,
	}
}

// StatusUpdatedEvent is published after every successful status write.
type StatusUpdatedEvent struct {
	ComicID int64  `json:"comicId"`
	Status  Status `json:"status"`
}

/*
SetStatus overwrites the status and progress of one comic.

Description: Every rule is checked before the store is touched. The write
itself is a single statement; a second call for the same comic overwrites the
first and never adds a row.

Parameters:
  - context: context.Context
  - update: Update (comic id, status, progress, optional link guard)

Returns:
  - error: InvalidArgument on bad input or link mismatch, NotFound for an
    unknown comic, Unavailable/Internal on store failure
*/
func (service *Service) SetStatus(context context.Context, update Update) error {
	validator := &validate.Validator{}
	validator.Custom(FieldComicID, update.ComicID < 1, "Must be a positive integer")
	validator.Required(FieldStatus, string(update.Status)).
		OneOf(FieldStatus, string(update.Status), Values()...)

	if chapter := update.Progress.LastReadChapter; chapter != nil {
		validator.Min(FieldLastReadChapter, *chapter, 0)
	}
	if chapterURL := update.Progress.CurrentChapterURL; chapterURL != nil {
		validator.Required(FieldCurrentChapterURL, *chapterURL).
			MaxLen(FieldCurrentChapterURL, *chapterURL, maxLinkLength).
			HTTPURL(FieldCurrentChapterURL, *chapterURL)
	}
	validator.MaxLen(FieldLink, update.Link, maxLinkLength).HTTPURL(FieldLink, update.Link)

	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.store.SetStatus(context, update); err != nil {
		return service.explainMiss(context, update, err)
	}

	service.invalidate(context)
	if service.events != nil {
		service.events.Publish(context, constants.SubjectStatusUpdated, StatusUpdatedEvent{
			ComicID: update.ComicID,
			Status:  update.Status,
		})
	}

	service.logger.InfoContext(context, "status_updated",
		slog.Int64("comic_id", update.ComicID),
		slog.String("status", string(update.Status)),
	)
	return nil
}

/*
MigrateVocabulary rewrites legacy status values into the current vocabulary.

Returns:
  - int64: Rows changed (0 on a second run)
  - error: Store failures
*/
func (service *Service) MigrateVocabulary(context context.Context) (int64, error) {
	changed, err := service.store.MigrateVocabulary(context)
	if err != nil {
		return 0, err
	}

	if changed > 0 {
		service.invalidate(context)
	}

	service.logger.InfoContext(context, "status_vocabulary_migrated", slog.Int64("rows_changed", changed))
	return changed, nil
}

// explainMiss turns a NotFound caused by a link guard on an existing comic
// into InvalidArgument.
func (service *Service) explainMiss(context context.Context, update Update, err error) error {
	if update.Link == "" || apperr.CodeOf(err) != apperr.CodeNotFound {
		return err
	}

	exists, existsErr := service.store.ComicExists(context, update.ComicID)
	if existsErr != nil || !exists {
		return err
	}

	return validate.FieldError(FieldLink, "Does not match the comic's link")
}

func (service *Service) invalidate(context context.Context) {
	if service.cache == nil {
		return
	}
	if err := service.cache.Invalidate(context); err != nil {
		service.logger.WarnContext(context, "query_cache_invalidate_failed", slog.Any("error", err))
	}
}
