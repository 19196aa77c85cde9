// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ingest bulk-loads scraped comic lists into the catalogue.

Each batch is one JSON array tagged with a single genre. The whole batch runs
in one transaction: either every record is applied or none is.
*/
package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/taibuivan/comicvault/internal/core/comic"
	"github.com/taibuivan/comicvault/internal/platform/apperr"
	"github.com/taibuivan/comicvault/internal/platform/config"
	"github.com/taibuivan/comicvault/internal/platform/constants"
	"github.com/taibuivan/comicvault/internal/platform/database"
	"github.com/taibuivan/comicvault/internal/platform/validate"
)

// fieldGenre names the batch genre in validation errors.
const fieldGenre = "genre"

// Item is one scraped comic as written by the scraper.
type Item struct {
	Name     string   `json:"name"`
	Link     string   `json:"link"`
	Image    *string  `json:"image,omitempty"`
	Chapters int      `json:"chapters"`
	Rating   *float64 `json:"rating"`
}

// Report tallies what a batch did.
type Report struct {
	Genre     string `json:"genre"`
	Inserted  int    `json:"inserted"`
	Merged    int    `json:"merged"`
	Unchanged int    `json:"unchanged"`
	Skipped   int    `json:"skipped"`
}

// Changed reports whether the batch wrote anything.
func (report Report) Changed() bool {
	return report.Inserted+report.Merged > 0
}

// Invalidator retires cached query pages after a committed batch.
type Invalidator interface {
	Invalidate(context context.Context) error
}

// EventPublisher announces committed batches.
type EventPublisher interface {
	Publish(context context.Context, subject string, payload any)
}

// Beginner opens the batch transaction. *database.Handle satisfies it.
type Beginner interface {
	InTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// Importer applies batches to the comic store.
type Importer struct {
	db     Beginner
	store  comic.Store
	cache  Invalidator
	events EventPublisher
	logger *slog.Logger
}

// NewImporter constructs an [Importer]. cache and events may be nil.
func NewImporter(db Beginner, store comic.Store, cache Invalidator, events EventPublisher, logger *slog.Logger) *Importer {
	return &Importer{
		db:     db,
		store:  store,
		cache:  cache,
		events: events,
		logger: logger,
	}
}

// NewDefaultImporter wires an importer to the shared handle.
func NewDefaultImporter(handle *database.Handle, cache Invalidator, events EventPublisher, logger *slog.Logger) *Importer {
	return NewImporter(handle, comic.NewStore(handle), cache, events, logger)
}

/*
ImportBatch upserts every item under genre in one transaction.

Description: Items without a name or link are counted as skipped and do not
abort the batch. Any store error rolls the whole batch back. The query cache
is invalidated and an event is published only after the commit.

Parameters:
  - context: context.Context
  - genre: string (one of comic.AllowedGenres)
  - items: []Item

Returns:
  - Report: Tallies of the committed batch
  - error: InvalidArgument for an unknown genre, store errors otherwise
*/
func (importer *Importer) ImportBatch(context context.Context, genre string, items []Item) (Report, error) {
	if err := (&validate.Validator{}).OneOf(fieldGenre, genre, comic.AllowedGenres...).Err(); err != nil {
		return Report{}, err
	}

	report := Report{Genre: genre}
	err := importer.db.InTx(context, func(tx *sql.Tx) error {
		store := importer.store.WithTx(tx)
		for _, item := range items {
			outcome, err := store.UpsertByLink(context, item.record(genre))
			if err != nil {
				return err
			}
			report.tally(outcome)
		}
		return nil
	})
	if err != nil {
		importer.logger.ErrorContext(context, "import_batch_rolled_back",
			slog.String("genre", genre),
			slog.Int("items", len(items)),
			slog.Any("error", err),
		)
		return Report{}, err
	}

	if report.Changed() && importer.cache != nil {
		if err := importer.cache.Invalidate(context); err != nil {
			importer.logger.WarnContext(context, "query_cache_invalidate_failed", slog.Any("error", err))
		}
	}
	if importer.events != nil {
		importer.events.Publish(context, constants.SubjectImportCompleted, report)
	}

	importer.logger.InfoContext(context, "import_batch_committed",
		slog.String("genre", genre),
		slog.Int("inserted", report.Inserted),
		slog.Int("merged", report.Merged),
		slog.Int("unchanged", report.Unchanged),
		slog.Int("skipped", report.Skipped),
	)
	return report, nil
}

// ImportFile decodes a JSON array of items from path and imports it.
func (importer *Importer) ImportFile(context context.Context, path, genre string) (Report, error) {
	items, err := ReadItems(path)
	if err != nil {
		return Report{}, err
	}
	return importer.ImportBatch(context, genre, items)
}

// ImportManifest imports every batch of the manifest in order. A failed
// batch is logged and the remaining batches still run; the failures are
// returned together.
func (importer *Importer) ImportManifest(context context.Context, manifest *config.Manifest) ([]Report, error) {
	reports := make([]Report, 0, len(manifest.Batches))
	var errs []error

	for _, batch := range manifest.Batches {
		report, err := importer.ImportFile(context, batch.File, batch.Genre)
		if err != nil {
			errs = append(errs, fmt.Errorf("ingest: batch %s (%s): %w", batch.Genre, batch.File, err))
			continue
		}
		reports = append(reports, report)
	}

	return reports, errors.Join(errs...)
}

// ReadItems loads a scraped JSON array.
func ReadItems(path string) ([]Item, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: read %s: %w", path, err)
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, apperr.InvalidArgument(fmt.Sprintf("File %s is not a JSON array of comics", path))
	}
	return items, nil
}

func (item Item) record(genre string) comic.Record {
	record := comic.Record{
		Title:        item.Name,
		Link:         item.Link,
		ImageURL:     item.Image,
		ChapterCount: item.Chapters,
		Rating:       item.Rating,
		Genre:        genre,
	}
	// The scraper writes 0 when a card shows no score.
	if record.Rating != nil && *record.Rating == 0 {
		record.Rating = nil
	}
	return record
}

func (report *Report) tally(outcome comic.Outcome) {
	switch outcome {
	case comic.OutcomeInserted:
		report.Inserted++
	case comic.OutcomeGenreMerged:
		report.Merged++
	case comic.OutcomeUnchanged:
		report.Unchanged++
	default:
		report.Skipped++
	}
}
