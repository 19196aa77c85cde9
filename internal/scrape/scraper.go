// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package scrape walks a comic site's genre listing and records every comic it
finds.

Each listing page yields cards (title, link, rating, chapter count, cover).
Covers are downloaded and inlined as data URIs so the result file is
self-contained. The walk follows the "Next Page" link until there is none,
a page answers with an error status, or the context is cancelled; in every
case the entries collected so far are written out.

All requests share one rate limiter and one circuit breaker.
*/
package scrape

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/taibuivan/comicvault/internal/ingest"
)

// maxPageBytes caps one listing page.
const maxPageBytes = 8 << 20

// Options tunes the scraper. Zero fields take defaults.
type Options struct {
	UserAgent string
	// RPS is the sustained request rate across pages and covers.
	RPS   float64
	Burst int
	// MaxPages stops the walk after that many pages; 0 means no limit.
	MaxPages int
	// BreakerFailures consecutive failures open the circuit for BreakerTimeout.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	Client          *http.Client
}

func (opts Options) withDefaults() Options {
	if opts.UserAgent == "" {
		opts.UserAgent = "comicvault-scraper/1.0"
	}
	if opts.RPS <= 0 {
		opts.RPS = 1
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 30 * time.Second}
	}
	return opts
}

// Summary describes one run.
type Summary struct {
	Pages   int
	Found   int
	Added   int
	Total   int
	Covers  int
	LastURL string
}

// Scraper walks listing pages.
type Scraper struct {
	opts   Options
	fetch  *fetcher
	logger *slog.Logger
}

// New constructs a [Scraper].
func New(opts Options, logger *slog.Logger) *Scraper {
	opts = opts.withDefaults()
	return &Scraper{
		opts:   opts,
		fetch:  newFetcher(opts, logger),
		logger: logger,
	}
}

/*
Run walks the listing starting at startURL and records new comics in out.

Description: out is saved after every page and once more on exit, so a
cancelled or failed run keeps everything gathered so far. Comics whose link
is already in out are not fetched again.

Returns:
  - Summary: Counters for the run
  - error: *StatusError when a page answered >= 400, the context error on
    cancellation, or a fetch/parse/save failure
*/
func (scraper *Scraper) Run(ctx context.Context, startURL string, out *Output) (Summary, error) {
	summary := Summary{}

	current, err := url.Parse(startURL)
	if err != nil {
		return summary, err
	}

	walkErr := scraper.walk(ctx, current, out, &summary)

	summary.Total = out.Len()
	if err := out.Save(); err != nil {
		return summary, errors.Join(walkErr, err)
	}

	scraper.logger.Info("scrape_finished",
		slog.Int("pages", summary.Pages),
		slog.Int("found", summary.Found),
		slog.Int("added", summary.Added),
		slog.Int("total", summary.Total),
		slog.String("last_url", summary.LastURL),
	)
	return summary, walkErr
}

func (scraper *Scraper) walk(ctx context.Context, current *url.URL, out *Output, summary *Summary) error {
	for current != nil {
		if scraper.opts.MaxPages > 0 && summary.Pages >= scraper.opts.MaxPages {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		summary.LastURL = current.String()
		scraper.logger.Info("scrape_page", slog.String("url", summary.LastURL))

		page, err := scraper.fetch.get(ctx, summary.LastURL, maxPageBytes)
		if err != nil {
			scraper.logger.Error("scrape_page_failed", slog.String("url", summary.LastURL), slog.Any("error", err))
			return err
		}

		cards, next, err := ParseListing(bytes.NewReader(page.body), current)
		if err != nil {
			return err
		}

		summary.Pages++
		summary.Found += len(cards)
		for _, card := range cards {
			if card.Link != "" && out.Has(card.Link) {
				continue
			}
			item := scraper.toItem(ctx, card, summary)
			if err := ctx.Err(); err != nil {
				// The cover was cut short; leave the card for the next run.
				return err
			}
			if out.Add(item) {
				summary.Added++
			}
		}

		if err := out.Save(); err != nil {
			return err
		}
		current = next
	}
	return nil
}

// toItem converts a card, inlining its cover. A failed cover download is
// logged and the item is kept without an image.
func (scraper *Scraper) toItem(ctx context.Context, card Card, summary *Summary) ingest.Item {
	item := ingest.Item{
		Name:     card.Name,
		Link:     card.Link,
		Chapters: card.Chapters,
		Rating:   card.Rating,
	}
	if card.CoverURL == "" {
		return item
	}

	image, err := scraper.fetch.coverDataURI(ctx, card.CoverURL)
	if err != nil {
		scraper.logger.Warn("scrape_cover_failed",
			slog.String("name", card.Name),
			slog.String("cover_url", card.CoverURL),
			slog.Any("error", err),
		)
		return item
	}

	summary.Covers++
	item.Image = &image
	return item
}
