// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command scraper walks a genre listing and appends new comics to a JSON file.
//
// # Usage
//
//	scraper -genre isekai                     # url and file from ./catalog.yaml
//	scraper -url https://example.com/manga-genre/isekai/ -out data/isekai.json
//
// Re-running resumes: comics already in the output file are not fetched again.
// SIGINT stops after the current comic and keeps everything gathered so far.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/comicvault/internal/platform/config"
	"github.com/taibuivan/comicvault/internal/platform/constants"
	"github.com/taibuivan/comicvault/internal/platform/logger"
	"github.com/taibuivan/comicvault/internal/scrape"
)

func main() {
	manifestPath := flag.String("manifest", "catalog.yaml", "YAML manifest used to resolve -genre")
	genre := flag.String("genre", "", "scrape the manifest batch for this genre")
	startURL := flag.String("url", "", "first listing page")
	out := flag.String("out", "", "output JSON file")
	maxPages := flag.Int("max-pages", 0, "stop after this many listing pages (0 = no limit)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, logCloser := logger.New(logger.Options{
		App:       constants.AppName + "-scraper",
		Debug:     cfg.Debug,
		File:      cfg.LogFile,
		MaxSizeMB: cfg.LogMaxSizeMB,
	})
	defer logCloser.Close()

	if *genre != "" {
		manifest, err := config.LoadManifest(*manifestPath)
		if err != nil {
			log.Error("manifest_load_failed", slog.Any("error", err))
			os.Exit(1)
		}
		batch, ok := manifest.Find(*genre)
		if !ok || batch.URL == "" {
			log.Error("genre_not_in_manifest", slog.String("genre", *genre))
			os.Exit(1)
		}
		if *startURL == "" {
			*startURL = batch.URL
		}
		if *out == "" {
			*out = batch.File
		}
	}

	if *startURL == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "scraper: need -genre, or both -url and -out")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	output, err := scrape.OpenOutput(*out)
	if err != nil {
		log.Error("output_open_failed", slog.Any("error", err))
		os.Exit(1)
	}

	scraper := scrape.New(scrape.Options{
		UserAgent: cfg.ScrapeUserAgent,
		RPS:       cfg.ScrapeRPS,
		MaxPages:  *maxPages,
	}, log)

	_, err = scraper.Run(ctx, *startURL, output)

	var statusErr *scrape.StatusError
	switch {
	case err == nil:
	case errors.As(err, &statusErr):
		// The site answers 4xx past the last listing page.
		log.Info("scrape_stopped_by_site", slog.String("url", statusErr.URL), slog.Int("status", statusErr.Code))
	case errors.Is(err, context.Canceled):
		log.Warn("scrape_interrupted", slog.String("out", *out))
	default:
		log.Error("scrape_failed", slog.Any("error", err))
		os.Exit(1)
	}
}
