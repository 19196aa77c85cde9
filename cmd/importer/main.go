// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command importer loads scraped genre files into the catalogue.
//
// # Usage
//
//	importer                                  # every batch of ./catalog.yaml
//	importer -manifest data/catalog.yaml
//	importer -file data/isekai.json -genre isekai
//
// Each batch commits in its own transaction. A broken batch is reported and
// the rest still import; the exit code is 1 if any batch failed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/comicvault/internal/ingest"
	"github.com/taibuivan/comicvault/internal/platform/config"
	"github.com/taibuivan/comicvault/internal/platform/constants"
	"github.com/taibuivan/comicvault/internal/platform/database"
	"github.com/taibuivan/comicvault/internal/platform/events"
	"github.com/taibuivan/comicvault/internal/platform/logger"
	"github.com/taibuivan/comicvault/internal/platform/migration"
	redisstore "github.com/taibuivan/comicvault/internal/platform/redis"
)

func main() {
	manifestPath := flag.String("manifest", "catalog.yaml", "YAML manifest listing genre batches")
	file := flag.String("file", "", "import a single JSON file instead of the manifest")
	genre := flag.String("genre", "", "genre of -file")
	flag.Parse()

	if (*file == "") != (*genre == "") {
		fmt.Fprintln(os.Stderr, "importer: -file and -genre must be given together")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, logCloser := logger.New(logger.Options{
		App:       constants.AppName + "-importer",
		Debug:     cfg.Debug,
		File:      cfg.LogFile,
		MaxSizeMB: cfg.LogMaxSizeMB,
	})
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg, log, *manifestPath, *file, *genre); err != nil {
		log.Error("import_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, manifestPath, file, genre string) error {
	target := migration.Target{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseURL, Path: cfg.MigrationPath}
	if err := migration.RunUp(target, log); err != nil {
		return err
	}

	handle, err := database.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer handle.Close()

	// A running API keeps serving cached pages unless the import bumps the
	// shared generation.
	var cache ingest.Invalidator
	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			return err
		}
		defer rdb.Close()
		cache = redisstore.NewPageCache(rdb, cfg.QueryCacheTTL)
	}

	publisher := events.NewPublisher(nil, log)
	if cfg.NATSURL != "" {
		nc, err := events.Connect(events.Options{URL: cfg.NATSURL})
		if err != nil {
			return err
		}
		publisher = events.NewPublisher(nc, log)
	}
	defer publisher.Close()

	importer := ingest.NewDefaultImporter(handle, cache, publisher, log)

	if file != "" {
		report, err := importer.ImportFile(ctx, file, genre)
		if err != nil {
			return err
		}
		printReports([]ingest.Report{report})
		return nil
	}

	manifest, err := config.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	reports, err := importer.ImportManifest(ctx, manifest)
	printReports(reports)
	return err
}

func printReports(reports []ingest.Report) {
	fmt.Printf("%-14s %9s %7s %10s %8s\n", "GENRE", "INSERTED", "MERGED", "UNCHANGED", "SKIPPED")
	for _, report := range reports {
		fmt.Printf("%-14s %9d %7d %10d %8d\n", report.Genre, report.Inserted, report.Merged, report.Unchanged, report.Skipped)
	}
}
