// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the comicvault HTTP API server.
//
// # Startup Sequence
//
//  1. Load configuration from environment variables.
//  2. Initialize structured logger.
//  3. Open the relational store (PostgreSQL or SQLite).
//  4. Run database migrations (idempotent), then the status vocabulary fix-up.
//  5. Connect the optional page cache (Redis) and event bus (NATS).
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/comicvault/internal/api"
	"github.com/taibuivan/comicvault/internal/core/comic"
	"github.com/taibuivan/comicvault/internal/core/reading"
	"github.com/taibuivan/comicvault/internal/ingest"
	"github.com/taibuivan/comicvault/internal/platform/config"
	"github.com/taibuivan/comicvault/internal/platform/constants"
	"github.com/taibuivan/comicvault/internal/platform/database"
	"github.com/taibuivan/comicvault/internal/platform/events"
	"github.com/taibuivan/comicvault/internal/platform/logger"
	"github.com/taibuivan/comicvault/internal/platform/middleware"
	"github.com/taibuivan/comicvault/internal/platform/migration"
	redisstore "github.com/taibuivan/comicvault/internal/platform/redis"
	"github.com/taibuivan/comicvault/internal/platform/sec"
)

func main() {
	// ── 1. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// ── 2. Logger ─────────────────────────────────────────────────────────
	log, logCloser := logger.New(logger.Options{
		App:       constants.AppName,
		Debug:     cfg.Debug,
		File:      cfg.LogFile,
		MaxSizeMB: cfg.LogMaxSizeMB,
	})
	defer logCloser.Close()
	slog.SetDefault(log)

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("database_driver", cfg.DatabaseDriver),
	)

	// Root context lives until SIGINT/SIGTERM.
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Startup gets its own deadline so misconfiguration fails fast.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. Relational store ───────────────────────────────────────────────
	handle, err := database.Open(startupCtx, cfg.DatabaseDriver, cfg.DatabaseURL, log)
	must(log, err, "open database")
	defer func() {
		log.Info("closing database")
		handle.Close()
	}()

	// ── 4. Migrations ─────────────────────────────────────────────────────
	target := migration.Target{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseURL, Path: cfg.MigrationPath}
	must(log, migration.RunUp(target, log), "run migrations")

	// ── 5. Optional cache and events ──────────────────────────────────────
	deps := api.HealthDependencies{CheckDatabase: handle.Ping}

	var (
		pageCache   comic.PageCache
		invalidator reading.Invalidator
		importCache ingest.Invalidator
	)
	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()

		cache := redisstore.NewPageCache(rdb, cfg.QueryCacheTTL)
		pageCache, invalidator, importCache = cache, cache, cache
		deps.CheckCache = func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }
	}

	publisher := events.NewPublisher(nil, log)
	if cfg.NATSURL != "" {
		nc, err := events.Connect(events.Options{URL: cfg.NATSURL})
		must(log, err, "connect to nats")
		publisher = events.NewPublisher(nc, log)
		deps.CheckEvents = func(context.Context) error { return publisher.Ping() }
	}
	defer publisher.Close()

	// ── 6. Domain wiring ──────────────────────────────────────────────────
	readingService := reading.NewService(reading.NewStore(handle), invalidator, publisher, log)

	migrated, err := readingService.MigrateVocabulary(startupCtx)
	must(log, err, "migrate status vocabulary")
	log.Info("status_vocabulary_checked", slog.Int64("rows_changed", migrated))

	comicService := comic.NewService(comic.NewStore(handle), pageCache, log)
	_, err = comicService.IndexTitles(startupCtx)
	must(log, err, "index comic titles")

	liveness, readiness := api.NewHealthHandlers(deps, log)
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Comic:     comic.NewHandler(comicService),
		Reading:   reading.NewHandler(readingService),
	}

	var verifier middleware.TokenVerifier
	if cfg.AdminEnabled() {
		tokens, err := sec.NewTokenService(cfg.AdminJWTSecret, constants.AuthIssuer)
		must(log, err, "initialize token service")
		verifier = tokens
		handlers.Import = ingest.NewHandler(ingest.NewDefaultImporter(handle, importCache, publisher, log))
		log.Info("admin_routes_enabled")
	}

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(rootCtx, cfg, log, verifier, handlers)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case <-rootCtx.Done():
		log.Info("shutdown_signal_received")
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
