// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command catalogctl runs catalogue maintenance tasks.
//
// # Subcommands
//
//	catalogctl migrate                        apply pending schema migrations
//	catalogctl migrate-down [-steps 1]        roll back schema migrations
//	catalogctl migrate-version                print the applied schema version
//	catalogctl migrate-vocab                  rewrite legacy reading statuses
//	catalogctl token [-role admin] [-subject ops] [-ttl 1h]
//
// Database settings come from the same environment as the API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/comicvault/internal/core/reading"
	"github.com/taibuivan/comicvault/internal/platform/config"
	"github.com/taibuivan/comicvault/internal/platform/constants"
	"github.com/taibuivan/comicvault/internal/platform/database"
	"github.com/taibuivan/comicvault/internal/platform/logger"
	"github.com/taibuivan/comicvault/internal/platform/migration"
	"github.com/taibuivan/comicvault/internal/platform/sec"
)

const usage = `usage: catalogctl <command> [flags]

commands:
  migrate          apply pending schema migrations
  migrate-down     roll back schema migrations (-steps n)
  migrate-version  print the applied schema version
  migrate-vocab    rewrite legacy reading statuses
  token            mint an operator token (-role, -subject, -ttl)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, logCloser := logger.New(logger.Options{
		App:       constants.AppName + "-ctl",
		Debug:     cfg.Debug,
		File:      cfg.LogFile,
		MaxSizeMB: cfg.LogMaxSizeMB,
		Stdout:    os.Stderr,
	})
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg, log, os.Stdout, os.Args[1], os.Args[2:]); err != nil {
		log.Error("command_failed", slog.String("command", os.Args[1]), slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, stdout io.Writer, command string, args []string) error {
	target := migration.Target{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseURL, Path: cfg.MigrationPath}

	switch command {
	case "migrate":
		return migration.RunUp(target, log)

	case "migrate-down":
		flags := flag.NewFlagSet(command, flag.ExitOnError)
		steps := flags.Int("steps", 1, "number of migrations to roll back")
		_ = flags.Parse(args)
		if *steps < 1 {
			return fmt.Errorf("catalogctl: -steps must be at least 1")
		}
		return migration.Steps(target, -*steps, log)

	case "migrate-version":
		version, dirty, err := migration.Version(target, log)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "version=%d dirty=%t\n", version, dirty)
		return nil

	case "migrate-vocab":
		if err := migration.RunUp(target, log); err != nil {
			return err
		}
		handle, err := database.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		defer handle.Close()

		changed, err := reading.NewService(reading.NewStore(handle), nil, nil, log).MigrateVocabulary(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "rows changed: %d\n", changed)
		return nil

	case "token":
		flags := flag.NewFlagSet(command, flag.ExitOnError)
		role := flags.String("role", string(sec.RoleAdmin), "admin or viewer")
		subject := flags.String("subject", "operator", "token subject")
		ttl := flags.Duration("ttl", constants.DefaultAdminTokenTTL, "token lifetime")
		_ = flags.Parse(args)

		if !sec.UserRole(*role).Valid() {
			return fmt.Errorf("catalogctl: unknown role %q", *role)
		}
		if !cfg.AdminEnabled() {
			return fmt.Errorf("catalogctl: ADMIN_JWT_SECRET is not set")
		}

		tokens, err := sec.NewTokenService(cfg.AdminJWTSecret, constants.AuthIssuer)
		if err != nil {
			return err
		}
		token, err := tokens.GenerateToken(*subject, sec.UserRole(*role), *ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, token)
		return nil
	}

	return fmt.Errorf("catalogctl: unknown command %q\n%s", command, usage)
}
