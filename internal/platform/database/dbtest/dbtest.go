// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dbtest opens throwaway, fully migrated SQLite databases for tests.
package dbtest

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicvault/internal/platform/config"
	"github.com/taibuivan/comicvault/internal/platform/database"
	"github.com/taibuivan/comicvault/internal/platform/migration"
)

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Open returns a handle on a new database file in t.TempDir() with every
// migration applied. The handle is closed when the test ends.
func Open(t testing.TB) *database.Handle {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.db")
	target := migration.Target{Driver: config.DriverSQLite, DSN: path}
	require.NoError(t, migration.RunUp(target, Logger()))

	handle, err := database.Open(context.Background(), config.DriverSQLite, path, Logger())
	require.NoError(t, err)
	t.Cleanup(handle.Close)

	return handle
}

// OpenAtVersion is like [Open] but stops at the given schema version, so a
// test can seed rows in an older layout before migrating further.
func OpenAtVersion(t testing.TB, version int) (*database.Handle, migration.Target) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.db")
	target := migration.Target{Driver: config.DriverSQLite, DSN: path}
	require.NoError(t, migration.Steps(target, version, Logger()))

	handle, err := database.Open(context.Background(), config.DriverSQLite, path, Logger())
	require.NoError(t, err)
	t.Cleanup(handle.Close)

	return handle, target
}
