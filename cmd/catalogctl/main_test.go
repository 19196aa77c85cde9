// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicvault/internal/platform/config"
	"github.com/taibuivan/comicvault/internal/platform/constants"
	"github.com/taibuivan/comicvault/internal/platform/database/dbtest"
	"github.com/taibuivan/comicvault/internal/platform/sec"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		DatabaseDriver: config.DriverSQLite,
		DatabaseURL:    filepath.Join(t.TempDir(), "ctl.db"),
		AdminJWTSecret: "ctl-secret",
	}
}

/*
TestRun_MigrateCycle applies, inspects and rolls back the schema.
*/
func TestRun_MigrateCycle(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, run(ctx, cfg, dbtest.Logger(), &out, "migrate", nil))
	require.NoError(t, run(ctx, cfg, dbtest.Logger(), &out, "migrate-version", nil))
	assert.NotContains(t, out.String(), "version=0 ")
	assert.Contains(t, out.String(), "dirty=false")

	require.NoError(t, run(ctx, cfg, dbtest.Logger(), &out, "migrate-vocab", nil))
	assert.Contains(t, out.String(), "rows changed: 0")

	require.NoError(t, run(ctx, cfg, dbtest.Logger(), &out, "migrate-down", []string{"-steps", "1"}))
}

/*
TestRun_Token mints a token the API accepts.
*/
func TestRun_Token(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), cfg, dbtest.Logger(), &out, "token", []string{"-role", "viewer", "-subject", "dash"}))

	tokens, err := sec.NewTokenService(cfg.AdminJWTSecret, constants.AuthIssuer)
	require.NoError(t, err)
	claims, err := tokens.VerifyToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, string(sec.RoleViewer), claims.Role)
	assert.Equal(t, "dash", claims.Subject)
}

/*
TestRun_Rejects covers bad roles, a missing secret and unknown commands.
*/
func TestRun_Rejects(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	var out bytes.Buffer

	assert.Error(t, run(ctx, cfg, dbtest.Logger(), &out, "token", []string{"-role", "root"}))
	assert.Error(t, run(ctx, cfg, dbtest.Logger(), &out, "frobnicate", nil))

	cfg.AdminJWTSecret = ""
	assert.Error(t, run(ctx, cfg, dbtest.Logger(), &out, "token", nil))
}
