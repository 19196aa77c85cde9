// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicvault/internal/platform/logger"
)

/*
TestNew_Stdout writes JSON with the app attribute and honours the level.
*/
func TestNew_Stdout(t *testing.T) {
	var buf bytes.Buffer
	log, closer := logger.New(logger.Options{App: "comicvault", Stdout: &buf})
	defer closer.Close()

	log.Debug("hidden")
	log.Info("comic_upserted", "id", 7)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &record))
	assert.Equal(t, "comicvault", record["app"])
	assert.Equal(t, "comic_upserted", record["msg"])
}

/*
TestNew_File mirrors records into the rotated file.
*/
func TestNew_File(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "api.log")

	log, closer := logger.New(logger.Options{App: "comicvault", Debug: true, File: path, Stdout: &buf})
	log.Debug("debug_enabled")
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "debug_enabled")
	assert.Contains(t, buf.String(), "debug_enabled")
}
