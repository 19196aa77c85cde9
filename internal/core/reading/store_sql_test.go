// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reading_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicvault/internal/core/reading"
	"github.com/taibuivan/comicvault/internal/platform/apperr"
	"github.com/taibuivan/comicvault/internal/platform/database"
	"github.com/taibuivan/comicvault/internal/platform/database/dbtest"
	"github.com/taibuivan/comicvault/internal/platform/migration"
	"github.com/taibuivan/comicvault/pkg/pointer"
)

func seedComic(t *testing.T, handle *database.Handle, title, link string) int64 {
	t.Helper()
	var id int64
	err := handle.DB.QueryRowContext(context.Background(),
		"INSERT INTO comics (title, link, genre) VALUES (?, ?, ?) RETURNING id", title, link, "action",
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func countStatusRows(t *testing.T, handle *database.Handle) int {
	t.Helper()
	var n int
	require.NoError(t, handle.DB.QueryRow("SELECT COUNT(*) FROM reading_status").Scan(&n))
	return n
}

type statusRow struct {
	Status     sql.NullString
	Chapter    sql.NullInt64
	ChapterURL sql.NullString
	UpdatedAt  database.NullTime
}

func loadStatus(t *testing.T, handle *database.Handle, comicID int64) statusRow {
	t.Helper()
	var row statusRow
	err := handle.DB.QueryRow(
		"SELECT status, last_read_chapter, current_chapter_url, updated_at FROM reading_status WHERE comic_id = ?", comicID,
	).Scan(&row.Status, &row.Chapter, &row.ChapterURL, &row.UpdatedAt)
	require.NoError(t, err)
	return row
}

/*
TestStore_SetStatus_UnknownComic returns NotFound and writes nothing.
*/
func TestStore_SetStatus_UnknownComic(t *testing.T) {
	handle := dbtest.Open(t)
	store := reading.NewStore(handle)

	err := store.SetStatus(context.Background(), reading.Update{ComicID: 999, Status: reading.StatusOngoing})

	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
	assert.Equal(t, 0, countStatusRows(t, handle))
}

/*
TestStore_SetStatus_Overwrites keeps exactly one row per comic.
*/
func TestStore_SetStatus_Overwrites(t *testing.T) {
	handle := dbtest.Open(t)
	store := reading.NewStore(handle)
	ctx := context.Background()
	id := seedComic(t, handle, "Solo Leveling", "https://example.com/solo-leveling")

	chapter := 12
	require.NoError(t, store.SetStatus(ctx, reading.Update{
		ComicID:  id,
		Status:   reading.StatusOngoing,
		Progress: reading.Progress{LastReadChapter: &chapter},
	}))

	url := "https://example.com/solo-leveling/chapter-40"
	require.NoError(t, store.SetStatus(ctx, reading.Update{
		ComicID:  id,
		Status:   reading.StatusCompleted,
		Progress: reading.Progress{CurrentChapterURL: &url},
	}))

	assert.Equal(t, 1, countStatusRows(t, handle))

	row := loadStatus(t, handle, id)
	assert.Equal(t, "completed", row.Status.String)
	assert.False(t, row.Chapter.Valid)
	assert.Equal(t, url, row.ChapterURL.String)
	assert.True(t, row.UpdatedAt.Valid)
}

/*
TestStore_SetStatus_LinkGuard only writes when the link matches.
*/
func TestStore_SetStatus_LinkGuard(t *testing.T) {
	handle := dbtest.Open(t)
	store := reading.NewStore(handle)
	ctx := context.Background()
	id := seedComic(t, handle, "Tower of God", "https://example.com/tog")

	err := store.SetStatus(ctx, reading.Update{ComicID: id, Status: reading.StatusOngoing, Link: "https://example.com/other"})
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
	assert.Equal(t, 0, countStatusRows(t, handle))

	require.NoError(t, store.SetStatus(ctx, reading.Update{ComicID: id, Status: reading.StatusOngoing, Link: "https://example.com/tog"}))
	assert.Equal(t, 1, countStatusRows(t, handle))

	exists, err := store.ComicExists(ctx, id)
	require.NoError(t, err)
	assert.True(t, exists)
}

/*
TestStore_MigrateVocabulary upgrades a version-1 database and is idempotent.
*/
func TestStore_MigrateVocabulary(t *testing.T) {
	handle, target := dbtest.OpenAtVersion(t, 1)
	ctx := context.Background()

	legacy := map[string]any{
		"https://example.com/a": "completed",
		"https://example.com/b": "incomplete",
		"https://example.com/c": "future",
		"https://example.com/d": "ignore",
		"https://example.com/e": nil,
	}
	ids := make(map[string]int64, len(legacy))
	for link, status := range legacy {
		id := seedComic(t, handle, "Comic "+link, link)
		ids[link] = id
		_, err := handle.DB.Exec(
			"INSERT INTO reading_status (comic_id, status, last_read_chapter, updated_at) VALUES (?, ?, ?, '2020-01-02 03:04:05')",
			id, status, 3,
		)
		require.NoError(t, err)
	}

	require.NoError(t, migration.Steps(target, 1, dbtest.Logger()))

	store := reading.NewStore(handle)

	changed, err := store.MigrateVocabulary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), changed)

	want := map[string]string{
		"https://example.com/a": "completed",
		"https://example.com/b": "ongoing",
		"https://example.com/c": "ongoing",
		"https://example.com/d": "abandoned",
		"https://example.com/e": "unread",
	}
	for link, status := range want {
		row := loadStatus(t, handle, ids[link])
		assert.Equal(t, status, row.Status.String, link)
		assert.Equal(t, int64(3), row.Chapter.Int64, link)
		assert.Equal(t, 2020, row.UpdatedAt.Time.Year(), link)
	}

	changed, err = store.MigrateVocabulary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), changed)
}

/*
TestStore_StatusVocabularyConstraint migrates legacy rows straight to the
latest schema. Every row ends up where [reading.MapLegacy] puts it, and the
table refuses values outside the current vocabulary from then on.
*/
func TestStore_StatusVocabularyConstraint(t *testing.T) {
	handle, target := dbtest.OpenAtVersion(t, 1)
	ctx := context.Background()

	legacy := []*string{pointer.To("completed"), pointer.To("incomplete"), pointer.To("future"), pointer.To("ignore"), nil}
	ids := make([]int64, len(legacy))
	for i, status := range legacy {
		link := fmt.Sprintf("https://example.com/%d", i)
		ids[i] = seedComic(t, handle, "Comic "+link, link)
		_, err := handle.DB.Exec(
			"INSERT INTO reading_status (comic_id, status, last_read_chapter) VALUES (?, ?, ?)",
			ids[i], pointer.Arg(status), 3,
		)
		require.NoError(t, err)
	}

	require.NoError(t, migration.RunUp(target, dbtest.Logger()))

	for i, status := range legacy {
		row := loadStatus(t, handle, ids[i])
		assert.Equal(t, string(reading.MapLegacy(status)), row.Status.String, pointer.Val(status))
		assert.Equal(t, int64(3), row.Chapter.Int64)
	}

	changed, err := reading.NewStore(handle).MigrateVocabulary(ctx)
	require.NoError(t, err)
	assert.Zero(t, changed)

	for _, status := range []string{"future", "reading", ""} {
		_, err := handle.DB.ExecContext(ctx, "UPDATE reading_status SET status = ? WHERE comic_id = ?", status, ids[0])
		assert.Error(t, err, status)
	}
}
