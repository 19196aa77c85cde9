// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicvault/internal/core/comic"
	"github.com/taibuivan/comicvault/internal/ingest"
	"github.com/taibuivan/comicvault/internal/platform/apperr"
	"github.com/taibuivan/comicvault/internal/platform/config"
	"github.com/taibuivan/comicvault/internal/platform/constants"
	"github.com/taibuivan/comicvault/internal/platform/database"
	"github.com/taibuivan/comicvault/internal/platform/database/dbtest"
)

type recordingCache struct{ invalidations int }

func (c *recordingCache) Invalidate(context.Context) error {
	c.invalidations++
	return nil
}

type recordingEvents struct{ payloads []any }

func (e *recordingEvents) Publish(_ context.Context, subject string, payload any) {
	if subject == constants.SubjectImportCompleted {
		e.payloads = append(e.payloads, payload)
	}
}

func listAll(t *testing.T, handle *database.Handle) []comic.Listing {
	t.Helper()
	items, _, err := comic.NewStore(handle).List(context.Background(), nil, comic.SortTitle, 100, 0)
	require.NoError(t, err)
	return items
}

/*
TestImporter_ImportBatch_Idempotent leaves one row tagged once after a repeat.
*/
func TestImporter_ImportBatch_Idempotent(t *testing.T) {
	handle := dbtest.Open(t)
	cache := &recordingCache{}
	events := &recordingEvents{}
	importer := ingest.NewDefaultImporter(handle, cache, events, dbtest.Logger())
	items := []ingest.Item{{Name: "Solo Leveling", Link: "https://example.com/solo-leveling", Chapters: 200}}

	first, err := importer.ImportBatch(context.Background(), "action", items)
	require.NoError(t, err)
	assert.Equal(t, ingest.Report{Genre: "action", Inserted: 1}, first)

	second, err := importer.ImportBatch(context.Background(), "action", items)
	require.NoError(t, err)
	assert.Equal(t, ingest.Report{Genre: "action", Unchanged: 1}, second)

	all := listAll(t, handle)
	require.Len(t, all, 1)
	assert.Equal(t, "action", all[0].Genres.String())

	assert.Equal(t, 1, cache.invalidations)
	assert.Len(t, events.payloads, 2)
}

/*
TestImporter_ImportBatch_GenreUnion merges a second genre into the same row.
*/
func TestImporter_ImportBatch_GenreUnion(t *testing.T) {
	handle := dbtest.Open(t)
	importer := ingest.NewDefaultImporter(handle, nil, nil, dbtest.Logger())
	rating := 4.9
	items := []ingest.Item{
		{Name: "Solo Leveling", Link: "https://example.com/solo-leveling", Chapters: 200, Rating: &rating},
		{Name: "", Link: "https://example.com/nameless"},
		{Name: "Linkless"},
	}

	report, err := importer.ImportBatch(context.Background(), "action", items)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 2, report.Skipped)

	report, err = importer.ImportBatch(context.Background(), "fantasy", items[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, report.Merged)

	all := listAll(t, handle)
	require.Len(t, all, 1)
	assert.Equal(t, comic.GenreSet{"action", "fantasy"}, all[0].Genres)
	assert.Equal(t, rating, *all[0].Rating)
}

/*
TestImporter_ImportBatch_UnknownGenre rejects the batch before any write.
*/
func TestImporter_ImportBatch_UnknownGenre(t *testing.T) {
	handle := dbtest.Open(t)
	importer := ingest.NewDefaultImporter(handle, nil, nil, dbtest.Logger())

	_, err := importer.ImportBatch(context.Background(), "romance", []ingest.Item{{Name: "X", Link: "https://example.com/x"}})

	assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))
	assert.Empty(t, listAll(t, handle))
}

// failingStore fails the n-th upsert of a transaction.
type failingStore struct {
	comic.Store
	failAt int
	calls  int
}

func (s *failingStore) WithTx(tx *sql.Tx) comic.Store {
	return &failingStore{Store: s.Store.WithTx(tx), failAt: s.failAt}
}

func (s *failingStore) UpsertByLink(ctx context.Context, record comic.Record) (comic.Outcome, error) {
	s.calls++
	if s.calls == s.failAt {
		return "", errors.New("disk I/O error")
	}
	return s.Store.UpsertByLink(ctx, record)
}

/*
TestImporter_ImportBatch_RollsBack keeps nothing from a failed batch.
*/
func TestImporter_ImportBatch_RollsBack(t *testing.T) {
	handle := dbtest.Open(t)
	cache := &recordingCache{}
	store := &failingStore{Store: comic.NewStore(handle), failAt: 2}
	importer := ingest.NewImporter(handle, store, cache, nil, dbtest.Logger())

	_, err := importer.ImportBatch(context.Background(), "magic", []ingest.Item{
		{Name: "First", Link: "https://example.com/1"},
		{Name: "Second", Link: "https://example.com/2"},
	})

	require.Error(t, err)
	assert.Empty(t, listAll(t, handle))
	assert.Zero(t, cache.invalidations)
}

/*
TestImporter_ImportManifest runs every batch and reports the broken ones.
*/
func TestImporter_ImportManifest(t *testing.T) {
	handle := dbtest.Open(t)
	importer := ingest.NewDefaultImporter(handle, nil, nil, dbtest.Logger())
	dir := t.TempDir()

	actionFile := filepath.Join(dir, "action.json")
	require.NoError(t, os.WriteFile(actionFile, []byte(`[
		{"name": "Solo Leveling", "link": "https://example.com/solo", "chapters": 200, "rating": 4.8, "image": "data:image/png;base64,AA=="},
		{"name": "Tower of God", "link": "https://example.com/tog", "chapters": 600, "rating": null}
	]`), 0o600))

	fantasyFile := filepath.Join(dir, "fantasy.json")
	require.NoError(t, os.WriteFile(fantasyFile, []byte(`[{"name": "Solo Leveling", "link": "https://example.com/solo"}]`), 0o600))

	brokenFile := filepath.Join(dir, "magic.json")
	require.NoError(t, os.WriteFile(brokenFile, []byte(`{"not": "an array"}`), 0o600))

	manifest := &config.Manifest{Batches: []config.Batch{
		{Genre: "action", File: actionFile},
		{Genre: "magic", File: brokenFile},
		{Genre: "fantasy", File: fantasyFile},
		{Genre: "isekai", File: filepath.Join(dir, "missing.json")},
	}}

	reports, err := importer.ImportManifest(context.Background(), manifest)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "magic")
	assert.Contains(t, err.Error(), "isekai")
	require.Len(t, reports, 2)
	assert.Equal(t, 2, reports[0].Inserted)
	assert.Equal(t, 1, reports[1].Merged)

	all := listAll(t, handle)
	require.Len(t, all, 2)
	assert.Equal(t, "Solo Leveling", all[1].Title)
	assert.Equal(t, comic.GenreSet{"action", "fantasy"}, all[1].Genres)
	require.NotNil(t, all[1].ImageURL)
	assert.Equal(t, "data:image/png;base64,AA==", *all[1].ImageURL)
}
