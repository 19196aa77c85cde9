// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reading

import (
	"context"
	"fmt"
	"strings"

	"github.com/taibuivan/comicvault/internal/platform/apperr"
	"github.com/taibuivan/comicvault/internal/platform/database"
	"github.com/taibuivan/comicvault/internal/platform/database/schema"
	"github.com/taibuivan/comicvault/internal/platform/dberr"
	"github.com/taibuivan/comicvault/pkg/pointer"
	"github.com/taibuivan/comicvault/pkg/query"
)

// sqlStore implements [Store] over database/sql for both dialects.
type sqlStore struct {
	db      database.DBTX
	dialect query.Dialect
}

// NewStore constructs a SQL backed reading status store.
func NewStore(handle *database.Handle) Store {
	return &sqlStore{db: handle.DB, dialect: handle.Dialect}
}

/*
SetStatus upserts the status row of one comic.

Description: The comic's existence is checked inside the same statement
(INSERT ... SELECT FROM comics WHERE id = ?), so a missing comic yields zero
affected rows and never a dangling status row. The CASTs give PostgreSQL a
type for every bare parameter in the SELECT list.

Returns:
  - error: NotFound when nothing matched, Unavailable/Internal on store failure
*/
func (store *sqlStore) SetStatus(context context.Context, update Update) error {
	rs := schema.ReadingStatus
	c := schema.Comics

	builder := query.New(store.dialect)
	builder.Write(fmt.Sprintf(
		"INSERT INTO %s (%s, %s, %s, %s, %s) SELECT c.%s, CAST(? AS TEXT), CAST(? AS INTEGER), CAST(? AS TEXT), CURRENT_TIMESTAMP FROM %s c",
		rs.Table, rs.ComicID, rs.Status, rs.LastReadChapter, rs.CurrentChapterURL, rs.UpdatedAt,
		c.ID, c.Table,
	), string(update.Status), pointer.Arg(update.Progress.LastReadChapter), pointer.Arg(update.Progress.CurrentChapterURL))

	conditions := []query.Condition{query.Eq("c."+c.ID, update.ComicID)}
	if update.Link != "" {
		conditions = append(conditions, query.Eq("c."+c.Link, update.Link))
	}
	builder.Where(conditions...)

	builder.Write(fmt.Sprintf(
		" ON CONFLICT (%s) DO UPDATE SET %s = excluded.%s, %s = excluded.%s, %s = excluded.%s, %s = CURRENT_TIMESTAMP",
		rs.ComicID,
		rs.Status, rs.Status,
		rs.LastReadChapter, rs.LastReadChapter,
		rs.CurrentChapterURL, rs.CurrentChapterURL,
		rs.UpdatedAt,
	))

	sql, args := builder.Build()
	result, err := store.db.ExecContext(context, sql, args...)
	if err != nil {
		if dberr.IsForeignKeyViolation(err) {
			return apperr.NotFound("Comic")
		}
		return dberr.Wrap(err, "set_reading_status")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return dberr.Wrap(err, "set_reading_status_rows")
	}
	if affected == 0 {
		return apperr.NotFound("Comic")
	}

	return nil
}

// ComicExists reports whether the comic row is present.
func (store *sqlStore) ComicExists(context context.Context, id int64) (bool, error) {
	c := schema.Comics
	sql, args := query.New(store.dialect).
		Write(fmt.Sprintf("SELECT COUNT(*) FROM %s", c.Table)).
		Where(query.Eq(c.ID, id)).
		Build()

	var count int
	if err := store.db.QueryRowContext(context, sql, args...).Scan(&count); err != nil {
		return false, dberr.Wrap(err, "comic_exists")
	}
	return count > 0, nil
}

/*
MigrateVocabulary maps legacy statuses onto the current vocabulary.

Description: A single UPDATE with a CASE over [LegacyMapping]. Only rows whose
status is NULL or outside the current vocabulary match the WHERE clause, so a
second run changes nothing. comic_id and updated_at are left untouched.

Returns:
  - int64: Rows rewritten
  - error: Store failures
*/
func (store *sqlStore) MigrateVocabulary(context context.Context) (int64, error) {
	rs := schema.ReadingStatus
	current := Values()

	var caseArgs []any
	var whens strings.Builder
	for _, legacy := range legacyKeys() {
		whens.WriteString(fmt.Sprintf(" WHEN %s = ? THEN ?", rs.Status))
		caseArgs = append(caseArgs, legacy, string(MapLegacy(&legacy)))
	}
	caseArgs = append(caseArgs, string(MapLegacy(nil)))

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(current)), ", ")
	currentArgs := make([]any, 0, len(current))
	for _, value := range current {
		currentArgs = append(currentArgs, value)
	}

	builder := query.New(store.dialect)
	builder.Write(fmt.Sprintf("UPDATE %s SET %s = CASE%s ELSE ? END", rs.Table, rs.Status, whens.String()), caseArgs...)
	builder.Where(query.Cond(
		fmt.Sprintf("%s IS NULL OR %s NOT IN (%s)", rs.Status, rs.Status, placeholders),
		currentArgs...,
	))

	sql, args := builder.Build()
	result, err := store.db.ExecContext(context, sql, args...)
	if err != nil {
		return 0, dberr.Wrap(err, "migrate_status_vocabulary")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, dberr.Wrap(err, "migrate_status_vocabulary_rows")
	}
	return affected, nil
}
