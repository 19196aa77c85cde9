// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package comic provides the SQL implementation of the catalogue store.

The same statements run on PostgreSQL and SQLite; only the placeholder style
differs, and [query.Builder] takes care of that.
*/
package comic

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/taibuivan/comicvault/internal/core/reading"
	"github.com/taibuivan/comicvault/internal/platform/apperr"
	"github.com/taibuivan/comicvault/internal/platform/database"
	"github.com/taibuivan/comicvault/internal/platform/database/schema"
	"github.com/taibuivan/comicvault/internal/platform/dberr"
	"github.com/taibuivan/comicvault/pkg/pointer"
	"github.com/taibuivan/comicvault/pkg/query"
	"github.com/taibuivan/comicvault/pkg/slice"
	"github.com/taibuivan/comicvault/pkg/textnorm"
)

// sqlStore implements [Store] over database/sql.
type sqlStore struct {
	db      database.DBTX
	dialect query.Dialect
}

// NewStore constructs a SQL backed comic store.
func NewStore(handle *database.Handle) Store {
	return &sqlStore{db: handle.DB, dialect: handle.Dialect}
}

// WithTx returns a store that runs every statement inside tx.
func (store *sqlStore) WithTx(tx *sql.Tx) Store {
	return &sqlStore{db: tx, dialect: store.dialect}
}

// # Writes

/*
UpsertByLink stores a record keyed by its link.

Description: A record without a link or title is reported as skipped before
the store is touched. An unknown link is inserted with the record's genre as
its only tag. A known link gets the union of its tags and the record's genre;
other columns of an existing comic are left as they are.

The lookup and the merge are two statements. Two importers merging different
genres into the same link at the same moment can lose one tag; concurrent
inserts of the same link surface as Conflict.

Returns:
  - Outcome: inserted, genreMerged, unchanged or skipped
  - error: Conflict on a lost insert race, Unavailable/Internal on store failure
*/
func (store *sqlStore) UpsertByLink(context context.Context, record Record) (Outcome, error) {
	link := strings.TrimSpace(record.Link)
	title := textnorm.Title(record.Title)
	if !wellFormed(link, title, record) {
		return OutcomeSkipped, nil
	}

	c := schema.Comics

	lookupSQL, lookupArgs := query.New(store.dialect).
		Write(fmt.Sprintf("SELECT %s, %s FROM %s", c.ID, c.Genre, c.Table)).
		Where(query.Eq(c.Link, link)).
		Build()

	var id int64
	var stored string
	err := store.db.QueryRowContext(context, lookupSQL, lookupArgs...).Scan(&id, &stored)

	if errors.Is(err, sql.ErrNoRows) {
		return store.insert(context, link, title, record)
	}
	if err != nil {
		return "", dberr.Wrap(err, "find_comic_by_link")
	}

	existing := ParseGenres(stored)
	merged := existing.Union(record.Genre)
	if merged.Equal(existing) {
		return OutcomeUnchanged, nil
	}

	updateSQL, updateArgs := query.New(store.dialect).
		Write(fmt.Sprintf("UPDATE %s SET %s = ?", c.Table, c.Genre), merged.String()).
		Where(query.Eq(c.ID, id)).
		Build()

	if _, err := store.db.ExecContext(context, updateSQL, updateArgs...); err != nil {
		return "", dberr.Wrap(err, "merge_comic_genre")
	}
	return OutcomeGenreMerged, nil
}

func (store *sqlStore) insert(context context.Context, link, title string, record Record) (Outcome, error) {
	c := schema.Comics

	var genres GenreSet
	genres = genres.Union(record.Genre)

	insertSQL, args := query.New(store.dialect).
		Write(fmt.Sprintf(
			"INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s) VALUES (?, ?, ?, ?, ?, ?, ?)",
			c.Table, c.Title, c.TitleSearch, c.Link, c.ImageURL, c.ChapterCount, c.Rating, c.Genre,
		), title, textnorm.Search(title), link, nullableString(record.ImageURL), record.ChapterCount, pointer.Arg(record.Rating), genres.String()).
		Build()

	if _, err := store.db.ExecContext(context, insertSQL, args...); err != nil {
		if dberr.IsUniqueViolation(err) {
			return "", apperr.Conflict("A comic with this link was inserted concurrently")
		}
		return "", dberr.Wrap(err, "insert_comic")
	}
	return OutcomeInserted, nil
}

func wellFormed(link, title string, record Record) bool {
	if link == "" || title == "" || record.ChapterCount < 0 {
		return false
	}
	if rating := record.Rating; rating != nil && (math.IsNaN(*rating) || math.IsInf(*rating, 0)) {
		return false
	}
	return true
}

/*
IndexTitles writes the folded title of every comic whose search column is
still NULL.

Description: SQL LOWER folds only ASCII on SQLite, so title search matches
against a column folded in Go by [textnorm.Search]. New rows get it on
insert; this covers rows stored by older releases. The candidates are read
in full before any update so a single-connection SQLite pool never waits on
itself.

Returns:
  - int64: Rows updated
  - error: Store failures
*/
func (store *sqlStore) IndexTitles(context context.Context) (int64, error) {
	c := schema.Comics

	selectSQL, selectArgs := query.New(store.dialect).
		Write(fmt.Sprintf("SELECT %s, %s FROM %s", c.ID, c.Title, c.Table)).
		Where(query.Cond(c.TitleSearch + " IS NULL")).
		Build()

	rows, err := store.db.QueryContext(context, selectSQL, selectArgs...)
	if err != nil {
		return 0, dberr.Wrap(err, "list_unindexed_titles")
	}

	type pending struct {
		id    int64
		title string
	}
	var todo []pending
	for rows.Next() {
		var row pending
		if err := rows.Scan(&row.id, &row.title); err != nil {
			rows.Close()
			return 0, dberr.Wrap(err, "scan_unindexed_title")
		}
		todo = append(todo, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, dberr.Wrap(err, "list_unindexed_titles")
	}

	for _, row := range todo {
		updateSQL, updateArgs := query.New(store.dialect).
			Write(fmt.Sprintf("UPDATE %s SET %s = ?", c.Table, c.TitleSearch), textnorm.Search(row.title)).
			Where(query.Eq(c.ID, row.id)).
			Build()

		if _, err := store.db.ExecContext(context, updateSQL, updateArgs...); err != nil {
			return 0, dberr.Wrap(err, "index_title")
		}
	}
	return int64(len(todo)), nil
}

// # Reads

// Get loads one comic and its status.
func (store *sqlStore) Get(context context.Context, id int64) (*Listing, error) {
	builder := query.New(store.dialect)
	builder.Write("SELECT " + strings.Join(listingColumns("c.", "rs."), ", ") + " FROM " + joinedTables())
	builder.Where(query.Eq("c."+schema.Comics.ID, id))

	statement, args := builder.Build()
	row := listingRow{}
	if err := store.db.QueryRowContext(context, statement, args...).Scan(row.dest()...); err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperr.NotFound("Comic")
		}
		return nil, dberr.Wrap(err, "get_comic")
	}

	listing := row.listing()
	return &listing, nil
}

/*
List returns one page of matching comics together with the total.

Description: A single statement reads both. The CTE "filtered" holds every
match, "page" is its ordered window, and the outer select left-joins the
window onto the one-row count. A page past the end therefore still yields the
total in a row whose window columns are NULL.

Parameters:
  - conditions: ANDed predicates over c.* and rs.*
  - sort: Sort key, always descending with id DESC as tie-breaker
  - limit, offset: The window

Returns:
  - []Listing: The window, possibly empty
  - int: Total matches across all pages
  - error: Unavailable/Internal on store failure
*/
func (store *sqlStore) List(context context.Context, conditions []query.Condition, sort Sort, limit, offset int) ([]Listing, int, error) {
	orders := sortOrders(sort)

	builder := query.New(store.dialect)
	builder.Write("WITH filtered AS (SELECT " + strings.Join(filteredColumns(), ", ") + " FROM " + joinedTables())
	builder.Where(conditions...)
	builder.Write("), page AS (SELECT * FROM filtered")
	builder.OrderBy("", orders...)
	builder.Write(" LIMIT ? OFFSET ?)", limit, offset)
	builder.Write(" SELECT t.total, " + strings.Join(listingColumns("p.", "p."), ", ") +
		" FROM (SELECT COUNT(*) AS total FROM filtered) t LEFT JOIN page p ON 1 = 1")
	builder.OrderBy("p.", orders...)

	statement, args := builder.Build()
	rows, err := store.db.QueryContext(context, statement, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_comics")
	}
	defer rows.Close()

	var total int
	items := make([]Listing, 0, limit)
	for rows.Next() {
		row := listingRow{}
		if err := rows.Scan(append([]any{&total}, row.dest()...)...); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_comic")
		}
		if row.id.Valid {
			items = append(items, row.listing())
		}
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "iterate_comics")
	}

	return items, total, nil
}

// sortOrders maps a sort key onto columns of the filtered CTE. Unknown keys
// fall back to [DefaultSort]; validation happens in the service.
func sortOrders(sort Sort) []query.Order {
	c := schema.Comics
	tieBreak := query.Order{Column: c.ID, Desc: true}

	switch sort {
	case SortRating:
		return []query.Order{{Column: c.Rating, Desc: true, NullsLast: true}, tieBreak}
	case SortTitle:
		return []query.Order{{Column: c.Title, Desc: true}, tieBreak}
	default:
		return []query.Order{{Column: c.ChapterCount, Desc: true}, tieBreak}
	}
}

// # Row Mapping

// Status columns are aliased so the CTE can expose them next to the comic
// columns without a name clash.
const (
	aliasStatusUpdatedAt = "status_updated_at"
)

func joinedTables() string {
	return fmt.Sprintf("%s c LEFT JOIN %s rs ON rs.%s = c.%s",
		schema.Comics.Table, schema.ReadingStatus.Table, schema.ReadingStatus.ComicID, schema.Comics.ID)
}

// filteredColumns is the projection of the filtered CTE.
func filteredColumns() []string {
	rs := schema.ReadingStatus
	return append(qualified("c.", schema.Comics.Columns()),
		"rs."+rs.Status,
		"rs."+rs.LastReadChapter,
		"rs."+rs.CurrentChapterURL,
		"rs."+rs.UpdatedAt+" AS "+aliasStatusUpdatedAt,
	)
}

// listingColumns lists the columns scanned by [listingRow], qualified by the
// comic and status prefixes.
func listingColumns(comicPrefix, statusPrefix string) []string {
	rs := schema.ReadingStatus
	updatedAt := statusPrefix + rs.UpdatedAt
	if comicPrefix == statusPrefix {
		updatedAt = statusPrefix + aliasStatusUpdatedAt
	}
	return append(qualified(comicPrefix, schema.Comics.Columns()),
		statusPrefix+rs.Status,
		statusPrefix+rs.LastReadChapter,
		statusPrefix+rs.CurrentChapterURL,
		updatedAt,
	)
}

func qualified(prefix string, columns []string) []string {
	return slice.Map(columns, func(column string) string { return prefix + column })
}

// listingRow holds one scanned row. Every column is nullable because the
// page window is left-joined.
type listingRow struct {
	id                sql.NullInt64
	title             sql.NullString
	link              sql.NullString
	imageURL          sql.Null[string]
	chapterCount      sql.NullInt64
	rating            sql.Null[float64]
	genre             sql.NullString
	createdAt         database.NullTime
	status            sql.NullString
	lastReadChapter   sql.Null[int]
	currentChapterURL sql.Null[string]
	statusUpdatedAt   database.NullTime
}

// dest follows the order of [schema.ComicsTable.Columns] then the status
// columns.
func (row *listingRow) dest() []any {
	return []any{
		&row.id, &row.title, &row.link, &row.imageURL, &row.chapterCount, &row.rating, &row.genre, &row.createdAt,
		&row.status, &row.lastReadChapter, &row.currentChapterURL, &row.statusUpdatedAt,
	}
}

func (row *listingRow) listing() Listing {
	listing := Listing{
		Comic: Comic{
			ID:           row.id.Int64,
			Title:        row.title.String,
			Link:         row.link.String,
			ImageURL:     pointer.FromNull(row.imageURL),
			ChapterCount: int(row.chapterCount.Int64),
			Rating:       pointer.FromNull(row.rating),
			Genres:       ParseGenres(row.genre.String),
			CreatedAt:    row.createdAt.Time,
		},
		LastReadChapter:   pointer.FromNull(row.lastReadChapter),
		CurrentChapterURL: pointer.FromNull(row.currentChapterURL),
		StatusUpdatedAt:   row.statusUpdatedAt.Ptr(),
	}

	if row.status.Valid {
		status := reading.Status(row.status.String)
		listing.Status = &status
	}
	return listing
}

func nullableString(value *string) any {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	return *value
}
