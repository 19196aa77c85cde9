// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package comic manages the catalogue of scraped web comics.

A comic is identified by its source link. Importing a link that already
exists never adds a row; it only widens the comic's genre set.

Core Responsibility:

  - Storage: Upsert by link, single lookups, and the paginated listing query.
  - Querying: Validating filters and composing them into one statement.
  - Delivery: The read-only HTTP surface for the catalogue.
*/
package comic

import (
	"time"

	"github.com/taibuivan/comicvault/internal/core/reading"
)

// # Domain Enums

// Sort selects the listing order. Every sort is descending with id as the
// tie-breaker.
type Sort string

const (
	SortChapterCount Sort = "chapterCount"
	SortRating       Sort = "rating"
	SortTitle        Sort = "title"
)

// DefaultSort is used when the caller does not choose one.
const DefaultSort = SortChapterCount

// Sorts lists the accepted sort keys.
func Sorts() []string {
	return []string{string(SortChapterCount), string(SortRating), string(SortTitle)}
}

// Outcome reports what an upsert did to the store.
type Outcome string

const (
	OutcomeInserted    Outcome = "inserted"
	OutcomeGenreMerged Outcome = "genreMerged"
	OutcomeUnchanged   Outcome = "unchanged"
	OutcomeSkipped     Outcome = "skipped"
)

// AllowedGenres is the closed set of genres the catalogue is built from.
var AllowedGenres = []string{"action", "adventure", "fantasy", "isekai", "magic", "reincarnation"}

// IsAllowedGenre reports whether genre is one of [AllowedGenres].
func IsAllowedGenre(genre string) bool {
	for _, allowed := range AllowedGenres {
		if genre == allowed {
			return true
		}
	}
	return false
}

// # Domain Entities

// Comic is one catalogue entry.
type Comic struct {
	ID           int64
	Title        string
	Link         string
	ImageURL     *string
	ChapterCount int
	Rating       *float64
	Genres       GenreSet
	CreatedAt    time.Time
}

// Listing is a comic joined with its reading status. The status fields are
// nil for comics nobody has touched.
type Listing struct {
	Comic
	Status            *reading.Status
	LastReadChapter   *int
	CurrentChapterURL *string
	StatusUpdatedAt   *time.Time
}

// Record is the importer's view of a comic before it is stored.
type Record struct {
	Title        string
	Link         string
	ImageURL     *string
	ChapterCount int
	Rating       *float64
	// Genre is the single tag this record is imported under.
	Genre string
}

// Filter narrows a listing. Empty fields do not filter.
type Filter struct {
	Status string
	Genre  string
	Search string
}

// Page is one window of a filtered listing.
type Page struct {
	Items      []Listing
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// # Field Names

const (
	FieldID     = "id"
	FieldStatus = "status"
	FieldGenre  = "genre"
	FieldSearch = "search"
	FieldSort   = "sort"
	FieldPage   = "page"
	FieldLimit  = "limit"
)
