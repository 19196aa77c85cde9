// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import (
	"context"
	"database/sql"

	"github.com/taibuivan/comicvault/pkg/query"
)

// # Repository Interfaces

// Store defines the persistence contract for the catalogue.
type Store interface {
	// UpsertByLink inserts a new comic or merges the record's genre into the
	// comic that already owns the link.
	UpsertByLink(context context.Context, record Record) (Outcome, error)

	// IndexTitles fills the folded search column of comics stored before it
	// existed and returns the number of rows updated.
	IndexTitles(context context.Context) (int64, error)

	// Get returns one comic with its reading status.
	Get(context context.Context, id int64) (*Listing, error)

	// List returns one window of the comics matching every condition and the
	// total match count. Conditions may reference c.* (comics) and rs.*
	// (reading_status).
	List(context context.Context, conditions []query.Condition, sort Sort, limit, offset int) ([]Listing, int, error)

	// WithTx returns a store bound to tx.
	WithTx(tx *sql.Tx) Store
}
