// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reading

import "context"

// # Store Interfaces

// Store persists reading status rows.
type Store interface {
	// SetStatus writes update in one statement. It returns NotFound when no
	// comic matches the id (and link, when given); nothing is written then.
	SetStatus(context context.Context, update Update) error

	// ComicExists reports whether a comic with id exists.
	ComicExists(context context.Context, id int64) (bool, error)

	// MigrateVocabulary rewrites every row outside the current vocabulary
	// and returns how many rows changed.
	MigrateVocabulary(context context.Context) (int64, error)
}
