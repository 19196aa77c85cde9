// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package reading tracks per-comic reading progress.

Each comic has at most one status row. The first status-setting call creates
it and later calls overwrite it in place; the row is never deleted here.

Core Responsibility:

  - Vocabulary: The closed [Status] enum and the fixed mapping from the
    legacy vocabulary (ignore/completed/incomplete/future).
  - Writes: One conflict-resolving statement per status update.
  - Migration: Rewriting legacy rows into the current vocabulary, idempotently.
*/
package reading

import "sort"

// # Domain Enums

// Status is the reading state of a comic.
type Status string

const (
	// StatusUnread is the state of every comic nobody has touched yet.
	StatusUnread Status = "unread"

	// StatusCompleted means every published chapter has been read.
	StatusCompleted Status = "completed"

	// StatusOngoing means reading is in progress.
	StatusOngoing Status = "ongoing"

	// StatusAbandoned means the reader dropped the comic.
	StatusAbandoned Status = "abandoned"
)

// IsValid reports whether s is in the current vocabulary.
func (s Status) IsValid() bool {
	switch s {
	case StatusUnread, StatusCompleted, StatusOngoing, StatusAbandoned:
		return true
	}
	return false
}

// Values lists the current vocabulary in display order.
func Values() []string {
	return []string{
		string(StatusUnread),
		string(StatusCompleted),
		string(StatusOngoing),
		string(StatusAbandoned),
	}
}

// # Legacy Vocabulary

// LegacyValues is the vocabulary of schema version 1.
var LegacyValues = []string{"ignore", "completed", "incomplete", "future"}

// LegacyMapping translates legacy statuses. Values missing from the table
// (including NULL) become [StatusUnread].
var LegacyMapping = map[string]Status{
	"completed":  StatusCompleted,
	"incomplete": StatusOngoing,
	"future":     StatusOngoing,
	"ignore":     StatusAbandoned,
}

// MapLegacy returns the current status for a stored legacy value.
func MapLegacy(raw *string) Status {
	if raw == nil {
		return StatusUnread
	}
	if status, ok := LegacyMapping[*raw]; ok {
		return status
	}
	if current := Status(*raw); current.IsValid() {
		return current
	}
	return StatusUnread
}

// legacyKeys returns the mapping keys in a stable order so the generated
// UPDATE statement is identical on every run.
func legacyKeys() []string {
	keys := make([]string, 0, len(LegacyMapping))
	for key := range LegacyMapping {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// # Domain Entities

// Progress is how far a reader got. Both fields are optional.
type Progress struct {
	// LastReadChapter is the chapter number (schema v1 field).
	LastReadChapter *int
	// CurrentChapterURL is the chapter page being read (schema v2 field).
	CurrentChapterURL *string
}

// Update is a request to overwrite the status row of one comic.
type Update struct {
	ComicID  int64
	Status   Status
	Progress Progress
	// Link, when set, must equal the comic's stored link.
	Link string
}

// # Field Names

const (
	FieldComicID           = "id"
	FieldStatus            = "status"
	FieldLastReadChapter   = "lastReadChapter"
	FieldCurrentChapterURL = "currentChapterUrl"
	FieldLink              = "link"
)
