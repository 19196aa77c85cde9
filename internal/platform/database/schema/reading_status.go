// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// ReadingStatusTable represents the 'reading_status' table
type ReadingStatusTable struct {
	Table             string
	ComicID           string
	Status            string
	LastReadChapter   string
	CurrentChapterURL string
	UpdatedAt         string
}

// ReadingStatus is the schema definition for reading_status
var ReadingStatus = ReadingStatusTable{
	Table:             "reading_status",
	ComicID:           "comic_id",
	Status:            "status",
	LastReadChapter:   "last_read_chapter",
	CurrentChapterURL: "current_chapter_url",
	UpdatedAt:         "updated_at",
}

// Columns lists every column in declaration order.
func (t ReadingStatusTable) Columns() []string {
	return []string{
		t.ComicID, t.Status, t.LastReadChapter, t.CurrentChapterURL, t.UpdatedAt,
	}
}
