// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns of the catalogue so that SQL
// assembled in the stores never spells an identifier twice.
package schema

// ComicsTable represents the 'comics' table
type ComicsTable struct {
	Table        string
	ID           string
	Title        string
	TitleSearch  string
	Link         string
	ImageURL     string
	ChapterCount string
	Rating       string
	Genre        string
	CreatedAt    string
}

// Comics is the schema definition for comics
var Comics = ComicsTable{
	Table:        "comics",
	ID:           "id",
	Title:        "title",
	TitleSearch:  "title_search",
	Link:         "link",
	ImageURL:     "image_url",
	ChapterCount: "chapter_count",
	Rating:       "rating",
	Genre:        "genre",
	CreatedAt:    "created_at",
}

// Columns lists the columns a listing reads, in declaration order.
// title_search is write-only and omitted.
func (t ComicsTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Link, t.ImageURL, t.ChapterCount, t.Rating, t.Genre, t.CreatedAt,
	}
}
