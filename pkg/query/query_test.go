// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/comicvault/pkg/query"
)

/*
TestBuilder_Placeholders renders the same statement for both dialects.
*/
func TestBuilder_Placeholders(t *testing.T) {
	tests := []struct {
		name    string
		dialect query.Dialect
		want    string
	}{
		{"postgres", query.Postgres, `SELECT id FROM comics WHERE (genre = $1) AND (title_search LIKE $2 ESCAPE '\') LIMIT $3 OFFSET $4`},
		{"sqlite", query.SQLite, `SELECT id FROM comics WHERE (genre = ?) AND (title_search LIKE ? ESCAPE '\') LIMIT ? OFFSET ?`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := query.New(tt.dialect)
			b.Write("SELECT id FROM comics").
				Where(query.Eq("genre", "action"), query.Contains("title_search", "solo")).
				Write(" LIMIT ? OFFSET ?", 12, 24)

			sql, args := b.Build()
			assert.Equal(t, tt.want, sql)
			assert.Equal(t, []any{"action", "%solo%", 12, 24}, args)
		})
	}
}

/*
TestBuilder_NoConditions leaves the statement without a WHERE clause.
*/
func TestBuilder_NoConditions(t *testing.T) {
	sql, args := query.New(query.Postgres).Write("SELECT 1").Where().Build()
	assert.Equal(t, "SELECT 1", sql)
	assert.Empty(t, args)
}

/*
TestBuilder_IgnoresLiteralMarks does not treat a `?` inside quotes as a placeholder.
*/
func TestBuilder_IgnoresLiteralMarks(t *testing.T) {
	sql, args := query.New(query.Postgres).Write("SELECT '?' AS q, ? AS v", 7).Build()
	assert.Equal(t, "SELECT '?' AS q, $1 AS v", sql)
	assert.Equal(t, []any{7}, args)
}

/*
TestBuilder_OrderBy renders qualified terms with NULLS LAST.
*/
func TestBuilder_OrderBy(t *testing.T) {
	sql, _ := query.New(query.SQLite).
		Write("SELECT * FROM page p").
		OrderBy("p.",
			query.Order{Column: "rating", Desc: true, NullsLast: true},
			query.Order{Column: "id", Desc: true},
		).Build()

	assert.Equal(t, "SELECT * FROM page p ORDER BY p.rating DESC NULLS LAST, p.id DESC", sql)
}

/*
TestEscapeLike treats wildcard characters literally.
*/
func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"100%", `100\%`},
		{"a_b", `a\_b`},
		{`back\slash`, `back\\slash`},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, query.EscapeLike(tt.in))
		})
	}
}
