// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package query assembles parameterised SQL for the two supported engines.

Fragments are written with `?` as the argument marker. The [Builder] rewrites
each marker into the placeholder of its [Dialect] (`$n` for PostgreSQL, `?`
for SQLite) and collects the arguments in order. Values never reach the SQL
text; only column names chosen by the caller do.

Example:

	b := query.New(query.Postgres)
	b.Write("SELECT id FROM comics").
		Where(query.Eq("genre", "action"), query.Contains("title_search", "solo")).
		Write(" LIMIT ?", 12)
	sql, args := b.Build()
	// SELECT id FROM comics WHERE (genre = $1) AND (title_search LIKE $2 ESCAPE '\') LIMIT $3
*/
package query

import (
	"strconv"
	"strings"
)

// # Dialects

// Dialect selects the placeholder style of the target engine.
type Dialect int

const (
	// Postgres numbers its placeholders: $1, $2, ...
	Postgres Dialect = iota
	// SQLite uses positional question marks.
	SQLite
)

// String returns the driver name of the dialect.
func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// Placeholder returns the n-th (1-based) argument marker.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// # Conditions

// Condition is a single boolean predicate with its bound arguments.
// Clause uses `?` for each argument.
type Condition struct {
	Clause string
	Args   []any
}

// Cond builds a free-form condition.
func Cond(clause string, args ...any) Condition {
	return Condition{Clause: clause, Args: args}
}

// Eq matches column = value.
func Eq(column string, value any) Condition {
	return Cond(column+" = ?", value)
}

// Contains matches rows whose column contains substr, with LIKE wildcards in
// substr treated literally.
func Contains(column, substr string) Condition {
	return Cond(column+` LIKE ? ESCAPE '\'`, "%"+EscapeLike(substr)+"%")
}

// EscapeLike escapes the LIKE metacharacters `%`, `_` and the escape
// character itself so that s matches only literally.
func EscapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

// # Ordering

// Order is one ORDER BY term. Column must come from code, never from input.
type Order struct {
	Column    string
	Desc      bool
	NullsLast bool
}

func (o Order) sql(prefix string) string {
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString(o.Column)
	if o.Desc {
		sb.WriteString(" DESC")
	} else {
		sb.WriteString(" ASC")
	}
	if o.NullsLast {
		sb.WriteString(" NULLS LAST")
	}
	return sb.String()
}

// # Builder

// Builder accumulates SQL text and arguments. The zero value is not usable;
// construct one with [New].
type Builder struct {
	dialect Dialect
	sql     strings.Builder
	args    []any
}

// New returns an empty builder for the given dialect.
func New(dialect Dialect) *Builder {
	return &Builder{dialect: dialect}
}

// Write appends fragment, rewriting each `?` outside string literals into the
// next placeholder and recording args in order.
func (b *Builder) Write(fragment string, args ...any) *Builder {
	inLiteral := false
	for _, r := range fragment {
		switch {
		case r == '\'':
			inLiteral = !inLiteral
			b.sql.WriteRune(r)
		case r == '?' && !inLiteral:
			b.sql.WriteString(b.dialect.Placeholder(len(b.args) + 1))
			if len(args) == 0 {
				// Leave the arity mismatch for the driver to report.
				b.args = append(b.args, nil)
				continue
			}
			b.args = append(b.args, args[0])
			args = args[1:]
		default:
			b.sql.WriteRune(r)
		}
	}
	return b
}

// Where appends " WHERE c1 AND c2 ..." or nothing when conds is empty.
func (b *Builder) Where(conds ...Condition) *Builder {
	if len(conds) == 0 {
		return b
	}
	b.Write(" WHERE ")
	for i, cond := range conds {
		if i > 0 {
			b.Write(" AND ")
		}
		b.Write("("+cond.Clause+")", cond.Args...)
	}
	return b
}

// OrderBy appends " ORDER BY ..." with every column qualified by prefix
// (e.g. "p."); pass "" for none.
func (b *Builder) OrderBy(prefix string, orders ...Order) *Builder {
	if len(orders) == 0 {
		return b
	}
	terms := make([]string, 0, len(orders))
	for _, o := range orders {
		terms = append(terms, o.sql(prefix))
	}
	b.sql.WriteString(" ORDER BY ")
	b.sql.WriteString(strings.Join(terms, ", "))
	return b
}

// Build returns the SQL text and its arguments.
func (b *Builder) Build() (string, []any) {
	return b.sql.String(), b.args
}
