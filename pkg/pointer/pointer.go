// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer provides generic helpers for optional values.

Optional fields travel through the catalogue as pointers: nil means "not
set" in JSON and NULL in SQL. These helpers convert between the two without
per-type boilerplate.

Key Functions:
  - To: Creates a pointer from a value literal.
  - Val: Safely dereferences a pointer, returning the zero value if nil.
  - Arg: Binds a pointer as a SQL argument (nil becomes NULL).
  - FromNull: Converts a scanned [sql.Null] into a pointer.
*/
package pointer

import "database/sql"

// To returns a pointer to the provided value.
func To[T any](v T) *T {
	return &v
}

// Val safely dereferences a pointer.
// If the pointer is nil, it returns the zero value of the underlying type.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Arg returns *p, or an untyped nil when p is nil, so that drivers bind NULL.
func Arg[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// FromNull returns a pointer to the scanned value, or nil for NULL.
func FromNull[T any](v sql.Null[T]) *T {
	if !v.Valid {
		return nil
	}
	return &v.V
}
