// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package database

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// SQLite hands back timestamps as text when the column type is lost through
// a CTE; these are the layouts it produces.
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	time.RFC3339Nano,
}

// NullTime scans a nullable timestamp from either engine.
type NullTime struct {
	Time  time.Time
	Valid bool
}

// Scan implements [sql.Scanner].
func (nt *NullTime) Scan(value any) error {
	nt.Time, nt.Valid = time.Time{}, false

	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		nt.Time, nt.Valid = v.UTC(), true
		return nil
	case string:
		return nt.parse(v)
	case []byte:
		return nt.parse(string(v))
	case int64:
		nt.Time, nt.Valid = time.Unix(v, 0).UTC(), true
		return nil
	}

	return fmt.Errorf("database: cannot scan %T into NullTime", value)
}

// Value implements [driver.Valuer].
func (nt NullTime) Value() (driver.Value, error) {
	if !nt.Valid {
		return nil, nil
	}
	return nt.Time, nil
}

// Ptr returns a pointer to the time, or nil when not valid.
func (nt NullTime) Ptr() *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func (nt *NullTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			nt.Time, nt.Valid = t.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("database: unrecognised timestamp %q", s)
}
