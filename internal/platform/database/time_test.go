// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package database_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicvault/internal/platform/database"
)

/*
TestNullTime_Scan accepts every representation the two drivers produce.
*/
func TestNullTime_Scan(t *testing.T) {
	want := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value any
	}{
		{"time_value", want},
		{"sqlite_text", "2024-05-01 12:30:00"},
		{"rfc3339", "2024-05-01T12:30:00Z"},
		{"bytes", []byte("2024-05-01 12:30:00")},
		{"unix", want.Unix()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var nt database.NullTime
			require.NoError(t, nt.Scan(tt.value))
			assert.True(t, nt.Valid)
			assert.True(t, want.Equal(nt.Time))
		})
	}
}

/*
TestNullTime_Null leaves the value invalid.
*/
func TestNullTime_Null(t *testing.T) {
	var nt database.NullTime
	require.NoError(t, nt.Scan(nil))
	assert.False(t, nt.Valid)
	assert.Nil(t, nt.Ptr())
}

/*
TestNullTime_Garbage rejects unknown text.
*/
func TestNullTime_Garbage(t *testing.T) {
	var nt database.NullTime
	assert.Error(t, nt.Scan("yesterday"))
}
