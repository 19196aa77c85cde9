// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reading_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/comicvault/internal/core/reading"
)

/*
TestMapLegacy covers the full legacy lookup table plus its fallbacks.
*/
func TestMapLegacy(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name string
		in   *string
		want reading.Status
	}{
		{"completed", str("completed"), reading.StatusCompleted},
		{"incomplete", str("incomplete"), reading.StatusOngoing},
		{"future", str("future"), reading.StatusOngoing},
		{"ignore", str("ignore"), reading.StatusAbandoned},
		{"null", nil, reading.StatusUnread},
		{"garbage", str("wishlist"), reading.StatusUnread},
		{"already_current", str("abandoned"), reading.StatusAbandoned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reading.MapLegacy(tt.in))
		})
	}
}

/*
TestLegacyMapping_CoversLegacyVocabulary keeps the table and the vocabulary in sync.
*/
func TestLegacyMapping_CoversLegacyVocabulary(t *testing.T) {
	for _, legacy := range reading.LegacyValues {
		target, ok := reading.LegacyMapping[legacy]
		assert.True(t, ok, legacy)
		assert.True(t, target.IsValid(), legacy)
	}
}

/*
TestStatus_IsValid accepts only the current vocabulary.
*/
func TestStatus_IsValid(t *testing.T) {
	for _, value := range reading.Values() {
		assert.True(t, reading.Status(value).IsValid(), value)
	}
	assert.False(t, reading.Status("incomplete").IsValid())
	assert.False(t, reading.Status("").IsValid())
}
