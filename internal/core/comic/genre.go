// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import (
	"strings"

	"github.com/taibuivan/comicvault/pkg/textnorm"
)

// genreSeparator joins tags in the stored genre column.
const genreSeparator = ","

// GenreSet is the set of tags a comic carries, in the order they were first
// seen. It is stored as a comma-joined string.
type GenreSet []string

// ParseGenres decodes a stored genre column. Blank entries and repeats are
// dropped.
func ParseGenres(raw string) GenreSet {
	var set GenreSet
	for _, part := range strings.Split(raw, genreSeparator) {
		set = set.Union(part)
	}
	return set
}

// String encodes the set for storage.
func (set GenreSet) String() string {
	return strings.Join(set, genreSeparator)
}

// Contains reports whether tag is a member of the set.
func (set GenreSet) Contains(tag string) bool {
	tag = textnorm.Tag(tag)
	for _, existing := range set {
		if existing == tag {
			return true
		}
	}
	return false
}

// Union returns the set with tag appended when it is new. The receiver is
// never modified.
func (set GenreSet) Union(tag string) GenreSet {
	tag = textnorm.Tag(tag)
	if tag == "" || strings.Contains(tag, genreSeparator) || set.Contains(tag) {
		return set
	}

	merged := make(GenreSet, len(set), len(set)+1)
	copy(merged, set)
	return append(merged, tag)
}

// Equal reports whether both sets hold the same tags, ignoring order.
func (set GenreSet) Equal(other GenreSet) bool {
	if len(set) != len(other) {
		return false
	}
	for _, tag := range other {
		if !set.Contains(tag) {
			return false
		}
	}
	return true
}
