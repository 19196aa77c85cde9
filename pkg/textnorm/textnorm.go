// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package textnorm normalises user-visible text before it is stored or matched.
//
// # Usage
//
// Titles scraped from different pages can carry the same glyph in composed
// and decomposed form ("é" vs "e" + U+0301). Both stored titles and search
// terms pass through NFC so that a LIKE match compares like with like.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Title returns s in NFC with surrounding space trimmed and inner runs of
// whitespace collapsed to a single space.
func Title(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// Search prepares a free-text search term: NFC, collapsed whitespace, lower case.
func Search(s string) string {
	return strings.ToLower(Title(s))
}

// Tag normalises a genre tag: trimmed, lower case, ASCII only.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Converts to lowercase and trims.
func Tag(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.ToLower(strings.TrimSpace(result))
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
