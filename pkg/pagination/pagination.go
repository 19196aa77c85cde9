// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for API list endpoints.
//
// # Overview
//
// It standardizes how page-based navigation is requested via query parameters
// and how the resulting metadata is delivered in the API response.
//
// Parsing is strict: a value that is present but not an integer becomes 0,
// which the owning service rejects as out of range. Nothing is clamped.
package pagination

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 12
	// MaxLimit is the upper bound for items per page.
	MaxLimit = 100
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1
	// MaxPage is the largest page whose offset fits in an int at [MaxLimit].
	MaxPage = math.MaxInt/MaxLimit + 1
)

// Params holds the parsed page and limit from a request's query string.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the SQL OFFSET value derived from [Page] and [Limit].
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta is the pagination metadata included in API list responses.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewMeta constructs pagination metadata for a response.
//
// TotalPages is ceil(total / limit), and 0 when nothing matched.
func NewMeta(page, limit, total int) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// FromQuery parses "page" and "limit" from a query string.
//
// Absent or blank values take [DefaultPage] and [DefaultLimit]. Values that do
// not parse as integers come back as 0 so that validation reports them.
func FromQuery(values url.Values) Params {
	return Params{
		Page:  parseIntParam(values, "page", DefaultPage),
		Limit: parseIntParam(values, "limit", DefaultLimit),
	}
}

func parseIntParam(values url.Values, key string, defaultVal int) int {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}

	return n
}
