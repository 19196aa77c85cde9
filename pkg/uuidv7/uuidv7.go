// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package uuidv7 wraps google/uuid to generate time-ordered identifiers.
//
// Request IDs and event IDs use it, so log lines and NATS envelopes sort by
// creation time.
package uuidv7

import "github.com/google/uuid"

// New returns a UUIDv7 string. If the clock-based generator fails it falls
// back to a random UUIDv4, so callers never see an error.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
