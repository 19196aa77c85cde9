// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scrape

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/taibuivan/comicvault/internal/ingest"
)

// Output is the scraper's JSON result file. Entries already on disk are
// loaded first so an interrupted run resumes without duplicates.
type Output struct {
	path  string
	items []ingest.Item
	seen  map[string]struct{}
}

// OpenOutput loads path, or starts empty when it does not exist yet.
func OpenOutput(path string) (*Output, error) {
	out := &Output{path: path, items: []ingest.Item{}, seen: map[string]struct{}{}}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scrape: read output %s: %w", path, err)
	}

	var existing []ingest.Item
	if err := json.Unmarshal(raw, &existing); err != nil {
		return nil, fmt.Errorf("scrape: decode output %s: %w", path, err)
	}
	for _, item := range existing {
		out.Add(item)
	}
	return out, nil
}

// Has reports whether link is already recorded.
func (out *Output) Has(link string) bool {
	_, ok := out.seen[link]
	return ok
}

// Add appends item unless its link is already recorded. It reports whether
// the item was added.
func (out *Output) Add(item ingest.Item) bool {
	if item.Link != "" {
		if out.Has(item.Link) {
			return false
		}
		out.seen[item.Link] = struct{}{}
	}
	out.items = append(out.items, item)
	return true
}

// Len is the number of recorded entries.
func (out *Output) Len() int {
	return len(out.items)
}

// Save rewrites the file atomically: a temporary sibling is written and
// renamed over the target.
func (out *Output) Save() error {
	raw, err := json.MarshalIndent(out.items, "", "  ")
	if err != nil {
		return fmt.Errorf("scrape: encode output: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(out.path), filepath.Base(out.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("scrape: create temp output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("scrape: write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("scrape: close output: %w", err)
	}
	if err := os.Rename(tmp.Name(), out.path); err != nil {
		return fmt.Errorf("scrape: replace output %s: %w", out.path, err)
	}
	return nil
}
