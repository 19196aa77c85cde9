// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest lists the import batches of a catalogue: one genre per scraped file.
//
// # Example
//
//	batches:
//	  - genre: action
//	    file: data/action.json
//	    url: https://example.com/manga-genre/action/
type Manifest struct {
	Batches []Batch `yaml:"batches"`
}

// Batch is one genre-tagged source. File is resolved relative to the manifest.
type Batch struct {
	Genre string `yaml:"genre"`
	File  string `yaml:"file"`
	URL   string `yaml:"url"`
}

// LoadManifest reads and decodes a YAML batch manifest.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read manifest %s: %w", path, err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("config: decode manifest %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i, batch := range manifest.Batches {
		if batch.Genre == "" || batch.File == "" {
			return nil, fmt.Errorf("config: manifest batch %d needs both genre and file", i)
		}
		if !filepath.IsAbs(batch.File) {
			manifest.Batches[i].File = filepath.Join(base, batch.File)
		}
	}

	return &manifest, nil
}

// Find returns the batch for genre, if any.
func (m *Manifest) Find(genre string) (Batch, bool) {
	for _, batch := range m.Batches {
		if batch.Genre == genre {
			return batch, true
		}
	}
	return Batch{}, false
}
