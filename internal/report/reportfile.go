// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bibval/pkg/types"
)

// File is the on-disk representation of a validation run: its entries plus
// a timestamped summary, so a run can be saved and diffed against a later
// one without re-querying every provider.
type File struct {
	Entries []types.EntryReport `yaml:"entries"`
	Summary FileSummary         `yaml:"summary"`
}

// FileSummary stores per-status counts and when the run completed.
type FileSummary struct {
	Total     int       `yaml:"total"`
	OK        int       `yaml:"ok"`
	Warnings  int       `yaml:"warnings"`
	Errors    int       `yaml:"errors"`
	NotFound  int       `yaml:"not_found"`
	Failed    int       `yaml:"failed"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteFile saves r to path as YAML.
func WriteFile(path string, r Report) error {
	f := File{
		Entries: r.Entries,
		Summary: FileSummary{
			Total:     len(r.Entries),
			OK:        r.CountOK(),
			Warnings:  r.CountWarnings(),
			Errors:    r.CountErrors(),
			NotFound:  r.CountNotFound(),
			Failed:    r.CountFailed(),
			Timestamp: time.Now(),
		},
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("marshaling report file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile loads a previously saved report file from disk.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing report file: %w", err)
	}
	return &f, nil
}
