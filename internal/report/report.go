// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report aggregates per-entry validation outcomes into a Report and
// renders it as a table or as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/bibval/pkg/types"
)

// Report is the full outcome of validating a batch of bibliography entries,
// preserving the order entries were supplied in.
type Report struct {
	Entries []types.EntryReport `json:"entries"`
}

// New builds a Report from a set of per-entry results, re-sorting them back
// into the order of original, which may differ from entries' arrival order
// when they were produced by concurrent validation.
func New(entries []types.EntryReport, original []types.Entry) Report {
	byKey := make(map[string]types.EntryReport, len(entries))
	for _, e := range entries {
		byKey[e.Entry.Key] = e
	}

	ordered := make([]types.EntryReport, 0, len(original))
	for _, e := range original {
		if r, ok := byKey[e.Key]; ok {
			ordered = append(ordered, r)
		}
	}
	return Report{Entries: ordered}
}

// CountOK returns the number of entries with status ok.
func (r Report) CountOK() int { return r.count(types.StatusOK) }

// CountWarnings returns the number of entries with status warning.
func (r Report) CountWarnings() int { return r.count(types.StatusWarning) }

// CountErrors returns the number of entries with status error.
func (r Report) CountErrors() int { return r.count(types.StatusError) }

// CountNotFound returns the number of entries with status not_found.
func (r Report) CountNotFound() int { return r.count(types.StatusNotFound) }

// CountFailed returns the number of entries with status failed.
func (r Report) CountFailed() int { return r.count(types.StatusFailed) }

func (r Report) count(kind types.StatusKind) int {
	n := 0
	for _, e := range r.Entries {
		if e.Status.Kind == kind {
			n++
		}
	}
	return n
}

// HasProblems reports whether any entry needs attention: a warning, an
// error, a not_found, or a failed lookup.
func (r Report) HasProblems() bool {
	return r.CountWarnings()+r.CountErrors()+r.CountNotFound()+r.CountFailed() > 0
}

// FormatTable renders the report as a fixed-width table to w.
func FormatTable(r Report, w io.Writer) {
	if len(r.Entries) == 0 {
		fmt.Fprintln(w, "No entries validated.")
		return
	}

	fmt.Fprintf(w, "%-24s  %-7s  %-10s  %-50s  %s\n", "Key", "Status", "Matched By", "Title", "Issues")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, e := range r.Entries {
		title := e.Entry.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		issues := summarizeDiscrepancies(e.Fused.Discrepancies)
		if e.Status.FailReason != "" {
			issues = e.Status.FailReason
		}
		fmt.Fprintf(w, "%-24s  %-7s  %-10s  %-50s  %s\n",
			truncateKey(e.Entry.Key, 24), e.Status.Kind, e.Status.MatchedBy, title, issues)
	}

	fmt.Fprintf(w, "\n%d ok, %d warnings, %d errors, %d not found, %d failed\n",
		r.CountOK(), r.CountWarnings(), r.CountErrors(), r.CountNotFound(), r.CountFailed())
}

// FormatJSON encodes the report as indented JSON to w.
func FormatJSON(r Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Entries)
}

func summarizeDiscrepancies(discrepancies []types.Discrepancy) string {
	if len(discrepancies) == 0 {
		return ""
	}
	fields := make([]string, len(discrepancies))
	for i, d := range discrepancies {
		fields[i] = string(d.Field)
	}
	return strings.Join(fields, ", ")
}

func truncateKey(key string, max int) string {
	if len(key) <= max {
		return key
	}
	return key[:max-3] + "..."
}
