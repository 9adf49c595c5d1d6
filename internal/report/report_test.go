// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pdiddy/bibval/pkg/types"
)

func sampleEntries() []types.EntryReport {
	return []types.EntryReport{
		{
			Entry:  types.Entry{Key: "vaswani2017", Title: "Attention Is All You Need"},
			Status: types.EntryStatus{Kind: types.StatusOK, MatchedBy: types.ProviderCrossRef},
		},
		{
			Entry:  types.Entry{Key: "bad2020", Title: "A Mismatched Paper"},
			Status: types.EntryStatus{Kind: types.StatusWarning, MatchedBy: types.ProviderDBLP},
			Fused: types.FusedResult{
				HasMatches:    true,
				Discrepancies: []types.Discrepancy{{Field: types.FieldYear, Severity: types.SeverityWarning}},
			},
		},
		{
			Entry:  types.Entry{Key: "missing2021", Title: "Never Indexed"},
			Status: types.EntryStatus{Kind: types.StatusNotFound},
		},
		{
			Entry:  types.Entry{Key: "down2022", Title: "Network Was Down"},
			Status: types.EntryStatus{Kind: types.StatusFailed, FailReason: "all providers failed: crossref"},
		},
	}
}

func TestNewPreservesOriginalOrder(t *testing.T) {
	original := []types.Entry{
		{Key: "c"},
		{Key: "a"},
		{Key: "b"},
	}
	// Simulate out-of-order arrival from concurrent validation.
	arrived := []types.EntryReport{
		{Entry: types.Entry{Key: "a"}},
		{Entry: types.Entry{Key: "c"}},
		{Entry: types.Entry{Key: "b"}},
	}

	r := New(arrived, original)
	if len(r.Entries) != 3 {
		t.Fatalf("len(Entries) = %d, want 3", len(r.Entries))
	}
	got := []string{r.Entries[0].Entry.Key, r.Entries[1].Entry.Key, r.Entries[2].Entry.Key}
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Entries[%d].Key = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestReportCounts(t *testing.T) {
	r := Report{Entries: sampleEntries()}

	if r.CountOK() != 1 {
		t.Errorf("CountOK() = %d, want 1", r.CountOK())
	}
	if r.CountWarnings() != 1 {
		t.Errorf("CountWarnings() = %d, want 1", r.CountWarnings())
	}
	if r.CountNotFound() != 1 {
		t.Errorf("CountNotFound() = %d, want 1", r.CountNotFound())
	}
	if r.CountFailed() != 1 {
		t.Errorf("CountFailed() = %d, want 1", r.CountFailed())
	}
	if r.CountErrors() != 0 {
		t.Errorf("CountErrors() = %d, want 0", r.CountErrors())
	}
	if !r.HasProblems() {
		t.Error("HasProblems() should be true")
	}
}

func TestReportHasProblemsFalseWhenAllOK(t *testing.T) {
	r := Report{Entries: []types.EntryReport{
		{Entry: types.Entry{Key: "a"}, Status: types.EntryStatus{Kind: types.StatusOK}},
	}}
	if r.HasProblems() {
		t.Error("HasProblems() should be false when every entry is ok")
	}
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(Report{Entries: sampleEntries()}, &buf)
	s := buf.String()

	if !strings.Contains(s, "vaswani2017") {
		t.Error("table should contain 'vaswani2017'")
	}
	if !strings.Contains(s, "1 ok, 1 warnings, 0 errors, 1 not found, 1 failed") {
		t.Errorf("table should contain a summary line, got:\n%s", s)
	}
	if !strings.Contains(s, "all providers failed: crossref") {
		t.Error("table should surface the fail reason for a failed entry")
	}
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(Report{}, &buf)
	if !strings.Contains(buf.String(), "No entries validated.") {
		t.Error("empty report should say 'No entries validated.'")
	}
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatJSON(Report{Entries: sampleEntries()}, &buf); err != nil {
		t.Fatalf("FormatJSON: %v", err)
	}

	var parsed []types.EntryReport
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(parsed) != 4 {
		t.Errorf("len(parsed) = %d, want 4", len(parsed))
	}
	if parsed[0].Entry.Key != "vaswani2017" {
		t.Errorf("parsed[0].Entry.Key = %q", parsed[0].Entry.Key)
	}
}

func TestSummarizeDiscrepancies(t *testing.T) {
	s := summarizeDiscrepancies([]types.Discrepancy{
		{Field: types.FieldYear},
		{Field: types.FieldTitle},
	})
	if s != "year, title" {
		t.Errorf("summarizeDiscrepancies = %q, want %q", s, "year, title")
	}
	if summarizeDiscrepancies(nil) != "" {
		t.Error("summarizeDiscrepancies(nil) should be empty")
	}
}
