// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data model shared across the validation pipeline:
// local bibliography entries, provider responses, discrepancies, and the
// fused per-entry report.
package types

// Entry is a single local bibliography record to be checked against
// external metadata providers.
type Entry struct {
	Key       string   `json:"key" yaml:"key"`
	EntryType string   `json:"entry_type" yaml:"entry_type"`
	Title     string   `json:"title,omitempty" yaml:"title,omitempty"`
	Authors   []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Year      int      `json:"year,omitempty" yaml:"year,omitempty"`
	Venue     string   `json:"venue,omitempty" yaml:"venue,omitempty"`
	DOI       string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	ArxivID   string   `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`
	URL       string   `json:"url,omitempty" yaml:"url,omitempty"`
}

// ProviderID identifies a metadata provider. The set is closed except for
// new providers appended at the end; existing values are never renumbered.
type ProviderID string

const (
	ProviderCrossRef        ProviderID = "crossref"
	ProviderDBLP            ProviderID = "dblp"
	ProviderArxiv           ProviderID = "arxiv"
	ProviderSemanticScholar ProviderID = "semantic_scholar"
	ProviderOpenAlex        ProviderID = "openalex"
	ProviderOpenLibrary     ProviderID = "open_library"
	ProviderOpenReview      ProviderID = "openreview"
	ProviderZenodo          ProviderID = "zenodo"
	ProviderPatentsView     ProviderID = "patentsview"
)

// Severity ranks a Discrepancy. Info < Warning < Error.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// DiscrepancyField names the Entry field a Discrepancy is about.
type DiscrepancyField string

const (
	FieldTitle   DiscrepancyField = "title"
	FieldAuthors DiscrepancyField = "authors"
	FieldYear    DiscrepancyField = "year"
	FieldVenue   DiscrepancyField = "venue"
	FieldDOI     DiscrepancyField = "doi"
)

// Discrepancy records a single mismatch between a local Entry and a
// provider's remote record, or between providers during fusion.
type Discrepancy struct {
	Field      DiscrepancyField `json:"field"`
	Severity   Severity         `json:"severity"`
	LocalValue string           `json:"local_value,omitempty"`
	RemoteValue string          `json:"remote_value,omitempty"`
	Message    string           `json:"message"`
}

// ProviderResult is what a single provider returned for one local Entry,
// together with the discrepancies the matcher found against it.
type ProviderResult struct {
	Source        ProviderID    `json:"source"`
	MatchedEntry  *Entry        `json:"matched_entry,omitempty"`
	Confidence    float64       `json:"confidence"`
	Discrepancies []Discrepancy `json:"discrepancies,omitempty"`
}

// FusedResult is the consensus view across every ProviderResult collected
// for one local Entry.
type FusedResult struct {
	Sources       []ProviderID  `json:"sources"`
	Discrepancies []Discrepancy `json:"discrepancies,omitempty"`
	HasMatches    bool          `json:"has_matches"`
}

// EntryStatus is the final verdict assigned to one local Entry after
// lookup, matching, and fusion.
type EntryStatus struct {
	Kind       StatusKind `json:"kind"`
	MatchedBy  ProviderID `json:"matched_by,omitempty"`
	FailReason string     `json:"fail_reason,omitempty"`
}

// StatusKind enumerates the possible EntryStatus outcomes.
type StatusKind string

const (
	StatusOK       StatusKind = "ok"
	StatusWarning  StatusKind = "warning"
	StatusError    StatusKind = "error"
	StatusNotFound StatusKind = "not_found"
	StatusFailed   StatusKind = "failed"
)

// EntryReport is the full validation outcome for one local Entry: its
// status plus every ProviderResult consulted along the way.
type EntryReport struct {
	Entry           Entry            `json:"entry"`
	Status          EntryStatus      `json:"status"`
	ProviderResults []ProviderResult `json:"provider_results,omitempty"`
	Fused           FusedResult      `json:"fused"`
}
