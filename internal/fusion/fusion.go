// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fusion combines multiple ProviderResults for a single local
// Entry into one FusedResult using witness-counting consensus: a
// discrepancy is only reported once enough independent providers agree on
// an alternate value.
package fusion

import (
	"fmt"
	"strings"

	"github.com/pdiddy/bibval/pkg/types"
)

// Fuse produces a consensus FusedResult from the provider results
// collected for local. Only results with a matched entry and positive
// confidence participate.
func Fuse(local types.Entry, results []types.ProviderResult) types.FusedResult {
	var usable []types.ProviderResult
	for _, r := range results {
		if r.MatchedEntry != nil && r.Confidence > 0 {
			usable = append(usable, r)
		}
	}

	if len(usable) == 0 {
		return types.FusedResult{}
	}

	var sources []types.ProviderID
	for _, r := range usable {
		sources = append(sources, r.Source)
	}

	var discrepancies []types.Discrepancy
	if d, ok := fuseYear(local, usable); ok {
		discrepancies = append(discrepancies, d)
	}
	if d, ok := fuseTitle(usable); ok {
		discrepancies = append(discrepancies, d)
	}
	if d, ok := fuseAuthors(local, usable); ok {
		discrepancies = append(discrepancies, d)
	}
	if d, ok := checkMissingDOI(local, usable); ok {
		discrepancies = append(discrepancies, d)
	}

	return types.FusedResult{
		Sources:       sources,
		Discrepancies: discrepancies,
		HasMatches:    true,
	}
}

// fuseYear only reports a year discrepancy if at least two providers agree
// on a year that differs from the local value. It reports nothing when the
// local year is unknown (zero).
func fuseYear(local types.Entry, results []types.ProviderResult) (types.Discrepancy, bool) {
	if local.Year == 0 {
		return types.Discrepancy{}, false
	}

	tally := make(map[int][]types.ProviderID)
	for _, r := range results {
		if r.MatchedEntry.Year != 0 {
			tally[r.MatchedEntry.Year] = append(tally[r.MatchedEntry.Year], r.Source)
		}
	}
	if len(tally) == 0 {
		return types.Discrepancy{}, false
	}

	var consensusYear int
	var witnesses []types.ProviderID
	for year, sources := range tally {
		if len(sources) > len(witnesses) {
			consensusYear = year
			witnesses = sources
		}
	}

	if consensusYear == local.Year || len(witnesses) < 2 {
		return types.Discrepancy{}, false
	}

	return types.Discrepancy{
		Field:       types.FieldYear,
		Severity:    types.SeverityError,
		LocalValue:  fmt.Sprintf("%d", local.Year),
		RemoteValue: fmt.Sprintf("%d", consensusYear),
		Message:     fmt.Sprintf("Year mismatch: %d vs %d (agreed by %s)", local.Year, consensusYear, joinProviderIDs(witnesses)),
	}, true
}

// joinProviderIDs renders a list of provider identifiers as a
// comma-separated string for use in discrepancy messages.
func joinProviderIDs(sources []types.ProviderID) string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// fuseTitle only reports a title discrepancy if at least two providers
// independently reported a title/error discrepancy for the same entry.
func fuseTitle(results []types.ProviderResult) (types.Discrepancy, bool) {
	var witnesses []types.ProviderID
	var first *types.Discrepancy

	for _, r := range results {
		for _, d := range r.Discrepancies {
			if d.Field == types.FieldTitle && d.Severity == types.SeverityError {
				witnesses = append(witnesses, r.Source)
				if first == nil {
					dc := d
					first = &dc
				}
				break
			}
		}
	}

	if len(witnesses) < 2 || first == nil {
		return types.Discrepancy{}, false
	}

	d := *first
	d.Message = fmt.Sprintf("%s (confirmed by %d sources)", d.Message, len(witnesses))
	return d, true
}

// fuseAuthors reports an author-count discrepancy if the modal remote
// author count (the remote length reported by the most providers) differs
// from the local count and is backed by at least two independent
// witnesses, or a single provider does when it is the only source
// available. Unlike the per-provider matcher, this looks at each
// provider's matched entry directly rather than its discrepancies, so it
// is not confused by providers that only disagree on author spelling.
func fuseAuthors(local types.Entry, results []types.ProviderResult) (types.Discrepancy, bool) {
	if len(local.Authors) == 0 {
		return types.Discrepancy{}, false
	}

	tally := make(map[int][]types.ProviderID)
	for _, r := range results {
		if r.MatchedEntry == nil || len(r.MatchedEntry.Authors) == 0 {
			continue
		}
		n := len(r.MatchedEntry.Authors)
		if n != len(local.Authors) {
			tally[n] = append(tally[n], r.Source)
		}
	}

	var modalCount int
	var witnesses []types.ProviderID
	for n, sources := range tally {
		if len(sources) > len(witnesses) {
			modalCount = n
			witnesses = sources
		}
	}

	if len(witnesses) == 0 {
		return types.Discrepancy{}, false
	}
	if len(witnesses) < 2 && !(len(results) == 1 && len(witnesses) == 1) {
		return types.Discrepancy{}, false
	}

	return types.Discrepancy{
		Field:       types.FieldAuthors,
		Severity:    types.SeverityWarning,
		LocalValue:  fmt.Sprintf("%d", len(local.Authors)),
		RemoteValue: fmt.Sprintf("%d", modalCount),
		Message:     fmt.Sprintf("author count mismatch: local %d, remote %d (agreed by %s)", len(local.Authors), modalCount, joinProviderIDs(witnesses)),
	}, true
}

// checkMissingDOI reports whether the local entry lacks a DOI that at
// least one provider supplied.
func checkMissingDOI(local types.Entry, results []types.ProviderResult) (types.Discrepancy, bool) {
	if local.DOI != "" {
		return types.Discrepancy{}, false
	}
	for _, r := range results {
		if r.MatchedEntry.DOI != "" {
			return types.Discrepancy{
				Field:       types.FieldDOI,
				Severity:    types.SeverityInfo,
				RemoteValue: r.MatchedEntry.DOI,
				Message:     "local entry is missing a DOI present in a remote record",
			}, true
		}
	}
	return types.Discrepancy{}, false
}
