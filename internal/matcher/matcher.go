// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package matcher compares a local bibliography Entry against a provider's
// remote Entry and produces Discrepancies using Jaro-Winkler string
// similarity for fuzzy fields.
package matcher

import (
	"fmt"

	"github.com/xrash/smetrics"

	"github.com/pdiddy/bibval/internal/normalize"
	"github.com/pdiddy/bibval/pkg/types"
)

// Similarity thresholds, ported from the reference matcher.
const (
	TitleMatchThreshold      = 0.85
	TitleWarningThreshold    = 0.90
	AuthorMatchThreshold     = 0.80
	VenueInfoThreshold       = 0.70
	MinTitleSimForIDLookup   = 0.75
)

// TitleSimilarity returns the Jaro-Winkler similarity of two normalized
// titles. It returns 0.0 if either title is empty.
func TitleSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	na, nb := normalize.String(a), normalize.String(b)
	if na == "" || nb == "" {
		return 0.0
	}
	return smetrics.JaroWinkler(na, nb, 0.7, 4)
}

// CompareEntries compares a local entry against one provider's matched
// remote entry and returns discrepancies in a fixed order: title, year,
// authors, missing DOI, venue.
func CompareEntries(local, remote types.Entry) []types.Discrepancy {
	var discrepancies []types.Discrepancy

	if d, ok := compareTitle(local, remote); ok {
		discrepancies = append(discrepancies, d)
	}
	if d, ok := compareYear(local, remote); ok {
		discrepancies = append(discrepancies, d)
	}
	discrepancies = append(discrepancies, compareAuthors(local, remote)...)
	if d, ok := compareMissingDOI(local, remote); ok {
		discrepancies = append(discrepancies, d)
	}
	if d, ok := compareVenue(local, remote); ok {
		discrepancies = append(discrepancies, d)
	}

	return discrepancies
}

func compareTitle(local, remote types.Entry) (types.Discrepancy, bool) {
	if local.Title == "" || remote.Title == "" {
		return types.Discrepancy{}, false
	}
	sim := TitleSimilarity(local.Title, remote.Title)
	if sim >= TitleWarningThreshold {
		return types.Discrepancy{}, false
	}
	severity := types.SeverityError
	if sim >= TitleMatchThreshold {
		severity = types.SeverityWarning
	}
	return types.Discrepancy{
		Field:       types.FieldTitle,
		Severity:    severity,
		LocalValue:  local.Title,
		RemoteValue: remote.Title,
		Message:     fmt.Sprintf("title similarity %.2f below expected match", sim),
	}, true
}

func compareYear(local, remote types.Entry) (types.Discrepancy, bool) {
	if local.Year == 0 || remote.Year == 0 || local.Year == remote.Year {
		return types.Discrepancy{}, false
	}
	return types.Discrepancy{
		Field:       types.FieldYear,
		Severity:    types.SeverityError,
		LocalValue:  fmt.Sprintf("%d", local.Year),
		RemoteValue: fmt.Sprintf("%d", remote.Year),
		Message:     "year mismatch",
	}, true
}

func compareAuthors(local, remote types.Entry) []types.Discrepancy {
	if len(local.Authors) == 0 || len(remote.Authors) == 0 {
		return nil
	}

	var out []types.Discrepancy
	if len(local.Authors) != len(remote.Authors) {
		out = append(out, types.Discrepancy{
			Field:    types.FieldAuthors,
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("author count mismatch: local %d, remote %d", len(local.Authors), len(remote.Authors)),
		})
	}

	for _, a := range local.Authors {
		_, best := FindBestMatch(a, remote.Authors, 0)
		if best < AuthorMatchThreshold {
			out = append(out, types.Discrepancy{
				Field:      types.FieldAuthors,
				Severity:   types.SeverityWarning,
				LocalValue: a,
				Message:    fmt.Sprintf("author %q has no close match (best similarity %.2f)", a, best),
			})
		}
	}

	return out
}

func compareMissingDOI(local, remote types.Entry) (types.Discrepancy, bool) {
	if local.DOI != "" || remote.DOI == "" {
		return types.Discrepancy{}, false
	}
	return types.Discrepancy{
		Field:       types.FieldDOI,
		Severity:    types.SeverityWarning,
		LocalValue:  "(none)",
		RemoteValue: remote.DOI,
		Message:     "local entry is missing a DOI present in the remote record",
	}, true
}

func compareVenue(local, remote types.Entry) (types.Discrepancy, bool) {
	if local.Venue == "" || remote.Venue == "" {
		return types.Discrepancy{}, false
	}
	sim := TitleSimilarity(local.Venue, remote.Venue)
	if sim >= VenueInfoThreshold {
		return types.Discrepancy{}, false
	}
	return types.Discrepancy{
		Field:       types.FieldVenue,
		Severity:    types.SeverityInfo,
		LocalValue:  local.Venue,
		RemoteValue: remote.Venue,
		Message:     fmt.Sprintf("venue similarity %.2f below expected match", sim),
	}, true
}

// FindBestMatch returns the candidate with the highest Jaro-Winkler
// similarity to target, provided it meets threshold, along with its
// similarity score. If threshold is 0, any non-negative similarity is
// eligible and the best one found wins (used by author comparison, which
// reports its own distinct threshold test).
func FindBestMatch(target string, candidates []string, threshold float64) (string, float64) {
	var bestCandidate string
	bestSim := -1.0

	for _, c := range candidates {
		sim := TitleSimilarity(target, c)
		if sim < threshold {
			continue
		}
		if sim > bestSim {
			bestSim = sim
			bestCandidate = c
		}
	}

	if bestSim < 0 {
		return "", 0.0
	}
	return bestCandidate, bestSim
}

// YearsCompatible reports whether two years should be considered the same
// publication year (exact match, or either is zero/unknown).
func YearsCompatible(a, b int) bool {
	return a == 0 || b == 0 || a == b
}

// IsValidIDMatch reports whether a title similarity score is high enough to
// trust an identifier-based lookup (DOI/arXiv ID) as actually referring to
// the same work.
func IsValidIDMatch(titleSim float64) bool {
	return titleSim >= MinTitleSimForIDLookup
}
