// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fusion

import (
	"testing"

	"github.com/pdiddy/bibval/pkg/types"
)

func TestFuse_YearConsensus(t *testing.T) {
	local := types.Entry{Title: "A Paper", Year: 2019}
	results := []types.ProviderResult{
		{Source: types.ProviderCrossRef, Confidence: 1.0, MatchedEntry: &types.Entry{Title: "A Paper", Year: 2020}},
		{Source: types.ProviderDBLP, Confidence: 0.9, MatchedEntry: &types.Entry{Title: "A Paper", Year: 2020}},
	}

	fused := Fuse(local, results)
	if !fused.HasMatches {
		t.Fatal("expected HasMatches true")
	}

	found := false
	for _, d := range fused.Discrepancies {
		if d.Field == types.FieldYear {
			found = true
			if d.RemoteValue != "2020" {
				t.Errorf("expected consensus year 2020, got %s", d.RemoteValue)
			}
		}
	}
	if !found {
		t.Error("expected a year discrepancy from consensus")
	}
}

func TestFuse_NoConsensusNoError(t *testing.T) {
	local := types.Entry{Title: "A Paper", Year: 2019}
	results := []types.ProviderResult{
		{Source: types.ProviderCrossRef, Confidence: 1.0, MatchedEntry: &types.Entry{Title: "A Paper", Year: 2020}},
		{Source: types.ProviderDBLP, Confidence: 0.9, MatchedEntry: &types.Entry{Title: "A Paper", Year: 2021}},
	}

	fused := Fuse(local, results)
	for _, d := range fused.Discrepancies {
		if d.Field == types.FieldYear {
			t.Error("did not expect a year discrepancy without a 2-source consensus")
		}
	}
}

func TestFuse_EmptyResults(t *testing.T) {
	fused := Fuse(types.Entry{Title: "X"}, nil)
	if fused.HasMatches {
		t.Error("expected HasMatches false for no usable results")
	}
	if len(fused.Discrepancies) != 0 {
		t.Error("expected no discrepancies for no usable results")
	}
}

func TestFuse_FiltersUnconfidentResults(t *testing.T) {
	local := types.Entry{Title: "A Paper"}
	results := []types.ProviderResult{
		{Source: types.ProviderCrossRef, Confidence: 0, MatchedEntry: &types.Entry{Title: "A Paper"}},
		{Source: types.ProviderDBLP, Confidence: 0, MatchedEntry: nil},
	}
	fused := Fuse(local, results)
	if fused.HasMatches {
		t.Error("expected HasMatches false when no result has positive confidence")
	}
}

func TestFuse_TitleConfirmedByTwoSources(t *testing.T) {
	local := types.Entry{Title: "Local Title"}
	titleDisc := types.Discrepancy{Field: types.FieldTitle, Severity: types.SeverityError, Message: "title similarity low"}
	results := []types.ProviderResult{
		{Source: types.ProviderCrossRef, Confidence: 1.0, MatchedEntry: &types.Entry{Title: "Other Title"}, Discrepancies: []types.Discrepancy{titleDisc}},
		{Source: types.ProviderDBLP, Confidence: 1.0, MatchedEntry: &types.Entry{Title: "Other Title"}, Discrepancies: []types.Discrepancy{titleDisc}},
	}

	fused := Fuse(local, results)
	found := false
	for _, d := range fused.Discrepancies {
		if d.Field == types.FieldTitle {
			found = true
		}
	}
	if !found {
		t.Error("expected a confirmed title discrepancy with 2 witnesses")
	}
}

func TestFuse_AuthorCountConsensus(t *testing.T) {
	local := types.Entry{Title: "A Paper", Authors: []string{"Jane Doe", "John Roe"}}
	results := []types.ProviderResult{
		{Source: types.ProviderCrossRef, Confidence: 1.0, MatchedEntry: &types.Entry{Title: "A Paper", Authors: []string{"Jane Doe", "John Roe", "Amy Koe"}}},
		{Source: types.ProviderDBLP, Confidence: 0.9, MatchedEntry: &types.Entry{Title: "A Paper", Authors: []string{"Jane Doe", "John Roe", "Amy Koe"}}},
	}

	fused := Fuse(local, results)
	found := false
	for _, d := range fused.Discrepancies {
		if d.Field == types.FieldAuthors {
			found = true
			if d.RemoteValue != "3" {
				t.Errorf("expected modal remote count 3, got %s", d.RemoteValue)
			}
		}
	}
	if !found {
		t.Error("expected an author-count discrepancy from consensus")
	}
}

func TestFuse_AuthorSpellingOnlyDoesNotTriggerCountConsensus(t *testing.T) {
	local := types.Entry{Title: "A Paper", Authors: []string{"Jane Doe", "John Roe"}}
	spellingDisc := types.Discrepancy{Field: types.FieldAuthors, Severity: types.SeverityWarning, Message: "author spelling mismatch"}
	results := []types.ProviderResult{
		{Source: types.ProviderCrossRef, Confidence: 1.0, MatchedEntry: &types.Entry{Title: "A Paper", Authors: []string{"Jane Doe", "John Roe"}}, Discrepancies: []types.Discrepancy{spellingDisc}},
		{Source: types.ProviderDBLP, Confidence: 0.9, MatchedEntry: &types.Entry{Title: "A Paper", Authors: []string{"Jane Doe", "John Roe"}}, Discrepancies: []types.Discrepancy{spellingDisc}},
	}

	fused := Fuse(local, results)
	for _, d := range fused.Discrepancies {
		if d.Field == types.FieldAuthors {
			t.Error("did not expect an author-count discrepancy when remote lengths match local")
		}
	}
}

func TestFuse_AuthorCountDisagreementNoConsensus(t *testing.T) {
	local := types.Entry{Title: "A Paper", Authors: []string{"Jane Doe", "John Roe", "Amy Koe", "Sam Yoe"}}
	results := []types.ProviderResult{
		{Source: types.ProviderCrossRef, Confidence: 1.0, MatchedEntry: &types.Entry{Title: "A Paper", Authors: []string{"Jane Doe", "John Roe", "Amy Koe"}}},
		{Source: types.ProviderDBLP, Confidence: 0.9, MatchedEntry: &types.Entry{Title: "A Paper", Authors: []string{"Jane Doe", "John Roe", "Amy Koe", "Sam Yoe", "Kim Loe"}}},
	}

	fused := Fuse(local, results)
	for _, d := range fused.Discrepancies {
		if d.Field == types.FieldAuthors {
			t.Error("did not expect an author-count discrepancy when the two dissenters disagree with each other")
		}
	}
}

func TestFuse_MissingDOI(t *testing.T) {
	local := types.Entry{Title: "A Paper"}
	results := []types.ProviderResult{
		{Source: types.ProviderCrossRef, Confidence: 1.0, MatchedEntry: &types.Entry{Title: "A Paper", DOI: "10.1/abc"}},
	}
	fused := Fuse(local, results)
	found := false
	for _, d := range fused.Discrepancies {
		if d.Field == types.FieldDOI {
			found = true
		}
	}
	if !found {
		t.Error("expected a missing DOI discrepancy")
	}
}
