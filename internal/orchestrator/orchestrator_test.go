// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/pdiddy/bibval/internal/provider"
	"github.com/pdiddy/bibval/pkg/types"
)

type mockProvider struct {
	id         types.ProviderID
	doiEntry   *types.Entry
	doiErr     error
	arxivEntry *types.Entry
	arxivErr   error
	titleHits  []types.Entry
	titleErr   error
}

func (m *mockProvider) Name() types.ProviderID { return m.id }

func (m *mockProvider) SearchByDOI(_ context.Context, _ string) (*types.Entry, error) {
	return m.doiEntry, m.doiErr
}

func (m *mockProvider) SearchByTitle(_ context.Context, _ string) ([]types.Entry, error) {
	return m.titleHits, m.titleErr
}

func (m *mockProvider) SearchByArxivID(_ context.Context, _ string) (*types.Entry, error) {
	return m.arxivEntry, m.arxivErr
}

func TestValidateEntry_DOIMatchOK(t *testing.T) {
	local := types.Entry{Key: "vaswani2017", Title: "Attention Is All You Need", Year: 2017, DOI: "10.1/x"}
	crossref := &mockProvider{
		id:       types.ProviderCrossRef,
		doiEntry: &types.Entry{Title: "Attention Is All You Need", Year: 2017, DOI: "10.1/x"},
	}

	o := New([]provider.Provider{crossref}, nil, 1)
	report := o.ValidateEntry(context.Background(), local)

	if report.Status.Kind != types.StatusOK {
		t.Fatalf("status = %q, want ok", report.Status.Kind)
	}
	if report.Status.MatchedBy != types.ProviderCrossRef {
		t.Errorf("matched_by = %q, want crossref", report.Status.MatchedBy)
	}
}

func TestValidateEntry_YearMismatchIsErrorViaDowngradeRule(t *testing.T) {
	local := types.Entry{Key: "e1", Title: "A Paper", Year: 2019, DOI: "10.1/y"}
	crossref := &mockProvider{
		id:       types.ProviderCrossRef,
		doiEntry: &types.Entry{Title: "A Paper", Year: 2020, DOI: "10.1/y"},
	}

	o := New([]provider.Provider{crossref}, nil, 1)
	report := o.ValidateEntry(context.Background(), local)

	// Fusion requires a second witness to surface a year discrepancy of its
	// own, so this only reaches Error through the pre-fusion downgrade rule
	// looking at CrossRef's individual result.
	if report.Status.Kind != types.StatusError {
		t.Fatalf("status = %q, want error", report.Status.Kind)
	}
}

func TestValidateEntry_SingleProviderTitleMismatchIsErrorViaDowngradeRule(t *testing.T) {
	local := types.Entry{Key: "e6", Title: "A Paper About Widgets", DOI: "10.1/mismatched"}
	crossref := &mockProvider{
		id:       types.ProviderCrossRef,
		doiEntry: &types.Entry{Title: "A Completely Unrelated Survey Of Gadgets", DOI: "10.1/mismatched"},
	}

	o := New([]provider.Provider{crossref}, nil, 1)
	report := o.ValidateEntry(context.Background(), local)

	// With only one provider consulted, fusion's 2-witness requirement
	// suppresses the title discrepancy entirely (fused.Discrepancies is
	// empty), so Error can only come from the pre-fusion downgrade rule
	// inspecting CrossRef's own result.
	if len(report.Fused.Discrepancies) != 0 {
		t.Fatalf("expected fusion to suppress a single-witness title discrepancy, got %+v", report.Fused.Discrepancies)
	}
	if report.Status.Kind != types.StatusError {
		t.Fatalf("status = %q, want error", report.Status.Kind)
	}
}

func TestValidateEntry_NoDOIFallsBackToTitleSearch(t *testing.T) {
	local := types.Entry{Key: "e2", Title: "A Completely Novel Title About Widgets"}
	dblp := &mockProvider{
		id: types.ProviderDBLP,
		titleHits: []types.Entry{
			{Title: "A Completely Novel Title About Widgets", Year: 2021},
		},
	}

	o := New([]provider.Provider{dblp}, nil, 1)
	report := o.ValidateEntry(context.Background(), local)

	if report.Status.Kind != types.StatusOK {
		t.Fatalf("status = %q, want ok", report.Status.Kind)
	}
	if len(report.ProviderResults) != 1 {
		t.Fatalf("len(ProviderResults) = %d, want 1", len(report.ProviderResults))
	}
}

func TestValidateEntry_NoMatchIsNotFound(t *testing.T) {
	local := types.Entry{Key: "e3", Title: "Something Nobody Has Ever Indexed"}
	dblp := &mockProvider{id: types.ProviderDBLP}

	o := New([]provider.Provider{dblp}, nil, 1)
	report := o.ValidateEntry(context.Background(), local)

	if report.Status.Kind != types.StatusNotFound {
		t.Fatalf("status = %q, want not_found", report.Status.Kind)
	}
}

func TestValidateEntry_AllProvidersFailingIsFailed(t *testing.T) {
	local := types.Entry{Key: "e4", DOI: "10.1/z"}
	crossref := &mockProvider{id: types.ProviderCrossRef, doiErr: provider.ErrNetwork}

	o := New([]provider.Provider{crossref}, nil, 1)
	report := o.ValidateEntry(context.Background(), local)

	if report.Status.Kind != types.StatusFailed {
		t.Fatalf("status = %q, want failed", report.Status.Kind)
	}
}

func TestValidateEntry_ArxivIDExtractedFromURL(t *testing.T) {
	local := types.Entry{Key: "e5", Title: "A Paper", URL: "https://arxiv.org/abs/2010.00001"}
	arxiv := &mockProvider{
		id:         types.ProviderArxiv,
		arxivEntry: &types.Entry{Title: "A Paper", Year: 2020},
	}

	o := New([]provider.Provider{arxiv}, nil, 1)
	report := o.ValidateEntry(context.Background(), local)

	if len(report.ProviderResults) != 1 {
		t.Fatalf("len(ProviderResults) = %d, want 1", len(report.ProviderResults))
	}
	if report.ProviderResults[0].Source != types.ProviderArxiv {
		t.Errorf("source = %q, want arxiv", report.ProviderResults[0].Source)
	}
}

func TestValidate_BatchPreservesCount(t *testing.T) {
	entries := []types.Entry{
		{Key: "a", Title: "Paper A", DOI: "10.1/a"},
		{Key: "b", Title: "Paper B", DOI: "10.1/b"},
		{Key: "c", Title: "Paper C", DOI: "10.1/c"},
	}
	crossref := &mockProvider{id: types.ProviderCrossRef, doiErr: errors.New("boom")}

	o := New([]provider.Provider{crossref}, nil, 2)
	reports := o.Validate(context.Background(), entries)

	if len(reports) != 3 {
		t.Fatalf("len(reports) = %d, want 3", len(reports))
	}
	if o.Progress() != 3 {
		t.Errorf("Progress() = %d, want 3", o.Progress())
	}
}

func TestValidate_EmptyBatch(t *testing.T) {
	o := New(nil, nil, 5)
	reports := o.Validate(context.Background(), nil)
	if len(reports) != 0 {
		t.Errorf("len(reports) = %d, want 0", len(reports))
	}
}
