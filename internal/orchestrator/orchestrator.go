// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orchestrator drives the per-entry lookup cascade (DOI, then
// arXiv, then title search), fuses the resulting provider responses, and
// assigns each local entry a final status. It fans a batch of entries out
// across a bounded pool of goroutines.
package orchestrator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pdiddy/bibval/internal/cache"
	"github.com/pdiddy/bibval/internal/fusion"
	"github.com/pdiddy/bibval/internal/identify"
	"github.com/pdiddy/bibval/internal/matcher"
	"github.com/pdiddy/bibval/internal/provider"
	"github.com/pdiddy/bibval/pkg/types"
)

const interProviderTitleSearchDelay = 200 * time.Millisecond

// Orchestrator owns the set of enabled providers and an optional cache and
// runs the validation strategy for each local entry.
type Orchestrator struct {
	Providers   []provider.Provider
	Cache       *cache.Cache
	Concurrency int

	// providerByID indexes Providers for direct dispatch (DOI/arXiv paths
	// only consult the providers relevant to that identifier kind).
	providerByID map[types.ProviderID]provider.Provider

	progress atomic.Int64
}

// New builds an Orchestrator from the given providers.
func New(providers []provider.Provider, cch *cache.Cache, concurrency int) *Orchestrator {
	if concurrency <= 0 {
		concurrency = 20
	}
	byID := make(map[types.ProviderID]provider.Provider, len(providers))
	for _, p := range providers {
		byID[p.Name()] = p
	}
	return &Orchestrator{
		Providers:    providers,
		Cache:        cch,
		Concurrency:  concurrency,
		providerByID: byID,
	}
}

// Progress returns the number of entries validated so far in the current
// or most recent Validate call. Safe to read concurrently.
func (o *Orchestrator) Progress() int64 {
	return o.progress.Load()
}

// Validate runs ValidateEntry for every entry in entries with bounded
// concurrency, and returns reports in the order the entries completed
// (which is not necessarily the input order).
func (o *Orchestrator) Validate(ctx context.Context, entries []types.Entry) []types.EntryReport {
	o.progress.Store(0)

	jobs := make(chan types.Entry)
	results := make(chan types.EntryReport)

	var wg sync.WaitGroup
	workers := o.Concurrency
	if workers > len(entries) && len(entries) > 0 {
		workers = len(entries)
	}
	if workers <= 0 {
		workers = 1
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				report := o.ValidateEntry(ctx, entry)
				o.progress.Add(1)
				select {
				case results <- report:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, e := range entries {
			select {
			case jobs <- e:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	reports := make([]types.EntryReport, 0, len(entries))
	for r := range results {
		reports = append(reports, r)
	}
	return reports
}

// ValidateEntry runs the DOI -> arXiv -> title-search cascade for a single
// local entry, fuses the collected provider results, and assigns a final
// status.
func (o *Orchestrator) ValidateEntry(ctx context.Context, local types.Entry) types.EntryReport {
	var results []types.ProviderResult
	var failures []string

	if local.DOI != "" {
		doiResults, doiFailures := o.lookupByDOI(ctx, local)
		results = append(results, doiResults...)
		failures = append(failures, doiFailures...)
	}

	arxivID := local.ArxivID
	if arxivID == "" && local.URL != "" {
		arxivID = identify.ArxivIDFromURL(local.URL)
	}
	if arxivID != "" {
		arxivResults, arxivFailures := o.lookupByArxivID(ctx, local, arxivID)
		results = append(results, arxivResults...)
		failures = append(failures, arxivFailures...)
	}

	if len(results) == 0 && local.Title != "" {
		titleResults, titleFailures := o.lookupByTitle(ctx, local)
		results = append(results, titleResults...)
		failures = append(failures, titleFailures...)
	}

	fused := fusion.Fuse(local, results)
	status := assignStatus(local, results, fused, failures)

	return types.EntryReport{
		Entry:           local,
		Status:          status,
		ProviderResults: results,
		Fused:           fused,
	}
}

func (o *Orchestrator) lookupByDOI(ctx context.Context, local types.Entry) ([]types.ProviderResult, []string) {
	crossref, ok := o.providerByID[types.ProviderCrossRef]
	if !ok {
		return nil, nil
	}

	var cached types.Entry
	if o.Cache != nil {
		if found, err := cache.Get(ctx, o.Cache, "crossref_doi", local.DOI, &cached); err == nil && found {
			return []types.ProviderResult{o.toResult(crossref.Name(), local, &cached)}, nil
		}
	}

	remote, err := crossref.SearchByDOI(ctx, local.DOI)
	if err != nil {
		if errors.Is(err, provider.ErrRateLimited) || errors.Is(err, provider.ErrNetwork) || errors.Is(err, provider.ErrParse) {
			return nil, []string{string(crossref.Name())}
		}
		return nil, nil
	}
	if remote == nil {
		return nil, nil
	}

	if o.Cache != nil {
		_ = cache.Set(ctx, o.Cache, "crossref_doi", local.DOI, *remote)
	}

	return []types.ProviderResult{o.toResult(crossref.Name(), local, remote)}, nil
}

func (o *Orchestrator) lookupByArxivID(ctx context.Context, local types.Entry, arxivID string) ([]types.ProviderResult, []string) {
	var results []types.ProviderResult
	var failures []string

	for _, name := range []types.ProviderID{types.ProviderArxiv, types.ProviderSemanticScholar} {
		p, ok := o.providerByID[name]
		if !ok {
			continue
		}
		remote, err := p.SearchByArxivID(ctx, arxivID)
		if err != nil {
			failures = append(failures, string(name))
			continue
		}
		if remote == nil {
			continue
		}
		confidence := 0.95
		if name == types.ProviderSemanticScholar {
			confidence = 0.9
		}
		results = append(results, o.toResultWithConfidence(name, local, remote, confidence))
	}

	return results, failures
}

func (o *Orchestrator) lookupByTitle(ctx context.Context, local types.Entry) ([]types.ProviderResult, []string) {
	var results []types.ProviderResult
	var failures []string

	order := []types.ProviderID{
		types.ProviderDBLP,
		types.ProviderSemanticScholar,
		types.ProviderOpenAlex,
		types.ProviderOpenLibrary,
		types.ProviderOpenReview,
		types.ProviderZenodo,
	}
	if local.EntryType == "patent" || identify.IsPatentID(local.Key) {
		order = append(order, types.ProviderPatentsView)
	}

	first := true
	for _, name := range order {
		p, ok := o.providerByID[name]
		if !ok {
			continue
		}
		if !first {
			select {
			case <-time.After(interProviderTitleSearchDelay):
			case <-ctx.Done():
				return results, failures
			}
		}
		first = false

		candidates, err := p.SearchByTitle(ctx, local.Title)
		if err != nil {
			failures = append(failures, string(name))
			continue
		}
		if len(candidates) == 0 {
			continue
		}

		best, sim := matcher.FindBestMatch(local.Title, titlesOf(candidates), matcher.TitleMatchThreshold)
		if best == "" {
			continue
		}
		matched := candidateByTitle(candidates, best)
		if matched == nil {
			continue
		}
		results = append(results, o.toResultWithConfidence(name, local, matched, sim))
	}

	return results, failures
}

func titlesOf(entries []types.Entry) []string {
	titles := make([]string, len(entries))
	for i, e := range entries {
		titles[i] = e.Title
	}
	return titles
}

func candidateByTitle(entries []types.Entry, title string) *types.Entry {
	for i := range entries {
		if entries[i].Title == title {
			return &entries[i]
		}
	}
	return nil
}

func (o *Orchestrator) toResult(source types.ProviderID, local types.Entry, remote *types.Entry) types.ProviderResult {
	return o.toResultWithConfidence(source, local, remote, confidenceFor(local, remote))
}

func (o *Orchestrator) toResultWithConfidence(source types.ProviderID, local types.Entry, remote *types.Entry, confidence float64) types.ProviderResult {
	return types.ProviderResult{
		Source:        source,
		MatchedEntry:  remote,
		Confidence:    confidence,
		Discrepancies: matcher.CompareEntries(local, *remote),
	}
}

func confidenceFor(local types.Entry, remote *types.Entry) float64 {
	if local.Title == "" || remote.Title == "" {
		return 0.8
	}
	sim := matcher.TitleSimilarity(local.Title, remote.Title)
	if sim >= matcher.TitleWarningThreshold {
		return 1.0
	}
	return 0.8
}

// assignStatus implements the final status-assignment algorithm. When
// nothing matched, the entry is Failed if at least one provider errored
// and NotFound otherwise. When the fused result carries discrepancies, the
// entry is Error if the worst of them is an error and Warning otherwise;
// when it carries none, the worst severity on any individual provider
// result decides between Error, Warning and OK.
func assignStatus(local types.Entry, results []types.ProviderResult, fused types.FusedResult, failures []string) types.EntryStatus {
	if !fused.HasMatches {
		if len(results) == 0 && len(failures) > 0 {
			return types.EntryStatus{Kind: types.StatusFailed, FailReason: "all providers failed: " + joinUnique(failures)}
		}
		return types.EntryStatus{Kind: types.StatusNotFound}
	}

	worst := types.SeverityInfo
	hasDiscrepancy := false
	for _, d := range fused.Discrepancies {
		hasDiscrepancy = true
		if d.Severity > worst {
			worst = d.Severity
		}
	}

	matchedBy := types.ProviderID("")
	if len(results) > 0 {
		matchedBy = results[0].Source
	}

	if !hasDiscrepancy {
		// Fusion suppresses discrepancies that lack a second witness, but a
		// single dissenting provider's own finding still downgrades an
		// otherwise-clean verdict.
		switch worstPreFusionSeverity(results) {
		case types.SeverityError:
			return types.EntryStatus{Kind: types.StatusError, MatchedBy: matchedBy}
		case types.SeverityWarning:
			return types.EntryStatus{Kind: types.StatusWarning, MatchedBy: matchedBy}
		default:
			return types.EntryStatus{Kind: types.StatusOK, MatchedBy: matchedBy}
		}
	}

	switch worst {
	case types.SeverityError:
		return types.EntryStatus{Kind: types.StatusError, MatchedBy: matchedBy}
	default:
		return types.EntryStatus{Kind: types.StatusWarning, MatchedBy: matchedBy}
	}
}

// worstPreFusionSeverity returns the highest discrepancy severity recorded
// on any individual provider result, or SeverityInfo if none carry one.
func worstPreFusionSeverity(results []types.ProviderResult) types.Severity {
	worst := types.SeverityInfo
	for _, r := range results {
		for _, d := range r.Discrepancies {
			if d.Severity > worst {
				worst = d.Severity
			}
		}
	}
	return worst
}

func joinUnique(items []string) string {
	seen := make(map[string]bool)
	var out string
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		if out != "" {
			out += ", "
		}
		out += it
	}
	return out
}
