// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/bibval/internal/httpx"
	"github.com/pdiddy/bibval/pkg/types"
)

var crossRefAPIBase = "https://api.crossref.org/works"

// CrossRefProvider queries the CrossRef REST API.
type CrossRefProvider struct {
	BaseProvider
	Client    *http.Client
	UserAgent string
}

func (p *CrossRefProvider) Name() types.ProviderID { return types.ProviderCrossRef }

type crossRefEnvelope struct {
	Status  string          `json:"status"`
	Message json.RawMessage `json:"message"`
}

type crossRefWork struct {
	DOI             string            `json:"DOI"`
	Title           []string          `json:"title"`
	Author          []crossRefAuthor  `json:"author"`
	ContainerTitle  []string          `json:"container-title"`
	Published       *crossRefDate     `json:"published"`
	PublishedPrint  *crossRefDate     `json:"published-print"`
	PublishedOnline *crossRefDate     `json:"published-online"`
	Type            string            `json:"type"`
}

type crossRefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

type crossRefDate struct {
	DateParts [][]int `json:"date-parts"`
}

type crossRefSearchResult struct {
	Items []crossRefWork `json:"items"`
}

func (w crossRefWork) toEntry() types.Entry {
	entry := types.Entry{
		Key:       w.DOI,
		EntryType: w.Type,
		DOI:       w.DOI,
	}
	if entry.EntryType == "" {
		entry.EntryType = "article"
	}
	if len(w.Title) > 0 {
		entry.Title = w.Title[0]
	}
	if len(w.ContainerTitle) > 0 {
		entry.Venue = w.ContainerTitle[0]
	}

	for _, a := range w.Author {
		if a.Name != "" {
			entry.Authors = append(entry.Authors, a.Name)
			continue
		}
		name := a.Given
		if a.Family != "" {
			if name != "" {
				name += " "
			}
			name += a.Family
		}
		if name != "" {
			entry.Authors = append(entry.Authors, name)
		}
	}

	date := w.Published
	if date == nil {
		date = w.PublishedPrint
	}
	if date == nil {
		date = w.PublishedOnline
	}
	if date != nil && len(date.DateParts) > 0 && len(date.DateParts[0]) > 0 {
		entry.Year = date.DateParts[0][0]
	}

	return entry
}

// SearchByDOI fetches a single work by DOI.
func (p *CrossRefProvider) SearchByDOI(ctx context.Context, doi string) (*types.Entry, error) {
	u := fmt.Sprintf("%s/%s", crossRefAPIBase, url.PathEscape(doi))
	resp, err := p.get(ctx, u)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}

	var work crossRefWork
	if err := json.Unmarshal(resp.Message, &work); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	entry := work.toEntry()
	return &entry, nil
}

// SearchByTitle performs a free-text title search.
func (p *CrossRefProvider) SearchByTitle(ctx context.Context, title string) ([]types.Entry, error) {
	u := fmt.Sprintf("%s?query.title=%s&rows=5", crossRefAPIBase, url.QueryEscape(title))
	resp, err := p.get(ctx, u)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}

	var search crossRefSearchResult
	if err := json.Unmarshal(resp.Message, &search); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(search.Items) == 0 {
		// Some queries return a single work rather than a search result.
		var work crossRefWork
		if err := json.Unmarshal(resp.Message, &work); err == nil && work.DOI != "" {
			return []types.Entry{work.toEntry()}, nil
		}
	}

	entries := make([]types.Entry, 0, len(search.Items))
	for _, w := range search.Items {
		entries = append(entries, w.toEntry())
	}
	return entries, nil
}

func (p *CrossRefProvider) get(ctx context.Context, u string) (*crossRefEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	resp, err := httpx.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrNetwork, resp.StatusCode)
	}

	var env crossRefEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if env.Status != "ok" {
		return nil, nil
	}
	return &env, nil
}
