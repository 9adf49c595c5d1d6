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

var openLibraryAPIBase = "https://openlibrary.org/search.json"

// OpenLibraryProvider queries the Open Library search API. Open Library
// indexes books, not papers, so DOI and arXiv lookups are unsupported; only
// title search is implemented, mapped analogously to the other JSON search
// adapters.
type OpenLibraryProvider struct {
	BaseProvider
	Client    *http.Client
	UserAgent string
}

func (p *OpenLibraryProvider) Name() types.ProviderID { return types.ProviderOpenLibrary }

// SearchByDOI is unsupported by Open Library.
func (p *OpenLibraryProvider) SearchByDOI(ctx context.Context, doi string) (*types.Entry, error) {
	return nil, nil
}

type openLibraryResponse struct {
	Docs []openLibraryDoc `json:"docs"`
}

type openLibraryDoc struct {
	Key            string   `json:"key"`
	Title          string   `json:"title"`
	AuthorName     []string `json:"author_name"`
	FirstPublishYear int    `json:"first_publish_year"`
	Publisher      []string `json:"publisher"`
}

func (d openLibraryDoc) toEntry() types.Entry {
	entry := types.Entry{
		Key:       d.Key,
		EntryType: "book",
		Title:     d.Title,
		Authors:   d.AuthorName,
		Year:      d.FirstPublishYear,
	}
	if len(d.Publisher) > 0 {
		entry.Venue = d.Publisher[0]
	}
	return entry
}

// SearchByTitle performs a free-text title search.
func (p *OpenLibraryProvider) SearchByTitle(ctx context.Context, title string) ([]types.Entry, error) {
	u := fmt.Sprintf("%s?title=%s&limit=5", openLibraryAPIBase, url.QueryEscape(title))

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

	var search openLibraryResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	entries := make([]types.Entry, 0, len(search.Docs))
	for _, d := range search.Docs {
		entries = append(entries, d.toEntry())
	}
	return entries, nil
}
