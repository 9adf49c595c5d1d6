// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/bibval/internal/httpx"
	"github.com/pdiddy/bibval/pkg/types"
)

var openAlexAPIBase = "https://api.openalex.org/works"

// OpenAlexProvider queries the OpenAlex works API.
type OpenAlexProvider struct {
	BaseProvider
	Client    *http.Client
	UserAgent string
	Email     string
}

func (p *OpenAlexProvider) Name() types.ProviderID { return types.ProviderOpenAlex }

type openAlexWork struct {
	ID                     string                  `json:"id"`
	DOI                    string                  `json:"doi"`
	Title                  string                  `json:"title"`
	PublicationYear        int                     `json:"publication_year"`
	Authorships            []openAlexAuthorship    `json:"authorships"`
	PrimaryLocation        openAlexPrimaryLocation `json:"primary_location"`
	AbstractInvertedIndex  map[string][]int        `json:"abstract_inverted_index"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	DisplayName string `json:"display_name"`
}

type openAlexPrimaryLocation struct {
	Source openAlexSource `json:"source"`
}

type openAlexSource struct {
	DisplayName string `json:"display_name"`
}

type openAlexSearchResponse struct {
	Results []openAlexWork `json:"results"`
}

func (w openAlexWork) toEntry() types.Entry {
	entry := types.Entry{
		Key:       w.ID,
		EntryType: "article",
		Title:     w.Title,
		Year:      w.PublicationYear,
		Venue:     w.PrimaryLocation.Source.DisplayName,
		DOI:       strings.TrimPrefix(w.DOI, "https://doi.org/"),
	}
	for _, a := range w.Authorships {
		if a.Author.DisplayName != "" {
			entry.Authors = append(entry.Authors, a.Author.DisplayName)
		}
	}
	return entry
}

// SearchByDOI fetches a single work by DOI.
func (p *OpenAlexProvider) SearchByDOI(ctx context.Context, doi string) (*types.Entry, error) {
	u := fmt.Sprintf("%s/doi:%s%s", openAlexAPIBase, url.PathEscape(doi), p.mailtoSuffix("?"))
	resp, err := p.do(ctx, u)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	defer resp.Body.Close()

	var work openAlexWork
	if err := json.NewDecoder(resp.Body).Decode(&work); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	entry := work.toEntry()
	return &entry, nil
}

// SearchByTitle performs a free-text title search.
func (p *OpenAlexProvider) SearchByTitle(ctx context.Context, title string) ([]types.Entry, error) {
	u := fmt.Sprintf("%s?search=%s&per-page=5%s", openAlexAPIBase, url.QueryEscape(title), p.mailtoSuffix("&"))
	resp, err := p.do(ctx, u)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	defer resp.Body.Close()

	var search openAlexSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	entries := make([]types.Entry, 0, len(search.Results))
	for _, w := range search.Results {
		entries = append(entries, w.toEntry())
	}
	return entries, nil
}

func (p *OpenAlexProvider) mailtoSuffix(sep string) string {
	if p.Email == "" {
		return ""
	}
	return fmt.Sprintf("%smailto=%s", sep, url.QueryEscape(p.Email))
}

func (p *OpenAlexProvider) do(ctx context.Context, u string) (*http.Response, error) {
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

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: unexpected status %d", ErrNetwork, resp.StatusCode)
	}
	return resp, nil
}
