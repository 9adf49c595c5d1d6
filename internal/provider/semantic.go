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

var semanticScholarAPIBase = "https://api.semanticscholar.org/graph/v1/paper"

// SemanticScholarProvider queries the Semantic Scholar Graph API.
type SemanticScholarProvider struct {
	Client    *http.Client
	UserAgent string
	APIKey    string
}

func (p *SemanticScholarProvider) Name() types.ProviderID { return types.ProviderSemanticScholar }

type semanticPaper struct {
	PaperID      string             `json:"paperId"`
	Title        string             `json:"title"`
	Year         int                `json:"year"`
	Venue        string             `json:"venue"`
	ExternalIDs  semanticExternalIDs `json:"externalIds"`
	Authors      []semanticAuthor   `json:"authors"`
}

type semanticExternalIDs struct {
	DOI      string `json:"DOI"`
	ArXiv    string `json:"ArXiv"`
	CorpusID int    `json:"CorpusId"`
}

type semanticAuthor struct {
	Name string `json:"name"`
}

type semanticSearchResponse struct {
	Data []semanticPaper `json:"data"`
}

func (p semanticPaper) toEntry() types.Entry {
	entry := types.Entry{
		Key:       p.PaperID,
		EntryType: "article",
		Title:     p.Title,
		Year:      p.Year,
		Venue:     p.Venue,
		DOI:       p.ExternalIDs.DOI,
		ArxivID:   p.ExternalIDs.ArXiv,
	}
	for _, a := range p.Authors {
		if a.Name != "" {
			entry.Authors = append(entry.Authors, a.Name)
		}
	}
	return entry
}

const semanticFields = "title,year,venue,externalIds,authors"

// SearchByDOI looks up a paper by its DOI.
func (p *SemanticScholarProvider) SearchByDOI(ctx context.Context, doi string) (*types.Entry, error) {
	u := fmt.Sprintf("%s/DOI:%s?fields=%s", semanticScholarAPIBase, url.PathEscape(doi), semanticFields)
	return p.getOne(ctx, u)
}

// SearchByArxivID looks up a paper by its arXiv identifier.
func (p *SemanticScholarProvider) SearchByArxivID(ctx context.Context, id string) (*types.Entry, error) {
	u := fmt.Sprintf("%s/ARXIV:%s?fields=%s", semanticScholarAPIBase, url.PathEscape(id), semanticFields)
	return p.getOne(ctx, u)
}

// SearchByTitle performs a free-text search.
func (p *SemanticScholarProvider) SearchByTitle(ctx context.Context, title string) ([]types.Entry, error) {
	u := fmt.Sprintf("%s/search?query=%s&limit=5&fields=%s", semanticScholarAPIBase, url.QueryEscape(title), semanticFields)

	resp, err := p.do(ctx, u)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	defer resp.Body.Close()

	var search semanticSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	entries := make([]types.Entry, 0, len(search.Data))
	for _, paper := range search.Data {
		entries = append(entries, paper.toEntry())
	}
	return entries, nil
}

func (p *SemanticScholarProvider) getOne(ctx context.Context, u string) (*types.Entry, error) {
	resp, err := p.do(ctx, u)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	defer resp.Body.Close()

	var paper semanticPaper
	if err := json.NewDecoder(resp.Body).Decode(&paper); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	entry := paper.toEntry()
	return &entry, nil
}

func (p *SemanticScholarProvider) do(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}
	if p.APIKey != "" {
		req.Header.Set("x-api-key", p.APIKey)
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
