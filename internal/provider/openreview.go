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

var openReviewAPIBase = "https://api.openreview.net/notes/search"

// OpenReviewProvider queries the OpenReview notes search API, mapped
// analogously to the Semantic Scholar adapter's nested-content JSON shape.
type OpenReviewProvider struct {
	BaseProvider
	Client    *http.Client
	UserAgent string
}

func (p *OpenReviewProvider) Name() types.ProviderID { return types.ProviderOpenReview }

// SearchByDOI is unsupported by OpenReview, which does not mint DOIs for
// most submissions.
func (p *OpenReviewProvider) SearchByDOI(ctx context.Context, doi string) (*types.Entry, error) {
	return nil, nil
}

type openReviewSearchResponse struct {
	Notes []openReviewNote `json:"notes"`
}

type openReviewNote struct {
	ID      string             `json:"id"`
	Content openReviewContent  `json:"content"`
}

type openReviewContent struct {
	Title     openReviewField `json:"title"`
	Authors   openReviewField `json:"authors"`
	Venue     openReviewField `json:"venue"`
	Year      openReviewField `json:"year"`
}

// openReviewField models OpenReview's "value" wrapper used in its newer API
// note schema, falling back to a raw string for older notes.
type openReviewField struct {
	Value json.RawMessage `json:"value"`
}

func (f *openReviewField) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		f.Value = wrapped.Value
		return nil
	}
	f.Value = append(json.RawMessage(nil), data...)
	return nil
}

func (f openReviewField) asString() string {
	var s string
	if err := json.Unmarshal(f.Value, &s); err == nil {
		return s
	}
	return ""
}

func (f openReviewField) asStrings() []string {
	var ss []string
	if err := json.Unmarshal(f.Value, &ss); err == nil {
		return ss
	}
	return nil
}

func (n openReviewNote) toEntry() types.Entry {
	entry := types.Entry{
		Key:       n.ID,
		EntryType: "inproceedings",
		Title:     n.Content.Title.asString(),
		Authors:   n.Content.Authors.asStrings(),
		Venue:     n.Content.Venue.asString(),
	}
	if y := n.Content.Year.asString(); y != "" {
		fmt.Sscanf(y, "%d", &entry.Year)
	}
	return entry
}

// SearchByTitle performs a free-text note search.
func (p *OpenReviewProvider) SearchByTitle(ctx context.Context, title string) ([]types.Entry, error) {
	u := fmt.Sprintf("%s?term=%s&limit=5", openReviewAPIBase, url.QueryEscape(title))

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

	var search openReviewSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	entries := make([]types.Entry, 0, len(search.Notes))
	for _, n := range search.Notes {
		entries = append(entries, n.toEntry())
	}
	return entries, nil
}
