// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/bibval/internal/httpx"
	"github.com/pdiddy/bibval/pkg/types"
)

var dblpAPIBase = "https://dblp.org/search/publ/api"

// DBLPProvider queries the DBLP publication search API. DBLP has no native
// DOI search endpoint, so SearchByDOI delegates to a title search using the
// DOI string itself and filters for a result whose DOI matches.
type DBLPProvider struct {
	BaseProvider
	Client    *http.Client
	UserAgent string
}

func (p *DBLPProvider) Name() types.ProviderID { return types.ProviderDBLP }

type dblpEnvelope struct {
	Result struct {
		Hits struct {
			Hit []dblpHit `json:"hit"`
		} `json:"hits"`
	} `json:"result"`
}

type dblpHit struct {
	Info dblpInfo `json:"info"`
}

type dblpInfo struct {
	Title   string          `json:"title"`
	Venue   string          `json:"venue"`
	Year    string          `json:"year"`
	DOI     string          `json:"doi"`
	Authors json.RawMessage `json:"authors"`
}

type dblpAuthorList struct {
	Author json.RawMessage `json:"author"`
}

func (info dblpInfo) toEntry() types.Entry {
	entry := types.Entry{
		EntryType: "article",
		Title:     strings.TrimSuffix(info.Title, "."),
		Venue:     info.Venue,
		DOI:       info.DOI,
	}
	if y, err := strconv.Atoi(info.Year); err == nil {
		entry.Year = y
	}
	entry.Authors = parseDBLPAuthors(info.Authors)
	return entry
}

// parseDBLPAuthors handles the shapes DBLP returns for the "authors"
// field: absent, a single author object/string, or a list of them.
func parseDBLPAuthors(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var list dblpAuthorList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return parseDBLPAuthorField(list.Author)
}

func parseDBLPAuthorField(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	// Try a list of author entries first.
	var many []json.RawMessage
	if err := json.Unmarshal(raw, &many); err == nil {
		var names []string
		for _, m := range many {
			if name, ok := decodeDBLPAuthor(m); ok {
				names = append(names, name)
			}
		}
		return names
	}

	// Fall back to a single author entry.
	if name, ok := decodeDBLPAuthor(raw); ok {
		return []string{name}
	}
	return nil
}

func decodeDBLPAuthor(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var complex struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &complex); err == nil && complex.Text != "" {
		return complex.Text, true
	}
	return "", false
}

// SearchByDOI searches by the DOI string and returns the first result whose
// own DOI matches, since DBLP has no direct DOI lookup.
func (p *DBLPProvider) SearchByDOI(ctx context.Context, doi string) (*types.Entry, error) {
	entries, err := p.SearchByTitle(ctx, doi)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if strings.EqualFold(e.DOI, doi) {
			return &e, nil
		}
	}
	return nil, nil
}

// SearchByTitle performs a free-text publication search.
func (p *DBLPProvider) SearchByTitle(ctx context.Context, title string) ([]types.Entry, error) {
	u := fmt.Sprintf("%s?q=%s&format=json&h=5", dblpAPIBase, url.QueryEscape(title))

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

	var env dblpEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	entries := make([]types.Entry, 0, len(env.Result.Hits.Hit))
	for _, hit := range env.Result.Hits.Hit {
		entries = append(entries, hit.Info.toEntry())
	}
	return entries, nil
}
