// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/bibval/internal/identify"
	"github.com/pdiddy/bibval/pkg/types"
)

// patentsViewSearchBase is the PatentsView patent search endpoint.
var patentsViewSearchBase = "https://search.patentsview.org/api/v1/patent/"

const patentsViewFields = `["patent_id","patent_title","patent_date","inventors.inventor_name_last"]`

// PatentsViewProvider queries the PatentsView patent search API. It is a
// bonus ninth provider for local entries whose entry type or identifier
// marks them as a patent rather than a paper.
type PatentsViewProvider struct {
	BaseProvider
	Client *http.Client
	APIKey string
}

func (p *PatentsViewProvider) Name() types.ProviderID { return types.ProviderPatentsView }

type patentsViewResponse struct {
	Patents []patentsViewPatent `json:"patents"`
}

type patentsViewPatent struct {
	PatentID    string                `json:"patent_id"`
	PatentTitle string                `json:"patent_title"`
	PatentDate  string                `json:"patent_date"`
	Inventors   []patentsViewInventor `json:"inventors"`
}

type patentsViewInventor struct {
	InventorNameLast string `json:"inventor_name_last"`
}

func (pat patentsViewPatent) toEntry() types.Entry {
	entry := types.Entry{
		Key:       "US" + pat.PatentID,
		EntryType: "patent",
		Title:     pat.PatentTitle,
	}
	if y, ok := identify.YearFromString(pat.PatentDate); ok {
		entry.Year = y
	}
	for _, inv := range pat.Inventors {
		if inv.InventorNameLast != "" {
			entry.Authors = append(entry.Authors, inv.InventorNameLast)
		}
	}
	return entry
}

// SearchByDOI is unsupported: patents are identified by patent number, not DOI.
func (p *PatentsViewProvider) SearchByDOI(ctx context.Context, doi string) (*types.Entry, error) {
	return nil, nil
}

// SearchByPatentID looks up a single patent by its "US..." identifier.
func (p *PatentsViewProvider) SearchByPatentID(ctx context.Context, patentID string) (*types.Entry, error) {
	number := strings.TrimPrefix(patentID, "US")
	q := fmt.Sprintf(`{"patent_id":"%s"}`, escapeJSON(number))
	patents, err := p.search(ctx, q, 1)
	if err != nil {
		return nil, err
	}
	if len(patents) == 0 {
		return nil, nil
	}
	entry := patents[0].toEntry()
	return &entry, nil
}

// SearchByTitle performs a free-text title search.
func (p *PatentsViewProvider) SearchByTitle(ctx context.Context, title string) ([]types.Entry, error) {
	q := fmt.Sprintf(`{"_text_any":{"patent_title":"%s"}}`, escapeJSON(title))
	patents, err := p.search(ctx, q, 5)
	if err != nil {
		return nil, err
	}
	entries := make([]types.Entry, 0, len(patents))
	for _, pat := range patents {
		entries = append(entries, pat.toEntry())
	}
	return entries, nil
}

func (p *PatentsViewProvider) search(ctx context.Context, query string, perPage int) ([]patentsViewPatent, error) {
	params := url.Values{
		"q": {query},
		"f": {patentsViewFields},
		"o": {fmt.Sprintf(`{"per_page":%d}`, perPage)},
	}
	reqURL := patentsViewSearchBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if p.APIKey != "" {
		req.Header.Set("X-Api-Key", p.APIKey)
	}

	resp, err := p.Client.Do(req)
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

	var pvr patentsViewResponse
	if err := json.NewDecoder(resp.Body).Decode(&pvr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return pvr.Patents, nil
}

func escapeJSON(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
