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

var zenodoAPIBase = "https://zenodo.org/api/records"

// ZenodoProvider queries the Zenodo records search API.
type ZenodoProvider struct {
	BaseProvider
	Client    *http.Client
	UserAgent string
}

func (p *ZenodoProvider) Name() types.ProviderID { return types.ProviderZenodo }

type zenodoSearchResponse struct {
	Hits struct {
		Hits []zenodoRecord `json:"hits"`
	} `json:"hits"`
}

type zenodoRecord struct {
	ID       int            `json:"id"`
	Metadata zenodoMetadata `json:"metadata"`
}

type zenodoMetadata struct {
	Title           string            `json:"title"`
	Creators        []zenodoCreator   `json:"creators"`
	PublicationDate string            `json:"publication_date"`
	DOI             string            `json:"doi"`
	ResourceType    zenodoResourceType `json:"resource_type"`
}

type zenodoCreator struct {
	Name string `json:"name"`
}

type zenodoResourceType struct {
	Type string `json:"type"`
}

func (r zenodoRecord) toEntry() types.Entry {
	entryType := "misc"
	switch r.Metadata.ResourceType.Type {
	case "software":
		entryType = "software"
	case "dataset":
		entryType = "dataset"
	case "publication":
		entryType = "article"
	}

	entry := types.Entry{
		Key:       strconv.Itoa(r.ID),
		EntryType: entryType,
		Title:     r.Metadata.Title,
		DOI:       r.Metadata.DOI,
	}

	if idx := strings.Index(r.Metadata.PublicationDate, "-"); idx > 0 {
		if y, err := strconv.Atoi(r.Metadata.PublicationDate[:idx]); err == nil {
			entry.Year = y
		}
	} else if y, err := strconv.Atoi(r.Metadata.PublicationDate); err == nil {
		entry.Year = y
	}

	for _, c := range r.Metadata.Creators {
		if c.Name != "" {
			entry.Authors = append(entry.Authors, c.Name)
		}
	}

	return entry
}

// SearchByDOI searches for a record by DOI. Zenodo DOIs follow the
// 10.5281/zenodo.XXXXXXX scheme.
func (p *ZenodoProvider) SearchByDOI(ctx context.Context, doi string) (*types.Entry, error) {
	u := fmt.Sprintf("%s?q=%s&size=1", zenodoAPIBase, url.QueryEscape(fmt.Sprintf(`doi:"%s"`, doi)))
	records, err := p.search(ctx, u)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	entry := records[0].toEntry()
	return &entry, nil
}

// SearchByTitle performs a free-text title search.
func (p *ZenodoProvider) SearchByTitle(ctx context.Context, title string) ([]types.Entry, error) {
	u := fmt.Sprintf("%s?q=%s&size=5", zenodoAPIBase, url.QueryEscape(fmt.Sprintf(`title:"%s"`, title)))
	records, err := p.search(ctx, u)
	if err != nil {
		return nil, err
	}
	entries := make([]types.Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, r.toEntry())
	}
	return entries, nil
}

func (p *ZenodoProvider) search(ctx context.Context, u string) ([]zenodoRecord, error) {
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

	var search zenodoSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return search.Hits.Hits, nil
}
