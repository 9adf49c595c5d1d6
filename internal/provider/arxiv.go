// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/bibval/internal/httpx"
	"github.com/pdiddy/bibval/internal/identify"
	"github.com/pdiddy/bibval/pkg/types"
)

var arxivAPIBase = "http://export.arxiv.org/api/query"

// ArxivProvider queries the arXiv Atom export API. ArXiv has no DOI search
// endpoint, so SearchByDOI always returns (nil, nil).
type ArxivProvider struct {
	Client    *http.Client
	UserAgent string
}

func (p *ArxivProvider) Name() types.ProviderID { return types.ProviderArxiv }

// SearchByDOI is unsupported by arXiv.
func (p *ArxivProvider) SearchByDOI(ctx context.Context, doi string) (*types.Entry, error) {
	return nil, nil
}

type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string         `xml:"id"`
	Title     string         `xml:"title"`
	Published string         `xml:"published"`
	Authors   []arxivAuthor  `xml:"author"`
	DOI       string         `xml:"doi"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

func (e arxivEntry) toEntry() types.Entry {
	id := identify.ArxivIDFromURL(e.ID)
	entry := types.Entry{
		Key:       id,
		EntryType: "article",
		Title:     collapseWhitespace(e.Title),
		ArxivID:   id,
		DOI:       e.DOI,
	}
	if y, ok := identify.YearFromString(e.Published); ok {
		entry.Year = y
	}
	for _, a := range e.Authors {
		if a.Name != "" {
			entry.Authors = append(entry.Authors, a.Name)
		}
	}
	return entry
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SearchByTitle performs a title search against the arXiv API.
func (p *ArxivProvider) SearchByTitle(ctx context.Context, title string) ([]types.Entry, error) {
	q := buildArxivQuery(title)
	u := fmt.Sprintf("%s?search_query=%s&max_results=5", arxivAPIBase, q)
	return p.query(ctx, u)
}

// SearchByArxivID looks up a single paper by its arXiv identifier.
func (p *ArxivProvider) SearchByArxivID(ctx context.Context, id string) (*types.Entry, error) {
	u := fmt.Sprintf("%s?id_list=%s", arxivAPIBase, id)
	entries, err := p.query(ctx, u)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func buildArxivQuery(title string) string {
	return fmt.Sprintf("ti:%%22%s%%22", strings.ReplaceAll(title, " ", "+"))
}

func (p *ArxivProvider) query(ctx context.Context, u string) ([]types.Entry, error) {
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

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	entries := make([]types.Entry, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		if e.Title == "" {
			continue
		}
		entries = append(entries, e.toEntry())
	}
	return entries, nil
}
