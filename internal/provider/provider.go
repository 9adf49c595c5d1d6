// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider defines the contract every external metadata source
// implements, and the concrete adapters for CrossRef, DBLP, arXiv,
// Semantic Scholar, OpenAlex, Open Library, OpenReview, Zenodo, and
// PatentsView.
package provider

import (
	"context"
	"errors"

	"github.com/pdiddy/bibval/pkg/types"
)

// Sentinel errors every adapter maps its failures onto.
var (
	ErrNetwork     = errors.New("provider: network error")
	ErrParse       = errors.New("provider: malformed response")
	ErrRateLimited = errors.New("provider: rate limited")
)

// Provider is implemented by every external metadata source.
type Provider interface {
	Name() types.ProviderID

	// SearchByDOI looks up a single entry by DOI. A nil entry with a nil
	// error means the DOI was not found.
	SearchByDOI(ctx context.Context, doi string) (*types.Entry, error)

	// SearchByTitle returns candidate entries matching a free-text title
	// search. An empty slice with a nil error means no candidates were
	// found.
	SearchByTitle(ctx context.Context, title string) ([]types.Entry, error)

	// SearchByArxivID looks up a single entry by arXiv identifier.
	// Providers with no native arXiv lookup return (nil, nil).
	SearchByArxivID(ctx context.Context, id string) (*types.Entry, error)
}

// BaseProvider supplies the default SearchByArxivID implementation so
// adapters without a native arXiv lookup only need to embed it.
type BaseProvider struct{}

// SearchByArxivID is a no-op by default.
func (BaseProvider) SearchByArxivID(ctx context.Context, id string) (*types.Entry, error) {
	return nil, nil
}
