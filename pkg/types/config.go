// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ProviderConfig selects which metadata providers are consulted and carries
// their per-provider credentials.
type ProviderConfig struct {
	HTTPConfig `yaml:",inline"`

	EnableCrossRef        bool `json:"enable_crossref" yaml:"enable_crossref"`
	EnableDBLP            bool `json:"enable_dblp" yaml:"enable_dblp"`
	EnableArxiv           bool `json:"enable_arxiv" yaml:"enable_arxiv"`
	EnableSemanticScholar bool `json:"enable_semantic_scholar" yaml:"enable_semantic_scholar"`
	EnableOpenAlex        bool `json:"enable_openalex" yaml:"enable_openalex"`
	EnableOpenLibrary     bool `json:"enable_openlibrary" yaml:"enable_openlibrary"`
	EnableOpenReview      bool `json:"enable_openreview" yaml:"enable_openreview"`
	EnableZenodo          bool `json:"enable_zenodo" yaml:"enable_zenodo"`
	EnablePatentsView     bool `json:"enable_patentsview" yaml:"enable_patentsview"`

	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`
	OpenAlexEmail         string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty"`
	PatentsViewAPIKey     string `json:"patentsview_api_key,omitempty" yaml:"patentsview_api_key,omitempty"`
}

// CacheConfig holds settings for the on-disk provider response cache.
type CacheConfig struct {
	Enabled bool          `json:"enabled" yaml:"enabled"`
	Dir     string        `json:"dir" yaml:"dir"`
	TTL     time.Duration `json:"ttl" yaml:"ttl"`
}

// ValidationConfig aggregates everything needed to run a validation batch.
type ValidationConfig struct {
	Providers   ProviderConfig `json:"providers" yaml:"providers"`
	Cache       CacheConfig    `json:"cache" yaml:"cache"`
	Concurrency int            `json:"concurrency" yaml:"concurrency"`
	Strict      bool           `json:"strict" yaml:"strict"`
}

// DefaultValidationConfig returns sensible defaults: all providers enabled,
// cache enabled with a 7-day TTL, and 20 entries validated concurrently.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		Providers: ProviderConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "bibval/0.1 (https://github.com/pdiddy/bibval)",
			},
			EnableCrossRef:        true,
			EnableDBLP:            true,
			EnableArxiv:           true,
			EnableSemanticScholar: true,
			EnableOpenAlex:        true,
			EnableOpenLibrary:     true,
			EnableOpenReview:      true,
			EnableZenodo:          true,
			EnablePatentsView:     true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".bibval-cache",
			TTL:     7 * 24 * time.Hour,
		},
		Concurrency: 20,
	}
}
