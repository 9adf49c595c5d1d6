// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibval/internal/bibtex"
	"github.com/pdiddy/bibval/internal/cache"
	"github.com/pdiddy/bibval/internal/orchestrator"
	"github.com/pdiddy/bibval/internal/provider"
	"github.com/pdiddy/bibval/internal/report"
	"github.com/pdiddy/bibval/pkg/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file.bib]...",
	Short: "Validate bibliography entries against external metadata providers",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().Bool("no-crossref", false, "disable CrossRef lookups")
	validateCmd.Flags().Bool("no-dblp", false, "disable DBLP lookups")
	validateCmd.Flags().Bool("no-arxiv", false, "disable arXiv lookups")
	validateCmd.Flags().Bool("no-semantic-scholar", false, "disable Semantic Scholar lookups")
	validateCmd.Flags().Bool("no-openalex", false, "disable OpenAlex lookups")
	validateCmd.Flags().Bool("no-openlibrary", false, "disable Open Library lookups")
	validateCmd.Flags().Bool("no-openreview", false, "disable OpenReview lookups")
	validateCmd.Flags().Bool("no-zenodo", false, "disable Zenodo lookups")
	validateCmd.Flags().Bool("no-patentsview", false, "disable PatentsView lookups")
	validateCmd.Flags().Bool("no-cache", false, "disable the on-disk response cache")
	validateCmd.Flags().Int("concurrency", 20, "maximum entries validated concurrently")
	validateCmd.Flags().BoolP("strict", "s", false, "exit nonzero if any warnings or errors are found")
	validateCmd.Flags().Bool("json", false, "output the report as JSON")
	validateCmd.Flags().String("save-report", "", "save the validation report to a YAML file")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg := types.DefaultValidationConfig()

	noCrossRef, _ := cmd.Flags().GetBool("no-crossref")
	noDBLP, _ := cmd.Flags().GetBool("no-dblp")
	noArxiv, _ := cmd.Flags().GetBool("no-arxiv")
	noSemantic, _ := cmd.Flags().GetBool("no-semantic-scholar")
	noOpenAlex, _ := cmd.Flags().GetBool("no-openalex")
	noOpenLibrary, _ := cmd.Flags().GetBool("no-openlibrary")
	noOpenReview, _ := cmd.Flags().GetBool("no-openreview")
	noZenodo, _ := cmd.Flags().GetBool("no-zenodo")
	noPatentsView, _ := cmd.Flags().GetBool("no-patentsview")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	strict, _ := cmd.Flags().GetBool("strict")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	saveReport, _ := cmd.Flags().GetString("save-report")

	cfg.Providers.EnableCrossRef = !noCrossRef
	cfg.Providers.EnableDBLP = !noDBLP
	cfg.Providers.EnableArxiv = !noArxiv
	cfg.Providers.EnableSemanticScholar = !noSemantic
	cfg.Providers.EnableOpenAlex = !noOpenAlex
	cfg.Providers.EnableOpenLibrary = !noOpenLibrary
	cfg.Providers.EnableOpenReview = !noOpenReview
	cfg.Providers.EnableZenodo = !noZenodo
	cfg.Providers.EnablePatentsView = !noPatentsView
	cfg.Cache.Enabled = !noCache
	cfg.Concurrency = concurrency
	cfg.Strict = strict
	cfg.Providers.SemanticScholarAPIKey = secretDefault("semantic-scholar-api-key", "")
	cfg.Providers.OpenAlexEmail = secretDefault("openalex-email", "")
	cfg.Providers.PatentsViewAPIKey = secretDefault("patentsview-api-key", "")

	var entries []types.Entry
	for _, file := range args {
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("file not found: %s", file)
		}

		fmt.Fprintf(os.Stderr, "Parsing %s...\n", file)
		parsed, err := bibtex.ParseFile(file)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", file, err)
		}
		fmt.Fprintf(os.Stderr, "  found %d entries\n", len(parsed))
		entries = append(entries, parsed...)
	}

	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No entries found to validate.")
		return nil
	}

	var cch *cache.Cache
	if cfg.Cache.Enabled {
		c, err := cache.Open(cfg.Cache.Dir, cfg.Cache.TTL)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer c.Close()
		cch = c
	}

	o := orchestrator.New(buildProviders(cfg.Providers), cch, cfg.Concurrency)

	fmt.Fprintf(os.Stderr, "\nValidating %d entries...\n\n", len(entries))
	ctx := context.Background()
	results := o.Validate(ctx, entries)
	r := report.New(results, entries)

	if jsonOutput {
		if err := report.FormatJSON(r, os.Stdout); err != nil {
			return err
		}
	} else {
		report.FormatTable(r, os.Stdout)
	}

	if saveReport != "" {
		if err := report.WriteFile(saveReport, r); err != nil {
			return fmt.Errorf("saving report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved report to %s\n", saveReport)
	}

	if strict && r.HasProblems() {
		return errExitFailure
	}
	if r.CountErrors() > 0 {
		return errExitFailure
	}
	return nil
}

func buildProviders(cfg types.ProviderConfig) []provider.Provider {
	client := &http.Client{Timeout: cfg.Timeout}
	if client.Timeout == 0 {
		client.Timeout = 30 * time.Second
	}

	var providers []provider.Provider
	if cfg.EnableCrossRef {
		providers = append(providers, &provider.CrossRefProvider{Client: client, UserAgent: cfg.UserAgent})
	}
	if cfg.EnableDBLP {
		providers = append(providers, &provider.DBLPProvider{Client: client, UserAgent: cfg.UserAgent})
	}
	if cfg.EnableArxiv {
		providers = append(providers, &provider.ArxivProvider{Client: client, UserAgent: cfg.UserAgent})
	}
	if cfg.EnableSemanticScholar {
		providers = append(providers, &provider.SemanticScholarProvider{Client: client, UserAgent: cfg.UserAgent, APIKey: cfg.SemanticScholarAPIKey})
	}
	if cfg.EnableOpenAlex {
		providers = append(providers, &provider.OpenAlexProvider{Client: client, UserAgent: cfg.UserAgent, Email: cfg.OpenAlexEmail})
	}
	if cfg.EnableOpenLibrary {
		providers = append(providers, &provider.OpenLibraryProvider{Client: client, UserAgent: cfg.UserAgent})
	}
	if cfg.EnableOpenReview {
		providers = append(providers, &provider.OpenReviewProvider{Client: client, UserAgent: cfg.UserAgent})
	}
	if cfg.EnableZenodo {
		providers = append(providers, &provider.ZenodoProvider{Client: client, UserAgent: cfg.UserAgent})
	}
	if cfg.EnablePatentsView {
		providers = append(providers, &provider.PatentsViewProvider{Client: client, APIKey: cfg.PatentsViewAPIKey})
	}
	return providers
}

// errExitFailure is returned to force a nonzero exit code without printing
// an additional error message (the report has already been printed).
var errExitFailure = silentError{}

type silentError struct{}

func (silentError) Error() string { return "" }
