// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the bibval CLI, which validates a
// local BibTeX bibliography against external scholarly metadata providers.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bibval/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback
// otherwise.
func secretDefault(key, fallback string) string {
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return fallback
}

// rootCmd is the base command for the bibval CLI.
var rootCmd = &cobra.Command{
	Use:   "bibval",
	Short: "Validate bibliography entries against external metadata providers",
	Long: `bibval checks the entries in a .bib file against CrossRef, DBLP, arXiv,
Semantic Scholar, OpenAlex, Open Library, OpenReview, Zenodo, and PatentsView,
and reports discrepancies in title, authors, year, venue, and DOI.

Each provider's response is compared against the local entry using fuzzy
title matching; when multiple providers are consulted, a discrepancy is only
reported once enough of them agree on it.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./bibval.yaml or ~/.config/bibval/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bibval")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "bibval"))
		}
	}

	viper.SetEnvPrefix("BIBVAL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, "Error:", msg)
		}
		os.Exit(1)
	}
}
