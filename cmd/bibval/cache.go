// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibval/internal/cache"
	"github.com/pdiddy/bibval/pkg/types"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the provider response cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached provider response",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.PersistentFlags().String("cache-dir", types.DefaultValidationConfig().Cache.Dir, "cache directory")
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("cache-dir")

	c, err := cache.Open(dir, 0)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer c.Close()

	if err := c.Clear(context.Background()); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	fmt.Println("Cache cleared.")
	return nil
}
