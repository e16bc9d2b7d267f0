package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-transfer/internal/duckdb"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the transfer entry cache",
	}

	var domain string
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached entries and processed-run records",
		Long: `Remove every cached entry and forget which alignments were processed, so the
next transfer --skip-unchanged run redoes everything. With --domain only that
domain's entries and runs are removed.`,
		Example: `  vibe-transfer cache clear --cache out/transfer.duckdb
  vibe-transfer cache clear --domain PF07728`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, map[string]string{"cache.path": "cache"})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheClear(cmd.OutOrStdout(), viper.GetString("cache.path"), domain)
		},
	}
	clearCmd.Flags().String("cache", "", "DuckDB file written by transfer --cache")
	clearCmd.Flags().StringVar(&domain, "domain", "", "only clear this domain's entries")

	cmd.AddCommand(clearCmd)
	return cmd
}

func runCacheClear(w io.Writer, cachePath, domain string) error {
	if cachePath == "" {
		return errors.New("no cache configured: pass --cache or set cache.path")
	}

	store, err := duckdb.Open(cachePath)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	if domain != "" {
		if err := store.ClearDomain(domain); err != nil {
			return err
		}
		if err := store.ClearDomainRuns(domain); err != nil {
			return err
		}
		fmt.Fprintf(w, "Cleared %s entries in %s\n", domain, store.Path())
		return nil
	}

	if err := store.ClearEntries(); err != nil {
		return err
	}
	if err := store.ClearRuns(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Cleared %s\n", store.Path())
	return nil
}
