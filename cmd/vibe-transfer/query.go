package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-transfer/internal/duckdb"
	"github.com/inodb/vibe-transfer/internal/output"
	"github.com/inodb/vibe-transfer/internal/transfer"
)

type queryOptions struct {
	CachePath string
	Target    string
	Position  int
	Type      string
	HitsOnly  bool
}

func newQueryCmd() *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query transferred annotations stored in the cache",
		Example: `  vibe-transfer query --target 'sp|Q9NU22|MDN1_HUMAN'
  vibe-transfer query --target 'sp|Q9NU22|MDN1_HUMAN' --position 333
  vibe-transfer query --type DISULFID --hits`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, map[string]string{"cache.path": "cache"})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.CachePath = viper.GetString("cache.path")
			return runQuery(cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.String("cache", "", "DuckDB file written by transfer --cache")
	flags.StringVar(&opts.Target, "target", "", "target sequence id")
	flags.IntVar(&opts.Position, "position", 0, "target position (requires --target)")
	flags.StringVar(&opts.Type, "type", "", "annotation type, e.g. DISULFID")
	flags.BoolVar(&opts.HitsOnly, "hits", false, "only entries whose residue matched")

	return cmd
}

func runQuery(w io.Writer, opts queryOptions) error {
	if opts.CachePath == "" {
		return errors.New("no cache configured: pass --cache or set cache.path")
	}
	if opts.Target == "" && opts.Type == "" {
		return errors.New("one of --target or --type is required")
	}
	if opts.Position > 0 && opts.Target == "" {
		return errors.New("--position requires --target")
	}

	store, err := duckdb.Open(opts.CachePath)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	var rows []transfer.Row
	switch {
	case opts.Target != "" && opts.Position > 0:
		rows, err = store.LookupPosition(opts.Target, opts.Position)
	case opts.Target != "":
		rows, err = store.SearchByTarget(opts.Target)
	default:
		rows, err = store.SearchByType(opts.Type, opts.HitsOnly)
	}
	if err != nil {
		return err
	}

	tw := output.NewTabWriter(w)
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, r := range rows {
		if opts.Target != "" && opts.Type != "" && r.Type != opts.Type {
			continue
		}
		if opts.HitsOnly && !r.Hit {
			continue
		}
		if err := tw.Write(r); err != nil {
			return err
		}
	}
	return tw.Flush()
}
