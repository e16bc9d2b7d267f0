package main

import (
	"fmt"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-transfer/internal/align"
	"github.com/inodb/vibe-transfer/internal/duckdb"
	"github.com/inodb/vibe-transfer/internal/output"
	"github.com/inodb/vibe-transfer/internal/resource"
	"github.com/inodb/vibe-transfer/internal/transfer"
)

// transferOptions are the resolved settings of one transfer run.
type transferOptions struct {
	ResourceDir   string
	OutputDir     string
	ECOCodes      []string
	Workers       int
	CachePath     string
	SkipUnchanged bool
	Compact       bool
}

func newTransferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer <alignment>...",
		Short: "Transfer annotations for one or more domain alignments",
		Long: `Transfer annotations for each hmmalign Stockholm file. The domain id is taken
from the file name (PF07728_hmmalign.sth -> PF07728); annotations and
conservations are read from <resource-dir>/<domain>/, target GO terms from
<output-dir>/<target>/iprscan.tsv. Reports are written under <output-dir>.`,
		Example: `  vibe-transfer transfer -r resources -o out PF07728_hmmalign.sth
  vibe-transfer transfer -r resources -o out --cache out/transfer.duckdb *.sth
  vibe-transfer transfer --eco-codes ECO:0000269,ECO:0000305 PF07728_hmmalign.sth`,
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, map[string]string{
				"resource_dir":   "resource-dir",
				"output_dir":     "output-dir",
				"eco_codes":      "eco-codes",
				"workers":        "workers",
				"cache.path":     "cache",
				"skip_unchanged": "skip-unchanged",
				"compact":        "compact",
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := loggerFromConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()

			opts := transferOptions{
				ResourceDir:   viper.GetString("resource_dir"),
				OutputDir:     viper.GetString("output_dir"),
				ECOCodes:      viper.GetStringSlice("eco_codes"),
				Workers:       viper.GetInt("workers"),
				CachePath:     viper.GetString("cache.path"),
				SkipUnchanged: viper.GetBool("skip_unchanged"),
				Compact:       viper.GetBool("compact"),
			}
			return runTransfer(args, opts, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringP("resource-dir", "r", ".", "directory holding <domain>/annotations.json and conservations.json")
	flags.StringP("output-dir", "o", ".", "directory for reports and per-target InterProScan results")
	flags.StringSlice("eco-codes", transfer.DefaultGoodECO, "accepted evidence codes")
	flags.IntP("workers", "w", 0, "parallel domains (0 = all CPUs)")
	flags.String("cache", "", "DuckDB file to store transferred entries in")
	flags.Bool("skip-unchanged", false, "skip alignments already stored in the cache and unchanged since")
	flags.Bool("compact", false, "write reports without indentation")

	return cmd
}

// runTransfer loads every alignment, transfers the domains in parallel and
// writes reports and cache entries in input order.
func runTransfer(paths []string, opts transferOptions, logger *zap.Logger) error {
	outputs := osfs.New(opts.OutputDir)
	loader := resource.NewLoader(osfs.New(opts.ResourceDir), outputs)
	loader.SetLogger(logger)

	var store *duckdb.Store
	if opts.CachePath != "" {
		var err error
		store, err = duckdb.Open(opts.CachePath)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		defer store.Close()
	}

	var items []transfer.WorkItem
	for _, p := range paths {
		fp, err := duckdb.StatFile(p)
		if err != nil {
			return fmt.Errorf("stat alignment: %w", err)
		}
		if opts.SkipUnchanged && store != nil {
			current, err := store.RunCurrent(fp)
			if err != nil {
				return err
			}
			if current {
				logger.Info("alignment unchanged, skipping", zap.String("path", p))
				continue
			}
		}

		job, err := loadJob(p, loader)
		if err != nil {
			return err
		}
		items = append(items, transfer.WorkItem{Seq: len(items), Job: job, Extra: fp})
	}
	if len(items) == 0 {
		return nil
	}

	tr := transfer.NewTransferer(opts.ECOCodes)
	tr.SetLogger(logger)

	writer := output.NewReportWriter(outputs)
	writer.SetIndent(!opts.Compact)
	writer.SetLogger(logger)

	work := make(chan transfer.WorkItem)
	go func() {
		defer close(work)
		for _, it := range items {
			work <- it
		}
	}()

	return transfer.OrderedCollect(tr.ParallelTransfer(work, opts.Workers), func(r transfer.WorkResult) error {
		fp := r.Extra.(duckdb.FileFingerprint)
		if r.Err != nil {
			return fmt.Errorf("transfer %s: %w", fp.Path, r.Err)
		}
		if _, err := writer.Write(r.Result); err != nil {
			return fmt.Errorf("write reports for %s: %w", r.Domain, err)
		}
		if store == nil {
			return nil
		}
		rows := r.Result.Rows()
		if err := store.WriteEntries(r.Domain, rows); err != nil {
			return fmt.Errorf("cache entries for %s: %w", r.Domain, err)
		}
		return store.RecordRun(r.Domain, fp, len(rows))
	})
}

// loadJob reads an alignment and the resources of its domain.
func loadJob(path string, loader *resource.Loader) (transfer.Job, error) {
	aln, err := align.Open(path)
	if err != nil {
		return transfer.Job{}, err
	}
	domain := align.DomainID(path)
	d, err := loader.LoadDomain(domain)
	if err != nil {
		return transfer.Job{}, err
	}
	return transfer.Job{
		Domain:        domain,
		Alignment:     aln,
		Annotations:   d.Annotations,
		Conservations: d.Conservations,
		GO:            loader,
	}, nil
}
