package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/housegen/internal/engine"
	"github.com/leapstack-labs/housegen/internal/gen"
	"github.com/leapstack-labs/housegen/internal/schema"
)

// LoadOptions holds options for the load command.
type LoadOptions struct {
	Table  string
	Prefix string
	Drop   bool
	CSV    string
	Rows   int
	Seed   int64
}

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	opts := &LoadOptions{}

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a dataset into the configured database",
		Long: `Load a housing dataset into the configured target database.

One lookup table is created per attribute with a lookup enumeration, then the
dataset table with a synthetic text primary key ("house_0", "house_1", ...)
and foreign keys into the lookups.

Without --csv, a dataset is generated in memory from the configured schema
and loaded directly. With --csv, an existing file is loaded instead; the
schema is still read for column types and lookup definitions.`,
		Example: `  # Generate and load in one step
  housegen load --rows 100000

  # Load an existing CSV
  housegen load --csv houses.csv

  # Replace an earlier load
  housegen load --drop --table houses`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoad(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Table, "table", "", "Dataset table name")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "Primary key prefix")
	cmd.Flags().BoolVar(&opts.Drop, "drop", false, "Drop existing tables before loading")
	cmd.Flags().StringVar(&opts.CSV, "csv", "", "Load an existing CSV file instead of generating")
	cmd.Flags().IntVarP(&opts.Rows, "rows", "n", 0, "Number of rows to generate")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "Random seed")

	return cmd
}

func runLoad(cmd *cobra.Command, opts *LoadOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	ctx := cmd.Context()

	s, err := schema.Load(cfg.SchemaPath)
	if err != nil {
		return err
	}

	seed := cfg.Seed
	if cmd.Flags().Changed("seed") {
		seed = opts.Seed
	}

	var ds *gen.Dataset
	if opts.CSV != "" {
		f, err := os.Open(opts.CSV)
		if err != nil {
			return fmt.Errorf("failed to open CSV: %w", err)
		}
		ds, err = gen.ParseCSV(f)
		_ = f.Close()
		if err != nil {
			return err
		}
	} else {
		rows := cfg.Rows
		if cmd.Flags().Changed("rows") {
			rows = opts.Rows
		}
		ds, err = gen.NewBuilder(s, cmdCtx.Logger).Build(ctx, gen.Config{
			Rows:    rows,
			Seed:    seed,
			Workers: cfg.Workers,
			Logger:  cmdCtx.Logger,
		})
		if err != nil {
			return err
		}
	}

	loadOpts := engine.LoadOptions{
		Schema:     s,
		Dataset:    ds,
		Table:      cfg.Table,
		IDPrefix:   cfg.IDPrefix,
		Drop:       opts.Drop,
		SchemaPath: cfg.SchemaPath,
		Seed:       seed,
	}
	if cmd.Flags().Changed("table") {
		loadOpts.Table = opts.Table
	}
	if cmd.Flags().Changed("prefix") {
		loadOpts.IDPrefix = opts.Prefix
	}

	start := time.Now()
	result, err := cmdCtx.Engine.Load(ctx, loadOpts)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	r.Success(fmt.Sprintf("Loaded %s rows into %s (%s) in %s",
		formatCount(result.Rows), result.Table, cfg.Target.Type, time.Since(start).Round(time.Millisecond)))
	if len(result.LookupTables) > 0 {
		r.Muted(fmt.Sprintf("Lookup tables: %s", strings.Join(result.LookupTables, ", ")))
	}
	return nil
}
