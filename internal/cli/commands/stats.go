package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/leapstack-labs/housegen/internal/cli/output"
	"github.com/leapstack-labs/housegen/internal/engine"
	"github.com/leapstack-labs/housegen/internal/gen"
)

// countPrinter renders row counts with thousands separators.
var countPrinter = message.NewPrinter(language.English)

func formatCount(n int) string {
	return countPrinter.Sprintf("%d", n)
}

// StatsOptions holds options for the stats command.
type StatsOptions struct {
	CSV  string
	Rows int
	Seed int64
}

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	opts := &StatsOptions{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show summary statistics for a dataset",
		Long: `Show per-column summary statistics: count, mean, standard deviation,
minimum, quartiles, and maximum for every numeric column.

Without --csv, a dataset is generated in memory from the configured schema
and summarized without being written anywhere.`,
		Example: `  # Summarize a fresh generation
  housegen stats --rows 100000

  # Summarize an existing CSV file
  housegen stats --csv houses.csv

  # Machine-readable output
  housegen stats --csv houses.csv -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.CSV, "csv", "", "Summarize an existing CSV file instead of generating")
	cmd.Flags().IntVarP(&opts.Rows, "rows", "n", 0, "Number of rows to generate")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "Random seed")

	return cmd
}

func runStats(cmd *cobra.Command, opts *StatsOptions) error {
	if opts.CSV != "" {
		cmdCtx := NewCommandContextWithoutEngine(cmd)
		f, err := os.Open(opts.CSV)
		if err != nil {
			return fmt.Errorf("failed to open CSV: %w", err)
		}
		defer func() { _ = f.Close() }()

		ds, err := gen.ParseCSV(f)
		if err != nil {
			return err
		}
		return renderStats(cmdCtx, ds)
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	genOpts := engine.GenerateOptions{
		SchemaPath: cmdCtx.Cfg.SchemaPath,
		Rows:       cmdCtx.Cfg.Rows,
		RowsSet:    true,
		Seed:       cmdCtx.Cfg.Seed,
		Workers:    cmdCtx.Cfg.Workers,
		// No destination: the dataset stays in memory.
	}
	if cmd.Flags().Changed("rows") {
		genOpts.Rows = opts.Rows
	}
	if cmd.Flags().Changed("seed") {
		genOpts.Seed = opts.Seed
	}

	result, err := cmdCtx.Engine.Generate(cmd.Context(), genOpts)
	if err != nil {
		return err
	}
	return renderStats(cmdCtx, result.Dataset)
}

func renderStats(cmdCtx *CommandContext, ds *gen.Dataset) error {
	r := cmdCtx.Renderer
	summaries := ds.Describe()

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(summaries)
	}

	r.Printf("%s rows, %d columns (%d numeric)\n\n", formatCount(ds.Len()), len(ds.Columns), len(summaries))
	renderSummaries(r, summaries)
	return nil
}

func renderSummaries(r *output.Renderer, summaries []gen.ColumnSummary) {
	if len(summaries) == 0 {
		r.Println("(no numeric columns)")
		return
	}

	header := []string{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Column,
			strconv.Itoa(s.Count),
			formatStat(s.Mean),
			formatStat(s.Std),
			formatStat(s.Min),
			formatStat(s.Q1),
			formatStat(s.Median),
			formatStat(s.Q3),
			formatStat(s.Max),
		})
	}
	r.Table(header, rows)
}

// formatStat trims trailing zeros so integer-valued stats read as integers.
func formatStat(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
