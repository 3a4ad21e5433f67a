package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/housegen/internal/gen"
	"github.com/leapstack-labs/housegen/internal/schema"
	"github.com/leapstack-labs/housegen/internal/state"
)

// loadBatchRows bounds the rows per multi-value INSERT. With typical column
// counts this stays well under the 65535 bound parameters postgres allows
// per statement.
const loadBatchRows = 500

// LoadOptions holds settings for one database load run.
type LoadOptions struct {
	// Schema drives column typing and lookup-table construction.
	Schema *schema.Schema
	// Dataset is the data to load.
	Dataset *gen.Dataset
	// Table names the dataset table. Defaults to "houses".
	Table string
	// IDPrefix prefixes the synthetic primary key, as in "house_42".
	// Defaults to "house".
	IDPrefix string
	// Drop tears down the target tables before loading.
	Drop bool
	// SchemaPath and Seed are recorded with the run for bookkeeping.
	SchemaPath string
	Seed       int64
}

// LoadResult reports what a load run put in the database.
type LoadResult struct {
	Run          *state.Run
	Table        string
	Rows         int
	LookupTables []string
}

// Load writes the dataset into the configured database: one lookup table per
// attribute carrying a lookup enumeration, then the dataset table with a
// synthetic text primary key and foreign keys into the lookups. Teardown
// failures under Drop are logged and skipped, not propagated.
func (e *Engine) Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	if opts.Schema == nil || opts.Dataset == nil {
		return nil, fmt.Errorf("load requires a schema and a dataset")
	}
	if opts.Table == "" {
		opts.Table = "houses"
	}
	if opts.IDPrefix == "" {
		opts.IDPrefix = "house"
	}

	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}

	dest := fmt.Sprintf("%s/%s", e.dbConfig.Type, opts.Table)
	run, err := e.store.CreateRun(state.RunKindLoad, opts.SchemaPath, opts.Seed, int64(opts.Dataset.Len()), dest)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	e.logger.Info("starting load", "run_id", run.ID, "table", opts.Table, "rows", opts.Dataset.Len())

	result, err := e.load(ctx, opts)
	if err != nil {
		_ = e.store.CompleteRun(run.ID, state.RunStatusFailed, err.Error())
		e.logger.Error("load failed", "run_id", run.ID, "error", err.Error())
		return nil, err
	}

	_ = e.store.CompleteRun(run.ID, state.RunStatusCompleted, "")
	e.logger.Info("load completed", "run_id", run.ID, "table", opts.Table, "rows", result.Rows)

	result.Run, _ = e.store.GetRun(run.ID)
	return result, nil
}

func (e *Engine) load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	lookups := opts.Schema.Lookups()

	if opts.Drop {
		e.teardown(ctx, opts.Table, lookups)
	}

	lookupTables, err := e.createLookupTables(ctx, lookups)
	if err != nil {
		return nil, err
	}

	if err := e.createDatasetTable(ctx, opts.Table, opts.Schema, opts.Dataset.Columns, lookups); err != nil {
		return nil, err
	}

	if err := e.insertRows(ctx, opts.Table, opts.IDPrefix, opts.Dataset); err != nil {
		return nil, err
	}

	return &LoadResult{
		Table:        opts.Table,
		Rows:         opts.Dataset.Len(),
		LookupTables: lookupTables,
	}, nil
}

// teardown drops the dataset table and then the lookup tables it references.
// Errors are logged, not propagated: a missing table is the common case.
func (e *Engine) teardown(ctx context.Context, table string, lookups map[string][]schema.LookupEntry) {
	if err := e.db.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(table))); err != nil {
		e.logger.Warn("failed to drop table", "table", table, "error", err.Error())
	}
	for attr := range lookups {
		lt := lookupTableName(attr)
		if err := e.db.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(lt))); err != nil {
			e.logger.Warn("failed to drop lookup table", "table", lt, "error", err.Error())
		}
	}
}

func (e *Engine) createLookupTables(ctx context.Context, lookups map[string][]schema.LookupEntry) ([]string, error) {
	attrs := make([]string, 0, len(lookups))
	for attr := range lookups {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)

	var tables []string
	for _, attr := range attrs {
		lt := lookupTableName(attr)
		ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (code TEXT PRIMARY KEY, name TEXT NOT NULL)", quoteIdent(lt))
		if err := e.db.Exec(ctx, ddl); err != nil {
			return nil, fmt.Errorf("failed to create lookup table %s: %w", lt, err)
		}

		for i, entry := range lookups[attr] {
			ins := fmt.Sprintf("INSERT INTO %s (code, name) VALUES (%s, %s)",
				quoteIdent(lt), e.db.Placeholder(1), e.db.Placeholder(2))
			if err := e.db.Exec(ctx, ins, entry.Code, entry.Name); err != nil {
				return nil, fmt.Errorf("failed to insert lookup row %d into %s: %w", i, lt, err)
			}
		}

		e.logger.Debug("created lookup table", "table", lt, "entries", len(lookups[attr]))
		tables = append(tables, lt)
	}
	return tables, nil
}

func (e *Engine) createDatasetTable(ctx context.Context, table string, s *schema.Schema, columns []string, lookups map[string][]schema.LookupEntry) error {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n  id TEXT PRIMARY KEY", quoteIdent(table))
	for _, col := range columns {
		fmt.Fprintf(&b, ",\n  %s %s", quoteIdent(col), columnType(s.RuleFor(col)))
		if _, ok := lookups[col]; ok {
			fmt.Fprintf(&b, " REFERENCES %s(code)", quoteIdent(lookupTableName(col)))
		}
	}
	b.WriteString("\n)")

	if err := e.db.Exec(ctx, b.String()); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

func (e *Engine) insertRows(ctx context.Context, table, idPrefix string, ds *gen.Dataset) error {
	cols := make([]string, 0, len(ds.Columns)+1)
	cols = append(cols, "id")
	for _, c := range ds.Columns {
		cols = append(cols, quoteIdent(c))
	}
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", quoteIdent(table), strings.Join(cols, ", "))

	for start := 0; start < len(ds.Rows); start += loadBatchRows {
		end := start + loadBatchRows
		if end > len(ds.Rows) {
			end = len(ds.Rows)
		}

		var b strings.Builder
		b.WriteString(prefix)
		args := make([]any, 0, (end-start)*len(cols))
		n := 0
		for i := start; i < end; i++ {
			if i > start {
				b.WriteString(", ")
			}
			b.WriteString("(")
			for j := 0; j < len(cols); j++ {
				if j > 0 {
					b.WriteString(", ")
				}
				n++
				b.WriteString(e.db.Placeholder(n))
			}
			b.WriteString(")")

			args = append(args, fmt.Sprintf("%s_%d", idPrefix, i))
			for _, col := range ds.Columns {
				args = append(args, ds.Rows[i][col])
			}
		}

		if err := e.db.Exec(ctx, b.String(), args...); err != nil {
			return fmt.Errorf("failed to insert rows %d-%d into %s: %w", start, end-1, table, err)
		}
	}
	return nil
}

// columnType maps a generation rule to a portable SQL column type.
func columnType(rule schema.Rule) string {
	switch r := rule.(type) {
	case schema.RangeRule, schema.NormalRule:
		return "BIGINT"
	case schema.BoolRule:
		return "BOOLEAN"
	case schema.ChoiceRule:
		allInt := len(r.Values) > 0
		for _, v := range r.Values {
			switch v.(type) {
			case int, int64:
			default:
				allInt = false
			}
		}
		if allInt {
			return "BIGINT"
		}
		return "TEXT"
	default:
		return "TEXT"
	}
}

func lookupTableName(attr string) string { return attr + "_lookup" }

// quoteIdent double-quotes an identifier, doubling embedded quotes. The form
// is accepted by postgres, sqlite, and duckdb alike.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
