// Package engine orchestrates housegen runs: schema loading, dataset
// generation, CSV delivery, and database loading, with run bookkeeping.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/housegen/internal/gen"
	"github.com/leapstack-labs/housegen/internal/schema"
	"github.com/leapstack-labs/housegen/internal/sink"
	"github.com/leapstack-labs/housegen/internal/state"
	"github.com/leapstack-labs/housegen/pkg/adapter"
)

// Engine wires the generator, sinks, database adapter, and run store.
type Engine struct {
	// Database adapter (lazy initialized)
	db          adapter.Adapter
	dbConfig    adapter.Config
	dbConnected bool
	dbMu        sync.Mutex

	store  *state.SQLiteStore
	logger *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// StatePath is the path to the SQLite run-bookkeeping database.
	StatePath string
	// Target contains database adapter configuration.
	Target adapter.Config
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates a new engine with lazy database connection.
// The adapter is only connected when Load or Query is first called.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Debug("initializing engine", "state_path", cfg.StatePath, "target", cfg.Target.Type)

	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	return &Engine{
		dbConfig: cfg.Target,
		store:    store,
		logger:   logger,
	}, nil
}

// Close releases the database connection and the run store.
func (e *Engine) Close() error {
	var firstErr error
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			firstErr = err
		}
	}
	if err := e.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Store exposes the run store for listing past runs.
func (e *Engine) Store() *state.SQLiteStore { return e.store }

// DB returns the connected adapter, connecting on first use.
func (e *Engine) DB(ctx context.Context) (adapter.Adapter, error) {
	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}
	return e.db, nil
}

func (e *Engine) ensureDBConnected(ctx context.Context) error {
	e.dbMu.Lock()
	defer e.dbMu.Unlock()

	if e.dbConnected {
		return nil
	}

	db, err := adapter.NewAdapter(e.dbConfig, e.logger)
	if err != nil {
		return err
	}
	if err := db.Connect(ctx, e.dbConfig); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", e.dbConfig.Type, err)
	}

	e.logger.Debug("connected database", "type", e.dbConfig.Type)
	e.db = db
	e.dbConnected = true
	return nil
}

// GenerateOptions holds settings for one generation run.
type GenerateOptions struct {
	// SchemaPath is the schema file to load rules from.
	SchemaPath string
	// Rows is the target row count; gen.DefaultRows when zero and
	// RowsSet is false.
	Rows int
	// RowsSet marks Rows as explicitly configured, allowing zero.
	RowsSet bool
	// Seed seeds the randomness streams.
	Seed int64
	// Workers bounds parallel chunk generation; <2 is sequential.
	Workers int
	// Destination is the CSV sink: a local path or s3://bucket/key.
	Destination string
}

// GenerateResult reports what a generation run produced.
type GenerateResult struct {
	Run      *state.Run
	Dataset  *gen.Dataset
	Location string
}

// Generate runs the full generation pipeline: load and validate the schema,
// build the dataset, deliver it to the destination sink, and record the run.
// A schema parse failure aborts before any generation; a sink failure is
// surfaced, not retried.
func (e *Engine) Generate(ctx context.Context, opts GenerateOptions) (*GenerateResult, error) {
	s, err := schema.Load(opts.SchemaPath)
	if err != nil {
		return nil, err
	}

	rows := opts.Rows
	if rows == 0 && !opts.RowsSet {
		rows = gen.DefaultRows
	}

	run, err := e.store.CreateRun(state.RunKindGenerate, opts.SchemaPath, opts.Seed, int64(rows), opts.Destination)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	e.logger.Info("starting generation", "run_id", run.ID, "rows", rows, "seed", opts.Seed)

	result, err := e.generate(ctx, s, rows, opts)
	if err != nil {
		_ = e.store.CompleteRun(run.ID, state.RunStatusFailed, err.Error())
		e.logger.Error("generation failed", "run_id", run.ID, "error", err.Error())
		return nil, err
	}

	_ = e.store.CompleteRun(run.ID, state.RunStatusCompleted, "")
	e.logger.Info("generation completed", "run_id", run.ID, "rows", result.Dataset.Len(), "destination", result.Location)

	result.Run, _ = e.store.GetRun(run.ID)
	return result, nil
}

func (e *Engine) generate(ctx context.Context, s *schema.Schema, rows int, opts GenerateOptions) (*GenerateResult, error) {
	builder := gen.NewBuilder(s, e.logger)
	ds, err := builder.Build(ctx, gen.Config{
		Rows:    rows,
		Seed:    opts.Seed,
		Workers: opts.Workers,
		Logger:  e.logger,
	})
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{Dataset: ds}
	if opts.Destination == "" {
		return result, nil
	}

	dest, err := sink.ForDestination(ctx, opts.Destination, e.logger)
	if err != nil {
		return nil, err
	}

	pr, pw := newCSVPipe(ds)
	if err := dest.Store(ctx, pr); err != nil {
		// The sink may have failed before draining the pipe; closing the
		// read side unblocks the encoder so err() can return.
		_ = pr.CloseWithError(err)
		_ = pw.err()
		return nil, err
	}
	if err := pw.err(); err != nil {
		return nil, err
	}

	result.Location = dest.Location()
	return result, nil
}
