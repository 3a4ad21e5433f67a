package gen

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/housegen/internal/schema"
)

// DefaultRows is the row count used when none is configured.
const DefaultRows = 1_000_000

// chunkRows is the number of rows drawn from one derived randomness stream.
// The chunk layout is fixed regardless of worker count, so a given seed
// produces the same dataset whether generation runs sequentially or in
// parallel.
const chunkRows = 65536

// Dataset is an ordered sequence of rows sharing a column set. For tiered
// schemas a row populates only its tier's attributes; the column set is the
// union across tiers in schema order.
type Dataset struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// Config holds dataset build settings.
type Config struct {
	// Rows is the target row count. Zero is valid and yields an empty
	// dataset; negative is an error.
	Rows int

	// Seed seeds the randomness streams. The same seed reproduces the same
	// dataset byte for byte.
	Seed int64

	// Workers bounds concurrent chunk generation. Values below 2 mean
	// sequential generation.
	Workers int

	// Logger is optional; nil discards.
	Logger *slog.Logger
}

// Builder assembles datasets by invoking the row generator once per row.
type Builder struct {
	schema *schema.Schema
	logger *slog.Logger
}

// NewBuilder creates a builder for one schema. The schema must already be
// validated; the builder treats it as read-only.
func NewBuilder(s *schema.Schema, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{schema: s, logger: logger}
}

// Build produces a dataset of exactly cfg.Rows rows. Rows are generated in
// fixed-size chunks, each drawing from its own randomness stream derived from
// the seed, so output is identical for any worker count.
func (b *Builder) Build(ctx context.Context, cfg Config) (*Dataset, error) {
	if cfg.Rows < 0 {
		return nil, fmt.Errorf("row count must not be negative, got %d", cfg.Rows)
	}

	ds := &Dataset{
		Columns: b.schema.Columns(),
		Rows:    make([]Row, cfg.Rows),
	}

	b.logger.Debug("building dataset",
		"rows", cfg.Rows, "seed", cfg.Seed, "workers", cfg.Workers, "tiered", b.schema.Tiered())

	if cfg.Rows == 0 {
		return ds, nil
	}

	if cfg.Workers < 2 {
		for start := 0; start < cfg.Rows; start += chunkRows {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := b.fillChunk(ds.Rows, start, min(start+chunkRows, cfg.Rows), cfg.Seed); err != nil {
				return nil, err
			}
		}
		return ds, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for start := 0; start < cfg.Rows; start += chunkRows {
		start := start
		end := min(start+chunkRows, cfg.Rows)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return b.fillChunk(ds.Rows, start, end, cfg.Seed)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ds, nil
}

// fillChunk generates rows[start:end] from the chunk's derived stream. Each
// chunk owns a disjoint slice segment, so no locking is needed.
func (b *Builder) fillChunk(rows []Row, start, end int, seed int64) error {
	rng := rand.New(rand.NewSource(chunkSeed(seed, start/chunkRows))) //nolint:gosec // reproducibility requires math/rand
	tiers := b.schema.Tiers
	for i := start; i < end; i++ {
		attrs := tiers[0].Attrs
		if len(tiers) > 1 {
			attrs = tiers[rng.Intn(len(tiers))].Attrs
		}
		row, err := GenerateRow(attrs, rng)
		if err != nil {
			return err
		}
		rows[i] = row
	}
	return nil
}

// chunkSeed derives an independent stream seed per chunk. The odd multiplier
// (the 64-bit golden ratio) spreads consecutive chunk indexes across the seed
// space.
func chunkSeed(seed int64, chunk int) int64 {
	return seed + int64(chunk)*-0x61c8864680b583eb
}
