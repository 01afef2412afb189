// Package forest builds one composite record per override from a shared
// base record.
//
// The base becomes the single root of a lineage forest; each override is
// branched off that root as its own leaf, and every leaf's chain is folded
// root to leaf. Node and cascade lifetimes never escape this package: the
// forest is dropped as soon as the composites are returned.
package forest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/pagegen/internal/lineage"
	"github.com/leapstack-labs/pagegen/internal/merge"
	"github.com/leapstack-labs/pagegen/pkg/core"
)

// Strategy selects how leaves share their ancestry.
type Strategy string

const (
	// StrategyShared branches node-graph cascades that share the root node.
	StrategyShared Strategy = "shared"
	// StrategyFlat copies a short record slice on every branch.
	StrategyFlat Strategy = "flat"
)

// ParseStrategy validates a strategy name. The empty string selects
// StrategyShared.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyShared:
		return StrategyShared, nil
	case StrategyFlat:
		return StrategyFlat, nil
	default:
		return "", fmt.Errorf("unknown strategy %q (want %q or %q)", s, StrategyShared, StrategyFlat)
	}
}

// Builder turns a base record and its overrides into composites.
// A Builder holds no per-run state and may be reused concurrently.
type Builder struct {
	logger   *slog.Logger
	strategy Strategy
	workers  int
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithStrategy selects the lineage representation.
func WithStrategy(s Strategy) Option {
	return func(b *Builder) { b.strategy = s }
}

// WithWorkers sets how many leaves are branched and folded in parallel.
// Values below 2 build sequentially.
func WithWorkers(n int) Option {
	return func(b *Builder) { b.workers = n }
}

// New creates a Builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		logger:   slog.New(slog.DiscardHandler),
		strategy: StrategyShared,
		workers:  1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Cascade returns one composite per override, in override order. Each
// composite is the base overwritten by that override's top-level keys.
// With no overrides it returns an empty slice; the base alone is never a
// composite.
func (b *Builder) Cascade(ctx context.Context, base core.Record, overrides []core.Record) ([]core.Record, error) {
	start := time.Now()
	composites := make([]core.Record, len(overrides))

	err := b.each(ctx, base, overrides, func(i int, leaf lineage.Lineage) error {
		composites[i] = merge.Fold(leaf.Records())
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.logger.Debug("built composites",
		slog.Int("pages", len(composites)),
		slog.String("strategy", string(b.strategy)),
		slog.Duration("elapsed", time.Since(start)))
	return composites, nil
}

// Explain returns, per override, which level of the chain supplied each
// composite key (0 = base, 1 = override).
func (b *Builder) Explain(ctx context.Context, base core.Record, overrides []core.Record) ([]merge.Provenance, error) {
	provs := make([]merge.Provenance, len(overrides))

	err := b.each(ctx, base, overrides, func(i int, leaf lineage.Lineage) error {
		_, provs[i] = merge.FoldWithProvenance(leaf.Records())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return provs, nil
}

// each branches one leaf per override off a single root and calls fn with
// the override's index. fn may run concurrently for different indexes.
func (b *Builder) each(ctx context.Context, base core.Record, overrides []core.Record, fn func(int, lineage.Lineage) error) error {
	branch, err := b.root(base)
	if err != nil {
		return err
	}

	visit := func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		leaf, err := branch(overrides[i])
		if err != nil {
			return fmt.Errorf("page %d: %w", i, err)
		}
		return fn(i, leaf)
	}

	if b.workers < 2 || len(overrides) < 2 {
		for i := range overrides {
			if err := visit(ctx, i); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := range overrides {
		g.Go(func() error {
			return visit(gctx, i)
		})
	}
	return g.Wait()
}

// root creates the forest root for base and returns a function that
// branches a new leaf off it.
func (b *Builder) root(base core.Record) (func(core.Record) (lineage.Lineage, error), error) {
	if base == nil {
		base = core.Record{}
	}

	switch b.strategy {
	case StrategyShared, "":
		root := lineage.New(base)
		return func(r core.Record) (lineage.Lineage, error) {
			leaf, err := root.Branch(r)
			if err != nil {
				return nil, err
			}
			return leaf, nil
		}, nil
	case StrategyFlat:
		root := lineage.NewChain(base)
		return func(r core.Record) (lineage.Lineage, error) {
			return root.Branch(r), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", b.strategy)
	}
}
