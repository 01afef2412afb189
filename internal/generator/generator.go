// Package generator runs the page generation pipeline for registered
// collections: fetch, cascade, name, render, and record the run.
package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/pagegen/internal/forest"
	"github.com/leapstack-labs/pagegen/internal/merge"
	"github.com/leapstack-labs/pagegen/pkg/core"
)

// Generator drives collections through the pipeline.
type Generator struct {
	registry *Registry
	builder  *forest.Builder
	store    core.Store
	logger   *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithStore records every Run in the given store.
func WithStore(s core.Store) Option {
	return func(g *Generator) { g.store = s }
}

// WithBuilder replaces the default forest builder.
func WithBuilder(b *forest.Builder) Option {
	return func(g *Generator) {
		if b != nil {
			g.builder = b
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates a generator over the given registry.
func New(registry *Registry, opts ...Option) *Generator {
	g := &Generator{
		registry: registry,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.builder == nil {
		g.builder = forest.New(forest.WithLogger(g.logger))
	}
	return g
}

// Registry returns the generator's collection registry.
func (g *Generator) Registry() *Registry { return g.registry }

// Result is the outcome of a Run.
type Result struct {
	Run   *core.Run // nil when no store is configured
	Pages []core.Page
}

// Build fetches the collection and computes its named pages without
// rendering them.
func (g *Generator) Build(ctx context.Context, name string) ([]core.Page, error) {
	c, err := g.registry.Get(name)
	if err != nil {
		return nil, err
	}
	return g.build(ctx, c)
}

// Run generates every page of the named collection and writes them with
// the collection's renderer. A fetch failure aborts before any composite
// is built, so nothing is rendered.
func (g *Generator) Run(ctx context.Context, name string) (*Result, error) {
	c, err := g.registry.Get(name)
	if err != nil {
		return nil, err
	}
	if c.Renderer == nil {
		return nil, fmt.Errorf("collection %q: renderer is required", name)
	}

	result := &Result{}
	if g.store != nil {
		run, err := g.store.CreateRun(c.Name, c.Source.Describe())
		if err != nil {
			return nil, fmt.Errorf("failed to create run: %w", err)
		}
		g.logger.Debug("created run", "run_id", run.ID, "collection", c.Name)
		result.Run = run
	}

	pages, runErr := g.build(ctx, c)
	if runErr == nil {
		if err := c.Renderer.Render(ctx, pages); err != nil {
			runErr = fmt.Errorf("render %s: %w", c.Name, err)
		} else {
			result.Pages = pages
		}
	}

	if runErr != nil {
		g.logger.Error("run failed", "collection", c.Name, "error", runErr)
	} else {
		g.logger.Info("run completed", "collection", c.Name, "pages", len(result.Pages))
	}

	if result.Run != nil {
		status, errMsg := core.RunStatusCompleted, ""
		if runErr != nil {
			status, errMsg = core.RunStatusFailed, runErr.Error()
		}
		if err := g.store.CompleteRun(result.Run.ID, status, len(result.Pages), errMsg); err != nil {
			g.logger.Warn("failed to complete run", "run_id", result.Run.ID, "error", err)
		} else if run, err := g.store.GetRun(result.Run.ID); err == nil {
			result.Run = run
		}
	}

	return result, runErr
}

// Explain returns the named pages of a collection together with, per
// page, the lineage depth that supplied each top-level key.
func (g *Generator) Explain(ctx context.Context, name string) ([]core.Page, []merge.Provenance, error) {
	c, err := g.registry.Get(name)
	if err != nil {
		return nil, nil, err
	}

	coll, err := c.Source.Fetch(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %s: %w", c.Name, err)
	}

	composites, err := g.builder.Cascade(ctx, coll.Data, coll.Pages)
	if err != nil {
		return nil, nil, err
	}
	provenance, err := g.builder.Explain(ctx, coll.Data, coll.Pages)
	if err != nil {
		return nil, nil, err
	}
	pages, err := nameAll(c, composites)
	if err != nil {
		return nil, nil, err
	}
	return pages, provenance, nil
}

func (g *Generator) build(ctx context.Context, c *Collection) ([]core.Page, error) {
	coll, err := c.Source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", c.Name, err)
	}
	g.logger.Debug("fetched collection",
		"collection", c.Name,
		"source", c.Source.Describe(),
		"pages", len(coll.Pages))

	composites, err := g.builder.Cascade(ctx, coll.Data, coll.Pages)
	if err != nil {
		return nil, fmt.Errorf("cascade %s: %w", c.Name, err)
	}
	return nameAll(c, composites)
}

func nameAll(c *Collection, composites []core.Record) ([]core.Page, error) {
	pages := make([]core.Page, len(composites))
	seen := make(map[string]int, len(composites))
	for i, composite := range composites {
		name, err := pageName(c.Namer, i, composite)
		if err != nil {
			return nil, fmt.Errorf("name page %d: %w", i, err)
		}
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("pages %d and %d both map to %q", prev, i, name)
		}
		seen[name] = i
		pages[i] = core.Page{Index: i, Name: name, Data: composite}
	}
	return pages, nil
}

func pageName(n Namer, index int, page core.Record) (string, error) {
	if n == nil {
		return fmt.Sprintf("page-%d.html", index), nil
	}
	return n.Name(index, page)
}
