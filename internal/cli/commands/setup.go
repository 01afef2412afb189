package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/pagegen/internal/cli/config"
	"github.com/leapstack-labs/pagegen/internal/forest"
	"github.com/leapstack-labs/pagegen/internal/generator"
	"github.com/leapstack-labs/pagegen/internal/render"
	"github.com/leapstack-labs/pagegen/internal/source"
	"github.com/leapstack-labs/pagegen/internal/starlark"
	"github.com/leapstack-labs/pagegen/internal/state"
	"github.com/leapstack-labs/pagegen/pkg/core"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Out    io.Writer
	Format string // resolved output format: text or json
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, err
	}
	return &CommandContext{
		Cfg:    cfg,
		Logger: config.GetLogger(cmd.Context()),
		Out:    cmd.OutOrStdout(),
		Format: resolveFormat(cfg.OutputFormat, cmd.OutOrStdout()),
	}, nil
}

// getConfig returns the configuration loaded by the root command, loading
// it from the working directory when a command runs standalone.
func getConfig() (*config.Config, error) {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg, nil
	}
	return config.LoadConfig("", nil)
}

// OpenStore opens and migrates the run history database.
// The returned cleanup function must be called (typically via defer).
func (cc *CommandContext) OpenStore() (*state.SQLiteStore, func(), error) {
	store := state.NewSQLiteStore(cc.Logger)
	if err := store.Open(cc.Cfg.StatePath); err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// Builder creates the forest builder selected by the configuration.
func (cc *CommandContext) Builder() (*forest.Builder, error) {
	strategy, err := forest.ParseStrategy(cc.Cfg.Strategy)
	if err != nil {
		return nil, err
	}
	return forest.New(
		forest.WithLogger(cc.Logger),
		forest.WithStrategy(strategy),
		forest.WithWorkers(cc.Cfg.Workers),
	), nil
}

// NewGenerator registers the configured collections and returns a
// generator over them. Renderers are only built when withRenderer is set,
// so commands that never write pages do not need a templates directory.
func (cc *CommandContext) NewGenerator(store core.Store, withRenderer bool) (*generator.Generator, error) {
	if err := cc.Cfg.Validate(); err != nil {
		return nil, err
	}
	collections, err := cc.Cfg.ResolveCollections()
	if err != nil {
		return nil, err
	}

	poolSize := max(cc.Cfg.Workers, 1)
	registry := generator.NewRegistry()
	for _, c := range collections {
		src, err := source.FromConfig(c.Source, cc.Logger)
		if err != nil {
			return nil, fmt.Errorf("collection %q: %w", c.Name, err)
		}
		namer, err := starlark.NewNameEvaluator(c.OutputName, poolSize)
		if err != nil {
			return nil, fmt.Errorf("collection %q: %w", c.Name, err)
		}

		entry := &generator.Collection{Name: c.Name, Source: src, Namer: namer}
		if withRenderer {
			r, err := render.New(render.Config{
				TemplatesDir: cc.Cfg.TemplatesDir,
				Template:     c.Template,
				OutputDir:    c.OutputDir,
				Logger:       cc.Logger,
			})
			if err != nil {
				return nil, fmt.Errorf("collection %q: %w", c.Name, err)
			}
			entry.Renderer = r
		}
		if err := registry.Register(entry); err != nil {
			return nil, err
		}
	}

	builder, err := cc.Builder()
	if err != nil {
		return nil, err
	}

	opts := []generator.Option{generator.WithLogger(cc.Logger), generator.WithBuilder(builder)}
	if store != nil {
		opts = append(opts, generator.WithStore(store))
	}
	return generator.New(registry, opts...), nil
}

// selectCollections returns args, or every registered collection when
// args is empty. Unknown names are rejected.
func selectCollections(gen *generator.Generator, args []string) ([]string, error) {
	if len(args) == 0 {
		return gen.Registry().Names(), nil
	}
	for _, name := range args {
		if _, err := gen.Registry().Get(name); err != nil {
			return nil, err
		}
	}
	return args, nil
}

// singleCollection picks the collection a read-only command works on.
func singleCollection(gen *generator.Generator, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	names := gen.Registry().Names()
	if len(names) != 1 {
		return "", fmt.Errorf("several collections configured, name one of %v", names)
	}
	return names[0], nil
}

// watchPaths lists the templates directory and every file source.
func watchPaths(cfg *config.Config) []string {
	paths := []string{cfg.TemplatesDir}
	collections, err := cfg.ResolveCollections()
	if err != nil {
		return paths
	}
	for _, c := range collections {
		if c.Source.File != "" {
			paths = append(paths, c.Source.File)
		}
	}
	return paths
}
