package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/pagegen/internal/generator"
	"github.com/leapstack-labs/pagegen/internal/watch"
	"github.com/leapstack-labs/pagegen/pkg/core"
)

// GenerateOptions holds options for the generate command.
type GenerateOptions struct {
	Watch   bool
	NoState bool
}

// generateResult is the JSON shape of one collection's outcome.
type generateResult struct {
	Collection string    `json:"collection"`
	Pages      []string  `json:"pages"`
	Run        *core.Run `json:"run,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [collection...]",
		Short: "Generate pages for one or more collections",
		Long: `Fetch each collection's data, combine the base record with every page
override, and render one file per page into the output directory.

Without arguments every configured collection is generated. Each run is
recorded in the state database unless --no-state is given.`,
		Example: `  # Generate every collection
  pagegen generate

  # Generate a single collection from a local file
  pagegen generate --source-file data/brothers.yaml

  # Regenerate whenever templates or data files change
  pagegen generate --watch`,
		Aliases: []string{"gen"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Regenerate when templates or data files change")
	cmd.Flags().BoolVar(&opts.NoState, "no-state", false, "Do not record runs in the state database")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string, opts *GenerateOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	var store core.Store
	if !opts.NoState {
		s, cleanup, err := cc.OpenStore()
		if err != nil {
			return err
		}
		defer cleanup()
		store = s
	}

	gen, err := cc.NewGenerator(store, true)
	if err != nil {
		return err
	}
	names, err := selectCollections(gen, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	err = generateAll(ctx, cc, gen, names)
	if !opts.Watch {
		return err
	}
	if err != nil {
		cc.Logger.Error("initial generation failed", "error", err)
	}

	w := watch.New(watchPaths(cc.Cfg), watch.WithLogger(cc.Logger))
	return w.Run(ctx, func(ctx context.Context) error {
		return generateAll(ctx, cc, gen, names)
	})
}

// generateAll runs every named collection, reports the outcome and
// returns the joined errors.
func generateAll(ctx context.Context, cc *CommandContext, gen *generator.Generator, names []string) error {
	results := make([]generateResult, 0, len(names))
	var errs []error

	for _, name := range names {
		res, err := gen.Run(ctx, name)
		out := generateResult{Collection: name, Pages: []string{}}
		if res != nil {
			out.Run = res.Run
			for _, p := range res.Pages {
				out.Pages = append(out.Pages, p.Name)
			}
		}
		if err != nil {
			out.Error = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		results = append(results, out)
	}

	if cc.Format == formatJSON {
		if err := renderJSON(cc.Out, results); err != nil {
			return err
		}
		return errors.Join(errs...)
	}

	rows := make([][]any, 0, len(results))
	for _, r := range results {
		status, runID := string(core.RunStatusCompleted), "-"
		if r.Error != "" {
			status = string(core.RunStatusFailed)
		}
		if r.Run != nil {
			runID = shortID(r.Run.ID)
		}
		rows = append(rows, []any{r.Collection, len(r.Pages), status, runID})
	}
	renderTable(cc.Out, []string{"Collection", "Pages", "Status", "Run"}, rows)
	return errors.Join(errs...)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
