package commands

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/pagegen/internal/serve"
	"github.com/leapstack-labs/pagegen/internal/watch"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var watchFiles bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Generate pages and serve them for local preview",
		Long: `Generate every collection, then serve the output directory over HTTP.

With --watch, pages are regenerated when templates or data files change
and connected browsers listening on /events are told to reload.`,
		Example: `  pagegen serve --port 9000 --watch`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, watchFiles)
		},
	}

	cmd.Flags().BoolVarP(&watchFiles, "watch", "w", false, "Regenerate and notify clients when files change")
	// Read through the config layer as serve.port.
	cmd.Flags().Int("port", 0, "Port to listen on (default 8080)")

	return cmd
}

func runServe(cmd *cobra.Command, watchFiles bool) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	watchFiles = watchFiles || cc.Cfg.Serve.Watch
	if err := cc.Cfg.ValidateServe(); err != nil {
		return err
	}

	store, cleanup, err := cc.OpenStore()
	if err != nil {
		return err
	}
	defer cleanup()

	gen, err := cc.NewGenerator(store, true)
	if err != nil {
		return err
	}
	names := gen.Registry().Names()

	ctx := cmd.Context()
	if err := generateAll(ctx, cc, gen, names); err != nil {
		cc.Logger.Error("generation failed", "error", err)
	}

	srv := serve.NewServer(serve.Config{
		Port:        cc.Cfg.Serve.Port,
		OutputDir:   cc.Cfg.OutputDir,
		Store:       store,
		Collections: names,
		Logger:      cc.Logger,
	})

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return srv.Serve(egctx)
	})
	if watchFiles {
		w := watch.New(watchPaths(cc.Cfg), watch.WithLogger(cc.Logger))
		eg.Go(func() error {
			return w.Run(egctx, func(ctx context.Context) error {
				err := generateAll(ctx, cc, gen, names)
				srv.Notifier().Broadcast()
				return err
			})
		})
	}
	return eg.Wait()
}
