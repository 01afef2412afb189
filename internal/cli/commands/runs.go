package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/pagegen/pkg/core"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent generation runs",
		Long:  `Show the run history recorded in the state database, newest first.`,
		Example: `  pagegen runs
  pagegen runs --limit 5 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRuns(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")

	return cmd
}

func runRuns(cmd *cobra.Command, limit int) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	store, cleanup, err := cc.OpenStore()
	if err != nil {
		return err
	}
	defer cleanup()

	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}

	if cc.Format == formatJSON {
		if runs == nil {
			runs = []*core.Run{}
		}
		return renderJSON(cc.Out, runs)
	}

	rows := make([][]any, len(runs))
	for i, r := range runs {
		duration := "-"
		if r.CompletedAt != nil {
			duration = r.CompletedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		rows[i] = []any{
			shortID(r.ID),
			r.Collection,
			string(r.Status),
			r.PageCount,
			r.StartedAt.Local().Format(time.DateTime),
			duration,
			r.Error,
		}
	}
	renderTable(cc.Out, []string{"Run", "Collection", "Status", "Pages", "Started", "Duration", "Error"}, rows)
	return nil
}
