package commands

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/pagegen/pkg/core"
)

// NewPreviewCommand creates the preview command.
func NewPreviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preview [collection]",
		Short: "Print the composite record of every page",
		Long: `Fetch a collection and print the composite record computed for each
page, without rendering anything. The collection argument may be omitted
when only one collection is configured.`,
		Example: `  pagegen preview
  pagegen preview brothers -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPreview,
	}
}

func runPreview(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	gen, err := cc.NewGenerator(nil, false)
	if err != nil {
		return err
	}
	name, err := singleCollection(gen, args)
	if err != nil {
		return err
	}

	pages, err := gen.Build(cmd.Context(), name)
	if err != nil {
		return err
	}

	if cc.Format == formatJSON {
		if pages == nil {
			pages = []core.Page{}
		}
		return renderJSON(cc.Out, pages)
	}

	keys := unionKeys(pages)
	header := append([]string{"#", "Name"}, keys...)
	rows := make([][]any, len(pages))
	for i, p := range pages {
		row := []any{p.Index, p.Name}
		for _, k := range keys {
			v, ok := p.Data[k]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, formatValue(v))
		}
		rows[i] = row
	}
	renderTable(cc.Out, header, rows)
	return nil
}

// unionKeys returns every top-level key used by any page, sorted.
func unionKeys(pages []core.Page) []string {
	seen := make(map[string]struct{})
	for _, p := range pages {
		for k := range p.Data {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
