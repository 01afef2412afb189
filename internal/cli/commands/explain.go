package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ExplainOptions holds options for the explain command.
type ExplainOptions struct {
	Page int
}

type explainKey struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
	Depth int    `json:"depth"`
	From  string `json:"from"`
}

type explainResult struct {
	Page int          `json:"page"`
	Name string       `json:"name"`
	Keys []explainKey `json:"keys"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand() *cobra.Command {
	opts := &ExplainOptions{}

	cmd := &cobra.Command{
		Use:   "explain [collection]",
		Short: "Show where each value of a page came from",
		Long: `Print every top-level key of one page's composite together with the
record that supplied it: the shared base or the page's own override.`,
		Example: `  pagegen explain --page 2
  pagegen explain brothers --page 0 -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(cmd, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Page, "page", "p", 0, "Index of the page to explain")

	return cmd
}

func runExplain(cmd *cobra.Command, args []string, opts *ExplainOptions) error {
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

	pages, provenance, err := gen.Explain(cmd.Context(), name)
	if err != nil {
		return err
	}
	if opts.Page < 0 || opts.Page >= len(pages) {
		return fmt.Errorf("page %d out of range: collection %q has %d pages", opts.Page, name, len(pages))
	}

	page, prov := pages[opts.Page], provenance[opts.Page]
	result := explainResult{Page: page.Index, Name: page.Name, Keys: []explainKey{}}
	for _, key := range prov.Keys() {
		depth := prov[key]
		from := "base"
		if depth > 0 {
			from = "override"
		}
		result.Keys = append(result.Keys, explainKey{Key: key, Value: page.Data[key], Depth: depth, From: from})
	}

	if cc.Format == formatJSON {
		return renderJSON(cc.Out, result)
	}

	_, _ = fmt.Fprintf(cc.Out, "Page %d: %s\n", result.Page, result.Name)
	rows := make([][]any, len(result.Keys))
	for i, k := range result.Keys {
		rows[i] = []any{k.Key, formatValue(k.Value), k.From}
	}
	renderTable(cc.Out, []string{"Key", "Value", "From"}, rows)
	return nil
}
