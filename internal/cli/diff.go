package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/treetable/internal/config"
	"github.com/hupe1980/treetable/internal/diff"
	"github.com/hupe1980/treetable/internal/render"
)

type diffOptions struct {
	from     string
	to       string
	context  int
	exitCode bool
}

func newDiffCommand() *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff <data-file>",
		Short: "Compare the tables of two filter queries",
		Long: `Diff renders the table of a data file for two queries and prints a
unified diff of the renderings, followed by a summary of the rows that
became visible or hidden.

Exit codes:
  0  Success (or no differences with --exit-code)
  1  Error, or differences found with --exit-code
  2  Invalid arguments`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, args[0], opts)
		},
	}

	registerTableFlags(cmd)

	f := cmd.Flags()
	f.StringVar(&opts.from, "from", "", "query of the old rendering")
	f.StringVar(&opts.to, "to", "", "query of the new rendering")
	f.IntVar(&opts.context, "context", 3, "lines of context around each change")
	f.BoolVar(&opts.exitCode, "exit-code", false, "exit with code 1 when the renderings differ")

	return cmd
}

func runDiff(cmd *cobra.Command, path string, opts *diffOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)

	if opts.from == opts.to {
		return &ExitError{Code: exitBadInput, Err: fmt.Errorf("--from and --to must differ")}
	}

	if opts.context < 0 {
		return &ExitError{Code: exitBadInput, Err: fmt.Errorf("--context must not be negative")}
	}

	doc, err := loadDocument(ctx, path)
	if err != nil {
		return err
	}

	cols, err := resolveColumns(cfg, doc)
	if err != nil {
		return err
	}

	oldView, err := computeView(ctx, cfg, doc, cols, opts.from)
	if err != nil {
		return err
	}

	newView, err := computeView(ctx, cfg, doc, cols, opts.to)
	if err != nil {
		return err
	}

	renderOpts := render.DefaultOptions()
	renderOpts.MaxCellWidth = cfg.MaxCellWidth

	oldText := render.String(cols, oldView.Visible, oldView.Expanded, renderOpts) + "\n"
	newText := render.String(cols, newView.Visible, newView.Expanded, renderOpts) + "\n"

	result, err := diff.Compute(oldText, newText, diff.Options{
		OldLabel: "query: " + quoteQuery(opts.from),
		NewLabel: "query: " + quoteQuery(opts.to),
		Context:  opts.context,
	})
	if err != nil {
		return &ExitError{Code: exitRuntime, Err: err}
	}

	out := cmd.OutOrStdout()
	color := !cfg.NoColor && isTerminal(out)

	diff.Write(out, result, color)

	changes := diff.Visibility(visibleIDs(oldView), visibleIDs(newView))
	_, _ = fmt.Fprintf(out, "\nrows: %s\n", diff.Summary(changes))

	if shown := diff.IDs(changes, diff.Shown); len(shown) > 0 {
		_, _ = fmt.Fprintf(out, "  shown:  %s\n", strings.Join(shown, ", "))
	}

	if hidden := diff.IDs(changes, diff.Hidden); len(hidden) > 0 {
		_, _ = fmt.Fprintf(out, "  hidden: %s\n", strings.Join(hidden, ", "))
	}

	if opts.exitCode && result.HasDifferences {
		return &ExitError{Code: exitRuntime, Err: fmt.Errorf("renderings differ")}
	}

	return nil
}

func quoteQuery(q string) string {
	if q == "" {
		return "(none)"
	}

	return fmt.Sprintf("%q", q)
}
