package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/treetable/internal/config"
	"github.com/hupe1980/treetable/internal/logging"
	"github.com/hupe1980/treetable/internal/output"
	"github.com/hupe1980/treetable/internal/render"
	"github.com/hupe1980/treetable/internal/table"
)

type filterOptions struct {
	format       string
	output       string
	showExpanded bool
	all          bool
	limit        int
}

func newFilterCommand() *cobra.Command {
	opts := &filterOptions{}

	cmd := &cobra.Command{
		Use:   "filter <data-file>",
		Short: "Filter a data file and print the resulting table",
		Long: `Filter runs the global filter over the records of a data file and
prints the remaining rows.

Supported formats:
  table     The rendered table, as the browser shows it (default)
  yaml      The filtered rows with match and expansion metadata
  json      Same as yaml, as JSON
  markdown  A Markdown table with matched rows in bold
  html      A standalone HTML page
  asciidoc  An AsciiDoc table

All formats but table cut the tree at collapsed rows unless --all is
given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(cmd, args[0], opts)
		},
	}

	registerTableFlags(cmd)

	f := cmd.Flags()
	f.StringVar(&opts.format, "format", "table", "output format: table, yaml, json, markdown, html, asciidoc")
	f.StringVarP(&opts.output, "output", "o", "", "output file path (default: stdout)")
	f.BoolVar(&opts.showExpanded, "show-expanded", false, "append the expanded state as JSON")
	f.BoolVar(&opts.all, "all", false, "include collapsed sub-rows in yaml and json output")
	f.IntVar(&opts.limit, "limit", 0, "maximum number of table rows to print (0 = all)")

	return cmd
}

func runFilter(cmd *cobra.Command, path string, opts *filterOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	if opts.limit < 0 {
		return &ExitError{Code: exitBadInput, Err: fmt.Errorf("--limit must not be negative")}
	}

	doc, err := loadDocument(ctx, path)
	if err != nil {
		return err
	}

	cols, err := resolveColumns(cfg, doc)
	if err != nil {
		return err
	}

	query, err := filterValue(cfg)
	if err != nil {
		return err
	}

	view, err := computeView(ctx, cfg, doc, cols, query)
	if err != nil {
		return err
	}

	logger.Debug("filter pass completed",
		slog.String("query", queryLabel(cfg)),
		slog.Int("rows", len(view.Rows)),
		slog.Int("visible", len(view.Visible)),
		slog.Int("matched", len(view.MatchedIDs)),
		slog.Int("excluded", len(view.Excluded)),
	)

	out := cmd.OutOrStdout()

	renderOpts := renderOptions(cfg, out)
	if opts.output != "" {
		renderOpts.Theme = render.PlainTheme()
	}

	renderOpts.Limit = opts.limit
	renderOpts.Matched = view.MatchedIDs

	reg := output.DefaultRegistry()
	reg.Register("table", tableEncoder(cols, view, renderOpts))

	enc, err := reg.Encoder(opts.format)
	if err != nil {
		return &ExitError{Code: exitBadInput, Err: err}
	}

	data, err := enc(output.NewDocument(queryLabel(cfg), cols, view, !opts.all))
	if err != nil {
		return &ExitError{Code: exitRuntime, Err: err}
	}

	if opts.showExpanded {
		state, err := output.ExpandedJSON(view.Expanded)
		if err != nil {
			return &ExitError{Code: exitRuntime, Err: err}
		}

		data = append(data, state...)
	}

	if err := output.NewWriter(opts.output, out, logger).Write(data); err != nil {
		return &ExitError{Code: exitRuntime, Err: err}
	}

	return nil
}

// tableEncoder renders the view itself; the document only serves the
// structured formats.
func tableEncoder(cols []table.Column, view *table.View, opts render.Options) output.Encoder {
	return func(*output.Document) ([]byte, error) {
		return []byte(render.String(cols, view.Visible, view.Expanded, opts) + "\n"), nil
	}
}
