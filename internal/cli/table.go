package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/hupe1980/treetable/internal/config"
	"github.com/hupe1980/treetable/internal/dataset"
	"github.com/hupe1980/treetable/internal/filter"
	"github.com/hupe1980/treetable/internal/render"
	"github.com/hupe1980/treetable/internal/table"
)

// loadDocument reads a data file and maps failures to exit codes: an
// unknown extension is a usage error, everything else a runtime error.
func loadDocument(ctx context.Context, path string) (*dataset.Document, error) {
	doc, err := dataset.Load(ctx, path)
	if err != nil {
		if errors.Is(err, dataset.ErrUnsupportedFormat) {
			return nil, &ExitError{Code: exitBadInput, Err: err}
		}

		return nil, &ExitError{Code: exitRuntime, Err: err}
	}

	return doc, nil
}

// resolveColumns picks the column layout: --columns first, then the layout
// section of the config file, then the columns stored in the data file, and
// finally a layout inferred from the records.
func resolveColumns(cfg *config.Config, doc *dataset.Document) ([]table.Column, error) {
	if len(cfg.Columns) > 0 {
		return table.ColumnsFor(cfg.Columns), nil
	}

	layout, err := config.LoadLayoutConfig(cfg.ConfigFile)
	if err != nil {
		return nil, &ExitError{Code: exitBadInput, Err: err}
	}

	if !layout.IsEmpty() {
		return columnsFromSpecs(layout.Columns), nil
	}

	if len(doc.Columns) > 0 {
		return doc.Columns, nil
	}

	return table.InferColumns(doc.Records, nil), nil
}

func columnsFromSpecs(specs []config.ColumnSpec) []table.Column {
	cols := make([]table.Column, 0, len(specs))

	for _, s := range specs {
		cols = append(cols, table.Column{
			ID:                  s.ID,
			Header:              s.Header,
			Accessor:            s.Accessor,
			Columns:             columnsFromSpecs(s.Columns),
			DisableGlobalFilter: s.DisableGlobalFilter,
		})
	}

	return cols
}

// filterValue returns the value handed to the global filter: a compiled jq
// program when --jq is set, the query text otherwise.
func filterValue(cfg *config.Config) (any, error) {
	if cfg.JQ == "" {
		return cfg.Query, nil
	}

	q, err := filter.CompileJQ(cfg.JQ)
	if err != nil {
		return nil, &ExitError{Code: exitBadInput, Err: fmt.Errorf("--jq: %w", err)}
	}

	return q, nil
}

// queryLabel describes the filter value for documents and logs.
func queryLabel(cfg *config.Config) string {
	if cfg.JQ != "" {
		return "jq " + cfg.JQ
	}

	return cfg.Query
}

// computeView runs the pass for query. With expandAll every row of the
// unfiltered forest starts expanded.
func computeView(ctx context.Context, cfg *config.Config, doc *dataset.Document, cols []table.Column, query any) (*table.View, error) {
	pre, err := prefilters(cfg)
	if err != nil {
		return nil, err
	}

	m := &table.Model{
		Data:       doc.Records,
		Columns:    cols,
		Query:      query,
		Expanded:   table.Expanded{},
		AutoExpand: cfg.AutoExpand,
		Prefilters: pre,
	}

	if _, ok := query.(*filter.JQ); ok {
		m.FilterFunc = filter.JQFunc
	}

	view, err := m.Compute(ctx)
	if err != nil {
		return nil, computeError(err)
	}

	if cfg.ExpandAll {
		m.Expanded.ToggleAll(view.PreFilterRows)

		if view, err = m.Compute(ctx); err != nil {
			return nil, computeError(err)
		}
	}

	return view, nil
}

// prefilters builds the row filters that run before the query: one
// selector per --exclude value, then the depth limit.
func prefilters(cfg *config.Config) ([]filter.Filter, error) {
	var filters []filter.Filter

	for _, expr := range cfg.Exclude {
		sel, err := filter.NewSelector(expr)
		if err != nil {
			return nil, &ExitError{Code: exitBadInput, Err: fmt.Errorf("--exclude: %w", err)}
		}

		filters = append(filters, sel)
	}

	if cfg.MaxDepth >= 0 {
		filters = append(filters, filter.NewDepthFilter(cfg.MaxDepth))
	}

	return filters, nil
}

func computeError(err error) error {
	if errors.Is(err, table.ErrInvalidColumns) {
		return &ExitError{Code: exitBadInput, Err: err}
	}

	return &ExitError{Code: exitRuntime, Err: fmt.Errorf("computing table: %w", err)}
}

// renderOptions returns renderer options styled for w: colors only when w
// is a terminal and --no-color is not set.
func renderOptions(cfg *config.Config, w io.Writer) render.Options {
	opts := render.DefaultOptions()
	opts.MaxCellWidth = cfg.MaxCellWidth
	opts.Theme = themeFor(cfg, w)

	return opts
}

func themeFor(cfg *config.Config, w io.Writer) render.Theme {
	if !cfg.NoColor && isTerminal(w) {
		return render.DefaultTheme()
	}

	return render.PlainTheme()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func visibleIDs(view *table.View) []string {
	ids := make([]string, len(view.Visible))
	for i, r := range view.Visible {
		ids[i] = r.ID
	}

	return ids
}
