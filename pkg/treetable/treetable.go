// Package treetable provides a public Go API for filtering nested records
// with the global text filter of the treetable CLI.
//
// A row stays in the result when it matches the query, when an ancestor
// matches, or when any of its descendants matches.
//
// Basic usage:
//
//	result, err := treetable.Filter(ctx, records, nil, "smith")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Table())
//
// With options:
//
//	result, err := treetable.Filter(ctx, records, treetable.DefaultColumns(), "smith",
//	    treetable.WithAutoExpand(),
//	    treetable.WithExclude("status=single"),
//	)
package treetable

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hupe1980/treetable/internal/dataset"
	"github.com/hupe1980/treetable/internal/filter"
	"github.com/hupe1980/treetable/internal/output"
	"github.com/hupe1980/treetable/internal/render"
	"github.com/hupe1980/treetable/internal/row"
	"github.com/hupe1980/treetable/internal/table"
)

// Column is a table column: a leaf with an accessor or a header group.
type Column = table.Column

// Row is a node of the filtered forest.
type Row = row.Row

// ExcludedRow is a row removed by the pass, with the reason.
type ExcludedRow = filter.ExcludedRow

// FilterFunc filters one level of the forest; see WithFilterFunc.
type FilterFunc = filter.Func

// JQ is a compiled jq predicate usable as the query of [Filter].
type JQ = filter.JQ

// CompileJQ compiles a jq predicate. Passed as the query, it keeps rows whose
// record makes the program yield a value other than null or false, along with
// their ancestors and sub-rows.
func CompileJQ(expr string) (*JQ, error) { return filter.CompileJQ(expr) }

// ErrInvalidColumns is returned for malformed column layouts.
var ErrInvalidColumns = table.ErrInvalidColumns

// DefaultColumns returns the demo layout: an expander column and a "Name"
// group with first and last name.
func DefaultColumns() []Column { return table.DefaultColumns() }

// ColumnsFor returns a flat layout with one column per accessor.
func ColumnsFor(accessors ...string) []Column { return table.ColumnsFor(accessors) }

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Option configures a filter pass.
// Use the With* functions to create Options.
type Option func(*options)

type options struct {
	subRows      table.SubRowsFunc
	expanded     []string
	expandAll    bool
	autoExpand   bool
	filterFunc   filter.Func
	exclude      []string
	maxDepth     int
	maxCellWidth int
	logger       *slog.Logger
}

// WithSubRows replaces the default subRows key lookup.
func WithSubRows(fn func(record map[string]any) []map[string]any) Option {
	return func(o *options) { o.subRows = fn }
}

// WithExpanded marks rows as expanded by id.
func WithExpanded(ids ...string) Option {
	return func(o *options) { o.expanded = append(o.expanded, ids...) }
}

// WithExpandAll expands every row of the unfiltered forest.
func WithExpandAll() Option { return func(o *options) { o.expandAll = true } }

// WithAutoExpand expands the ancestors of every matched row.
func WithAutoExpand() Option { return func(o *options) { o.autoExpand = true } }

// WithFilterFunc replaces the global text filter, e.g. for structured
// query values.
func WithFilterFunc(fn FilterFunc) Option { return func(o *options) { o.filterFunc = fn } }

// WithExclude drops rows matching a selector ("status=single",
// "age in (20,30)") before the query runs. Repeated selectors each drop
// their matches.
func WithExclude(selectors ...string) Option {
	return func(o *options) { o.exclude = append(o.exclude, selectors...) }
}

// WithMaxDepth drops rows nested deeper than depth.
func WithMaxDepth(depth int) Option { return func(o *options) { o.maxDepth = depth } }

// WithMaxCellWidth caps the cell width of Result.Table.
func WithMaxCellWidth(n int) Option { return func(o *options) { o.maxCellWidth = n } }

// WithLogger sets a logger for debug output of the pass.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// Result holds the outcome of a filter pass.
type Result struct {
	// Query is the filter value of the pass.
	Query any

	// Columns is the column layout used.
	Columns []Column

	// Rows is the filtered forest.
	Rows []*Row

	// Visible are the rows shown under the expansion state, in display order.
	Visible []*Row

	// MatchedIDs are the ids of directly matched rows.
	MatchedIDs []string

	// Expanded are the ids of the expanded rows.
	Expanded []string

	// Excluded are the removed rows.
	Excluded []ExcludedRow

	// Total is the number of rows before filtering.
	Total int

	view         *table.View
	maxCellWidth int
}

// Filter builds the forest from records and runs the global filter with
// query. A nil columns layout is inferred from the records. An empty query
// keeps every row; a [JQ] query filters by predicate; any other non-string
// query removes every row unless a custom FilterFunc handles it.
func Filter(ctx context.Context, records []map[string]any, columns []Column, query any, opts ...Option) (*Result, error) {
	o := &options{maxDepth: -1, maxCellWidth: 24}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = discardLogger()
	}

	if columns == nil {
		columns = table.InferColumns(records, o.subRows)
	}

	pre, err := buildPrefilters(o)
	if err != nil {
		return nil, err
	}

	expanded := table.Expanded{}
	for _, id := range o.expanded {
		expanded.Set(id, true)
	}

	filterFunc := o.filterFunc
	if _, ok := query.(*JQ); ok && filterFunc == nil {
		filterFunc = filter.JQFunc
	}

	m := &table.Model{
		Data:       records,
		Columns:    columns,
		SubRows:    o.subRows,
		Query:      query,
		Expanded:   expanded,
		FilterFunc: filterFunc,
		AutoExpand: o.autoExpand,
		Prefilters: pre,
	}

	view, err := m.Compute(ctx)
	if err != nil {
		return nil, err
	}

	if o.expandAll {
		m.Expanded.ToggleAll(view.PreFilterRows)

		if view, err = m.Compute(ctx); err != nil {
			return nil, err
		}
	}

	o.logger.Debug("filter pass completed",
		slog.Int("rows", row.Count(view.PreFilterRows)),
		slog.Int("visible", len(view.Visible)),
		slog.Int("matched", len(view.MatchedIDs)),
	)

	return &Result{
		Query:        query,
		Columns:      columns,
		Rows:         view.Rows,
		Visible:      view.Visible,
		MatchedIDs:   view.MatchedIDs,
		Expanded:     view.Expanded.IDs(),
		Excluded:     view.Excluded,
		Total:        row.Count(view.PreFilterRows),
		view:         view,
		maxCellWidth: o.maxCellWidth,
	}, nil
}

// FilterFile loads a JSON, YAML or SQLite data file and filters its
// records. Columns stored in the file are used unless columns is non-nil.
func FilterFile(ctx context.Context, path string, columns []Column, query any, opts ...Option) (*Result, error) {
	if path == "" {
		return nil, errors.New("data file path must not be empty")
	}

	doc, err := dataset.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	if columns == nil && len(doc.Columns) > 0 {
		columns = doc.Columns
	}

	return Filter(ctx, doc.Records, columns, query, opts...)
}

// ErrInvalidRows is returned by FilterRows for forests with malformed ids.
var ErrInvalidRows = errors.New("invalid rows")

// PassResult is the outcome of FilterRows: the retained forest, the removed
// rows and the ids of direct matches.
type PassResult = filter.Result

// FilterRows runs the global filter over a forest built by the caller, for
// columnIDs. The forest is linked in place (Parent and Depth) and its ids are
// checked first: they must be unique and every child id must extend its
// parent's id. Of the options only WithFilterFunc and WithLogger apply.
func FilterRows(ctx context.Context, rows []*Row, columnIDs []string, query any, opts ...Option) (*PassResult, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = discardLogger()
	}

	row.Link(rows)

	if err := row.NewIndex(rows).Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRows, err)
	}

	fn := o.filterFunc
	if _, ok := query.(*JQ); ok && fn == nil {
		fn = filter.JQFunc
	}

	res, err := filter.Pass(ctx, rows, columnIDs, query, filter.WithFunc(fn))
	if err != nil {
		return nil, err
	}

	o.logger.Debug("row pass completed",
		slog.Int("rows", row.Count(rows)),
		slog.Int("included", row.Count(res.Included)),
		slog.Int("matched", len(res.MatchedIDs)),
	)

	return res, nil
}

func buildPrefilters(o *options) ([]filter.Filter, error) {
	var filters []filter.Filter

	for _, expr := range o.exclude {
		sel, err := filter.NewSelector(expr)
		if err != nil {
			return nil, fmt.Errorf("exclude: %w", err)
		}

		filters = append(filters, sel)
	}

	if o.maxDepth >= 0 {
		filters = append(filters, filter.NewDepthFilter(o.maxDepth))
	}

	return filters, nil
}

// VisibleIDs returns the ids of the visible rows.
func (r *Result) VisibleIDs() []string {
	ids := make([]string, len(r.Visible))
	for i, v := range r.Visible {
		ids[i] = v.ID
	}

	return ids
}

// Table renders the visible rows as plain text.
func (r *Result) Table() string {
	opts := render.DefaultOptions()
	opts.MaxCellWidth = r.maxCellWidth
	opts.Matched = r.MatchedIDs

	return render.String(r.Columns, r.Visible, r.view.Expanded, opts)
}

// JSON serializes the result. The forest is cut at collapsed rows unless
// all is set.
func (r *Result) JSON(all bool) ([]byte, error) {
	q, _ := r.Query.(string)

	return output.SerializeJSON(output.NewDocument(q, r.Columns, r.view, !all), output.DefaultSerializeOptions())
}

// YAML is like JSON but produces YAML.
func (r *Result) YAML(all bool) ([]byte, error) {
	q, _ := r.Query.(string)

	return output.Serialize(output.NewDocument(q, r.Columns, r.view, !all), output.DefaultSerializeOptions())
}
