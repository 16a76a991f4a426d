package table

import (
	"context"
	"fmt"

	"github.com/hupe1980/treetable/internal/filter"
	"github.com/hupe1980/treetable/internal/row"
)

// Model holds the inputs of a table. Every call to Compute derives the
// whole view again from these inputs; nothing is cached between calls, so a
// change of Data, Columns or Query is always reflected.
type Model struct {
	Data     []map[string]any
	Columns  []Column
	SubRows  SubRowsFunc
	Query    any
	Expanded Expanded
	// FilterFunc replaces the default global filter.
	FilterFunc filter.Func
	// AutoExpand expands the lineage of every matched row in the view.
	AutoExpand bool
	// Prefilters run before the global filter, e.g. selectors or a depth
	// limit. Their exclusions are reported in View.Excluded.
	Prefilters []filter.Filter
}

// View is the derived table state.
type View struct {
	// PreFilterRows is the full forest built from the data.
	PreFilterRows []*row.Row
	// Rows is the filtered forest.
	Rows []*row.Row
	// Visible is Rows flattened by the effective expansion state.
	Visible []*row.Row
	// Expanded is the effective expansion state. It is a copy; the model's
	// own state is left untouched.
	Expanded Expanded
	// MatchedIDs are the directly matched row ids of the pass.
	MatchedIDs []string
	// Excluded are the rows removed by the pass.
	Excluded []filter.ExcludedRow
}

// Compute builds the forest, runs the filter pass and flattens the result.
func (m *Model) Compute(ctx context.Context) (*View, error) {
	if err := ValidateColumns(m.Columns); err != nil {
		return nil, err
	}

	pre := Build(m.Data, m.Columns, m.SubRows)

	var opts []filter.Option
	if m.FilterFunc != nil {
		opts = append(opts, filter.WithFunc(m.FilterFunc))
	}

	filters := append(append([]filter.Filter(nil), m.Prefilters...),
		filter.NewGlobal(GlobalFilterColumnIDs(m.Columns), m.Query, opts...))

	res, err := filter.NewChain(filters...).Apply(ctx, pre)
	if err != nil {
		return nil, fmt.Errorf("filtering rows: %w", err)
	}

	expanded := m.Expanded.Clone()
	if m.AutoExpand {
		expanded.ExpandLineage(res.Included, res.MatchedIDs)
	}

	return &View{
		PreFilterRows: pre,
		Rows:          res.Included,
		Visible:       Visible(res.Included, expanded),
		Expanded:      expanded,
		MatchedIDs:    res.MatchedIDs,
		Excluded:      res.Excluded,
	}, nil
}

// Rows returns the visible rows of a fresh Compute.
func (m *Model) Rows(ctx context.Context) ([]*row.Row, error) {
	v, err := m.Compute(ctx)
	if err != nil {
		return nil, err
	}

	return v.Visible, nil
}
