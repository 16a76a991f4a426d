package filter

import (
	"context"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/hupe1980/treetable/internal/row"
)

// Filter is the interface for all row filters.
// Filters never modify the rows they receive; they return a new forest.
type Filter interface {
	// Apply runs the filter on the given forest and returns a result.
	// The context allows cancellation between levels of the forest.
	Apply(ctx context.Context, rows []*row.Row) (*Result, error)
}

// ExcludedRow records a row that was removed by a filter.
type ExcludedRow struct {
	// Row is the excluded source row.
	Row *row.Row
	// Reason is a human-readable explanation for the exclusion.
	Reason string
}

// Result holds the outcome of a filter application.
type Result struct {
	// Included is the filtered forest, ordered like the input.
	Included []*row.Row
	// Excluded are the rows removed by the filter, in traversal order.
	// Descendants of an excluded row are not listed separately.
	Excluded []ExcludedRow
	// MatchedIDs are the ids of rows that matched directly, first-seen order.
	MatchedIDs []string
}

// NewResult creates an empty Result.
func NewResult() *Result {
	return &Result{}
}

// Chain applies multiple filters sequentially, passing the included
// rows from each filter as input to the next.
type Chain struct {
	filters []Filter
}

// NewChain creates a filter chain from the given filters.
func NewChain(filters ...Filter) *Chain {
	return &Chain{filters: filters}
}

// Apply runs all filters in order, accumulating excluded rows and matched
// ids. Returns the combined result.
func (c *Chain) Apply(ctx context.Context, rows []*row.Row) (*Result, error) {
	combined := NewResult()
	current := rows
	matched := sets.New[string]()

	for _, f := range c.filters {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		r, err := f.Apply(ctx, current)
		if err != nil {
			return nil, err
		}

		current = r.Included

		combined.Excluded = append(combined.Excluded, r.Excluded...)

		for _, id := range r.MatchedIDs {
			if !matched.Has(id) {
				matched.Insert(id)
				combined.MatchedIDs = append(combined.MatchedIDs, id)
			}
		}
	}

	combined.Included = current

	return combined, nil
}
