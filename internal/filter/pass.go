package filter

import (
	"context"
	"fmt"

	"github.com/hupe1980/treetable/internal/row"
)

// Option configures a filter pass.
type Option func(*passOptions)

type passOptions struct {
	fn       Func
	recorder *MatchRecorder
}

// WithFunc replaces the default level filter.
func WithFunc(fn Func) Option {
	return func(o *passOptions) {
		if fn != nil {
			o.fn = fn
		}
	}
}

// WithRecorder makes the pass record matches into rec. The pass resets rec
// before it starts, so rec always reflects the latest pass only.
func WithRecorder(rec *MatchRecorder) Option {
	return func(o *passOptions) {
		o.recorder = rec
	}
}

// Pass filters every level of the forest with one shared recorder: the top
// level first, then the sub-rows of each retained row, depth first. Retained
// rows are cloned and re-linked; the input forest is never modified.
//
// A nil or empty value returns the input forest itself.
func Pass(ctx context.Context, rows []*row.Row, columnIDs []string, value any, opts ...Option) (*Result, error) {
	o := passOptions{fn: DefaultFunc}
	for _, opt := range opts {
		opt(&o)
	}

	rec := o.recorder
	if rec == nil {
		rec = NewMatchRecorder()
	}

	rec.Reset()

	result := NewResult()

	if _, filtering, _ := textQuery(value); !filtering {
		result.Included = rows
		return result, nil
	}

	reason := exclusionReason(value)

	var walk func(level, ancestors []*row.Row, parent *row.Row) ([]*row.Row, error)
	walk = func(level, ancestors []*row.Row, parent *row.Row) ([]*row.Row, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		kept := o.fn(level, columnIDs, value, Scope{Recorder: rec, Ancestors: ancestors})

		keptSet := make(map[*row.Row]struct{}, len(kept))
		for _, r := range kept {
			keptSet[r] = struct{}{}
		}

		for _, r := range level {
			if _, ok := keptSet[r]; !ok && r != nil {
				result.Excluded = append(result.Excluded, ExcludedRow{Row: r, Reason: reason})
			}
		}

		out := make([]*row.Row, 0, len(kept))

		for _, r := range kept {
			c := row.Clone(r)
			c.Parent = parent
			c.Depth = len(ancestors)

			if len(r.SubRows) > 0 {
				sub, err := walk(r.SubRows, lineage(ancestors, r), c)
				if err != nil {
					return nil, err
				}

				c.SubRows = sub
			}

			out = append(out, c)
		}

		return out, nil
	}

	included, err := walk(rows, []*row.Row{}, nil)
	if err != nil {
		return nil, err
	}

	result.Included = included
	result.MatchedIDs = rec.IDs()

	return result, nil
}

func exclusionReason(value any) string {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("no match for %q", v)
	case fmt.Stringer:
		return fmt.Sprintf("no match for %s", v)
	}

	return fmt.Sprintf("unsupported filter value of type %T", value)
}

// Global is a [Filter] applying a free-text global filter to a set of
// columns.
type Global struct {
	columnIDs []string
	value     any
	opts      []Option
}

// NewGlobal creates a global filter over columnIDs.
func NewGlobal(columnIDs []string, value any, opts ...Option) *Global {
	return &Global{columnIDs: columnIDs, value: value, opts: opts}
}

// Apply runs a full [Pass] over rows.
func (g *Global) Apply(ctx context.Context, rows []*row.Row) (*Result, error) {
	return Pass(ctx, rows, g.columnIDs, g.value, g.opts...)
}

// Column is a [Filter] restricting the text query to a single column.
type Column struct {
	global *Global
}

// NewColumn creates a filter matching value against columnID only.
func NewColumn(columnID string, value any, opts ...Option) *Column {
	return &Column{global: NewGlobal([]string{columnID}, value, opts...)}
}

// Apply runs a full [Pass] over rows for the single column.
func (c *Column) Apply(ctx context.Context, rows []*row.Row) (*Result, error) {
	return c.global.Apply(ctx, rows)
}
