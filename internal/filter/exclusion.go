package filter

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/treetable/internal/maputil"
	"github.com/hupe1980/treetable/internal/row"
)

// Selector excludes rows whose original record matches every requirement
// of a selector expression. The sub-rows of an excluded row go with it.
// Supports key=value (equality), key!=value (inequality), and
// key in (v1,v2) (set membership). Keys are dotted paths into the record;
// values compare case-insensitively against the scalar text of the field.
type Selector struct {
	expr         string
	requirements []requirement
}

type requirement struct {
	key    string
	op     selectorOp
	values []string
}

type selectorOp int

const (
	opEqual selectorOp = iota
	opNotEqual
	opIn
)

// NewSelector creates a filter from a comma-separated selector string.
// Supported syntax: "key=value", "key!=value", "key in (v1,v2)".
func NewSelector(expr string) (*Selector, error) {
	parts := splitSelectors(expr)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty selector")
	}

	reqs := make([]requirement, 0, len(parts))

	for _, part := range parts {
		req, err := parseRequirement(part)
		if err != nil {
			return nil, err
		}

		reqs = append(reqs, req)
	}

	return &Selector{expr: expr, requirements: reqs}, nil
}

// Apply removes matching rows at any depth.
func (s *Selector) Apply(ctx context.Context, rows []*row.Row) (*Result, error) {
	reason := fmt.Sprintf("excluded by selector: %s", s.expr)

	return prune(ctx, rows, func(r *row.Row) (string, bool) {
		return reason, s.Matches(r)
	})
}

// Matches reports whether r's record satisfies all requirements (AND
// semantics).
func (s *Selector) Matches(r *row.Row) bool {
	for _, req := range s.requirements {
		raw, exists := maputil.Lookup(r.Original, req.key)

		val, isScalar := scalarText(raw)
		exists = exists && isScalar
		val = lowerCase(val)

		switch req.op {
		case opEqual:
			if !exists || val != req.values[0] {
				return false
			}
		case opNotEqual:
			if exists && val == req.values[0] {
				return false
			}
		case opIn:
			if !exists || !containsValue(req.values, val) {
				return false
			}
		}
	}

	return true
}

func containsValue(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}

	return false
}

// DepthFilter cuts the forest below a maximum depth. Rows at the maximum
// depth stay but lose their sub-rows.
type DepthFilter struct {
	max int
}

// NewDepthFilter creates a filter keeping rows with Depth <= maxDepth.
func NewDepthFilter(maxDepth int) *DepthFilter {
	return &DepthFilter{max: maxDepth}
}

// Apply removes rows nested deeper than the maximum depth.
func (f *DepthFilter) Apply(ctx context.Context, rows []*row.Row) (*Result, error) {
	reason := fmt.Sprintf("excluded by max depth: %d", f.max)

	return prune(ctx, rows, func(r *row.Row) (string, bool) {
		return reason, r.Depth > f.max
	})
}

// prune copies the forest without the rows for which exclude reports true.
// Excluded descendants of an excluded row are not listed separately.
func prune(ctx context.Context, rows []*row.Row, exclude func(*row.Row) (string, bool)) (*Result, error) {
	result := NewResult()

	var walk func(level []*row.Row) ([]*row.Row, error)
	walk = func(level []*row.Row) ([]*row.Row, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out := make([]*row.Row, 0, len(level))

		for _, r := range level {
			if r == nil {
				continue
			}

			if reason, ok := exclude(r); ok {
				result.Excluded = append(result.Excluded, ExcludedRow{Row: r, Reason: reason})
				continue
			}

			c := row.Clone(r)

			if len(r.SubRows) > 0 {
				sub, err := walk(r.SubRows)
				if err != nil {
					return nil, err
				}

				c.SubRows = sub
			}

			out = append(out, c)
		}

		return out, nil
	}

	included, err := walk(rows)
	if err != nil {
		return nil, err
	}

	result.Included = row.Link(included)

	return result, nil
}

// splitSelectors splits a selector expression on commas, but not inside parentheses.
func splitSelectors(expr string) []string {
	var parts []string

	depth := 0
	start := 0

	for i, ch := range expr {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				if p := strings.TrimSpace(expr[start:i]); p != "" {
					parts = append(parts, p)
				}

				start = i + 1
			}
		}
	}

	if p := strings.TrimSpace(expr[start:]); p != "" {
		parts = append(parts, p)
	}

	return parts
}

// parseRequirement parses a single selector requirement.
func parseRequirement(expr string) (requirement, error) {
	expr = strings.TrimSpace(expr)

	if inIdx := strings.Index(expr, " in ("); inIdx > 0 {
		if !strings.HasSuffix(expr, ")") {
			return requirement{}, fmt.Errorf("invalid selector: %q: missing closing parenthesis", expr)
		}

		valStr := strings.TrimSuffix(expr[inIdx+5:], ")")

		values := strings.Split(valStr, ",")
		for i := range values {
			values[i] = lowerCase(strings.TrimSpace(values[i]))
		}

		return requirement{key: strings.TrimSpace(expr[:inIdx]), op: opIn, values: values}, nil
	}

	if neqIdx := strings.Index(expr, "!="); neqIdx > 0 {
		return requirement{
			key:    strings.TrimSpace(expr[:neqIdx]),
			op:     opNotEqual,
			values: []string{lowerCase(strings.TrimSpace(expr[neqIdx+2:]))},
		}, nil
	}

	if eqIdx := strings.Index(expr, "="); eqIdx > 0 {
		return requirement{
			key:    strings.TrimSpace(expr[:eqIdx]),
			op:     opEqual,
			values: []string{lowerCase(strings.TrimSpace(expr[eqIdx+1:]))},
		}, nil
	}

	return requirement{}, fmt.Errorf("invalid selector: %q", expr)
}
