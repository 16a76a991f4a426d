// Package row defines the hierarchical row model shared by the filter engine,
// the table layer and the renderers.
//
// A forest of rows must be linked (see [Link]) before ancestry queries are
// made on non-root rows. Rows built by the table layer are always linked.
package row

import (
	"strconv"
	"strings"
)

// SkipFilterKey is the key in a row's original record that forces the row to
// be displayed regardless of the filter outcome.
const SkipFilterKey = "skipFilter"

// Separator joins a parent id and a child index into the child's id.
const Separator = "."

// Row is a node in a rooted forest of table rows.
type Row struct {
	// ID is the hierarchical, dot-delimited row id (e.g. "3.1.2").
	ID string
	// Values maps column ids to the accessed cell values.
	Values map[string]any
	// Original is the source record the row was built from.
	Original map[string]any
	// SubRows are the ordered child rows. Nil or empty means leaf.
	SubRows []*Row
	// Depth is the nesting level, 0 for roots.
	Depth int
	// Parent is the back-reference to the parent row, nil for roots.
	Parent *Row
}

// SkipFilter reports whether the original record carries skipFilter: true.
// Any other value, including the string "true", does not count.
func (r *Row) SkipFilter() bool {
	if r == nil || r.Original == nil {
		return false
	}

	v, ok := r.Original[SkipFilterKey].(bool)

	return ok && v
}

// CanExpand reports whether the row has at least one sub-row.
func (r *Row) CanExpand() bool {
	return r != nil && len(r.SubRows) > 0
}

// IsLeaf reports whether the row has no sub-rows.
func (r *Row) IsLeaf() bool {
	return !r.CanExpand()
}

// Value returns the value for the given column id.
func (r *Row) Value(columnID string) (any, bool) {
	if r == nil || r.Values == nil {
		return nil, false
	}

	v, ok := r.Values[columnID]

	return v, ok
}

// ChildID returns the id of the child at index i of the row with parentID.
// An empty parentID yields a root id.
func ChildID(parentID string, i int) string {
	if parentID == "" {
		return strconv.Itoa(i)
	}

	return parentID + Separator + strconv.Itoa(i)
}

// ParentID returns the id of the parent encoded in id, or "" for roots.
// Linked rows decide ancestry through the Parent chain; ParentID serves rows
// that were never linked.
func ParentID(id string) string {
	i := strings.LastIndex(id, Separator)
	if i < 0 {
		return ""
	}

	return id[:i]
}

// Link sets Parent and Depth on every row of the forest. It returns rows to
// allow chaining in tests and builders.
func Link(rows []*Row) []*Row {
	var link func(children []*Row, parent *Row, depth int)
	link = func(children []*Row, parent *Row, depth int) {
		for _, r := range children {
			if r == nil {
				continue
			}

			r.Parent = parent
			r.Depth = depth
			link(r.SubRows, r, depth+1)
		}
	}

	link(rows, nil, 0)

	return rows
}

// Walk visits rows in pre-order. When fn returns false the row's subtree is
// skipped.
func Walk(rows []*Row, fn func(r *Row) bool) {
	for _, r := range rows {
		if r == nil {
			continue
		}

		if fn(r) {
			Walk(r.SubRows, fn)
		}
	}
}

// Ancestors returns the ancestor chain of r from the root down to its parent.
func Ancestors(r *Row) []*Row {
	if r == nil {
		return nil
	}

	var chain []*Row
	for p := r.Parent; p != nil; p = p.Parent {
		chain = append(chain, p)
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	return chain
}

// Clone returns a shallow copy of r. Values and Original are shared; SubRows
// is a new slice holding the same children.
func Clone(r *Row) *Row {
	if r == nil {
		return nil
	}

	c := *r
	if r.SubRows != nil {
		c.SubRows = append([]*Row(nil), r.SubRows...)
	}

	return &c
}

// Count returns the number of rows in the forest, descendants included.
func Count(rows []*Row) int {
	n := 0

	Walk(rows, func(*Row) bool {
		n++
		return true
	})

	return n
}

// IDs returns the ids of the forest in pre-order.
func IDs(rows []*Row) []string {
	var ids []string

	Walk(rows, func(r *Row) bool {
		ids = append(ids, r.ID)
		return true
	})

	return ids
}
