// Package table derives the displayed table state from source records:
// column definitions and header groups, the row forest, the filter pass,
// expansion state and the flattened list of visible rows.
package table

import (
	"errors"
	"fmt"
)

// ExpanderColumnID is the id of the column that holds the expand toggle.
const ExpanderColumnID = "expander"

// Column defines a table column. A column with Columns is a header group and
// holds no values itself.
type Column struct {
	// ID identifies the column. Leaf columns default to Accessor.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`
	// Header is the column title.
	Header string `json:"header,omitempty" yaml:"header,omitempty"`
	// Accessor is a dotted path into the source record.
	Accessor string `json:"accessor,omitempty" yaml:"accessor,omitempty"`
	// Columns are the children of a header group.
	Columns []Column `json:"columns,omitempty" yaml:"columns,omitempty"`
	// DisableGlobalFilter excludes the column from the global filter.
	DisableGlobalFilter bool `json:"disableGlobalFilter,omitempty" yaml:"disableGlobalFilter,omitempty"`
}

// IsGroup reports whether the column is a header group.
func (c Column) IsGroup() bool {
	return len(c.Columns) > 0
}

// ColumnID returns the effective id of the column.
func (c Column) ColumnID() string {
	if c.ID != "" {
		return c.ID
	}

	return c.Accessor
}

// DefaultColumns returns the demo layout: an expander column followed by a
// "Name" group with first and last name.
func DefaultColumns() []Column {
	return []Column{
		{ID: ExpanderColumnID},
		{
			Header: "Name",
			Columns: []Column{
				{Header: "First Name", Accessor: "firstName"},
				{Header: "Last Name", Accessor: "lastName"},
			},
		},
	}
}

// ColumnsFor builds a flat layout (expander plus one leaf per accessor).
// Used when the caller names the columns on the command line.
func ColumnsFor(accessors []string) []Column {
	cols := []Column{{ID: ExpanderColumnID}}
	for _, a := range accessors {
		cols = append(cols, Column{Header: a, Accessor: a})
	}

	return cols
}

// LeafColumns returns the value-bearing columns in display order.
func LeafColumns(cols []Column) []Column {
	var leaves []Column

	for _, c := range cols {
		if c.IsGroup() {
			leaves = append(leaves, LeafColumns(c.Columns)...)
			continue
		}

		leaves = append(leaves, c)
	}

	return leaves
}

// GlobalFilterColumnIDs returns the ids considered by the global filter:
// every leaf column not opted out. The expander column is included; it never
// carries a value and so never contributes to a match.
func GlobalFilterColumnIDs(cols []Column) []string {
	var ids []string

	for _, c := range LeafColumns(cols) {
		if c.DisableGlobalFilter {
			continue
		}

		ids = append(ids, c.ColumnID())
	}

	return ids
}

// HeaderCell is one cell of a header line.
type HeaderCell struct {
	Header string
	// Span is the number of leaf columns covered by the cell.
	Span int
	// Placeholder marks filler cells above a shallow leaf column.
	Placeholder bool
}

// HeaderGroups returns the header lines from the outermost group down to the
// leaf headers. Leaf columns that sit above the deepest level get
// placeholder cells in the upper lines, so every line spans all leaves.
func HeaderGroups(cols []Column) [][]HeaderCell {
	depth := headerDepth(cols)
	if depth == 0 {
		return nil
	}

	lines := make([][]HeaderCell, depth)

	var place func(c Column, level int)
	place = func(c Column, level int) {
		if c.IsGroup() {
			lines[level] = append(lines[level], HeaderCell{Header: c.Header, Span: len(LeafColumns(c.Columns))})
			for _, child := range c.Columns {
				place(child, level+1)
			}

			return
		}

		for l := level; l < depth-1; l++ {
			lines[l] = append(lines[l], HeaderCell{Span: 1, Placeholder: true})
		}

		lines[depth-1] = append(lines[depth-1], HeaderCell{Header: c.Header, Span: 1})
	}

	for _, c := range cols {
		place(c, 0)
	}

	return lines
}

func headerDepth(cols []Column) int {
	maxDepth := 0

	for _, c := range cols {
		d := 1
		if c.IsGroup() {
			d += headerDepth(c.Columns)
		}

		if d > maxDepth {
			maxDepth = d
		}
	}

	return maxDepth
}

// ErrInvalidColumns is returned by ValidateColumns.
var ErrInvalidColumns = errors.New("invalid columns")

// ValidateColumns checks that every leaf column has an id and that ids are
// unique.
func ValidateColumns(cols []Column) error {
	seen := make(map[string]struct{})

	var errs []error

	for _, c := range LeafColumns(cols) {
		id := c.ColumnID()
		if id == "" {
			errs = append(errs, fmt.Errorf("column %q has neither id nor accessor", c.Header))
			continue
		}

		if _, dup := seen[id]; dup {
			errs = append(errs, fmt.Errorf("duplicate column id %q", id))
			continue
		}

		seen[id] = struct{}{}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidColumns, errors.Join(errs...))
	}

	return nil
}
