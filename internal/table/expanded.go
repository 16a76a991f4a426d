package table

import (
	"sort"

	"github.com/hupe1980/treetable/internal/row"
)

// Expanded is the expansion state keyed by row id. Only expanded ids are
// stored, so the map doubles as the dump shown to users.
type Expanded map[string]bool

// IsExpanded reports whether the row with id is expanded.
func (e Expanded) IsExpanded(id string) bool {
	return e[id]
}

// Set expands or collapses the row with id.
func (e Expanded) Set(id string, expanded bool) {
	if expanded {
		e[id] = true
		return
	}

	delete(e, id)
}

// Toggle flips the row with id and returns the new state.
func (e Expanded) Toggle(id string) bool {
	next := !e[id]
	e.Set(id, next)

	return next
}

// IsAllExpanded reports whether every expandable row of the forest is
// expanded. A forest without expandable rows is never all expanded.
func (e Expanded) IsAllExpanded(rows []*row.Row) bool {
	found := false
	all := true

	row.Walk(rows, func(r *row.Row) bool {
		if !r.CanExpand() {
			return true
		}

		found = true

		if !e[r.ID] {
			all = false
		}

		return all
	})

	return found && all
}

// ToggleAll collapses everything when all rows are expanded and expands
// every expandable row otherwise.
func (e Expanded) ToggleAll(rows []*row.Row) {
	if e.IsAllExpanded(rows) {
		e.Clear()
		return
	}

	row.Walk(rows, func(r *row.Row) bool {
		if r.CanExpand() {
			e[r.ID] = true
		}

		return true
	})
}

// ExpandLineage expands the ancestors of each listed id so the rows
// themselves become visible. Unknown ids are ignored.
func (e Expanded) ExpandLineage(rows []*row.Row, ids []string) {
	if len(ids) == 0 {
		return
	}

	idx := row.NewIndex(rows)

	for _, id := range ids {
		lineage := idx.Lineage(id)
		if len(lineage) == 0 {
			continue
		}

		for _, a := range lineage[:len(lineage)-1] {
			e[a] = true
		}
	}
}

// Clear collapses every row.
func (e Expanded) Clear() {
	for id := range e {
		delete(e, id)
	}
}

// Clone returns an independent copy of the state.
func (e Expanded) Clone() Expanded {
	out := make(Expanded, len(e))
	for id, v := range e {
		if v {
			out[id] = true
		}
	}

	return out
}

// IDs returns the expanded ids in lexical order.
func (e Expanded) IDs() []string {
	ids := make([]string, 0, len(e))
	for id, v := range e {
		if v {
			ids = append(ids, id)
		}
	}

	sort.Strings(ids)

	return ids
}

// Visible flattens the forest into display order: a row is listed when all
// of its ancestors are expanded.
func Visible(rows []*row.Row, expanded Expanded) []*row.Row {
	var out []*row.Row

	row.Walk(rows, func(r *row.Row) bool {
		out = append(out, r)
		return expanded.IsExpanded(r.ID)
	})

	return out
}
