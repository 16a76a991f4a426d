package row

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Index is a lookup table over a linked forest.
type Index struct {
	byID  map[string]*Row
	dupes sets.Set[string]
	order []string
}

// NewIndex indexes every row of the forest. Duplicate ids are remembered and
// reported by Validate; the first occurrence wins for lookups.
func NewIndex(rows []*Row) *Index {
	idx := &Index{
		byID:  make(map[string]*Row),
		dupes: sets.New[string](),
	}

	Walk(rows, func(r *Row) bool {
		if _, seen := idx.byID[r.ID]; seen {
			idx.dupes.Insert(r.ID)
			return true
		}

		idx.byID[r.ID] = r
		idx.order = append(idx.order, r.ID)

		return true
	})

	return idx
}

// Get returns the row with the given id.
func (idx *Index) Get(id string) (*Row, bool) {
	r, ok := idx.byID[id]
	return r, ok
}

// Len returns the number of distinct ids in the index.
func (idx *Index) Len() int {
	return len(idx.byID)
}

// IDs returns the indexed ids in pre-order.
func (idx *Index) IDs() []string {
	return append([]string(nil), idx.order...)
}

// Lineage returns the ids of the ancestors of the row with the given id, from
// the root down, followed by the id itself. Unknown ids yield nil.
func (idx *Index) Lineage(id string) []string {
	r, ok := idx.byID[id]
	if !ok {
		return nil
	}

	ancestors := Ancestors(r)
	ids := make([]string, 0, len(ancestors)+1)

	for _, a := range ancestors {
		ids = append(ids, a.ID)
	}

	return append(ids, r.ID)
}

// Validate checks the id invariants of the forest: ids are non-empty and
// unique, and every child id is its parent's id followed by the separator.
func (idx *Index) Validate() error {
	if idx.dupes.Len() > 0 {
		return fmt.Errorf("duplicate row ids: %s", strings.Join(sets.List(idx.dupes), ", "))
	}

	for _, id := range idx.order {
		r := idx.byID[id]
		if id == "" {
			return fmt.Errorf("row at depth %d has an empty id", r.Depth)
		}

		if r.Parent == nil {
			continue
		}

		if !strings.HasPrefix(id, r.Parent.ID+Separator) {
			return fmt.Errorf("row %q is not prefixed by its parent id %q", id, r.Parent.ID)
		}
	}

	return nil
}
