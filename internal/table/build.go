package table

import (
	"github.com/hupe1980/treetable/internal/maputil"
	"github.com/hupe1980/treetable/internal/row"
)

// SubRowsKey is the record key read by DefaultSubRows.
const SubRowsKey = "subRows"

// SubRowsFunc returns the child records of a record.
type SubRowsFunc func(record map[string]any) []map[string]any

// DefaultSubRows reads the child records from the subRows key.
func DefaultSubRows(record map[string]any) []map[string]any {
	recs, _ := maputil.Records(record[SubRowsKey])
	return recs
}

// Build turns records into a linked forest. Row ids are the positions of the
// records joined by dots ("0", "0.1", ...). Each row keeps a deep copy of
// its record as Original, so later edits to the source do not leak into
// built rows. A nil getSubRows means DefaultSubRows.
func Build(records []map[string]any, cols []Column, getSubRows SubRowsFunc) []*row.Row {
	if getSubRows == nil {
		getSubRows = DefaultSubRows
	}

	leaves := LeafColumns(cols)

	var build func(recs []map[string]any, parent *row.Row, depth int) []*row.Row
	build = func(recs []map[string]any, parent *row.Row, depth int) []*row.Row {
		if len(recs) == 0 {
			return nil
		}

		parentID := ""
		if parent != nil {
			parentID = parent.ID
		}

		rows := make([]*row.Row, 0, len(recs))

		for i, rec := range recs {
			r := &row.Row{
				ID:       row.ChildID(parentID, i),
				Values:   accessValues(rec, leaves),
				Original: maputil.DeepCopyMap(rec),
				Depth:    depth,
				Parent:   parent,
			}

			if r.Original == nil {
				r.Original = map[string]any{}
			}

			r.SubRows = build(getSubRows(rec), r, depth+1)
			rows = append(rows, r)
		}

		return rows
	}

	return build(records, nil, 0)
}

func accessValues(rec map[string]any, leaves []Column) map[string]any {
	values := make(map[string]any, len(leaves))

	for _, c := range leaves {
		if c.Accessor == "" {
			continue
		}

		if v, ok := maputil.Lookup(rec, c.Accessor); ok {
			values[c.ColumnID()] = v
		}
	}

	return values
}
