package table

import (
	"sort"

	"github.com/hupe1980/treetable/internal/row"
)

// InferColumns derives a flat layout from the top-level keys of the records
// and of their sub-records. Keys holding text come first so expandable rows
// are labelled by a name rather than a number; each group is sorted. The
// sub-row key and the skipFilter flag are not columns.
func InferColumns(records []map[string]any, getSubRows SubRowsFunc) []Column {
	if getSubRows == nil {
		getSubRows = DefaultSubRows
	}

	textual := make(map[string]bool)

	var visit func(recs []map[string]any)
	visit = func(recs []map[string]any) {
		for _, rec := range recs {
			for k, v := range rec {
				if k == SubRowsKey || k == row.SkipFilterKey {
					continue
				}

				if _, ok := v.(string); ok {
					textual[k] = true
				} else if _, seen := textual[k]; !seen {
					switch v.(type) {
					case map[string]any, []any:
						continue
					}

					textual[k] = false
				}
			}

			visit(getSubRows(rec))
		}
	}

	visit(records)

	keys := make([]string, 0, len(textual))
	for k := range textual {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		if textual[keys[i]] != textual[keys[j]] {
			return textual[keys[i]]
		}

		return keys[i] < keys[j]
	})

	return ColumnsFor(keys)
}
