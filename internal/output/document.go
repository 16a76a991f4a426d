package output

import (
	"github.com/hupe1980/treetable/internal/row"
	"github.com/hupe1980/treetable/internal/table"
)

// Document is the serializable snapshot of a filtered table.
type Document struct {
	Query      string          `json:"query"`
	Columns    []Column        `json:"columns"`
	Total      int             `json:"total"`
	Shown      int             `json:"shown"`
	MatchedIDs []string        `json:"matchedIds"`
	Expanded   map[string]bool `json:"expanded"`
	Rows       []Row           `json:"rows"`
}

// Column is a serialized leaf column.
type Column struct {
	ID     string `json:"id"`
	Header string `json:"header,omitempty"`
}

// Row is a serialized table row.
type Row struct {
	ID      string         `json:"id"`
	Depth   int            `json:"depth"`
	Matched bool           `json:"matched,omitempty"`
	Values  map[string]any `json:"values,omitempty"`
	SubRows []Row          `json:"subRows,omitempty"`
}

// NewDocument snapshots a view. Only the values of leaf columns are kept;
// when visibleOnly is set the forest is cut at collapsed rows.
func NewDocument(query string, cols []table.Column, view *table.View, visibleOnly bool) *Document {
	matched := make(map[string]struct{}, len(view.MatchedIDs))
	for _, id := range view.MatchedIDs {
		matched[id] = struct{}{}
	}

	leaves := table.LeafColumns(cols)

	var convert func(rows []*row.Row) []Row
	convert = func(rows []*row.Row) []Row {
		out := make([]Row, 0, len(rows))

		for _, r := range rows {
			_, isMatch := matched[r.ID]
			sr := Row{ID: r.ID, Depth: r.Depth, Matched: isMatch, Values: leafValues(r, leaves)}

			if !visibleOnly || view.Expanded.IsExpanded(r.ID) {
				sr.SubRows = convert(r.SubRows)
				if len(sr.SubRows) == 0 {
					sr.SubRows = nil
				}
			}

			out = append(out, sr)
		}

		return out
	}

	expanded := make(map[string]bool, len(view.Expanded))
	for _, id := range view.Expanded.IDs() {
		expanded[id] = true
	}

	matchedIDs := view.MatchedIDs
	if matchedIDs == nil {
		matchedIDs = []string{}
	}

	docCols := make([]Column, 0, len(leaves))
	for _, c := range leaves {
		if c.Accessor != "" {
			docCols = append(docCols, Column{ID: c.ColumnID(), Header: c.Header})
		}
	}

	return &Document{
		Query:      query,
		Columns:    docCols,
		Total:      row.Count(view.PreFilterRows),
		Shown:      len(view.Visible),
		MatchedIDs: matchedIDs,
		Expanded:   expanded,
		Rows:       convert(view.Rows),
	}
}

func leafValues(r *row.Row, leaves []table.Column) map[string]any {
	values := make(map[string]any, len(leaves))

	for _, c := range leaves {
		if v, ok := r.Value(c.ColumnID()); ok && v != nil {
			values[c.ColumnID()] = v
		}
	}

	if len(values) == 0 {
		return nil
	}

	return values
}

// IDs returns the ids of the document rows in pre-order.
func (d *Document) IDs() []string {
	var ids []string

	var walk func(rows []Row)
	walk = func(rows []Row) {
		for _, r := range rows {
			ids = append(ids, r.ID)
			walk(r.SubRows)
		}
	}

	walk(d.Rows)

	return ids
}
