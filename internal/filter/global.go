package filter

import (
	"github.com/hupe1980/treetable/internal/row"
)

// Scope is the bookkeeping shared by the rows of one filtered level.
type Scope struct {
	// Recorder receives the ids of directly matched rows. When nil, the
	// level uses a private recorder that is discarded afterwards.
	Recorder *MatchRecorder
	// Ancestors are the rows above this level, root first. When nil, each
	// row's ancestry is read from its Parent chain, or from its dotted id
	// when the row is not linked.
	Ancestors []*row.Row
}

// Func filters a single level of a forest. Retained rows keep their
// sub-rows untouched; [Pass] decides how deeper levels are filtered.
//
// Callers that need structured (non-text) filter values supply their own
// Func: the default rejects them.
type Func func(rows []*row.Row, columnIDs []string, value any, scope Scope) []*row.Row

// GlobalFilter is the default level filter. It returns rows unchanged for a
// nil or empty value, an empty slice for any non-string value, and otherwise
// the rows that match the query, carry skipFilter, descend from a recorded
// match, or have a surviving sub-row. rec may be nil.
//
// Calling it level by level with one recorder keeps the sub-rows of a
// matched row. Rows need not be linked: without a Parent, a row descends
// from every id its own id extends ("0.1" descends from "0").
func GlobalFilter(rows []*row.Row, columnIDs []string, value any, rec *MatchRecorder) []*row.Row {
	return DefaultFunc(rows, columnIDs, value, Scope{Recorder: rec})
}

// DefaultFunc is [GlobalFilter] in [Func] form.
func DefaultFunc(rows []*row.Row, columnIDs []string, value any, scope Scope) []*row.Row {
	query, filtering, ok := textQuery(value)
	if !filtering {
		return rows
	}

	if !ok {
		return []*row.Row{}
	}

	tokens := Tokenize(query)
	m := &matcher{match: func(r *row.Row) bool { return Matches(r, columnIDs, tokens) }}

	return m.level(rows, scope)
}

// textQuery classifies a filter value: no filtering for nil and "", a text
// query for other strings, rejection for everything else.
func textQuery(value any) (query string, filtering, ok bool) {
	if value == nil {
		return "", false, false
	}

	s, isString := value.(string)
	if !isString {
		return "", true, false
	}

	if s == "" {
		return "", false, false
	}

	return s, true, true
}

// matcher applies the retention rules of the global filter around a
// direct-match predicate.
type matcher struct {
	match func(r *row.Row) bool
}

func (m *matcher) level(rows []*row.Row, scope Scope) []*row.Row {
	rec := scope.Recorder
	if rec == nil {
		rec = NewMatchRecorder()
	}

	kept := make([]*row.Row, 0, len(rows))

	for _, r := range rows {
		if r == nil {
			continue
		}

		exist := m.match(r)

		// Record before the ancestor check so a row that matches and sits
		// under a matched row is reported too; the view expands both lineages.
		if exist {
			rec.Record(r.ID)
		}

		ancestors := scope.Ancestors
		if ancestors == nil {
			ancestors = row.Ancestors(r)
		}

		unlinked := scope.Ancestors == nil && r.Parent == nil

		if hasRecordedAncestor(ancestors, rec) || (unlinked && hasRecordedPrefix(r.ID, rec)) {
			kept = append(kept, r)
			continue
		}

		// skipFilter is not lifted to the parent: a parent only survives
		// through its own match or a surviving sub-row.
		if exist || r.SkipFilter() || m.hasSurvivingSubRow(r, ancestors) {
			kept = append(kept, r)
		}
	}

	return kept
}

// hasSurvivingSubRow filters the sub-rows of r with a fresh private scope.
func (m *matcher) hasSurvivingSubRow(r *row.Row, ancestors []*row.Row) bool {
	if len(r.SubRows) == 0 {
		return false
	}

	return len(m.level(r.SubRows, Scope{Ancestors: lineage(ancestors, r)})) > 0
}

func hasRecordedAncestor(ancestors []*row.Row, rec *MatchRecorder) bool {
	for _, a := range ancestors {
		if rec.Has(a.ID) {
			return true
		}
	}

	return false
}

// hasRecordedPrefix walks the ancestry encoded in a dotted id.
func hasRecordedPrefix(id string, rec *MatchRecorder) bool {
	for p := row.ParentID(id); p != ""; p = row.ParentID(p) {
		if rec.Has(p) {
			return true
		}
	}

	return false
}

// lineage returns a new slice holding ancestors followed by r.
func lineage(ancestors []*row.Row, r *row.Row) []*row.Row {
	out := make([]*row.Row, 0, len(ancestors)+1)
	out = append(out, ancestors...)

	return append(out, r)
}
