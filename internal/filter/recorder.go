package filter

import (
	"k8s.io/apimachinery/pkg/util/sets"
)

// MatchRecorder collects the ids of rows that matched a query directly, in
// first-seen order. The zero value is ready to use. The owner resets it
// before each filter pass; stale ids would otherwise leak into the next pass
// as matched ancestors.
type MatchRecorder struct {
	ids  []string
	seen sets.Set[string]
}

// NewMatchRecorder returns an empty recorder.
func NewMatchRecorder() *MatchRecorder {
	return &MatchRecorder{seen: sets.New[string]()}
}

// Reset forgets all recorded ids.
func (m *MatchRecorder) Reset() {
	m.ids = nil
	m.seen = sets.New[string]()
}

// Record adds id and reports whether it was not recorded before.
func (m *MatchRecorder) Record(id string) bool {
	if m.seen == nil {
		m.seen = sets.New[string]()
	}

	if m.seen.Has(id) {
		return false
	}

	m.seen.Insert(id)
	m.ids = append(m.ids, id)

	return true
}

// Has reports whether id was recorded.
func (m *MatchRecorder) Has(id string) bool {
	return m != nil && m.seen.Has(id)
}

// IDs returns a copy of the recorded ids in first-seen order.
func (m *MatchRecorder) IDs() []string {
	if m == nil {
		return nil
	}

	return append([]string(nil), m.ids...)
}

// Len returns the number of recorded ids.
func (m *MatchRecorder) Len() int {
	if m == nil {
		return 0
	}

	return len(m.ids)
}
