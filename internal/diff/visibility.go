package diff

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// ChangeKind classifies a visibility change.
type ChangeKind string

const (
	// Shown means the row is visible now but was not before.
	Shown ChangeKind = "shown"
	// Hidden means the row was visible before but is not now.
	Hidden ChangeKind = "hidden"
)

// Change describes one row whose visibility differs between two passes.
type Change struct {
	Kind ChangeKind
	ID   string
}

// Visibility compares two lists of visible row ids. Hidden rows come first,
// in their previous order, followed by shown rows in their current order.
func Visibility(prev, curr []string) []Change {
	prevSet := sets.New(prev...)
	currSet := sets.New(curr...)

	var changes []Change

	for _, id := range prev {
		if !currSet.Has(id) {
			changes = append(changes, Change{Kind: Hidden, ID: id})
		}
	}

	for _, id := range curr {
		if !prevSet.Has(id) {
			changes = append(changes, Change{Kind: Shown, ID: id})
		}
	}

	return changes
}

// Summary returns a human-readable one-line summary.
func Summary(changes []Change) string {
	var shown, hidden int

	for _, c := range changes {
		switch c.Kind {
		case Shown:
			shown++
		case Hidden:
			hidden++
		}
	}

	if shown == 0 && hidden == 0 {
		return "no visibility changes"
	}

	parts := make([]string, 0, 2)

	if shown > 0 {
		parts = append(parts, fmt.Sprintf("+%d row(s) shown", shown))
	}

	if hidden > 0 {
		parts = append(parts, fmt.Sprintf("-%d row(s) hidden", hidden))
	}

	return strings.Join(parts, ", ")
}

// IDs returns the ids of the changes of the given kind.
func IDs(changes []Change, kind ChangeKind) []string {
	var ids []string

	for _, c := range changes {
		if c.Kind == kind {
			ids = append(ids, c.ID)
		}
	}

	return ids
}
