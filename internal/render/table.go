// Package render draws the visible rows of a table as text.
//
// Rows that can expand are drawn as one cell spanning the whole table,
// labelled with the expand indicator, the row's label value and its level.
// Leaf rows get one cell per leaf column.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/hupe1980/treetable/internal/row"
	"github.com/hupe1980/treetable/internal/table"
)

const (
	indicatorExpanded  = "▾"
	indicatorCollapsed = "▸"
	separator          = " │ "
)

// Options configures the renderer.
type Options struct {
	// Theme styles the output. The zero value renders plain text.
	Theme Theme
	// MaxCellWidth caps the width of leaf cells (default 24).
	MaxCellWidth int
	// Limit caps the number of rows drawn; 0 draws all.
	Limit int
	// Cursor is the index of the highlighted row, -1 for none.
	Cursor int
	// Matched are the directly matched row ids, drawn highlighted.
	Matched []string
	// LabelColumn is the column whose value labels expandable rows. It
	// defaults to the first leaf column with an accessor.
	LabelColumn string
	// HideFooter suppresses the row count line.
	HideFooter bool
}

// DefaultOptions returns options for plain output without a cursor.
func DefaultOptions() Options {
	return Options{MaxCellWidth: 24, Cursor: -1}
}

// Table writes the rendered table to w.
func Table(w io.Writer, cols []table.Column, visible []*row.Row, expanded table.Expanded, opts Options) error {
	lines := Lines(cols, visible, expanded, opts)

	for _, l := range lines {
		if _, err := io.WriteString(w, l+"\n"); err != nil {
			return fmt.Errorf("writing table: %w", err)
		}
	}

	return nil
}

// String renders the table into a string.
func String(cols []table.Column, visible []*row.Row, expanded table.Expanded, opts Options) string {
	return strings.Join(Lines(cols, visible, expanded, opts), "\n")
}

// Lines renders the table line by line: header lines, a rule, one line per
// drawn row and the footer.
func Lines(cols []table.Column, visible []*row.Row, expanded table.Expanded, opts Options) []string {
	if opts.MaxCellWidth <= 0 {
		opts.MaxCellWidth = 24
	}

	l := newLayout(cols, visible, expanded, opts)

	var lines []string

	lines = append(lines, l.headerLines()...)
	lines = append(lines, l.rule())

	drawn := visible
	if opts.Limit > 0 && len(drawn) > opts.Limit {
		drawn = drawn[:opts.Limit]
	}

	for i, r := range drawn {
		lines = append(lines, l.rowLine(r, i == opts.Cursor))
	}

	if !opts.HideFooter {
		lines = append(lines, opts.Theme.Footer.Render(Footer(len(visible), opts.Limit)))
	}

	return lines
}

// Footer reports how many rows are shown.
func Footer(total, limit int) string {
	if limit > 0 && total > limit {
		return fmt.Sprintf("Showing the first %d results of %d rows", limit, total)
	}

	if total == 1 {
		return "Showing 1 row"
	}

	return fmt.Sprintf("Showing %d rows", total)
}

// ExpanderLabel returns the spanning cell text of an expandable row,
// e.g. "▾ Alice (Level 0)", indented by depth.
func ExpanderLabel(r *row.Row, label string, expanded bool) string {
	indicator := indicatorCollapsed
	if expanded {
		indicator = indicatorExpanded
	}

	return fmt.Sprintf("%s%s %s (Level %d)", strings.Repeat("  ", r.Depth), indicator, label, r.Depth)
}

type layout struct {
	cols     []table.Column
	leaves   []table.Column
	widths   []int
	expanded table.Expanded
	label    string
	matched  map[string]struct{}
	opts     Options
	allOpen  bool
}

func newLayout(cols []table.Column, visible []*row.Row, expanded table.Expanded, opts Options) *layout {
	l := &layout{
		cols:     cols,
		leaves:   table.LeafColumns(cols),
		expanded: expanded,
		label:    labelColumn(cols, opts.LabelColumn),
		matched:  make(map[string]struct{}, len(opts.Matched)),
		opts:     opts,
		allOpen:  expanded.IsAllExpanded(roots(visible)),
	}

	for _, id := range opts.Matched {
		l.matched[id] = struct{}{}
	}

	l.widths = make([]int, len(l.leaves))
	for i, c := range l.leaves {
		l.widths[i] = runewidth.StringWidth(truncate(l.leafHeader(c), opts.MaxCellWidth))
	}

	spanned := 0

	for _, r := range visible {
		if r.CanExpand() {
			if w := runewidth.StringWidth(l.expanderText(r)); w > spanned {
				spanned = w
			}

			continue
		}

		for i, c := range l.leaves {
			if w := runewidth.StringWidth(l.cellText(r, c)); w > l.widths[i] {
				l.widths[i] = w
			}
		}
	}

	for _, line := range table.HeaderGroups(cols) {
		leaf := 0

		for _, cell := range line {
			if w := runewidth.StringWidth(cell.Header); cell.Span > 0 && w > l.spanWidth(leaf, cell.Span) {
				l.widths[leaf+cell.Span-1] += w - l.spanWidth(leaf, cell.Span)
			}

			leaf += cell.Span
		}
	}

	if n := len(l.widths); n > 0 && spanned > l.totalWidth() {
		l.widths[n-1] += spanned - l.totalWidth()
	}

	return l
}

func roots(visible []*row.Row) []*row.Row {
	var out []*row.Row

	for _, r := range visible {
		if r.Parent == nil {
			out = append(out, r)
		}
	}

	return out
}

func labelColumn(cols []table.Column, override string) string {
	if override != "" {
		return override
	}

	for _, c := range table.LeafColumns(cols) {
		if c.Accessor != "" {
			return c.ColumnID()
		}
	}

	return ""
}

func (l *layout) leafHeader(c table.Column) string {
	if c.ColumnID() == table.ExpanderColumnID && c.Header == "" {
		if l.allOpen {
			return indicatorExpanded
		}

		return indicatorCollapsed
	}

	return c.Header
}

func (l *layout) cellText(r *row.Row, c table.Column) string {
	if c.ColumnID() == table.ExpanderColumnID {
		return ""
	}

	v, _ := r.Value(c.ColumnID())

	return truncate(CellText(v), l.opts.MaxCellWidth)
}

func (l *layout) expanderText(r *row.Row) string {
	var label string
	if l.label != "" {
		v, ok := r.Value(l.label)
		if !ok {
			v = r.Original[l.label]
		}

		label = CellText(v)
	}

	return ExpanderLabel(r, label, l.expanded.IsExpanded(r.ID))
}

// spanWidth is the width of span leaf columns starting at leaf, separators
// included.
func (l *layout) spanWidth(leaf, span int) int {
	w := 0
	for i := leaf; i < leaf+span && i < len(l.widths); i++ {
		w += l.widths[i]
	}

	if span > 1 {
		w += (span - 1) * runewidth.StringWidth(separator)
	}

	return w
}

func (l *layout) totalWidth() int {
	return l.spanWidth(0, len(l.widths))
}

func (l *layout) headerLines() []string {
	groups := table.HeaderGroups(l.cols)
	lines := make([]string, 0, len(groups))

	for depth, line := range groups {
		leaf := 0
		cells := make([]string, 0, len(line))

		for _, cell := range line {
			text := cell.Header
			if depth == len(groups)-1 && cell.Span == 1 && leaf < len(l.leaves) {
				text = truncate(l.leafHeader(l.leaves[leaf]), l.opts.MaxCellWidth)
			}

			style := l.opts.Theme.Header
			if cell.Span > 1 {
				style = l.opts.Theme.Group
			}

			cells = append(cells, style.Render(pad(text, l.spanWidth(leaf, cell.Span))))
			leaf += cell.Span
		}

		lines = append(lines, strings.TrimRight(strings.Join(cells, l.sep()), " "))
	}

	return lines
}

func (l *layout) sep() string {
	return l.opts.Theme.Border.Render(separator)
}

func (l *layout) rule() string {
	parts := make([]string, len(l.widths))
	for i, w := range l.widths {
		parts[i] = strings.Repeat("─", w)
	}

	return l.opts.Theme.Border.Render(strings.Join(parts, "─┼─"))
}

func (l *layout) rowLine(r *row.Row, selected bool) string {
	var line string

	if r.CanExpand() {
		line = l.opts.Theme.Expander.Render(pad(l.expanderText(r), l.totalWidth()))
	} else {
		cells := make([]string, len(l.leaves))
		for i, c := range l.leaves {
			cells[i] = pad(l.cellText(r, c), l.widths[i])
		}

		line = strings.Join(cells, l.sep())
	}

	if _, ok := l.matched[r.ID]; ok {
		line = l.opts.Theme.Matched.Render(line)
	}

	if selected {
		line = l.opts.Theme.Cursor.Render(line)
	}

	return strings.TrimRight(line, " ")
}
