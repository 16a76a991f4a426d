package render

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

// truncate cuts s to maxWidth terminal cells, ending in an ellipsis when cut.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}

	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}

	suffixWidth := runewidth.StringWidth(ellipsis)
	if suffixWidth > maxWidth {
		return runewidth.Truncate(ellipsis, maxWidth, "")
	}

	return runewidth.Truncate(s, maxWidth-suffixWidth, "") + ellipsis
}

// pad fills s with spaces up to width cells.
func pad(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}

	return s + strings.Repeat(" ", width-w)
}

// CellText formats a cell value for display. Composite values are shown as
// compact JSON.
func CellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.Join(strings.Fields(val), " ")
	case json.Number:
		return val.String()
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}

		return string(b)
	default:
		return fmt.Sprint(val)
	}
}
