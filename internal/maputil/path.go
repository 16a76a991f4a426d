package maputil

import "strings"

// Lookup resolves a dotted path such as "name.first" inside a record.
// A key containing the full path wins over nested traversal, so records
// with literal dots in their keys stay addressable.
func Lookup(m map[string]any, path string) (any, bool) {
	if m == nil || path == "" {
		return nil, false
	}

	if v, ok := m[path]; ok {
		return v, true
	}

	head, rest, found := strings.Cut(path, ".")
	if !found {
		return nil, false
	}

	next, ok := m[head].(map[string]any)
	if !ok {
		return nil, false
	}

	return Lookup(next, rest)
}

// Records converts a decoded list into records, dropping entries that are
// not objects. It reports whether v was a list at all.
func Records(v any) ([]map[string]any, bool) {
	switch list := v.(type) {
	case []map[string]any:
		return list, true
	case []any:
		out := make([]map[string]any, 0, len(list))

		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}

		return out, true
	default:
		return nil, false
	}
}
