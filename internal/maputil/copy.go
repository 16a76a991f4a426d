// Package maputil provides deep-copy and path lookup helpers for the
// loosely typed records the table is built from.
package maputil

// DeepCopyMap performs a deep copy of a record. Nested maps and slices are
// copied; scalars are shared.
func DeepCopyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}

	dst := make(map[string]any, len(src))

	for k, v := range src {
		dst[k] = DeepCopy(v)
	}

	return dst
}

// DeepCopySlice performs a deep copy of a []any.
func DeepCopySlice(src []any) []any {
	if src == nil {
		return nil
	}

	dst := make([]any, len(src))

	for i, v := range src {
		dst[i] = DeepCopy(v)
	}

	return dst
}

// DeepCopy copies v when it is a map or slice of the shapes produced by the
// YAML and JSON decoders, and returns it unchanged otherwise.
func DeepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return DeepCopyMap(val)
	case []any:
		return DeepCopySlice(val)
	case []map[string]any:
		out := make([]any, len(val))
		for i, m := range val {
			out[i] = DeepCopyMap(m)
		}

		return out
	default:
		return v
	}
}
