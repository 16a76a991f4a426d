package yamlutil

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DecodeStream decodes every document of a YAML stream. Documents are
// returned in order; integers decode as int64 and maps always have string
// keys.
func DecodeStream(data []byte) ([]any, error) {
	docs := SplitDocuments(data)
	out := make([]any, 0, len(docs))

	for i, doc := range docs {
		var v any
		if err := yaml.Unmarshal(doc, &v); err != nil {
			return nil, fmt.Errorf("decoding YAML document %d: %w", i+1, err)
		}

		out = append(out, Normalize(v))
	}

	return out, nil
}

// Normalize converts decoded YAML into the shapes the JSON decoder
// produces: map[string]any, []any and int64 for integers.
func Normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = Normalize(item)
		}

		return val
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[fmt.Sprint(k)] = Normalize(item)
		}

		return m
	case []any:
		for i, item := range val {
			val[i] = Normalize(item)
		}

		return val
	case int:
		return int64(val)
	case uint64:
		return float64(val)
	default:
		return v
	}
}
