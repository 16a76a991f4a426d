package filter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"

	"github.com/hupe1980/treetable/internal/row"
)

// JQ is a structured filter value: a jq program evaluated against each
// row's original record. A row matches directly when the first value the
// program yields is neither null nor false.
type JQ struct {
	src  string
	code *gojq.Code
}

// CompileJQ parses and compiles src.
func CompileJQ(src string) (*JQ, error) {
	q, err := gojq.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing jq expression %q: %w", src, err)
	}

	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("compiling jq expression %q: %w", src, err)
	}

	return &JQ{src: src, code: code}, nil
}

// String returns the expression in a form suitable for exclusion reasons.
func (j *JQ) String() string {
	return "jq " + j.src
}

// Matches runs the program on r's original record. Runtime errors, such as
// indexing a string, count as no match.
func (j *JQ) Matches(ctx context.Context, r *row.Row) bool {
	if r == nil || r.Original == nil {
		return false
	}

	iter := j.code.RunWithContext(ctx, jqInput(r.Original))

	v, ok := iter.Next()
	if !ok {
		return false
	}

	if _, isErr := v.(error); isErr {
		return false
	}

	return v != nil && v != false
}

// JQFunc is a [Func] that handles *JQ values with the retention rules of
// the global filter. Every other value is passed to [DefaultFunc].
func JQFunc(rows []*row.Row, columnIDs []string, value any, scope Scope) []*row.Row {
	q, ok := value.(*JQ)
	if !ok {
		return DefaultFunc(rows, columnIDs, value, scope)
	}

	ctx := context.Background()
	m := &matcher{match: func(r *row.Row) bool { return q.Matches(ctx, r) }}

	return m.level(rows, scope)
}

// jqInput converts a record into the value types gojq accepts. Records
// decoded from data files already are; records built in Go may hold typed
// slices or maps.
func jqInput(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = jqInput(e)
		}

		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = jqInput(e)
		}

		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = jqInput(e)
		}

		return out
	case []string:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = e
		}

		return out
	case int, float64, string, bool, nil:
		return val
	case int64:
		return int(val)
	case int32:
		return int(val)
	case float32:
		return float64(val)
	case uint:
		return float64(val)
	case uint32:
		return int(val)
	case uint64:
		return float64(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i)
		}

		if f, err := val.Float64(); err == nil {
			return f
		}

		return val.String()
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// NewJQFilter returns a [Global] filtering by q alone, usable ahead of a
// text query in a [Chain].
func NewJQFilter(q *JQ) *Global {
	return NewGlobal(nil, q, WithFunc(JQFunc))
}
