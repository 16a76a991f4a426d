package dataset

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/hupe1980/treetable/internal/maputil"
	"github.com/hupe1980/treetable/internal/table"
	"github.com/hupe1980/treetable/internal/yamlutil"
)

// Decode parses JSON or YAML data into a document.
func Decode(data []byte, format Format) (*Document, error) {
	switch format {
	case FormatJSON:
		v, err := decodeJSON(data)
		if err != nil {
			return nil, fmt.Errorf("decoding JSON: %w", err)
		}

		return fromValues([]any{v})
	case FormatYAML:
		docs, err := yamlutil.DecodeStream(data)
		if err != nil {
			return nil, err
		}

		return fromValues(docs)
	default:
		return nil, fmt.Errorf("%w: cannot decode %q in memory", ErrUnsupportedFormat, format)
	}
}

// Encode renders the document as JSON or YAML.
func Encode(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding JSON: %w", err)
		}

		return append(b, '\n'), nil
	case FormatYAML:
		b, err := sigsyaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encoding YAML: %w", err)
		}

		return b, nil
	default:
		return nil, fmt.Errorf("%w: cannot encode %q in memory", ErrUnsupportedFormat, format)
	}
}

// decodeJSON decodes with json.Number so large integers survive, then
// normalizes numbers to int64 or float64.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	return normalizeNumbers(v), nil
}

func normalizeNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}

		if f, err := val.Float64(); err == nil {
			return f
		}

		return val.String()
	case map[string]any:
		for k, item := range val {
			val[k] = normalizeNumbers(item)
		}

		return val
	case []any:
		for i, item := range val {
			val[i] = normalizeNumbers(item)
		}

		return val
	default:
		return v
	}
}

// fromValues interprets decoded documents. A single document holding a
// "records" key (or a list) is a full document; otherwise every document
// is one record, except a leading document holding only "version".
func fromValues(values []any) (*Document, error) {
	doc := &Document{Records: []map[string]any{}}

	if len(values) == 1 {
		switch v := values[0].(type) {
		case []any:
			doc.Records, _ = maputil.Records(v)
			return doc, nil
		case map[string]any:
			if _, ok := v["records"]; ok {
				return fromHeader(v)
			}
		}
	}

	for i, v := range values {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("document %d: expected an object, got %T", i+1, v)
		}

		if version, ok := m["version"].(string); ok && len(m) == 1 && i == 0 {
			doc.Version = version
			continue
		}

		doc.Records = append(doc.Records, m)
	}

	return doc, nil
}

func fromHeader(m map[string]any) (*Document, error) {
	doc := &Document{}

	if v, ok := m["version"]; ok {
		s, isString := v.(string)
		if !isString {
			return nil, fmt.Errorf("version must be a string, got %T", v)
		}

		doc.Version = s
	}

	records, ok := maputil.Records(m["records"])
	if !ok && m["records"] != nil {
		return nil, fmt.Errorf("records must be a list, got %T", m["records"])
	}

	doc.Records = records
	if doc.Records == nil {
		doc.Records = []map[string]any{}
	}

	if raw, ok := m["columns"]; ok && raw != nil {
		cols, err := decodeColumns(raw)
		if err != nil {
			return nil, err
		}

		doc.Columns = cols
	}

	return doc, nil
}

// decodeColumns round-trips the generic value through JSON into columns.
func decodeColumns(raw any) ([]table.Column, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding columns: %w", err)
	}

	var cols []table.Column
	if err := json.Unmarshal(b, &cols); err != nil {
		return nil, fmt.Errorf("decoding columns: %w", err)
	}

	return cols, nil
}
