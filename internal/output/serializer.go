package output

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	sigsyaml "sigs.k8s.io/yaml"
)

// SerializeOptions configures the serializers.
type SerializeOptions struct {
	// Indent is the JSON indentation (default: two spaces).
	Indent string
}

// DefaultSerializeOptions returns sensible defaults.
func DefaultSerializeOptions() SerializeOptions {
	return SerializeOptions{Indent: "  "}
}

// Serialize converts a document to YAML. Map keys are sorted, so the
// output is deterministic.
func Serialize(doc *Document, _ SerializeOptions) ([]byte, error) {
	// sigs.k8s.io/yaml goes through the json tags, keeping field names
	// identical in both formats.
	yamlBytes, err := sigsyaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("serializing YAML: %w", err)
	}

	return ensureNewline(yamlBytes), nil
}

// SerializeJSON converts a document to indented JSON.
func SerializeJSON(doc *Document, opts SerializeOptions) ([]byte, error) {
	indent := opts.Indent
	if indent == "" {
		indent = "  "
	}

	jsonBytes, err := json.MarshalIndent(doc, "", indent)
	if err != nil {
		return nil, fmt.Errorf("serializing JSON: %w", err)
	}

	return ensureNewline(jsonBytes), nil
}

// ExpandedJSON renders the expansion state the way the browser's state
// panel shows it: {"expanded": {...}}.
func ExpandedJSON(expanded map[string]bool) ([]byte, error) {
	if expanded == nil {
		expanded = map[string]bool{}
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")

	if err := enc.Encode(map[string]any{"expanded": expanded}); err != nil {
		return nil, fmt.Errorf("serializing expanded state: %w", err)
	}

	return buf.Bytes(), nil
}

func ensureNewline(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] != '\n' {
		b = append(b, '\n')
	}

	return b
}
