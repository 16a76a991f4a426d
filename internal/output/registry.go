package output

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Encoder turns a document into bytes for one output format.
type Encoder func(doc *Document) ([]byte, error)

// Registry maps format names to encoders, enabling pluggable output
// formats for the filter command.
type Registry struct {
	mu       sync.RWMutex
	encoders map[string]Encoder
}

// NewRegistry creates an empty encoder registry.
func NewRegistry() *Registry {
	return &Registry{
		encoders: make(map[string]Encoder),
	}
}

// Register adds an encoder under the given format name.
// Existing entries for the same name are overwritten.
func (r *Registry) Register(name string, enc Encoder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.encoders[name] = enc
}

// Encoder returns the encoder for the given format, or an error if not found.
func (r *Registry) Encoder(name string) (Encoder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	enc, ok := r.encoders[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (available: %s)", name, r.availableLocked())
	}

	return enc, nil
}

// Formats returns the sorted list of registered format names.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.formatsLocked()
}

// AvailableFormats returns a comma-separated string of registered format names.
func (r *Registry) AvailableFormats() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.availableLocked()
}

func (r *Registry) formatsLocked() []string {
	names := make([]string, 0, len(r.encoders))
	for name := range r.encoders {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (r *Registry) availableLocked() string {
	formats := r.formatsLocked()
	if len(formats) == 0 {
		return "none"
	}

	return strings.Join(formats, ", ")
}

// DefaultRegistry returns a registry pre-populated with the yaml, json,
// markdown, html and asciidoc encoders. The table format is registered by the CLI, which owns the
// renderer settings.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	opts := DefaultSerializeOptions()

	r.Register("yaml", func(doc *Document) ([]byte, error) {
		return Serialize(doc, opts)
	})

	r.Register("json", func(doc *Document) ([]byte, error) {
		return SerializeJSON(doc, opts)
	})

	r.Register("markdown", Markdown)
	r.Register("html", HTML)
	r.Register("asciidoc", AsciiDoc)

	return r
}
