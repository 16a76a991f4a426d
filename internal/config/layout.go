package config

import (
	"fmt"
	"os"
	"regexp"

	sigsyaml "sigs.k8s.io/yaml"
)

// LayoutConfig holds the column layout section of the config file
// (.treetable.yaml).
type LayoutConfig struct {
	// Columns is the column tree. Leaf columns carry an accessor, header
	// groups carry nested columns.
	Columns []ColumnSpec `json:"layout,omitempty"`
}

// ColumnSpec declares one column or header group.
type ColumnSpec struct {
	// ID overrides the column id, which defaults to the accessor.
	ID string `json:"id,omitempty"`

	// Header is the text shown in the header line.
	Header string `json:"header,omitempty"`

	// Accessor is the dotted path of the value in a record.
	Accessor string `json:"accessor,omitempty"`

	// Columns makes the column a header group.
	Columns []ColumnSpec `json:"columns,omitempty"`

	// DisableGlobalFilter excludes the column from the global filter.
	DisableGlobalFilter bool `json:"disableGlobalFilter,omitempty"`
}

// accessorPattern validates accessors: dot-separated identifiers.
var accessorPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*(\.[A-Za-z0-9_-]+)*$`)

// ParseLayoutConfig parses the layout section from raw config file bytes.
func ParseLayoutConfig(data []byte) (*LayoutConfig, error) {
	var cfg LayoutConfig

	if err := sigsyaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing layout config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadLayoutConfig reads the layout section of the config file at path. An
// empty path yields an empty layout.
func LoadLayoutConfig(path string) (*LayoutConfig, error) {
	if path == "" {
		return &LayoutConfig{}, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // user-supplied config path
	if err != nil {
		return nil, fmt.Errorf("reading layout config: %w", err)
	}

	return ParseLayoutConfig(data)
}

// Validate checks the layout for correctness.
func (c *LayoutConfig) Validate() error {
	return validateSpecs(c.Columns, "layout")
}

func validateSpecs(specs []ColumnSpec, path string) error {
	for i, s := range specs {
		p := fmt.Sprintf("%s[%d]", path, i)

		if len(s.Columns) > 0 {
			if s.Accessor != "" {
				return fmt.Errorf("%s: a header group must not have an accessor", p)
			}

			if err := validateSpecs(s.Columns, p+".columns"); err != nil {
				return err
			}

			continue
		}

		if s.Accessor == "" && s.ID == "" {
			return fmt.Errorf("%s: accessor or id is required", p)
		}

		if s.Accessor != "" && !accessorPattern.MatchString(s.Accessor) {
			return fmt.Errorf("%s: accessor %q is invalid (must match %s)", p, s.Accessor, accessorPattern.String())
		}
	}

	return nil
}

// IsEmpty returns true if the config declares no layout.
func (c *LayoutConfig) IsEmpty() bool {
	return len(c.Columns) == 0
}
