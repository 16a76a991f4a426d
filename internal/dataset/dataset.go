// Package dataset loads and saves the records a table is built from.
//
// Supported sources are JSON files, YAML files (a single document, or a
// stream with one record per document) and SQLite databases holding one
// JSON payload per record. Documents may carry a version; versions outside
// [SupportedVersions] are rejected with [ErrIncompatibleVersion].
package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/hupe1980/treetable/internal/table"
)

// CurrentVersion is the version written by Save.
const CurrentVersion = "1.0.0"

// SupportedVersions is the semver constraint accepted by Load.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

var (
	// ErrUnsupportedFormat is returned for unknown file extensions.
	ErrUnsupportedFormat = errors.New("unsupported data format")
	// ErrIncompatibleVersion is returned when a document's version does
	// not satisfy SupportedVersions.
	ErrIncompatibleVersion = errors.New("incompatible data version")
)

// Document is a data file: an optional version and column layout plus the
// top-level records. Child records live under their parent's subRows key.
type Document struct {
	Version string           `json:"version,omitempty"`
	Columns []table.Column   `json:"columns,omitempty"`
	Records []map[string]any `json:"records"`
}

// Format identifies a data file encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatSQLite Format = "sqlite"
)

// DetectFormat derives the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q (expected .json, .yaml, .yml, .db or .sqlite)", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// CheckVersion validates a document version. An empty version is accepted
// as the current one.
func CheckVersion(version string) error {
	if version == "" {
		return nil
	}

	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return fmt.Errorf("parsing version constraint: %w", err)
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: %q is not a semantic version", ErrIncompatibleVersion, version)
	}

	if !c.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrIncompatibleVersion, version, SupportedVersions)
	}

	return nil
}

// Count returns the number of records in the document, nested ones
// included.
func (d *Document) Count() int {
	var count func(recs []map[string]any) int
	count = func(recs []map[string]any) int {
		n := len(recs)
		for _, r := range recs {
			n += count(table.DefaultSubRows(r))
		}

		return n
	}

	return count(d.Records)
}
