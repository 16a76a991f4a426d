package dataset

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hupe1980/treetable/internal/output"
)

// Load reads a data file, choosing the decoder from the extension, and
// checks the document version.
func Load(ctx context.Context, path string) (*Document, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var doc *Document

	if format == FormatSQLite {
		doc, err = loadSQLite(ctx, path)
	} else {
		var data []byte

		data, err = os.ReadFile(path) //nolint:gosec // user-supplied data path
		if err != nil {
			return nil, fmt.Errorf("reading data file: %w", err)
		}

		doc, err = Decode(data, format)
	}

	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	if err := CheckVersion(doc.Version); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	return doc, nil
}

// Save writes the document to path in the format given by the extension.
// An empty version is stamped with CurrentVersion.
func Save(ctx context.Context, path string, doc *Document) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}

	stamped := *doc
	if stamped.Version == "" {
		stamped.Version = CurrentVersion
	}

	if format == FormatSQLite {
		return saveSQLite(ctx, path, &stamped)
	}

	data, err := Encode(&stamped, format)
	if err != nil {
		return err
	}

	return output.NewFileWriter(path).Write(data)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
