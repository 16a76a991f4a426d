package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/hupe1980/treetable/internal/maputil"
	"github.com/hupe1980/treetable/internal/table"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS records (
	id        INTEGER PRIMARY KEY,
	parent_id INTEGER NULL REFERENCES records(id),
	position  INTEGER NOT NULL,
	data      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_parent ON records(parent_id, position);
`

// loadSQLite reads the record tree from a database. Rows are read in
// (parent, position) order and attached to their parent's subRows.
func loadSQLite(ctx context.Context, path string) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db, err := sql.Open("sqlite", fileDSN(path, "ro"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck // read-only

	doc := &Document{Records: []map[string]any{}}

	var version string

	err = db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'version'`).Scan(&version)

	switch {
	case err == nil:
		doc.Version = version
	case errors.Is(err, sql.ErrNoRows):
	default:
		// Databases without a meta table are unversioned.
		if !isMissingTable(err) {
			return nil, fmt.Errorf("reading version: %w", err)
		}
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, parent_id, data FROM records ORDER BY parent_id IS NOT NULL, parent_id, position, id`)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close() //nolint:errcheck // rows.Err is checked

	byID := make(map[int64]map[string]any)

	type pending struct {
		parent int64
		rec    map[string]any
	}

	var children []pending

	for rows.Next() {
		var (
			id       int64
			parentID sql.NullInt64
			data     string
		)

		if err := rows.Scan(&id, &parentID, &data); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		v, err := decodeJSON([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("record %d: decoding payload: %w", id, err)
		}

		rec, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("record %d: payload is %T, expected an object", id, v)
		}

		delete(rec, table.SubRowsKey)
		byID[id] = rec

		if parentID.Valid {
			children = append(children, pending{parent: parentID.Int64, rec: rec})
			continue
		}

		doc.Records = append(doc.Records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}

	for _, c := range children {
		parent, ok := byID[c.parent]
		if !ok {
			return nil, fmt.Errorf("record references unknown parent %d", c.parent)
		}

		list, _ := parent[table.SubRowsKey].([]any)
		parent[table.SubRowsKey] = append(list, c.rec)
	}

	return doc, nil
}

// saveSQLite writes the document to a new database at path.
func saveSQLite(ctx context.Context, path string, doc *Document) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", fileDSN(path, "rwc"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close() //nolint:errcheck // closed after commit

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	version := doc.Version
	if version == "" {
		version = CurrentVersion
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES ('version', ?)`, version); err != nil {
		return fmt.Errorf("insert version: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (id, parent_id, position, data) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck // closed with the transaction

	var nextID int64

	var insert func(recs []map[string]any, parent sql.NullInt64) error
	insert = func(recs []map[string]any, parent sql.NullInt64) error {
		for pos, rec := range recs {
			nextID++
			id := nextID

			payload := maputil.DeepCopyMap(rec)
			delete(payload, table.SubRowsKey)

			data, err := json.Marshal(payload)
			if err != nil {
				return fmt.Errorf("encode record %d: %w", id, err)
			}

			if _, err := stmt.ExecContext(ctx, id, parent, pos, string(data)); err != nil {
				return fmt.Errorf("insert record %d: %w", id, err)
			}

			if err := insert(table.DefaultSubRows(rec), sql.NullInt64{Int64: id, Valid: true}); err != nil {
				return err
			}
		}

		return nil
	}

	if err := insert(doc.Records, sql.NullInt64{}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func isMissingTable(err error) bool {
	return err != nil && containsFold(err.Error(), "no such table")
}

// fileDSN builds a file URI opening path with the given SQLite mode. The
// path is escaped, so '?' and '#' in a file name do not start the query or
// fragment.
func fileDSN(path, mode string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path), RawQuery: "mode=" + mode}

	return u.String()
}
