package store

import (
	"context"
	"fmt"
)

// Source records which vault file produced which record, with the checksum
// of the last imported version.
type Source struct {
	Path     string
	Kind     string
	RecordID int64
	NovelID  int64
	Checksum string
}

// PutSource inserts or replaces a source entry.
func (db *DB) PutSource(ctx context.Context, s Source) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO vault_sources (path, kind, record_id, novel_id, checksum)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			kind = excluded.kind,
			record_id = excluded.record_id,
			novel_id = excluded.novel_id,
			checksum = excluded.checksum
	`, s.Path, s.Kind, s.RecordID, s.NovelID, s.Checksum)
	if err != nil {
		return fmt.Errorf("store: put source: %w", err)
	}
	return nil
}

// DeleteSource removes a source entry. Missing entries are not an error.
func (db *DB) DeleteSource(ctx context.Context, path string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM vault_sources WHERE path = ?`, path); err != nil {
		return fmt.Errorf("store: delete source: %w", err)
	}
	return nil
}

// AllSources returns every source entry keyed by path.
func (db *DB) AllSources(ctx context.Context) (map[string]Source, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT path, kind, record_id, novel_id, checksum FROM vault_sources`)
	if err != nil {
		return nil, fmt.Errorf("store: all sources: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Source)
	for rows.Next() {
		var s Source
		if err := rows.Scan(&s.Path, &s.Kind, &s.RecordID, &s.NovelID, &s.Checksum); err != nil {
			return nil, err
		}
		out[s.Path] = s
	}
	return out, rows.Err()
}
