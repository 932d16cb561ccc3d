// Package store provides the SQLite-backed record store for novels and their
// chapters, characters, settings and outlines.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverCGO  = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPure = "sqlite"  // modernc.org/sqlite
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS novels (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS chapters (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	novel_id       INTEGER NOT NULL REFERENCES novels(id) ON DELETE CASCADE,
	chapter_number INTEGER NOT NULL,
	title          TEXT NOT NULL,
	content        TEXT NOT NULL,
	summary        TEXT NOT NULL DEFAULT '',
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS characters (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	novel_id      INTEGER NOT NULL REFERENCES novels(id) ON DELETE CASCADE,
	name          TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	personality   TEXT NOT NULL DEFAULT '',
	background    TEXT NOT NULL DEFAULT '',
	relationships TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	novel_id    INTEGER NOT NULL REFERENCES novels(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	type        TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS outlines (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	novel_id       INTEGER NOT NULL REFERENCES novels(id) ON DELETE CASCADE,
	section_number INTEGER NOT NULL,
	title          TEXT NOT NULL,
	content        TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'planned',
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS vault_sources (
	path      TEXT PRIMARY KEY,
	kind      TEXT NOT NULL,
	record_id INTEGER NOT NULL,
	novel_id  INTEGER NOT NULL REFERENCES novels(id) ON DELETE CASCADE,
	checksum  TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_chapters_novel ON chapters(novel_id, chapter_number);
CREATE INDEX IF NOT EXISTS idx_characters_novel ON characters(novel_id);
CREATE INDEX IF NOT EXISTS idx_settings_novel ON settings(novel_id);
CREATE INDEX IF NOT EXISTS idx_outlines_novel ON outlines(novel_id, section_number);
`

// DB wraps a sql.DB with record-store operations.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// Open opens (or creates) the SQLite database with the given driver and
// applies the schema. An empty driver selects DriverCGO.
func Open(driver, path string) (*DB, error) {
	if driver == "" {
		driver = DriverCGO
	}
	dsn, err := buildDSN(driver, path)
	if err != nil {
		return nil, err
	}
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply fts schema: %w", err)
	}
	return &DB{conn: conn, now: func() time.Time { return time.Now().UTC() }}, nil
}

// buildDSN enables WAL, a busy timeout and foreign keys in the dialect each
// driver understands. Foreign keys must be on for cascading deletes.
func buildDSN(driver, path string) (string, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	switch driver {
	case DriverCGO:
		return path + sep + "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", nil
	case DriverPure:
		return path + sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", nil
	default:
		return "", fmt.Errorf("store: unsupported driver %q", driver)
	}
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: parse time %q: %w", s, err)
	}
	return t, nil
}
