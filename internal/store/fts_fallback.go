//go:build !sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/inkwell/internal/models"
)

// Without the sqlite_fts5 tag there is no index; search scans chapters.
func initFTS(*sql.DB) error { return nil }

func ftsUpsert(*sql.Tx, *models.Chapter) error { return nil }

func ftsDelete(*sql.Tx, int64) {}

// SearchChapters performs a LIKE-based search over one novel's chapters.
func (db *DB) SearchChapters(ctx context.Context, novelID int64, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	like := "%" + query + "%"
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, chapter_number, title, substr(content, 1, 200)
		FROM chapters
		WHERE novel_id = ? AND (title LIKE ? OR content LIKE ? OR summary LIKE ?)
		ORDER BY chapter_number, id
		LIMIT ?
	`, novelID, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search chapters: %w", err)
	}
	return scanSearchResults(rows)
}
