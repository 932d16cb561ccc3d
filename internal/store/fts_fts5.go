//go:build sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/inkwell/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS chapters_fts USING fts5(
			chapter_id UNINDEXED,
			title,
			summary,
			content,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, c *models.Chapter) error {
	ftsDelete(tx, c.ID)
	if _, err := tx.Exec(`INSERT INTO chapters_fts (chapter_id, title, summary, content) VALUES (?, ?, ?, ?)`,
		c.ID, c.Title, c.Summary, c.Content); err != nil {
		return fmt.Errorf("store: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, chapterID int64) {
	_, _ = tx.Exec(`DELETE FROM chapters_fts WHERE chapter_id = ?`, chapterID)
}

// SearchChapters performs an FTS5 search over one novel's chapters and returns
// hits with highlighted snippets. Rows left behind by a cascading novel
// delete are filtered out by the join.
func (db *DB) SearchChapters(ctx context.Context, novelID int64, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT c.id,
		       c.chapter_number,
		       c.title,
		       snippet(chapters_fts, 3, '<b>', '</b>', '...', 64)
		FROM chapters_fts
		JOIN chapters c ON c.id = chapters_fts.chapter_id
		WHERE chapters_fts MATCH ? AND c.novel_id = ?
		ORDER BY rank
		LIMIT ?
	`, query, novelID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search chapters: %w", err)
	}
	return scanSearchResults(rows)
}
