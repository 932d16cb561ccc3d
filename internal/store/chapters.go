package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
)

const chapterColumns = `id, novel_id, chapter_number, title, content, summary, created_at, updated_at`

func scanChapter(row scanner) (*models.Chapter, error) {
	var (
		c                models.Chapter
		created, updated string
	)
	if err := row.Scan(&c.ID, &c.NovelID, &c.Number, &c.Title, &c.Content, &c.Summary, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if c.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateChapter inserts c and its search entry. Returns apperr.ErrNotFound
// if the owning novel does not exist.
func (db *DB) CreateChapter(ctx context.Context, c *models.Chapter) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := requireNovel(ctx, tx, c.NovelID); err != nil {
		return err
	}
	now := db.now()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO chapters (novel_id, chapter_number, title, content, summary, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.NovelID, c.Number, c.Title, c.Content, c.Summary, formatTime(now), formatTime(now))
	if err != nil {
		return fmt.Errorf("store: insert chapter: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: chapter id: %w", err)
	}
	indexed := *c
	indexed.ID = id
	if err := ftsUpsert(tx, &indexed); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit chapter: %w", err)
	}
	c.ID, c.CreatedAt, c.UpdatedAt = id, now, now
	return nil
}

// GetChapter returns a chapter by id or apperr.ErrNotFound.
func (db *DB) GetChapter(ctx context.Context, id int64) (*models.Chapter, error) {
	c, err := scanChapter(db.conn.QueryRowContext(ctx,
		`SELECT `+chapterColumns+` FROM chapters WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: get chapter: %w", err)
	}
	return c, nil
}

// ListChapters returns a novel's chapters ordered by chapter number.
func (db *DB) ListChapters(ctx context.Context, novelID int64) ([]models.Chapter, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+chapterColumns+` FROM chapters WHERE novel_id = ? ORDER BY chapter_number, id`, novelID)
	if err != nil {
		return nil, fmt.Errorf("store: list chapters: %w", err)
	}
	defer rows.Close()

	var out []models.Chapter
	for rows.Next() {
		c, err := scanChapter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// UpdateChapter overwrites the mutable fields of c and refreshes its search entry.
func (db *DB) UpdateChapter(ctx context.Context, c *models.Chapter) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := db.now()
	res, err := tx.ExecContext(ctx, `
		UPDATE chapters SET chapter_number = ?, title = ?, content = ?, summary = ?, updated_at = ?
		WHERE id = ?
	`, c.Number, c.Title, c.Content, c.Summary, formatTime(now), c.ID)
	if err != nil {
		return fmt.Errorf("store: update chapter: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}
	if err := ftsUpsert(tx, c); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit chapter: %w", err)
	}
	c.UpdatedAt = now
	return nil
}

// DeleteChapter removes a chapter and its search entry.
func (db *DB) DeleteChapter(ctx context.Context, id int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	res, err := tx.ExecContext(ctx, `DELETE FROM chapters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete chapter: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}
	return tx.Commit()
}
