package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
)

const outlineColumns = `id, novel_id, section_number, title, content, status, created_at, updated_at`

func scanOutline(row scanner) (*models.Outline, error) {
	var (
		o                models.Outline
		status           string
		created, updated string
	)
	if err := row.Scan(&o.ID, &o.NovelID, &o.Section, &o.Title, &o.Content, &status, &created, &updated); err != nil {
		return nil, err
	}
	o.Status = models.OutlineStatus(status)
	var err error
	if o.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOutline inserts o, defaulting its status to planned.
// Returns apperr.ErrNotFound if the novel is missing.
func (db *DB) CreateOutline(ctx context.Context, o *models.Outline) error {
	if o.Status == "" {
		o.Status = models.OutlinePlanned
	}
	now := db.now()
	id, err := db.insertChild(ctx, o.NovelID, `
		INSERT INTO outlines (novel_id, section_number, title, content, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, o.NovelID, o.Section, o.Title, o.Content, string(o.Status), formatTime(now), formatTime(now))
	if err != nil {
		return err
	}
	o.ID, o.CreatedAt, o.UpdatedAt = id, now, now
	return nil
}

// GetOutline returns an outline section by id or apperr.ErrNotFound.
func (db *DB) GetOutline(ctx context.Context, id int64) (*models.Outline, error) {
	o, err := scanOutline(db.conn.QueryRowContext(ctx,
		`SELECT `+outlineColumns+` FROM outlines WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: get outline: %w", err)
	}
	return o, nil
}

// ListOutlines returns a novel's outline ordered by section number.
func (db *DB) ListOutlines(ctx context.Context, novelID int64) ([]models.Outline, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+outlineColumns+` FROM outlines WHERE novel_id = ? ORDER BY section_number, id`, novelID)
	if err != nil {
		return nil, fmt.Errorf("store: list outlines: %w", err)
	}
	defer rows.Close()

	var out []models.Outline
	for rows.Next() {
		o, err := scanOutline(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// UpdateOutline overwrites the mutable fields of o.
func (db *DB) UpdateOutline(ctx context.Context, o *models.Outline) error {
	if o.Status == "" {
		o.Status = models.OutlinePlanned
	}
	now := db.now()
	res, err := db.conn.ExecContext(ctx, `
		UPDATE outlines SET section_number = ?, title = ?, content = ?, status = ?, updated_at = ?
		WHERE id = ?
	`, o.Section, o.Title, o.Content, string(o.Status), formatTime(now), o.ID)
	if err != nil {
		return fmt.Errorf("store: update outline: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}
	o.UpdatedAt = now
	return nil
}

// DeleteOutline removes an outline section.
func (db *DB) DeleteOutline(ctx context.Context, id int64) error {
	return db.deleteByID(ctx, "outlines", id)
}
