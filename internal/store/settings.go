package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
)

const settingColumns = `id, novel_id, name, type, description, created_at, updated_at`

func scanSetting(row scanner) (*models.Setting, error) {
	var (
		s                models.Setting
		created, updated string
	)
	if err := row.Scan(&s.ID, &s.NovelID, &s.Name, &s.Type, &s.Description, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if s.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSetting inserts s. Returns apperr.ErrNotFound if the novel is missing.
func (db *DB) CreateSetting(ctx context.Context, s *models.Setting) error {
	now := db.now()
	id, err := db.insertChild(ctx, s.NovelID, `
		INSERT INTO settings (novel_id, name, type, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.NovelID, s.Name, s.Type, s.Description, formatTime(now), formatTime(now))
	if err != nil {
		return err
	}
	s.ID, s.CreatedAt, s.UpdatedAt = id, now, now
	return nil
}

// GetSetting returns a setting by id or apperr.ErrNotFound.
func (db *DB) GetSetting(ctx context.Context, id int64) (*models.Setting, error) {
	s, err := scanSetting(db.conn.QueryRowContext(ctx,
		`SELECT `+settingColumns+` FROM settings WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: get setting: %w", err)
	}
	return s, nil
}

// ListSettings returns a novel's settings in insertion order.
func (db *DB) ListSettings(ctx context.Context, novelID int64) ([]models.Setting, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+settingColumns+` FROM settings WHERE novel_id = ? ORDER BY id`, novelID)
	if err != nil {
		return nil, fmt.Errorf("store: list settings: %w", err)
	}
	defer rows.Close()

	var out []models.Setting
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// UpdateSetting overwrites the mutable fields of s.
func (db *DB) UpdateSetting(ctx context.Context, s *models.Setting) error {
	now := db.now()
	res, err := db.conn.ExecContext(ctx,
		`UPDATE settings SET name = ?, type = ?, description = ?, updated_at = ? WHERE id = ?`,
		s.Name, s.Type, s.Description, formatTime(now), s.ID)
	if err != nil {
		return fmt.Errorf("store: update setting: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}
	s.UpdatedAt = now
	return nil
}

// DeleteSetting removes a setting.
func (db *DB) DeleteSetting(ctx context.Context, id int64) error {
	return db.deleteByID(ctx, "settings", id)
}
