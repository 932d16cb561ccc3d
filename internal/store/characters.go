package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
)

const characterColumns = `id, novel_id, name, description, personality, background, relationships, created_at, updated_at`

func scanCharacter(row scanner) (*models.Character, error) {
	var (
		c                models.Character
		created, updated string
	)
	if err := row.Scan(&c.ID, &c.NovelID, &c.Name, &c.Description, &c.Personality,
		&c.Background, &c.Relationships, &created, &updated); err != nil {
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

// CreateCharacter inserts c. Returns apperr.ErrNotFound if the novel is missing.
func (db *DB) CreateCharacter(ctx context.Context, c *models.Character) error {
	now := db.now()
	id, err := db.insertChild(ctx, c.NovelID, `
		INSERT INTO characters (novel_id, name, description, personality, background, relationships, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.NovelID, c.Name, c.Description, c.Personality, c.Background, c.Relationships, formatTime(now), formatTime(now))
	if err != nil {
		return err
	}
	c.ID, c.CreatedAt, c.UpdatedAt = id, now, now
	return nil
}

// GetCharacter returns a character by id or apperr.ErrNotFound.
func (db *DB) GetCharacter(ctx context.Context, id int64) (*models.Character, error) {
	c, err := scanCharacter(db.conn.QueryRowContext(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: get character: %w", err)
	}
	return c, nil
}

// ListCharacters returns a novel's characters in insertion order.
func (db *DB) ListCharacters(ctx context.Context, novelID int64) ([]models.Character, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE novel_id = ? ORDER BY id`, novelID)
	if err != nil {
		return nil, fmt.Errorf("store: list characters: %w", err)
	}
	defer rows.Close()

	var out []models.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// UpdateCharacter overwrites the mutable fields of c.
func (db *DB) UpdateCharacter(ctx context.Context, c *models.Character) error {
	now := db.now()
	res, err := db.conn.ExecContext(ctx, `
		UPDATE characters SET name = ?, description = ?, personality = ?, background = ?,
			relationships = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, c.Description, c.Personality, c.Background, c.Relationships, formatTime(now), c.ID)
	if err != nil {
		return fmt.Errorf("store: update character: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}
	c.UpdatedAt = now
	return nil
}

// DeleteCharacter removes a character.
func (db *DB) DeleteCharacter(ctx context.Context, id int64) error {
	return db.deleteByID(ctx, "characters", id)
}
