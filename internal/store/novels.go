package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
)

type scanner interface {
	Scan(dest ...any) error
}

const novelColumns = `id, title, description, created_at, updated_at`

func scanNovel(row scanner) (*models.Novel, error) {
	var (
		n                models.Novel
		created, updated string
	)
	if err := row.Scan(&n.ID, &n.Title, &n.Description, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if n.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if n.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &n, nil
}

// CreateNovel inserts n and fills in its ID and timestamps.
func (db *DB) CreateNovel(ctx context.Context, n *models.Novel) error {
	now := db.now()
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO novels (title, description, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		n.Title, n.Description, formatTime(now), formatTime(now))
	if err != nil {
		return fmt.Errorf("store: insert novel: %w", err)
	}
	if n.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("store: novel id: %w", err)
	}
	n.CreatedAt, n.UpdatedAt = now, now
	return nil
}

// GetNovel returns the novel with the given id or apperr.ErrNotFound.
func (db *DB) GetNovel(ctx context.Context, id int64) (*models.Novel, error) {
	n, err := scanNovel(db.conn.QueryRowContext(ctx,
		`SELECT `+novelColumns+` FROM novels WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: get novel: %w", err)
	}
	return n, nil
}

// ListNovels returns every novel ordered by id.
func (db *DB) ListNovels(ctx context.Context) ([]models.Novel, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+novelColumns+` FROM novels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list novels: %w", err)
	}
	defer rows.Close()

	var out []models.Novel
	for rows.Next() {
		n, err := scanNovel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// UpdateNovel overwrites the title and description of n and bumps UpdatedAt.
func (db *DB) UpdateNovel(ctx context.Context, n *models.Novel) error {
	now := db.now()
	res, err := db.conn.ExecContext(ctx,
		`UPDATE novels SET title = ?, description = ?, updated_at = ? WHERE id = ?`,
		n.Title, n.Description, formatTime(now), n.ID)
	if err != nil {
		return fmt.Errorf("store: update novel: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}
	n.UpdatedAt = now
	return nil
}

// DeleteNovel removes a novel; the schema cascades to every owned record.
func (db *DB) DeleteNovel(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM novels WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete novel: %w", err)
	}
	return expectOneRow(res)
}

// requireNovel fails with apperr.ErrNotFound when the parent novel is missing.
func requireNovel(ctx context.Context, tx *sql.Tx, novelID int64) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM novels WHERE id = ?`, novelID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: check novel: %w", err)
	}
	return nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// insertChild runs an INSERT for a record owned by novelID inside a
// transaction that first checks the novel exists.
func (db *DB) insertChild(ctx context.Context, novelID int64, query string, args ...any) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := requireNovel(ctx, tx, novelID); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("store: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: last insert id: %w", err)
	}
	return id, tx.Commit()
}

func (db *DB) deleteByID(ctx context.Context, table string, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete from %s: %w", table, err)
	}
	return expectOneRow(res)
}
