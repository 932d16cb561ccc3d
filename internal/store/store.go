package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/inkwell/internal/models"
)

// NovelStore defines the record-store operations used by the rest of the
// application. Consumers should depend on this interface (or a narrower one)
// rather than the concrete *DB type to facilitate testing with fakes.
type NovelStore interface {
	CreateNovel(ctx context.Context, n *models.Novel) error
	GetNovel(ctx context.Context, id int64) (*models.Novel, error)
	ListNovels(ctx context.Context) ([]models.Novel, error)
	UpdateNovel(ctx context.Context, n *models.Novel) error
	DeleteNovel(ctx context.Context, id int64) error

	CreateChapter(ctx context.Context, c *models.Chapter) error
	GetChapter(ctx context.Context, id int64) (*models.Chapter, error)
	ListChapters(ctx context.Context, novelID int64) ([]models.Chapter, error)
	UpdateChapter(ctx context.Context, c *models.Chapter) error
	DeleteChapter(ctx context.Context, id int64) error
	SearchChapters(ctx context.Context, novelID int64, query string, limit int) ([]SearchResult, error)

	CreateCharacter(ctx context.Context, c *models.Character) error
	GetCharacter(ctx context.Context, id int64) (*models.Character, error)
	ListCharacters(ctx context.Context, novelID int64) ([]models.Character, error)
	UpdateCharacter(ctx context.Context, c *models.Character) error
	DeleteCharacter(ctx context.Context, id int64) error

	CreateSetting(ctx context.Context, s *models.Setting) error
	GetSetting(ctx context.Context, id int64) (*models.Setting, error)
	ListSettings(ctx context.Context, novelID int64) ([]models.Setting, error)
	UpdateSetting(ctx context.Context, s *models.Setting) error
	DeleteSetting(ctx context.Context, id int64) error

	CreateOutline(ctx context.Context, o *models.Outline) error
	GetOutline(ctx context.Context, id int64) (*models.Outline, error)
	ListOutlines(ctx context.Context, novelID int64) ([]models.Outline, error)
	UpdateOutline(ctx context.Context, o *models.Outline) error
	DeleteOutline(ctx context.Context, id int64) error

	Close() error
}

// Verify *DB satisfies NovelStore at compile time.
var _ NovelStore = (*DB)(nil)

// SearchResult represents one chapter search hit.
type SearchResult struct {
	ChapterID int64  `json:"chapter_id"`
	Number    int    `json:"chapter_number"`
	Title     string `json:"title"`
	Snippet   string `json:"snippet"`
}

const defaultSearchLimit = 20

func scanSearchResults(rows *sql.Rows) ([]SearchResult, error) {
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ChapterID, &r.Number, &r.Title, &r.Snippet); err != nil {
			return nil, fmt.Errorf("store: scan search result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
