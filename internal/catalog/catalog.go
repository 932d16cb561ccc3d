// Package catalog is the validated CRUD layer over the record store used by
// the HTTP and MCP surfaces.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/store"
)

// Record kinds reported in change events.
const (
	KindNovel     = "novel"
	KindChapter   = "chapter"
	KindCharacter = "character"
	KindSetting   = "setting"
	KindOutline   = "outline"
)

// Change actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Change describes one committed record mutation.
type Change struct {
	Kind    string `json:"kind"`
	Action  string `json:"action"`
	NovelID int64  `json:"novel_id"`
	ID      int64  `json:"id"`
}

// Listener is notified after every committed change.
type Listener interface {
	RecordChanged(c Change)
}

// Service validates input and forwards to the store.
type Service struct {
	db       store.NovelStore
	listener Listener
	log      *slog.Logger
}

// NewService returns a catalog over db. listener may be nil.
func NewService(db store.NovelStore, listener Listener) *Service {
	return &Service{db: db, listener: listener, log: slog.Default()}
}

func (s *Service) notify(kind, action string, novelID, id int64) {
	if s.listener == nil {
		return
	}
	s.listener.RecordChanged(Change{Kind: kind, Action: action, NovelID: novelID, ID: id})
}

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s", apperr.ErrInvalid, err.Error())
}

// Novels.

func validateNovel(n *models.Novel) error {
	return invalid(validation.ValidateStruct(n,
		validation.Field(&n.Title, validation.Required, validation.RuneLength(1, 200)),
	))
}

// CreateNovel validates and stores a new novel.
func (s *Service) CreateNovel(ctx context.Context, n *models.Novel) error {
	if err := validateNovel(n); err != nil {
		return err
	}
	if err := s.db.CreateNovel(ctx, n); err != nil {
		return err
	}
	s.notify(KindNovel, ActionCreated, n.ID, n.ID)
	return nil
}

// GetNovel returns a novel or apperr.ErrNotFound.
func (s *Service) GetNovel(ctx context.Context, id int64) (*models.Novel, error) {
	return s.db.GetNovel(ctx, id)
}

// ListNovels returns every novel.
func (s *Service) ListNovels(ctx context.Context) ([]models.Novel, error) {
	return s.db.ListNovels(ctx)
}

// UpdateNovel validates and overwrites a novel.
func (s *Service) UpdateNovel(ctx context.Context, n *models.Novel) error {
	if err := validateNovel(n); err != nil {
		return err
	}
	existing, err := s.db.GetNovel(ctx, n.ID)
	if err != nil {
		return err
	}
	if err := s.db.UpdateNovel(ctx, n); err != nil {
		return err
	}
	n.CreatedAt = existing.CreatedAt
	s.notify(KindNovel, ActionUpdated, n.ID, n.ID)
	return nil
}

// DeleteNovel removes a novel and everything it owns.
func (s *Service) DeleteNovel(ctx context.Context, id int64) error {
	if err := s.db.DeleteNovel(ctx, id); err != nil {
		return err
	}
	s.log.Info("novel deleted", slog.Int64("novel_id", id))
	s.notify(KindNovel, ActionDeleted, id, id)
	return nil
}

// requireNovel makes list calls on unknown novels fail with ErrNotFound
// instead of returning an empty list.
func (s *Service) requireNovel(ctx context.Context, novelID int64) error {
	_, err := s.db.GetNovel(ctx, novelID)
	return err
}

// Chapters.

func validateChapter(c *models.Chapter) error {
	return invalid(validation.ValidateStruct(c,
		validation.Field(&c.Number, validation.Required, validation.Min(1)),
		validation.Field(&c.Title, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&c.Content, validation.Required),
	))
}

// CreateChapter validates and stores a chapter.
func (s *Service) CreateChapter(ctx context.Context, c *models.Chapter) error {
	if err := validateChapter(c); err != nil {
		return err
	}
	if err := s.db.CreateChapter(ctx, c); err != nil {
		return err
	}
	s.notify(KindChapter, ActionCreated, c.NovelID, c.ID)
	return nil
}

// GetChapter returns a chapter or apperr.ErrNotFound.
func (s *Service) GetChapter(ctx context.Context, id int64) (*models.Chapter, error) {
	return s.db.GetChapter(ctx, id)
}

// ListChapters returns a novel's chapters ordered by number.
func (s *Service) ListChapters(ctx context.Context, novelID int64) ([]models.Chapter, error) {
	if err := s.requireNovel(ctx, novelID); err != nil {
		return nil, err
	}
	return s.db.ListChapters(ctx, novelID)
}

// UpdateChapter validates and overwrites a chapter. The owning novel cannot change.
func (s *Service) UpdateChapter(ctx context.Context, c *models.Chapter) error {
	existing, err := s.db.GetChapter(ctx, c.ID)
	if err != nil {
		return err
	}
	c.NovelID = existing.NovelID
	if err := validateChapter(c); err != nil {
		return err
	}
	if err := s.db.UpdateChapter(ctx, c); err != nil {
		return err
	}
	c.CreatedAt = existing.CreatedAt
	s.notify(KindChapter, ActionUpdated, c.NovelID, c.ID)
	return nil
}

// DeleteChapter removes a chapter.
func (s *Service) DeleteChapter(ctx context.Context, id int64) error {
	existing, err := s.db.GetChapter(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.DeleteChapter(ctx, id); err != nil {
		return err
	}
	s.notify(KindChapter, ActionDeleted, existing.NovelID, id)
	return nil
}

// SearchChapters runs a full-text search over a novel's chapters.
func (s *Service) SearchChapters(ctx context.Context, novelID int64, query string, limit int) ([]store.SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", apperr.ErrInvalid)
	}
	if err := s.requireNovel(ctx, novelID); err != nil {
		return nil, err
	}
	return s.db.SearchChapters(ctx, novelID, query, limit)
}

// Characters.

func validateCharacter(c *models.Character) error {
	return invalid(validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required, validation.RuneLength(1, 100)),
	))
}

// CreateCharacter validates and stores a character.
func (s *Service) CreateCharacter(ctx context.Context, c *models.Character) error {
	if err := validateCharacter(c); err != nil {
		return err
	}
	if err := s.db.CreateCharacter(ctx, c); err != nil {
		return err
	}
	s.notify(KindCharacter, ActionCreated, c.NovelID, c.ID)
	return nil
}

// GetCharacter returns a character or apperr.ErrNotFound.
func (s *Service) GetCharacter(ctx context.Context, id int64) (*models.Character, error) {
	return s.db.GetCharacter(ctx, id)
}

// ListCharacters returns a novel's characters.
func (s *Service) ListCharacters(ctx context.Context, novelID int64) ([]models.Character, error) {
	if err := s.requireNovel(ctx, novelID); err != nil {
		return nil, err
	}
	return s.db.ListCharacters(ctx, novelID)
}

// UpdateCharacter validates and overwrites a character.
func (s *Service) UpdateCharacter(ctx context.Context, c *models.Character) error {
	existing, err := s.db.GetCharacter(ctx, c.ID)
	if err != nil {
		return err
	}
	c.NovelID = existing.NovelID
	if err := validateCharacter(c); err != nil {
		return err
	}
	if err := s.db.UpdateCharacter(ctx, c); err != nil {
		return err
	}
	c.CreatedAt = existing.CreatedAt
	s.notify(KindCharacter, ActionUpdated, c.NovelID, c.ID)
	return nil
}

// DeleteCharacter removes a character.
func (s *Service) DeleteCharacter(ctx context.Context, id int64) error {
	existing, err := s.db.GetCharacter(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.DeleteCharacter(ctx, id); err != nil {
		return err
	}
	s.notify(KindCharacter, ActionDeleted, existing.NovelID, id)
	return nil
}

// Settings.

func validateSetting(st *models.Setting) error {
	return invalid(validation.ValidateStruct(st,
		validation.Field(&st.Name, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&st.Type, validation.RuneLength(0, 50)),
	))
}

// CreateSetting validates and stores a setting.
func (s *Service) CreateSetting(ctx context.Context, st *models.Setting) error {
	if err := validateSetting(st); err != nil {
		return err
	}
	if err := s.db.CreateSetting(ctx, st); err != nil {
		return err
	}
	s.notify(KindSetting, ActionCreated, st.NovelID, st.ID)
	return nil
}

// GetSetting returns a setting or apperr.ErrNotFound.
func (s *Service) GetSetting(ctx context.Context, id int64) (*models.Setting, error) {
	return s.db.GetSetting(ctx, id)
}

// ListSettings returns a novel's settings.
func (s *Service) ListSettings(ctx context.Context, novelID int64) ([]models.Setting, error) {
	if err := s.requireNovel(ctx, novelID); err != nil {
		return nil, err
	}
	return s.db.ListSettings(ctx, novelID)
}

// UpdateSetting validates and overwrites a setting.
func (s *Service) UpdateSetting(ctx context.Context, st *models.Setting) error {
	existing, err := s.db.GetSetting(ctx, st.ID)
	if err != nil {
		return err
	}
	st.NovelID = existing.NovelID
	if err := validateSetting(st); err != nil {
		return err
	}
	if err := s.db.UpdateSetting(ctx, st); err != nil {
		return err
	}
	st.CreatedAt = existing.CreatedAt
	s.notify(KindSetting, ActionUpdated, st.NovelID, st.ID)
	return nil
}

// DeleteSetting removes a setting.
func (s *Service) DeleteSetting(ctx context.Context, id int64) error {
	existing, err := s.db.GetSetting(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.DeleteSetting(ctx, id); err != nil {
		return err
	}
	s.notify(KindSetting, ActionDeleted, existing.NovelID, id)
	return nil
}

// Outlines.

func validateOutline(o *models.Outline) error {
	if o.Status == "" {
		o.Status = models.OutlinePlanned
	}
	return invalid(validation.ValidateStruct(o,
		validation.Field(&o.Section, validation.Required, validation.Min(1)),
		validation.Field(&o.Title, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&o.Content, validation.Required),
		validation.Field(&o.Status, validation.By(func(any) error {
			if !o.Status.Valid() {
				return validation.NewError("validation_outline_status", "must be planned, writing or completed")
			}
			return nil
		})),
	))
}

// CreateOutline validates and stores an outline section.
func (s *Service) CreateOutline(ctx context.Context, o *models.Outline) error {
	if err := validateOutline(o); err != nil {
		return err
	}
	if err := s.db.CreateOutline(ctx, o); err != nil {
		return err
	}
	s.notify(KindOutline, ActionCreated, o.NovelID, o.ID)
	return nil
}

// GetOutline returns an outline section or apperr.ErrNotFound.
func (s *Service) GetOutline(ctx context.Context, id int64) (*models.Outline, error) {
	return s.db.GetOutline(ctx, id)
}

// ListOutlines returns a novel's outline ordered by section.
func (s *Service) ListOutlines(ctx context.Context, novelID int64) ([]models.Outline, error) {
	if err := s.requireNovel(ctx, novelID); err != nil {
		return nil, err
	}
	return s.db.ListOutlines(ctx, novelID)
}

// UpdateOutline validates and overwrites an outline section.
func (s *Service) UpdateOutline(ctx context.Context, o *models.Outline) error {
	existing, err := s.db.GetOutline(ctx, o.ID)
	if err != nil {
		return err
	}
	o.NovelID = existing.NovelID
	if err := validateOutline(o); err != nil {
		return err
	}
	if err := s.db.UpdateOutline(ctx, o); err != nil {
		return err
	}
	o.CreatedAt = existing.CreatedAt
	s.notify(KindOutline, ActionUpdated, o.NovelID, o.ID)
	return nil
}

// DeleteOutline removes an outline section.
func (s *Service) DeleteOutline(ctx context.Context, id int64) error {
	existing, err := s.db.GetOutline(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.DeleteOutline(ctx, id); err != nil {
		return err
	}
	s.notify(KindOutline, ActionDeleted, existing.NovelID, id)
	return nil
}
