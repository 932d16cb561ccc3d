// Package vault mirrors a directory of Markdown lore files into the record
// store and exports stored novels back to it.
package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/store"
)

// Records is the validated record layer the vault writes through.
type Records interface {
	GetNovel(ctx context.Context, id int64) (*models.Novel, error)
	CreateNovel(ctx context.Context, n *models.Novel) error
	UpdateNovel(ctx context.Context, n *models.Novel) error
	DeleteNovel(ctx context.Context, id int64) error

	GetChapter(ctx context.Context, id int64) (*models.Chapter, error)
	ListChapters(ctx context.Context, novelID int64) ([]models.Chapter, error)
	CreateChapter(ctx context.Context, c *models.Chapter) error
	UpdateChapter(ctx context.Context, c *models.Chapter) error
	DeleteChapter(ctx context.Context, id int64) error

	GetCharacter(ctx context.Context, id int64) (*models.Character, error)
	ListCharacters(ctx context.Context, novelID int64) ([]models.Character, error)
	CreateCharacter(ctx context.Context, c *models.Character) error
	UpdateCharacter(ctx context.Context, c *models.Character) error
	DeleteCharacter(ctx context.Context, id int64) error

	GetSetting(ctx context.Context, id int64) (*models.Setting, error)
	ListSettings(ctx context.Context, novelID int64) ([]models.Setting, error)
	CreateSetting(ctx context.Context, s *models.Setting) error
	UpdateSetting(ctx context.Context, s *models.Setting) error
	DeleteSetting(ctx context.Context, id int64) error

	GetOutline(ctx context.Context, id int64) (*models.Outline, error)
	ListOutlines(ctx context.Context, novelID int64) ([]models.Outline, error)
	CreateOutline(ctx context.Context, o *models.Outline) error
	UpdateOutline(ctx context.Context, o *models.Outline) error
	DeleteOutline(ctx context.Context, id int64) error
}

// Sources tracks which file produced which record.
type Sources interface {
	AllSources(ctx context.Context) (map[string]store.Source, error)
	PutSource(ctx context.Context, s store.Source) error
	DeleteSource(ctx context.Context, path string) error
}

// Report counts what one Sync pass did.
type Report struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Changed reports whether the pass touched any record.
func (r Report) Changed() bool {
	return r.Created+r.Updated+r.Deleted > 0
}

// Syncer keeps the record store in step with a vault directory.
type Syncer struct {
	fs      *FS
	records Records
	sources Sources
	log     *slog.Logger
}

// NewSyncer returns a Syncer. A nil logger uses slog.Default.
func NewSyncer(fs *FS, records Records, sources Sources, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{fs: fs, records: records, sources: sources, log: logger}
}

// Sync walks the vault and brings the store up to date:
//   - new/changed files are decoded and created or updated
//   - records whose file is gone are deleted
//
// Per-file failures are logged and counted; only listing errors abort.
func (s *Syncer) Sync(ctx context.Context) (Report, error) {
	var rep Report

	metas, err := s.fs.List("")
	if err != nil {
		return rep, err
	}
	sources, err := s.sources.AllSources(ctx)
	if err != nil {
		return rep, err
	}

	var novels, children []FileMeta
	for _, m := range metas {
		kind, _, ok := classify(m.Path)
		switch {
		case !ok:
			s.log.Debug("vault: ignoring file", slog.String("path", m.Path))
		case kind == KindNovel:
			novels = append(novels, m)
		default:
			children = append(children, m)
		}
	}

	disk := make(map[string]struct{}, len(metas))
	novelIDs := make(map[string]int64, len(novels))

	for _, m := range novels {
		disk[m.Path] = struct{}{}
		_, dir, _ := classify(m.Path)
		id, err := s.importFile(ctx, m, KindNovel, 0, sources, &rep)
		if err != nil {
			rep.Failed++
			s.log.Warn("vault: import failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		novelIDs[dir] = id
	}

	for _, m := range children {
		disk[m.Path] = struct{}{}
		kind, dir, _ := classify(m.Path)
		novelID, ok := novelIDs[dir]
		if !ok {
			rep.Failed++
			s.log.Warn("vault: no novel.md for file", slog.String("path", m.Path))
			continue
		}
		if _, err := s.importFile(ctx, m, kind, novelID, sources, &rep); err != nil {
			rep.Failed++
			s.log.Warn("vault: import failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		}
	}

	s.removeStale(ctx, sources, disk, &rep)

	s.log.Info("vault: synced",
		slog.Int("created", rep.Created),
		slog.Int("updated", rep.Updated),
		slog.Int("deleted", rep.Deleted),
		slog.Int("skipped", rep.Skipped),
		slog.Int("failed", rep.Failed),
	)
	return rep, nil
}

// importFile creates or updates the record behind one file and returns its id.
func (s *Syncer) importFile(ctx context.Context, m FileMeta, kind string, novelID int64, sources map[string]store.Source, rep *Report) (int64, error) {
	src, known := sources[m.Path]
	if known && src.Kind != kind {
		known = false
	}
	if known && src.Checksum == m.Checksum {
		err := s.recordExists(ctx, kind, src.RecordID)
		if err == nil {
			rep.Skipped++
			return src.RecordID, nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return 0, err
		}
		s.log.Debug("vault: record gone, reimporting", slog.String("path", m.Path))
	}

	data, err := s.fs.Read(m.Path)
	if err != nil {
		return 0, err
	}

	var existing int64
	if known {
		existing = src.RecordID
	}
	id, created, err := s.apply(ctx, kind, m.Path, data, existing, novelID)
	if err != nil {
		return 0, err
	}
	if kind == KindNovel {
		novelID = id
	}
	if err := s.sources.PutSource(ctx, store.Source{
		Path:     m.Path,
		Kind:     kind,
		RecordID: id,
		NovelID:  novelID,
		Checksum: m.Checksum,
	}); err != nil {
		return 0, err
	}

	if created {
		rep.Created++
		s.log.Debug("vault: created", slog.String("path", m.Path), slog.Int64("id", id))
	} else {
		rep.Updated++
		s.log.Debug("vault: updated", slog.String("path", m.Path), slog.Int64("id", id))
	}
	return id, nil
}

// recordExists returns apperr.ErrNotFound when the record behind a source
// entry was deleted outside the vault.
func (s *Syncer) recordExists(ctx context.Context, kind string, id int64) error {
	var err error
	switch kind {
	case KindNovel:
		_, err = s.records.GetNovel(ctx, id)
	case KindChapter:
		_, err = s.records.GetChapter(ctx, id)
	case KindCharacter:
		_, err = s.records.GetCharacter(ctx, id)
	case KindSetting:
		_, err = s.records.GetSetting(ctx, id)
	case KindOutline:
		_, err = s.records.GetOutline(ctx, id)
	default:
		err = fmt.Errorf("vault: unknown kind %q", kind)
	}
	return err
}

// upsert runs update when a record id is known and falls back to create
// when that record no longer exists.
func upsert(existing int64, update, create func() error) (bool, error) {
	if existing != 0 {
		err := update()
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return false, err
		}
	}
	return true, create()
}

func (s *Syncer) apply(ctx context.Context, kind, p string, data []byte, existing, novelID int64) (int64, bool, error) {
	switch kind {
	case KindNovel:
		n, err := decodeNovel(p, data)
		if err != nil {
			return 0, false, err
		}
		created, err := upsert(existing,
			func() error { n.ID = existing; return s.records.UpdateNovel(ctx, &n) },
			func() error { n.ID = 0; return s.records.CreateNovel(ctx, &n) })
		return n.ID, created, err

	case KindChapter:
		c, err := decodeChapter(p, data)
		if err != nil {
			return 0, false, err
		}
		c.NovelID = novelID
		created, err := upsert(existing,
			func() error { c.ID = existing; return s.records.UpdateChapter(ctx, &c) },
			func() error { c.ID = 0; c.NovelID = novelID; return s.records.CreateChapter(ctx, &c) })
		return c.ID, created, err

	case KindCharacter:
		c, err := decodeCharacter(p, data)
		if err != nil {
			return 0, false, err
		}
		c.NovelID = novelID
		created, err := upsert(existing,
			func() error { c.ID = existing; return s.records.UpdateCharacter(ctx, &c) },
			func() error { c.ID = 0; c.NovelID = novelID; return s.records.CreateCharacter(ctx, &c) })
		return c.ID, created, err

	case KindSetting:
		st, err := decodeSetting(p, data)
		if err != nil {
			return 0, false, err
		}
		st.NovelID = novelID
		created, err := upsert(existing,
			func() error { st.ID = existing; return s.records.UpdateSetting(ctx, &st) },
			func() error { st.ID = 0; st.NovelID = novelID; return s.records.CreateSetting(ctx, &st) })
		return st.ID, created, err

	case KindOutline:
		o, err := decodeOutline(p, data)
		if err != nil {
			return 0, false, err
		}
		o.NovelID = novelID
		created, err := upsert(existing,
			func() error { o.ID = existing; return s.records.UpdateOutline(ctx, &o) },
			func() error { o.ID = 0; o.NovelID = novelID; return s.records.CreateOutline(ctx, &o) })
		return o.ID, created, err
	}
	return 0, false, fmt.Errorf("vault: unknown kind %q", kind)
}

// removeStale deletes records whose source file disappeared. Children go
// before novels so a vanished novel directory is removed bottom-up.
func (s *Syncer) removeStale(ctx context.Context, sources map[string]store.Source, disk map[string]struct{}, rep *Report) {
	var stale []store.Source
	for p, src := range sources {
		if _, ok := disk[p]; !ok {
			stale = append(stale, src)
		}
	}
	sort.Slice(stale, func(i, j int) bool {
		ni, nj := stale[i].Kind == KindNovel, stale[j].Kind == KindNovel
		if ni != nj {
			return nj
		}
		return stale[i].Path < stale[j].Path
	})

	for _, src := range stale {
		err := s.deleteRecord(ctx, src.Kind, src.RecordID)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			rep.Failed++
			s.log.Warn("vault: delete failed", slog.String("path", src.Path), slog.String("error", err.Error()))
			continue
		}
		if err := s.sources.DeleteSource(ctx, src.Path); err != nil {
			rep.Failed++
			s.log.Warn("vault: forget source failed", slog.String("path", src.Path), slog.String("error", err.Error()))
			continue
		}
		rep.Deleted++
		s.log.Debug("vault: removed stale", slog.String("path", src.Path))
	}
}

func (s *Syncer) deleteRecord(ctx context.Context, kind string, id int64) error {
	switch kind {
	case KindNovel:
		return s.records.DeleteNovel(ctx, id)
	case KindChapter:
		return s.records.DeleteChapter(ctx, id)
	case KindCharacter:
		return s.records.DeleteCharacter(ctx, id)
	case KindSetting:
		return s.records.DeleteSetting(ctx, id)
	case KindOutline:
		return s.records.DeleteOutline(ctx, id)
	}
	return fmt.Errorf("vault: unknown kind %q", kind)
}

// novelDir returns the directory holding a novel's files.
func novelDir(novelPath string) string {
	return path.Dir(novelPath)
}
