package vault

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/starford/inkwell/internal/store"
)

type recordKey struct {
	kind string
	id   int64
}

// Export writes a novel and everything it owns to the vault and records the
// files as sources, so the next Sync treats them as unchanged. Records that
// came from the vault are written back to their original file. It returns
// the number of files written.
func (s *Syncer) Export(ctx context.Context, novelID int64) (int, error) {
	n, err := s.records.GetNovel(ctx, novelID)
	if err != nil {
		return 0, err
	}
	sources, err := s.sources.AllSources(ctx)
	if err != nil {
		return 0, err
	}
	paths := make(map[recordKey]string, len(sources))
	for p, src := range sources {
		paths[recordKey{src.Kind, src.RecordID}] = p
	}

	novelPath, ok := paths[recordKey{KindNovel, n.ID}]
	if !ok {
		novelPath = fmt.Sprintf("novel-%d/%s", n.ID, novelFile)
	}
	dir := novelDir(novelPath)
	childPath := func(kind string, id int64, name string) string {
		if p, ok := paths[recordKey{kind, id}]; ok {
			return p
		}
		return path.Join(dir, dirFor(kind), name)
	}

	written := 0
	write := func(kind, p string, id int64, content []byte, encErr error) error {
		if encErr != nil {
			return encErr
		}
		if err := s.fs.Write(p, content); err != nil {
			return err
		}
		if err := s.sources.PutSource(ctx, store.Source{
			Path:     p,
			Kind:     kind,
			RecordID: id,
			NovelID:  n.ID,
			Checksum: checksum(content),
		}); err != nil {
			return err
		}
		written++
		return nil
	}

	content, err := encodeNovel(*n)
	if err := write(KindNovel, novelPath, n.ID, content, err); err != nil {
		return written, err
	}

	chapters, err := s.records.ListChapters(ctx, n.ID)
	if err != nil {
		return written, err
	}
	for _, c := range chapters {
		content, err := encodeChapter(c)
		p := childPath(KindChapter, c.ID, fmt.Sprintf("%03d-%d.md", c.Number, c.ID))
		if err := write(KindChapter, p, c.ID, content, err); err != nil {
			return written, err
		}
	}

	characters, err := s.records.ListCharacters(ctx, n.ID)
	if err != nil {
		return written, err
	}
	for _, c := range characters {
		content, err := encodeCharacter(c)
		p := childPath(KindCharacter, c.ID, fmt.Sprintf("character-%d.md", c.ID))
		if err := write(KindCharacter, p, c.ID, content, err); err != nil {
			return written, err
		}
	}

	settings, err := s.records.ListSettings(ctx, n.ID)
	if err != nil {
		return written, err
	}
	for _, st := range settings {
		content, err := encodeSetting(st)
		p := childPath(KindSetting, st.ID, fmt.Sprintf("setting-%d.md", st.ID))
		if err := write(KindSetting, p, st.ID, content, err); err != nil {
			return written, err
		}
	}

	outlines, err := s.records.ListOutlines(ctx, n.ID)
	if err != nil {
		return written, err
	}
	for _, o := range outlines {
		content, err := encodeOutline(o)
		p := childPath(KindOutline, o.ID, fmt.Sprintf("%03d-%d.md", o.Section, o.ID))
		if err := write(KindOutline, p, o.ID, content, err); err != nil {
			return written, err
		}
	}

	s.log.Info("vault: exported",
		slog.Int64("novel_id", n.ID),
		slog.String("dir", dir),
		slog.Int("files", written),
	)
	return written, nil
}
