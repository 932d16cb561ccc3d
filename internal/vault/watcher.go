package vault

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits after the last file event before
// re-syncing.
const DefaultDebounce = 300 * time.Millisecond

// Watch re-syncs the vault after file changes until ctx is cancelled. Bursts
// of events are coalesced into one Sync that runs debounce after the last
// event. New directories are added to the watch list as they appear. onSync,
// when non-nil, receives the report of every pass that changed something.
func (s *Syncer) Watch(ctx context.Context, debounce time.Duration, onSync func(Report)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, s.fs.Root()); err != nil {
		return err
	}
	s.log.Info("vault: watching", slog.String("root", s.fs.Root()))

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("vault: watcher stopped")
			return nil

		case <-timer.C:
			rep, err := s.Sync(ctx)
			if err != nil {
				s.log.Warn("vault: sync failed", slog.String("error", err.Error()))
				continue
			}
			if onSync != nil && rep.Changed() {
				onSync(rep)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						s.log.Warn("vault: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					timer.Reset(debounce)
					continue
				}
			}
			if !relevant(ev) {
				continue
			}
			timer.Reset(debounce)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Error("vault: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// relevant filters out chmod-only events and non-Markdown writes. Removals
// and renames always count since they may take a whole directory with them.
func relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		return true
	}
	if ev.Op == fsnotify.Chmod {
		return false
	}
	return strings.HasSuffix(ev.Name, ".md")
}

// addDirsRecursive adds root and all its non-hidden subdirectories.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}
