package vault

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const tempPrefix = ".inkwell-tmp-"

// FileMeta describes one Markdown file in the vault.
type FileMeta struct {
	Path     string // slash-separated, relative to the vault root
	Checksum string
	ModTime  time.Time
}

// FS is the vault directory on the local file system. Every access goes
// through os.Root, so symlinks cannot lead outside the vault either.
type FS struct {
	root string
}

// NewFS opens the vault rooted at root, creating the directory when missing.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("vault: resolve root: %w", err)
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("vault: root is not a directory: %s", abs)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("vault: create root: %w", err)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute vault directory.
func (f *FS) Root() string { return f.root }

// clean turns a caller path into a root-relative slash path.
func clean(rel string) (string, error) {
	if rel == "" {
		return ".", nil
	}
	p := path.Clean(filepath.ToSlash(rel))
	if !fs.ValidPath(p) {
		return "", fmt.Errorf("vault: path outside vault: %q", rel)
	}
	return p, nil
}

func (f *FS) open() (*os.Root, error) {
	r, err := os.OpenRoot(f.root)
	if err != nil {
		return nil, fmt.Errorf("vault: open root: %w", err)
	}
	return r, nil
}

// List walks dir (relative to root) and returns metadata for every .md file.
// Hidden files and directories are skipped.
func (f *FS) List(dir string) ([]FileMeta, error) {
	start, err := clean(dir)
	if err != nil {
		return nil, err
	}
	r, err := f.open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	fsys := r.FS()

	var out []FileMeta
	err = fs.WalkDir(fsys, start, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		hidden := p != start && strings.HasPrefix(d.Name(), ".")
		switch {
		case hidden && d.IsDir():
			return fs.SkipDir
		case hidden, d.IsDir(), path.Ext(p) != ".md":
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		out = append(out, FileMeta{Path: p, Checksum: checksum(data), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vault: list %s: %w", start, err)
	}
	return out, nil
}

// Read returns the raw bytes of a vault file.
func (f *FS) Read(name string) ([]byte, error) {
	p, err := clean(name)
	if err != nil {
		return nil, err
	}
	r, err := f.open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := r.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("vault: read %s: %w", p, err)
	}
	return data, nil
}

// Write replaces name with content. The bytes go to a synced temp file in
// the same directory which is then renamed over the target.
func (f *FS) Write(name string, content []byte) (err error) {
	p, err := clean(name)
	if err != nil {
		return err
	}
	if p == "." {
		return errors.New("vault: write: empty path")
	}
	r, err := f.open()
	if err != nil {
		return err
	}
	defer r.Close()

	dir := path.Dir(p)
	if err := r.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("vault: mkdir %s: %w", dir, err)
	}

	tmpName := path.Join(dir, tempPrefix+uuid.NewString())
	tmp, err := r.OpenFile(tmpName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("vault: create temp: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = r.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		return fmt.Errorf("vault: write temp: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("vault: fsync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("vault: close temp: %w", err)
	}
	if err = r.Rename(tmpName, p); err != nil {
		return fmt.Errorf("vault: rename: %w", err)
	}
	return nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
