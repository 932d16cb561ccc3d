package vault

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestFS(t *testing.T) *FS {
	t.Helper()
	v, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return v
}

func TestFSRoundTrip(t *testing.T) {
	v := newTestFS(t)
	body := "---\ntitle: Fog Harbor\n---\n\nA lighthouse town.\n"
	if err := v.Write("harbor/novel.md", []byte(body)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := v.Read("harbor/novel.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != body {
		t.Errorf("Read = %q, want %q", got, body)
	}

	if err := v.Write("harbor/novel.md", []byte("rewritten")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got, _ := v.Read("harbor/novel.md"); string(got) != "rewritten" {
		t.Errorf("after overwrite = %q", got)
	}
	leftovers, _ := filepath.Glob(filepath.Join(v.Root(), "harbor", tempPrefix+"*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestFSListFiltersEntries(t *testing.T) {
	v := newTestFS(t)
	files := map[string]string{
		"harbor/novel.md":             "a",
		"harbor/chapters/001-fog.md":  "b",
		"harbor/notes.txt":            "plain text",
		".obsidian/workspace.md":      "hidden dir",
		"harbor/characters/.draft.md": "hidden file",
	}
	for p, c := range files {
		if err := v.Write(p, []byte(c)); err != nil {
			t.Fatalf("Write %s: %v", p, err)
		}
	}

	metas, err := v.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	got := make(map[string]string, len(metas))
	for _, m := range metas {
		got[m.Path] = m.Checksum
	}
	want := map[string]string{
		"harbor/novel.md":            checksum([]byte("a")),
		"harbor/chapters/001-fog.md": checksum([]byte("b")),
	}
	if len(got) != len(want) {
		t.Fatalf("List = %v, want %v", got, want)
	}
	for p, sum := range want {
		if got[p] != sum {
			t.Errorf("%s checksum = %q, want %q", p, got[p], sum)
		}
	}

	sub, err := v.List("harbor/chapters")
	if err != nil {
		t.Fatalf("List subdir: %v", err)
	}
	if len(sub) != 1 || sub[0].Path != "harbor/chapters/001-fog.md" {
		t.Errorf("List subdir = %+v", sub)
	}
}

func TestFSRejectsEscapes(t *testing.T) {
	v := newTestFS(t)
	for _, p := range []string{"../outside.md", "harbor/../../x.md", "/etc/passwd"} {
		if _, err := v.Read(p); err == nil {
			t.Errorf("Read(%q) succeeded", p)
		}
		if err := v.Write(p, []byte("x")); err == nil {
			t.Errorf("Write(%q) succeeded", p)
		}
	}
	if err := v.Write("", []byte("x")); err == nil {
		t.Error("Write with empty path succeeded")
	}
}

func TestFSRejectsSymlinkEscape(t *testing.T) {
	v := newTestFS(t)
	outside := filepath.Join(t.TempDir(), "secret.md")
	if err := os.WriteFile(outside, []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(v.Root(), "link.md")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if _, err := v.Read("link.md"); err == nil {
		t.Error("Read through an escaping symlink succeeded")
	}
}

func TestNewFS(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lore", "vault")
	v, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	if info, err := os.Stat(v.Root()); err != nil || !info.IsDir() {
		t.Fatalf("root not created: %v", err)
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFS(file); err == nil {
		t.Error("NewFS accepted a regular file")
	}
}
