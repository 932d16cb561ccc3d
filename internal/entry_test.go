package internal

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testConfig(t *testing.T, vaultDir string) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "inkwell.db")
	cfg.Vault.Path = vaultDir
	cfg.Writer.Layout = "en"
	return cfg
}

func testOptions(cfg *Config) []Option {
	return []Option{WithConfig(cfg), WithVersion("test"), WithLogOutput(io.Discard)}
}

func TestRunRequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Fatal("Run without config should fail")
	}
}

func TestRunSyncWithoutVault(t *testing.T) {
	cfg := testConfig(t, "")
	_, err := RunSync(context.Background(), testOptions(cfg)...)
	if err == nil || !strings.Contains(err.Error(), "vault path") {
		t.Fatalf("err = %v, want missing vault path", err)
	}
}

func TestRunSyncThenExport(t *testing.T) {
	vaultDir := t.TempDir()
	novelDir := filepath.Join(vaultDir, "harbor")
	if err := os.MkdirAll(filepath.Join(novelDir, "characters"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"novel.md":            "---\ntitle: Harbor Lights\n---\n\nA lighthouse keeper's story.\n",
		"characters/maren.md": "---\nname: Maren\npersonality: stubborn\n---\n\nThe keeper.\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(novelDir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := testConfig(t, vaultDir)
	ctx := context.Background()

	rep, err := RunSync(ctx, testOptions(cfg)...)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Created != 2 || rep.Failed != 0 {
		t.Fatalf("report = %+v, want 2 created", rep)
	}

	n, err := RunExport(ctx, 1, testOptions(cfg)...)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("exported %d files, want 2", n)
	}

	rep, err = RunSync(ctx, testOptions(cfg)...)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Changed() {
		t.Errorf("resync after export changed records: %+v", rep)
	}
}

func TestHandlerRoutes(t *testing.T) {
	cfg := testConfig(t, "")
	app, err := newApplication(testOptions(cfg))
	if err != nil {
		t.Fatal(err)
	}
	c, err := build(context.Background(), app)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(c.close)

	srv := httptest.NewServer(c.handler())
	t.Cleanup(srv.Close)

	for _, path := range []string{"/health/live", "/health/ready", "/api/novels"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestBuildRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Generation.Provider = "oracle"
	app, err := newApplication(testOptions(cfg))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := build(context.Background(), app); err == nil {
		t.Fatal("build should reject an unknown provider")
	}
}
