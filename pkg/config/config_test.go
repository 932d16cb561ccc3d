package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	Token string `yaml:"token"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadKeepsDefaultsAndExpandsEnv(t *testing.T) {
	t.Setenv("INKWELL_TEST_TOKEN", "quill")
	p := writeFile(t, "port: 9090\ntoken: ${INKWELL_TEST_TOKEN}\n")

	cfg := sample{Name: "default", Port: 8080}
	if err := Load(p, &cfg); err != nil {
		t.Fatal(err)
	}
	want := sample{Name: "default", Port: 9090, Token: "quill"}
	if cfg != want {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestLoadValidates(t *testing.T) {
	p := writeFile(t, "port: 0\n")
	cfg := sample{Port: 8080}
	err := Load(p, &cfg)
	if err == nil || !strings.Contains(err.Error(), "port must be positive") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	cfg := sample{Port: 1}
	if err := Load(filepath.Join(t.TempDir(), "missing.yaml"), &cfg); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file err = %v", err)
	}
	if err := Load(writeFile(t, "port: [\n"), &cfg); err == nil || !strings.Contains(err.Error(), "parse config file") {
		t.Errorf("bad yaml err = %v", err)
	}
}

func TestLoadOptional(t *testing.T) {
	cfg := sample{Name: "default", Port: 8080}
	if err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &cfg); err != nil {
		t.Fatalf("missing file should keep defaults: %v", err)
	}
	if cfg.Name != "default" || cfg.Port != 8080 {
		t.Errorf("cfg = %+v", cfg)
	}

	bad := sample{}
	if err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &bad); err == nil {
		t.Error("defaults should still be validated")
	}
}
