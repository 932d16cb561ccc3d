package internal

import (
	"strings"
	"testing"
	"time"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenMode(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "quill"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}

	cfg = AuthConfig{Mode: "token"}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("empty token error = %v", err)
	}

	cfg = AuthConfig{Mode: "magic", Token: "x"}
	if cfg.Validate() == nil {
		t.Error("invalid mode should fail validation")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}
	if cfg.Vault.Enabled() {
		t.Error("vault should be disabled by default")
	}
	if cfg.Writer.MaxIterations != 3 {
		t.Errorf("max iterations = %d, want 3", cfg.Writer.MaxIterations)
	}
	sel := cfg.Writer.Selector()
	if sel.Thresholds.Character != 0.3 || sel.Thresholds.Setting != 0.3 || sel.Thresholds.Outline != 0.2 {
		t.Errorf("thresholds = %+v", sel.Thresholds)
	}
	if sel.FallbackCast != 3 {
		t.Errorf("fallback cast = %d, want 3", sel.FallbackCast)
	}
}

func TestConfigValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.App.HTTP.Port = 0 }, "app"},
		{"sqlite path", func(c *Config) { c.SQLite.Path = "" }, "sqlite"},
		{"sqlite driver", func(c *Config) { c.SQLite.Driver = "postgres" }, "sqlite"},
		{"auth", func(c *Config) { c.Auth.Mode = "token" }, "token is empty"},
		{"provider", func(c *Config) { c.Generation.Provider = "claude" }, "generation"},
		{"timeout", func(c *Config) { c.Generation.Timeout = -time.Second }, "generation"},
		{"layout", func(c *Config) { c.Writer.Layout = "fr" }, "writer"},
		{"iterations", func(c *Config) { c.Writer.MaxIterations = 0 }, "writer"},
		{"threshold", func(c *Config) { c.Writer.ApprovalThreshold = 1.5 }, "writer"},
		{"relevance", func(c *Config) { c.Writer.Relevance.Outline = -0.1 }, "writer"},
		{"debounce", func(c *Config) { c.Vault.Debounce = -time.Millisecond }, "vault"},
		{"sample ratio", func(c *Config) { c.Tracing.SampleRatio = 2 }, "SampleRatio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
