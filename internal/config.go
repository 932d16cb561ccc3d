package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/inkwell/internal/knowledge"
	"github.com/starford/inkwell/internal/llm"
	"github.com/starford/inkwell/internal/observability"
	"github.com/starford/inkwell/internal/review"
	"github.com/starford/inkwell/internal/store"
	"github.com/starford/inkwell/internal/vault"
	"github.com/starford/inkwell/internal/workshop"
	"github.com/starford/inkwell/internal/writer"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	SQLite     SQLiteConfig      `yaml:"sqlite"`
	Auth       AuthConfig        `yaml:"auth"`
	Generation GenerationConfig  `yaml:"generation"`
	Writer     WriterConfig      `yaml:"writer"`
	Vault      VaultConfig       `yaml:"vault"`
	Tracing    TracingConfig     `yaml:"tracing"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.SQLite.Validate(); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Generation.Validate(); err != nil {
		return fmt.Errorf("generation: %w", err)
	}
	if err := c.Writer.Validate(); err != nil {
		return fmt.Errorf("writer: %w", err)
	}
	if err := c.Vault.Validate(); err != nil {
		return fmt.Errorf("vault: %w", err)
	}
	return c.Tracing.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
}

// SQLiteConfig selects the database file and the database/sql driver.
type SQLiteConfig struct {
	Path   string `yaml:"path"`
	Driver string `yaml:"driver"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Driver, validation.In(store.DriverCGO, store.DriverPure)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// GenerationConfig selects the text-generation provider. Provider "none"
// keeps every generation on its placeholder path.
type GenerationConfig struct {
	Provider  string        `yaml:"provider"`
	Model     string        `yaml:"model"`
	APIKey    string        `yaml:"api_key"`
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxTokens int           `yaml:"max_tokens"`
}

// Validate validates the generation configuration.
func (c *GenerationConfig) Validate() error {
	names := make([]any, 0, 3)
	for _, n := range llm.Names() {
		names = append(names, n)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.Required, validation.In(names...)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.MaxTokens, validation.Min(0)),
	)
}

// LLM returns the provider connection settings.
func (c *GenerationConfig) LLM() llm.Config {
	return llm.Config{Model: c.Model, APIKey: c.APIKey, BaseURL: c.BaseURL}
}

// WriterConfig tunes knowledge selection and the review loop.
type WriterConfig struct {
	Layout            string          `yaml:"layout"`
	MaxIterations     int             `yaml:"max_iterations"`
	RecentChapters    int             `yaml:"recent_chapters"`
	FallbackCast      int             `yaml:"fallback_cast"`
	ApprovalThreshold float64         `yaml:"approval_threshold"`
	Relevance         RelevanceConfig `yaml:"relevance"`
}

// RelevanceConfig holds the per-kind selection thresholds.
type RelevanceConfig struct {
	Character float64 `yaml:"character"`
	Setting   float64 `yaml:"setting"`
	Outline   float64 `yaml:"outline"`
}

// Validate validates the writer configuration.
func (c *WriterConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Layout, validation.In(writer.Chinese.Name, writer.English.Name)),
		validation.Field(&c.MaxIterations, validation.Required, validation.Min(1)),
		validation.Field(&c.RecentChapters, validation.Min(0)),
		validation.Field(&c.FallbackCast, validation.Min(0)),
		validation.Field(&c.ApprovalThreshold, validation.Min(0.0), validation.Max(1.0)),
	); err != nil {
		return err
	}
	return validation.ValidateStruct(&c.Relevance,
		validation.Field(&c.Relevance.Character, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.Relevance.Setting, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.Relevance.Outline, validation.Min(0.0), validation.Max(1.0)),
	)
}

// Selector returns the relevance selector described by the configuration.
func (c *WriterConfig) Selector() knowledge.Selector {
	return knowledge.Selector{
		Thresholds: knowledge.Thresholds{
			Character: c.Relevance.Character,
			Setting:   c.Relevance.Setting,
			Outline:   c.Relevance.Outline,
		},
		FallbackCast: c.FallbackCast,
	}
}

// VaultConfig points at an optional Markdown mirror of the catalog. An empty
// path disables the vault.
type VaultConfig struct {
	Path     string        `yaml:"path"`
	Watch    bool          `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce"`
}

// Enabled reports whether a vault is configured.
func (c *VaultConfig) Enabled() bool { return c.Path != "" }

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// TracingConfig controls OpenTelemetry span export.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ServiceName  string  `yaml:"service_name"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	Insecure     bool    `yaml:"insecure"`
	SampleRatio  float64 `yaml:"sample_ratio"`
}

// Validate validates the tracing configuration.
func (c *TracingConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SampleRatio, validation.Min(0.0), validation.Max(1.0)),
	)
}

func (c *TracingConfig) observability(version string) observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:      c.Enabled,
		ServiceName:  c.ServiceName,
		Version:      version,
		OTLPEndpoint: c.OTLPEndpoint,
		Insecure:     c.Insecure,
		SampleRatio:  c.SampleRatio,
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	th := knowledge.DefaultThresholds()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:            8080,
				ShutdownTimeout: 10 * time.Second,
			},
		},
		SQLite: SQLiteConfig{
			Path:   "./inkwell.db",
			Driver: store.DriverCGO,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Generation: GenerationConfig{
			Provider:  "none",
			Timeout:   writer.DefaultTimeout,
			MaxTokens: writer.DefaultMaxTokens,
		},
		Writer: WriterConfig{
			Layout:            writer.Chinese.Name,
			MaxIterations:     workshop.DefaultMaxIterations,
			RecentChapters:    knowledge.DefaultRecentChapters,
			FallbackCast:      knowledge.DefaultFallbackCast,
			ApprovalThreshold: review.DefaultApprovalThreshold,
			Relevance: RelevanceConfig{
				Character: th.Character,
				Setting:   th.Setting,
				Outline:   th.Outline,
			},
		},
		Vault: VaultConfig{
			Watch:    true,
			Debounce: vault.DefaultDebounce,
		},
		Tracing: TracingConfig{
			ServiceName: observability.DefaultServiceName,
			SampleRatio: 1,
		},
	}
}
