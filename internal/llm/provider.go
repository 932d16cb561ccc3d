// Package llm adapts text-generation services to a single completion call.
package llm

import (
	"context"
	"fmt"
	"sort"

	"github.com/starford/inkwell/internal/apperr"
)

// Request is one completion call.
type Request struct {
	SystemPrompt string
	Prompt       string
	MaxTokens    int
	Temperature  float32
}

// Provider generates text. Implementations wrap every failure in
// apperr.ErrGeneration.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// Config carries the provider-specific connection settings.
type Config struct {
	Model   string
	APIKey  string
	BaseURL string
}

// Factory builds a Provider from its configuration.
type Factory func(ctx context.Context, cfg Config) (Provider, error)

var factories = map[string]Factory{
	"openai": func(_ context.Context, cfg Config) (Provider, error) { return NewOpenAI(cfg) },
	"gemini": func(ctx context.Context, cfg Config) (Provider, error) { return NewGemini(ctx, cfg) },
	"none":   func(context.Context, Config) (Provider, error) { return Disabled{}, nil },
}

// New returns the provider registered under name.
func New(ctx context.Context, name string, cfg Config) (Provider, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("llm: unknown provider %q: %w", name, apperr.ErrInvalid)
	}
	return f(ctx, cfg)
}

// Names returns the registered provider names in sorted order.
func Names() []string {
	out := make([]string, 0, len(factories))
	for name := range factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Disabled is the provider used when generation is turned off. Every call
// fails, so callers always take their fallback path.
type Disabled struct{}

func (Disabled) Name() string { return "none" }

func (Disabled) Complete(context.Context, Request) (string, error) {
	return "", fmt.Errorf("llm: provider disabled: %w", apperr.ErrGeneration)
}
