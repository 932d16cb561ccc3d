// Package writer drafts, revises and brainstorms chapters through a text
// generation provider.
package writer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/inkwell/internal/llm"
	"github.com/starford/inkwell/internal/models"
)

const (
	DefaultMaxTokens     = 2000
	DefaultSuggestTokens = 1500
	DefaultTimeout       = 60 * time.Second

	generateTemperature = 0.7
	improveTemperature  = 0.6
	suggestTemperature  = 0.8

	maxSuggestions = 3
)

// Generator turns knowledge snapshots into chapter drafts.
type Generator struct {
	provider      llm.Provider
	layout        Layout
	maxTokens     int
	suggestTokens int
	timeout       time.Duration
	log           *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLayout sets the prompt language and field markers.
func WithLayout(l Layout) Option { return func(g *Generator) { g.layout = l } }

// WithMaxTokens caps the output of draft and revision calls.
func WithMaxTokens(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxTokens = n
		}
	}
}

// WithTimeout bounds each provider call. Zero disables the bound.
func WithTimeout(d time.Duration) Option { return func(g *Generator) { g.timeout = d } }

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option { return func(g *Generator) { g.log = log } }

// New returns a Generator backed by provider.
func New(provider llm.Provider, opts ...Option) *Generator {
	g := &Generator{
		provider:      provider,
		layout:        Chinese,
		maxTokens:     DefaultMaxTokens,
		suggestTokens: DefaultSuggestTokens,
		timeout:       DefaultTimeout,
		log:           slog.Default(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// PlaceholderDraft is the draft returned when generation fails.
func (g *Generator) PlaceholderDraft() models.Draft { return g.layout.Unavailable }

// FallbackSuggestions is the suggestion list returned when brainstorming fails.
func (g *Generator) FallbackSuggestions() []string {
	out := make([]string, len(g.layout.Fallback))
	copy(out, g.layout.Fallback)
	return out
}

func (g *Generator) complete(ctx context.Context, req llm.Request) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return g.provider.Complete(ctx, req)
}

// Generate drafts a chapter. It never fails: provider errors yield
// PlaceholderDraft.
func (g *Generator) Generate(ctx context.Context, snap *models.KnowledgeSnapshot, writingContext, requirements string) models.Draft {
	text, err := g.complete(ctx, llm.Request{
		SystemPrompt: g.layout.prompts.generateSystem,
		Prompt:       g.layout.generatePrompt(snap, writingContext, requirements),
		MaxTokens:    g.maxTokens,
		Temperature:  generateTemperature,
	})
	if err != nil {
		g.log.Warn("generate draft failed", slog.String("provider", g.provider.Name()), slog.String("error", err.Error()))
		return g.PlaceholderDraft()
	}
	return g.layout.ParseDraft(text)
}

// Improve revises draft according to feedback. Provider errors return the
// input draft unchanged.
func (g *Generator) Improve(ctx context.Context, draft models.Draft, feedback string, snap *models.KnowledgeSnapshot) models.Draft {
	text, err := g.complete(ctx, llm.Request{
		SystemPrompt: g.layout.prompts.improveSystem,
		Prompt:       fmt.Sprintf(g.layout.prompts.improve, draft.Title, draft.Content, feedback, renderJSON(snap)),
		MaxTokens:    g.maxTokens,
		Temperature:  improveTemperature,
	})
	if err != nil {
		g.log.Warn("improve draft failed", slog.String("provider", g.provider.Name()), slog.String("error", err.Error()))
		return draft
	}
	return g.layout.ParseDraft(text)
}

// SuggestPlotOptions proposes up to three plot developments. Provider or
// parse failures yield FallbackSuggestions.
func (g *Generator) SuggestPlotOptions(ctx context.Context, snap *models.KnowledgeSnapshot, currentContext string) []string {
	text, err := g.complete(ctx, llm.Request{
		SystemPrompt: g.layout.prompts.suggestSystem,
		Prompt:       fmt.Sprintf(g.layout.prompts.suggest, renderJSON(snap), currentContext),
		MaxTokens:    g.suggestTokens,
		Temperature:  suggestTemperature,
	})
	if err != nil {
		g.log.Warn("suggest plot failed", slog.String("provider", g.provider.Name()), slog.String("error", err.Error()))
		return g.FallbackSuggestions()
	}
	out := g.layout.ParseSuggestions(text)
	if len(out) == 0 {
		g.log.Warn("suggest plot: no suggestions in response")
		return g.FallbackSuggestions()
	}
	return out
}

func (l Layout) generatePrompt(snap *models.KnowledgeSnapshot, writingContext, requirements string) string {
	if snap == nil {
		snap = &models.KnowledgeSnapshot{}
	}
	p := l.prompts
	var b strings.Builder
	b.WriteString("\n")
	for _, part := range []struct {
		heading string
		body    string
	}{
		{p.novel, renderJSON(snap.Novel)},
		{p.characters, renderJSON(nonNil(snap.Characters))},
		{p.settings, renderJSON(nonNil(snap.Settings))},
		{p.outlines, renderJSON(nonNil(snap.Outlines))},
		{p.recent, renderJSON(nonNil(snap.RecentChapters))},
		{p.context, writingContext},
		{p.requirements, requirements},
	} {
		b.WriteString(part.heading)
		b.WriteString("\n")
		b.WriteString(part.body)
		b.WriteString("\n\n")
	}
	b.WriteString(p.generateTail)
	return b.String()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// renderJSON pretty-prints v without escaping non-ASCII or HTML characters.
func renderJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "{}"
	}
	return strings.TrimRight(buf.String(), "\n")
}
