package writer

import (
	"strings"

	"github.com/starford/inkwell/internal/models"
)

type section int

const (
	sectionNone section = iota
	sectionTitle
	sectionBody
	sectionSummary
)

// ParseDraft reads a model answer laid out with the layout's markers.
// Lines after the body or summary marker are appended to that field; lines
// before any marker or after the title marker are dropped. When no body is
// found in non-empty text, the whole text becomes the body under placeholder
// title and summary.
func (l Layout) ParseDraft(raw string) models.Draft {
	var (
		d      models.Draft
		active = sectionNone
	)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, l.TitleMarker):
			d.Title = strings.TrimSpace(strings.TrimPrefix(line, l.TitleMarker))
			active = sectionTitle
		case strings.HasPrefix(line, l.BodyMarker):
			d.Content = strings.TrimSpace(strings.TrimPrefix(line, l.BodyMarker))
			active = sectionBody
		case strings.HasPrefix(line, l.SummaryMarker):
			d.Summary = strings.TrimSpace(strings.TrimPrefix(line, l.SummaryMarker))
			active = sectionSummary
		case line == "":
		case active == sectionBody:
			d.Content += "\n" + line
		case active == sectionSummary:
			d.Summary += "\n" + line
		}
	}

	if d.Content == "" && raw != "" {
		return models.Draft{
			Title:   l.PlaceholderTitle,
			Content: raw,
			Summary: l.PlaceholderSummary,
		}
	}
	return d
}

// ParseSuggestions extracts the text of every "<prefix>N<colon>text" line.
// It returns at most three suggestions, or nil if none were found.
func (l Layout) ParseSuggestions(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, l.SuggestionPrefix) {
			continue
		}
		_, text, ok := strings.Cut(line, l.SuggestionColon)
		if !ok {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			out = append(out, text)
		}
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
