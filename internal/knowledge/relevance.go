// Package knowledge selects the story records relevant to a writing context
// and assembles them into snapshots for the generation loop.
package knowledge

import (
	"regexp"
	"strings"

	"github.com/starford/inkwell/internal/models"
)

var tokenRe = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)

// Thresholds are the relevance scores a record must exceed to be selected.
type Thresholds struct {
	Character float64
	Setting   float64
	Outline   float64
}

// DefaultThresholds returns the stock selection thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Character: 0.3, Setting: 0.3, Outline: 0.2}
}

// DefaultFallbackCast is how many characters are kept when none match.
const DefaultFallbackCast = 3

// Relevance returns the Jaccard similarity of the lowercase token sets of a
// and b, or 0 when either side has no tokens.
func Relevance(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inter := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	if s == "" {
		return nil
	}
	toks := tokenRe.FindAllString(strings.ToLower(s), -1)
	set := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		set[t] = struct{}{}
	}
	return set
}

// Selector filters knowledge records against a writing context.
type Selector struct {
	Thresholds   Thresholds
	FallbackCast int
}

// NewSelector returns a Selector with the default thresholds and fallback.
func NewSelector() Selector {
	return Selector{Thresholds: DefaultThresholds(), FallbackCast: DefaultFallbackCast}
}

func nameIn(name, lowerContext string) bool {
	return name != "" && strings.Contains(lowerContext, strings.ToLower(name))
}

// Characters returns the characters named in the context or whose
// description is relevant to it. When nothing matches, the first
// FallbackCast characters are returned in input order.
func (s Selector) Characters(chars []models.Character, context string) []models.Character {
	lower := strings.ToLower(context)
	out := make([]models.Character, 0, len(chars))
	for _, c := range chars {
		if nameIn(c.Name, lower) || Relevance(c.Description, context) > s.Thresholds.Character {
			out = append(out, c)
		}
	}
	if len(out) == 0 && len(chars) > 0 {
		n := min(s.FallbackCast, len(chars))
		out = append(out, chars[:n]...)
	}
	return out
}

// Settings returns the settings named in the context or whose description
// is relevant to it. An empty result is valid.
func (s Selector) Settings(settings []models.Setting, context string) []models.Setting {
	lower := strings.ToLower(context)
	out := make([]models.Setting, 0, len(settings))
	for _, st := range settings {
		if nameIn(st.Name, lower) || Relevance(st.Description, context) > s.Thresholds.Setting {
			out = append(out, st)
		}
	}
	return out
}

// Outlines returns the outline sections whose content is relevant to the context.
func (s Selector) Outlines(outlines []models.Outline, context string) []models.Outline {
	out := make([]models.Outline, 0, len(outlines))
	for _, o := range outlines {
		if Relevance(o.Content, context) > s.Thresholds.Outline {
			out = append(out, o)
		}
	}
	return out
}
