package review

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/starford/inkwell/internal/models"
)

// Scorer rates one aspect of a draft in [0,1].
type Scorer func(d models.Draft, snap *models.KnowledgeSnapshot) (float64, error)

// Scorers holds one scoring strategy per review axis. Any of them can be
// replaced without touching the review loop.
type Scorers struct {
	Consistency Scorer
	Logic       Scorer
	Character   Scorer
	Plot        Scorer
	Quality     Scorer
}

// DefaultScorers returns the heuristic scorers.
func DefaultScorers() Scorers {
	return Scorers{
		Consistency: ScoreConsistency,
		Logic:       ScoreLogic,
		Character:   ScoreCharacter,
		Plot:        ScorePlot,
		Quality:     ScoreQuality,
	}
}

const (
	baseScore        = 0.8
	shortContentRune = 500
	longContentRune  = 5000
)

// ScoreConsistency starts at 0.8 and adds 0.05 for every known character
// named in the body, capped at 1.
func ScoreConsistency(d models.Draft, snap *models.KnowledgeSnapshot) (float64, error) {
	score := baseScore
	if snap == nil {
		return score, nil
	}
	body := strings.ToLower(d.Content)
	for _, c := range snap.Characters {
		if c.Name != "" && strings.Contains(body, strings.ToLower(c.Name)) {
			score += 0.05
		}
	}
	return min(score, 1.0), nil
}

// ScoreLogic rates body length: under 500 runes 0.5, over 5000 runes 0.7,
// otherwise 0.8.
func ScoreLogic(d models.Draft, _ *models.KnowledgeSnapshot) (float64, error) {
	switch n := utf8.RuneCountInString(d.Content); {
	case n < shortContentRune:
		return 0.5, nil
	case n > longContentRune:
		return 0.7, nil
	default:
		return baseScore, nil
	}
}

// ScoreCharacter is a constant placeholder for a character-behavior check.
func ScoreCharacter(models.Draft, *models.KnowledgeSnapshot) (float64, error) {
	return baseScore, nil
}

// ScorePlot is a constant placeholder for a plot-coherence check.
func ScorePlot(models.Draft, *models.KnowledgeSnapshot) (float64, error) {
	return baseScore, nil
}

var sentenceEnd = regexp.MustCompile(`[。！？.!?]`)

// ScoreQuality is 0 for an empty body, 0.6 for a body with fewer than two
// paragraphs or five sentence pieces, and 0.8 otherwise.
func ScoreQuality(d models.Draft, _ *models.KnowledgeSnapshot) (float64, error) {
	if d.Content == "" {
		return 0, nil
	}
	if len(strings.Split(d.Content, "\n\n")) < 2 {
		return 0.6, nil
	}
	if len(sentenceEnd.Split(d.Content, -1)) < 5 {
		return 0.6, nil
	}
	return baseScore, nil
}
