package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
)

// Source is the read-only store view needed for whole-novel analysis.
type Source interface {
	GetNovel(ctx context.Context, id int64) (*models.Novel, error)
	ListChapters(ctx context.Context, novelID int64) ([]models.Chapter, error)
	ListCharacters(ctx context.Context, novelID int64) ([]models.Character, error)
	ListSettings(ctx context.Context, novelID int64) ([]models.Setting, error)
}

// Corpus is everything a consistency analyzer may inspect.
type Corpus struct {
	Chapters   []models.Chapter
	Characters []models.Character
	Settings   []models.Setting
}

// Analyzer checks one consistency aspect of a whole novel.
type Analyzer func(c Corpus) models.ConsistencyAnalysis

// Analyzers holds the three whole-novel checks.
type Analyzers struct {
	Character Analyzer
	Timeline  Analyzer
	Worldview Analyzer
}

// DefaultAnalyzers returns constant analyzers that report no issues. They
// are the hook for real checks.
func DefaultAnalyzers(m Messages) Analyzers {
	stub := func(details string) Analyzer {
		return func(Corpus) models.ConsistencyAnalysis {
			return models.ConsistencyAnalysis{Issues: []string{}, Score: baseScore, Details: details}
		}
	}
	return Analyzers{
		Character: stub(m.CharacterDetails),
		Timeline:  stub(m.TimelineDetails),
		Worldview: stub(m.WorldviewDetails),
	}
}

// FallbackConsistencyReport is returned when analysis fails.
func (r *Reviewer) FallbackConsistencyReport() models.ConsistencyReport {
	a := DefaultAnalyzers(r.msgs)
	return models.ConsistencyReport{
		Character:     a.Character(Corpus{}),
		Timeline:      a.Timeline(Corpus{}),
		Worldview:     a.Worldview(Corpus{}),
		OverallRating: r.msgs.Good,
	}
}

// AnalyzeConsistency runs the character, timeline and worldview checks over
// a whole novel. An unknown novel returns apperr.ErrNotFound; any other
// failure yields FallbackConsistencyReport.
func (r *Reviewer) AnalyzeConsistency(ctx context.Context, novelID int64) (*models.ConsistencyReport, error) {
	rep, err := r.analyze(ctx, novelID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		r.log.Warn("consistency analysis failed", slog.Int64("novel_id", novelID), slog.String("error", err.Error()))
		fb := r.FallbackConsistencyReport()
		return &fb, nil
	}
	return rep, nil
}

func (r *Reviewer) analyze(ctx context.Context, novelID int64) (rep *models.ConsistencyReport, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("review: analyzer panic: %v: %w", p, apperr.ErrReview)
		}
	}()
	if r.src == nil {
		return nil, fmt.Errorf("review: no source configured: %w", apperr.ErrReview)
	}
	if _, err := r.src.GetNovel(ctx, novelID); err != nil {
		return nil, err
	}
	var c Corpus
	if c.Chapters, err = r.src.ListChapters(ctx, novelID); err != nil {
		return nil, fmt.Errorf("review: list chapters: %w", err)
	}
	if c.Characters, err = r.src.ListCharacters(ctx, novelID); err != nil {
		return nil, fmt.Errorf("review: list characters: %w", err)
	}
	if c.Settings, err = r.src.ListSettings(ctx, novelID); err != nil {
		return nil, fmt.Errorf("review: list settings: %w", err)
	}

	out := &models.ConsistencyReport{
		Character: normalize(r.analyzers.Character(c)),
		Timeline:  normalize(r.analyzers.Timeline(c)),
		Worldview: normalize(r.analyzers.Worldview(c)),
	}
	mean := (out.Character.Score + out.Timeline.Score + out.Worldview.Score) / 3
	out.OverallRating = r.rating(mean)
	return out, nil
}

func normalize(a models.ConsistencyAnalysis) models.ConsistencyAnalysis {
	if math.IsNaN(a.Score) {
		a.Score = 0
	}
	a.Score = clamp(a.Score)
	if a.Issues == nil {
		a.Issues = []string{}
	}
	return a
}

// rating buckets a mean score rounded to two decimals. Excellent requires
// strictly more than 0.8.
func (r *Reviewer) rating(mean float64) string {
	mean = math.Round(mean*100) / 100
	switch {
	case mean > 0.8:
		return r.msgs.Excellent
	case mean >= 0.6:
		return r.msgs.Good
	case mean >= 0.4:
		return r.msgs.Fair
	default:
		return r.msgs.NeedsImprovement
	}
}
