// Package review scores chapter drafts and whole-novel consistency.
package review

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
)

// DefaultApprovalThreshold is the minimum overall score for approval.
const DefaultApprovalThreshold = 0.7

// feedbackCutoff is the axis score below which an advisory is emitted.
const feedbackCutoff = 0.7

// Reviewer scores drafts and analyzes novels.
type Reviewer struct {
	scorers   Scorers
	analyzers Analyzers
	threshold float64
	msgs      Messages
	src       Source
	log       *slog.Logger
}

// Option configures a Reviewer.
type Option func(*Reviewer)

// WithScorers replaces the per-axis scorers.
func WithScorers(s Scorers) Option { return func(r *Reviewer) { r.scorers = s } }

// WithAnalyzers replaces the whole-novel consistency analyzers.
func WithAnalyzers(a Analyzers) Option { return func(r *Reviewer) { r.analyzers = a } }

// WithThreshold sets the approval threshold.
func WithThreshold(t float64) Option { return func(r *Reviewer) { r.threshold = t } }

// WithMessages sets the feedback language.
func WithMessages(m Messages) Option { return func(r *Reviewer) { r.msgs = m } }

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option { return func(r *Reviewer) { r.log = log } }

// New returns a Reviewer. src is only needed by AnalyzeConsistency and may
// be nil for draft review alone.
func New(src Source, opts ...Option) *Reviewer {
	r := &Reviewer{
		scorers:   DefaultScorers(),
		threshold: DefaultApprovalThreshold,
		msgs:      ChineseMessages,
		src:       src,
		log:       slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	if r.analyzers.Character == nil || r.analyzers.Timeline == nil || r.analyzers.Worldview == nil {
		r.analyzers = DefaultAnalyzers(r.msgs)
	}
	return r
}

// Threshold returns the approval threshold.
func (r *Reviewer) Threshold() float64 { return r.threshold }

// PermissiveResult is returned when a draft cannot be scored.
func (r *Reviewer) PermissiveResult() models.ReviewResult {
	s := models.Scores{Consistency: baseScore, Logic: baseScore, Character: baseScore, Plot: baseScore, Quality: baseScore}
	return models.ReviewResult{
		Approved:     true,
		OverallScore: baseScore,
		Scores:       s,
		Feedback:     r.msgs.Approved,
		Issues:       []string{},
	}
}

// Review scores d against snap. Scoring failures never surface: they are
// logged and replaced by PermissiveResult.
func (r *Reviewer) Review(d models.Draft, snap *models.KnowledgeSnapshot) models.ReviewResult {
	scores, err := r.score(d, snap)
	if err != nil {
		r.log.Warn("review failed, approving permissively", slog.String("error", err.Error()))
		return r.PermissiveResult()
	}
	overall := scores.Mean()
	return models.ReviewResult{
		Approved:     overall >= r.threshold,
		OverallScore: overall,
		Scores:       scores,
		Feedback:     r.feedback(scores),
		Issues:       r.issues(d),
	}
}

func (r *Reviewer) score(d models.Draft, snap *models.KnowledgeSnapshot) (s models.Scores, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("review: scorer panic: %v: %w", p, apperr.ErrReview)
		}
	}()
	for _, axis := range []struct {
		name   string
		scorer Scorer
		dst    *float64
	}{
		{"consistency", r.scorers.Consistency, &s.Consistency},
		{"logic", r.scorers.Logic, &s.Logic},
		{"character", r.scorers.Character, &s.Character},
		{"plot", r.scorers.Plot, &s.Plot},
		{"quality", r.scorers.Quality, &s.Quality},
	} {
		if axis.scorer == nil {
			return s, fmt.Errorf("review: %s scorer missing: %w", axis.name, apperr.ErrReview)
		}
		v, err := axis.scorer(d, snap)
		if err != nil {
			return s, fmt.Errorf("review: %s: %w: %w", axis.name, apperr.ErrReview, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return s, fmt.Errorf("review: %s: non-finite score: %w", axis.name, apperr.ErrReview)
		}
		*axis.dst = clamp(v)
	}
	return s, nil
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func (r *Reviewer) feedback(s models.Scores) string {
	var parts []string
	for _, axis := range []struct {
		score float64
		msg   string
	}{
		{s.Consistency, r.msgs.Consistency},
		{s.Logic, r.msgs.Logic},
		{s.Character, r.msgs.Character},
		{s.Plot, r.msgs.Plot},
		{s.Quality, r.msgs.Quality},
	} {
		if axis.score < feedbackCutoff {
			parts = append(parts, axis.msg)
		}
	}
	if len(parts) == 0 {
		return r.msgs.Approved
	}
	return strings.Join(parts, " ")
}

func (r *Reviewer) issues(d models.Draft) []string {
	out := []string{}
	if utf8.RuneCountInString(d.Content) < shortContentRune {
		out = append(out, r.msgs.ContentTooShort)
	}
	if utf8.RuneCountInString(d.Title) < 2 {
		out = append(out, r.msgs.TitleTooShort)
	}
	return out
}
