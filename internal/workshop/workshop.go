// Package workshop runs the generate, review and revise loop and exposes the
// assisted-writing operations.
package workshop

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/starford/inkwell/internal/models"
)

// DefaultMaxIterations bounds the number of drafts reviewed per run.
const DefaultMaxIterations = 3

const tracerName = "github.com/starford/inkwell/internal/workshop"

// Knowledge assembles story context.
type Knowledge interface {
	Aggregate(ctx context.Context, novelID int64, writingContext string) (*models.KnowledgeSnapshot, error)
	Summarize(ctx context.Context, novelID int64) (*models.KnowledgeSummary, error)
	Refresh(ctx context.Context, novelID int64) error
}

// Writer produces and revises drafts. Its methods never fail; they degrade
// to fallback content instead.
type Writer interface {
	Generate(ctx context.Context, snap *models.KnowledgeSnapshot, writingContext, requirements string) models.Draft
	Improve(ctx context.Context, draft models.Draft, feedback string, snap *models.KnowledgeSnapshot) models.Draft
	SuggestPlotOptions(ctx context.Context, snap *models.KnowledgeSnapshot, currentContext string) []string
}

// Reviewer scores drafts and whole novels.
type Reviewer interface {
	Review(d models.Draft, snap *models.KnowledgeSnapshot) models.ReviewResult
	AnalyzeConsistency(ctx context.Context, novelID int64) (*models.ConsistencyReport, error)
}

// State is a step of a generation run.
type State string

const (
	StateDrafting  State = "drafting"
	StateReviewing State = "reviewing"
	StateRevising  State = "revising"
	StateApproved  State = "approved"
	StateExhausted State = "exhausted"
)

// Terminal reports whether the run ends in s.
func (s State) Terminal() bool {
	return s == StateApproved || s == StateExhausted
}

// RunEvent reports a state transition of a generation run.
type RunEvent struct {
	RunID     string  `json:"run_id"`
	NovelID   int64   `json:"novel_id"`
	State     State   `json:"state"`
	Iteration int     `json:"iteration"`
	Score     float64 `json:"score,omitempty"`
}

// Observer receives run events. Implementations must not block.
type Observer interface {
	RunEvent(ev RunEvent)
}

// Result is the outcome of a generation run. It is returned whether or not
// the final draft was approved.
type Result struct {
	RunID      string                   `json:"run_id"`
	Draft      models.Draft             `json:"content"`
	Review     models.ReviewResult      `json:"review_result"`
	Iterations int                      `json:"iterations"`
	Knowledge  models.KnowledgeSnapshot `json:"knowledge_used"`
}

// Service wires the aggregator, writer and reviewer together.
type Service struct {
	knowledge     Knowledge
	writer        Writer
	reviewer      Reviewer
	maxIterations int
	observer      Observer
	tracer        trace.Tracer
	log           *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMaxIterations sets the iteration cap.
func WithMaxIterations(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxIterations = n
		}
	}
}

// WithObserver registers a run observer.
func WithObserver(o Observer) Option { return func(s *Service) { s.observer = o } }

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option { return func(s *Service) { s.log = log } }

// WithTracerProvider traces runs with tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) { s.tracer = tp.Tracer(tracerName) }
}

// New returns a Service.
func New(k Knowledge, w Writer, r Reviewer, opts ...Option) *Service {
	s := &Service{
		knowledge:     k,
		writer:        w,
		reviewer:      r,
		maxIterations: DefaultMaxIterations,
		tracer:        otel.Tracer(tracerName),
		log:           slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GenerateChapter drafts a chapter for novelID, reviewing and revising it
// until it is approved or the iteration cap is reached. Only an unknown
// novel (apperr.ErrNotFound) or a store failure is returned as an error.
func (s *Service) GenerateChapter(ctx context.Context, novelID int64, writingContext, requirements string) (*Result, error) {
	runID := uuid.NewString()
	ctx, span := s.tracer.Start(ctx, "workshop.GenerateChapter", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Int64("novel.id", novelID),
	))
	defer span.End()

	log := s.log.With(slog.String("run_id", runID), slog.Int64("novel_id", novelID))

	actx, aspan := s.tracer.Start(ctx, "knowledge.Aggregate")
	snap, err := s.knowledge.Aggregate(actx, novelID, writingContext)
	aspan.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "aggregate failed")
		return nil, fmt.Errorf("workshop: aggregate: %w", err)
	}

	s.emit(ctx, RunEvent{RunID: runID, NovelID: novelID, State: StateDrafting, Iteration: 1})
	gctx, gspan := s.tracer.Start(ctx, "writer.Generate")
	draft := s.writer.Generate(gctx, snap, writingContext, requirements)
	gspan.End()
	iterations := 1

	result := s.review(ctx, runID, novelID, iterations, draft, snap)
	for !result.Approved && iterations < s.maxIterations {
		s.emit(ctx, RunEvent{RunID: runID, NovelID: novelID, State: StateRevising, Iteration: iterations, Score: result.OverallScore})
		ictx, ispan := s.tracer.Start(ctx, "writer.Improve", trace.WithAttributes(attribute.Int("iteration", iterations+1)))
		draft = s.writer.Improve(ictx, draft, result.Feedback, snap)
		ispan.End()
		iterations++
		result = s.review(ctx, runID, novelID, iterations, draft, snap)
	}

	final := StateApproved
	if !result.Approved {
		final = StateExhausted
	}
	s.emit(ctx, RunEvent{RunID: runID, NovelID: novelID, State: final, Iteration: iterations, Score: result.OverallScore})
	span.SetAttributes(
		attribute.Int("run.iterations", iterations),
		attribute.Bool("run.approved", result.Approved),
		attribute.Float64("run.score", result.OverallScore),
	)
	log.Info("chapter generated",
		slog.String("state", string(final)),
		slog.Int("iterations", iterations),
		slog.Float64("score", result.OverallScore))

	return &Result{
		RunID:      runID,
		Draft:      draft,
		Review:     result,
		Iterations: iterations,
		Knowledge:  *snap,
	}, nil
}

func (s *Service) review(ctx context.Context, runID string, novelID int64, iteration int, d models.Draft, snap *models.KnowledgeSnapshot) models.ReviewResult {
	s.emit(ctx, RunEvent{RunID: runID, NovelID: novelID, State: StateReviewing, Iteration: iteration})
	_, span := s.tracer.Start(ctx, "review.Review", trace.WithAttributes(attribute.Int("iteration", iteration)))
	defer span.End()
	res := s.reviewer.Review(d, snap)
	span.SetAttributes(attribute.Bool("approved", res.Approved), attribute.Float64("score", res.OverallScore))
	return res
}

func (s *Service) emit(ctx context.Context, ev RunEvent) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent("run."+string(ev.State), trace.WithAttributes(attribute.Int("iteration", ev.Iteration)))
	if ev.State.Terminal() {
		span.SetAttributes(attribute.String("run.outcome", string(ev.State)))
	}
	if s.observer != nil {
		s.observer.RunEvent(ev)
	}
}

// AnalyzeConsistency reports whole-novel consistency.
func (s *Service) AnalyzeConsistency(ctx context.Context, novelID int64) (*models.ConsistencyReport, error) {
	ctx, span := s.tracer.Start(ctx, "workshop.AnalyzeConsistency", trace.WithAttributes(attribute.Int64("novel.id", novelID)))
	defer span.End()
	return s.reviewer.AnalyzeConsistency(ctx, novelID)
}

// RefreshKnowledge signals that a novel's knowledge changed.
func (s *Service) RefreshKnowledge(ctx context.Context, novelID int64) error {
	return s.knowledge.Refresh(ctx, novelID)
}

// KnowledgeSummary returns record counts and the latest chapter of a novel.
func (s *Service) KnowledgeSummary(ctx context.Context, novelID int64) (*models.KnowledgeSummary, error) {
	return s.knowledge.Summarize(ctx, novelID)
}

// SuggestNextPlot proposes up to three plot developments for novelID.
func (s *Service) SuggestNextPlot(ctx context.Context, novelID int64, currentContext string) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "workshop.SuggestNextPlot", trace.WithAttributes(attribute.Int64("novel.id", novelID)))
	defer span.End()
	snap, err := s.knowledge.Aggregate(ctx, novelID, currentContext)
	if err != nil {
		return nil, fmt.Errorf("workshop: aggregate: %w", err)
	}
	return s.writer.SuggestPlotOptions(ctx, snap, currentContext), nil
}
