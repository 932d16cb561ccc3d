package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"unicode/utf8"

	"github.com/starford/inkwell/internal/models"
)

// Source is the read-only view of the record store the aggregator needs.
type Source interface {
	GetNovel(ctx context.Context, id int64) (*models.Novel, error)
	ListChapters(ctx context.Context, novelID int64) ([]models.Chapter, error)
	ListCharacters(ctx context.Context, novelID int64) ([]models.Character, error)
	ListSettings(ctx context.Context, novelID int64) ([]models.Setting, error)
	ListOutlines(ctx context.Context, novelID int64) ([]models.Outline, error)
}

// RefreshListener is notified when a novel's knowledge is refreshed.
type RefreshListener interface {
	KnowledgeRefreshed(novelID int64)
}

// DefaultRecentChapters is how many of the latest chapters a snapshot carries.
const DefaultRecentChapters = 3

// Aggregator assembles knowledge snapshots and summaries for a novel.
type Aggregator struct {
	src            Source
	selector       Selector
	recentChapters int
	listener       RefreshListener
	log            *slog.Logger
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithSelector overrides the relevance selector.
func WithSelector(s Selector) AggregatorOption {
	return func(a *Aggregator) { a.selector = s }
}

// WithRecentChapters sets how many recent chapters a snapshot includes.
func WithRecentChapters(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.recentChapters = n
		}
	}
}

// WithRefreshListener registers a listener for Refresh calls.
func WithRefreshListener(l RefreshListener) AggregatorOption {
	return func(a *Aggregator) { a.listener = l }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) AggregatorOption {
	return func(a *Aggregator) { a.log = log }
}

// NewAggregator returns an Aggregator reading from src.
func NewAggregator(src Source, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		src:            src,
		selector:       NewSelector(),
		recentChapters: DefaultRecentChapters,
		log:            slog.Default(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Aggregate returns the knowledge relevant to writing the next chapter of
// novelID given the context text. Recent chapters are included unfiltered.
// Returns apperr.ErrNotFound if the novel does not exist.
func (a *Aggregator) Aggregate(ctx context.Context, novelID int64, writingContext string) (*models.KnowledgeSnapshot, error) {
	novel, err := a.src.GetNovel(ctx, novelID)
	if err != nil {
		return nil, err
	}
	chars, err := a.src.ListCharacters(ctx, novelID)
	if err != nil {
		return nil, fmt.Errorf("knowledge: list characters: %w", err)
	}
	settings, err := a.src.ListSettings(ctx, novelID)
	if err != nil {
		return nil, fmt.Errorf("knowledge: list settings: %w", err)
	}
	outlines, err := a.src.ListOutlines(ctx, novelID)
	if err != nil {
		return nil, fmt.Errorf("knowledge: list outlines: %w", err)
	}
	chapters, err := a.src.ListChapters(ctx, novelID)
	if err != nil {
		return nil, fmt.Errorf("knowledge: list chapters: %w", err)
	}

	return &models.KnowledgeSnapshot{
		Novel:          *novel,
		Characters:     a.selector.Characters(chars, writingContext),
		Settings:       a.selector.Settings(settings, writingContext),
		Outlines:       a.selector.Outlines(outlines, writingContext),
		RecentChapters: latestChapters(chapters, a.recentChapters),
	}, nil
}

// latestChapters returns up to n chapters ordered by descending number.
func latestChapters(chapters []models.Chapter, n int) []models.Chapter {
	sorted := make([]models.Chapter, len(chapters))
	copy(sorted, chapters)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Number > sorted[j].Number })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Summarize returns record counts and the latest chapter for novelID.
func (a *Aggregator) Summarize(ctx context.Context, novelID int64) (*models.KnowledgeSummary, error) {
	novel, err := a.src.GetNovel(ctx, novelID)
	if err != nil {
		return nil, err
	}
	chapters, err := a.src.ListChapters(ctx, novelID)
	if err != nil {
		return nil, fmt.Errorf("knowledge: list chapters: %w", err)
	}
	chars, err := a.src.ListCharacters(ctx, novelID)
	if err != nil {
		return nil, fmt.Errorf("knowledge: list characters: %w", err)
	}
	settings, err := a.src.ListSettings(ctx, novelID)
	if err != nil {
		return nil, fmt.Errorf("knowledge: list settings: %w", err)
	}
	outlines, err := a.src.ListOutlines(ctx, novelID)
	if err != nil {
		return nil, fmt.Errorf("knowledge: list outlines: %w", err)
	}

	total := 0
	for _, c := range chapters {
		total += utf8.RuneCountInString(c.Content)
	}
	sum := &models.KnowledgeSummary{
		NovelTitle:       novel.Title,
		NovelDescription: novel.Description,
		Statistics: models.KnowledgeStatistics{
			Chapters:        len(chapters),
			Characters:      len(chars),
			Settings:        len(settings),
			Outlines:        len(outlines),
			TotalCharacters: total,
		},
		LastUpdated: novel.UpdatedAt,
	}
	if latest := latestChapters(chapters, 1); len(latest) == 1 {
		sum.LatestChapter = &latest[0]
	}
	return sum, nil
}

// Refresh signals that a novel's knowledge changed. Nothing is cached, so
// the only effects are the log line and the listener notification.
func (a *Aggregator) Refresh(ctx context.Context, novelID int64) error {
	if _, err := a.src.GetNovel(ctx, novelID); err != nil {
		return err
	}
	a.log.Info("knowledge refreshed", slog.Int64("novel_id", novelID))
	if a.listener != nil {
		a.listener.KnowledgeRefreshed(novelID)
	}
	return nil
}
