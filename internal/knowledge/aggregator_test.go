package knowledge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
)

type memSource struct {
	novels     map[int64]models.Novel
	chapters   []models.Chapter
	characters []models.Character
	settings   []models.Setting
	outlines   []models.Outline
}

func (m *memSource) GetNovel(_ context.Context, id int64) (*models.Novel, error) {
	n, ok := m.novels[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &n, nil
}

func (m *memSource) ListChapters(context.Context, int64) ([]models.Chapter, error) {
	return m.chapters, nil
}

func (m *memSource) ListCharacters(context.Context, int64) ([]models.Character, error) {
	return m.characters, nil
}

func (m *memSource) ListSettings(context.Context, int64) ([]models.Setting, error) {
	return m.settings, nil
}

func (m *memSource) ListOutlines(context.Context, int64) ([]models.Outline, error) {
	return m.outlines, nil
}

type refreshRecorder struct{ ids []int64 }

func (r *refreshRecorder) KnowledgeRefreshed(id int64) { r.ids = append(r.ids, id) }

func TestAggregateUnknownNovel(t *testing.T) {
	a := NewAggregator(&memSource{novels: map[int64]models.Novel{}})
	if _, err := a.Aggregate(context.Background(), 7, "x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := a.Summarize(context.Background(), 7); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAggregateEmptyNovel(t *testing.T) {
	src := &memSource{novels: map[int64]models.Novel{1: {ID: 1, Title: "Empty"}}}
	snap, err := NewAggregator(src).Aggregate(context.Background(), 1, "anything at all")
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(snap.Characters)+len(snap.Settings)+len(snap.Outlines)+len(snap.RecentChapters) != 0 {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
	if snap.Novel.Title != "Empty" {
		t.Errorf("novel = %+v", snap.Novel)
	}
}

func TestAggregateRecentChapters(t *testing.T) {
	src := &memSource{novels: map[int64]models.Novel{1: {ID: 1}}}
	for _, n := range []int{1, 2, 3, 4, 5} {
		src.chapters = append(src.chapters, models.Chapter{Number: n, Content: "unrelated"})
	}
	snap, err := NewAggregator(src).Aggregate(context.Background(), 1, "zzz")
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(snap.RecentChapters) != 3 {
		t.Fatalf("expected 3 recent chapters, got %d", len(snap.RecentChapters))
	}
	for i, want := range []int{5, 4, 3} {
		if snap.RecentChapters[i].Number != want {
			t.Errorf("RecentChapters[%d].Number = %d, want %d", i, snap.RecentChapters[i].Number, want)
		}
	}
}

func TestSummarize(t *testing.T) {
	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	src := &memSource{
		novels: map[int64]models.Novel{1: {ID: 1, Title: "Tides", Description: "sea saga", UpdatedAt: updated}},
		chapters: []models.Chapter{
			{Number: 2, Title: "Two", Content: "潮水"},
			{Number: 1, Title: "One", Content: "abc"},
		},
		characters: []models.Character{{Name: "Mira"}},
		outlines:   []models.Outline{{Section: 1}, {Section: 2}},
	}
	sum, err := NewAggregator(src).Summarize(context.Background(), 1)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	want := models.KnowledgeStatistics{Chapters: 2, Characters: 1, Settings: 0, Outlines: 2, TotalCharacters: 5}
	if sum.Statistics != want {
		t.Errorf("statistics = %+v, want %+v", sum.Statistics, want)
	}
	if sum.LatestChapter == nil || sum.LatestChapter.Title != "Two" {
		t.Errorf("latest chapter = %+v", sum.LatestChapter)
	}
	if !sum.LastUpdated.Equal(updated) {
		t.Errorf("last updated = %v", sum.LastUpdated)
	}
}

func TestSummarizeNoChapters(t *testing.T) {
	src := &memSource{novels: map[int64]models.Novel{1: {ID: 1}}}
	sum, err := NewAggregator(src).Summarize(context.Background(), 1)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.LatestChapter != nil {
		t.Errorf("expected nil latest chapter, got %+v", sum.LatestChapter)
	}
}

func TestRefreshNotifiesListener(t *testing.T) {
	rec := &refreshRecorder{}
	src := &memSource{novels: map[int64]models.Novel{3: {ID: 3}}}
	a := NewAggregator(src, WithRefreshListener(rec))
	if err := a.Refresh(context.Background(), 3); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if err := a.Refresh(context.Background(), 4); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(rec.ids) != 1 || rec.ids[0] != 3 {
		t.Errorf("listener calls = %v", rec.ids)
	}
}
