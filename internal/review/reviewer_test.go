package review

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
)

func draftOfLength(n int) models.Draft {
	return models.Draft{Title: "Title", Content: strings.Repeat("字", n)}
}

func TestScoreLogicByLength(t *testing.T) {
	for _, tc := range []struct {
		n    int
		want float64
	}{
		{100, 0.5},
		{499, 0.5},
		{500, 0.8},
		{2000, 0.8},
		{5000, 0.8},
		{5001, 0.7},
		{6000, 0.7},
	} {
		got, err := ScoreLogic(draftOfLength(tc.n), nil)
		if err != nil || got != tc.want {
			t.Errorf("ScoreLogic(len=%d) = %v, %v; want %v", tc.n, got, err, tc.want)
		}
	}
}

func TestScoreConsistencyCapped(t *testing.T) {
	snap := &models.KnowledgeSnapshot{}
	for _, name := range []string{"Ada", "Bo", "Cy", "Di", "Ed", "Fa"} {
		snap.Characters = append(snap.Characters, models.Character{Name: name})
	}
	snap.Characters = append(snap.Characters, models.Character{Name: ""})

	got, _ := ScoreConsistency(models.Draft{Content: "ada and bo"}, snap)
	if math.Abs(got-0.9) > 1e-9 {
		t.Errorf("two names: got %v, want 0.9", got)
	}
	got, _ = ScoreConsistency(models.Draft{Content: "ada bo cy di ed fa"}, snap)
	if got != 1.0 {
		t.Errorf("six names: got %v, want 1.0", got)
	}
}

func TestScoreQuality(t *testing.T) {
	for name, tc := range map[string]struct {
		content string
		want    float64
	}{
		"empty":         {"", 0},
		"one paragraph": {"一。二。三。四。五。", 0.6},
		"few sentences": {"一。\n\n二。", 0.6},
		"well formed":   {"一。二。\n\n三！四？五。六.", 0.8},
		"english prose": {"One. Two!\n\nThree? Four. Five.", 0.8},
	} {
		got, _ := ScoreQuality(models.Draft{Content: tc.content}, nil)
		if got != tc.want {
			t.Errorf("%s: got %v, want %v", name, got, tc.want)
		}
	}
}

func TestReviewScoresBounded(t *testing.T) {
	r := New(nil)
	snap := &models.KnowledgeSnapshot{Characters: []models.Character{{Name: "x"}}}
	for _, d := range []models.Draft{
		{},
		draftOfLength(10),
		draftOfLength(3000),
		draftOfLength(9000),
		{Title: "T", Content: strings.Repeat("x. ", 400) + "\n\n" + strings.Repeat("x! ", 400)},
	} {
		res := r.Review(d, snap)
		for _, v := range []float64{res.OverallScore, res.Scores.Consistency, res.Scores.Logic, res.Scores.Character, res.Scores.Plot, res.Scores.Quality} {
			if v < 0 || v > 1 {
				t.Fatalf("score out of bounds: %+v", res)
			}
		}
	}
}

func TestReviewClampsCustomScorer(t *testing.T) {
	s := DefaultScorers()
	s.Plot = func(models.Draft, *models.KnowledgeSnapshot) (float64, error) { return 7, nil }
	res := New(nil, WithScorers(s)).Review(draftOfLength(10), nil)
	if res.Scores.Plot != 1 {
		t.Errorf("plot = %v, want clamped 1", res.Scores.Plot)
	}
}

func constScorers(v float64) Scorers {
	c := func(models.Draft, *models.KnowledgeSnapshot) (float64, error) { return v, nil }
	return Scorers{Consistency: c, Logic: c, Character: c, Plot: c, Quality: c}
}

func TestApprovalThresholdInclusive(t *testing.T) {
	at := New(nil, WithScorers(constScorers(0.75)), WithThreshold(0.75)).Review(draftOfLength(600), nil)
	if !at.Approved {
		t.Errorf("score equal to threshold should approve: %+v", at)
	}
	below := New(nil, WithScorers(constScorers(0.5))).Review(draftOfLength(600), nil)
	if below.Approved {
		t.Errorf("score below threshold should reject: %+v", below)
	}
}

func TestReviewShortDraftFeedback(t *testing.T) {
	r := New(nil, WithMessages(EnglishMessages))
	res := r.Review(models.Draft{Title: "A", Content: "Too short."}, nil)

	// consistency 0.8, logic 0.5, character 0.8, plot 0.8, quality 0.6
	if math.Abs(res.OverallScore-0.7) > 1e-9 {
		t.Errorf("overall = %v, want 0.7", res.OverallScore)
	}
	wantFeedback := EnglishMessages.Logic + " " + EnglishMessages.Quality
	if res.Feedback != wantFeedback {
		t.Errorf("feedback = %q, want %q", res.Feedback, wantFeedback)
	}
	wantIssues := []string{EnglishMessages.ContentTooShort, EnglishMessages.TitleTooShort}
	if diff := cmp.Diff(wantIssues, res.Issues); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestReviewApprovedFeedback(t *testing.T) {
	r := New(nil, WithScorers(constScorers(0.9)))
	res := r.Review(models.Draft{Title: "第一章", Content: strings.Repeat("字", 600)}, nil)
	if res.Feedback != ChineseMessages.Approved {
		t.Errorf("feedback = %q", res.Feedback)
	}
	if len(res.Issues) != 0 {
		t.Errorf("issues = %v", res.Issues)
	}
}

func TestReviewFailuresArePermissive(t *testing.T) {
	for name, bad := range map[string]Scorer{
		"error": func(models.Draft, *models.KnowledgeSnapshot) (float64, error) { return 0, errors.New("boom") },
		"panic": func(models.Draft, *models.KnowledgeSnapshot) (float64, error) { panic("boom") },
		"nan":   func(models.Draft, *models.KnowledgeSnapshot) (float64, error) { return math.NaN(), nil },
		"nil":   nil,
	} {
		t.Run(name, func(t *testing.T) {
			s := DefaultScorers()
			s.Logic = bad
			r := New(nil, WithScorers(s))
			got := r.Review(models.Draft{}, nil)
			if diff := cmp.Diff(r.PermissiveResult(), got); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
			if !got.Approved || got.OverallScore != 0.8 {
				t.Errorf("permissive result = %+v", got)
			}
		})
	}
}

type memSource struct {
	novel *models.Novel
	err   error
}

func (m memSource) GetNovel(context.Context, int64) (*models.Novel, error) {
	if m.novel == nil {
		return nil, apperr.ErrNotFound
	}
	return m.novel, nil
}

func (m memSource) ListChapters(context.Context, int64) ([]models.Chapter, error) {
	return []models.Chapter{{Number: 1, Content: "text"}}, m.err
}

func (m memSource) ListCharacters(context.Context, int64) ([]models.Character, error) {
	return []models.Character{{Name: "Mira"}}, nil
}

func (m memSource) ListSettings(context.Context, int64) ([]models.Setting, error) {
	return nil, nil
}

func TestAnalyzeConsistencyStubsRateGood(t *testing.T) {
	r := New(memSource{novel: &models.Novel{ID: 1}}, WithMessages(EnglishMessages))
	rep, err := r.AnalyzeConsistency(context.Background(), 1)
	if err != nil {
		t.Fatalf("AnalyzeConsistency: %v", err)
	}
	if rep.OverallRating != "good" {
		t.Errorf("rating = %q, want good", rep.OverallRating)
	}
	if rep.Character.Details != EnglishMessages.CharacterDetails {
		t.Errorf("details = %q", rep.Character.Details)
	}
}

func TestAnalyzeConsistencyUnknownNovel(t *testing.T) {
	r := New(memSource{})
	if _, err := r.AnalyzeConsistency(context.Background(), 9); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAnalyzeConsistencyFallback(t *testing.T) {
	r := New(memSource{novel: &models.Novel{ID: 1}, err: errors.New("disk on fire")})
	rep, err := r.AnalyzeConsistency(context.Background(), 1)
	if err != nil {
		t.Fatalf("AnalyzeConsistency: %v", err)
	}
	if diff := cmp.Diff(r.FallbackConsistencyReport(), *rep); diff != "" {
		t.Errorf("fallback mismatch (-want +got):\n%s", diff)
	}
	if rep.OverallRating != ChineseMessages.Good {
		t.Errorf("rating = %q", rep.OverallRating)
	}
}

func TestAnalyzeConsistencyCustomAnalyzers(t *testing.T) {
	score := func(v float64) Analyzer {
		return func(Corpus) models.ConsistencyAnalysis { return models.ConsistencyAnalysis{Score: v} }
	}
	src := memSource{novel: &models.Novel{ID: 1}}
	for _, tc := range []struct {
		scores []float64
		want   string
	}{
		{[]float64{0.9, 0.9, 0.9}, "excellent"},
		{[]float64{0.6, 0.6, 0.6}, "good"},
		{[]float64{0.5, 0.4, 0.3}, "fair"},
		{[]float64{0.1, 0.2, 0.3}, "needs improvement"},
	} {
		r := New(src, WithMessages(EnglishMessages), WithAnalyzers(Analyzers{
			Character: score(tc.scores[0]),
			Timeline:  score(tc.scores[1]),
			Worldview: score(tc.scores[2]),
		}))
		rep, err := r.AnalyzeConsistency(context.Background(), 1)
		if err != nil {
			t.Fatalf("AnalyzeConsistency: %v", err)
		}
		if rep.OverallRating != tc.want {
			t.Errorf("scores %v: rating = %q, want %q", tc.scores, rep.OverallRating, tc.want)
		}
		if rep.Timeline.Issues == nil {
			t.Error("issues should be normalized to an empty list")
		}
	}
}

func TestMessagesFor(t *testing.T) {
	if _, err := MessagesFor("de"); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
	if m, _ := MessagesFor("en"); m.Good != "good" {
		t.Errorf("en good = %q", m.Good)
	}
}
