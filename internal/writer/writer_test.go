package writer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/llm"
	"github.com/starford/inkwell/internal/models"
)

type fakeProvider struct {
	reply string
	err   error
	reqs  []llm.Request
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type slowProvider struct{}

func (slowProvider) Name() string { return "slow" }

func (slowProvider) Complete(ctx context.Context, _ llm.Request) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

var errProvider = errors.Join(apperr.ErrGeneration, errors.New("upstream down"))

func TestParseDraftRoundTrip(t *testing.T) {
	got := Chinese.ParseDraft("标题：T\n正文：B1\nB2\n摘要：S")
	want := models.Draft{Title: "T", Content: "B1\nB2", Summary: "S"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("draft mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDraftEnglish(t *testing.T) {
	raw := "Sure, here it is.\nTitle: Fog Harbor\n  ignored title line\nBody: The fog rolled in.\n\n  Mira waited.  \nSummary: Mira waits.\nShe is patient."
	got := English.ParseDraft(raw)
	want := models.Draft{
		Title:   "Fog Harbor",
		Content: "The fog rolled in.\nMira waited.",
		Summary: "Mira waits.\nShe is patient.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("draft mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDraftFallback(t *testing.T) {
	got := Chinese.ParseDraft("just some prose")
	want := models.Draft{Title: Chinese.PlaceholderTitle, Content: "just some prose", Summary: Chinese.PlaceholderSummary}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("draft mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDraftEmpty(t *testing.T) {
	if got := Chinese.ParseDraft(""); got != (models.Draft{}) {
		t.Errorf("expected zero draft, got %+v", got)
	}
}

func TestParseSuggestions(t *testing.T) {
	raw := "好的：\n建议1：主角离开港口。\n建议2：\n建议3：旧敌归来。\n建议4：风暴来临。\n建议5：多余的建议。"
	got := Chinese.ParseSuggestions(raw)
	want := []string{"主角离开港口。", "旧敌归来。", "风暴来临。"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("suggestions mismatch (-want +got):\n%s", diff)
	}
}

func TestLayoutByName(t *testing.T) {
	if l, err := LayoutByName(""); err != nil || l.Name != "zh" {
		t.Errorf("default layout = %q, %v", l.Name, err)
	}
	if l, err := LayoutByName("en"); err != nil || l.Name != "en" {
		t.Errorf("en layout = %q, %v", l.Name, err)
	}
	if _, err := LayoutByName("fr"); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func testSnapshot() *models.KnowledgeSnapshot {
	return &models.KnowledgeSnapshot{
		Novel:      models.Novel{ID: 1, Title: "雾港", Description: "海港小镇的故事"},
		Characters: []models.Character{{Name: "米拉", Description: "水手"}},
	}
}

func TestGenerateBuildsPromptAndParses(t *testing.T) {
	p := &fakeProvider{reply: "标题：雾起\n正文：雾从海上来。\n摘要：起雾了。"}
	g := New(p)
	got := g.Generate(context.Background(), testSnapshot(), "米拉在码头等待", "多写对话")

	if got.Title != "雾起" || got.Content != "雾从海上来。" || got.Summary != "起雾了。" {
		t.Errorf("unexpected draft: %+v", got)
	}
	if len(p.reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(p.reqs))
	}
	req := p.reqs[0]
	if req.Temperature != 0.7 || req.MaxTokens != DefaultMaxTokens {
		t.Errorf("temperature = %v, max tokens = %d", req.Temperature, req.MaxTokens)
	}
	for _, want := range []string{"雾港", "米拉", "米拉在码头等待", "多写对话", "标题：[章节标题]"} {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(req.Prompt, `\u`) {
		t.Error("prompt JSON escapes non-ASCII text")
	}
}

func TestGenerateFailureReturnsPlaceholder(t *testing.T) {
	g := New(&fakeProvider{err: errProvider})
	got := g.Generate(context.Background(), testSnapshot(), "ctx", "")
	if diff := cmp.Diff(Chinese.Unavailable, got); diff != "" {
		t.Errorf("placeholder mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateTimeout(t *testing.T) {
	g := New(slowProvider{}, WithTimeout(10*time.Millisecond), WithLayout(English))
	got := g.Generate(context.Background(), nil, "ctx", "")
	if got != English.Unavailable {
		t.Errorf("expected placeholder after timeout, got %+v", got)
	}
}

func TestImproveFailureKeepsDraft(t *testing.T) {
	in := models.Draft{Title: "Keep", Content: "the last good text", Summary: "s"}
	g := New(&fakeProvider{err: errProvider})
	if got := g.Improve(context.Background(), in, "more detail", testSnapshot()); got != in {
		t.Errorf("expected input draft unchanged, got %+v", got)
	}
}

func TestBlankReplyFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":""}}]}`))
	}))
	defer srv.Close()
	p, err := llm.NewOpenAI(llm.Config{APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	g := New(p)

	if got := g.Generate(context.Background(), testSnapshot(), "ctx", ""); got != g.PlaceholderDraft() {
		t.Errorf("Generate = %+v, want placeholder", got)
	}
	in := models.Draft{Title: "雾港", Content: "good body"}
	if got := g.Improve(context.Background(), in, "more detail", testSnapshot()); got != in {
		t.Errorf("Improve = %+v, want input draft unchanged", got)
	}
}

func TestImproveUsesFeedback(t *testing.T) {
	p := &fakeProvider{reply: "Title: Better\nBody: Richer text.\nSummary: ok"}
	g := New(p, WithLayout(English))
	in := models.Draft{Title: "Old", Content: "thin"}
	got := g.Improve(context.Background(), in, "add sensory detail", testSnapshot())
	if got.Title != "Better" || got.Content != "Richer text." {
		t.Errorf("unexpected draft: %+v", got)
	}
	req := p.reqs[0]
	if req.Temperature != 0.6 {
		t.Errorf("temperature = %v, want 0.6", req.Temperature)
	}
	if !strings.Contains(req.Prompt, "add sensory detail") || !strings.Contains(req.Prompt, "thin") {
		t.Errorf("prompt missing draft or feedback:\n%s", req.Prompt)
	}
}

func TestSuggestPlotOptions(t *testing.T) {
	p := &fakeProvider{reply: "Suggestion1: A storm.\nSuggestion2: A letter.\nSuggestion3: A duel.\nSuggestion4: Extra."}
	g := New(p, WithLayout(English))
	got := g.SuggestPlotOptions(context.Background(), testSnapshot(), "after the wedding")
	if diff := cmp.Diff([]string{"A storm.", "A letter.", "A duel."}, got); diff != "" {
		t.Errorf("suggestions mismatch (-want +got):\n%s", diff)
	}
	if p.reqs[0].Temperature != 0.8 || p.reqs[0].MaxTokens != DefaultSuggestTokens {
		t.Errorf("request = %+v", p.reqs[0])
	}
}

func TestSuggestPlotOptionsFallback(t *testing.T) {
	for name, p := range map[string]*fakeProvider{
		"provider error": {err: errProvider},
		"unparseable":    {reply: "I cannot help with that."},
	} {
		t.Run(name, func(t *testing.T) {
			got := New(p).SuggestPlotOptions(context.Background(), testSnapshot(), "x")
			if diff := cmp.Diff(Chinese.Fallback, got); diff != "" {
				t.Errorf("fallback mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFallbackSuggestionsIsCopy(t *testing.T) {
	g := New(&fakeProvider{})
	s := g.FallbackSuggestions()
	s[0] = "mutated"
	if Chinese.Fallback[0] == "mutated" {
		t.Fatal("FallbackSuggestions exposed the layout's backing array")
	}
}
