package knowledge

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/inkwell/internal/models"
)

func TestRelevanceIdentity(t *testing.T) {
	for _, text := range []string{"the old harbor", "Mira", "港口 的 灯塔", "a, b; c!"} {
		if got := Relevance(text, text); got != 1.0 {
			t.Errorf("Relevance(%q, itself) = %v, want 1", text, got)
		}
	}
}

func TestRelevanceEmpty(t *testing.T) {
	if got := Relevance("something", ""); got != 0 {
		t.Errorf("Relevance(x, \"\") = %v", got)
	}
	if got := Relevance("", "something"); got != 0 {
		t.Errorf("Relevance(\"\", x) = %v", got)
	}
	if got := Relevance("...", "!!!"); got != 0 {
		t.Errorf("punctuation only = %v", got)
	}
}

func TestRelevanceWordlessTextMatchesNothing(t *testing.T) {
	for _, text := range []string{"!!!", "... --", "   "} {
		if got := Relevance(text, text); got != 0 {
			t.Errorf("Relevance(%q, itself) = %v, want 0", text, got)
		}
	}
}

func TestRelevanceSymmetricAndCaseInsensitive(t *testing.T) {
	a := "The Keeper of the Lighthouse"
	b := "the lighthouse stood alone"
	if Relevance(a, b) != Relevance(b, a) {
		t.Fatalf("not symmetric: %v vs %v", Relevance(a, b), Relevance(b, a))
	}
	// {the, keeper, of, lighthouse} vs {the, lighthouse, stood, alone}: 2/6.
	if got, want := Relevance(a, b), 2.0/6.0; got != want {
		t.Errorf("Relevance = %v, want %v", got, want)
	}
}

func names(chars []models.Character) []string {
	out := make([]string, 0, len(chars))
	for _, c := range chars {
		out = append(out, c.Name)
	}
	return out
}

func TestCharactersFallbackToFirstThree(t *testing.T) {
	chars := []models.Character{
		{Name: "Ada"}, {Name: "Bo"}, {Name: "Cy"}, {Name: "Di"}, {Name: "Ed"},
	}
	got := NewSelector().Characters(chars, "an unrelated scene on the moon")
	if diff := cmp.Diff([]string{"Ada", "Bo", "Cy"}, names(got)); diff != "" {
		t.Errorf("fallback mismatch (-want +got):\n%s", diff)
	}
}

func TestCharactersMatchByNameOrDescription(t *testing.T) {
	chars := []models.Character{
		{Name: "Mira", Description: "a sailor"},
		{Name: "Tovan", Description: "storm harbor keeper"},
		{Name: "Quill", Description: "a scribe in the capital"},
		{Name: "", Description: "nameless"},
	}
	got := NewSelector().Characters(chars, "MIRA walks to the storm harbor keeper")
	if diff := cmp.Diff([]string{"Mira", "Tovan"}, names(got)); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestSettingsNoFallback(t *testing.T) {
	settings := []models.Setting{{Name: "Harbor", Description: "a busy port"}}
	if got := NewSelector().Settings(settings, "the desert"); len(got) != 0 {
		t.Errorf("expected no settings, got %+v", got)
	}
	if got := NewSelector().Settings(settings, "back at the harbor"); len(got) != 1 {
		t.Errorf("expected name match, got %+v", got)
	}
}

func TestOutlinesThreshold(t *testing.T) {
	outlines := []models.Outline{
		{Section: 1, Content: "the siege of the northern fort"},
		{Section: 2, Content: "a quiet wedding in spring"},
	}
	got := NewSelector().Outlines(outlines, "the siege of the fort")
	if len(got) != 1 || got[0].Section != 1 {
		t.Errorf("unexpected outlines: %+v", got)
	}
}

func TestSelectorEmptyInput(t *testing.T) {
	s := NewSelector()
	if got := s.Characters(nil, "anything"); len(got) != 0 {
		t.Errorf("characters = %+v", got)
	}
	if got := s.Settings(nil, "anything"); len(got) != 0 {
		t.Errorf("settings = %+v", got)
	}
	if got := s.Outlines(nil, "anything"); len(got) != 0 {
		t.Errorf("outlines = %+v", got)
	}
}
