package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/inkwell/internal/catalog"
	"github.com/starford/inkwell/internal/knowledge"
	"github.com/starford/inkwell/internal/llm"
	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/review"
	"github.com/starford/inkwell/internal/testutil"
	"github.com/starford/inkwell/internal/workshop"
	"github.com/starford/inkwell/internal/writer"
)

func testServer(t *testing.T) (*Server, *testutil.Story) {
	t.Helper()
	db := testutil.TestDB(t)
	story := testutil.SeedStory(t, db)

	assist := workshop.New(
		knowledge.NewAggregator(db),
		writer.New(llm.Disabled{}, writer.WithLayout(writer.English)),
		review.New(db, review.WithMessages(review.EnglishMessages)),
	)
	return New(catalog.NewService(db, nil), assist, writer.English, "test"), story
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"list_novels":           srv.listNovels,
		"get_novel_outline":     srv.getNovelOutline,
		"generate_chapter":      srv.generateChapter,
		"analyze_consistency":   srv.analyzeConsistency,
		"refresh_knowledge":     srv.refreshKnowledge,
		"get_knowledge_summary": srv.knowledgeSummary,
		"suggest_next_plot":     srv.suggestNextPlot,
		"get_draft_format":      srv.getDraftFormat,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListNovels(t *testing.T) {
	srv, story := testServer(t)

	r := callTool(t, srv, "list_novels", nil)
	var novels []models.Novel
	if err := json.Unmarshal([]byte(resultText(r)), &novels); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(novels) != 1 || novels[0].ID != story.Novel.ID {
		t.Errorf("novels = %+v", novels)
	}
}

func TestGetNovelOutline(t *testing.T) {
	srv, story := testServer(t)

	r := callTool(t, srv, "get_novel_outline", map[string]any{"novel_id": float64(story.Novel.ID)})
	var out struct {
		Novel    models.Novel     `json:"novel"`
		Outlines []models.Outline `json:"outlines"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Novel.Title != "Fog Harbor" || len(out.Outlines) != 2 || out.Outlines[0].Title != "Arrival" {
		t.Errorf("outline = %+v", out)
	}

	r = callTool(t, srv, "get_novel_outline", map[string]any{"novel_id": float64(99)})
	if !r.IsError || resultText(r) != "novel not found" {
		t.Errorf("unknown novel: error=%v text=%q", r.IsError, resultText(r))
	}
}

func TestGenerateChapterTool(t *testing.T) {
	srv, story := testServer(t)

	r := callTool(t, srv, "generate_chapter", map[string]any{
		"novel_id": float64(story.Novel.ID),
		"context":  "Mira sees a light out at sea",
	})
	if r.IsError {
		t.Fatalf("tool error: %s", resultText(r))
	}
	var res workshop.Result
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// The English placeholder scores a mean of 0.7 and passes at once.
	if res.Iterations != 1 || !res.Review.Approved {
		t.Errorf("iterations = %d approved = %v", res.Iterations, res.Review.Approved)
	}
	if res.Draft != writer.English.Unavailable {
		t.Errorf("draft = %+v", res.Draft)
	}
}

func TestToolArgumentErrors(t *testing.T) {
	srv, story := testServer(t)

	cases := []struct {
		tool string
		args map[string]any
	}{
		{"generate_chapter", map[string]any{"context": "x"}},
		{"generate_chapter", map[string]any{"novel_id": float64(story.Novel.ID)}},
		{"suggest_next_plot", map[string]any{"novel_id": float64(story.Novel.ID)}},
		{"analyze_consistency", map[string]any{"novel_id": float64(0)}},
		{"refresh_knowledge", map[string]any{"novel_id": float64(404)}},
	}
	for _, c := range cases {
		if r := callTool(t, srv, c.tool, c.args); !r.IsError {
			t.Errorf("%s(%v): expected error result, got %q", c.tool, c.args, resultText(r))
		}
	}
}

func TestKnowledgeTools(t *testing.T) {
	srv, story := testServer(t)
	id := float64(story.Novel.ID)

	r := callTool(t, srv, "refresh_knowledge", map[string]any{"novel_id": id})
	if r.IsError || !strings.Contains(resultText(r), "refreshed") {
		t.Errorf("refresh = %q", resultText(r))
	}

	r = callTool(t, srv, "get_knowledge_summary", map[string]any{"novel_id": id})
	var summary models.KnowledgeSummary
	if err := json.Unmarshal([]byte(resultText(r)), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.Statistics.Characters != 2 || summary.LatestChapter == nil || summary.LatestChapter.Title != "Lantern" {
		t.Errorf("summary = %+v", summary)
	}

	r = callTool(t, srv, "analyze_consistency", map[string]any{"novel_id": id})
	var report models.ConsistencyReport
	if err := json.Unmarshal([]byte(resultText(r)), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.OverallRating == "" {
		t.Errorf("report = %+v", report)
	}

	r = callTool(t, srv, "suggest_next_plot", map[string]any{"novel_id": id, "current_context": "after the storm"})
	var suggestions []string
	if err := json.Unmarshal([]byte(resultText(r)), &suggestions); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(suggestions) != 3 || suggestions[0] != writer.English.Fallback[0] {
		t.Errorf("suggestions = %q", suggestions)
	}
}

func TestDraftFormat(t *testing.T) {
	srv, _ := testServer(t)

	text := resultText(callTool(t, srv, "get_draft_format", nil))
	for _, want := range []string{writer.English.TitleMarker, writer.English.BodyMarker, writer.English.SummaryMarker} {
		if !strings.Contains(text, want) {
			t.Errorf("format missing marker %q", want)
		}
	}

	contents, err := srv.readDraftFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != DraftFormatURI || tc.Text != text {
		t.Errorf("resource = %+v", contents[0])
	}

	zh := DraftFormat(writer.Chinese)
	if !strings.Contains(zh, "标题：") || !strings.Contains(zh, "建议1：") {
		t.Errorf("zh format = %q", zh)
	}
}
