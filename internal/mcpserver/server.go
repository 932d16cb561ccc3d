// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Inkwell's writing tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/workshop"
	"github.com/starford/inkwell/internal/writer"
)

// Catalog is the read side of the record layer the tools browse.
type Catalog interface {
	ListNovels(ctx context.Context) ([]models.Novel, error)
	GetNovel(ctx context.Context, id int64) (*models.Novel, error)
	ListOutlines(ctx context.Context, novelID int64) ([]models.Outline, error)
}

// Assistant is the assisted-writing surface exposed as tools.
type Assistant interface {
	GenerateChapter(ctx context.Context, novelID int64, writingContext, requirements string) (*workshop.Result, error)
	AnalyzeConsistency(ctx context.Context, novelID int64) (*models.ConsistencyReport, error)
	RefreshKnowledge(ctx context.Context, novelID int64) error
	KnowledgeSummary(ctx context.Context, novelID int64) (*models.KnowledgeSummary, error)
	SuggestNextPlot(ctx context.Context, novelID int64, currentContext string) ([]string, error)
}

// Server wraps the MCP server with Inkwell tools.
type Server struct {
	mcp     *server.MCPServer
	catalog Catalog
	assist  Assistant
	format  string
}

// New creates a new MCP server with all Inkwell tools registered. layout
// selects the draft format contract that is served.
func New(catalog Catalog, assist Assistant, layout writer.Layout, version string) *Server {
	s := &Server{catalog: catalog, assist: assist, format: DraftFormat(layout)}

	s.mcp = server.NewMCPServer(
		"Inkwell",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	novelID := mcp.WithNumber("novel_id", mcp.Required(), mcp.Description("ID of the novel"))

	s.mcp.AddTool(mcp.NewTool("list_novels",
		mcp.WithDescription("List every novel with its id, title and description."),
	), s.listNovels)

	s.mcp.AddTool(mcp.NewTool("get_novel_outline",
		mcp.WithDescription("Return a novel and its outline sections in section order."),
		novelID,
	), s.getNovelOutline)

	s.mcp.AddTool(mcp.NewTool("generate_chapter",
		mcp.WithDescription("Draft a new chapter from the novel's stored characters, settings, outline "+
			"and recent chapters. The draft is reviewed and revised up to three times; the result "+
			"carries the final draft, its review and the knowledge used."),
		novelID,
		mcp.WithString("context", mcp.Required(), mcp.Description("What should happen in the chapter")),
		mcp.WithString("requirements", mcp.Description("Optional extra requirements (tone, length, POV)")),
	), s.generateChapter)

	s.mcp.AddTool(mcp.NewTool("analyze_consistency",
		mcp.WithDescription("Check the whole novel for character, timeline and worldview consistency."),
		novelID,
	), s.analyzeConsistency)

	s.mcp.AddTool(mcp.NewTool("refresh_knowledge",
		mcp.WithDescription("Signal that a novel's records changed outside Inkwell."),
		novelID,
	), s.refreshKnowledge)

	s.mcp.AddTool(mcp.NewTool("get_knowledge_summary",
		mcp.WithDescription("Record counts, total length and latest chapter of a novel."),
		novelID,
	), s.knowledgeSummary)

	s.mcp.AddTool(mcp.NewTool("suggest_next_plot",
		mcp.WithDescription("Propose up to three directions the story could take next."),
		novelID,
		mcp.WithString("current_context", mcp.Required(), mcp.Description("Where the story stands now")),
	), s.suggestNextPlot)

	s.mcp.AddTool(mcp.NewTool("get_draft_format",
		mcp.WithDescription("Returns the labelled plain-text layout generated chapters use. "+
			"Also available as the "+DraftFormatURI+" resource."),
	), s.getDraftFormat)

	s.mcp.AddResource(
		mcp.NewResource(DraftFormatURI, "Draft Format",
			mcp.WithResourceDescription("Labelled plain-text layout of generated chapters."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDraftFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// toolError turns a service error into a tool-level error result.
func toolError(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("novel not found")
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcpserver: encode result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

func requireNovelID(req mcp.CallToolRequest) (int64, error) {
	id, err := req.RequireInt("novel_id")
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("novel_id must be positive")
	}
	return int64(id), nil
}

func (s *Server) listNovels(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	novels, err := s.catalog.ListNovels(ctx)
	if err != nil {
		return toolError(err), nil
	}
	if novels == nil {
		novels = []models.Novel{}
	}
	return jsonResult(novels)
}

func (s *Server) getNovelOutline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireNovelID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	novel, err := s.catalog.GetNovel(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	outlines, err := s.catalog.ListOutlines(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	if outlines == nil {
		outlines = []models.Outline{}
	}
	return jsonResult(map[string]any{"novel": novel, "outlines": outlines})
}

func (s *Server) generateChapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireNovelID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	writingContext, err := req.RequireString("context")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.assist.GenerateChapter(ctx, id, writingContext, req.GetString("requirements", ""))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(res)
}

func (s *Server) analyzeConsistency(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireNovelID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report, err := s.assist.AnalyzeConsistency(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(report)
}

func (s *Server) refreshKnowledge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireNovelID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.assist.RefreshKnowledge(ctx, id); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("knowledge refreshed: novel %d", id)), nil
}

func (s *Server) knowledgeSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireNovelID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	summary, err := s.assist.KnowledgeSummary(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(summary)
}

func (s *Server) suggestNextPlot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireNovelID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	current, err := req.RequireString("current_context")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	suggestions, err := s.assist.SuggestNextPlot(ctx, id, current)
	if err != nil {
		return toolError(err), nil
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	return jsonResult(suggestions)
}

func (s *Server) getDraftFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.format), nil
}

func (s *Server) readDraftFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      DraftFormatURI,
			MIMEType: "text/markdown",
			Text:     s.format,
		},
	}, nil
}
