// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the study tool for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/oikos/internal/noteindex"
	"github.com/starford/oikos/internal/studyservice"
)

// Server wraps the MCP server with study tools.
type Server struct {
	mcp *server.MCPServer
	svc *studyservice.Service
}

// New creates a new MCP server with all study tools registered.
func New(svc *studyservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Oikos",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_study",
		mcp.WithDescription("Full-text search through unit section content and personal notes."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchStudy)

	s.mcp.AddTool(mcp.NewTool("list_units",
		mcp.WithDescription("List all study units with their numbers, titles, and page counts."),
	), s.listUnits)

	s.mcp.AddTool(mcp.NewTool("read_unit",
		mcp.WithDescription("Read the full content of a study unit as JSON (pages and sections)."),
		mcp.WithNumber("unit", mcp.Required(), mcp.Description("Unit number")),
	), s.readUnit)

	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Attach a personal note to a section of a unit page."),
		mcp.WithNumber("unit", mcp.Required(), mcp.Description("Unit number")),
		mcp.WithNumber("page", mcp.Description("Page number (defaults to 1)")),
		mcp.WithString("section", mcp.Required(), mcp.Description("Section identifier within the page")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Note text (must not be blank)")),
	), s.addNote)

	s.mcp.AddTool(mcp.NewTool("add_summary",
		mcp.WithDescription("Add a unit summary. The argument MUST follow the canonical summary "+
			"format. Read the contract first via the get_summary_contract tool or the "+
			"oikos://summary-format resource."),
		mcp.WithString("entry", mcp.Required(), mcp.Description("JSON object following the summary format contract")),
	), s.addSummary)

	s.mcp.AddTool(mcp.NewTool("get_summary_contract",
		mcp.WithDescription("Returns the canonical summary and unit content format contract. "+
			"Call this before adding summaries or composing unit content."),
	), s.getSummaryContract)

	// Resource: summary format contract.
	s.mcp.AddResource(
		mcp.NewResource("oikos://summary-format", "Summary Format Contract",
			mcp.WithResourceDescription("Canonical JSON formats for summaries and unit content."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSummaryFormatResource,
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

func (s *Server) searchStudy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listUnits(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lessons := s.svc.Lessons(ctx)
	if len(lessons) == 0 {
		return mcp.NewToolResultText("no units loaded"), nil
	}
	var b strings.Builder
	for _, l := range lessons {
		fmt.Fprintf(&b, "%d\t%s\t(%d pages)\n", l.UnitNumber, l.Title, len(l.Pages))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) readUnit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	unit, err := req.RequireInt("unit")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lesson, err := s.svc.Lesson(ctx, unit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unit not found: %d", unit)), nil
	}
	out, _ := json.MarshalIndent(lesson, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	unit, err := req.RequireInt("unit")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	section, err := req.RequireString("section")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page := req.GetInt("page", 1)

	loc := noteindex.Location{Unit: unit, Page: page, Section: section}
	note, err := s.svc.AddNote(ctx, loc, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("note %d added at %s", note.ID, loc.String())), nil
}

func (s *Server) addSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entry, err := req.RequireString("entry")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sum, err := s.svc.AddSummaryJSON(ctx, []byte(entry))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("summary added for unit %q", sum.Unit)), nil
}

func (s *Server) getSummaryContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SummaryFormatContract), nil
}

func (s *Server) readSummaryFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "oikos://summary-format",
			MIMEType: "text/markdown",
			Text:     SummaryFormatContract,
		},
	}, nil
}
