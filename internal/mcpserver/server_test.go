package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/oikos/internal/contentstore"
	"github.com/starford/oikos/internal/models"
	"github.com/starford/oikos/internal/noteindex"
	"github.com/starford/oikos/internal/studyservice"
	"github.com/starford/oikos/internal/testutil"
)

func testServer(t *testing.T) (*Server, *studyservice.Service) {
	t.Helper()
	_, files := testutil.TestDataDir(t)
	db := testutil.TestDB(t)
	svc := studyservice.NewService(contentstore.New(), noteindex.New(nil), db, files, nil, nil)
	return New(svc), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handlers are
	// exercised directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_study":
		result, err = srv.searchStudy(ctx, req)
	case "list_units":
		result, err = srv.listUnits(ctx, req)
	case "read_unit":
		result, err = srv.readUnit(ctx, req)
	case "add_note":
		result, err = srv.addNote(ctx, req)
	case "add_summary":
		result, err = srv.addSummary(ctx, req)
	case "get_summary_contract":
		result, err = srv.getSummaryContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

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

func seedUnit(t *testing.T, svc *studyservice.Service) {
	t.Helper()
	svc.UpsertPage(context.Background(), 1, "Consumer choice", 1, []models.Section{
		{ID: "s1", Type: models.SectionText, Text: "marginal utility falls"},
	})
}

func TestListAndReadUnit(t *testing.T) {
	srv, svc := testServer(t)
	seedUnit(t, svc)

	r := callTool(t, srv, "list_units", map[string]interface{}{})
	if text := resultText(r); !strings.Contains(text, "Consumer choice") {
		t.Errorf("list = %q", text)
	}

	r = callTool(t, srv, "read_unit", map[string]interface{}{"unit": 1})
	text := resultText(r)
	if !strings.Contains(text, `"unit_number": 1`) || !strings.Contains(text, "marginal utility") {
		t.Errorf("read = %q", text)
	}
}

func TestReadUnitMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_unit", map[string]interface{}{"unit": 99})
	if !r.IsError {
		t.Error("missing unit should be a tool error")
	}
}

func TestListUnitsEmpty(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "list_units", map[string]interface{}{})
	if text := resultText(r); text != "no units loaded" {
		t.Errorf("empty list = %q", text)
	}
}

func TestAddNoteAndSearch(t *testing.T) {
	srv, svc := testServer(t)
	seedUnit(t, svc)

	r := callTool(t, srv, "add_note", map[string]interface{}{
		"unit":    1,
		"section": "s1",
		"text":    "revisit indifference curves",
	})
	if r.IsError {
		t.Fatalf("add_note failed: %q", resultText(r))
	}
	if !strings.Contains(resultText(r), "1-1-s1") {
		t.Errorf("result = %q, want default page 1 in location", resultText(r))
	}

	r = callTool(t, srv, "search_study", map[string]interface{}{"query": "indifference"})
	if !strings.Contains(resultText(r), "1-1-s1#") {
		t.Errorf("search = %q", resultText(r))
	}
}

func TestAddNoteBlankText(t *testing.T) {
	srv, svc := testServer(t)
	seedUnit(t, svc)

	r := callTool(t, srv, "add_note", map[string]interface{}{
		"unit":    1,
		"section": "s1",
		"text":    "   ",
	})
	if !r.IsError {
		t.Error("blank note should be a tool error")
	}
}

func TestAddSummary(t *testing.T) {
	srv, svc := testServer(t)

	r := callTool(t, srv, "add_summary", map[string]interface{}{
		"entry": `{"unit": "Consumer choice", "summary": "short recap"}`,
	})
	if r.IsError {
		t.Fatalf("add_summary failed: %q", resultText(r))
	}
	sums := svc.Summaries(context.Background())
	if len(sums) != 1 || sums[0].Summary != "short recap" {
		t.Errorf("summaries = %+v", sums)
	}

	r = callTool(t, srv, "add_summary", map[string]interface{}{"entry": "{broken"})
	if !r.IsError {
		t.Error("malformed summary should be a tool error")
	}
}

func TestSummaryContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_summary_contract", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "add_summary") || !strings.Contains(text, "unit_number") {
		t.Errorf("contract missing sections: %q", text)
	}
}

func TestSummaryFormatResource(t *testing.T) {
	srv, _ := testServer(t)
	contents, err := srv.readSummaryFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("resource: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != "oikos://summary-format" {
		t.Errorf("resource = %+v", contents[0])
	}
}
