package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/doclink/internal/checksum"
	"github.com/starford/doclink/internal/index"
	"github.com/starford/doclink/internal/resolve"
	"github.com/starford/doclink/internal/scan"
	"github.com/starford/doclink/internal/storage"
	"github.com/starford/doclink/internal/suggest"
	"github.com/starford/doclink/internal/urlcheck"
)

func testServer(t *testing.T, files map[string]string) *Server {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}

	db, err := index.Open(filepath.Join(t.TempDir(), "mcp-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	for rel, content := range files {
		if err := index.IndexFile(db, rel, checksum.Sum([]byte(content)), []byte(content)); err != nil {
			t.Fatal(err)
		}
	}

	resolver := resolve.New(root)
	engine := suggest.New(resolver, db, suggest.Config{Extensions: []string{".md"}})
	urls := urlcheck.New(urlcheck.Config{PlaceholderHosts: []string{"example.com"}})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	checker := scan.New(store, resolver, urls, engine, nil, logger, scan.Options{})

	return New(store, db, checker)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so we invoke the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "scan_corpus":
		result, err = srv.scanCorpus(ctx, req)
	case "check_document":
		result, err = srv.checkDocument(ctx, req)
	case "read_document":
		result, err = srv.readDocument(ctx, req)
	case "list_documents":
		result, err = srv.listDocuments(ctx, req)
	case "get_refs":
		result, err = srv.getRefs(ctx, req)
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

var corpus = map[string]string{
	"README.md":     "# Readme\n\nSee [guide](docs/guide.md) and [gone](missing.md).\n",
	"docs/guide.md": "# Guide\n\nBack to [readme](../README.md).\n",
}

func TestScanCorpus(t *testing.T) {
	srv := testServer(t, corpus)

	r := callTool(t, srv, "scan_corpus", map[string]interface{}{})
	var report scan.Report
	if err := json.Unmarshal([]byte(resultText(r)), &report); err != nil {
		t.Fatalf("scan result is not JSON: %v", err)
	}
	if report.Documents != 2 || len(report.Unfixed) != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestCheckDocument(t *testing.T) {
	srv := testServer(t, corpus)

	r := callTool(t, srv, "check_document", map[string]interface{}{"path": "docs/guide.md"})
	var report scan.Report
	if err := json.Unmarshal([]byte(resultText(r)), &report); err != nil {
		t.Fatalf("check result is not JSON: %v", err)
	}
	if report.TotalLinks != 1 || report.Valid != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestCheckDocumentMissing(t *testing.T) {
	srv := testServer(t, corpus)
	r := callTool(t, srv, "check_document", map[string]interface{}{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing document")
	}
}

func TestReadDocument(t *testing.T) {
	srv := testServer(t, corpus)

	r := callTool(t, srv, "read_document", map[string]interface{}{"path": "docs/guide.md"})
	if !strings.HasPrefix(resultText(r), "# Guide") {
		t.Errorf("read result = %q", resultText(r))
	}
}

func TestListDocuments(t *testing.T) {
	srv := testServer(t, corpus)

	r := callTool(t, srv, "list_documents", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "README.md") || !strings.Contains(text, "docs/guide.md") {
		t.Errorf("list = %q", text)
	}

	r = callTool(t, srv, "list_documents", map[string]interface{}{"folder": "docs"})
	text = resultText(r)
	if strings.Contains(text, "README.md") || !strings.Contains(text, "docs/guide.md") {
		t.Errorf("filtered list = %q", text)
	}
}

// Overlapping tool calls share one orchestrator; the server must serialize
// them so a full scan never races a single-document check.
func TestConcurrentToolCalls(t *testing.T) {
	srv := testServer(t, corpus)

	var wg sync.WaitGroup
	errs := make(chan string, 20)
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			req := mcp.CallToolRequest{}
			req.Params.Name = "scan_corpus"
			r, err := srv.scanCorpus(context.Background(), req)
			if err != nil || r.IsError {
				errs <- "scan_corpus failed"
			}
		}()
		go func() {
			defer wg.Done()
			req := mcp.CallToolRequest{}
			req.Params.Name = "check_document"
			req.Params.Arguments = map[string]interface{}{"path": "docs/guide.md"}
			r, err := srv.checkDocument(context.Background(), req)
			if err != nil || r.IsError {
				errs <- "check_document failed"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestGetRefs(t *testing.T) {
	srv := testServer(t, corpus)

	r := callTool(t, srv, "get_refs", map[string]interface{}{"path": "docs/guide.md"})
	if resultText(r) != "README.md" {
		t.Errorf("refs = %q, want README.md", resultText(r))
	}
}
