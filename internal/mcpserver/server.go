// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes link-checking tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/doclink/internal/index"
	"github.com/starford/doclink/internal/scan"
	"github.com/starford/doclink/internal/storage"
)

// Server wraps the MCP server with doclink tools. Tool handlers may run
// concurrently, so checker invocations are serialized: the orchestrator's
// URL cache is not safe for concurrent use.
type Server struct {
	mcp     *server.MCPServer
	store   storage.Provider
	db      index.CorpusIndex
	checker *scan.Orchestrator

	runMu sync.Mutex // guards checker invocations
}

// New creates a new MCP server with all doclink tools registered.
func New(store storage.Provider, db index.CorpusIndex, checker *scan.Orchestrator) *Server {
	s := &Server{store: store, db: db, checker: checker}

	s.mcp = server.NewMCPServer(
		"Doclink",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("scan_corpus",
		mcp.WithDescription("Check every link in the documentation corpus and return the full report as JSON."),
	), s.scanCorpus)

	s.mcp.AddTool(mcp.NewTool("check_document",
		mcp.WithDescription("Validate all links in a single Markdown document and return the result as JSON."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. docs/guide.md)")),
	), s.checkDocument)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the full content of a Markdown document."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List all documents in the corpus, optionally restricted to a folder."),
		mcp.WithString("folder", mcp.Description("Optional folder prefix (empty for all)")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("get_refs",
		mcp.WithDescription("Find all documents that link to the specified document."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the document to find references for")),
	), s.getRefs)

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

func (s *Server) scanCorpus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.runMu.Lock()
	report, err := s.checker.Run(ctx)
	s.runMu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) checkDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !s.store.Exists(path) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	s.runMu.Lock()
	report := s.checker.CheckDocument(ctx, path)
	s.runMu.Unlock()
	out, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = strings.TrimSuffix(f, "/")
	}

	metas, err := s.store.List(nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var paths []string
	for _, m := range metas {
		if folder != "" && !strings.HasPrefix(m.Path, folder+"/") {
			continue
		}
		paths = append(paths, m.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getRefs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	refs, err := s.db.Refs(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(refs) == 0 {
		return mcp.NewToolResultText("no references found"), nil
	}
	return mcp.NewToolResultText(strings.Join(refs, "\n")), nil
}
