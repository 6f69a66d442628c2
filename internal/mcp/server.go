// Package mcp exposes the symbol index as Model Context Protocol tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/lri/internal/config"
	lridebug "github.com/standardbeagle/lri/internal/debug"
	"github.com/standardbeagle/lri/internal/display"
	"github.com/standardbeagle/lri/internal/indexing"
	"github.com/standardbeagle/lri/internal/version"
	"github.com/standardbeagle/lri/pkg/pathutil"
)

// DefaultIndexingWait bounds how long a tool call waits for a running index build
const DefaultIndexingWait = 30 * time.Second

// Indexing states reported by index_stats
const (
	StatusIdle      = "idle"
	StatusIndexing  = "indexing"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Server struct {
	index            *indexing.MasterIndex
	cfg              *config.Config
	server           *mcp.Server
	diagnosticLogger *DiagnosticLogger

	indexingMu     sync.RWMutex
	indexingStatus string
	indexingErr    string
	indexDone      chan struct{}

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a server answering from index, or from a new index over cfg when
// index is nil. A nil logger logs to a diagnostics file.
func NewServer(index *indexing.MasterIndex, cfg *config.Config, logger *DiagnosticLogger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mcp server requires a configuration")
	}
	if logger == nil {
		logger = NewDiagnosticLogger(true)
	}

	if index == nil {
		logger.Printf("Creating new MasterIndex")
		index = indexing.NewMasterIndex(cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		index:            index,
		cfg:              cfg,
		diagnosticLogger: logger,
		indexingStatus:   StatusIdle,
		ctx:              ctx,
		cancel:           cancel,
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "lri-mcp-server",
		Version: version.Info(),
	}, nil)
	s.registerTools()

	logger.Printf("MCP server initialized for project root %s", cfg.Project.Root)
	return s, nil
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "find_definition",
		Description: "Jump to the definition of the Ruby constant, method or variable at a file position. Returns every candidate definition, best first.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": {
					Type:        "string",
					Description: "File path (relative to the project root) or file:// URI",
				},
				"line": {
					Type:        "integer",
					Description: "Line of the cursor, zero-based unless one_based is true",
				},
				"column": {
					Type:        "integer",
					Description: "Column of the cursor in bytes, zero-based unless one_based is true",
				},
				"one_based": {
					Type:        "boolean",
					Description: "Interpret line and column as one-based editor coordinates",
				},
				"content": {
					Type:        "string",
					Description: "Unsaved buffer content to resolve against instead of the file on disk",
				},
			},
			Required: []string{"file", "line", "column"},
		},
	}, s.withRecovery("find_definition", s.handleFindDefinition))

	s.server.AddTool(&mcp.Tool{
		Name:        "document_symbols",
		Description: "List the classes, modules, methods, constants and variables defined in one Ruby file.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": {
					Type:        "string",
					Description: "File path (relative to the project root) or file:// URI",
				},
			},
			Required: []string{"file"},
		},
	}, s.withRecovery("document_symbols", s.handleDocumentSymbols))

	s.server.AddTool(&mcp.Tool{
		Name:        "workspace_symbols",
		Description: "Fuzzy search every indexed symbol by name, e.g. 'UsrCtrl' finds UsersController. Suggests close names when nothing matches.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query": {
					Type:        "string",
					Description: "Characters to match in order; uppercase makes the match case-sensitive",
				},
				"max": {
					Type:        "integer",
					Description: "Maximum results (defaults to the configured limit)",
				},
			},
			Required: []string{"query"},
		},
	}, s.withRecovery("workspace_symbols", s.handleWorkspaceSymbols))

	s.server.AddTool(&mcp.Tool{
		Name:        "reindex",
		Description: "Rebuild the symbol index from disk.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.withRecovery("reindex", s.handleReindex))

	s.server.AddTool(&mcp.Tool{
		Name:        "index_stats",
		Description: "Report indexing status, symbol counts per kind, roots and recent file errors.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.withRecovery("index_stats", s.handleIndexStats))
}

// StartIndexing builds the index in the background. Tool calls made meanwhile wait for it.
// Calls after the first are ignored.
func (s *Server) StartIndexing() {
	s.indexingMu.Lock()
	if s.indexDone != nil {
		s.indexingMu.Unlock()
		return
	}
	s.indexDone = make(chan struct{})
	s.indexingStatus = StatusIndexing
	s.indexingMu.Unlock()

	s.wg.Add(1)
	go s.runIndexing()
}

func (s *Server) runIndexing() {
	defer s.wg.Done()

	start := time.Now()
	s.diagnosticLogger.Printf("Starting auto-indexing for %s", s.cfg.Project.Root)
	err := s.index.Index(s.ctx)

	s.indexingMu.Lock()
	if err != nil {
		s.indexingStatus = StatusFailed
		s.indexingErr = err.Error()
	} else {
		s.indexingStatus = StatusCompleted
		s.indexingErr = ""
	}
	close(s.indexDone)
	s.indexingMu.Unlock()

	if err != nil {
		s.diagnosticLogger.Errorf("Auto-indexing failed after %s: %v", time.Since(start), err)
		return
	}
	s.diagnosticLogger.Printf("Auto-indexing completed in %s", time.Since(start))

	if s.cfg.Index.WatchMode {
		if err := s.index.StartWatching(); err != nil {
			s.diagnosticLogger.Errorf("Failed to start file watcher: %v", err)
		}
	}
}

// waitForIndex blocks while the background build runs, up to the indexing timeout.
// Handlers then query the index, which reports its own state if still unavailable.
func (s *Server) waitForIndex(ctx context.Context) {
	s.indexingMu.RLock()
	done := s.indexDone
	s.indexingMu.RUnlock()
	if done == nil {
		return
	}

	timeout := DefaultIndexingWait
	if secs := s.cfg.Performance.IndexingTimeoutSec; secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		s.diagnosticLogger.Printf("Index still building after %v", timeout)
	case <-ctx.Done():
	}
}

func (s *Server) status() (string, string) {
	s.indexingMu.RLock()
	defer s.indexingMu.RUnlock()
	return s.indexingStatus, s.indexingErr
}

// resolvePath accepts a file:// URI, an absolute path or a path relative to the project root
func (s *Server) resolvePath(file string) string {
	return pathutil.ToAbsolute(display.PathFromURI(file), s.cfg.Project.Root)
}

// withRecovery turns a handler panic into an error result instead of killing the session
func (s *Server) withRecovery(operation string, handler mcp.ToolHandler) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				s.diagnosticLogger.Errorf("PANIC RECOVERED in %s: %v", operation, r)
				s.diagnosticLogger.Printf("Stack trace: %s", debug.Stack())

				var m runtime.MemStats
				runtime.ReadMemStats(&m)
				s.diagnosticLogger.Printf("Memory stats - Alloc: %d KB, Sys: %d KB, NumGC: %d",
					m.Alloc/1024, m.Sys/1024, m.NumGC)

				result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
			}
		}()
		lridebug.LogMCP("tool call %s\n", operation)
		return handler(ctx, req)
	}
}

// Start indexes in the background and serves MCP over stdio until ctx is done
func (s *Server) Start(ctx context.Context) error {
	lridebug.SetMCPMode(true)
	s.diagnosticLogger.Printf("Starting MCP server with stdio transport (build %s)", version.BuildID())
	s.StartIndexing()
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Shutdown stops background indexing and watching and closes the diagnostics file
func (s *Server) Shutdown(ctx context.Context) error {
	s.diagnosticLogger.Printf("Shutting down MCP server...")
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.diagnosticLogger.Errorf("Shutdown timed out waiting for indexing")
	}

	err := s.index.Close()
	s.diagnosticLogger.Printf("MCP server shutdown complete")
	_ = s.diagnosticLogger.Close()
	return err
}
