package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/lri/internal/display"
	"github.com/standardbeagle/lri/internal/indexing"
	"github.com/standardbeagle/lri/internal/types"
	"github.com/standardbeagle/lri/internal/version"
)

// DefinitionResponse lists the candidate definitions for a cursor, best first
type DefinitionResponse struct {
	Definitions []display.SymbolInfo `json:"definitions"`
	Count       int                  `json:"count"`
	Warnings    []string             `json:"warnings,omitempty"`
}

// DocumentSymbolsResponse lists the symbols of one file in source order
type DocumentSymbolsResponse struct {
	File     string               `json:"file"`
	Symbols  []display.SymbolInfo `json:"symbols"`
	Count    int                  `json:"count"`
	Warnings []string             `json:"warnings,omitempty"`
}

// WorkspaceSymbolsResponse holds ranked matches, or suggestions when there are none
type WorkspaceSymbolsResponse struct {
	Query       string               `json:"query"`
	Results     []display.SymbolInfo `json:"results"`
	Count       int                  `json:"count"`
	Suggestions []string             `json:"suggestions,omitempty"`
	Warnings    []string             `json:"warnings,omitempty"`
}

// IndexStatusResponse is returned by index_stats and reindex
type IndexStatusResponse struct {
	Status    string              `json:"status"`
	Error     string              `json:"error,omitempty"`
	Stats     indexing.IndexStats `json:"stats"`
	Summary   string              `json:"summary"`
	Version   string              `json:"version"`
	BuildID   string              `json:"build_id"`
	LogPath   string              `json:"log_path,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

func (s *Server) handleFindDefinition(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params FindDefinitionParams
	unknown, err := decodeParams(req.Params.Arguments, []string{"file", "line", "column", "one_based", "content"}, &params)
	if err != nil {
		return createErrorResponse("find_definition", err)
	}
	if params.File == "" {
		return createErrorResponse("find_definition", errors.New("file is required"))
	}

	line, column := params.Line, params.Column
	if params.OneBased {
		line--
		column--
	}

	s.waitForIndex(ctx)

	file := s.resolvePath(params.File)
	var symbols []*types.Symbol
	if params.Content != "" {
		symbols, err = s.index.FindDefinitionInSource(file, []byte(params.Content), line, column)
	} else {
		symbols, err = s.index.FindDefinition(file, line, column)
	}
	if err != nil {
		return createErrorResponse("find_definition", err)
	}

	infos := display.SymbolInfos(symbols)
	return createJSONResponse(&DefinitionResponse{
		Definitions: infos,
		Count:       len(infos),
		Warnings:    unknownFieldWarnings(unknown),
	})
}

func (s *Server) handleDocumentSymbols(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params DocumentSymbolsParams
	unknown, err := decodeParams(req.Params.Arguments, []string{"file"}, &params)
	if err != nil {
		return createErrorResponse("document_symbols", err)
	}
	if params.File == "" {
		return createErrorResponse("document_symbols", errors.New("file is required"))
	}

	s.waitForIndex(ctx)

	file := s.resolvePath(params.File)
	symbols, err := s.index.SymbolsInFile(file)
	if err != nil {
		return createErrorResponse("document_symbols", err)
	}

	infos := display.SymbolInfos(symbols)
	return createJSONResponse(&DocumentSymbolsResponse{
		File:     display.FileURI(file),
		Symbols:  infos,
		Count:    len(infos),
		Warnings: unknownFieldWarnings(unknown),
	})
}

func (s *Server) handleWorkspaceSymbols(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params WorkspaceSymbolsParams
	unknown, err := decodeParams(req.Params.Arguments, []string{"query", "max"}, &params)
	if err != nil {
		return createErrorResponse("workspace_symbols", err)
	}

	s.waitForIndex(ctx)

	symbols, err := s.index.FuzzySearch(params.Query)
	if err != nil {
		return createErrorResponse("workspace_symbols", err)
	}
	if params.Max > 0 && len(symbols) > params.Max {
		symbols = symbols[:params.Max]
	}

	response := &WorkspaceSymbolsResponse{
		Query:    params.Query,
		Results:  display.SymbolInfos(symbols),
		Count:    len(symbols),
		Warnings: unknownFieldWarnings(unknown),
	}
	if len(symbols) == 0 && params.Query != "" {
		response.Suggestions = s.index.Suggest(params.Query)
	}
	return createJSONResponse(response)
}

func (s *Server) handleReindex(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.waitForIndex(ctx)

	start := time.Now()
	if err := s.index.Index(ctx); err != nil {
		return createErrorResponse("reindex", err)
	}
	s.diagnosticLogger.Printf("Re-indexed on request in %s", time.Since(start))

	s.indexingMu.Lock()
	s.indexingStatus = StatusCompleted
	s.indexingErr = ""
	s.indexingMu.Unlock()

	return createJSONResponse(s.statusResponse())
}

func (s *Server) handleIndexStats(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return createJSONResponse(s.statusResponse())
}

func (s *Server) statusResponse() *IndexStatusResponse {
	status, errMsg := s.status()
	stats := s.index.Stats()
	if status == StatusIdle && stats.Generation > 0 {
		status = StatusCompleted
	}
	return &IndexStatusResponse{
		Status:    status,
		Error:     errMsg,
		Stats:     stats,
		Summary:   display.FormatStats(stats),
		Version:   version.FullInfo(),
		BuildID:   version.BuildID(),
		LogPath:   s.diagnosticLogger.GetLogPath(),
		Timestamp: time.Now(),
	}
}
