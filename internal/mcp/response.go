package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	lrierrors "github.com/standardbeagle/lri/internal/errors"
	"github.com/standardbeagle/lri/internal/indexing"
)

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createErrorResponse reports err inside the result with IsError set,
// so the client model sees the failure and can correct its call
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	return createSmartErrorResponse(operation, err, nil)
}

// createSmartErrorResponse adds suggestions and context to an error response
func createSmartErrorResponse(operation string, err error, context map[string]interface{}) (*mcp.CallToolResult, error) {
	errorData := map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	}

	if suggestions := generateErrorSuggestions(operation, err); len(suggestions) > 0 {
		errorData["suggestions"] = suggestions
	}

	var inProgress *indexing.IndexingInProgressError
	if errors.As(err, &inProgress) {
		errorData["progress"] = inProgress.Progress
	}

	if len(context) > 0 {
		errorData["context"] = context
	}

	response, marshalErr := createJSONResponse(errorData)
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}

// generateErrorSuggestions maps well-known failures to hints
func generateErrorSuggestions(operation string, err error) []string {
	var suggestions []string

	var inProgress *indexing.IndexingInProgressError
	switch {
	case errors.Is(err, indexing.ErrNotIndexed):
		suggestions = append(suggestions, "Run the 'reindex' tool to build the index")
	case errors.As(err, &inProgress):
		suggestions = append(suggestions, "Indexing is still running; check 'index_stats' and retry")
	case lrierrors.IsUnsupported(err):
		suggestions = append(suggestions, "Place the cursor on a constant, method call or variable name")
	case errors.Is(err, lrierrors.ErrPositionOutOfRange):
		suggestions = append(suggestions, "Line and column are zero-based unless one_based is set")
	}

	switch operation {
	case "find_definition":
		suggestions = append(suggestions, `Use: {"file": "app/models/user.rb", "line": 10, "column": 4}`)
	case "document_symbols":
		suggestions = append(suggestions, `Use: {"file": "app/models/user.rb"}`)
	case "workspace_symbols":
		suggestions = append(suggestions, `Use: {"query": "UsrCtrl"}`)
	}
	return suggestions
}
