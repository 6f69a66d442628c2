package mcp

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// FindDefinitionParams locates the cursor for find_definition.
// Line and Column are zero-based unless OneBased is set.
type FindDefinitionParams struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	OneBased bool   `json:"one_based,omitempty"`
	// Content replaces the file on disk, for unsaved editor buffers
	Content string `json:"content,omitempty"`
}

// DocumentSymbolsParams names the file whose symbols are listed
type DocumentSymbolsParams struct {
	File string `json:"file"`
}

// WorkspaceSymbolsParams is a fuzzy query over every indexed symbol
type WorkspaceSymbolsParams struct {
	Query string `json:"query"`
	Max   int    `json:"max,omitempty"`
}

// Aliases accepted for parameter names. Clients coming from LSP send uri/character.
var paramAliases = map[string]string{
	"path":        "file",
	"uri":         "file",
	"filename":    "file",
	"col":         "column",
	"character":   "column",
	"pattern":     "query",
	"max_results": "max",
	"limit":       "max",
}

// decodeParams unmarshals raw tool arguments into v after normalizing aliased keys.
// Unknown keys are ignored and returned so handlers can warn about them.
func decodeParams(raw json.RawMessage, known []string, v interface{}) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	normalized := make(map[string]json.RawMessage, len(fields))
	var unknown []string
	for key, value := range fields {
		name := strings.ToLower(key)
		if alias, ok := paramAliases[name]; ok {
			name = alias
		}
		if !slices.Contains(known, name) {
			unknown = append(unknown, key)
			continue
		}
		normalized[name] = value
	}
	slices.Sort(unknown)

	data, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	return unknown, nil
}

func unknownFieldWarnings(unknown []string) []string {
	if len(unknown) == 0 {
		return nil
	}
	return []string{"ignored unknown parameters: " + strings.Join(unknown, ", ")}
}
