// Package display translates symbols into the location-based form shared by the CLI and MCP tools.
package display

import (
	"net/url"
	"path/filepath"

	"github.com/standardbeagle/lri/internal/types"
)

// Kind tags reported to clients
const (
	KindClass    = "class"
	KindModule   = "module"
	KindMethod   = "method"
	KindConstant = "constant"
	KindField    = "field"
	KindNull     = "null"
)

// Range is a zero-based, end-exclusive span
type Range struct {
	Start types.Position `json:"start"`
	End   types.Position `json:"end"`
}

// Location points at a range within a file URI
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

// SymbolInfo is the client-facing form of a symbol
type SymbolInfo struct {
	Name          string   `json:"name"`
	QualifiedName string   `json:"qualified_name"`
	Kind          string   `json:"kind"`
	ContainerName string   `json:"container_name,omitempty"`
	Location      Location `json:"location"`
}

// KindTag maps a symbol kind to the tag clients display
func KindTag(kind types.SymbolKind) string {
	switch kind {
	case types.SymbolKindClass:
		return KindClass
	case types.SymbolKindModule:
		return KindModule
	case types.SymbolKindInstanceMethod, types.SymbolKindSingletonMethod:
		return KindMethod
	case types.SymbolKindConstant, types.SymbolKindGlobalVariable:
		return KindConstant
	case types.SymbolKindInstanceVariable, types.SymbolKindClassVariable:
		return KindField
	default:
		return KindNull
	}
}

// FileURI converts a filesystem path into a file:// URI
func FileURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// PathFromURI accepts either a file:// URI or a plain path
func PathFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	return filepath.FromSlash(u.Path)
}

// NewLocation spans the symbol's name, starting at its start position
func NewLocation(s *types.Symbol) Location {
	end := s.Start
	end.Column += len(s.Name)
	return Location{
		URI:   FileURI(s.File),
		Range: Range{Start: s.Start, End: end},
	}
}

// NewSymbolInfo converts one symbol
func NewSymbolInfo(s *types.Symbol) SymbolInfo {
	return SymbolInfo{
		Name:          s.Name,
		QualifiedName: s.DisplayName(),
		Kind:          KindTag(s.Kind),
		ContainerName: s.Scope.String(),
		Location:      NewLocation(s),
	}
}

// SymbolInfos converts symbols preserving order
func SymbolInfos(symbols []*types.Symbol) []SymbolInfo {
	out := make([]SymbolInfo, len(symbols))
	for i, s := range symbols {
		out[i] = NewSymbolInfo(s)
	}
	return out
}
