package symbollinker

import (
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lri/internal/parser"
	"github.com/standardbeagle/lri/internal/types"
)

// SymbolExtractor turns the syntax tree of one file into symbols
type SymbolExtractor interface {
	// ExtractSymbols flattens the tree of one file into symbols, children before their parent
	ExtractSymbols(file string, content []byte, tree *sitter.Tree) ([]*types.Symbol, error)

	GetLanguage() string

	// Extensions lists the file extensions, with leading dot, the extractor reads
	Extensions() []string
}

// BaseExtractor holds the language name and extensions shared by extractors
type BaseExtractor struct {
	language string
	fileExts []string
}

func NewBaseExtractor(language string, fileExts []string) *BaseExtractor {
	return &BaseExtractor{language: language, fileExts: fileExts}
}

func (b *BaseExtractor) GetLanguage() string {
	return b.language
}

func (b *BaseExtractor) Extensions() []string {
	return b.fileExts
}

// CanHandle matches the file extension exactly
func (b *BaseExtractor) CanHandle(path string) bool {
	return slices.Contains(b.fileExts, filepath.Ext(path))
}

// ASTTraversal walks a tree depth-first with a visitor
type ASTTraversal struct {
	visitFunc func(node *sitter.Node, depth int) bool
}

func NewASTTraversal(visitFunc func(node *sitter.Node, depth int) bool) *ASTTraversal {
	return &ASTTraversal{visitFunc: visitFunc}
}

// Traverse walks the AST depth-first. Returning false from the visitor skips the node's children.
func (at *ASTTraversal) Traverse(node *sitter.Node, depth int) {
	if node == nil {
		return
	}
	if !at.visitFunc(node, depth) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		at.Traverse(node.Child(i), depth+1)
	}
}

// FindChildByKind finds the first named child of the given kind
func FindChildByKind(node *sitter.Node, kind parser.NodeKind) *sitter.Node {
	for _, child := range parser.NamedChildren(node) {
		if parser.Kind(child) == kind {
			return child
		}
	}
	return nil
}

// ExtractorRegistry maps file extensions to extractors
type ExtractorRegistry struct {
	mu    sync.RWMutex
	byExt map[string]SymbolExtractor
}

func NewExtractorRegistry() *ExtractorRegistry {
	return &ExtractorRegistry{byExt: make(map[string]SymbolExtractor)}
}

// DefaultRegistry returns a registry with the Ruby extractor registered
func DefaultRegistry() *ExtractorRegistry {
	r := NewExtractorRegistry()
	r.Register(NewRubyExtractor())
	return r
}

// Register claims every extension of extractor; a later registration wins
func (er *ExtractorRegistry) Register(extractor SymbolExtractor) {
	er.mu.Lock()
	defer er.mu.Unlock()
	for _, ext := range extractor.Extensions() {
		er.byExt[ext] = extractor
	}
}

// GetExtractorForFile selects the extractor by the file's extension
func (er *ExtractorRegistry) GetExtractorForFile(path string) (SymbolExtractor, error) {
	er.mu.RLock()
	defer er.mu.RUnlock()

	ext := filepath.Ext(path)
	if extractor, ok := er.byExt[ext]; ok {
		return extractor, nil
	}
	return nil, fmt.Errorf("no extractor registered for %q files: %s", ext, path)
}
