package parser

import (
	"errors"
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"

	"github.com/standardbeagle/lri/internal/debug"
	"github.com/standardbeagle/lri/internal/types"
)

// ErrParserUnavailable means the Ruby grammar could not be loaded into a parser
var ErrParserUnavailable = errors.New("ruby parser unavailable")

// RubyParser wraps a tree-sitter parser configured for Ruby.
// A RubyParser is not safe for concurrent use; take one from the pool per goroutine.
type RubyParser struct {
	parser *tree_sitter.Parser
}

var (
	rubyLanguage     *tree_sitter.Language
	rubyLanguageOnce sync.Once
)

func language() *tree_sitter.Language {
	rubyLanguageOnce.Do(func() {
		rubyLanguage = tree_sitter.NewLanguage(tree_sitter_ruby.Language())
	})
	return rubyLanguage
}

// NewRubyParser creates a parser with the Ruby grammar loaded
func NewRubyParser() (*RubyParser, error) {
	p := tree_sitter.NewParser()
	if err := p.SetLanguage(language()); err != nil {
		p.Close()
		return nil, fmt.Errorf("%w: %v", ErrParserUnavailable, err)
	}
	return &RubyParser{parser: p}, nil
}

// Parse builds a syntax tree. Malformed input still yields a best-effort tree;
// the caller owns the tree and must Close it.
func (p *RubyParser) Parse(content []byte) (*tree_sitter.Tree, error) {
	tree := p.parser.Parse(content, nil)
	if tree == nil {
		return nil, ErrParserUnavailable
	}
	return tree, nil
}

// Close releases the underlying parser
func (p *RubyParser) Close() {
	if p != nil && p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
}

// parserPool holds ready Ruby parsers, one per concurrent user
var parserPool = sync.Pool{
	New: func() any {
		p, err := NewRubyParser()
		if err != nil {
			debug.LogIndexing("failed to create ruby parser: %v\n", err)
			return nil
		}
		return p
	},
}

// getParser returns a pooled parser
func getParser() (*RubyParser, error) {
	p, _ := parserPool.Get().(*RubyParser)
	if p == nil {
		return nil, ErrParserUnavailable
	}
	return p, nil
}

// releaseParser returns a parser to the pool
func releaseParser(p *RubyParser) {
	if p != nil {
		parserPool.Put(p)
	}
}

// Parse parses Ruby source with a pooled parser
func Parse(content []byte) (*tree_sitter.Tree, error) {
	p, err := getParser()
	if err != nil {
		return nil, err
	}
	defer releaseParser(p)
	return p.Parse(content)
}

// Text returns the source text of n
func Text(n *tree_sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(source)
}

// Kind classifies n; a nil node is NodeKindUnknown
func Kind(n *tree_sitter.Node) NodeKind {
	if n == nil {
		return NodeKindUnknown
	}
	return ClassifyKind(n.Kind())
}

// Child returns the child reached through field, or nil
func Child(n *tree_sitter.Node, field FieldName) *tree_sitter.Node {
	if n == nil {
		return nil
	}
	return n.ChildByFieldName(string(field))
}

// NamedChildren returns the named children of n in order
func NamedChildren(n *tree_sitter.Node) []*tree_sitter.Node {
	if n == nil {
		return nil
	}
	count := n.NamedChildCount()
	out := make([]*tree_sitter.Node, 0, count)
	for i := uint(0); i < count; i++ {
		if c := n.NamedChild(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// SameNode compares nodes by identity
func SameNode(a, b *tree_sitter.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Id() == b.Id()
}

// Start returns the zero-based start of n
func Start(n *tree_sitter.Node) types.Position {
	return FromPoint(n.StartPosition())
}

// End returns the zero-based end of n
func End(n *tree_sitter.Node) types.Position {
	return FromPoint(n.EndPosition())
}

// FromPoint converts a tree-sitter point
func FromPoint(p tree_sitter.Point) types.Position {
	return types.Position{Line: int(p.Row), Column: int(p.Column)}
}

// ToPoint converts a position to a tree-sitter point. Negative values clamp to zero.
func ToPoint(p types.Position) tree_sitter.Point {
	return tree_sitter.Point{Row: uint(max(p.Line, 0)), Column: uint(max(p.Column, 0))}
}

// Contains reports whether n's range contains the descendant d's range
func Contains(n, d *tree_sitter.Node) bool {
	return n.StartByte() <= d.StartByte() && d.EndByte() <= n.EndByte()
}
