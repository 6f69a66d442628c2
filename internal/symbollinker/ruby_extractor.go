package symbollinker

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lri/internal/debug"
	lrierrors "github.com/standardbeagle/lri/internal/errors"
	"github.com/standardbeagle/lri/internal/parser"
	"github.com/standardbeagle/lri/internal/types"
)

// attributeGenerators are the declarative calls that define an accessor named by their first argument
var attributeGenerators = map[string]bool{
	"attr_accessor": true,
	"attr_reader":   true,
	"attr_writer":   true,
	"delegate":      true,
	"belongs_to":    true,
	"has_one":       true,
	"has_many":      true,
}

// RubyExtractor turns a Ruby syntax tree into a flat list of symbols
type RubyExtractor struct {
	*BaseExtractor
}

// NewRubyExtractor creates a new Ruby symbol extractor
func NewRubyExtractor() *RubyExtractor {
	return &RubyExtractor{
		BaseExtractor: NewBaseExtractor("ruby", types.RubyExtensions),
	}
}

// ExtractSymbols walks the top-level statements of the file. Nested symbols come before
// the class or module that encloses them.
func (re *RubyExtractor) ExtractSymbols(file string, content []byte, tree *sitter.Tree) ([]*types.Symbol, error) {
	if tree == nil {
		return nil, lrierrors.NewParseError(file, 0, 0, "", fmt.Errorf("%w: syntax tree", lrierrors.ErrMissingNode))
	}

	b := &rubyBuilder{file: file, src: content}
	var symbols []*types.Symbol
	for _, node := range parser.NamedChildren(tree.RootNode()) {
		found, err := b.visit(node, nil)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, found...)
	}
	return symbols, nil
}

// rubyBuilder holds the per-file state of one extraction
type rubyBuilder struct {
	file string
	src  []byte
}

func (b *rubyBuilder) visit(node *sitter.Node, parent *types.Symbol) ([]*types.Symbol, error) {
	switch parser.Kind(node) {
	case parser.NodeKindClass, parser.NodeKindModule:
		return b.classlike(node, parent)
	case parser.NodeKindMethod:
		return b.method(node, parent, types.SymbolKindInstanceMethod)
	case parser.NodeKindSingletonMethod:
		return b.method(node, parent, types.SymbolKindSingletonMethod)
	case parser.NodeKindSingletonClass:
		return b.singletonClass(node, parent)
	case parser.NodeKindAssignment:
		return b.assignment(node, parent)
	case parser.NodeKindCall:
		return b.call(node, parent), nil
	default:
		return nil, nil
	}
}

func (b *rubyBuilder) missing(node *sitter.Node, field parser.FieldName) error {
	pos := parser.Start(node)
	return lrierrors.NewParseError(b.file, pos.Line, pos.Column, node.Kind(),
		fmt.Errorf("%w: %s has no %s", lrierrors.ErrMissingNode, node.Kind(), field))
}

func (b *rubyBuilder) classlike(node *sitter.Node, parent *types.Symbol) ([]*types.Symbol, error) {
	nameNode := parser.Child(node, parser.FieldNameName)
	if nameNode == nil {
		return nil, b.missing(node, parser.FieldNameName)
	}

	full := FullAndContextScope(nameNode, b.src).Relative()
	if full.IsEmpty() {
		debug.LogIndexing("skipping %s with dynamic name in %s\n", node.Kind(), b.file)
		return nil, nil
	}

	kind := types.SymbolKindModule
	if parser.Kind(node) == parser.NodeKindClass {
		kind = types.SymbolKindClass
	}

	var superclass types.Scope
	if sc := parser.Child(node, parser.FieldNameSuperclass); sc != nil {
		if target := superclassTarget(sc); target != nil {
			superclass = FullAndContextScope(target, b.src).Relative()
		}
	}

	symbol := &types.Symbol{
		Kind:   kind,
		Name:   full.Last(),
		Scope:  full.WithoutLast(),
		File:   b.file,
		Start:  parser.Start(nameNode),
		End:    parser.End(node),
		Parent: parent,
		Detail: types.ClasslikeDetail{Superclass: superclass},
	}

	var symbols []*types.Symbol
	for _, child := range parser.NamedChildren(parser.Child(node, parser.FieldNameBody)) {
		found, err := b.visit(child, symbol)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, found...)
	}

	return append(symbols, symbol), nil
}

// superclassTarget returns the constant path a superclass clause names, or nil for
// expressions such as Struct.new(...)
func superclassTarget(superclass *sitter.Node) *sitter.Node {
	for _, child := range parser.NamedChildren(superclass) {
		switch parser.Kind(child) {
		case parser.NodeKindConstant, parser.NodeKindScopeResolution:
			return child
		}
	}
	return nil
}

// singletonClass handles class << self. Methods defined in its body belong to the
// enclosing class as singleton methods.
func (b *rubyBuilder) singletonClass(node *sitter.Node, parent *types.Symbol) ([]*types.Symbol, error) {
	var symbols []*types.Symbol
	for _, child := range parser.NamedChildren(parser.Child(node, parser.FieldNameBody)) {
		var (
			found []*types.Symbol
			err   error
		)
		if parser.Kind(child) == parser.NodeKindMethod {
			found, err = b.method(child, parent, types.SymbolKindSingletonMethod)
		} else {
			found, err = b.visit(child, parent)
		}
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, found...)
	}
	return symbols, nil
}

func (b *rubyBuilder) method(node *sitter.Node, parent *types.Symbol, kind types.SymbolKind) ([]*types.Symbol, error) {
	nameNode := parser.Child(node, parser.FieldNameName)
	if nameNode == nil {
		return nil, b.missing(node, parser.FieldNameName)
	}

	symbol := &types.Symbol{
		Kind:   kind,
		Name:   parser.Text(nameNode, b.src),
		Scope:  namespaceOf(parent),
		File:   b.file,
		Start:  parser.Start(nameNode),
		End:    parser.End(node),
		Parent: parent,
		Detail: types.MethodDetail{Parameters: b.parameters(parser.Child(node, parser.FieldNameParameters))},
	}
	return []*types.Symbol{symbol}, nil
}

// namespaceOf is the scope members of parent live in. Only classes and modules open a namespace.
func namespaceOf(parent *types.Symbol) types.Scope {
	if parent == nil || !parent.Kind.IsClasslike() {
		return types.Scope{}
	}
	return parent.QualifiedName()
}

func (b *rubyBuilder) parameters(list *sitter.Node) []types.Parameter {
	var params []types.Parameter
	for _, param := range parser.NamedChildren(list) {
		var (
			kind     types.ParameterKind
			nameNode *sitter.Node
		)
		switch parser.Kind(param) {
		case parser.NodeKindIdentifier:
			kind, nameNode = types.ParameterRegular, param
		case parser.NodeKindOptionalParameter:
			kind, nameNode = types.ParameterOptional, parser.Child(param, parser.FieldNameName)
		case parser.NodeKindKeywordParameter:
			kind, nameNode = types.ParameterKeyword, parser.Child(param, parser.FieldNameName)
		case parser.NodeKindSplatParameter, parser.NodeKindHashSplatParameter, parser.NodeKindBlockParameter:
			// anonymous forms such as a bare * have no name
			kind, nameNode = types.ParameterRegular, parser.Child(param, parser.FieldNameName)
		default:
			debug.LogIndexing("unhandled parameter kind %s in %s\n", param.Kind(), b.file)
		}
		if nameNode == nil {
			continue
		}
		params = append(params, types.Parameter{
			Kind:  kind,
			Name:  parser.Text(nameNode, b.src),
			Start: parser.Start(nameNode),
			End:   parser.End(nameNode),
		})
	}
	return params
}

func (b *rubyBuilder) assignment(node *sitter.Node, parent *types.Symbol) ([]*types.Symbol, error) {
	lhs := parser.Child(node, parser.FieldNameLeft)
	if lhs == nil {
		return nil, b.missing(node, parser.FieldNameLeft)
	}

	switch parser.Kind(lhs) {
	case parser.NodeKindConstant:
		return []*types.Symbol{b.constant(lhs, parent)}, nil

	case parser.NodeKindLeftAssignmentList:
		var symbols []*types.Symbol
		for _, target := range parser.NamedChildren(lhs) {
			switch parser.Kind(target) {
			case parser.NodeKindConstant:
				symbols = append(symbols, b.constant(target, parent))
			case parser.NodeKindRestAssignment:
				if c := FindChildByKind(target, parser.NodeKindConstant); c != nil {
					symbols = append(symbols, b.constant(c, parent))
				}
			}
		}
		return symbols, nil

	case parser.NodeKindGlobalVariable:
		return []*types.Symbol{{
			Kind:   types.SymbolKindGlobalVariable,
			Name:   parser.Text(lhs, b.src),
			File:   b.file,
			Start:  parser.Start(lhs),
			End:    parser.End(lhs),
			Parent: parent,
		}}, nil

	default:
		// instance and class variables, locals, A::B = and attribute writers are not indexed
		return nil, nil
	}
}

func (b *rubyBuilder) constant(node *sitter.Node, parent *types.Symbol) *types.Symbol {
	return &types.Symbol{
		Kind:   types.SymbolKindConstant,
		Name:   parser.Text(node, b.src),
		Scope:  namespaceOf(parent),
		File:   b.file,
		Start:  parser.Start(node),
		End:    parser.End(node),
		Parent: parent,
	}
}

func (b *rubyBuilder) call(node *sitter.Node, parent *types.Symbol) []*types.Symbol {
	method := parser.Text(parser.Child(node, parser.FieldNameMethod), b.src)
	if !attributeGenerators[method] {
		return nil
	}

	args := parser.Child(node, parser.FieldNameArguments)
	if args == nil || args.NamedChildCount() == 0 {
		return nil
	}
	name, start, end, ok := b.attributeName(args.NamedChild(0))
	if !ok {
		return nil
	}

	return []*types.Symbol{{
		Kind:   types.SymbolKindInstanceVariable,
		Name:   name,
		Scope:  namespaceOf(parent),
		File:   b.file,
		Start:  start,
		End:    end,
		Parent: parent,
	}}
}

// attributeName reads the accessor name from a :symbol or a plain "string" argument.
// Splats, hash pairs, interpolated strings and other expressions name nothing.
func (b *rubyBuilder) attributeName(arg *sitter.Node) (name string, start, end types.Position, ok bool) {
	switch parser.Kind(arg) {
	case parser.NodeKindSimpleSymbol:
		start = parser.Start(arg)
		start.Column++ // leading colon
		name = strings.TrimPrefix(parser.Text(arg, b.src), ":")
		return name, start, parser.End(arg), name != ""

	case parser.NodeKindString:
		parts := parser.NamedChildren(arg)
		if len(parts) != 1 || parser.Kind(parts[0]) != parser.NodeKindStringContent {
			return "", start, end, false
		}
		name = parser.Text(parts[0], b.src)
		return name, parser.Start(parts[0]), parser.End(parts[0]), name != ""
	}
	return "", start, end, false
}
