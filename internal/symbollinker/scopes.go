package symbollinker

import (
	"slices"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lri/internal/debug"
	"github.com/standardbeagle/lri/internal/parser"
	"github.com/standardbeagle/lri/internal/types"
)

// constantOf returns the constant a scope_resolution names, or node itself
func constantOf(node *sitter.Node) *sitter.Node {
	if parser.Kind(node) == parser.NodeKindScopeResolution {
		return parser.Child(node, parser.FieldNameName)
	}
	return node
}

// ParentScopeResolution returns the constant together with every qualifier to its left.
// For B in A::B::C it returns A::B; for ::G::S it returns the absolute scope G::S.
// A dynamic qualifier such as @klass::Foo yields an empty scope.
func ParentScopeResolution(node *sitter.Node, src []byte) types.Scope {
	node = constantOf(node)
	if parser.Kind(node) != parser.NodeKindConstant {
		return types.Scope{}
	}

	parent := node.Parent()
	if parser.Kind(parent) != parser.NodeKindScopeResolution {
		return types.NewScope(parser.Text(node, src))
	}

	qualifier := parser.Child(parent, parser.FieldNameScope)
	if parser.SameNode(qualifier, node) {
		// leftmost constant, e.g. A in A::B::C
		return types.NewScope(parser.Text(node, src))
	}

	segments := []string{parser.Text(node, src)}
	if qualifier == nil {
		segments = append(segments, types.GlobalScopeSegment)
	}
	for qualifier != nil {
		switch parser.Kind(qualifier) {
		case parser.NodeKindScopeResolution:
			segments = append(segments, parser.Text(parser.Child(qualifier, parser.FieldNameName), src))
			next := parser.Child(qualifier, parser.FieldNameScope)
			if next == nil {
				segments = append(segments, types.GlobalScopeSegment)
			}
			qualifier = next
		case parser.NodeKindConstant:
			segments = append(segments, parser.Text(qualifier, src))
			qualifier = nil
		default:
			debug.LogResolve("dynamic qualifier %s before %s, giving up\n", qualifier.Kind(), parser.Text(node, src))
			return types.Scope{}
		}
	}

	slices.Reverse(segments)
	return types.NewScope(segments...)
}

// ChildScopeResolution returns the constant together with every segment to its right.
// For B in A::B::C it returns B::C.
func ChildScopeResolution(node *sitter.Node, src []byte) types.Scope {
	node = constantOf(node)
	if parser.Kind(node) != parser.NodeKindConstant {
		return types.Scope{}
	}

	parent := node.Parent()
	if parser.Kind(parent) != parser.NodeKindScopeResolution {
		return types.NewScope(parser.Text(node, src))
	}

	var segments []string
	if parser.SameNode(parser.Child(parent, parser.FieldNameScope), node) {
		segments = append(segments, parser.Text(node, src))
	}
	for p := parent; parser.Kind(p) == parser.NodeKindScopeResolution; p = p.Parent() {
		segments = append(segments, parser.Text(parser.Child(p, parser.FieldNameName), src))
	}

	return types.NewScope(segments...)
}

// FullScopeResolution returns the whole qualified path the constant belongs to,
// wherever the constant sits inside it.
func FullScopeResolution(node *sitter.Node, src []byte) types.Scope {
	left := ParentScopeResolution(node, src)
	right := ChildScopeResolution(node, src).Names()
	if len(right) <= 1 {
		return left
	}
	return left.Join(types.NewScope(right[1:]...))
}

// ContextScope returns the full lexical nesting around node.
// A class or module does not count as context for its own name or superclass.
// An absolute class name (class ::Foo) restarts the nesting.
func ContextScope(node *sitter.Node, src []byte) types.Scope {
	levels := ModuleNesting(node, src)
	if len(levels) == 0 {
		return types.Scope{}
	}
	return levels[0]
}

// ModuleNesting returns the qualified name of every enclosing class or module, innermost
// first, the way Module.nesting reports it. class A::B contributes the single level A::B.
func ModuleNesting(node *sitter.Node, src []byte) []types.Scope {
	parent := node.Parent()

skipOwner:
	for parent != nil {
		switch parser.Kind(parent) {
		case parser.NodeKindScopeResolution, parser.NodeKindSuperclass:
			parent = parent.Parent()
		case parser.NodeKindClass, parser.NodeKindModule:
			parent = parent.Parent()
			break skipOwner
		default:
			break skipOwner
		}
	}

	var chain []types.Scope
	for ; parent != nil; parent = parent.Parent() {
		if !parser.Kind(parent).IsClasslike() {
			continue
		}
		name := parser.Child(parent, parser.FieldNameName)
		if name == nil {
			continue
		}
		chain = append(chain, FullScopeResolution(name, src))
	}

	levels := make([]types.Scope, len(chain))
	var nesting types.Scope
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].IsGlobal() {
			nesting = chain[i].Relative()
		} else {
			nesting = nesting.Join(chain[i])
		}
		levels[i] = nesting
	}
	return levels
}

// FullAndContextScope is the context scope joined with the full qualified path.
// Absolute paths ignore the context.
func FullAndContextScope(node *sitter.Node, src []byte) types.Scope {
	full := FullScopeResolution(node, src)
	if full.IsGlobal() {
		return full
	}
	return ContextScope(node, src).Join(full)
}
