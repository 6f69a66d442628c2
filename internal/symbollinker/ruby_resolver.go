package symbollinker

import (
	"bytes"
	"os"
	"slices"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lri/internal/debug"
	lrierrors "github.com/standardbeagle/lri/internal/errors"
	"github.com/standardbeagle/lri/internal/parser"
	"github.com/standardbeagle/lri/internal/types"
)

// maxAncestorDepth bounds superclass walks so a cyclic hierarchy cannot loop
const maxAncestorDepth = 32

// RubyResolver answers go-to-definition queries against a completed symbol table.
// It is safe for concurrent use; every query parses its file independently.
type RubyResolver struct {
	table       *types.SymbolTable
	projectRoot string
	converter   ScopeConverter
	extractor   *RubyExtractor
}

// NewRubyResolver creates a resolver. converter may be nil, in which case constant lookup
// skips the autoload candidate.
func NewRubyResolver(table *types.SymbolTable, projectRoot string, converter ScopeConverter) *RubyResolver {
	return &RubyResolver{
		table:       table,
		projectRoot: projectRoot,
		converter:   converter,
		extractor:   NewRubyExtractor(),
	}
}

// FindDefinition reads file from disk and resolves the symbol under pos
func (r *RubyResolver) FindDefinition(file string, pos types.Position) ([]*types.Symbol, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, lrierrors.NewFileError("read", file, err)
	}
	return r.FindDefinitionInSource(file, content, pos)
}

// FindDefinitionInSource resolves the symbol under pos in content, which is the current text of file.
// An empty result means nothing matched; a node that cannot have a definition is an error
// wrapping ErrUnsupportedNodeKind.
func (r *RubyResolver) FindDefinitionInSource(file string, content []byte, pos types.Position) ([]*types.Symbol, error) {
	if !inBounds(content, pos) {
		return nil, lrierrors.NewResolutionError(file, pos.Line, pos.Column, lrierrors.ErrPositionOutOfRange)
	}

	tree, err := parser.Parse(content)
	if err != nil {
		return nil, lrierrors.NewParseError(file, pos.Line, pos.Column, "", err)
	}
	defer tree.Close()

	point := parser.ToPoint(pos)
	node := tree.RootNode().DescendantForPointRange(point, point)
	if node == nil {
		return nil, lrierrors.NewResolutionError(file, pos.Line, pos.Column, lrierrors.ErrPositionOutOfRange)
	}

	q := &query{
		resolver: r,
		file:     file,
		src:      content,
		local:    r.freshSymbols(file, content, tree),
	}

	switch parser.Kind(node) {
	case parser.NodeKindConstant:
		return q.constant(node), nil
	case parser.NodeKindIdentifier:
		return q.identifier(node), nil
	case parser.NodeKindGlobalVariable:
		return q.globalVariable(node), nil
	default:
		return nil, lrierrors.NewResolutionError(file, pos.Line, pos.Column, lrierrors.ErrUnsupportedNodeKind).
			WithNodeKind(node.Kind())
	}
}

// freshSymbols rebuilds the current file's symbols so queries see unsaved or unindexed edits.
// On failure the indexed symbols for the file are used instead.
func (r *RubyResolver) freshSymbols(file string, content []byte, tree *sitter.Tree) []*types.Symbol {
	symbols, err := r.extractor.ExtractSymbols(file, content, tree)
	if err != nil {
		debug.LogResolve("rebuild of %s failed, using indexed symbols: %v\n", file, err)
		return r.table.InFile(file)
	}
	return symbols
}

func inBounds(content []byte, pos types.Position) bool {
	if pos.Line < 0 || pos.Column < 0 {
		return false
	}
	lines := bytes.Split(content, []byte("\n"))
	if pos.Line >= len(lines) {
		return false
	}
	return pos.Column <= len(lines[pos.Line])
}

// query is one find-definition request. The current file's symbols replace the indexed ones.
type query struct {
	resolver *RubyResolver
	file     string
	src      []byte
	local    []*types.Symbol
}

// filter visits indexed symbols from other files, then the current file's symbols
func (q *query) filter(keep func(*types.Symbol) bool) []*types.Symbol {
	var out []*types.Symbol
	for _, s := range q.resolver.table.All() {
		if s.File != q.file && keep(s) {
			out = append(out, s)
		}
	}
	for _, s := range q.local {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

func isConstantLike(s *types.Symbol) bool {
	return s.Kind.IsClasslike() || s.Kind == types.SymbolKindConstant
}

func (q *query) constant(node *sitter.Node) []*types.Symbol {
	referenced := ParentScopeResolution(node, q.src)
	if referenced.IsEmpty() {
		return nil
	}
	debug.LogResolve("resolving constant %s in %s\n", referenced, q.file)

	if referenced.IsGlobal() {
		return q.filter(func(s *types.Symbol) bool {
			return isConstantLike(s) && s.QualifiedName().Equal(referenced)
		})
	}
	return q.lookupConstant(node, referenced)
}

// lookupConstant collects, in order: the innermost lexical nesting that defines the name,
// the autoload scope of the file, and a literal match within the same file. Only if all of
// those are empty does it fall back to a project-wide match.
func (q *query) lookupConstant(node *sitter.Node, referenced types.Scope) []*types.Symbol {
	var found []*types.Symbol
	seen := make(map[*types.Symbol]bool)
	collect := func(symbols []*types.Symbol) {
		for _, s := range symbols {
			if !seen[s] {
				seen[s] = true
				found = append(found, s)
			}
		}
	}

	for _, level := range ModuleNesting(node, q.src) {
		candidate := level.Join(referenced)
		matches := q.filter(func(s *types.Symbol) bool {
			return isConstantLike(s) && s.QualifiedName().Equal(candidate)
		})
		if len(matches) > 0 {
			collect(matches)
			break
		}
	}

	if fileScope, ok := q.fileScope(); ok {
		candidate := fileScope.Join(referenced)
		collect(q.filter(func(s *types.Symbol) bool {
			return isConstantLike(s) && s.QualifiedName().Equal(candidate)
		}))
	}

	collect(q.filter(func(s *types.Symbol) bool {
		return isConstantLike(s) && s.File == q.file && s.QualifiedName().Equal(referenced)
	}))

	if len(found) > 0 {
		return found
	}

	debug.LogResolve("no lexical match for %s, searching globally\n", referenced)
	if global := q.filter(func(s *types.Symbol) bool {
		return isConstantLike(s) && s.QualifiedName().Equal(referenced)
	}); len(global) > 0 {
		return global
	}

	return q.suffixMatch(referenced)
}

// fileScope is the autoload namespace of the current file without its own last segment.
// An empty namespace adds nothing over the global lookup and is reported as absent.
func (q *query) fileScope() (types.Scope, bool) {
	if q.resolver.converter == nil {
		return types.Scope{}, false
	}
	scope, err := q.resolver.converter.PathToScope(q.file)
	if err != nil {
		debug.LogResolve("no autoload scope for %s: %v\n", q.file, err)
		return types.Scope{}, false
	}
	scope = scope.WithoutLast()
	return scope, !scope.IsEmpty()
}

// suffixMatch finds constants whose qualified name ends with referenced, project symbols first
func (q *query) suffixMatch(referenced types.Scope) []*types.Symbol {
	want := referenced.Names()
	matches := q.filter(func(s *types.Symbol) bool {
		if !isConstantLike(s) {
			return false
		}
		names := s.QualifiedName().Names()
		return len(names) > len(want) && slices.Equal(names[len(names)-len(want):], want)
	})
	return q.resolver.rootFirst(matches)
}

func (q *query) globalVariable(node *sitter.Node) []*types.Symbol {
	name := parser.Text(node, q.src)
	return q.filter(func(s *types.Symbol) bool {
		return s.Kind == types.SymbolKindGlobalVariable && s.Name == name
	})
}

func (q *query) identifier(node *sitter.Node) []*types.Symbol {
	name := parser.Text(node, q.src)
	owner := q.enclosingSymbol(parser.Start(node), parser.End(node))
	if owner == nil {
		debug.LogResolve("no enclosing definition for %s in %s\n", name, q.file)
		return nil
	}
	if !owner.Kind.IsMethod() {
		// locals directly in a class or module body are not tracked
		return nil
	}

	if lhs := localAssignment(node, name, q.src); lhs != nil {
		return []*types.Symbol{q.variable(owner, name, parser.Start(lhs), parser.End(lhs))}
	}

	if param, ok := owner.Parameter(name); ok {
		return []*types.Symbol{q.variable(owner, name, param.Start, param.End)}
	}

	singleton := owner.Kind == types.SymbolKindSingletonMethod
	if call := node.Parent(); parser.Kind(call) == parser.NodeKindCall &&
		parser.SameNode(parser.Child(call, parser.FieldNameMethod), node) {
		return q.call(call, name, owner, singleton)
	}

	if singleton {
		return q.inNamespace(owner.Scope, name, types.SymbolKindClassVariable, types.SymbolKindSingletonMethod)
	}
	return q.inNamespace(owner.Scope, name, types.SymbolKindInstanceVariable, types.SymbolKindInstanceMethod)
}

func (q *query) variable(owner *types.Symbol, name string, start, end types.Position) *types.Symbol {
	return &types.Symbol{
		Kind:   types.SymbolKindVariable,
		Name:   name,
		Scope:  owner.Scope,
		File:   q.file,
		Start:  start,
		End:    end,
		Parent: owner,
	}
}

// enclosingSymbol returns the smallest method, class or module in the current file
// that strictly contains [start, end)
func (q *query) enclosingSymbol(start, end types.Position) *types.Symbol {
	var best *types.Symbol
	for _, s := range q.local {
		if !s.Kind.IsMethod() && !s.Kind.IsClasslike() {
			continue
		}
		if !s.Contains(start, end) {
			continue
		}
		if best == nil || narrower(s, best) {
			best = s
		}
	}
	return best
}

// narrower orders symbols by line span, then column span
func narrower(a, b *types.Symbol) bool {
	al, bl := a.End.Line-a.Start.Line, b.End.Line-b.Start.Line
	if al != bl {
		return al < bl
	}
	return a.End.Column-a.Start.Column < b.End.Column-b.Start.Column
}

// localAssignment finds the closest assignment to name that starts before ref inside the
// method enclosing ref. It returns the assigned identifier node.
func localAssignment(ref *sitter.Node, name string, src []byte) *sitter.Node {
	method := ref.Parent()
	for method != nil && !parser.Kind(method).IsMethod() {
		method = method.Parent()
	}
	if method == nil {
		return nil
	}

	refStart := parser.Start(ref)
	var best *sitter.Node
	consider := func(target *sitter.Node) {
		if parser.Kind(target) != parser.NodeKindIdentifier || parser.Text(target, src) != name {
			return
		}
		start := parser.Start(target)
		if !start.Before(refStart) {
			return
		}
		if best == nil || parser.Start(best).Before(start) {
			best = target
		}
	}

	NewASTTraversal(func(n *sitter.Node, depth int) bool {
		kind := parser.Kind(n)
		if depth > 0 && kind.IsMethod() {
			return false
		}
		if kind != parser.NodeKindAssignment && kind != parser.NodeKindOperatorAssignment {
			return true
		}

		lhs := parser.Child(n, parser.FieldNameLeft)
		if parser.Kind(lhs) == parser.NodeKindLeftAssignmentList {
			for _, target := range parser.NamedChildren(lhs) {
				if parser.Kind(target) == parser.NodeKindRestAssignment {
					target = FindChildByKind(target, parser.NodeKindIdentifier)
				}
				if target != nil {
					consider(target)
				}
			}
		} else if lhs != nil {
			consider(lhs)
		}
		return true
	}).Traverse(method, 0)

	return best
}

// call resolves the method name of a call expression according to its receiver
func (q *query) call(call *sitter.Node, name string, owner *types.Symbol, singleton bool) []*types.Symbol {
	receiver := parser.Child(call, parser.FieldNameReceiver)

	switch {
	case receiver == nil || parser.Kind(receiver) == parser.NodeKindSelf:
		kind := types.SymbolKindInstanceMethod
		if singleton {
			kind = types.SymbolKindSingletonMethod
		}
		return q.inNamespace(owner.Scope, name, kind)

	case parser.Kind(receiver) == parser.NodeKindConstant || parser.Kind(receiver) == parser.NodeKindScopeResolution:
		var found []*types.Symbol
		for _, target := range q.constant(constantOf(receiver)) {
			if !target.Kind.IsClasslike() {
				continue
			}
			found = append(found, q.inNamespace(target.QualifiedName(), name, types.SymbolKindSingletonMethod)...)
		}
		if len(found) > 0 {
			return found
		}
		debug.LogResolve("receiver %s does not define .%s, searching globally\n", parser.Text(receiver, q.src), name)
		return q.resolver.rootFirst(q.filter(func(s *types.Symbol) bool {
			return s.Kind == types.SymbolKindSingletonMethod && s.Name == name
		}))

	default:
		debug.LogResolve("receiver kind %s is not tracked, searching methods named %s\n", receiver.Kind(), name)
		return q.resolver.rootFirst(q.filter(func(s *types.Symbol) bool {
			return s.Kind.IsMethod() && s.Name == name
		}))
	}
}

// inNamespace searches scope, then its superclasses, then the top level, for a member
// named name of one of kinds. The first level with a match wins.
func (q *query) inNamespace(scope types.Scope, name string, kinds ...types.SymbolKind) []*types.Symbol {
	for _, ns := range q.ancestors(scope) {
		matches := q.filter(func(s *types.Symbol) bool {
			return s.Name == name && slices.Contains(kinds, s.Kind) && s.Scope.Equal(ns)
		})
		if len(matches) > 0 {
			return matches
		}
	}
	return nil
}

// ancestors lists scope followed by its recorded superclass chain and finally the top level
func (q *query) ancestors(scope types.Scope) []types.Scope {
	chain := []types.Scope{scope}
	visited := map[string]bool{scope.String(): true}

	current := scope
	for depth := 0; depth < maxAncestorDepth && !current.IsEmpty(); depth++ {
		var parent types.Scope
		found := false
		for _, s := range q.filter(func(s *types.Symbol) bool {
			return s.Kind == types.SymbolKindClass && s.QualifiedName().Equal(current)
		}) {
			if sc, ok := s.Superclass(); ok {
				parent, found = q.resolveSuperclass(sc), true
				break
			}
		}
		if !found || visited[parent.String()] {
			break
		}
		visited[parent.String()] = true
		chain = append(chain, parent)
		current = parent
	}

	if !visited[""] {
		chain = append(chain, types.Scope{})
	}
	return chain
}

// resolveSuperclass finds the classlike a recorded superclass refers to. The recording
// carries the full lexical nesting, so outer levels are dropped until a definition exists.
func (q *query) resolveSuperclass(recorded types.Scope) types.Scope {
	names := recorded.Names()
	for i := 0; i < len(names); i++ {
		candidate := types.NewScope(names[i:]...)
		if len(q.filter(func(s *types.Symbol) bool {
			return s.Kind.IsClasslike() && s.QualifiedName().Equal(candidate)
		})) > 0 {
			return candidate
		}
	}
	return recorded
}

// rootFirst stably moves symbols under the project root ahead of the rest
func (r *RubyResolver) rootFirst(symbols []*types.Symbol) []*types.Symbol {
	slices.SortStableFunc(symbols, func(a, b *types.Symbol) int {
		ai, bi := a.InDir(r.projectRoot), b.InDir(r.projectRoot)
		switch {
		case ai == bi:
			return 0
		case ai:
			return -1
		default:
			return 1
		}
	})
	return symbols
}
