package types

import "slices"

// SymbolTable is the result of one index run. It is built once and never mutated;
// re-indexing produces a new table.
type SymbolTable struct {
	symbols []*Symbol
	byFile  map[string][]*Symbol
	files   []string
	roots   []string
}

// NewSymbolTable takes ownership of symbols and derives the per-file index.
// Files appear in the order their first symbol was inserted.
func NewSymbolTable(symbols []*Symbol, roots ...string) *SymbolTable {
	t := &SymbolTable{
		symbols: symbols,
		byFile:  make(map[string][]*Symbol),
		roots:   slices.Clone(roots),
	}
	for _, s := range symbols {
		if _, seen := t.byFile[s.File]; !seen {
			t.files = append(t.files, s.File)
		}
		t.byFile[s.File] = append(t.byFile[s.File], s)
	}
	return t
}

// EmptySymbolTable returns a table with no symbols
func EmptySymbolTable() *SymbolTable {
	return NewSymbolTable(nil)
}

// All returns every symbol in insertion order. Callers must not modify the slice.
func (t *SymbolTable) All() []*Symbol {
	if t == nil {
		return nil
	}
	return t.symbols
}

// InFile returns the symbols defined in file, in insertion order
func (t *SymbolTable) InFile(file string) []*Symbol {
	if t == nil {
		return nil
	}
	return slices.Clone(t.byFile[file])
}

// Files lists every file with at least one symbol
func (t *SymbolTable) Files() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.files)
}

// Roots lists the directories that were indexed, project root last
func (t *SymbolTable) Roots() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.roots)
}

// Len returns the number of symbols
func (t *SymbolTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.symbols)
}

// Filter returns the symbols matching keep, in insertion order
func (t *SymbolTable) Filter(keep func(*Symbol) bool) []*Symbol {
	var out []*Symbol
	for _, s := range t.All() {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// CountByKind tallies symbols per kind
func (t *SymbolTable) CountByKind() map[SymbolKind]int {
	counts := make(map[SymbolKind]int)
	for _, s := range t.All() {
		counts[s.Kind]++
	}
	return counts
}
