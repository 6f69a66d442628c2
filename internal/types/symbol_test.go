package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolKindString(t *testing.T) {
	tests := []struct {
		kind SymbolKind
		want string
	}{
		{SymbolKindClass, "class"},
		{SymbolKindModule, "module"},
		{SymbolKindInstanceMethod, "instance_method"},
		{SymbolKindSingletonMethod, "singleton_method"},
		{SymbolKindConstant, "constant"},
		{SymbolKindVariable, "variable"},
		{SymbolKindInstanceVariable, "instance_variable"},
		{SymbolKindClassVariable, "class_variable"},
		{SymbolKindGlobalVariable, "global_variable"},
		{SymbolKind(200), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}

	assert.True(t, SymbolKindModule.IsClasslike())
	assert.False(t, SymbolKindConstant.IsClasslike())
	assert.True(t, SymbolKindSingletonMethod.IsMethod())
}

func TestSymbolDisplayName(t *testing.T) {
	class := &Symbol{Kind: SymbolKindClass, Name: "B", Scope: NewScope("A")}
	tests := []struct {
		name   string
		symbol *Symbol
		want   string
	}{
		{"class", class, "A::B"},
		{"top level", &Symbol{Kind: SymbolKindModule, Name: "A"}, "A"},
		{"instance method", &Symbol{Kind: SymbolKindInstanceMethod, Name: "foo", Scope: NewScope("A", "B")}, "A::B#foo"},
		{"singleton method", &Symbol{Kind: SymbolKindSingletonMethod, Name: "bar", Scope: NewScope("A", "B")}, "A::B.bar"},
		{"constant", &Symbol{Kind: SymbolKindConstant, Name: "X", Scope: NewScope("A")}, "A::X"},
		{"global", &Symbol{Kind: SymbolKindGlobalVariable, Name: "$stdout"}, "$stdout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.symbol.DisplayName())
		})
	}
	assert.Equal(t, "A::B::C", (&Symbol{Name: "C", Scope: class.QualifiedName()}).QualifiedName().String())
}

func TestSymbolDetail(t *testing.T) {
	method := &Symbol{
		Kind: SymbolKindInstanceMethod,
		Name: "call",
		Detail: MethodDetail{Parameters: []Parameter{
			{Kind: ParameterRegular, Name: "x"},
			{Kind: ParameterKeyword, Name: "strict"},
		}},
	}
	p, ok := method.Parameter("strict")
	require.True(t, ok)
	assert.Equal(t, ParameterKeyword, p.Kind)
	_, ok = method.Parameter("missing")
	assert.False(t, ok)

	class := &Symbol{Kind: SymbolKindClass, Name: "Z", Detail: ClasslikeDetail{Superclass: NewScope("X", "Y")}}
	super, ok := class.Superclass()
	require.True(t, ok)
	assert.Equal(t, "X::Y", super.String())
	assert.Nil(t, class.Parameters())

	_, ok = (&Symbol{Kind: SymbolKindClass, Detail: ClasslikeDetail{}}).Superclass()
	assert.False(t, ok)
}

func TestSymbolContains(t *testing.T) {
	s := &Symbol{Start: NewPosition(1, 4), End: NewPosition(5, 3)}
	assert.True(t, s.Contains(NewPosition(2, 0), NewPosition(2, 5)))
	assert.False(t, s.Contains(NewPosition(1, 4), NewPosition(1, 8)), "range must be strictly inside")
	assert.False(t, s.Contains(NewPosition(6, 0), NewPosition(6, 1)))
}

func TestSymbolTable(t *testing.T) {
	a1 := &Symbol{Kind: SymbolKindClass, Name: "A", File: "/p/a.rb"}
	b1 := &Symbol{Kind: SymbolKindClass, Name: "B", File: "/p/b.rb"}
	a2 := &Symbol{Kind: SymbolKindConstant, Name: "X", File: "/p/a.rb"}

	table := NewSymbolTable([]*Symbol{a1, b1, a2}, "/p")
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []*Symbol{a1, a2}, table.InFile("/p/a.rb"))
	assert.Equal(t, []string{"/p/a.rb", "/p/b.rb"}, table.Files())
	assert.Empty(t, table.InFile("/p/none.rb"))

	var union int
	for _, f := range table.Files() {
		union += len(table.InFile(f))
	}
	assert.Equal(t, table.Len(), union)

	counts := table.CountByKind()
	assert.Equal(t, 2, counts[SymbolKindClass])
	assert.Equal(t, 1, counts[SymbolKindConstant])

	var nilTable *SymbolTable
	assert.Equal(t, 0, nilTable.Len())
	assert.Nil(t, nilTable.All())
}

func TestSymbolInDir(t *testing.T) {
	s := &Symbol{File: "/proj/lib/a.rb"}
	assert.True(t, s.InDir("/proj"))
	assert.True(t, s.InDir("/proj/"))
	assert.False(t, s.InDir("/pro"))
	assert.False(t, s.InDir(""))
}
