package symbollinker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lrierrors "github.com/standardbeagle/lri/internal/errors"
	"github.com/standardbeagle/lri/internal/parser"
	"github.com/standardbeagle/lri/internal/types"
)

func extract(t *testing.T, file, src string) []*types.Symbol {
	t.Helper()

	tree, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	defer tree.Close()

	symbols, err := NewRubyExtractor().ExtractSymbols(file, []byte(src), tree)
	require.NoError(t, err)
	return symbols
}

func byDisplayName(symbols []*types.Symbol) map[string]*types.Symbol {
	out := make(map[string]*types.Symbol, len(symbols))
	for _, s := range symbols {
		out[s.DisplayName()] = s
	}
	return out
}

func TestRubyExtractor_NestedDefinitions(t *testing.T) {
	src := `module Shop
  class Cart < Base
    LIMIT = 10

    attr_reader :items
    has_many :line_items

    def add(item, qty = 1, note:)
    end

    def self.build
    end
  end
end
`
	symbols := extract(t, "/p/cart.rb", src)
	byName := byDisplayName(symbols)

	cart := byName["Shop::Cart"]
	require.NotNil(t, cart)
	assert.Equal(t, types.SymbolKindClass, cart.Kind)
	assert.Equal(t, "Cart", cart.Name)
	assert.Equal(t, "Shop", cart.Scope.String())
	assert.Equal(t, types.NewPosition(1, 8), cart.Start)
	assert.Equal(t, types.NewPosition(12, 5), cart.End)

	superclass, ok := cart.Superclass()
	require.True(t, ok)
	assert.Equal(t, "Shop::Base", superclass.String())

	shop := byName["Shop"]
	require.NotNil(t, shop)
	assert.Equal(t, types.SymbolKindModule, shop.Kind)
	assert.Same(t, shop, cart.Parent)

	limit := byName["Shop::Cart::LIMIT"]
	require.NotNil(t, limit)
	assert.Equal(t, types.SymbolKindConstant, limit.Kind)
	assert.Same(t, cart, limit.Parent)
	assert.Equal(t, types.NewPosition(2, 4), limit.Start)
	assert.Equal(t, types.NewPosition(2, 9), limit.End)

	items := byName["Shop::Cart#items"]
	require.NotNil(t, items)
	assert.Equal(t, types.SymbolKindInstanceVariable, items.Kind)
	assert.Equal(t, types.NewPosition(4, 17), items.Start)
	assert.Equal(t, len("items"), items.End.Column-items.Start.Column)
	assert.NotNil(t, byName["Shop::Cart#line_items"])

	add := byName["Shop::Cart#add"]
	require.NotNil(t, add)
	assert.Equal(t, types.SymbolKindInstanceMethod, add.Kind)
	params := add.Parameters()
	require.Len(t, params, 3)
	assert.Equal(t, types.Parameter{Kind: types.ParameterRegular, Name: "item", Start: types.NewPosition(7, 12), End: types.NewPosition(7, 16)}, params[0])
	assert.Equal(t, types.ParameterOptional, params[1].Kind)
	assert.Equal(t, "qty", params[1].Name)
	assert.Equal(t, types.ParameterKeyword, params[2].Kind)
	assert.Equal(t, "note", params[2].Name)

	build := byName["Shop::Cart.build"]
	require.NotNil(t, build)
	assert.Equal(t, types.SymbolKindSingletonMethod, build.Kind)
}

func TestRubyExtractor_AttributeArguments(t *testing.T) {
	src := `module Outer
  class Inner
    attr_accessor *FIELDS
    delegate foo: :bar
    attr_reader "title"
    attr_writer "#{prefix}_name"
    belongs_to owner
    has_one :profile, dependent: :destroy
  end
end
`
	byName := byDisplayName(extract(t, "/p/inner.rb", src))

	var attributes []string
	for name, s := range byName {
		if s.Kind == types.SymbolKindInstanceVariable {
			attributes = append(attributes, name)
		}
	}
	assert.ElementsMatch(t, []string{"Outer::Inner#title", "Outer::Inner#profile"}, attributes)

	title := byName["Outer::Inner#title"]
	require.NotNil(t, title)
	assert.Equal(t, types.NewPosition(4, 17), title.Start)
	assert.Equal(t, types.NewPosition(4, 22), title.End)
}

func TestRubyExtractor_ChildrenBeforeParent(t *testing.T) {
	symbols := extract(t, "/p/a.rb", "module A\n  class B\n    def foo; end\n  end\nend\n")

	require.Len(t, symbols, 3)
	assert.Equal(t, "foo", symbols[0].Name)
	assert.Equal(t, "B", symbols[1].Name)
	assert.Equal(t, "A", symbols[2].Name)
}

func TestRubyExtractor_ClasslikeScopeMatchesAncestors(t *testing.T) {
	src := "module A\n  module B\n    class C\n      class D\n      end\n    end\n  end\nend\n"

	for _, s := range extract(t, "/p/nested.rb", src) {
		var names []string
		for p := s.Parent; p != nil; p = p.Parent {
			names = append([]string{p.Name}, names...)
		}
		assert.Equal(t, types.NewScope(append(names, s.Name)...), s.QualifiedName(), s.DisplayName())
	}
}

func TestRubyExtractor_QualifiedClassNames(t *testing.T) {
	src := `module A
  module B::C
    class D
      class ::Top
      end
    end
  end
end
class Outer::Inner; end
`
	byName := byDisplayName(extract(t, "/p/nested.rb", src))

	assert.Contains(t, byName, "A::B::C")
	assert.Contains(t, byName, "A::B::C::D")
	assert.Contains(t, byName, "Top")

	inner := byName["Outer::Inner"]
	require.NotNil(t, inner)
	assert.Equal(t, "Outer", inner.Scope.String())
	assert.Equal(t, "Inner", inner.Name)
}

func TestRubyExtractor_Assignments(t *testing.T) {
	src := `class Config
  A, *REST = 1, 2, 3
  $verbose = true
  @ivar = 1
  @@cvar = 2
  local = 3
  Other::CONST = 4
end
`
	symbols := extract(t, "/p/config.rb", src)
	byName := byDisplayName(symbols)

	assert.Len(t, symbols, 4)
	assert.Contains(t, byName, "Config::A")
	assert.Contains(t, byName, "Config::REST")
	assert.Contains(t, byName, "Config")

	global := byName["$verbose"]
	require.NotNil(t, global)
	assert.Equal(t, types.SymbolKindGlobalVariable, global.Kind)
	assert.True(t, global.Scope.IsEmpty())
	assert.Equal(t, types.NewPosition(2, 2), global.Start)
	assert.Equal(t, types.NewPosition(2, 10), global.End)
}

func TestRubyExtractor_MethodScopeOnlyFromClasslike(t *testing.T) {
	symbols := extract(t, "/p/top.rb", "def helper(x)\nend\n")

	require.Len(t, symbols, 1)
	assert.Equal(t, types.SymbolKindInstanceMethod, symbols[0].Kind)
	assert.True(t, symbols[0].Scope.IsEmpty())
	assert.Equal(t, "helper", symbols[0].DisplayName())
}

func TestRubyExtractor_SingletonClassBody(t *testing.T) {
	src := "class Registry\n  class << self\n    def lookup(key)\n    end\n  end\nend\n"
	byName := byDisplayName(extract(t, "/p/registry.rb", src))

	lookup := byName["Registry.lookup"]
	require.NotNil(t, lookup)
	assert.Equal(t, types.SymbolKindSingletonMethod, lookup.Kind)
}

func TestRubyExtractor_IgnoresUnsupported(t *testing.T) {
	symbols := extract(t, "/p/misc.rb", "# comment\nputs 'hi'\nrequire 'json'\nfoo.bar = 1\n")
	assert.Empty(t, symbols)
}

func TestRubyExtractor_NilTree(t *testing.T) {
	_, err := NewRubyExtractor().ExtractSymbols("/p/x.rb", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, lrierrors.ErrMissingNode))
}

func TestRubyExtractor_CanHandle(t *testing.T) {
	e := NewRubyExtractor()
	assert.True(t, e.CanHandle("app/models/user.rb"))
	assert.True(t, e.CanHandle("Rakefile.rake"))
	assert.False(t, e.CanHandle("main.go"))
	assert.Equal(t, "ruby", e.GetLanguage())

	r := DefaultRegistry()
	got, err := r.GetExtractorForFile("lib/foo.rb")
	require.NoError(t, err)
	assert.Equal(t, "ruby", got.GetLanguage())
	_, err = r.GetExtractorForFile("main.py")
	assert.Error(t, err)
	_, err = r.GetExtractorForFile("Gemfile")
	assert.Error(t, err)
}
