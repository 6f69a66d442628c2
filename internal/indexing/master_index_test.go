package indexing

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lrierrors "github.com/standardbeagle/lri/internal/errors"
	"github.com/standardbeagle/lri/internal/types"
	"github.com/standardbeagle/lri/testhelpers"
)

const cartSource = `module Shop
  class Cart
    def add(item)
      items << item
      Item.new
    end

    def items; end
  end
end
`

func newIndexedProject(t *testing.T, files map[string]string) (*MasterIndex, string) {
	t.Helper()

	root := testhelpers.WriteRubyProject(t, files)
	mi := NewMasterIndex(testhelpers.NewTestConfigBuilder(root).Build())
	require.NoError(t, mi.Index(context.Background()))
	t.Cleanup(func() { _ = mi.Close() })
	return mi, root
}

func TestMasterIndex_QueriesBeforeIndex(t *testing.T) {
	mi := NewMasterIndex(testhelpers.NewTestConfigBuilder(t.TempDir()).Build())

	_, err := mi.FindDefinition("a.rb", 0, 0)
	assert.ErrorIs(t, err, ErrNotIndexed)
	_, err = mi.SymbolsInFile("a.rb")
	assert.ErrorIs(t, err, ErrNotIndexed)
	_, err = mi.FuzzySearch("a")
	assert.ErrorIs(t, err, ErrNotIndexed)
	assert.Zero(t, mi.Stats().Generation)
}

func TestMasterIndex_FindDefinition(t *testing.T) {
	mi, root := newIndexedProject(t, map[string]string{
		"lib/shop/cart.rb": cartSource,
		"lib/shop/item.rb": "module Shop\n  class Item\n  end\nend\n",
	})
	cart := filepath.Join(root, "lib/shop/cart.rb")

	pos := testhelpers.PositionOf(t, cartSource, "Item", 0)
	found, err := mi.FindDefinition(cart, pos.Line, pos.Column)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Shop::Item", found[0].DisplayName())
	assert.Equal(t, filepath.Join(root, "lib/shop/item.rb"), found[0].File)

	pos = testhelpers.PositionOf(t, cartSource, "items", 0)
	found, err = mi.FindDefinition(cart, pos.Line, pos.Column)
	require.NoError(t, err)
	assert.Equal(t, []string{"Shop::Cart#items"}, displayNames(found))

	pos = testhelpers.PositionOf(t, cartSource, "item", 2)
	found, err = mi.FindDefinition(cart, pos.Line, pos.Column)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, types.SymbolKindVariable, found[0].Kind)

	_, err = mi.FindDefinition(cart, 500, 0)
	assert.True(t, errors.Is(err, lrierrors.ErrPositionOutOfRange))
}

func TestMasterIndex_SymbolsInFile(t *testing.T) {
	mi, root := newIndexedProject(t, map[string]string{
		"lib/shop/cart.rb": cartSource,
		"lib/shop/item.rb": "module Shop\n  class Item\n  end\nend\n",
	})

	symbols, err := mi.SymbolsInFile(filepath.Join(root, "lib/shop/item.rb"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Shop::Item", "Shop"}, displayNames(symbols))

	symbols, err = mi.SymbolsInFile(filepath.Join(root, "missing.rb"))
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

func TestMasterIndex_FuzzySearch(t *testing.T) {
	mi, _ := newIndexedProject(t, map[string]string{
		"lib/shop/cart.rb": cartSource,
		"lib/shop/item.rb": "module Shop\n  class Item\n  end\nend\n",
	})

	empty, err := mi.FuzzySearch("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	found, err := mi.FuzzySearch("item")
	require.NoError(t, err)
	require.NotEmpty(t, found)
	assert.Equal(t, "Item", found[0].Name)

	assert.Equal(t, []string{"Cart"}, mi.Suggest("Crat"))
}

func TestMasterIndex_FuzzySearchHonorsMaxResults(t *testing.T) {
	root := testhelpers.WriteRubyProject(t, map[string]string{
		"a.rb": "A1 = 1\nA2 = 2\nA3 = 3\n",
	})
	cfg := testhelpers.NewTestConfigBuilder(root).Build()
	cfg.Search.MaxResults = 2
	mi := NewMasterIndex(cfg)
	require.NoError(t, mi.Index(context.Background()))

	found, err := mi.FuzzySearch("a")
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestMasterIndex_Stats(t *testing.T) {
	mi, root := newIndexedProject(t, map[string]string{
		"lib/shop/cart.rb": cartSource,
	})

	stats := mi.Stats()
	assert.Equal(t, 1, stats.TotalFiles)
	assert.Equal(t, 4, stats.TotalSymbols)
	assert.Equal(t, 2, stats.SymbolsByKind[types.SymbolKindInstanceMethod.String()])
	assert.Equal(t, []string{root}, stats.Roots)
	assert.Equal(t, uint64(1), stats.Generation)
	assert.False(t, stats.Watching)

	require.NoError(t, mi.Index(context.Background()))
	stats = mi.Stats()
	assert.Equal(t, uint64(2), stats.Generation)
	assert.Equal(t, int64(1), stats.CacheHits)
}

func TestMasterIndex_IndexErrorKeepsSnapshot(t *testing.T) {
	mi, root := newIndexedProject(t, map[string]string{"a.rb": "class A; end\n"})

	mi.config.Project.Root = filepath.Join(root, "gone")
	assert.Error(t, mi.Index(context.Background()))

	table, err := mi.Table()
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestMasterIndex_WatchReindexes(t *testing.T) {
	mi, root := newIndexedProject(t, map[string]string{"a.rb": "class A; end\n"})
	require.NoError(t, mi.StartWatching())
	assert.True(t, mi.Stats().Watching)

	testhelpers.WriteFile(t, root, "b.rb", "class B; end\n")

	testhelpers.WaitFor(t, func() bool {
		found, err := mi.FuzzySearch("B")
		return err == nil && len(found) == 1
	}, 5*time.Second)
	assert.GreaterOrEqual(t, mi.Stats().Generation, uint64(2))

	require.NoError(t, mi.Close())
	assert.False(t, mi.Stats().Watching)
}
