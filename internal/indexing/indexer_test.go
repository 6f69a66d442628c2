package indexing

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lrierrors "github.com/standardbeagle/lri/internal/errors"
	"github.com/standardbeagle/lri/internal/security"
	"github.com/standardbeagle/lri/internal/types"
	"github.com/standardbeagle/lri/testhelpers"
)

func displayNames(symbols []*types.Symbol) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, s.DisplayName())
	}
	return out
}

func TestIndexer_IndexesRootsInOrder(t *testing.T) {
	root := testhelpers.WriteRubyProject(t, map[string]string{
		"app/user.rb": "class User\n  def name; end\nend\n",
	})
	stubs := testhelpers.WriteRubyProject(t, map[string]string{
		"core.rbi": "class String\n  def upcase; end\nend\n",
	})
	vendor := testhelpers.WriteRubyProject(t, map[string]string{
		"rack/lib/rack.rb": "module Rack\nend\n",
	})
	cfg := testhelpers.NewTestConfigBuilder(root).Build()

	table, err := NewIndexer(cfg).Index(context.Background(), root, []string{stubs, vendor})
	require.NoError(t, err)

	assert.Equal(t, []string{"String#upcase", "String", "Rack", "User#name", "User"}, displayNames(table.All()))
	assert.Equal(t, []string{stubs, vendor, root}, table.Roots())
}

func TestIndexer_MissingRootFails(t *testing.T) {
	cfg := testhelpers.NewTestConfigBuilder("/does/not/exist").Build()

	_, err := NewIndexer(cfg).Index(context.Background(), "/does/not/exist", nil)
	assert.Error(t, err)
}

func TestIndexer_MissingExtraRootIsSkipped(t *testing.T) {
	root := testhelpers.WriteRubyProject(t, map[string]string{"a.rb": "A = 1\n"})
	cfg := testhelpers.NewTestConfigBuilder(root).Build()

	table, err := NewIndexer(cfg).Index(context.Background(), root, []string{filepath.Join(root, "missing")})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, displayNames(table.All()))
	assert.Equal(t, []string{root}, table.Roots())
}

func TestIndexer_FileFailuresDoNotAbort(t *testing.T) {
	root := testhelpers.WriteRubyProject(t, map[string]string{
		"small.rb": "class Small; end\n",
		"large.rb": "class Large\n" + strings.Repeat("  X = 1\n", 50) + "end\n",
	})
	cfg := testhelpers.NewTestConfigBuilder(root).Build()
	cfg.Index.MaxFileSize = 100

	ix := NewIndexer(cfg)
	table, err := ix.Index(context.Background(), root, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Small"}, displayNames(table.All()))
	progress := ix.Progress().GetProgress()
	assert.Equal(t, 1, progress.FilesFailed)
	assert.Equal(t, 1, progress.FilesProcessed)
	assert.Equal(t, 2, progress.TotalFiles)
	require.Len(t, progress.Errors, 1)
	assert.Equal(t, filepath.Join(root, "large.rb"), progress.Errors[0].FilePath)
	assert.False(t, progress.IsIndexing)

	var multi *lrierrors.MultiError
	require.ErrorAs(t, ix.Failures(), &multi)
	assert.Len(t, multi.Errors, 1)
	var fileErr *lrierrors.FileError
	assert.ErrorAs(t, ix.Failures(), &fileErr)
}

func TestIndexer_FailuresResetEachRun(t *testing.T) {
	root := testhelpers.WriteRubyProject(t, map[string]string{
		"blob.rb": strings.Repeat("\x00\x01\x02", 100*1024),
	})
	ix := NewIndexer(testhelpers.NewTestConfigBuilder(root).Build())

	_, err := ix.Index(context.Background(), root, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, ix.Failures(), security.ErrBinaryContent)

	testhelpers.WriteFile(t, root, "blob.rb", "class Blob; end\n")
	_, err = ix.Index(context.Background(), root, nil)
	require.NoError(t, err)
	assert.NoError(t, ix.Failures())
}

func TestIndexer_IndexesLargeFileWithoutKeywordsInHeader(t *testing.T) {
	root := testhelpers.WriteRubyProject(t, map[string]string{
		"notes.rb": strings.Repeat("# notes\n", 40*1024) + "VERSION = '1.0'\n",
	})
	ix := NewIndexer(testhelpers.NewTestConfigBuilder(root).Build())

	table, err := ix.Index(context.Background(), root, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"VERSION"}, displayNames(table.All()))
	assert.NoError(t, ix.Failures())
	assert.Empty(t, ix.Progress().GetProgress().Errors)
}

func TestIndexer_SkipsBinaryContent(t *testing.T) {
	root := testhelpers.WriteRubyProject(t, map[string]string{
		"ok.rb":   "class Ok; end\n",
		"blob.rb": strings.Repeat("\x00\x01\x02", 100*1024),
	})

	ix := NewIndexer(testhelpers.NewTestConfigBuilder(root).Build())
	table, err := ix.Index(context.Background(), root, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Ok"}, displayNames(table.All()))
	progress := ix.Progress().GetProgress()
	require.Len(t, progress.Errors, 1)
	assert.Equal(t, filepath.Join(root, "blob.rb"), progress.Errors[0].FilePath)
	assert.Equal(t, "build", progress.Errors[0].Stage)
	assert.Contains(t, progress.Errors[0].Error, "binary")
}

func TestIndexer_Idempotent(t *testing.T) {
	root := testhelpers.WriteRubyProject(t, map[string]string{
		"lib/shop/cart.rb": "module Shop\n  class Cart\n    def add(item); end\n  end\nend\n",
		"lib/shop/item.rb": "module Shop\n  class Item\n    attr_reader :price\n  end\nend\n",
		"lib/shop.rb":      "module Shop\n  VERSION = '1.0'\nend\n",
	})
	cfg := testhelpers.NewTestConfigBuilder(root).WithWorkers(4).Build()
	ix := NewIndexer(cfg)

	first, err := ix.Index(context.Background(), root, nil)
	require.NoError(t, err)
	second, err := ix.Index(context.Background(), root, nil)
	require.NoError(t, err)

	a, b := displayNames(first.All()), displayNames(second.All())
	slices.Sort(a)
	slices.Sort(b)
	assert.Equal(t, a, b)
	assert.Equal(t, int64(3), ix.Cache().Hits())
}

func TestIndexer_SymbolsInFileCoverTable(t *testing.T) {
	root := testhelpers.WriteRubyProject(t, map[string]string{
		"a.rb": "class A\n  def x; end\nend\n",
		"b.rb": "module B\n  C = 1\nend\n",
		"c.rb": "# nothing here\n",
	})
	cfg := testhelpers.NewTestConfigBuilder(root).Build()

	table, err := NewIndexer(cfg).Index(context.Background(), root, nil)
	require.NoError(t, err)

	var union []*types.Symbol
	for _, file := range table.Files() {
		inFile := table.InFile(file)
		for _, s := range inFile {
			assert.Equal(t, file, s.File)
		}
		union = append(union, inFile...)
	}
	assert.ElementsMatch(t, table.All(), union)
	assert.Empty(t, table.InFile(filepath.Join(root, "c.rb")))
}

func TestIndexer_ChangedFileIsRebuilt(t *testing.T) {
	root := testhelpers.WriteRubyProject(t, map[string]string{"a.rb": "class A; end\n"})
	cfg := testhelpers.NewTestConfigBuilder(root).Build()
	ix := NewIndexer(cfg)

	_, err := ix.Index(context.Background(), root, nil)
	require.NoError(t, err)

	testhelpers.WriteFile(t, root, "a.rb", "class B; end\n")
	table, err := ix.Index(context.Background(), root, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"B"}, displayNames(table.All()))
	assert.Zero(t, ix.Cache().Hits())
}
