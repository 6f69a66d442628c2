package indexing

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/standardbeagle/lri/internal/config"
	"github.com/standardbeagle/lri/internal/debug"
	"github.com/standardbeagle/lri/internal/search"
	"github.com/standardbeagle/lri/internal/symbollinker"
	"github.com/standardbeagle/lri/internal/types"
)

// indexSnapshot is one completed index run. Queries read it without locks.
type indexSnapshot struct {
	table      *types.SymbolTable
	resolver   *symbollinker.RubyResolver
	generation uint64
	builtAt    time.Time
	duration   time.Duration
}

// MasterIndex owns the current symbol table and answers every query against it.
// Index swaps in a new snapshot atomically; queries in flight keep the old one.
type MasterIndex struct {
	config  *config.Config
	indexer *Indexer
	matcher *search.Matcher

	snapshot   atomic.Pointer[indexSnapshot]
	generation uint64 // guarded by bulkMu
	bulkMu     sync.Mutex
	isIndexing int32 // atomic

	watchMu sync.Mutex
	watcher *FileWatcher
}

// NewMasterIndex creates an empty index for cfg.Project.Root
func NewMasterIndex(cfg *config.Config) *MasterIndex {
	mi := &MasterIndex{
		config:  cfg,
		indexer: NewIndexer(cfg),
	}
	mi.matcher = search.NewMatcher(mi.absPath(cfg.Project.Root))
	return mi
}

// Config returns the configuration the index was created with
func (mi *MasterIndex) Config() *config.Config {
	return mi.config
}

// Index builds a new table from the configured roots and swaps it in.
// Concurrent calls are serialized.
func (mi *MasterIndex) Index(ctx context.Context) error {
	mi.bulkMu.Lock()
	defer mi.bulkMu.Unlock()

	atomic.StoreInt32(&mi.isIndexing, 1)
	defer atomic.StoreInt32(&mi.isIndexing, 0)

	start := time.Now()
	root := mi.absPath(mi.config.Project.Root)
	var extraRoots []string
	for _, dir := range mi.config.ExtraRoots() {
		extraRoots = append(extraRoots, mi.absPath(dir))
	}

	table, err := mi.indexer.Index(ctx, root, extraRoots)
	if err != nil {
		return fmt.Errorf("index %s: %w", root, err)
	}

	// extra roots first: vendored paths nested in the project need their own namespace base
	converterRoots := append(slices.Clone(extraRoots), root)
	converter := symbollinker.NewAutoloadConverter(converterRoots, mi.config.Search.AutoloadPrefixes)

	mi.generation++
	mi.snapshot.Store(&indexSnapshot{
		table:      table,
		resolver:   symbollinker.NewRubyResolver(table, root, converter),
		generation: mi.generation,
		builtAt:    time.Now(),
		duration:   time.Since(start),
	})

	debug.LogIndexing("indexed %d symbols in %d files (generation %d) in %v\n",
		table.Len(), len(table.Files()), mi.generation, time.Since(start))
	if err := mi.indexer.Failures(); err != nil {
		debug.LogIndexing("skipped files: %v\n", err)
	}
	return nil
}

// SkippedFiles returns the per-file failures of the latest index run, or nil
func (mi *MasterIndex) SkippedFiles() error {
	return mi.indexer.Failures()
}

// current returns the latest snapshot or an error explaining why there is none
func (mi *MasterIndex) current() (*indexSnapshot, error) {
	if snap := mi.snapshot.Load(); snap != nil {
		return snap, nil
	}
	if atomic.LoadInt32(&mi.isIndexing) == 1 {
		return nil, &IndexingInProgressError{
			Message:  "indexing is in progress, try again shortly",
			Progress: mi.indexer.Progress().GetProgress(),
		}
	}
	return nil, ErrNotIndexed
}

// Table returns the current symbol table
func (mi *MasterIndex) Table() (*types.SymbolTable, error) {
	snap, err := mi.current()
	if err != nil {
		return nil, err
	}
	return snap.table, nil
}

// FindDefinition resolves the symbol at a zero-based line and column of file, reading it from disk
func (mi *MasterIndex) FindDefinition(file string, line, column int) ([]*types.Symbol, error) {
	snap, err := mi.current()
	if err != nil {
		return nil, err
	}
	return snap.resolver.FindDefinition(mi.absPath(file), types.NewPosition(line, column))
}

// FindDefinitionInSource resolves against content instead of the file on disk
func (mi *MasterIndex) FindDefinitionInSource(file string, content []byte, line, column int) ([]*types.Symbol, error) {
	snap, err := mi.current()
	if err != nil {
		return nil, err
	}
	return snap.resolver.FindDefinitionInSource(mi.absPath(file), content, types.NewPosition(line, column))
}

// SymbolsInFile returns every indexed symbol defined in file
func (mi *MasterIndex) SymbolsInFile(file string) ([]*types.Symbol, error) {
	snap, err := mi.current()
	if err != nil {
		return nil, err
	}
	return snap.table.InFile(mi.absPath(file)), nil
}

// FuzzySearch ranks every symbol against query, best first, capped at Search.MaxResults
func (mi *MasterIndex) FuzzySearch(query string) ([]*types.Symbol, error) {
	snap, err := mi.current()
	if err != nil {
		return nil, err
	}
	results := mi.matcher.Symbols(query, snap.table.All())
	if limit := mi.config.Search.MaxResults; limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Suggest returns names close to query for searches that matched nothing
func (mi *MasterIndex) Suggest(query string) []string {
	snap, err := mi.current()
	if err != nil {
		return nil
	}
	return search.Suggest(query, snap.table.All(), mi.config.Search.MaxSuggestions)
}

// Stats describes the current snapshot and the last index run
func (mi *MasterIndex) Stats() IndexStats {
	stats := IndexStats{
		SymbolsByKind: make(map[string]int),
		CacheHits:     mi.indexer.Cache().Hits(),
		Progress:      mi.indexer.Progress().GetProgress(),
	}

	mi.watchMu.Lock()
	stats.Watching = mi.watcher != nil
	mi.watchMu.Unlock()

	snap := mi.snapshot.Load()
	if snap == nil {
		return stats
	}
	stats.TotalFiles = len(snap.table.Files())
	stats.TotalSymbols = snap.table.Len()
	stats.Roots = snap.table.Roots()
	stats.Generation = snap.generation
	stats.BuildDuration = snap.duration
	stats.LastBuilt = snap.builtAt
	for kind, n := range snap.table.CountByKind() {
		stats.SymbolsByKind[kind.String()] = n
	}
	return stats
}

// StartWatching re-indexes whenever a Ruby file under the project root changes
func (mi *MasterIndex) StartWatching() error {
	mi.watchMu.Lock()
	defer mi.watchMu.Unlock()

	if mi.watcher != nil {
		return nil
	}

	watcher, err := NewFileWatcher(mi.config, mi.indexer.scanner, mi.reindexChanged)
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	if err := watcher.Start(mi.absPath(mi.config.Project.Root)); err != nil {
		_ = watcher.Stop()
		return err
	}
	mi.watcher = watcher
	return nil
}

func (mi *MasterIndex) reindexChanged(ctx context.Context, paths []string) {
	debug.LogIndexing("re-indexing after %d changed files\n", len(paths))
	if err := mi.Index(ctx); err != nil && ctx.Err() == nil {
		log.Printf("Warning: re-index after file changes failed: %v", err)
	}
}

// Close stops watching. The last snapshot stays queryable.
func (mi *MasterIndex) Close() error {
	mi.watchMu.Lock()
	watcher := mi.watcher
	mi.watcher = nil
	mi.watchMu.Unlock()

	if watcher == nil {
		return nil
	}
	return watcher.Stop()
}

func (mi *MasterIndex) absPath(file string) string {
	if filepath.IsAbs(file) {
		return filepath.Clean(file)
	}
	if abs, err := filepath.Abs(file); err == nil {
		return abs
	}
	return file
}
