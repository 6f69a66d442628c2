package indexing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/lri/internal/config"
	"github.com/standardbeagle/lri/internal/debug"
	lrierrors "github.com/standardbeagle/lri/internal/errors"
	"github.com/standardbeagle/lri/internal/parser"
	"github.com/standardbeagle/lri/internal/security"
	"github.com/standardbeagle/lri/internal/symbollinker"
	"github.com/standardbeagle/lri/internal/types"
)

// Indexer builds a symbol table from a project root and its extra roots.
// Directories are indexed in order; the files of one directory are parsed in parallel
// and merged sequentially in scan order.
type Indexer struct {
	config    *config.Config
	scanner   *FileScanner
	registry  *symbollinker.ExtractorRegistry
	cache     *ContentCache
	progress  *ProgressTracker
	validator *security.FileValidator

	failuresMu sync.Mutex
	failures   []error // per-file errors of the latest run
}

// validationThresholdKB is the size above which file content is checked before parsing
const validationThresholdKB = 256

// NewIndexer creates an indexer with the default extractor registry
func NewIndexer(cfg *config.Config) *Indexer {
	return &Indexer{
		config:    cfg,
		scanner:   NewFileScanner(cfg),
		registry:  symbollinker.DefaultRegistry(),
		cache:     NewContentCache(),
		progress:  NewProgressTracker(),
		validator: security.NewFileValidator(validationThresholdKB),
	}
}

// Progress returns the tracker updated by Index
func (ix *Indexer) Progress() *ProgressTracker {
	return ix.progress
}

// Cache returns the per-file content cache
func (ix *Indexer) Cache() *ContentCache {
	return ix.cache
}

// Failures returns the per-file errors of the latest run as a *errors.MultiError, or nil
func (ix *Indexer) Failures() error {
	ix.failuresMu.Lock()
	defer ix.failuresMu.Unlock()
	return lrierrors.NewMultiError(ix.failures).ErrorOrNil()
}

func (ix *Indexer) recordFailure(file string, err error) {
	ix.failuresMu.Lock()
	ix.failures = append(ix.failures, err)
	ix.failuresMu.Unlock()
	ix.progress.AddError(IndexingError{FilePath: file, Stage: "build", Error: err.Error()})
}

// Index builds a table from extraRoots, in order, followed by root. A missing or
// unreadable root is an error; a missing extra root is skipped with a warning.
// Files that fail to read or parse are skipped and reported through Progress.
func (ix *Indexer) Index(ctx context.Context, root string, extraRoots []string) (*types.SymbolTable, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, lrierrors.NewIndexingError("resolve root", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, lrierrors.NewIndexingError("stat root", err).WithFile(root)
	}
	if !info.IsDir() {
		return nil, lrierrors.NewIndexingError("stat root", fmt.Errorf("%s is not a directory", root)).WithFile(root)
	}

	if timeout := ix.config.Performance.IndexingTimeoutSec; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	ix.progress.Reset()
	defer ix.progress.Finish()
	ix.failuresMu.Lock()
	ix.failures = nil
	ix.failuresMu.Unlock()

	var dirs []string
	for _, dir := range extraRoots {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			debug.LogIndexing("extra root %s is not a directory, skipping\n", dir)
			continue
		}
		dirs = append(dirs, filepath.Clean(dir))
	}
	dirs = append(dirs, root)

	var symbols []*types.Symbol
	seenFiles := make(map[string]bool)
	for _, dir := range dirs {
		dirSymbols, err := ix.indexDirectory(ctx, dir, seenFiles)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, dirSymbols...)
	}
	ix.cache.Retain(seenFiles)

	return types.NewSymbolTable(symbols, dirs...), nil
}

// indexDirectory builds every file of dir. seenFiles carries files already indexed
// through an earlier root, such as a vendor directory nested in the project.
func (ix *Indexer) indexDirectory(ctx context.Context, dir string, seenFiles map[string]bool) ([]*types.Symbol, error) {
	start := time.Now()

	scanned, err := ix.scanner.ScanDirectory(ctx, dir, ix.progress)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	files := scanned[:0]
	for _, f := range scanned {
		if !seenFiles[f] {
			seenFiles[f] = true
			files = append(files, f)
		}
	}

	ix.progress.BeginDirectory(dir, len(files))

	results := make([][]*types.Symbol, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workers())
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			symbols, err := ix.buildFile(file)
			if err != nil {
				ix.recordFailure(file, err)
				return nil
			}
			results[i] = symbols
			ix.progress.IncrementProcessed()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("index %s: %w", dir, err)
	}

	var merged []*types.Symbol
	for _, symbols := range results {
		merged = append(merged, symbols...)
	}

	ix.progress.EndDirectory(dir, len(files), time.Since(start))
	return merged, nil
}

// buildFile reads, parses and extracts one file, reusing cached symbols for unchanged content
func (ix *Indexer) buildFile(path string) ([]*types.Symbol, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, lrierrors.NewFileError("stat", path, err)
	}
	if limit := ix.config.Index.MaxFileSize; limit > 0 && info.Size() > limit {
		return nil, lrierrors.NewFileTooLargeError(path, info.Size(), limit)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, lrierrors.NewFileError("read", path, err)
	}

	if symbols, ok := ix.cache.Lookup(path, content); ok {
		return symbols, nil
	}

	if err := ix.validator.Validate(path, content); err != nil {
		if !errors.Is(err, security.ErrNotRubySource) {
			return nil, lrierrors.NewIndexingError("validate", err).WithFile(path)
		}
		log.Printf("Warning: %v, indexing anyway", err)
	}

	extractor, err := ix.registry.GetExtractorForFile(path)
	if err != nil {
		return nil, lrierrors.NewIndexingError("select extractor", err).WithFile(path)
	}

	tree, err := parser.Parse(content)
	if err != nil {
		return nil, lrierrors.NewParseError(path, 0, 0, "", err)
	}
	defer tree.Close()

	symbols, err := extractor.ExtractSymbols(path, content, tree)
	if err != nil {
		return nil, err
	}

	ix.cache.Store(path, content, symbols)
	return symbols, nil
}

func (ix *Indexer) workers() int {
	if n := ix.config.Performance.ParallelFileWorkers; n > 0 {
		return n
	}
	return max(runtime.NumCPU()-1, 1)
}
