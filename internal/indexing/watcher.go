package indexing

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/lri/internal/config"
	"github.com/standardbeagle/lri/internal/debug"
)

// FileWatcher monitors the project for Ruby file changes and reports them in debounced batches
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	config    *config.Config
	scanner   *FileScanner
	debouncer *eventDebouncer
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	// Watch mode statistics
	statsMu         sync.RWMutex
	eventsProcessed int64
	errorCount      int64
	lastEventTime   time.Time
}

// NewFileWatcher creates a watcher that calls onBatch with the changed paths once events
// stop arriving for the configured debounce interval
func NewFileWatcher(cfg *config.Config, scanner *FileScanner, onBatch func(ctx context.Context, paths []string)) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	fw := &FileWatcher{
		watcher: watcher,
		config:  cfg,
		scanner: scanner,
		ctx:     ctx,
		cancel:  cancel,
	}
	fw.debouncer = newEventDebouncer(time.Duration(cfg.Index.WatchDebounceMs)*time.Millisecond, func(paths []string) {
		fw.incrementStats(int64(len(paths)), 0)
		onBatch(fw.ctx, paths)
	})
	return fw, nil
}

// Start watches root and every directory below it that is not excluded
func (fw *FileWatcher) Start(root string) error {
	debug.LogIndexing("Starting file watcher for directory: %s\n", root)

	if err := fw.addWatches(root); err != nil {
		return fmt.Errorf("failed to add watches starting from %s: %w", root, err)
	}

	fw.wg.Add(1)
	go fw.processEvents()
	return nil
}

// Stop stops the watcher and waits for any batch callback in flight
func (fw *FileWatcher) Stop() error {
	fw.cancel()

	err := fw.watcher.Close()
	if err != nil {
		log.Printf("Warning: closing file watcher: %v", err)
	}

	fw.wg.Wait()
	fw.debouncer.stop()
	return err
}

// addWatches recursively adds watches to all relevant directories
func (fw *FileWatcher) addWatches(root string) error {
	root = filepath.Clean(root)
	visitedDirs := make(map[string]bool)

	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}

		realPath, err := filepath.EvalSymlinks(path)
		if err != nil || visitedDirs[realPath] {
			return filepath.SkipDir
		}
		visitedDirs[realPath] = true

		if path != root && fw.shouldIgnoreDirectory(root, path) {
			return filepath.SkipDir
		}

		if err := fw.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

func (fw *FileWatcher) shouldIgnoreDirectory(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if fw.scanner.isExcluded(rel) || fw.scanner.isExcluded(rel+"/") {
		return true
	}
	return fw.scanner.gitignoreParser != nil && fw.scanner.gitignoreParser.ShouldIgnore(rel, true)
}

// processEvents processes file system events from fsnotify
func (fw *FileWatcher) processEvents() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.incrementStats(0, 1)
			log.Printf("Warning: file watcher error: %v", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	debug.LogIndexing("FileWatcher: received event %v for path %s\n", event.Op, path)

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := fw.addWatches(path); err != nil {
				log.Printf("Warning: failed to watch new directory %s: %v", path, err)
			}
			return
		}
	}

	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if !fw.config.HasExtension(path) {
		return
	}
	fw.debouncer.addEvent(path)
}

func (fw *FileWatcher) incrementStats(events int64, errors int64) {
	fw.statsMu.Lock()
	defer fw.statsMu.Unlock()

	fw.eventsProcessed += events
	fw.errorCount += errors
	fw.lastEventTime = time.Now()
}

// GetStats returns current watch mode statistics
func (fw *FileWatcher) GetStats() WatchStats {
	fw.statsMu.RLock()
	defer fw.statsMu.RUnlock()

	return WatchStats{
		EventsProcessed: fw.eventsProcessed,
		ErrorCount:      fw.errorCount,
		LastEventTime:   fw.lastEventTime,
		IsActive:        fw.ctx.Err() == nil,
	}
}

// WatchStats contains statistics about file watching operations
type WatchStats struct {
	EventsProcessed int64
	ErrorCount      int64
	LastEventTime   time.Time
	IsActive        bool
}

// eventDebouncer batches file events so a burst of saves triggers one re-index
type eventDebouncer struct {
	mu       sync.Mutex
	paths    map[string]bool
	debounce time.Duration
	timer    *time.Timer
	stopped  bool
	inflight sync.WaitGroup
	flushFn  func(paths []string)
}

func newEventDebouncer(debounce time.Duration, flush func(paths []string)) *eventDebouncer {
	if debounce <= 0 {
		debounce = 50 * time.Millisecond
	}
	return &eventDebouncer{
		paths:    make(map[string]bool),
		debounce: debounce,
		flushFn:  flush,
	}
}

// addEvent records path and restarts the debounce timer
func (d *eventDebouncer) addEvent(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.paths[path] = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, d.flush)
}

func (d *eventDebouncer) flush() {
	d.mu.Lock()
	if d.stopped || len(d.paths) == 0 {
		d.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(d.paths))
	for p := range d.paths {
		paths = append(paths, p)
	}
	d.paths = make(map[string]bool)
	d.inflight.Add(1)
	d.mu.Unlock()

	defer d.inflight.Done()
	debug.LogIndexing("Processing %d debounced file events\n", len(paths))
	d.flushFn(paths)
}

// stop drops pending events and waits for a running flush to return
func (d *eventDebouncer) stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()

	d.inflight.Wait()
}
