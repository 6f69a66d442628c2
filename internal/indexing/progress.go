package indexing

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/standardbeagle/lri/internal/debug"
)

// ProgressTracker tracks indexing progress with thread-safe operations.
// Counters are atomic; the current directory and error list share one mutex.
type ProgressTracker struct {
	scannedFiles   int64 // atomic
	processedFiles int64 // atomic
	failedFiles    int64 // atomic
	totalFiles     int64 // atomic
	isIndexing     int32 // atomic

	mu         sync.RWMutex
	currentDir string
	startTime  time.Time
	errors     []IndexingError
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{startTime: time.Now()}
}

// Reset clears all counters at the start of an index run
func (pt *ProgressTracker) Reset() {
	atomic.StoreInt64(&pt.scannedFiles, 0)
	atomic.StoreInt64(&pt.processedFiles, 0)
	atomic.StoreInt64(&pt.failedFiles, 0)
	atomic.StoreInt64(&pt.totalFiles, 0)
	atomic.StoreInt32(&pt.isIndexing, 1)

	pt.mu.Lock()
	pt.currentDir = ""
	pt.startTime = time.Now()
	pt.errors = nil
	pt.mu.Unlock()
}

// Finish marks the run as complete
func (pt *ProgressTracker) Finish() {
	atomic.StoreInt32(&pt.isIndexing, 0)
}

// BeginDirectory records the start of one indexed directory with its file count
func (pt *ProgressTracker) BeginDirectory(dir string, files int) {
	atomic.AddInt64(&pt.totalFiles, int64(files))
	pt.mu.Lock()
	pt.currentDir = dir
	pt.mu.Unlock()
	debug.LogIndexing("begin %s: %d files\n", dir, files)
}

// EndDirectory records the end of one indexed directory
func (pt *ProgressTracker) EndDirectory(dir string, files int, elapsed time.Duration) {
	debug.LogIndexing("end %s: %d files in %v\n", dir, files, elapsed)
}

// IncrementScanned increments the scanned file count during discovery
func (pt *ProgressTracker) IncrementScanned() { atomic.AddInt64(&pt.scannedFiles, 1) }

// IncrementProcessed counts a file whose symbols were built
func (pt *ProgressTracker) IncrementProcessed() { atomic.AddInt64(&pt.processedFiles, 1) }

// AddError counts a failed file and keeps its error
func (pt *ProgressTracker) AddError(err IndexingError) {
	atomic.AddInt64(&pt.failedFiles, 1)
	pt.mu.Lock()
	pt.errors = append(pt.errors, err)
	pt.mu.Unlock()
	log.Printf("Warning: skipping %s (%s): %s", err.FilePath, err.Stage, err.Error)
}

// GetProgress returns current progress information
func (pt *ProgressTracker) GetProgress() IndexingProgress {
	processed := atomic.LoadInt64(&pt.processedFiles)

	pt.mu.RLock()
	currentDir := pt.currentDir
	elapsed := time.Since(pt.startTime)
	errorsCopy := make([]IndexingError, len(pt.errors))
	copy(errorsCopy, pt.errors)
	pt.mu.RUnlock()

	var filesPerSecond float64
	if processed > 0 && elapsed > 0 {
		filesPerSecond = float64(processed) / elapsed.Seconds()
	}

	return IndexingProgress{
		CurrentDirectory: currentDir,
		FilesScanned:     int(atomic.LoadInt64(&pt.scannedFiles)),
		FilesProcessed:   int(processed),
		FilesFailed:      int(atomic.LoadInt64(&pt.failedFiles)),
		TotalFiles:       int(atomic.LoadInt64(&pt.totalFiles)),
		ElapsedTime:      elapsed,
		FilesPerSecond:   filesPerSecond,
		Errors:           errorsCopy,
		IsIndexing:       atomic.LoadInt32(&pt.isIndexing) == 1,
	}
}
