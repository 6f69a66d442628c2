package indexing

import (
	"errors"
	"time"
)

// ErrNotIndexed is returned by queries issued before the first index run completed
var ErrNotIndexed = errors.New("index has not been built")

// IndexingError is a per-file failure reported through progress
type IndexingError struct {
	FilePath string `json:"file_path"`
	Stage    string `json:"stage"`
	Error    string `json:"error"`
}

// IndexingInProgressError indicates queries were issued while the first index run is still going
type IndexingInProgressError struct {
	Message  string           `json:"message"`
	Progress IndexingProgress `json:"progress"`
}

func (e *IndexingInProgressError) Error() string {
	return e.Message
}

// IndexingProgress represents progress during indexing
type IndexingProgress struct {
	CurrentDirectory string          `json:"current_directory"`
	FilesScanned     int             `json:"files_scanned"`
	FilesProcessed   int             `json:"files_processed"`
	FilesFailed      int             `json:"files_failed"`
	TotalFiles       int             `json:"total_files"`
	ElapsedTime      time.Duration   `json:"elapsed_time"`
	FilesPerSecond   float64         `json:"files_per_second"`
	Errors           []IndexingError `json:"errors"`
	IsIndexing       bool            `json:"is_indexing"`
}

// IndexStats describes the current snapshot
type IndexStats struct {
	TotalFiles    int              `json:"total_files"`
	TotalSymbols  int              `json:"total_symbols"`
	SymbolsByKind map[string]int   `json:"symbols_by_kind"`
	Roots         []string         `json:"roots"`
	Generation    uint64           `json:"generation"`
	BuildDuration time.Duration    `json:"build_duration"`
	LastBuilt     time.Time        `json:"last_built"`
	CacheHits     int64            `json:"cache_hits"`
	Watching      bool             `json:"watching"`
	Progress      IndexingProgress `json:"progress"`
}
