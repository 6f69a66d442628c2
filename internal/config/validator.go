package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	lrierrors "github.com/standardbeagle/lri/internal/errors"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateProjectConfig(&cfg.Project); err != nil {
		return lrierrors.NewConfigError("project.root", cfg.Project.Root, err)
	}

	if err := v.validateIndexConfig(&cfg.Index); err != nil {
		return lrierrors.NewConfigError("index", "", err)
	}

	if err := v.validatePerformanceConfig(&cfg.Performance); err != nil {
		return lrierrors.NewConfigError("performance", "", err)
	}

	if err := v.validateSearchConfig(&cfg.Search); err != nil {
		return lrierrors.NewConfigError("search", "", err)
	}

	for _, pattern := range append(append([]string{}, cfg.Include...), cfg.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return lrierrors.NewConfigError("include/exclude", pattern, errors.New("invalid glob pattern"))
		}
	}

	v.setSmartDefaults(cfg)
	return nil
}

// validateProjectConfig requires an existing root directory
func (v *Validator) validateProjectConfig(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}

	info, err := os.Stat(project.Root)
	if err != nil {
		return fmt.Errorf("project root is not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project root %s is not a directory", project.Root)
	}

	return nil
}

func (v *Validator) validateIndexConfig(index *Index) error {
	if index.MaxFileSize <= 0 {
		return fmt.Errorf("MaxFileSize must be positive, got %d", index.MaxFileSize)
	}

	if index.MaxFileCount <= 0 {
		return fmt.Errorf("MaxFileCount must be positive, got %d", index.MaxFileCount)
	}

	if index.MaxFileSize > 100*1024*1024 {
		return fmt.Errorf("MaxFileSize should not exceed 100MB, got %d", index.MaxFileSize)
	}

	if index.WatchDebounceMs < 0 {
		return fmt.Errorf("WatchDebounceMs cannot be negative, got %d", index.WatchDebounceMs)
	}

	for _, ext := range index.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}

	return nil
}

func (v *Validator) validatePerformanceConfig(perf *Performance) error {
	// 0 means auto-detect
	if perf.ParallelFileWorkers < 0 {
		return fmt.Errorf("ParallelFileWorkers cannot be negative, got %d", perf.ParallelFileWorkers)
	}

	if perf.IndexingTimeoutSec < 0 {
		return fmt.Errorf("IndexingTimeoutSec cannot be negative, got %d", perf.IndexingTimeoutSec)
	}

	return nil
}

func (v *Validator) validateSearchConfig(search *Search) error {
	if search.MaxResults < 0 {
		return fmt.Errorf("MaxResults cannot be negative, got %d", search.MaxResults)
	}

	if search.MaxSuggestions < 0 {
		return fmt.Errorf("MaxSuggestions cannot be negative, got %d", search.MaxSuggestions)
	}

	for _, prefix := range search.AutoloadPrefixes {
		if filepath.IsAbs(prefix) {
			return fmt.Errorf("autoload prefix %q must be relative to the project root", prefix)
		}
	}

	return nil
}

// setSmartDefaults applies defaults based on system capabilities
func (v *Validator) setSmartDefaults(cfg *Config) {
	// cores-1 leaves one core for the editor, minimum of 1
	if cfg.Performance.ParallelFileWorkers == 0 {
		cfg.Performance.ParallelFileWorkers = max(1, runtime.NumCPU()-1)
	}

	if cfg.Performance.IndexingTimeoutSec == 0 {
		cfg.Performance.IndexingTimeoutSec = 120
	}

	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 100
	}

	if len(cfg.Index.Extensions) == 0 {
		cfg.Index.Extensions = []string{".rb"}
	}

	if cfg.Project.Name == "" {
		cfg.Project.Name = filepath.Base(cfg.Project.Root)
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
