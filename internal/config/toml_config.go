package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// tomlConfig mirrors the KDL layout. Pointer fields distinguish "unset" from zero.
type tomlConfig struct {
	Project struct {
		Root string `toml:"root"`
		Name string `toml:"name"`
	} `toml:"project"`
	Index struct {
		MaxFileSize      string   `toml:"max_file_size"`
		MaxFileCount     *int     `toml:"max_file_count"`
		FollowSymlinks   *bool    `toml:"follow_symlinks"`
		RespectGitignore *bool    `toml:"respect_gitignore"`
		WatchMode        *bool    `toml:"watch_mode"`
		WatchDebounceMs  *int     `toml:"watch_debounce_ms"`
		Extensions       []string `toml:"extensions"`
	} `toml:"index"`
	Roots struct {
		Stubs      []string `toml:"stubs"`
		Vendor     []string `toml:"vendor"`
		AutoDetect *bool    `toml:"auto_detect"`
	} `toml:"roots"`
	Performance struct {
		ParallelFileWorkers *int `toml:"parallel_file_workers"`
		IndexingTimeoutSec  *int `toml:"indexing_timeout_sec"`
	} `toml:"performance"`
	Search struct {
		MaxResults       *int     `toml:"max_results"`
		MaxSuggestions   *int     `toml:"max_suggestions"`
		AutoloadPrefixes []string `toml:"autoload_prefixes"`
	} `toml:"search"`
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// LoadTOML loads .lri.toml from dir. It returns nil, nil when the file does not exist.
func LoadTOML(dir string) (*Config, error) {
	path := filepath.Join(dir, TOMLFileName)
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TOMLFileName, err)
	}

	cfg, err := parseTOML(content)
	if err != nil {
		return nil, err
	}
	resolveRoot(cfg, dir)
	return cfg, nil
}

func parseTOML(content []byte) (*Config, error) {
	var tc tomlConfig
	if err := toml.Unmarshal(content, &tc); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	cfg := Default("")
	cfg.Project.Name = tc.Project.Name
	cfg.Project.Root = tc.Project.Root

	if tc.Index.MaxFileSize != "" {
		size, err := parseSize(tc.Index.MaxFileSize)
		if err != nil {
			return nil, fmt.Errorf("invalid index.max_file_size %q: %w", tc.Index.MaxFileSize, err)
		}
		cfg.Index.MaxFileSize = size
	}
	setIf(&cfg.Index.MaxFileCount, tc.Index.MaxFileCount)
	setIf(&cfg.Index.FollowSymlinks, tc.Index.FollowSymlinks)
	setIf(&cfg.Index.RespectGitignore, tc.Index.RespectGitignore)
	setIf(&cfg.Index.WatchMode, tc.Index.WatchMode)
	setIf(&cfg.Index.WatchDebounceMs, tc.Index.WatchDebounceMs)
	if len(tc.Index.Extensions) > 0 {
		cfg.Index.Extensions = normalizeExtensions(tc.Index.Extensions)
	}

	cfg.Roots.Stubs = tc.Roots.Stubs
	cfg.Roots.Vendor = tc.Roots.Vendor
	setIf(&cfg.Roots.AutoDetect, tc.Roots.AutoDetect)

	setIf(&cfg.Performance.ParallelFileWorkers, tc.Performance.ParallelFileWorkers)
	setIf(&cfg.Performance.IndexingTimeoutSec, tc.Performance.IndexingTimeoutSec)

	setIf(&cfg.Search.MaxResults, tc.Search.MaxResults)
	setIf(&cfg.Search.MaxSuggestions, tc.Search.MaxSuggestions)
	if tc.Search.AutoloadPrefixes != nil {
		cfg.Search.AutoloadPrefixes = tc.Search.AutoloadPrefixes
	}

	cfg.Include = append(cfg.Include, tc.Include...)
	cfg.Exclude = DeduplicatePatterns(append(cfg.Exclude, tc.Exclude...))

	return cfg, nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
