package config

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/standardbeagle/lri/internal/types"
)

// Config file names looked up in the home and project directories
const (
	KDLFileName  = ".lri.kdl"
	TOMLFileName = ".lri.toml"
)

// DefaultAutoloadPrefixes are stripped from a file path before it is converted to a namespace
var DefaultAutoloadPrefixes = []string{"app/models", "db", "lib", "spec"}

type Config struct {
	Version     int
	Project     Project
	Index       Index
	Roots       Roots
	Performance Performance
	Search      Search
	Include     []string
	Exclude     []string
}

type Project struct {
	Root string
	Name string
}

type Index struct {
	MaxFileSize      int64
	MaxFileCount     int
	FollowSymlinks   bool
	RespectGitignore bool     // Process .gitignore files for additional exclusions
	WatchMode        bool     // Re-index when files change
	WatchDebounceMs  int      // Debounce time for file change events
	Extensions       []string // File extensions to index
}

// Roots are indexed before the project root, in the order stubs then vendor.
// Relative entries resolve against Project.Root.
type Roots struct {
	Stubs      []string
	Vendor     []string
	AutoDetect bool // add bundler and rvm gem directories found by RubyEnvDetector
}

type Performance struct {
	ParallelFileWorkers int // 0 = auto-detect (NumCPU-1)
	IndexingTimeoutSec  int
}

type Search struct {
	MaxResults       int
	MaxSuggestions   int // "did you mean" entries for queries with no match
	AutoloadPrefixes []string
}

// ExtraRoots returns absolute stub directories followed by vendor directories
func (c *Config) ExtraRoots() []string {
	out := make([]string, 0, len(c.Roots.Stubs)+len(c.Roots.Vendor))
	for _, dir := range slices.Concat(c.Roots.Stubs, c.Roots.Vendor) {
		if dir == "" {
			continue
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(c.Project.Root, dir)
		}
		out = append(out, filepath.Clean(dir))
	}
	return out
}

// HasExtension reports whether path has one of the indexed extensions
func (c *Config) HasExtension(path string) bool {
	ext := filepath.Ext(path)
	return slices.Contains(c.Index.Extensions, ext)
}

func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot loads ~/.lri.kdl and merges the project's .lri.kdl over it.
// A project without .lri.kdl falls back to .lri.toml, then to defaults.
// path, when set, names an explicit config file and skips discovery.
// Gem directories detected from the Ruby environment are added to Roots.Vendor.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	cfg, err := load(path, rootDir)
	if err != nil {
		return nil, err
	}
	cfg.EnrichRootsFromRubyEnv()
	return cfg, nil
}

func load(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	if path != "" {
		return loadExplicit(path, searchDir)
	}

	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	projectConfig, err := LoadKDL(searchDir)
	if err != nil {
		return nil, err
	}
	if projectConfig == nil {
		if projectConfig, err = LoadTOML(searchDir); err != nil {
			return nil, err
		}
	}

	switch {
	case baseConfig != nil && projectConfig != nil:
		return mergeConfigs(baseConfig, projectConfig), nil
	case projectConfig != nil:
		return projectConfig, nil
	case baseConfig != nil:
		baseConfig.Project.Root = absOrSelf(searchDir)
		return baseConfig, nil
	}

	return Default(absOrSelf(searchDir)), nil
}

func loadExplicit(path, searchDir string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg *Config
	if filepath.Ext(path) == ".toml" {
		cfg, err = parseTOML(content)
	} else {
		cfg, err = parseKDL(string(content))
	}
	if err != nil {
		return nil, err
	}
	resolveRoot(cfg, searchDir)
	return cfg, nil
}

// Default returns the built-in configuration rooted at root
func Default(root string) *Config {
	return &Config{
		Version: 1,
		Project: Project{
			Root: root,
			Name: filepath.Base(root),
		},
		Index: Index{
			MaxFileSize:      types.DefaultMaxFileSize,
			MaxFileCount:     types.DefaultMaxFileCount,
			FollowSymlinks:   false,
			RespectGitignore: true,
			WatchMode:        false,
			WatchDebounceMs:  300,
			Extensions:       slices.Clone(types.RubyExtensions),
		},
		Roots: Roots{
			AutoDetect: true,
		},
		Performance: Performance{
			ParallelFileWorkers: 0,
			IndexingTimeoutSec:  120,
		},
		Search: Search{
			MaxResults:       types.DefaultMaxResults,
			MaxSuggestions:   5,
			AutoloadPrefixes: slices.Clone(DefaultAutoloadPrefixes),
		},
		Include: []string{},
		Exclude: defaultExclusions(),
	}
}

func defaultExclusions() []string {
	return []string{
		// VCS and tool metadata
		"**/.git/**",
		"**/.hg/**",
		"**/.svn/**",
		"**/.idea/**",
		"**/.vscode/**",

		// Dependencies are indexed through roots.vendor, not as project files
		"**/vendor/**",
		"**/node_modules/**",
		"**/.bundle/**",

		// Rails runtime output
		"**/tmp/**",
		"**/log/**",
		"**/coverage/**",
		"**/public/assets/**",
		"**/public/packs/**",

		// Editor temp files
		"**/*.swp",
		"**/*~",
	}
}

func absOrSelf(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// resolveRoot makes cfg.Project.Root absolute, resolving a relative value against dir
func resolveRoot(cfg *Config, dir string) {
	if cfg.Project.Root == "" {
		cfg.Project.Root = absOrSelf(dir)
	} else if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Clean(filepath.Join(absOrSelf(dir), cfg.Project.Root))
	}
	if cfg.Project.Name == "" {
		cfg.Project.Name = filepath.Base(cfg.Project.Root)
	}
}

// mergeConfigs merges a base config with a project config.
// Project values win, exclusions are unioned, and base includes and roots apply when the project sets none.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		merged.Exclude = DeduplicatePatterns(slices.Concat(base.Exclude, project.Exclude))
	}

	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}
	if len(project.Roots.Stubs) == 0 {
		merged.Roots.Stubs = base.Roots.Stubs
	}
	if len(project.Roots.Vendor) == 0 {
		merged.Roots.Vendor = base.Roots.Vendor
	}

	return &merged
}

// DeduplicatePatterns removes repeated patterns, keeping first occurrence order
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]struct{}, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
