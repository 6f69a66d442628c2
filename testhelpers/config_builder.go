// Package testhelpers provides shared utilities for testing Lightning Ruby Index
package testhelpers

import (
	"github.com/standardbeagle/lri/internal/config"
	"github.com/standardbeagle/lri/internal/types"
)

// TestConfigBuilder provides a fluent API for building test configs with safe defaults.
// Usage:
//
//	cfg := testhelpers.NewTestConfigBuilder(projectPath).
//		WithExclusions("tmp/**").
//		WithStubs("sorbet/rbi").
//		Build()
type TestConfigBuilder struct {
	projectRoot string
	exclusions  []string
	inclusions  []string
	stubs       []string
	vendor      []string
	workers     int
}

// NewTestConfigBuilder creates a config builder with safe defaults for a project path
func NewTestConfigBuilder(projectRoot string) *TestConfigBuilder {
	return &TestConfigBuilder{
		projectRoot: projectRoot,
		exclusions: []string{
			"**/.git/**",
			"**/node_modules/**",
			"**/tmp/**",
			"**/log/**",
		},
		workers: 2,
	}
}

// WithExclusions adds additional exclusion patterns
func (b *TestConfigBuilder) WithExclusions(patterns ...string) *TestConfigBuilder {
	b.exclusions = append(b.exclusions, patterns...)
	return b
}

// WithIncludePatterns sets the include patterns
func (b *TestConfigBuilder) WithIncludePatterns(patterns ...string) *TestConfigBuilder {
	b.inclusions = patterns
	return b
}

// WithStubs adds stub directories, indexed first
func (b *TestConfigBuilder) WithStubs(dirs ...string) *TestConfigBuilder {
	b.stubs = append(b.stubs, dirs...)
	return b
}

// WithVendor adds vendored gem directories, indexed after stubs
func (b *TestConfigBuilder) WithVendor(dirs ...string) *TestConfigBuilder {
	b.vendor = append(b.vendor, dirs...)
	return b
}

// WithWorkers sets the per-directory parallelism
func (b *TestConfigBuilder) WithWorkers(n int) *TestConfigBuilder {
	b.workers = n
	return b
}

// Build creates the final test config with all settings
func (b *TestConfigBuilder) Build() *config.Config {
	return &config.Config{
		Version: 1,
		Project: config.Project{
			Root: b.projectRoot,
			Name: "test-project",
		},
		Index: config.Index{
			MaxFileSize:      types.DefaultMaxFileSize,
			MaxFileCount:     1000,
			FollowSymlinks:   false,
			RespectGitignore: false,
			WatchMode:        false,
			WatchDebounceMs:  20,
			Extensions:       append([]string(nil), types.RubyExtensions...),
		},
		Roots: config.Roots{
			Stubs:  b.stubs,
			Vendor: b.vendor,
		},
		Performance: config.Performance{
			ParallelFileWorkers: b.workers,
			IndexingTimeoutSec:  30,
		},
		Search: config.Search{
			MaxResults:       types.DefaultMaxResults,
			MaxSuggestions:   3,
			AutoloadPrefixes: append([]string(nil), config.DefaultAutoloadPrefixes...),
		},
		Include: b.inclusions,
		Exclude: b.exclusions,
	}
}
