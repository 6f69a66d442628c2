package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/lri/internal/types"
)

func TestParseKDL_Defaults(t *testing.T) {
	cfg, err := parseKDL("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, int64(types.DefaultMaxFileSize), cfg.Index.MaxFileSize)
	assert.True(t, cfg.Index.RespectGitignore)
	assert.Equal(t, types.RubyExtensions, cfg.Index.Extensions)
	assert.Equal(t, DefaultAutoloadPrefixes, cfg.Search.AutoloadPrefixes)
	assert.Contains(t, cfg.Exclude, "**/.git/**")
	assert.True(t, cfg.Roots.AutoDetect)
}

func TestParseKDL_AllSections(t *testing.T) {
	kdlContent := `
project {
    root "."
    name "shop"
}
index {
    max_file_size "2MB"
    max_file_count 500
    follow_symlinks true
    respect_gitignore false
    watch_mode true
    watch_debounce_ms 150
    extensions ".rb" "rake"
}
roots {
    stubs "stubs/rubystubs27"
    vendor "vendor/bundle" "vendor/gems"
    auto_detect false
}
performance {
    parallel_file_workers 3
}
search {
    max_results 25
    max_suggestions 2
    autoload_prefixes "app/models" "app/services"
}
include "app/**" "lib/**"
exclude "**/spec/fixtures/**"
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Project.Root)
	assert.Equal(t, "shop", cfg.Project.Name)

	assert.Equal(t, int64(2*1024*1024), cfg.Index.MaxFileSize)
	assert.Equal(t, 500, cfg.Index.MaxFileCount)
	assert.True(t, cfg.Index.FollowSymlinks)
	assert.False(t, cfg.Index.RespectGitignore)
	assert.True(t, cfg.Index.WatchMode)
	assert.Equal(t, 150, cfg.Index.WatchDebounceMs)
	assert.Equal(t, []string{".rb", ".rake"}, cfg.Index.Extensions)

	assert.Equal(t, []string{"stubs/rubystubs27"}, cfg.Roots.Stubs)
	assert.Equal(t, []string{"vendor/bundle", "vendor/gems"}, cfg.Roots.Vendor)
	assert.False(t, cfg.Roots.AutoDetect)

	assert.Equal(t, 3, cfg.Performance.ParallelFileWorkers)

	assert.Equal(t, 25, cfg.Search.MaxResults)
	assert.Equal(t, 2, cfg.Search.MaxSuggestions)
	assert.Equal(t, []string{"app/models", "app/services"}, cfg.Search.AutoloadPrefixes)

	assert.Equal(t, []string{"app/**", "lib/**"}, cfg.Include)
	assert.Contains(t, cfg.Exclude, "**/spec/fixtures/**")
	assert.Contains(t, cfg.Exclude, "**/.git/**", "defaults are kept")
}

func TestParseKDL_BlockExclude(t *testing.T) {
	cfg, err := parseKDL(`
exclude {
    "**/db/schema.rb"
    "**/generated/**"
}
`)
	require.NoError(t, err)
	assert.Contains(t, cfg.Exclude, "**/db/schema.rb")
	assert.Contains(t, cfg.Exclude, "**/generated/**")
}

func TestParseKDL_Invalid(t *testing.T) {
	_, err := parseKDL(`project { root "unterminated }`)
	assert.Error(t, err)
}

func TestLoadKDL(t *testing.T) {
	t.Run("MissingFile", func(t *testing.T) {
		cfg, err := LoadKDL(t.TempDir())
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("RelativeRootResolvesAgainstConfigDir", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "app"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, KDLFileName), []byte("project {\n  root \"app\"\n}\n"), 0644))

		cfg, err := LoadKDL(dir)
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, filepath.Join(dir, "app"), cfg.Project.Root)
		assert.Equal(t, "app", cfg.Project.Name)
	})

	t.Run("NoRootUsesConfigDir", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, KDLFileName), []byte("search {\n  max_results 7\n}\n"), 0644))

		cfg, err := LoadKDL(dir)
		require.NoError(t, err)
		assert.Equal(t, dir, cfg.Project.Root)
		assert.Equal(t, 7, cfg.Search.MaxResults)
	})
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"10MB", 10 * 1024 * 1024},
		{"500kb", 500 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"42B", 42},
		{"128", 128},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseSize("lots")
	assert.Error(t, err)
}
