package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTOML(t *testing.T) {
	cfg, err := parseTOML([]byte(`
include = ["app/**"]
exclude = ["**/spec/fixtures/**"]

[project]
name = "shop"

[index]
max_file_size = "1MB"
respect_gitignore = false
extensions = ["rb"]

[roots]
stubs = ["stubs"]
vendor = ["vendor/bundle"]
auto_detect = false

[performance]
parallel_file_workers = 2

[search]
max_results = 40
autoload_prefixes = ["lib"]
`))
	require.NoError(t, err)

	assert.Equal(t, "shop", cfg.Project.Name)
	assert.Equal(t, int64(1024*1024), cfg.Index.MaxFileSize)
	assert.False(t, cfg.Index.RespectGitignore)
	assert.Equal(t, []string{".rb"}, cfg.Index.Extensions)
	assert.Equal(t, []string{"stubs"}, cfg.Roots.Stubs)
	assert.Equal(t, []string{"vendor/bundle"}, cfg.Roots.Vendor)
	assert.False(t, cfg.Roots.AutoDetect)
	assert.Equal(t, 2, cfg.Performance.ParallelFileWorkers)
	assert.Equal(t, 40, cfg.Search.MaxResults)
	assert.Equal(t, []string{"lib"}, cfg.Search.AutoloadPrefixes)
	assert.Equal(t, []string{"app/**"}, cfg.Include)
	assert.Contains(t, cfg.Exclude, "**/spec/fixtures/**")
}

func TestParseTOML_UnsetKeepsDefaults(t *testing.T) {
	cfg, err := parseTOML([]byte(`[search]
max_results = 5
`))
	require.NoError(t, err)
	assert.True(t, cfg.Index.RespectGitignore)
	assert.True(t, cfg.Roots.AutoDetect)
	assert.Equal(t, DefaultAutoloadPrefixes, cfg.Search.AutoloadPrefixes)
}

func TestParseTOML_Errors(t *testing.T) {
	_, err := parseTOML([]byte(`[index`))
	assert.Error(t, err)

	_, err = parseTOML([]byte(`[index]
max_file_size = "huge"
`))
	assert.Error(t, err)
}
