package config

import (
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lrierrors "github.com/standardbeagle/lri/internal/errors"
)

func TestValidator_SmartDefaults(t *testing.T) {
	cfg := Default(t.TempDir())
	cfg.Performance.ParallelFileWorkers = 0
	cfg.Project.Name = ""

	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, max(1, runtime.NumCPU()-1), cfg.Performance.ParallelFileWorkers)
	assert.Equal(t, filepath.Base(cfg.Project.Root), cfg.Project.Name)
}

func TestValidator_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing root", func(c *Config) { c.Project.Root = filepath.Join(c.Project.Root, "nope") }, "project.root"},
		{"empty root", func(c *Config) { c.Project.Root = "" }, "project.root"},
		{"zero file size", func(c *Config) { c.Index.MaxFileSize = 0 }, "index"},
		{"huge file size", func(c *Config) { c.Index.MaxFileSize = 200 * 1024 * 1024 }, "index"},
		{"bad extension", func(c *Config) { c.Index.Extensions = []string{"rb"} }, "index"},
		{"negative workers", func(c *Config) { c.Performance.ParallelFileWorkers = -1 }, "performance"},
		{"negative results", func(c *Config) { c.Search.MaxResults = -5 }, "search"},
		{"absolute prefix", func(c *Config) { c.Search.AutoloadPrefixes = []string{"/app/models"} }, "search"},
		{"bad glob", func(c *Config) { c.Exclude = append(c.Exclude, "[unclosed") }, "include/exclude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default(t.TempDir())
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			require.Error(t, err)

			var cfgErr *lrierrors.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
