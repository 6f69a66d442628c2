package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitignoreParser_LoadAndMatch(t *testing.T) {
	dir := t.TempDir()
	content := `# build output
/pkg/
*.generated.rb
log/

!keep.generated.rb
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(content), 0644))

	gp := NewGitignoreParser()
	require.NoError(t, gp.LoadGitignore(dir))
	assert.Equal(t, 4, gp.PatternCount())

	tests := []struct {
		path   string
		isDir  bool
		ignore bool
	}{
		{"pkg", true, true},
		{"pkg/gem.rb", false, true},
		{"app/models/user.generated.rb", false, true},
		{"keep.generated.rb", false, false},
		{"log", true, true},
		{"app/models/user.rb", false, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ignore, gp.ShouldIgnore(tt.path, tt.isDir), tt.path)
	}
}

func TestGitignoreParser_MissingFile(t *testing.T) {
	gp := NewGitignoreParser()
	require.NoError(t, gp.LoadGitignore(t.TempDir()))
	assert.False(t, gp.ShouldIgnore("anything.rb", false))
}

func TestGitignoreParser_ExclusionPatterns(t *testing.T) {
	gp := NewGitignoreParser()
	gp.AddPattern("/coverage/")
	gp.AddPattern("tmp/")
	gp.AddPattern("*.orig")
	gp.AddPattern("!important.orig")

	assert.Equal(t, []string{"coverage/**", "**/tmp/**", "**/*.orig"}, gp.GetExclusionPatterns())
}
