package config

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// GitignoreParser matches paths against the patterns of a project's .gitignore
type GitignoreParser struct {
	lines   []string
	matcher *ignore.GitIgnore
}

// NewGitignoreParser creates an empty parser that ignores nothing
func NewGitignoreParser() *GitignoreParser {
	return &GitignoreParser{}
}

// LoadGitignore loads patterns from rootPath/.gitignore. A missing file is not an error.
func (gp *GitignoreParser) LoadGitignore(rootPath string) error {
	content, err := os.ReadFile(filepath.Join(rootPath, ".gitignore"))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		gp.lines = append(gp.lines, line)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	gp.compile()
	return nil
}

// AddPattern adds a single gitignore line
func (gp *GitignoreParser) AddPattern(line string) {
	gp.lines = append(gp.lines, line)
	gp.compile()
}

func (gp *GitignoreParser) compile() {
	gp.matcher = ignore.CompileIgnoreLines(gp.lines...)
}

// ShouldIgnore checks a slash-separated path relative to the gitignore's directory
func (gp *GitignoreParser) ShouldIgnore(path string, isDir bool) bool {
	if gp.matcher == nil {
		return false
	}
	path = filepath.ToSlash(path)
	if isDir && !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return gp.matcher.MatchesPath(path)
}

// PatternCount returns the number of loaded patterns
func (gp *GitignoreParser) PatternCount() int {
	return len(gp.lines)
}

// GetExclusionPatterns converts the non-negated patterns to doublestar globs.
// The watcher uses them to skip directories before the scanner sees them.
func (gp *GitignoreParser) GetExclusionPatterns() []string {
	var exclusions []string
	for _, line := range gp.lines {
		if strings.HasPrefix(line, "!") {
			continue
		}
		if glob := toDoublestar(line); glob != "" {
			exclusions = append(exclusions, glob)
		}
	}
	return exclusions
}

func toDoublestar(line string) string {
	dir := strings.HasSuffix(line, "/")
	line = strings.TrimSuffix(line, "/")
	anchored := strings.HasPrefix(line, "/")
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return ""
	}

	p := line
	if !anchored {
		p = "**/" + p
	}
	if dir {
		p += "/**"
	}
	return p
}
