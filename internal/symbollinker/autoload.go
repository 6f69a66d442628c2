package symbollinker

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/standardbeagle/lri/internal/types"
)

// ScopeConverter maps a source file to the namespace Ruby autoloading expects it to define
type ScopeConverter interface {
	PathToScope(path string) (types.Scope, error)
}

// AutoloadConverter follows the Zeitwerk/Rails convention: lib/foo/bar_baz.rb defines Foo::BarBaz
type AutoloadConverter struct {
	roots    []string
	prefixes []string
}

// NewAutoloadConverter creates a converter. Paths are made relative to the first root that
// contains them, then the first matching prefix is stripped.
func NewAutoloadConverter(roots []string, prefixes []string) *AutoloadConverter {
	cleaned := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		p = strings.Trim(filepath.ToSlash(p), "/")
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return &AutoloadConverter{roots: roots, prefixes: cleaned}
}

// PathToScope converts a file path to its conventional scope
func (c *AutoloadConverter) PathToScope(path string) (types.Scope, error) {
	rel, ok := c.relative(path)
	if !ok {
		return types.Scope{}, fmt.Errorf("%s is not under any indexed root", path)
	}

	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	for _, prefix := range c.prefixes {
		if rel == prefix {
			rel = ""
			break
		}
		if strings.HasPrefix(rel, prefix+"/") {
			rel = strings.TrimPrefix(rel, prefix+"/")
			break
		}
	}

	var segments []string
	for _, part := range strings.Split(rel, "/") {
		if part == "" {
			continue
		}
		segments = append(segments, Camelize(part))
	}
	return types.NewScope(segments...), nil
}

func (c *AutoloadConverter) relative(path string) (string, bool) {
	for _, root := range c.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		return filepath.ToSlash(rel), true
	}
	return "", false
}

// Camelize turns module_two_three into ModuleTwoThree
func Camelize(name string) string {
	var b strings.Builder
	for _, word := range strings.Split(name, "_") {
		r, size := utf8.DecodeRuneInString(word)
		if size == 0 {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(word[size:])
	}
	return b.String()
}
