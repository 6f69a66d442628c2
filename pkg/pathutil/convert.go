// Package pathutil converts between the absolute paths the index stores and the
// relative paths users type and read.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails, the path is already relative
// or it lies outside root.
//
// Examples:
//   - ToRelative("/home/user/app/lib/user.rb", "/home/user/app") → "lib/user.rb"
//   - ToRelative("/gems/rack/lib/rack.rb", "/home/user/app") → "/gems/rack/lib/rack.rb"
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return absPath
	}

	// outside root: the absolute path is clearer
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return absPath
	}
	return relPath
}

// ToAbsolute resolves path against rootDir unless it is already absolute.
// An empty rootDir resolves against the working directory.
func ToAbsolute(path, rootDir string) string {
	if path == "" {
		return path
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	if rootDir == "" {
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	if abs, err := filepath.Abs(rootDir); err == nil {
		rootDir = abs
	}
	return filepath.Join(rootDir, path)
}
