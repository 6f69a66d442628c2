package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// RubyEnvDetector finds gem directories for a project from its version manager and bundler files
type RubyEnvDetector struct {
	projectRoot string
	homeDir     string
}

// NewRubyEnvDetector creates a detector for projectRoot
func NewRubyEnvDetector(projectRoot string) *RubyEnvDetector {
	home, _ := os.UserHomeDir()
	return &RubyEnvDetector{projectRoot: projectRoot, homeDir: home}
}

// RubyVersion reads .ruby-version, dropping an optional "ruby-" prefix
func (d *RubyEnvDetector) RubyVersion() string {
	v := readTrimmed(filepath.Join(d.projectRoot, ".ruby-version"))
	return strings.TrimPrefix(v, "ruby-")
}

// Gemset reads .ruby-gemset
func (d *RubyEnvDetector) Gemset() string {
	return readTrimmed(filepath.Join(d.projectRoot, ".ruby-gemset"))
}

// DetectVendorDirectories returns existing gem directories, bundler's first
func (d *RubyEnvDetector) DetectVendorDirectories() []string {
	var dirs []string
	if dir := d.bundlePath(); dir != "" {
		dirs = append(dirs, dir)
	}
	if dir := d.rvmGemsDir(); dir != "" {
		dirs = append(dirs, dir)
	}
	return dirs
}

// bundlePath reads BUNDLE_PATH from .bundle/config
func (d *RubyEnvDetector) bundlePath() string {
	data, err := os.ReadFile(filepath.Join(d.projectRoot, ".bundle", "config"))
	if err != nil {
		return ""
	}

	var settings map[string]string
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return ""
	}

	path := settings["BUNDLE_PATH"]
	if path == "" {
		return ""
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(d.projectRoot, path)
	}
	return existingDir(path)
}

// rvmGemsDir is ~/.rvm/gems/ruby-<version>[@gemset]
func (d *RubyEnvDetector) rvmGemsDir() string {
	version := d.RubyVersion()
	if version == "" || d.homeDir == "" {
		return ""
	}
	name := "ruby-" + version
	if gemset := d.Gemset(); gemset != "" {
		name += "@" + gemset
	}
	return existingDir(filepath.Join(d.homeDir, ".rvm", "gems", name))
}

// EnrichRootsFromRubyEnv appends detected gem directories to Roots.Vendor
func (c *Config) EnrichRootsFromRubyEnv() {
	if !c.Roots.AutoDetect || c.Project.Root == "" {
		return
	}

	detected := NewRubyEnvDetector(c.Project.Root).DetectVendorDirectories()
	if len(detected) > 0 {
		c.Roots.Vendor = DeduplicatePatterns(append(c.Roots.Vendor, detected...))
	}
}

func readTrimmed(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func existingDir(path string) string {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return ""
	}
	return filepath.Clean(path)
}
