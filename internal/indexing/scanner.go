package indexing

import (
	"context"
	"io/fs"
	"log"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/lri/internal/config"
	"github.com/standardbeagle/lri/internal/debug"
)

// FileScanner enumerates the Ruby files of one directory tree
type FileScanner struct {
	config          *config.Config
	gitignoreParser *config.GitignoreParser
}

// NewFileScanner creates a new file scanner
func NewFileScanner(cfg *config.Config) *FileScanner {
	scanner := &FileScanner{config: cfg}

	// Initialize gitignore parser if enabled
	if cfg.Index.RespectGitignore {
		scanner.gitignoreParser = config.NewGitignoreParser()
		if err := scanner.gitignoreParser.LoadGitignore(cfg.Project.Root); err != nil {
			log.Printf("Warning: failed to load .gitignore: %v", err)
		}
	}

	return scanner
}

// ScanDirectory returns the indexable files below root in lexical order.
// .gitignore applies only when root is the project root; stub and vendor
// directories are frequently ignored by the project itself.
func (s *FileScanner) ScanDirectory(ctx context.Context, root string, progress *ProgressTracker) ([]string, error) {
	root = filepath.Clean(root)
	useGitignore := s.gitignoreParser != nil && root == filepath.Clean(s.config.Project.Root)
	visitedDirs := make(map[string]bool)
	var files []string

	debug.LogIndexing("Starting directory scan of %s\n", root)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			debug.LogIndexing("Scanner error for %s: %v\n", path, err)
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			relPath = path
		}
		normalizedPath := filepath.ToSlash(relPath)

		if d.IsDir() {
			// symlinked directories can form cycles
			realPath, err := filepath.EvalSymlinks(path)
			if err != nil {
				return filepath.SkipDir
			}
			if visitedDirs[realPath] {
				return filepath.SkipDir
			}
			visitedDirs[realPath] = true

			if path == root {
				return nil
			}
			if s.isExcluded(normalizedPath) || s.isExcluded(normalizedPath+"/") {
				return filepath.SkipDir
			}
			if useGitignore && s.gitignoreParser.ShouldIgnore(normalizedPath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() && !(s.config.Index.FollowSymlinks && d.Type()&fs.ModeSymlink != 0) {
			return nil
		}
		if !s.config.HasExtension(path) {
			return nil
		}
		if s.isExcluded(normalizedPath) || !s.isIncluded(normalizedPath) {
			return nil
		}
		if useGitignore && s.gitignoreParser.ShouldIgnore(normalizedPath, false) {
			return nil
		}

		if limit := s.config.Index.MaxFileCount; limit > 0 && len(files) >= limit {
			log.Printf("Warning: file limit %d reached in %s, remaining files are skipped", limit, root)
			return filepath.SkipAll
		}

		files = append(files, path)
		if progress != nil {
			progress.IncrementScanned()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	debug.LogIndexing("Scan of %s found %d files\n", root, len(files))
	return files, nil
}

// isExcluded matches a slash-separated relative path against the exclude globs
func (s *FileScanner) isExcluded(relPath string) bool {
	for _, pattern := range s.config.Exclude {
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}

// isIncluded reports whether relPath matches an include glob. No include globs means everything.
func (s *FileScanner) isIncluded(relPath string) bool {
	if len(s.config.Include) == 0 {
		return true
	}
	for _, pattern := range s.config.Include {
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}
