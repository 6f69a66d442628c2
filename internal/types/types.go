package types

import "fmt"

// Resource limits used when no configuration overrides them
const (
	// DefaultMaxFileSize skips generated or vendored blobs that would dominate parse time
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB per file

	// DefaultMaxFileCount caps a single index run
	DefaultMaxFileCount = 50000

	// DefaultMaxResults caps fuzzy search output
	DefaultMaxResults = 100
)

// RubyExtensions are the file extensions indexed by default
var RubyExtensions = []string{".rb", ".rbi", ".rake", ".gemspec"}

// Position is a zero-based line/column location in a source file.
// Columns count bytes, matching tree-sitter points.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// NewPosition creates a position
func NewPosition(line, column int) Position {
	return Position{Line: line, Column: column}
}

// Before reports whether p sorts strictly before other
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

// After reports whether p sorts strictly after other
func (p Position) After(other Position) bool {
	return other.Before(p)
}

// Compare returns -1, 0 or 1
func (p Position) Compare(other Position) int {
	switch {
	case p.Before(other):
		return -1
	case other.Before(p):
		return 1
	default:
		return 0
	}
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
