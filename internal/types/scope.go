package types

import (
	"slices"
	"strings"
)

// GlobalScopeSegment marks an absolute (::Foo) scope. It is only ever the first segment.
const GlobalScopeSegment = "$GLOBAL"

// ScopeSeparator joins segments when rendering
const ScopeSeparator = "::"

// Scope is an immutable ordered namespace path such as A::B.
// All operations return new values; the backing slice is never shared with callers.
type Scope struct {
	segments []string
}

// NewScope builds a scope from segments. A sentinel that is not in first position is dropped.
func NewScope(segments ...string) Scope {
	out := make([]string, 0, len(segments))
	for i, s := range segments {
		if s == "" {
			continue
		}
		if s == GlobalScopeSegment && i != 0 {
			continue
		}
		out = append(out, s)
	}
	return Scope{segments: out}
}

// GlobalScope returns the absolute scope with the given trailing segments
func GlobalScope(segments ...string) Scope {
	return NewScope(append([]string{GlobalScopeSegment}, segments...)...)
}

// ParseScope splits a rendered A::B::C path. A leading :: makes the scope absolute.
func ParseScope(path string) Scope {
	if path == "" {
		return Scope{}
	}
	parts := strings.Split(path, ScopeSeparator)
	if strings.HasPrefix(path, ScopeSeparator) {
		parts[0] = GlobalScopeSegment
	}
	return NewScope(parts...)
}

// IsGlobal reports whether the scope starts with the global sentinel
func (s Scope) IsGlobal() bool {
	return len(s.segments) > 0 && s.segments[0] == GlobalScopeSegment
}

// IsEmpty reports whether the scope has no named segments
func (s Scope) IsEmpty() bool {
	return len(s.names()) == 0
}

// Len returns the number of named segments, not counting the sentinel
func (s Scope) Len() int {
	return len(s.names())
}

// Segments returns a copy of the raw segments including the sentinel
func (s Scope) Segments() []string {
	return slices.Clone(s.segments)
}

// Names returns a copy of the named segments without the sentinel
func (s Scope) Names() []string {
	return slices.Clone(s.names())
}

func (s Scope) names() []string {
	if s.IsGlobal() {
		return s.segments[1:]
	}
	return s.segments
}

// Join appends other to s, dropping other's sentinel
func (s Scope) Join(other Scope) Scope {
	out := make([]string, 0, len(s.segments)+len(other.segments))
	out = append(out, s.segments...)
	out = append(out, other.names()...)
	return Scope{segments: out}
}

// Append returns s with one more trailing segment
func (s Scope) Append(name string) Scope {
	if name == "" {
		return s
	}
	out := make([]string, 0, len(s.segments)+1)
	out = append(out, s.segments...)
	out = append(out, name)
	return Scope{segments: out}
}

// Last returns the last named segment, or "" for an empty scope
func (s Scope) Last() string {
	names := s.names()
	if len(names) == 0 {
		return ""
	}
	return names[len(names)-1]
}

// WithoutLast removes the last named segment. The sentinel is preserved.
func (s Scope) WithoutLast() Scope {
	if s.IsEmpty() {
		return s
	}
	return Scope{segments: slices.Clone(s.segments[:len(s.segments)-1])}
}

// Relative strips the sentinel
func (s Scope) Relative() Scope {
	return Scope{segments: slices.Clone(s.names())}
}

// Equal compares named segments; the sentinel is ignored
func (s Scope) Equal(other Scope) bool {
	return slices.Equal(s.names(), other.names())
}

// HasPrefix reports whether s starts with the named segments of prefix
func (s Scope) HasPrefix(prefix Scope) bool {
	a, b := s.names(), prefix.names()
	return len(a) >= len(b) && slices.Equal(a[:len(b)], b)
}

// String renders the named segments joined with ::
func (s Scope) String() string {
	return strings.Join(s.names(), ScopeSeparator)
}

// MarshalText renders the scope for JSON output
func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
