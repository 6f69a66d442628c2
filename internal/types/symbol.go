package types

import "strings"

// SymbolKind identifies what a Symbol defines
type SymbolKind uint8

const (
	SymbolKindUnknown SymbolKind = iota
	SymbolKindClass
	SymbolKindModule
	SymbolKindInstanceMethod
	SymbolKindSingletonMethod
	SymbolKindConstant
	SymbolKindVariable
	SymbolKindInstanceVariable
	SymbolKindClassVariable
	SymbolKindGlobalVariable
)

// String returns the string representation of the symbol kind
func (k SymbolKind) String() string {
	switch k {
	case SymbolKindClass:
		return "class"
	case SymbolKindModule:
		return "module"
	case SymbolKindInstanceMethod:
		return "instance_method"
	case SymbolKindSingletonMethod:
		return "singleton_method"
	case SymbolKindConstant:
		return "constant"
	case SymbolKindVariable:
		return "variable"
	case SymbolKindInstanceVariable:
		return "instance_variable"
	case SymbolKindClassVariable:
		return "class_variable"
	case SymbolKindGlobalVariable:
		return "global_variable"
	default:
		return "unknown"
	}
}

// IsClasslike reports class or module
func (k SymbolKind) IsClasslike() bool {
	return k == SymbolKindClass || k == SymbolKindModule
}

// IsMethod reports instance or singleton method
func (k SymbolKind) IsMethod() bool {
	return k == SymbolKindInstanceMethod || k == SymbolKindSingletonMethod
}

// ParameterKind distinguishes method parameter forms
type ParameterKind uint8

const (
	ParameterRegular ParameterKind = iota
	ParameterOptional
	ParameterKeyword
)

func (k ParameterKind) String() string {
	switch k {
	case ParameterOptional:
		return "optional"
	case ParameterKeyword:
		return "keyword"
	default:
		return "regular"
	}
}

// Parameter is one named parameter of a method definition
type Parameter struct {
	Kind  ParameterKind `json:"kind"`
	Name  string        `json:"name"`
	Start Position      `json:"start"`
	End   Position      `json:"end"`
}

// Detail is the kind-specific payload of a Symbol.
// Only ClasslikeDetail and MethodDetail implement it.
type Detail interface {
	isDetail()
}

// ClasslikeDetail carries the superclass of a class, resolved against its lexical context.
// Superclass is empty when none was declared.
type ClasslikeDetail struct {
	Superclass Scope
}

// MethodDetail carries the parameter list of a method
type MethodDetail struct {
	Parameters []Parameter
}

func (ClasslikeDetail) isDetail() {}
func (MethodDetail) isDetail()    {}

// Symbol is one definition discovered in a source file.
// Symbols are immutable once built; Parent is shared between siblings.
type Symbol struct {
	Kind   SymbolKind
	Name   string
	Scope  Scope
	File   string
	Start  Position
	End    Position
	Parent *Symbol
	Detail Detail
}

// QualifiedName returns Scope with Name appended
func (s *Symbol) QualifiedName() Scope {
	return s.Scope.Append(s.Name)
}

// Superclass returns the recorded superclass scope for classlike symbols
func (s *Symbol) Superclass() (Scope, bool) {
	d, ok := s.Detail.(ClasslikeDetail)
	if !ok || d.Superclass.IsEmpty() {
		return Scope{}, false
	}
	return d.Superclass, true
}

// Parameters returns the method parameters, or nil for non-methods
func (s *Symbol) Parameters() []Parameter {
	if d, ok := s.Detail.(MethodDetail); ok {
		return d.Parameters
	}
	return nil
}

// Parameter finds a parameter by name
func (s *Symbol) Parameter(name string) (Parameter, bool) {
	for _, p := range s.Parameters() {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// DisplayName renders the symbol the way Ruby documentation does:
// A::B for namespaces and constants, A::B#foo for instance methods, A::B.foo for singleton methods.
func (s *Symbol) DisplayName() string {
	scope := s.Scope.String()
	if scope == "" {
		return s.Name
	}
	switch s.Kind {
	case SymbolKindInstanceMethod, SymbolKindInstanceVariable:
		return scope + "#" + s.Name
	case SymbolKindSingletonMethod, SymbolKindClassVariable:
		return scope + "." + s.Name
	case SymbolKindVariable:
		if s.Parent != nil {
			return s.Parent.DisplayName() + " " + s.Name
		}
		return s.Name
	default:
		return scope + ScopeSeparator + s.Name
	}
}

// Contains reports whether the symbol range strictly encloses [start, end)
func (s *Symbol) Contains(start, end Position) bool {
	return s.Start.Before(start) && s.End.After(end)
}

// InDir reports whether the symbol's file is under dir
func (s *Symbol) InDir(dir string) bool {
	if dir == "" {
		return false
	}
	dir = strings.TrimSuffix(dir, "/")
	return s.File == dir || strings.HasPrefix(s.File, dir+"/")
}
