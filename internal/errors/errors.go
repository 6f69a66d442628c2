package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// Error types for the lightning-ruby-index system
type ErrorType string

const (
	// Indexing errors
	ErrorTypeIndexing   ErrorType = "indexing"
	ErrorTypeParse      ErrorType = "parse"
	ErrorTypeResolution ErrorType = "resolution"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypeFileTooLarge ErrorType = "file_too_large"
	ErrorTypePermission   ErrorType = "permission"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"
)

var (
	// ErrUnsupportedNodeKind is returned when the node under the cursor is not a constant,
	// identifier or global variable. It is distinct from an empty result.
	ErrUnsupportedNodeKind = errors.New("unsupported node kind")

	// ErrPositionOutOfRange is returned for a cursor outside the file
	ErrPositionOutOfRange = errors.New("position out of range")

	// ErrMissingNode means the syntax tree lacked a required child such as a method name
	ErrMissingNode = errors.New("missing required node")
)

// IndexingError represents an error during the indexing process
type IndexingError struct {
	Type       ErrorType
	FilePath   string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewIndexingError creates a new indexing error with context
func NewIndexingError(op string, err error) *IndexingError {
	return &IndexingError{
		Type:       ErrorTypeIndexing,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithFile adds file information to the error
func (e *IndexingError) WithFile(path string) *IndexingError {
	e.FilePath = path
	return e
}

// Error implements the error interface
func (e *IndexingError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Type, e.Operation, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *IndexingError) Unwrap() error {
	return e.Underlying
}

// ParseError represents a parsing or tree-walking failure in one file
type ParseError struct {
	Type       ErrorType
	FilePath   string
	Line       int
	Column     int
	Token      string
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error. Line and column are zero-based.
func NewParseError(path string, line, column int, token string, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		FilePath:   path,
		Line:       line,
		Column:     column,
		Token:      token,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s:%d:%d (near token %q): %v",
		e.FilePath, e.Line+1, e.Column+1, e.Token, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// ResolutionError is returned by definition lookup
type ResolutionError struct {
	Type       ErrorType
	FilePath   string
	Line       int
	Column     int
	NodeKind   string
	Underlying error
	Timestamp  time.Time
}

// NewResolutionError creates a resolution error for a cursor position
func NewResolutionError(path string, line, column int, err error) *ResolutionError {
	return &ResolutionError{
		Type:       ErrorTypeResolution,
		FilePath:   path,
		Line:       line,
		Column:     column,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithNodeKind records the syntax node kind found under the cursor
func (e *ResolutionError) WithNodeKind(kind string) *ResolutionError {
	e.NodeKind = kind
	return e
}

// Error implements the error interface
func (e *ResolutionError) Error() string {
	if e.NodeKind != "" {
		return fmt.Sprintf("cannot resolve %s at %s:%d:%d: %v", e.NodeKind, e.FilePath, e.Line+1, e.Column+1, e.Underlying)
	}
	return fmt.Sprintf("cannot resolve at %s:%d:%d: %v", e.FilePath, e.Line+1, e.Column+1, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ResolutionError) Unwrap() error {
	return e.Underlying
}

// IsUnsupported reports whether err means the cursor was on something that has no definition
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupportedNodeKind)
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if errors.Is(err, fs.ErrPermission) {
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// NewFileTooLargeError reports a file skipped by the size limit
func NewFileTooLargeError(path string, size, limit int64) *FileError {
	return &FileError{
		Type:       ErrorTypeFileTooLarge,
		Path:       path,
		Operation:  "read",
		Underlying: fmt.Errorf("size %d exceeds limit %d", size, limit),
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError collects the per-file failures of one index run
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error, dropping nils
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// ErrorOrNil returns nil when nothing was collected
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
