package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestIndexingError(t *testing.T) {
	underlying := errors.New("underlying error")
	err := NewIndexingError("build", underlying).
		WithFile("/proj/app/models/user.rb")

	if err.Type != ErrorTypeIndexing {
		t.Errorf("Expected Type to be ErrorTypeIndexing, got %v", err.Type)
	}

	if err.FilePath != "/proj/app/models/user.rb" {
		t.Errorf("Expected FilePath to be set, got %s", err.FilePath)
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := "indexing build failed for /proj/app/models/user.rb: underlying error"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}

	bare := NewIndexingError("scan", underlying)
	if bare.Error() != "indexing scan failed: underlying error" {
		t.Errorf("Unexpected message without file: %q", bare.Error())
	}
}

func TestParseError(t *testing.T) {
	err := NewParseError("/proj/a.rb", 9, 4, "def", ErrMissingNode)

	if err.Type != ErrorTypeParse {
		t.Errorf("Expected Type to be ErrorTypeParse, got %v", err.Type)
	}

	if !errors.Is(err, ErrMissingNode) {
		t.Errorf("Expected error to unwrap to ErrMissingNode")
	}

	expectedMsg := `parse error at /proj/a.rb:10:5 (near token "def"): missing required node`
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestResolutionError(t *testing.T) {
	err := NewResolutionError("/proj/a.rb", 0, 2, ErrUnsupportedNodeKind).WithNodeKind("integer")

	if !IsUnsupported(err) {
		t.Errorf("Expected unsupported classification")
	}

	wrapped := fmt.Errorf("find definition: %w", err)
	var target *ResolutionError
	if !errors.As(wrapped, &target) {
		t.Fatalf("Expected errors.As to find ResolutionError")
	}
	if target.NodeKind != "integer" {
		t.Errorf("Expected node kind integer, got %s", target.NodeKind)
	}

	expectedMsg := "cannot resolve integer at /proj/a.rb:1:3: unsupported node kind"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}

	outOfRange := NewResolutionError("/proj/a.rb", 99, 0, ErrPositionOutOfRange)
	if IsUnsupported(outOfRange) {
		t.Errorf("Out of range must not be classified as unsupported")
	}
	if !errors.Is(outOfRange, ErrPositionOutOfRange) {
		t.Errorf("Expected ErrPositionOutOfRange")
	}
}

func TestFileError(t *testing.T) {
	notFound := NewFileError("read", "/missing.rb", fs.ErrNotExist)
	if notFound.Type != ErrorTypeFileNotFound {
		t.Errorf("Expected ErrorTypeFileNotFound, got %v", notFound.Type)
	}

	perm := NewFileError("read", "/secret.rb", &fs.PathError{Op: "open", Path: "/secret.rb", Err: fs.ErrPermission})
	if perm.Type != ErrorTypePermission {
		t.Errorf("Expected ErrorTypePermission, got %v", perm.Type)
	}

	tooLarge := NewFileTooLargeError("/big.rb", 20, 10)
	if tooLarge.Type != ErrorTypeFileTooLarge {
		t.Errorf("Expected ErrorTypeFileTooLarge, got %v", tooLarge.Type)
	}
}

func TestConfigError(t *testing.T) {
	underlying := errors.New("must be positive")
	err := NewConfigError("performance.parallel_file_workers", "-1", underlying)

	expectedMsg := "config error for field performance.parallel_file_workers (value -1): must be positive"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}
}

func TestMultiError(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")

	err := NewMultiError([]error{first, nil, second})
	if len(err.Errors) != 2 {
		t.Fatalf("Expected nil errors to be filtered, got %d", len(err.Errors))
	}
	if !errors.Is(err, second) {
		t.Errorf("Expected errors.Is to see through MultiError")
	}
	if err.ErrorOrNil() == nil {
		t.Errorf("Expected non-nil error")
	}

	empty := NewMultiError(nil)
	if empty.ErrorOrNil() != nil {
		t.Errorf("Expected nil for empty MultiError")
	}
	if empty.Error() != "no errors" {
		t.Errorf("Unexpected message %q", empty.Error())
	}

	single := NewMultiError([]error{first})
	if single.Error() != "first" {
		t.Errorf("Expected single error message, got %q", single.Error())
	}
}
