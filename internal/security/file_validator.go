// Package security rejects files that carry a Ruby extension but are not Ruby source.
package security

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrBinaryContent is returned for files whose header is mostly control bytes
	ErrBinaryContent = errors.New("file appears to be binary (Ruby extension on binary file)")

	// ErrNotRubySource is returned for large files with no recognizable Ruby construct
	ErrNotRubySource = errors.New("no Ruby patterns found")
)

// FileValidator validates large files before they are parsed.
// Files at or below the threshold are always accepted.
type FileValidator struct {
	ValidationThreshold int64 // Files larger than this are validated first
	HeaderSize          int   // Bytes of header inspected
}

func NewFileValidator(thresholdKB int64) *FileValidator {
	return &FileValidator{
		ValidationThreshold: thresholdKB * 1024,
		HeaderSize:          64 * 1024,
	}
}

// Validate inspects the header of content read from path
func (fv *FileValidator) Validate(path string, content []byte) error {
	if int64(len(content)) <= fv.ValidationThreshold {
		return nil
	}

	header := content
	if len(header) > fv.HeaderSize {
		header = header[:fv.HeaderSize]
	}

	if fv.isBinaryData(header) {
		return fmt.Errorf("%s: %w", path, ErrBinaryContent)
	}
	if err := fv.validateRubyFile(header); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// isBinaryData reports a NUL byte, invalid UTF-8 or more than 30% control characters
func (fv *FileValidator) isBinaryData(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return true
	}

	// a multi-byte rune may be cut at the header boundary
	trimmed := data
	for i := 0; i < utf8.UTFMax && len(trimmed) > 0 && !utf8.Valid(trimmed); i++ {
		trimmed = trimmed[:len(trimmed)-1]
	}
	if !utf8.Valid(trimmed) {
		return true
	}

	nonPrintable := 0
	for _, b := range data {
		// control characters except tab, LF, VT, FF, CR
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(data)) > 0.3
}

// validateRubyFile looks for any common Ruby construct in the header
func (fv *FileValidator) validateRubyFile(header []byte) error {
	rubyPatterns := [][]byte{
		[]byte("def "),
		[]byte("class "),
		[]byte("module "),
		[]byte("require"),
		[]byte("attr_"),
		[]byte("puts "),
		[]byte("end"),
		[]byte("# frozen_string_literal"),
	}

	for _, pattern := range rubyPatterns {
		if bytes.Contains(header, pattern) {
			return nil
		}
	}
	return ErrNotRubySource
}
