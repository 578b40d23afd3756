// Package errors provides the error types shared by the srctools commands.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a required pattern or marker was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
)

// PatternError reports that an instruction table declaration could not be
// located in a source file.
type PatternError struct {
	Arch string // Architecture tag (e.g., "x86")
	Path string // File that was searched, if known
	Err  error  // Underlying error, if any
}

func (e *PatternError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("Couldn't match %sInstInfo[] in %s", e.Arch, e.Path)
	}
	return fmt.Sprintf("Couldn't match %sInstInfo[]", e.Arch)
}

func (e *PatternError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// MarkerError reports a missing sentinel comment line.
type MarkerError struct {
	Marker string // Marker text without the trailing newline
	Path   string // File that was searched, if known
	Err    error  // Underlying error, if any
}

func (e *MarkerError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("marker %q not found in %s", e.Marker, e.Path)
	}
	return fmt.Sprintf("marker %q not found", e.Marker)
}

func (e *MarkerError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "walk")
	Path      string // File/directory path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// NewPattern creates a PatternError
func NewPattern(arch, path string) *PatternError {
	return &PatternError{Arch: arch, Path: path}
}

// NewMarker creates a MarkerError
func NewMarker(marker, path string) *MarkerError {
	return &MarkerError{Marker: marker, Path: path}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
