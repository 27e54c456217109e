package source

import (
	"errors"
	"fmt"
)

// Common source errors
var (
	// ErrHeaderNotFound marks an e-boekhouden export without a recognisable
	// header line. Parsers report it through Result.HeaderNotFound rather than
	// returning it, so the pipeline continues with the other source.
	ErrHeaderNotFound = errors.New("header_not_found")

	// ErrInputMissing is returned when an input file does not exist.
	ErrInputMissing = errors.New("input file not found")

	// ErrDecodeFailed is returned when the input cannot be decoded as text or CSV.
	ErrDecodeFailed = errors.New("input could not be decoded")
)

// SourceError wraps fatal errors with the operation and the source they came from.
type SourceError struct {
	// Op is the operation that failed (e.g., "Open", "Parse").
	Op string

	// Source is the external system name of the export.
	Source string

	// Path is the input file, if known.
	Path string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("source %s: %s %s: %v", e.Source, e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("source %s: %s: %v", e.Source, e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is.
func (e *SourceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewSourceError creates a SourceError for the given operation.
func NewSourceError(op, source, path string, err error) *SourceError {
	return &SourceError{
		Op:     op,
		Source: source,
		Path:   path,
		Err:    err,
	}
}
