package core

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - centralized error definitions
var (
	// Acquisition errors - the file never became a grid
	ErrFileUnreadable    = errors.New("file unreadable")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrSheetNotFound     = errors.New("sheet not found")
	ErrEmptyGrid         = errors.New("grid contains no rows")

	// Recognition errors - the grid never yielded a schema
	ErrSchemaNotFound = errors.New("schema not found")
	ErrColumnNotFound = errors.New("column not found")

	// Projection errors - recovered per row or per cell
	ErrRowSkipped       = errors.New("row skipped")
	ErrValueUnparseable = errors.New("value unparseable")

	// Override errors
	ErrOverrideMalformed = errors.New("override entry malformed")
)

// Error constructors with context
func NewFileUnreadableError(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrFileUnreadable, path, err)
}

func NewUnsupportedFormatError(path string, ext string) error {
	return fmt.Errorf("%w: %s (extension %q)", ErrUnsupportedFormat, path, ext)
}

func NewSchemaNotFoundError(path string, foundLabels []string) error {
	if len(foundLabels) == 0 {
		return fmt.Errorf("%w: no header row recognized in %s (no candidate labels found)", ErrSchemaNotFound, path)
	}
	return fmt.Errorf("%w: no header row recognized in %s (labels found: %s)",
		ErrSchemaNotFound, path, strings.Join(foundLabels, ", "))
}

func NewRowSkippedError(rowIndex int, reason string) error {
	return fmt.Errorf("%w: row %d: %s", ErrRowSkipped, rowIndex, reason)
}

func NewValueUnparseableError(field string, raw string) error {
	return fmt.Errorf("%w: field %s: %q", ErrValueUnparseable, field, raw)
}

// Error checking helpers
func IsFatalError(err error) bool {
	return errors.Is(err, ErrFileUnreadable) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrSheetNotFound) ||
		errors.Is(err, ErrEmptyGrid) ||
		errors.Is(err, ErrSchemaNotFound)
}

func IsRecoverableError(err error) bool {
	return errors.Is(err, ErrRowSkipped) ||
		errors.Is(err, ErrValueUnparseable)
}

func IsSchemaNotFound(err error) bool {
	return errors.Is(err, ErrSchemaNotFound)
}

func IsFileUnreadable(err error) bool {
	return errors.Is(err, ErrFileUnreadable) ||
		errors.Is(err, ErrUnsupportedFormat)
}
