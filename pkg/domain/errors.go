package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every typed error below matches exactly one of these through
// errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrIO         = errors.New("i/o failure")
	ErrParse      = errors.New("malformed row")
	ErrExport     = errors.New("export failed")
	ErrNotFound   = errors.New("not found")
)

// ErrEmptySelection is returned by manual selection when no target
// resolves to a live record.
var ErrEmptySelection = fmt.Errorf("selection is empty: %w", ErrNotFound)

// ValidationError reports input that does not fit the schema.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %s", e.Reason)
	}
	return fmt.Sprintf("validation: field %q: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// IOError reports a backing store that could not be read or written.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }

// ParseError reports one skipped row of the backing table. Line is 1-based
// and counts the header row.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ExportError reports a document that could not be rendered or written.
type ExportError struct {
	Format string
	Target string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s to %s: %v", e.Format, e.Target, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

func (e *ExportError) Is(target error) bool { return target == ErrExport }

// NotFoundError reports a record identity that is not in the store.
type NotFoundError struct {
	ID RecordID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
