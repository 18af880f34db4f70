package cli

import (
	"errors"
	"fmt"

	"quizbank/internal/blob"
	"quizbank/internal/category"
	"quizbank/internal/config"
	"quizbank/pkg/domain"
)

const (
	ExitCodeSuccess  = 0
	ExitCodeGeneric  = 1
	ExitCodeUsage    = 2
	ExitCodeNotFound = 3
	ExitCodeConflict = 4
	ExitCodeIO       = 7
	ExitCodeExport   = 8
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *ExitError) ExitCode() int {
	if e == nil {
		return ExitCodeGeneric
	}
	return e.Code
}

func asExitError(code int, err error) error {
	if err == nil {
		return nil
	}
	var withExit interface{ ExitCode() int }
	if errors.As(err, &withExit) {
		return err
	}
	return &ExitError{Code: code, Err: err}
}

func mapCommandError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, config.ErrInvalidConfig):
		return asExitError(ExitCodeUsage, err)
	case errors.Is(err, domain.ErrExport):
		return asExitError(ExitCodeExport, err)
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, blob.ErrNotFound):
		return asExitError(ExitCodeNotFound, err)
	case errors.Is(err, category.ErrDuplicateCategory), errors.Is(err, blob.ErrExists):
		return asExitError(ExitCodeConflict, err)
	case errors.Is(err, domain.ErrIO):
		return asExitError(ExitCodeIO, err)
	}
	return asExitError(ExitCodeGeneric, err)
}

func usageErrorf(format string, args ...any) error {
	return &ExitError{
		Code: ExitCodeUsage,
		Err:  fmt.Errorf(format, args...),
	}
}
