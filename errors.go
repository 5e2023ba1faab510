package gridcalc

import (
	"fmt"

	"github.com/pkg/errors"
)

// AppErrorCode represents gRPC-style error codes for application-level
// (host-facing) errors — distinct from in-cell formula errors, which are
// LiteralValue errors (see ExcelErrorKind in value.go).
type AppErrorCode int

const (
	OK                 AppErrorCode = 0
	Unknown            AppErrorCode = 2
	InvalidArgument     AppErrorCode = 3
	NotFound           AppErrorCode = 5
	AlreadyExists      AppErrorCode = 6
	ResourceExhausted  AppErrorCode = 8
	FailedPrecondition AppErrorCode = 9
	OutOfRange         AppErrorCode = 11
	Unimplemented      AppErrorCode = 12
	Internal           AppErrorCode = 13
)

// AppError represents host-facing errors: bad addresses, missing sheets,
// duplicate names. Formula evaluation errors never surface as AppError —
// they are stored as LiteralValue Error values per spec.md §7.
type AppError struct {
	Code    AppErrorCode
	Message string
	cause   error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "application error"
}

// Unwrap lets errors.Is/errors.As see through to an infrastructural cause.
func (e *AppError) Unwrap() error { return e.cause }

// NewAppError creates a new application error.
func NewAppError(code AppErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NewAppErrorf creates a new application error with formatted message.
func NewAppErrorf(code AppErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapInfraError wraps an infrastructural fault (allocation failure,
// corrupted arena, unrecoverable panic) with a stack trace via pkg/errors
// and marks it Internal. Infra faults are the one category spec.md §5/§7
// says should propagate fatally rather than being captured as a cell value.
func WrapInfraError(cause error, message string) *AppError {
	wrapped := errors.Wrap(cause, message)
	return &AppError{Code: Internal, Message: wrapped.Error(), cause: wrapped}
}

// ParserError carries a position for formula-entry-time diagnostics
// (spec.md §4.2, §6). The graph is never mutated when a ParserError is
// returned.
type ParserError struct {
	Message  string
	Position int // -1 when no position is known
}

func (e *ParserError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s (at position %d)", e.Message, e.Position)
	}
	return e.Message
}

func NewParserError(message string, position int) *ParserError {
	return &ParserError{Message: message, Position: position}
}

// ReferenceError is returned by the reference parser (reference.go) for
// malformed reference strings, independent of the full formula parser.
type ReferenceError struct {
	Message string
}

func (e *ReferenceError) Error() string { return e.Message }

func NewReferenceError(format string, args ...any) *ReferenceError {
	return &ReferenceError{Message: fmt.Sprintf(format, args...)}
}
