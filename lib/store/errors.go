package store

import (
	"fmt"
)

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("StoreError (code %s): %s", e.Code, e.Msg)
}

// Is reports whether target is an *Error with the same code.
// This allows errors.Is(err, store.ErrTypeMismatch) for any message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a new store error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// NewErrorf creates a new store error with a formatted message.
func NewErrorf(code RetCode, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// Sentinels for errors.Is, one per return code
var (
	ErrInternal             = NewError(RetCInternalError, "internal error")
	ErrUnsupportedOperation = NewError(RetCUnsupportedOperation, "unsupported operation")
	ErrInvalidOperation     = NewError(RetCInvalidOperation, "invalid operation")
	ErrTypeMismatch         = NewError(RetCTypeMismatch, "type mismatch")
	ErrInvalidArgument      = NewError(RetCInvalidArgument, "invalid argument")
	ErrMissingContext       = NewError(RetCMissingContext, "missing context")
	ErrNotInitialized       = NewError(RetCNotInitialized, "not initialized")
)

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCInternalError                       // 1: Command failed due to an internal error.
	RetCUnsupportedOperation                // 2: Operation is not supported by underlying database.
	RetCInvalidOperation                    // 3: Invalid operation.
	RetCTypeMismatch                        // 4: Stored value has a different type than requested.
	RetCInvalidArgument                     // 5: Argument outside of the allowed values.
	RetCMissingContext                      // 6: No host context was configured.
	RetCNotInitialized                      // 7: Preferences were used before initialization.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCUnsupportedOperation:
		return "UnsupportedOperation"
	case RetCInvalidOperation:
		return "InvalidOperation"
	case RetCTypeMismatch:
		return "TypeMismatch"
	case RetCInvalidArgument:
		return "InvalidArgument"
	case RetCMissingContext:
		return "MissingContext"
	case RetCNotInitialized:
		return "NotInitialized"
	default:
		return fmt.Sprintf("Unknown(%d)", uint64(c))
	}
}
