package device

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a caller-facing error
type ErrorType int

const (
	// ErrTypeInvalidArgument indicates caller misuse (unknown option id,
	// wrong value type)
	ErrTypeInvalidArgument ErrorType = iota
	// ErrTypeOutOfRange indicates a value outside the active source's
	// advertised constraint
	ErrTypeOutOfRange
	// ErrTypeNotReady indicates an operation on a device that has not
	// completed capability negotiation, or that has been removed
	ErrTypeNotReady
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeInvalidArgument:
		return "Invalid Argument"
	case ErrTypeOutOfRange:
		return "Out Of Range"
	case ErrTypeNotReady:
		return "Device Not Ready"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is a typed error returned to callers of the option and open APIs.
// Transport-level probe failures never surface through this type; they are
// handled internally by address failover and device removal.
type Error struct {
	Type    ErrorType
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewInvalidArgumentError creates an invalid-argument error
func NewInvalidArgumentError(format string, args ...any) *Error {
	return &Error{Type: ErrTypeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// NewOutOfRangeError creates an out-of-range error
func NewOutOfRangeError(format string, args ...any) *Error {
	return &Error{Type: ErrTypeOutOfRange, Message: fmt.Sprintf(format, args...)}
}

// NewNotReadyError creates a not-ready error
func NewNotReadyError(name string) *Error {
	return &Error{Type: ErrTypeNotReady, Message: fmt.Sprintf("device %q is not ready", name)}
}

// IsInvalidArgument reports whether err is an invalid-argument error
func IsInvalidArgument(err error) bool {
	return isType(err, ErrTypeInvalidArgument)
}

// IsOutOfRange reports whether err is an out-of-range error
func IsOutOfRange(err error) bool {
	return isType(err, ErrTypeOutOfRange)
}

// IsNotReady reports whether err is a not-ready error
func IsNotReady(err error) bool {
	return isType(err, ErrTypeNotReady)
}

func isType(err error, et ErrorType) bool {
	var devErr *Error
	if errors.As(err, &devErr) {
		return devErr.Type == et
	}
	return false
}
