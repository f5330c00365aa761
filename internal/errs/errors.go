// Package errs provides the unified error type used across mysqlconn.
//
// The database layer wraps driver-native errors into *errs.Error before
// returning them to callers. Callers use the Is* predicates to handle
// errors without importing the MySQL driver package.
//
// Usage:
//
//	// At the driver boundary — wrap native errors:
//	return errs.Wrap(errs.ErrKindIntegrity, "duplicate key", mysqlErr)
//
//	// In calling code — check error kind:
//	if errs.IsOperational(err) {
//	    // connection was lost; the manager already closed it
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing MySQL error numbers.
// The driver boundary maps native errors to one of these kinds, giving
// callers a single consistent API.
type ErrKind int

const (
	ErrKindUnknown       ErrKind = iota
	ErrKindConnect               // could not establish a connection
	ErrKindOperational           // connection found unusable mid-query
	ErrKindIntegrity             // constraint violation (duplicate key, FK, NOT NULL)
	ErrKindQueryFailed           // SQL syntax or runtime execution error
	ErrKindMultipleRows          // single-row lookup matched more than one row
	ErrKindFieldNotFound         // row field access on an absent column
	ErrKindInvalidInput          // bad arguments from the caller
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindConnect:
		return "connect_failed"
	case ErrKindOperational:
		return "operational"
	case ErrKindIntegrity:
		return "integrity"
	case ErrKindQueryFailed:
		return "query_failed"
	case ErrKindMultipleRows:
		return "multiple_rows"
	case ErrKindFieldNotFound:
		return "field_not_found"
	case ErrKindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all mysqlconn operations.
// The database layer produces it; callers inspect it via the Is* predicates.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // original driver-level error, preserved for callers and logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsConnect reports whether err represents a failed connection attempt.
func IsConnect(err error) bool {
	return kindOf(err) == ErrKindConnect
}

// IsOperational reports whether err means the connection became unusable
// during a query. The manager force-closes its handle before returning such
// an error, so the next operation reconnects.
func IsOperational(err error) bool {
	return kindOf(err) == ErrKindOperational
}

// IsIntegrity reports whether err is a constraint violation
// (duplicate key, foreign key, NOT NULL, ...).
func IsIntegrity(err error) bool {
	return kindOf(err) == ErrKindIntegrity
}

// IsQueryFailed reports whether err is a SQL execution error.
func IsQueryFailed(err error) bool {
	return kindOf(err) == ErrKindQueryFailed
}

// IsMultipleRows reports whether a single-row lookup matched more than one
// row. Always a caller logic error, never worth retrying.
func IsMultipleRows(err error) bool {
	return kindOf(err) == ErrKindMultipleRows
}

// IsFieldNotFound reports whether a row field access named an absent column.
func IsFieldNotFound(err error) bool {
	return kindOf(err) == ErrKindFieldNotFound
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return kindOf(err) == ErrKindInvalidInput
}

// kindOf extracts the ErrKind from any error in the chain.
func kindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
