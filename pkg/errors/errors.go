// Package errors carries the coded errors shared by the foldgraph engine,
// CLI and HTTP API.
//
// Every failure that reaches a user is an [*Error] holding a [Code]. The CLI
// prints [UserMessage]; the API maps the code to an HTTP status with
// [IsClientError] and returns it in the JSON body.
//
// # Codes
//
//   - INVALID_*: malformed vertices, edges, kinds and files
//   - *NOT_FOUND: unknown vertex ids or view states
//   - LAYOUT_*: the layout engine could not order or place a level
//   - CACHE_ERROR, UNAVAILABLE: cache backend failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidEdge, "edge %d->%d: unknown endpoint", from, to)
//	if errors.Is(err, errors.ErrCodeInvalidEdge) {
//	    // drop the edge and keep going
//	}
//
//	return errors.Wrap(errors.ErrCodeCache, err, "redis get %s", key)
package errors

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure.
type Code string

const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidVertex Code = "INVALID_VERTEX"
	ErrCodeInvalidEdge   Code = "INVALID_EDGE"
	ErrCodeInvalidKind   Code = "INVALID_KIND"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeVertexNotFound Code = "VERTEX_NOT_FOUND"
	ErrCodeStateNotFound  Code = "STATE_NOT_FOUND"

	// Graph shape warnings and layout failures
	ErrCodeNoSource    Code = "NO_SOURCE"
	ErrCodeCyclicLevel Code = "LAYOUT_CYCLIC_LEVEL"
	ErrCodeUnvisited   Code = "LAYOUT_UNVISITED"
	ErrCodeInnerOwned  Code = "INNER_GRAPH_OWNED"
	ErrCodeCache       Code = "CACHE_ERROR"
	ErrCodeUnavailable Code = "UNAVAILABLE"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error pairs a [Code] with a message and, for wrapped failures, the cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error formats as "CODE: message" with ": cause" appended when set.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns an Error without a cause.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap returns an Error whose cause is cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether the first [*Error] in err's chain carries code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode returns the code of the first [*Error] in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage strips the code prefix from coded errors. Other errors are
// returned unchanged.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsClientError reports whether err was caused by bad input rather than
// by the engine itself. The API uses it to choose between 4xx and 5xx.
func IsClientError(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidVertex, ErrCodeInvalidEdge,
		ErrCodeInvalidKind, ErrCodeInvalidFormat, ErrCodeInvalidPath,
		ErrCodeNotFound, ErrCodeVertexNotFound, ErrCodeStateNotFound,
		ErrCodeCyclicLevel:
		return true
	}
	return false
}
