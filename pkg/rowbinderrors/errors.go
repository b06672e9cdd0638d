// Package rowbinderrors provides structured error handling for rowbind with
// rich context, stack traces, and error categorization.
//
// # Overview
//
// The rowbinderrors package extends Go's standard error handling with:
//   - Error categorization through ErrorType
//   - Structured context with key-value details
//   - Automatic stack trace capture
//   - Error wrapping with cause preservation
//
// # Basic Usage
//
//	// Create a new error
//	err := rowbinderrors.New(rowbinderrors.ErrorTypeIntrospection, "not a struct type")
//
//	// Add context
//	err = err.WithDetail("type", t.String())
//
//	// Wrap existing errors
//	if err := converter.Convert(row, idx); err != nil {
//	    return rowbinderrors.Wrap(err, rowbinderrors.ErrorTypePropertyWrite, "conversion failed").
//	        WithDetail("property", desc.Name)
//	}
//
// # Error Types
//
// Every failure mode of the mapping pipeline has its own type, so callers can
// distinguish resolution-time failures (introspection, column matching) from
// per-row materialization failures and transaction conflicts with errors.Is
// style checks via IsType.
package rowbinderrors

import (
	"errors"
	"runtime"

	stringpool "github.com/rowbind/rowbind/pkg/strings"
)

// ErrorType represents the category of error, used for error handling
// strategies and failure attribution.
type ErrorType string

const (
	// ErrorTypeIntrospection indicates a target type that cannot be reflected
	// into a property catalog (not a plain struct shape).
	ErrorTypeIntrospection ErrorType = "introspection"
	// ErrorTypeNoMatchingColumns indicates plan resolution matched zero
	// columns against a non-empty result set.
	ErrorTypeNoMatchingColumns ErrorType = "no_matching_columns"
	// ErrorTypeIncompleteMapping indicates strict matching was enabled and
	// some result columns were left unconsumed.
	ErrorTypeIncompleteMapping ErrorType = "incomplete_mapping"
	// ErrorTypeInstantiation indicates the target type could not be
	// default-constructed.
	ErrorTypeInstantiation ErrorType = "instantiation"
	// ErrorTypePropertyWrite indicates a converted value could not be written
	// to its target property. The error carries the property name.
	ErrorTypePropertyWrite ErrorType = "property_write"
	// ErrorTypeIsolationConflict indicates a nested transactional call
	// requested an isolation level differing from the enclosing transaction.
	ErrorTypeIsolationConflict ErrorType = "isolation_conflict"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeData represents row data access errors
	ErrorTypeData ErrorType = "data"
	// ErrorTypeQuery represents query execution errors
	ErrorTypeQuery ErrorType = "query"
)

// Error represents a structured error with context.
//
// Fields:
//   - Type: Categorizes the error for handling strategies
//   - Message: Human-readable error description
//   - Cause: The underlying error that caused this error
//   - Details: Key-value pairs providing additional context
//   - Stack: Call stack at the point of error creation
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack, capturing
// the function name, file path, and line number for debugging.
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface, returning a formatted error message
// that includes the error type, message, and cause (if present).
func (e *Error) Error() string {
	if e.Cause != nil {
		return stringpool.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return stringpool.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error, enabling compatibility with errors.Is
// and errors.As for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error, providing additional
// context for debugging. This method can be chained.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Detail returns the detail stored under key, or nil.
func (e *Error) Detail(key string) interface{} {
	if e.Details == nil {
		return nil
	}
	return e.Details[key]
}

// New creates a new error with the given type and message, automatically
// capturing the call stack at the point of creation.
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message.
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: stringpool.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context, preserving the
// original error as the cause. If the error is already a structured Error,
// its stack trace is preserved. Returns nil if the input error is nil.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType checks if the error is of the given type, anywhere in its chain.
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// TypeOf returns the ErrorType of a structured error, or the empty string
// for plain errors.
func TypeOf(err error) ErrorType {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Type
}

// captureStack captures the current call stack up to maxFrames deep,
// skipping the specified number of frames from the top.
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
