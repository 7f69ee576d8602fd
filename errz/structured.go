// Package errz defines the errors raised while a shade program executes.
package errz

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/shade/errors"
)

// ErrorKind represents the category of a runtime error.
type ErrorKind int

const (
	// ErrType indicates an operation applied to values of the wrong type.
	ErrType ErrorKind = iota
	// ErrValue indicates an invalid value for an operation, such as a
	// division by zero.
	ErrValue
	// ErrName indicates a reference to a function or slot that does not exist.
	ErrName
	// ErrRuntime indicates a malformed program, such as a stack underflow.
	ErrRuntime
	// ErrLimit indicates a call depth or instruction budget was exhausted.
	ErrLimit
	// ErrHost indicates a failure reported by a host binding.
	ErrHost
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrType:
		return "type error"
	case ErrValue:
		return "value error"
	case ErrName:
		return "name error"
	case ErrRuntime:
		return "runtime error"
	case ErrLimit:
		return "limit error"
	case ErrHost:
		return "host error"
	default:
		return "error"
	}
}

// StackFrame is one active user function at the time of an error.
type StackFrame struct {
	Function string
	Location errors.Location
}

// String returns a formatted string representation of the stack frame.
func (f StackFrame) String() string {
	return fmt.Sprintf("at %s (%s)", f.Function, f.Location)
}

// RuntimeError is returned by the executor when an instruction fails. The
// location is carried through from the instruction that failed.
type RuntimeError struct {
	Message  string
	Kind     ErrorKind
	Code     errors.ErrorCode
	Location errors.Location
	Stack    []StackFrame
	Cause    error
}

// New creates a RuntimeError with a formatted message.
func New(kind ErrorKind, code errors.ErrorCode, loc errors.Location, format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Message:  fmt.Sprintf(format, args...),
		Kind:     kind,
		Code:     code,
		Location: loc,
	}
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	return errors.Render(e.Message, e.Location)
}

// Unwrap returns the underlying cause of the error.
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// WithCause wraps the error with a cause.
func (e *RuntimeError) WithCause(cause error) *RuntimeError {
	e.Cause = cause
	return e
}

// WithStack attaches the active call stack, innermost frame first.
func (e *RuntimeError) WithStack(stack []StackFrame) *RuntimeError {
	e.Stack = stack
	return e
}

// FriendlyErrorMessage returns the error with its kind and a stack trace.
func (e *RuntimeError) FriendlyErrorMessage() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(": ")
	b.WriteString(e.Error())
	if len(e.Stack) > 0 {
		b.WriteString("\nStack trace:")
		for _, frame := range e.Stack {
			b.WriteString("\n  ")
			b.WriteString(frame.String())
		}
	}
	return b.String()
}
