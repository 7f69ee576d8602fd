package object

import (
	"errors"
	"fmt"
)

// ErrDivisionByZero is returned when a division or modulo has a zero divisor.
var ErrDivisionByZero = errors.New("Division by zero")

// TypeError is returned when an operation is applied to values of the wrong
// type.
type TypeError struct {
	Message string
}

func (e *TypeError) Error() string {
	return e.Message
}

// TypeErrorf returns a *TypeError with a formatted message.
func TypeErrorf(format string, args ...any) error {
	return &TypeError{Message: fmt.Sprintf(format, args...)}
}
