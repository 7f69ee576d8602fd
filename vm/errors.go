package vm

import (
	goerrors "errors"

	"github.com/deepnoodle-ai/shade/errors"
	"github.com/deepnoodle-ai/shade/errz"
	"github.com/deepnoodle-ai/shade/object"
)

const mainFrame = "<main>"

// fail creates a runtime error at the current instruction with the active
// call stack attached.
func (e *Executor) fail(kind errz.ErrorKind, code errors.ErrorCode, format string, args ...any) *errz.RuntimeError {
	return errz.New(kind, code, e.loc, format, args...).WithStack(e.captureStack())
}

// wrap converts an error returned by a value operation or builtin into a
// runtime error. Errors that already are runtime errors pass through.
func (e *Executor) wrap(err error) error {
	var runtimeErr *errz.RuntimeError
	if goerrors.As(err, &runtimeErr) {
		return err
	}
	var typeErr *object.TypeError
	switch {
	case goerrors.As(err, &typeErr):
		return e.fail(errz.ErrType, errors.E3001, "%s", typeErr.Message).WithCause(err)
	case goerrors.Is(err, object.ErrDivisionByZero):
		return e.fail(errz.ErrValue, errors.E3002, "Division by zero").WithCause(err)
	default:
		return e.fail(errz.ErrValue, errors.E3001, "%s", err.Error()).WithCause(err)
	}
}

func (e *Executor) halted() error {
	return e.fail(errz.ErrLimit, errors.E3008, "Execution halted by observer")
}

// captureStack lists the active functions, innermost first. Each frame
// reports where execution is in that function: the current instruction for
// the innermost frame and the pending call site for the others.
func (e *Executor) captureStack() []errz.StackFrame {
	stack := make([]errz.StackFrame, 0, len(e.frames)+1)
	loc := e.loc
	for i := len(e.frames) - 1; i >= 0; i-- {
		f := e.frames[i]
		stack = append(stack, errz.StackFrame{Function: f.fn.Name(), Location: loc})
		loc = f.callSite
	}
	if e.inBody {
		stack = append(stack, errz.StackFrame{Function: mainFrame, Location: loc})
	}
	return stack
}
