package vm

import (
	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/shade/builtins"
	"github.com/deepnoodle-ai/shade/host"
)

// Option is a configuration function for an Executor.
type Option func(*Executor)

// WithHost sets the handler that receives host calls. Without one, host
// calls are no-ops and returning bindings produce none.
func WithHost(h host.Handler) Option {
	return func(e *Executor) {
		e.host = h
	}
}

// WithRegistry sets the registry used to evaluate BUILTIN instructions. It
// must be the registry the program was compiled with. The default is
// builtins.Default().
func WithRegistry(r *builtins.Registry) Option {
	return func(e *Executor) {
		e.registry = r
	}
}

// WithLogger sets the logger for debug events such as unhandled host calls.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Executor) {
		e.log = logger
	}
}

// WithGlobals provides initial values for globals with the given names.
// Values are converted with object.FromGo. Names the program does not
// declare are ignored.
func WithGlobals(globals map[string]any) Option {
	return func(e *Executor) {
		for name, value := range globals {
			e.inputGlobals[name] = value
		}
	}
}

// WithMaxCallDepth limits the number of nested user function calls. Zero
// disables the limit. The default is DefaultMaxCallDepth.
func WithMaxCallDepth(depth int) Option {
	return func(e *Executor) {
		e.maxCallDepth = depth
	}
}

// WithInstructionBudget limits the number of instructions a single Run or
// Call may execute. Zero, the default, disables the limit.
func WithInstructionBudget(budget int64) Option {
	return func(e *Executor) {
		e.budget = budget
	}
}

// WithTime sets the initial value of the "time" variable.
func WithTime(t float32) Option {
	return func(e *Executor) {
		e.time = t
	}
}

// WithContextCheckInterval sets how often the executor checks ctx.Done()
// during execution. The interval is specified in number of instructions. A
// value of 0 disables the check. The default is
// DefaultContextCheckInterval (1000).
func WithContextCheckInterval(interval int) Option {
	return func(e *Executor) {
		e.contextCheckInterval = interval
	}
}

// WithObserver sets an observer for execution events.
// The observer receives callbacks for instruction steps, function calls,
// and function returns.
//
// Observer methods are called synchronously during execution, so
// implementations should be fast to avoid impacting performance.
// Returning false from any observer method halts execution immediately.
func WithObserver(observer Observer) Option {
	return func(e *Executor) {
		e.observer = observer
	}
}
