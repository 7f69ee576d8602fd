package shade

import (
	"maps"

	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/shade/builtins"
	"github.com/deepnoodle-ai/shade/host"
	"github.com/deepnoodle-ai/shade/vm"
)

// Option configures a shade compilation or execution.
type Option func(*options)

// WithGlobals provides initial values for globals declared by the program.
// This option is additive, so multiple WithGlobals options may be supplied.
// If the same key is supplied multiple times, the last value wins. Names the
// program does not declare are ignored.
func WithGlobals(globals map[string]any) Option {
	return func(o *options) {
		maps.Copy(o.globals, globals)
	}
}

// WithGlobal supplies the initial value of a single global.
func WithGlobal(name string, value any) Option {
	return func(o *options) {
		o.globals[name] = value
	}
}

// WithBindings sets the registry of builtins and host bindings. The same
// registry is used to compile and to run a program, so pass it to both
// Compile and Run.
func WithBindings(registry *builtins.Registry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// WithHost sets the handler that receives host calls.
func WithHost(h host.Handler) Option {
	return func(o *options) {
		o.host = h
	}
}

// WithLogger sets the logger used by the compiler and the executor.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithObserver sets an observer for execution events.
// The observer receives callbacks for instruction steps, function calls,
// and function returns.
func WithObserver(observer vm.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithMaxCallDepth limits nested user function calls. Zero disables the
// limit.
func WithMaxCallDepth(depth int) Option {
	return func(o *options) {
		o.maxCallDepth = &depth
	}
}

// WithInstructionBudget limits the instructions a single execution may run.
func WithInstructionBudget(budget int64) Option {
	return func(o *options) {
		o.budget = budget
	}
}

// WithTime sets the value of the "time" variable.
func WithTime(t float32) Option {
	return func(o *options) {
		o.time = t
	}
}

// WithoutOptimizer compiles function bodies without the store/load peephole
// pass.
func WithoutOptimizer() Option {
	return func(o *options) {
		o.disableOptimizer = true
	}
}
