// Package vm provides an Executor that runs compiled shade programs.
//
// An Executor owns its value stack, call frames and a copy of the program
// globals. The program itself is never modified, so any number of executors
// may share one program, each on its own goroutine. A single Executor is not
// safe for concurrent use.
//
// Instructions carry nested sequences for branches, loops and short-circuit
// operands, so execution is a recursive walk over those sequences rather
// than a jump-driven instruction pointer. Each walk reports whether the
// sequence completed, hit a break or executed a return.
package vm

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/shade/builtins"
	"github.com/deepnoodle-ai/shade/bytecode"
	"github.com/deepnoodle-ai/shade/errors"
	"github.com/deepnoodle-ai/shade/errz"
	"github.com/deepnoodle-ai/shade/host"
	"github.com/deepnoodle-ai/shade/object"
)

const (
	// DefaultMaxCallDepth is the default limit on nested user function calls.
	DefaultMaxCallDepth = 1024

	// DefaultContextCheckInterval is the number of instructions between
	// checks of ctx.Done(). Set to 0 to disable.
	DefaultContextCheckInterval = 1000
)

// Executor runs one program. Create it with New.
type Executor struct {
	program  *bytecode.Program
	registry *builtins.Registry
	host     host.Handler
	log      zerolog.Logger

	inputGlobals map[string]any
	initial      []object.Value
	globals      []object.Value
	time         float32

	stack  []object.Value
	frames []frame

	maxCallDepth         int
	budget               int64
	steps                int64
	contextCheckInterval int
	ctx                  context.Context

	observer    Observer
	observerCfg ObserverConfig
	lastLine    errors.Location

	// Location of the instruction being executed
	loc errors.Location

	// inBody is set while the program body, rather than an entry function,
	// is executing.
	inBody bool

	runMutex sync.Mutex
	running  bool
}

// frame is the activation record of a user function call.
type frame struct {
	fn     *bytecode.Function
	locals []object.Value

	// callSite is the location of the CALL instruction in the caller.
	callSite errors.Location
}

// New creates an Executor for program.
//
// New panics if a value given with WithGlobals cannot be converted to a
// shade value; that is a programming error in the host rather than a
// condition a script can cause.
func New(program *bytecode.Program, options ...Option) *Executor {
	e := &Executor{
		program:              program,
		registry:             builtins.Default(),
		log:                  zerolog.Nop(),
		inputGlobals:         map[string]any{},
		maxCallDepth:         DefaultMaxCallDepth,
		contextCheckInterval: DefaultContextCheckInterval,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.observer != nil {
		e.observerCfg = NormalizeConfig(e.observer.Config())
	}
	e.initial = make([]object.Value, program.Globals)
	for i := range e.initial {
		e.initial[i] = object.None
	}
	for name, value := range e.inputGlobals {
		slot := e.globalSlot(name)
		if slot < 0 {
			e.log.Debug().Str("global", name).Msg("ignoring unknown global")
			continue
		}
		v, err := object.FromGo(value)
		if err != nil {
			panic(fmt.Sprintf("vm: invalid global %q: %v", name, err))
		}
		e.initial[slot] = v
	}
	e.globals = make([]object.Value, len(e.initial))
	copy(e.globals, e.initial)
	return e
}

// Program returns the program run by the executor.
func (e *Executor) Program() *bytecode.Program {
	return e.program
}

func (e *Executor) globalSlot(name string) int {
	for slot, n := range e.program.GlobalNames {
		if n == name {
			return slot
		}
	}
	return -1
}

// Globals returns the current global values by name.
func (e *Executor) Globals() map[string]object.Value {
	out := make(map[string]object.Value, len(e.globals))
	for slot, value := range e.globals {
		if slot < len(e.program.GlobalNames) {
			out[e.program.GlobalNames[slot]] = value
		}
	}
	return out
}

// Global returns the current value of a global.
func (e *Executor) Global(name string) (object.Value, bool) {
	slot := e.globalSlot(name)
	if slot < 0 || slot >= len(e.globals) {
		return object.None, false
	}
	return e.globals[slot], true
}

// SetGlobal sets the value of a global declared by the program. The value is
// converted with object.FromGo.
func (e *Executor) SetGlobal(name string, value any) error {
	slot := e.globalSlot(name)
	if slot < 0 || slot >= len(e.globals) {
		return fmt.Errorf("global not found: %s", name)
	}
	v, err := object.FromGo(value)
	if err != nil {
		return err
	}
	e.globals[slot] = v
	return nil
}

// Reset restores the globals to their initial values and clears the stack.
func (e *Executor) Reset() {
	copy(e.globals, e.initial)
	e.stack = e.stack[:0]
	e.frames = e.frames[:0]
}

// SetTime sets the value read by the "time" variable.
func (e *Executor) SetTime(t float32) {
	e.time = t
}

// Time returns the value read by the "time" variable.
func (e *Executor) Time() float32 {
	return e.time
}

// Run executes the program body. If the body executes a return statement,
// its value is returned; otherwise the result is none.
func (e *Executor) Run(ctx context.Context) (object.Value, error) {
	return e.run(ctx, func() (object.Value, error) {
		e.inBody = true
		sig, err := e.exec(e.program.Body)
		if err != nil {
			return object.None, err
		}
		switch sig {
		case sigReturn:
			return e.pop(), nil
		case sigBreak:
			return object.None, e.fail(errz.ErrRuntime, errors.E3007, "Break outside of a loop")
		}
		return object.None, nil
	})
}

// Call invokes the user function with the given index.
func (e *Executor) Call(ctx context.Context, index int, args ...object.Value) (object.Value, error) {
	fn, ok := e.program.Function(index)
	if !ok {
		return object.None, fmt.Errorf("function index %d out of range", index)
	}
	return e.callEntry(ctx, fn, args)
}

// CallName invokes a user function by name.
func (e *Executor) CallName(ctx context.Context, name string, args ...object.Value) (object.Value, error) {
	fn, _, ok := e.program.FunctionByName(name)
	if !ok {
		return object.None, fmt.Errorf("function not found: %s", name)
	}
	return e.callEntry(ctx, fn, args)
}

// Shade invokes the program's shade entry.
func (e *Executor) Shade(ctx context.Context, args ...object.Value) (object.Value, error) {
	fn, ok := e.program.Shade()
	if !ok {
		return object.None, fmt.Errorf("program has no %s function", bytecode.ShadeName)
	}
	return e.callEntry(ctx, fn, args)
}

func (e *Executor) callEntry(ctx context.Context, fn *bytecode.Function, args []object.Value) (object.Value, error) {
	if len(args) != fn.Arity() {
		return object.None, errz.New(errz.ErrType, errors.E3001, fn.Location(),
			"Wrong amount of arguments for '%s', expected '%d' got '%d'",
			fn.Name(), fn.Arity(), len(args))
	}
	return e.run(ctx, func() (object.Value, error) {
		if err := e.callFunction(fn, args, fn.Location()); err != nil {
			return object.None, err
		}
		return e.pop(), nil
	})
}

// run prepares the executor for one top-level execution and converts panics
// into runtime errors.
func (e *Executor) run(ctx context.Context, body func() (object.Value, error)) (result object.Value, err error) {
	if err := e.start(ctx); err != nil {
		return object.None, err
	}
	defer e.stop()
	defer func() {
		if r := recover(); r != nil {
			result = object.None
			if _, ok := r.(stackUnderflow); ok {
				err = e.fail(errz.ErrRuntime, errors.E3003, "Stack underflow")
				return
			}
			err = e.fail(errz.ErrRuntime, errors.E3007, "panic: %v", r)
		}
	}()
	return body()
}

func (e *Executor) start(ctx context.Context) error {
	e.runMutex.Lock()
	defer e.runMutex.Unlock()
	if e.running {
		return fmt.Errorf("executor is already running")
	}
	e.running = true
	e.ctx = ctx
	e.steps = 0
	e.stack = e.stack[:0]
	e.frames = e.frames[:0]
	e.loc = errors.Location{}
	e.lastLine = errors.Location{}
	e.inBody = false
	return nil
}

func (e *Executor) stop() {
	e.runMutex.Lock()
	defer e.runMutex.Unlock()
	e.running = false
	e.ctx = nil
}
