// Package shade compiles and runs programs written in the shade scripting
// language used for shader parameters and entity behavior.
//
// The parser is not part of this module: callers compile an *ast.Unit that
// their front end produced. A compiled Program is immutable, so one program
// may be run by any number of goroutines, each with its own executor.
//
//	program, err := shade.Compile(unit, shade.WithHost(engine))
//	result, err := shade.Run(ctx, program, shade.WithGlobal("speed", 2))
package shade

import (
	"context"
	"maps"

	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/shade/ast"
	"github.com/deepnoodle-ai/shade/builtins"
	"github.com/deepnoodle-ai/shade/compiler"
	"github.com/deepnoodle-ai/shade/host"
	"github.com/deepnoodle-ai/shade/object"
	"github.com/deepnoodle-ai/shade/vm"
)

type options struct {
	globals          map[string]any
	registry         *builtins.Registry
	host             host.Handler
	logger           zerolog.Logger
	observer         vm.Observer
	maxCallDepth     *int
	budget           int64
	time             float32
	disableOptimizer bool
}

func collectOptions(opts ...Option) *options {
	o := &options{globals: map[string]any{}, logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) compilerConfig() *compiler.Config {
	logger := o.logger
	return &compiler.Config{
		Bindings:         o.registry,
		Logger:           &logger,
		DisableOptimizer: o.disableOptimizer,
	}
}

func (o *options) vmOpts() []vm.Option {
	opts := []vm.Option{
		vm.WithLogger(o.logger),
		vm.WithTime(o.time),
	}
	if o.registry != nil {
		opts = append(opts, vm.WithRegistry(o.registry))
	}
	if len(o.globals) > 0 {
		opts = append(opts, vm.WithGlobals(maps.Clone(o.globals)))
	}
	if o.host != nil {
		opts = append(opts, vm.WithHost(o.host))
	}
	if o.observer != nil {
		opts = append(opts, vm.WithObserver(o.observer))
	}
	if o.maxCallDepth != nil {
		opts = append(opts, vm.WithMaxCallDepth(*o.maxCallDepth))
	}
	if o.budget > 0 {
		opts = append(opts, vm.WithInstructionBudget(o.budget))
	}
	return opts
}

// Compile compiles a parsed unit, and the units it imports, into a Program.
// The returned Program is immutable and safe for concurrent use.
func Compile(unit *ast.Unit, opts ...Option) (*Program, error) {
	o := collectOptions(opts...)
	c := compiler.New(o.compilerConfig())
	code, err := c.Compile(unit)
	if err != nil {
		return nil, err
	}
	return &Program{
		code:     code,
		registry: o.registry,
		imported: c.Context().ImportedPaths(),
		path:     unit.Path,
	}, nil
}

// Run executes the program body and returns its result as a native Go
// value. Each call creates fresh runtime state, so the same Program can be
// run concurrently.
func Run(ctx context.Context, program *Program, opts ...Option) (any, error) {
	e := program.newExecutor(collectOptions(opts...))
	result, err := e.Run(ctx)
	if err != nil {
		return nil, err
	}
	return result.Interface(), nil
}

// Call runs the program body to initialize globals and then invokes the
// named function with the given arguments, converted with object.FromGo.
func Call(ctx context.Context, program *Program, name string, args []any, opts ...Option) (any, error) {
	values, err := convertArgs(args)
	if err != nil {
		return nil, err
	}
	e := program.newExecutor(collectOptions(opts...))
	if _, err := e.Run(ctx); err != nil {
		return nil, err
	}
	result, err := e.CallName(ctx, name, values...)
	if err != nil {
		return nil, err
	}
	return result.Interface(), nil
}

// Eval is a convenience function that compiles and runs a unit.
// It is equivalent to Compile() followed by Run().
func Eval(ctx context.Context, unit *ast.Unit, opts ...Option) (any, error) {
	program, err := Compile(unit, opts...)
	if err != nil {
		return nil, err
	}
	return Run(ctx, program, opts...)
}

func convertArgs(args []any) ([]object.Value, error) {
	values := make([]object.Value, len(args))
	for i, arg := range args {
		v, err := object.FromGo(arg)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
