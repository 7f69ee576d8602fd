package shade

import (
	"context"
	"fmt"

	"github.com/deepnoodle-ai/shade/bytecode"
	"github.com/deepnoodle-ai/shade/host"
	"github.com/deepnoodle-ai/shade/object"
	"github.com/deepnoodle-ai/shade/vm"
)

// Shader provides stateful evaluation of a program's shade entry for one
// surface. Unlike Run and Call, which create fresh state on each call, a
// Shader keeps its globals across evaluations and remembers the opacity the
// entry set during the last one.
//
// A Shader is not safe for concurrent use; create one per goroutine.
type Shader struct {
	program    *Program
	exec       *vm.Executor
	opacity    float32
	hasOpacity bool
}

// NewShader creates a Shader and runs the program body once to initialize
// the globals. The program must define a shade entry.
func NewShader(ctx context.Context, program *Program, opts ...Option) (*Shader, error) {
	if !program.HasShade() {
		return nil, fmt.Errorf("program has no %s function", bytecode.ShadeName)
	}
	s := &Shader{program: program}
	o := collectOptions(opts...)
	next := o.host
	o.host = host.NewMux().
		HandleFunc(bytecode.SetOpacity, func(args []object.Value) (object.Value, bool) {
			s.setOpacity(args)
			if next != nil {
				return next.OnHostCall(bytecode.SetOpacity, args)
			}
			return object.None, false
		}).
		Fallback(next)
	s.exec = program.newExecutor(o)
	if _, err := s.exec.Run(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Shader) setOpacity(args []object.Value) {
	if len(args) != 1 || args[0].Type() != object.FLOAT {
		return
	}
	s.opacity = args[0].Float()
	s.hasOpacity = true
}

// Eval evaluates the shade entry at time t. Arguments are converted with
// object.FromGo.
func (s *Shader) Eval(ctx context.Context, t float32, args ...any) (any, error) {
	values, err := convertArgs(args)
	if err != nil {
		return nil, err
	}
	s.hasOpacity = false
	s.exec.SetTime(t)
	result, err := s.exec.Shade(ctx, values...)
	if err != nil {
		return nil, err
	}
	return result.Interface(), nil
}

// Opacity returns the opacity set during the last evaluation, if any.
func (s *Shader) Opacity() (float32, bool) {
	return s.opacity, s.hasOpacity
}

// Get returns the current value of a global as a native Go value.
func (s *Shader) Get(name string) (any, error) {
	v, ok := s.exec.Global(name)
	if !ok {
		return nil, fmt.Errorf("global not found: %s", name)
	}
	return v.Interface(), nil
}

// Set changes the value of a global.
func (s *Shader) Set(name string, value any) error {
	return s.exec.SetGlobal(name, value)
}

// Reset restores the globals and runs the program body again.
func (s *Shader) Reset(ctx context.Context) error {
	s.exec.Reset()
	s.hasOpacity = false
	_, err := s.exec.Run(ctx)
	return err
}

// Program returns the program evaluated by the shader.
func (s *Shader) Program() *Program {
	return s.program
}
