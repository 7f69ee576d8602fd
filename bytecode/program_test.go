package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/shade/object"
	"github.com/deepnoodle-ai/shade/op"
)

func installFunc(t *testing.T, p *Program, name string, arity int, locals []string, code []Instruction) int {
	t.Helper()
	index, err := p.Reserve(name)
	require.Nil(t, err)
	require.Nil(t, p.Install(index, NewFunction(FunctionParams{
		Name:   name,
		Arity:  arity,
		Locals: locals,
		Code:   code,
	})))
	return index
}

func TestReserveInstall(t *testing.T) {
	p := NewProgram()
	a, err := p.Reserve("a")
	require.Nil(t, err)
	b, err := p.Reserve("b")
	require.Nil(t, err)
	require.Equal(t, 0, a)
	require.Equal(t, 1, b)

	_, err = p.Reserve("a")
	require.NotNil(t, err)

	_, ok := p.Function(b)
	require.False(t, ok)

	fn := NewFunction(FunctionParams{Name: "b"})
	require.Nil(t, p.Install(b, fn))
	require.NotNil(t, p.Install(b, fn))
	require.NotNil(t, p.Install(a, fn))
	require.NotNil(t, p.Install(7, fn))

	got, index, ok := p.FunctionByName("b")
	require.True(t, ok)
	require.Equal(t, 1, index)
	require.Same(t, fn, got)
}

func TestShadeRecorded(t *testing.T) {
	p := NewProgram()
	require.Equal(t, -1, p.ShadeIndex)
	_, ok := p.Shade()
	require.False(t, ok)

	installFunc(t, p, "helper", 0, nil, nil)
	index := installFunc(t, p, "shade", 1, []string{"uv", "tmp"}, nil)
	require.Equal(t, index, p.ShadeIndex)
	require.Equal(t, 2, p.ShadeLocals)
	fn, ok := p.Shade()
	require.True(t, ok)
	require.Equal(t, "shade(uv)", fn.String())
}

func TestShaderSupportsOpacity(t *testing.T) {
	setOpacity := []Instruction{Push(object.NewFloat(0.5)), HostCall(SetOpacity, 1, false)}

	t.Run("no shade function", func(t *testing.T) {
		p := NewProgram()
		p.Body = setOpacity
		installFunc(t, p, "other", 0, nil, setOpacity)
		require.False(t, p.ShaderSupportsOpacity())
	})

	t.Run("top level call", func(t *testing.T) {
		p := NewProgram()
		installFunc(t, p, "shade", 0, nil, setOpacity)
		require.True(t, p.ShaderSupportsOpacity())
	})

	t.Run("inside untaken branch", func(t *testing.T) {
		p := NewProgram()
		installFunc(t, p, "shade", 0, nil, []Instruction{
			Push(object.False),
			If(nil, []Instruction{
				Loop(nil, setOpacity, nil),
			}),
		})
		require.True(t, p.ShaderSupportsOpacity())
	})

	t.Run("other host calls", func(t *testing.T) {
		p := NewProgram()
		installFunc(t, p, "shade", 0, nil, []Instruction{
			Push(object.NewFloat(1)),
			HostCall("set_color", 1, false),
		})
		require.False(t, p.ShaderSupportsOpacity())
	})

	t.Run("in default value code", func(t *testing.T) {
		p := NewProgram()
		index, err := p.Reserve("shade")
		require.Nil(t, err)
		require.Nil(t, p.Install(index, NewFunction(FunctionParams{
			Name:     "shade",
			Locals:   []string{"x"},
			Defaults: [][]Instruction{append(setOpacity, Push(object.NewFloat(1)))},
		})))
		require.True(t, p.ShaderSupportsOpacity())
	})
}

func TestInspectAndCount(t *testing.T) {
	code := []Instruction{
		LoadLocal(0),
		If([]Instruction{LoadLocal(1), Simple(op.PopTop)}, []Instruction{LoadLocal(2)}),
		And([]Instruction{LoadLocal(3)}),
	}
	require.Equal(t, 7, Count(code))

	var slots []int
	Inspect(code, func(ins Instruction) bool {
		if ins.Op == op.LoadLocal {
			slots = append(slots, ins.Operand)
		}
		return ins.Op != op.If
	})
	require.Equal(t, []int{0, 3}, slots)
}

func TestStats(t *testing.T) {
	p := NewProgram()
	p.Globals = 2
	p.Strings = []string{"a"}
	p.Body = []Instruction{Push(object.NewFloat(1)), StoreGlobal(0)}
	installFunc(t, p, "f", 0, nil, []Instruction{If([]Instruction{Simple(op.Nop)}, nil)})
	require.Equal(t, Stats{
		InstructionCount: 4,
		FunctionCount:    1,
		GlobalCount:      2,
		StringCount:      1,
	}, p.Stats())
}

func TestNewFunctionCopiesInputs(t *testing.T) {
	locals := []string{"a"}
	code := []Instruction{LoadLocal(0)}
	fn := NewFunction(FunctionParams{Name: "f", Arity: 1, Locals: locals, Code: code})
	locals[0] = "changed"
	code[0] = Simple(op.Nop)
	require.Equal(t, "a", fn.LocalName(0))
	require.Equal(t, op.LoadLocal, fn.Code()[0].Op)
	require.Nil(t, fn.Default(0))
	require.Equal(t, 1, fn.LocalCount())
}

func TestFunctionCopiesNestedCode(t *testing.T) {
	then := []Instruction{LoadLocal(0), HostCall(SetOpacity, 1, false)}
	cond := []Instruction{Simple(op.Nop)}
	defaults := [][]Instruction{nil, {If([]Instruction{Push(object.NewFloat(1))}, nil)}}
	code := []Instruction{
		If(then, nil),
		Loop(cond, nil, nil),
	}
	fn := NewFunction(FunctionParams{
		Name:     "f",
		Arity:    1,
		Locals:   []string{"x", "k"},
		Defaults: defaults,
		Code:     code,
	})

	then[1] = Simple(op.PopTop)
	cond[0] = Simple(op.Break)
	defaults[1][0].Then[0] = Push(object.NewFloat(9))
	code[0] = Simple(op.Nop)

	require.Equal(t, op.If, fn.Code()[0].Op)
	require.Equal(t, HostCall(SetOpacity, 1, false), fn.Code()[0].Then[1])
	require.Equal(t, op.Nop, fn.Code()[1].Cond[0].Op)
	require.Equal(t, object.NewFloat(1), fn.Default(1)[0].Then[0].Value)
	require.Nil(t, fn.Default(0))
	require.Nil(t, fn.Code()[0].Else)
}
