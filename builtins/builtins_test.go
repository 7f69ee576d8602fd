package builtins

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/shade/object"
)

func call(t *testing.T, name string, args ...object.Value) object.Value {
	t.Helper()
	b, _, ok := Default().Builtin(name)
	require.True(t, ok, name)
	require.Equal(t, b.Arity, len(args))
	result, err := b.Fn(args)
	require.Nil(t, err)
	return result
}

func requireClose(t *testing.T, expected, actual object.Value) {
	t.Helper()
	require.Equal(t, expected.Type(), actual.Type())
	for i := 0; i < expected.Components(); i++ {
		require.InDelta(t, expected.Component(i), actual.Component(i), 1e-5)
	}
}

func TestMathBuiltins(t *testing.T) {
	f := object.NewFloat
	tests := []struct {
		name     string
		args     []object.Value
		expected object.Value
	}{
		{"length", []object.Value{object.NewFloat2(3, 4)}, f(5)},
		{"length", []object.Value{f(-2)}, f(2)},
		{"abs", []object.Value{object.NewFloat2(-1, 2)}, object.NewFloat2(1, 2)},
		{"floor", []object.Value{f(1.7)}, f(1)},
		{"ceil", []object.Value{f(1.2)}, f(2)},
		{"fract", []object.Value{f(-0.25)}, f(0.75)},
		{"mod", []object.Value{f(-1), f(3)}, f(2)},
		{"min", []object.Value{object.NewFloat2(1, 5), f(3)}, object.NewFloat2(1, 3)},
		{"max", []object.Value{object.NewFloat2(1, 5), f(3)}, object.NewFloat2(3, 5)},
		{"mix", []object.Value{f(0), f(10), f(0.25)}, f(2.5)},
		{"clamp", []object.Value{object.NewFloat3(-1, 0.5, 2), f(0), f(1)}, object.NewFloat3(0, 0.5, 1)},
		{"step", []object.Value{f(0.5), object.NewFloat2(0.2, 0.7)}, object.NewFloat2(0, 1)},
		{"smoothstep", []object.Value{f(0), f(1), f(0.5)}, f(0.5)},
		{"dot", []object.Value{object.NewFloat3(1, 2, 3), object.NewFloat3(4, 5, 6)}, f(32)},
		{"cross", []object.Value{object.NewFloat3(1, 0, 0), object.NewFloat3(0, 1, 0)}, object.NewFloat3(0, 0, 1)},
		{"normalize", []object.Value{object.NewFloat2(0, 5)}, object.NewFloat2(0, 1)},
		{"normalize", []object.Value{object.NewFloat2(0, 0)}, object.NewFloat2(0, 0)},
		{"rotate2d", []object.Value{object.NewFloat2(1, 0), f(90)}, object.NewFloat2(0, 1)},
		{"degrees", []object.Value{f(math.Pi)}, f(180)},
		{"radians", []object.Value{f(180)}, f(math.Pi)},
		{"sqrt", []object.Value{f(9)}, f(3)},
		{"pow", []object.Value{f(2), f(10)}, f(1024)},
		{"atan2", []object.Value{f(1), f(1)}, f(math.Pi / 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireClose(t, tt.expected, call(t, tt.name, tt.args...))
		})
	}
}

func TestMathBuiltinErrors(t *testing.T) {
	r := Default()
	for _, tc := range []struct {
		name string
		args []object.Value
	}{
		{"sin", []object.Value{object.NewString("x")}},
		{"min", []object.Value{object.NewFloat2(1, 1), object.NewFloat3(1, 1, 1)}},
		{"dot", []object.Value{object.NewFloat2(1, 1), object.NewFloat(1)}},
		{"cross", []object.Value{object.NewFloat2(1, 1), object.NewFloat2(1, 1)}},
		{"rotate2d", []object.Value{object.NewFloat3(1, 1, 1), object.NewFloat(1)}},
	} {
		b, _, ok := r.Builtin(tc.name)
		require.True(t, ok)
		_, err := b.Fn(tc.args)
		var typeErr *object.TypeError
		require.ErrorAs(t, err, &typeErr, tc.name)
	}
}

func TestRegistry(t *testing.T) {
	r := Default()

	_, index, ok := r.Builtin("length")
	require.True(t, ok)
	b, ok := r.BuiltinAt(index)
	require.True(t, ok)
	require.Equal(t, "length", b.Name)
	_, ok = r.BuiltinAt(1000)
	require.False(t, ok)

	opacity, ok := r.Binding("set_opacity")
	require.True(t, ok)
	require.True(t, opacity.Accepts(1))
	require.False(t, opacity.Accepts(2))
	require.False(t, opacity.Returns)

	format, ok := r.Binding("format")
	require.True(t, ok)
	require.True(t, format.Accepts(5))
	require.True(t, format.Returns)

	_, ok = r.Binding("missing_fn")
	require.False(t, ok)

	require.NotNil(t, r.AddBinding(Binding{Name: "sin", Arity: 1}))
	require.NotNil(t, r.AddBinding(Binding{Name: "print", Arity: 1}))
	require.NotNil(t, r.AddBinding(Binding{Name: "x", Arity: -2}))
	require.NotNil(t, r.AddBuiltin(Builtin{Name: "nofn", Arity: 1}))
	require.Contains(t, r.Names(), "smoothstep")
	require.Contains(t, r.Names(), "set_opacity")
}

func TestLoadBindings(t *testing.T) {
	r := NewRegistry()
	err := r.LoadBindings(strings.NewReader(`
[[binding]]
name = "set_color"
arity = 1

[[binding]]
name = "health"
arity = 0
returns = true
doc = "Current health."

[[binding]]
name = "log"
arity = -1
`))
	require.Nil(t, err)
	require.Equal(t, []Binding{
		{Name: "health", Arity: 0, Returns: true, Doc: "Current health."},
		{Name: "log", Arity: Variadic},
		{Name: "set_color", Arity: 1},
	}, r.Bindings())
}

func TestLoadBindingsErrors(t *testing.T) {
	r := Default()
	err := r.LoadBindings(strings.NewReader(`
[[binding]]
name = "sin"
arity = 1

[[binding]]
name = ""
arity = 1
`))
	require.NotNil(t, err)
	require.Contains(t, err.Error(), `"sin" is already a builtin`)
	require.Contains(t, err.Error(), "empty builtin name")

	err = r.LoadBindings(strings.NewReader("[[binding]\nname = "))
	require.ErrorContains(t, err, "parse error")

	require.NotNil(t, r.LoadBindingsFile("does/not/exist.toml"))
}

func TestFormat(t *testing.T) {
	s := func(v string) object.Value { return object.NewString(v) }
	require.Equal(t, s("x=1 y=[1, 2]"), Format([]object.Value{s("x={} y={}"), object.NewFloat(1), object.NewFloat2(1, 2)}))
	require.Equal(t, s("a {}"), Format([]object.Value{s("a {}")}))
	require.Equal(t, s("ab"), Format([]object.Value{s("a{}"), s("b"), s("c")}))
	require.Equal(t, s(""), Format(nil))
	require.Equal(t, "1 true none", Join([]object.Value{object.NewFloat(1), object.True, object.None}))
}
