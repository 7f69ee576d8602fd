package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func num(v float32) Expr { return &Value{Lit: Float{Value: v}} }

func TestLiteralComponents(t *testing.T) {
	tests := []struct {
		lit        Literal
		components int
		truthy     bool
	}{
		{None{}, 0, false},
		{Bool{Value: true}, 0, true},
		{Bool{Value: false}, 0, false},
		{Float{Value: 0}, 1, false},
		{Float{Value: -1}, 1, true},
		{Float{Value: 0.25}, 1, true},
		{Float2{X: num(0), Y: num(0)}, 2, true},
		{Float3{X: num(0), Y: num(0), Z: num(0)}, 3, true},
		{Float4{X: num(0), Y: num(0), Z: num(0), W: num(0)}, 4, true},
		{String{Value: ""}, 0, false},
		{String{Value: "x"}, 0, true},
		{&FuncRef{Name: "f"}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.lit.String(), func(t *testing.T) {
			require.Equal(t, tt.components, tt.lit.Components())
			require.Equal(t, tt.truthy, tt.lit.IsTruthy())
		})
	}
}

func TestElements(t *testing.T) {
	v := Float3{X: num(1), Y: num(2), Z: num(3)}
	require.Len(t, Elements(v), 3)
	require.Nil(t, Elements(Float{Value: 1}))
	require.Equal(t, "vec3(1, 2, 3)", v.String())
}

func TestFuncDeclParams(t *testing.T) {
	fn := &FuncDecl{
		Name:  "add",
		Arity: 2,
		Locals: []Local{
			{Name: "a"}, {Name: "b"}, {Name: "tmp", Default: num(1)},
		},
		Body: &Block{},
	}
	require.Equal(t, []string{"a", "b"}, fn.Params())
	require.Equal(t, "fn add(a, b)", fn.Ref().String())
}

func TestUnitFunctions(t *testing.T) {
	f1 := &FuncDecl{Name: "a", Body: &Block{}}
	f2 := &FuncDecl{Name: "b", Body: &Block{}}
	u := &Unit{
		Stmts:   []Stmt{f1, &Empty{}, f2},
		Globals: map[string]int{"x": 1, "color": 0},
	}
	require.Equal(t, []*FuncDecl{f1, f2}, u.Functions())
	require.Equal(t, []string{"color", "x"}, u.GlobalNames())

	u.Globals = map[string]int{"fog": 7, "a": 0, "b": 5}
	require.Equal(t, []string{"a", "b", "fog"}, u.GlobalNames())
}

func TestInspect(t *testing.T) {
	// fn f(a) { if a > 1 { return g(a) } }
	body := &Block{Stmts: []Stmt{
		&If{
			Cond: &Comparison{Op: ">", Left: &Variable{Name: "a"}, Right: num(1)},
			Then: &Block{Stmts: []Stmt{
				&Return{Value: &Call{Name: "g", Args: []Expr{&Variable{Name: "a"}}}},
			}},
		},
	}}
	fn := &FuncDecl{Name: "f", Arity: 1, Locals: []Local{{Name: "a"}}, Body: body}

	var calls, vars int
	Inspect(fn, func(n Node) bool {
		switch n.(type) {
		case *Call:
			calls++
		case *Variable:
			vars++
		}
		return true
	})
	require.Equal(t, 1, calls)
	require.Equal(t, 2, vars)

	var visited int
	Inspect(fn, func(n Node) bool {
		visited++
		_, isIf := n.(*If)
		return !isIf
	})
	require.Equal(t, 3, visited) // FuncDecl, Block, If
}

func TestStrings(t *testing.T) {
	expr := &Binary{Op: "+", Left: &Variable{Name: "a"}, Right: &Variable{Name: "b", Swizzle: "x"}}
	require.Equal(t, "(a + b.x)", expr.String())
	call := &Call{Name: "mix", Args: []Expr{num(1), num(2), num(0.5)}, Swizzle: "rgb"}
	require.Equal(t, "mix(1, 2, 0.5).rgb", call.String())
	require.Equal(t, "x += 1", (&Assign{Name: "x", Op: "+=", Value: num(1)}).String())
}
