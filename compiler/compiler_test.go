package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/shade/ast"
	. "github.com/deepnoodle-ai/shade/ast/asttest"
	"github.com/deepnoodle-ai/shade/builtins"
	"github.com/deepnoodle-ai/shade/bytecode"
	"github.com/deepnoodle-ai/shade/errors"
	"github.com/deepnoodle-ai/shade/object"
	"github.com/deepnoodle-ai/shade/op"
)

func compileUnit(t *testing.T, stmts ...ast.Stmt) *bytecode.Program {
	t.Helper()
	program, err := Compile(Unit("test.shade", stmts...), nil)
	require.Nil(t, err)
	require.Nil(t, program.Validate())
	return program
}

func compileErr(t *testing.T, stmts ...ast.Stmt) *errors.CompileError {
	t.Helper()
	_, err := Compile(Unit("test.shade", stmts...), nil)
	require.NotNil(t, err)
	ce, ok := err.(*errors.CompileError)
	require.True(t, ok, "expected a CompileError, got %T", err)
	return ce
}

func ops(code []bytecode.Instruction) []op.Code {
	out := make([]op.Code, len(code))
	for i, ins := range code {
		out[i] = ins.Op
	}
	return out
}

func lookup(t *testing.T, p *bytecode.Program, name string) *bytecode.Function {
	t.Helper()
	fn, _, ok := p.FunctionByName(name)
	require.True(t, ok, "function %s not found", name)
	return fn
}

func TestCompileFunction(t *testing.T) {
	p := compileUnit(t,
		Func("add", []string{"a", "b"},
			Return(Infix(Ident("a"), "+", Ident("b")))),
	)
	fn := lookup(t, p, "add")
	require.Equal(t, 2, fn.Arity())
	require.Equal(t, 2, fn.LocalCount())
	require.Equal(t, []op.Code{op.LoadLocal, op.LoadLocal, op.BinaryOp, op.ReturnValue}, ops(fn.Code()))
	require.True(t, fn.Code()[1].Is(op.LoadLocal, 1))
	require.True(t, fn.Code()[2].Is(op.BinaryOp, int(op.Add)))
	require.Equal(t, "test.shade", fn.Code()[0].Loc.Path)
	require.Equal(t, -1, p.ShadeIndex)
}

func TestWrongArgumentCount(t *testing.T) {
	err := compileErr(t,
		Func("add", []string{"a", "b"}, Return(Infix(Ident("a"), "+", Ident("b")))),
		AtLine(3, Expr(AtLine(3, Call("add", Num(1))))),
	)
	require.Equal(t, errors.E2004, err.Code)
	require.Equal(t, "Wrong amount of arguments for 'add', expected '2' got '1' in test.shade at line 3.", err.Error())
}

func TestBuiltinArgumentCount(t *testing.T) {
	err := compileErr(t, Expr(Call("length")))
	require.Equal(t, errors.E2004, err.Code)
	require.Equal(t, "Wrong amount of arguments for 'length', expected '1' got '0' in test.shade.", err.Error())
}

func TestForwardReference(t *testing.T) {
	p := compileUnit(t,
		Func("first", nil, Return(Call("second"))),
		Func("second", nil, Return(Num(2))),
	)
	first := lookup(t, p, "first")
	require.True(t, first.Code()[0].Is(op.Call, 1))
}

func TestUnknownFunction(t *testing.T) {
	err := compileErr(t, Expr(Call("missing_fn")))
	require.Equal(t, errors.E2002, err.Code)
	require.Equal(t, "Unknown function 'missing_fn' in test.shade.", err.Error())

	err = compileErr(t, Expr(Call("lenght", Num(1))))
	require.Contains(t, err.Suggestions, "length")
	require.Contains(t, err.FriendlyErrorMessage(), "did you mean")
}

func TestUnknownIdentifier(t *testing.T) {
	err := compileErr(t,
		Func("f", []string{"speed"}, Return(AtLine(7, Ident("sped")))),
	)
	require.Equal(t, errors.E2001, err.Code)
	require.Equal(t, "Unknown identifier 'sped' in test.shade at line 7.", err.Error())
	require.Equal(t, []string{"speed"}, err.Suggestions)
}

func TestDeclarationErrors(t *testing.T) {
	dupLocal := Func("f", []string{"a"})
	dupLocal.Locals = append(dupLocal.Locals, ast.Local{Name: "a"})

	badArity := Func("g", []string{"a"})
	badArity.Arity = 2

	nested := Func("outer", nil, Func("inner", nil))

	paramDefault := WithLocal(Func("h", []string{"a"}), "a", Num(1))

	tests := []struct {
		name string
		stmt []ast.Stmt
		code errors.ErrorCode
	}{
		{"duplicate function", []ast.Stmt{Func("f", nil), Func("f", nil)}, errors.E2005},
		{"duplicate local", []ast.Stmt{dupLocal}, errors.E2006},
		{"arity larger than locals", []ast.Stmt{badArity}, errors.E2010},
		{"nested declaration", []ast.Stmt{nested}, errors.E2010},
		{"parameter default", []ast.Stmt{paramDefault}, errors.E2010},
		{"break outside loop", []ast.Stmt{Break()}, errors.E2003},
		{"break in function outside loop", []ast.Stmt{Func("f", nil, Break())}, errors.E2003},
		{"function as value", []ast.Stmt{Let("x", &ast.Value{Lit: &ast.FuncRef{Name: "f"}})}, errors.E2007},
		{"void call as value", []ast.Stmt{Let("x", Call("set_opacity", Num(1)))}, errors.E2009},
		{"assignment as value", []ast.Stmt{Let("y", Num(0)), Let("x", Assign("y", "=", Num(1)))}, errors.E2009},
		{"unknown operator", []ast.Stmt{Expr(Infix(Num(1), "^", Num(2)))}, errors.E2011},
		{"compound operator in expression", []ast.Stmt{Expr(Infix(Num(1), "+=", Num(2)))}, errors.E2011},
		{"invalid swizzle", []ast.Stmt{Let("v", Vec(Num(1), Num(2))), Expr(Swizzle("v", "xq"))}, errors.E2007},
		{"compound opacity", []ast.Stmt{Expr(Assign("opacity", "+=", Num(1)))}, errors.E2010},
		{"missing import", []ast.Stmt{&ast.Import{Path: "lib.shade"}}, errors.E2008},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := compileErr(t, tt.stmt...)
			require.Equal(t, tt.code, err.Code, err.Error())
		})
	}
}

func TestShadeEntry(t *testing.T) {
	p := compileUnit(t,
		Func("shade", nil, Expr(Call("set_opacity", Num(0.5)))),
	)
	require.Equal(t, 0, p.ShadeIndex)
	require.Equal(t, 0, p.ShadeLocals)
	require.True(t, p.ShaderSupportsOpacity())

	fn := lookup(t, p, "shade")
	require.Equal(t, []op.Code{op.Push, op.HostCall, op.Push, op.ReturnValue}, ops(fn.Code()))
	call := fn.Code()[1]
	require.Equal(t, bytecode.SetOpacity, call.Name)
	require.Equal(t, 1, call.Argc)
	require.False(t, call.Returns)
}

func TestOpacityAssignment(t *testing.T) {
	p := compileUnit(t,
		Func("shade", []string{"uv"},
			If(Infix(Swizzle("uv", "x"), ">", Num(0.5)),
				[]ast.Stmt{Expr(Assign("opacity", "=", Num(0.25)))}, nil)),
	)
	require.True(t, p.ShaderSupportsOpacity())
	require.Equal(t, 1, p.ShadeLocals)
}

func TestOptimizerApplied(t *testing.T) {
	unit := Unit("test.shade",
		Func("f", nil, Let("x", Num(1)), Return(Ident("x"))),
	)
	p, err := Compile(unit, nil)
	require.Nil(t, err)
	require.Equal(t, []op.Code{op.Push, op.ReturnValue}, ops(lookup(t, p, "f").Code()))

	p, err = Compile(unit, &Config{DisableOptimizer: true})
	require.Nil(t, err)
	require.Equal(t, []op.Code{op.Push, op.StoreLocal, op.LoadLocal, op.ReturnValue},
		ops(lookup(t, p, "f").Code()))
}

func TestImplicitReturn(t *testing.T) {
	p := compileUnit(t,
		Func("double", []string{"a"}, Expr(Infix(Ident("a"), "*", Num(2)))),
		Func("nothing", []string{"a"}, Expr(Assign("a", "=", Num(2)))),
		Func("empty", nil),
	)
	require.Equal(t, []op.Code{op.LoadLocal, op.Push, op.BinaryOp, op.ReturnValue},
		ops(lookup(t, p, "double").Code()))
	require.Equal(t, []op.Code{op.Push, op.StoreLocal, op.Push, op.ReturnValue},
		ops(lookup(t, p, "nothing").Code()))
	require.Equal(t, []op.Code{op.Push, op.ReturnValue},
		ops(lookup(t, p, "empty").Code()))
}

func TestExpressionStatements(t *testing.T) {
	p := compileUnit(t,
		Func("add", []string{"a", "b"}, Return(Infix(Ident("a"), "+", Ident("b")))),
		Expr(Call("add", Num(1), Num(2))),
		Expr(Call("set_opacity", Num(1))),
		Expr(Call("format", Str("{}"), Num(1))),
	)
	require.Equal(t, []op.Code{
		op.Push, op.Push, op.Call, op.PopTop,
		op.Push, op.HostCall,
		op.LoadString, op.Push, op.HostCall, op.PopTop,
	}, ops(p.Body))
	require.True(t, p.Body[8].Returns)
	require.Equal(t, []string{"{}"}, p.Strings)
}

func TestGlobals(t *testing.T) {
	p := compileUnit(t,
		Let("speed", Num(2)),
		Func("f", nil, Return(Ident("speed"))),
		Expr(Assign("speed", "*=", Num(3))),
	)
	require.Equal(t, 1, p.Globals)
	require.Equal(t, []string{"speed"}, p.GlobalNames)
	require.Equal(t, []op.Code{op.Push, op.StoreGlobal, op.LoadGlobal, op.Push, op.BinaryOp, op.StoreGlobal},
		ops(p.Body))
	require.True(t, lookup(t, p, "f").Code()[0].Is(op.LoadGlobal, 0))
}

func TestSparseGlobalSlots(t *testing.T) {
	unit := &ast.Unit{
		Name:    "g.shade",
		Path:    "g.shade",
		Globals: map[string]int{"a": 0, "b": 5},
		Stmts:   []ast.Stmt{Func("f", nil, Return(Ident("b")))},
	}
	p, err := Compile(unit, nil)
	require.Nil(t, err)
	require.Equal(t, 2, p.Globals)
	require.Equal(t, []string{"a", "b"}, p.GlobalNames)
	require.True(t, lookup(t, p, "f").Code()[0].Is(op.LoadGlobal, 1))
}

func TestLocalShadowsGlobal(t *testing.T) {
	p := compileUnit(t,
		Let("x", Num(1)),
		Func("f", []string{"x"}, Return(Ident("x"))),
	)
	require.True(t, lookup(t, p, "f").Code()[0].Is(op.LoadLocal, 0))
}

func TestTimeVariable(t *testing.T) {
	p := compileUnit(t, Func("f", nil, Return(Ident("time"))))
	require.Equal(t, []op.Code{op.Time, op.ReturnValue}, ops(lookup(t, p, "f").Code()))

	p = compileUnit(t, Func("g", []string{"time"}, Return(Ident("time"))))
	require.Equal(t, []op.Code{op.LoadLocal, op.ReturnValue}, ops(lookup(t, p, "g").Code()))
}

func TestSwizzles(t *testing.T) {
	p := compileUnit(t,
		Func("f", []string{"v"},
			Expr(SetSwizzle("v", "x", "=", Num(1))),
			Expr(SetSwizzle("v", "yz", "+=", Vec(Num(1), Num(2)))),
			Return(Swizzle("v", "zyx"))),
	)
	code := lookup(t, p, "f").Code()
	require.Equal(t, []op.Code{
		op.LoadLocal, op.Push, op.SetSwizzle, op.StoreLocal,
		op.LoadLocal, op.LoadLocal, op.Swizzle, op.Push, op.BinaryOp, op.SetSwizzle, op.StoreLocal,
		op.LoadLocal, op.Swizzle, op.ReturnValue,
	}, ops(code))
	require.Equal(t, "yz", code[9].Name)
	require.Equal(t, "zyx", code[12].Name)
}

func TestCallSwizzle(t *testing.T) {
	call := Call("normalize", Vec(Num(1), Num(2), Num(3)))
	call.Swizzle = "xy"
	p := compileUnit(t, Func("f", nil, Return(call)))
	code := lookup(t, p, "f").Code()
	require.Equal(t, []op.Code{op.Push, op.Builtin, op.Swizzle, op.ReturnValue}, ops(code))
	_, index, _ := builtins.Default().Builtin("normalize")
	require.True(t, code[1].Is(op.Builtin, index))
}

func TestVectorLiterals(t *testing.T) {
	p := compileUnit(t,
		Func("f", []string{"a"},
			Expr(Vec(Num(1), Num(2), Num(3))),
			Return(Vec(Ident("a"), Num(0), Num(1), Infix(Ident("a"), "*", Num(2))))),
	)
	code := lookup(t, p, "f").Code()
	require.Equal(t, []op.Code{
		op.Push, op.PopTop,
		op.LoadLocal, op.Push, op.Push, op.LoadLocal, op.Push, op.BinaryOp, op.Pack, op.ReturnValue,
	}, ops(code))
	require.Equal(t, object.NewFloat3(1, 2, 3), code[0].Value)
	require.True(t, code[8].Is(op.Pack, 4))
}

func TestShortCircuit(t *testing.T) {
	p := compileUnit(t,
		Func("f", []string{"a", "b"}, Return(Infix(Ident("a"), "&&", Ident("b")))),
		Func("g", []string{"a", "b"}, Return(Infix(Ident("a"), "||", Not(Ident("b"))))),
	)
	and := lookup(t, p, "f").Code()[1]
	require.Equal(t, op.And, and.Op)
	require.Equal(t, []op.Code{op.LoadLocal}, ops(and.Then))

	or := lookup(t, p, "g").Code()[1]
	require.Equal(t, op.Or, or.Op)
	require.Equal(t, []op.Code{op.LoadLocal, op.UnaryNot}, ops(or.Then))
}

func TestControlFlow(t *testing.T) {
	p := compileUnit(t,
		Func("count", []string{"n"},
			Let("i", Num(0)),
			While(Infix(Ident("i"), "<", Ident("n")),
				If(Infix(Ident("i"), "==", Num(5)), []ast.Stmt{Break()}, nil),
				Expr(Assign("i", "+=", Num(1)))),
			Return(Ident("i"))),
		Func("sum", []string{"n"},
			Let("total", Num(0)),
			For(Let("i", Num(0)), Infix(Ident("i"), "<", Ident("n")), Assign("i", "+=", Num(1)),
				Expr(Assign("total", "+=", Ident("i")))),
			Return(Ident("total"))),
		Func("pick", []string{"c"}, Return(Ternary(Ident("c"), Num(1), Num(2)))),
	)

	count := lookup(t, p, "count").Code()
	require.Equal(t, []op.Code{op.Push, op.StoreLocal, op.Loop, op.LoadLocal, op.ReturnValue}, ops(count))
	loop := count[2]
	require.Equal(t, []op.Code{op.LoadLocal, op.LoadLocal, op.CompareOp}, ops(loop.Cond))
	require.Equal(t, []op.Code{op.LoadLocal, op.Push, op.CompareOp, op.If, op.LoadLocal, op.Push, op.BinaryOp, op.StoreLocal},
		ops(loop.Then))
	require.Equal(t, []op.Code{op.Break}, ops(loop.Then[3].Then))
	require.Nil(t, loop.Step)

	sum := lookup(t, p, "sum").Code()
	require.Equal(t, []op.Code{op.Push, op.StoreLocal, op.Push, op.StoreLocal, op.Loop, op.LoadLocal, op.ReturnValue}, ops(sum))
	require.Equal(t, []op.Code{op.LoadLocal, op.Push, op.BinaryOp, op.StoreLocal}, ops(sum[4].Step))

	pick := lookup(t, p, "pick").Code()
	require.Equal(t, op.If, pick[1].Op)
	require.Len(t, pick[1].Then, 1)
	require.Len(t, pick[1].Else, 1)
}

func TestDefaults(t *testing.T) {
	decl := WithLocal(
		Func("f", []string{"a"}, Return(Infix(Ident("a"), "+", Ident("b")))),
		"b", Infix(Ident("a"), "*", Num(2)))
	p := compileUnit(t, decl)
	fn := lookup(t, p, "f")
	require.Equal(t, 2, fn.LocalCount())
	require.Nil(t, fn.Default(0))
	require.Equal(t, []op.Code{op.LoadLocal, op.Push, op.BinaryOp}, ops(fn.Default(1)))
}

func TestPrintStatement(t *testing.T) {
	p := compileUnit(t, Print(Str("hello")))
	require.Equal(t, []op.Code{op.LoadString, op.HostCall}, ops(p.Body))
	require.Equal(t, "print", p.Body[1].Name)
}

func TestImports(t *testing.T) {
	lib := Unit("lib.shade",
		Let("scale", Num(2)),
		Func("scaled", []string{"x"}, Return(Infix(Ident("x"), "*", Ident("scale")))),
	)
	main := Unit("main.shade",
		Import(lib),
		Func("shade", []string{"uv"}, Return(Call("scaled", Swizzle("uv", "x")))),
		Import(lib),
	)
	c := New(nil)
	p, err := c.Compile(main)
	require.Nil(t, err)
	require.Nil(t, p.Validate())
	require.Equal(t, []string{"lib.shade"}, c.Context().ImportedPaths())
	require.Equal(t, []string{"scale"}, p.GlobalNames)
	require.Len(t, p.UserFunctions, 2)
	// The imported body runs once, where it was first imported
	require.Equal(t, []op.Code{op.Push, op.StoreGlobal}, ops(p.Body))

	scaled := lookup(t, p, "scaled")
	require.Equal(t, "lib.shade", scaled.Location().Path)
}

func TestImportErrorLocation(t *testing.T) {
	lib := Unit("lib.shade", AtLine(4, Expr(AtLine(4, Call("nope")))))
	_, err := Compile(Unit("main.shade", Import(lib)), nil)
	require.EqualError(t, err, "Unknown function 'nope' in lib.shade at line 4.")
}

func TestCustomBindings(t *testing.T) {
	registry := builtins.NewRegistry()
	require.Nil(t, registry.AddBinding(builtins.Binding{Name: "emit", Arity: 2}))
	unit := Unit("test.shade", Expr(Call("emit", Num(1), Num(2))))

	p, err := Compile(unit, &Config{Bindings: registry})
	require.Nil(t, err)
	require.Equal(t, []op.Code{op.Push, op.Push, op.HostCall}, ops(p.Body))

	_, err = Compile(Unit("test.shade", Expr(Call("length", Num(1)))), &Config{Bindings: registry})
	require.NotNil(t, err)
}

func TestCompileTwice(t *testing.T) {
	c := New(nil)
	_, err := c.Compile(Unit("a.shade"))
	require.Nil(t, err)
	_, err = c.Compile(Unit("a.shade"))
	require.NotNil(t, err)
	_, err = New(nil).Compile(nil)
	require.NotNil(t, err)
}
