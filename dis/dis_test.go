package dis

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/shade/ast"
	at "github.com/deepnoodle-ai/shade/ast/asttest"
	"github.com/deepnoodle-ai/shade/bytecode"
	"github.com/deepnoodle-ai/shade/compiler"
	"github.com/deepnoodle-ai/shade/object"
	"github.com/deepnoodle-ai/shade/op"
)

func noColor(t *testing.T) {
	// Disable colors for consistent test output
	saved := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = saved })
}

func compile(t *testing.T, stmts ...ast.Stmt) *bytecode.Program {
	t.Helper()
	program, err := compiler.Compile(at.Unit("test.shade", stmts...), nil)
	require.Nil(t, err)
	return program
}

func TestFunctionDisassembly(t *testing.T) {
	noColor(t)
	program := compile(t,
		at.Func("f", []string{"x"},
			at.AtLine(2, at.If(at.AtLine(2, at.Infix(at.Ident("x"), ">", at.Num(1))), []ast.Stmt{
				at.AtLine(3, at.Expr(at.AtLine(3, at.Call("set_opacity", at.Ident("x"))))),
			}, nil)),
			at.AtLine(5, at.Return(at.AtLine(5, at.Infix(at.Ident("x"), "*", at.Num(2))))),
		),
	)
	fn, _, ok := program.FunctionByName("f")
	require.True(t, ok)
	instructions, err := New(program, nil).Function(fn)
	require.Nil(t, err)
	require.Len(t, instructions, 10)
	require.Equal(t, "then", instructions[4].Section)
	require.Equal(t, 1, instructions[4].Depth)

	var buf bytes.Buffer
	Print(instructions, &buf)

	expected := strings.TrimSpace(`
+--------+--------------+----------+-------------+------+
| OFFSET |    OPCODE    | OPERANDS |    INFO     | LINE |
+--------+--------------+----------+-------------+------+
|      0 | LOAD_LOCAL   |        0 | x           |      |
|      1 | PUSH         |          | 1           |      |
|      2 | COMPARE_OP   |        5 | >           |    2 |
|      3 | IF           |          |             |    2 |
|        | then:        |          |             |      |
|      4 |   LOAD_LOCAL |        0 | x           |      |
|      5 |   HOST_CALL  |        1 | set_opacity |    3 |
|      6 | LOAD_LOCAL   |        0 | x           |      |
|      7 | PUSH         |          | 2           |      |
|      8 | BINARY_OP    |        3 | *           |    5 |
|      9 | RETURN_VALUE |          |             |    5 |
+--------+--------------+----------+-------------+------+
`)
	require.Equal(t, expected+"\n", buf.String())
}

func TestBodyDisassembly(t *testing.T) {
	program := compile(t,
		at.Func("double", []string{"v"}, at.Return(at.Infix(at.Ident("v"), "*", at.Num(2)))),
		at.Let("greeting", at.Str("hi")),
		at.Let("n", at.Num(0)),
		at.While(at.Infix(at.Ident("n"), "<", at.Num(3)),
			at.Expr(at.Assign("n", "+=", at.Call("double", at.Num(1)))),
			at.Expr(at.Call("print", at.Call("format", at.Str("{}"), at.Ident("greeting")))),
		),
	)
	instructions, err := Disassemble(program)
	require.Nil(t, err)

	byName := map[string]Instruction{}
	for _, instr := range instructions {
		if _, ok := byName[instr.Name]; !ok {
			byName[instr.Name] = instr
		}
	}
	require.Equal(t, "hi", byName["LOAD_STRING"].Constant)
	require.Equal(t, "greeting", byName["STORE_GLOBAL"].Annotation)
	require.Equal(t, "cond", byName["LOAD_GLOBAL"].Section)
	require.Equal(t, 1, byName["LOAD_GLOBAL"].Depth)
	require.Equal(t, []int{0, 1}, byName["CALL"].Operands)
	require.Equal(t, "format -> value", byName["HOST_CALL"].Annotation)

	fn, ok := byName["CALL"].Constant.(*bytecode.Function)
	require.True(t, ok)
	require.Equal(t, "double", fn.Name())

	var buf bytes.Buffer
	Print(instructions, &buf)
	require.Contains(t, buf.String(), "func:double")
	require.Contains(t, buf.String(), `"hi"`)
	require.Contains(t, buf.String(), "body:")
}

func TestDefaultsDisassembly(t *testing.T) {
	noColor(t)
	decl := at.WithLocal(at.Func("f", []string{"x"}, at.Return(at.Infix(at.Ident("x"), "+", at.Ident("k")))), "k", at.Num(2))
	program := compile(t, decl)
	fn, _, _ := program.FunctionByName("f")
	instructions, err := New(program, nil).Function(fn)
	require.Nil(t, err)
	require.Equal(t, "default k", instructions[0].Section)
	require.Equal(t, object.NewFloat(2), instructions[0].Constant)
	require.Equal(t, "body", instructions[1].Section)
	require.Equal(t, "k", instructions[2].Annotation)
}

func TestBuiltinAndSwizzle(t *testing.T) {
	program := compile(t,
		at.Let("v", at.Vec(at.Num(3), at.Num(4))),
		at.Let("n", at.Call("length", at.Swizzle("v", "yx"))),
	)
	instructions, err := Disassemble(program)
	require.Nil(t, err)
	var names, annotations []string
	for _, instr := range instructions {
		names = append(names, instr.Name)
		annotations = append(annotations, instr.Annotation)
	}
	require.Equal(t, []string{"PUSH", "STORE_GLOBAL", "LOAD_GLOBAL", "SWIZZLE", "BUILTIN", "STORE_GLOBAL"}, names)
	require.Equal(t, ".yx", annotations[3])
	require.Equal(t, "length", annotations[4])
}

func TestDisassemblyErrors(t *testing.T) {
	tests := []struct {
		name string
		ins  bytecode.Instruction
	}{
		{"local", bytecode.LoadLocal(0)},
		{"global", bytecode.StoreGlobal(1)},
		{"string", bytecode.LoadString(0)},
		{"call", bytecode.Call(0, 0)},
		{"builtin", bytecode.Builtin(-1, 0)},
		{"opcode", bytecode.Simple(op.Invalid)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program := bytecode.NewProgram()
			program.Body = []bytecode.Instruction{tt.ins}
			_, err := Disassemble(program)
			require.NotNil(t, err)
		})
	}
}
