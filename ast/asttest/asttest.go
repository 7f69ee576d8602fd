// Package asttest builds shade syntax trees for tests without a parser.
//
// The builders fill in what the parser normally provides: unit global tables
// and function local tables.
package asttest

import (
	"fmt"

	"github.com/deepnoodle-ai/shade/ast"
)

// Unit returns a unit whose global table lists every top-level "let", in
// order of appearance.
func Unit(path string, stmts ...ast.Stmt) *ast.Unit {
	globals := map[string]int{}
	for _, stmt := range stmts {
		if v, ok := stmt.(*ast.Var); ok {
			if _, exists := globals[v.Name]; !exists {
				globals[v.Name] = len(globals)
			}
		}
	}
	return &ast.Unit{Name: path, Path: path, Stmts: stmts, Globals: globals}
}

// Import returns an import statement carrying unit.
func Import(unit *ast.Unit) *ast.Import {
	return &ast.Import{Path: unit.Path, Unit: unit}
}

// Func declares a function. Its local table holds the parameters followed by
// every variable declared with "let" in the body.
func Func(name string, params []string, body ...ast.Stmt) *ast.FuncDecl {
	locals := make([]ast.Local, 0, len(params))
	seen := map[string]bool{}
	for _, p := range params {
		locals = append(locals, ast.Local{Name: p})
		seen[p] = true
	}
	block := &ast.Block{Stmts: body}
	ast.Inspect(block, func(node ast.Node) bool {
		if v, ok := node.(*ast.Var); ok && !seen[v.Name] {
			locals = append(locals, ast.Local{Name: v.Name})
			seen[v.Name] = true
		}
		return true
	})
	return &ast.FuncDecl{Name: name, Arity: len(params), Locals: locals, Body: block}
}

// WithLocal gives a local of decl a default value, adding the local if the
// body does not declare it.
func WithLocal(decl *ast.FuncDecl, name string, def ast.Expr) *ast.FuncDecl {
	for i := range decl.Locals {
		if decl.Locals[i].Name == name {
			decl.Locals[i].Default = def
			return decl
		}
	}
	decl.Locals = append(decl.Locals, ast.Local{Name: name, Default: def})
	return decl
}

// AtLine sets the source line of a node.
func AtLine[T ast.Node](line int, node T) T {
	loc := ast.Location{Line: line}
	switch n := any(node).(type) {
	case *ast.Value:
		n.At = loc
	case *ast.Logical:
		n.At = loc
	case *ast.Unary:
		n.At = loc
	case *ast.Equality:
		n.At = loc
	case *ast.Comparison:
		n.At = loc
	case *ast.Binary:
		n.At = loc
	case *ast.Grouping:
		n.At = loc
	case *ast.Variable:
		n.At = loc
	case *ast.Assign:
		n.At = loc
	case *ast.Call:
		n.At = loc
	case *ast.Ternary:
		n.At = loc
	case *ast.Block:
		n.At = loc
	case *ast.ExprStmt:
		n.At = loc
	case *ast.Var:
		n.At = loc
	case *ast.If:
		n.At = loc
	case *ast.While:
		n.At = loc
	case *ast.For:
		n.At = loc
	case *ast.Break:
		n.At = loc
	case *ast.Return:
		n.At = loc
	case *ast.Print:
		n.At = loc
	case *ast.Import:
		n.At = loc
	case *ast.FuncDecl:
		n.At = loc
	default:
		panic(fmt.Sprintf("asttest: cannot set line on %T", node))
	}
	return node
}

func Num(f float32) *ast.Value { return &ast.Value{Lit: ast.Float{Value: f}} }
func Str(s string) *ast.Value  { return &ast.Value{Lit: ast.String{Value: s}} }
func Bool(b bool) *ast.Value   { return &ast.Value{Lit: ast.Bool{Value: b}} }
func None() *ast.Value         { return &ast.Value{Lit: ast.None{}} }

// Ident reads a variable.
func Ident(name string) *ast.Variable {
	return &ast.Variable{Name: name}
}

// Vec builds a vector literal from two to four components.
func Vec(xs ...ast.Expr) *ast.Value {
	switch len(xs) {
	case 2:
		return &ast.Value{Lit: ast.Float2{X: xs[0], Y: xs[1]}}
	case 3:
		return &ast.Value{Lit: ast.Float3{X: xs[0], Y: xs[1], Z: xs[2]}}
	case 4:
		return &ast.Value{Lit: ast.Float4{X: xs[0], Y: xs[1], Z: xs[2], W: xs[3]}}
	}
	panic(fmt.Sprintf("asttest: vector of %d components", len(xs)))
}

// Swizzle reads components of a variable, e.g. Swizzle("uv", "yx").
func Swizzle(name, pattern string) *ast.Variable {
	return &ast.Variable{Name: name, Swizzle: pattern}
}

func Call(name string, args ...ast.Expr) *ast.Call {
	return &ast.Call{Name: name, Args: args}
}

// Infix builds the node matching a binary operator.
func Infix(left ast.Expr, operator string, right ast.Expr) ast.Expr {
	switch operator {
	case "&&", "||":
		return &ast.Logical{Op: operator, Left: left, Right: right}
	case "==", "!=":
		return &ast.Equality{Op: operator, Left: left, Right: right}
	case "<", "<=", ">", ">=":
		return &ast.Comparison{Op: operator, Left: left, Right: right}
	}
	return &ast.Binary{Op: operator, Left: left, Right: right}
}

func Not(x ast.Expr) *ast.Unary { return &ast.Unary{Op: "!", X: x} }
func Neg(x ast.Expr) *ast.Unary { return &ast.Unary{Op: "-", X: x} }

func Ternary(cond, then, otherwise ast.Expr) *ast.Ternary {
	return &ast.Ternary{Cond: cond, Then: then, Else: otherwise}
}

func Assign(name, operator string, value ast.Expr) *ast.Assign {
	return &ast.Assign{Name: name, Op: operator, Value: value}
}

// SetSwizzle assigns to components of a variable, e.g. "v.x = 1".
func SetSwizzle(name, pattern, operator string, value ast.Expr) *ast.Assign {
	return &ast.Assign{Name: name, Op: operator, Swizzle: pattern, Value: value}
}

func Expr(x ast.Expr) *ast.ExprStmt            { return &ast.ExprStmt{X: x} }
func Let(name string, value ast.Expr) *ast.Var { return &ast.Var{Name: name, Value: value} }
func Return(x ast.Expr) *ast.Return            { return &ast.Return{Value: x} }
func Print(x ast.Expr) *ast.Print              { return &ast.Print{Value: x} }
func Break() *ast.Break                        { return &ast.Break{} }
func Block(stmts ...ast.Stmt) *ast.Block       { return &ast.Block{Stmts: stmts} }

func If(cond ast.Expr, then []ast.Stmt, otherwise []ast.Stmt) *ast.If {
	s := &ast.If{Cond: cond, Then: Block(then...)}
	if otherwise != nil {
		s.Else = Block(otherwise...)
	}
	return s
}

func While(cond ast.Expr, body ...ast.Stmt) *ast.While {
	return &ast.While{Cond: cond, Body: Block(body...)}
}

func For(init ast.Stmt, cond ast.Expr, step ast.Expr, body ...ast.Stmt) *ast.For {
	s := &ast.For{Cond: cond, Body: Block(body...)}
	if init != nil {
		s.Init = []ast.Stmt{init}
	}
	if step != nil {
		s.Step = []ast.Expr{step}
	}
	return s
}
