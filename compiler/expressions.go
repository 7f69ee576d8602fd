package compiler

import (
	"sort"
	"strings"

	"github.com/deepnoodle-ai/shade/ast"
	"github.com/deepnoodle-ai/shade/bytecode"
	"github.com/deepnoodle-ai/shade/errors"
	"github.com/deepnoodle-ai/shade/object"
	"github.com/deepnoodle-ai/shade/op"
)

// Names with special meaning when no variable of that name is in scope.
const (
	timeName    = "time"
	opacityName = "opacity"
)

type callKind int

const (
	callUser callKind = iota
	callBuiltin
	callHost
)

// callTarget is the resolved destination of a call expression.
type callTarget struct {
	kind    callKind
	index   int
	returns bool
}

// varRef is a resolved variable.
type varRef struct {
	local bool
	slot  int
}

// compileExpr compiles an expression whose value is used.
func (c *Compiler) compileExpr(x ast.Expr) error {
	if x == nil {
		return errors.NewCompileError(errors.E2007, "Missing expression",
			errors.Location{Path: c.path})
	}
	yields, err := c.yields(x)
	if err != nil {
		return err
	}
	if !yields {
		return c.noValue(x)
	}
	return c.compileExprRaw(x)
}

func (c *Compiler) noValue(x ast.Expr) error {
	for {
		g, ok := x.(*ast.Grouping)
		if !ok {
			break
		}
		x = g.X
	}
	switch x := x.(type) {
	case *ast.Assign:
		return c.formatError(errors.E2009, x,
			"Assignment to '%s' does not produce a value", x.Name)
	case *ast.Call:
		return c.formatError(errors.E2009, x,
			"Function '%s' does not return a value", x.Name)
	}
	return c.formatError(errors.E2009, x, "Expression does not produce a value")
}

// yields reports whether x leaves a value on the stack.
func (c *Compiler) yields(x ast.Expr) (bool, error) {
	switch x := x.(type) {
	case *ast.Assign:
		return false, nil
	case *ast.Grouping:
		if x.X == nil {
			return true, nil
		}
		return c.yields(x.X)
	case *ast.Call:
		target, err := c.resolveCall(x)
		if err != nil {
			return false, err
		}
		return target.returns, nil
	}
	return true, nil
}

// compileExprRaw compiles x without checking that it produces a value.
func (c *Compiler) compileExprRaw(x ast.Expr) error {
	switch x := x.(type) {
	case *ast.Value:
		return c.compileValue(x)
	case *ast.Logical:
		return c.compileLogical(x)
	case *ast.Unary:
		return c.compileUnary(x)
	case *ast.Equality:
		return c.compileCompare(x, x.Op, x.Left, x.Right)
	case *ast.Comparison:
		return c.compileCompare(x, x.Op, x.Left, x.Right)
	case *ast.Binary:
		return c.compileBinary(x)
	case *ast.Grouping:
		if x.X == nil {
			return c.formatError(errors.E2007, x, "Empty parentheses")
		}
		return c.compileExprRaw(x.X)
	case *ast.Variable:
		return c.compileVariable(x)
	case *ast.Assign:
		return c.compileAssign(x)
	case *ast.Call:
		return c.compileCall(x)
	case *ast.Ternary:
		return c.compileTernary(x)
	default:
		return errors.NewCompileError(errors.E2007, "Unsupported expression",
			errors.Location{Path: c.path})
	}
}

func (c *Compiler) compileValue(x *ast.Value) error {
	switch lit := x.Lit.(type) {
	case nil:
		return c.formatError(errors.E2007, x, "Missing literal")
	case ast.None:
		c.emit(bytecode.Push(object.None), x)
	case ast.Bool:
		c.emit(bytecode.Push(object.NewBool(lit.Value)), x)
	case ast.Float:
		c.emit(bytecode.Push(object.NewFloat(lit.Value)), x)
	case ast.String:
		c.emit(bytecode.LoadString(c.ctx.InternString(lit.Value)), x)
	case ast.Float2, ast.Float3, ast.Float4:
		elems := ast.Elements(lit)
		if v, ok := constantVector(elems); ok {
			c.emit(bytecode.Push(v), x)
			return nil
		}
		for _, e := range elems {
			if e == nil {
				return c.formatError(errors.E2007, x,
					"Vector literal '%s' is missing a component", lit.String())
			}
			if err := c.compileExpr(e); err != nil {
				return err
			}
		}
		c.emit(bytecode.Pack(len(elems)), x)
	case *ast.FuncRef:
		return c.formatError(errors.E2007, x,
			"Function '%s' can not be used as a value", lit.Name)
	default:
		return c.formatError(errors.E2007, x, "Unsupported literal %T", lit)
	}
	return nil
}

// constantVector folds a vector literal whose components are all float
// literals.
func constantVector(elems []ast.Expr) (object.Value, bool) {
	components := make([]float32, len(elems))
	for i, e := range elems {
		v, ok := e.(*ast.Value)
		if !ok {
			return object.None, false
		}
		f, ok := v.Lit.(ast.Float)
		if !ok {
			return object.None, false
		}
		components[i] = f.Value
	}
	vec, err := object.NewVector(components...)
	if err != nil {
		return object.None, false
	}
	return vec, true
}

// compileLogical compiles the right operand into the nested sequence of an
// AND or OR instruction so that it only runs when needed.
func (c *Compiler) compileLogical(x *ast.Logical) error {
	var build func([]bytecode.Instruction) bytecode.Instruction
	switch x.Op {
	case "&&":
		build = bytecode.And
	case "||":
		build = bytecode.Or
	default:
		return c.formatError(errors.E2011, x, "Unknown operator '%s'", x.Op)
	}
	if err := c.compileExpr(x.Left); err != nil {
		return err
	}
	rhs, err := c.compileNested(func() error { return c.compileExpr(x.Right) })
	if err != nil {
		return err
	}
	c.emit(build(rhs), x)
	return nil
}

func (c *Compiler) compileUnary(x *ast.Unary) error {
	var code op.Code
	switch x.Op {
	case "-":
		code = op.UnaryNegative
	case "!":
		code = op.UnaryNot
	default:
		return c.formatError(errors.E2011, x, "Unknown operator '%s'", x.Op)
	}
	if err := c.compileExpr(x.X); err != nil {
		return err
	}
	c.emit(bytecode.Simple(code), x)
	return nil
}

func (c *Compiler) compileCompare(node ast.Expr, operator string, left, right ast.Expr) error {
	cop, ok := op.CompareOpFor(operator)
	if !ok {
		return c.formatError(errors.E2011, node, "Unknown operator '%s'", operator)
	}
	if err := c.compileExpr(left); err != nil {
		return err
	}
	if err := c.compileExpr(right); err != nil {
		return err
	}
	c.emit(bytecode.CompareOp(cop), node)
	return nil
}

func (c *Compiler) compileBinary(x *ast.Binary) error {
	bop, ok := op.BinaryOpFor(x.Op)
	if !ok || strings.HasSuffix(x.Op, "=") {
		return c.formatError(errors.E2011, x, "Unknown operator '%s'", x.Op)
	}
	if err := c.compileExpr(x.Left); err != nil {
		return err
	}
	if err := c.compileExpr(x.Right); err != nil {
		return err
	}
	c.emit(bytecode.BinaryOp(bop), x)
	return nil
}

func (c *Compiler) compileTernary(x *ast.Ternary) error {
	if err := c.compileExpr(x.Cond); err != nil {
		return err
	}
	then, err := c.compileNested(func() error { return c.compileExpr(x.Then) })
	if err != nil {
		return err
	}
	otherwise, err := c.compileNested(func() error { return c.compileExpr(x.Else) })
	if err != nil {
		return err
	}
	c.emit(bytecode.If(then, otherwise), x)
	return nil
}

// resolve looks a variable up in the current function, then in the globals.
func (c *Compiler) resolve(name string) (varRef, bool) {
	if c.fn != nil {
		if slot, ok := c.fn.locals[name]; ok {
			return varRef{local: true, slot: slot}, true
		}
	}
	if slot, ok := c.ctx.Global(name); ok {
		return varRef{slot: slot}, true
	}
	return varRef{}, false
}

func (c *Compiler) emitLoad(ref varRef, node ast.Node) {
	if ref.local {
		c.emit(bytecode.LoadLocal(ref.slot), node)
	} else {
		c.emit(bytecode.LoadGlobal(ref.slot), node)
	}
}

func (c *Compiler) emitStore(ref varRef, node ast.Node) {
	if ref.local {
		c.emit(bytecode.StoreLocal(ref.slot), node)
	} else {
		c.emit(bytecode.StoreGlobal(ref.slot), node)
	}
}

func (c *Compiler) compileVariable(x *ast.Variable) error {
	ref, ok := c.resolve(x.Name)
	switch {
	case ok:
		c.emitLoad(ref, x)
	case x.Name == timeName:
		c.emit(bytecode.Simple(op.Time), x)
	default:
		return c.unknownIdentifier(x.Name, x)
	}
	return c.emitSwizzle(x.Swizzle, x)
}

func (c *Compiler) emitSwizzle(pattern string, node ast.Node) error {
	if pattern == "" {
		return nil
	}
	if _, err := object.SwizzleIndices(pattern); err != nil {
		return c.formatError(errors.E2007, node, "Invalid swizzle '.%s'", pattern)
	}
	c.emit(bytecode.Swizzle(pattern), node)
	return nil
}

// compileAssign stores a value and leaves nothing on the stack.
func (c *Compiler) compileAssign(x *ast.Assign) error {
	if x.Value == nil {
		return c.formatError(errors.E2007, x, "Assignment to '%s' has no value", x.Name)
	}
	var bop op.BinaryOpType
	compound := x.Op != "="
	if compound {
		var ok bool
		bop, ok = op.BinaryOpFor(x.Op)
		if !ok || !strings.HasSuffix(x.Op, "=") {
			return c.formatError(errors.E2011, x, "Unknown assignment operator '%s'", x.Op)
		}
	}
	ref, ok := c.resolve(x.Name)
	if !ok {
		if x.Name == opacityName {
			return c.compileOpacity(x)
		}
		return c.unknownIdentifier(x.Name, x)
	}
	if x.Swizzle != "" {
		if _, err := object.SwizzleIndices(x.Swizzle); err != nil {
			return c.formatError(errors.E2007, x, "Invalid swizzle '.%s'", x.Swizzle)
		}
		// The whole vector is loaded, the selected components replaced and
		// the result stored back.
		c.emitLoad(ref, x)
		if compound {
			c.emitLoad(ref, x)
			c.emit(bytecode.Swizzle(x.Swizzle), x)
		}
	} else if compound {
		c.emitLoad(ref, x)
	}
	if err := c.compileExpr(x.Value); err != nil {
		return err
	}
	if compound {
		c.emit(bytecode.BinaryOp(bop), x)
	}
	if x.Swizzle != "" {
		c.emit(bytecode.SetSwizzle(x.Swizzle), x)
	}
	c.emitStore(ref, x)
	return nil
}

// compileOpacity turns "opacity = x" into a set_opacity host call.
func (c *Compiler) compileOpacity(x *ast.Assign) error {
	if x.Op != "=" || x.Swizzle != "" {
		return c.formatError(errors.E2010, x, "Opacity can only be assigned with '='")
	}
	if err := c.compileExpr(x.Value); err != nil {
		return err
	}
	c.emit(bytecode.HostCall(bytecode.SetOpacity, 1, false), x)
	return nil
}

func (c *Compiler) compileCall(x *ast.Call) error {
	target, err := c.resolveCall(x)
	if err != nil {
		return err
	}
	for _, arg := range x.Args {
		if err := c.compileExpr(arg); err != nil {
			return err
		}
	}
	argc := len(x.Args)
	switch target.kind {
	case callUser:
		c.emit(bytecode.Call(target.index, argc), x)
	case callBuiltin:
		c.emit(bytecode.Builtin(target.index, argc), x)
	case callHost:
		c.emit(bytecode.HostCall(x.Name, argc, target.returns), x)
	}
	if x.Swizzle == "" {
		return nil
	}
	if !target.returns {
		return c.formatError(errors.E2009, x, "Function '%s' does not return a value", x.Name)
	}
	return c.emitSwizzle(x.Swizzle, x)
}

// resolveCall finds what a call refers to and checks its argument count.
func (c *Compiler) resolveCall(x *ast.Call) (callTarget, error) {
	argc := len(x.Args)
	if index, ok := c.ctx.Program().UserFunctionsNameMap[x.Name]; ok {
		if arity := c.arities[index]; argc != arity {
			return callTarget{}, c.wrongArgc(x, arity)
		}
		return callTarget{kind: callUser, index: index, returns: true}, nil
	}
	if b, index, ok := c.registry.Builtin(x.Name); ok {
		if argc != b.Arity {
			return callTarget{}, c.wrongArgc(x, b.Arity)
		}
		return callTarget{kind: callBuiltin, index: index, returns: true}, nil
	}
	if b, ok := c.registry.Binding(x.Name); ok {
		if !b.Accepts(argc) {
			return callTarget{}, c.wrongArgc(x, b.Arity)
		}
		return callTarget{kind: callHost, returns: b.Returns}, nil
	}
	candidates := append(c.registry.Names(), c.functionNames()...)
	return callTarget{}, c.formatError(errors.E2002, x, "Unknown function '%s'", x.Name).
		WithSuggestions(errors.SuggestSimilar(x.Name, candidates))
}

func (c *Compiler) wrongArgc(x *ast.Call, expected int) error {
	return c.formatError(errors.E2004, x,
		"Wrong amount of arguments for '%s', expected '%d' got '%d'",
		x.Name, expected, len(x.Args))
}

func (c *Compiler) unknownIdentifier(name string, node ast.Node) error {
	var candidates []string
	if c.fn != nil {
		for local := range c.fn.locals {
			candidates = append(candidates, local)
		}
	}
	for global := range c.ctx.globals {
		candidates = append(candidates, global)
	}
	candidates = append(candidates, timeName)
	return c.formatError(errors.E2001, node, "Unknown identifier '%s'", name).
		WithSuggestions(errors.SuggestSimilar(name, candidates))
}

func (c *Compiler) functionNames() []string {
	names := make([]string, 0, len(c.ctx.Program().UserFunctionsNameMap))
	for name := range c.ctx.Program().UserFunctionsNameMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
