package compiler

import (
	"github.com/deepnoodle-ai/shade/ast"
	"github.com/deepnoodle-ai/shade/bytecode"
	"github.com/deepnoodle-ai/shade/errors"
	"github.com/deepnoodle-ai/shade/object"
	"github.com/deepnoodle-ai/shade/op"
	"github.com/deepnoodle-ai/shade/optimizer"
)

// compileFunction compiles the defaults and body of a declaration reserved in
// pass 1 and installs the result in the program.
func (c *Compiler) compileFunction(decl *ast.FuncDecl) error {
	index, ok := c.reserved[decl]
	if !ok {
		return c.formatError(errors.E2010, decl,
			"Function '%s' must be declared at the top level", decl.Name)
	}
	names := make([]string, len(decl.Locals))
	locals := make(map[string]int, len(decl.Locals))
	for slot, local := range decl.Locals {
		names[slot] = local.Name
		locals[local.Name] = slot
	}

	prevFn, prevLoops := c.fn, c.loops
	c.fn = &function{decl: decl, index: index, locals: locals}
	c.loops = 0
	defer func() { c.fn, c.loops = prevFn, prevLoops }()

	// Default values run at call time, after the arguments are in place, so
	// they may read parameters and earlier locals.
	defaults := make([][]bytecode.Instruction, len(decl.Locals))
	for slot := decl.Arity; slot < len(decl.Locals); slot++ {
		def := decl.Locals[slot].Default
		if def == nil {
			continue
		}
		code, err := c.compileNested(func() error { return c.compileExpr(def) })
		if err != nil {
			return err
		}
		defaults[slot] = code
	}

	code, err := c.compileNested(func() error { return c.compileFunctionBody(decl.Body) })
	if err != nil {
		return err
	}
	var stats optimizer.Stats
	if c.optimize {
		code, stats = optimizer.Run(code)
	}

	fn := bytecode.NewFunction(bytecode.FunctionParams{
		Name:     decl.Name,
		Arity:    decl.Arity,
		Locals:   names,
		Defaults: defaults,
		Code:     code,
		Location: c.loc(decl),
	})
	if err := c.ctx.Program().Install(index, fn); err != nil {
		return c.formatError(errors.E2005, decl, "Function '%s' is already defined", decl.Name)
	}
	c.log.Debug().
		Str("function", decl.Name).
		Int("index", index).
		Int("locals", len(names)).
		Int("instructions", bytecode.Count(code)).
		Int("removed_pairs", stats.RemovedPairs).
		Msg("function installed")
	return nil
}

// compileFunctionBody compiles a function body so that it always ends in a
// return:
//
//  1. A trailing expression that produces a value is returned implicitly.
//  2. Otherwise, unless the last statement is a return, none is returned.
func (c *Compiler) compileFunctionBody(body *ast.Block) error {
	stmts := body.Stmts
	if n := len(stmts); n > 0 {
		if last, ok := stmts[n-1].(*ast.ExprStmt); ok && last.X != nil {
			yields, err := c.yields(last.X)
			if err != nil {
				return err
			}
			if yields {
				for _, stmt := range stmts[:n-1] {
					if err := c.compileStmt(stmt); err != nil {
						return err
					}
				}
				return c.compileReturn(&ast.Return{At: last.At, Value: last.X})
			}
		}
	}
	for _, stmt := range stmts {
		if err := c.compileStmt(stmt); err != nil {
			return err
		}
	}
	if n := len(stmts); n > 0 {
		if _, ok := stmts[n-1].(*ast.Return); ok {
			return nil
		}
	}
	c.emit(bytecode.Push(object.None), body)
	c.emit(bytecode.Simple(op.ReturnValue), body)
	return nil
}
