// Package compiler compiles a shade abstract syntax tree (AST) into a
// bytecode.Program.
//
// # Two-Pass Compilation Strategy
//
// The compiler uses a two-pass approach to handle forward references. This
// allows functions to call other functions that are defined later in the
// source, or in a unit pulled in by an import.
//
// Example where forward references are needed:
//
//	fn isEven(n) { if (n == 0) { return true; } return isOdd(n - 1); }
//	fn isOdd(n) { if (n == 0) { return false; } return isEven(n - 1); }
//
// Pass 1: collectFunctionDeclarations
//
// Walks the top level of the unit, and of every imported unit, and reserves
// an index in the program for each function declaration. Globals and string
// literals of each unit are declared at the same time. Declarations are
// checked here: duplicate names, duplicate locals, arity larger than the local
// table and declarations nested inside functions are rejected.
//
// Pass 2: compile
//
// Compiles statements in order. A function body is compiled into a custom
// target of the Context, run through the optimizer and installed at the index
// reserved in pass 1. Everything else at the top level goes to the program
// body, which the executor runs on Run.
//
// # Name Resolution
//
// Inside a function a variable name resolves to a local slot of the enclosing
// declaration, then to a global. "time" reads the executor clock unless a
// variable of that name exists. Assigning to "opacity" calls the set_opacity
// host binding.
//
// Call names resolve to a user function, then a math builtin, then a host
// binding of the registry. Unknown names are compile errors.
package compiler

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/shade/ast"
	"github.com/deepnoodle-ai/shade/builtins"
	"github.com/deepnoodle-ai/shade/bytecode"
	"github.com/deepnoodle-ai/shade/errors"
	"github.com/deepnoodle-ai/shade/object"
	"github.com/deepnoodle-ai/shade/op"
)

// Config holds compiler configuration options.
type Config struct {
	// Bindings declares the math builtins and host bindings visible to
	// programs. Defaults to builtins.Default(). The executor must be given
	// the same registry.
	Bindings *builtins.Registry

	// Logger receives debug events. Defaults to a disabled logger.
	Logger *zerolog.Logger

	// DisableOptimizer skips the dead store pass on function bodies.
	DisableOptimizer bool
}

// Compiler compiles one top-level unit, together with the units it imports,
// into a single program.
type Compiler struct {
	ctx      *Context
	registry *builtins.Registry
	log      zerolog.Logger
	optimize bool

	// Units seen by pass 1 and compiled by pass 2, keyed by path.
	declared map[string]bool
	compiled map[string]bool

	// Function indices reserved in pass 1 and their arities
	reserved map[*ast.FuncDecl]int
	arities  map[int]int

	// Position of pass 2
	path  string
	fn    *function
	loops int

	used bool
}

// function is the declaration whose body is being compiled.
type function struct {
	decl   *ast.FuncDecl
	index  int
	locals map[string]int
}

// Compile compiles the given unit and returns the linked program. Pass nil
// for cfg to use default settings.
func Compile(unit *ast.Unit, cfg *Config) (*bytecode.Program, error) {
	return New(cfg).Compile(unit)
}

// New creates and returns a new Compiler. Pass nil for cfg to use defaults.
func New(cfg *Config) *Compiler {
	c := &Compiler{
		ctx:      NewContext(),
		registry: builtins.Default(),
		log:      zerolog.Nop(),
		optimize: true,
		declared: map[string]bool{},
		compiled: map[string]bool{},
		reserved: map[*ast.FuncDecl]int{},
		arities:  map[int]int{},
	}
	if cfg != nil {
		if cfg.Bindings != nil {
			c.registry = cfg.Bindings
		}
		if cfg.Logger != nil {
			c.log = *cfg.Logger
		}
		c.optimize = !cfg.DisableOptimizer
	}
	return c
}

// Context returns the compilation context. After Compile it reports the
// imported paths and the final global table.
func (c *Compiler) Context() *Context {
	return c.ctx
}

// Compile compiles unit and every unit it imports. A Compiler can only be
// used once.
func (c *Compiler) Compile(unit *ast.Unit) (*bytecode.Program, error) {
	if unit == nil {
		return nil, fmt.Errorf("compiler: nil unit")
	}
	if c.used {
		return nil, fmt.Errorf("compiler: Compile called twice")
	}
	c.used = true

	// First pass: reserve every function so calls can refer forward
	if err := c.collectFunctionDeclarations(unit, unit.Path); err != nil {
		return nil, err
	}

	// Second pass: actual compilation
	c.compiled[unit.Path] = true
	if err := c.compileUnit(unit); err != nil {
		return nil, err
	}
	if depth := c.ctx.Depth(); depth != 0 {
		panic(fmt.Sprintf("compiler: %d custom targets left open", depth))
	}
	program := c.ctx.Program()
	c.log.Debug().
		Str("unit", unit.Name).
		Int("functions", len(program.UserFunctions)).
		Int("globals", program.Globals).
		Int("imports", len(c.ctx.ImportedPaths())).
		Msg("unit compiled")
	return program, nil
}

// collectFunctionDeclarations declares the globals and strings of unit and
// reserves its functions, recursing into imports.
func (c *Compiler) collectFunctionDeclarations(unit *ast.Unit, key string) error {
	c.declared[key] = true
	prevPath := c.path
	c.path = unit.Path
	defer func() { c.path = prevPath }()

	for _, name := range unit.GlobalNames() {
		if name != "" {
			c.ctx.DeclareGlobal(name)
		}
	}
	for _, s := range unit.Strings {
		c.ctx.InternString(s)
	}
	for _, stmt := range unit.Stmts {
		switch stmt := stmt.(type) {
		case *ast.FuncDecl:
			if err := c.checkDeclaration(stmt); err != nil {
				return err
			}
			index, err := c.ctx.Program().Reserve(stmt.Name)
			if err != nil {
				return c.formatError(errors.E2005, stmt,
					"Function '%s' is already defined", stmt.Name)
			}
			c.reserved[stmt] = index
			c.arities[index] = stmt.Arity
			c.log.Debug().Str("function", stmt.Name).Int("index", index).Msg("function reserved")
		case *ast.Import:
			if stmt.Unit == nil {
				return c.formatError(errors.E2008, stmt, "Could not import '%s'", stmt.Path)
			}
			if c.declared[stmt.Path] {
				continue
			}
			c.ctx.MarkImported(stmt.Path)
			if err := c.collectFunctionDeclarations(stmt.Unit, stmt.Path); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkDeclaration validates the shape of a function declaration.
func (c *Compiler) checkDeclaration(decl *ast.FuncDecl) error {
	if decl.Name == "" {
		return c.formatError(errors.E2010, decl, "Function declaration without a name")
	}
	if decl.Body == nil {
		return c.formatError(errors.E2010, decl, "Function '%s' has no body", decl.Name)
	}
	if decl.Arity < 0 || decl.Arity > len(decl.Locals) {
		return c.formatError(errors.E2010, decl,
			"Function '%s' declares %d parameters but has %d locals",
			decl.Name, decl.Arity, len(decl.Locals))
	}
	seen := make(map[string]bool, len(decl.Locals))
	for slot, local := range decl.Locals {
		if seen[local.Name] {
			return c.formatError(errors.E2006, decl,
				"Duplicate local '%s' in function '%s'", local.Name, decl.Name)
		}
		seen[local.Name] = true
		if slot < decl.Arity && local.Default != nil {
			return c.formatError(errors.E2010, decl,
				"Parameter '%s' of '%s' can not have a default value", local.Name, decl.Name)
		}
	}
	var err error
	ast.Inspect(decl.Body, func(node ast.Node) bool {
		if err != nil {
			return false
		}
		switch node := node.(type) {
		case *ast.FuncDecl:
			err = c.formatError(errors.E2010, node,
				"Function '%s' can not be declared inside '%s'", node.Name, decl.Name)
		case *ast.Import:
			err = c.formatError(errors.E2008, node,
				"Imports are only allowed at the top level")
		}
		return err == nil
	})
	return err
}

func (c *Compiler) compileUnit(unit *ast.Unit) error {
	prevPath := c.path
	c.path = unit.Path
	defer func() { c.path = prevPath }()
	for _, stmt := range unit.Stmts {
		if err := c.compileStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// atTopLevel reports whether pass 2 is outside any function and nested
// sequence.
func (c *Compiler) atTopLevel() bool {
	return c.fn == nil && c.ctx.Depth() == 0
}

func (c *Compiler) compileStmt(stmt ast.Stmt) error {
	switch stmt := stmt.(type) {
	case nil:
		return nil
	case *ast.Empty:
		return nil
	case *ast.Block:
		return c.compileBlock(stmt)
	case *ast.ExprStmt:
		return c.compileExprStmt(stmt)
	case *ast.Var:
		return c.compileVar(stmt)
	case *ast.If:
		return c.compileIf(stmt)
	case *ast.While:
		return c.compileWhile(stmt)
	case *ast.For:
		return c.compileFor(stmt)
	case *ast.Break:
		return c.compileBreak(stmt)
	case *ast.Return:
		return c.compileReturn(stmt)
	case *ast.Print:
		return c.compilePrint(stmt)
	case *ast.FuncDecl:
		if !c.atTopLevel() {
			return c.formatError(errors.E2010, stmt,
				"Function '%s' must be declared at the top level", stmt.Name)
		}
		return c.compileFunction(stmt)
	case *ast.Import:
		return c.compileImport(stmt)
	default:
		return fmt.Errorf("compiler: unknown statement type %T", stmt)
	}
}

func (c *Compiler) compileBlock(block *ast.Block) error {
	if block == nil {
		return nil
	}
	for _, stmt := range block.Stmts {
		if err := c.compileStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// compileExprStmt evaluates an expression for its effect and discards its
// value, if it has one.
func (c *Compiler) compileExprStmt(stmt *ast.ExprStmt) error {
	if stmt.X == nil {
		return nil
	}
	return c.compileEffect(stmt.X)
}

// compileEffect compiles x and pops its value if it produces one.
func (c *Compiler) compileEffect(x ast.Expr) error {
	if assign, ok := x.(*ast.Assign); ok {
		return c.compileAssign(assign)
	}
	yields, err := c.yields(x)
	if err != nil {
		return err
	}
	if err := c.compileExprRaw(x); err != nil {
		return err
	}
	if yields {
		c.emit(bytecode.Simple(op.PopTop), x)
	}
	return nil
}

func (c *Compiler) compileVar(stmt *ast.Var) error {
	if stmt.Value != nil {
		if err := c.compileExpr(stmt.Value); err != nil {
			return err
		}
	} else {
		c.emit(bytecode.Push(object.None), stmt)
	}
	if c.fn != nil {
		slot, ok := c.fn.locals[stmt.Name]
		if !ok {
			return c.formatError(errors.E2001, stmt,
				"Local '%s' is not declared in function '%s'", stmt.Name, c.fn.decl.Name)
		}
		c.emit(bytecode.StoreLocal(slot), stmt)
		return nil
	}
	c.emit(bytecode.StoreGlobal(c.ctx.DeclareGlobal(stmt.Name)), stmt)
	return nil
}

// compileNested compiles fn into a fresh custom target and returns the
// instructions it emitted.
func (c *Compiler) compileNested(fn func() error) ([]bytecode.Instruction, error) {
	c.ctx.AddCustomTarget()
	err := fn()
	code, ok := c.ctx.TakeLastCustomTarget()
	if !ok {
		panic("compiler: custom target stack underflow")
	}
	if err != nil {
		return nil, err
	}
	return code, nil
}

func (c *Compiler) compileIf(stmt *ast.If) error {
	if err := c.compileExpr(stmt.Cond); err != nil {
		return err
	}
	then, err := c.compileNested(func() error { return c.compileStmt(stmt.Then) })
	if err != nil {
		return err
	}
	var otherwise []bytecode.Instruction
	if stmt.Else != nil {
		otherwise, err = c.compileNested(func() error { return c.compileStmt(stmt.Else) })
		if err != nil {
			return err
		}
	}
	c.emit(bytecode.If(then, otherwise), stmt)
	return nil
}

func (c *Compiler) compileWhile(stmt *ast.While) error {
	if stmt.Cond == nil {
		return c.formatError(errors.E2007, stmt, "While loop without a condition")
	}
	cond, err := c.compileNested(func() error { return c.compileExpr(stmt.Cond) })
	if err != nil {
		return err
	}
	body, err := c.compileLoopBody(stmt.Body)
	if err != nil {
		return err
	}
	c.emit(bytecode.Loop(cond, body, nil), stmt)
	return nil
}

func (c *Compiler) compileFor(stmt *ast.For) error {
	for _, init := range stmt.Init {
		if err := c.compileStmt(init); err != nil {
			return err
		}
	}
	var cond []bytecode.Instruction
	if stmt.Cond != nil {
		var err error
		cond, err = c.compileNested(func() error { return c.compileExpr(stmt.Cond) })
		if err != nil {
			return err
		}
	}
	body, err := c.compileLoopBody(stmt.Body)
	if err != nil {
		return err
	}
	step, err := c.compileNested(func() error {
		for _, x := range stmt.Step {
			if err := c.compileEffect(x); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.emit(bytecode.Loop(cond, body, step), stmt)
	return nil
}

func (c *Compiler) compileLoopBody(body ast.Stmt) ([]bytecode.Instruction, error) {
	c.loops++
	defer func() { c.loops-- }()
	return c.compileNested(func() error { return c.compileStmt(body) })
}

func (c *Compiler) compileBreak(stmt *ast.Break) error {
	if c.loops == 0 {
		return c.formatError(errors.E2003, stmt, "Break outside of a loop")
	}
	c.emit(bytecode.Simple(op.Break), stmt)
	return nil
}

func (c *Compiler) compileReturn(stmt *ast.Return) error {
	if stmt.Value == nil {
		c.emit(bytecode.Push(object.None), stmt)
	} else if err := c.compileExpr(stmt.Value); err != nil {
		return err
	}
	c.emit(bytecode.Simple(op.ReturnValue), stmt)
	return nil
}

func (c *Compiler) compilePrint(stmt *ast.Print) error {
	if stmt.Value == nil {
		c.emit(bytecode.HostCall("print", 0, false), stmt)
		return nil
	}
	if err := c.compileExpr(stmt.Value); err != nil {
		return err
	}
	c.emit(bytecode.HostCall("print", 1, false), stmt)
	return nil
}

// compileImport compiles the statements of an imported unit in place. A unit
// is compiled only the first time it is imported.
func (c *Compiler) compileImport(stmt *ast.Import) error {
	if !c.atTopLevel() {
		return c.formatError(errors.E2008, stmt, "Imports are only allowed at the top level")
	}
	if stmt.Unit == nil {
		return c.formatError(errors.E2008, stmt, "Could not import '%s'", stmt.Path)
	}
	if c.compiled[stmt.Path] {
		return nil
	}
	if !c.declared[stmt.Path] {
		return c.formatError(errors.E2008, stmt,
			"Import of '%s' must appear at the top level of a unit", stmt.Path)
	}
	c.compiled[stmt.Path] = true
	if err := c.compileUnit(stmt.Unit); err != nil {
		return err
	}
	c.log.Debug().Str("path", stmt.Path).Msg("import compiled")
	return nil
}

// emit tags an instruction with the location of node and appends it to the
// current target.
func (c *Compiler) emit(ins bytecode.Instruction, node ast.Node) {
	c.ctx.Emit(ins.At(c.loc(node)))
}

func (c *Compiler) loc(node ast.Node) errors.Location {
	loc := node.Loc()
	if loc.Path == "" {
		loc.Path = c.path
	}
	return loc
}

// formatError creates a CompileError located at node.
func (c *Compiler) formatError(code errors.ErrorCode, node ast.Node, format string, args ...any) *errors.CompileError {
	return errors.NewCompileError(code, fmt.Sprintf(format, args...), c.loc(node))
}
