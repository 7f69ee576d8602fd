package compiler

import (
	"github.com/deepnoodle-ai/shade/bytecode"
)

// Context is the mutable state shared by every unit compiled into one
// program: the program itself, the global name table, the string pool, the
// list of imported paths and the stack of custom targets.
//
// A custom target is a temporary instruction buffer. Constructs with nested
// sequences (branches, loops, short-circuit operands, function bodies) open a
// target, compile into it and take it back as a slice. Emit always appends to
// the innermost open target, or to the program body when none is open.
type Context struct {
	program  *bytecode.Program
	globals  map[string]int
	strings  map[string]int
	imported []string
	seen     map[string]bool
	targets  [][]bytecode.Instruction
}

// NewContext returns a context owning a new, empty program.
func NewContext() *Context {
	return &Context{
		program: bytecode.NewProgram(),
		globals: map[string]int{},
		strings: map[string]int{},
		seen:    map[string]bool{},
	}
}

// Program returns the program being built.
func (c *Context) Program() *bytecode.Program {
	return c.program
}

// Emit appends an instruction to the current target.
func (c *Context) Emit(ins bytecode.Instruction) {
	if n := len(c.targets); n > 0 {
		c.targets[n-1] = append(c.targets[n-1], ins)
		return
	}
	c.program.Body = append(c.program.Body, ins)
}

// AddCustomTarget opens a new empty target.
func (c *Context) AddCustomTarget() {
	c.targets = append(c.targets, []bytecode.Instruction{})
}

// TakeLastCustomTarget closes the innermost target and returns its
// instructions. It returns false if no target is open.
func (c *Context) TakeLastCustomTarget() ([]bytecode.Instruction, bool) {
	n := len(c.targets)
	if n == 0 {
		return nil, false
	}
	code := c.targets[n-1]
	c.targets = c.targets[:n-1]
	return code, true
}

// Depth returns the number of open custom targets.
func (c *Context) Depth() int {
	return len(c.targets)
}

// DeclareGlobal returns the slot of a global, allocating the next free slot
// if the name is new.
func (c *Context) DeclareGlobal(name string) int {
	if slot, ok := c.globals[name]; ok {
		return slot
	}
	slot := len(c.globals)
	c.globals[name] = slot
	c.program.GlobalNames = append(c.program.GlobalNames, name)
	c.program.Globals = len(c.globals)
	return slot
}

// Global returns the slot of a declared global.
func (c *Context) Global(name string) (int, bool) {
	slot, ok := c.globals[name]
	return slot, ok
}

// Globals returns a copy of the global name table.
func (c *Context) Globals() map[string]int {
	out := make(map[string]int, len(c.globals))
	for name, slot := range c.globals {
		out[name] = slot
	}
	return out
}

// InternString adds s to the program string pool and returns its index.
// Equal strings share one entry.
func (c *Context) InternString(s string) int {
	if index, ok := c.strings[s]; ok {
		return index
	}
	index := len(c.program.Strings)
	c.program.Strings = append(c.program.Strings, s)
	c.strings[s] = index
	return index
}

// MarkImported records an imported path and reports whether it was new.
func (c *Context) MarkImported(path string) bool {
	if c.seen[path] {
		return false
	}
	c.seen[path] = true
	c.imported = append(c.imported, path)
	return true
}

// ImportedPaths returns the imported paths in the order they were first
// seen.
func (c *Context) ImportedPaths() []string {
	out := make([]string, len(c.imported))
	copy(out, c.imported)
	return out
}
