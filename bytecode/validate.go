package bytecode

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/deepnoodle-ai/shade/op"
)

// Validate checks that the program is internally consistent: every reserved
// function is installed, the name map agrees with the table, the shader
// entry is in range and every instruction refers to slots, strings and
// functions that exist. All problems are reported together.
func (p *Program) Validate() error {
	var result *multierror.Error

	for name, index := range p.UserFunctionsNameMap {
		if index < 0 || index >= len(p.UserFunctions) {
			result = multierror.Append(result, fmt.Errorf("function %q maps to invalid index %d", name, index))
			continue
		}
		if fn := p.UserFunctions[index]; fn != nil && fn.Name() != name {
			result = multierror.Append(result, fmt.Errorf("function %q maps to %q", name, fn.Name()))
		}
	}
	if len(p.UserFunctionsNameMap) != len(p.UserFunctions) {
		result = multierror.Append(result, fmt.Errorf("name map has %d entries for %d functions",
			len(p.UserFunctionsNameMap), len(p.UserFunctions)))
	}
	if p.ShadeIndex >= len(p.UserFunctions) {
		result = multierror.Append(result, fmt.Errorf("shade index %d out of range", p.ShadeIndex))
	}

	result = p.validateCode("<main>", p.Body, -1, result)
	for index, fn := range p.UserFunctions {
		if fn == nil {
			result = multierror.Append(result, fmt.Errorf("function %d was reserved but never installed", index))
			continue
		}
		if fn.Arity() > fn.LocalCount() {
			result = multierror.Append(result, fmt.Errorf("%s: arity %d exceeds %d locals",
				fn.Name(), fn.Arity(), fn.LocalCount()))
		}
		result = p.validateCode(fn.Name(), fn.Code(), fn.LocalCount(), result)
		for slot := 0; slot < fn.LocalCount(); slot++ {
			result = p.validateCode(fn.Name(), fn.Default(slot), fn.LocalCount(), result)
		}
	}
	return result.ErrorOrNil()
}

// validateCode checks one sequence. locals is -1 for the entry body, which
// has no frame.
func (p *Program) validateCode(owner string, code []Instruction, locals int, result *multierror.Error) *multierror.Error {
	Inspect(code, func(ins Instruction) bool {
		var problem string
		switch ins.Op {
		case op.LoadLocal, op.StoreLocal:
			if ins.Operand < 0 || ins.Operand >= locals {
				problem = fmt.Sprintf("local slot %d out of range", ins.Operand)
			}
		case op.LoadGlobal, op.StoreGlobal:
			if ins.Operand < 0 || ins.Operand >= p.Globals {
				problem = fmt.Sprintf("global slot %d out of range", ins.Operand)
			}
		case op.LoadString:
			if ins.Operand < 0 || ins.Operand >= len(p.Strings) {
				problem = fmt.Sprintf("string %d out of range", ins.Operand)
			}
		case op.Call:
			fn, ok := p.Function(ins.Operand)
			switch {
			case !ok:
				problem = fmt.Sprintf("call to unknown function %d", ins.Operand)
			case fn.Arity() != ins.Argc:
				problem = fmt.Sprintf("call to %s with %d arguments", fn, ins.Argc)
			}
		case op.Pack:
			if ins.Operand < 1 || ins.Operand > 4 {
				problem = fmt.Sprintf("cannot pack %d components", ins.Operand)
			}
		case op.Invalid:
			problem = "invalid opcode"
		}
		if problem != "" {
			result = multierror.Append(result, fmt.Errorf("%s: %s", owner, problem))
		}
		return true
	})
	return result
}
