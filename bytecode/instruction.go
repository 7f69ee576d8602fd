package bytecode

import (
	"github.com/deepnoodle-ai/shade/errors"
	"github.com/deepnoodle-ai/shade/object"
	"github.com/deepnoodle-ai/shade/op"
)

// Instruction is one operation of a compiled sequence. Which fields are
// meaningful depends on Op:
//
//   - LOAD_LOCAL, STORE_LOCAL, LOAD_GLOBAL, STORE_GLOBAL: Operand is the slot
//   - LOAD_STRING: Operand indexes the program string pool
//   - PUSH: Value
//   - BINARY_OP, COMPARE_OP: Operand is the op.BinaryOpType/op.CompareOpType
//   - CALL, BUILTIN: Operand is the function index, Argc the argument count
//   - HOST_CALL: Name, Argc and Returns
//   - PACK: Operand is the component count
//   - SWIZZLE, SET_SWIZZLE: Name is the pattern
//   - IF: Then and Else
//   - AND, OR: Then holds the right hand side
//   - LOOP: Cond, Then (the body) and Step
type Instruction struct {
	Op      op.Code
	Operand int
	Argc    int
	Value   object.Value
	Name    string
	Returns bool
	Then    []Instruction
	Else    []Instruction
	Cond    []Instruction
	Step    []Instruction
	Loc     errors.Location
}

// At returns a copy of the instruction tagged with a source location.
func (i Instruction) At(loc errors.Location) Instruction {
	i.Loc = loc
	return i
}

// Is reports whether the instruction has the given opcode and operand.
func (i Instruction) Is(code op.Code, operand int) bool {
	return i.Op == code && i.Operand == operand
}

// Simple returns an instruction that takes no operands.
func Simple(code op.Code) Instruction {
	return Instruction{Op: code}
}

func Push(v object.Value) Instruction {
	return Instruction{Op: op.Push, Value: v}
}

func LoadLocal(slot int) Instruction {
	return Instruction{Op: op.LoadLocal, Operand: slot}
}

func StoreLocal(slot int) Instruction {
	return Instruction{Op: op.StoreLocal, Operand: slot}
}

func LoadGlobal(slot int) Instruction {
	return Instruction{Op: op.LoadGlobal, Operand: slot}
}

func StoreGlobal(slot int) Instruction {
	return Instruction{Op: op.StoreGlobal, Operand: slot}
}

func LoadString(index int) Instruction {
	return Instruction{Op: op.LoadString, Operand: index}
}

func BinaryOp(bop op.BinaryOpType) Instruction {
	return Instruction{Op: op.BinaryOp, Operand: int(bop)}
}

func CompareOp(cop op.CompareOpType) Instruction {
	return Instruction{Op: op.CompareOp, Operand: int(cop)}
}

// Call invokes user function index with argc arguments from the stack.
func Call(index, argc int) Instruction {
	return Instruction{Op: op.Call, Operand: index, Argc: argc}
}

// Builtin invokes a registered math builtin.
func Builtin(index, argc int) Instruction {
	return Instruction{Op: op.Builtin, Operand: index, Argc: argc}
}

// HostCall invokes a host binding. Returns records whether the binding
// leaves a value on the stack.
func HostCall(name string, argc int, returns bool) Instruction {
	return Instruction{Op: op.HostCall, Name: name, Argc: argc, Returns: returns}
}

func Pack(n int) Instruction {
	return Instruction{Op: op.Pack, Operand: n}
}

func Swizzle(pattern string) Instruction {
	return Instruction{Op: op.Swizzle, Name: pattern}
}

func SetSwizzle(pattern string) Instruction {
	return Instruction{Op: op.SetSwizzle, Name: pattern}
}

// If pops a condition and runs then or otherwise.
func If(then, otherwise []Instruction) Instruction {
	return Instruction{Op: op.If, Then: then, Else: otherwise}
}

// And runs rhs only when the value on the stack is truthy.
func And(rhs []Instruction) Instruction {
	return Instruction{Op: op.And, Then: rhs}
}

// Or runs rhs only when the value on the stack is falsy.
func Or(rhs []Instruction) Instruction {
	return Instruction{Op: op.Or, Then: rhs}
}

// Loop runs cond, then body and step, until cond yields a falsy value or
// the body breaks or returns. An empty cond loops forever.
func Loop(cond, body, step []Instruction) Instruction {
	return Instruction{Op: op.Loop, Cond: cond, Then: body, Step: step}
}

// Clone returns a deep copy of code. A nil sequence stays nil.
func Clone(code []Instruction) []Instruction {
	if code == nil {
		return nil
	}
	out := make([]Instruction, len(code))
	for i, ins := range code {
		ins.Then = Clone(ins.Then)
		ins.Else = Clone(ins.Else)
		ins.Cond = Clone(ins.Cond)
		ins.Step = Clone(ins.Step)
		out[i] = ins
	}
	return out
}

// Inspect visits every instruction of code in order, descending into nested
// sequences after their parent. Returning false from fn skips the nested
// sequences of that instruction.
func Inspect(code []Instruction, fn func(Instruction) bool) {
	for _, ins := range code {
		if !fn(ins) {
			continue
		}
		if len(ins.Cond) > 0 {
			Inspect(ins.Cond, fn)
		}
		if len(ins.Then) > 0 {
			Inspect(ins.Then, fn)
		}
		if len(ins.Else) > 0 {
			Inspect(ins.Else, fn)
		}
		if len(ins.Step) > 0 {
			Inspect(ins.Step, fn)
		}
	}
}

// Count returns the number of instructions in code, nested ones included.
func Count(code []Instruction) int {
	var n int
	Inspect(code, func(Instruction) bool {
		n++
		return true
	})
	return n
}
