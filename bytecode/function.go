package bytecode

import "github.com/deepnoodle-ai/shade/errors"

// Function is a compiled user function. It is immutable after creation.
type Function struct {
	name       string
	arity      int
	localNames []string
	defaults   [][]Instruction
	code       []Instruction
	location   errors.Location
}

// FunctionParams contains parameters for creating a new Function.
type FunctionParams struct {
	Name string

	// Arity is the number of parameters. Parameters occupy the first Arity
	// local slots.
	Arity int

	// Locals names every slot in declaration order.
	Locals []string

	// Defaults holds, per slot, the code that computes the slot's initial
	// value. Nil entries start as none. Parameter slots are always filled
	// by the caller.
	Defaults [][]Instruction

	Code     []Instruction
	Location errors.Location
}

// NewFunction creates a new immutable Function from the given parameters.
// Input sequences are copied, nested ones included, so later changes to the
// compiler's buffers never reach the function.
func NewFunction(params FunctionParams) *Function {
	locals := make([]string, len(params.Locals))
	copy(locals, params.Locals)
	defaults := make([][]Instruction, len(locals))
	for slot := range defaults {
		if slot < len(params.Defaults) {
			defaults[slot] = Clone(params.Defaults[slot])
		}
	}
	code := Clone(params.Code)
	if code == nil {
		code = []Instruction{}
	}
	return &Function{
		name:       params.Name,
		arity:      params.Arity,
		localNames: locals,
		defaults:   defaults,
		code:       code,
		location:   params.Location,
	}
}

// Name returns the function name.
func (f *Function) Name() string {
	return f.name
}

// Arity returns the number of parameters.
func (f *Function) Arity() int {
	return f.arity
}

// LocalCount returns the size of the call frame.
func (f *Function) LocalCount() int {
	return len(f.localNames)
}

// LocalName returns the name of the local in the given slot.
func (f *Function) LocalName(slot int) string {
	return f.localNames[slot]
}

// Default returns the code initializing slot, or nil. The slice is shared
// and must not be modified.
func (f *Function) Default(slot int) []Instruction {
	return f.defaults[slot]
}

// Code returns the function body. The slice is shared by every executor
// running the program and must not be modified.
func (f *Function) Code() []Instruction {
	return f.code
}

// Location returns where the function was declared.
func (f *Function) Location() errors.Location {
	return f.location
}

// String returns a short signature such as "add(a, b)".
func (f *Function) String() string {
	s := f.name + "("
	for i := 0; i < f.arity && i < len(f.localNames); i++ {
		if i > 0 {
			s += ", "
		}
		s += f.localNames[i]
	}
	return s + ")"
}
