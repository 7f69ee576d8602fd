package bytecode

import (
	"fmt"

	"github.com/gofrs/uuid"

	"github.com/deepnoodle-ai/shade/op"
)

const (
	// ShadeName is the name of the function used as the shader entry.
	ShadeName = "shade"

	// SetOpacity is the host binding that sets a shader's opacity.
	SetOpacity = "set_opacity"
)

// Program is the linked output of compiling one or more units.
type Program struct {
	// ID identifies this compilation. Hosts use it as a cache key.
	ID uuid.UUID

	// Globals is the size of the global slot array.
	Globals int

	// GlobalNames names each global slot.
	GlobalNames []string

	// Body is the entry sequence run by the executor's Run method.
	Body []Instruction

	// UserFunctions is indexed by the operand of CALL instructions.
	UserFunctions []*Function

	// UserFunctionsNameMap maps a function name to its index.
	UserFunctionsNameMap map[string]int

	// ShadeIndex is the index of the shader entry, or -1 if there is none.
	ShadeIndex int

	// ShadeLocals is the frame size of the shader entry.
	ShadeLocals int

	// Strings is the deduplicated string pool used by LOAD_STRING.
	Strings []string
}

// NewProgram returns an empty program with a fresh ID.
func NewProgram() *Program {
	return &Program{
		ID:                   uuid.Must(uuid.NewV4()),
		UserFunctionsNameMap: map[string]int{},
		ShadeIndex:           -1,
	}
}

// Reserve registers a function name and returns its index. The body is
// installed later with Install, which lets calls refer to functions that are
// compiled afterwards. Reserving a name twice is an error.
func (p *Program) Reserve(name string) (int, error) {
	if _, exists := p.UserFunctionsNameMap[name]; exists {
		return 0, fmt.Errorf("function %q is already defined", name)
	}
	index := len(p.UserFunctions)
	p.UserFunctions = append(p.UserFunctions, nil)
	p.UserFunctionsNameMap[name] = index
	return index, nil
}

// Install stores the compiled function at its reserved index. A function is
// installed exactly once; installing the shade function also records the
// shader entry.
func (p *Program) Install(index int, fn *Function) error {
	if index < 0 || index >= len(p.UserFunctions) {
		return fmt.Errorf("function index %d out of range", index)
	}
	if p.UserFunctions[index] != nil {
		return fmt.Errorf("function %q is already installed", fn.Name())
	}
	if reserved, ok := p.UserFunctionsNameMap[fn.Name()]; !ok || reserved != index {
		return fmt.Errorf("function %q was not reserved at index %d", fn.Name(), index)
	}
	p.UserFunctions[index] = fn
	if fn.Name() == ShadeName {
		p.ShadeIndex = index
		p.ShadeLocals = fn.LocalCount()
	}
	return nil
}

// Function returns the function at index.
func (p *Program) Function(index int) (*Function, bool) {
	if index < 0 || index >= len(p.UserFunctions) || p.UserFunctions[index] == nil {
		return nil, false
	}
	return p.UserFunctions[index], true
}

// FunctionByName looks up a function by name.
func (p *Program) FunctionByName(name string) (*Function, int, bool) {
	index, ok := p.UserFunctionsNameMap[name]
	if !ok {
		return nil, -1, false
	}
	fn, ok := p.Function(index)
	return fn, index, ok
}

// Shade returns the shader entry function, if one was defined.
func (p *Program) Shade() (*Function, bool) {
	if p.ShadeIndex < 0 {
		return nil, false
	}
	return p.Function(p.ShadeIndex)
}

// ShaderSupportsOpacity reports whether the shade function contains a
// set_opacity host call anywhere in its body, including branches that a
// given evaluation may never take. The scan is not cached.
func (p *Program) ShaderSupportsOpacity() bool {
	fn, ok := p.Shade()
	if !ok {
		return false
	}
	found := false
	check := func(ins Instruction) bool {
		if ins.Op == op.HostCall && ins.Name == SetOpacity {
			found = true
		}
		return !found
	}
	Inspect(fn.Code(), check)
	for slot := 0; slot < fn.LocalCount() && !found; slot++ {
		Inspect(fn.Default(slot), check)
	}
	return found
}

// Stats contains statistics about a compiled program. This is useful for
// auditing scripts before execution.
type Stats struct {
	// InstructionCount counts every instruction, nested sequences included.
	InstructionCount int

	// FunctionCount is the number of user functions.
	FunctionCount int

	// GlobalCount is the number of global slots.
	GlobalCount int

	// StringCount is the size of the string pool.
	StringCount int
}

// Stats returns statistics about the program.
func (p *Program) Stats() Stats {
	count := Count(p.Body)
	for _, fn := range p.UserFunctions {
		if fn == nil {
			continue
		}
		count += Count(fn.Code())
		for slot := 0; slot < fn.LocalCount(); slot++ {
			count += Count(fn.Default(slot))
		}
	}
	return Stats{
		InstructionCount: count,
		FunctionCount:    len(p.UserFunctions),
		GlobalCount:      p.Globals,
		StringCount:      len(p.Strings),
	}
}
