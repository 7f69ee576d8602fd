package bytecode

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/gofrs/uuid"

	"github.com/deepnoodle-ai/shade/errors"
	"github.com/deepnoodle-ai/shade/object"
	"github.com/deepnoodle-ai/shade/op"
)

// Canonical encoding keeps the output deterministic, so identical programs
// produce identical bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal converts a Program into its CBOR representation. Hosts use this to
// cache compiled programs between runs.
func Marshal(p *Program) ([]byte, error) {
	return cborEncMode.Marshal(stateFromProgram(p))
}

// Unmarshal converts a CBOR representation back into a Program and
// validates it.
func Unmarshal(data []byte) (*Program, error) {
	var state programState
	if err := cbor.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal program: %w", err)
	}
	p, err := programFromState(&state)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("bytecode: invalid program: %w", err)
	}
	return p, nil
}

// Serialization types

type programState struct {
	ID          string          `cbor:"id"`
	Globals     int             `cbor:"globals"`
	GlobalNames []string        `cbor:"global_names,omitempty"`
	Body        []instrState    `cbor:"body,omitempty"`
	Functions   []functionState `cbor:"functions,omitempty"`
	Strings     []string        `cbor:"strings,omitempty"`
}

type functionState struct {
	Name     string         `cbor:"name"`
	Arity    int            `cbor:"arity"`
	Locals   []string       `cbor:"locals,omitempty"`
	Defaults [][]instrState `cbor:"defaults,omitempty"`
	Code     []instrState   `cbor:"code,omitempty"`
	Path     string         `cbor:"path,omitempty"`
	Line     int            `cbor:"line,omitempty"`
}

type instrState struct {
	Op      uint16       `cbor:"op"`
	Operand int          `cbor:"operand,omitempty"`
	Argc    int          `cbor:"argc,omitempty"`
	Value   *valueState  `cbor:"value,omitempty"`
	Name    string       `cbor:"name,omitempty"`
	Returns bool         `cbor:"returns,omitempty"`
	Then    []instrState `cbor:"then,omitempty"`
	Else    []instrState `cbor:"else,omitempty"`
	Cond    []instrState `cbor:"cond,omitempty"`
	Step    []instrState `cbor:"step,omitempty"`
	Path    string       `cbor:"path,omitempty"`
	Line    int          `cbor:"line,omitempty"`
}

type valueState struct {
	Type   string    `cbor:"type"`
	Floats []float32 `cbor:"floats,omitempty"`
	Bool   bool      `cbor:"bool,omitempty"`
	String string    `cbor:"string,omitempty"`
}

func stateFromProgram(p *Program) *programState {
	state := &programState{
		ID:          p.ID.String(),
		Globals:     p.Globals,
		GlobalNames: p.GlobalNames,
		Body:        stateFromCode(p.Body),
		Strings:     p.Strings,
	}
	for _, fn := range p.UserFunctions {
		if fn == nil {
			continue
		}
		fs := functionState{
			Name:   fn.Name(),
			Arity:  fn.Arity(),
			Locals: fn.localNames,
			Code:   stateFromCode(fn.Code()),
			Path:   fn.Location().Path,
			Line:   fn.Location().Line,
		}
		hasDefaults := false
		defaults := make([][]instrState, fn.LocalCount())
		for slot := range defaults {
			if code := fn.Default(slot); code != nil {
				defaults[slot] = stateFromCode(code)
				hasDefaults = true
			}
		}
		if hasDefaults {
			fs.Defaults = defaults
		}
		state.Functions = append(state.Functions, fs)
	}
	return state
}

func stateFromCode(code []Instruction) []instrState {
	if code == nil {
		return nil
	}
	out := make([]instrState, len(code))
	for i, ins := range code {
		s := instrState{
			Op:      uint16(ins.Op),
			Operand: ins.Operand,
			Argc:    ins.Argc,
			Name:    ins.Name,
			Returns: ins.Returns,
			Then:    stateFromCode(ins.Then),
			Else:    stateFromCode(ins.Else),
			Cond:    stateFromCode(ins.Cond),
			Step:    stateFromCode(ins.Step),
			Path:    ins.Loc.Path,
			Line:    ins.Loc.Line,
		}
		if ins.Op == op.Push {
			s.Value = stateFromValue(ins.Value)
		}
		out[i] = s
	}
	return out
}

func stateFromValue(v object.Value) *valueState {
	s := &valueState{Type: string(v.Type())}
	switch v.Type() {
	case object.BOOL:
		s.Bool = v.Bool()
	case object.STRING:
		s.String = v.Str()
	case object.FLOAT, object.FLOAT2, object.FLOAT3, object.FLOAT4:
		s.Floats = v.Floats()
	}
	return s
}

func programFromState(state *programState) (*Program, error) {
	id, err := uuid.FromString(state.ID)
	if err != nil {
		return nil, fmt.Errorf("bytecode: invalid program id: %w", err)
	}
	p := NewProgram()
	p.ID = id
	p.Globals = state.Globals
	p.GlobalNames = state.GlobalNames
	p.Strings = state.Strings
	if p.Body, err = codeFromState(state.Body); err != nil {
		return nil, err
	}
	for _, fs := range state.Functions {
		index, err := p.Reserve(fs.Name)
		if err != nil {
			return nil, fmt.Errorf("bytecode: %w", err)
		}
		code, err := codeFromState(fs.Code)
		if err != nil {
			return nil, err
		}
		var defaults [][]Instruction
		if fs.Defaults != nil {
			defaults = make([][]Instruction, len(fs.Defaults))
			for slot, d := range fs.Defaults {
				if defaults[slot], err = codeFromState(d); err != nil {
					return nil, err
				}
			}
		}
		fn := NewFunction(FunctionParams{
			Name:     fs.Name,
			Arity:    fs.Arity,
			Locals:   fs.Locals,
			Defaults: defaults,
			Code:     code,
			Location: errors.Location{Path: fs.Path, Line: fs.Line},
		})
		if err := p.Install(index, fn); err != nil {
			return nil, fmt.Errorf("bytecode: %w", err)
		}
	}
	return p, nil
}

func codeFromState(states []instrState) ([]Instruction, error) {
	if states == nil {
		return nil, nil
	}
	out := make([]Instruction, len(states))
	for i, s := range states {
		code := op.Code(s.Op)
		if op.GetInfo(code).Name == "" {
			return nil, fmt.Errorf("bytecode: unknown opcode %d", s.Op)
		}
		ins := Instruction{
			Op:      code,
			Operand: s.Operand,
			Argc:    s.Argc,
			Name:    s.Name,
			Returns: s.Returns,
			Loc:     errors.Location{Path: s.Path, Line: s.Line},
		}
		if s.Value != nil {
			v, err := valueFromState(s.Value)
			if err != nil {
				return nil, err
			}
			ins.Value = v
		}
		var err error
		if ins.Then, err = codeFromState(s.Then); err != nil {
			return nil, err
		}
		if ins.Else, err = codeFromState(s.Else); err != nil {
			return nil, err
		}
		if ins.Cond, err = codeFromState(s.Cond); err != nil {
			return nil, err
		}
		if ins.Step, err = codeFromState(s.Step); err != nil {
			return nil, err
		}
		out[i] = ins
	}
	return out, nil
}

func valueFromState(s *valueState) (object.Value, error) {
	switch object.Type(s.Type) {
	case object.NONE:
		return object.None, nil
	case object.BOOL:
		return object.NewBool(s.Bool), nil
	case object.STRING:
		return object.NewString(s.String), nil
	case object.FLOAT, object.FLOAT2, object.FLOAT3, object.FLOAT4:
		v, err := object.NewVector(s.Floats...)
		if err != nil {
			return object.None, fmt.Errorf("bytecode: %w", err)
		}
		if v.Type() != object.Type(s.Type) {
			return object.None, fmt.Errorf("bytecode: %s value has %d components", s.Type, len(s.Floats))
		}
		return v, nil
	}
	return object.None, fmt.Errorf("bytecode: unknown value type %q", s.Type)
}
