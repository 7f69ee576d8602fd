package shade

import (
	"github.com/gofrs/uuid"

	"github.com/deepnoodle-ai/shade/builtins"
	"github.com/deepnoodle-ai/shade/bytecode"
	"github.com/deepnoodle-ai/shade/vm"
)

// Program is the compiled representation of a shade unit.
// It is immutable after creation and safe for concurrent use.
type Program struct {
	code     *bytecode.Program
	registry *builtins.Registry
	imported []string
	path     string
}

// ID identifies the compilation.
func (p *Program) ID() uuid.UUID {
	return p.code.ID
}

// Path returns the source path of the root unit.
func (p *Program) Path() string {
	return p.path
}

// GlobalNames returns the names of the global slots, in slot order.
func (p *Program) GlobalNames() []string {
	return append([]string(nil), p.code.GlobalNames...)
}

// ImportedPaths returns every file imported during compilation, for file
// watchers that recompile on change.
func (p *Program) ImportedPaths() []string {
	return append([]string(nil), p.imported...)
}

// HasShade reports whether the program defines a shade entry.
func (p *Program) HasShade() bool {
	_, ok := p.code.Shade()
	return ok
}

// SupportsOpacity reports whether the shade entry can set the opacity of
// the surface it shades.
func (p *Program) SupportsOpacity() bool {
	return p.code.ShaderSupportsOpacity()
}

// Bytecode returns the compiled program for use with the vm and dis
// packages.
func (p *Program) Bytecode() *bytecode.Program {
	return p.code
}

// Marshal encodes the compiled program so a host can cache it.
func (p *Program) Marshal() ([]byte, error) {
	return bytecode.Marshal(p.code)
}

// Load decodes a program encoded with Marshal. The registry option must
// match the one used for compilation.
func Load(data []byte, opts ...Option) (*Program, error) {
	code, err := bytecode.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if err := code.Validate(); err != nil {
		return nil, err
	}
	o := collectOptions(opts...)
	return &Program{code: code, registry: o.registry}, nil
}

func (p *Program) newExecutor(o *options) *vm.Executor {
	if o.registry == nil {
		o.registry = p.registry
	}
	return vm.New(p.code, o.vmOpts()...)
}
