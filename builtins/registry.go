// Package builtins defines the functions a shade program can call without
// declaring them: math builtins evaluated inside the VM and host bindings
// dispatched to the embedding engine.
package builtins

import (
	"fmt"
	"sort"

	"github.com/deepnoodle-ai/shade/bytecode"
)

// Variadic is the arity of a binding that accepts any number of arguments.
const Variadic = -1

// Builtin is a pure function evaluated by the VM.
type Builtin struct {
	Name  string
	Arity int
	Fn    MathFunc
}

// Binding declares a host call. The compiler needs the arity to check call
// sites and Returns to know whether the call leaves a value on the stack.
type Binding struct {
	Name    string `toml:"name"`
	Arity   int    `toml:"arity"`
	Returns bool   `toml:"returns"`
	Doc     string `toml:"doc"`
}

// Accepts reports whether the binding can be called with argc arguments.
func (b Binding) Accepts(argc int) bool {
	return b.Arity == Variadic || b.Arity == argc
}

// Registry holds the builtins and host bindings known to a compiler. Builtin
// indices are stable once added and are embedded in compiled programs, so
// the executor must use the same registry contents as the compiler.
type Registry struct {
	builtins []Builtin
	index    map[string]int
	bindings map[string]Binding
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		index:    map[string]int{},
		bindings: map[string]Binding{},
	}
}

// Default returns a registry with the math builtins and the standard host
// bindings.
func Default() *Registry {
	r := NewRegistry()
	for _, b := range mathBuiltins() {
		if err := r.AddBuiltin(b); err != nil {
			panic(err)
		}
	}
	for _, b := range standardBindings() {
		if err := r.AddBinding(b); err != nil {
			panic(err)
		}
	}
	return r
}

// AddBuiltin registers a math builtin.
func (r *Registry) AddBuiltin(b Builtin) error {
	if err := r.checkName(b.Name); err != nil {
		return err
	}
	if b.Fn == nil || b.Arity < 0 {
		return fmt.Errorf("builtin %q needs a function and a fixed arity", b.Name)
	}
	r.index[b.Name] = len(r.builtins)
	r.builtins = append(r.builtins, b)
	return nil
}

// AddBinding registers a host binding.
func (r *Registry) AddBinding(b Binding) error {
	if err := r.checkName(b.Name); err != nil {
		return err
	}
	if b.Arity < Variadic {
		return fmt.Errorf("binding %q has invalid arity %d", b.Name, b.Arity)
	}
	r.bindings[b.Name] = b
	return nil
}

func (r *Registry) checkName(name string) error {
	if name == "" {
		return fmt.Errorf("empty builtin name")
	}
	if _, ok := r.index[name]; ok {
		return fmt.Errorf("%q is already a builtin", name)
	}
	if _, ok := r.bindings[name]; ok {
		return fmt.Errorf("%q is already a host binding", name)
	}
	return nil
}

// Builtin looks up a math builtin by name and returns its index.
func (r *Registry) Builtin(name string) (Builtin, int, bool) {
	i, ok := r.index[name]
	if !ok {
		return Builtin{}, -1, false
	}
	return r.builtins[i], i, true
}

// BuiltinAt returns the builtin with the given index.
func (r *Registry) BuiltinAt(index int) (Builtin, bool) {
	if index < 0 || index >= len(r.builtins) {
		return Builtin{}, false
	}
	return r.builtins[index], true
}

// Binding looks up a host binding by name.
func (r *Registry) Binding(name string) (Binding, bool) {
	b, ok := r.bindings[name]
	return b, ok
}

// Bindings returns all host bindings sorted by name.
func (r *Registry) Bindings() []Binding {
	out := make([]Binding, 0, len(r.bindings))
	for _, b := range r.bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns every builtin and binding name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builtins)+len(r.bindings))
	for _, b := range r.builtins {
		names = append(names, b.Name)
	}
	for name := range r.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func standardBindings() []Binding {
	return []Binding{
		{Name: bytecode.SetOpacity, Arity: 1, Doc: "Sets the opacity of the surface being shaded."},
		{Name: "print", Arity: Variadic, Doc: "Writes its arguments to the host console."},
		{Name: "format", Arity: Variadic, Returns: true, Doc: "Replaces each {} in the first argument with the next argument."},
		{Name: "debug", Arity: 1, Doc: "Reports a value to the host debugger."},
		{Name: "action", Arity: 1, Doc: "Queues an action for the current entity."},
		{Name: "intent", Arity: 1, Doc: "Sets the intent of the current entity."},
		{Name: "message", Arity: 3, Doc: "Sends a message to another entity."},
		{Name: "set_tile", Arity: 1, Doc: "Changes the tile of the current entity."},
		{Name: "set_attr", Arity: 2, Doc: "Sets an attribute of the current entity."},
		{Name: "get_attr", Arity: 1, Returns: true, Doc: "Reads an attribute of the current entity."},
		{Name: "random", Arity: 2, Returns: true, Doc: "Returns a random number in a range."},
		{Name: "goto", Arity: 2, Doc: "Moves the current entity towards a named sector."},
		{Name: "id", Arity: 0, Returns: true, Doc: "Returns the id of the current entity."},
	}
}
