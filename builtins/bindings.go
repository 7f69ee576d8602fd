package builtins

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
)

// Manifest is the TOML document a host uses to declare its bindings:
//
//	[[binding]]
//	name = "set_color"
//	arity = 1
//
//	[[binding]]
//	name = "health"
//	arity = 0
//	returns = true
//
// An arity of -1 marks a variadic binding.
type Manifest struct {
	Bindings []Binding `toml:"binding"`
}

// LoadBindings parses a binding manifest and registers every entry with r.
// All invalid entries are reported together.
func (r *Registry) LoadBindings(reader io.Reader) error {
	var m Manifest
	if _, err := toml.NewDecoder(reader).Decode(&m); err != nil {
		return fmt.Errorf("bindings: parse error: %w", err)
	}
	var result *multierror.Error
	for _, b := range m.Bindings {
		if err := r.AddBinding(b); err != nil {
			result = multierror.Append(result, fmt.Errorf("bindings: %w", err))
		}
	}
	return result.ErrorOrNil()
}

// LoadBindingsFile parses the manifest at path.
func (r *Registry) LoadBindingsFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("bindings: cannot read %s: %w", path, err)
	}
	defer f.Close()
	return r.LoadBindings(f)
}
