package builtins

import (
	"strings"

	"github.com/deepnoodle-ai/shade/object"
)

// Format implements the "format" binding: each "{}" in the first argument is
// replaced by the next argument. Extra arguments are ignored and missing
// ones leave the placeholder in place.
func Format(args []object.Value) object.Value {
	if len(args) == 0 {
		return object.NewString("")
	}
	template := args[0].String()
	rest := args[1:]
	var b strings.Builder
	for {
		i := strings.Index(template, "{}")
		if i < 0 || len(rest) == 0 {
			b.WriteString(template)
			break
		}
		b.WriteString(template[:i])
		b.WriteString(rest[0].String())
		rest = rest[1:]
		template = template[i+2:]
	}
	return object.NewString(b.String())
}

// Join renders arguments separated by spaces, the way print writes them.
func Join(args []object.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, " ")
}
