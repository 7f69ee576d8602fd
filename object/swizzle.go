package object

import "strings"

// SwizzleIndices maps a swizzle pattern such as "xy", "bgr" or "xxxx" to
// component indices. Patterns use a single alphabet, xyzw or rgba.
func SwizzleIndices(pattern string) ([]int, error) {
	if len(pattern) == 0 || len(pattern) > 4 {
		return nil, TypeErrorf("Invalid swizzle '%s'", pattern)
	}
	var alphabet string
	switch {
	case strings.Trim(pattern, "xyzw") == "":
		alphabet = "xyzw"
	case strings.Trim(pattern, "rgba") == "":
		alphabet = "rgba"
	default:
		return nil, TypeErrorf("Invalid swizzle '%s'", pattern)
	}
	indices := make([]int, len(pattern))
	for i := range pattern {
		indices[i] = strings.IndexByte(alphabet, pattern[i])
	}
	return indices, nil
}

// Swizzle selects components of a numeric value. A scalar can be widened,
// e.g. f.xxx yields a float3.
func Swizzle(v Value, pattern string) (Value, error) {
	indices, err := SwizzleIndices(pattern)
	if err != nil {
		return None, err
	}
	if !v.IsNumeric() {
		return None, TypeErrorf("Cannot swizzle %s", v.Type())
	}
	out := make([]float32, len(indices))
	for i, idx := range indices {
		if idx >= v.Components() {
			return None, TypeErrorf("Swizzle '%s' out of range for %s", pattern, v.Type())
		}
		out[i] = v.n[idx]
	}
	return NewVector(out...)
}

// SetSwizzle returns a copy of target with the components named by pattern
// replaced by value. Value must be a scalar or have one component per
// pattern letter; a pattern may not name a component twice.
func SetSwizzle(target Value, pattern string, value Value) (Value, error) {
	indices, err := SwizzleIndices(pattern)
	if err != nil {
		return None, err
	}
	if !target.IsNumeric() || !value.IsNumeric() {
		return None, TypeErrorf("Cannot assign %s to swizzle of %s", value.Type(), target.Type())
	}
	if value.Components() != 1 && value.Components() != len(indices) {
		return None, TypeErrorf("Cannot assign %s to swizzle '%s'", value.Type(), pattern)
	}
	out := target
	var seen [4]bool
	for i, idx := range indices {
		if idx >= target.Components() {
			return None, TypeErrorf("Swizzle '%s' out of range for %s", pattern, target.Type())
		}
		if seen[idx] {
			return None, TypeErrorf("Swizzle '%s' assigns a component twice", pattern)
		}
		seen[idx] = true
		out.n[idx] = value.Component(i)
	}
	return out, nil
}
