// Package object provides the runtime values manipulated by the shade
// virtual machine.
//
// A Value is a small immutable struct holding a float, a 2/3/4 component
// float vector, a bool, a string or nothing. Values are copied by value, so
// they can be handed to host bindings and shared between executors freely.
//
//	switch v.Type() {
//	case object.FLOAT:
//		// use v.Float()
//	case object.FLOAT3:
//		// use v.Component(0), v.Component(1), v.Component(2)
//	}
package object

import (
	"strconv"
	"strings"
)

// Type of a value as a string.
type Type string

// Type constants
const (
	NONE   Type = "none"
	BOOL   Type = "bool"
	FLOAT  Type = "float"
	FLOAT2 Type = "float2"
	FLOAT3 Type = "float3"
	FLOAT4 Type = "float4"
	STRING Type = "string"
)

// VectorType returns the float type with n components.
func VectorType(n int) (Type, bool) {
	switch n {
	case 1:
		return FLOAT, true
	case 2:
		return FLOAT2, true
	case 3:
		return FLOAT3, true
	case 4:
		return FLOAT4, true
	}
	return NONE, false
}

// Value is a runtime value. The zero Value is none.
type Value struct {
	typ Type
	n   [4]float32
	s   string
}

// None is the value pushed when nothing else is available.
var None = Value{typ: NONE}

// True and False are the two boolean values.
var (
	True  = Value{typ: BOOL, n: [4]float32{1}}
	False = Value{typ: BOOL}
)

// NewBool returns True or False.
func NewBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// NewFloat returns a scalar float value.
func NewFloat(f float32) Value {
	return Value{typ: FLOAT, n: [4]float32{f}}
}

// NewFloat2 returns a two component vector.
func NewFloat2(x, y float32) Value {
	return Value{typ: FLOAT2, n: [4]float32{x, y}}
}

// NewFloat3 returns a three component vector.
func NewFloat3(x, y, z float32) Value {
	return Value{typ: FLOAT3, n: [4]float32{x, y, z}}
}

// NewFloat4 returns a four component vector.
func NewFloat4(x, y, z, w float32) Value {
	return Value{typ: FLOAT4, n: [4]float32{x, y, z, w}}
}

// NewVector returns a float value with len(components) components, which
// must be between 1 and 4.
func NewVector(components ...float32) (Value, error) {
	typ, ok := VectorType(len(components))
	if !ok {
		return None, TypeErrorf("vectors have 1 to 4 components (got %d)", len(components))
	}
	v := Value{typ: typ}
	copy(v.n[:], components)
	return v, nil
}

// NewString returns a string value.
func NewString(s string) Value {
	return Value{typ: STRING, s: s}
}

// Type returns the type of the value. The zero Value reports NONE.
func (v Value) Type() Type {
	if v.typ == "" {
		return NONE
	}
	return v.typ
}

// IsNone is true for the none value.
func (v Value) IsNone() bool {
	return v.Type() == NONE
}

// IsNumeric is true for floats and float vectors.
func (v Value) IsNumeric() bool {
	return v.Components() > 0
}

// Components returns 1 to 4 for numeric values and 0 otherwise.
func (v Value) Components() int {
	switch v.typ {
	case FLOAT:
		return 1
	case FLOAT2:
		return 2
	case FLOAT3:
		return 3
	case FLOAT4:
		return 4
	}
	return 0
}

// Component returns component i of a numeric value. Scalars broadcast to
// every component.
func (v Value) Component(i int) float32 {
	if v.typ == FLOAT {
		return v.n[0]
	}
	return v.n[i]
}

// Floats returns a copy of the numeric components.
func (v Value) Floats() []float32 {
	out := make([]float32, v.Components())
	copy(out, v.n[:])
	return out
}

// Float returns the first component of a numeric value, or 0.
func (v Value) Float() float32 {
	return v.n[0]
}

// Bool returns the boolean held by a BOOL value.
func (v Value) Bool() bool {
	return v.typ == BOOL && v.n[0] != 0
}

// Str returns the string held by a STRING value.
func (v Value) Str() string {
	return v.s
}

// IsTruthy follows the literal rules: bools by value, floats when non-zero,
// strings when non-empty, vectors always, none never.
func (v Value) IsTruthy() bool {
	switch v.typ {
	case BOOL:
		return v.n[0] != 0
	case FLOAT:
		return v.n[0] != 0
	case FLOAT2, FLOAT3, FLOAT4:
		return true
	case STRING:
		return v.s != ""
	}
	return false
}

// Equals reports whether two values have the same type and contents.
func (v Value) Equals(other Value) bool {
	if v.Type() != other.Type() {
		return false
	}
	switch v.Type() {
	case STRING:
		return v.s == other.s
	case NONE:
		return true
	}
	return v.n == other.n
}

// Map applies fn to every component of a numeric value.
func (v Value) Map(fn func(float32) float32) Value {
	out := Value{typ: v.typ}
	for i := 0; i < v.Components(); i++ {
		out.n[i] = fn(v.n[i])
	}
	return out
}

// Interface converts the value to a Go value: nil, bool, float32,
// []float32 or string.
func (v Value) Interface() any {
	switch v.Type() {
	case BOOL:
		return v.Bool()
	case FLOAT:
		return v.n[0]
	case FLOAT2, FLOAT3, FLOAT4:
		return v.Floats()
	case STRING:
		return v.s
	}
	return nil
}

// String returns the value the way print and format render it.
func (v Value) String() string {
	switch v.Type() {
	case BOOL:
		return strconv.FormatBool(v.Bool())
	case FLOAT:
		return formatFloat(v.n[0])
	case FLOAT2, FLOAT3, FLOAT4:
		parts := make([]string, v.Components())
		for i := range parts {
			parts[i] = formatFloat(v.n[i])
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case STRING:
		return v.s
	}
	return "none"
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}
