package ast

import (
	"strconv"
	"strings"
)

// Literal is the closed set of values that may appear in source code. Vector
// components are expressions rather than numbers because vector literals may
// be built from arbitrary sub-expressions, e.g. vec3(uv.x, 0.0, time).
type Literal interface {
	// Components returns 0 for non-numeric literals and 1 to 4 for floats
	// and float vectors.
	Components() int

	// IsTruthy reports the truthiness of the literal when used as a
	// condition.
	IsTruthy() bool

	String() string

	literal()
}

// None is the absence of a value.
type None struct{}

// Bool is a boolean literal.
type Bool struct{ Value bool }

// Float is a 32-bit float literal.
type Float struct{ Value float32 }

// Float2 is a two component vector literal.
type Float2 struct{ X, Y Expr }

// Float3 is a three component vector literal.
type Float3 struct{ X, Y, Z Expr }

// Float4 is a four component vector literal.
type Float4 struct{ X, Y, Z, W Expr }

// String is a string literal.
type String struct{ Value string }

// FuncRef refers to a function by name. It only exists at the syntax level;
// the runtime has no function values.
type FuncRef struct {
	Name   string
	Params []string
	Body   *Block
}

func (None) literal()     {}
func (Bool) literal()     {}
func (Float) literal()    {}
func (Float2) literal()   {}
func (Float3) literal()   {}
func (Float4) literal()   {}
func (String) literal()   {}
func (*FuncRef) literal() {}

func (None) Components() int     { return 0 }
func (Bool) Components() int     { return 0 }
func (Float) Components() int    { return 1 }
func (Float2) Components() int   { return 2 }
func (Float3) Components() int   { return 3 }
func (Float4) Components() int   { return 4 }
func (String) Components() int   { return 0 }
func (*FuncRef) Components() int { return 0 }

func (None) IsTruthy() bool     { return false }
func (l Bool) IsTruthy() bool   { return l.Value }
func (l Float) IsTruthy() bool  { return l.Value != 0 }
func (Float2) IsTruthy() bool   { return true }
func (Float3) IsTruthy() bool   { return true }
func (Float4) IsTruthy() bool   { return true }
func (l String) IsTruthy() bool { return l.Value != "" }
func (*FuncRef) IsTruthy() bool { return false }

func (None) String() string     { return "none" }
func (l Bool) String() string   { return strconv.FormatBool(l.Value) }
func (l Float) String() string  { return strconv.FormatFloat(float64(l.Value), 'g', -1, 32) }
func (l Float2) String() string { return vecString(l.X, l.Y) }
func (l Float3) String() string { return vecString(l.X, l.Y, l.Z) }
func (l Float4) String() string { return vecString(l.X, l.Y, l.Z, l.W) }
func (l String) String() string { return strconv.Quote(l.Value) }

func (l *FuncRef) String() string {
	return "fn " + l.Name + "(" + strings.Join(l.Params, ", ") + ")"
}

// Elements returns the component expressions of a vector literal, or nil for
// any other literal.
func Elements(lit Literal) []Expr {
	switch l := lit.(type) {
	case Float2:
		return []Expr{l.X, l.Y}
	case Float3:
		return []Expr{l.X, l.Y, l.Z}
	case Float4:
		return []Expr{l.X, l.Y, l.Z, l.W}
	}
	return nil
}

func vecString(elems ...Expr) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		if e == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = e.String()
	}
	return "vec" + strconv.Itoa(len(elems)) + "(" + strings.Join(parts, ", ") + ")"
}
