package ast

import (
	"bytes"
	"strings"
)

// Value is an expression holding a literal.
type Value struct {
	At  Location
	Lit Literal
}

func (x *Value) exprNode()      {}
func (x *Value) Loc() Location  { return x.At }
func (x *Value) String() string { return x.Lit.String() }

// Logical is a short-circuit "&&" or "||" expression.
type Logical struct {
	At    Location
	Op    string
	Left  Expr
	Right Expr
}

func (x *Logical) exprNode()     {}
func (x *Logical) Loc() Location { return x.At }
func (x *Logical) String() string {
	return infixString(x.Left, x.Op, x.Right)
}

// Unary is a prefix operator expression: "-x" or "!x".
type Unary struct {
	At Location
	Op string
	X  Expr
}

func (x *Unary) exprNode()      {}
func (x *Unary) Loc() Location  { return x.At }
func (x *Unary) String() string { return "(" + x.Op + x.X.String() + ")" }

// Equality is a "==" or "!=" expression.
type Equality struct {
	At    Location
	Op    string
	Left  Expr
	Right Expr
}

func (x *Equality) exprNode()     {}
func (x *Equality) Loc() Location { return x.At }
func (x *Equality) String() string {
	return infixString(x.Left, x.Op, x.Right)
}

// Comparison is a "<", "<=", ">" or ">=" expression.
type Comparison struct {
	At    Location
	Op    string
	Left  Expr
	Right Expr
}

func (x *Comparison) exprNode()     {}
func (x *Comparison) Loc() Location { return x.At }
func (x *Comparison) String() string {
	return infixString(x.Left, x.Op, x.Right)
}

// Binary is an arithmetic expression: "+", "-", "*", "/" or "%".
type Binary struct {
	At    Location
	Op    string
	Left  Expr
	Right Expr
}

func (x *Binary) exprNode()     {}
func (x *Binary) Loc() Location { return x.At }
func (x *Binary) String() string {
	return infixString(x.Left, x.Op, x.Right)
}

// Grouping is a parenthesized expression.
type Grouping struct {
	At Location
	X  Expr
}

func (x *Grouping) exprNode()      {}
func (x *Grouping) Loc() Location  { return x.At }
func (x *Grouping) String() string { return "(" + x.X.String() + ")" }

// Variable reads a local, a global or the "time" pseudo variable, optionally
// followed by a swizzle such as ".xy" or ".rgb".
type Variable struct {
	At      Location
	Name    string
	Swizzle string
}

func (x *Variable) exprNode()     {}
func (x *Variable) Loc() Location { return x.At }
func (x *Variable) String() string {
	if x.Swizzle != "" {
		return x.Name + "." + x.Swizzle
	}
	return x.Name
}

// Assign stores a value into a variable. Op is "=" or a compound operator
// such as "+=". A non-empty Swizzle writes only the selected components.
type Assign struct {
	At      Location
	Name    string
	Op      string
	Swizzle string
	Value   Expr
}

func (x *Assign) exprNode()     {}
func (x *Assign) Loc() Location { return x.At }
func (x *Assign) String() string {
	target := x.Name
	if x.Swizzle != "" {
		target += "." + x.Swizzle
	}
	return target + " " + x.Op + " " + x.Value.String()
}

// Call invokes a user function, a builtin or a host binding by name.
type Call struct {
	At      Location
	Name    string
	Args    []Expr
	Swizzle string
}

func (x *Call) exprNode()     {}
func (x *Call) Loc() Location { return x.At }
func (x *Call) String() string {
	var out bytes.Buffer
	args := make([]string, 0, len(x.Args))
	for _, a := range x.Args {
		args = append(args, a.String())
	}
	out.WriteString(x.Name)
	out.WriteString("(")
	out.WriteString(strings.Join(args, ", "))
	out.WriteString(")")
	if x.Swizzle != "" {
		out.WriteString(".")
		out.WriteString(x.Swizzle)
	}
	return out.String()
}

// Ternary is "cond ? then : else".
type Ternary struct {
	At   Location
	Cond Expr
	Then Expr
	Else Expr
}

func (x *Ternary) exprNode()     {}
func (x *Ternary) Loc() Location { return x.At }
func (x *Ternary) String() string {
	return "(" + x.Cond.String() + " ? " + x.Then.String() + " : " + x.Else.String() + ")"
}

func infixString(left Expr, op string, right Expr) string {
	return "(" + left.String() + " " + op + " " + right.String() + ")"
}
