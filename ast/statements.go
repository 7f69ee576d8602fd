package ast

import (
	"bytes"
	"strings"
)

// Block is a braced sequence of statements.
type Block struct {
	At    Location
	Stmts []Stmt
}

func (s *Block) stmtNode()     {}
func (s *Block) Loc() Location { return s.At }
func (s *Block) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for i, stmt := range s.Stmts {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(stmt.String())
	}
	out.WriteString(" }")
	return out.String()
}

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	At Location
	X  Expr
}

func (s *ExprStmt) stmtNode()      {}
func (s *ExprStmt) Loc() Location  { return s.At }
func (s *ExprStmt) String() string { return s.X.String() }

// Var declares a variable. Inside a function the name refers to a local
// declared in the enclosing FuncDecl; at the top level it is a global.
type Var struct {
	At    Location
	Name  string
	Value Expr
}

func (s *Var) stmtNode()     {}
func (s *Var) Loc() Location { return s.At }
func (s *Var) String() string {
	if s.Value == nil {
		return "let " + s.Name
	}
	return "let " + s.Name + " = " + s.Value.String()
}

// If executes Then when Cond is truthy, otherwise Else if present.
type If struct {
	At   Location
	Cond Expr
	Then Stmt
	Else Stmt
}

func (s *If) stmtNode()     {}
func (s *If) Loc() Location { return s.At }
func (s *If) String() string {
	out := "if " + s.Cond.String() + " " + s.Then.String()
	if s.Else != nil {
		out += " else " + s.Else.String()
	}
	return out
}

// While executes Body for as long as Cond is truthy.
type While struct {
	At   Location
	Cond Expr
	Body Stmt
}

func (s *While) stmtNode()      {}
func (s *While) Loc() Location  { return s.At }
func (s *While) String() string { return "while " + s.Cond.String() + " " + s.Body.String() }

// For is a C style loop. A nil Cond loops until a break or return.
type For struct {
	At   Location
	Init []Stmt
	Cond Expr
	Step []Expr
	Body Stmt
}

func (s *For) stmtNode()     {}
func (s *For) Loc() Location { return s.At }
func (s *For) String() string {
	init := make([]string, len(s.Init))
	for i, st := range s.Init {
		init[i] = st.String()
	}
	step := make([]string, len(s.Step))
	for i, e := range s.Step {
		step[i] = e.String()
	}
	cond := ""
	if s.Cond != nil {
		cond = s.Cond.String()
	}
	return "for (" + strings.Join(init, ", ") + "; " + cond + "; " +
		strings.Join(step, ", ") + ") " + s.Body.String()
}

// Break exits the innermost loop.
type Break struct {
	At Location
}

func (s *Break) stmtNode()      {}
func (s *Break) Loc() Location  { return s.At }
func (s *Break) String() string { return "break" }

// Return exits the current function. A nil Value returns none.
type Return struct {
	At    Location
	Value Expr
}

func (s *Return) stmtNode()     {}
func (s *Return) Loc() Location { return s.At }
func (s *Return) String() string {
	if s.Value == nil {
		return "return"
	}
	return "return " + s.Value.String()
}

// Print writes its argument through the "print" host binding.
type Print struct {
	At    Location
	Value Expr
}

func (s *Print) stmtNode()      {}
func (s *Print) Loc() Location  { return s.At }
func (s *Print) String() string { return "print(" + s.Value.String() + ")" }

// Empty is a lone semicolon.
type Empty struct {
	At Location
}

func (s *Empty) stmtNode()      {}
func (s *Empty) Loc() Location  { return s.At }
func (s *Empty) String() string { return ";" }

// Import links an already parsed unit into the program being compiled. The
// parser resolves Path and hands over the parsed Unit.
type Import struct {
	At   Location
	Path string
	Unit *Unit
}

func (s *Import) stmtNode()      {}
func (s *Import) Loc() Location  { return s.At }
func (s *Import) String() string { return "import " + `"` + s.Path + `"` }

// Local is one entry of a function's local table.
type Local struct {
	Name    string
	Default Expr
}

// FuncDecl declares a user function. Locals is ordered by declaration: the
// first Arity entries are the parameters, the rest are locals declared in the
// body. The position of a name in Locals is its slot in the call frame.
type FuncDecl struct {
	At     Location
	Name   string
	Arity  int
	Locals []Local
	Body   *Block
}

func (s *FuncDecl) stmtNode()     {}
func (s *FuncDecl) Loc() Location { return s.At }
func (s *FuncDecl) String() string {
	return s.Ref().String() + " " + s.Body.String()
}

// Params returns the parameter names.
func (s *FuncDecl) Params() []string {
	n := min(s.Arity, len(s.Locals))
	params := make([]string, n)
	for i := 0; i < n; i++ {
		params[i] = s.Locals[i].Name
	}
	return params
}

// Ref returns the function literal describing this declaration.
func (s *FuncDecl) Ref() *FuncRef {
	return &FuncRef{Name: s.Name, Params: s.Params(), Body: s.Body}
}
