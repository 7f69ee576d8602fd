package ast

// Visitor defines the interface for AST traversal. If Visit returns nil,
// children of the node are not visited. Otherwise, the returned Visitor
// is used to visit children.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order. Imported units are not
// entered; the compiler links them separately.
func Walk(v Visitor, node Node) {
	if node == nil {
		return
	}
	if v = v.Visit(node); v == nil {
		return
	}
	switch n := node.(type) {

	// Statements
	case *Block:
		for _, stmt := range n.Stmts {
			Walk(v, stmt)
		}
	case *ExprStmt:
		Walk(v, n.X)
	case *Var:
		Walk(v, n.Value)
	case *If:
		Walk(v, n.Cond)
		Walk(v, n.Then)
		Walk(v, n.Else)
	case *While:
		Walk(v, n.Cond)
		Walk(v, n.Body)
	case *For:
		for _, stmt := range n.Init {
			Walk(v, stmt)
		}
		Walk(v, n.Cond)
		for _, e := range n.Step {
			Walk(v, e)
		}
		Walk(v, n.Body)
	case *Return:
		Walk(v, n.Value)
	case *Print:
		Walk(v, n.Value)
	case *FuncDecl:
		for _, local := range n.Locals {
			Walk(v, local.Default)
		}
		if n.Body != nil {
			Walk(v, n.Body)
		}

	// Expressions
	case *Value:
		for _, e := range Elements(n.Lit) {
			Walk(v, e)
		}
	case *Logical:
		Walk(v, n.Left)
		Walk(v, n.Right)
	case *Equality:
		Walk(v, n.Left)
		Walk(v, n.Right)
	case *Comparison:
		Walk(v, n.Left)
		Walk(v, n.Right)
	case *Binary:
		Walk(v, n.Left)
		Walk(v, n.Right)
	case *Unary:
		Walk(v, n.X)
	case *Grouping:
		Walk(v, n.X)
	case *Assign:
		Walk(v, n.Value)
	case *Call:
		for _, arg := range n.Args {
			Walk(v, arg)
		}
	case *Ternary:
		Walk(v, n.Cond)
		Walk(v, n.Then)
		Walk(v, n.Else)
	}
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses an AST in depth-first order, calling f for each node.
// If f returns false, the children of that node are skipped.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
