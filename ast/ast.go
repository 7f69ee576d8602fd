// Package ast defines the abstract syntax tree consumed by the shade compiler.
//
// Trees are produced by an external parser. Every node records the source
// location it came from so that compile and runtime diagnostics can point at
// the offending line.
package ast

import "github.com/deepnoodle-ai/shade/errors"

// Location is an alias to errors.Location for convenience.
type Location = errors.Location

// Node represents a portion of the syntax tree.
type Node interface {
	// Loc returns the source location of the node.
	Loc() Location

	// String returns a human friendly representation of the Node. This should
	// be similar to the original source code, but not necessarily identical.
	String() string
}

// Stmt represents a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr represents an expression node. Expressions evaluate to a value, except
// assignments and calls to void host bindings, which the compiler only
// accepts in statement position.
type Expr interface {
	Node
	exprNode()
}
