package ast

import "sort"

// Unit is the parsed form of one source file.
//
// Globals maps every global name declared in the file to its slot and is
// filled in by the parser. Strings is the file's string literal pool. Name,
// Path and Source are kept for diagnostics only.
type Unit struct {
	Name    string
	Path    string
	Source  string
	Stmts   []Stmt
	Globals map[string]int
	Strings []string
}

// Functions returns the function declarations at the top level of the unit,
// in declaration order.
func (u *Unit) Functions() []*FuncDecl {
	var fns []*FuncDecl
	for _, stmt := range u.Stmts {
		if fn, ok := stmt.(*FuncDecl); ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

// GlobalNames returns the declared global names ordered by slot. Gaps in
// the slot numbering are closed; names sharing a slot sort by name.
func (u *Unit) GlobalNames() []string {
	names := make([]string, 0, len(u.Globals))
	for name := range u.Globals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		si, sj := u.Globals[names[i]], u.Globals[names[j]]
		if si != sj {
			return si < sj
		}
		return names[i] < names[j]
	})
	return names
}
