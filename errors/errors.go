// Package errors defines the compile-time diagnostics produced by the shade
// compiler and the source locations shared with the runtime.
package errors

import (
	"fmt"
	"strings"
)

// UnknownFile is rendered in place of an empty source path.
const UnknownFile = "<unknown file>"

// Location identifies a line within a source file. Line numbers are 1-based;
// a zero line means the line is not known.
type Location struct {
	Path string
	Line int
}

// IsZero returns true if the location has not been set.
func (l Location) IsZero() bool {
	return l.Path == "" && l.Line == 0
}

// String returns "path:line", or just the path when the line is unknown.
func (l Location) String() string {
	path := l.Path
	if path == "" {
		path = UnknownFile
	}
	if l.Line > 0 {
		return fmt.Sprintf("%s:%d", path, l.Line)
	}
	return path
}

// Render formats a message the way all shade diagnostics are reported:
//
//	<message> in <path> at line <line>.
//	<message> in <path>.
//
// Tooling parses this format, so it must not change.
func Render(message string, loc Location) string {
	var b strings.Builder
	b.WriteString(message)
	b.WriteString(" in ")
	if loc.Path == "" {
		b.WriteString(UnknownFile)
	} else {
		b.WriteString(loc.Path)
	}
	if loc.Line > 0 {
		fmt.Fprintf(&b, " at line %d", loc.Line)
	}
	b.WriteString(".")
	return b.String()
}
