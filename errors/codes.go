package errors

// ErrorCode identifies a diagnostic. Codes are grouped by category:
//   - E2xxx: Compile errors
//   - E3xxx: Runtime errors
type ErrorCode string

const (
	// Compile errors (E2xxx)
	E2001 ErrorCode = "E2001" // Unknown identifier
	E2002 ErrorCode = "E2002" // Unknown function
	E2003 ErrorCode = "E2003" // Break outside of a loop
	E2004 ErrorCode = "E2004" // Wrong argument count
	E2005 ErrorCode = "E2005" // Duplicate function
	E2006 ErrorCode = "E2006" // Duplicate local name
	E2007 ErrorCode = "E2007" // Malformed literal
	E2008 ErrorCode = "E2008" // Import failure
	E2009 ErrorCode = "E2009" // Expression has no value
	E2010 ErrorCode = "E2010" // Invalid declaration
	E2011 ErrorCode = "E2011" // Unknown operator

	// Runtime errors (E3xxx)
	E3001 ErrorCode = "E3001" // Type error
	E3002 ErrorCode = "E3002" // Division by zero
	E3003 ErrorCode = "E3003" // Stack underflow
	E3004 ErrorCode = "E3004" // Call depth exceeded
	E3005 ErrorCode = "E3005" // Instruction budget exceeded
	E3006 ErrorCode = "E3006" // Invalid function index
	E3007 ErrorCode = "E3007" // Invalid operand
	E3008 ErrorCode = "E3008" // Execution halted
)

var codeDescriptions = map[ErrorCode]string{
	E2001: "unknown identifier",
	E2002: "unknown function",
	E2003: "break outside of a loop",
	E2004: "wrong argument count",
	E2005: "duplicate function",
	E2006: "duplicate local name",
	E2007: "malformed literal",
	E2008: "import failure",
	E2009: "expression has no value",
	E2010: "invalid declaration",
	E2011: "unknown operator",

	E3001: "type error",
	E3002: "division by zero",
	E3003: "stack underflow",
	E3004: "call depth exceeded",
	E3005: "instruction budget exceeded",
	E3006: "invalid function index",
	E3007: "invalid operand",
	E3008: "execution halted",
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// IsCompile is true for codes reported by the compiler.
func (c ErrorCode) IsCompile() bool {
	return len(c) > 1 && c[1] == '2'
}
