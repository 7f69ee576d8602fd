// Package op defines opcodes used by the shade compiler and virtual machine.
package op

// Code is an integer opcode that indicates an operation to execute.
type Code uint16

const (
	Invalid Code = 0

	// Execution
	Nop         Code = 1
	Call        Code = 2 // operands: function index, argument count
	ReturnValue Code = 3
	Builtin     Code = 4 // operands: builtin index, argument count
	HostCall    Code = 5 // operands: name, argument count, returns

	// Control flow. These carry nested instruction sequences instead of
	// jump offsets.
	If    Code = 10 // Then, Else
	And   Code = 11 // Then holds the right hand side
	Or    Code = 12 // Then holds the right hand side
	Loop  Code = 13 // Cond, Then (body), Step
	Break Code = 14

	// Load
	LoadLocal  Code = 20
	LoadGlobal Code = 21
	LoadString Code = 22
	Push       Code = 23
	Time       Code = 24

	// Store
	StoreLocal  Code = 30
	StoreGlobal Code = 31

	// Operations
	BinaryOp      Code = 40
	CompareOp     Code = 41
	UnaryNegative Code = 42
	UnaryNot      Code = 43

	// Vectors
	Pack       Code = 50 // operand: component count
	Swizzle    Code = 51 // operand: swizzle pattern
	SetSwizzle Code = 52 // operand: swizzle pattern

	// Stack
	PopTop Code = 60
)

// BinaryOpType describes an arithmetic operation that takes two operands.
type BinaryOpType uint16

const (
	Add      BinaryOpType = 1
	Subtract BinaryOpType = 2
	Multiply BinaryOpType = 3
	Divide   BinaryOpType = 4
	Modulo   BinaryOpType = 5
)

var binarySymbols = map[BinaryOpType]string{
	Add:      "+",
	Subtract: "-",
	Multiply: "*",
	Divide:   "/",
	Modulo:   "%",
}

// String returns the source operator, or "" for an unknown type.
func (bop BinaryOpType) String() string {
	return binarySymbols[bop]
}

// BinaryOpFor maps a source operator, including the compound assignment
// forms, to its BinaryOpType.
func BinaryOpFor(operator string) (BinaryOpType, bool) {
	switch operator {
	case "+", "+=":
		return Add, true
	case "-", "-=":
		return Subtract, true
	case "*", "*=":
		return Multiply, true
	case "/", "/=":
		return Divide, true
	case "%", "%=":
		return Modulo, true
	}
	return 0, false
}

// CompareOpType selects the comparison performed by COMPARE_OP.
type CompareOpType uint16

const (
	LessThan           CompareOpType = 1
	LessThanOrEqual    CompareOpType = 2
	Equal              CompareOpType = 3
	NotEqual           CompareOpType = 4
	GreaterThan        CompareOpType = 5
	GreaterThanOrEqual CompareOpType = 6
)

var compareSymbols = [...]string{
	LessThan:           "<",
	LessThanOrEqual:    "<=",
	Equal:              "==",
	NotEqual:           "!=",
	GreaterThan:        ">",
	GreaterThanOrEqual: ">=",
}

// String returns the source operator, or "" for an unknown type.
func (cop CompareOpType) String() string {
	if int(cop) >= len(compareSymbols) {
		return ""
	}
	return compareSymbols[cop]
}

// CompareOpFor maps a source operator to its CompareOpType.
func CompareOpFor(operator string) (CompareOpType, bool) {
	for cop := LessThan; cop <= GreaterThanOrEqual; cop++ {
		if cop.String() == operator {
			return cop, true
		}
	}
	return 0, false
}

// Info describes an opcode for disassembly and validation.
type Info struct {
	Code         Code
	Name         string
	OperandCount int
	Nested       bool // carries nested instruction sequences
}

var infos = make([]Info, 64)

func init() {
	type opInfo struct {
		op     Code
		name   string
		count  int
		nested bool
	}
	ops := []opInfo{
		{And, "AND", 0, true},
		{BinaryOp, "BINARY_OP", 1, false},
		{Break, "BREAK", 0, false},
		{Builtin, "BUILTIN", 2, false},
		{Call, "CALL", 2, false},
		{CompareOp, "COMPARE_OP", 1, false},
		{HostCall, "HOST_CALL", 3, false},
		{If, "IF", 0, true},
		{LoadGlobal, "LOAD_GLOBAL", 1, false},
		{LoadLocal, "LOAD_LOCAL", 1, false},
		{LoadString, "LOAD_STRING", 1, false},
		{Loop, "LOOP", 0, true},
		{Nop, "NOP", 0, false},
		{Or, "OR", 0, true},
		{Pack, "PACK", 1, false},
		{PopTop, "POP_TOP", 0, false},
		{Push, "PUSH", 1, false},
		{ReturnValue, "RETURN_VALUE", 0, false},
		{SetSwizzle, "SET_SWIZZLE", 1, false},
		{StoreGlobal, "STORE_GLOBAL", 1, false},
		{StoreLocal, "STORE_LOCAL", 1, false},
		{Swizzle, "SWIZZLE", 1, false},
		{Time, "TIME", 0, false},
		{UnaryNegative, "UNARY_NEGATIVE", 0, false},
		{UnaryNot, "UNARY_NOT", 0, false},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Name:         o.name,
			Code:         o.op,
			OperandCount: o.count,
			Nested:       o.nested,
		}
	}
}

// GetInfo returns the Info for op. Unknown opcodes have an empty Name.
func GetInfo(op Code) Info {
	if int(op) >= len(infos) {
		return Info{}
	}
	return infos[op]
}
