// Package dis supports analysis of shade bytecode by disassembling it.
// Nested sequences of IF, AND, OR and LOOP instructions are flattened into
// one listing, with a depth and a section label to show where they belong.
package dis

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/deepnoodle-ai/shade/builtins"
	"github.com/deepnoodle-ai/shade/bytecode"
	"github.com/deepnoodle-ai/shade/internal/table"
	"github.com/deepnoodle-ai/shade/object"
	"github.com/deepnoodle-ai/shade/op"
)

// Instruction represents a single bytecode instruction and its operands.
type Instruction struct {
	Offset     int
	Depth      int
	Section    string // set on the first instruction of a nested sequence
	Name       string
	Opcode     op.Code
	Operands   []int
	Annotation string
	Constant   any
	Line       int
}

// Disassembler resolves the slots and indices of one program.
type Disassembler struct {
	program  *bytecode.Program
	registry *builtins.Registry
	fn       *bytecode.Function
	out      []Instruction
}

// New returns a Disassembler for program. A nil registry means
// builtins.Default().
func New(program *bytecode.Program, registry *builtins.Registry) *Disassembler {
	if registry == nil {
		registry = builtins.Default()
	}
	return &Disassembler{program: program, registry: registry}
}

// Body disassembles the program body.
func (d *Disassembler) Body() ([]Instruction, error) {
	d.fn = nil
	d.out = nil
	if err := d.sequence(d.program.Body, 0, ""); err != nil {
		return nil, err
	}
	return d.out, nil
}

// Function disassembles a user function. Default value code is listed
// before the body.
func (d *Disassembler) Function(fn *bytecode.Function) ([]Instruction, error) {
	d.fn = fn
	d.out = nil
	defaults := false
	for slot := fn.Arity(); slot < fn.LocalCount(); slot++ {
		code := fn.Default(slot)
		if len(code) == 0 {
			continue
		}
		defaults = true
		if err := d.sequence(code, 0, "default "+fn.LocalName(slot)); err != nil {
			return nil, err
		}
	}
	section := ""
	if defaults {
		section = "body"
	}
	if err := d.sequence(fn.Code(), 0, section); err != nil {
		return nil, err
	}
	return d.out, nil
}

// Disassemble returns a parsed representation of the program body.
func Disassemble(program *bytecode.Program) ([]Instruction, error) {
	return New(program, nil).Body()
}

func (d *Disassembler) sequence(code []bytecode.Instruction, depth int, section string) error {
	for i, ins := range code {
		parsed, err := d.instruction(ins)
		if err != nil {
			return err
		}
		parsed.Offset = len(d.out)
		parsed.Depth = depth
		if i == 0 {
			parsed.Section = section
		}
		d.out = append(d.out, parsed)
		switch ins.Op {
		case op.If:
			if err := d.sequence(ins.Then, depth+1, "then"); err != nil {
				return err
			}
			if err := d.sequence(ins.Else, depth+1, "else"); err != nil {
				return err
			}
		case op.And, op.Or:
			if err := d.sequence(ins.Then, depth+1, "rhs"); err != nil {
				return err
			}
		case op.Loop:
			if err := d.sequence(ins.Cond, depth+1, "cond"); err != nil {
				return err
			}
			if err := d.sequence(ins.Then, depth+1, "body"); err != nil {
				return err
			}
			if err := d.sequence(ins.Step, depth+1, "step"); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Disassembler) instruction(ins bytecode.Instruction) (Instruction, error) {
	info := op.GetInfo(ins.Op)
	if info.Name == "" {
		return Instruction{}, fmt.Errorf("unknown opcode: %d", ins.Op)
	}
	parsed := Instruction{
		Name:   info.Name,
		Opcode: ins.Op,
		Line:   ins.Loc.Line,
	}
	var err error
	switch ins.Op {
	case op.LoadLocal, op.StoreLocal:
		parsed.Operands = []int{ins.Operand}
		parsed.Annotation, err = d.localName(ins.Operand)
	case op.LoadGlobal, op.StoreGlobal:
		parsed.Operands = []int{ins.Operand}
		parsed.Annotation, err = d.globalName(ins.Operand)
	case op.LoadString:
		parsed.Operands = []int{ins.Operand}
		if ins.Operand < 0 || ins.Operand >= len(d.program.Strings) {
			return parsed, fmt.Errorf("string index out of range: %d", ins.Operand)
		}
		parsed.Constant = d.program.Strings[ins.Operand]
	case op.Push:
		parsed.Constant = ins.Value
	case op.BinaryOp:
		parsed.Operands = []int{ins.Operand}
		parsed.Annotation = op.BinaryOpType(ins.Operand).String()
	case op.CompareOp:
		parsed.Operands = []int{ins.Operand}
		parsed.Annotation = op.CompareOpType(ins.Operand).String()
	case op.Call:
		parsed.Operands = []int{ins.Operand, ins.Argc}
		fn, ok := d.program.Function(ins.Operand)
		if !ok {
			return parsed, fmt.Errorf("function index out of range: %d", ins.Operand)
		}
		parsed.Constant = fn
	case op.Builtin:
		parsed.Operands = []int{ins.Operand, ins.Argc}
		b, ok := d.registry.BuiltinAt(ins.Operand)
		if !ok {
			return parsed, fmt.Errorf("builtin index out of range: %d", ins.Operand)
		}
		parsed.Annotation = b.Name
	case op.HostCall:
		parsed.Operands = []int{ins.Argc}
		parsed.Annotation = ins.Name
		if ins.Returns {
			parsed.Annotation += " -> value"
		}
	case op.Pack:
		parsed.Operands = []int{ins.Operand}
	case op.Swizzle, op.SetSwizzle:
		parsed.Annotation = "." + ins.Name
	}
	return parsed, err
}

func (d *Disassembler) localName(slot int) (string, error) {
	if d.fn == nil {
		return "", fmt.Errorf("local variable outside of a function: %d", slot)
	}
	if d.fn.LocalCount() <= slot || slot < 0 {
		return "", fmt.Errorf("local variable index out of range: %d", slot)
	}
	if name := d.fn.LocalName(slot); name != "" {
		return name, nil
	}
	return fmt.Sprintf("local_%d", slot), nil
}

func (d *Disassembler) globalName(slot int) (string, error) {
	if slot < 0 || slot >= d.program.Globals {
		return "", fmt.Errorf("global variable index out of range: %d", slot)
	}
	if slot < len(d.program.GlobalNames) {
		return d.program.GlobalNames[slot], nil
	}
	return fmt.Sprintf("global_%d", slot), nil
}

var (
	boldColor    = color.New(color.Bold)
	italicColor  = color.New(color.Italic)
	valueColor   = color.New(color.FgYellow)
	stringColor  = color.New(color.FgGreen)
	funcColor    = color.New(color.FgMagenta)
	infoColor    = color.New(color.FgHiCyan)
	sectionColor = color.New(color.Faint)
)

// Print a string representation of the given instructions to the given
// writer. Colors follow color.NoColor.
func Print(instructions []Instruction, writer io.Writer) {
	var lines [][]string
	for _, instr := range instructions {
		indent := strings.Repeat("  ", instr.Depth)
		if instr.Section != "" {
			label := strings.Repeat("  ", max(instr.Depth-1, 0)) + instr.Section + ":"
			lines = append(lines, []string{"", sectionColor.Sprint(label), "", "", ""})
		}
		var values []string
		values = append(values, fmt.Sprintf("%d", instr.Offset))
		values = append(values, indent+boldColor.Sprint(instr.Name))
		values = append(values, formatOperands(instr.Operands))
		values = append(values, formatInfo(instr))
		line := ""
		if instr.Line > 0 {
			line = fmt.Sprintf("%d", instr.Line)
		}
		values = append(values, line)
		lines = append(lines, values)
	}

	table.NewTable(writer).
		WithHeader([]string{"OFFSET", "OPCODE", "OPERANDS", "INFO", "LINE"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignLeft,
			table.AlignRight,
			table.AlignLeft,
			table.AlignRight,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(lines).
		Render()
}

func formatInfo(instr Instruction) string {
	switch c := instr.Constant.(type) {
	case nil:
		if instr.Annotation == "" {
			return ""
		}
		return infoColor.Sprint(instr.Annotation)
	case object.Value:
		if c.Type() == object.STRING {
			return stringColor.Sprint(quote(c.Str()))
		}
		return valueColor.Sprint(c.String())
	case string:
		return stringColor.Sprint(quote(c))
	case *bytecode.Function:
		name := c.Name()
		if name == "" {
			return italicColor.Sprint("<anonymous>")
		}
		return funcColor.Sprintf("func:%s", name)
	default:
		return boldColor.Sprintf("%v", c)
	}
}

func quote(s string) string {
	if len(s) > 80 {
		s = s[:77] + "..."
	}
	return fmt.Sprintf("%q", s)
}

func formatOperands(ops []int) string {
	var sb strings.Builder
	for i, op := range ops {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%d", op))
	}
	return sb.String()
}
