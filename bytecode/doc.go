// Package bytecode provides the compiled form of shade programs.
//
// A [Program] is the output of compilation: the entry body, the table of
// user functions, the global slot count and the string pool. It is created
// once by the compiler and then only read, so one Program can be executed by
// many VM instances on different goroutines at the same time.
//
// # Instructions
//
// An [Instruction] is a flat struct. Control flow does not use jump offsets:
// IF, AND, OR and LOOP instructions carry their bodies as nested instruction
// sequences. Every sequence is therefore straight-line code, which keeps the
// optimizer and the disassembler simple and makes it impossible for a
// rewrite to cross a branch boundary.
//
// # Functions
//
// A [Function] is immutable after [NewFunction]. Programs hold functions by
// pointer, and executors share those pointers without copying or locking.
// Slices returned by accessors must be treated as read-only.
//
// # Usage
//
//	prog, err := compiler.Compile(unit, nil)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(prog.ShaderSupportsOpacity())
//	data, err := bytecode.Marshal(prog)
package bytecode
