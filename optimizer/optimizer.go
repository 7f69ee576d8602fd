// Package optimizer implements the peephole pass run on every function body
// between compilation and installation into a program.
//
// The only rewrite removes a STORE_LOCAL immediately followed by a
// LOAD_LOCAL of the same slot. Storing pops the value and loading pushes it
// straight back, so dropping both leaves the stack unchanged. The pair may
// only go when that load is the sole read of the slot anywhere in the
// function; otherwise a later read could observe the store. Candidate pairs
// are found within one instruction sequence only, so a rewrite never spans
// a branch, short-circuit or loop body.
package optimizer

import (
	"github.com/deepnoodle-ai/shade/bytecode"
	"github.com/deepnoodle-ai/shade/op"
)

// Stats describes what a pass changed.
type Stats struct {
	RemovedPairs int
}

// Optimize returns an optimized copy of a function body. The input is not
// modified. Optimize(Optimize(code)) is equal to Optimize(code).
func Optimize(code []bytecode.Instruction) []bytecode.Instruction {
	out, _ := Run(code)
	return out
}

// Run is like Optimize and also reports what was changed.
func Run(code []bytecode.Instruction) ([]bytecode.Instruction, Stats) {
	p := &pass{loads: countLoads(code)}
	return p.sequence(code), p.stats
}

type pass struct {
	loads map[int]int
	stats Stats
}

// countLoads counts LOAD_LOCAL instructions per slot across every nested
// sequence.
func countLoads(code []bytecode.Instruction) map[int]int {
	loads := map[int]int{}
	bytecode.Inspect(code, func(ins bytecode.Instruction) bool {
		if ins.Op == op.LoadLocal {
			loads[ins.Operand]++
		}
		return true
	})
	return loads
}

func (p *pass) sequence(code []bytecode.Instruction) []bytecode.Instruction {
	if code == nil {
		return nil
	}
	out := make([]bytecode.Instruction, 0, len(code))
	for _, ins := range code {
		out = append(out, p.nested(ins))
	}
	i := 0
	for i+1 < len(out) {
		if p.redundant(out[i], out[i+1]) {
			p.loads[out[i].Operand]--
			p.stats.RemovedPairs++
			out = append(out[:i], out[i+2:]...)
			// Removing the pair may have made out[i-1] and out[i] adjacent.
			if i > 0 {
				i--
			}
			continue
		}
		i++
	}
	return out
}

func (p *pass) redundant(store, load bytecode.Instruction) bool {
	return store.Op == op.StoreLocal &&
		load.Is(op.LoadLocal, store.Operand) &&
		p.loads[store.Operand] == 1
}

// nested returns ins with its nested sequences optimized.
func (p *pass) nested(ins bytecode.Instruction) bytecode.Instruction {
	if !op.GetInfo(ins.Op).Nested {
		return ins
	}
	ins.Cond = p.sequence(ins.Cond)
	ins.Then = p.sequence(ins.Then)
	ins.Else = p.sequence(ins.Else)
	ins.Step = p.sequence(ins.Step)
	return ins
}
