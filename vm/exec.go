package vm

import (
	"github.com/deepnoodle-ai/shade/bytecode"
	"github.com/deepnoodle-ai/shade/errors"
	"github.com/deepnoodle-ai/shade/errz"
	"github.com/deepnoodle-ai/shade/object"
	"github.com/deepnoodle-ai/shade/op"
)

// signal tells the enclosing sequence how a nested sequence ended.
type signal int

const (
	sigNone signal = iota
	sigBreak
	sigReturn
)

// stackUnderflow is raised by pop on an empty stack and recovered in run.
type stackUnderflow struct{}

// exec runs one instruction sequence. A sigReturn leaves the return value on
// top of the stack.
func (e *Executor) exec(code []bytecode.Instruction) (signal, error) {
	for i := range code {
		ins := &code[i]
		e.loc = ins.Loc
		if err := e.tick(ins); err != nil {
			return sigNone, err
		}
		switch ins.Op {
		case op.Nop:
		case op.Push:
			e.push(ins.Value)
		case op.LoadString:
			if ins.Operand < 0 || ins.Operand >= len(e.program.Strings) {
				return sigNone, e.fail(errz.ErrRuntime, errors.E3007, "String index %d out of range", ins.Operand)
			}
			e.push(object.NewString(e.program.Strings[ins.Operand]))
		case op.Time:
			e.push(object.NewFloat(e.time))
		case op.LoadLocal:
			locals, err := e.locals(ins.Operand)
			if err != nil {
				return sigNone, err
			}
			e.push(locals[ins.Operand])
		case op.StoreLocal:
			locals, err := e.locals(ins.Operand)
			if err != nil {
				return sigNone, err
			}
			locals[ins.Operand] = e.pop()
		case op.LoadGlobal:
			if err := e.checkGlobal(ins.Operand); err != nil {
				return sigNone, err
			}
			e.push(e.globals[ins.Operand])
		case op.StoreGlobal:
			if err := e.checkGlobal(ins.Operand); err != nil {
				return sigNone, err
			}
			e.globals[ins.Operand] = e.pop()
		case op.BinaryOp:
			b, a := e.pop(), e.pop()
			result, err := object.BinaryOp(op.BinaryOpType(ins.Operand), a, b)
			if err != nil {
				return sigNone, e.wrap(err)
			}
			e.push(result)
		case op.CompareOp:
			b, a := e.pop(), e.pop()
			result, err := object.Compare(op.CompareOpType(ins.Operand), a, b)
			if err != nil {
				return sigNone, e.wrap(err)
			}
			e.push(result)
		case op.UnaryNegative:
			result, err := object.Negate(e.pop())
			if err != nil {
				return sigNone, e.wrap(err)
			}
			e.push(result)
		case op.UnaryNot:
			e.push(object.Not(e.pop()))
		case op.Pack:
			if err := e.pack(ins.Operand); err != nil {
				return sigNone, err
			}
		case op.Swizzle:
			result, err := object.Swizzle(e.pop(), ins.Name)
			if err != nil {
				return sigNone, e.wrap(err)
			}
			e.push(result)
		case op.SetSwizzle:
			value, target := e.pop(), e.pop()
			result, err := object.SetSwizzle(target, ins.Name, value)
			if err != nil {
				return sigNone, e.wrap(err)
			}
			e.push(result)
		case op.PopTop:
			e.pop()
		case op.If:
			branch := ins.Else
			if e.pop().IsTruthy() {
				branch = ins.Then
			}
			if sig, err := e.exec(branch); err != nil || sig != sigNone {
				return sig, err
			}
		case op.And, op.Or:
			// The left operand stays on the stack as the result unless
			// the right operand has to be evaluated.
			truthy := e.peek().IsTruthy()
			if truthy == (ins.Op == op.And) {
				e.pop()
				if sig, err := e.exec(ins.Then); err != nil || sig != sigNone {
					return sig, err
				}
			}
		case op.Loop:
			sig, err := e.loop(ins)
			if err != nil || sig == sigReturn {
				return sig, err
			}
		case op.Break:
			return sigBreak, nil
		case op.ReturnValue:
			return sigReturn, nil
		case op.Call:
			fn, ok := e.program.Function(ins.Operand)
			if !ok {
				return sigNone, e.fail(errz.ErrName, errors.E3006, "Unknown function index %d", ins.Operand)
			}
			if ins.Argc != fn.Arity() {
				return sigNone, e.fail(errz.ErrType, errors.E3001,
					"Wrong amount of arguments for '%s', expected '%d' got '%d'", fn.Name(), fn.Arity(), ins.Argc)
			}
			if err := e.callFunction(fn, e.popN(ins.Argc), ins.Loc); err != nil {
				return sigNone, err
			}
		case op.Builtin:
			if err := e.callBuiltin(ins); err != nil {
				return sigNone, err
			}
		case op.HostCall:
			e.handleHostOp(ins)
		default:
			return sigNone, e.fail(errz.ErrRuntime, errors.E3007, "Unknown opcode %d", ins.Op)
		}
	}
	return sigNone, nil
}

// loop runs a LOOP instruction until its condition is falsy or its body
// breaks. Only sigReturn is propagated.
func (e *Executor) loop(ins *bytecode.Instruction) (signal, error) {
	for {
		if err := e.tick(ins); err != nil {
			return sigNone, err
		}
		if len(ins.Cond) > 0 {
			if _, err := e.exec(ins.Cond); err != nil {
				return sigNone, err
			}
			if !e.pop().IsTruthy() {
				return sigNone, nil
			}
		}
		sig, err := e.exec(ins.Then)
		if err != nil {
			return sigNone, err
		}
		switch sig {
		case sigBreak:
			return sigNone, nil
		case sigReturn:
			return sigReturn, nil
		}
		if _, err := e.exec(ins.Step); err != nil {
			return sigNone, err
		}
	}
}

// callFunction runs fn with the given arguments and pushes its result.
//
// Arguments fill the first slots of a new frame. The remaining slots run
// their default value code in order, then start as none if they have none.
func (e *Executor) callFunction(fn *bytecode.Function, args []object.Value, callSite errors.Location) error {
	if e.maxCallDepth > 0 && len(e.frames) >= e.maxCallDepth {
		return e.fail(errz.ErrLimit, errors.E3004, "Maximum call depth of %d exceeded", e.maxCallDepth)
	}
	locals := make([]object.Value, fn.LocalCount())
	for i := copy(locals, args); i < len(locals); i++ {
		locals[i] = object.None
	}
	e.frames = append(e.frames, frame{fn: fn, locals: locals, callSite: callSite})
	if e.observer != nil && e.observerCfg.ObserveCalls {
		if !e.observer.OnCall(CallEvent{
			FunctionName: fn.Name(),
			ArgCount:     len(args),
			Location:     callSite,
			FrameDepth:   len(e.frames),
		}) {
			return e.halted()
		}
	}

	base := len(e.stack)
	for slot := fn.Arity(); slot < fn.LocalCount(); slot++ {
		code := fn.Default(slot)
		if len(code) == 0 {
			continue
		}
		if _, err := e.exec(code); err != nil {
			return err
		}
		locals[slot] = e.pop()
	}

	sig, err := e.exec(fn.Code())
	if err != nil {
		return err
	}
	result := object.None
	switch sig {
	case sigReturn:
		result = e.pop()
	case sigBreak:
		return e.fail(errz.ErrRuntime, errors.E3007, "Break outside of a loop")
	}
	if len(e.stack) > base {
		e.stack = e.stack[:base]
	}
	e.frames = e.frames[:len(e.frames)-1]
	e.push(result)

	if e.observer != nil && e.observerCfg.ObserveReturns {
		if !e.observer.OnReturn(ReturnEvent{
			FunctionName: fn.Name(),
			Location:     e.loc,
			FrameDepth:   len(e.frames),
		}) {
			return e.halted()
		}
	}
	e.loc = callSite
	return nil
}

func (e *Executor) callBuiltin(ins *bytecode.Instruction) error {
	b, ok := e.registry.BuiltinAt(ins.Operand)
	if !ok {
		return e.fail(errz.ErrName, errors.E3006, "Unknown builtin index %d", ins.Operand)
	}
	if ins.Argc != b.Arity {
		return e.fail(errz.ErrType, errors.E3001,
			"Wrong amount of arguments for '%s', expected '%d' got '%d'", b.Name, b.Arity, ins.Argc)
	}
	result, err := b.Fn(e.popN(ins.Argc))
	if err != nil {
		return e.wrap(err)
	}
	e.push(result)
	return nil
}

// handleHostOp pops the arguments of a host call, passes them to the host in
// call order and reconciles the result with the declared return: a missing
// value is replaced with none and an unexpected value is dropped.
func (e *Executor) handleHostOp(ins *bytecode.Instruction) {
	args := e.popN(ins.Argc)
	var result object.Value
	var ok bool
	if e.host != nil {
		result, ok = e.host.OnHostCall(ins.Name, args)
	} else {
		e.log.Debug().Str("name", ins.Name).Int("argc", ins.Argc).Msg("host call without handler")
	}
	switch {
	case ins.Returns && ok:
		e.push(result)
	case ins.Returns:
		e.log.Debug().Str("name", ins.Name).Msg("host call returned no value")
		e.push(object.None)
	case ok:
		e.log.Debug().Str("name", ins.Name).Msg("discarding host call result")
	}
}

func (e *Executor) pack(n int) error {
	values := e.popN(n)
	components := make([]float32, n)
	for i, v := range values {
		if v.Type() != object.FLOAT {
			return e.fail(errz.ErrType, errors.E3001,
				"Vector components must be floats (got %s)", v.Type())
		}
		components[i] = v.Float()
	}
	vec, err := object.NewVector(components...)
	if err != nil {
		return e.wrap(err)
	}
	e.push(vec)
	return nil
}

func (e *Executor) locals(slot int) ([]object.Value, error) {
	if len(e.frames) == 0 {
		return nil, e.fail(errz.ErrRuntime, errors.E3007, "Local slot %d accessed outside of a function", slot)
	}
	locals := e.frames[len(e.frames)-1].locals
	if slot < 0 || slot >= len(locals) {
		return nil, e.fail(errz.ErrRuntime, errors.E3007, "Local slot %d out of range", slot)
	}
	return locals, nil
}

func (e *Executor) checkGlobal(slot int) error {
	if slot < 0 || slot >= len(e.globals) {
		return e.fail(errz.ErrRuntime, errors.E3007, "Global slot %d out of range", slot)
	}
	return nil
}

// tick counts an executed instruction or loop iteration and enforces the
// budget, cancellation and observer.
func (e *Executor) tick(ins *bytecode.Instruction) error {
	e.steps++
	if e.budget > 0 && e.steps > e.budget {
		return e.fail(errz.ErrLimit, errors.E3005, "Instruction budget of %d exceeded", e.budget)
	}
	if e.contextCheckInterval > 0 && e.ctx != nil && e.steps%int64(e.contextCheckInterval) == 0 {
		if err := e.ctx.Err(); err != nil {
			return e.fail(errz.ErrLimit, errors.E3008, "Execution cancelled").WithCause(err)
		}
	}
	if e.observer != nil && e.shouldStep() {
		if !e.observer.OnStep(StepEvent{
			Opcode:     ins.Op,
			OpcodeName: op.GetInfo(ins.Op).Name,
			Location:   ins.Loc,
			StackDepth: len(e.stack),
			FrameDepth: len(e.frames),
		}) {
			return e.halted()
		}
	}
	return nil
}

func (e *Executor) shouldStep() bool {
	switch e.observerCfg.StepMode {
	case StepAll:
		return true
	case StepSampled:
		return e.steps%int64(e.observerCfg.SampleInterval) == 0
	case StepOnLine:
		if e.loc != e.lastLine {
			e.lastLine = e.loc
			return true
		}
	}
	return false
}

func (e *Executor) push(v object.Value) {
	e.stack = append(e.stack, v)
}

func (e *Executor) pop() object.Value {
	n := len(e.stack)
	if n == 0 {
		panic(stackUnderflow{})
	}
	v := e.stack[n-1]
	e.stack = e.stack[:n-1]
	return v
}

func (e *Executor) peek() object.Value {
	n := len(e.stack)
	if n == 0 {
		panic(stackUnderflow{})
	}
	return e.stack[n-1]
}

// popN pops n values and returns them in the order they were pushed.
func (e *Executor) popN(n int) []object.Value {
	if n > len(e.stack) {
		panic(stackUnderflow{})
	}
	values := make([]object.Value, n)
	copy(values, e.stack[len(e.stack)-n:])
	e.stack = e.stack[:len(e.stack)-n]
	return values
}
