package vm

import (
	"github.com/deepnoodle-ai/shade/errors"
	"github.com/deepnoodle-ai/shade/op"
)

// StepMode selects which instructions produce a StepEvent.
type StepMode uint8

const (
	StepAll     StepMode = iota // every instruction and loop iteration
	StepNone                    // no step events
	StepSampled                 // one event per SampleInterval instructions
	StepOnLine                  // one event each time the source line changes
)

// ObserverConfig is read once, when the executor is created.
type ObserverConfig struct {
	StepMode StepMode

	// SampleInterval applies to StepSampled. Zero or less means 1.
	SampleInterval int

	// Call and return events are only delivered when enabled.
	ObserveCalls   bool
	ObserveReturns bool
}

// NewObserverConfig returns a config for mode with call and return events
// enabled and a sample interval of 1000 instructions.
func NewObserverConfig(mode StepMode) ObserverConfig {
	return ObserverConfig{
		StepMode:       mode,
		SampleInterval: 1000,
		ObserveCalls:   true,
		ObserveReturns: true,
	}
}

// NormalizeConfig fixes a sampled config with no usable interval.
func NormalizeConfig(cfg ObserverConfig) ObserverConfig {
	if cfg.StepMode != StepSampled {
		return cfg
	}
	cfg.SampleInterval = max(cfg.SampleInterval, 1)
	return cfg
}

// Observer receives execution events from an executor. Profilers, coverage
// tools and shader debuggers implement it; embed NoOpObserver to pick only
// the events you care about.
//
// Every callback runs on the executing goroutine. Returning false stops the
// run with an E3008 error.
type Observer interface {
	Config() ObserverConfig
	OnStep(event StepEvent) bool
	OnCall(event CallEvent) bool
	OnReturn(event ReturnEvent) bool
}

// StepEvent is delivered before an instruction executes.
type StepEvent struct {
	Opcode     op.Code
	OpcodeName string
	Location   errors.Location
	StackDepth int // values on the stack
	FrameDepth int // active user function frames
}

// CallEvent is delivered once the callee's frame is pushed, before its
// default values run. Location is the call site.
type CallEvent struct {
	FunctionName string
	ArgCount     int
	Location     errors.Location
	FrameDepth   int
}

// ReturnEvent is delivered after the callee's frame is popped. Location is
// the last instruction the callee executed.
type ReturnEvent struct {
	FunctionName string
	Location     errors.Location
	FrameDepth   int
}

// NoOpObserver accepts every event and asks for all of them.
type NoOpObserver struct{}

func (NoOpObserver) Config() ObserverConfig {
	return NewObserverConfig(StepAll)
}

func (NoOpObserver) OnStep(StepEvent) bool     { return true }
func (NoOpObserver) OnCall(CallEvent) bool     { return true }
func (NoOpObserver) OnReturn(ReturnEvent) bool { return true }

var _ Observer = NoOpObserver{}
