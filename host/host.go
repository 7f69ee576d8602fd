// Package host defines the interface through which a running shade program
// reaches the embedding engine.
//
// Every host call names a binding and passes its arguments in call order.
// The handler may read or change engine state and optionally return a
// value. Returning false means "no value": for a binding declared as
// returning a value the executor substitutes none, so an unknown or failing
// call degrades to a no-op instead of aborting the program.
package host

import (
	"fmt"
	"io"
	"sync"

	"github.com/deepnoodle-ai/shade/builtins"
	"github.com/deepnoodle-ai/shade/object"
)

// Handler receives host calls from an executor.
type Handler interface {
	OnHostCall(name string, args []object.Value) (object.Value, bool)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(name string, args []object.Value) (object.Value, bool)

// OnHostCall calls f(name, args).
func (f HandlerFunc) OnHostCall(name string, args []object.Value) (object.Value, bool) {
	return f(name, args)
}

// Mux routes host calls to a handler per binding name. Calls with no route
// go to the fallback, if any.
type Mux struct {
	routes   map[string]Handler
	fallback Handler
}

// NewMux returns an empty Mux.
func NewMux() *Mux {
	return &Mux{routes: map[string]Handler{}}
}

// Handle registers the handler for name.
func (m *Mux) Handle(name string, h Handler) *Mux {
	m.routes[name] = h
	return m
}

// HandleFunc registers a function for name.
func (m *Mux) HandleFunc(name string, fn func(args []object.Value) (object.Value, bool)) *Mux {
	return m.Handle(name, HandlerFunc(func(_ string, args []object.Value) (object.Value, bool) {
		return fn(args)
	}))
}

// Fallback sets the handler for names without a route.
func (m *Mux) Fallback(h Handler) *Mux {
	m.fallback = h
	return m
}

// OnHostCall implements Handler.
func (m *Mux) OnHostCall(name string, args []object.Value) (object.Value, bool) {
	if h, ok := m.routes[name]; ok {
		return h.OnHostCall(name, args)
	}
	if m.fallback != nil {
		return m.fallback.OnHostCall(name, args)
	}
	return object.None, false
}

// Console handles the "print" and "format" bindings, writing printed values
// to w. Other names are not handled.
func Console(w io.Writer) Handler {
	return HandlerFunc(func(name string, args []object.Value) (object.Value, bool) {
		switch name {
		case "print":
			fmt.Fprintln(w, builtins.Join(args))
		case "format":
			return builtins.Format(args), true
		}
		return object.None, false
	})
}

// Call is one host call seen by a Recorder.
type Call struct {
	Name string
	Args []object.Value
}

// Recorder records every host call and forwards it to an optional next
// handler. It is safe for concurrent use, so one Recorder can observe
// several executors.
type Recorder struct {
	next  Handler
	mu    sync.Mutex
	calls []Call
}

// NewRecorder returns a Recorder forwarding to next, which may be nil.
func NewRecorder(next Handler) *Recorder {
	return &Recorder{next: next}
}

// OnHostCall implements Handler.
func (r *Recorder) OnHostCall(name string, args []object.Value) (object.Value, bool) {
	copied := make([]object.Value, len(args))
	copy(copied, args)
	r.mu.Lock()
	r.calls = append(r.calls, Call{Name: name, Args: copied})
	r.mu.Unlock()
	if r.next == nil {
		return object.None, false
	}
	return r.next.OnHostCall(name, args)
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Named returns the recorded calls to name.
func (r *Recorder) Named(name string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets all recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}
