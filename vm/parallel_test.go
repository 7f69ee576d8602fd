package vm

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/deepnoodle-ai/shade/ast/asttest"
	"github.com/deepnoodle-ai/shade/object"
)

func TestForEachConcurrentExecutors(t *testing.T) {
	program := compile(t,
		Let("scale", Num(2)),
		Let("calls", Num(0)),
		Func("shade", []string{"x"},
			Expr(Assign("calls", "+=", Num(1))),
			Return(Infix(Ident("x"), "*", Ident("scale"))),
		),
	)
	const n = 200
	results := make([]float32, n)
	var maxCalls atomic.Int64
	err := ForEach(context.Background(), program, n, 8, func(ctx context.Context, e *Executor, item int) error {
		result, err := e.Shade(ctx, object.NewFloat(float32(item)))
		if err != nil {
			return err
		}
		results[item] = result.Float()
		calls, _ := e.Global("calls")
		if c := int64(calls.Float()); c > maxCalls.Load() {
			maxCalls.Store(c)
		}
		return nil
	}, WithGlobals(map[string]any{"scale": 2, "calls": 0}))
	require.Nil(t, err)
	for i, r := range results {
		require.Equal(t, float32(i*2), r)
	}
	// Globals are private to each executor and reset between items.
	require.Equal(t, int64(1), maxCalls.Load())
}

func TestForEachMatchesSequential(t *testing.T) {
	program := compile(t,
		Func("shade", []string{"x"},
			Let("acc", Num(0)),
			For(Let("i", Num(0)), Infix(Ident("i"), "<", Ident("x")), Assign("i", "+=", Num(1)),
				Expr(Assign("acc", "+=", Infix(Ident("i"), "*", Ident("i"))))),
			Return(Ident("acc")),
		),
	)
	const n = 50
	sequential := make([]object.Value, n)
	e := New(program)
	for i := range sequential {
		v, err := e.Shade(context.Background(), object.NewFloat(float32(i)))
		require.Nil(t, err)
		sequential[i] = v
	}
	concurrent := make([]object.Value, n)
	err := ForEach(context.Background(), program, n, 4, func(ctx context.Context, e *Executor, item int) error {
		v, err := e.Shade(ctx, object.NewFloat(float32(item)))
		concurrent[item] = v
		return err
	})
	require.Nil(t, err)
	require.Equal(t, sequential, concurrent)
}

func TestForEachError(t *testing.T) {
	program := compile(t,
		Func("shade", []string{"x"},
			Return(Infix(Num(1), "/", Ident("x")))),
	)
	var seen atomic.Int64
	err := ForEach(context.Background(), program, 100, 3, func(ctx context.Context, e *Executor, item int) error {
		seen.Add(1)
		_, err := e.Shade(ctx, object.NewFloat(float32(item%10)))
		if err != nil {
			return fmt.Errorf("item %d: %w", item, err)
		}
		return nil
	})
	require.NotNil(t, err)
	re := runtimeErr(t, err)
	require.Equal(t, "Division by zero", re.Message)
	require.Less(t, seen.Load(), int64(100))
}

func TestForEachEmpty(t *testing.T) {
	program := compile(t, Let("x", Num(1)))
	called := false
	err := ForEach(context.Background(), program, 0, 4, func(context.Context, *Executor, int) error {
		called = true
		return nil
	})
	require.Nil(t, err)
	require.False(t, called)
}
