package object

import (
	"testing"

	"github.com/deepnoodle-ai/shade/op"
	"github.com/stretchr/testify/require"
)

func TestBinaryOp(t *testing.T) {
	tests := []struct {
		name     string
		op       op.BinaryOpType
		a, b     Value
		expected Value
	}{
		{"add floats", op.Add, NewFloat(2), NewFloat(3), NewFloat(5)},
		{"sub floats", op.Subtract, NewFloat(2), NewFloat(3), NewFloat(-1)},
		{"mul vec by scalar", op.Multiply, NewFloat2(1, 2), NewFloat(2), NewFloat2(2, 4)},
		{"scalar times vec", op.Multiply, NewFloat(3), NewFloat3(1, 2, 3), NewFloat3(3, 6, 9)},
		{"add vectors", op.Add, NewFloat3(1, 2, 3), NewFloat3(1, 1, 1), NewFloat3(2, 3, 4)},
		{"divide", op.Divide, NewFloat(1), NewFloat(4), NewFloat(0.25)},
		{"glsl mod", op.Modulo, NewFloat(-1), NewFloat(3), NewFloat(2)},
		{"mod", op.Modulo, NewFloat(7), NewFloat(3), NewFloat(1)},
		{"concat", op.Add, NewString("a"), NewFloat(1), NewString("a1")},
		{"concat right", op.Add, True, NewString("!"), NewString("true!")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := BinaryOp(tt.op, tt.a, tt.b)
			require.Nil(t, err)
			require.Equal(t, tt.expected, result)
		})
	}
}

func TestBinaryOpErrors(t *testing.T) {
	_, err := BinaryOp(op.Divide, NewFloat(1), NewFloat(0))
	require.ErrorIs(t, err, ErrDivisionByZero)

	_, err = BinaryOp(op.Modulo, NewFloat2(1, 1), NewFloat2(1, 0))
	require.ErrorIs(t, err, ErrDivisionByZero)

	_, err = BinaryOp(op.Add, NewFloat2(1, 1), NewFloat3(1, 1, 1))
	var typeErr *TypeError
	require.ErrorAs(t, err, &typeErr)
	require.Equal(t, "Cannot apply '+' to float2 and float3", typeErr.Message)

	_, err = BinaryOp(op.Subtract, NewString("a"), NewFloat(1))
	require.ErrorAs(t, err, &typeErr)

	_, err = BinaryOp(op.Multiply, True, NewFloat(1))
	require.ErrorAs(t, err, &typeErr)
}

func TestCompare(t *testing.T) {
	tests := []struct {
		op       op.CompareOpType
		a, b     Value
		expected bool
	}{
		{op.LessThan, NewFloat(1), NewFloat(2), true},
		{op.LessThanOrEqual, NewFloat(2), NewFloat(2), true},
		{op.GreaterThan, NewFloat(1), NewFloat(2), false},
		{op.GreaterThanOrEqual, NewFloat(3), NewFloat(2), true},
		{op.LessThan, NewString("apple"), NewString("banana"), true},
		{op.GreaterThan, NewString("b"), NewString("a"), true},
		{op.Equal, NewFloat2(1, 2), NewFloat2(1, 2), true},
		{op.Equal, NewFloat(1), NewString("1"), false},
		{op.NotEqual, None, None, false},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			result, err := Compare(tt.op, tt.a, tt.b)
			require.Nil(t, err)
			require.Equal(t, NewBool(tt.expected), result)
		})
	}

	_, err := Compare(op.LessThan, NewFloat2(1, 1), NewFloat2(1, 2))
	require.NotNil(t, err)
}

func TestUnary(t *testing.T) {
	v, err := Negate(NewFloat2(1, -2))
	require.Nil(t, err)
	require.Equal(t, NewFloat2(-1, 2), v)

	_, err = Negate(NewString("x"))
	require.NotNil(t, err)

	require.Equal(t, True, Not(NewFloat(0)))
	require.Equal(t, False, Not(NewFloat3(0, 0, 0)))
}

func TestSwizzle(t *testing.T) {
	v := NewFloat4(1, 2, 3, 4)

	got, err := Swizzle(v, "xy")
	require.Nil(t, err)
	require.Equal(t, NewFloat2(1, 2), got)

	got, err = Swizzle(v, "bgr")
	require.Nil(t, err)
	require.Equal(t, NewFloat3(3, 2, 1), got)

	got, err = Swizzle(v, "w")
	require.Nil(t, err)
	require.Equal(t, NewFloat(4), got)

	got, err = Swizzle(NewFloat(5), "xxx")
	require.Nil(t, err)
	require.Equal(t, NewFloat3(5, 5, 5), got)

	_, err = Swizzle(NewFloat2(1, 2), "z")
	require.NotNil(t, err)
	_, err = Swizzle(v, "xr")
	require.NotNil(t, err)
	_, err = Swizzle(NewString("s"), "x")
	require.NotNil(t, err)
}

func TestSetSwizzle(t *testing.T) {
	v := NewFloat3(1, 2, 3)

	got, err := SetSwizzle(v, "x", NewFloat(9))
	require.Nil(t, err)
	require.Equal(t, NewFloat3(9, 2, 3), got)
	require.Equal(t, NewFloat3(1, 2, 3), v)

	got, err = SetSwizzle(v, "zy", NewFloat2(7, 8))
	require.Nil(t, err)
	require.Equal(t, NewFloat3(1, 8, 7), got)

	got, err = SetSwizzle(v, "rg", NewFloat(0))
	require.Nil(t, err)
	require.Equal(t, NewFloat3(0, 0, 3), got)

	_, err = SetSwizzle(v, "xx", NewFloat2(1, 2))
	require.NotNil(t, err)
	_, err = SetSwizzle(v, "w", NewFloat(1))
	require.NotNil(t, err)
	_, err = SetSwizzle(v, "xy", NewFloat3(1, 2, 3))
	require.NotNil(t, err)
}
