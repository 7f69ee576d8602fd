package object

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruthiness(t *testing.T) {
	tests := []struct {
		value    Value
		expected bool
	}{
		{None, false},
		{Value{}, false},
		{True, true},
		{False, false},
		{NewFloat(0), false},
		{NewFloat(-1), true},
		{NewFloat2(0, 0), true},
		{NewFloat4(0, 0, 0, 0), true},
		{NewString(""), false},
		{NewString("a"), true},
	}
	for _, tt := range tests {
		t.Run(tt.value.String(), func(t *testing.T) {
			require.Equal(t, tt.expected, tt.value.IsTruthy())
		})
	}
}

func TestComponents(t *testing.T) {
	require.Equal(t, 0, None.Components())
	require.Equal(t, 0, True.Components())
	require.Equal(t, 0, NewString("x").Components())
	require.Equal(t, 1, NewFloat(2).Components())
	require.Equal(t, 3, NewFloat3(1, 2, 3).Components())
	require.Equal(t, []float32{1, 2, 3}, NewFloat3(1, 2, 3).Floats())
	require.Equal(t, NONE, Value{}.Type())
}

func TestNewVector(t *testing.T) {
	v, err := NewVector(1, 2)
	require.Nil(t, err)
	require.Equal(t, NewFloat2(1, 2), v)

	_, err = NewVector(1, 2, 3, 4, 5)
	require.NotNil(t, err)
	_, err = NewVector()
	require.NotNil(t, err)
}

func TestEquals(t *testing.T) {
	require.True(t, NewFloat(1).Equals(NewFloat(1)))
	require.False(t, NewFloat(1).Equals(NewFloat2(1, 0)))
	require.True(t, NewString("a").Equals(NewString("a")))
	require.False(t, True.Equals(NewFloat(1)))
	require.True(t, None.Equals(Value{}))
}

func TestString(t *testing.T) {
	require.Equal(t, "0.5", NewFloat(0.5).String())
	require.Equal(t, "[1, 2.5]", NewFloat2(1, 2.5).String())
	require.Equal(t, "true", True.String())
	require.Equal(t, "none", None.String())
	require.Equal(t, "hi", NewString("hi").String())
}

func TestFromGo(t *testing.T) {
	v, err := FromGo(3)
	require.Nil(t, err)
	require.Equal(t, NewFloat(3), v)

	v, err = FromGo([]float64{1, 0, 0})
	require.Nil(t, err)
	require.Equal(t, NewFloat3(1, 0, 0), v)

	v, err = FromGo(nil)
	require.Nil(t, err)
	require.True(t, v.IsNone())

	_, err = FromGo(struct{}{})
	require.NotNil(t, err)
}

func TestInterface(t *testing.T) {
	require.Nil(t, None.Interface())
	require.Equal(t, float32(2), NewFloat(2).Interface())
	require.Equal(t, []float32{1, 2}, NewFloat2(1, 2).Interface())
	require.Equal(t, true, True.Interface())
}
