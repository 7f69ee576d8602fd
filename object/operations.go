package object

import (
	"math"

	"github.com/deepnoodle-ai/shade/op"
)

// BinaryOp performs an arithmetic operation. Numeric operands are combined
// component-wise, a scalar operand is broadcast across a vector operand and
// "+" with a string operand concatenates.
func BinaryOp(opType op.BinaryOpType, a, b Value) (Value, error) {
	if opType == op.Add && (a.Type() == STRING || b.Type() == STRING) {
		return NewString(a.String() + b.String()), nil
	}
	n, err := broadcast(opType.String(), a, b)
	if err != nil {
		return None, err
	}
	typ, _ := VectorType(n)
	out := Value{typ: typ}
	for i := 0; i < n; i++ {
		x, y := a.Component(i), b.Component(i)
		switch opType {
		case op.Add:
			out.n[i] = x + y
		case op.Subtract:
			out.n[i] = x - y
		case op.Multiply:
			out.n[i] = x * y
		case op.Divide:
			if y == 0 {
				return None, ErrDivisionByZero
			}
			out.n[i] = x / y
		case op.Modulo:
			if y == 0 {
				return None, ErrDivisionByZero
			}
			out.n[i] = x - y*float32(math.Floor(float64(x/y)))
		default:
			return None, TypeErrorf("Unknown binary operator %d", opType)
		}
	}
	return out, nil
}

// broadcast returns the component count of the result of combining a and b.
func broadcast(operator string, a, b Value) (int, error) {
	na, nb := a.Components(), b.Components()
	switch {
	case na == 0 || nb == 0:
		return 0, TypeErrorf("Cannot apply '%s' to %s and %s", operator, a.Type(), b.Type())
	case na == nb:
		return na, nil
	case na == 1:
		return nb, nil
	case nb == 1:
		return na, nil
	}
	return 0, TypeErrorf("Cannot apply '%s' to %s and %s", operator, a.Type(), b.Type())
}

// Compare two values using the given comparison operator. Equality is
// defined for every pair of values; ordering only for two floats or two
// strings.
func Compare(opType op.CompareOpType, a, b Value) (Value, error) {
	switch opType {
	case op.Equal:
		return NewBool(a.Equals(b)), nil
	case op.NotEqual:
		return NewBool(!a.Equals(b)), nil
	}
	var cmp int
	switch {
	case a.Type() == FLOAT && b.Type() == FLOAT:
		x, y := a.Float(), b.Float()
		switch {
		case x < y:
			cmp = -1
		case x > y:
			cmp = 1
		}
	case a.Type() == STRING && b.Type() == STRING:
		switch {
		case a.s < b.s:
			cmp = -1
		case a.s > b.s:
			cmp = 1
		}
	default:
		return None, TypeErrorf("Cannot compare %s and %s with '%s'", a.Type(), b.Type(), opType)
	}
	switch opType {
	case op.LessThan:
		return NewBool(cmp < 0), nil
	case op.LessThanOrEqual:
		return NewBool(cmp <= 0), nil
	case op.GreaterThan:
		return NewBool(cmp > 0), nil
	case op.GreaterThanOrEqual:
		return NewBool(cmp >= 0), nil
	}
	return None, TypeErrorf("Unknown comparison operator %d", opType)
}

// Negate returns -v for numeric values.
func Negate(v Value) (Value, error) {
	if !v.IsNumeric() {
		return None, TypeErrorf("Cannot negate %s", v.Type())
	}
	return v.Map(func(f float32) float32 { return -f }), nil
}

// Not returns the logical inverse of the value's truthiness.
func Not(v Value) Value {
	return NewBool(!v.IsTruthy())
}
