package object

import "fmt"

// FromGo converts a Go value to a Value. Supported inputs are nil, bool, the
// integer and float kinds, string, []float32, []float64 and Value itself.
func FromGo(obj any) (Value, error) {
	switch v := obj.(type) {
	case nil:
		return None, nil
	case Value:
		return v, nil
	case bool:
		return NewBool(v), nil
	case float32:
		return NewFloat(v), nil
	case float64:
		return NewFloat(float32(v)), nil
	case int:
		return NewFloat(float32(v)), nil
	case int32:
		return NewFloat(float32(v)), nil
	case int64:
		return NewFloat(float32(v)), nil
	case string:
		return NewString(v), nil
	case []float32:
		return NewVector(v...)
	case []float64:
		f := make([]float32, len(v))
		for i, x := range v {
			f[i] = float32(x)
		}
		return NewVector(f...)
	}
	return None, fmt.Errorf("type error: unsupported go type %T", obj)
}

// AsFloat returns the scalar held by a FLOAT value.
func AsFloat(v Value) (float32, error) {
	if v.Type() != FLOAT {
		return 0, TypeErrorf("expected a float (%s given)", v.Type())
	}
	return v.Float(), nil
}

// AsString returns the string held by a STRING value.
func AsString(v Value) (string, error) {
	if v.Type() != STRING {
		return "", TypeErrorf("expected a string (%s given)", v.Type())
	}
	return v.Str(), nil
}
