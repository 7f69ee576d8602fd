package builtins

import (
	"math"

	"github.com/deepnoodle-ai/shade/object"
)

// MathFunc implements a builtin. The compiler guarantees len(args) matches
// the builtin's arity.
type MathFunc func(args []object.Value) (object.Value, error)

func unary(name string, fn func(float64) float64) MathFunc {
	return func(args []object.Value) (object.Value, error) {
		if !args[0].IsNumeric() {
			return object.None, object.TypeErrorf("%s() expects a float or vector (%s given)", name, args[0].Type())
		}
		return args[0].Map(func(f float32) float32 {
			return float32(fn(float64(f)))
		}), nil
	}
}

// zip combines numeric arguments component-wise, broadcasting scalars.
func zip(name string, fn func(x []float32) float32) MathFunc {
	return func(args []object.Value) (object.Value, error) {
		n := 1
		for _, a := range args {
			if !a.IsNumeric() {
				return object.None, object.TypeErrorf("%s() expects floats or vectors (%s given)", name, a.Type())
			}
			if c := a.Components(); c != 1 {
				if n != 1 && n != c {
					return object.None, object.TypeErrorf("%s() got mismatched vector sizes", name)
				}
				n = c
			}
		}
		out := make([]float32, n)
		x := make([]float32, len(args))
		for i := range out {
			for j, a := range args {
				x[j] = a.Component(i)
			}
			out[i] = fn(x)
		}
		return object.NewVector(out...)
	}
}

func sameSize(name string, a, b object.Value) error {
	if !a.IsNumeric() || a.Components() != b.Components() {
		return object.TypeErrorf("%s() expects two vectors of the same size (%s and %s given)", name, a.Type(), b.Type())
	}
	return nil
}

func dot(a, b object.Value) float32 {
	var sum float32
	for i := 0; i < a.Components(); i++ {
		sum += a.Component(i) * b.Component(i)
	}
	return sum
}

func Length(args []object.Value) (object.Value, error) {
	v := args[0]
	if !v.IsNumeric() {
		return object.None, object.TypeErrorf("length() expects a float or vector (%s given)", v.Type())
	}
	if v.Components() == 1 {
		return object.NewFloat(float32(math.Abs(float64(v.Float())))), nil
	}
	return object.NewFloat(float32(math.Sqrt(float64(dot(v, v))))), nil
}

func Normalize(args []object.Value) (object.Value, error) {
	l, err := Length(args)
	if err != nil {
		return object.None, err
	}
	if l.Float() == 0 {
		return args[0], nil
	}
	inv := 1 / l.Float()
	return args[0].Map(func(f float32) float32 { return f * inv }), nil
}

func Dot(args []object.Value) (object.Value, error) {
	if err := sameSize("dot", args[0], args[1]); err != nil {
		return object.None, err
	}
	return object.NewFloat(dot(args[0], args[1])), nil
}

func Cross(args []object.Value) (object.Value, error) {
	a, b := args[0], args[1]
	if a.Type() != object.FLOAT3 || b.Type() != object.FLOAT3 {
		return object.None, object.TypeErrorf("cross() expects two float3 values (%s and %s given)", a.Type(), b.Type())
	}
	return object.NewFloat3(
		a.Component(1)*b.Component(2)-a.Component(2)*b.Component(1),
		a.Component(2)*b.Component(0)-a.Component(0)*b.Component(2),
		a.Component(0)*b.Component(1)-a.Component(1)*b.Component(0),
	), nil
}

func Rotate2D(args []object.Value) (object.Value, error) {
	v, angle := args[0], args[1]
	if v.Type() != object.FLOAT2 || angle.Type() != object.FLOAT {
		return object.None, object.TypeErrorf("rotate2d() expects a float2 and a float (%s and %s given)", v.Type(), angle.Type())
	}
	s, c := math.Sincos(float64(angle.Float()) * math.Pi / 180)
	x, y := float64(v.Component(0)), float64(v.Component(1))
	return object.NewFloat2(float32(x*c-y*s), float32(x*s+y*c)), nil
}

func fract(f float64) float64 {
	return f - math.Floor(f)
}

func smoothstep(x []float32) float32 {
	e0, e1, v := x[0], x[1], x[2]
	if e0 == e1 {
		if v < e0 {
			return 0
		}
		return 1
	}
	t := min(max((v-e0)/(e1-e0), 0), 1)
	return t * t * (3 - 2*t)
}

func step(x []float32) float32 {
	if x[1] < x[0] {
		return 0
	}
	return 1
}

func glslMod(x []float32) float32 {
	if x[1] == 0 {
		return 0
	}
	return x[0] - x[1]*float32(math.Floor(float64(x[0]/x[1])))
}

func mathBuiltins() []Builtin {
	return []Builtin{
		{Name: "length", Arity: 1, Fn: Length},
		{Name: "abs", Arity: 1, Fn: unary("abs", math.Abs)},
		{Name: "sin", Arity: 1, Fn: unary("sin", math.Sin)},
		{Name: "cos", Arity: 1, Fn: unary("cos", math.Cos)},
		{Name: "tan", Arity: 1, Fn: unary("tan", math.Tan)},
		{Name: "atan", Arity: 1, Fn: unary("atan", math.Atan)},
		{Name: "atan2", Arity: 2, Fn: zip("atan2", func(x []float32) float32 {
			return float32(math.Atan2(float64(x[0]), float64(x[1])))
		})},
		{Name: "normalize", Arity: 1, Fn: Normalize},
		{Name: "rotate2d", Arity: 2, Fn: Rotate2D},
		{Name: "dot", Arity: 2, Fn: Dot},
		{Name: "cross", Arity: 2, Fn: Cross},
		{Name: "floor", Arity: 1, Fn: unary("floor", math.Floor)},
		{Name: "ceil", Arity: 1, Fn: unary("ceil", math.Ceil)},
		{Name: "round", Arity: 1, Fn: unary("round", math.Round)},
		{Name: "fract", Arity: 1, Fn: unary("fract", fract)},
		{Name: "mod", Arity: 2, Fn: zip("mod", glslMod)},
		{Name: "degrees", Arity: 1, Fn: unary("degrees", func(f float64) float64 { return f * 180 / math.Pi })},
		{Name: "radians", Arity: 1, Fn: unary("radians", func(f float64) float64 { return f * math.Pi / 180 })},
		{Name: "min", Arity: 2, Fn: zip("min", func(x []float32) float32 { return min(x[0], x[1]) })},
		{Name: "max", Arity: 2, Fn: zip("max", func(x []float32) float32 { return max(x[0], x[1]) })},
		{Name: "mix", Arity: 3, Fn: zip("mix", func(x []float32) float32 { return x[0]*(1-x[2]) + x[1]*x[2] })},
		{Name: "smoothstep", Arity: 3, Fn: zip("smoothstep", smoothstep)},
		{Name: "step", Arity: 2, Fn: zip("step", step)},
		{Name: "clamp", Arity: 3, Fn: zip("clamp", func(x []float32) float32 { return min(max(x[0], x[1]), x[2]) })},
		{Name: "sqrt", Arity: 1, Fn: unary("sqrt", math.Sqrt)},
		{Name: "log", Arity: 1, Fn: unary("log", math.Log)},
		{Name: "pow", Arity: 2, Fn: zip("pow", func(x []float32) float32 {
			return float32(math.Pow(float64(x[0]), float64(x[1])))
		})},
	}
}
