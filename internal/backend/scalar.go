// Package backend is the facade over the numeric libraries every shadow
// operation ultimately delegates to: stdlib math for fixed-width scalars,
// math/big plus github.com/ALTree/bigfloat for arbitrary precision,
// gonum for statistics and linear algebra, and math/rand for generators.
//
// The backend adds no promotion decisions of its own; it computes at the
// width of the values it is handed and reports the errors the underlying
// libraries report.
package backend

import (
	"fmt"
	"math"
	"math/big"

	"github.com/ALTree/bigfloat"

	"github.com/reprec/reprec/internal/target"
	"github.com/reprec/reprec/internal/value"
)

var unary64 = map[string]func(float64) float64{
	"sqrt":  math.Sqrt,
	"cbrt":  math.Cbrt,
	"exp":   math.Exp,
	"expm1": math.Expm1,
	"log":   math.Log,
	"log2":  math.Log2,
	"log10": math.Log10,
	"log1p": math.Log1p,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,
	"gamma": math.Gamma,
	"erf":   math.Erf,
	"erfc":  math.Erfc,
}

var binary64 = map[string]func(float64, float64) float64{
	"atan2": math.Atan2,
	"hypot": math.Hypot,
}

// IsBinaryElementary reports whether name is a two-argument elementary
// function.
func IsBinaryElementary(name string) bool {
	_, ok := binary64[name]
	return ok
}

// Elementary1 applies a one-argument elementary function at the width of x.
// Fixed-width values compute through float64 and round back to their own
// kind; BigFloat values use arbitrary-precision routines where available.
func Elementary1(name string, x value.Float) (value.Float, error) {
	if x.Kind == target.BigFloat {
		return elementary1Big(name, x)
	}
	fn, ok := unary64[name]
	if !ok {
		return value.Float{}, fmt.Errorf("unknown elementary function %q", name)
	}
	return value.FromFloat64(target.Of(x.Kind), fn(x.F64)), nil
}

// Elementary2 applies a two-argument elementary function. The result width
// is the wider of the two argument widths.
func Elementary2(name string, x, y value.Float) (value.Float, error) {
	fn, ok := binary64[name]
	if !ok {
		return value.Float{}, fmt.Errorf("unknown elementary function %q", name)
	}
	k := WiderKind(x.Kind, y.Kind)
	if k == target.BigFloat {
		// No arbitrary-precision atan2/hypot in the backend; compute
		// at float64 and lift.
		r := fn(x.AsFloat64(), y.AsFloat64())
		return value.FromFloat64(bigOf(x, y), r), nil
	}
	return value.FromFloat64(target.Of(k), fn(x.AsFloat64(), y.AsFloat64())), nil
}

// elementary1Big evaluates at the argument's full precision where the
// arbitrary-precision backend has a routine (sqrt, exp, log family, via
// math/big and ALTree/bigfloat); the remaining functions compute at float64
// and lift, which is the backend's documented precision ceiling for them.
func elementary1Big(name string, x value.Float) (value.Float, error) {
	prec := x.Big.Prec()
	switch name {
	case "sqrt":
		if x.Big.Sign() < 0 {
			return value.Float{}, fmt.Errorf("sqrt of negative number %s", x.Big.Text('g', 10))
		}
		return value.NewBigFloat(new(big.Float).SetPrec(prec).Sqrt(x.Big)), nil
	case "exp":
		return value.NewBigFloat(bigfloat.Exp(x.Big)), nil
	case "log":
		if x.Big.Sign() <= 0 {
			return value.Float{}, fmt.Errorf("log of non-positive number %s", x.Big.Text('g', 10))
		}
		return value.NewBigFloat(bigfloat.Log(x.Big)), nil
	case "log2":
		return bigLogBase(x, big.NewFloat(2).SetPrec(prec))
	case "log10":
		return bigLogBase(x, big.NewFloat(10).SetPrec(prec))
	}
	fn, ok := unary64[name]
	if !ok {
		return value.Float{}, fmt.Errorf("unknown elementary function %q", name)
	}
	f64, _ := x.Big.Float64()
	r := new(big.Float).SetPrec(prec).SetFloat64(fn(f64))
	return value.NewBigFloat(r), nil
}

func bigLogBase(x value.Float, base *big.Float) (value.Float, error) {
	if x.Big.Sign() <= 0 {
		return value.Float{}, fmt.Errorf("log of non-positive number %s", x.Big.Text('g', 10))
	}
	num := bigfloat.Log(x.Big)
	den := bigfloat.Log(base)
	return value.NewBigFloat(new(big.Float).SetPrec(x.Big.Prec()).Quo(num, den)), nil
}

// WiderKind returns the wider of two float kinds.
func WiderKind(a, b target.Kind) target.Kind {
	if a == target.BigFloat || b == target.BigFloat {
		return target.BigFloat
	}
	if a == target.Float64 || b == target.Float64 {
		return target.Float64
	}
	if a == target.Float32 || b == target.Float32 {
		return target.Float32
	}
	return target.Float16
}

// bigOf picks a BigFloat target wide enough for both operands.
func bigOf(a, b value.Float) target.Type {
	prec := uint(53)
	if a.Kind == target.BigFloat && a.Big.Prec() > prec {
		prec = a.Big.Prec()
	}
	if b.Kind == target.BigFloat && b.Big.Prec() > prec {
		prec = b.Big.Prec()
	}
	return target.Type{Kind: target.BigFloat, Name: "big", Prec: prec}
}
