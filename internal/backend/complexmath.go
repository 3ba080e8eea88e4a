package backend

import (
	"fmt"
	"math/big"
	"math/cmplx"

	"github.com/reprec/reprec/internal/target"
	"github.com/reprec/reprec/internal/value"
)

// Abs is the magnitude of a numeric value at its own width. Exact inputs
// stay exact; complex inputs compute the Euclidean magnitude at the parts'
// width.
func Abs(v value.Value) (value.Value, error) {
	switch val := v.(type) {
	case value.Int:
		if val < 0 {
			return -val, nil
		}
		return val, nil
	case value.Rational:
		return value.Rational{Rat: new(big.Rat).Abs(val.Rat)}, nil
	case value.Float:
		if val.Kind == target.BigFloat {
			return value.NewBigFloat(new(big.Float).Abs(val.Big)), nil
		}
		if val.F64 < 0 {
			return value.Float{Kind: val.Kind, F64: -val.F64}, nil
		}
		return val, nil
	case value.Irrational:
		f, ok := value.ConstantFloat64(val.Name)
		if !ok {
			return nil, fmt.Errorf("unknown constant %q", val.Name)
		}
		if f < 0 {
			f = -f
		}
		return value.NewFloat64(f), nil
	case value.Complex:
		k := floatKindFor(val.Re, val.Im)
		re, err := scalarToFloat(val.Re, k)
		if err != nil {
			return nil, err
		}
		im, err := scalarToFloat(val.Im, k)
		if err != nil {
			return nil, err
		}
		return Elementary2("hypot", re, im)
	default:
		return nil, fmt.Errorf("abs of non-numeric value %s", v)
	}
}

// Angle is the phase of a numeric value: atan2(imag, real), zero or pi for
// reals, at the operand's float width.
func Angle(v value.Value) (value.Value, error) {
	if c, ok := v.(value.Complex); ok {
		k := floatKindFor(c.Re, c.Im)
		re, err := scalarToFloat(c.Re, k)
		if err != nil {
			return nil, err
		}
		im, err := scalarToFloat(c.Im, k)
		if err != nil {
			return nil, err
		}
		return Elementary2("atan2", im, re)
	}
	k := floatKindFor(v, v)
	x, err := scalarToFloat(v, k)
	if err != nil {
		return nil, err
	}
	zero := value.Float{Kind: x.Kind}
	if x.Kind == target.BigFloat {
		zero = value.NewBigFloat(new(big.Float).SetPrec(x.Big.Prec()))
	}
	return Elementary2("atan2", zero, x)
}

var unaryCmplx = map[string]func(complex128) complex128{
	"sqrt":  cmplx.Sqrt,
	"exp":   cmplx.Exp,
	"log":   cmplx.Log,
	"log10": cmplx.Log10,
	"sin":   cmplx.Sin,
	"cos":   cmplx.Cos,
	"tan":   cmplx.Tan,
	"asin":  cmplx.Asin,
	"acos":  cmplx.Acos,
	"atan":  cmplx.Atan,
	"sinh":  cmplx.Sinh,
	"cosh":  cmplx.Cosh,
	"tanh":  cmplx.Tanh,
}

// CElementary1 applies a one-argument elementary function to a complex
// value. Parts compute at float64 and round back to the parts' width.
func CElementary1(name string, v value.Complex) (value.Value, error) {
	fn, ok := unaryCmplx[name]
	if !ok {
		return nil, fmt.Errorf("function %q is not defined on complex values", name)
	}
	k := floatKindFor(v.Re, v.Im)
	if k == target.BigFloat {
		k = target.Float64 // no arbitrary-precision complex backend
	}
	r := fn(complex(scalarFloat64(v.Re), scalarFloat64(v.Im)))
	t := target.Of(k)
	return value.Complex{
		Re: value.FromFloat64(t, real(r)),
		Im: value.FromFloat64(t, imag(r)),
	}, nil
}
