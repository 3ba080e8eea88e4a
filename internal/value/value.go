// Package value defines the runtime value representation shared by the
// shadow operations and the evaluator, together with the promotion
// classifier that drives every promotion decision.
package value

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/x448/float16"

	"github.com/reprec/reprec/internal/target"
)

// Value is a sealed interface over the runtime value shapes this system
// distinguishes. Only the types in this package implement it.
type Value interface {
	value() // sealed
	String() string
}

// Int is a hardware integer.
type Int int64

func (Int) value() {}

func (v Int) String() string { return strconv.FormatInt(int64(v), 10) }

// Rational is an exact rational number. The wrapped *big.Rat is treated as
// immutable: arithmetic always allocates a fresh result.
type Rational struct {
	Rat *big.Rat
}

func (Rational) value() {}

func (v Rational) String() string { return v.Rat.RatString() }

// NewRational builds an exact rational from a numerator and denominator.
func NewRational(num, den int64) Rational {
	return Rational{Rat: big.NewRat(num, den)}
}

// Irrational is a named mathematical constant (pi, e, ...). It stays
// symbolic until an operation forces a width, at which point it is re-read
// from high-precision decimal text so BigFloat targets do not round through
// float64.
type Irrational struct {
	Name string
}

func (Irrational) value() {}

func (v Irrational) String() string { return v.Name }

// Float is a floating-point value of one of the target kinds.
//
// For the fixed-width kinds the value is held in F64, which represents
// Float16 and Float32 values exactly (binary16 and binary32 are subsets of
// binary64). For BigFloat the value lives in Big and F64 is unused.
type Float struct {
	Kind target.Kind
	F64  float64
	Big  *big.Float
}

func (Float) value() {}

func (v Float) String() string {
	switch v.Kind {
	case target.Float16:
		return "f16(" + trimFloat(strconv.FormatFloat(v.F64, 'g', -1, 32)) + ")"
	case target.Float32:
		return "f32(" + trimFloat(strconv.FormatFloat(v.F64, 'g', -1, 32)) + ")"
	case target.BigFloat:
		return "big(" + v.Big.Text('g', 25) + ")"
	default:
		return trimFloat(strconv.FormatFloat(v.F64, 'g', -1, 64))
	}
}

// trimFloat makes integral floats read as floats ("2" -> "2.0") so printed
// values are unambiguous about their category.
func trimFloat(s string) string {
	if strings.ContainsAny(s, ".eE") || strings.ContainsAny(s, "IN") { // Inf, NaN
		return s
	}
	return s + ".0"
}

// Complex is a complex number whose parts share a category.
type Complex struct {
	Re, Im Value
}

func (Complex) value() {}

func (v Complex) String() string {
	return "complex(" + v.Re.String() + ", " + v.Im.String() + ")"
}

// Array is a dense row-major array of values.
type Array struct {
	Dims  []int
	Elems []Value
}

func (Array) value() {}

func (v Array) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range v.Elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteByte(']')
	if len(v.Dims) > 1 {
		dims := make([]string, len(v.Dims))
		for i, d := range v.Dims {
			dims[i] = strconv.Itoa(d)
		}
		sb.WriteString("(" + strings.Join(dims, "x") + ")")
	}
	return sb.String()
}

// Len returns the total element count implied by Dims.
func (v Array) Len() int {
	n := 1
	for _, d := range v.Dims {
		n *= d
	}
	return n
}

// Str is a string value (file paths, user-defined literal text).
type Str string

func (Str) value() {}

func (v Str) String() string { return strconv.Quote(string(v)) }

// Bool is a boolean value.
type Bool bool

func (Bool) value() {}

func (v Bool) String() string { return strconv.FormatBool(bool(v)) }

// TypeVal is a first-class target type, produced when a fragment names a
// type explicitly (the override forms of the random and constructor
// families).
type TypeVal struct {
	T target.Type
}

func (TypeVal) value() {}

func (v TypeVal) String() string { return v.T.String() }

// NewFloat64 wraps a float64 as a native-width Float.
func NewFloat64(f float64) Float { return Float{Kind: target.Float64, F64: f} }

// NewFloat32 wraps a float32 as a Float32-kind Float.
func NewFloat32(f float32) Float { return Float{Kind: target.Float32, F64: float64(f)} }

// NewFloat16 wraps a half-precision value as a Float16-kind Float.
func NewFloat16(h float16.Float16) Float {
	return Float{Kind: target.Float16, F64: float64(h.Float32())}
}

// NewBigFloat wraps a big.Float as a BigFloat-kind Float.
func NewBigFloat(f *big.Float) Float { return Float{Kind: target.BigFloat, Big: f} }

// AsFloat64 returns the closest float64 reading of the value.
func (v Float) AsFloat64() float64 {
	if v.Kind == target.BigFloat {
		f, _ := v.Big.Float64()
		return f
	}
	return v.F64
}

// FromFloat64 rounds a float64 into the given target kind.
func FromFloat64(t target.Type, f float64) Float {
	switch t.Kind {
	case target.Float16:
		// Rounding through float32 first can mis-round near binary16
		// halfway points; go through the exact big.Float reading instead.
		// big.Float cannot hold NaN, and specials are width-independent.
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return NewFloat16(float16.Fromfloat32(float32(f)))
		}
		return FromBig(t, new(big.Float).SetFloat64(f))
	case target.Float32:
		return NewFloat32(float32(f))
	case target.BigFloat:
		return NewBigFloat(new(big.Float).SetPrec(t.SigBits()).SetFloat64(f))
	default:
		return NewFloat64(f)
	}
}

// FromBig rounds an arbitrary-precision float into the given target kind.
// Rounding happens once, directly at the destination width.
func FromBig(t target.Type, f *big.Float) Float {
	switch t.Kind {
	case target.Float16:
		r := new(big.Float).SetPrec(11).SetMode(big.ToNearestEven).Set(f)
		f32, _ := r.Float32()
		return NewFloat16(float16.Fromfloat32(f32))
	case target.Float32:
		f32, _ := f.Float32()
		return NewFloat32(f32)
	case target.BigFloat:
		return NewBigFloat(new(big.Float).SetPrec(t.SigBits()).SetMode(big.ToNearestEven).Set(f))
	default:
		f64, _ := f.Float64()
		return NewFloat64(f64)
	}
}

// ParseFloatLiteral parses decimal text directly at the destination width.
// The text is read once into an arbitrary-precision intermediate wide enough
// to be exact for the round trip, then rounded a single time to the target,
// avoiding the double rounding that parsing at the literal's native width
// first would introduce.
func ParseFloatLiteral(t target.Type, text string) (Float, error) {
	switch t.Kind {
	case target.Float64:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Float{}, err
		}
		return NewFloat64(f), nil
	case target.Float32:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return Float{}, err
		}
		return NewFloat32(float32(f)), nil
	case target.Float16, target.BigFloat:
		f, _, err := big.ParseFloat(text, 10, t.SigBits(), big.ToNearestEven)
		if err != nil {
			return Float{}, err
		}
		return FromBig(t, f), nil
	}
	return Float{}, fmt.Errorf("target %s cannot parse literals directly", t)
}
