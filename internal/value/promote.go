package value

import (
	"fmt"
	"math"
	"math/big"

	"github.com/reprec/reprec/internal/target"
)

// Named constants the classifier treats as IrrationalConstant. Each carries
// 80 significant decimal digits so promotion to a BigFloat target rounds
// once, at the target's width, instead of through float64.
var constants = map[string]string{
	"pi":         "3.1415926535897932384626433832795028841971693993751058209749445923078164062862090",
	"e":          "2.7182818284590452353602874713526624977572470936999595749669676277240766303535476",
	"eulergamma": "0.57721566490153286060651209008240243104215933593992359880576723488486772677766467",
	"golden":     "1.6180339887498948482045868343656381177203091798057628621354486227052604628189024",
	"catalan":    "0.91596559417721901505460351493238411077414937428167213426649811962176301977625477",
}

// IsConstant reports whether name is a recognized irrational constant.
func IsConstant(name string) bool {
	_, ok := constants[name]
	return ok
}

// ConstantFloat64 returns the float64 reading of a named constant.
func ConstantFloat64(name string) (float64, bool) {
	switch name {
	case "pi":
		return math.Pi, true
	case "e":
		return math.E, true
	}
	text, ok := constants[name]
	if !ok {
		return 0, false
	}
	f, _, err := big.ParseFloat(text, 10, 53, big.ToNearestEven)
	if err != nil {
		return 0, false
	}
	f64, _ := f.Float64()
	return f64, true
}

// constantBig reads a named constant at the given significand width.
func constantBig(name string, prec uint) (*big.Float, error) {
	text, ok := constants[name]
	if !ok {
		return nil, fmt.Errorf("unknown constant %q", name)
	}
	f, _, err := big.ParseFloat(text, 10, prec, big.ToNearestEven)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Promote converts a value to the target type according to its
// classification. Integers, rationals, and irrational constants convert;
// complex values convert both parts together; arrays copy-convert every
// element. Floating and opaque values return unchanged: a value that
// already chose a width is never re-rounded.
func Promote(t target.Type, v Value) (Value, error) {
	if t.Kind == target.UserDefined {
		return nil, fmt.Errorf("cannot promote values to user-defined target %s", t)
	}
	switch val := v.(type) {
	case Int:
		f := new(big.Float).SetPrec(t.SigBits()).SetMode(big.ToNearestEven).SetInt64(int64(val))
		return FromBig(t, f), nil
	case Rational:
		f := new(big.Float).SetPrec(t.SigBits()).SetMode(big.ToNearestEven).SetRat(val.Rat)
		return FromBig(t, f), nil
	case Irrational:
		f, err := constantBig(val.Name, t.SigBits())
		if err != nil {
			return nil, err
		}
		return FromBig(t, f), nil
	case Complex:
		re, err := Promote(t, val.Re)
		if err != nil {
			return nil, err
		}
		im, err := Promote(t, val.Im)
		if err != nil {
			return nil, err
		}
		return Complex{Re: re, Im: im}, nil
	case Array:
		elems := make([]Value, len(val.Elems))
		for i, e := range val.Elems {
			p, err := Promote(t, e)
			if err != nil {
				return nil, err
			}
			elems[i] = p
		}
		return Array{Dims: append([]int(nil), val.Dims...), Elems: elems}, nil
	default:
		return v, nil
	}
}
