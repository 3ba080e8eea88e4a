package backend

import (
	"fmt"
	"math"
	"math/big"

	"github.com/ALTree/bigfloat"

	"github.com/reprec/reprec/internal/target"
	"github.com/reprec/reprec/internal/value"
)

// ScalarOp applies a binary numeric operator at the natural width of its
// operands. Exact operands take exact paths; floating operands compute at
// the wider operand's width; an irrational that survived the promotion
// policy reads at the native default width (float64).
func ScalarOp(op string, a, b value.Value) (value.Value, error) {
	if ac, ok := a.(value.Complex); ok {
		return complexOp(op, ac, liftComplex(b))
	}
	if bc, ok := b.(value.Complex); ok {
		return complexOp(op, liftComplex(a), bc)
	}

	ca, cb := value.Classify(a), value.Classify(b)
	if ca.Exact() && cb.Exact() && !ca.Array && !cb.Array {
		return exactOp(op, a, b)
	}

	fa, err := scalarToFloat(a, floatKindFor(a, b))
	if err != nil {
		return nil, err
	}
	fb, err := scalarToFloat(b, floatKindFor(a, b))
	if err != nil {
		return nil, err
	}
	return FloatOp(op, fa, fb)
}

// exactOp applies an operator to two exact operands. Division and
// exponentiation can leave the exact domain; everything else stays in it.
func exactOp(op string, a, b value.Value) (value.Value, error) {
	ai, aIsInt := a.(value.Int)
	bi, bIsInt := b.(value.Int)

	if aIsInt && bIsInt {
		switch op {
		case "+":
			return value.Int(int64(ai) + int64(bi)), nil
		case "-":
			return value.Int(int64(ai) - int64(bi)), nil
		case "*":
			return value.Int(int64(ai) * int64(bi)), nil
		case "/":
			// Integer division defaults to the native float width.
			return value.NewFloat64(float64(ai) / float64(bi)), nil
		case "\\":
			return value.NewFloat64(float64(bi) / float64(ai)), nil
		case "^":
			return PowInt(a, int64(bi))
		}
		return nil, fmt.Errorf("unknown operator %q", op)
	}

	ra, rb := asRat(a), asRat(b)
	switch op {
	case "+":
		return ratValue(new(big.Rat).Add(ra, rb)), nil
	case "-":
		return ratValue(new(big.Rat).Sub(ra, rb)), nil
	case "*":
		return ratValue(new(big.Rat).Mul(ra, rb)), nil
	case "/":
		if rb.Sign() == 0 {
			return nil, fmt.Errorf("rational division by zero")
		}
		return ratValue(new(big.Rat).Quo(ra, rb)), nil
	case "\\":
		if ra.Sign() == 0 {
			return nil, fmt.Errorf("rational division by zero")
		}
		return ratValue(new(big.Rat).Quo(rb, ra)), nil
	case "^":
		if bIsInt {
			return PowInt(a, int64(bi))
		}
		// Rational exponent leaves the exact domain.
		fa, _ := ra.Float64()
		fb, _ := rb.Float64()
		return value.NewFloat64(math.Pow(fa, fb)), nil
	}
	return nil, fmt.Errorf("unknown operator %q", op)
}

// PowInt raises a value to a compile-time-known integer exponent, staying
// exact where the base is exact.
func PowInt(base value.Value, k int64) (value.Value, error) {
	switch v := base.(type) {
	case value.Int:
		if k < 0 {
			return nil, fmt.Errorf("cannot raise integer %d to negative power %d", int64(v), k)
		}
		return value.Int(ipow(int64(v), k)), nil
	case value.Rational:
		num, den := ratPow(v.Rat, k)
		if den == nil {
			return nil, fmt.Errorf("zero rational raised to negative power")
		}
		r := new(big.Rat).SetFrac(num, den)
		return value.Rational{Rat: r}, nil
	case value.Float:
		return floatPowInt(v, k)
	case value.Complex:
		if k < 0 {
			return nil, fmt.Errorf("complex literal power with negative exponent is not supported")
		}
		acc := value.Value(value.Complex{Re: value.Int(1), Im: value.Int(0)})
		for i := int64(0); i < k; i++ {
			var err error
			acc, err = ScalarOp("*", acc, v)
			if err != nil {
				return nil, err
			}
		}
		return acc, nil
	default:
		return nil, fmt.Errorf("cannot raise %s to an integer power", base)
	}
}

// ipow is wrap-around integer exponentiation by squaring, matching hardware
// integer semantics.
func ipow(base, k int64) int64 {
	result := int64(1)
	for k > 0 {
		if k&1 == 1 {
			result *= base
		}
		base *= base
		k >>= 1
	}
	return result
}

func ratPow(r *big.Rat, k int64) (num, den *big.Int) {
	n := new(big.Int).Set(r.Num())
	d := new(big.Int).Set(r.Denom())
	if k < 0 {
		if r.Sign() == 0 {
			return nil, nil
		}
		n, d = d, n
		k = -k
	}
	e := big.NewInt(k)
	return n.Exp(n, e, nil), d.Exp(d, e, nil)
}

func floatPowInt(v value.Float, k int64) (value.Value, error) {
	if v.Kind == target.BigFloat {
		return value.NewBigFloat(bigPowInt(v.Big, k)), nil
	}
	r := math.Pow(v.F64, float64(k))
	return value.FromFloat64(target.Of(v.Kind), r), nil
}

// bigPowInt is exponentiation by squaring on big.Float, exact up to the
// operand's precision for any integer exponent.
func bigPowInt(x *big.Float, k int64) *big.Float {
	prec := x.Prec()
	neg := k < 0
	if neg {
		k = -k
	}
	result := new(big.Float).SetPrec(prec).SetInt64(1)
	base := new(big.Float).SetPrec(prec).Set(x)
	for k > 0 {
		if k&1 == 1 {
			result.Mul(result, base)
		}
		base.Mul(base, base)
		k >>= 1
	}
	if neg {
		one := new(big.Float).SetPrec(prec).SetInt64(1)
		result = one.Quo(one, result)
	}
	return result
}

// FloatOp applies an operator to two floats at the wider operand's width.
func FloatOp(op string, a, b value.Float) (value.Float, error) {
	k := WiderKind(a.Kind, b.Kind)
	if k == target.BigFloat {
		return bigFloatOp(op, a, b)
	}
	t := target.Of(k)
	x, y := a.AsFloat64(), b.AsFloat64()
	switch op {
	case "+":
		return value.FromFloat64(t, x+y), nil
	case "-":
		return value.FromFloat64(t, x-y), nil
	case "*":
		return value.FromFloat64(t, x*y), nil
	case "/":
		return value.FromFloat64(t, x/y), nil
	case "\\":
		return value.FromFloat64(t, y/x), nil
	case "^":
		return value.FromFloat64(t, math.Pow(x, y)), nil
	}
	return value.Float{}, fmt.Errorf("unknown operator %q", op)
}

func bigFloatOp(op string, a, b value.Float) (value.Float, error) {
	t := bigOf(a, b)
	x, err := scalarToFloat(a, target.BigFloat)
	if err != nil {
		return value.Float{}, err
	}
	y, err := scalarToFloat(b, target.BigFloat)
	if err != nil {
		return value.Float{}, err
	}
	xb := new(big.Float).SetPrec(t.Prec).Set(x.Big)
	yb := new(big.Float).SetPrec(t.Prec).Set(y.Big)
	out := new(big.Float).SetPrec(t.Prec)
	switch op {
	case "+":
		out.Add(xb, yb)
	case "-":
		out.Sub(xb, yb)
	case "*":
		out.Mul(xb, yb)
	case "/":
		if yb.Sign() == 0 && xb.Sign() == 0 {
			return value.Float{}, fmt.Errorf("big float 0/0")
		}
		out.Quo(xb, yb)
	case "\\":
		if xb.Sign() == 0 && yb.Sign() == 0 {
			return value.Float{}, fmt.Errorf("big float 0/0")
		}
		out.Quo(yb, xb)
	case "^":
		if yb.IsInt() {
			k, _ := yb.Int64()
			out = bigPowInt(xb, k)
		} else {
			out = bigfloat.Pow(xb, yb)
		}
	default:
		return value.Float{}, fmt.Errorf("unknown operator %q", op)
	}
	return value.NewBigFloat(out), nil
}

// Negate returns the arithmetic negation of a numeric value at its own
// width.
func Negate(v value.Value) (value.Value, error) {
	switch val := v.(type) {
	case value.Int:
		return value.Int(-int64(val)), nil
	case value.Rational:
		return ratValue(new(big.Rat).Neg(val.Rat)), nil
	case value.Float:
		if val.Kind == target.BigFloat {
			return value.NewBigFloat(new(big.Float).Neg(val.Big)), nil
		}
		return value.Float{Kind: val.Kind, F64: -val.F64}, nil
	case value.Complex:
		re, err := Negate(val.Re)
		if err != nil {
			return nil, err
		}
		im, err := Negate(val.Im)
		if err != nil {
			return nil, err
		}
		return value.Complex{Re: re, Im: im}, nil
	case value.Irrational:
		f, ok := value.ConstantFloat64(val.Name)
		if !ok {
			return nil, fmt.Errorf("unknown constant %q", val.Name)
		}
		return value.NewFloat64(-f), nil
	case value.Array:
		elems := make([]value.Value, len(val.Elems))
		for i, e := range val.Elems {
			n, err := Negate(e)
			if err != nil {
				return nil, err
			}
			elems[i] = n
		}
		return value.Array{Dims: append([]int(nil), val.Dims...), Elems: elems}, nil
	default:
		return nil, fmt.Errorf("cannot negate %s", v)
	}
}

// ExactDiv divides two values on the exact rational path. Both operands
// must be integer, rational, or complex built from those.
func ExactDiv(a, b value.Value) (value.Value, error) {
	if isExactComplex(a) || isExactComplex(b) {
		return complexExactDiv(liftComplex(a), liftComplex(b))
	}
	ra, rb := asRat(a), asRat(b)
	if rb.Sign() == 0 {
		return nil, fmt.Errorf("rational division by zero")
	}
	return ratValue(new(big.Rat).Quo(ra, rb)), nil
}

// ExactInv returns the exact reciprocal of an integer, rational, or complex
// built from those.
func ExactInv(v value.Value) (value.Value, error) {
	one := value.Value(value.Int(1))
	return ExactDiv(one, v)
}

func isExactComplex(v value.Value) bool {
	c := value.Classify(v)
	return c.Complex && c.Exact()
}

// complexExactDiv divides complex rationals by conjugate multiplication,
// staying exact throughout.
func complexExactDiv(a, b value.Complex) (value.Value, error) {
	bre, bim := asRat(b.Re), asRat(b.Im)
	den := new(big.Rat).Add(new(big.Rat).Mul(bre, bre), new(big.Rat).Mul(bim, bim))
	if den.Sign() == 0 {
		return nil, fmt.Errorf("complex division by zero")
	}
	are, aim := asRat(a.Re), asRat(a.Im)
	reNum := new(big.Rat).Add(new(big.Rat).Mul(are, bre), new(big.Rat).Mul(aim, bim))
	imNum := new(big.Rat).Sub(new(big.Rat).Mul(aim, bre), new(big.Rat).Mul(are, bim))
	return value.Complex{
		Re: ratValue(reNum.Quo(reNum, den)),
		Im: ratValue(imNum.Quo(imNum, new(big.Rat).Set(den))),
	}, nil
}

func complexOp(op string, a, b value.Complex) (value.Value, error) {
	switch op {
	case "+", "-":
		re, err := ScalarOp(op, a.Re, b.Re)
		if err != nil {
			return nil, err
		}
		im, err := ScalarOp(op, a.Im, b.Im)
		if err != nil {
			return nil, err
		}
		return value.Complex{Re: re, Im: im}, nil
	case "*":
		ac, bd, err := scalarProducts(a.Re, b.Re, a.Im, b.Im)
		if err != nil {
			return nil, err
		}
		ad, bc, err := scalarProducts(a.Re, b.Im, a.Im, b.Re)
		if err != nil {
			return nil, err
		}
		re, err := ScalarOp("-", ac, bd)
		if err != nil {
			return nil, err
		}
		im, err := ScalarOp("+", ad, bc)
		if err != nil {
			return nil, err
		}
		return value.Complex{Re: re, Im: im}, nil
	case "/":
		if isExactComplex(a) && isExactComplex(b) {
			return complexExactDiv(a, b)
		}
		x1, y1 := toC128(a)
		x2, y2 := toC128(b)
		q := complex(x1, y1) / complex(x2, y2)
		return value.Complex{Re: value.NewFloat64(real(q)), Im: value.NewFloat64(imag(q))}, nil
	case "\\":
		return complexOp("/", b, a)
	default:
		return nil, fmt.Errorf("operator %q is not defined on complex values", op)
	}
}

func scalarProducts(a, b, c, d value.Value) (value.Value, value.Value, error) {
	p1, err := ScalarOp("*", a, b)
	if err != nil {
		return nil, nil, err
	}
	p2, err := ScalarOp("*", c, d)
	if err != nil {
		return nil, nil, err
	}
	return p1, p2, nil
}

func liftComplex(v value.Value) value.Complex {
	if c, ok := v.(value.Complex); ok {
		return c
	}
	return value.Complex{Re: v, Im: value.Int(0)}
}

func toC128(c value.Complex) (float64, float64) {
	return scalarFloat64(c.Re), scalarFloat64(c.Im)
}

func scalarFloat64(v value.Value) float64 {
	switch val := v.(type) {
	case value.Int:
		return float64(val)
	case value.Rational:
		f, _ := val.Rat.Float64()
		return f
	case value.Float:
		return val.AsFloat64()
	case value.Irrational:
		f, _ := value.ConstantFloat64(val.Name)
		return f
	default:
		return math.NaN()
	}
}

// asRat reads an exact scalar as a big.Rat.
func asRat(v value.Value) *big.Rat {
	switch val := v.(type) {
	case value.Int:
		return new(big.Rat).SetInt64(int64(val))
	case value.Rational:
		return new(big.Rat).Set(val.Rat)
	default:
		return new(big.Rat)
	}
}

// ratValue wraps a big.Rat, collapsing denominator-one results back to
// hardware integers when they fit.
func ratValue(r *big.Rat) value.Value {
	if r.IsInt() && r.Num().IsInt64() {
		return value.Int(r.Num().Int64())
	}
	return value.Rational{Rat: r}
}

// floatKindFor picks the compute width for a mixed scalar pair: the widest
// floating operand, or the native default when neither side is floating.
func floatKindFor(a, b value.Value) target.Kind {
	k := target.Kind(-1)
	if fa, ok := a.(value.Float); ok {
		k = fa.Kind
	}
	if fb, ok := b.(value.Float); ok {
		if k == target.Kind(-1) {
			k = fb.Kind
		} else {
			k = WiderKind(k, fb.Kind)
		}
	}
	if k == target.Kind(-1) {
		return target.Float64
	}
	return k
}

// scalarToFloat reads a scalar at the given float kind.
func scalarToFloat(v value.Value, k target.Kind) (value.Float, error) {
	t := target.Of(k)
	switch val := v.(type) {
	case value.Float:
		if val.Kind == k {
			return val, nil
		}
		if k == target.BigFloat {
			return value.NewBigFloat(new(big.Float).SetPrec(target.DefaultBigPrec).SetFloat64(val.AsFloat64())), nil
		}
		return val, nil // narrower operand reads exactly at the wider width
	case value.Int, value.Rational, value.Irrational:
		p, err := value.Promote(t, v)
		if err != nil {
			return value.Float{}, err
		}
		return p.(value.Float), nil
	default:
		return value.Float{}, fmt.Errorf("not a numeric scalar: %s", v)
	}
}
