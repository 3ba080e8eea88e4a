package shadow

import (
	"fmt"
	"math/big"

	"github.com/reprec/reprec/internal/backend"
	"github.com/reprec/reprec/internal/target"
	"github.com/reprec/reprec/internal/value"
)

// applyStatistical implements mean, median, std, variance, cov, and cor.
//
// Integer and irrational element types copy-convert to the target before
// delegating; floating element types delegate at their own width. Arrays of
// exact rationals keep the computation exact for every step the mathematics
// keeps rational — mean, median, variance, and covariance return exact
// rationals; std and cor leave the exact domain only at the final square
// root, which is taken at the target width.
func applyStatistical(t target.Type, name string, args []value.Value) (value.Value, error) {
	switch name {
	case "mean", "median", "std", "variance":
		if len(args) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
		}
		arr, err := wantArray(name, args[0])
		if err != nil {
			return nil, err
		}
		return statOne(t, name, arr)
	case "cov", "cor":
		if len(args) != 2 {
			return nil, fmt.Errorf("%s expects 2 arguments, got %d", name, len(args))
		}
		xs, err := wantArray(name, args[0])
		if err != nil {
			return nil, err
		}
		ys, err := wantArray(name, args[1])
		if err != nil {
			return nil, err
		}
		return statTwo(t, name, xs, ys)
	}
	return nil, fmt.Errorf("unknown statistical operation %q", name)
}

func wantArray(name string, v value.Value) (value.Array, error) {
	arr, ok := v.(value.Array)
	if !ok {
		return value.Array{}, fmt.Errorf("%s expects an array, got %s", name, v)
	}
	if len(arr.Elems) == 0 {
		return value.Array{}, fmt.Errorf("%s of empty array", name)
	}
	return arr, nil
}

func statOne(t target.Type, name string, arr value.Array) (value.Value, error) {
	c := value.Classify(arr)
	switch {
	case c.Base == value.ExactRational:
		return statOneExact(t, name, arr)
	case c.Promotable():
		p, err := value.Promote(t, arr)
		if err != nil {
			return nil, err
		}
		return statOneFloat(t, name, p.(value.Array))
	case c.Base == value.AlreadyFloating:
		return statOneFloat(resultTypeForArray(t, arr, c), name, arr)
	default:
		return nil, fmt.Errorf("%s of non-numeric array", name)
	}
}

func statOneExact(t target.Type, name string, arr value.Array) (value.Value, error) {
	rats, err := backend.Rats(arr)
	if err != nil {
		return nil, err
	}
	switch name {
	case "mean":
		r, err := backend.MeanRats(rats)
		if err != nil {
			return nil, err
		}
		return exactResult(r), nil
	case "median":
		r, err := backend.MedianRats(rats)
		if err != nil {
			return nil, err
		}
		return exactResult(r), nil
	case "variance":
		r, err := backend.VarianceRats(rats)
		if err != nil {
			return nil, err
		}
		return exactResult(r), nil
	case "std":
		r, err := backend.VarianceRats(rats)
		if err != nil {
			return nil, err
		}
		return sqrtRatAt(t, r), nil
	}
	return nil, fmt.Errorf("unknown statistical operation %q", name)
}

func statOneFloat(rt target.Type, name string, arr value.Array) (value.Value, error) {
	if rt.Kind == target.BigFloat {
		bigs, err := backend.Bigs(arr, rt.SigBits())
		if err != nil {
			return nil, err
		}
		var r *big.Float
		switch name {
		case "mean":
			r, err = backend.MeanBigs(bigs, rt.SigBits())
		case "median":
			r, err = backend.MedianBigs(bigs, rt.SigBits())
		case "variance":
			r, err = backend.VarianceBigs(bigs, rt.SigBits())
		case "std":
			r, err = backend.StdBigs(bigs, rt.SigBits())
		default:
			return nil, fmt.Errorf("unknown statistical operation %q", name)
		}
		if err != nil {
			return nil, err
		}
		return value.NewBigFloat(r), nil
	}

	xs, err := backend.Float64s(arr)
	if err != nil {
		return nil, err
	}
	var r float64
	switch name {
	case "mean":
		r = backend.MeanFloats(xs)
	case "median":
		r = backend.MedianFloats(xs)
	case "variance":
		r = backend.VarianceFloats(xs)
	case "std":
		r = backend.StdFloats(xs)
	default:
		return nil, fmt.Errorf("unknown statistical operation %q", name)
	}
	return value.FromFloat64(rt, r), nil
}

func statTwo(t target.Type, name string, xs, ys value.Array) (value.Value, error) {
	cx, cy := value.Classify(xs), value.Classify(ys)
	bothExact := cx.Exact() && cy.Exact()
	hasRational := cx.Base == value.ExactRational || cy.Base == value.ExactRational

	if bothExact && hasRational {
		return statTwoExact(t, name, xs, ys)
	}

	rx, ry := xs, ys
	rt := target.Of(target.Float64)
	switch {
	case cx.Promotable() && cy.Promotable():
		px, err := value.Promote(t, xs)
		if err != nil {
			return nil, err
		}
		py, err := value.Promote(t, ys)
		if err != nil {
			return nil, err
		}
		rx, ry = px.(value.Array), py.(value.Array)
		rt = t
	default:
		rt = widestOfTwo(t, xs, ys, cx, cy)
	}

	if rt.Kind == target.BigFloat {
		bx, err := backend.Bigs(rx, rt.SigBits())
		if err != nil {
			return nil, err
		}
		by, err := backend.Bigs(ry, rt.SigBits())
		if err != nil {
			return nil, err
		}
		var r *big.Float
		switch name {
		case "cov":
			r, err = backend.CovBigs(bx, by, rt.SigBits())
		case "cor":
			r, err = backend.CorBigs(bx, by, rt.SigBits())
		}
		if err != nil {
			return nil, err
		}
		return value.NewBigFloat(r), nil
	}

	fx, err := backend.Float64s(rx)
	if err != nil {
		return nil, err
	}
	fy, err := backend.Float64s(ry)
	if err != nil {
		return nil, err
	}
	if len(fx) != len(fy) {
		return nil, fmt.Errorf("%s of arrays with different lengths (%d, %d)", name, len(fx), len(fy))
	}
	var r float64
	switch name {
	case "cov":
		r = backend.CovFloats(fx, fy)
	case "cor":
		r = backend.CorFloats(fx, fy)
	}
	return value.FromFloat64(rt, r), nil
}

func statTwoExact(t target.Type, name string, xs, ys value.Array) (value.Value, error) {
	rx, err := backend.Rats(xs)
	if err != nil {
		return nil, err
	}
	ry, err := backend.Rats(ys)
	if err != nil {
		return nil, err
	}
	switch name {
	case "cov":
		r, err := backend.CovRats(rx, ry)
		if err != nil {
			return nil, err
		}
		return exactResult(r), nil
	case "cor":
		cov, err := backend.CovRats(rx, ry)
		if err != nil {
			return nil, err
		}
		vx, err := backend.VarianceRats(rx)
		if err != nil {
			return nil, err
		}
		vy, err := backend.VarianceRats(ry)
		if err != nil {
			return nil, err
		}
		denom := new(big.Rat).Mul(vx, vy)
		if denom.Sign() == 0 {
			return nil, fmt.Errorf("cor of a zero-variance array")
		}
		// cov^2 / (vx*vy) is exactly rational; only the square root
		// leaves the exact domain.
		ratio := new(big.Rat).Quo(new(big.Rat).Mul(cov, cov), denom)
		root := sqrtRatAt(t, ratio)
		if cov.Sign() < 0 {
			return backend.Negate(root)
		}
		return root, nil
	}
	return nil, fmt.Errorf("unknown statistical operation %q", name)
}

// applyLinalg implements det, norm, dot, and tr. None of these is an
// exactness-preserving family: promotable element types (including exact
// rationals) copy-convert to the target before delegating to the backend.
func applyLinalg(t target.Type, name string, args []value.Value) (value.Value, error) {
	switch name {
	case "det", "tr", "norm":
		if len(args) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
		}
		arr, err := wantArray(name, args[0])
		if err != nil {
			return nil, err
		}
		c := value.Classify(arr)
		rt := resultTypeForArray(t, arr, c)
		if c.Promotable() {
			p, err := value.Promote(t, arr)
			if err != nil {
				return nil, err
			}
			arr = p.(value.Array)
		}
		r, err := linalgOne(name, arr)
		if err != nil {
			return nil, err
		}
		return value.FromFloat64(rt, r), nil

	case "dot":
		if len(args) != 2 {
			return nil, fmt.Errorf("dot expects 2 arguments, got %d", len(args))
		}
		xs, err := wantArray(name, args[0])
		if err != nil {
			return nil, err
		}
		ys, err := wantArray(name, args[1])
		if err != nil {
			return nil, err
		}
		cx, cy := value.Classify(xs), value.Classify(ys)
		rt := widestOfTwo(t, xs, ys, cx, cy)
		if cx.Promotable() && cy.Promotable() {
			rt = t
		}
		if cx.Promotable() {
			p, err := value.Promote(t, xs)
			if err != nil {
				return nil, err
			}
			xs = p.(value.Array)
		}
		if cy.Promotable() {
			p, err := value.Promote(t, ys)
			if err != nil {
				return nil, err
			}
			ys = p.(value.Array)
		}
		fx, err := backend.Float64s(xs)
		if err != nil {
			return nil, err
		}
		fy, err := backend.Float64s(ys)
		if err != nil {
			return nil, err
		}
		r, err := backend.Dot(fx, fy)
		if err != nil {
			return nil, err
		}
		return value.FromFloat64(rt, r), nil
	}
	return nil, fmt.Errorf("unknown linear-algebra operation %q", name)
}

func linalgOne(name string, arr value.Array) (float64, error) {
	switch name {
	case "det":
		m, err := backend.Dense(arr)
		if err != nil {
			return 0, err
		}
		return backend.Det(m)
	case "tr":
		m, err := backend.Dense(arr)
		if err != nil {
			return 0, err
		}
		return backend.Trace(m)
	case "norm":
		if len(arr.Dims) == 2 {
			m, err := backend.Dense(arr)
			if err != nil {
				return 0, err
			}
			return backend.NormMat(m), nil
		}
		xs, err := backend.Float64s(arr)
		if err != nil {
			return 0, err
		}
		return backend.NormVec(xs), nil
	}
	return 0, fmt.Errorf("unknown linear-algebra operation %q", name)
}

// sqrtRatAt finishes an exact computation whose last step leaves the
// rational domain: the square root of a non-negative rational, computed
// with guard bits and rounded once to the target width.
func sqrtRatAt(t target.Type, r *big.Rat) value.Float {
	prec := t.SigBits() + 32
	x := new(big.Float).SetPrec(prec).SetRat(r)
	root := new(big.Float).SetPrec(prec).Sqrt(x)
	return value.FromBig(t, root)
}

// exactResult collapses a denominator-one rational back to an integer.
func exactResult(r *big.Rat) value.Value {
	if r.IsInt() && r.Num().IsInt64() {
		return value.Int(r.Num().Int64())
	}
	return value.Rational{Rat: r}
}

// widestOfTwo picks a result width for a mixed pair of arrays that will
// not promote: the widest floating element width present, defaulting to
// the native width.
func widestOfTwo(t target.Type, xs, ys value.Array, cx, cy value.Class) target.Type {
	kx, ky := target.F64, target.F64
	if !cx.Promotable() {
		kx = resultTypeForArray(t, xs, cx)
	}
	if !cy.Promotable() {
		ky = resultTypeForArray(t, ys, cy)
	}
	if kx.Kind == target.BigFloat {
		return kx
	}
	if ky.Kind == target.BigFloat {
		return ky
	}
	return target.Of(backend.WiderKind(kx.Kind, ky.Kind))
}
