package backend

import (
	"fmt"
	"math/big"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Fixed-width statistics delegate to gonum.

// MeanFloats is the arithmetic mean.
func MeanFloats(xs []float64) float64 { return stat.Mean(xs, nil) }

// MedianFloats is the middle order statistic, averaging the two middle
// elements for even lengths.
func MedianFloats(xs []float64) float64 {
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// VarianceFloats is the unbiased (n-1) sample variance.
func VarianceFloats(xs []float64) float64 { return stat.Variance(xs, nil) }

// StdFloats is the sample standard deviation.
func StdFloats(xs []float64) float64 { return stat.StdDev(xs, nil) }

// CovFloats is the unbiased sample covariance.
func CovFloats(xs, ys []float64) float64 { return stat.Covariance(xs, ys, nil) }

// CorFloats is the Pearson correlation.
func CorFloats(xs, ys []float64) float64 { return stat.Correlation(xs, ys, nil) }

// Exact statistics over rationals. These stay in big.Rat for every step the
// mathematics keeps rational; only a final square root (std, cor) leaves
// the exact domain, at the native float64 width.

// MeanRats is the exact rational mean.
func MeanRats(xs []*big.Rat) (*big.Rat, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("mean of empty array")
	}
	sum := new(big.Rat)
	for _, x := range xs {
		sum.Add(sum, x)
	}
	return sum.Quo(sum, new(big.Rat).SetInt64(int64(len(xs)))), nil
}

// MedianRats is the exact rational median.
func MedianRats(xs []*big.Rat) (*big.Rat, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("median of empty array")
	}
	s := make([]*big.Rat, len(xs))
	copy(s, xs)
	sort.Slice(s, func(i, j int) bool { return s[i].Cmp(s[j]) < 0 })
	n := len(s)
	if n%2 == 1 {
		return new(big.Rat).Set(s[n/2]), nil
	}
	mid := new(big.Rat).Add(s[n/2-1], s[n/2])
	return mid.Quo(mid, big.NewRat(2, 1)), nil
}

// VarianceRats is the exact unbiased sample variance.
func VarianceRats(xs []*big.Rat) (*big.Rat, error) {
	if len(xs) < 2 {
		return nil, fmt.Errorf("variance needs at least two elements")
	}
	mean, err := MeanRats(xs)
	if err != nil {
		return nil, err
	}
	sum := new(big.Rat)
	for _, x := range xs {
		d := new(big.Rat).Sub(x, mean)
		sum.Add(sum, d.Mul(d, new(big.Rat).Set(d)))
	}
	return sum.Quo(sum, new(big.Rat).SetInt64(int64(len(xs)-1))), nil
}

// CovRats is the exact unbiased sample covariance.
func CovRats(xs, ys []*big.Rat) (*big.Rat, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("covariance of arrays with different lengths (%d, %d)", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("covariance needs at least two elements")
	}
	mx, err := MeanRats(xs)
	if err != nil {
		return nil, err
	}
	my, err := MeanRats(ys)
	if err != nil {
		return nil, err
	}
	sum := new(big.Rat)
	for i := range xs {
		dx := new(big.Rat).Sub(xs[i], mx)
		dy := new(big.Rat).Sub(ys[i], my)
		sum.Add(sum, dx.Mul(dx, dy))
	}
	return sum.Quo(sum, new(big.Rat).SetInt64(int64(len(xs)-1))), nil
}

// Arbitrary-precision statistics, used when the target is BigFloat.

// MeanBigs is the mean at the operands' precision.
func MeanBigs(xs []*big.Float, prec uint) (*big.Float, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("mean of empty array")
	}
	sum := new(big.Float).SetPrec(prec)
	for _, x := range xs {
		sum.Add(sum, x)
	}
	return sum.Quo(sum, new(big.Float).SetPrec(prec).SetInt64(int64(len(xs)))), nil
}

// MedianBigs is the median at the operands' precision.
func MedianBigs(xs []*big.Float, prec uint) (*big.Float, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("median of empty array")
	}
	s := make([]*big.Float, len(xs))
	copy(s, xs)
	sort.Slice(s, func(i, j int) bool { return s[i].Cmp(s[j]) < 0 })
	n := len(s)
	if n%2 == 1 {
		return new(big.Float).SetPrec(prec).Set(s[n/2]), nil
	}
	mid := new(big.Float).SetPrec(prec).Add(s[n/2-1], s[n/2])
	return mid.Quo(mid, new(big.Float).SetPrec(prec).SetInt64(2)), nil
}

// VarianceBigs is the unbiased sample variance at the operands' precision.
func VarianceBigs(xs []*big.Float, prec uint) (*big.Float, error) {
	if len(xs) < 2 {
		return nil, fmt.Errorf("variance needs at least two elements")
	}
	mean, err := MeanBigs(xs, prec)
	if err != nil {
		return nil, err
	}
	sum := new(big.Float).SetPrec(prec)
	for _, x := range xs {
		d := new(big.Float).SetPrec(prec).Sub(x, mean)
		sum.Add(sum, d.Mul(d, new(big.Float).SetPrec(prec).Set(d)))
	}
	return sum.Quo(sum, new(big.Float).SetPrec(prec).SetInt64(int64(len(xs)-1))), nil
}

// StdBigs is the sample standard deviation at the operands' precision.
func StdBigs(xs []*big.Float, prec uint) (*big.Float, error) {
	v, err := VarianceBigs(xs, prec)
	if err != nil {
		return nil, err
	}
	return new(big.Float).SetPrec(prec).Sqrt(v), nil
}

// CovBigs is the unbiased sample covariance at the operands' precision.
func CovBigs(xs, ys []*big.Float, prec uint) (*big.Float, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("covariance of arrays with different lengths (%d, %d)", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("covariance needs at least two elements")
	}
	mx, err := MeanBigs(xs, prec)
	if err != nil {
		return nil, err
	}
	my, err := MeanBigs(ys, prec)
	if err != nil {
		return nil, err
	}
	sum := new(big.Float).SetPrec(prec)
	for i := range xs {
		dx := new(big.Float).SetPrec(prec).Sub(xs[i], mx)
		dy := new(big.Float).SetPrec(prec).Sub(ys[i], my)
		sum.Add(sum, dx.Mul(dx, dy))
	}
	return sum.Quo(sum, new(big.Float).SetPrec(prec).SetInt64(int64(len(xs)-1))), nil
}

// CorBigs is the Pearson correlation at the operands' precision.
func CorBigs(xs, ys []*big.Float, prec uint) (*big.Float, error) {
	cov, err := CovBigs(xs, ys, prec)
	if err != nil {
		return nil, err
	}
	vx, err := VarianceBigs(xs, prec)
	if err != nil {
		return nil, err
	}
	vy, err := VarianceBigs(ys, prec)
	if err != nil {
		return nil, err
	}
	den := new(big.Float).SetPrec(prec).Mul(vx, vy)
	den.Sqrt(den)
	if den.Sign() == 0 {
		return nil, fmt.Errorf("correlation of constant array")
	}
	return cov.Quo(cov, den), nil
}
