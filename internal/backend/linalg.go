package backend

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Det is the determinant of a square matrix.
func Det(m *mat.Dense) (float64, error) {
	r, c := m.Dims()
	if r != c {
		return 0, fmt.Errorf("determinant of non-square %dx%d matrix", r, c)
	}
	return mat.Det(m), nil
}

// Trace is the sum of the diagonal of a square matrix.
func Trace(m *mat.Dense) (float64, error) {
	r, c := m.Dims()
	if r != c {
		return 0, fmt.Errorf("trace of non-square %dx%d matrix", r, c)
	}
	return mat.Trace(m), nil
}

// NormVec is the Euclidean norm of a vector.
func NormVec(xs []float64) float64 { return floats.Norm(xs, 2) }

// NormMat is the Frobenius norm of a matrix.
func NormMat(m *mat.Dense) float64 { return mat.Norm(m, 2) }

// Dot is the inner product of two equal-length vectors.
func Dot(xs, ys []float64) (float64, error) {
	if len(xs) != len(ys) {
		return 0, fmt.Errorf("dot product of vectors with different lengths (%d, %d)", len(xs), len(ys))
	}
	return floats.Dot(xs, ys), nil
}

// InvMat is the matrix inverse.
func InvMat(m *mat.Dense) (*mat.Dense, error) {
	r, c := m.Dims()
	if r != c {
		return nil, fmt.Errorf("inverse of non-square %dx%d matrix", r, c)
	}
	var out mat.Dense
	if err := out.Inverse(m); err != nil {
		return nil, err // singular matrix errors propagate unchanged
	}
	return &out, nil
}
