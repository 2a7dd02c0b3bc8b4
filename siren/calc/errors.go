// Package calc provides the numerical building blocks of the siren model:
// trapezoid-rule integration and piecewise-linear interpolation over ordered
// grids.
//
// Every routine has a float64 form and a dual-number form. The dual forms
// propagate a single directional derivative (gonum's num/dual) so that a
// potential assembled from them can be differentiated in forward mode.
package calc

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/num/dual"
)

var (
	// ErrDomain is returned when a grid has fewer than two points or its
	// abscissae are not strictly increasing.
	ErrDomain = errors.New("calc: domain error")
	// ErrShape is returned when paired slices have different lengths.
	ErrShape = errors.New("calc: shape mismatch")
)

// CheckGrid validates that ny ordinates pair with the abscissae xs and that
// xs holds at least two strictly increasing points.
func CheckGrid(xs []float64, ny int) error {
	if len(xs) != ny {
		return fmt.Errorf("%w: len(xs) = %d, len(ys) = %d", ErrShape, len(xs), ny)
	}
	if len(xs) < 2 {
		return fmt.Errorf("%w: need at least 2 points, got %d", ErrDomain, len(xs))
	}
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return fmt.Errorf("%w: xs[%d] = %g is not greater than xs[%d] = %g",
				ErrDomain, i, xs[i], i-1, xs[i-1])
		}
	}
	return nil
}

// Lift converts a float64 slice into constant dual numbers.
func Lift(xs []float64) []dual.Number {
	out := make([]dual.Number, len(xs))
	for i, x := range xs {
		out[i] = dual.Number{Real: x}
	}
	return out
}

// Reals returns the real parts of a dual slice.
func Reals(ds []dual.Number) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = d.Real
	}
	return out
}

// Div returns x/y. The real part is an exact float64 division.
func Div(x, y dual.Number) dual.Number {
	return dual.Number{
		Real: x.Real / y.Real,
		Emag: (x.Emag*y.Real - x.Real*y.Emag) / (y.Real * y.Real),
	}
}
