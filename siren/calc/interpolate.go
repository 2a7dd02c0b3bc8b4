package calc

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/num/dual"
)

// search returns the index i of the right end of the segment used to
// evaluate x: xs[i-1] <= x < xs[i], clamped to [1, n-1] so that points
// outside the grid use the nearest edge segment.
func search(n int, x float64, at func(int) float64) int {
	i := sort.Search(n, func(j int) bool { return at(j) > x })
	if i < 1 {
		i = 1
	} else if i > n-1 {
		i = n - 1
	}
	return i
}

// Interp linearly interpolates the points (xs, ys) at x. Outside the grid it
// extrapolates along the first or last segment rather than clamping. Knots
// are reproduced exactly.
func Interp(x float64, xs, ys []float64) (float64, error) {
	if err := CheckGrid(xs, len(ys)); err != nil {
		return 0, fmt.Errorf("interp: %w", err)
	}
	return interp(x, xs, ys), nil
}

// InterpAll evaluates Interp at every element of x. If an output slice is
// given the result is written into it.
func InterpAll(x, xs, ys []float64, out ...[]float64) ([]float64, error) {
	if err := CheckGrid(xs, len(ys)); err != nil {
		return nil, fmt.Errorf("interp: %w", err)
	}
	if len(out) == 0 {
		out = [][]float64{make([]float64, len(x))}
	} else if len(out[0]) != len(x) {
		return nil, fmt.Errorf("interp: %w: len(out) = %d, len(x) = %d",
			ErrShape, len(out[0]), len(x))
	}
	for i := range x {
		out[0][i] = interp(x[i], xs, ys)
	}
	return out[0], nil
}

func interp(x float64, xs, ys []float64) float64 {
	i := search(len(xs), x, func(j int) float64 { return xs[j] })
	xl, xr := xs[i-1], xs[i]
	yl, yr := ys[i-1], ys[i]
	r := (x - xl) / (xr - xl)
	return yl*(1-r) + yr*r
}

// InterpDual is Interp with dual-valued point, abscissae and ordinates. The
// segment is chosen on real parts; derivatives flow through all three
// arguments, which lets the same routine run in the inverse direction
// (distance to redshift) when xs depends on the parameters.
func InterpDual(x dual.Number, xs, ys []dual.Number) (dual.Number, error) {
	if err := CheckGrid(Reals(xs), len(ys)); err != nil {
		return dual.Number{}, fmt.Errorf("interp: %w", err)
	}
	return InterpUnchecked(x, xs, ys), nil
}

// InterpUnchecked is InterpDual without validation. The caller guarantees
// len(xs) == len(ys) >= 2. If xs holds NaNs the result is NaN rather than an
// error.
func InterpUnchecked(x dual.Number, xs, ys []dual.Number) dual.Number {
	i := search(len(xs), x.Real, func(j int) float64 { return xs[j].Real })
	xl, xr := xs[i-1], xs[i]
	yl, yr := ys[i-1], ys[i]
	r := Div(dual.Sub(x, xl), dual.Sub(xr, xl))
	one := dual.Number{Real: 1}
	return dual.Add(dual.Mul(yl, dual.Sub(one, r)), dual.Mul(yr, r))
}
