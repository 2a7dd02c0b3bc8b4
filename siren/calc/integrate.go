package calc

import (
	"fmt"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/num/dual"
)

// Trapz integrates ys sampled at the strictly increasing points xs with the
// trapezoid rule.
func Trapz(ys, xs []float64) (float64, error) {
	if err := CheckGrid(xs, len(ys)); err != nil {
		return 0, fmt.Errorf("trapz: %w", err)
	}
	return integrate.Trapezoidal(xs, ys), nil
}

// CumTrapz returns the running trapezoid integral of ys over xs. The result
// has the same length as ys and its first element is exactly 0; element i is
// the integral over xs[0..i].
func CumTrapz(ys, xs []float64) ([]float64, error) {
	if err := CheckGrid(xs, len(ys)); err != nil {
		return nil, fmt.Errorf("cumtrapz: %w", err)
	}
	out := make([]float64, len(ys))
	for i := 1; i < len(ys); i++ {
		out[i] = out[i-1] + 0.5*(xs[i]-xs[i-1])*(ys[i]+ys[i-1])
	}
	return out, nil
}

// TrapzDual is Trapz over dual-valued samples.
func TrapzDual(ys, xs []dual.Number) (dual.Number, error) {
	if err := CheckGrid(Reals(xs), len(ys)); err != nil {
		return dual.Number{}, fmt.Errorf("trapz: %w", err)
	}
	return trapz(ys, xs), nil
}

// CumTrapzDual is CumTrapz over dual-valued samples.
func CumTrapzDual(ys, xs []dual.Number) ([]dual.Number, error) {
	if err := CheckGrid(Reals(xs), len(ys)); err != nil {
		return nil, fmt.Errorf("cumtrapz: %w", err)
	}
	return CumTrapzUnchecked(ys, xs), nil
}

func trapz(ys, xs []dual.Number) dual.Number {
	var sum dual.Number
	for i := 1; i < len(ys); i++ {
		sum = dual.Add(sum, segment(ys, xs, i))
	}
	return sum
}

// CumTrapzUnchecked is CumTrapzDual without validation. The caller
// guarantees len(xs) == len(ys) >= 2. Non-finite samples propagate.
func CumTrapzUnchecked(ys, xs []dual.Number) []dual.Number {
	out := make([]dual.Number, len(ys))
	for i := 1; i < len(ys); i++ {
		out[i] = dual.Add(out[i-1], segment(ys, xs, i))
	}
	return out
}

// segment is the trapezoid area between points i-1 and i.
func segment(ys, xs []dual.Number, i int) dual.Number {
	dx := dual.Sub(xs[i], xs[i-1])
	return dual.Scale(0.5, dual.Mul(dx, dual.Add(ys[i], ys[i-1])))
}
