// Package testutil provides shared test helpers for the siren packages:
// relative float comparisons and finite-difference gradient checks.
package testutil

import (
	"math"
	"testing"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// CentralDifference estimates df/dx_i at x with step h*max(1, |x_i|).
// x is not modified.
func CentralDifference(f func([]float64) float64, x []float64, i int, h float64) float64 {
	step := h * math.Max(1, math.Abs(x[i]))
	xp := append([]float64(nil), x...)
	xm := append([]float64(nil), x...)
	xp[i] += step
	xm[i] -= step
	return (f(xp) - f(xm)) / (2 * step)
}
