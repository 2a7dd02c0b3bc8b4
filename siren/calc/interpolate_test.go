package calc

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/dual"
)

func TestInterp_ReproducesKnotsExactly(t *testing.T) {
	xs := []float64{0, 0.1, 0.35, 1.2, 3.3, 10}
	ys := []float64{0.3, 0.1, 7.77, -2.2, 1e5, 0.3}
	for k := range xs {
		got, err := Interp(xs[k], xs, ys)
		require.NoError(t, err)
		assert.Equal(t, ys[k], got, "knot %d", k)
	}
}

func TestInterp_LinearBetweenKnots(t *testing.T) {
	xs := []float64{0, 1, 3}
	ys := []float64{0, 2, 3}
	got, err := InterpAll([]float64{0.5, 2, 2.5}, xs, ys)
	require.NoError(t, err)
	want := []float64{1, 2.5, 2.75}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("InterpAll mismatch (-want +got):\n%s", diff)
	}
}

func TestInterp_ExtrapolatesWithEdgeSlopes(t *testing.T) {
	// GIVEN slopes of 2 on the first segment and 0.5 on the last
	xs := []float64{0, 1, 2, 4}
	ys := []float64{1, 3, 4, 5}

	// WHEN evaluated outside the grid
	below, err := Interp(-1, xs, ys)
	require.NoError(t, err)
	above, err := Interp(6, xs, ys)
	require.NoError(t, err)

	// THEN values continue along the edge segments instead of clamping
	assert.InDelta(t, -1.0, below, 1e-12)
	assert.InDelta(t, 6.0, above, 1e-12)
}

func TestInterp_RejectsBadGrids(t *testing.T) {
	_, err := Interp(0.5, []float64{0}, []float64{1})
	assert.True(t, errors.Is(err, ErrDomain))
	_, err = Interp(0.5, []float64{0, 1, 0.5}, []float64{1, 2, 3})
	assert.True(t, errors.Is(err, ErrDomain))
	_, err = Interp(0.5, []float64{0, 1}, []float64{1, 2, 3})
	assert.True(t, errors.Is(err, ErrShape))
	_, err = InterpAll([]float64{0.5}, []float64{0, 1}, []float64{1, 2}, make([]float64, 2))
	assert.True(t, errors.Is(err, ErrShape))
}

func TestInterpAll_WritesIntoOutput(t *testing.T) {
	out := make([]float64, 2)
	got, err := InterpAll([]float64{0, 1}, []float64{0, 1}, []float64{5, 7}, out)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 7}, out)
	assert.Equal(t, out, got)
}

func TestInterpDual_AgreesWithFloatAndDifferentiates(t *testing.T) {
	xs := []float64{0, 1, 2, 4}
	ys := []float64{1, 3, 4, 5}
	for _, x := range []float64{-0.5, 0, 0.3, 1, 1.9, 3, 4, 7} {
		want, err := Interp(x, xs, ys)
		require.NoError(t, err)
		got, err := InterpDual(dual.Number{Real: x, Emag: 1}, Lift(xs), Lift(ys))
		require.NoError(t, err)
		assert.InDelta(t, want, got.Real, 1e-12, "x = %g", x)
		// d/dx is the slope of the segment containing x
		i := search(len(xs), x, func(j int) float64 { return xs[j] })
		slope := (ys[i] - ys[i-1]) / (xs[i] - xs[i-1])
		assert.InDelta(t, slope, got.Emag, 1e-12, "x = %g", x)
	}
}

func TestInterpDual_DerivativeThroughAbscissae(t *testing.T) {
	// GIVEN xs = s*[0, 1, 2] and ys = [0, 1, 2], so interp(x) = x/s
	s := dual.Number{Real: 2, Emag: 1}
	xs := []dual.Number{{}, s, dual.Scale(2, s)}
	ys := Lift([]float64{0, 1, 2})

	got, err := InterpDual(dual.Number{Real: 3}, xs, ys)
	require.NoError(t, err)

	// THEN value is 3/2 and d/ds = -3/s^2
	assert.InDelta(t, 1.5, got.Real, 1e-12)
	assert.InDelta(t, -0.75, got.Emag, 1e-12)
}

func TestInterpUnchecked_NaNAbscissaePropagate(t *testing.T) {
	nan := dual.Number{Real: math.NaN()}
	got := InterpUnchecked(dual.Number{Real: 1}, []dual.Number{nan, nan, nan}, Lift([]float64{0, 1, 2}))
	assert.True(t, math.IsNaN(got.Real))
}
