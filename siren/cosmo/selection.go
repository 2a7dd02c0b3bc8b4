package cosmo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/dual"

	"github.com/inference-sim/siren/siren/calc"
)

// Source-rate evolution law, a star-formation-history fit of the form
// (1+z)**a / (1 + ((1+z)/(1+zp))**b).
const (
	RateLowZIndex  = 2.7
	RatePeakZ      = 1.9
	RateHighZIndex = 5.6
)

// rateEvolution is the source-rate evolution law divided by (1+z) for
// cosmological time dilation.
func rateEvolution(z float64) float64 {
	opz := 1 + z
	return math.Pow(opz, RateLowZIndex) /
		(1 + math.Pow(opz/(1+RatePeakZ), RateHighZIndex)) / opz
}

// PZ returns the unnormalized redshift density of sources, the rate
// evolution law times dV/dz and divided by (1+z). It is non-negative
// wherever dC and E are.
func PZ(zs, dC []float64, dH, om, w float64) ([]float64, error) {
	pz, err := PZDual(calc.Lift(zs), calc.Lift(dC),
		dual.Number{Real: dH}, dual.Number{Real: om}, dual.Number{Real: w})
	if err != nil {
		return nil, err
	}
	return calc.Reals(pz), nil
}

// PZDual is PZ differentiated with respect to dC, dH, om and w.
func PZDual(zs, dC []dual.Number, dH, om, w dual.Number) ([]dual.Number, error) {
	if len(zs) != len(dC) {
		return nil, fmt.Errorf("p(z): %w: len(zs) = %d, len(dC) = %d",
			calc.ErrShape, len(zs), len(dC))
	}
	return pz(zs, dC, dH, om, w), nil
}

func pz(zs, dC []dual.Number, dH, om, w dual.Number) []dual.Number {
	out := make([]dual.Number, len(zs))
	for i := range zs {
		z := zs[i].Real
		out[i] = dual.Scale(rateEvolution(z), dVdz(z, dC[i], dH, om, w))
	}
	return out
}

// Beta returns the unnormalized population fraction below zHorizon: the
// cumulative trapezoid integral of pzs over zs, interpolated at zHorizon.
// It is the selection normalization of the likelihood and is positive for
// any zHorizon > zs[0] when pzs is positive away from zs[0].
func Beta(zHorizon float64, zs, pzs []float64) (float64, error) {
	cz, err := calc.CumTrapz(pzs, zs)
	if err != nil {
		return 0, fmt.Errorf("beta: %w", err)
	}
	b, err := calc.Interp(zHorizon, zs, cz)
	if err != nil {
		return 0, fmt.Errorf("beta: %w", err)
	}
	return b, nil
}

// BetaDual is Beta with a dual horizon and density.
func BetaDual(zHorizon dual.Number, zs, pzs []dual.Number) (dual.Number, error) {
	cz, err := calc.CumTrapzDual(pzs, zs)
	if err != nil {
		return dual.Number{}, fmt.Errorf("beta: %w", err)
	}
	return calc.InterpUnchecked(zHorizon, zs, cz), nil
}
