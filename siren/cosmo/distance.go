package cosmo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/dual"

	"github.com/inference-sim/siren/siren/calc"
)

// ComovingDistance returns dH times the running trapezoid integral of 1/E
// over zs. zs must be strictly increasing and finely enough spaced for the
// trapezoid rule; distances are measured from zs[0], so grids normally start
// at z = 0. Units follow dH.
func ComovingDistance(zs []float64, dH, om, w float64) ([]float64, error) {
	dC, err := ComovingDistanceDual(calc.Lift(zs), dual.Number{Real: dH},
		dual.Number{Real: om}, dual.Number{Real: w})
	if err != nil {
		return nil, err
	}
	return calc.Reals(dC), nil
}

// ComovingDistanceDual is ComovingDistance differentiated with respect to
// dH, om and w.
func ComovingDistanceDual(zs []dual.Number, dH, om, w dual.Number) ([]dual.Number, error) {
	if err := checkRedshifts(zs); err != nil {
		return nil, fmt.Errorf("comoving distance: %w", err)
	}
	return comovingDistance(zs, dH, om, w), nil
}

func comovingDistance(zs []dual.Number, dH, om, w dual.Number) []dual.Number {
	invE := make([]dual.Number, len(zs))
	for i, z := range zs {
		invE[i] = dual.Inv(EDual(z.Real, om, w))
	}
	dC := calc.CumTrapzUnchecked(invE, zs)
	for i := range dC {
		dC[i] = dual.Mul(dH, dC[i])
	}
	return dC
}

// LuminosityDistance converts comoving distances to luminosity distances,
// (1+z) dC, elementwise.
func LuminosityDistance(zs, dC []float64) ([]float64, error) {
	if len(zs) != len(dC) {
		return nil, fmt.Errorf("luminosity distance: %w: len(zs) = %d, len(dC) = %d",
			calc.ErrShape, len(zs), len(dC))
	}
	out := make([]float64, len(zs))
	for i := range zs {
		out[i] = (1 + zs[i]) * dC[i]
	}
	return out, nil
}

// LuminosityDistanceDual is LuminosityDistance over dual comoving distances.
func LuminosityDistanceDual(zs []dual.Number, dC []dual.Number) ([]dual.Number, error) {
	if len(zs) != len(dC) {
		return nil, fmt.Errorf("luminosity distance: %w: len(zs) = %d, len(dC) = %d",
			calc.ErrShape, len(zs), len(dC))
	}
	return luminosityDistance(zs, dC), nil
}

func luminosityDistance(zs []dual.Number, dC []dual.Number) []dual.Number {
	out := make([]dual.Number, len(zs))
	for i := range zs {
		out[i] = dual.Mul(dual.Add(dual.Number{Real: 1}, zs[i]), dC[i])
	}
	return out
}

// DifferentialComovingVolume returns dV/dz = 4 pi dC**3 dH / E at each
// redshift.
func DifferentialComovingVolume(zs, dC []float64, dH, om, w float64) ([]float64, error) {
	dV, err := DifferentialComovingVolumeDual(calc.Lift(zs), calc.Lift(dC),
		dual.Number{Real: dH}, dual.Number{Real: om}, dual.Number{Real: w})
	if err != nil {
		return nil, err
	}
	return calc.Reals(dV), nil
}

// DifferentialComovingVolumeDual is DifferentialComovingVolume differentiated
// with respect to dC, dH, om and w.
func DifferentialComovingVolumeDual(zs, dC []dual.Number, dH, om, w dual.Number) ([]dual.Number, error) {
	if len(zs) != len(dC) {
		return nil, fmt.Errorf("comoving volume: %w: len(zs) = %d, len(dC) = %d",
			calc.ErrShape, len(zs), len(dC))
	}
	out := make([]dual.Number, len(zs))
	for i := range zs {
		out[i] = dVdz(zs[i].Real, dC[i], dH, om, w)
	}
	return out, nil
}

func dVdz(z float64, dC, dH, om, w dual.Number) dual.Number {
	dC3 := dual.Mul(dC, dual.Mul(dC, dC))
	return dual.Scale(4*math.Pi, calc.Div(dual.Mul(dC3, dH), EDual(z, om, w)))
}

// checkRedshifts requires at least two strictly increasing redshifts.
func checkRedshifts(zs []dual.Number) error {
	return calc.CheckGrid(calc.Reals(zs), len(zs))
}
