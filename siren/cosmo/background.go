package cosmo

import (
	"gonum.org/v1/gonum/num/dual"

	"github.com/inference-sim/siren/siren/calc"
)

// Background holds the distance and source-density arrays of one cosmology
// tabulated on a redshift grid. All slices are aligned index-for-index with
// Z. A Background is built fresh for each parameter set and is never shared
// between evaluations.
type Background struct {
	Z  []dual.Number // redshift grid
	DC []dual.Number // comoving distance
	DL []dual.Number // luminosity distance
	PZ []dual.Number // unnormalized source density
	CZ []dual.Number // cumulative integral of PZ, CZ[0] = 0
}

// NewBackground tabulates a cosmology on zs. zs must already be a valid grid
// (see RedshiftGrid); nothing is re-checked here so that invalid parameters
// surface as NaN in the arrays instead of as errors.
func NewBackground(zs []dual.Number, dH, om, w dual.Number) *Background {
	b := &Background{Z: zs}
	b.DC = comovingDistance(zs, dH, om, w)
	b.DL = luminosityDistance(zs, b.DC)
	b.PZ = pz(zs, b.DC, dH, om, w)
	b.CZ = calc.CumTrapzUnchecked(b.PZ, zs)
	return b
}

// Redshift inverts the luminosity distance table.
func (b *Background) Redshift(dL dual.Number) dual.Number {
	return calc.InterpUnchecked(dL, b.DL, b.Z)
}

// LuminosityDistance interpolates the luminosity distance at z.
func (b *Background) LuminosityDistance(z dual.Number) dual.Number {
	return calc.InterpUnchecked(z, b.Z, b.DL)
}

// Density interpolates the unnormalized source density at z.
func (b *Background) Density(z dual.Number) dual.Number {
	return calc.InterpUnchecked(z, b.Z, b.PZ)
}

// Beta is the population below zHorizon; see the package-level Beta.
func (b *Background) Beta(zHorizon dual.Number) dual.Number {
	return calc.InterpUnchecked(zHorizon, b.Z, b.CZ)
}
