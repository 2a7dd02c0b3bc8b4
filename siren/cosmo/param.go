/*Package cosmo computes distances and source densities in flat cosmologies
containing matter and dark energy with a constant equation of state.

Functions come in pairs: a float64 form for direct use and a Dual form that
carries a derivative with respect to the cosmological parameters.*/
package cosmo

import (
	"math"

	"gonum.org/v1/gonum/num/dual"

	"github.com/inference-sim/siren/siren/calc"
)

// SpeedOfLight is c in km/s. The Hubble distance c/H0 is in Mpc when H0 is
// in km/s/Mpc.
const SpeedOfLight = 299792.458

// HubbleDistance returns c/H0 in Mpc.
func HubbleDistance(H0 float64) float64 { return SpeedOfLight / H0 }

// HubbleDistanceDual is HubbleDistance for a dual H0.
func HubbleDistanceDual(H0 dual.Number) dual.Number {
	return calc.Div(dual.Number{Real: SpeedOfLight}, H0)
}

// E calculates the dimensionless Hubble rate H(z)/H0 of a flat universe with
// matter fraction om and dark energy equation of state w:
// E**2 = om (1+z)**3 + (1-om) (1+z)**(3 (1+w)).
//
// om outside [0, 1] can make the radicand negative, in which case E is NaN.
func E(z, om, w float64) float64 {
	return EDual(z, dual.Number{Real: om}, dual.Number{Real: w}).Real
}

// EAll evaluates E at every redshift in zs.
func EAll(zs []float64, om, w float64) []float64 {
	out := make([]float64, len(zs))
	for i, z := range zs {
		out[i] = E(z, om, w)
	}
	return out
}

// EDual is E differentiated with respect to om and w.
func EDual(z float64, om, w dual.Number) dual.Number {
	opz := 1 + z
	matter := dual.Scale(opz*opz*opz, om)

	// (1+z)**(3(1+w)) = exp(3 (1+w) ln(1+z))
	exponent := dual.Scale(3, dual.Add(dual.Number{Real: 1}, w))
	darkEnergy := dual.Exp(dual.Scale(math.Log(opz), exponent))
	lambda := dual.Mul(dual.Sub(dual.Number{Real: 1}, om), darkEnergy)

	return dual.Sqrt(dual.Add(matter, lambda))
}
