// Package prior implements the one-dimensional distributions used as
// parameter priors and event distance likelihoods.
//
// A Prior is one of three variants:
//   - Uniform: flat density on [Min, Max]
//   - Normal: Gaussian with mean and standard deviation
//   - Interpolated: piecewise-linear density tabulated on a grid
//
// Log densities take and return dual numbers so that derivatives with respect
// to the evaluation point flow into the model gradient.
package prior

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/num/dual"
	"gonum.org/v1/gonum/stat/distuv"
)

// Prior is a one-dimensional probability distribution.
type Prior interface {
	// LogDensity returns the normalized log density at x. Outside the
	// support it returns -Inf.
	LogDensity(x dual.Number) dual.Number
	// Sample draws a value using rng.
	Sample(rng *rand.Rand) float64
	// Support returns the closed interval outside which the density is zero.
	Support() (lo, hi float64)
}

var (
	_ Prior = &Uniform{}
	_ Prior = &Normal{}
	_ Prior = &Interpolated{}
)

var negInf = dual.Number{Real: math.Inf(-1)}

// Uniform is a flat distribution on [Min, Max].
type Uniform struct {
	Min, Max float64
}

// NewUniform creates a Uniform prior. Returns an error unless min < max and
// both are finite.
func NewUniform(min, max float64) (*Uniform, error) {
	if math.IsInf(min, 0) || math.IsInf(max, 0) || !(min < max) {
		return nil, fmt.Errorf("uniform prior requires finite min < max, got [%g, %g]", min, max)
	}
	return &Uniform{Min: min, Max: max}, nil
}

func (u *Uniform) dist(src rand.Source) distuv.Uniform {
	return distuv.Uniform{Min: u.Min, Max: u.Max, Src: src}
}

// LogDensity is -ln(Max-Min) inside the bounds, with zero derivative.
func (u *Uniform) LogDensity(x dual.Number) dual.Number {
	if x.Real < u.Min || x.Real > u.Max {
		return negInf
	}
	return dual.Number{Real: u.dist(nil).LogProb(x.Real)}
}

func (u *Uniform) Sample(rng *rand.Rand) float64 { return u.dist(rng).Rand() }

func (u *Uniform) Support() (lo, hi float64) { return u.Min, u.Max }

// Normal is a Gaussian distribution.
type Normal struct {
	Mean, StdDev float64
}

// NewNormal creates a Normal prior. Returns an error unless stdDev is
// positive and both parameters are finite.
func NewNormal(mean, stdDev float64) (*Normal, error) {
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return nil, fmt.Errorf("normal prior mean must be finite, got %g", mean)
	}
	if !(stdDev > 0) || math.IsInf(stdDev, 0) {
		return nil, fmt.Errorf("normal prior std_dev must be positive and finite, got %g", stdDev)
	}
	return &Normal{Mean: mean, StdDev: stdDev}, nil
}

func (n *Normal) dist(src rand.Source) distuv.Normal {
	return distuv.Normal{Mu: n.Mean, Sigma: n.StdDev, Src: src}
}

// LogDensity returns the Gaussian log density and its derivative
// -(x-Mean)/StdDev**2 along x.
func (n *Normal) LogDensity(x dual.Number) dual.Number {
	slope := -(x.Real - n.Mean) / (n.StdDev * n.StdDev)
	return dual.Number{
		Real: n.dist(nil).LogProb(x.Real),
		Emag: slope * x.Emag,
	}
}

func (n *Normal) Sample(rng *rand.Rand) float64 { return n.dist(rng).Rand() }

func (n *Normal) Support() (lo, hi float64) { return math.Inf(-1), math.Inf(1) }
