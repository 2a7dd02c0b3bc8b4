package prior

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/num/dual"

	"github.com/inference-sim/siren/siren/calc"
)

// Interpolated is a piecewise-linear density tabulated on a strictly
// increasing grid and normalized by its trapezoid integral. It is zero
// outside [grid[0], grid[n-1]].
//
// Interpolated serves both as an empirical prior (e.g. an H0 posterior from
// another experiment) and as the luminosity-distance likelihood of a single
// event built from a kernel density estimate evaluated on a grid.
type Interpolated struct {
	grid []dual.Number
	pdf  []dual.Number
	xs   []float64
	ps   []float64
	cdf  []float64
}

// NewInterpolated creates an Interpolated density from paired grid and
// density values. The density must be finite and non-negative with a
// positive integral. The input slices are copied.
func NewInterpolated(grid, density []float64) (*Interpolated, error) {
	if err := calc.CheckGrid(grid, len(density)); err != nil {
		return nil, fmt.Errorf("interpolated density: %w", err)
	}
	for i, p := range density {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return nil, fmt.Errorf("interpolated density: density[%d] = %g must be finite and non-negative", i, p)
		}
	}
	norm, err := calc.Trapz(density, grid)
	if err != nil {
		return nil, fmt.Errorf("interpolated density: %w", err)
	}
	if !(norm > 0) {
		return nil, fmt.Errorf("interpolated density: integral must be positive, got %g", norm)
	}

	xs := append([]float64(nil), grid...)
	ps := append([]float64(nil), density...)
	floats.Scale(1/norm, ps)
	cdf, err := calc.CumTrapz(ps, xs)
	if err != nil {
		return nil, fmt.Errorf("interpolated density: %w", err)
	}

	return &Interpolated{
		grid: calc.Lift(xs),
		pdf:  calc.Lift(ps),
		xs:   xs,
		ps:   ps,
		cdf:  cdf,
	}, nil
}

// Density returns the normalized density at x.
func (ip *Interpolated) Density(x float64) float64 {
	if x < ip.xs[0] || x > ip.xs[len(ip.xs)-1] {
		return 0
	}
	p, _ := calc.Interp(x, ip.xs, ip.ps)
	return p
}

// LogDensity returns the log of the interpolated density. Its derivative
// along x is the segment slope divided by the density.
func (ip *Interpolated) LogDensity(x dual.Number) dual.Number {
	if x.Real < ip.xs[0] || x.Real > ip.xs[len(ip.xs)-1] {
		return negInf
	}
	return dual.Log(calc.InterpUnchecked(x, ip.grid, ip.pdf))
}

// Sample draws by inverting the cumulative distribution exactly: within a
// segment the density is linear, so the CDF is quadratic.
func (ip *Interpolated) Sample(rng *rand.Rand) float64 {
	u := rng.Float64() * ip.cdf[len(ip.cdf)-1]
	i := sort.SearchFloat64s(ip.cdf, u)
	if i < 1 {
		i = 1
	} else if i > len(ip.cdf)-1 {
		i = len(ip.cdf) - 1
	}
	x0, x1 := ip.xs[i-1], ip.xs[i]
	p0, p1 := ip.ps[i-1], ip.ps[i]
	r := u - ip.cdf[i-1]

	// Solve p0 t + a t^2 = r with a = (p1-p0)/(2h) in the form that stays
	// finite when a -> 0.
	a := (p1 - p0) / (2 * (x1 - x0))
	disc := math.Sqrt(math.Max(p0*p0+4*a*r, 0))
	if p0+disc == 0 {
		return x0
	}
	t := 2 * r / (p0 + disc)
	return math.Min(x0+t, x1)
}

func (ip *Interpolated) Support() (lo, hi float64) {
	return ip.xs[0], ip.xs[len(ip.xs)-1]
}
