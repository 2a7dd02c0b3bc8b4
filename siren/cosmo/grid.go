package cosmo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultZMax is the upper end of the default redshift grid.
	DefaultZMax = 10.0
	// DefaultGridPoints is the length of the default redshift grid.
	DefaultGridPoints = 1024
)

// RedshiftGrid returns n redshifts from 0 to zMax spaced uniformly in
// ln(1+z). The first element is exactly 0 and the grid is strictly
// increasing.
func RedshiftGrid(zMax float64, n int) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("redshift grid: need at least 2 points, got %d", n)
	}
	if !(zMax > 0) || math.IsInf(zMax, 1) {
		return nil, fmt.Errorf("redshift grid: zmax must be positive and finite, got %g", zMax)
	}
	zs := floats.Span(make([]float64, n), 0, math.Log1p(zMax))
	for i := range zs {
		zs[i] = math.Expm1(zs[i])
	}
	return zs, nil
}
