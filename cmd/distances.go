package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/siren/siren/calc"
	"github.com/inference-sim/siren/siren/cosmo"
)

var (
	distH0      float64   // Hubble constant, km/s/Mpc
	distOm      float64   // Matter density
	distW       float64   // Dark energy equation of state
	distZ       []float64 // Redshifts to report
	distZMax    float64   // Redshift grid extent
	distPoints  int       // Redshift grid length
	distHorizon float64   // Optional detection horizon distance (Mpc)
)

// distanceRow is one redshift of the `siren distances` output.
type distanceRow struct {
	Z                  float64 `yaml:"z"`
	E                  float64 `yaml:"E"`
	ComovingDistance   float64 `yaml:"comoving_distance"`
	LuminosityDistance float64 `yaml:"luminosity_distance"`
	DVDZ               float64 `yaml:"dV_dz"`
	PZ                 float64 `yaml:"p_z"`
}

// horizonReport describes the selection at a detection horizon.
type horizonReport struct {
	LuminosityDistance float64 `yaml:"luminosity_distance"`
	Redshift           float64 `yaml:"redshift"`
	Beta               float64 `yaml:"beta"`
}

type distanceReport struct {
	Rows    []distanceRow  `yaml:"distances"`
	Horizon *horizonReport `yaml:"horizon,omitempty"`
}

var distancesCmd = &cobra.Command{
	Use:   "distances",
	Short: "Tabulate cosmological distances for one parameter set",
	Run: func(cmd *cobra.Command, args []string) {
		report, err := distanceTable(distH0, distOm, distW, distZ, distZMax, distPoints, distHorizon)
		if err != nil {
			logrus.Fatalf("Distance computation failed: %v", err)
		}
		writeYAML(report)
	},
}

// distanceTable computes distances on a redshift grid and interpolates them
// at zs. A positive horizon adds its redshift and selection normalization.
func distanceTable(h0, om, w float64, zs []float64, zMax float64, points int, horizon float64) (*distanceReport, error) {
	if !(h0 > 0) {
		return nil, fmt.Errorf("h0 must be positive, got %g", h0)
	}
	grid, err := cosmo.RedshiftGrid(zMax, points)
	if err != nil {
		return nil, err
	}
	for _, z := range zs {
		if z < 0 || z > zMax {
			logrus.Warnf("z = %g is outside the grid [0, %g]; values are extrapolated", z, zMax)
		}
	}
	dH := cosmo.HubbleDistance(h0)
	dC, err := cosmo.ComovingDistance(grid, dH, om, w)
	if err != nil {
		return nil, err
	}
	dL, err := cosmo.LuminosityDistance(grid, dC)
	if err != nil {
		return nil, err
	}
	dV, err := cosmo.DifferentialComovingVolume(grid, dC, dH, om, w)
	if err != nil {
		return nil, err
	}
	pz, err := cosmo.PZ(grid, dC, dH, om, w)
	if err != nil {
		return nil, err
	}

	report := &distanceReport{Rows: make([]distanceRow, len(zs))}
	columns := [][]float64{dC, dL, dV, pz}
	values := make([][]float64, len(columns))
	for i, col := range columns {
		if values[i], err = calc.InterpAll(zs, grid, col); err != nil {
			return nil, err
		}
	}
	for i, z := range zs {
		report.Rows[i] = distanceRow{
			Z:                  z,
			E:                  cosmo.E(z, om, w),
			ComovingDistance:   values[0][i],
			LuminosityDistance: values[1][i],
			DVDZ:               values[2][i],
			PZ:                 values[3][i],
		}
	}

	if horizon > 0 {
		zh, err := calc.Interp(horizon, dL, grid)
		if err != nil {
			return nil, fmt.Errorf("horizon redshift: %w", err)
		}
		beta, err := cosmo.Beta(zh, grid, pz)
		if err != nil {
			return nil, err
		}
		report.Horizon = &horizonReport{LuminosityDistance: horizon, Redshift: zh, Beta: beta}
	}
	logrus.Debugf("tabulated %d redshifts on a %d-point grid to z = %g", len(zs), points, zMax)
	return report, nil
}

func init() {
	distancesCmd.Flags().Float64Var(&distH0, "h0", 70, "Hubble constant (km/s/Mpc)")
	distancesCmd.Flags().Float64Var(&distOm, "om", 0.3, "Matter density parameter")
	distancesCmd.Flags().Float64Var(&distW, "w", -1, "Dark energy equation of state")
	distancesCmd.Flags().Float64SliceVar(&distZ, "z", []float64{0.1, 0.5, 1, 2}, "Comma-separated redshifts")
	distancesCmd.Flags().Float64Var(&distZMax, "zmax", cosmo.DefaultZMax, "Upper end of the redshift grid")
	distancesCmd.Flags().IntVar(&distPoints, "points", cosmo.DefaultGridPoints, "Redshift grid length")
	distancesCmd.Flags().Float64Var(&distHorizon, "horizon", 0, "Detection horizon luminosity distance in Mpc (0 = none)")

	rootCmd.AddCommand(distancesCmd)
}
