package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/siren/siren/model"
)

var (
	scanSpecPath string            // Path to the YAML model spec
	scanParam    string            // Parameter to vary
	scanMin      float64           // Lower end of the scan
	scanMax      float64           // Upper end of the scan
	scanSteps    int               // Number of points
	scanWorkers  int               // Concurrent evaluations (0 = unbounded)
	scanBase     map[string]string // Values of the other parameters
)

// scanRow is one point of the `siren scan` output.
type scanRow struct {
	Value      float64 `yaml:"value"`
	LogDensity float64 `yaml:"log_density"`
}

type scanReport struct {
	Parameter string    `yaml:"parameter"`
	Base      []float64 `yaml:"base"`
	Names     []string  `yaml:"names"`
	Points    []scanRow `yaml:"points"`
	Best      scanRow   `yaml:"best"`
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Profile the log density along one parameter",
	Run: func(cmd *cobra.Command, args []string) {
		m := loadModel(scanSpecPath)
		base, err := parsePoint(m, scanBase)
		if err != nil {
			logrus.Fatalf("Invalid --base: %v", err)
		}
		report, err := scanLine(cmd.Context(), m, scanParam, scanMin, scanMax, scanSteps, scanWorkers, base)
		if err != nil {
			logrus.Fatalf("Scan failed: %v", err)
		}
		writeYAML(report)
	},
}

// scanLine evaluates the log density at steps values of one parameter with
// the others held at base.
func scanLine(ctx context.Context, m *model.Model, name string, lo, hi float64, steps, workers int, base []float64) (*scanReport, error) {
	points, err := m.Line(name, lo, hi, steps, base)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	values, err := m.Scan(ctx, points, workers)
	if err != nil {
		return nil, err
	}
	idx := m.Index(name)
	report := &scanReport{
		Parameter: name,
		Base:      base,
		Names:     m.Names(),
		Points:    make([]scanRow, len(points)),
	}
	for i, v := range values {
		report.Points[i] = scanRow{Value: points[i][idx], LogDensity: v}
		if i == 0 || v > report.Best.LogDensity {
			report.Best = report.Points[i]
		}
	}
	logrus.Infof("best %s = %g (log density %g)", name, report.Best.Value, report.Best.LogDensity)
	return report, nil
}

func init() {
	scanCmd.Flags().StringVar(&scanSpecPath, "spec", "", "Path to YAML model spec")
	scanCmd.Flags().StringVar(&scanParam, "param", model.ParamH0, "Parameter to vary")
	scanCmd.Flags().Float64Var(&scanMin, "min", model.DefaultH0Min, "Lower end of the scan")
	scanCmd.Flags().Float64Var(&scanMax, "max", model.DefaultH0Max, "Upper end of the scan")
	scanCmd.Flags().IntVar(&scanSteps, "steps", 106, "Number of scan points")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 4, "Concurrent evaluations (0 = unbounded)")
	scanCmd.Flags().StringToStringVar(&scanBase, "base", nil, "Values of the other parameters, e.g. Om=0.3 (default: initial point)")
	_ = scanCmd.MarkFlagRequired("spec")

	rootCmd.AddCommand(scanCmd)
}
