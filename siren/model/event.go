package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/dual"

	"github.com/inference-sim/siren/siren/calc"
	"github.com/inference-sim/siren/siren/prior"
)

// Event is one standard-siren observation.
type Event struct {
	Name      string    // optional label for logs and errors
	DL        []float64 // luminosity distances (Mpc), strictly increasing
	PDL       []float64 // distance posterior density evaluated at DL
	ZC        float64   // host redshift
	DLHorizon float64   // detection horizon luminosity distance (Mpc)
}

// Validate checks an event's data before any model is built.
func (e *Event) Validate() error {
	if len(e.DL) != len(e.PDL) {
		return fmt.Errorf("%w: len(dl) = %d, len(p_dl) = %d", calc.ErrShape, len(e.DL), len(e.PDL))
	}
	if math.IsNaN(e.ZC) || math.IsInf(e.ZC, 0) || e.ZC < 0 {
		return fmt.Errorf("zc must be finite and non-negative, got %g", e.ZC)
	}
	if !(e.DLHorizon > 0) || math.IsInf(e.DLHorizon, 0) {
		return fmt.Errorf("dl_horizon must be positive and finite, got %g", e.DLHorizon)
	}
	return nil
}

type event struct {
	label     string
	density   *prior.Interpolated
	zc        dual.Number
	dlHorizon dual.Number
}

func newEvent(e Event) (event, error) {
	if err := e.Validate(); err != nil {
		return event{}, err
	}
	density, err := prior.NewInterpolated(e.DL, e.PDL)
	if err != nil {
		return event{}, fmt.Errorf("distance density: %w", err)
	}
	return event{
		label:     e.Name,
		density:   density,
		zc:        dual.Number{Real: e.ZC},
		dlHorizon: dual.Number{Real: e.DLHorizon},
	}, nil
}

func (ev event) name(i int) string {
	if ev.label != "" {
		return ev.label
	}
	return fmt.Sprintf("#%d", i)
}
