package prior

import (
	"fmt"
	"math"
)

// Spec parameterizes a prior in a model specification file.
type Spec struct {
	Type    string             `yaml:"type"`
	Params  map[string]float64 `yaml:"params,omitempty"`
	Grid    []float64          `yaml:"grid,omitempty"`
	Density []float64          `yaml:"density,omitempty"`
}

var validTypes = map[string]bool{
	"uniform": true, "normal": true, "interpolated": true,
}

// IsValidType reports whether name is a known prior type.
func IsValidType(name string) bool { return validTypes[name] }

// requireParam checks that all required keys exist in a params map.
func requireParam(kind string, params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("%s prior requires parameter %q", kind, k)
		}
	}
	return nil
}

// Validate checks the prior spec without building the prior. prefix names the
// spec in error messages.
func (s *Spec) Validate(prefix string) error {
	if !validTypes[s.Type] {
		return fmt.Errorf("%s: unknown prior type %q; valid: uniform, normal, interpolated", prefix, s.Type)
	}
	for name, val := range s.Params {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("%s.params.%s must be a finite number, got %f", prefix, name, val)
		}
	}
	if _, err := New(*s); err != nil {
		return fmt.Errorf("%s: %w", prefix, err)
	}
	return nil
}

// New creates a Prior from a Spec.
//
//   - uniform: params min, max
//   - normal: params mean, std_dev
//   - interpolated: grid and density lists of equal length
func New(spec Spec) (Prior, error) {
	switch spec.Type {
	case "uniform":
		if err := requireParam("uniform", spec.Params, "min", "max"); err != nil {
			return nil, err
		}
		p, err := NewUniform(spec.Params["min"], spec.Params["max"])
		if err != nil {
			return nil, err
		}
		return p, nil

	case "normal":
		if err := requireParam("normal", spec.Params, "mean", "std_dev"); err != nil {
			return nil, err
		}
		p, err := NewNormal(spec.Params["mean"], spec.Params["std_dev"])
		if err != nil {
			return nil, err
		}
		return p, nil

	case "interpolated":
		if len(spec.Params) != 0 {
			return nil, fmt.Errorf("interpolated prior takes grid and density, not params")
		}
		p, err := NewInterpolated(spec.Grid, spec.Density)
		if err != nil {
			return nil, err
		}
		return p, nil

	default:
		return nil, fmt.Errorf("unknown prior type %q", spec.Type)
	}
}
