package model

import (
	"fmt"

	"gonum.org/v1/gonum/num/dual"

	"github.com/inference-sim/siren/siren/calc"
	"github.com/inference-sim/siren/siren/cosmo"
)

// Parameter names. The free parameter vector is always ordered
// H0, then Om or Omh2, then w when w is free.
const (
	ParamH0   = "H0"
	ParamOm   = "Om"
	ParamOmh2 = "Omh2"
	ParamW    = "w"
)

// Defaults for parameters that are not given an explicit prior, and their
// starting values.
const (
	DefaultH0Min = 35.0
	DefaultH0Max = 140.0
	DefaultOmMin = 0.0
	DefaultOmMax = 1.0
	DefaultWMin  = -2.0
	DefaultWMax  = 0.0

	InitialH0 = 70.0
	InitialOm = 0.3
	InitialW  = -1.0
)

// Params is a fully resolved parameter set, including the quantities derived
// from the free parameters.
type Params struct {
	H0   float64 // km/s/Mpc
	Om   float64
	Omh2 float64 // Om (H0/100)**2
	W    float64
	DH   float64 // Hubble distance c/H0, Mpc
}

// cosmology holds the dual-valued parameters of one evaluation.
type cosmology struct {
	H0, Om, Omh2, W, DH dual.Number
}

// unpack maps a free parameter vector onto the cosmology. It does not check
// physical validity.
func (m *Model) unpack(theta []dual.Number) cosmology {
	c := cosmology{H0: theta[0], W: dual.Number{Real: InitialW}}
	h := dual.Scale(0.01, c.H0)
	h2 := dual.Mul(h, h)
	if m.omh2 {
		c.Omh2 = theta[1]
		c.Om = calc.Div(c.Omh2, h2)
	} else {
		c.Om = theta[1]
		c.Omh2 = dual.Mul(c.Om, h2)
	}
	if !m.fixW {
		c.W = theta[2]
	}
	c.DH = cosmo.HubbleDistanceDual(c.H0)
	return c
}

func (m *Model) checkLen(theta int) error {
	if theta != len(m.names) {
		return fmt.Errorf("%w: got %d parameters, model has %d (%v)",
			calc.ErrShape, theta, len(m.names), m.names)
	}
	return nil
}

// Derived resolves a free parameter vector into all cosmological parameters.
func (m *Model) Derived(theta []float64) (Params, error) {
	if err := m.checkLen(len(theta)); err != nil {
		return Params{}, err
	}
	c := m.unpack(calc.Lift(theta))
	return Params{
		H0:   c.H0.Real,
		Om:   c.Om.Real,
		Omh2: c.Omh2.Real,
		W:    c.W.Real,
		DH:   c.DH.Real,
	}, nil
}

// Names returns the free parameter names in vector order.
func (m *Model) Names() []string {
	return append([]string(nil), m.names...)
}

// Index returns the position of the named free parameter, or -1.
func (m *Model) Index(name string) int {
	for i, n := range m.names {
		if n == name {
			return i
		}
	}
	return -1
}
