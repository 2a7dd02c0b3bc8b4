// Package model assembles the standard-siren likelihood: for each parameter
// set it tabulates distances and source densities on a fixed redshift grid,
// corrects each event for the detection horizon, and returns a
// differentiable log density for an external sampler.
//
// A Model is immutable after construction and safe for concurrent use. Every
// evaluation builds its own arrays.
package model

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/num/dual"

	"github.com/inference-sim/siren/siren/calc"
	"github.com/inference-sim/siren/siren/cosmo"
	"github.com/inference-sim/siren/siren/prior"
)

// Config selects the redshift grid and the parameter priors.
type Config struct {
	ZMax       float64     // upper end of the redshift grid (default 10)
	GridPoints int         // redshift grid length (default 1024)
	H0Prior    prior.Prior // nil: uniform on [35, 140]
	Omh2Prior  prior.Prior // nil: Om is free and uniform on [0, 1]; otherwise Omh2 is free and Om derived
	FixW       bool        // true: w = -1; false: w free and uniform on [-2, 0]
}

// DefaultConfig returns the default grid, default priors and fixed w.
func DefaultConfig() Config {
	return Config{
		ZMax:       cosmo.DefaultZMax,
		GridPoints: cosmo.DefaultGridPoints,
		FixW:       true,
	}
}

// Option modifies a Config.
type Option func(*Config)

// WithH0Prior replaces the default uniform H0 prior.
func WithH0Prior(p prior.Prior) Option {
	return func(c *Config) { c.H0Prior = p }
}

// WithOmh2Prior samples Omh2 from p and derives Om = Omh2/(H0/100)**2.
func WithOmh2Prior(p prior.Prior) Option {
	return func(c *Config) { c.Omh2Prior = p }
}

// WithFreeW makes the dark energy equation of state a free parameter.
func WithFreeW() Option {
	return func(c *Config) { c.FixW = false }
}

// WithGrid sets the redshift grid extent and length.
func WithGrid(zMax float64, points int) Option {
	return func(c *Config) {
		c.ZMax = zMax
		c.GridPoints = points
	}
}

// Model is the assembled standard-siren log density.
type Model struct {
	z      []dual.Number
	omh2   bool
	fixW   bool
	names  []string
	priors []prior.Prior
	init   []float64
	events []event
}

// BuildModel creates a model for a single event: luminosity distances dl
// with density values pDL, host redshift zc and detection horizon
// dlHorizon. Without options H0 and Om are uniform and w = -1.
func BuildModel(dl, pDL []float64, zc, dlHorizon float64, opts ...Option) (*Model, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return New(cfg, Event{DL: dl, PDL: pDL, ZC: zc, DLHorizon: dlHorizon})
}

// New creates a model over any number of events sharing one cosmology.
func New(cfg Config, events ...Event) (*Model, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("model requires at least one event")
	}
	zs, err := cosmo.RedshiftGrid(cfg.ZMax, cfg.GridPoints)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	m := &Model{z: calc.Lift(zs), fixW: cfg.FixW}

	h0 := cfg.H0Prior
	if h0 == nil {
		h0 = &prior.Uniform{Min: DefaultH0Min, Max: DefaultH0Max}
	}
	m.add(ParamH0, h0, InitialH0)

	if cfg.Omh2Prior != nil {
		m.omh2 = true
		m.add(ParamOmh2, cfg.Omh2Prior, math.NaN())
	} else {
		m.add(ParamOm, &prior.Uniform{Min: DefaultOmMin, Max: DefaultOmMax}, InitialOm)
	}

	if !cfg.FixW {
		m.add(ParamW, &prior.Uniform{Min: DefaultWMin, Max: DefaultWMax}, InitialW)
	}

	for i, e := range events {
		ev, err := newEvent(e)
		if err != nil {
			return nil, fmt.Errorf("events[%d]: %w", i, err)
		}
		if e.ZC > cfg.ZMax {
			logrus.Warnf("event %q: zc = %g is beyond the redshift grid (zmax = %g); densities will be extrapolated",
				ev.name(i), e.ZC, cfg.ZMax)
		}
		m.events = append(m.events, ev)
	}

	logrus.Debugf("built siren model: %d event(s), free parameters %v, %d-point redshift grid to z = %g",
		len(m.events), m.names, len(m.z), cfg.ZMax)
	return m, nil
}

// add appends a free parameter. A start outside the prior support (or NaN)
// is replaced by the mean of a normal prior or the middle of the support.
func (m *Model) add(name string, p prior.Prior, start float64) {
	lo, hi := p.Support()
	if math.IsNaN(start) || start < lo || start > hi {
		if n, ok := p.(*prior.Normal); ok {
			start = n.Mean
		} else {
			start = 0.5 * (lo + hi)
		}
	}
	m.names = append(m.names, name)
	m.priors = append(m.priors, p)
	m.init = append(m.init, start)
}

// Grid returns a copy of the redshift grid.
func (m *Model) Grid() []float64 { return calc.Reals(m.z) }

// InitialPoint returns a starting parameter vector with finite prior
// density: H0 = 70, Om = 0.3 and w = -1 where the priors allow it, the mean
// of a normal prior, otherwise the middle of the prior support.
func (m *Model) InitialPoint() []float64 {
	return append([]float64(nil), m.init...)
}

// SamplePrior draws a free parameter vector from the priors.
func (m *Model) SamplePrior(rng *rand.Rand) []float64 {
	theta := make([]float64, len(m.priors))
	for i, p := range m.priors {
		theta[i] = p.Sample(rng)
	}
	return theta
}

// PotentialDual is the selection-corrected event log likelihood,
// summed over events of log p_event(d(zc)) + log p(zc) - log beta(z_horizon).
// Derivatives seeded in theta propagate to the result. Unphysical
// parameters yield NaN or infinite values rather than errors.
func (m *Model) PotentialDual(theta []dual.Number) (dual.Number, error) {
	if err := m.checkLen(len(theta)); err != nil {
		return dual.Number{}, err
	}
	return m.potential(theta), nil
}

func (m *Model) potential(theta []dual.Number) dual.Number {
	c := m.unpack(theta)
	z := append([]dual.Number(nil), m.z...)
	bg := cosmo.NewBackground(z, c.DH, c.Om, c.W)

	var total dual.Number
	for _, ev := range m.events {
		zHorizon := bg.Redshift(ev.dlHorizon)
		p := bg.Density(ev.zc)
		b := bg.Beta(zHorizon)
		d := bg.LuminosityDistance(ev.zc)

		logl := ev.density.LogDensity(d)
		total = dual.Add(total, dual.Add(logl, dual.Log(calc.Div(p, b))))
	}
	return total
}

// LogPriorDual is the sum of the free parameter log priors.
func (m *Model) LogPriorDual(theta []dual.Number) (dual.Number, error) {
	if err := m.checkLen(len(theta)); err != nil {
		return dual.Number{}, err
	}
	return m.logPrior(theta), nil
}

func (m *Model) logPrior(theta []dual.Number) dual.Number {
	var lp dual.Number
	for i, p := range m.priors {
		lp = dual.Add(lp, p.LogDensity(theta[i]))
	}
	return lp
}

// LogDensityDual is LogPriorDual plus PotentialDual. Outside the prior
// support it is -Inf and the potential is not evaluated.
func (m *Model) LogDensityDual(theta []dual.Number) (dual.Number, error) {
	if err := m.checkLen(len(theta)); err != nil {
		return dual.Number{}, err
	}
	return m.logDensity(theta), nil
}

func (m *Model) logDensity(theta []dual.Number) dual.Number {
	lp := m.logPrior(theta)
	if math.IsInf(lp.Real, -1) {
		return dual.Number{Real: lp.Real}
	}
	return dual.Add(lp, m.potential(theta))
}

// Potential evaluates PotentialDual without derivatives.
func (m *Model) Potential(theta []float64) (float64, error) {
	v, err := m.PotentialDual(calc.Lift(theta))
	return v.Real, err
}

// LogPrior evaluates LogPriorDual without derivatives.
func (m *Model) LogPrior(theta []float64) (float64, error) {
	v, err := m.LogPriorDual(calc.Lift(theta))
	return v.Real, err
}

// LogDensity evaluates LogDensityDual without derivatives.
func (m *Model) LogDensity(theta []float64) (float64, error) {
	v, err := m.LogDensityDual(calc.Lift(theta))
	return v.Real, err
}

// PotentialGrad returns the potential and its gradient with respect to the
// free parameters.
func (m *Model) PotentialGrad(theta []float64) (float64, []float64, error) {
	return m.grad(theta, m.potential)
}

// LogDensityGrad returns the log density and its gradient with respect to
// the free parameters.
func (m *Model) LogDensityGrad(theta []float64) (float64, []float64, error) {
	return m.grad(theta, m.logDensity)
}

// grad runs one forward-mode pass per free parameter, each seeding a unit
// tangent on that parameter.
func (m *Model) grad(theta []float64, f func([]dual.Number) dual.Number) (float64, []float64, error) {
	if err := m.checkLen(len(theta)); err != nil {
		return 0, nil, err
	}
	g := make([]float64, len(theta))
	var val float64
	for i := range theta {
		seeded := calc.Lift(theta)
		seeded[i].Emag = 1
		v := f(seeded)
		val = v.Real
		g[i] = v.Emag
	}
	return val, g, nil
}
