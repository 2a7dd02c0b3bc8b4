package model

import (
	"bytes"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/siren/siren/cosmo"
	"github.com/inference-sim/siren/siren/prior"
)

// Spec is the top-level model configuration.
// Loaded from YAML via LoadSpec(path).
type Spec struct {
	Grid      GridSpec    `yaml:"grid,omitempty"`
	FixW      *bool       `yaml:"fix_w,omitempty"` // nil = true
	H0Prior   *prior.Spec `yaml:"h0_prior,omitempty"`
	Omh2Prior *prior.Spec `yaml:"omh2_prior,omitempty"`
	Events    []EventSpec `yaml:"events"`
}

// GridSpec sets the redshift grid. Zero values select the defaults.
type GridSpec struct {
	ZMax   float64 `yaml:"zmax,omitempty"`
	Points int     `yaml:"points,omitempty"`
}

// EventSpec is one event's data in a Spec.
type EventSpec struct {
	Name      string    `yaml:"name,omitempty"`
	ZC        float64   `yaml:"zc"`
	DLHorizon float64   `yaml:"dl_horizon"`
	DL        []float64 `yaml:"dl"`
	PDL       []float64 `yaml:"p_dl"`
}

// LoadSpec reads and parses a YAML model specification file.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model spec: %w", err)
	}
	return ParseSpec(data)
}

// ParseSpec parses a YAML model specification. Uses strict parsing:
// unrecognized keys (typos) are rejected.
func ParseSpec(data []byte) (*Spec, error) {
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing model spec: %w", err)
	}
	return &spec, nil
}

// Validate checks that all fields in the model spec are valid.
func (s *Spec) Validate() error {
	if s.Grid.ZMax < 0 {
		return fmt.Errorf("grid.zmax must be positive, got %g", s.Grid.ZMax)
	}
	if s.Grid.Points != 0 && s.Grid.Points < 2 {
		return fmt.Errorf("grid.points must be at least 2, got %d", s.Grid.Points)
	}
	if s.H0Prior != nil {
		if err := s.H0Prior.Validate("h0_prior"); err != nil {
			return err
		}
	}
	if s.Omh2Prior != nil {
		if err := s.Omh2Prior.Validate("omh2_prior"); err != nil {
			return err
		}
	}
	if len(s.Events) == 0 {
		return fmt.Errorf("at least one event required")
	}
	for i := range s.Events {
		e := s.Events[i].event()
		if err := e.Validate(); err != nil {
			return fmt.Errorf("events[%d]: %w", i, err)
		}
	}
	return nil
}

func (e EventSpec) event() Event {
	return Event{Name: e.Name, DL: e.DL, PDL: e.PDL, ZC: e.ZC, DLHorizon: e.DLHorizon}
}

// Config converts the grid and prior settings into a Config.
func (s *Spec) Config() (Config, error) {
	cfg := DefaultConfig()
	if s.Grid.ZMax != 0 {
		cfg.ZMax = s.Grid.ZMax
	}
	if s.Grid.Points != 0 {
		cfg.GridPoints = s.Grid.Points
	}
	if s.FixW != nil {
		cfg.FixW = *s.FixW
	}
	if s.H0Prior != nil {
		p, err := prior.New(*s.H0Prior)
		if err != nil {
			return Config{}, fmt.Errorf("h0_prior: %w", err)
		}
		cfg.H0Prior = p
	}
	if s.Omh2Prior != nil {
		p, err := prior.New(*s.Omh2Prior)
		if err != nil {
			return Config{}, fmt.Errorf("omh2_prior: %w", err)
		}
		cfg.Omh2Prior = p
	}
	if cfg.GridPoints < cosmo.DefaultGridPoints/4 {
		logrus.Warnf("redshift grid has only %d points; trapezoid distances may be inaccurate", cfg.GridPoints)
	}
	return cfg, nil
}

// Build validates the model spec and creates the model.
func (s *Spec) Build() (*Model, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}
	events := make([]Event, len(s.Events))
	for i := range s.Events {
		events[i] = s.Events[i].event()
	}
	return New(cfg, events...)
}
