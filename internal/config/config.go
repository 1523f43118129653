package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/tgisim/internal/dosing"
	"github.com/san-kum/tgisim/internal/dynamo"
	"github.com/san-kum/tgisim/internal/integrators"
	"github.com/san-kum/tgisim/internal/metrics"
	"github.com/san-kum/tgisim/internal/pkpd"
	"github.com/san-kum/tgisim/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt              = 0.1
	DefaultHorizon         = 365.0
	DefaultInitialDiameter = 10.0
	DefaultDose            = 20.0
	DefaultInterval        = 2.0
	DefaultTreatment       = 252.0
)

// Scenario is one fully specified simulation: model constants, starting
// tumor, regimen and numerics.
type Scenario struct {
	Name            string         `yaml:"name"`
	Description     string         `yaml:"description,omitempty"`
	Params          pkpd.Params    `yaml:"params"`
	InitialDiameter float64        `yaml:"initial_diameter"`
	Regimen         dosing.Regimen `yaml:"regimen"`
	Simulation      Simulation     `yaml:"simulation"`
	Solver          Solver         `yaml:"solver"`
}

type Simulation struct {
	Dt            float64 `yaml:"dt"`
	Horizon       float64 `yaml:"horizon"`
	DoseTolerance float64 `yaml:"dose_tolerance,omitempty"`
	MaxSteps      int     `yaml:"max_steps,omitempty"`
}

type Solver struct {
	RTol float64 `yaml:"rtol,omitempty"`
	ATol float64 `yaml:"atol,omitempty"`
}

func DefaultScenario() *Scenario {
	return &Scenario{
		Name:            "default",
		Params:          pkpd.DefaultParams(),
		InitialDiameter: DefaultInitialDiameter,
		Regimen: dosing.Regimen{
			Mode:     "fixed",
			Dose:     DefaultDose,
			Interval: DefaultInterval,
			Duration: DefaultTreatment,
		},
		Simulation: Simulation{
			Dt:            DefaultDt,
			Horizon:       DefaultHorizon,
			DoseTolerance: 1e-6,
		},
		Solver: Solver{
			RTol: integrators.DefaultRTol,
			ATol: integrators.DefaultATol,
		},
	}
}

// Load reads a scenario file. Fields missing from the file keep their
// DefaultScenario values.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc := DefaultScenario()
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return sc, nil
}

func Save(path string, sc *Scenario) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (s *Scenario) Clone() *Scenario {
	c := *s
	return &c
}

func (s *Scenario) SimConfig() sim.Config {
	return sim.Config{
		Dt:              s.Simulation.Dt,
		Duration:        s.Simulation.Horizon,
		InitialDiameter: s.InitialDiameter,
		DoseTolerance:   s.Simulation.DoseTolerance,
		MaxSteps:        s.Simulation.MaxSteps,
	}
}

func (s *Scenario) Validate() error {
	if err := s.Params.Validate(); err != nil {
		return err
	}
	if _, err := s.Regimen.Build(); err != nil {
		return err
	}
	if s.Solver.RTol < 0 || math.IsNaN(s.Solver.RTol) {
		return dynamo.InvalidParam("rtol", s.Solver.RTol, "must be non-negative")
	}
	if s.Solver.ATol < 0 || math.IsNaN(s.Solver.ATol) {
		return dynamo.InvalidParam("atol", s.Solver.ATol, "must be non-negative")
	}
	return s.SimConfig().Validate()
}

// Build assembles the runtime pieces of a scenario.
func (s *Scenario) Build() (*pkpd.TGI, *dosing.Schedule, sim.Config, *integrators.RK45, error) {
	if err := s.Validate(); err != nil {
		return nil, nil, sim.Config{}, nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	model, err := pkpd.NewTGI(s.Params)
	if err != nil {
		return nil, nil, sim.Config{}, nil, err
	}
	schedule, err := s.Regimen.Build()
	if err != nil {
		return nil, nil, sim.Config{}, nil, err
	}
	rk := integrators.NewRK45().WithTolerances(s.Solver.RTol, s.Solver.ATol)
	return model, schedule, s.SimConfig(), rk, nil
}

// Simulator builds the scenario into a simulator carrying the default
// metric set.
func (s *Scenario) Simulator() (*sim.Simulator, sim.Config, error) {
	model, schedule, cfg, rk, err := s.Build()
	if err != nil {
		return nil, sim.Config{}, err
	}
	simulator := sim.New(model, schedule, rk)
	for _, m := range metrics.Default() {
		simulator.AddMetric(m)
	}
	return simulator, cfg, nil
}

// SetParam sets a model constant or one of the regimen/simulation knobs
// by name. It is what sweeps and CLI overrides go through.
func (s *Scenario) SetParam(name string, value float64) error {
	switch name {
	case "dose":
		s.Regimen.Dose = value
	case "interval":
		s.Regimen.Interval = value
	case "treatment":
		s.Regimen.Duration = value
	case "on_days":
		s.Regimen.OnDays = int(math.Round(value))
	case "off_days":
		s.Regimen.OffDays = int(math.Round(value))
	case "horizon":
		s.Simulation.Horizon = value
	case "dt":
		s.Simulation.Dt = value
	case "ts0":
		s.InitialDiameter = value
	default:
		p, err := s.Params.With(name, value)
		if err != nil {
			return err
		}
		s.Params = p
	}
	return nil
}

// ParamNames lists every name SetParam accepts.
func ParamNames() []string {
	return []string{
		"dose", "interval", "treatment", "on_days", "off_days", "horizon", "dt", "ts0",
		"ka", "cl", "v1", "v2", "q", "growth_rate", "kill_rate", "resistance_decay",
	}
}
